// Package anime fetches and normalizes entries from the primary anime
// catalog API. All calls go through the shared rate-limited fetch client.
package anime

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"time"

	"animix/internal/fetch"
	"animix/pkg/models"
)

// ErrNotConfigured is returned on every call when the catalog base URL is
// missing. This is a hard configuration error, never retried.
var ErrNotConfigured = errors.New("anime: missing ANIMIX_API_URL")

// Client talks to the primary anime catalog.
type Client struct {
	Fetch *fetch.Client
	Base  string
}

// NewClient builds a catalog client; base may be empty, in which case all
// calls fail with ErrNotConfigured.
func NewClient(f *fetch.Client, base string) *Client {
	return &Client{Fetch: f, Base: base}
}

// FeedPage is one upstream page of a list endpoint.
type FeedPage struct {
	Items       []models.Anime
	HasNextPage bool
	Meta        *fetch.Meta
}

// Feed fetches one page of a list endpoint ("/ongoing", "/completed",
// "/popular", "/latest").
func (c *Client) Feed(ctx context.Context, endpoint string, page, perPage int) (FeedPage, error) {
	if c.Base == "" {
		return FeedPage{}, ErrNotConfigured
	}
	u := fmt.Sprintf("%s%s?page=%d", c.Base, endpoint, page)
	res := c.Fetch.GetJSON(ctx, u, &fetch.Options{
		CacheKey: fmt.Sprintf("home-feed:%s:%d:%d", endpoint, page, perPage),
		TTL:      5 * time.Minute,
		ErrorTTL: 30 * time.Second,
	})
	if !res.OK {
		return FeedPage{Meta: res.Meta}, fmt.Errorf("anime: feed %s: %s", endpoint, res.Err)
	}
	items := ParseList(ExtractList(res.Data))
	return FeedPage{
		Items:       items,
		HasNextPage: HasNextPage(res.Data, page, len(items)),
		Meta:        res.Meta,
	}, nil
}

// ListPage fetches one page of the alphabetical listing endpoint used by
// the search index crawl.
func (c *Client) ListPage(ctx context.Context, letter string, page int) ([]models.Anime, error) {
	if c.Base == "" {
		return nil, ErrNotConfigured
	}
	u := fmt.Sprintf("%s/animelist?letter=%s&page=%d", c.Base, url.QueryEscape(letter), page)
	res := c.Fetch.GetJSON(ctx, u, &fetch.Options{
		TTL:      10 * time.Minute,
		ErrorTTL: 30 * time.Second,
	})
	if !res.OK {
		return nil, fmt.Errorf("anime: animelist %s page %d: %s", letter, page, res.Err)
	}
	return ParseList(ExtractList(res.Data)), nil
}

// Search queries the upstream search endpoint.
func (c *Client) Search(ctx context.Context, query string) ([]models.Anime, error) {
	if c.Base == "" {
		return nil, ErrNotConfigured
	}
	u := fmt.Sprintf("%s/search/%s", c.Base, url.PathEscape(query))
	res := c.Fetch.GetJSON(ctx, u, &fetch.Options{
		TTL:      10 * time.Minute,
		ErrorTTL: 30 * time.Second,
	})
	if !res.OK {
		return nil, fmt.Errorf("anime: search %q: %s", query, res.Err)
	}
	return ParseList(ExtractList(res.Data)), nil
}

// detailPaths are the known locations of the item object in a detail payload.
var detailPaths = [][]string{
	{"anime"},
	{"result"},
	{"data", "anime"},
	{"data"},
}

// Detail fetches the detail endpoint for one slug.
func (c *Client) Detail(ctx context.Context, slug string) (models.Anime, error) {
	if c.Base == "" {
		return models.Anime{}, ErrNotConfigured
	}
	u := fmt.Sprintf("%s/anime/%s", c.Base, url.PathEscape(slug))
	res := c.Fetch.GetJSON(ctx, u, &fetch.Options{
		TTL:      time.Hour,
		ErrorTTL: 30 * time.Second,
	})
	if !res.OK {
		return models.Anime{}, fmt.Errorf("anime: detail %s: %s", slug, res.Err)
	}

	item := extractObject(res.Data, detailPaths)
	if item == nil {
		return models.Anime{}, fmt.Errorf("anime: detail %s: empty payload", slug)
	}
	parsed := Parse(item)
	if parsed.Slug == "" || parsed.Slug == models.Slugify("Untitled") {
		parsed.Slug = slug
	}
	return parsed, nil
}
