package comic

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"animix/internal/fetch"
	"animix/pkg/models"
)

// ErrNotConfigured is returned when the comic API base URL is unset.
var ErrNotConfigured = errors.New("comic: API base URL not configured")

// Client reads from the comic source API.
type Client struct {
	Fetch *fetch.Client
	Base  string
}

// NewClient builds a comic source client.
func NewClient(f *fetch.Client, base string) *Client {
	return &Client{Fetch: f, Base: strings.TrimRight(base, "/")}
}

// Page is one normalized page of comics plus its rate-limit meta.
type Page struct {
	Items []models.Comic
	Meta  *fetch.Meta
}

func (c *Client) get(ctx context.Context, path, cacheKey string, ttl, errTTL time.Duration) (fetch.Result, error) {
	if c.Base == "" {
		return fetch.Result{}, ErrNotConfigured
	}
	return c.Fetch.GetJSON(ctx, c.Base+path, &fetch.Options{
		CacheKey: cacheKey,
		TTL:      ttl,
		ErrorTTL: errTTL,
	}), nil
}

func (c *Client) listPage(ctx context.Context, path, cacheKey string, ttl time.Duration) (Page, error) {
	res, err := c.get(ctx, path, cacheKey, ttl, 30*time.Second)
	if err != nil {
		return Page{}, err
	}
	if !res.OK {
		return Page{Meta: res.Meta}, fmt.Errorf("comic: fetch %s: %s", path, res.Err)
	}
	items := make([]models.Comic, 0)
	for _, raw := range ExtractList(res.Data) {
		if !IsMangaSource(raw) {
			continue
		}
		items = append(items, Parse(raw))
	}
	return Page{Items: items, Meta: res.Meta}, nil
}

// Popular fetches the popular ranking list.
func (c *Client) Popular(ctx context.Context) (Page, error) {
	return c.listPage(ctx, "/populer", "comic-popular", 10*time.Minute)
}

// Latest fetches one page of the latest-updates list.
func (c *Client) Latest(ctx context.Context, page int) (Page, error) {
	if page < 1 {
		page = 1
	}
	path := fmt.Sprintf("/terbaru?page=%d", page)
	return c.listPage(ctx, path, fmt.Sprintf("comic-latest:%d", page), 5*time.Minute)
}

// Search queries the comic source, falling back to advanced search when
// the plain endpoint returns nothing.
func (c *Client) Search(ctx context.Context, query string) (Page, error) {
	q := url.QueryEscape(strings.TrimSpace(query))
	page, err := c.listPage(ctx, "/search?q="+q, "comic-search:"+q, 10*time.Minute)
	if err == nil && len(page.Items) > 0 {
		return page, nil
	}
	adv, advErr := c.listPage(ctx, "/advanced-search?title="+q, "comic-advsearch:"+q, 10*time.Minute)
	if advErr != nil {
		if err != nil {
			return Page{}, err
		}
		return page, nil
	}
	return adv, nil
}

// Unlimited fetches the full merged catalog dump used for the ranked feed.
func (c *Client) Unlimited(ctx context.Context) (Page, []Raw, error) {
	res, err := c.get(ctx, "/unlimited", "manga-unlimited", time.Hour, time.Minute)
	if err != nil {
		return Page{}, nil, err
	}
	if !res.OK {
		return Page{Meta: res.Meta}, nil, fmt.Errorf("comic: fetch unlimited: %s", res.Err)
	}
	raws := make([]Raw, 0)
	for _, raw := range ExtractList(res.Data) {
		if IsMangaSource(raw) {
			raws = append(raws, raw)
		}
	}
	items := make([]models.Comic, 0, len(raws))
	for _, raw := range raws {
		items = append(items, Parse(raw))
	}
	return Page{Items: items, Meta: res.Meta}, raws, nil
}

// Library fetches the A-Z library listing, optionally filtered by
// starting letter.
func (c *Client) Library(ctx context.Context, letter string, page int) (Page, error) {
	if page < 1 {
		page = 1
	}
	path := fmt.Sprintf("/list?page=%d", page)
	key := fmt.Sprintf("comic-library:%d", page)
	if letter != "" {
		l := strings.ToLower(letter[:1])
		path = fmt.Sprintf("/list?filter=%s&page=%d", l, page)
		key = fmt.Sprintf("comic-library:%s:%d", l, page)
	}
	return c.listPage(ctx, path, key, 10*time.Minute)
}

// Detail fetches one comic's detail page.
func (c *Client) Detail(ctx context.Context, slug string) (models.Comic, *fetch.Meta, error) {
	res, err := c.get(ctx, "/comic/"+url.PathEscape(slug), "comic-detail:"+slug, time.Hour, 30*time.Second)
	if err != nil {
		return models.Comic{}, nil, err
	}
	if !res.OK {
		return models.Comic{}, res.Meta, fmt.Errorf("comic: detail %s: %s", slug, res.Err)
	}
	var doc map[string]any
	if err := json.Unmarshal(res.Data, &doc); err != nil {
		return models.Comic{}, res.Meta, fmt.Errorf("comic: detail %s: decode: %w", slug, err)
	}
	payload := doc
	for _, key := range []string{"comic", "data", "result"} {
		if nested, ok := doc[key].(map[string]any); ok {
			payload = nested
			break
		}
	}
	return ParseDetail(Raw(payload), slug), res.Meta, nil
}

// Chapters fetches a comic's chapter list, newest first. Chapter slugs
// come from the link path, skipping site boilerplate segments.
func (c *Client) Chapters(ctx context.Context, slug string) ([]models.Chapter, *fetch.Meta, error) {
	res, err := c.get(ctx, "/comic/"+url.PathEscape(slug)+"/chapters", "comic-chapters:"+slug, 30*time.Minute, 30*time.Second)
	if err != nil {
		return nil, nil, err
	}
	if !res.OK {
		return nil, res.Meta, fmt.Errorf("comic: chapters %s: %s", slug, res.Err)
	}
	var doc map[string]any
	if err := json.Unmarshal(res.Data, &doc); err != nil {
		return nil, res.Meta, fmt.Errorf("comic: chapters %s: decode: %w", slug, err)
	}
	var arr []any
	for _, key := range []string{"chapters", "data", "results"} {
		if a, ok := doc[key].([]any); ok {
			arr = a
			break
		}
	}
	chapters := make([]models.Chapter, 0, len(arr))
	for _, v := range arr {
		m, ok := v.(map[string]any)
		if !ok {
			continue
		}
		raw := Raw(m)
		title := firstString(raw, "title", "name", "chapter")
		chSlug := PickSlug(raw, title)
		if chSlug == "" {
			continue
		}
		chapters = append(chapters, models.Chapter{
			Slug:        chSlug,
			Title:       title,
			Chapter:     label(raw, "chapter", "number"),
			ReleaseDate: firstString(raw, "releasedAt", "release_date", "date", "updated"),
		})
	}
	// upstream lists oldest first
	for i, j := 0, len(chapters)-1; i < j; i, j = i+1, j-1 {
		chapters[i], chapters[j] = chapters[j], chapters[i]
	}
	return chapters, res.Meta, nil
}

// ChapterPages fetches the page image URLs for one chapter.
func (c *Client) ChapterPages(ctx context.Context, slug string) (models.ChapterPages, *fetch.Meta, error) {
	res, err := c.get(ctx, "/chapter/"+slug, "comic-chapter:"+slug, time.Hour, 30*time.Second)
	if err != nil {
		return models.ChapterPages{}, nil, err
	}
	if !res.OK {
		return models.ChapterPages{}, res.Meta, fmt.Errorf("comic: chapter %s: %s", slug, res.Err)
	}
	var doc map[string]any
	if err := json.Unmarshal(res.Data, &doc); err != nil {
		return models.ChapterPages{}, res.Meta, fmt.Errorf("comic: chapter %s: decode: %w", slug, err)
	}
	payload := doc
	for _, key := range []string{"chapter", "data", "result"} {
		if nested, ok := doc[key].(map[string]any); ok {
			payload = nested
			break
		}
	}
	raw := Raw(payload)
	images := make([]string, 0)
	for _, key := range []string{"images", "pages", "imageUrls"} {
		arr, ok := payload[key].([]any)
		if !ok {
			continue
		}
		for _, p := range arr {
			switch v := p.(type) {
			case string:
				images = append(images, v)
			case map[string]any:
				if u, ok := v["url"].(string); ok && u != "" {
					images = append(images, u)
				}
			}
		}
		break
	}
	return models.ChapterPages{
		Images:  images,
		Title:   firstString(raw, "title", "name"),
		Chapter: label(raw, "chapter", "number"),
	}, res.Meta, nil
}
