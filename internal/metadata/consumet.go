package metadata

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"animix/internal/fetch"
)

// AnimeInfo is the secondary info API's record for one show.
type AnimeInfo struct {
	ID            string   `json:"id"`
	Title         string   `json:"title"`
	ALID          int      `json:"alID"`
	MalID         int      `json:"malID"`
	Image         string   `json:"image"`
	Description   string   `json:"description"`
	Genres        []string `json:"genres"`
	Status        string   `json:"status"`
	Season        string   `json:"season"`
	TotalEpisodes int      `json:"totalEpisodes"`
	Episodes      []struct {
		ID     string  `json:"id"`
		Number float64 `json:"number"`
		Title  string  `json:"title"`
	} `json:"episodes"`
}

type consumetSearchResponse struct {
	Results []struct {
		ID    string `json:"id"`
		Title string `json:"title"`
		Image string `json:"image"`
	} `json:"results"`
}

// Consumet is the secondary anime-info API: a search-then-info two-step
// lookup keyed by title. Nil-safe: an unconfigured client returns nothing.
type Consumet struct {
	Fetch    *fetch.Client
	Base     string
	Provider string
}

// NewConsumet builds the client; base may be empty (feature off).
func NewConsumet(f *fetch.Client, base, provider string) *Consumet {
	if provider == "" {
		provider = "hianime"
	}
	return &Consumet{Fetch: f, Base: base, Provider: provider}
}

// InfoByTitle searches the provider for title, picks the best match, then
// fetches its full info record. Returns nil when unconfigured or when no
// match is found; failures are not errors to callers.
func (c *Consumet) InfoByTitle(ctx context.Context, title string) *AnimeInfo {
	if c == nil || c.Base == "" || title == "" {
		return nil
	}

	searchURL := fmt.Sprintf("%s/anime/%s/%s", c.Base, c.Provider, url.PathEscape(title))
	res := c.Fetch.GetJSON(ctx, searchURL, &fetch.Options{
		CacheKey: fmt.Sprintf("consumet-search:%s:%s", c.Provider, title),
		TTL:      time.Hour,
	})
	if !res.OK {
		return nil
	}
	var search consumetSearchResponse
	if err := res.Decode(&search); err != nil || len(search.Results) == 0 {
		return nil
	}

	titles := make([]string, len(search.Results))
	for i, r := range search.Results {
		titles[i] = r.Title
	}
	idx := BestMatchIndex(title, titles)
	if idx < 0 || search.Results[idx].ID == "" {
		return nil
	}

	infoURL := fmt.Sprintf("%s/anime/%s/info/%s", c.Base, c.Provider, url.PathEscape(search.Results[idx].ID))
	infoRes := c.Fetch.GetJSON(ctx, infoURL, &fetch.Options{
		CacheKey: fmt.Sprintf("consumet-info:%s:%s", c.Provider, search.Results[idx].ID),
		TTL:      time.Hour,
	})
	if !infoRes.OK {
		return nil
	}
	var info AnimeInfo
	if err := infoRes.Decode(&info); err != nil {
		return nil
	}
	return &info
}
