// Package metadata reconciles local catalog entries with external
// metadata services by title similarity, and enriches feed items with the
// better artwork those services carry.
package metadata

import (
	"context"
	"fmt"
	"time"

	"animix/internal/fetch"
)

// Media is one AniList media record, reduced to the fields we consume.
type Media struct {
	ID    int `json:"id"`
	IDMal int `json:"idMal"`
	Title struct {
		Romaji        string `json:"romaji"`
		English       string `json:"english"`
		Native        string `json:"native"`
		UserPreferred string `json:"userPreferred"`
	} `json:"title"`
	BannerImage string `json:"bannerImage"`
	CoverImage  struct {
		ExtraLarge string `json:"extraLarge"`
		Large      string `json:"large"`
	} `json:"coverImage"`
	Description string `json:"description"`
	SeasonYear  int    `json:"seasonYear"`
	Format      string `json:"format"`
}

// PreferredTitle picks the display title in AniList's preference order.
func (m Media) PreferredTitle() string {
	switch {
	case m.Title.UserPreferred != "":
		return m.Title.UserPreferred
	case m.Title.English != "":
		return m.Title.English
	default:
		return m.Title.Romaji
	}
}

// BestPoster returns the largest cover variant, or fallback when none.
func (m Media) BestPoster(fallback string) string {
	switch {
	case m.CoverImage.ExtraLarge != "":
		return m.CoverImage.ExtraLarge
	case m.CoverImage.Large != "":
		return m.CoverImage.Large
	default:
		return fallback
	}
}

const mediaFields = `
  id
  idMal
  title {
    romaji
    english
    native
    userPreferred
  }
  bannerImage
  coverImage {
    extraLarge
    large
  }
  description
  seasonYear
  format
`

type anilistResponse struct {
	Data struct {
		Media *Media `json:"Media"`
		Page  *struct {
			Media []Media `json:"media"`
		} `json:"Page"`
	} `json:"data"`
}

// AniList queries the AniList GraphQL endpoint through the shared fetch
// client. Results are slow-changing metadata, so TTLs are long and cache
// keys embed the literal query to avoid cross-query collisions.
type AniList struct {
	Fetch    *fetch.Client
	Endpoint string
}

// NewAniList creates an AniList client against endpoint.
func NewAniList(f *fetch.Client, endpoint string) *AniList {
	return &AniList{Fetch: f, Endpoint: endpoint}
}

func (a *AniList) query(ctx context.Context, gql string, variables map[string]any, cacheKey string, ttl time.Duration) (*anilistResponse, error) {
	res := a.Fetch.PostJSON(ctx, a.Endpoint, map[string]any{
		"query":     gql,
		"variables": variables,
	}, &fetch.Options{CacheKey: cacheKey, TTL: ttl})
	if !res.OK {
		return nil, fmt.Errorf("anilist: %s", res.Err)
	}
	var parsed anilistResponse
	if err := res.Decode(&parsed); err != nil {
		return nil, fmt.Errorf("anilist: decode: %w", err)
	}
	return &parsed, nil
}

// searchPage runs one media search query and returns up to five results.
func (a *AniList) searchPage(ctx context.Context, queryText string) ([]Media, error) {
	gql := "query ($search: String) {\n  Page(perPage: 5) {\n    media(search: $search, type: ANIME) {\n" + mediaFields + "\n    }\n  }\n}"
	parsed, err := a.query(ctx, gql,
		map[string]any{"search": queryText},
		"anilist:search:v3:"+queryText,
		24*time.Hour,
	)
	if err != nil {
		return nil, err
	}
	if parsed.Data.Page == nil {
		return nil, nil
	}
	return parsed.Data.Page.Media, nil
}

// MatchByTitle finds the best AniList record for a local title. Candidate
// queries are tried in order; the first one yielding any match wins and
// no further refinement happens.
func (a *AniList) MatchByTitle(ctx context.Context, title, slug string) *Media {
	if title == "" {
		return nil
	}
	for _, candidate := range BuildSearchCandidates(title, slug) {
		results, err := a.searchPage(ctx, candidate)
		if err != nil || len(results) == 0 {
			continue
		}
		titles := make([]string, len(results))
		for i, m := range results {
			titles[i] = m.PreferredTitle()
		}
		if idx := BestMatchIndex(candidate, titles); idx >= 0 {
			return &results[idx]
		}
	}
	return nil
}

// ByID fetches one media record by AniList id.
func (a *AniList) ByID(ctx context.Context, id int) (*Media, error) {
	gql := "query ($id: Int) {\n  Media(id: $id, type: ANIME) {\n" + mediaFields + "\n  }\n}"
	parsed, err := a.query(ctx, gql,
		map[string]any{"id": id},
		fmt.Sprintf("anilist:id:%d", id),
		24*time.Hour,
	)
	if err != nil {
		return nil, err
	}
	return parsed.Data.Media, nil
}

// Trending fetches the current trending list.
func (a *AniList) Trending(ctx context.Context, limit int) ([]Media, error) {
	gql := "query ($perPage: Int) {\n  Page(perPage: $perPage) {\n    media(type: ANIME, sort: TRENDING_DESC) {\n" + mediaFields + "\n    }\n  }\n}"
	parsed, err := a.query(ctx, gql,
		map[string]any{"perPage": limit},
		fmt.Sprintf("anilist:trending:%d", limit),
		12*time.Hour,
	)
	if err != nil {
		return nil, err
	}
	if parsed.Data.Page == nil {
		return nil, nil
	}
	return parsed.Data.Page.Media, nil
}
