package comic

import (
	"context"
	"sort"

	"animix/internal/cover"
	"animix/internal/feed"
	"animix/internal/fetch"
	"animix/pkg/models"
)

const (
	feedMinPerPage = 6
	feedMaxPerPage = 36
)

// FeedType selects the ranking applied to the merged catalog feed.
type FeedType string

const (
	FeedLatest  FeedType = "latest"
	FeedPopular FeedType = "popular"
)

// FeedPage is one ranked, paginated slice of the merged catalog.
type FeedPage struct {
	Items       []models.Comic
	HasNextPage bool
	Meta        *fetch.Meta
}

type scored struct {
	item  models.Comic
	score float64
}

// Feed builds the ranked manga feed from the unlimited catalog dump:
// spam is dropped, duplicates collapse by slug (normalized title when an
// item carries no slug), survivors are scored for the requested feed
// type, then a cover gate removes entries without a usable cover before
// pagination. The cover gate is skipped when it would empty the feed.
func (c *Client) Feed(ctx context.Context, feedType FeedType, page, perPage int) (FeedPage, error) {
	if perPage < feedMinPerPage {
		perPage = feedMinPerPage
	}
	if perPage > feedMaxPerPage {
		perPage = feedMaxPerPage
	}

	unlimited, raws, err := c.Unlimited(ctx)
	if err != nil {
		return FeedPage{}, err
	}

	seen := make(map[string]struct{}, len(raws))
	ranked := make([]scored, 0, len(raws))
	for i, raw := range raws {
		item := unlimited.Items[i]
		if feed.IsGarbage(item.Title, label(raw, "latestChapter", "chapter")) {
			continue
		}
		key := item.Slug
		if key == "" {
			key = models.NormalizeTitle(item.Title)
		}
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}

		var score float64
		switch feedType {
		case FeedPopular:
			score = feed.PopularScore(raw)
		default:
			score = feed.LatestScore(raw)
		}
		if score == 0 {
			score = feed.FallbackScore(string(feedType), item.Slug)
		}
		ranked = append(ranked, scored{item: item, score: score})
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].score > ranked[j].score
	})

	withCover := make([]models.Comic, 0, len(ranked))
	all := make([]models.Comic, 0, len(ranked))
	for _, s := range ranked {
		all = append(all, s.item)
		if s.item.Cover != cover.Placeholder && !cover.LikelyBad(s.item.Cover) {
			withCover = append(withCover, s.item)
		}
	}
	pool := withCover
	if len(pool) == 0 {
		pool = all
	}

	items, hasNext := feed.Paginate(pool, page, perPage)
	return FeedPage{Items: items, HasNextPage: hasNext, Meta: unlimited.Meta}, nil
}
