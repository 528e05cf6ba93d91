package metadata

import (
	"context"
	"sync/atomic"

	"golang.org/x/sync/errgroup"

	"animix/pkg/models"
)

// EnhanceAnime upgrades posters and banners of the first limit items with
// AniList artwork. Work is distributed over a fixed number of workers
// pulling from a shared cursor, which caps simultaneous calls toward the
// rate-limited upstream. A failed lookup leaves the item unmodified.
func (a *AniList) EnhanceAnime(ctx context.Context, items []models.Anime, limit, concurrency int) []models.Anime {
	if len(items) == 0 {
		return items
	}
	if limit <= 0 || limit > len(items) {
		limit = len(items)
	}
	if concurrency <= 0 {
		concurrency = 6
	}
	if concurrency > limit {
		concurrency = limit
	}

	out := make([]models.Anime, len(items))
	copy(out, items)

	var cursor atomic.Int64
	g, gctx := errgroup.WithContext(ctx)
	for w := 0; w < concurrency; w++ {
		g.Go(func() error {
			for {
				i := int(cursor.Add(1)) - 1
				if i >= limit {
					return nil
				}
				item := out[i]
				media := a.MatchByTitle(gctx, item.Title, item.Slug)
				if media == nil {
					continue
				}
				item.Poster = media.BestPoster(item.Poster)
				if media.BannerImage != "" {
					item.Banner = media.BannerImage
				}
				out[i] = item
			}
		})
	}
	// workers only return nil; Wait just synchronizes
	_ = g.Wait()
	return out
}
