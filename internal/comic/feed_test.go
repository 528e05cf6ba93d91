package comic

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"animix/internal/fetch"
)

func newFeedClient(t *testing.T, unlimited any) (*Client, *atomic.Int64) {
	t.Helper()
	var calls atomic.Int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		require.Equal(t, "/unlimited", r.URL.Path)
		json.NewEncoder(w).Encode(unlimited)
	}))
	t.Cleanup(srv.Close)

	cache := fetch.NewStore(true)
	limiter := fetch.NewLimiter(1000, time.Minute, false)
	fc := fetch.NewClient(cache, limiter, "", 5*time.Minute, 20*time.Second)
	fc.HTTP = srv.Client()
	return NewClient(fc, srv.URL), &calls
}

func TestFeedRanksAndFilters(t *testing.T) {
	client, _ := newFeedClient(t, map[string]any{
		"comics": []any{
			map[string]any{"title": "Low", "slug": "low", "latestChapter": "Chapter 10", "coverImage": "https://cdn.example/low-800x1200.jpg"},
			map[string]any{"title": "High", "slug": "high", "latestChapter": "Chapter 900", "coverImage": "https://cdn.example/high-800x1200.jpg"},
			map[string]any{"title": "Free APK Download", "slug": "spam", "latestChapter": "Chapter 9999", "coverImage": "https://cdn.example/spam-800x1200.jpg"},
			map[string]any{"title": "High", "slug": "high", "latestChapter": "Chapter 5", "coverImage": "https://cdn.example/dup-800x1200.jpg"},
			map[string]any{"title": "Tower of God", "slug": "tower-of-god", "type": "Manhwa", "latestChapter": "Chapter 600", "coverImage": "https://cdn.example/tog-800x1200.jpg"},
		},
	})

	page, err := client.Feed(context.Background(), FeedLatest, 1, 24)
	require.NoError(t, err)

	slugs := make([]string, 0, len(page.Items))
	for _, item := range page.Items {
		slugs = append(slugs, item.Slug)
	}
	assert.Equal(t, []string{"high", "low"}, slugs, "spam, non-manga sources and slug dupes dropped, sorted by score desc")
	assert.False(t, page.HasNextPage)
}

func TestFeedKeepsSameTitleDifferentSlug(t *testing.T) {
	client, _ := newFeedClient(t, map[string]any{
		"comics": []any{
			map[string]any{"title": "Rebirth", "slug": "rebirth", "latestChapter": "Chapter 80", "coverImage": "https://cdn.example/r1-800x1200.jpg"},
			map[string]any{"title": "Rebirth", "slug": "rebirth-alt", "latestChapter": "Chapter 40", "coverImage": "https://cdn.example/r2-800x1200.jpg"},
		},
	})

	page, err := client.Feed(context.Background(), FeedLatest, 1, 24)
	require.NoError(t, err)
	require.Len(t, page.Items, 2, "distinct slugs sharing a title both survive")
	assert.Equal(t, "rebirth", page.Items[0].Slug)
	assert.Equal(t, "rebirth-alt", page.Items[1].Slug)
}

func TestLatestFiltersNonManga(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{
			"comics": []any{
				map[string]any{"title": "One Piece", "slug": "one-piece"},
				map[string]any{"title": "Solo Leveling", "slug": "solo-leveling", "type": "Manhwa"},
				map[string]any{"title": "Apotheosis [Manhua]", "slug": "apotheosis"},
			},
		})
	}))
	t.Cleanup(srv.Close)

	cache := fetch.NewStore(true)
	limiter := fetch.NewLimiter(1000, time.Minute, false)
	fc := fetch.NewClient(cache, limiter, "", 5*time.Minute, 20*time.Second)
	fc.HTTP = srv.Client()
	client := NewClient(fc, srv.URL)

	page, err := client.Latest(context.Background(), 1)
	require.NoError(t, err)
	require.Len(t, page.Items, 1)
	assert.Equal(t, "one-piece", page.Items[0].Slug)
}

func TestFeedCoverGateSkippedWhenEmpty(t *testing.T) {
	client, _ := newFeedClient(t, map[string]any{
		"comics": []any{
			map[string]any{"title": "No Cover A", "slug": "a"},
			map[string]any{"title": "No Cover B", "slug": "b"},
		},
	})

	page, err := client.Feed(context.Background(), FeedLatest, 1, 24)
	require.NoError(t, err)
	assert.Len(t, page.Items, 2, "cover gate must not empty the feed")
}

func TestFeedPerPageClamped(t *testing.T) {
	comics := make([]any, 0, 40)
	for i := 0; i < 40; i++ {
		comics = append(comics, map[string]any{
			"title":         "Series " + string(rune('A'+i%26)) + string(rune('a'+i/26)),
			"slug":          "series-" + string(rune('a'+i%26)) + string(rune('a'+i/26)),
			"latestChapter": float64(i + 1),
			"coverImage":    "https://cdn.example/c-800x1200.jpg",
		})
	}
	client, _ := newFeedClient(t, map[string]any{"comics": comics})

	page, err := client.Feed(context.Background(), FeedLatest, 1, 1000)
	require.NoError(t, err)
	assert.Len(t, page.Items, 36, "perPage clamps to the maximum")
	assert.True(t, page.HasNextPage)

	page, err = client.Feed(context.Background(), FeedLatest, 1, 1)
	require.NoError(t, err)
	assert.Len(t, page.Items, 6, "perPage clamps to the minimum")
}

func TestFeedUsesCachedCatalog(t *testing.T) {
	client, calls := newFeedClient(t, map[string]any{
		"comics": []any{
			map[string]any{"title": "A", "slug": "a", "latestChapter": "Chapter 1", "coverImage": "https://cdn.example/a-800x1200.jpg"},
		},
	})

	_, err := client.Feed(context.Background(), FeedLatest, 1, 24)
	require.NoError(t, err)
	_, err = client.Feed(context.Background(), FeedPopular, 1, 24)
	require.NoError(t, err)
	assert.Equal(t, int64(1), calls.Load(), "both feed types share the catalog cache entry")
}
