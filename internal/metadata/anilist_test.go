package metadata

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
	"animix/pkg/models"
)

func mediaNamed(title, poster, banner string) map[string]any {
	return map[string]any{
		"id":          1,
		"title":       map[string]any{"romaji": title, "userPreferred": title},
		"coverImage":  map[string]any{"extraLarge": poster},
		"bannerImage": banner,
	}
}

// newAniList serves every GraphQL query with the given page of media.
func newAniList(t *testing.T, media []map[string]any) (*AniList, *atomic.Int64) {
	t.Helper()
	var calls atomic.Int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		require.Equal(t, http.MethodPost, r.Method)
		var body struct {
			Query     string         `json:"query"`
			Variables map[string]any `json:"variables"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		require.NotEmpty(t, body.Query)

		json.NewEncoder(w).Encode(map[string]any{
			"data": map[string]any{"Page": map[string]any{"media": media}},
		})
	}))
	t.Cleanup(srv.Close)

	cache := fetch.NewStore(true)
	limiter := fetch.NewLimiter(1000, time.Minute, false)
	fc := fetch.NewClient(cache, limiter, "", 5*time.Minute, 20*time.Second)
	fc.HTTP = srv.Client()
	return NewAniList(fc, srv.URL), &calls
}

func TestMatchByTitleExactNormalized(t *testing.T) {
	al, calls := newAniList(t, []map[string]any{
		mediaNamed("Jujutsu Kaisen 2nd Season", "https://img.anili.st/jjk2.jpg", ""),
		mediaNamed("Jujutsu Kaisen", "https://img.anili.st/jjk.jpg", "https://img.anili.st/jjk-banner.jpg"),
	})

	got := al.MatchByTitle(context.Background(), "Jujutsu Kaisen", "jujutsu-kaisen")
	require.NotNil(t, got)
	assert.Equal(t, "Jujutsu Kaisen", got.PreferredTitle())
	assert.Equal(t, int64(1), calls.Load(), "first candidate with a match short-circuits")
}

func TestMatchByTitleEmptyTitle(t *testing.T) {
	al, calls := newAniList(t, nil)
	assert.Nil(t, al.MatchByTitle(context.Background(), "", "slug"))
	assert.Zero(t, calls.Load())
}

func TestMatchByTitleNoResults(t *testing.T) {
	al, _ := newAniList(t, nil)
	assert.Nil(t, al.MatchByTitle(context.Background(), "Anything", ""))
}

func TestSearchResultsCached(t *testing.T) {
	al, calls := newAniList(t, []map[string]any{mediaNamed("Naruto", "p", "")})

	al.MatchByTitle(context.Background(), "Naruto", "")
	al.MatchByTitle(context.Background(), "Naruto", "")
	assert.Equal(t, int64(1), calls.Load(), "repeat lookups come from the cache")
}

func TestEnhanceAnimeUpgradesArtwork(t *testing.T) {
	al, _ := newAniList(t, []map[string]any{
		mediaNamed("Frieren", "https://img.anili.st/frieren-xl.jpg", "https://img.anili.st/frieren-banner.jpg"),
	})

	items := []models.Anime{{Slug: "frieren", Title: "Frieren", Poster: "https://old.example/p.jpg"}}
	got := al.EnhanceAnime(context.Background(), items, 24, 4)

	require.Len(t, got, 1)
	assert.Equal(t, "https://img.anili.st/frieren-xl.jpg", got[0].Poster)
	assert.Equal(t, "https://img.anili.st/frieren-banner.jpg", got[0].Banner)
	// input slice untouched
	assert.Equal(t, "https://old.example/p.jpg", items[0].Poster)
}

func TestEnhanceAnimeLimitLeavesTailAlone(t *testing.T) {
	al, _ := newAniList(t, []map[string]any{
		mediaNamed("Generic", "https://img.anili.st/generic.jpg", ""),
	})

	items := []models.Anime{
		{Slug: "a", Title: "Generic", Poster: "old-a"},
		{Slug: "b", Title: "Generic", Poster: "old-b"},
	}
	got := al.EnhanceAnime(context.Background(), items, 1, 4)
	assert.Equal(t, "https://img.anili.st/generic.jpg", got[0].Poster)
	assert.Equal(t, "old-b", got[1].Poster, "items past the limit stay as-is")
}

func TestTrending(t *testing.T) {
	al, _ := newAniList(t, []map[string]any{
		mediaNamed("A", "pa", "ba"),
		mediaNamed("B", "pb", "bb"),
	})
	got, err := al.Trending(context.Background(), 2)
	require.NoError(t, err)
	assert.Len(t, got, 2)
}
