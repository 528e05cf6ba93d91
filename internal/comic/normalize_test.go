package comic

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractListShapes(t *testing.T) {
	payloads := []string{
		`{"comics":[{"title":"A"}]}`,
		`{"results":[{"title":"A"}]}`,
		`{"data":{"comics":[{"title":"A"}]}}`,
		`{"data":[{"title":"A"}]}`,
	}
	for _, payload := range payloads {
		items := ExtractList(json.RawMessage(payload))
		require.Len(t, items, 1, payload)
	}
	assert.Nil(t, ExtractList(json.RawMessage(`{"nothing":1}`)))
}

func TestPickSlugFromLink(t *testing.T) {
	item := Raw{"link": "https://komiku.org/manga/one-piece/"}
	assert.Equal(t, "one-piece", PickSlug(item, "One Piece"))
}

func TestPickSlugSkipsBoilerplateSegments(t *testing.T) {
	item := Raw{"link": "https://example.com/detail-komik/solo-leveling/manga/"}
	assert.Equal(t, "solo-leveling", PickSlug(item, "Solo Leveling"))
}

func TestPickSlugExplicitWins(t *testing.T) {
	item := Raw{"slug": "explicit", "link": "https://example.com/manga/other/"}
	assert.Equal(t, "explicit", PickSlug(item, "Title"))
}

func TestPickSlugFallsBackToTitle(t *testing.T) {
	assert.Equal(t, "one-piece", PickSlug(Raw{}, "One Piece"))
}

func TestPickCoverPrefersBestCandidate(t *testing.T) {
	item := Raw{
		"thumbnail":  "https://cdn.example/thumb-100x100.jpg",
		"coverImage": "https://cdn.example/large-800x1200.jpg",
	}
	assert.Equal(t, "https://cdn.example/large-800x1200.jpg", PickCover(item))
}

func TestParseGenresStringsAndObjects(t *testing.T) {
	got := Parse(Raw{
		"title":  "X",
		"genres": []any{"Action", map[string]any{"name": "Drama", "slug": "drama"}},
	})
	assert.Equal(t, []string{"Action", "Drama"}, got.Genres)
}

func TestParseDetailNestedMetadata(t *testing.T) {
	got := ParseDetail(Raw{
		"title":  "X",
		"status": "Ongoing",
		"metadata": map[string]any{
			"status": "Completed",
			"type":   "Manga",
			"author": "Oda",
		},
	}, "x-slug")
	assert.Equal(t, "x-slug", got.Slug)
	assert.Equal(t, "Completed", got.Status)
	assert.Equal(t, "Oda", got.Author)
}

func TestIsMangaSource(t *testing.T) {
	assert.True(t, IsMangaSource(Raw{"title": "One Piece", "type": "Manga"}))
	assert.False(t, IsMangaSource(Raw{"title": "Solo Leveling", "type": "Manhwa"}))
	assert.False(t, IsMangaSource(Raw{"title": "Tales of Demons [Manhua]"}))
}
