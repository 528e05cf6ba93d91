package search

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"animix/pkg/models"
)

func indexedMatcher(t *testing.T, items []models.Anime) Matcher {
	t.Helper()
	m := NewBleveMatcher()
	require.NoError(t, m.Index(items))
	return m
}

func TestMatcherExactTitleRanksFirst(t *testing.T) {
	m := indexedMatcher(t, []models.Anime{
		{Slug: "one-piece", Title: "One Piece"},
		{Slug: "one-punch-man", Title: "One Punch Man"},
		{Slug: "bleach", Title: "Bleach"},
	})

	matches := m.Query("one piece", 10)
	require.NotEmpty(t, matches)
	assert.Equal(t, "one-piece", matches[0].Slug)
}

func TestMatcherToleratesTypo(t *testing.T) {
	m := indexedMatcher(t, []models.Anime{
		{Slug: "naruto", Title: "Naruto"},
		{Slug: "bleach", Title: "Bleach"},
	})

	matches := m.Query("narto", 10)
	require.NotEmpty(t, matches)
	assert.Equal(t, "naruto", matches[0].Slug)
}

func TestMatcherScoresAscendWithRank(t *testing.T) {
	m := indexedMatcher(t, []models.Anime{
		{Slug: "one-piece", Title: "One Piece"},
		{Slug: "one-punch-man", Title: "One Punch Man"},
	})

	matches := m.Query("one piece", 10)
	require.GreaterOrEqual(t, len(matches), 2)
	assert.Less(t, matches[0].Score, matches[1].Score, "lower score is a better match")
}

func TestMatcherRespectsLimit(t *testing.T) {
	items := []models.Anime{
		{Slug: "a", Title: "Test Anime A"},
		{Slug: "b", Title: "Test Anime B"},
		{Slug: "c", Title: "Test Anime C"},
	}
	m := indexedMatcher(t, items)
	matches := m.Query("test anime", 2)
	assert.LessOrEqual(t, len(matches), 2)
}

func TestMatcherEmptyIndex(t *testing.T) {
	m := indexedMatcher(t, nil)
	assert.Empty(t, m.Query("anything", 10))
}
