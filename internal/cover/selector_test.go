package cover

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLikelyBad(t *testing.T) {
	bad := []string{
		"",
		"https://cdn.example/lazy.jpg",
		"https://cdn.example/placeholder.png",
		"https://cdn.example/noimage.png",
		"https://cdn.example/default.jpg",
		"https://cdn.example/blank.webp",
		"https://cdn.example/logo.svg",
		"https://cdn.example/cover-100x150.jpg",
		"https://cdn.example/thumb 90x90 variant.jpg",
	}
	for _, url := range bad {
		assert.True(t, LikelyBad(url), url)
	}

	good := []string{
		"https://cdn.example/cover.jpg",
		"https://cdn.example/cover-800x1200.jpg", // 4-digit dims are fine
		"https://cdn.example/original/1234.png",
	}
	for _, url := range good {
		assert.False(t, LikelyBad(url), url)
	}
}

func TestUpgrade(t *testing.T) {
	assert.Equal(t,
		"https://img.komiku.org/covers/x.jpg",
		Upgrade("https://thumbnail.komiku.org/covers/x.jpg"))
	assert.Equal(t,
		"https://cdn.example/cover.jpg",
		Upgrade("https://cdn.example/cover.jpg?resize=165,225"))
	assert.Equal(t, "", Upgrade(""))
	// no marker, no change
	assert.Equal(t, "https://cdn.example/a.png", Upgrade("https://cdn.example/a.png"))
}

func TestPickBetterPrefersNotBad(t *testing.T) {
	bad := "https://cdn.example/thumb-100x100.jpg"
	good := "https://cdn.example/large-800x1200.jpg"
	assert.Equal(t, good, PickBetter(bad, good))
	assert.Equal(t, good, PickBetter(good, bad))
}

func TestPickBetterQualityHint(t *testing.T) {
	small := "https://cdn.example/small/a.jpg"
	original := "https://cdn.example/original/a.jpg"
	plain := "https://cdn.example/a.jpg"
	assert.Equal(t, original, PickBetter(small, original))
	assert.Equal(t, original, PickBetter(plain, original))
	assert.Equal(t, plain, PickBetter(small, plain))
}

func TestPickBetterByArea(t *testing.T) {
	smaller := "https://cdn.example/c-400x600.jpg"
	larger := "https://cdn.example/c-800x1200.jpg"
	assert.Equal(t, larger, PickBetter(smaller, larger))
	assert.Equal(t, larger, PickBetter(larger, smaller))
}

func TestPickBetterKeepsCurrentOnTies(t *testing.T) {
	a := "https://cdn.example/a.jpg"
	b := "https://cdn.example/b.jpg"
	assert.Equal(t, a, PickBetter(a, b))
}

func TestSelectBestFoldOrderIndependentWinner(t *testing.T) {
	thumb := "https://cdn.example/thumb-100x100.jpg"
	large := "https://cdn.example/large-800x1200.jpg"
	assert.Equal(t, large, SelectBest([]string{thumb, large}))
	assert.Equal(t, large, SelectBest([]string{large, thumb}))
}

func TestSelectBestConsidersUpgradedVariants(t *testing.T) {
	got := SelectBest([]string{"https://thumbnail.komiku.org/covers/x.jpg"})
	assert.Equal(t, "https://img.komiku.org/covers/x.jpg", got)
}

func TestSelectBestPlaceholderWhenEmpty(t *testing.T) {
	assert.Equal(t, Placeholder, SelectBest(nil))
	assert.Equal(t, Placeholder, SelectBest([]string{"", ""}))
}
