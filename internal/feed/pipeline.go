// Package feed merges, fills, ranks and paginates result sets coming from
// multiple inconsistent upstream sources into stable pages.
package feed

import (
	"hash/fnv"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// Keyed is any item with a stable dedupe key (the slug).
type Keyed interface {
	Key() string
}

// MergeBySlug dedupes primary then appends unseen secondary items.
// Primary order is preserved and primary wins on key collisions.
func MergeBySlug[T Keyed](primary, secondary []T) []T {
	seen := make(map[string]struct{}, len(primary)+len(secondary))
	merged := make([]T, 0, len(primary)+len(secondary))

	for _, item := range primary {
		if _, ok := seen[item.Key()]; ok {
			continue
		}
		seen[item.Key()] = struct{}{}
		merged = append(merged, item)
	}
	for _, item := range secondary {
		if _, ok := seen[item.Key()]; ok {
			continue
		}
		seen[item.Key()] = struct{}{}
		merged = append(merged, item)
	}
	return merged
}

// FillSection pads primary up to minCount with not-yet-seen fallback
// items. Primary is never reordered or truncated.
func FillSection[T Keyed](primary, fallback []T, minCount int) []T {
	if len(primary) >= minCount {
		return primary
	}
	seen := make(map[string]struct{}, len(primary))
	for _, item := range primary {
		seen[item.Key()] = struct{}{}
	}
	filled := make([]T, len(primary), minCount)
	copy(filled, primary)
	for _, item := range fallback {
		if len(filled) >= minCount {
			break
		}
		if _, ok := seen[item.Key()]; ok {
			continue
		}
		seen[item.Key()] = struct{}{}
		filled = append(filled, item)
	}
	return filled
}

// Paginate slices one page out of a pre-sorted, deduped list.
func Paginate[T any](items []T, page, perPage int) ([]T, bool) {
	if page < 1 {
		page = 1
	}
	start := (page - 1) * perPage
	if start >= len(items) {
		return []T{}, false
	}
	end := start + perPage
	hasNext := end < len(items)
	if end > len(items) {
		end = len(items)
	}
	return items[start:end], hasNext
}

var numberRe = regexp.MustCompile(`(\d+(\.\d+)?)`)

// NumericFrom extracts the first number out of a loosely typed field.
// Decimal commas are tolerated.
func NumericFrom(value any) float64 {
	switch v := value.(type) {
	case float64:
		return v
	case int:
		return float64(v)
	case string:
		m := numberRe.FindString(strings.Replace(v, ",", ".", 1))
		if m == "" {
			return 0
		}
		out, err := strconv.ParseFloat(m, 64)
		if err != nil {
			return 0
		}
		return out
	default:
		return 0
	}
}

// DateFrom parses a date string to unix millis, 0 when unparseable.
func DateFrom(value any) float64 {
	s, ok := value.(string)
	if !ok || s == "" {
		return 0
	}
	for _, layout := range []string{
		time.RFC3339,
		"2006-01-02T15:04:05",
		"2006-01-02 15:04:05",
		"2006-01-02",
		"January 2, 2006",
		"Jan 2, 2006",
		"02/01/2006",
	} {
		if t, err := time.Parse(layout, s); err == nil {
			return float64(t.UnixMilli())
		}
	}
	return 0
}

var latestFields = []string{
	"latestChapter", "lastChapter", "chapter", "latest", "update", "updated",
}

var latestDateFields = []string{
	"releaseDate", "lastReleaseDate", "latestReleaseDate", "date",
}

var popularFields = []string{
	"views", "view", "viewer", "rating", "score", "follower", "followers",
	"favorite", "favorites", "likes", "popularity",
}

// LatestScore scores a raw item for "latest" feeds: the highest value
// among its chapter-ish and release-date-ish fields.
func LatestScore(item map[string]any) float64 {
	best := 0.0
	for _, field := range latestFields {
		if s := NumericFrom(item[field]); s > best {
			best = s
		}
	}
	for _, field := range latestDateFields {
		if s := DateFrom(item[field]); s > best {
			best = s
		}
	}
	return best
}

// PopularScore scores a raw item for "popular" feeds.
func PopularScore(item map[string]any) float64 {
	best := 0.0
	for _, field := range popularFields {
		if s := NumericFrom(item[field]); s > best {
			best = s
		}
	}
	return best
}

// FallbackScore gives items with no real signal a deterministic rank so
// pages stay stable across requests. Stable per process only; not a
// cross-version ordering guarantee.
func FallbackScore(feedType, key string) float64 {
	h := fnv.New32a()
	h.Write([]byte(feedType + ":" + key))
	return float64(h.Sum32())
}

// IsGarbage flags spam entries by their combined title+chapter text.
func IsGarbage(title, chapter string) bool {
	lower := strings.ToLower(title + " " + chapter)
	return strings.Contains(lower, "apk") || strings.Contains(lower, "download")
}
