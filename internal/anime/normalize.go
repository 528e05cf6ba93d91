package anime

import (
	"encoding/json"
	"fmt"
	"strings"

	"animix/pkg/models"
)

// Raw is one upstream list entry before normalization. Upstream payload
// shapes vary wildly, so extraction is table-driven: ordered candidate
// keys, first non-empty wins, safe defaults everywhere.
type Raw map[string]any

// listPaths are the known locations of the item array inside a payload.
var listPaths = [][]string{
	{"animes"},
	{"animeList"},
	{"result", "animes"},
	{"result", "animeList"},
	{"data", "animes"},
	{"data", "animeList"},
	{"data", "ongoing", "animeList"},
	{"data", "completed", "animeList"},
	{"ongoing", "animeList"},
	{"completed", "animeList"},
}

var (
	titleKeys      = []string{"title", "name", "animeTitle"}
	posterKeys     = []string{"poster", "image", "thumbnail", "cover", "posterImage"}
	episodeKeys    = []string{"episode", "episodes", "latestEpisode"}
	typeKeys       = []string{"type", "format"}
	releaseDayKeys = []string{"release_day", "releaseDay", "day"}
	bannerKeys     = []string{"banner", "bannerImage", "background", "backdrop"}
	slugKeys       = []string{"slug", "animeId", "id"}
)

// ExtractList pulls the item array out of a raw payload, trying each
// known shape in priority order.
func ExtractList(payload json.RawMessage) []Raw {
	var doc map[string]any
	if err := json.Unmarshal(payload, &doc); err != nil {
		return nil
	}
	for _, path := range listPaths {
		if items := listAt(doc, path); items != nil {
			return items
		}
	}
	return nil
}

func listAt(doc map[string]any, path []string) []Raw {
	cur := any(doc)
	for _, key := range path {
		m, ok := cur.(map[string]any)
		if !ok {
			return nil
		}
		cur = m[key]
	}
	arr, ok := cur.([]any)
	if !ok {
		return nil
	}
	items := make([]Raw, 0, len(arr))
	for _, v := range arr {
		if m, ok := v.(map[string]any); ok {
			items = append(items, Raw(m))
		}
	}
	return items
}

// extractObject finds a single item object in a payload, trying each
// path in order and accepting the first candidate that carries a title.
func extractObject(payload json.RawMessage, paths [][]string) Raw {
	var doc map[string]any
	if err := json.Unmarshal(payload, &doc); err != nil {
		return nil
	}
	for _, path := range paths {
		cur := any(doc)
		for _, key := range path {
			m, ok := cur.(map[string]any)
			if !ok {
				cur = nil
				break
			}
			cur = m[key]
		}
		if m, ok := cur.(map[string]any); ok && pickString(Raw(m), titleKeys) != "" {
			return Raw(m)
		}
	}
	if pickString(Raw(doc), titleKeys) != "" {
		return Raw(doc)
	}
	return nil
}

// HasNextPage inspects a payload's pagination block; a non-empty page is
// assumed to have a successor when the block is missing.
func HasNextPage(payload json.RawMessage, page, itemCount int) bool {
	var doc struct {
		Pagination *struct {
			HasNextPage *bool `json:"hasNextPage"`
			HasNext     *bool `json:"hasNext"`
			NextPage    *int  `json:"nextPage"`
		} `json:"pagination"`
	}
	if err := json.Unmarshal(payload, &doc); err == nil && doc.Pagination != nil {
		p := doc.Pagination
		if p.HasNextPage != nil && *p.HasNextPage {
			return true
		}
		if p.HasNext != nil && *p.HasNext {
			return true
		}
		if p.NextPage != nil && *p.NextPage > page {
			return true
		}
	}
	return itemCount > 0
}

func pickString(item Raw, keys []string) string {
	for _, key := range keys {
		if s, ok := item[key].(string); ok && strings.TrimSpace(s) != "" {
			return s
		}
	}
	return ""
}

// pickLabel also accepts numbers, which some sources use for episodes.
func pickLabel(item Raw, keys []string) string {
	for _, key := range keys {
		switch v := item[key].(type) {
		case string:
			if strings.TrimSpace(v) != "" {
				return v
			}
		case float64:
			if v == float64(int64(v)) {
				return fmt.Sprintf("%d", int64(v))
			}
			return fmt.Sprintf("%g", v)
		}
	}
	return ""
}

func pickSlug(item Raw, title string) string {
	if slug := pickString(item, slugKeys); slug != "" {
		return slug
	}
	if href, ok := item["href"].(string); ok && href != "" {
		trimmed := strings.TrimRight(strings.SplitN(href, "?", 2)[0], "/")
		parts := strings.Split(trimmed, "/")
		for i := len(parts) - 1; i >= 0; i-- {
			if parts[i] != "" {
				return parts[i]
			}
		}
	}
	return models.Slugify(title)
}

// Parse normalizes one raw upstream entry into the canonical item.
func Parse(item Raw) models.Anime {
	title := pickString(item, titleKeys)
	if title == "" {
		title = "Untitled"
	}
	return models.Anime{
		Slug:       pickSlug(item, title),
		Title:      title,
		Poster:     pickString(item, posterKeys),
		Banner:     pickString(item, bannerKeys),
		Episode:    pickLabel(item, episodeKeys),
		Type:       pickString(item, typeKeys),
		ReleaseDay: pickString(item, releaseDayKeys),
	}
}

// ParseList normalizes a whole extracted list.
func ParseList(items []Raw) []models.Anime {
	out := make([]models.Anime, 0, len(items))
	for _, item := range items {
		out = append(out, Parse(item))
	}
	return out
}
