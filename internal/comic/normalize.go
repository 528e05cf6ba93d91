package comic

import (
	"encoding/json"
	"fmt"
	"strings"

	"animix/internal/cover"
	"animix/pkg/models"
)

// Raw is one upstream comic entry before normalization.
type Raw map[string]any

// listPaths are the known locations of the comics array in a payload.
var listPaths = [][]string{
	{"comics"},
	{"results"},
	{"data", "comics"},
	{"data", "results"},
	{"data", "data"},
	{"data"},
}

// coverKeys is the priority order of cover candidate fields; every
// non-empty one feeds the cover selector.
var coverKeys = []string{
	"coverImage", "cover_image", "poster", "posterImage",
	"image", "image_url", "coverUrl", "cover_url", "thumbnail", "cover",
}

// boilerplate path segments never usable as slugs.
var boilerplateSegments = map[string]struct{}{
	"manga":        {},
	"detail-komik": {},
}

// ExtractList pulls the comics array out of a raw payload.
func ExtractList(payload json.RawMessage) []Raw {
	var doc map[string]any
	if err := json.Unmarshal(payload, &doc); err != nil {
		return nil
	}
	for _, path := range listPaths {
		cur := any(doc)
		for _, key := range path {
			m, ok := cur.(map[string]any)
			if !ok {
				cur = nil
				break
			}
			cur = m[key]
		}
		arr, ok := cur.([]any)
		if !ok {
			continue
		}
		items := make([]Raw, 0, len(arr))
		for _, v := range arr {
			if m, ok := v.(map[string]any); ok {
				items = append(items, Raw(m))
			}
		}
		return items
	}
	return nil
}

func str(item Raw, key string) string {
	s, _ := item[key].(string)
	return s
}

func firstString(item Raw, keys ...string) string {
	for _, key := range keys {
		if s := strings.TrimSpace(str(item, key)); s != "" {
			return s
		}
	}
	return ""
}

// label accepts string or numeric field values.
func label(item Raw, keys ...string) string {
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

// PickSlug extracts the item's identity: an explicit slug field, else the
// last non-boilerplate path segment of a link, else the slugified title.
func PickSlug(item Raw, title string) string {
	if slug := strings.TrimSpace(str(item, "slug")); slug != "" {
		return slug
	}
	for _, key := range []string{"link", "detailUrl", "url"} {
		link := strings.TrimSpace(str(item, key))
		if link == "" {
			continue
		}
		cleaned := strings.TrimPrefix(link, "http://")
		cleaned = strings.TrimPrefix(cleaned, "https://")
		if i := strings.Index(cleaned, "/"); i >= 0 && cleaned != link {
			cleaned = cleaned[i:]
		}
		cleaned = strings.Trim(cleaned, "/")
		parts := strings.Split(cleaned, "/")
		for i := len(parts) - 1; i >= 0; i-- {
			seg := parts[i]
			if seg == "" {
				continue
			}
			if _, boiler := boilerplateSegments[seg]; boiler {
				continue
			}
			return seg
		}
	}
	return models.Slugify(title)
}

// PickCover gathers every cover candidate field and runs the selector.
func PickCover(item Raw) string {
	candidates := make([]string, 0, len(coverKeys))
	for _, key := range coverKeys {
		if v := strings.TrimSpace(str(item, key)); v != "" {
			candidates = append(candidates, v)
		}
	}
	return cover.SelectBest(candidates)
}

func pickGenres(item Raw) []string {
	arr, ok := item["genres"].([]any)
	if !ok {
		return nil
	}
	genres := make([]string, 0, len(arr))
	for _, g := range arr {
		switch v := g.(type) {
		case string:
			genres = append(genres, v)
		case map[string]any:
			// detail payloads use {name, slug, link} genre objects
			if name, ok := v["name"].(string); ok && name != "" {
				genres = append(genres, name)
			}
		}
	}
	return genres
}

// Parse normalizes one raw list entry.
func Parse(item Raw) models.Comic {
	title := firstString(item, "title", "name")
	if title == "" {
		title = "Untitled"
	}
	return models.Comic{
		Slug:        PickSlug(item, title),
		Title:       title,
		Cover:       PickCover(item),
		Description: firstString(item, "synopsis", "description"),
		Status:      firstString(item, "status"),
		Type:        firstStringDefault(item, "Manga", "type"),
		Rating:      label(item, "rating"),
		Genres:      pickGenres(item),
	}
}

// ParseDetail normalizes a detail payload, preferring nested metadata
// fields where present and pinning the slug the caller looked up.
func ParseDetail(item Raw, slug string) models.Comic {
	parsed := Parse(item)
	parsed.Slug = slug

	if meta, ok := item["metadata"].(map[string]any); ok {
		m := Raw(meta)
		if s := firstString(m, "status"); s != "" {
			parsed.Status = s
		}
		if t := firstString(m, "type"); t != "" {
			parsed.Type = t
		}
		if a := firstString(m, "author"); a != "" {
			parsed.Author = a
		}
	}
	if parsed.Author == "" {
		parsed.Author = firstString(item, "author", "creator")
	}
	return parsed
}

func firstStringDefault(item Raw, def string, keys ...string) string {
	if s := firstString(item, keys...); s != "" {
		return s
	}
	return def
}

// IsMangaSource filters out manhwa and manhua entries by type or title.
func IsMangaSource(item Raw) bool {
	typ := strings.ToLower(str(item, "type"))
	title := strings.ToLower(str(item, "title"))
	if strings.Contains(typ, "manhwa") || strings.Contains(typ, "manhua") {
		return false
	}
	if strings.Contains(title, "manhwa") || strings.Contains(title, "manhua") {
		return false
	}
	return true
}
