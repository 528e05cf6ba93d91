package models

// Anime is the normalized, internal form of an anime catalog entry.
//
// Every upstream payload shape is mapped into this structure first;
// everything downstream (feeds, search index, enrichment) works on it.
type Anime struct {
	Slug       string `json:"slug"`                  // canonical identity, dedupe key
	Title      string `json:"title"`                 // display title
	Poster     string `json:"poster"`                // cover image URL
	Banner     string `json:"banner,omitempty"`      // wide banner image URL (if any)
	Episode    string `json:"episode,omitempty"`     // latest episode label
	Type       string `json:"type,omitempty"`        // "TV", "Movie", ...
	ReleaseDay string `json:"release_day,omitempty"` // airing day for ongoing shows
	Href       string `json:"href,omitempty"`        // optional external link override
}

// Key returns the dedupe identity used by the feed pipeline.
func (a Anime) Key() string { return a.Slug }

// Comic is the normalized form of a manga/comic catalog entry.
type Comic struct {
	Slug        string   `json:"slug"`
	Title       string   `json:"title"`
	Cover       string   `json:"cover"`
	Description string   `json:"description,omitempty"`
	Status      string   `json:"status,omitempty"`
	Type        string   `json:"type,omitempty"`
	Rating      string   `json:"rating,omitempty"`
	Author      string   `json:"author,omitempty"`
	Genres      []string `json:"genres,omitempty"`
}

// Key returns the dedupe identity used by the feed pipeline.
func (c Comic) Key() string { return c.Slug }

// Chapter is a single chapter entry of a comic.
type Chapter struct {
	Slug        string `json:"slug"` // path segment used by the reader
	Title       string `json:"title"`
	Chapter     string `json:"chapter"`
	ReleaseDate string `json:"release_date,omitempty"`
}

// ChapterPages holds the page images of one chapter.
type ChapterPages struct {
	Images  []string `json:"images"`
	Title   string   `json:"title"`
	Chapter string   `json:"chapter"`
}
