package search

import (
	"fmt"

	"github.com/blevesearch/bleve/v2"

	"animix/pkg/models"
)

// Match is one fuzzy hit. Score is a distance: lower is better.
type Match struct {
	Slug  string
	Score float64
}

// Matcher is the fuzzy-search structure behind the index. Kept as a small
// interface so the string-similarity implementation can be swapped
// without touching the builder.
type Matcher interface {
	Index(items []models.Anime) error
	Query(term string, limit int) []Match
}

// bleveMatcher backs Matcher with an in-memory bleve index weighted on
// title primarily and slug secondarily.
type bleveMatcher struct {
	index bleve.Index
}

type indexDoc struct {
	Title string `json:"title"`
	Slug  string `json:"slug"`
}

// NewBleveMatcher returns an empty in-memory matcher.
func NewBleveMatcher() Matcher {
	return &bleveMatcher{}
}

func (m *bleveMatcher) Index(items []models.Anime) error {
	mapping := bleve.NewIndexMapping()

	doc := bleve.NewDocumentMapping()
	titleField := bleve.NewTextFieldMapping()
	doc.AddFieldMappingsAt("title", titleField)
	slugField := bleve.NewTextFieldMapping()
	doc.AddFieldMappingsAt("slug", slugField)
	mapping.DefaultMapping = doc

	index, err := bleve.NewMemOnly(mapping)
	if err != nil {
		return fmt.Errorf("search: create index: %w", err)
	}

	batch := index.NewBatch()
	for _, item := range items {
		if item.Slug == "" {
			continue
		}
		if err := batch.Index(item.Slug, indexDoc{
			Title: models.NormalizeTitle(item.Title),
			Slug:  item.Slug,
		}); err != nil {
			return fmt.Errorf("search: index %s: %w", item.Slug, err)
		}
		if batch.Size() >= 500 {
			if err := index.Batch(batch); err != nil {
				return fmt.Errorf("search: flush batch: %w", err)
			}
			batch = index.NewBatch()
		}
	}
	if batch.Size() > 0 {
		if err := index.Batch(batch); err != nil {
			return fmt.Errorf("search: flush batch: %w", err)
		}
	}

	// wholesale replacement: the old index is dropped with its reference
	if m.index != nil {
		m.index.Close()
	}
	m.index = index
	return nil
}

func (m *bleveMatcher) Query(term string, limit int) []Match {
	if m.index == nil || term == "" {
		return nil
	}

	titleQuery := bleve.NewMatchQuery(term)
	titleQuery.SetField("title")
	titleQuery.SetFuzziness(1)
	titleQuery.SetBoost(0.8)

	slugQuery := bleve.NewMatchQuery(term)
	slugQuery.SetField("slug")
	slugQuery.SetFuzziness(1)
	slugQuery.SetBoost(0.2)

	req := bleve.NewSearchRequestOptions(
		bleve.NewDisjunctionQuery(titleQuery, slugQuery), limit, 0, false,
	)
	res, err := m.index.Search(req)
	if err != nil {
		return nil
	}

	matches := make([]Match, 0, len(res.Hits))
	for _, hit := range res.Hits {
		// bleve scores are higher-is-better relevance; invert to the
		// lowest-distance convention the builder sorts by
		matches = append(matches, Match{Slug: hit.ID, Score: 1 / (1 + hit.Score)})
	}
	return matches
}
