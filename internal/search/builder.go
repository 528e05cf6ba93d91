// Package search maintains the in-memory fuzzy-searchable index of the
// primary catalog, built by crawling the alphabetical listing, and merges
// local fuzzy hits with remote search results.
package search

import (
	"context"
	"log"
	"regexp"
	"sort"
	"strings"
	"sync"
	"time"

	"animix/internal/anime"
	"animix/internal/feed"
	"animix/internal/metrics"
	"animix/pkg/models"
)

// letters is the fixed 27-bucket alphabet partition crawled per build.
var letters = func() []string {
	out := []string{"0-9"}
	for r := 'A'; r <= 'Z'; r++ {
		out = append(out, string(r))
	}
	return out
}()

const (
	fuzzyPerVariant = 60
	fuzzyResultCap  = 48
	thinResultCount = 6
)

// Config tunes the index build and search behaviour.
type Config struct {
	Enabled           bool
	TTL               time.Duration
	MaxPagesPerLetter int
	MaxItems          int
	MaxRequests       int
	MaxRemoteQueries  int
	RequestDelay      time.Duration
	IndexWait         time.Duration
}

// Status is the externally visible index state.
type Status struct {
	Size     int   `json:"size"`
	BuiltAt  int64 `json:"builtAt"`
	Building bool  `json:"building"`
	Enabled  bool  `json:"enabled"`
}

// Builder owns the index cache. At most one build is in flight at a time;
// concurrent callers join the same build instead of starting a second
// crawl. The item list is wholesale-replaced when a build completes.
type Builder struct {
	cfg    Config
	client *anime.Client

	mu       sync.Mutex
	items    []models.Anime
	bySlug   map[string]models.Anime
	builtAt  time.Time
	building chan struct{} // closed when the in-flight build completes
	matcher  Matcher

	newMatcher func() Matcher
}

// NewBuilder creates an index builder over the given catalog client.
func NewBuilder(client *anime.Client, cfg Config) *Builder {
	return &Builder{
		cfg:        cfg,
		client:     client,
		bySlug:     make(map[string]models.Anime),
		newMatcher: NewBleveMatcher,
	}
}

var (
	seasonNumRe = regexp.MustCompile(`\bseason (\d+)\b`)
	sNumRe      = regexp.MustCompile(`\bs(\d+)\b`)
)

func (b *Builder) freshLocked() bool {
	return len(b.items) > 0 && time.Since(b.builtAt) < b.cfg.TTL
}

// EnsureIndex returns the current items, building the index first when it
// is stale. Safe to call concurrently; all callers of an in-flight build
// wait on the same handle.
func (b *Builder) EnsureIndex(ctx context.Context) []models.Anime {
	b.mu.Lock()
	if !b.cfg.Enabled || b.freshLocked() {
		items := b.items
		b.mu.Unlock()
		return items
	}
	if b.building != nil {
		done := b.building
		b.mu.Unlock()
		select {
		case <-done:
		case <-ctx.Done():
		}
		return b.Items()
	}
	done := make(chan struct{})
	b.building = done
	b.mu.Unlock()

	b.build(ctx, done)
	return b.Items()
}

// StartBuild kicks a build in the background when one is needed.
func (b *Builder) StartBuild(ctx context.Context) {
	b.mu.Lock()
	if !b.cfg.Enabled || b.freshLocked() || b.building != nil {
		b.mu.Unlock()
		return
	}
	done := make(chan struct{})
	b.building = done
	b.mu.Unlock()

	go b.build(ctx, done)
}

// Items returns the current item snapshot.
func (b *Builder) Items() []models.Anime {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.items
}

// Status reports index size, build time and in-flight state.
func (b *Builder) Status() Status {
	b.mu.Lock()
	defer b.mu.Unlock()
	builtAt := int64(0)
	if !b.builtAt.IsZero() {
		builtAt = b.builtAt.UnixMilli()
	}
	return Status{
		Size:     len(b.items),
		BuiltAt:  builtAt,
		Building: b.building != nil,
		Enabled:  b.cfg.Enabled,
	}
}

// build crawls the full alphabet partition and swaps the index in.
func (b *Builder) build(ctx context.Context, done chan struct{}) {
	defer func() {
		b.mu.Lock()
		b.building = nil
		b.mu.Unlock()
		close(done)
	}()

	start := time.Now()
	items := make([]models.Anime, 0, 1024)
	seen := make(map[string]struct{})
	requests := 0

	for _, letter := range letters {
		for page := 1; page <= b.cfg.MaxPagesPerLetter; page++ {
			if requests >= b.cfg.MaxRequests || len(items) >= b.cfg.MaxItems {
				break
			}
			if ctx.Err() != nil {
				log.Printf("[search] index build cancelled after %d items", len(items))
				return
			}

			pageItems, err := b.client.ListPage(ctx, letter, page)
			requests++
			if err != nil || len(pageItems) == 0 {
				break
			}
			for _, item := range pageItems {
				if _, ok := seen[item.Slug]; ok {
					continue
				}
				seen[item.Slug] = struct{}{}
				items = append(items, item)
			}

			if b.cfg.RequestDelay > 0 {
				select {
				case <-time.After(b.cfg.RequestDelay):
				case <-ctx.Done():
					return
				}
			}
		}
		if requests >= b.cfg.MaxRequests || len(items) >= b.cfg.MaxItems {
			break
		}
	}

	matcher := b.newMatcher()
	if err := matcher.Index(items); err != nil {
		log.Printf("[search] matcher build failed: %v", err)
		return
	}

	bySlug := make(map[string]models.Anime, len(items))
	for _, item := range items {
		bySlug[item.Slug] = item
	}

	b.mu.Lock()
	b.items = items
	b.bySlug = bySlug
	b.builtAt = time.Now()
	b.matcher = matcher
	b.mu.Unlock()

	metrics.SearchIndexSize.Set(float64(len(items)))
	metrics.SearchIndexBuilds.Inc()
	log.Printf("[search] index built: %d items, %d requests, %s", len(items), requests, time.Since(start).Round(time.Millisecond))
}

// Fuzzy searches the local index: the query is expanded into variants,
// per-variant hits are unioned keeping each slug's best score, and the
// union is returned ascending by score, capped.
func (b *Builder) Fuzzy(query string) []models.Anime {
	b.mu.Lock()
	matcher := b.matcher
	bySlug := b.bySlug
	b.mu.Unlock()
	if matcher == nil {
		return nil
	}

	type scored struct {
		item  models.Anime
		score float64
	}
	best := make(map[string]scored)
	for _, variant := range expandQueryVariants(query) {
		for _, match := range matcher.Query(variant, fuzzyPerVariant) {
			item, ok := bySlug[match.Slug]
			if !ok {
				continue
			}
			prev, ok := best[match.Slug]
			if !ok || match.Score < prev.score {
				best[match.Slug] = scored{item: item, score: match.Score}
			}
		}
	}

	ranked := make([]scored, 0, len(best))
	for _, s := range best {
		ranked = append(ranked, s)
	}
	sort.SliceStable(ranked, func(i, j int) bool { return ranked[i].score < ranked[j].score })
	if len(ranked) > fuzzyResultCap {
		ranked = ranked[:fuzzyResultCap]
	}

	out := make([]models.Anime, len(ranked))
	for i, s := range ranked {
		out[i] = s.item
	}
	return out
}

// expandQueryVariants generates season-form and stopword variants of a
// normalized query, original first.
func expandQueryVariants(query string) []string {
	var variants []string
	seen := make(map[string]struct{})
	add := func(v string) {
		v = strings.TrimSpace(v)
		if v == "" {
			return
		}
		if _, ok := seen[v]; ok {
			return
		}
		seen[v] = struct{}{}
		variants = append(variants, v)
	}

	add(query)

	cleaned := query
	for _, stop := range []string{"sub", "dub", "subbed", "season", "part", "movie"} {
		cleaned = strings.ReplaceAll(cleaned, " "+stop+" ", " ")
		cleaned = strings.TrimSuffix(cleaned, " "+stop)
		cleaned = strings.TrimPrefix(cleaned, stop+" ")
	}
	cleaned = strings.Join(strings.Fields(cleaned), " ")
	add(cleaned)

	if m := seasonNumRe.FindStringSubmatch(query); m != nil {
		add(seasonNumRe.ReplaceAllString(query, "s"+m[1]))
	}
	if m := sNumRe.FindStringSubmatch(query); m != nil {
		add(sNumRe.ReplaceAllString(query, "season "+m[1]))
	}

	return variants
}

// buildRemoteQueries derives the remote query forms: the raw query, its
// normalized form, slug-like variants, and season-form expansions.
func buildRemoteQueries(raw, normalized string, max int) []string {
	var queries []string
	seen := make(map[string]struct{})
	add := func(v string) {
		v = strings.TrimSpace(v)
		if v == "" {
			return
		}
		if _, ok := seen[v]; ok {
			return
		}
		seen[v] = struct{}{}
		queries = append(queries, v)
	}

	add(raw)
	add(normalized)
	add(strings.ReplaceAll(normalized, " ", "-"))
	for _, variant := range expandQueryVariants(normalized) {
		add(variant)
		add(strings.ReplaceAll(variant, " ", "-"))
	}

	if len(queries) > max {
		queries = queries[:max]
	}
	return queries
}

// Search runs remote search and local fuzzy search and merges them,
// remote results first. When the index is cold but a build is in flight
// and remote results are thin, the build is raced against a wait budget;
// if the timeout wins the build continues in the background and the
// caller proceeds with what it has.
func (b *Builder) Search(ctx context.Context, rawQuery string) []models.Anime {
	raw := strings.TrimSpace(rawQuery)
	normalized := models.NormalizeTitle(raw)
	if normalized == "" {
		return []models.Anime{}
	}

	b.mu.Lock()
	hasIndex := b.freshLocked()
	b.mu.Unlock()

	if b.cfg.Enabled && !hasIndex {
		b.StartBuild(context.WithoutCancel(ctx))
	}

	remoteResults := b.remoteSearch(ctx, buildRemoteQueries(raw, normalized, b.cfg.MaxRemoteQueries))

	if !hasIndex || !b.cfg.Enabled {
		b.mu.Lock()
		building := b.building
		b.mu.Unlock()
		if building != nil && len(remoteResults) < thinResultCount {
			select {
			case <-building:
			case <-time.After(b.cfg.IndexWait):
			case <-ctx.Done():
			}
		}
	}

	local := b.Fuzzy(normalized)
	if len(local) == 0 {
		return remoteResults
	}
	return feed.MergeBySlug(remoteResults, local)
}

// remoteSearch fans the query forms out to the upstream search endpoint
// and merges the result lists by slug, first form winning.
func (b *Builder) remoteSearch(ctx context.Context, queries []string) []models.Anime {
	lists := make([][]models.Anime, len(queries))
	type job struct{ i int }
	done := make(chan job, len(queries))
	for i, q := range queries {
		go func(i int, q string) {
			items, err := b.client.Search(ctx, q)
			if err != nil {
				log.Printf("[search] remote query %q failed: %v", q, err)
			}
			lists[i] = items
			done <- job{i}
		}(i, q)
	}
	for range queries {
		<-done
	}

	if len(lists) == 0 {
		return nil
	}
	merged := lists[0]
	for _, rest := range lists[1:] {
		merged = feed.MergeBySlug(merged, rest)
	}
	return merged
}
