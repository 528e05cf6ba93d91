package main

import (
	"context"
	"log"
	"time"

	"animix/internal/anime"
	"animix/internal/fetch"
	"animix/internal/search"
	"animix/pkg/utils"
)

func main() {
	cfg := utils.Load()
	if cfg.AnimeAPIBase == "" {
		log.Fatal("ANIMIX_API_URL is required")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Minute)
	defer cancel()

	cache := fetch.NewStore(cfg.CacheEnabled)
	limiter := fetch.NewLimiter(cfg.RateLimit, cfg.RateLimitWindow, cfg.RateLimitEnabled)
	fetcher := fetch.NewClient(cache, limiter, cfg.AnimeAPIBase, cfg.CacheTTL, cfg.CacheErrorTTL)
	client := anime.NewClient(fetcher, cfg.AnimeAPIBase)

	builder := search.NewBuilder(client, search.Config{
		Enabled:           true,
		TTL:               cfg.SearchIndexTTL,
		MaxPagesPerLetter: cfg.SearchMaxPagesPerLetter,
		MaxItems:          cfg.SearchMaxItems,
		MaxRequests:       cfg.SearchMaxRequests,
		MaxRemoteQueries:  cfg.SearchMaxRemoteQueries,
		RequestDelay:      cfg.SearchRequestDelay,
		IndexWait:         cfg.SearchIndexWait,
	})

	started := time.Now()
	items := builder.EnsureIndex(ctx)
	status := builder.Status()

	log.Printf("crawl done in %s: %d items indexed", time.Since(started).Round(time.Second), len(items))
	log.Printf("index status: size=%d builtAt=%d building=%t", status.Size, status.BuiltAt, status.Building)
}
