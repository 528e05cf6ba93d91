package utils

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds every tunable of the aggregator, loaded from environment
// variables with defaults that match production behaviour.
type Config struct {
	ListenAddr string

	// Upstream bases. AnimeAPIBase is required for anime request paths and
	// its absence surfaces as a configuration error in the handlers.
	AnimeAPIBase     string
	MangaAPIBase     string
	AniListEndpoint  string
	ConsumetBase     string
	ConsumetProvider string

	CacheEnabled  bool
	CacheTTL      time.Duration
	CacheErrorTTL time.Duration

	RateLimitEnabled bool
	RateLimit        int
	RateLimitWindow  time.Duration

	SearchIndexEnabled      bool
	SearchIndexTTL          time.Duration
	SearchMaxPagesPerLetter int
	SearchMaxItems          int
	SearchMaxRequests       int
	SearchMaxRemoteQueries  int
	SearchRequestDelay      time.Duration
	SearchIndexWait         time.Duration

	EnhanceConcurrency int
}

// Load reads the configuration from the environment.
func Load() Config {
	return Config{
		ListenAddr: envString("ANIMIX_LISTEN_ADDR", ":8080"),

		AnimeAPIBase:     strings.TrimRight(os.Getenv("ANIMIX_API_URL"), "/"),
		MangaAPIBase:     strings.TrimRight(envString("ANIMIX_MANGA_API_URL", "https://www.sankavollerei.com/comic"), "/"),
		AniListEndpoint:  envString("ANIMIX_ANILIST_URL", "https://graphql.anilist.co"),
		ConsumetBase:     strings.TrimRight(os.Getenv("ANIMIX_CONSUMET_URL"), "/"),
		ConsumetProvider: envString("ANIMIX_CONSUMET_PROVIDER", "hianime"),

		CacheEnabled:  envBool("ANIMIX_API_CACHE", true),
		CacheTTL:      envDurationMS("ANIMIX_API_CACHE_TTL_MS", 5*time.Minute),
		CacheErrorTTL: envDurationMS("ANIMIX_API_CACHE_ERROR_TTL_MS", 20*time.Second),

		RateLimitEnabled: envBool("ANIMIX_RATE_LIMIT_ENABLED", true),
		RateLimit:        envInt("ANIMIX_RATE_LIMIT_PER_MIN", 70),
		RateLimitWindow:  envDurationMS("ANIMIX_RATE_LIMIT_WINDOW_MS", time.Minute),

		SearchIndexEnabled:      envBool("ANIMIX_SEARCH_ENABLE_INDEX", false),
		SearchIndexTTL:          envDurationMS("ANIMIX_SEARCH_INDEX_TTL_MS", 6*time.Hour),
		SearchMaxPagesPerLetter: envInt("ANIMIX_SEARCH_MAX_PAGES_PER_LETTER", 200),
		SearchMaxItems:          envInt("ANIMIX_SEARCH_MAX_ITEMS", 60000),
		SearchMaxRequests:       envInt("ANIMIX_SEARCH_MAX_REQUESTS", 1500),
		SearchMaxRemoteQueries:  envInt("ANIMIX_SEARCH_MAX_REMOTE_QUERIES", 3),
		SearchRequestDelay:      envDurationMS("ANIMIX_SEARCH_INDEX_DELAY_MS", 300*time.Millisecond),
		SearchIndexWait:         envDurationMS("ANIMIX_SEARCH_INDEX_WAIT_MS", 1200*time.Millisecond),

		EnhanceConcurrency: envInt("ANIMIX_ENHANCE_CONCURRENCY", 6),
	}
}

func envString(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}

func envInt(key string, def int) int {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}

func envBool(key string, def bool) bool {
	switch strings.ToLower(strings.TrimSpace(os.Getenv(key))) {
	case "true", "1", "yes":
		return true
	case "false", "0", "no":
		return false
	default:
		return def
	}
}

// envDurationMS reads a millisecond count, matching the *_MS variable names.
func envDurationMS(key string, def time.Duration) time.Duration {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		return def
	}
	return time.Duration(n) * time.Millisecond
}
