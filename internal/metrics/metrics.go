package metrics

import "github.com/prometheus/client_golang/prometheus"

var (
	HTTPRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "animix",
		Name:      "http_requests_total",
		Help:      "Total HTTP requests by method, path and status code.",
	}, []string{"method", "path", "status"})

	HTTPRequestDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "animix",
		Name:      "http_request_duration_seconds",
		Help:      "HTTP request duration in seconds.",
		Buckets:   []float64{0.05, 0.1, 0.3, 0.5, 1, 2, 5, 10, 30},
	}, []string{"method", "path"})

	FetchCacheHits = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "animix",
		Name:      "fetch_cache_hits_total",
		Help:      "Total upstream fetches served from the response cache.",
	})

	FetchCacheMisses = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "animix",
		Name:      "fetch_cache_misses_total",
		Help:      "Total upstream fetches that went to the network.",
	})

	UpstreamErrorsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "animix",
		Name:      "upstream_errors_total",
		Help:      "Total failed upstream fetches by kind (http, transport).",
	}, []string{"kind"})

	RateLimitWaitSeconds = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "animix",
		Name:      "rate_limit_wait_seconds",
		Help:      "Time spent waiting for a rate-limit admission slot.",
		Buckets:   []float64{0.05, 0.1, 0.5, 1, 2, 5, 15, 30, 60},
	})

	RateLimitUsed = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "animix",
		Name:      "rate_limit_window_used",
		Help:      "Admissions currently counted inside the rate-limit window.",
	})

	SearchIndexSize = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "animix",
		Name:      "search_index_size",
		Help:      "Number of items in the fuzzy search index.",
	})

	SearchIndexBuilds = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "animix",
		Name:      "search_index_builds_total",
		Help:      "Total completed search index builds.",
	})
)

// Register registers every collector on the given registerer.
func Register(reg prometheus.Registerer) {
	reg.MustRegister(
		HTTPRequestsTotal,
		HTTPRequestDuration,
		FetchCacheHits,
		FetchCacheMisses,
		UpstreamErrorsTotal,
		RateLimitWaitSeconds,
		RateLimitUsed,
		SearchIndexSize,
		SearchIndexBuilds,
	)
}
