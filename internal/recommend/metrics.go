package recommend

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	recommendationRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "recommendation_requests_total",
		Help: "Recommendation requests by requested type and strategy that served them",
	}, []string{"requested", "served"})

	recommendationFallbacks = promauto.NewCounter(prometheus.CounterOpts{
		Name: "recommendation_fallbacks_total",
		Help: "Requests answered by a fallback strategy",
	})

	recommendationDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "recommendation_duration_seconds",
		Help:    "End-to-end recommendation latency",
		Buckets: prometheus.DefBuckets,
	})

	embeddingCacheHits = promauto.NewCounter(prometheus.CounterOpts{
		Name: "embedding_cache_hits_total",
		Help: "Embedding vectors served from cache",
	})

	embeddingCacheMisses = promauto.NewCounter(prometheus.CounterOpts{
		Name: "embedding_cache_misses_total",
		Help: "Embedding cache lookups that fell through to the provider",
	})

	embeddingCacheBypass = promauto.NewCounter(prometheus.CounterOpts{
		Name: "embedding_cache_bypass_total",
		Help: "Embedding computations with no cache configured",
	})

	embeddingProviderErrors = promauto.NewCounter(prometheus.CounterOpts{
		Name: "embedding_provider_errors_total",
		Help: "Failed embedding provider calls",
	})
)
