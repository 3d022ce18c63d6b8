package embeddings

import (
	"time"

	"github.com/lueurxax/answer-grader/internal/platform/observability"
)

// Metric label constants.
const (
	StatusSuccess = "success"
	StatusError   = "error"

	cacheResultHit    = "hit"
	cacheResultMiss   = "miss"
	cacheResultError  = "error"
	cacheResultStored = "stored"
)

// RecordEmbeddingRequest records an embedding request metric.
func RecordEmbeddingRequest(provider string, success bool) {
	status := StatusSuccess
	if !success {
		status = StatusError
	}

	observability.EmbeddingRequests.WithLabelValues(provider, status).Inc()
}

// RecordEmbeddingLatency records embedding request latency.
func RecordEmbeddingLatency(provider string, duration time.Duration) {
	observability.EmbeddingLatency.WithLabelValues(provider).Observe(duration.Seconds())
}

// RecordEmbeddingFallback records a fallback event.
func RecordEmbeddingFallback(fromProvider, toProvider string) {
	observability.EmbeddingFallbacks.WithLabelValues(fromProvider, toProvider).Inc()
}

// SetEmbeddingProviderAvailable sets the availability status of a provider.
func SetEmbeddingProviderAvailable(provider string, available bool) {
	value := 0.0
	if available {
		value = 1.0
	}

	observability.EmbeddingProviderAvailable.WithLabelValues(provider).Set(value)
}

func recordCache(result string, n int) {
	if n > 0 {
		observability.EmbeddingCache.WithLabelValues(result).Add(float64(n))
	}
}
