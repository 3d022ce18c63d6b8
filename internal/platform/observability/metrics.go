package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	EvaluationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "grader_evaluations_total",
		Help: "The total number of graded answers by feedback category",
	}, []string{"feedback"})

	EvaluationDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "grader_evaluation_duration_seconds",
		Help:    "Duration of a single answer evaluation",
		Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
	})

	EvaluationErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "grader_evaluation_errors_total",
		Help: "The total number of failed evaluations by stage",
	}, []string{"stage"})

	DimensionScore = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "grader_dimension_score",
		Help:    "Distribution of per-dimension scores",
		Buckets: []float64{0, 0.1, 0.2, 0.3, 0.4, 0.5, 0.6, 0.7, 0.8, 0.9, 1},
	}, []string{"dimension"})

	ContradictionsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "grader_contradictions_total",
		Help: "The total number of numeric contradictions detected",
	})

	EmbeddingRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "grader_embedding_requests_total",
		Help: "Total embedding requests by provider and status",
	}, []string{"provider", "status"})

	EmbeddingLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "grader_embedding_latency_seconds",
		Help:    "Embedding request latency by provider",
		Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
	}, []string{"provider"})

	EmbeddingFallbacks = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "grader_embedding_fallbacks_total",
		Help: "Total embedding fallbacks from one provider to another",
	}, []string{"from", "to"})

	EmbeddingProviderAvailable = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "grader_embedding_provider_available",
		Help: "Whether an embedding provider is available (1) or not (0)",
	}, []string{"provider"})

	EmbeddingCache = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "grader_embedding_cache_total",
		Help: "Embedding cache lookups by result",
	}, []string{"result"})
)
