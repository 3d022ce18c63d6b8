package embeddings

import (
	"context"
	"time"
)

// ProviderName identifies an embedding provider.
type ProviderName string

// Provider name constants.
const (
	ProviderONNX   ProviderName = "onnx"
	ProviderOpenAI ProviderName = "openai"
	ProviderCohere ProviderName = "cohere"
	ProviderGoogle ProviderName = "google"
	ProviderMock   ProviderName = "mock"
)

// Priority constants for provider ordering. Configured order overrides these.
const (
	PriorityPrimary        = 100 // Local sentence-transformer
	PriorityFallback       = 50  // First remote fallback
	PrioritySecondFallback = 25
	PriorityMock           = 0 // Mock provider for testing
	priorityStep           = 10
)

// Circuit breaker constants.
const (
	defaultCircuitThreshold = 5
)

// Shared error format strings.
const errRateLimiterFmt = "rate limiter: %w"

// EmbeddingResult contains one vector per input text and the provider that produced them.
// Vectors from one result always share an embedding space.
type EmbeddingResult struct {
	Vectors    [][]float32
	Dimensions int
	Provider   ProviderName
}

// Provider defines the interface for embedding providers.
type Provider interface {
	// Name returns the provider identifier.
	Name() ProviderName

	// Embed generates one embedding per text, in input order.
	Embed(ctx context.Context, texts []string) (EmbeddingResult, error)

	// IsAvailable returns true if the provider is currently available.
	IsAvailable() bool

	// Priority returns the provider priority (higher = preferred).
	Priority() int

	// Dimensions returns the native output dimensions of this provider.
	Dimensions() int
}

// CircuitBreakerConfig defines circuit breaker settings.
type CircuitBreakerConfig struct {
	Threshold  int           // Number of failures before opening circuit
	ResetAfter time.Duration // Time before attempting recovery
}

// DefaultCircuitBreakerConfig returns sensible defaults for circuit breaker.
func DefaultCircuitBreakerConfig() CircuitBreakerConfig {
	return CircuitBreakerConfig{
		Threshold:  defaultCircuitThreshold,
		ResetAfter: time.Minute,
	}
}

// priorityFor maps a position in the configured provider order to a priority.
func priorityFor(position, total int) int {
	return (total - position) * priorityStep
}

func newResult(name ProviderName, vectors [][]float32) EmbeddingResult {
	dims := 0
	if len(vectors) > 0 {
		dims = len(vectors[0])
	}

	return EmbeddingResult{
		Vectors:    vectors,
		Dimensions: dims,
		Provider:   name,
	}
}
