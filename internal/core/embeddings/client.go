// Package embeddings provides sentence embeddings with multi-provider support.
//
// Providers, tried in configured order with automatic fallback:
//   - a local ONNX sentence-transformer (all-MiniLM-L6-v2 export)
//   - OpenAI text-embedding-3
//   - Cohere embed-v3
//   - Google gemini-embedding-001
//
// Each provider sits behind a circuit breaker and a rate limiter. A batch is
// always served by one provider so vectors within a result are comparable.
package embeddings

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	graderrors "github.com/lueurxax/answer-grader/internal/core/errors"
)

// Client defines the interface for embedding operations.
type Client interface {
	// Embed returns one vector per text, all from the same provider.
	Embed(ctx context.Context, texts []string) (EmbeddingResult, error)
}

// Ensure Registry implements Client interface.
var _ Client = (*Registry)(nil)

// Config holds configuration for creating an embedding client.
type Config struct {
	ONNX ONNXConfig

	OpenAIAPIKey    string
	OpenAIModel     string
	OpenAIRateLimit int

	CohereAPIKey    string
	CohereModel     string
	CohereRateLimit int

	GoogleAPIKey    string
	GoogleModel     string
	GoogleRateLimit int

	// ProviderOrder lists provider names, most preferred first.
	ProviderOrder []string

	CircuitBreakerConfig CircuitBreakerConfig

	// MockFallback registers the mock provider when nothing else is configured.
	MockFallback bool
}

// NewRegistryFromConfig creates a registry with every configured provider.
// A configured ONNX model that fails to load is fatal; unconfigured providers
// are skipped. With no providers at all the call fails unless MockFallback is set.
func NewRegistryFromConfig(ctx context.Context, cfg Config, logger *zerolog.Logger) (*Registry, error) {
	registry := NewRegistry(logger)

	order := cfg.ProviderOrder
	if len(order) == 0 {
		order = []string{string(ProviderONNX), string(ProviderOpenAI), string(ProviderCohere), string(ProviderGoogle)}
	}

	for i, name := range order {
		priority := priorityFor(i, len(order))

		var err error

		switch ProviderName(name) {
		case ProviderONNX:
			err = registerONNX(registry, cfg, priority, logger)
		case ProviderOpenAI:
			registerOpenAI(registry, cfg, priority)
		case ProviderCohere:
			registerCohere(registry, cfg, priority)
		case ProviderGoogle:
			err = registerGoogle(ctx, registry, cfg, priority)
		default:
			logger.Warn().Str(logKeyProvider, name).Msg("unknown embedding provider in order, skipping")
		}

		if err != nil {
			_ = registry.Close()
			return nil, err
		}
	}

	if registry.ProviderCount() == 0 {
		if !cfg.MockFallback {
			return nil, fmt.Errorf("%w: %w", graderrors.ErrModelUnavailable, ErrNoProvidersAvailable)
		}

		logger.Warn().Msg("no embedding providers configured, using mock provider")
		registry.Register(NewMockProvider(), cfg.CircuitBreakerConfig)
	}

	return registry, nil
}

func registerONNX(registry *Registry, cfg Config, priority int, logger *zerolog.Logger) error {
	if cfg.ONNX.ModelPath == "" && cfg.ONNX.TokenizerPath == "" {
		return nil
	}

	onnxCfg := cfg.ONNX
	onnxCfg.Priority = priority

	provider, err := NewONNXProvider(onnxCfg, logger)
	if err != nil {
		return err
	}

	registry.Register(provider, cfg.CircuitBreakerConfig)

	return nil
}

func registerOpenAI(registry *Registry, cfg Config, priority int) {
	if cfg.OpenAIAPIKey == "" {
		return
	}

	registry.Register(NewOpenAIProvider(OpenAIConfig{
		APIKey:    cfg.OpenAIAPIKey,
		Model:     cfg.OpenAIModel,
		RateLimit: cfg.OpenAIRateLimit,
		Priority:  priority,
	}), cfg.CircuitBreakerConfig)
}

func registerCohere(registry *Registry, cfg Config, priority int) {
	if cfg.CohereAPIKey == "" {
		return
	}

	registry.Register(NewCohereProvider(CohereConfig{
		APIKey:    cfg.CohereAPIKey,
		Model:     cfg.CohereModel,
		RateLimit: cfg.CohereRateLimit,
		Priority:  priority,
	}), cfg.CircuitBreakerConfig)
}

func registerGoogle(ctx context.Context, registry *Registry, cfg Config, priority int) error {
	if cfg.GoogleAPIKey == "" {
		return nil
	}

	provider, err := NewGoogleProvider(ctx, GoogleConfig{
		APIKey:    cfg.GoogleAPIKey,
		Model:     cfg.GoogleModel,
		RateLimit: cfg.GoogleRateLimit,
		Priority:  priority,
	})
	if err != nil {
		return fmt.Errorf("%w: %w", graderrors.ErrModelUnavailable, err)
	}

	registry.Register(provider, cfg.CircuitBreakerConfig)

	return nil
}
