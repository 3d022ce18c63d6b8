package embeddings

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/rs/zerolog"

	graderrors "github.com/lueurxax/answer-grader/internal/core/errors"
)

// Registry errors.
var (
	ErrNoProvidersAvailable = errors.New("no embedding providers available")
	ErrAllProvidersFailed   = errors.New("all embedding providers failed")
	ErrVectorCountMismatch  = errors.New("provider returned wrong number of vectors")
)

// Log key constants.
const (
	logKeyProvider     = "provider"
	logKeyFromProvider = "from_provider"
	logKeyTexts        = "texts"
)

// Registry manages embedding providers with fallback support.
type Registry struct {
	mu              sync.RWMutex
	providers       map[ProviderName]Provider
	order           []ProviderName // Priority order (highest first)
	circuitBreakers map[ProviderName]*CircuitBreaker
	logger          *zerolog.Logger
}

// NewRegistry creates a new provider registry.
func NewRegistry(logger *zerolog.Logger) *Registry {
	return &Registry{
		providers:       make(map[ProviderName]Provider),
		order:           make([]ProviderName, 0),
		circuitBreakers: make(map[ProviderName]*CircuitBreaker),
		logger:          logger,
	}
}

// Register adds a provider to the registry.
func (r *Registry) Register(p Provider, cfg CircuitBreakerConfig) {
	r.mu.Lock()
	defer r.mu.Unlock()

	name := p.Name()
	if _, exists := r.providers[name]; !exists {
		r.order = append(r.order, name)
	}

	r.providers[name] = p
	r.circuitBreakers[name] = NewCircuitBreaker(name, cfg, r.logger)

	r.sortProvidersByPriority()

	SetEmbeddingProviderAvailable(string(name), p.IsAvailable())

	r.logger.Info().
		Str(logKeyProvider, string(name)).
		Int("priority", p.Priority()).
		Int("dimensions", p.Dimensions()).
		Msg("registered embedding provider")
}

// Embed embeds all texts with the first provider that succeeds. A single
// provider serves the whole batch so the vectors are comparable.
func (r *Registry) Embed(ctx context.Context, texts []string) (EmbeddingResult, error) {
	if len(texts) == 0 {
		return EmbeddingResult{}, nil
	}

	r.mu.RLock()
	providers := r.getActiveProviders()

	primaryProvider := ""
	if len(r.order) > 0 {
		primaryProvider = string(r.order[0])
	}

	r.mu.RUnlock()

	if len(providers) == 0 {
		return EmbeddingResult{}, ErrNoProvidersAvailable
	}

	var lastErr error

	for _, p := range providers {
		cb := r.getCircuitBreaker(p.Name())
		providerName := string(p.Name())

		if !cb.CanAttempt() {
			r.logger.Debug().
				Str(logKeyProvider, providerName).
				Msg("skipping provider - circuit breaker open")
			SetEmbeddingProviderAvailable(providerName, false)

			lastErr = cb.CheckCircuit()

			continue
		}

		result, err := r.embedWith(ctx, p, texts)
		if err != nil {
			// Caller cancellation says nothing about provider health.
			if ctx.Err() != nil {
				return EmbeddingResult{}, fmt.Errorf("%s: %w", providerName, ctx.Err())
			}

			cb.RecordFailure()
			RecordEmbeddingRequest(providerName, false)

			lastErr = err

			r.logger.Warn().
				Err(err).
				Str(logKeyProvider, providerName).
				Int(logKeyTexts, len(texts)).
				Msg("embedding provider failed, trying fallback")

			continue
		}

		cb.RecordSuccess()
		RecordEmbeddingRequest(providerName, true)
		SetEmbeddingProviderAvailable(providerName, true)

		if primaryProvider != "" && providerName != primaryProvider {
			RecordEmbeddingFallback(primaryProvider, providerName)
			r.logger.Info().
				Str(logKeyProvider, providerName).
				Str(logKeyFromProvider, primaryProvider).
				Msg("used fallback embedding provider")
		}

		return result, nil
	}

	if lastErr != nil {
		return EmbeddingResult{}, errors.Join(ErrAllProvidersFailed, lastErr)
	}

	return EmbeddingResult{}, ErrNoProvidersAvailable
}

func (r *Registry) embedWith(ctx context.Context, p Provider, texts []string) (EmbeddingResult, error) {
	start := time.Now()
	result, err := p.Embed(ctx, texts)
	RecordEmbeddingLatency(string(p.Name()), time.Since(start))

	if err != nil {
		return EmbeddingResult{}, fmt.Errorf("%s: %w", p.Name(), err)
	}

	if len(result.Vectors) != len(texts) {
		return EmbeddingResult{}, fmt.Errorf("%s: %w: got %d, want %d",
			p.Name(), ErrVectorCountMismatch, len(result.Vectors), len(texts))
	}

	for _, v := range result.Vectors {
		if len(v) == 0 {
			return EmbeddingResult{}, fmt.Errorf("%s: %w", p.Name(), graderrors.ErrEmptyResponse)
		}
	}

	return result, nil
}

// PreferredProvider returns the provider the next call will try first, or ""
// when none is usable.
func (r *Registry) PreferredProvider() ProviderName {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, p := range r.getActiveProviders() {
		if r.circuitBreakers[p.Name()].CanAttempt() {
			return p.Name()
		}
	}

	return ""
}

// Ready reports whether at least one provider can serve requests.
func (r *Registry) Ready(_ context.Context) error {
	if r.PreferredProvider() == "" {
		return ErrNoProvidersAvailable
	}

	return nil
}

// ProviderCount returns the number of registered providers.
func (r *Registry) ProviderCount() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return len(r.providers)
}

// ProviderNames returns the names of all registered providers in priority order.
func (r *Registry) ProviderNames() []ProviderName {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]ProviderName, len(r.order))
	copy(names, r.order)

	return names
}

// Close releases providers that hold native or network resources.
func (r *Registry) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	var errs []error

	for _, name := range r.order {
		if c, ok := r.providers[name].(interface{ Close() error }); ok {
			if err := c.Close(); err != nil {
				errs = append(errs, err)
			}
		}
	}

	return errors.Join(errs...)
}

// getActiveProviders returns providers that are available (not checking circuit breaker).
func (r *Registry) getActiveProviders() []Provider {
	active := make([]Provider, 0, len(r.providers))

	for _, name := range r.order {
		p := r.providers[name]
		if p.IsAvailable() {
			active = append(active, p)
		}
	}

	return active
}

// sortProvidersByPriority sorts providers by priority in descending order.
func (r *Registry) sortProvidersByPriority() {
	sort.SliceStable(r.order, func(i, j int) bool {
		pi := r.providers[r.order[i]].Priority()
		pj := r.providers[r.order[j]].Priority()

		return pi > pj
	})
}

// getCircuitBreaker returns the circuit breaker for a provider.
func (r *Registry) getCircuitBreaker(name ProviderName) *CircuitBreaker {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.circuitBreakers[name]
}
