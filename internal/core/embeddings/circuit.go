package embeddings

import (
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	graderrors "github.com/lueurxax/answer-grader/internal/core/errors"
)

// CircuitBreaker stops calling a provider after repeated failures and lets a
// single probe through once the reset window has passed.
type CircuitBreaker struct {
	name                ProviderName
	threshold           int
	resetAfter          time.Duration
	consecutiveFailures int
	openUntil           time.Time
	now                 func() time.Time
	mu                  sync.Mutex
	logger              *zerolog.Logger
}

// NewCircuitBreaker creates a circuit breaker for the named provider.
func NewCircuitBreaker(name ProviderName, cfg CircuitBreakerConfig, logger *zerolog.Logger) *CircuitBreaker {
	if cfg.Threshold <= 0 {
		cfg.Threshold = defaultCircuitThreshold
	}

	return &CircuitBreaker{
		name:       name,
		threshold:  cfg.Threshold,
		resetAfter: cfg.ResetAfter,
		now:        time.Now,
		logger:     logger,
	}
}

// CanAttempt returns true if the circuit allows an attempt.
func (cb *CircuitBreaker) CanAttempt() bool {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	return !cb.now().Before(cb.openUntil)
}

// CheckCircuit returns an error wrapping ErrCircuitBreakerOpen if the circuit is open.
func (cb *CircuitBreaker) CheckCircuit() error {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	if cb.now().Before(cb.openUntil) {
		return fmt.Errorf("%s: %w until %v", cb.name, graderrors.ErrCircuitBreakerOpen, cb.openUntil)
	}

	return nil
}

// RecordSuccess resets the failure count.
func (cb *CircuitBreaker) RecordSuccess() {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	cb.consecutiveFailures = 0
	cb.openUntil = time.Time{}
}

// RecordFailure counts a failed call and opens the circuit once the threshold is reached.
func (cb *CircuitBreaker) RecordFailure() {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	cb.consecutiveFailures++

	if cb.consecutiveFailures < cb.threshold {
		return
	}

	cb.openUntil = cb.now().Add(cb.resetAfter)

	if cb.logger != nil {
		cb.logger.Warn().
			Str(logKeyProvider, string(cb.name)).
			Int("consecutive_failures", cb.consecutiveFailures).
			Time("open_until", cb.openUntil).
			Msg("embedding circuit breaker opened")
	}
}

// IsOpen returns true if the circuit is currently open.
func (cb *CircuitBreaker) IsOpen() bool {
	return !cb.CanAttempt()
}

// Reset clears the circuit breaker state.
func (cb *CircuitBreaker) Reset() {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	cb.consecutiveFailures = 0
	cb.openUntil = time.Time{}
}
