// Package errors provides centralized error definitions for the grader.
// Errors are organized by concern to avoid duplication and provide consistent naming.
//
// Naming conventions:
//   - Exported errors (Err*): Use for errors that callers need to check with errors.Is
//   - Unexported errors (err*): Use for internal package errors
//   - All sentinel errors should be defined as variables, not inline errors.New calls
//   - Use fmt.Errorf with %w to wrap sentinel errors with context
package errors

import "errors"

// Model lifecycle errors.
var (
	// ErrModelUnavailable indicates a linguistic or embedding model could not be loaded.
	// It is fatal at process start.
	ErrModelUnavailable = errors.New("model unavailable")

	// ErrInferenceFailed indicates a loaded model failed to annotate or embed a single request.
	// It is potentially transient and must not crash the caller.
	ErrInferenceFailed = errors.New("model inference failed")
)

// Circuit breaker errors.
var (
	// ErrCircuitBreakerOpen indicates the circuit breaker has tripped and requests are blocked.
	ErrCircuitBreakerOpen = errors.New("circuit breaker is open")
)

// Validation errors.
var (
	// ErrInvalidInput indicates invalid input was provided.
	ErrInvalidInput = errors.New("invalid input")
)

// Response errors.
var (
	// ErrEmptyResponse indicates an empty response was received from a provider.
	ErrEmptyResponse = errors.New("empty response")
)

// Cache errors.
var (
	// ErrCacheNotFound indicates a cache entry was not found.
	ErrCacheNotFound = errors.New("cache entry not found")

	// ErrCacheExpired indicates a cache entry has expired.
	ErrCacheExpired = errors.New("cache entry expired")
)

// Is is a convenience wrapper around errors.Is.
func Is(err, target error) bool {
	return errors.Is(err, target)
}
