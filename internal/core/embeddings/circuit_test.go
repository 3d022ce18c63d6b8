package embeddings

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	graderrors "github.com/lueurxax/answer-grader/internal/core/errors"
)

func TestCircuitBreaker(t *testing.T) {
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

	cb := NewCircuitBreaker(ProviderOpenAI, CircuitBreakerConfig{Threshold: 2, ResetAfter: time.Minute}, nil)
	cb.now = func() time.Time { return now }

	assert.True(t, cb.CanAttempt())

	cb.RecordFailure()
	assert.True(t, cb.CanAttempt(), "below threshold")

	cb.RecordFailure()
	assert.True(t, cb.IsOpen())
	require.Error(t, cb.CheckCircuit())
	assert.ErrorIs(t, cb.CheckCircuit(), graderrors.ErrCircuitBreakerOpen)

	now = now.Add(time.Minute)
	assert.True(t, cb.CanAttempt(), "reset window elapsed")

	cb.RecordSuccess()
	assert.NoError(t, cb.CheckCircuit())

	cb.RecordFailure()
	assert.False(t, cb.IsOpen(), "success resets the count")

	cb.RecordFailure()
	assert.True(t, cb.IsOpen())

	cb.Reset()
	assert.False(t, cb.IsOpen())
}

func TestCircuitBreaker_DefaultThreshold(t *testing.T) {
	cb := NewCircuitBreaker(ProviderCohere, CircuitBreakerConfig{ResetAfter: time.Minute}, nil)

	for i := 0; i < defaultCircuitThreshold-1; i++ {
		cb.RecordFailure()
	}

	assert.False(t, cb.IsOpen())

	cb.RecordFailure()
	assert.True(t, cb.IsOpen())
}
