package llm

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCircuitBreakerTripsAfterThreshold(t *testing.T) {
	cb := NewCircuitBreaker(CircuitBreakerConfig{Threshold: 3, ResetAfter: time.Minute})

	for i := 0; i < 2; i++ {
		cb.RecordFailure()
		ok, err := cb.Allow()
		require.NoError(t, err)
		assert.True(t, ok)
	}

	cb.RecordFailure()
	assert.Equal(t, CircuitOpen, cb.State())

	ok, err := cb.Allow()
	assert.False(t, ok)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "circuit breaker open")
}

func TestCircuitBreakerSuccessResets(t *testing.T) {
	cb := NewCircuitBreaker(CircuitBreakerConfig{Threshold: 2, ResetAfter: time.Minute})

	cb.RecordFailure()
	cb.RecordSuccess()
	cb.RecordFailure()

	// The success reset the failure count, so one more failure is needed.
	assert.Equal(t, CircuitClosed, cb.State())
}

func TestCircuitBreakerHalfOpenProbe(t *testing.T) {
	cb := NewCircuitBreaker(CircuitBreakerConfig{Threshold: 1, ResetAfter: 10 * time.Millisecond})

	cb.RecordFailure()
	assert.Equal(t, CircuitOpen, cb.State())

	time.Sleep(20 * time.Millisecond)

	// One probe is allowed through; a second caller is held back.
	ok, err := cb.Allow()
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, CircuitHalfOpen, cb.State())

	ok, err = cb.Allow()
	assert.False(t, ok)
	require.Error(t, err)

	// A successful probe closes the circuit.
	cb.RecordSuccess()
	assert.Equal(t, CircuitClosed, cb.State())
}

func TestCircuitBreakerFailedProbeReopens(t *testing.T) {
	cb := NewCircuitBreaker(CircuitBreakerConfig{Threshold: 1, ResetAfter: 10 * time.Millisecond})

	cb.RecordFailure()
	time.Sleep(20 * time.Millisecond)

	ok, _ := cb.Allow()
	require.True(t, ok)

	cb.RecordFailure()
	assert.Equal(t, CircuitOpen, cb.State())
}
