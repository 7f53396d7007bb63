package resilience

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errBoom = errors.New("boom")

func trip(cb *CircuitBreaker, failures int) {
	for i := 0; i < failures; i++ {
		cb.Execute(func() error { return errBoom })
	}
}

func TestCircuitBreakerOpensAfterThreshold(t *testing.T) {
	cb := NewCircuitBreaker("test", CircuitBreakerConfig{FailureThreshold: 3, ResetTimeout: time.Hour})

	trip(cb, 2)
	assert.Equal(t, StateClosed, cb.GetState())

	trip(cb, 1)
	assert.Equal(t, StateOpen, cb.GetState())

	err := cb.Execute(func() error {
		t.Fatal("open breaker must not run the call")
		return nil
	})
	assert.ErrorIs(t, err, ErrCircuitOpen)
}

func TestCircuitBreakerSuccessResetsFailureCount(t *testing.T) {
	cb := NewCircuitBreaker("test", CircuitBreakerConfig{FailureThreshold: 3, ResetTimeout: time.Hour})

	trip(cb, 2)
	require.NoError(t, cb.Execute(func() error { return nil }))
	trip(cb, 2)
	assert.Equal(t, StateClosed, cb.GetState(), "non-consecutive failures must not trip")
}

func TestCircuitBreakerHalfOpenRecovery(t *testing.T) {
	cb := NewCircuitBreaker("test", CircuitBreakerConfig{FailureThreshold: 1, ResetTimeout: 10 * time.Millisecond})

	trip(cb, 1)
	require.Equal(t, StateOpen, cb.GetState())
	time.Sleep(20 * time.Millisecond)

	require.NoError(t, cb.Execute(func() error { return nil }))
	assert.Equal(t, StateClosed, cb.GetState())
}

func TestCircuitBreakerHalfOpenFailureReopens(t *testing.T) {
	cb := NewCircuitBreaker("test", CircuitBreakerConfig{FailureThreshold: 1, ResetTimeout: 10 * time.Millisecond})

	trip(cb, 1)
	time.Sleep(20 * time.Millisecond)
	trip(cb, 1)
	assert.Equal(t, StateOpen, cb.GetState())
}

func TestCircuitBreakerHalfOpenProbeLimit(t *testing.T) {
	cb := NewCircuitBreaker("test", CircuitBreakerConfig{
		FailureThreshold:    1,
		ResetTimeout:        10 * time.Millisecond,
		HalfOpenMaxRequests: 1,
	})

	trip(cb, 1)
	time.Sleep(20 * time.Millisecond)

	release := make(chan struct{})
	done := make(chan error)
	go func() {
		done <- cb.Execute(func() error {
			<-release
			return nil
		})
	}()

	// While the probe is in flight, further calls are refused.
	assert.Eventually(t, func() bool { return cb.GetState() == StateHalfOpen },
		time.Second, time.Millisecond)
	err := cb.Execute(func() error { return nil })
	assert.ErrorIs(t, err, ErrCircuitOpen)

	close(release)
	require.NoError(t, <-done)
	assert.Equal(t, StateClosed, cb.GetState())
}

func TestCircuitBreakerReset(t *testing.T) {
	cb := NewCircuitBreaker("test", CircuitBreakerConfig{FailureThreshold: 1, ResetTimeout: time.Hour})
	trip(cb, 1)
	require.Equal(t, StateOpen, cb.GetState())

	cb.Reset()
	assert.Equal(t, StateClosed, cb.GetState())
	assert.NoError(t, cb.Execute(func() error { return nil }))
}

func TestStateString(t *testing.T) {
	assert.Equal(t, "closed", StateClosed.String())
	assert.Equal(t, "open", StateOpen.String())
	assert.Equal(t, "half-open", StateHalfOpen.String())
}
