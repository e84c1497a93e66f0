package health

// NewTestBreaker builds a CircuitBreaker with explicit settings and no
// logger, for tests.
func NewTestBreaker(failureThreshold, openDurationMS, halfOpenProbes int) *CircuitBreaker {
	return NewCircuitBreaker("test-backend", CircuitBreakerConfig{
		FailureThreshold: failureThreshold,
		OpenDurationMS:   openDurationMS,
		HalfOpenProbes:   halfOpenProbes,
	}, nil)
}
