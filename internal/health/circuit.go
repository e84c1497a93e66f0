// Package health tracks backend availability with a circuit breaker.
//
// The breaker is observational. Completion outcomes are reported after
// each backend call and the resulting CLOSED / OPEN / HALF-OPEN state is
// surfaced through the health and stats tools, but admission is never
// gated on it: a single local LM Studio instance recovers by a human
// loading a model, not by load shedding.
package health

import (
	"context"
	"errors"
	"net/http"

	"github.com/omarluq/lm-sidekick/internal/backend"
	"github.com/rs/zerolog"
	"github.com/sony/gobreaker/v2"
)

// State represents the circuit breaker state.
type State = gobreaker.State

// Circuit breaker state constants.
const (
	StateClosed   = gobreaker.StateClosed
	StateOpen     = gobreaker.StateOpen
	StateHalfOpen = gobreaker.StateHalfOpen
)

// CircuitBreaker wraps sony/gobreaker TwoStepCircuitBreaker for backend
// health tracking.
type CircuitBreaker struct {
	cb   *gobreaker.TwoStepCircuitBreaker[struct{}]
	name string
}

// NewCircuitBreaker creates a new CircuitBreaker with the given configuration.
func NewCircuitBreaker(name string, cfg CircuitBreakerConfig, logger *zerolog.Logger) *CircuitBreaker {
	halfOpenProbes := cfg.GetHalfOpenProbes()
	if halfOpenProbes < 0 {
		halfOpenProbes = DefaultHalfOpenProbes
	}
	failureThreshold := cfg.GetFailureThreshold()
	if failureThreshold < 0 {
		failureThreshold = DefaultFailureThreshold
	}

	settings := gobreaker.Settings{
		Name:        name,
		MaxRequests: uint32(halfOpenProbes), //nolint:gosec // validated non-negative above
		Timeout:     cfg.GetOpenDuration(),
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= uint32(failureThreshold) //nolint:gosec // validated non-negative above
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			if logger == nil {
				return
			}
			event := logger.Info()
			if to == gobreaker.StateOpen {
				event = logger.Warn()
			}
			event.
				Str("backend", name).
				Str("from", from.String()).
				Str("to", to.String()).
				Msg("circuit breaker state change")
		},
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, context.Canceled)
		},
	}

	return &CircuitBreaker{
		cb:   gobreaker.NewTwoStepCircuitBreaker[struct{}](settings),
		name: name,
	}
}

// Allow checks if a report slot is available on the circuit breaker.
func (c *CircuitBreaker) Allow() (done func(err error), err error) {
	d, err := c.cb.Allow()
	if err != nil {
		return nil, ErrCircuitOpen
	}
	return d, nil
}

// State returns the current circuit breaker state.
func (c *CircuitBreaker) State() State {
	return c.cb.State()
}

// Name returns the circuit breaker's name.
func (c *CircuitBreaker) Name() string {
	return c.name
}

// ReportSuccess reports a successful backend call to the circuit breaker.
// Returns true if the success was recorded, false if skipped.
//
// When the circuit is OPEN, gobreaker blocks all reports via Allow(), so
// successes cannot be recorded. The circuit transitions to HALF-OPEN only
// after the configured OpenDuration expires.
func (c *CircuitBreaker) ReportSuccess() bool {
	done, err := c.Allow()
	if err != nil {
		return false
	}
	done(nil)
	return true
}

// ReportFailure reports a failed backend call to the circuit breaker.
// Returns true if the failure was recorded, false if skipped.
//
// When the circuit is OPEN, failures are not recorded (circuit already open).
func (c *CircuitBreaker) ReportFailure(err error) bool {
	done, allowErr := c.Allow()
	if allowErr != nil {
		return false
	}
	done(err)
	return true
}

// ShouldCountAsFailure determines if a completion error indicates an
// unhealthy backend. Canceled contexts, empty completions, and client
// errors other than 429 do not count.
func ShouldCountAsFailure(err error) bool {
	if err == nil || errors.Is(err, context.Canceled) {
		return false
	}
	if errors.Is(err, backend.ErrUnreachable) {
		return true
	}

	var statusErr *backend.BadStatusError
	if errors.As(err, &statusErr) {
		return statusErr.StatusCode >= 500 || statusErr.StatusCode == http.StatusTooManyRequests
	}
	return false
}
