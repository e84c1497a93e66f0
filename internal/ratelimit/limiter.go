// Package ratelimit provides per-client rate limiting for lm-sidekick.
//
// The ratelimit package abstracts over different rate limiting strategies:
//   - Sliding window: exact time-based window, the default. A burst that
//     fills the window is admitted immediately and everything after it is
//     rejected until timestamps age out.
//   - Token bucket: golang.org/x/time/rate for smooth traffic shaping
//     without window-boundary bursts.
//
// Each client id owns an independent budget. Callers that do not identify
// themselves share the DefaultClientID budget.
//
// Basic usage:
//
//	limiter := ratelimit.NewSlidingWindowLimiter(30, time.Minute)
//
//	if !limiter.Admit(clientID) {
//		return ratelimit.ErrLimitExceeded
//	}
package ratelimit

import "errors"

// ErrLimitExceeded is returned by callers when Admit rejects a request.
var ErrLimitExceeded = errors.New("ratelimit: rate limit exceeded")

// DefaultClientID is the budget shared by callers that do not identify themselves.
const DefaultClientID = "default"

// Usage is a point-in-time snapshot of one client's budget.
type Usage struct {
	// Used is the number of admissions inside the current window.
	Used int `json:"used"`

	// Limit is the maximum number of admissions per window.
	Limit int `json:"limit"`

	// Remaining is the number of admissions left in the current window.
	Remaining int `json:"remaining"`

	// WindowSeconds is the window length in seconds.
	WindowSeconds int `json:"window_seconds"`
}

// Totals aggregates admissions across all clients, for stats reporting.
type Totals struct {
	// Admitted is the monotonic count of admissions since the limiter was created.
	Admitted int64 `json:"admitted"`

	// Recent is the number of admissions still inside the trailing window.
	// Token bucket implementations approximate this from bucket fill.
	Recent int `json:"recent"`

	// Clients is the number of distinct client ids seen so far.
	Clients int `json:"clients"`
}

// RateLimiter defines the interface for per-client admission control.
// All implementations must be safe for concurrent use.
//
// Admit spends budget on the attempt: a caller that is admitted has
// consumed one slot whether or not the work it goes on to do succeeds.
// Rejected calls consume nothing.
type RateLimiter interface {
	// Admit checks whether clientID may proceed and, if so, records the
	// admission. Non-blocking. An empty clientID maps to DefaultClientID.
	Admit(clientID string) bool

	// Usage returns the current budget snapshot for clientID.
	Usage(clientID string) Usage

	// Totals returns aggregate admission counters across all clients.
	Totals() Totals
}
