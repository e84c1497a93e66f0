package ratelimit

import (
	"sync"
	"sync/atomic"
	"time"
)

// SlidingWindowLimiter implements RateLimiter with an exact sliding window
// per client.
//
// Each client owns an ordered slice of admission timestamps. Admit prunes
// timestamps older than the window, rejects when the pruned window is full,
// and appends the admission time otherwise. Prune, check, and append happen
// under one lock so concurrent callers cannot overfill a window.
//
// Client windows live for the process lifetime; memory per client is
// bounded by the window limit.
//
// Thread safety: all methods are safe for concurrent use.
type SlidingWindowLimiter struct {
	max    int
	window time.Duration

	mu      sync.Mutex
	windows map[string][]time.Time

	admitted atomic.Int64

	// now is replaceable in tests.
	now func() time.Time
}

// NewSlidingWindowLimiter creates a sliding window rate limiter.
//
// Parameters:
//   - maxRequests: admissions allowed per window (<= 0 uses DefaultMaxRequests)
//   - window: window length (<= 0 uses DefaultWindow)
func NewSlidingWindowLimiter(maxRequests int, window time.Duration) *SlidingWindowLimiter {
	if maxRequests <= 0 {
		maxRequests = DefaultMaxRequests
	}
	if window <= 0 {
		window = DefaultWindow
	}

	return &SlidingWindowLimiter{
		max:     maxRequests,
		window:  window,
		windows: make(map[string][]time.Time),
		now:     time.Now,
	}
}

// Admit checks whether clientID may proceed and records the admission.
// Rejected calls leave the client's window untouched apart from pruning.
func (l *SlidingWindowLimiter) Admit(clientID string) bool {
	if clientID == "" {
		clientID = DefaultClientID
	}

	now := l.now()
	cutoff := now.Add(-l.window)

	l.mu.Lock()
	defer l.mu.Unlock()

	// In-place prune; timestamps are appended in order.
	kept := l.windows[clientID][:0]
	for _, ts := range l.windows[clientID] {
		if ts.After(cutoff) {
			kept = append(kept, ts)
		}
	}

	if len(kept) >= l.max {
		l.windows[clientID] = kept
		return false
	}

	l.windows[clientID] = append(kept, now)
	l.admitted.Add(1)
	return true
}

// Usage returns the budget snapshot for clientID without recording anything.
func (l *SlidingWindowLimiter) Usage(clientID string) Usage {
	if clientID == "" {
		clientID = DefaultClientID
	}

	cutoff := l.now().Add(-l.window)

	l.mu.Lock()
	defer l.mu.Unlock()

	used := 0
	for _, ts := range l.windows[clientID] {
		if ts.After(cutoff) {
			used++
		}
	}

	return Usage{
		Used:          used,
		Limit:         l.max,
		Remaining:     l.max - used,
		WindowSeconds: int(l.window / time.Second),
	}
}

// Totals returns aggregate admission counters across all clients.
func (l *SlidingWindowLimiter) Totals() Totals {
	cutoff := l.now().Add(-l.window)

	l.mu.Lock()
	defer l.mu.Unlock()

	recent := 0
	for _, times := range l.windows {
		for _, ts := range times {
			if ts.After(cutoff) {
				recent++
			}
		}
	}

	return Totals{
		Admitted: l.admitted.Load(),
		Recent:   recent,
		Clients:  len(l.windows),
	}
}
