package ratelimit

import (
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/time/rate"
)

// TokenBucketLimiter implements RateLimiter using golang.org/x/time/rate,
// one bucket per client.
//
// Each bucket refills at maxRequests/window and holds a burst equal to
// maxRequests, so a fresh client can consume a full window's budget
// instantly and then refills gradually. Compared to the sliding window
// this shapes traffic smoothly but admits slightly more than maxRequests
// across a window boundary.
//
// Thread safety: all methods are safe for concurrent use.
type TokenBucketLimiter struct {
	max    int
	window time.Duration

	mu      sync.RWMutex
	buckets map[string]*rate.Limiter

	admitted atomic.Int64
}

// NewTokenBucketLimiter creates a token bucket rate limiter.
//
// Parameters:
//   - maxRequests: admissions allowed per window (<= 0 uses DefaultMaxRequests)
//   - window: refill window (<= 0 uses DefaultWindow)
func NewTokenBucketLimiter(maxRequests int, window time.Duration) *TokenBucketLimiter {
	if maxRequests <= 0 {
		maxRequests = DefaultMaxRequests
	}
	if window <= 0 {
		window = DefaultWindow
	}

	return &TokenBucketLimiter{
		max:     maxRequests,
		window:  window,
		buckets: make(map[string]*rate.Limiter),
	}
}

// bucket returns the limiter for clientID, creating it on first use.
// Double-checked locking keeps the hot path on the read lock.
func (l *TokenBucketLimiter) bucket(clientID string) *rate.Limiter {
	l.mu.RLock()
	b, ok := l.buckets[clientID]
	l.mu.RUnlock()
	if ok {
		return b
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if b, ok = l.buckets[clientID]; ok {
		return b
	}

	b = rate.NewLimiter(rate.Limit(float64(l.max)/l.window.Seconds()), l.max)
	l.buckets[clientID] = b
	return b
}

// Admit checks whether clientID may proceed and records the admission.
func (l *TokenBucketLimiter) Admit(clientID string) bool {
	if clientID == "" {
		clientID = DefaultClientID
	}

	if !l.bucket(clientID).Allow() {
		return false
	}

	l.admitted.Add(1)
	return true
}

// Usage returns the budget snapshot for clientID.
//
// golang.org/x/time/rate doesn't expose consumed tokens directly, so Used
// is derived from the bucket's current fill. Accurate enough for stats.
func (l *TokenBucketLimiter) Usage(clientID string) Usage {
	if clientID == "" {
		clientID = DefaultClientID
	}

	remaining := clampUsage(int(l.bucket(clientID).Tokens()), l.max)

	return Usage{
		Used:          l.max - remaining,
		Limit:         l.max,
		Remaining:     remaining,
		WindowSeconds: int(l.window / time.Second),
	}
}

// Totals returns aggregate admission counters across all clients.
// Recent is approximated from bucket fill.
func (l *TokenBucketLimiter) Totals() Totals {
	l.mu.RLock()
	defer l.mu.RUnlock()

	recent := 0
	for _, b := range l.buckets {
		recent += l.max - clampUsage(int(b.Tokens()), l.max)
	}

	return Totals{
		Admitted: l.admitted.Load(),
		Recent:   recent,
		Clients:  len(l.buckets),
	}
}

func clampUsage(remaining, limit int) int {
	if remaining < 0 {
		return 0
	}
	if remaining > limit {
		return limit
	}
	return remaining
}
