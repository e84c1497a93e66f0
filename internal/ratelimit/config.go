package ratelimit

import (
	"fmt"
	"time"
)

// Strategy selects the rate limiting implementation.
type Strategy string

const (
	// StrategySlidingWindow uses an exact per-client sliding window (default).
	StrategySlidingWindow Strategy = "sliding_window"

	// StrategyTokenBucket uses golang.org/x/time/rate token buckets.
	StrategyTokenBucket Strategy = "token_bucket"
)

// Default budget: 30 admissions per 60 second window.
const (
	DefaultMaxRequests = 30
	DefaultWindow      = 60 * time.Second
)

// Config defines rate limiter configuration.
type Config struct {
	Strategy    Strategy      `yaml:"strategy"`
	MaxRequests int           `yaml:"max_requests"`
	Window      time.Duration `yaml:"window"`
}

// DefaultConfig returns a Config with the default strategy and budget.
func DefaultConfig() Config {
	return Config{
		Strategy:    StrategySlidingWindow,
		MaxRequests: DefaultMaxRequests,
		Window:      DefaultWindow,
	}
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	switch c.Strategy {
	case StrategySlidingWindow, StrategyTokenBucket, "":
	default:
		return fmt.Errorf("ratelimit: unknown strategy %q", c.Strategy)
	}
	if c.MaxRequests < 0 {
		return fmt.Errorf("ratelimit: max_requests must not be negative, got %d", c.MaxRequests)
	}
	if c.Window < 0 {
		return fmt.Errorf("ratelimit: window must not be negative, got %s", c.Window)
	}
	return nil
}

// New creates a RateLimiter from the configuration. An empty strategy uses
// the sliding window. Zero values for the budget fields fall back to the
// package defaults inside the constructors.
func New(cfg Config) (RateLimiter, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	switch cfg.Strategy {
	case StrategyTokenBucket:
		return NewTokenBucketLimiter(cfg.MaxRequests, cfg.Window), nil
	default:
		return NewSlidingWindowLimiter(cfg.MaxRequests, cfg.Window), nil
	}
}
