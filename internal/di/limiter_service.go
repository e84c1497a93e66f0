package di

import (
	"fmt"
	"time"

	"github.com/samber/do/v2"

	"github.com/omarluq/lm-sidekick/internal/ratelimit"
)

// LimiterService wraps the rate limiter for DI.
type LimiterService struct {
	Limiter ratelimit.RateLimiter
}

// NewLimiter creates the rate limiter selected by configuration.
func NewLimiter(i do.Injector) (*LimiterService, error) {
	cfgSvc := do.MustInvoke[*ConfigService](i)
	rl := cfgSvc.Config.RateLimit

	limiter, err := ratelimit.New(ratelimit.Config{
		Strategy:    ratelimit.Strategy(rl.GetEffectiveStrategy()),
		MaxRequests: rl.MaxRequests,
		Window:      time.Duration(rl.WindowSeconds) * time.Second,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create rate limiter: %w", err)
	}

	return &LimiterService{Limiter: limiter}, nil
}
