package di

import (
	"github.com/samber/do/v2"

	"github.com/omarluq/lm-sidekick/internal/health"
)

// BreakerService wraps the backend circuit breaker.
type BreakerService struct {
	Breaker *health.CircuitBreaker
}

// NewBreaker creates the circuit breaker tracking backend completions.
func NewBreaker(i do.Injector) (*BreakerService, error) {
	cfgSvc := do.MustInvoke[*ConfigService](i)
	logSvc := do.MustInvoke[*LoggerService](i)

	breaker := health.NewCircuitBreaker("lm-studio", cfgSvc.Config.Health, logSvc.Logger)

	return &BreakerService{Breaker: breaker}, nil
}
