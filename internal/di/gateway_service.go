package di

import (
	"fmt"

	"github.com/samber/do/v2"

	"github.com/omarluq/lm-sidekick/internal/gateway"
)

// GatewayService wraps the backend gateway.
type GatewayService struct {
	Gateway *gateway.Gateway
}

// NewGateway creates the gateway fronting the backend client.
func NewGateway(i do.Injector) (*GatewayService, error) {
	backendSvc := do.MustInvoke[*BackendService](i)
	limiterSvc := do.MustInvoke[*LimiterService](i)
	breakerSvc := do.MustInvoke[*BreakerService](i)
	cacheSvc := do.MustInvoke[*CacheService](i)
	logSvc := do.MustInvoke[*LoggerService](i)

	gw, err := gateway.New(gateway.Config{
		Backend: backendSvc.Client,
		Limiter: limiterSvc.Limiter,
		Breaker: breakerSvc.Breaker,
		Cache:   cacheSvc.Cache,
		Logger:  logSvc.Logger,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create gateway: %w", err)
	}

	return &GatewayService{Gateway: gw}, nil
}
