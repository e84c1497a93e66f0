package di

import (
	"fmt"

	"github.com/samber/do/v2"

	"github.com/omarluq/lm-sidekick/internal/sidekick"
)

// SidekickService wraps the tool service.
type SidekickService struct {
	Service *sidekick.Service
}

// NewSidekick assembles the tool service from the gateway, store,
// dispatcher, and limiter.
func NewSidekick(i do.Injector) (*SidekickService, error) {
	gatewaySvc := do.MustInvoke[*GatewayService](i)
	storeSvc := do.MustInvoke[*StoreService](i)
	dispatcherSvc := do.MustInvoke[*DispatcherService](i)
	limiterSvc := do.MustInvoke[*LimiterService](i)
	cfgSvc := do.MustInvoke[*ConfigService](i)
	logSvc := do.MustInvoke[*LoggerService](i)

	be := cfgSvc.Config.Backend
	address := fmt.Sprintf("%s:%d", be.GetEffectiveHost(), be.GetEffectivePort())

	service, err := sidekick.New(sidekick.Config{
		Gateway:          gatewaySvc.Gateway,
		Store:            storeSvc.Store,
		Dispatcher:       dispatcherSvc.Dispatcher,
		Limiter:          limiterSvc.Limiter,
		Address:          address,
		RecommendedModel: be.GetEffectiveRecommendedModel(),
		DefaultBatchSize: cfgSvc.Config.Batch.GetSizeOption().OrElse(0),
		Logger:           logSvc.Logger,
	})
	if err != nil {
		return nil, fmt.Errorf("create sidekick service: %w", err)
	}

	return &SidekickService{Service: service}, nil
}
