package di

import (
	"github.com/samber/do/v2"

	"github.com/omarluq/lm-sidekick/internal/batch"
)

// DispatcherService wraps the batch dispatcher.
type DispatcherService struct {
	Dispatcher *batch.Dispatcher
}

// NewDispatcher creates the batch dispatcher backed by the gateway.
func NewDispatcher(i do.Injector) (*DispatcherService, error) {
	gatewaySvc := do.MustInvoke[*GatewayService](i)
	cfgSvc := do.MustInvoke[*ConfigService](i)
	logSvc := do.MustInvoke[*LoggerService](i)

	pacing := cfgSvc.Config.Batch.GetPacingOption().OrElse(0)
	dispatcher := batch.New(gatewaySvc.Gateway, pacing, logSvc.Logger)

	return &DispatcherService{Dispatcher: dispatcher}, nil
}
