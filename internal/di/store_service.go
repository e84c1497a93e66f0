package di

import (
	"github.com/samber/do/v2"

	"github.com/omarluq/lm-sidekick/internal/contextstore"
)

// StoreService wraps the context store.
type StoreService struct {
	Store *contextstore.Store
}

// NewStore creates the context store backed by the gateway.
func NewStore(i do.Injector) (*StoreService, error) {
	gatewaySvc := do.MustInvoke[*GatewayService](i)
	cfgSvc := do.MustInvoke[*ConfigService](i)
	logSvc := do.MustInvoke[*LoggerService](i)

	maxTokens := cfgSvc.Config.Context.GetMaxTokensOption().OrElse(0)
	store := contextstore.New(gatewaySvc.Gateway, maxTokens, logSvc.Logger)

	return &StoreService{Store: store}, nil
}
