package di

import (
	"net/http"

	"github.com/samber/do/v2"

	"github.com/omarluq/lm-sidekick/internal/api"
)

// HandlerService wraps the fully assembled HTTP handler chain.
type HandlerService struct {
	Handler http.Handler
}

// NewToolHandler builds the routed handler with middleware applied.
func NewToolHandler(i do.Injector) (*HandlerService, error) {
	cfgSvc := do.MustInvoke[*ConfigService](i)
	sidekickSvc := do.MustInvoke[*SidekickService](i)

	handler := api.SetupRoutes(cfgSvc.Config, sidekickSvc.Service)

	return &HandlerService{Handler: handler}, nil
}
