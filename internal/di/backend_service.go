package di

import (
	"github.com/samber/do/v2"

	"github.com/omarluq/lm-sidekick/internal/backend"
)

// BackendService wraps the LM Studio client.
type BackendService struct {
	Client *backend.Client
}

// NewBackend creates the LM Studio client from configuration.
func NewBackend(i do.Injector) (*BackendService, error) {
	cfgSvc := do.MustInvoke[*ConfigService](i)
	logSvc := do.MustInvoke[*LoggerService](i)
	be := cfgSvc.Config.Backend

	client := backend.NewClient(backend.ClientConfig{
		BaseURL:           be.BaseURL(),
		HealthTimeout:     be.GetHealthTimeoutOption().OrElse(0),
		CompletionTimeout: be.GetCompletionTimeoutOption().OrElse(0),
		ProbeTimeout:      be.GetProbeTimeoutOption().OrElse(0),
		Logger:            logSvc.Logger,
	})

	return &BackendService{Client: client}, nil
}
