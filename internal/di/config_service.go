package di

import (
	"fmt"

	"github.com/samber/do/v2"

	"github.com/omarluq/lm-sidekick/internal/config"
)

// ConfigService wraps the loaded configuration.
// Configuration is read once at startup; there is no hot reload.
type ConfigService struct {
	Config *config.Config
}

// NewConfig loads the configuration from the config path.
func NewConfig(i do.Injector) (*ConfigService, error) {
	path := do.MustInvokeNamed[string](i, ConfigPathKey)

	cfg, err := config.Load(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load config from %s: %w", path, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}

	return &ConfigService{Config: cfg}, nil
}
