package cache

import (
	"context"
	"fmt"
	"time"
)

// New creates a new Cache based on the configuration.
// It returns an error if the configuration is invalid or if the cache
// backend fails to initialize.
//
// The context is not used by the local backends but is included for API
// consistency.
//
// Example:
//
//	c, err := cache.New(ctx, &cache.Config{Mode: cache.ModeSingle})
//	if err != nil {
//		log.Fatal(err)
//	}
//	defer c.Close()
func New(_ context.Context, cfg *Config) (Cache, error) {
	log := logger().With().Str("component", "cache_factory").Logger()
	start := time.Now()

	if err := cfg.Validate(); err != nil {
		log.Debug().Err(err).Str("mode", string(cfg.Mode)).Msg("cache factory: validation failed")
		return nil, err
	}

	mode := cfg.GetEffectiveMode()

	log.Info().
		Str("mode", string(mode)).
		Msg("cache factory: initializing backend")

	var cache Cache
	var err error

	switch mode {
	case ModeSingle:
		cache, err = newRistrettoCache(cfg.GetEffectiveRistretto())
	case ModeDisabled:
		cache = newNoopCache()
	default:
		return nil, fmt.Errorf("cache: unknown mode %q", mode)
	}

	if err != nil {
		log.Error().Err(err).Str("mode", string(mode)).Msg("cache factory: backend initialization failed")
		return nil, err
	}

	log.Info().
		Str("mode", string(mode)).
		Dur("init_time", time.Since(start)).
		Msg("cache factory: backend initialized")

	return cache, nil
}
