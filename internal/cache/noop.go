package cache

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"
)

// noopCache stores nothing. It backs ModeDisabled: writes succeed without
// effect and reads miss, so every lookup falls through to the backend.
type noopCache struct {
	log    zerolog.Logger
	closed atomic.Bool
}

var (
	_ Cache         = (*noopCache)(nil)
	_ StatsProvider = (*noopCache)(nil)
)

// newNoopCache creates a no-op cache instance.
func newNoopCache() *noopCache {
	packageLog := logger()
	return newNoopCacheWithLog(&packageLog)
}

// newNoopCacheWithLog creates a no-op cache using the provided logger
// instead of the package logger.
func newNoopCacheWithLog(baseLog *zerolog.Logger) *noopCache {
	log := baseLog.With().Str("backend", "noop").Logger()
	log.Debug().Str("note", "caching is disabled").Msg("noop cache created")
	return &noopCache{
		log: log,
	}
}

// Get always returns ErrNotFound since noopCache stores nothing.
// Returns ErrClosed if the cache has been closed.
func (c *noopCache) Get(_ context.Context, key string) ([]byte, error) {
	if c.closed.Load() {
		return nil, ErrClosed
	}
	c.log.Debug().
		Str("key", key).
		Bool("hit", false).
		Msg("cache get")
	return nil, ErrNotFound
}

// Set is a no-op that always returns nil.
// Returns ErrClosed if the cache has been closed.
func (c *noopCache) Set(_ context.Context, _ string, _ []byte) error {
	if c.closed.Load() {
		return ErrClosed
	}
	return nil
}

// SetWithTTL is a no-op that always returns nil.
// Returns ErrClosed if the cache has been closed.
func (c *noopCache) SetWithTTL(_ context.Context, _ string, _ []byte, _ time.Duration) error {
	if c.closed.Load() {
		return ErrClosed
	}
	return nil
}

// Delete is a no-op that always returns nil.
// Returns ErrClosed if the cache has been closed.
func (c *noopCache) Delete(_ context.Context, _ string) error {
	if c.closed.Load() {
		return ErrClosed
	}
	return nil
}

// Exists always returns false since noopCache stores nothing.
// Returns ErrClosed if the cache has been closed.
func (c *noopCache) Exists(_ context.Context, _ string) (bool, error) {
	if c.closed.Load() {
		return false, ErrClosed
	}
	return false, nil
}

// Close marks the cache as closed. It is idempotent.
func (c *noopCache) Close() error {
	if c.closed.Load() {
		return nil
	}
	c.closed.Store(true)
	c.log.Info().Msg("noop cache closed")
	return nil
}

// Stats returns zeroed statistics; a noopCache never stores anything.
func (c *noopCache) Stats() Stats {
	return Stats{}
}
