package cache

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/dgraph-io/ristretto/v2"
	"github.com/rs/zerolog"
)

// ristrettoCache is the in-process Cache backed by Ristretto. Values are
// small JSON blobs (model lists, probe results), so cost is simply the
// byte length of the value.
type ristrettoCache struct {
	cache  *ristretto.Cache[string, []byte]
	log    zerolog.Logger
	closed atomic.Bool
	mu     sync.RWMutex
}

var (
	_ Cache         = (*ristrettoCache)(nil)
	_ StatsProvider = (*ristrettoCache)(nil)
)

// newRistrettoCache creates a Ristretto cache with the given configuration.
func newRistrettoCache(cfg RistrettoConfig) (*ristrettoCache, error) {
	packageLog := logger()
	return newRistrettoCacheWithLog(cfg, &packageLog)
}

// newRistrettoCacheWithLog creates a Ristretto cache using the provided
// logger instead of the package logger.
func newRistrettoCacheWithLog(cfg RistrettoConfig, baseLog *zerolog.Logger) (*ristrettoCache, error) {
	log := baseLog.With().Str("backend", "ristretto").Logger()

	bufferItems := cfg.BufferItems
	if bufferItems <= 0 {
		bufferItems = 64 // default buffer items
	}

	cache, err := ristretto.NewCache(&ristretto.Config[string, []byte]{
		NumCounters: cfg.NumCounters,
		MaxCost:     cfg.MaxCost,
		BufferItems: bufferItems,
		Metrics:     true, // enable stats
	})
	if err != nil {
		log.Error().Err(err).Msg("failed to create ristretto cache")
		return nil, err
	}

	log.Info().
		Int64("num_counters", cfg.NumCounters).
		Int64("max_cost", cfg.MaxCost).
		Int64("buffer_items", bufferItems).
		Msg("ristretto cache created")

	return &ristrettoCache{
		cache: cache,
		log:   log,
	}, nil
}

// acquire checks the context and closed state, then takes the read lock.
// The closed flag is re-checked under the lock so a concurrent Close
// cannot race with an in-flight operation. The returned release func
// must be called when the operation completes.
func (r *ristrettoCache) acquire(ctx context.Context) (func(), error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if r.closed.Load() {
		return nil, ErrClosed
	}

	r.mu.RLock()
	if r.closed.Load() {
		r.mu.RUnlock()
		return nil, ErrClosed
	}

	return r.mu.RUnlock, nil
}

// Get retrieves a value from the cache.
// Returns ErrNotFound if the key does not exist.
// Returns ErrClosed if the cache has been closed.
func (r *ristrettoCache) Get(ctx context.Context, key string) ([]byte, error) {
	release, err := r.acquire(ctx)
	if err != nil {
		return nil, err
	}
	defer release()

	value, found := r.cache.Get(key)
	if !found {
		r.log.Debug().
			Str("key", key).
			Bool("hit", false).
			Msg("cache get")
		return nil, ErrNotFound
	}

	r.log.Debug().
		Str("key", key).
		Bool("hit", true).
		Int("size", len(value)).
		Msg("cache get")

	// Return a copy to prevent mutation of cached data
	result := make([]byte, len(value))
	copy(result, value)
	return result, nil
}

// Set stores a value in the cache with no expiration.
// Returns ErrClosed if the cache has been closed.
func (r *ristrettoCache) Set(ctx context.Context, key string, value []byte) error {
	return r.SetWithTTL(ctx, key, value, 0)
}

// SetWithTTL stores a value in the cache with a time-to-live. A ttl of
// zero stores the value with no expiration.
// Returns ErrClosed if the cache has been closed.
func (r *ristrettoCache) SetWithTTL(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	release, err := r.acquire(ctx)
	if err != nil {
		return err
	}
	defer release()

	// Make a copy to prevent caller from mutating cached data
	valueCopy := make([]byte, len(value))
	copy(valueCopy, value)

	if ttl > 0 {
		r.cache.SetWithTTL(key, valueCopy, int64(len(value)), ttl)
	} else {
		r.cache.Set(key, valueCopy, int64(len(value)))
	}

	r.log.Debug().
		Str("key", key).
		Int("size", len(value)).
		Dur("ttl", ttl).
		Msg("cache set")

	return nil
}

// Delete removes a key from the cache.
// Returns nil if the key does not exist (idempotent).
// Returns ErrClosed if the cache has been closed.
func (r *ristrettoCache) Delete(ctx context.Context, key string) error {
	release, err := r.acquire(ctx)
	if err != nil {
		return err
	}
	defer release()

	r.cache.Del(key)

	r.log.Debug().
		Str("key", key).
		Msg("cache delete")

	return nil
}

// Exists checks if a key exists in the cache.
// Returns ErrClosed if the cache has been closed.
func (r *ristrettoCache) Exists(ctx context.Context, key string) (bool, error) {
	release, err := r.acquire(ctx)
	if err != nil {
		return false, err
	}
	defer release()

	_, found := r.cache.Get(key)
	return found, nil
}

// Close releases resources associated with the cache.
// After Close is called, all operations will return ErrClosed.
// Close is idempotent.
func (r *ristrettoCache) Close() error {
	if r.closed.Load() {
		return nil
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed.Load() {
		return nil
	}

	r.closed.Store(true)

	// Wait for all pending writes to complete
	r.cache.Wait()
	r.cache.Close()

	r.log.Info().Msg("ristretto cache closed")

	return nil
}

// Stats returns current cache statistics.
func (r *ristrettoCache) Stats() Stats {
	if r.closed.Load() {
		return Stats{}
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	if r.closed.Load() {
		return Stats{}
	}

	metrics := r.cache.Metrics

	return Stats{
		Hits:      metrics.Hits(),
		Misses:    metrics.Misses(),
		KeyCount:  metrics.KeysAdded() - metrics.KeysEvicted(),
		BytesUsed: metrics.CostAdded() - metrics.CostEvicted(),
		Evictions: metrics.KeysEvicted(),
	}
}
