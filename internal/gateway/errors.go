package gateway

import "errors"

var (
	// ErrNoBackend is returned by New when no backend client is provided.
	ErrNoBackend = errors.New("gateway: backend client is required")

	// ErrNoLimiter is returned by New when no rate limiter is provided.
	ErrNoLimiter = errors.New("gateway: rate limiter is required")
)
