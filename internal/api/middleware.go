package api

import (
	"context"
	"crypto/sha256"
	"crypto/subtle"
	"fmt"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

type ctxKey string

// RequestIDKey is the context key for request IDs.
const RequestIDKey ctxKey = "request_id"

// AddRequestID adds the given request ID to the context, generating a new
// UUID when it is empty, and attaches a logger carrying the ID.
func AddRequestID(ctx context.Context, requestID string) context.Context {
	if requestID == "" {
		requestID = uuid.New().String()
	}

	ctx = context.WithValue(ctx, RequestIDKey, requestID)

	logger := log.Ctx(ctx).With().Str("request_id", requestID).Logger()

	return logger.WithContext(ctx)
}

// GetRequestID retrieves the request ID from context.
func GetRequestID(ctx context.Context) string {
	if id, ok := ctx.Value(RequestIDKey).(string); ok {
		return id
	}

	return ""
}

// RequestIDMiddleware adds X-Request-ID header and logger with request ID to context.
func RequestIDMiddleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			// Reuse the caller's ID when provided, otherwise generate one
			requestID := request.Header.Get("X-Request-ID")
			ctx := AddRequestID(request.Context(), requestID)

			if requestID == "" {
				requestID = GetRequestID(ctx)
			}

			writer.Header().Set("X-Request-ID", requestID)

			next.ServeHTTP(writer, request.WithContext(ctx))
		})
	}
}

// AuthMiddleware creates middleware that validates the x-api-key header.
// Uses constant-time comparison to prevent timing attacks.
//
// Security note: SHA-256 is appropriate for API key hashing because:
// - API keys are high-entropy secrets (32+ random characters), not passwords
// - SHA-256 provides sufficient pre-image resistance for high-entropy inputs
// - Pre-hashing at middleware creation prevents per-request hash computation
// - Constant-time comparison (subtle.ConstantTimeCompare) prevents timing attacks.
func AuthMiddleware(expectedAPIKey string) func(http.Handler) http.Handler {
	// Pre-hash expected key at creation time (not per-request)
	expectedHash := sha256.Sum256([]byte(expectedAPIKey))

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			providedKey := request.Header.Get("x-api-key")

			if providedKey == "" {
				failAuth(writer, request, "missing x-api-key header")
				return
			}

			providedHash := sha256.Sum256([]byte(providedKey))

			if subtle.ConstantTimeCompare(providedHash[:], expectedHash[:]) != 1 {
				failAuth(writer, request, "invalid x-api-key")
				return
			}

			zerolog.Ctx(request.Context()).Debug().Msg("authentication succeeded")
			next.ServeHTTP(writer, request)
		})
	}
}

func failAuth(writer http.ResponseWriter, request *http.Request, reason string) {
	zerolog.Ctx(request.Context()).Warn().Msg("authentication failed: " + reason)
	WriteError(writer, http.StatusUnauthorized, "authentication_error", reason)
}

// LoggingMiddleware logs each request with method, path, status, and duration.
func LoggingMiddleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			start := time.Now()

			// Wrap ResponseWriter to capture status code
			wrapped := &responseWriter{
				ResponseWriter: writer,
				statusCode:     http.StatusOK,
			}

			requestID := GetRequestID(request.Context())
			shortID := requestID
			if len(shortID) > 8 {
				shortID = shortID[:8]
			}

			logger := withRequestFields(request.Context(), request, shortID).Logger()
			logger.Info().Msgf("%s %s", request.Method, request.URL.Path)

			next.ServeHTTP(wrapped, request)

			logRequestCompletion(request.Context(), request, wrapped, time.Since(start), shortID)
		})
	}
}

func withRequestFields(ctx context.Context, r *http.Request, shortID string) zerolog.Context {
	return zerolog.Ctx(ctx).With().
		Str("method", r.Method).
		Str("path", r.URL.Path).
		Str("req_id", shortID)
}

func logRequestCompletion(
	ctx context.Context,
	request *http.Request,
	wrapped *responseWriter,
	duration time.Duration,
	shortID string,
) {
	durationStr := formatDuration(duration)
	completionMsg := formatCompletionMessage(wrapped.statusCode, statusSymbol(wrapped.statusCode), durationStr)

	logger := withRequestFields(ctx, request, shortID).
		Int("status", wrapped.statusCode).
		Str("duration", durationStr).
		Logger()

	switch {
	case wrapped.statusCode >= 500:
		logger.Error().Msg(completionMsg)
	case wrapped.statusCode >= 400:
		logger.Warn().Msg(completionMsg)
	default:
		logger.Info().Msg(completionMsg)
	}
}

func statusSymbol(statusCode int) string {
	switch {
	case statusCode >= 500:
		return "✗"
	case statusCode >= 400:
		return "⚠"
	default:
		return "✓"
	}
}

// formatCompletionMessage formats the completion message with status.
func formatCompletionMessage(status int, symbol, duration string) string {
	return symbol + " " + http.StatusText(status) + " (" + duration + ")"
}

// formatDuration formats duration in a human-readable form with microsecond precision.
// Uses dynamic units so very fast requests show in µs while longer ones show in ms/s.
func formatDuration(duration time.Duration) string {
	if duration <= 0 {
		return "0s"
	}
	duration = duration.Round(time.Microsecond)
	switch {
	case duration < time.Millisecond:
		return fmt.Sprintf("%dµs", duration.Microseconds())
	case duration < time.Second:
		return fmt.Sprintf("%.2fms", float64(duration)/float64(time.Millisecond))
	case duration < time.Minute:
		return fmt.Sprintf("%.2fs", duration.Seconds())
	default:
		return duration.Truncate(time.Second).String()
	}
}

// responseWriter wraps http.ResponseWriter to capture the status code.
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

// ConcurrencyLimiter enforces a global maximum number of concurrent requests.
// A limit of 0 or negative means unlimited. When the limit is reached, new
// requests receive 503 Service Unavailable.
type ConcurrencyLimiter struct {
	limit   int64
	current atomic.Int64
}

// NewConcurrencyLimiter creates a new concurrency limiter with the given max limit.
func NewConcurrencyLimiter(maxLimit int64) *ConcurrencyLimiter {
	return &ConcurrencyLimiter{limit: maxLimit}
}

// GetLimit returns the configured limit.
func (l *ConcurrencyLimiter) GetLimit() int64 {
	return l.limit
}

// CurrentInFlight returns the current number of in-flight requests.
func (l *ConcurrencyLimiter) CurrentInFlight() int64 {
	return l.current.Load()
}

// TryAcquire attempts to acquire a slot for a request.
// Returns true if the request can proceed, false if the limit is reached.
func (l *ConcurrencyLimiter) TryAcquire() bool {
	if l.limit <= 0 {
		// Unlimited - always succeed but still track count
		l.current.Add(1)
		return true
	}

	for {
		current := l.current.Load()
		if current >= l.limit {
			return false
		}
		if l.current.CompareAndSwap(current, current+1) {
			return true
		}
		// CAS failed, retry
	}
}

// Release releases a slot after request completion.
// Must be called after a successful TryAcquire.
func (l *ConcurrencyLimiter) Release() {
	l.current.Add(-1)
}

// ConcurrencyMiddleware creates middleware that enforces a global concurrency limit.
func ConcurrencyMiddleware(limiter *ConcurrencyLimiter) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			if !limiter.TryAcquire() {
				zerolog.Ctx(request.Context()).Warn().
					Int64("limit", limiter.GetLimit()).
					Int64("current", limiter.CurrentInFlight()).
					Msg("request rejected: concurrency limit reached")
				WriteError(writer, http.StatusServiceUnavailable, "server_busy",
					"server is at maximum capacity, please retry later")
				return
			}
			defer limiter.Release()
			next.ServeHTTP(writer, request)
		})
	}
}

// MaxBodyBytesMiddleware creates middleware that limits request body size.
// Uses http.MaxBytesReader to enforce the limit efficiently.
func MaxBodyBytesMiddleware(limit int64) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			if limit > 0 && request.Body != nil {
				request.Body = http.MaxBytesReader(writer, request.Body, limit)
			}
			next.ServeHTTP(writer, request)
		})
	}
}
