package gateway

import "context"

type clientIDKey struct{}

// WithClientID returns a context carrying the caller's client id for
// rate limiting. The HTTP layer sets it from the X-Client-ID header.
func WithClientID(ctx context.Context, clientID string) context.Context {
	return context.WithValue(ctx, clientIDKey{}, clientID)
}

// ClientIDFromContext returns the client id stored in the context, or
// the empty string when none is set.
func ClientIDFromContext(ctx context.Context) string {
	if id, ok := ctx.Value(clientIDKey{}).(string); ok {
		return id
	}
	return ""
}
