package api

import (
	"net/http"

	"github.com/omarluq/lm-sidekick/internal/config"
	"github.com/omarluq/lm-sidekick/internal/sidekick"
)

// SetupRoutes creates the HTTP handler with all routes configured.
// Routes:
//   - POST /v1/tools/{tool} - Invoke a sidekick tool (with auth if configured)
//   - GET /health - Health check endpoint (no auth required)
func SetupRoutes(cfg *config.Config, service *sidekick.Service) http.Handler {
	mux := http.NewServeMux()

	// Apply middleware in order:
	// 1. RequestIDMiddleware (first - generates ID)
	// 2. LoggingMiddleware (second - logs with ID)
	// 3. AuthMiddleware (third - auth logs include ID)
	// 4. ConcurrencyMiddleware / MaxBodyBytesMiddleware
	// 5. Handler
	var toolsHandler http.Handler = NewToolHandler(service)

	if maxBody, ok := cfg.Server.GetMaxBodyBytesOption().Get(); ok {
		toolsHandler = MaxBodyBytesMiddleware(maxBody)(toolsHandler)
	}

	if maxConcurrent, ok := cfg.Server.GetMaxConcurrentOption().Get(); ok {
		toolsHandler = ConcurrencyMiddleware(NewConcurrencyLimiter(int64(maxConcurrent)))(toolsHandler)
	}

	if cfg.Server.Auth.IsEnabled() {
		toolsHandler = AuthMiddleware(cfg.Server.Auth.APIKey)(toolsHandler)
	}

	toolsHandler = LoggingMiddleware()(toolsHandler)
	toolsHandler = RequestIDMiddleware()(toolsHandler)

	mux.Handle("POST /v1/tools/{tool}", toolsHandler)

	// Health check endpoint (no auth required)
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		//nolint:errcheck // Health check write error is non-critical
		w.Write([]byte(`{"status":"ok"}`))
	})

	return mux
}
