// Package sidekick implements the tool surface of the server.
//
// Every operation returns a human-readable string. Failures are rendered
// as text with a leading glyph (✓ success, ⚠ warning, ✗ failure) rather
// than surfacing typed errors to the tool caller; internal components
// exchange typed errors and this package is where they stop.
package sidekick

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/omarluq/lm-sidekick/internal/backend"
	"github.com/omarluq/lm-sidekick/internal/batch"
	"github.com/omarluq/lm-sidekick/internal/contextstore"
	"github.com/omarluq/lm-sidekick/internal/gateway"
	"github.com/omarluq/lm-sidekick/internal/health"
	"github.com/omarluq/lm-sidekick/internal/ratelimit"
	"github.com/rs/zerolog"
)

// DefaultRecommendedModel is suggested to users when absent from the
// backend's model list.
const DefaultRecommendedModel = "qwen2.5-coder-32b-instruct-q4_k_m"

// DefaultAddress is the backend address shown in tool output when none is
// configured.
const DefaultAddress = "localhost:1234"

// rateLimitText is the uniform throttling message across all tools.
const rateLimitText = "⚠ Rate limit exceeded. Please wait a moment before trying again."

// ErrIncompleteService indicates New was called without one of the
// required collaborators.
var ErrIncompleteService = errors.New("sidekick: gateway, store, dispatcher, and limiter are all required")

// Gateway is the slice of the completion gateway the tool surface uses.
// Satisfied by *gateway.Gateway.
type Gateway interface {
	Complete(ctx context.Context, req gateway.Request) (string, error)
	Models(ctx context.Context) (backend.ModelList, error)
	CurrentModel(ctx context.Context) (string, error)
	LoadModel(ctx context.Context, name string) error
	CircuitState() health.State
}

// Config carries the collaborators and display settings for a Service.
type Config struct {
	// Gateway, Store, Dispatcher, and Limiter are required.
	Gateway    Gateway
	Store      *contextstore.Store
	Dispatcher *batch.Dispatcher
	Limiter    ratelimit.RateLimiter

	// Address is the backend host:port shown in tool output.
	// Empty uses DefaultAddress.
	Address string

	// RecommendedModel is highlighted in health and model listings.
	// Empty uses DefaultRecommendedModel.
	RecommendedModel string

	// DefaultBatchSize is used when a batch_process call omits batch_size.
	// Zero defers to the dispatcher's chunking default.
	DefaultBatchSize int

	// Logger may be nil for no logging.
	Logger *zerolog.Logger
}

// Service implements the ten sidekick tools.
type Service struct {
	gateway    Gateway
	store      *contextstore.Store
	dispatcher *batch.Dispatcher
	limiter    ratelimit.RateLimiter

	address          string
	recommendedModel string
	defaultBatchSize int
	started          time.Time
	log              zerolog.Logger
}

// New creates the tool service.
func New(cfg Config) (*Service, error) {
	if cfg.Gateway == nil || cfg.Store == nil || cfg.Dispatcher == nil || cfg.Limiter == nil {
		return nil, ErrIncompleteService
	}

	if cfg.Address == "" {
		cfg.Address = DefaultAddress
	}
	if cfg.RecommendedModel == "" {
		cfg.RecommendedModel = DefaultRecommendedModel
	}

	log := zerolog.Nop()
	if cfg.Logger != nil {
		log = cfg.Logger.With().Str("component", "sidekick").Logger()
	}

	return &Service{
		gateway:          cfg.Gateway,
		store:            cfg.Store,
		dispatcher:       cfg.Dispatcher,
		limiter:          cfg.Limiter,
		address:          cfg.Address,
		recommendedModel: cfg.RecommendedModel,
		defaultBatchSize: cfg.DefaultBatchSize,
		started:          time.Now(),
		log:              log,
	}, nil
}

// circuitLabel renders a breaker state for display.
func circuitLabel(state health.State) string {
	return strings.ToUpper(state.String())
}
