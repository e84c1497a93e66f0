// Package gateway is the single policy path between the tool layer and
// the backend.
//
// Every caller-content completion goes through Complete, which charges
// the caller's rate budget before the backend call is attempted and
// reports the outcome to the circuit breaker. Model discovery, probes
// and model loading are passthroughs: they carry no caller content and
// spend no budget, but the model list is served from a short-TTL cache
// so repeated health checks and listings stay off the backend.
package gateway

import (
	"context"
	"encoding/json"
	"time"

	"github.com/omarluq/lm-sidekick/internal/backend"
	"github.com/omarluq/lm-sidekick/internal/cache"
	"github.com/omarluq/lm-sidekick/internal/health"
	"github.com/omarluq/lm-sidekick/internal/ratelimit"
	"github.com/rs/zerolog"
)

// DefaultModelsTTL is how long a fetched model list stays cached.
const DefaultModelsTTL = 10 * time.Second

// modelsCacheKey is the cache key for the backend model list.
const modelsCacheKey = "models"

// Request describes one completion on behalf of a caller.
type Request struct {
	// ClientID identifies the caller for rate limiting. Empty means
	// ratelimit.DefaultClientID.
	ClientID string

	// Prompt is the user message content.
	Prompt string

	// SystemPrompt, when non-empty, is sent as a leading system message.
	SystemPrompt string

	// Temperature controls sampling randomness.
	Temperature float64

	// MaxTokens bounds the generated completion length.
	MaxTokens int
}

// Config wires the gateway's collaborators.
type Config struct {
	Backend *backend.Client
	Limiter ratelimit.RateLimiter

	// Breaker records completion outcomes for health reporting. Optional;
	// nil disables circuit tracking.
	Breaker *health.CircuitBreaker

	// Cache holds the model list between discovery calls. Optional; nil
	// disables caching.
	Cache cache.Cache

	Logger *zerolog.Logger

	// ModelsTTL overrides DefaultModelsTTL when positive.
	ModelsTTL time.Duration
}

// Gateway fronts the backend with rate limiting, error translation and
// health tracking.
type Gateway struct {
	backend   *backend.Client
	limiter   ratelimit.RateLimiter
	breaker   *health.CircuitBreaker
	cache     cache.Cache
	log       zerolog.Logger
	modelsTTL time.Duration
}

// New creates a Gateway. Backend and Limiter are required.
func New(cfg Config) (*Gateway, error) {
	if cfg.Backend == nil {
		return nil, ErrNoBackend
	}
	if cfg.Limiter == nil {
		return nil, ErrNoLimiter
	}

	log := zerolog.Nop()
	if cfg.Logger != nil {
		log = cfg.Logger.With().Str("component", "gateway").Logger()
	}

	ttl := cfg.ModelsTTL
	if ttl <= 0 {
		ttl = DefaultModelsTTL
	}

	return &Gateway{
		backend:   cfg.Backend,
		limiter:   cfg.Limiter,
		breaker:   cfg.Breaker,
		cache:     cfg.Cache,
		log:       log,
		modelsTTL: ttl,
	}, nil
}

// Complete runs one rate-limited completion.
//
// The caller's budget is charged on attempt: a request admitted by the
// limiter stays counted even when the backend call fails afterwards, so
// retries cannot evade the limit. Backend errors propagate untranslated
// (ErrUnreachable, BadStatusError, ErrEmptyCompletion) so callers can
// branch on kind; a rejected admission returns ratelimit.ErrLimitExceeded.
func (g *Gateway) Complete(ctx context.Context, req Request) (string, error) {
	clientID := req.ClientID
	if clientID == "" {
		clientID = ratelimit.DefaultClientID
	}

	if !g.limiter.Admit(clientID) {
		g.log.Debug().
			Str("client_id", clientID).
			Msg("completion rejected by rate limiter")
		return "", ratelimit.ErrLimitExceeded
	}

	messages := make([]backend.Message, 0, 2)
	if req.SystemPrompt != "" {
		messages = append(messages, backend.Message{Role: backend.RoleSystem, Content: req.SystemPrompt})
	}
	messages = append(messages, backend.Message{Role: backend.RoleUser, Content: req.Prompt})

	resp, err := g.backend.ChatCompletion(ctx, backend.ChatRequest{
		Messages:    messages,
		Temperature: req.Temperature,
		MaxTokens:   req.MaxTokens,
	})
	g.report(err)
	if err != nil {
		return "", err
	}

	g.log.Debug().
		Str("client_id", clientID).
		Str("model", resp.Model).
		Int("total_tokens", resp.Usage.TotalTokens).
		Msg("completion succeeded")

	return resp.Content(), nil
}

// Health verifies the backend is reachable. It rides the same cached
// model list as Models, so repeated health checks do not hammer the
// backend.
func (g *Gateway) Health(ctx context.Context) error {
	_, err := g.Models(ctx)
	return err
}

// Models returns the backend's model list, served from cache while the
// cached copy is fresh. Unthrottled: discovery is not caller content.
func (g *Gateway) Models(ctx context.Context) (backend.ModelList, error) {
	if list, ok := g.cachedModels(ctx); ok {
		return list, nil
	}

	list, err := g.backend.ListModels(ctx)
	if err != nil {
		return backend.ModelList{}, err
	}

	g.storeModels(ctx, list)
	return list, nil
}

// CurrentModel identifies the loaded model with a minimal probe
// completion. Unthrottled.
func (g *Gateway) CurrentModel(ctx context.Context) (string, error) {
	return g.backend.Probe(ctx)
}

// LoadModel asks the backend to load a model. Unthrottled. On success
// the cached model list is dropped so the next discovery sees the new
// state.
func (g *Gateway) LoadModel(ctx context.Context, name string) error {
	if err := g.backend.LoadModel(ctx, name); err != nil {
		return err
	}

	if g.cache != nil {
		if err := g.cache.Delete(ctx, modelsCacheKey); err != nil {
			g.log.Debug().Err(err).Msg("failed to invalidate model list cache")
		}
	}
	return nil
}

// CircuitState returns the backend circuit breaker state. Reporting
// only; the gateway never refuses a call because the circuit is open.
func (g *Gateway) CircuitState() health.State {
	if g.breaker == nil {
		return health.StateClosed
	}
	return g.breaker.State()
}

// report records a completion outcome on the breaker. Errors that do
// not indicate an unhealthy backend (cancellations, empty completions,
// client-side statuses) are not recorded.
func (g *Gateway) report(err error) {
	if g.breaker == nil {
		return
	}
	if err == nil {
		g.breaker.ReportSuccess()
		return
	}
	if health.ShouldCountAsFailure(err) {
		g.breaker.ReportFailure(err)
	}
}

func (g *Gateway) cachedModels(ctx context.Context) (backend.ModelList, bool) {
	if g.cache == nil {
		return backend.ModelList{}, false
	}

	raw, err := g.cache.Get(ctx, modelsCacheKey)
	if err != nil {
		return backend.ModelList{}, false
	}

	var list backend.ModelList
	if err := json.Unmarshal(raw, &list); err != nil {
		g.log.Debug().Err(err).Msg("dropping undecodable cached model list")
		return backend.ModelList{}, false
	}
	return list, true
}

func (g *Gateway) storeModels(ctx context.Context, list backend.ModelList) {
	if g.cache == nil {
		return
	}

	raw, err := json.Marshal(list)
	if err != nil {
		return
	}
	if err := g.cache.SetWithTTL(ctx, modelsCacheKey, raw, g.modelsTTL); err != nil {
		g.log.Debug().Err(err).Msg("failed to cache model list")
	}
}
