// Package config provides configuration loading and parsing for lm-sidekick.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/omarluq/lm-sidekick/internal/cache"
	"github.com/omarluq/lm-sidekick/internal/health"
	"github.com/rs/zerolog"
	"github.com/samber/mo"
)

// Log level constants.
const (
	LevelDebug = "debug"
	LevelInfo  = "info"
	LevelWarn  = "warn"
	LevelError = "error"
)

// Config represents the complete lm-sidekick configuration.
// All knobs are read once at startup; there is no hot reload.
type Config struct {
	Backend   BackendConfig               `yaml:"backend" toml:"backend"`
	RateLimit RateLimitConfig             `yaml:"rate_limit" toml:"rate_limit"`
	Context   ContextConfig               `yaml:"context" toml:"context"`
	Batch     BatchConfig                 `yaml:"batch" toml:"batch"`
	Cache     cache.Config                `yaml:"cache" toml:"cache"`
	Health    health.CircuitBreakerConfig `yaml:"health" toml:"health"`
	Server    ServerConfig                `yaml:"server" toml:"server"`
	Logging   LoggingConfig               `yaml:"logging" toml:"logging"`
}

// Backend defaults matching a local LM Studio install.
const (
	DefaultBackendHost      = "localhost"
	DefaultBackendPort      = 1234
	DefaultRecommendedModel = "qwen2.5-coder-32b-instruct-q4_k_m"
)

// BackendConfig defines the OpenAI-compatible backend endpoint and its
// per-call timeout classes.
type BackendConfig struct {
	// Host and Port locate the backend. Defaults: localhost:1234.
	Host string `yaml:"host" toml:"host"`
	Port int    `yaml:"port" toml:"port"`

	// RecommendedModel is starred in listings and checked by health_check.
	RecommendedModel string `yaml:"recommended_model" toml:"recommended_model"`

	// HealthTimeoutMS bounds model discovery calls. Default: 5000.
	HealthTimeoutMS int `yaml:"health_timeout_ms" toml:"health_timeout_ms"`

	// CompletionTimeoutMS bounds generation calls. Default: 30000.
	CompletionTimeoutMS int `yaml:"completion_timeout_ms" toml:"completion_timeout_ms"`

	// ProbeTimeoutMS bounds the minimal current-model probe. Default: 10000.
	ProbeTimeoutMS int `yaml:"probe_timeout_ms" toml:"probe_timeout_ms"`
}

// GetEffectiveHost returns the backend host with default fallback.
func (b *BackendConfig) GetEffectiveHost() string {
	if b.Host == "" {
		return DefaultBackendHost
	}
	return b.Host
}

// GetEffectivePort returns the backend port with default fallback.
func (b *BackendConfig) GetEffectivePort() int {
	if b.Port <= 0 {
		return DefaultBackendPort
	}
	return b.Port
}

// BaseURL returns the backend's OpenAI-compatible API root.
func (b *BackendConfig) BaseURL() string {
	return fmt.Sprintf("http://%s:%d/v1", b.GetEffectiveHost(), b.GetEffectivePort())
}

// GetEffectiveRecommendedModel returns the recommended model with default fallback.
func (b *BackendConfig) GetEffectiveRecommendedModel() string {
	if b.RecommendedModel == "" {
		return DefaultRecommendedModel
	}
	return b.RecommendedModel
}

// GetHealthTimeoutOption returns the health timeout as a duration Option.
// Returns None if HealthTimeoutMS is zero or negative (use default).
func (b *BackendConfig) GetHealthTimeoutOption() mo.Option[time.Duration] {
	if b.HealthTimeoutMS <= 0 {
		return mo.None[time.Duration]()
	}
	return mo.Some(time.Duration(b.HealthTimeoutMS) * time.Millisecond)
}

// GetCompletionTimeoutOption returns the completion timeout as a duration Option.
// Returns None if CompletionTimeoutMS is zero or negative (use default).
func (b *BackendConfig) GetCompletionTimeoutOption() mo.Option[time.Duration] {
	if b.CompletionTimeoutMS <= 0 {
		return mo.None[time.Duration]()
	}
	return mo.Some(time.Duration(b.CompletionTimeoutMS) * time.Millisecond)
}

// GetProbeTimeoutOption returns the probe timeout as a duration Option.
// Returns None if ProbeTimeoutMS is zero or negative (use default).
func (b *BackendConfig) GetProbeTimeoutOption() mo.Option[time.Duration] {
	if b.ProbeTimeoutMS <= 0 {
		return mo.None[time.Duration]()
	}
	return mo.Some(time.Duration(b.ProbeTimeoutMS) * time.Millisecond)
}

// RateLimitConfig defines the per-client admission budget.
type RateLimitConfig struct {
	// Strategy selects the implementation: sliding_window (default) or token_bucket.
	Strategy string `yaml:"strategy" toml:"strategy"`

	// WindowSeconds is the budget window length. Default: 60.
	WindowSeconds int `yaml:"window_seconds" toml:"window_seconds"`

	// MaxRequests is the number of admissions per window. Default: 30.
	MaxRequests int `yaml:"max_requests" toml:"max_requests"`
}

// GetEffectiveStrategy returns the rate limit strategy with default fallback.
func (r *RateLimitConfig) GetEffectiveStrategy() string {
	if r.Strategy == "" {
		return "sliding_window"
	}
	return r.Strategy
}

// GetWindowOption returns the window as a duration Option.
// Returns None if WindowSeconds is zero or negative (use default).
func (r *RateLimitConfig) GetWindowOption() mo.Option[time.Duration] {
	if r.WindowSeconds <= 0 {
		return mo.None[time.Duration]()
	}
	return mo.Some(time.Duration(r.WindowSeconds) * time.Second)
}

// GetMaxRequestsOption returns the admission budget as an Option.
// Returns None if MaxRequests is zero or negative (use default).
func (r *RateLimitConfig) GetMaxRequestsOption() mo.Option[int] {
	if r.MaxRequests <= 0 {
		return mo.None[int]()
	}
	return mo.Some(r.MaxRequests)
}

// ContextConfig defines the context store budget.
type ContextConfig struct {
	// MaxTokens is the estimated-token ceiling per stored entry. Default: 32000.
	MaxTokens int `yaml:"max_tokens" toml:"max_tokens"`
}

// GetMaxTokensOption returns the per-entry token ceiling as an Option.
// Returns None if MaxTokens is zero or negative (use default).
func (c *ContextConfig) GetMaxTokensOption() mo.Option[int] {
	if c.MaxTokens <= 0 {
		return mo.None[int]()
	}
	return mo.Some(c.MaxTokens)
}

// BatchConfig defines batch dispatch behavior.
type BatchConfig struct {
	// Size is the default items per chunk when the caller does not choose one. Default: 5.
	Size int `yaml:"size" toml:"size"`

	// PacingMS is the wait between chunks. Default: 500.
	PacingMS int `yaml:"pacing_ms" toml:"pacing_ms"`
}

// GetSizeOption returns the default chunk size as an Option.
// Returns None if Size is zero or negative (use default).
func (b *BatchConfig) GetSizeOption() mo.Option[int] {
	if b.Size <= 0 {
		return mo.None[int]()
	}
	return mo.Some(b.Size)
}

// GetPacingOption returns the inter-chunk pacing as a duration Option.
// Returns None if PacingMS is zero or negative (use default).
func (b *BatchConfig) GetPacingOption() mo.Option[time.Duration] {
	if b.PacingMS <= 0 {
		return mo.None[time.Duration]()
	}
	return mo.Some(time.Duration(b.PacingMS) * time.Millisecond)
}

// ServerConfig defines tool-server-level settings.
type ServerConfig struct {
	Listen        string     `yaml:"listen" toml:"listen"`
	Auth          AuthConfig `yaml:"auth" toml:"auth"`
	MaxConcurrent int        `yaml:"max_concurrent" toml:"max_concurrent"`
	MaxBodyBytes  int64      `yaml:"max_body_bytes" toml:"max_body_bytes"`
	EnableHTTP2   bool       `yaml:"enable_http2" toml:"enable_http2"` // Enable HTTP/2 cleartext (h2c) support
}

// AuthConfig defines authentication settings for the tool server.
type AuthConfig struct {
	// APIKey is the expected value for x-api-key header authentication.
	// If empty, API key authentication is disabled.
	APIKey string `yaml:"api_key" toml:"api_key"`
}

// IsEnabled returns true if authentication is configured.
func (a *AuthConfig) IsEnabled() bool {
	return a.APIKey != ""
}

// GetMaxConcurrentOption returns the max concurrent setting as an Option.
// Returns None if MaxConcurrent is zero (unlimited).
func (s *ServerConfig) GetMaxConcurrentOption() mo.Option[int] {
	if s.MaxConcurrent <= 0 {
		return mo.None[int]()
	}
	return mo.Some(s.MaxConcurrent)
}

// GetMaxBodyBytesOption returns the request body cap as an Option.
// Returns None if MaxBodyBytes is zero (unlimited).
func (s *ServerConfig) GetMaxBodyBytesOption() mo.Option[int64] {
	if s.MaxBodyBytes <= 0 {
		return mo.None[int64]()
	}
	return mo.Some(s.MaxBodyBytes)
}

// LoggingConfig defines logging behavior.
type LoggingConfig struct {
	Level  string `yaml:"level" toml:"level"`   // debug, info, warn, error
	Format string `yaml:"format" toml:"format"` // json, console
	Output string `yaml:"output" toml:"output"` // stdout, stderr, or file path
	Pretty bool   `yaml:"pretty" toml:"pretty"` // enable colored console output
}

// ParseLevel converts a string log level to zerolog.Level.
// Returns zerolog.InfoLevel if the level string is invalid.
func (l *LoggingConfig) ParseLevel() zerolog.Level {
	switch strings.ToLower(l.Level) {
	case LevelDebug:
		return zerolog.DebugLevel
	case LevelInfo:
		return zerolog.InfoLevel
	case LevelWarn:
		return zerolog.WarnLevel
	case LevelError:
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}
