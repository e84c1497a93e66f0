package config

import (
	"github.com/omarluq/lm-sidekick/internal/cache"
	"github.com/omarluq/lm-sidekick/internal/health"
)

// DetectFormat exports detectFormat for testing.
var DetectFormat = detectFormat

// Test helpers with all fields initialized for exhaustruct compliance.

// MakeTestConfig returns a minimal valid Config with all fields set.
func MakeTestConfig() *Config {
	return &Config{
		Backend:   MakeTestBackendConfig(),
		RateLimit: MakeTestRateLimitConfig(),
		Context:   ContextConfig{MaxTokens: 32000},
		Batch:     BatchConfig{Size: 5, PacingMS: 500},
		Cache:     MakeTestCacheConfig(),
		Health:    MakeTestHealthConfig(),
		Server:    MakeTestServerConfig(),
		Logging:   MakeTestLoggingConfig(),
	}
}

// MakeTestHealthConfig returns a minimal health.CircuitBreakerConfig with all fields set.
func MakeTestHealthConfig() health.CircuitBreakerConfig {
	return health.CircuitBreakerConfig{
		FailureThreshold: 5,
		OpenDurationMS:   30000,
		HalfOpenProbes:   3,
	}
}

// MakeTestBackendConfig returns a minimal BackendConfig with all fields set.
func MakeTestBackendConfig() BackendConfig {
	return BackendConfig{
		Host:                "localhost",
		Port:                1234,
		RecommendedModel:    "",
		HealthTimeoutMS:     5000,
		CompletionTimeoutMS: 30000,
		ProbeTimeoutMS:      10000,
	}
}

// MakeTestRateLimitConfig returns a minimal RateLimitConfig with all fields set.
func MakeTestRateLimitConfig() RateLimitConfig {
	return RateLimitConfig{
		Strategy:      "",
		WindowSeconds: 60,
		MaxRequests:   30,
	}
}

// MakeTestServerConfig returns a minimal ServerConfig with all fields set.
func MakeTestServerConfig() ServerConfig {
	return ServerConfig{
		Listen:        "127.0.0.1:8787",
		Auth:          AuthConfig{APIKey: ""},
		MaxConcurrent: 0,
		MaxBodyBytes:  0,
		EnableHTTP2:   false,
	}
}

// MakeTestLoggingConfig returns a minimal LoggingConfig with all fields set.
func MakeTestLoggingConfig() LoggingConfig {
	return LoggingConfig{
		Level:  "info",
		Format: "json",
		Output: "stdout",
		Pretty: false,
	}
}

// MakeTestCacheConfig returns a minimal cache.Config with all fields set.
func MakeTestCacheConfig() cache.Config {
	return cache.Config{
		Mode:      cache.ModeDisabled,
		Ristretto: cache.DefaultRistrettoConfig(),
	}
}
