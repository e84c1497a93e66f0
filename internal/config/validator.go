// Package config provides configuration loading, parsing, and validation for lm-sidekick.
package config

import (
	"net"
	"strings"
)

// Valid rate limit strategies.
var validRateLimitStrategies = map[string]bool{
	"":               true, // Empty defaults to sliding_window
	"sliding_window": true,
	"token_bucket":   true,
}

// Valid logging levels.
var validLogLevels = map[string]bool{
	"":      true, // Empty defaults to info
	"debug": true,
	"info":  true,
	"warn":  true,
	"error": true,
}

// Valid logging formats.
var validLogFormats = map[string]bool{
	"":        true, // Empty defaults to json
	"json":    true,
	"console": true,
	"text":    true, // Alias for console
	"pretty":  true,
}

// Validate checks the configuration for errors.
// It validates all required fields, valid values, and cross-field constraints.
// Returns a ValidationError containing all errors found, or nil if valid.
func (c *Config) Validate() error {
	errs := &ValidationError{}

	validateServer(c, errs)
	validateBackend(c, errs)
	validateRateLimit(c, errs)
	validateContext(c, errs)
	validateBatch(c, errs)
	validateHealth(c, errs)
	validateLogging(c, errs)

	return errs.ToError()
}

// validateServer validates the server configuration section.
func validateServer(c *Config, errs *ValidationError) {
	// Server.Listen is required
	if c.Server.Listen == "" {
		errs.Add("server.listen is required")
	} else {
		// Validate listen address format (host:port)
		validateListenAddress(c.Server.Listen, errs)
	}

	// Validate max_concurrent if set
	if c.Server.MaxConcurrent < 0 {
		errs.Add("server.max_concurrent must be >= 0")
	}

	// Validate max_body_bytes if set
	if c.Server.MaxBodyBytes < 0 {
		errs.Add("server.max_body_bytes must be >= 0")
	}
}

// validateListenAddress validates a listen address in host:port format.
func validateListenAddress(addr string, errs *ValidationError) {
	host, port, err := net.SplitHostPort(addr)
	if err != nil {
		errs.Addf("server.listen must be in host:port format (got %q)", addr)
		return
	}

	// Host can be empty (listen on all interfaces) or a valid IP/hostname
	if host != "" {
		// Try to parse as IP
		if ip := net.ParseIP(host); ip == nil {
			// Not an IP, treat as hostname - basic validation
			if strings.ContainsAny(host, " \t\n") {
				errs.Add("server.listen host contains invalid characters")
			}
		}
	}

	// Port must be a number (SplitHostPort doesn't validate this)
	if port == "" {
		errs.Add("server.listen port is required")
	}
}

// validateBackend validates the backend configuration section.
func validateBackend(c *Config, errs *ValidationError) {
	if strings.ContainsAny(c.Backend.Host, " \t\n") {
		errs.Add("backend.host contains invalid characters")
	}

	if c.Backend.Port < 0 || c.Backend.Port > 65535 {
		errs.Addf("backend.port must be 0-65535 (got %d)", c.Backend.Port)
	}

	if c.Backend.HealthTimeoutMS < 0 {
		errs.Add("backend.health_timeout_ms must be >= 0")
	}
	if c.Backend.CompletionTimeoutMS < 0 {
		errs.Add("backend.completion_timeout_ms must be >= 0")
	}
	if c.Backend.ProbeTimeoutMS < 0 {
		errs.Add("backend.probe_timeout_ms must be >= 0")
	}
}

// validateRateLimit validates the rate limit configuration section.
func validateRateLimit(c *Config, errs *ValidationError) {
	if !validRateLimitStrategies[c.RateLimit.Strategy] {
		errs.Addf("rate_limit.strategy is invalid (got %q, valid: sliding_window, token_bucket)",
			c.RateLimit.Strategy)
	}

	if c.RateLimit.WindowSeconds < 0 {
		errs.Add("rate_limit.window_seconds must be >= 0")
	}
	if c.RateLimit.MaxRequests < 0 {
		errs.Add("rate_limit.max_requests must be >= 0")
	}
}

// validateContext validates the context store configuration section.
func validateContext(c *Config, errs *ValidationError) {
	if c.Context.MaxTokens < 0 {
		errs.Add("context.max_tokens must be >= 0")
	}
}

// validateBatch validates the batch configuration section.
func validateBatch(c *Config, errs *ValidationError) {
	if c.Batch.Size < 0 {
		errs.Add("batch.size must be >= 0")
	}
	if c.Batch.PacingMS < 0 {
		errs.Add("batch.pacing_ms must be >= 0")
	}
}

// validateHealth validates the circuit breaker configuration section.
func validateHealth(c *Config, errs *ValidationError) {
	if c.Health.FailureThreshold < 0 {
		errs.Add("health.failure_threshold must be >= 0")
	}
	if c.Health.OpenDurationMS < 0 {
		errs.Add("health.open_duration_ms must be >= 0")
	}
	if c.Health.HalfOpenProbes < 0 {
		errs.Add("health.half_open_probes must be >= 0")
	}
}

// validateLogging validates the logging configuration section.
func validateLogging(c *Config, errs *ValidationError) {
	// Level must be valid if set
	if !validLogLevels[c.Logging.Level] {
		errs.Addf("logging.level is invalid (got %q, valid: debug, info, warn, error)",
			c.Logging.Level)
	}

	// Format must be valid if set
	if !validLogFormats[c.Logging.Format] {
		errs.Addf("logging.format is invalid (got %q, valid: json, console, text, pretty)",
			c.Logging.Format)
	}
}
