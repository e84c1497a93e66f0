// Package backend implements a typed HTTP client for LM Studio's
// OpenAI-compatible API.
//
// The client covers the four calls the sidekick needs: listing models,
// chat completions, loading a model, and a minimal completion probe used
// to identify the currently loaded model. Each call class carries its own
// timeout since model generation takes orders of magnitude longer than a
// model list.
//
// Errors are classified so callers can branch without string matching:
//   - ErrUnreachable: the server could not be reached at all.
//   - BadStatusError: a non-2xx status or an undecodable 2xx body.
//   - ErrEmptyCompletion: a 2xx completion with no usable content.
//   - ErrLoadUnsupported: POST /v1/models/load returned 404.
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/rs/zerolog"
)

// Default timeouts per call class.
const (
	// DefaultHealthTimeout bounds lightweight metadata calls (model list).
	DefaultHealthTimeout = 5 * time.Second

	// DefaultCompletionTimeout bounds generation calls and model loads.
	DefaultCompletionTimeout = 30 * time.Second

	// DefaultProbeTimeout bounds the current-model probe completion.
	DefaultProbeTimeout = 10 * time.Second
)

// DefaultBaseURL is the LM Studio API base when none is configured.
const DefaultBaseURL = "http://localhost:1234/v1"

// Client is a typed HTTP client for an LM Studio server.
// All methods are safe for concurrent use.
type Client struct {
	httpClient        *http.Client
	baseURL           string
	healthTimeout     time.Duration
	completionTimeout time.Duration
	probeTimeout      time.Duration
	logger            zerolog.Logger
}

// ClientConfig holds Client construction parameters.
// Zero values fall back to package defaults.
type ClientConfig struct {
	HTTPClient        *http.Client
	Logger            *zerolog.Logger
	BaseURL           string
	HealthTimeout     time.Duration
	CompletionTimeout time.Duration
	ProbeTimeout      time.Duration
}

// NewClient creates a backend client from the given configuration.
func NewClient(cfg ClientConfig) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.HTTPClient == nil {
		cfg.HTTPClient = &http.Client{}
	}
	if cfg.HealthTimeout <= 0 {
		cfg.HealthTimeout = DefaultHealthTimeout
	}
	if cfg.CompletionTimeout <= 0 {
		cfg.CompletionTimeout = DefaultCompletionTimeout
	}
	if cfg.ProbeTimeout <= 0 {
		cfg.ProbeTimeout = DefaultProbeTimeout
	}

	logger := zerolog.Nop()
	if cfg.Logger != nil {
		logger = cfg.Logger.With().Str("component", "backend").Logger()
	}

	return &Client{
		httpClient:        cfg.HTTPClient,
		baseURL:           cfg.BaseURL,
		healthTimeout:     cfg.HealthTimeout,
		completionTimeout: cfg.CompletionTimeout,
		probeTimeout:      cfg.ProbeTimeout,
		logger:            logger,
	}
}

// BaseURL returns the backend API base URL.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// ListModels fetches the models currently available on the backend.
func (c *Client) ListModels(ctx context.Context) (ModelList, error) {
	body, err := c.get(ctx, "/models", c.healthTimeout)
	if err != nil {
		return ModelList{}, err
	}

	var list ModelList
	if err := json.Unmarshal(body, &list); err != nil {
		return ModelList{}, newBadStatusError(http.StatusOK, body)
	}
	return list, nil
}

// ChatCompletion sends a chat completion request and returns the decoded
// response. A 2xx response with no choices or empty content yields
// ErrEmptyCompletion.
func (c *Client) ChatCompletion(ctx context.Context, req ChatRequest) (ChatResponse, error) {
	body, err := c.postJSON(ctx, "/chat/completions", req, c.completionTimeout)
	if err != nil {
		return ChatResponse{}, err
	}

	var resp ChatResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return ChatResponse{}, newBadStatusError(http.StatusOK, body)
	}
	if resp.Content() == "" {
		return ChatResponse{}, ErrEmptyCompletion
	}
	return resp, nil
}

// LoadModel asks the backend to load the named model.
// Returns ErrLoadUnsupported when the endpoint does not exist, which is
// the case for LM Studio builds without model loading support.
func (c *Client) LoadModel(ctx context.Context, model string) error {
	payload := struct {
		Model string `json:"model"`
	}{Model: model}

	_, err := c.postJSON(ctx, "/models/load", payload, c.completionTimeout)

	var statusErr *BadStatusError
	if errors.As(err, &statusErr) && statusErr.StatusCode == http.StatusNotFound {
		return ErrLoadUnsupported
	}
	return err
}

// Probe issues a minimal completion and returns the model name the
// backend answered with. LM Studio fills the model field with whatever
// model is currently loaded, so this identifies the active model even
// though the model list has no "loaded" marker.
func (c *Client) Probe(ctx context.Context) (string, error) {
	req := ChatRequest{
		Model:       "",
		Messages:    []Message{{Role: RoleUser, Content: "Hi"}},
		Temperature: 0.1,
		MaxTokens:   5,
		Stream:      false,
	}

	body, err := c.postJSON(ctx, "/chat/completions", req, c.probeTimeout)
	if err != nil {
		return "", err
	}

	var resp ChatResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return "", newBadStatusError(http.StatusOK, body)
	}
	return resp.Model, nil
}

// get issues a GET request and returns the body of a 2xx response.
func (c *Client) get(ctx context.Context, path string, timeout time.Duration) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	return c.do(req)
}

// postJSON issues a POST request with a JSON body and returns the body
// of a 2xx response.
func (c *Client) postJSON(ctx context.Context, path string, payload any, timeout time.Duration) ([]byte, error) {
	encoded, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("encode request: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(encoded))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	return c.do(req)
}

// do executes the request and maps failures onto the error taxonomy.
func (c *Client) do(req *http.Request) ([]byte, error) {
	start := time.Now()

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Debug().
			Err(err).
			Str("method", req.Method).
			Str("url", req.URL.String()).
			Msg("backend request failed")
		return nil, fmt.Errorf("%w: %v", ErrUnreachable, err)
	}
	defer closeBody(resp.Body)

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnreachable, err)
	}

	c.logger.Debug().
		Str("method", req.Method).
		Str("url", req.URL.String()).
		Int("status", resp.StatusCode).
		Dur("elapsed", time.Since(start)).
		Msg("backend request")

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, newBadStatusError(resp.StatusCode, body)
	}
	return body, nil
}

// closeBody closes the provided io.ReadCloser and discards any error.
func closeBody(body io.ReadCloser) {
	if err := body.Close(); err != nil {
		_ = err
	}
}
