package backend

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrUnreachable indicates the backend could not be reached:
	// connection refused, DNS failure, or a timed-out request.
	ErrUnreachable = errors.New("backend: lm studio not reachable")

	// ErrEmptyCompletion indicates a 2xx completion response carried
	// no choices or an empty message content.
	ErrEmptyCompletion = errors.New("backend: completion returned no content")

	// ErrLoadUnsupported indicates the model load endpoint is absent.
	// LM Studio builds before API v0.3.0 do not expose POST /v1/models/load.
	ErrLoadUnsupported = errors.New("backend: model loading not supported by this lm studio version")
)

// maxErrorBodyBytes caps how much of a response body is kept on an error
// for diagnostics.
const maxErrorBodyBytes = 256

// BadStatusError reports an unexpected response from the backend: a
// non-2xx status, or a 2xx body that did not decode into the expected
// shape.
type BadStatusError struct {
	Body       string
	StatusCode int
}

// Error returns the status code and a snippet of the response body.
func (e *BadStatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("backend: unexpected response (status %d)", e.StatusCode)
	}
	return fmt.Sprintf("backend: unexpected response (status %d): %s", e.StatusCode, e.Body)
}

// newBadStatusError builds a BadStatusError with a truncated body snippet.
func newBadStatusError(statusCode int, body []byte) *BadStatusError {
	snippet := strings.TrimSpace(string(body))
	if len(snippet) > maxErrorBodyBytes {
		snippet = snippet[:maxErrorBodyBytes]
	}
	return &BadStatusError{StatusCode: statusCode, Body: snippet}
}
