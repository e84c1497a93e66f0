package sidekick

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/omarluq/lm-sidekick/internal/contextstore"
	"github.com/omarluq/lm-sidekick/internal/gateway"
	"github.com/omarluq/lm-sidekick/internal/ratelimit"
)

// OffloadContext stores, retrieves, summarizes, or analyzes a context
// payload. An empty operation means "store". The summarize and analyze
// operations work on data when given, otherwise on the stored entry
// under id.
func (s *Service) OffloadContext(ctx context.Context, id, data, operation string) string {
	if operation == "" {
		operation = "store"
	}
	clientID := gateway.ClientIDFromContext(ctx)

	switch operation {
	case "store":
		tokens, err := s.store.Store(id, data)
		if err != nil {
			var tooLarge *contextstore.TooLargeError
			if errors.As(err, &tooLarge) {
				return fmt.Sprintf("⚠ Context too large (%d tokens). Maximum is %d tokens.", tooLarge.Tokens, tooLarge.Max)
			}
			return fmt.Sprintf("✗ Error processing context: %v", err)
		}
		return fmt.Sprintf("✓ Context stored successfully. ID: %s (%d tokens)", id, tokens)

	case "retrieve":
		entry, err := s.store.Retrieve(id)
		if err != nil {
			return fmt.Sprintf("✗ Context ID '%s' not found.", id)
		}
		return fmt.Sprintf("Context retrieved:\n\n%s\n\n(Stored: %s, %d tokens)",
			entry.Data, entry.CreatedAt.Format(time.RFC3339), entry.Tokens)

	case "summarize":
		summary, err := s.store.Summarize(ctx, id, data, clientID)
		if err != nil {
			return s.deriveFailure(id, err)
		}
		return fmt.Sprintf("✓ Summary created:\n\n%s", summary)

	case "analyze":
		analysis, err := s.store.Analyze(ctx, id, data, clientID)
		if err != nil {
			return s.deriveFailure(id, err)
		}
		return fmt.Sprintf("Analysis:\n\n%s", analysis)
	}

	return fmt.Sprintf("✗ Unknown operation: %s. Use 'store', 'retrieve', 'summarize', or 'analyze'.", operation)
}

// ClearContexts removes stored contexts and reports the count. An empty
// pattern clears everything, like "*".
func (s *Service) ClearContexts(pattern string) string {
	if pattern == "" {
		pattern = "*"
	}

	count := s.store.Clear(pattern)
	if pattern == "*" {
		return fmt.Sprintf("✓ Cleared all %d stored contexts.", count)
	}
	return fmt.Sprintf("✓ Cleared %d contexts matching '%s'.", count, pattern)
}

// deriveFailure renders a summarize/analyze error for the tool caller.
func (s *Service) deriveFailure(id string, err error) string {
	switch {
	case errors.Is(err, contextstore.ErrNotFound):
		return fmt.Sprintf("✗ Context ID '%s' not found.", id)
	case errors.Is(err, ratelimit.ErrLimitExceeded):
		return rateLimitText
	}
	return fmt.Sprintf("✗ Error processing context: %v", err)
}
