package contextstore

import (
	"context"

	"github.com/omarluq/lm-sidekick/internal/gateway"
)

// Completer is the slice of the completion gateway the derived operations
// need. Satisfied by *gateway.Gateway.
type Completer interface {
	Complete(ctx context.Context, req gateway.Request) (string, error)
}

const (
	summarizeSystemPrompt = "You are a helpful assistant that creates concise summaries. Summarize the following context, preserving key information."
	analyzeSystemPrompt   = "You are an analytical assistant. Extract key points, entities, and actionable items from the context."

	deriveTemperature  = 0.3
	summarizeMaxTokens = 500
	analyzeMaxTokens   = 800
)

// Summarize produces a model-written summary of a context and persists it
// under id + "_summary". The source text is data when non-empty, otherwise
// the stored entry under id (ErrNotFound when neither exists).
//
// A summary too large to store is still returned to the caller; only the
// persist step is skipped.
func (s *Store) Summarize(ctx context.Context, id, data, clientID string) (string, error) {
	source, err := s.sourceData(id, data)
	if err != nil {
		return "", err
	}

	summary, err := s.gateway.Complete(ctx, gateway.Request{
		ClientID:     clientID,
		Prompt:       "Please summarize this context:\n\n" + source,
		SystemPrompt: summarizeSystemPrompt,
		Temperature:  deriveTemperature,
		MaxTokens:    summarizeMaxTokens,
	})
	if err != nil {
		return "", err
	}

	if _, err := s.Store(id+"_summary", summary); err != nil {
		s.log.Warn().
			Err(err).
			Str("context_id", id).
			Msg("summary not persisted")
	}
	return summary, nil
}

// Analyze extracts key points from a context without persisting anything.
// Source resolution follows the same rule as Summarize.
func (s *Store) Analyze(ctx context.Context, id, data, clientID string) (string, error) {
	source, err := s.sourceData(id, data)
	if err != nil {
		return "", err
	}

	return s.gateway.Complete(ctx, gateway.Request{
		ClientID:     clientID,
		Prompt:       "Analyze this context and extract key information:\n\n" + source,
		SystemPrompt: analyzeSystemPrompt,
		Temperature:  deriveTemperature,
		MaxTokens:    analyzeMaxTokens,
	})
}

// sourceData resolves the text a derived operation works on: inline data
// when the caller supplied it, otherwise the stored entry under id.
func (s *Store) sourceData(id, data string) (string, error) {
	if data != "" {
		return data, nil
	}
	entry, err := s.Retrieve(id)
	if err != nil {
		return "", err
	}
	return entry.Data, nil
}
