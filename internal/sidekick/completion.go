package sidekick

import (
	"context"
	"errors"
	"fmt"

	"github.com/omarluq/lm-sidekick/internal/backend"
	"github.com/omarluq/lm-sidekick/internal/gateway"
	"github.com/omarluq/lm-sidekick/internal/ratelimit"
	"github.com/tidwall/gjson"
)

// Chat completion defaults, applied when the caller leaves a knob unset.
const (
	defaultTemperature = 0.7
	defaultMaxTokens   = 1024
	defaultModelType   = "general"
)

// Menial tasks run cool and roomy: consistency matters more than flair.
const (
	menialTemperature = 0.3
	menialMaxTokens   = 2048
)

// ChatCompletion generates a completion from the loaded model.
// temperature <= 0, maxTokens <= 0, and an empty modelType fall back to
// the defaults. modelType is a task hint only; unknown values pass
// through without error.
func (s *Service) ChatCompletion(ctx context.Context, prompt, systemPrompt string, temperature float64, maxTokens int, modelType string) string {
	if temperature <= 0 {
		temperature = defaultTemperature
	}
	if maxTokens <= 0 {
		maxTokens = defaultMaxTokens
	}
	if modelType == "" {
		modelType = defaultModelType
	}

	s.log.Debug().
		Str("model_type", modelType).
		Float64("temperature", temperature).
		Int("max_tokens", maxTokens).
		Msg("chat completion requested")

	content, err := s.gateway.Complete(ctx, gateway.Request{
		ClientID:     gateway.ClientIDFromContext(ctx),
		Prompt:       prompt,
		SystemPrompt: systemPrompt,
		Temperature:  temperature,
		MaxTokens:    maxTokens,
	})
	if err != nil {
		return s.completionFailure(err)
	}
	return content
}

// AutomateMenialTask runs one of the fixed task recipes (format, extract,
// transform, validate, generate) over taskData. outputFormat shapes the
// system prompt and appends a format hint; empty means "text". JSON
// output is checked and flagged when the model failed to produce it.
func (s *Service) AutomateMenialTask(ctx context.Context, taskType, taskData, outputFormat string) string {
	if outputFormat == "" {
		outputFormat = "text"
	}

	systemPrompt, ok := taskSystemPrompt(taskType, outputFormat)
	if !ok {
		return fmt.Sprintf("✗ Unknown task type: %s. Available types: format, extract, transform, validate, generate", taskType)
	}
	systemPrompt += formatHint(outputFormat)

	response, err := s.gateway.Complete(ctx, gateway.Request{
		ClientID:     gateway.ClientIDFromContext(ctx),
		Prompt:       fmt.Sprintf("Task: %s\n\nData:\n%s", taskType, taskData),
		SystemPrompt: systemPrompt,
		Temperature:  menialTemperature,
		MaxTokens:    menialMaxTokens,
	})
	if err != nil {
		if errors.Is(err, ratelimit.ErrLimitExceeded) {
			return rateLimitText
		}
		return fmt.Sprintf("✗ Error automating task: %v", err)
	}

	if outputFormat == "json" && !gjson.Valid(response) {
		response += "\n\n⚠ Model output is not valid JSON."
	}
	return response
}

// completionFailure renders a completion error for the tool caller.
func (s *Service) completionFailure(err error) string {
	if errors.Is(err, ratelimit.ErrLimitExceeded) {
		return rateLimitText
	}

	var statusErr *backend.BadStatusError
	if errors.As(err, &statusErr) {
		return fmt.Sprintf("✗ LM Studio at %s returned status code %d", s.address, statusErr.StatusCode)
	}
	if errors.Is(err, backend.ErrEmptyCompletion) {
		return "✗ No response generated"
	}
	return fmt.Sprintf("✗ Error generating completion: %v", err)
}

// taskSystemPrompt returns the system prompt for a task type, shaped by
// the requested output format. ok is false for unknown task types.
func taskSystemPrompt(taskType, outputFormat string) (prompt string, ok bool) {
	switch taskType {
	case "format":
		return fmt.Sprintf("You are a formatting assistant. Format the following data as clean %s. Be precise and consistent.", outputFormat), true
	case "extract":
		return fmt.Sprintf("You are a data extraction assistant. Extract relevant information and present it as %s.", outputFormat), true
	case "transform":
		return fmt.Sprintf("You are a data transformation assistant. Transform the input according to common patterns and output as %s.", outputFormat), true
	case "validate":
		return "You are a validation assistant. Check the data for errors, inconsistencies, or issues. Report findings clearly.", true
	case "generate":
		return fmt.Sprintf("You are a content generation assistant. Generate appropriate content based on the input, formatted as %s.", outputFormat), true
	}
	return "", false
}

// formatHint is the suffix nudging the model toward the requested output
// format. Unknown formats get no hint.
func formatHint(outputFormat string) string {
	switch outputFormat {
	case "json":
		return "\n\nOutput valid JSON only."
	case "markdown":
		return "\n\nUse proper Markdown formatting."
	case "code":
		return "\n\nOutput clean, properly formatted code."
	case "text":
		return "\n\nOutput plain text."
	}
	return ""
}
