package contextstore

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/omarluq/lm-sidekick/internal/gateway"
)

// stubCompleter records the last request and replies with a canned result.
type stubCompleter struct {
	response string
	err      error
	calls    int
	lastReq  gateway.Request
}

func (c *stubCompleter) Complete(_ context.Context, req gateway.Request) (string, error) {
	c.calls++
	c.lastReq = req
	if c.err != nil {
		return "", c.err
	}
	return c.response, nil
}

func TestSummarizeUsesInlineData(t *testing.T) {
	completer := &stubCompleter{response: "a short summary"}
	store := New(completer, 32000, nil)

	result, err := store.Summarize(context.Background(), "proj1", "the full context text", "agent-1")
	if err != nil {
		t.Fatalf("Summarize() error = %v", err)
	}
	if result != "a short summary" {
		t.Errorf("Summarize() = %q, want %q", result, "a short summary")
	}

	req := completer.lastReq
	if req.SystemPrompt != summarizeSystemPrompt {
		t.Errorf("system prompt = %q, want %q", req.SystemPrompt, summarizeSystemPrompt)
	}
	if want := "Please summarize this context:\n\nthe full context text"; req.Prompt != want {
		t.Errorf("prompt = %q, want %q", req.Prompt, want)
	}
	if req.Temperature != 0.3 {
		t.Errorf("temperature = %v, want 0.3", req.Temperature)
	}
	if req.MaxTokens != 500 {
		t.Errorf("max tokens = %d, want 500", req.MaxTokens)
	}
	if req.ClientID != "agent-1" {
		t.Errorf("client id = %q, want %q", req.ClientID, "agent-1")
	}
}

func TestSummarizePersistsResult(t *testing.T) {
	completer := &stubCompleter{response: "a short summary"}
	store := New(completer, 32000, nil)

	if _, err := store.Summarize(context.Background(), "proj1", "the full context", "agent-1"); err != nil {
		t.Fatalf("Summarize() error = %v", err)
	}

	entry, err := store.Retrieve("proj1_summary")
	if err != nil {
		t.Fatalf("Retrieve(\"proj1_summary\") error = %v", err)
	}
	if entry.Data != "a short summary" {
		t.Errorf("persisted summary = %q, want %q", entry.Data, "a short summary")
	}
	if want := len("a short summary") / 4; entry.Tokens != want {
		t.Errorf("persisted tokens = %d, want %d", entry.Tokens, want)
	}
}

func TestSummarizeFallsBackToStoredEntry(t *testing.T) {
	completer := &stubCompleter{response: "summary"}
	store := New(completer, 32000, nil)
	if _, err := store.Store("proj1", "stored context text"); err != nil {
		t.Fatalf("Store() error = %v", err)
	}

	if _, err := store.Summarize(context.Background(), "proj1", "", "agent-1"); err != nil {
		t.Fatalf("Summarize() error = %v", err)
	}
	if !strings.Contains(completer.lastReq.Prompt, "stored context text") {
		t.Errorf("prompt = %q, want stored entry data in it", completer.lastReq.Prompt)
	}
}

func TestSummarizeMissingContext(t *testing.T) {
	completer := &stubCompleter{response: "summary"}
	store := New(completer, 32000, nil)

	_, err := store.Summarize(context.Background(), "missing", "", "agent-1")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("Summarize() error = %v, want ErrNotFound", err)
	}
	if completer.calls != 0 {
		t.Errorf("completer calls = %d, want 0 when source is missing", completer.calls)
	}
}

func TestSummarizeOversizedResultReturnedNotPersisted(t *testing.T) {
	completer := &stubCompleter{response: strings.Repeat("a", 400)}
	store := New(completer, 50, nil)

	result, err := store.Summarize(context.Background(), "proj1", "short input", "agent-1")
	if err != nil {
		t.Fatalf("Summarize() error = %v", err)
	}
	if result != completer.response {
		t.Error("Summarize() should return the oversized summary to the caller")
	}
	if _, err := store.Retrieve("proj1_summary"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Retrieve(\"proj1_summary\") error = %v, want ErrNotFound", err)
	}
}

func TestSummarizePropagatesGatewayError(t *testing.T) {
	wantErr := errors.New("backend: down")
	completer := &stubCompleter{err: wantErr}
	store := New(completer, 32000, nil)

	_, err := store.Summarize(context.Background(), "proj1", "context", "agent-1")
	if !errors.Is(err, wantErr) {
		t.Fatalf("Summarize() error = %v, want %v", err, wantErr)
	}
	if _, err := store.Retrieve("proj1_summary"); !errors.Is(err, ErrNotFound) {
		t.Errorf("no summary should be persisted after a failed completion, got %v", err)
	}
}

func TestAnalyzeRequestShape(t *testing.T) {
	completer := &stubCompleter{response: "key points"}
	store := New(completer, 32000, nil)

	result, err := store.Analyze(context.Background(), "proj1", "the context", "agent-2")
	if err != nil {
		t.Fatalf("Analyze() error = %v", err)
	}
	if result != "key points" {
		t.Errorf("Analyze() = %q, want %q", result, "key points")
	}

	req := completer.lastReq
	if req.SystemPrompt != analyzeSystemPrompt {
		t.Errorf("system prompt = %q, want %q", req.SystemPrompt, analyzeSystemPrompt)
	}
	if want := "Analyze this context and extract key information:\n\nthe context"; req.Prompt != want {
		t.Errorf("prompt = %q, want %q", req.Prompt, want)
	}
	if req.MaxTokens != 800 {
		t.Errorf("max tokens = %d, want 800", req.MaxTokens)
	}
	if req.Temperature != 0.3 {
		t.Errorf("temperature = %v, want 0.3", req.Temperature)
	}
	if req.ClientID != "agent-2" {
		t.Errorf("client id = %q, want %q", req.ClientID, "agent-2")
	}
}

func TestAnalyzeDoesNotPersist(t *testing.T) {
	completer := &stubCompleter{response: "key points"}
	store := New(completer, 32000, nil)

	if _, err := store.Analyze(context.Background(), "proj1", "the context", "agent-2"); err != nil {
		t.Fatalf("Analyze() error = %v", err)
	}
	if stats := store.Stats(); stats.Entries != 0 {
		t.Errorf("Stats().Entries = %d, want 0 after Analyze", stats.Entries)
	}
}

func TestAnalyzeFallsBackToStoredEntry(t *testing.T) {
	completer := &stubCompleter{response: "key points"}
	store := New(completer, 32000, nil)
	if _, err := store.Store("proj1", "stored context"); err != nil {
		t.Fatalf("Store() error = %v", err)
	}

	if _, err := store.Analyze(context.Background(), "proj1", "", "agent-2"); err != nil {
		t.Fatalf("Analyze() error = %v", err)
	}
	if !strings.Contains(completer.lastReq.Prompt, "stored context") {
		t.Errorf("prompt = %q, want stored entry data in it", completer.lastReq.Prompt)
	}
}

func TestAnalyzeMissingContext(t *testing.T) {
	completer := &stubCompleter{}
	store := New(completer, 32000, nil)

	if _, err := store.Analyze(context.Background(), "missing", "", "agent-2"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("Analyze() error = %v, want ErrNotFound", err)
	}
}
