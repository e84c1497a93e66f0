package backend

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"
)

func newTestClient(t *testing.T, server *httptest.Server) *Client {
	t.Helper()
	return NewClient(ClientConfig{
		HTTPClient: server.Client(),
		Logger:     nil,
		BaseURL:    server.URL + "/v1",
	})
}

func TestNewClientDefaults(t *testing.T) {
	client := NewClient(ClientConfig{})

	assert.Equal(t, DefaultBaseURL, client.BaseURL())
	assert.Equal(t, DefaultHealthTimeout, client.healthTimeout)
	assert.Equal(t, DefaultCompletionTimeout, client.completionTimeout)
	assert.Equal(t, DefaultProbeTimeout, client.probeTimeout)
	assert.NotNil(t, client.httpClient)
}

func TestNewClientNegativeTimeoutsUseDefaults(t *testing.T) {
	client := NewClient(ClientConfig{
		HealthTimeout:     -time.Second,
		CompletionTimeout: -time.Second,
		ProbeTimeout:      -time.Second,
	})

	assert.Equal(t, DefaultHealthTimeout, client.healthTimeout)
	assert.Equal(t, DefaultCompletionTimeout, client.completionTimeout)
	assert.Equal(t, DefaultProbeTimeout, client.probeTimeout)
}

func TestListModels(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/v1/models", r.URL.Path)

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"object": "list",
			"data": [
				{"id": "qwen2.5-coder-32b-instruct-q4_k_m", "object": "model", "owned_by": "organization_owner"},
				{"id": "llama-3.2-3b-instruct", "object": "model", "owned_by": "organization_owner"}
			]
		}`))
	}))
	defer server.Close()

	client := newTestClient(t, server)

	list, err := client.ListModels(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "list", list.Object)
	require.Len(t, list.Data, 2)
	assert.Equal(t, []string{"qwen2.5-coder-32b-instruct-q4_k_m", "llama-3.2-3b-instruct"}, list.IDs())
}

func TestListModelsEmpty(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"object": "list", "data": []}`))
	}))
	defer server.Close()

	client := newTestClient(t, server)

	list, err := client.ListModels(context.Background())
	require.NoError(t, err)
	assert.Empty(t, list.Data)
	assert.Empty(t, list.IDs())
}

func TestListModelsBadStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "internal error", http.StatusInternalServerError)
	}))
	defer server.Close()

	client := newTestClient(t, server)

	_, err := client.ListModels(context.Background())
	require.Error(t, err)

	var statusErr *BadStatusError
	require.ErrorAs(t, err, &statusErr)
	assert.Equal(t, http.StatusInternalServerError, statusErr.StatusCode)
}

func TestListModelsMalformedBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`not json at all`))
	}))
	defer server.Close()

	client := newTestClient(t, server)

	_, err := client.ListModels(context.Background())
	require.Error(t, err)

	var statusErr *BadStatusError
	require.ErrorAs(t, err, &statusErr)
	assert.Equal(t, http.StatusOK, statusErr.StatusCode)
}

func TestListModelsUnreachable(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	server.Close() // Closed before the call so the connection is refused

	client := NewClient(ClientConfig{BaseURL: server.URL + "/v1"})

	_, err := client.ListModels(context.Background())
	require.ErrorIs(t, err, ErrUnreachable)
}

func TestChatCompletion(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/v1/chat/completions", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		body, err := io.ReadAll(r.Body)
		require.NoError(t, err)

		assert.False(t, gjson.GetBytes(body, "model").Exists(), "empty model should be omitted")
		assert.False(t, gjson.GetBytes(body, "stream").Exists(), "stream false should be omitted")
		assert.Equal(t, "user", gjson.GetBytes(body, "messages.0.role").String())
		assert.Equal(t, "hello", gjson.GetBytes(body, "messages.0.content").String())
		assert.InDelta(t, 0.7, gjson.GetBytes(body, "temperature").Float(), 0.0001)
		assert.Equal(t, int64(1024), gjson.GetBytes(body, "max_tokens").Int())

		_, _ = w.Write([]byte(`{
			"model": "qwen2.5-coder-32b-instruct-q4_k_m",
			"choices": [{"message": {"role": "assistant", "content": "hi there"}, "finish_reason": "stop"}],
			"usage": {"prompt_tokens": 3, "completion_tokens": 2, "total_tokens": 5}
		}`))
	}))
	defer server.Close()

	client := newTestClient(t, server)

	resp, err := client.ChatCompletion(context.Background(), ChatRequest{
		Messages:    []Message{{Role: RoleUser, Content: "hello"}},
		Temperature: 0.7,
		MaxTokens:   1024,
	})
	require.NoError(t, err)

	assert.Equal(t, "hi there", resp.Content())
	assert.Equal(t, "qwen2.5-coder-32b-instruct-q4_k_m", resp.Model)
	assert.Equal(t, 5, resp.Usage.TotalTokens)
}

func TestChatCompletionSendsModelWhenSet(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, err := io.ReadAll(r.Body)
		require.NoError(t, err)
		assert.Equal(t, "llama-3.2-3b-instruct", gjson.GetBytes(body, "model").String())

		_, _ = w.Write([]byte(`{"model": "llama-3.2-3b-instruct", "choices": [{"message": {"role": "assistant", "content": "ok"}}]}`))
	}))
	defer server.Close()

	client := newTestClient(t, server)

	_, err := client.ChatCompletion(context.Background(), ChatRequest{
		Model:     "llama-3.2-3b-instruct",
		Messages:  []Message{{Role: RoleUser, Content: "hello"}},
		MaxTokens: 10,
	})
	require.NoError(t, err)
}

func TestChatCompletionNoChoices(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"model": "m", "choices": []}`))
	}))
	defer server.Close()

	client := newTestClient(t, server)

	_, err := client.ChatCompletion(context.Background(), ChatRequest{
		Messages: []Message{{Role: RoleUser, Content: "hello"}},
	})
	require.ErrorIs(t, err, ErrEmptyCompletion)
}

func TestChatCompletionEmptyContent(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"model": "m", "choices": [{"message": {"role": "assistant", "content": ""}}]}`))
	}))
	defer server.Close()

	client := newTestClient(t, server)

	_, err := client.ChatCompletion(context.Background(), ChatRequest{
		Messages: []Message{{Role: RoleUser, Content: "hello"}},
	})
	require.ErrorIs(t, err, ErrEmptyCompletion)
}

func TestChatCompletionBadStatusIncludesBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, `{"error": "model not loaded"}`, http.StatusBadRequest)
	}))
	defer server.Close()

	client := newTestClient(t, server)

	_, err := client.ChatCompletion(context.Background(), ChatRequest{
		Messages: []Message{{Role: RoleUser, Content: "hello"}},
	})

	var statusErr *BadStatusError
	require.ErrorAs(t, err, &statusErr)
	assert.Equal(t, http.StatusBadRequest, statusErr.StatusCode)
	assert.Contains(t, statusErr.Body, "model not loaded")
}

func TestLoadModel(t *testing.T) {
	var gotBody []byte
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/models/load", r.URL.Path)
		gotBody, _ = io.ReadAll(r.Body)
		_, _ = w.Write([]byte(`{}`))
	}))
	defer server.Close()

	client := newTestClient(t, server)

	err := client.LoadModel(context.Background(), "qwen2.5-coder-32b-instruct-q4_k_m")
	require.NoError(t, err)
	assert.Equal(t, "qwen2.5-coder-32b-instruct-q4_k_m", gjson.GetBytes(gotBody, "model").String())
}

func TestLoadModelUnsupported(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.NotFound(w, nil)
	}))
	defer server.Close()

	client := newTestClient(t, server)

	err := client.LoadModel(context.Background(), "some-model")
	require.ErrorIs(t, err, ErrLoadUnsupported)
}

func TestLoadModelOtherError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "busy", http.StatusServiceUnavailable)
	}))
	defer server.Close()

	client := newTestClient(t, server)

	err := client.LoadModel(context.Background(), "some-model")
	require.Error(t, err)
	assert.False(t, errors.Is(err, ErrLoadUnsupported))

	var statusErr *BadStatusError
	require.ErrorAs(t, err, &statusErr)
	assert.Equal(t, http.StatusServiceUnavailable, statusErr.StatusCode)
}

func TestProbe(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/chat/completions", r.URL.Path)

		body, err := io.ReadAll(r.Body)
		require.NoError(t, err)

		assert.False(t, gjson.GetBytes(body, "model").Exists())
		assert.Equal(t, "Hi", gjson.GetBytes(body, "messages.0.content").String())
		assert.Equal(t, int64(5), gjson.GetBytes(body, "max_tokens").Int())
		assert.InDelta(t, 0.1, gjson.GetBytes(body, "temperature").Float(), 0.0001)

		_, _ = w.Write([]byte(`{
			"model": "qwen2.5-coder-32b-instruct-q4_k_m",
			"choices": [{"message": {"role": "assistant", "content": "Hello"}}]
		}`))
	}))
	defer server.Close()

	client := newTestClient(t, server)

	model, err := client.Probe(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "qwen2.5-coder-32b-instruct-q4_k_m", model)
}

func TestProbeNoModelLoaded(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "no model loaded", http.StatusNotFound)
	}))
	defer server.Close()

	client := newTestClient(t, server)

	_, err := client.Probe(context.Background())

	var statusErr *BadStatusError
	require.ErrorAs(t, err, &statusErr)
	assert.Equal(t, http.StatusNotFound, statusErr.StatusCode)
}

func TestTimeoutMapsToUnreachable(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		time.Sleep(200 * time.Millisecond)
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	client := NewClient(ClientConfig{
		HTTPClient:    server.Client(),
		BaseURL:       server.URL + "/v1",
		HealthTimeout: 20 * time.Millisecond,
	})

	_, err := client.ListModels(context.Background())
	require.ErrorIs(t, err, ErrUnreachable)
}

func TestBadStatusErrorMessage(t *testing.T) {
	tests := []struct {
		name     string
		err      *BadStatusError
		expected string
	}{
		{
			name:     "without body",
			err:      &BadStatusError{StatusCode: 503},
			expected: "backend: unexpected response (status 503)",
		},
		{
			name:     "with body",
			err:      &BadStatusError{StatusCode: 400, Body: "bad request"},
			expected: "backend: unexpected response (status 400): bad request",
		},
	}

	for _, testCase := range tests {
		t.Run(testCase.name, func(t *testing.T) {
			if got := testCase.err.Error(); got != testCase.expected {
				t.Errorf("Error() = %q, want %q", got, testCase.expected)
			}
		})
	}
}

func TestNewBadStatusErrorTruncatesBody(t *testing.T) {
	long := strings.Repeat("x", 4096)
	err := newBadStatusError(500, []byte(long))

	assert.Len(t, err.Body, maxErrorBodyBytes)
	assert.Equal(t, 500, err.StatusCode)
}

func TestNewBadStatusErrorTrimsWhitespace(t *testing.T) {
	err := newBadStatusError(500, []byte("  internal error\n"))
	assert.Equal(t, "internal error", err.Body)
}
