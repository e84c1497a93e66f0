package api

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func TestAuthMiddleware_ValidKey(t *testing.T) {
	t.Parallel()

	middleware := AuthMiddleware("secret-key")
	wrappedHandler := middleware(okHandler())

	req := httptest.NewRequest(http.MethodPost, "/v1/tools/health_check", http.NoBody)
	req.Header.Set("x-api-key", "secret-key")

	rec := httptest.NewRecorder()
	wrappedHandler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("Expected status 200, got %d", rec.Code)
	}
}

func TestAuthMiddleware_InvalidKey(t *testing.T) {
	t.Parallel()

	middleware := AuthMiddleware("secret-key")
	wrappedHandler := middleware(okHandler())

	req := httptest.NewRequest(http.MethodPost, "/v1/tools/health_check", http.NoBody)
	req.Header.Set("x-api-key", "wrong-key")

	rec := httptest.NewRecorder()
	wrappedHandler.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("Expected status 401, got %d", rec.Code)
	}
}

func TestAuthMiddleware_MissingKey(t *testing.T) {
	t.Parallel()

	middleware := AuthMiddleware("secret-key")
	wrappedHandler := middleware(okHandler())

	req := httptest.NewRequest(http.MethodPost, "/v1/tools/health_check", http.NoBody)
	// No x-api-key header

	rec := httptest.NewRecorder()
	wrappedHandler.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("Expected status 401, got %d", rec.Code)
	}

	if !strings.Contains(rec.Body.String(), "missing x-api-key header") {
		t.Errorf("Expected error about missing header, got: %s", rec.Body.String())
	}
}

func TestRequestIDMiddleware_GeneratesID(t *testing.T) {
	t.Parallel()

	var seenID string
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seenID = GetRequestID(r.Context())
		w.WriteHeader(http.StatusOK)
	})

	wrappedHandler := RequestIDMiddleware()(handler)

	req := httptest.NewRequest(http.MethodPost, "/v1/tools/health_check", http.NoBody)
	rec := httptest.NewRecorder()
	wrappedHandler.ServeHTTP(rec, req)

	if seenID == "" {
		t.Error("Expected request ID in context")
	}

	if rec.Header().Get("X-Request-ID") != seenID {
		t.Errorf("Expected X-Request-ID header %q, got %q", seenID, rec.Header().Get("X-Request-ID"))
	}
}

func TestRequestIDMiddleware_PreservesProvidedID(t *testing.T) {
	t.Parallel()

	var seenID string
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seenID = GetRequestID(r.Context())
		w.WriteHeader(http.StatusOK)
	})

	wrappedHandler := RequestIDMiddleware()(handler)

	req := httptest.NewRequest(http.MethodPost, "/v1/tools/health_check", http.NoBody)
	req.Header.Set("X-Request-ID", "custom-id-123")

	rec := httptest.NewRecorder()
	wrappedHandler.ServeHTTP(rec, req)

	if seenID != "custom-id-123" {
		t.Errorf("Expected request ID 'custom-id-123', got %q", seenID)
	}

	if rec.Header().Get("X-Request-ID") != "custom-id-123" {
		t.Errorf("Expected X-Request-ID header 'custom-id-123', got %q", rec.Header().Get("X-Request-ID"))
	}
}

func TestConcurrencyLimiter_Unlimited(t *testing.T) {
	t.Parallel()

	limiter := NewConcurrencyLimiter(0)

	for i := 0; i < 100; i++ {
		if !limiter.TryAcquire() {
			t.Fatalf("Acquire %d failed with unlimited limiter", i)
		}
	}

	if limiter.CurrentInFlight() != 100 {
		t.Errorf("Expected 100 in flight, got %d", limiter.CurrentInFlight())
	}
}

func TestConcurrencyLimiter_EnforcesLimit(t *testing.T) {
	t.Parallel()

	limiter := NewConcurrencyLimiter(2)

	if !limiter.TryAcquire() {
		t.Fatal("First acquire failed")
	}
	if !limiter.TryAcquire() {
		t.Fatal("Second acquire failed")
	}
	if limiter.TryAcquire() {
		t.Fatal("Third acquire succeeded past the limit")
	}

	limiter.Release()

	if !limiter.TryAcquire() {
		t.Fatal("Acquire after release failed")
	}
}

func TestConcurrencyMiddleware_RejectsWhenSaturated(t *testing.T) {
	t.Parallel()

	limiter := NewConcurrencyLimiter(1)
	wrappedHandler := ConcurrencyMiddleware(limiter)(okHandler())

	// Occupy the only slot
	if !limiter.TryAcquire() {
		t.Fatal("Setup acquire failed")
	}

	req := httptest.NewRequest(http.MethodPost, "/v1/tools/health_check", http.NoBody)
	rec := httptest.NewRecorder()
	wrappedHandler.ServeHTTP(rec, req)

	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("Expected status 503, got %d", rec.Code)
	}

	if !strings.Contains(rec.Body.String(), "server_busy") {
		t.Errorf("Expected server_busy error, got: %s", rec.Body.String())
	}
}

func TestConcurrencyMiddleware_ReleasesSlot(t *testing.T) {
	t.Parallel()

	limiter := NewConcurrencyLimiter(1)
	wrappedHandler := ConcurrencyMiddleware(limiter)(okHandler())

	for i := 0; i < 3; i++ {
		req := httptest.NewRequest(http.MethodPost, "/v1/tools/health_check", http.NoBody)
		rec := httptest.NewRecorder()
		wrappedHandler.ServeHTTP(rec, req)

		if rec.Code != http.StatusOK {
			t.Fatalf("Request %d got status %d", i, rec.Code)
		}
	}

	if limiter.CurrentInFlight() != 0 {
		t.Errorf("Expected 0 in flight after completion, got %d", limiter.CurrentInFlight())
	}
}

func TestMaxBodyBytesMiddleware_RejectsOversizedBody(t *testing.T) {
	t.Parallel()

	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, err := io.ReadAll(r.Body)
		if err != nil {
			if IsBodyTooLargeError(err) {
				WriteBodyTooLargeError(w)
				return
			}
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		w.WriteHeader(http.StatusOK)
	})

	wrappedHandler := MaxBodyBytesMiddleware(16)(handler)

	req := httptest.NewRequest(http.MethodPost, "/v1/tools/chat_completion",
		strings.NewReader(strings.Repeat("x", 64)))
	rec := httptest.NewRecorder()
	wrappedHandler.ServeHTTP(rec, req)

	if rec.Code != http.StatusRequestEntityTooLarge {
		t.Errorf("Expected status 413, got %d", rec.Code)
	}
}

func TestMaxBodyBytesMiddleware_AllowsSmallBody(t *testing.T) {
	t.Parallel()

	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, err := io.ReadAll(r.Body)
		if err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		w.WriteHeader(http.StatusOK)
	})

	wrappedHandler := MaxBodyBytesMiddleware(1024)(handler)

	req := httptest.NewRequest(http.MethodPost, "/v1/tools/chat_completion",
		strings.NewReader(`{"prompt":"hi"}`))
	rec := httptest.NewRecorder()
	wrappedHandler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("Expected status 200, got %d", rec.Code)
	}
}

func TestFormatDuration(t *testing.T) {
	t.Parallel()

	tests := []struct {
		duration time.Duration
		want     string
	}{
		{0, "0s"},
		{-time.Second, "0s"},
		{500 * time.Microsecond, "500µs"},
		{2500 * time.Microsecond, "2.50ms"},
		{1500 * time.Millisecond, "1.50s"},
		{90 * time.Second, "1m30s"},
	}

	for _, tt := range tests {
		if got := formatDuration(tt.duration); got != tt.want {
			t.Errorf("formatDuration(%v) = %q, want %q", tt.duration, got, tt.want)
		}
	}
}

func TestStatusSymbol(t *testing.T) {
	t.Parallel()

	tests := []struct {
		status int
		want   string
	}{
		{http.StatusOK, "✓"},
		{http.StatusNotFound, "⚠"},
		{http.StatusInternalServerError, "✗"},
	}

	for _, tt := range tests {
		if got := statusSymbol(tt.status); got != tt.want {
			t.Errorf("statusSymbol(%d) = %q, want %q", tt.status, got, tt.want)
		}
	}
}
