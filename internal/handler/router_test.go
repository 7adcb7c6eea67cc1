package handler

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func newTestRouter(t *testing.T, auth func(http.Handler) http.Handler) http.Handler {
	t.Helper()
	h := NewResumeHandler(&MockResumeService{summary: "ok"}, NewMockHandlerLogger(), t.TempDir(), 1<<20)
	return NewRouter(h, auth)
}

func passThrough(next http.Handler) http.Handler { return next }

func TestNewRouter_Health(t *testing.T) {
	router := newTestRouter(t, passThrough)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rr := httptest.NewRecorder()

	router.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, rr.Code)
	}
	if !strings.Contains(rr.Body.String(), `"status":"ok"`) {
		t.Fatalf("unexpected response body: %s", rr.Body.String())
	}
}

func TestNewRouter_MethodNotAllowed(t *testing.T) {
	router := newTestRouter(t, passThrough)

	for _, tc := range []struct{ method, path string }{
		{http.MethodGet, "/api/v1/redact"},
		{http.MethodGet, "/api/v1/summary"},
		{http.MethodGet, "/api/v1/process"},
		{http.MethodPost, "/health"},
	} {
		req := httptest.NewRequest(tc.method, tc.path, nil)
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		if rr.Code != http.StatusMethodNotAllowed {
			t.Fatalf("%s %s: expected status %d, got %d", tc.method, tc.path, http.StatusMethodNotAllowed, rr.Code)
		}
		if !strings.Contains(rr.Body.String(), `"error":"method not allowed"`) {
			t.Fatalf("%s %s: unexpected response body: %s", tc.method, tc.path, rr.Body.String())
		}
	}

	req := httptest.NewRequest(http.MethodGet, "/api/v1/unknown", nil)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)
	if rr.Code != http.StatusNotFound {
		t.Fatalf("expected status %d for unknown path, got %d", http.StatusNotFound, rr.Code)
	}
}

func TestNewRouter_APIRequiresAuth(t *testing.T) {
	validator := &mockTokenValidator{}
	router := newTestRouter(t, NewAuthMiddleware(validator, NewMockHandlerLogger()).Middleware)

	req := newMultipartRequest(t, "/api/v1/summary", map[string]string{"name": "Jane"}, nil)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("expected status %d, got %d", http.StatusUnauthorized, rr.Code)
	}

	// health stays public
	rr = httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/health", nil))
	if rr.Code != http.StatusOK {
		t.Fatalf("expected health to bypass auth, got %d", rr.Code)
	}
}

func TestNewRouter_Summary(t *testing.T) {
	router := newTestRouter(t, passThrough)

	req := newMultipartRequest(t, "/api/v1/summary", map[string]string{"name": "Jane"}, nil)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d: %s", http.StatusOK, rr.Code, rr.Body.String())
	}
	if strings.TrimSpace(rr.Body.String()) != `{"summary":"ok"}` {
		t.Fatalf("unexpected response body: %s", rr.Body.String())
	}
}
