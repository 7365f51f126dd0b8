package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestSecuritySetsHeaders(t *testing.T) {
	h := Security("/api/api-docs")(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	resp := httptest.NewRecorder()
	h.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/api/profile", nil))

	for _, kv := range securityHeaders {
		if got := resp.Header().Get(kv[0]); got != kv[1] {
			t.Errorf("%s: expected %q, got %q", kv[0], kv[1], got)
		}
	}
}

func TestSecuritySkipsDocs(t *testing.T) {
	h := Security("/api/api-docs")(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	resp := httptest.NewRecorder()
	h.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/api/api-docs", nil))

	if got := resp.Header().Get("Content-Security-Policy"); got != "" {
		t.Fatalf("expected no CSP on docs, got %q", got)
	}
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}
}
