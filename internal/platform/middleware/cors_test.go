package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func containsHeader(headerValue, target string) bool {
	for part := range strings.SplitSeq(headerValue, ",") {
		if strings.EqualFold(strings.TrimSpace(part), target) {
			return true
		}
	}
	return false
}

func preflight(h http.Handler, method, requestHeaders string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodOptions, "http://localhost/api/profile", nil)
	req.Header.Set("Origin", "http://example.com")
	req.Header.Set("Access-Control-Request-Method", method)
	req.Header.Set("Access-Control-Request-Headers", requestHeaders)
	resp := httptest.NewRecorder()
	h.ServeHTTP(resp, req)
	return resp
}

func TestCORSSimpleRequest(t *testing.T) {
	called := false
	h := CORS()(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		called = true
		w.WriteHeader(http.StatusOK)
	}))
	req := httptest.NewRequest(http.MethodGet, "http://localhost/api/profile", nil)
	req.Header.Set("Origin", "http://example.com")
	resp := httptest.NewRecorder()

	h.ServeHTTP(resp, req)

	if !called {
		t.Fatal("expected downstream handler to be called")
	}
	if got := resp.Header().Get("Access-Control-Allow-Origin"); got != "*" {
		t.Fatalf("expected Access-Control-Allow-Origin '*', got %q", got)
	}
	expose := resp.Header().Get("Access-Control-Expose-Headers")
	for _, h := range []string{"Link", "Location", "X-Request-Id", "Retry-After"} {
		if !containsHeader(expose, h) {
			t.Errorf("expected %q exposed, got %q", h, expose)
		}
	}
}

func TestCORSPreflightShortCircuits(t *testing.T) {
	called := false
	h := CORS()(http.HandlerFunc(func(http.ResponseWriter, *http.Request) { called = true }))

	resp := preflight(h, http.MethodDelete, "Authorization")

	if called {
		t.Fatal("preflight must not reach the handler")
	}
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 for preflight, got %d", resp.Code)
	}
	if got := resp.Header().Get("Access-Control-Allow-Methods"); !containsHeader(got, http.MethodDelete) {
		t.Fatalf("expected DELETE allowed, got %q", got)
	}
}

func TestCORSAllowedRequestHeaders(t *testing.T) {
	h := CORS()(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	tests := []struct {
		method string
		header string
	}{
		{http.MethodPost, "Authorization"},
		{http.MethodPut, "X-Auth-Token"},
		{http.MethodPost, "X-Request-Id"},
		{http.MethodGet, "traceparent"},
		{http.MethodPost, "Content-Type"},
	}
	for _, tt := range tests {
		t.Run(tt.header, func(t *testing.T) {
			resp := preflight(h, tt.method, tt.header)
			if got := resp.Header().Get("Access-Control-Allow-Headers"); !containsHeader(got, tt.header) {
				t.Fatalf("expected %s allowed, got %q", tt.header, got)
			}
		})
	}
}

func TestCORSRejectsUnlistedRequestHeader(t *testing.T) {
	h := CORS()(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	resp := preflight(h, http.MethodPost, "X-Custom-Secret")
	if got := resp.Header().Get("Access-Control-Allow-Headers"); containsHeader(got, "X-Custom-Secret") {
		t.Fatalf("unexpected header allowed: %q", got)
	}
}

func TestCORSRestrictsConfiguredOrigins(t *testing.T) {
	h := CORS("https://devconnector.example")(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	tests := []struct {
		origin string
		want   string
	}{
		{"https://devconnector.example", "https://devconnector.example"},
		{"https://evil.example", ""},
	}
	for _, tt := range tests {
		t.Run(tt.origin, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "http://localhost/api/profile", nil)
			req.Header.Set("Origin", tt.origin)
			resp := httptest.NewRecorder()
			h.ServeHTTP(resp, req)
			if got := resp.Header().Get("Access-Control-Allow-Origin"); got != tt.want {
				t.Fatalf("expected %q, got %q", tt.want, got)
			}
		})
	}
}
