package middleware

import (
	"bytes"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSecurityHeadersMiddleware(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	wrapped := SecurityHeadersMiddleware(handler)
	req := httptest.NewRequest(http.MethodGet, "/api/options", nil)
	rec := httptest.NewRecorder()

	wrapped.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "DENY", rec.Header().Get("X-Frame-Options"))
	assert.Equal(t, "nosniff", rec.Header().Get("X-Content-Type-Options"))
	assert.Equal(t, "strict-origin-when-cross-origin", rec.Header().Get("Referrer-Policy"))
	assert.Equal(t, "geolocation=(), microphone=(), camera=()", rec.Header().Get("Permissions-Policy"))
	assert.Equal(t, "no-store", rec.Header().Get("Cache-Control"))

	csp := rec.Header().Get("Content-Security-Policy")
	assert.Contains(t, csp, "default-src 'none'")
	assert.Contains(t, csp, "frame-ancestors 'none'")
}

func TestRateLimitMiddleware(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	t.Run("blocks after exceeding limit", func(t *testing.T) {
		wrapped := RateLimitMiddleware(3, false)(handler)

		for i := 0; i < 3; i++ {
			req := httptest.NewRequest(http.MethodGet, "/api/recipes", nil)
			req.RemoteAddr = "2.2.2.2:1234"
			rec := httptest.NewRecorder()
			wrapped.ServeHTTP(rec, req)
			assert.Equal(t, http.StatusOK, rec.Code)
		}

		req := httptest.NewRequest(http.MethodGet, "/api/recipes", nil)
		req.RemoteAddr = "2.2.2.2:1234"
		rec := httptest.NewRecorder()
		wrapped.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusTooManyRequests, rec.Code)
		assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
		assert.Contains(t, rec.Body.String(), "rate limit exceeded")
	})

	t.Run("different IPs are independent", func(t *testing.T) {
		wrapped := RateLimitMiddleware(1, false)(handler)

		req := httptest.NewRequest(http.MethodGet, "/api/recipes", nil)
		req.RemoteAddr = "10.0.0.1:1234"
		rec := httptest.NewRecorder()
		wrapped.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusOK, rec.Code)

		req = httptest.NewRequest(http.MethodGet, "/api/recipes", nil)
		req.RemoteAddr = "10.0.0.1:1234"
		rec = httptest.NewRecorder()
		wrapped.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusTooManyRequests, rec.Code)

		req = httptest.NewRequest(http.MethodGet, "/api/recipes", nil)
		req.RemoteAddr = "10.0.0.2:1234"
		rec = httptest.NewRecorder()
		wrapped.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("rotating X-Forwarded-For does not reset the limit", func(t *testing.T) {
		wrapped := RateLimitMiddleware(1, false)(handler)

		codes := []int{}
		for _, xff := range []string{"203.0.113.1", "203.0.113.2", "203.0.113.3"} {
			req := httptest.NewRequest(http.MethodGet, "/api/recipes", nil)
			req.RemoteAddr = "198.51.100.7:1234"
			req.Header.Set("X-Forwarded-For", xff)
			rec := httptest.NewRecorder()
			wrapped.ServeHTTP(rec, req)
			codes = append(codes, rec.Code)
		}
		assert.Equal(t, []int{http.StatusOK, http.StatusTooManyRequests, http.StatusTooManyRequests}, codes)
	})

	t.Run("trusted proxy keys on the forwarded client", func(t *testing.T) {
		wrapped := RateLimitMiddleware(1, true)(handler)

		for _, xff := range []string{"203.0.113.1", "203.0.113.2"} {
			req := httptest.NewRequest(http.MethodGet, "/api/recipes", nil)
			req.RemoteAddr = "127.0.0.1:1234"
			req.Header.Set("X-Forwarded-For", xff)
			rec := httptest.NewRecorder()
			wrapped.ServeHTTP(rec, req)
			assert.Equal(t, http.StatusOK, rec.Code, xff)
		}
	})

	t.Run("zero disables limiting", func(t *testing.T) {
		wrapped := RateLimitMiddleware(0, false)(handler)

		for i := 0; i < 20; i++ {
			req := httptest.NewRequest(http.MethodGet, "/api/recipes", nil)
			req.RemoteAddr = "5.5.5.5:1234"
			rec := httptest.NewRecorder()
			wrapped.ServeHTTP(rec, req)
			require.Equal(t, http.StatusOK, rec.Code)
		}
	})
}

func TestLimitBodyMiddleware(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Body == nil {
			w.WriteHeader(http.StatusOK)
			return
		}
		if _, err := io.ReadAll(r.Body); err != nil {
			http.Error(w, "body too large", http.StatusRequestEntityTooLarge)
			return
		}
		w.WriteHeader(http.StatusOK)
	})

	wrapped := LimitBodyMiddleware(64)(handler)

	t.Run("allows small JSON body", func(t *testing.T) {
		body := strings.NewReader(`{"method": "V60"}`)
		req := httptest.NewRequest(http.MethodPost, "/api/recipes", body)
		req.Header.Set("Content-Type", "application/json")
		rec := httptest.NewRecorder()

		wrapped.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("rejects oversized body", func(t *testing.T) {
		body := bytes.NewReader(bytes.Repeat([]byte("x"), 65))
		req := httptest.NewRequest(http.MethodPost, "/api/recipes", body)
		rec := httptest.NewRecorder()

		wrapped.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
	})

	t.Run("handles empty body", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
		rec := httptest.NewRecorder()

		wrapped.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusOK, rec.Code)
	})
}

func TestClientIP(t *testing.T) {
	tests := []struct {
		name       string
		xff        string
		xri        string
		remoteAddr string
		trustProxy bool
		expected   string
	}{
		{"X-Forwarded-For single IP", "203.0.113.50", "", "127.0.0.1:1234", true, "203.0.113.50"},
		{"X-Forwarded-For multiple IPs", "203.0.113.50, 70.41.3.18, 150.172.238.178", "", "127.0.0.1:1234", true, "203.0.113.50"},
		{"X-Forwarded-For with whitespace", "  203.0.113.50  ", "", "127.0.0.1:1234", true, "203.0.113.50"},
		{"X-Real-IP", "", "  198.51.100.178  ", "127.0.0.1:1234", true, "198.51.100.178"},
		{"X-Forwarded-For takes precedence over X-Real-IP", "203.0.113.50", "198.51.100.178", "127.0.0.1:1234", true, "203.0.113.50"},
		{"untrusted headers are ignored", "203.0.113.50", "198.51.100.178", "127.0.0.1:1234", false, "127.0.0.1"},
		{"trusted without headers uses RemoteAddr", "", "", "192.168.1.1:8080", true, "192.168.1.1"},
		{"RemoteAddr without port", "", "", "192.168.1.1", false, "192.168.1.1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.RemoteAddr = tt.remoteAddr
			if tt.xff != "" {
				req.Header.Set("X-Forwarded-For", tt.xff)
			}
			if tt.xri != "" {
				req.Header.Set("X-Real-IP", tt.xri)
			}

			assert.Equal(t, tt.expected, ClientIP(req, tt.trustProxy))
		})
	}
}

func TestForwardedIP_Empty(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	assert.Equal(t, "", ForwardedIP(req))
}
