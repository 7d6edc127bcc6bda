package middleware

import (
	"encoding/json"
	"net/http"
	"time"

	"tangled.org/arabica.social/dialin/internal/metrics"

	"github.com/go-chi/httprate"
	"github.com/rs/zerolog/log"
)

// DefaultMaxBodyBytes caps request bodies when no explicit limit is given.
const DefaultMaxBodyBytes int64 = 64 << 10

// SecurityHeadersMiddleware sets response headers for a JSON-only API.
func SecurityHeadersMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h := w.Header()
		h.Set("X-Frame-Options", "DENY")
		h.Set("X-Content-Type-Options", "nosniff")
		h.Set("Referrer-Policy", "strict-origin-when-cross-origin")
		h.Set("Permissions-Policy", "geolocation=(), microphone=(), camera=()")
		h.Set("Content-Security-Policy", "default-src 'none'; frame-ancestors 'none'")
		h.Set("Cache-Control", "no-store")
		next.ServeHTTP(w, r)
	})
}

// LimitBodyMiddleware caps the request body at maxBytes. Reads past the cap
// fail, which handlers report as a bad request.
func LimitBodyMiddleware(maxBytes int64) func(http.Handler) http.Handler {
	if maxBytes <= 0 {
		maxBytes = DefaultMaxBodyBytes
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Body != nil {
				r.Body = http.MaxBytesReader(w, r.Body, maxBytes)
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RateLimitMiddleware limits each client to requestsPerMinute requests.
// Zero or a negative value disables limiting.
//
// Clients are keyed by the connection address. With trustProxy set they are
// keyed by the forwarded client address instead, which is only safe when a
// reverse proxy overwrites X-Forwarded-For.
func RateLimitMiddleware(requestsPerMinute int, trustProxy bool) func(http.Handler) http.Handler {
	if requestsPerMinute <= 0 {
		return func(next http.Handler) http.Handler {
			return next
		}
	}

	keyFunc := httprate.KeyByIP
	if trustProxy {
		keyFunc = func(r *http.Request) (string, error) {
			return ClientIP(r, true), nil
		}
	}

	return httprate.Limit(
		requestsPerMinute,
		time.Minute,
		httprate.WithKeyFuncs(keyFunc),
		httprate.WithLimitHandler(func(w http.ResponseWriter, r *http.Request) {
			metrics.RateLimitedTotal.Inc()
			log.Warn().
				Str("client_ip", ClientIP(r, trustProxy)).
				Str("route", metrics.NormalizePath(r.URL.Path)).
				Msg("Rate limit exceeded")

			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusTooManyRequests)
			json.NewEncoder(w).Encode(map[string]string{"error": "rate limit exceeded, try again later"})
		}),
	)
}
