package routing

import (
	"net/http"

	"tangled.org/arabica.social/dialin/internal/handlers"
	"tangled.org/arabica.social/dialin/internal/metrics"
	"tangled.org/arabica.social/dialin/internal/middleware"

	"github.com/klauspost/compress/gzhttp"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

// Config holds the configuration needed for setting up routes
type Config struct {
	Handlers *handlers.Handler
	Logger   zerolog.Logger

	// RateLimit is requests per minute per client IP; zero disables it.
	RateLimit int

	// MaxBodyBytes caps request bodies; zero uses middleware.DefaultMaxBodyBytes.
	MaxBodyBytes int64

	// TrustProxy keys rate limiting on X-Forwarded-For instead of the
	// connection address.
	TrustProxy bool

	// TrustedOrigins may send cross-origin writes, e.g. the public URL when
	// a separate front end is served from it.
	TrustedOrigins []string
}

// SetupRouter creates and configures the HTTP router with all routes and middleware
func SetupRouter(cfg Config) http.Handler {
	h := cfg.Handlers
	mux := http.NewServeMux()

	// Create CrossOriginProtection for CSRF protection
	cop := http.NewCrossOriginProtection()
	for _, origin := range cfg.TrustedOrigins {
		if err := cop.AddTrustedOrigin(origin); err != nil {
			cfg.Logger.Warn().Err(err).Str("origin", origin).Msg("Ignoring invalid trusted origin")
		}
	}
	protect := func(fn http.HandlerFunc) http.Handler {
		return cop.Handler(fn)
	}

	// Health and metrics
	mux.HandleFunc("GET /healthz", h.HandleHealth)
	mux.Handle("GET /metrics", promhttp.Handler())

	// Reference data
	mux.HandleFunc("GET /api/options", h.HandleOptions)
	mux.HandleFunc("GET /api/grinders", h.HandleGrinderList)
	mux.HandleFunc("GET /api/grinders/{name}", h.HandleGrinderGet)

	// Calculators
	mux.HandleFunc("GET /api/recipes", h.HandleRecipeQuery)
	mux.Handle("POST /api/recipes", protect(h.HandleRecipeCreate))
	mux.Handle("POST /api/grind", protect(h.HandleGrind))
	mux.Handle("POST /api/dial-in", protect(h.HandleDialIn))

	// History
	mux.HandleFunc("GET /api/history", h.HandleHistoryList)
	mux.Handle("DELETE /api/history", protect(h.HandleHistoryClear))

	// Calibrations
	mux.HandleFunc("GET /api/calibrations", h.HandleCalibrationList)
	mux.HandleFunc("GET /api/calibrations/{grinder}/{method}", h.HandleCalibrationGet)
	mux.Handle("PUT /api/calibrations/{grinder}/{method}", protect(h.HandleCalibrationPut))
	mux.Handle("DELETE /api/calibrations/{grinder}/{method}", protect(h.HandleCalibrationDelete))

	// Apply middleware in order (outermost first, innermost last)
	var handler http.Handler = mux

	// 1. Limit request body size (innermost - runs first on request)
	handler = middleware.LimitBodyMiddleware(cfg.MaxBodyBytes)(handler)

	// 2. Compress responses for clients that accept gzip
	handler = gzhttp.GzipHandler(handler)

	// 3. Apply rate limiting
	handler = middleware.RateLimitMiddleware(cfg.RateLimit, cfg.TrustProxy)(handler)

	// 4. Apply security headers
	handler = middleware.SecurityHeadersMiddleware(handler)

	// 5. Trace every request
	handler = otelhttp.NewHandler(handler, "dialin",
		otelhttp.WithSpanNameFormatter(func(_ string, r *http.Request) string {
			return r.Method + " " + metrics.NormalizePath(r.URL.Path)
		}),
	)

	// 6. Apply logging middleware (outermost - wraps everything)
	handler = middleware.LoggingMiddleware(cfg.Logger)(handler)

	return handler
}
