package middleware

import (
	"bytes"
	"encoding/json"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"tangled.org/arabica.social/dialin/internal/metrics"

	"github.com/rs/zerolog"
)

// maxErrorCapture bounds how much of an error reply is kept for the log line.
const maxErrorCapture = 2 << 10

// RemoteIP returns the host part of the connection's remote address.
func RemoteIP(r *http.Request) string {
	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return ip
}

// ForwardedIP returns the client address reported by a reverse proxy through
// X-Forwarded-For (first hop) or X-Real-IP, or "" when neither is set.
// Clients can set these headers themselves.
func ForwardedIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		first, _, _ := strings.Cut(xff, ",")
		return strings.TrimSpace(first)
	}
	return strings.TrimSpace(r.Header.Get("X-Real-IP"))
}

// ClientIP is the address requests are attributed to. Forwarding headers are
// only honoured when trustProxy is set.
func ClientIP(r *http.Request, trustProxy bool) string {
	if trustProxy {
		if ip := ForwardedIP(r); ip != "" {
			return ip
		}
	}
	return RemoteIP(r)
}

// apiError mirrors the JSON error body written by the handlers.
type apiError struct {
	Error string `json:"error"`
	Field string `json:"field"`
}

// LoggingMiddleware logs one line per request and records the HTTP metrics.
//
// Lines are keyed by the normalized route so that /api/grinders/{name} and
// /api/calibrations/{grinder}/{method} group together. For 4xx and 5xx replies
// the handler's error message and offending request field are included.
func LoggingMiddleware(logger zerolog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}

			next.ServeHTTP(rw, r)

			duration := time.Since(start)
			route := metrics.NormalizePath(r.URL.Path)

			var event *zerolog.Event
			switch {
			case rw.statusCode >= 500:
				event = logger.Error()
			case rw.statusCode >= 400:
				event = logger.Warn()
			default:
				event = logger.Info()
			}

			event = event.
				Str("method", r.Method).
				Str("route", route).
				Str("path", r.URL.Path).
				Int("status", rw.statusCode).
				Dur("duration", duration).
				Int64("bytes_written", rw.bytesWritten).
				Str("client_ip", RemoteIP(r))

			if fwd := ForwardedIP(r); fwd != "" {
				event = event.Str("forwarded_for", fwd)
			}
			if reqID := r.Header.Get("X-Request-ID"); reqID != "" {
				event = event.Str("request_id", reqID)
			}
			if apiErr, ok := rw.apiError(); ok {
				event = event.Str("error_message", apiErr.Error)
				if apiErr.Field != "" {
					event = event.Str("field", apiErr.Field)
				}
			}
			// GET /api/recipes carries the whole recipe request in the query.
			if r.URL.RawQuery != "" && logger.GetLevel() <= zerolog.DebugLevel {
				event = event.Str("query", r.URL.RawQuery)
			}

			event.Msgf("%s %s %d", r.Method, route, rw.statusCode)

			metrics.HTTPRequestsTotal.WithLabelValues(r.Method, route, strconv.Itoa(rw.statusCode)).Inc()
			metrics.HTTPRequestDuration.WithLabelValues(r.Method, route).Observe(duration.Seconds())
		})
	}
}

// responseWriter records the status, the byte count and, for error replies,
// the start of the body.
type responseWriter struct {
	http.ResponseWriter
	statusCode   int
	bytesWritten int64
	wroteHeader  bool
	errBody      bytes.Buffer
}

func (rw *responseWriter) WriteHeader(code int) {
	if rw.wroteHeader {
		return
	}
	rw.statusCode = code
	rw.wroteHeader = true
	rw.ResponseWriter.WriteHeader(code)
}

func (rw *responseWriter) Write(b []byte) (int, error) {
	if !rw.wroteHeader {
		rw.WriteHeader(http.StatusOK)
	}
	if rw.statusCode >= 400 && rw.errBody.Len() < maxErrorCapture {
		rest := maxErrorCapture - rw.errBody.Len()
		rw.errBody.Write(b[:min(len(b), rest)])
	}
	n, err := rw.ResponseWriter.Write(b)
	rw.bytesWritten += int64(n)
	return n, err
}

// apiError decodes a captured {"error": ..., "field": ...} reply. Compressed
// or non-JSON bodies are skipped.
func (rw *responseWriter) apiError() (apiError, bool) {
	if rw.errBody.Len() == 0 || rw.Header().Get("Content-Encoding") != "" {
		return apiError{}, false
	}
	if !strings.HasPrefix(rw.Header().Get("Content-Type"), "application/json") {
		return apiError{}, false
	}
	var e apiError
	if err := json.Unmarshal(rw.errBody.Bytes(), &e); err != nil || e.Error == "" {
		return apiError{}, false
	}
	return e, true
}
