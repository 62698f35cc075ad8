// Package middleware provides HTTP middleware for the gallery server.
package middleware

import (
	"log/slog"
	"net/http"
	"time"
)

// slowRequestThreshold flags requests worth investigating. First views
// of large categories generate thumbnails inline and can legitimately
// take this long; anything else should not.
const slowRequestThreshold = 2 * time.Second

// statusRecorder wraps http.ResponseWriter to capture the status code
// and response size.
type statusRecorder struct {
	http.ResponseWriter
	status int
	bytes  int
}

func (sr *statusRecorder) WriteHeader(code int) {
	if sr.status == 0 {
		sr.status = code
	}
	sr.ResponseWriter.WriteHeader(code)
}

func (sr *statusRecorder) Write(b []byte) (int, error) {
	if sr.status == 0 {
		sr.status = http.StatusOK
	}
	n, err := sr.ResponseWriter.Write(b)
	sr.bytes += n
	return n, err
}

// Logger records method, path, status, response size and duration for
// every request, and escalates slow requests to warnings.
func Logger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		rec := &statusRecorder{ResponseWriter: w}
		next.ServeHTTP(rec, r)

		if rec.status == 0 {
			rec.status = http.StatusOK
		}
		elapsed := time.Since(start)

		level := slog.LevelInfo
		if elapsed > slowRequestThreshold {
			level = slog.LevelWarn
		}
		slog.Log(r.Context(), level, "http request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", rec.status,
			"bytes", rec.bytes,
			"duration", elapsed.String(),
			"ip", clientIP(r),
		)
	})
}
