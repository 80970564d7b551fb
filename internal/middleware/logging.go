package middleware

import (
	"log/slog"
	"net/http"
	"time"
)

// statusRecorder captures the response status code for logging.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

// Flush forwards to the wrapped writer so streaming handlers keep working.
func (r *statusRecorder) Flush() {
	if f, ok := r.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

// Logging logs every HTTP request with method, path, status and duration.
func Logging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

		next.ServeHTTP(rec, r)

		duration := time.Since(start).Milliseconds()
		memberID := GetMemberID(r.Context()) // empty if pre-auth
		if rec.status >= 500 {
			slog.Error("HTTP error",
				"method", r.Method,
				"path", r.URL.Path,
				"status", rec.status,
				"member_id", memberID,
				"duration_ms", duration,
			)
		} else if rec.status >= 400 {
			slog.Warn("HTTP error",
				"method", r.Method,
				"path", r.URL.Path,
				"status", rec.status,
				"member_id", memberID,
				"duration_ms", duration,
			)
		} else {
			slog.Info("HTTP ok",
				"method", r.Method,
				"path", r.URL.Path,
				"status", rec.status,
				"member_id", memberID,
				"duration_ms", duration,
			)
		}
	})
}
