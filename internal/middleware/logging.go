package middleware

import (
	"net/http"
	"time"

	"socialgraph/internal/logging"
)

// statusWriter captures the status code and body size written downstream.
type statusWriter struct {
	http.ResponseWriter
	status int
	bytes  int
}

func (w *statusWriter) WriteHeader(status int) {
	w.status = status
	w.ResponseWriter.WriteHeader(status)
}

func (w *statusWriter) Write(b []byte) (int, error) {
	n, err := w.ResponseWriter.Write(b)
	w.bytes += n
	return n, err
}

// probePaths are hit by orchestration every few seconds; logging them
// drowns out the traffic that matters.
var probePaths = map[string]bool{
	"/health": true,
	"/ready":  true,
	"/live":   true,
}

// AccessLog logs each request after it completes. 5xx responses log at
// error, 4xx at warn, everything else at info.
func AccessLog(logger *logging.Logger) func(http.Handler) http.Handler {
	if logger == nil {
		logger = logging.Default
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if probePaths[r.URL.Path] {
				next.ServeHTTP(w, r)
				return
			}

			sw := &statusWriter{ResponseWriter: w, status: http.StatusOK}
			start := time.Now()
			next.ServeHTTP(sw, r)

			fields := map[string]interface{}{
				"method":      r.Method,
				"path":        r.URL.Path,
				"status":      sw.status,
				"bytes":       sw.bytes,
				"duration_ms": time.Since(start).Milliseconds(),
				"remote_addr": r.RemoteAddr,
			}
			if ua := r.UserAgent(); ua != "" {
				fields["user_agent"] = ua
			}
			if r.URL.RawQuery != "" {
				fields["query"] = r.URL.RawQuery
			}

			switch {
			case sw.status >= 500:
				logger.Error("http request", fields)
			case sw.status >= 400:
				logger.Warn("http request", fields)
			default:
				logger.Info("http request", fields)
			}
		})
	}
}
