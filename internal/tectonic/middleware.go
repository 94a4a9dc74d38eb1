package tectonic

import (
	"log/slog"
	"net/http"
	"time"
)

// statusRecorder wraps http.ResponseWriter and remembers the response
// status code for logging.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (w *statusRecorder) WriteHeader(statusCode int) {
	w.status = statusCode
	w.ResponseWriter.WriteHeader(statusCode)
}

func (w *statusRecorder) Write(b []byte) (int, error) {
	if w.status == 0 {
		w.status = http.StatusOK
	}
	return w.ResponseWriter.Write(b)
}

// LogRequest is middleware that logs incoming HTTP requests.
func LogRequest(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := statusRecorder{ResponseWriter: w}

		next.ServeHTTP(&rec, r)

		attrs := slog.Group("request",
			"ip", r.RemoteAddr,
			"method", r.Method,
			"url", r.URL.String(),
			"duration_ms", float64(time.Since(start).Nanoseconds())/float64(time.Millisecond),
			"status_code", rec.status,
		)

		if rec.status >= 400 {
			slog.Error("Request", attrs)
		} else {
			slog.Info("Request", attrs)
		}
	})
}
