package v1

import (
	"log/slog"
	"net/http"
	"time"
)

// requireSearch guards routes that need the indexer pool and selector.
func (s *Server) requireSearch(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if s.deps.Indexers == nil || s.deps.Selector == nil {
			writeError(w, http.StatusServiceUnavailable, "SERVICE_UNAVAILABLE", "search is not configured")
			return
		}
		next(w, r)
	}
}

// requireManager guards routes that need the download manager.
func (s *Server) requireManager(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if s.deps.Manager == nil {
			writeError(w, http.StatusServiceUnavailable, "SERVICE_UNAVAILABLE", "no download clients are configured")
			return
		}
		next(w, r)
	}
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

// Logging logs each request with method, path, status, and duration.
func Logging(log *slog.Logger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		log.Info("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", rec.status,
			"duration_ms", time.Since(start).Milliseconds(),
		)
	})
}
