package http

import (
	"net/http"
	"time"

	"github.com/MKhiriev/tune-keeper/internal/logger"
)

// withLogging writes one access-log line per control API request, tagged with
// whether a sync run was active when the response went out.
func (h *Handler) withLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		log := logger.FromRequest(r)

		start := time.Now()

		lw := &responseWriter{
			ResponseWriter: w,
		}

		next.ServeHTTP(lw, r)

		log.Info().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", lw.status).
			Dur("duration", time.Since(start)).
			Int("size", lw.size).
			Bool("sync_running", h.engine.GetStatus().IsRunning).
			Msg("control request served")
	})
}
