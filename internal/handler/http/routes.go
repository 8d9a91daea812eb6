package http

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

func (h *Handler) Init() *chi.Mux {
	router := chi.NewRouter()
	router.Use(middleware.Recoverer)
	router.Use(h.withTraceID)
	router.Use(h.withLogging)

	router.Route("/api", func(r chi.Router) {
		r.Route("/sync", func(r chi.Router) {
			r.Get("/status", h.getSyncStatus)
			r.Get("/progress", h.getSyncProgress)
			r.Get("/pending/{kind}", h.getUnsyncedCount)
			r.Post("/run", h.runManualSync)
			r.Post("/full", h.runFullResync)
		})
		r.Post("/app/state", h.reportAppState)
		r.Get("/version", h.getVersion)
	})

	return router
}
