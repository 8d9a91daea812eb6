package http

import (
	"github.com/MKhiriev/tune-keeper/internal/lifecycle"
	"github.com/MKhiriev/tune-keeper/internal/logger"
	"github.com/MKhiriev/tune-keeper/internal/service"
)

type Handler struct {
	engine  service.SyncEngine
	events  *lifecycle.Notifier
	version string

	logger *logger.Logger
}

func NewHandler(engine service.SyncEngine, events *lifecycle.Notifier, version string, logger *logger.Logger) *Handler {
	logger.Info().Msg("http handler created")
	return &Handler{
		engine:  engine,
		events:  events,
		version: version,
		logger:  logger,
	}
}
