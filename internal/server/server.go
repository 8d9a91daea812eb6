package server

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/MKhiriev/tune-keeper/internal/config"
	httphandler "github.com/MKhiriev/tune-keeper/internal/handler/http"
	"github.com/MKhiriev/tune-keeper/internal/logger"
	"github.com/MKhiriev/tune-keeper/internal/service"
)

type server struct {
	httpServer *httpServer
	engine     service.SyncEngine
	logger     *logger.Logger
}

// NewServer builds the daemon runtime: the control API's HTTP server plus the
// sync engine whose lifecycle it manages.
func NewServer(handler *httphandler.Handler, engine service.SyncEngine, cfg config.Server, logger *logger.Logger) (Server, error) {
	logger.Info().Msg("creating new server...")

	if cfg.HTTPAddress == "" {
		return nil, errNoControlAddress
	}

	return &server{
		httpServer: newHTTPServer(handler.Init(), cfg),
		engine:     engine,
		logger:     logger,
	}, nil
}

func (s *server) RunServer() {
	s.run()
}

func (s *server) Shutdown() {
	// the engine stops first so an in-flight run finishes while the control
	// API can still answer status queries
	s.engine.Stop()
	s.httpServer.Shutdown()
}

func (s *server) run() {
	idleConnectionsClosed := make(chan struct{})
	ctx, stop := signal.NotifyContext(
		context.Background(),
		syscall.SIGTERM,
		syscall.SIGINT,
		syscall.SIGQUIT,
	)
	defer stop()

	// listen for stop signals
	go func() {
		<-ctx.Done()

		s.Shutdown()

		close(idleConnectionsClosed)
	}()

	s.logger.Info().Msg("starting sync engine")
	s.engine.Start(ctx)

	s.logger.Info().Msg("launching HTTP server")
	go s.httpServer.RunServer()

	<-idleConnectionsClosed
	s.logger.Info().Msg("server Shutdown gracefully")
}
