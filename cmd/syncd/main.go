package main

import (
	"context"
	"fmt"

	"github.com/MKhiriev/tune-keeper/internal/adapter"
	"github.com/MKhiriev/tune-keeper/internal/auth"
	"github.com/MKhiriev/tune-keeper/internal/config"
	httphandler "github.com/MKhiriev/tune-keeper/internal/handler/http"
	"github.com/MKhiriev/tune-keeper/internal/lifecycle"
	"github.com/MKhiriev/tune-keeper/internal/logger"
	"github.com/MKhiriev/tune-keeper/internal/server"
	"github.com/MKhiriev/tune-keeper/internal/service"
	"github.com/MKhiriev/tune-keeper/internal/store"
)

var (
	buildVersion string
	buildDate    string
	buildCommit  string
)

func main() {
	printBuildInfo()

	log := logger.NewLogger("tune-keeper-syncd")
	cfg, err := config.GetStructuredConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("error getting configs")
	}

	log.Debug().Any("config", cfg).Msg("received configs")

	db, err := store.NewConnectSQLite(context.Background(), cfg.Storage.DB, log)
	if err != nil {
		log.Fatal().Err(err).Msg("error connecting to local database")
	}
	if err := db.Migrate(); err != nil {
		log.Fatal().Err(err).Msg("error migrating local database")
	}

	records := store.NewRecordStore(db, log)
	sessions := auth.NewFileSessionProvider(cfg.Storage.Session, log)

	remote, err := adapter.NewRESTRemoteStore(cfg.Remote, auth.BearerTokens(sessions), log)
	if err != nil {
		log.Fatal().Err(err).Msg("error creating remote store")
	}

	events := lifecycle.NewNotifier()
	engine := service.NewSyncEngine(records, remote, sessions, events, cfg.Workers, log)

	handler := httphandler.NewHandler(engine, events, version(cfg), log)

	srv, err := server.NewServer(handler, engine, cfg.Server, log)
	if err != nil {
		log.Fatal().Err(err).Msg("error creating server")
	}

	srv.RunServer()

	if err := records.Close(); err != nil {
		log.Err(err).Msg("error closing record store")
	}
}

func version(cfg *config.StructuredConfig) string {
	if cfg.App.Version != "" {
		return cfg.App.Version
	}
	return buildVersion
}

func printBuildInfo() {
	if buildVersion == "" {
		buildVersion = "N/A"
	}

	if buildDate == "" {
		buildDate = "N/A"
	}

	if buildCommit == "" {
		buildCommit = "N/A"
	}

	fmt.Printf("Build version: %s\n", buildVersion)
	fmt.Printf("Build date: %s\n", buildDate)
	fmt.Printf("Build commit: %s\n", buildCommit)
}
