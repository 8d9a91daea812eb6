package config

import (
	"time"
)

// StructuredConfig is the top-level configuration container for the
// tune-keeper sync daemon. It aggregates all sub-configurations and is
// populated by merging values from environment variables, command-line flags,
// and an optional JSON file.
//
// Struct tags:
//   - envPrefix: prefix applied to all nested env tag lookups (caarlos0/env).
//   - env: direct environment variable name for scalar fields.
type StructuredConfig struct {
	// App holds application-level settings such as the build version.
	App App `envPrefix:"APP_"`

	// Storage holds the local persistence settings: the SQLite record store
	// and the auth session file.
	Storage Storage `envPrefix:"STORAGE_"`

	// Remote holds the settings of the hosted backend the engine syncs
	// against.
	Remote Remote `envPrefix:"REMOTE_"`

	// Server holds the local control/observability API settings.
	Server Server `envPrefix:"SERVER_"`

	// Workers holds background sync scheduling settings.
	Workers Workers `envPrefix:"WORKERS_"`

	// JSONFilePath is the optional path to a JSON configuration file.
	// When non-empty, the file is parsed and merged on top of the values
	// already loaded from environment variables and flags.
	// Populated via the CONFIG environment variable or the -c / -config flag.
	JSONFilePath string `env:"CONFIG"`
}

// App holds application-level configuration values.
type App struct {
	// Version is the semantic version string of the running application.
	// Exposed via the /api/version endpoint.
	// Env: APP_VERSION
	Version string `env:"VERSION"`
}

// Storage groups the configuration for all local persistence.
type Storage struct {
	// DB holds the local record store settings.
	DB DB `envPrefix:"DB_"`

	// Session holds the auth session file settings.
	Session Session `envPrefix:"SESSION_"`
}

// DB holds the local SQLite record store connection settings.
type DB struct {
	// DSN is the SQLite database path, or ":memory:" for an in-memory
	// store (tests and first-run scenarios).
	// Env: STORAGE_DB_DSN
	DSN string `env:"DSN"`
}

// Session holds the location of the persisted auth session.
type Session struct {
	// Path is the JSON session file written by the host app's auth flow.
	// Env: STORAGE_SESSION_PATH
	Path string `env:"PATH"`
}

// Remote holds settings for the hosted backend.
type Remote struct {
	// BaseURL is the backend base URL (e.g. "https://api.example.com").
	// Env: REMOTE_BASE_URL
	BaseURL string `env:"BASE_URL"`

	// APIKey is the project API key sent with every request.
	// Env: REMOTE_API_KEY
	APIKey string `env:"API_KEY"`

	// RequestTimeout bounds every outbound remote call (e.g. "15s").
	// A timed-out call is treated like any other remote failure.
	// Env: REMOTE_REQUEST_TIMEOUT
	RequestTimeout time.Duration `env:"REQUEST_TIMEOUT"`
}

// Server holds network settings for the local control API.
type Server struct {
	// HTTPAddress is the TCP address the control API listens on,
	// in "host:port" format (e.g. "127.0.0.1:7353").
	// Env: SERVER_ADDRESS
	HTTPAddress string `env:"ADDRESS"`

	// RequestTimeout is the maximum duration allowed for a single inbound
	// request before the server cancels it.
	// Env: SERVER_REQUEST_TIMEOUT
	RequestTimeout time.Duration `env:"REQUEST_TIMEOUT"`
}

// Workers holds background sync scheduling settings.
type Workers struct {
	// SyncInterval defines how often the periodic sync fires. Zero falls
	// back to the engine default of five minutes.
	// Env: WORKERS_SYNC_INTERVAL
	SyncInterval time.Duration `env:"SYNC_INTERVAL"`
}

// GetStructuredConfig loads, merges, and validates the application
// configuration from all available sources in the following priority order
// (last source wins for non-zero fields):
//  1. Environment variables
//  2. Command-line flags
//  3. JSON file (path resolved from sources 1 and 2)
//
// Returns a fully populated *StructuredConfig or an error if any source
// fails to load or the final config fails validation.
func GetStructuredConfig() (*StructuredConfig, error) {
	return newConfigBuilder().
		withEnv().
		withFlags().
		withJSON().
		build()
}
