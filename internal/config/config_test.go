package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNetAddress_Set(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    NetAddress
		wantErr bool
	}{
		{
			name:  "localhost with port",
			input: "localhost:8080",
			want:  NetAddress{Host: "localhost", Port: 8080},
		},
		{
			name:  "ip with port",
			input: "127.0.0.1:7353",
			want:  NetAddress{Host: "127.0.0.1", Port: 7353},
		},
		{
			name:    "missing port",
			input:   "localhost",
			wantErr: true,
		},
		{
			name:    "non-numeric port",
			input:   "localhost:abc",
			wantErr: true,
		},
		{
			name:    "zero port",
			input:   "localhost:0",
			wantErr: true,
		},
		{
			name:    "bogus host",
			input:   "not-an-ip:8080",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var addr NetAddress
			err := addr.Set(tt.input)

			if tt.wantErr {
				assert.Error(t, err)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.want, addr)
			assert.Equal(t, tt.input, addr.String())
		})
	}
}

func TestNetAddress_String_Empty(t *testing.T) {
	var addr NetAddress
	assert.Equal(t, "", addr.String())
}

func TestDuration_UnmarshalJSON(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  time.Duration
	}{
		{name: "string duration", input: `"5m"`, want: 5 * time.Minute},
		{name: "string with unit mix", input: `"1h30m"`, want: 90 * time.Minute},
		{name: "numeric nanoseconds", input: `15000000000`, want: 15 * time.Second},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var d Duration
			require.NoError(t, json.Unmarshal([]byte(tt.input), &d))
			assert.Equal(t, tt.want, time.Duration(d))
		})
	}

	t.Run("invalid string", func(t *testing.T) {
		var d Duration
		assert.Error(t, json.Unmarshal([]byte(`"not-a-duration"`), &d))
	})
}

func TestParseJSON(t *testing.T) {
	raw := `{
		"app": {"version": "1.2.3"},
		"storage": {
			"db": {"dsn": "/data/tunekeeper.db"},
			"session": {"path": "/data/session.json"}
		},
		"remote": {
			"base_url": "https://api.example.com",
			"api_key": "anon-key",
			"request_timeout": "15s"
		},
		"server": {
			"http_address": "127.0.0.1:7353",
			"request_timeout": "30s"
		},
		"workers": {"sync_interval": "5m"}
	}`

	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte(raw), 0o600))

	cfg, err := parseJSON(path)
	require.NoError(t, err)

	assert.Equal(t, "1.2.3", cfg.App.Version)
	assert.Equal(t, "/data/tunekeeper.db", cfg.Storage.DB.DSN)
	assert.Equal(t, "/data/session.json", cfg.Storage.Session.Path)
	assert.Equal(t, "https://api.example.com", cfg.Remote.BaseURL)
	assert.Equal(t, "anon-key", cfg.Remote.APIKey)
	assert.Equal(t, 15*time.Second, cfg.Remote.RequestTimeout)
	assert.Equal(t, "127.0.0.1:7353", cfg.Server.HTTPAddress)
	assert.Equal(t, 30*time.Second, cfg.Server.RequestTimeout)
	assert.Equal(t, 5*time.Minute, cfg.Workers.SyncInterval)
}

func TestParseJSON_FileNotFound(t *testing.T) {
	_, err := parseJSON("/no/such/config.json")
	assert.Error(t, err)
}

func TestConfigBuilder_MergePriority(t *testing.T) {
	// Later sources only fill fields still zero after earlier sources,
	// so the first non-zero value wins.
	first := &StructuredConfig{
		Storage: Storage{DB: DB{DSN: "/env/tunekeeper.db"}},
		Remote:  Remote{BaseURL: "https://env.example.com"},
		Server:  Server{HTTPAddress: "localhost:7353"},
	}
	second := &StructuredConfig{
		Storage: Storage{DB: DB{DSN: "/json/tunekeeper.db"}},
		Remote: Remote{
			BaseURL:        "https://json.example.com",
			APIKey:         "json-key",
			RequestTimeout: 15 * time.Second,
		},
		Server: Server{HTTPAddress: "localhost:9000"},
	}

	b := newConfigBuilder()
	b.configs = append(b.configs, first, second)

	cfg, err := b.build()
	require.NoError(t, err)

	assert.Equal(t, "/env/tunekeeper.db", cfg.Storage.DB.DSN)
	assert.Equal(t, "https://env.example.com", cfg.Remote.BaseURL)
	assert.Equal(t, "localhost:7353", cfg.Server.HTTPAddress)
	// Fields absent from the first source are still filled from the second.
	assert.Equal(t, "json-key", cfg.Remote.APIKey)
	assert.Equal(t, 15*time.Second, cfg.Remote.RequestTimeout)
}

func TestStructuredConfig_Validate(t *testing.T) {
	valid := func() *StructuredConfig {
		return &StructuredConfig{
			Storage: Storage{DB: DB{DSN: ":memory:"}},
			Remote:  Remote{BaseURL: "https://api.example.com"},
			Server:  Server{HTTPAddress: "localhost:7353"},
		}
	}

	t.Run("valid config", func(t *testing.T) {
		assert.NoError(t, valid().validate())
	})

	t.Run("missing dsn", func(t *testing.T) {
		cfg := valid()
		cfg.Storage.DB.DSN = ""
		assert.ErrorIs(t, cfg.validate(), ErrInvalidStorageConfigs)
	})

	t.Run("missing remote base url", func(t *testing.T) {
		cfg := valid()
		cfg.Remote.BaseURL = ""
		assert.ErrorIs(t, cfg.validate(), ErrInvalidRemoteConfigs)
	})

	t.Run("missing server address", func(t *testing.T) {
		cfg := valid()
		cfg.Server.HTTPAddress = ""
		assert.ErrorIs(t, cfg.validate(), ErrInvalidServerConfigs)
	})

	t.Run("zero sync interval is allowed", func(t *testing.T) {
		cfg := valid()
		cfg.Workers.SyncInterval = 0
		assert.NoError(t, cfg.validate())
	})
}

func TestParseEnv(t *testing.T) {
	t.Setenv("STORAGE_DB_DSN", "/tmp/tunekeeper.db")
	t.Setenv("REMOTE_BASE_URL", "https://api.example.com")
	t.Setenv("REMOTE_REQUEST_TIMEOUT", "20s")
	t.Setenv("SERVER_ADDRESS", "localhost:7353")
	t.Setenv("WORKERS_SYNC_INTERVAL", "2m")

	cfg := &StructuredConfig{}
	require.NoError(t, parseEnv(cfg))

	assert.Equal(t, "/tmp/tunekeeper.db", cfg.Storage.DB.DSN)
	assert.Equal(t, "https://api.example.com", cfg.Remote.BaseURL)
	assert.Equal(t, 20*time.Second, cfg.Remote.RequestTimeout)
	assert.Equal(t, "localhost:7353", cfg.Server.HTTPAddress)
	assert.Equal(t, 2*time.Minute, cfg.Workers.SyncInterval)
}
