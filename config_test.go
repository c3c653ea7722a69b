package main

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func envMap(kv map[string]string) func(string) string {
	return func(k string) string { return kv[k] }
}

func TestLoadConfig_Defaults(t *testing.T) {
	cfg, err := LoadConfig("", envMap(nil))
	require.NoError(t, err)

	require.Equal(t, ":8080", cfg.Server.Addr)
	require.Equal(t, 10*time.Second, cfg.Server.ReadTimeout)
	require.Equal(t, 5*time.Second, cfg.Server.ShutdownTimeout)
	require.Equal(t, DriverSQLite, cfg.Database.Driver)
	require.Equal(t, "trivia.db", cfg.Database.DSN)
	require.Equal(t, "data/trivia.json", cfg.Seed.Path)
	require.Equal(t, "info", cfg.Log.Level)
	require.Equal(t, []string{"*"}, cfg.CORS.AllowOrigins)
}

func TestLoadConfig_FileThenEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	payload := `server:
  addr: ":9000"
  read_timeout: 3s
database:
  driver: Postgres
  dsn: "host=db user=trivia dbname=trivia"
log:
  level: debug
cors:
  allow_origins: ["http://localhost:3000"]
`
	require.NoError(t, os.WriteFile(path, []byte(payload), 0o644))

	cfg, err := LoadConfig(path, envMap(map[string]string{
		"PORT":         "7000",
		"LOG_LEVEL":    "warn",
		"CORS_ORIGINS": "https://a.example, https://b.example",
	}))
	require.NoError(t, err)

	require.Equal(t, ":7000", cfg.Server.Addr)
	require.Equal(t, 3*time.Second, cfg.Server.ReadTimeout)
	require.Equal(t, DriverPostgres, cfg.Database.Driver)
	require.Equal(t, "host=db user=trivia dbname=trivia", cfg.Database.DSN)
	require.Equal(t, "warn", cfg.Log.Level)
	require.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.CORS.AllowOrigins)
}

func TestLoadConfig_HTTPAddrWinsOverPort(t *testing.T) {
	cfg, err := LoadConfig("", envMap(map[string]string{"PORT": "7000", "HTTP_ADDR": "127.0.0.1:9999"}))
	require.NoError(t, err)
	require.Equal(t, "127.0.0.1:9999", cfg.Server.Addr)
}

func TestLoadConfig_Errors(t *testing.T) {
	tests := []struct {
		name    string
		payload string
		env     map[string]string
	}{
		{name: "unknown key", payload: "server:\n  adress: \":1\"\n"},
		{name: "unknown driver", env: map[string]string{"DB_DRIVER": "mysql"}},
		{name: "postgres without dsn", env: map[string]string{"DB_DRIVER": "postgres"}},
		{name: "negative timeout", payload: "server:\n  idle_timeout: -1s\n"},
		{name: "bad duration", payload: "server:\n  read_timeout: soon\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := ""
			if tt.payload != "" {
				path = filepath.Join(t.TempDir(), "config.yaml")
				require.NoError(t, os.WriteFile(path, []byte(tt.payload), 0o644))
			}
			_, err := LoadConfig(path, envMap(tt.env))
			require.Error(t, err)
		})
	}
}

func TestLoadConfig_MissingFile(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "absent.yaml"), envMap(nil))
	require.ErrorIs(t, err, os.ErrNotExist)
}
