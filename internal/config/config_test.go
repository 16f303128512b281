package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mapLookup(env map[string]string) func(string) (string, bool) {
	return func(key string) (string, bool) {
		v, ok := env[key]
		return v, ok
	}
}

func TestDefaults(t *testing.T) {
	cfg := Default()

	assert.Equal(t, "0.0.0.0:8000", cfg.Server.BindAddress)
	assert.Equal(t, 0, cfg.Server.Workers)
	assert.Equal(t, 30*time.Second, cfg.Server.RequestTimeout)
	assert.Equal(t, DriverSQLite, cfg.Database.Driver)
	assert.Equal(t, "survey.db", cfg.Database.Path)
	assert.Equal(t, 24*time.Hour, cfg.Auth.SessionTTL)
	assert.True(t, cfg.UsesDefaultSecret())
	assert.NoError(t, cfg.Validate())
}

func TestApplyEnv(t *testing.T) {
	cfg := Default()
	err := cfg.applyEnv(mapLookup(map[string]string{
		"BIND_ADDRESS":    "127.0.0.1:9000",
		"WORKERS":         "4",
		"REQUEST_TIMEOUT": "45",
		"SESSION_TTL":     "2h",
		"DATABASE_DRIVER": "postgres",
		"POSTGRES_HOST":   "db",
		"POSTGRES_USER":   "survey",
		"SECRET_KEY":      "s3cret",
		"COOKIE_SECURE":   "true",
		"DATABASE_PATH":   "",
	}))
	require.NoError(t, err)

	assert.Equal(t, "127.0.0.1:9000", cfg.Server.BindAddress)
	assert.Equal(t, 4, cfg.Server.Workers)
	assert.Equal(t, 45*time.Second, cfg.Server.RequestTimeout)
	assert.Equal(t, 2*time.Hour, cfg.Auth.SessionTTL)
	assert.Equal(t, DriverPostgres, cfg.Database.Driver)
	assert.Equal(t, "survey.db", cfg.Database.Path)
	assert.True(t, cfg.Auth.CookieSecure)
	assert.False(t, cfg.UsesDefaultSecret())
	assert.NoError(t, cfg.Validate())
}

func TestApplyEnvRejectsMalformedValues(t *testing.T) {
	for key, value := range map[string]string{
		"WORKERS":         "many",
		"REQUEST_TIMEOUT": "soon",
		"SESSION_TTL":     "forever",
		"COOKIE_SECURE":   "maybe",
	} {
		t.Run(key, func(t *testing.T) {
			cfg := Default()
			err := cfg.applyEnv(mapLookup(map[string]string{key: value}))
			assert.ErrorContains(t, err, key)
		})
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		errMsg string
	}{
		{"unknown driver", func(c *Config) { c.Database.Driver = "mysql" }, "unknown database driver"},
		{"postgres without target", func(c *Config) { c.Database.Driver = DriverPostgres }, "POSTGRES_HOST"},
		{"negative workers", func(c *Config) { c.Server.Workers = -1 }, "workers"},
		{"zero timeout", func(c *Config) { c.Server.RequestTimeout = 0 }, "request timeout"},
		{"zero ttl", func(c *Config) { c.Auth.SessionTTL = 0 }, "session ttl"},
		{"empty secret", func(c *Config) { c.Auth.SecretKey = "" }, "secret key"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			assert.ErrorContains(t, cfg.Validate(), tt.errMsg)
		})
	}
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `
server:
  bind_address: ":8080"
  workers: 8
  request_timeout: 10s
database:
  driver: postgres
  url: postgres://u:p@localhost:5432/surveys?sslmode=disable
auth:
  secret_key: from-file
  session_ttl: 1h
log_level: debug
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	cfg := Default()
	require.NoError(t, cfg.loadFile(path))

	assert.Equal(t, ":8080", cfg.Server.BindAddress)
	assert.Equal(t, 8, cfg.Server.Workers)
	assert.Equal(t, 10*time.Second, cfg.Server.RequestTimeout)
	assert.Equal(t, DriverPostgres, cfg.Database.Driver)
	assert.Equal(t, "postgres://u:p@localhost:5432/surveys?sslmode=disable", cfg.PostgresURL())
	assert.Equal(t, time.Hour, cfg.Auth.SessionTTL)
	assert.Equal(t, "survey.db", cfg.Database.Path)
	assert.Equal(t, "DEBUG", cfg.SlogLevel().String())
}

func TestLoadFileMissing(t *testing.T) {
	cfg := Default()
	assert.Error(t, cfg.loadFile(filepath.Join(t.TempDir(), "nope.yaml")))
}

func TestPostgresURLFromParts(t *testing.T) {
	cfg := Default()
	cfg.Database.Host = "db"
	cfg.Database.Port = "5433"
	cfg.Database.User = "survey"
	cfg.Database.Password = "p@ss"
	cfg.Database.Name = "surveys"

	assert.Equal(t, "postgres://survey:p%40ss@db:5433/surveys?sslmode=disable", cfg.PostgresURL())
}
