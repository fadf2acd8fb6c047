package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setDatabaseEnv(t *testing.T) {
	t.Helper()

	t.Setenv("SHOPDB_PRIMARY__ENV", "local")
	t.Setenv("SHOPDB_DATABASE__HOST", "localhost")
	t.Setenv("SHOPDB_DATABASE__PORT", "5432")
	t.Setenv("SHOPDB_DATABASE__USER", "testuser")
	t.Setenv("SHOPDB_DATABASE__PASSWORD", "p@ss:word")
	t.Setenv("SHOPDB_DATABASE__NAME", "testuser")
	t.Setenv("SHOPDB_DATABASE__SSL_MODE", "disable")
	t.Setenv("SHOPDB_DATABASE__MAX_OPEN_CONNS", "10")
	t.Setenv("SHOPDB_DATABASE__MAX_IDLE_CONNS", "2")
	t.Setenv("SHOPDB_DATABASE__CONN_MAX_LIFETIME", "300")
	t.Setenv("SHOPDB_DATABASE__CONN_MAX_IDLE_TIME", "60")
}

func TestEnvKey(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"SHOPDB_PRIMARY__ENV", "primary.env"},
		{"SHOPDB_DATABASE__SSL_MODE", "database.ssl_mode"},
		{"SHOPDB_OBSERVABILITY__LOGGING__LEVEL", "observability.logging.level"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, envKey(tt.in))
	}
}

func TestLoadConfig(t *testing.T) {
	setDatabaseEnv(t)

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "local", cfg.Primary.Env)
	assert.Equal(t, 5432, cfg.Database.Port)
	assert.Equal(t, "disable", cfg.Database.SSLMode)

	require.NotNil(t, cfg.Observability)
	assert.Equal(t, "shopdb", cfg.Observability.ServiceName)
	assert.Equal(t, "local", cfg.Observability.Environment)
	assert.Equal(t, "info", cfg.Observability.Logging.Level)
	assert.False(t, cfg.Observability.NewRelicEnabled())
}

func TestLoadConfig_PartialObservability(t *testing.T) {
	setDatabaseEnv(t)
	t.Setenv("SHOPDB_OBSERVABILITY__LOGGING__LEVEL", "debug")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "debug", cfg.Observability.Logging.Level)
	assert.Equal(t, "console", cfg.Observability.Logging.Format)
	assert.Equal(t, 100*time.Millisecond, cfg.Observability.Logging.SlowQueryThreshold)
}

func TestLoadConfig_MissingDatabase(t *testing.T) {
	t.Setenv("SHOPDB_PRIMARY__ENV", "local")

	_, err := LoadConfig()
	assert.Error(t, err)
}

func TestDatabaseConfig_DSN(t *testing.T) {
	d := DatabaseConfig{
		Host:     "::1",
		Port:     5432,
		User:     "testuser",
		Password: "p@ss:word",
		Name:     "shop",
		SSLMode:  "disable",
	}

	assert.Equal(t, "postgres://testuser:p%40ss%3Aword@[::1]:5432/shop?sslmode=disable", d.DSN())
}

func TestObservabilityConfig_Validate(t *testing.T) {
	cfg := DefaultObservabilityConfig()
	require.NoError(t, cfg.Validate())

	cfg.Logging.Level = "verbose"
	assert.Error(t, cfg.Validate())

	cfg = DefaultObservabilityConfig()
	cfg.Logging.SlowQueryThreshold = -time.Second
	assert.Error(t, cfg.Validate())
}
