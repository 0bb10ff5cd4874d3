package config

import (
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// clearEnv blanks every variable Load reads; getEnv treats empty as unset.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"SERVICE_NAME", "PORT", "VERSION", "ENV",
		"TRACING_ENABLED", "OTEL_COLLECTOR_ENDPOINT", "OTEL_SAMPLE_RATE", "OTEL_BATCH_SIZE",
		"PROFILING_ENABLED", "PYROSCOPE_ENDPOINT", "LOG_LEVEL", "LOG_FORMAT",
		"METRICS_ENABLED", "METRICS_PATH",
		"DB_DRIVER", "DATABASE_URL", "DB_HOST", "DB_PORT", "DB_NAME", "DB_USER", "DB_PASSWORD",
		"DB_SSLMODE", "DB_POOL_MAX_CONNECTIONS", "SQLITE_PATH",
		"SHUTDOWN_TIMEOUT", "READINESS_DRAIN_DELAY",
	} {
		t.Setenv(key, "")
	}
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)
	cfg := Load()

	assert.Equal(t, "contact-service", cfg.Service.Name)
	assert.Equal(t, "5000", cfg.Service.Port)
	assert.Equal(t, DriverPostgres, cfg.Database.Driver)
	assert.Equal(t, "contacts.db", cfg.Database.SQLitePath)
	assert.Equal(t, 25, cfg.Database.MaxConnections)
	assert.Equal(t, "/metrics", cfg.Metrics.Path)
	assert.False(t, cfg.Tracing.Enabled)
	assert.Equal(t, 10*time.Second, cfg.GetShutdownTimeoutDuration())
	assert.Zero(t, cfg.GetReadinessDrainDelayDuration())
}

func TestLoadFromEnvironment(t *testing.T) {
	clearEnv(t)
	t.Setenv("PORT", "8081")
	t.Setenv("DB_DRIVER", "SQLite")
	t.Setenv("SQLITE_PATH", "/tmp/contacts.db")
	t.Setenv("SHUTDOWN_TIMEOUT", "30s")
	t.Setenv("READINESS_DRAIN_DELAY", "2m")
	t.Setenv("TRACING_ENABLED", "yes")

	cfg := Load()

	assert.Equal(t, "8081", cfg.Service.Port)
	assert.Equal(t, DriverSQLite, cfg.Database.Driver)
	assert.Equal(t, "/tmp/contacts.db", cfg.Database.SQLitePath)
	assert.Equal(t, 30, cfg.ShutdownTimeout)
	// Above the 30s ceiling, so the default wins.
	assert.Equal(t, 0, cfg.ReadinessDrainDelay)
	assert.True(t, cfg.Tracing.Enabled)
}

func TestValidateSQLite(t *testing.T) {
	clearEnv(t)
	t.Setenv("DB_DRIVER", "sqlite")

	require.NoError(t, Load().Validate())
}

func TestValidatePostgresRequiresConnectionSettings(t *testing.T) {
	clearEnv(t)
	cfg := Load()

	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "DATABASE_URL or DB_HOST is required")
	assert.Contains(t, err.Error(), "DB_NAME is required")
}

func TestValidatePostgresWithURL(t *testing.T) {
	clearEnv(t)
	t.Setenv("DATABASE_URL", "postgresql://app:secret@db:5432/contacts?sslmode=disable")

	cfg := Load()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, "postgresql://app:secret@db:5432/contacts?sslmode=disable", cfg.Database.BuildDSN())
}

func TestValidateAggregatesErrors(t *testing.T) {
	clearEnv(t)
	cfg := Load()
	cfg.Database.Driver = "mysql"
	cfg.Service.Port = "http"
	cfg.Logging.Level = "trace"

	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "PORT must be a valid number")
	assert.Contains(t, err.Error(), "LOG_LEVEL must be one of")
	assert.Contains(t, err.Error(), "DB_DRIVER must be one of")
}

func TestBuildDSNFromParts(t *testing.T) {
	db := DatabaseConfig{
		Host:           "db",
		Port:           "5432",
		Name:           "contacts",
		User:           "app",
		Password:       "secret",
		SSLMode:        "disable",
		MaxConnections: 10,
	}

	assert.Equal(t, "postgresql://app:secret@db:5432/contacts?pool_max_conns=10&sslmode=disable", db.BuildDSN())
}

func TestBuildDSNEscapesCredentials(t *testing.T) {
	db := DatabaseConfig{
		Host:           "db.internal",
		Port:           "6432",
		Name:           "contacts",
		User:           "svc@crm",
		Password:       "p@ss/w:rd?#",
		SSLMode:        "require",
		MaxConnections: 5,
	}

	parsed, err := url.Parse(db.BuildDSN())
	require.NoError(t, err)

	assert.Equal(t, "postgresql", parsed.Scheme)
	assert.Equal(t, "svc@crm", parsed.User.Username())
	password, ok := parsed.User.Password()
	require.True(t, ok)
	assert.Equal(t, "p@ss/w:rd?#", password)
	assert.Equal(t, "db.internal", parsed.Hostname())
	assert.Equal(t, "6432", parsed.Port())
	assert.Equal(t, "/contacts", parsed.Path)
	assert.Equal(t, "require", parsed.Query().Get("sslmode"))
	assert.Equal(t, "5", parsed.Query().Get("pool_max_conns"))
}
