package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_Defaults(t *testing.T) {
	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, BackendMemory, cfg.DataBackend)
	assert.Equal(t, time.Hour, cfg.SchedulerInterval)
	assert.Equal(t, 4, cfg.MaterializeConcurrency)
	assert.Equal(t, 5, cfg.MaterializeMaxAttempts)
	assert.Equal(t, []string{"http://localhost:3000"}, cfg.CORSAllowedOrigins)
	assert.NoError(t, cfg.Validate())
}

func TestLoadConfig_FromEnvironment(t *testing.T) {
	t.Setenv("DATA_BACKEND", "SQLite")
	t.Setenv("SQLITE_DB_PATH", "/tmp/rec.db")
	t.Setenv("SCHEDULER_INTERVAL", "15m")
	t.Setenv("MATERIALIZE_CONCURRENCY", "8")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.example, https://b.example")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, BackendSQLite, cfg.DataBackend)
	assert.Equal(t, "/tmp/rec.db", cfg.SQLiteDBPath)
	assert.Equal(t, 15*time.Minute, cfg.SchedulerInterval)
	assert.Equal(t, 8, cfg.MaterializeConcurrency)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.CORSAllowedOrigins)
}

func TestLoadConfig_InvalidInterval(t *testing.T) {
	t.Setenv("SCHEDULER_INTERVAL", "often")
	_, err := LoadConfig()
	assert.ErrorContains(t, err, "SCHEDULER_INTERVAL")
}

func TestValidate_AggregatesProblems(t *testing.T) {
	cfg := &Config{
		Port:                   "99999",
		DataBackend:            BackendPostgres,
		SchedulerEnabled:       true,
		SchedulerInterval:      time.Millisecond,
		MaterializeConcurrency: 0,
		MaterializeMaxAttempts: 1,
		AMQPURL:                "http://broker",
		RateLimit:              "fast",
	}

	err := cfg.Validate()
	require.Error(t, err)
	for _, want := range []string{
		"between 1 and 65535",
		"PGSQL_URL is required",
		"scheduler interval",
		"materialize concurrency",
		"AMQP URL scheme",
		"AMQP exchange name",
		"invalid rate limit",
	} {
		assert.Contains(t, err.Error(), want)
	}
}

func TestValidate_UnknownBackend(t *testing.T) {
	cfg := &Config{Port: "8080", DataBackend: "sheets", MaterializeConcurrency: 1, MaterializeMaxAttempts: 1, RateLimit: "10-S"}
	assert.ErrorContains(t, cfg.Validate(), "invalid data backend 'sheets'")
}
