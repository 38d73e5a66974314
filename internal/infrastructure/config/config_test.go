package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad_ParsesYAML(t *testing.T) {
	// Arrange
	path := writeConfig(t, `
postgres:
  url: postgres://bench@db:5432/bench
scheduler:
  url: http://scheduler:9090
bench:
  rows: 50000
  match_rate: 0.75
  engine_timeout: 5m
logging:
  level: debug
  format: json
`)

	// Act
	cfg, err := Load(path)

	// Assert
	require.NoError(t, err)
	assert.Equal(t, "postgres://bench@db:5432/bench", cfg.Postgres.URL)
	assert.Equal(t, "http://scheduler:9090", cfg.Scheduler.URL)
	assert.Equal(t, 50000, cfg.Bench.Rows)
	assert.Equal(t, 5*time.Minute, cfg.Bench.EngineTimeout)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, "json", cfg.Logging.Format)
}

func TestLoad_AppliesDefaultsForMissingKeys(t *testing.T) {
	path := writeConfig(t, `
bench:
  rows: 1000
`)

	cfg, err := Load(path)

	require.NoError(t, err)
	assert.Equal(t, 1000, cfg.Bench.Rows)
	assert.Equal(t, 0.75, cfg.Bench.MatchRate)
	assert.Equal(t, 500_000, cfg.Bench.ChunkSize)
	assert.Equal(t, "nats://localhost:4222", cfg.NATS.URL)
	assert.Equal(t, "results", cfg.Bench.ResultsDir)
}

func TestLoad_ExpandsEnvironmentVariables(t *testing.T) {
	t.Setenv("TEST_BENCH_DB_URL", "postgres://expanded@host/db")
	path := writeConfig(t, `
postgres:
  url: ${TEST_BENCH_DB_URL}
`)

	cfg, err := Load(path)

	require.NoError(t, err)
	assert.Equal(t, "postgres://expanded@host/db", cfg.Postgres.URL)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))

	assert.True(t, os.IsNotExist(err))
}

func TestLoad_InvalidYAML(t *testing.T) {
	path := writeConfig(t, "postgres: [unclosed")

	_, err := Load(path)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "parsing")
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("BENCH_PG_URL", "postgres://env@host/db")
	t.Setenv("BENCH_ROWS", "2500")
	t.Setenv("BENCH_ENGINE_TIMEOUT_SECS", "90")
	t.Setenv("LOG_LEVEL", "warn")

	cfg := LoadFromEnv()

	assert.Equal(t, "postgres://env@host/db", cfg.Postgres.URL)
	assert.Equal(t, 2500, cfg.Bench.Rows)
	assert.Equal(t, 90*time.Second, cfg.Bench.EngineTimeout)
	assert.Equal(t, "warn", cfg.Logging.Level)
	// Untouched keys keep their defaults.
	assert.Equal(t, "http://localhost:9090", cfg.Scheduler.URL)
}

func TestLoadFromEnv_IgnoresMalformedInt(t *testing.T) {
	t.Setenv("BENCH_ROWS", "lots")

	cfg := LoadFromEnv()

	assert.Equal(t, 30000, cfg.Bench.Rows)
}

func TestLoadOrEnv(t *testing.T) {
	t.Run("empty path uses env", func(t *testing.T) {
		t.Setenv("BENCH_ROWS", "123")

		cfg, err := LoadOrEnv("")

		require.NoError(t, err)
		assert.Equal(t, 123, cfg.Bench.Rows)
	})

	t.Run("missing file falls back to env", func(t *testing.T) {
		t.Setenv("BENCH_ROWS", "456")

		cfg, err := LoadOrEnv(filepath.Join(t.TempDir(), "absent.yaml"))

		require.NoError(t, err)
		assert.Equal(t, 456, cfg.Bench.Rows)
	})

	t.Run("existing file wins", func(t *testing.T) {
		t.Setenv("BENCH_ROWS", "456")
		path := writeConfig(t, "bench:\n  rows: 789\n")

		cfg, err := LoadOrEnv(path)

		require.NoError(t, err)
		assert.Equal(t, 789, cfg.Bench.Rows)
	})
}
