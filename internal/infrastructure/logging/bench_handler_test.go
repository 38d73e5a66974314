package logging

import (
	"bytes"
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/barockok/kalla-bench/internal/infrastructure/config"
)

func TestBenchHandler_Format(t *testing.T) {
	// Arrange
	var buf bytes.Buffer
	logger := slog.New(NewBenchHandler(&buf, slog.LevelDebug))

	// Act
	logger.Info("chunk written", "invoices", 500, "payments", 475)

	// Assert
	out := buf.String()
	assert.Contains(t, out, "[INFO]")
	assert.Contains(t, out, "chunk written")
	assert.Contains(t, out, "invoices=500")
	assert.Contains(t, out, "payments=475")
	assert.NotContains(t, out, "\033[", "buffer writer must not get ANSI colors")
}

func TestBenchHandler_SystemPrefix(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(NewBenchHandler(&buf, slog.LevelDebug)).With("system", "seed")

	logger.Info("starting")

	out := buf.String()
	assert.Contains(t, out, "[seed]")
	assert.NotContains(t, out, "system=", "system attr must render as prefix, not key=value")
}

func TestBenchHandler_LevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	h := NewBenchHandler(&buf, slog.LevelWarn)

	assert.False(t, h.Enabled(context.Background(), slog.LevelInfo))
	assert.True(t, h.Enabled(context.Background(), slog.LevelWarn))
	assert.True(t, h.Enabled(context.Background(), slog.LevelError))
}

func TestBenchHandler_LevelLabels(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(NewBenchHandler(&buf, slog.LevelDebug))

	logger.Debug("d")
	logger.Warn("w")
	logger.Error("e")

	out := buf.String()
	assert.Contains(t, out, "[DEBUG]")
	assert.Contains(t, out, "[WARN]")
	assert.Contains(t, out, "[ERROR]")
}

func TestBenchHandler_WithAttrsCarriesContext(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(NewBenchHandler(&buf, slog.LevelDebug)).With("run_id", "r-1")

	logger.Info("submitted")

	assert.Contains(t, buf.String(), "run_id=r-1")
}

func TestNewLogger_LevelParsing(t *testing.T) {
	logger := NewLogger(config.LoggingConfig{Level: "debug"})

	require.NotNil(t, logger)
	assert.True(t, logger.Enabled(context.Background(), slog.LevelDebug))

	logger = NewLogger(config.LoggingConfig{Level: "error"})
	assert.False(t, logger.Enabled(context.Background(), slog.LevelWarn))
}
