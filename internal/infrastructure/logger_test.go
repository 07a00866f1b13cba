package infrastructure

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tabclean/internal/config"
)

func TestInitializeLoggerWritesFile(t *testing.T) {
	ResetLoggerForTesting()
	defer ResetLoggerForTesting()

	logFile := filepath.Join(t.TempDir(), "logs", "tabclean.log")
	logger, err := InitializeLogger(config.LoggingConfig{
		Level:    "info",
		Format:   "json",
		Output:   "both",
		FilePath: logFile,
	})
	require.NoError(t, err)
	require.NotNil(t, logger)
	assert.Same(t, logger, GetLogger())

	logger.Info("test message", "key", "value")
	require.NoError(t, CloseLogFile())

	content, err := os.ReadFile(logFile)
	require.NoError(t, err)

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(bytes.TrimSpace(content), &entry))
	assert.Equal(t, "test message", entry["msg"])
	assert.Equal(t, "value", entry["key"])
}

func TestNewLoggerFormats(t *testing.T) {
	tests := []struct {
		name   string
		format string
		check  func(t *testing.T, out string)
	}{
		{"json", "json", func(t *testing.T, out string) {
			assert.True(t, json.Valid([]byte(strings.TrimSpace(out))))
		}},
		{"text", "text", func(t *testing.T, out string) {
			assert.Contains(t, out, `msg="Loading CSV file..."`)
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			logger, err := NewLogger(config.LoggingConfig{Level: "info", Format: tt.format, Output: "console"}, &buf)
			require.NoError(t, err)
			logger.Info("Loading CSV file...")
			tt.check(t, buf.String())
		})
	}
}

func TestNewLoggerFileWithoutPath(t *testing.T) {
	_, err := NewLogger(config.LoggingConfig{Level: "info", Output: "file"}, &bytes.Buffer{})
	assert.Error(t, err)
}

func TestTraceIDInjection(t *testing.T) {
	var buf bytes.Buffer
	logger, err := NewLogger(config.LoggingConfig{Level: "info", Format: "json", Output: "console"}, &buf)
	require.NoError(t, err)

	ctx := WithTraceID(context.Background(), "trace-123")
	logger.InfoContext(ctx, "with trace")

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &entry))
	assert.Equal(t, "trace-123", entry["trace_id"])
}

func TestLogLevels(t *testing.T) {
	tests := []struct {
		level      string
		debugShown bool
		infoShown  bool
		warnShown  bool
	}{
		{"debug", true, true, true},
		{"info", false, true, true},
		{"warning", false, false, true},
		{"error", false, false, false},
		{"bogus", false, true, true},
	}

	for _, tt := range tests {
		t.Run(tt.level, func(t *testing.T) {
			var buf bytes.Buffer
			logger, err := NewLogger(config.LoggingConfig{Level: tt.level, Format: "text", Output: "console"}, &buf)
			require.NoError(t, err)

			logger.Debug("debug line")
			logger.Info("info line")
			logger.Warn("warn line")

			out := buf.String()
			assert.Equal(t, tt.debugShown, strings.Contains(out, "debug line"))
			assert.Equal(t, tt.infoShown, strings.Contains(out, "info line"))
			assert.Equal(t, tt.warnShown, strings.Contains(out, "warn line"))
		})
	}
}

func TestContextHelpers(t *testing.T) {
	ctx := context.Background()
	assert.Empty(t, GetTraceID(ctx))

	ctx = EnsureTraceID(ctx)
	id := GetTraceID(ctx)
	assert.Len(t, id, 36)
	assert.Equal(t, id, GetTraceID(EnsureTraceID(ctx)), "existing trace ID is kept")
}
