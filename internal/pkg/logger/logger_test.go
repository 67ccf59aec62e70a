package logger

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, ParseLevel("DEBUG"))
	assert.Equal(t, slog.LevelWarn, ParseLevel("warn"))
	assert.Equal(t, slog.LevelError, ParseLevel("error"))
	assert.Equal(t, slog.LevelInfo, ParseLevel("verbose"))
}

func TestSetupLoggerJSON(t *testing.T) {
	var buf bytes.Buffer
	log, err := SetupLogger(Config{Level: slog.LevelInfo, Format: "json", Output: &buf})
	require.NoError(t, err)

	log.Debug("hidden")
	log.Info("order imported", "order_partner_id", "ORD-1")

	var record map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &record))
	assert.Equal(t, "order imported", record["msg"])
	assert.Equal(t, "ORD-1", record["order_partner_id"])
}

func TestSetupLoggerFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "cli.log")

	log, err := SetupLogger(Config{Level: slog.LevelWarn, LogFile: path})
	require.NoError(t, err)
	log.Warn("retrying request", "attempt", 2)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "retrying request")
	assert.Contains(t, string(data), "attempt=2")
}
