package observability

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/couchcryptid/inmet-scraper/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, ParseLevel("DEBUG"))
	assert.Equal(t, slog.LevelWarn, ParseLevel("warning"))
	assert.Equal(t, slog.LevelError, ParseLevel(" error "))
	assert.Equal(t, slog.LevelInfo, ParseLevel("info"))
	assert.Equal(t, slog.LevelInfo, ParseLevel("bogus"))
}

func TestNewLogger_JSON(t *testing.T) {
	var buf bytes.Buffer
	logger := newLogger(&buf, "info", "json")

	logger.Debug("hidden")
	logger.Info("year processed", "year", 2020)

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "year processed", line["msg"])
	assert.Equal(t, float64(2020), line["year"])
}

func TestNewLogger_Text(t *testing.T) {
	var buf bytes.Buffer
	logger := newLogger(&buf, "debug", "text")

	logger.Debug("downloading archive", "year", 2021)
	assert.Contains(t, buf.String(), "downloading archive")
	assert.Contains(t, buf.String(), "2021")
}

func TestNewLogger_WritesToStderr(t *testing.T) {
	stderr, err := os.Create(filepath.Join(t.TempDir(), "stderr"))
	require.NoError(t, err)
	defer stderr.Close()
	stdout, err := os.Create(filepath.Join(t.TempDir(), "stdout"))
	require.NoError(t, err)
	defer stdout.Close()

	origErr, origOut := os.Stderr, os.Stdout
	os.Stderr, os.Stdout = stderr, stdout
	t.Cleanup(func() { os.Stderr, os.Stdout = origErr, origOut })

	logger := NewLogger(&config.Config{LogLevel: "info", LogFormat: "json"})
	logger.Info("batch started", "start_year", 2019)

	errBytes, err := os.ReadFile(stderr.Name())
	require.NoError(t, err)
	outBytes, err := os.ReadFile(stdout.Name())
	require.NoError(t, err)

	assert.Contains(t, string(errBytes), `"msg":"batch started"`)
	assert.Empty(t, outBytes)
}
