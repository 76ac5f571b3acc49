package logger

import (
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewSystemLogger_WritesJSON(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "logs")

	log, closer, err := NewSystemLogger(dir, slog.LevelInfo)
	require.NoError(t, err)
	defer closer.Close()

	log.Debug("hidden")
	log.Info("oxo starting", "port", 5173)

	data, err := os.ReadFile(filepath.Join(dir, "system.log"))
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	require.Len(t, lines, 1, "debug records are filtered at info level")

	var rec map[string]any
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &rec))
	assert.Equal(t, "oxo starting", rec["msg"])
	assert.Equal(t, "INFO", rec["level"])
	assert.InDelta(t, 5173, rec["port"], 0)
}

func TestNewSystemLogger_BadDir(t *testing.T) {
	file := filepath.Join(t.TempDir(), "not-a-dir")
	require.NoError(t, os.WriteFile(file, []byte("x"), 0600))

	_, _, err := NewSystemLogger(filepath.Join(file, "logs"), slog.LevelInfo)
	assert.Error(t, err)
}

func TestNewFileLogger_Close(t *testing.T) {
	path := filepath.Join(t.TempDir(), "system.log")

	unused, closer := NewFileLogger(path, slog.LevelInfo)
	require.NotNil(t, unused)
	require.NoError(t, closer.Close(), "closing before the first write is a no-op")

	log, closer := NewFileLogger(path, slog.LevelInfo)
	log.Info("before close")
	require.NoError(t, closer.Close())
	require.NoError(t, closer.Close(), "closing twice is safe")

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "before close")
}
