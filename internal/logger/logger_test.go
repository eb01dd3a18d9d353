package logger

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestNew_WritesJSON(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "logs")
	log, err := New(Options{Dir: dir})
	require.NoError(t, err)
	t.Cleanup(func() { zap.ReplaceGlobals(zap.NewNop()) })

	zap.S().Infow("config loaded", "host", "db.example.com")
	_ = log.Sync()

	raw, err := os.ReadFile(FileName(dir, time.Now()))
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(string(raw)), "\n")
	require.GreaterOrEqual(t, len(lines), 2)

	var last map[string]any
	require.NoError(t, json.Unmarshal([]byte(lines[len(lines)-1]), &last))
	assert.Equal(t, "config loaded", last["msg"])
	assert.Equal(t, "info", last["level"])
	assert.Equal(t, "db.example.com", last["host"])
}

func TestNew_RespectsLevel(t *testing.T) {
	dir := t.TempDir()
	log, err := New(Options{Dir: dir, Level: zap.WarnLevel})
	require.NoError(t, err)
	t.Cleanup(func() { zap.ReplaceGlobals(zap.NewNop()) })

	log.Infow("hidden")
	log.Warnw("shown")
	_ = log.Sync()

	raw, err := os.ReadFile(FileName(dir, time.Now()))
	require.NoError(t, err)
	assert.NotContains(t, string(raw), "hidden")
	assert.Contains(t, string(raw), "shown")
}

func TestNew_EmptyDir(t *testing.T) {
	_, err := New(Options{})
	assert.Error(t, err)
}

func TestFileName(t *testing.T) {
	day := time.Date(2026, 10, 19, 12, 0, 0, 0, time.UTC)
	assert.Equal(t, filepath.Join("logs", "dbconf-2026-10-19.log"), FileName("logs", day))
}

func TestBootstrap(t *testing.T) {
	log := Bootstrap()
	t.Cleanup(func() { zap.ReplaceGlobals(zap.NewNop()) })

	require.NotNil(t, log)
	assert.True(t, zap.L().Core().Enabled(zap.InfoLevel), "global logger should be live after Bootstrap")
	assert.False(t, zap.L().Core().Enabled(zap.DebugLevel))
}
