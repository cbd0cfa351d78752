package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	// Change to temp dir so no config.yaml is found
	dir := t.TempDir()
	origDir, _ := os.Getwd()
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { os.Chdir(origDir) })

	cfg, err := Load()
	require.NoError(t, err)

	assert.False(t, cfg.Browser.Headless)
	assert.Equal(t, "https://www.google.com/maps?hl=en&gl=us", cfg.Browser.BaseURL)
	assert.Equal(t, "https://www.google.com/maps/search/", cfg.Browser.SearchURL)
	assert.Equal(t, 2, cfg.Navigate.MaxLoadRetries)
	assert.Equal(t, 12, cfg.Navigate.LoadTimeoutSecs)
	assert.Equal(t, 8, cfg.Navigate.FeedTimeoutSecs)
	assert.Equal(t, 10, cfg.Navigate.DetailTimeoutSecs)
	assert.InDelta(t, 1.5, cfg.Pacing.MinSecs, 0.001)
	assert.InDelta(t, 3.0, cfg.Pacing.MaxSecs, 0.001)
	assert.Equal(t, 10, cfg.Batch.Size)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
	assert.Empty(t, cfg.Cache.Path)
	assert.Empty(t, cfg.Selectors.Path)
}

func TestLoadFromYAML(t *testing.T) {
	dir := t.TempDir()
	origDir, _ := os.Getwd()
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { os.Chdir(origDir) })

	yaml := `
browser:
  headless: true
navigate:
  max_load_retries: 4
  load_timeout_secs: 30
pacing:
  min_secs: 0.5
  max_secs: 1.0
batch:
  size: 25
cache:
  path: lookups.db
log:
  level: debug
  format: console
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(yaml), 0o644))

	cfg, err := Load()
	require.NoError(t, err)

	assert.True(t, cfg.Browser.Headless)
	assert.Equal(t, 4, cfg.Navigate.MaxLoadRetries)
	assert.Equal(t, 30, cfg.Navigate.LoadTimeoutSecs)
	assert.InDelta(t, 0.5, cfg.Pacing.MinSecs, 0.001)
	assert.Equal(t, 25, cfg.Batch.Size)
	assert.Equal(t, "lookups.db", cfg.Cache.Path)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "console", cfg.Log.Format)
}

func TestInitLoggerBadLevel(t *testing.T) {
	err := InitLogger(LogConfig{Level: "chatty", Format: "json"})
	require.Error(t, err)
}

func TestInitLoggerConsole(t *testing.T) {
	require.NoError(t, InitLogger(LogConfig{Level: "warn", Format: "console"}))
}
