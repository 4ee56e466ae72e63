package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonesrussell/goleads/internal/config"
)

func chdir(t *testing.T, dir string) {
	t.Helper()
	prev, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() {
		require.NoError(t, os.Chdir(prev))
	})
}

func writeConfig(t *testing.T, yaml string) {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(yaml), 0o600))
	chdir(t, dir)
}

func TestLoadDefaults(t *testing.T) {
	chdir(t, t.TempDir())

	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, config.DefaultServerAddress, cfg.Server.Address)
	assert.Equal(t, config.DefaultErrorThreshold, cfg.Scheduler.ErrorThreshold)
	assert.Equal(t, config.DefaultScrapeTimeout, cfg.Scheduler.ScrapeTimeout)
	assert.Equal(t, config.ModeSimulate, cfg.Scrape.Mode)
	assert.Equal(t, []string{"keyword"}, cfg.Detector.Backends)
	assert.Equal(t, config.DefaultMinMatches, cfg.Detector.MinMatches)
	assert.Equal(t, "goleads.db", cfg.Database.Path)
	assert.NotEmpty(t, cfg.Scrape.Platforms)
}

func TestLoadFromFile(t *testing.T) {
	writeConfig(t, `
server:
  address: ":9090"
scheduler:
  error_threshold: 3
  scrape_timeout: 10s
targets:
  - "swift 2015"
scrape:
  mode: simulate
  platforms:
    - name: marketplace
    - name: olx
`)

	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, ":9090", cfg.Server.Address)
	assert.Equal(t, 3, cfg.Scheduler.ErrorThreshold)
	assert.Equal(t, 10*time.Second, cfg.Scheduler.ScrapeTimeout)
	assert.Equal(t, []string{"swift 2015"}, cfg.Targets)
	assert.Equal(t, []string{"marketplace", "olx"}, cfg.PlatformNames())
}

func TestLoadRejectsUnknownMode(t *testing.T) {
	writeConfig(t, `
scrape:
  mode: dry-run
`)

	_, err := config.Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "scrape.mode")
}

func TestLoadRequiresSelectorsInLiveMode(t *testing.T) {
	writeConfig(t, `
scrape:
  mode: live
  platforms:
    - name: marketplace
      url: "https://example.com/search?q={target}"
`)

	_, err := config.Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "item_selector")
}

func TestEnvOverride(t *testing.T) {
	chdir(t, t.TempDir())
	t.Setenv("SERVER_ADDRESS", ":7070")
	t.Setenv("SCRAPE_MODE", "simulate")

	cfg, err := config.Load()
	require.NoError(t, err)
	assert.Equal(t, ":7070", cfg.Server.Address)
}
