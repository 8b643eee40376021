package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func chtemp(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	origDir, _ := os.Getwd()
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { os.Chdir(origDir) })
	return dir
}

func TestLoadDefaults(t *testing.T) {
	chtemp(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "https://maps.googleapis.com/maps/api/place", cfg.Google.BaseURL)
	assert.InDelta(t, 10, cfg.Google.RatePerSec, 0.001)
	assert.Empty(t, cfg.Google.Language)
	assert.Equal(t, 3, cfg.Crawl.MaxPages)
	assert.Equal(t, 4, cfg.Crawl.DetailConcurrency)
	assert.Equal(t, 2, cfg.Crawl.TokenDelaySecs)
	assert.Equal(t, "crawl_progress.json", cfg.Crawl.CheckpointPath)
	assert.Equal(t, "survey_dataset.csv", cfg.Crawl.OutputPath)
	assert.Equal(t, "sqlite", cfg.Store.Driver)
	assert.InDelta(t, 0.032, cfg.Pricing.NearbySearch, 0.0001)
	assert.InDelta(t, 0.017, cfg.Pricing.PlaceDetails, 0.0001)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
}

func TestLoadFromYAML(t *testing.T) {
	dir := chtemp(t)

	yaml := `
google:
  key: test-key
  language: id
crawl:
  max_pages: 2
store:
  driver: postgres
log:
  level: debug
  format: console
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(yaml), 0644))

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "test-key", cfg.Google.Key)
	assert.Equal(t, "id", cfg.Google.Language)
	assert.Equal(t, 2, cfg.Crawl.MaxPages)
	assert.Equal(t, "postgres", cfg.Store.Driver)
	assert.Equal(t, "debug", cfg.Log.Level)
	// Defaults still apply for unset values
	assert.Equal(t, 2, cfg.Crawl.TokenDelaySecs)
	assert.Equal(t, 8080, cfg.Server.Port)
}

func TestLoadEnvOverridesFile(t *testing.T) {
	dir := chtemp(t)

	yaml := `
store:
  driver: sqlite
log:
  level: debug
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(yaml), 0644))

	t.Setenv("SURVEY_STORE_DRIVER", "postgres")
	t.Setenv("SURVEY_LOG_LEVEL", "warn")

	cfg, err := Load()
	require.NoError(t, err)

	// Env overrides file
	assert.Equal(t, "postgres", cfg.Store.Driver)
	assert.Equal(t, "warn", cfg.Log.Level)
}

func TestLoadEnvOverridesDefaults(t *testing.T) {
	chtemp(t)

	t.Setenv("SURVEY_GOOGLE_KEY", "env-key")
	t.Setenv("SURVEY_SERVER_PORT", "3000")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "env-key", cfg.Google.Key)
	assert.Equal(t, 3000, cfg.Server.Port)
}

func TestValidate(t *testing.T) {
	valid := Config{
		Google: GoogleConfig{Key: "k", RatePerSec: 10},
		Crawl:  CrawlConfig{MaxPages: 3},
		Store:  StoreConfig{Driver: "sqlite"},
	}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"ok", func(*Config) {}, ""},
		{"missing key", func(c *Config) { c.Google.Key = "" }, "google.key"},
		{"zero rate", func(c *Config) { c.Google.RatePerSec = 0 }, "rate_per_sec"},
		{"zero pages", func(c *Config) { c.Crawl.MaxPages = 0 }, "max_pages"},
		{"bad driver", func(c *Config) { c.Store.Driver = "oracle" }, "store.driver"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
			} else {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
			}
		})
	}
}

func TestInitLoggerConsole(t *testing.T) {
	err := InitLogger(LogConfig{Level: "debug", Format: "console"})
	require.NoError(t, err)
	assert.NotNil(t, zap.L())
}

func TestInitLoggerBadLevel(t *testing.T) {
	err := InitLogger(LogConfig{Level: "shouty", Format: "json"})
	require.Error(t, err)
}
