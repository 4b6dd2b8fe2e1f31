package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func chdirTemp(t *testing.T) {
	t.Helper()
	dir := t.TempDir()
	origDir, _ := os.Getwd()
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { os.Chdir(origDir) })
}

func TestLoadDefaults(t *testing.T) {
	// Change to temp dir so no config.yaml is found
	chdirTemp(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "sqlite", cfg.Store.Driver)
	assert.Equal(t, "brandscope.db", cfg.Store.SQLitePath)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, 3, cfg.Batch.MaxConcurrent)
	assert.Equal(t, "claude-haiku-4-5-20251001", cfg.Anthropic.Model)
	assert.Equal(t, "claude-sonnet-4-5-20250929", cfg.Anthropic.NarrativeModel)
	assert.Equal(t, int64(4096), cfg.Anthropic.MaxTokens)
	assert.Equal(t, "https://google.serper.dev", cfg.Serper.BaseURL)
	assert.InDelta(t, 5.0, cfg.Serper.RateLimit, 0.001)
	assert.Equal(t, 20, cfg.Intel.SearchTimeoutSecs)
	assert.Equal(t, 45, cfg.Intel.ClassifyTimeoutSecs)
	assert.Equal(t, 45, cfg.Intel.WhitespaceTimeoutSecs)
	assert.Equal(t, 5, cfg.Intel.SearchResults)
	assert.Equal(t, 30, cfg.Intel.MaxClassify)
	assert.Equal(t, 20, cfg.Intel.MaxExposed)
	assert.Equal(t, 6, cfg.Intel.MaxRegionConcurrency)
	assert.Equal(t, 512, cfg.Intel.CacheSize)
	assert.InDelta(t, 0.001, cfg.Pricing.Serper.PerQuery, 1e-9)
}

func TestLoadDefaultPricingFallback(t *testing.T) {
	chdirTemp(t)

	cfg, err := Load()
	require.NoError(t, err)

	// No pricing table configured means the built-in rates apply.
	require.NotEmpty(t, cfg.Pricing.Anthropic)
	rate, ok := cfg.Pricing.Anthropic["claude-haiku-4-5-20251001"]
	require.True(t, ok)
	assert.InDelta(t, 0.80, rate.Input, 0.001)
	assert.InDelta(t, 4.00, rate.Output, 0.001)
}

func TestLoadFromYAML(t *testing.T) {
	chdirTemp(t)

	yaml := `
store:
  driver: postgres
  database_url: postgres://localhost/brandscope
log:
  level: debug
  format: console
server:
  port: 9090
intel:
  max_classify: 10
  search_timeout_secs: 5
`
	dir, _ := os.Getwd()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(yaml), 0644))

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "postgres", cfg.Store.Driver)
	assert.Equal(t, "postgres://localhost/brandscope", cfg.Store.DatabaseURL)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "console", cfg.Log.Format)
	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, 10, cfg.Intel.MaxClassify)
	assert.Equal(t, 5, cfg.Intel.SearchTimeoutSecs)
	// Defaults still apply for unset values
	assert.Equal(t, 20, cfg.Intel.MaxExposed)
	assert.Equal(t, 3, cfg.Batch.MaxConcurrent)
}

func TestLoadEnvOverridesFile(t *testing.T) {
	chdirTemp(t)

	yaml := `
server:
  port: 9090
`
	dir, _ := os.Getwd()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(yaml), 0644))

	t.Setenv("BRANDSCOPE_SERVER_PORT", "7070")
	t.Setenv("BRANDSCOPE_ANTHROPIC_KEY", "sk-test")
	t.Setenv("BRANDSCOPE_INTEL_MAX_REGION_CONCURRENCY", "2")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 7070, cfg.Server.Port)
	assert.Equal(t, "sk-test", cfg.Anthropic.Key)
	assert.Equal(t, 2, cfg.Intel.MaxRegionConcurrency)
}

func TestLoadMalformedYAML(t *testing.T) {
	chdirTemp(t)

	dir, _ := os.Getwd()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte("store: [not a map"), 0644))

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "config: read file")
}

func TestIntelTimeoutHelpers(t *testing.T) {
	t.Parallel()

	c := IntelConfig{SearchTimeoutSecs: 20, ClassifyTimeoutSecs: 45, WhitespaceTimeoutSecs: 30}
	assert.Equal(t, 20*time.Second, c.SearchTimeout())
	assert.Equal(t, 45*time.Second, c.ClassifyTimeout())
	assert.Equal(t, 30*time.Second, c.WhitespaceTimeout())
}

func TestInitLogger(t *testing.T) {
	require.NoError(t, InitLogger(LogConfig{Level: "debug", Format: "json"}))
	assert.True(t, zap.L().Core().Enabled(zap.DebugLevel))

	require.NoError(t, InitLogger(LogConfig{Level: "warn", Format: "console"}))
	assert.False(t, zap.L().Core().Enabled(zap.InfoLevel))

	assert.Error(t, InitLogger(LogConfig{Level: "loud", Format: "json"}))
}
