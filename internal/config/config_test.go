package config

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("OPTIMIZER_DATA_DIR", t.TempDir())

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Port)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.False(t, cfg.DevMode)
	assert.Equal(t, []string{"AAPL", "MSFT", "GOOGL", "AMZN", "JPM"}, cfg.Symbols)
	assert.InDelta(t, DefaultRiskFreeRate, cfg.RiskFreeRate, 1e-12)
	assert.Equal(t, DefaultFrontierSamples, cfg.FrontierSamples)
	assert.Empty(t, cfg.RefreshSchedule)
}

func TestLoadOverrides(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("OPTIMIZER_DATA_DIR", dir)
	t.Setenv("PORT", "9090")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("DEV_MODE", "true")
	t.Setenv("PORTFOLIO_SYMBOLS", " aapl, msft ,googl ")
	t.Setenv("RISK_FREE_RATE", "0.035")
	t.Setenv("FRONTIER_SAMPLES", "1000")
	t.Setenv("REFRESH_SCHEDULE", "0 18 * * 1-5")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Port)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.True(t, cfg.DevMode)
	assert.Equal(t, []string{"AAPL", "MSFT", "GOOGL"}, cfg.Symbols)
	assert.InDelta(t, 0.035, cfg.RiskFreeRate, 1e-12)
	assert.Equal(t, 1000, cfg.FrontierSamples)
	assert.Equal(t, "0 18 * * 1-5", cfg.RefreshSchedule)
}

func TestLoadInvalidValues(t *testing.T) {
	t.Setenv("OPTIMIZER_DATA_DIR", t.TempDir())

	t.Run("empty symbols", func(t *testing.T) {
		t.Setenv("PORTFOLIO_SYMBOLS", " , ,")
		_, err := Load()
		assert.Error(t, err)
	})

	t.Run("non-positive samples", func(t *testing.T) {
		t.Setenv("FRONTIER_SAMPLES", "-1")
		_, err := Load()
		assert.Error(t, err)
	})

	t.Run("bad port", func(t *testing.T) {
		t.Setenv("PORT", "70000")
		_, err := Load()
		assert.Error(t, err)
	})
}

func TestDatabasePath(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("OPTIMIZER_DATA_DIR", dir)

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(cfg.DataDir, "history.db"), cfg.DatabasePath())
}
