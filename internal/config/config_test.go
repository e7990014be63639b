package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "sqlite", cfg.Store.Driver)
	assert.Equal(t, "supplier.db", cfg.Store.DatabaseURL)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
	assert.Equal(t, int64(2048), cfg.Anthropic.MaxTokens)
	assert.Equal(t, 10, cfg.Ingest.SampleSize)
	assert.InDelta(t, 0.8, cfg.Ingest.DateParseSuccessRatio, 1e-9)

	assert.InDelta(t, 8.0, cfg.Scoring.DelayWeight, 1e-9)
	assert.InDelta(t, 800.0, cfg.Scoring.DefectWeight, 1e-9)
	assert.InDelta(t, 55.0, cfg.Scoring.HighThreshold, 1e-9)
	assert.Equal(t, 60, cfg.Scoring.InactiveDays)

	assert.Equal(t, 3, cfg.Forecast.Window)
	assert.InDelta(t, 0.3, cfg.Forecast.Alpha, 1e-9)
	assert.InDelta(t, 0.01, cfg.Forecast.DisagreementVariance, 1e-9)
}

func TestLoadEnvOverride(t *testing.T) {
	t.Setenv("SUPPLIER_STORE_DRIVER", "postgres")
	t.Setenv("SUPPLIER_LOG_FORMAT", "console")
	t.Setenv("SUPPLIER_ANTHROPIC_KEY", "sk-test")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "postgres", cfg.Store.Driver)
	assert.Equal(t, "console", cfg.Log.Format)
	assert.Equal(t, "sk-test", cfg.Anthropic.Key)
}

func TestInitLogger(t *testing.T) {
	require.NoError(t, InitLogger(LogConfig{Level: "debug", Format: "console"}))
	require.NoError(t, InitLogger(LogConfig{Level: "warn", Format: "json"}))

	err := InitLogger(LogConfig{Level: "chatty", Format: "json"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parse log level")
}
