package config_test

import (
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/k9kanishk/gas-spread-arb/config"
	"github.com/k9kanishk/gas-spread-arb/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad_EmptyFileUsesDefaults(t *testing.T) {
	cfg, err := config.Load(writeConfig(t, ""))
	require.NoError(t, err)

	s := cfg.DomainStrategy()
	assert.Equal(t, domain.DefaultStrategyConfig(), s)
	require.NoError(t, s.Validate())

	assert.Equal(t, "data/raw", cfg.Data.RawDir)
	assert.Equal(t, "TTF=F", cfg.Data.Tickers.TTF)
	assert.Equal(t, domain.DefaultShippingCost, cfg.Spreads.ShippingCost)
	assert.Equal(t, "spreadarb.db", cfg.Storage.DSN)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "text", cfg.Log.Format)
}

func TestLoad_YAMLOverridesAndExplicitZeros(t *testing.T) {
	path := writeConfig(t, `
strategy:
  min_fit_window: 120
  fit_window: 250
  z_mode: rolling
  rolling_window: 30
  enter_threshold: 1.5
  exit_threshold: 0
  exit_on_zero_cross: true
  entry_cost: 0
  charge_forced_close: false
spreads:
  shipping_cost: 2.5
  names: [TTF_NBP]
runner:
  workers: 3
`)
	cfg, err := config.Load(path)
	require.NoError(t, err)

	s := cfg.DomainStrategy()
	assert.Equal(t, 120, s.Model.MinFitWindow)
	assert.Equal(t, 250, s.Model.FitWindow)
	assert.Equal(t, domain.ZModeRolling, s.Score.Mode)
	assert.Equal(t, 30, s.Score.RollingWindow)
	assert.Equal(t, 1.5, s.Signal.EnterThreshold)
	assert.Equal(t, 0.0, s.Signal.ExitThreshold, "explicit zero kept")
	assert.True(t, s.Signal.ExitOnZeroCross)
	assert.Equal(t, 0.0, s.Costs.EntryCost)
	assert.Equal(t, domain.DefaultExitCost, s.Costs.ExitCost, "missing key keeps default")
	assert.False(t, s.Costs.ChargeForcedClose)
	assert.InDelta(t, math.Sqrt(252), s.AnnualizationFactor, 1e-12)
	require.NoError(t, s.Validate())

	assert.Equal(t, 2.5, cfg.Spreads.ShippingCost)
	assert.Equal(t, []string{"TTF_NBP"}, cfg.Spreads.Names)
	assert.Equal(t, 3, cfg.Runner.Workers)
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("LOG_FORMAT", "json")
	t.Setenv("SPREADARB_DB_DSN", ":memory:")
	t.Setenv("SPREADARB_DATA_DIR", "/tmp/raw")

	cfg, err := config.Load(writeConfig(t, "log:\n  level: warn\n"))
	require.NoError(t, err)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
	assert.Equal(t, ":memory:", cfg.Storage.DSN)
	assert.Equal(t, "/tmp/raw", cfg.Data.RawDir)
}

func TestLoad_Errors(t *testing.T) {
	_, err := config.Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	_, err = config.Load(writeConfig(t, "strategy: [not, a, map]"))
	assert.Error(t, err)
}

func TestConfig_StartDateAndRetention(t *testing.T) {
	cfg, err := config.Load(writeConfig(t, "data:\n  start_date: \"2020-06-01\"\nstorage:\n  retention_days: 30\n"))
	require.NoError(t, err)

	start, err := cfg.StartDate()
	require.NoError(t, err)
	assert.Equal(t, "2020-06-01", start.Format(domain.DateLayout))
	assert.Equal(t, float64(30*24), cfg.Retention().Hours())

	cfg.Data.StartDate = "June 2020"
	_, err = cfg.StartDate()
	assert.Error(t, err)
}

func TestConfig_InvalidStrategySurfacesAsConfigurationError(t *testing.T) {
	cfg, err := config.Load(writeConfig(t, "strategy:\n  enter_threshold: 0.4\n  exit_threshold: 0.5\n"))
	require.NoError(t, err)

	err = cfg.DomainStrategy().Validate()
	var ce *domain.ConfigurationError
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, "exit_threshold", ce.Field)
}
