package domain

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultStrategyConfig_IsValid(t *testing.T) {
	cfg := DefaultStrategyConfig()
	require.NoError(t, cfg.Validate())
	assert.InDelta(t, 15.8745, cfg.AnnualizationFactor, 1e-4)
	assert.True(t, cfg.Costs.ChargeForcedClose)
}

func TestStrategyConfig_Validate(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*StrategyConfig)
		field  string
	}{
		{"tiny fit window", func(c *StrategyConfig) { c.Model.MinFitWindow = 3 }, "min_fit_window"},
		{"negative fit window", func(c *StrategyConfig) { c.Model.FitWindow = -1 }, "fit_window"},
		{"fit window below minimum", func(c *StrategyConfig) { c.Model.FitWindow = 30 }, "fit_window"},
		{"unknown z mode", func(c *StrategyConfig) { c.Score.Mode = "ewma" }, "z_mode"},
		{"rolling window too short", func(c *StrategyConfig) {
			c.Score.Mode = ZModeRolling
			c.Score.RollingWindow = 1
		}, "rolling_window"},
		{"exit equals enter", func(c *StrategyConfig) { c.Signal.ExitThreshold = c.Signal.EnterThreshold }, "exit_threshold"},
		{"enter not positive", func(c *StrategyConfig) { c.Signal.EnterThreshold = 0 }, "enter_threshold"},
		{"enter NaN", func(c *StrategyConfig) { c.Signal.EnterThreshold = math.NaN() }, "enter_threshold"},
		{"negative entry cost", func(c *StrategyConfig) { c.Costs.EntryCost = -0.01 }, "entry_cost"},
		{"negative exit cost", func(c *StrategyConfig) { c.Costs.ExitCost = -1 }, "exit_cost"},
		{"zero annualization", func(c *StrategyConfig) { c.AnnualizationFactor = 0 }, "annualization_factor"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := DefaultStrategyConfig()
			tc.mutate(&cfg)

			err := cfg.Validate()
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrConfiguration))

			var ce *ConfigurationError
			require.ErrorAs(t, err, &ce)
			assert.Equal(t, tc.field, ce.Field)
		})
	}
}
