package config

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault_IsValid(t *testing.T) {
	assert.NoError(t, Default().Validate())
}

func TestValidate_RejectsBadValues(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Config)
	}{
		{"zero grid size", func(c *Config) { c.GridSize = 0 }},
		{"huge grid size", func(c *Config) { c.GridSize = 1001 }},
		{"negative spacing", func(c *Config) { c.GridSpacing = -0.01 }},
		{"nan spacing", func(c *Config) { c.GridSpacing = math.NaN() }},
		{"zero position size", func(c *Config) { c.PositionSize = 0 }},
		{"zero max positions", func(c *Config) { c.MaxPositions = 0 }},
		{"zero stop loss", func(c *Config) { c.StopLoss = 0 }},
		{"inverted rsi thresholds", func(c *Config) { c.RSIOversold = 80; c.RSIOverbought = 70 }},
		{"oversold out of range", func(c *Config) { c.RSIOversold = 0 }},
		{"fast above slow macd", func(c *Config) { c.MACDFastPeriod = 30 }},
		{"short bollinger period", func(c *Config) { c.BollingerPeriod = 1 }},
		{"negative cooldown", func(c *Config) { c.Cooldown = -1 }},
		{"success floor above one", func(c *Config) { c.LevelSuccessFloor = 1.5 }},
		{"negative fee", func(c *Config) { c.TakerFeeRate = -0.001 }},
		{"unknown slippage model", func(c *Config) { c.SlippageModel = "quadratic" }},
		{"negative slippage rate", func(c *Config) { c.SlippageRate = -0.01 }},
		{"zero balance", func(c *Config) { c.InitialBalance = 0 }},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := Default()
			tc.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestValidate_ProportionalNeedsRefSize(t *testing.T) {
	cfg := Default()
	cfg.SlippageModel = SlippageProportional
	cfg.SlippageRefSize = 0
	assert.Error(t, cfg.Validate())

	cfg.SlippageRefSize = 1
	assert.NoError(t, cfg.Validate())
}

func TestClone_IsIndependent(t *testing.T) {
	base := Default()
	clone := base.Clone()

	require.NotSame(t, base, clone)
	clone.GridSize = 42
	clone.RSIOversold = 5

	assert.NotEqual(t, 42, base.GridSize)
	assert.NotEqual(t, 5.0, base.RSIOversold)
}

func TestWindowSize(t *testing.T) {
	cfg := Default()

	// 12/26/9 MACD dominates the default window.
	assert.Equal(t, 35, cfg.WindowSize())

	cfg.BollingerPeriod = 50
	assert.Equal(t, 50, cfg.WindowSize())

	cfg.RangeFilterPeriod = 30
	assert.Equal(t, 61, cfg.WindowSize())
}
