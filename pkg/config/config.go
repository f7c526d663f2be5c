package config

import (
	"fmt"
	"math"
	"time"
)

// Slippage model selectors.
const (
	SlippageFixed        = "fixed"
	SlippageProportional = "proportional"
)

// Config holds every parameter of a single simulation run. A run never
// mutates its configuration; the optimizer clones it per candidate.
type Config struct {
	// Market context
	Symbol   string `json:"symbol"`
	Interval string `json:"interval"`

	// Grid parameters
	GridSize     int     `json:"grid_size"`     // number of spacing steps in the ladder
	GridSpacing  float64 `json:"grid_spacing"`  // fractional spacing between adjacent levels
	PositionSize float64 `json:"position_size"` // base order size in base currency
	MaxPositions int     `json:"max_positions"` // maximum concurrent open levels

	// Risk parameters
	StopLoss   float64 `json:"stop_loss"`   // fractional loss forcing an exit
	TakeProfit float64 `json:"take_profit"` // fractional gain forcing an exit

	// Indicator parameters
	RSIPeriod         int     `json:"rsi_period"`
	RSIOversold       float64 `json:"rsi_oversold"`
	RSIOverbought     float64 `json:"rsi_overbought"`
	MACDFastPeriod    int     `json:"macd_fast_period"`
	MACDSlowPeriod    int     `json:"macd_slow_period"`
	MACDSignalPeriod  int     `json:"macd_signal_period"`
	BollingerPeriod   int     `json:"bollinger_period"`
	BollingerStdDev   float64 `json:"bollinger_std_dev"`
	RangeFilterPeriod int     `json:"range_filter_period"`
	RangeFilterMult   float64 `json:"range_filter_mult"`
	ShortTrendBars    int     `json:"short_trend_bars"`
	MediumTrendBars   int     `json:"medium_trend_bars"`

	// Entry/exit timing rules
	Cooldown    time.Duration `json:"cooldown"`     // minimum gap between any two trades
	MinHoldTime time.Duration `json:"min_hold_time"` // minimum holding time before a technical exit

	// Level track-record gate
	LevelSuccessFloor float64 `json:"level_success_floor"` // skip levels whose win ratio falls below this
	MinProfit         float64 `json:"min_profit"`          // minimum profit floor, quote currency

	// Execution cost model
	MakerFeeRate     float64 `json:"maker_fee_rate"`
	TakerFeeRate     float64 `json:"taker_fee_rate"`
	FeeTokenDiscount bool    `json:"fee_token_discount"` // 25% fee rebate when paying fees in the exchange token
	SlippageModel    string  `json:"slippage_model"`     // "fixed" or "proportional"
	SlippageRate     float64 `json:"slippage_rate"`
	SlippageRefSize  float64 `json:"slippage_ref_size"` // reference order size for the proportional model

	// Capital
	InitialBalance float64 `json:"initial_balance"`
}

// Default returns a configuration with the conventional parameter set.
func Default() *Config {
	return &Config{
		Symbol:   "BTCUSDT",
		Interval: "60",

		GridSize:     10,
		GridSpacing:  0.01,
		PositionSize: 0.01,
		MaxPositions: 5,

		StopLoss:   0.02,
		TakeProfit: 0.015,

		RSIPeriod:         14,
		RSIOversold:       30,
		RSIOverbought:     70,
		MACDFastPeriod:    12,
		MACDSlowPeriod:    26,
		MACDSignalPeriod:  9,
		BollingerPeriod:   20,
		BollingerStdDev:   2.0,
		RangeFilterPeriod: 14,
		RangeFilterMult:   2.5,
		ShortTrendBars:    4,
		MediumTrendBars:   8,

		Cooldown:    5 * time.Minute,
		MinHoldTime: 30 * time.Minute,

		LevelSuccessFloor: 0.35,
		MinProfit:         0.5,

		MakerFeeRate:    0.0002,
		TakerFeeRate:    0.001,
		SlippageModel:   SlippageFixed,
		SlippageRate:    0.0005,
		SlippageRefSize: 1.0,

		InitialBalance: 10000,
	}
}

// Validate checks that every parameter is positive and finite where required.
// A run must not start with an invalid configuration.
func (c *Config) Validate() error {
	if c.GridSize <= 0 {
		return fmt.Errorf("grid_size must be positive, got: %d", c.GridSize)
	}
	if c.GridSize > 1000 {
		return fmt.Errorf("grid_size too large (max 1000), got: %d", c.GridSize)
	}
	if err := positiveFinite("grid_spacing", c.GridSpacing); err != nil {
		return err
	}
	if err := positiveFinite("position_size", c.PositionSize); err != nil {
		return err
	}
	if c.MaxPositions <= 0 {
		return fmt.Errorf("max_positions must be positive, got: %d", c.MaxPositions)
	}
	if err := positiveFinite("stop_loss", c.StopLoss); err != nil {
		return err
	}
	if err := positiveFinite("take_profit", c.TakeProfit); err != nil {
		return err
	}
	if c.RSIPeriod <= 1 {
		return fmt.Errorf("rsi_period must be greater than 1, got: %d", c.RSIPeriod)
	}
	if c.RSIOversold <= 0 || c.RSIOversold >= 100 {
		return fmt.Errorf("rsi_oversold must be within (0,100), got: %f", c.RSIOversold)
	}
	if c.RSIOverbought <= 0 || c.RSIOverbought >= 100 {
		return fmt.Errorf("rsi_overbought must be within (0,100), got: %f", c.RSIOverbought)
	}
	if c.RSIOversold >= c.RSIOverbought {
		return fmt.Errorf("rsi_oversold (%f) must be below rsi_overbought (%f)", c.RSIOversold, c.RSIOverbought)
	}
	if c.MACDFastPeriod <= 0 || c.MACDSlowPeriod <= 0 || c.MACDSignalPeriod <= 0 {
		return fmt.Errorf("macd periods must be positive, got: %d/%d/%d",
			c.MACDFastPeriod, c.MACDSlowPeriod, c.MACDSignalPeriod)
	}
	if c.MACDFastPeriod >= c.MACDSlowPeriod {
		return fmt.Errorf("macd fast period (%d) must be below slow period (%d)",
			c.MACDFastPeriod, c.MACDSlowPeriod)
	}
	if c.BollingerPeriod <= 1 {
		return fmt.Errorf("bollinger_period must be greater than 1, got: %d", c.BollingerPeriod)
	}
	if err := positiveFinite("bollinger_std_dev", c.BollingerStdDev); err != nil {
		return err
	}
	if c.RangeFilterPeriod <= 1 {
		return fmt.Errorf("range_filter_period must be greater than 1, got: %d", c.RangeFilterPeriod)
	}
	if err := positiveFinite("range_filter_mult", c.RangeFilterMult); err != nil {
		return err
	}
	if c.ShortTrendBars <= 0 || c.MediumTrendBars <= 0 {
		return fmt.Errorf("trend lookbacks must be positive, got: %d/%d", c.ShortTrendBars, c.MediumTrendBars)
	}
	if c.Cooldown < 0 || c.MinHoldTime < 0 {
		return fmt.Errorf("cooldown and min_hold_time must not be negative")
	}
	if c.LevelSuccessFloor < 0 || c.LevelSuccessFloor > 1 {
		return fmt.Errorf("level_success_floor must be within [0,1], got: %f", c.LevelSuccessFloor)
	}
	if c.MakerFeeRate < 0 || c.TakerFeeRate < 0 {
		return fmt.Errorf("fee rates must not be negative, got: %f/%f", c.MakerFeeRate, c.TakerFeeRate)
	}
	switch c.SlippageModel {
	case SlippageFixed, SlippageProportional:
	default:
		return fmt.Errorf("slippage_model must be %q or %q, got: %q",
			SlippageFixed, SlippageProportional, c.SlippageModel)
	}
	if c.SlippageRate < 0 || !isFinite(c.SlippageRate) {
		return fmt.Errorf("slippage_rate must be non-negative and finite, got: %f", c.SlippageRate)
	}
	if c.SlippageModel == SlippageProportional {
		if err := positiveFinite("slippage_ref_size", c.SlippageRefSize); err != nil {
			return err
		}
	}
	if err := positiveFinite("initial_balance", c.InitialBalance); err != nil {
		return err
	}
	return nil
}

// Clone returns an independent copy. Config has no reference fields, so a
// value copy is a deep copy; the method exists to make the optimizer's
// per-candidate isolation explicit.
func (c *Config) Clone() *Config {
	clone := *c
	return &clone
}

// WindowSize returns the number of candles the indicator engine needs before
// it can produce a snapshot.
func (c *Config) WindowSize() int {
	window := c.RSIPeriod + 1
	if n := c.MACDSlowPeriod + c.MACDSignalPeriod; n > window {
		window = n
	}
	if c.BollingerPeriod > window {
		window = c.BollingerPeriod
	}
	if n := 2*c.RangeFilterPeriod + 1; n > window {
		window = n
	}
	return window
}

func positiveFinite(name string, v float64) error {
	if v <= 0 || !isFinite(v) {
		return fmt.Errorf("%s must be positive and finite, got: %f", name, v)
	}
	return nil
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
