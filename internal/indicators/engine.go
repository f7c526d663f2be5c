package indicators

import (
	"github.com/altommo/crypto-grid-trader/pkg/config"
	"github.com/altommo/crypto-grid-trader/pkg/types"
)

// Snapshot is the structured indicator reading for the last point of a
// rolling window.
type Snapshot struct {
	Price       float64
	RSI         float64
	MACD        MACDValue
	Bollinger   BollingerValue
	ShortTrend  float64 // fractional close change over the short lookback
	MediumTrend float64 // fractional close change over the medium lookback
	Valid       bool    // false when the window was too short for a full read
}

// Engine computes all configured indicators over a rolling close window.
// It holds no recurrence state; the range filter state lives with the
// strategy and is threaded through RangeFilter.Update explicitly.
type Engine struct {
	rsi       *RSI
	macd      *MACD
	bollinger *BollingerBands

	shortBars  int
	mediumBars int
	window     int
}

// NewEngine creates an indicator engine from the run configuration.
func NewEngine(cfg *config.Config) *Engine {
	return &Engine{
		rsi:        NewRSI(cfg.RSIPeriod),
		macd:       NewMACD(cfg.MACDFastPeriod, cfg.MACDSlowPeriod, cfg.MACDSignalPeriod),
		bollinger:  NewBollingerBands(cfg.BollingerPeriod, cfg.BollingerStdDev),
		shortBars:  cfg.ShortTrendBars,
		mediumBars: cfg.MediumTrendBars,
		window:     cfg.WindowSize(),
	}
}

// RequiredPeriods returns the window length the engine needs for a full
// snapshot.
func (e *Engine) RequiredPeriods() int {
	return e.window
}

// Snapshot computes all indicators for the last candle of the window.
// A window shorter than RequiredPeriods yields a zero snapshot with
// Valid=false instead of an error; callers in the simulation loop guarantee
// sufficient data, so an invalid snapshot simply produces no signals.
func (e *Engine) Snapshot(window []types.OHLCV) Snapshot {
	if len(window) < e.window {
		return Snapshot{}
	}

	closes := types.Closes(window)
	snap := Snapshot{
		Price: closes[len(closes)-1],
		Valid: true,
	}

	rsi, err := e.rsi.Calculate(closes)
	if err != nil {
		return Snapshot{}
	}
	snap.RSI = rsi

	macd, err := e.macd.Calculate(closes)
	if err != nil {
		return Snapshot{}
	}
	snap.MACD = macd

	boll, err := e.bollinger.Calculate(closes)
	if err != nil {
		return Snapshot{}
	}
	snap.Bollinger = boll

	snap.ShortTrend = pctChange(closes, e.shortBars)
	snap.MediumTrend = pctChange(closes, e.mediumBars)

	return snap
}

// pctChange returns the fractional close change over the given lookback.
func pctChange(closes []float64, bars int) float64 {
	if bars <= 0 || len(closes) <= bars {
		return 0
	}
	base := closes[len(closes)-1-bars]
	if base == 0 {
		return 0
	}
	return (closes[len(closes)-1] - base) / base
}
