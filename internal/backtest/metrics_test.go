package backtest

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/altommo/crypto-grid-trader/internal/strategy"
)

func ledger(entries ...Trade) []Trade {
	ts := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	for i := range entries {
		if entries[i].Timestamp.IsZero() {
			entries[i].Timestamp = ts.Add(time.Duration(i) * time.Hour)
		}
	}
	return entries
}

func TestNewResults_EmptyLedger(t *testing.T) {
	results := NewResults(10000, 10000, 10000, 0, nil, 5)

	assert.Zero(t, results.TotalTrades)
	assert.Zero(t, results.TotalReturn)
	assert.Zero(t, results.WinRate)
	assert.Zero(t, results.SharpeRatio)
	assert.Zero(t, results.ProfitFactor)
	assert.Zero(t, results.TradesPerDay)
}

func TestNewResults_TotalReturnAndDrawdown(t *testing.T) {
	results := NewResults(10000, 11000, 12000, 0.15, nil, 1)

	assert.InDelta(t, 0.1, results.TotalReturn, 1e-9)
	assert.InDelta(t, (12000.0-11000.0)/12000.0, results.CurrentDrawdown, 1e-9)
	assert.InDelta(t, 0.15, results.MaxDrawdown, 1e-9)
}

func TestCalculateWinRate_CountsOnlyClosingTrades(t *testing.T) {
	trades := ledger(
		Trade{Action: strategy.ActionBuy, PnL: -0.1},
		Trade{Action: strategy.ActionSell, PnL: 0.899},
	)

	// The fee-only BUY record must not drag the win rate to 0.5.
	assert.Equal(t, 1.0, calculateWinRate(trades))
}

func TestCalculateWinRate_NoClosingTrades(t *testing.T) {
	trades := ledger(
		Trade{Action: strategy.ActionBuy, PnL: -0.1},
		Trade{Action: strategy.ActionBuy, PnL: -0.2},
	)

	assert.Zero(t, calculateWinRate(trades))
}

func TestCalculateProfitFactor(t *testing.T) {
	trades := ledger(
		Trade{Action: strategy.ActionSell, PnL: 3},
		Trade{Action: strategy.ActionSell, PnL: -1},
		Trade{Action: strategy.ActionSell, PnL: -0.5},
	)

	assert.InDelta(t, 2.0, calculateProfitFactor(trades), 1e-9)
}

func TestCalculateProfitFactor_NoLosses(t *testing.T) {
	trades := ledger(
		Trade{Action: strategy.ActionSell, PnL: 1},
		Trade{Action: strategy.ActionSell, PnL: 2},
	)

	assert.True(t, math.IsInf(calculateProfitFactor(trades), 1))
}

func TestCalculateSharpe_ZeroVariance(t *testing.T) {
	trades := ledger(
		Trade{Action: strategy.ActionSell, PnL: 1},
		Trade{Action: strategy.ActionSell, PnL: 1},
		Trade{Action: strategy.ActionSell, PnL: 1},
	)

	assert.Zero(t, calculateSharpe(trades))
}

func TestCalculateSharpe_Annualized(t *testing.T) {
	trades := ledger(
		Trade{Action: strategy.ActionSell, PnL: 1},
		Trade{Action: strategy.ActionSell, PnL: 3},
	)

	// mean 2, population stdev 1, annualized with sqrt(252)
	assert.InDelta(t, 2*math.Sqrt(252), calculateSharpe(trades), 1e-9)
}

func TestNewResults_TradesPerDay(t *testing.T) {
	trades := ledger(
		Trade{Action: strategy.ActionSell, PnL: 1},
		Trade{Action: strategy.ActionSell, PnL: 1},
		Trade{Action: strategy.ActionSell, PnL: 1},
		Trade{Action: strategy.ActionSell, PnL: 1},
	)

	results := NewResults(10000, 10004, 10004, 0, trades, 2)
	assert.InDelta(t, 2.0, results.TradesPerDay, 1e-9)
}

func TestScore_Weights(t *testing.T) {
	results := &Results{
		TotalReturn: 0.5,
		WinRate:     0.6,
		MaxDrawdown: 0.2,
		SharpeRatio: 2.0,
	}

	expected := 0.4*0.5 + 0.3*0.6 + 0.2*0.8 + 0.1*0.2
	assert.InDelta(t, expected, Score(results), 1e-9)
}
