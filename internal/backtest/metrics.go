package backtest

import (
	"math"

	"github.com/altommo/crypto-grid-trader/internal/strategy"
)

// Annualization constant for the Sharpe-like ratio. 252 trading days is a
// convention carried over from equity markets.
const annualizationFactor = 252

// Results reduces one run's trade ledger into return and risk metrics.
// Every division with a possibly-zero denominator resolves to a documented
// sentinel: 0 everywhere, +Inf only for ProfitFactor.
type Results struct {
	StartBalance float64
	EndBalance   float64
	PeakBalance  float64

	TotalReturn     float64
	WinRate         float64 // fraction of closing trades with positive pnl
	CurrentDrawdown float64
	MaxDrawdown     float64
	SharpeRatio     float64
	ProfitFactor    float64
	TradesPerDay    float64

	TotalTrades   int
	WinningTrades int
	LosingTrades  int

	Trades []Trade
}

// NewResults computes all metrics from a finished run. An empty ledger
// produces the neutral all-zero result.
func NewResults(startBalance, endBalance, peakBalance, maxDrawdown float64, trades []Trade, dataDays int) *Results {
	r := &Results{
		StartBalance: startBalance,
		EndBalance:   endBalance,
		PeakBalance:  peakBalance,
		MaxDrawdown:  maxDrawdown,
		TotalTrades:  len(trades),
		Trades:       trades,
	}

	if startBalance > 0 {
		r.TotalReturn = (endBalance - startBalance) / startBalance
	}
	if peakBalance > 0 {
		r.CurrentDrawdown = (peakBalance - endBalance) / peakBalance
	}

	if len(trades) == 0 {
		return r
	}

	r.WinRate = calculateWinRate(trades)
	r.SharpeRatio = calculateSharpe(trades)
	r.ProfitFactor = calculateProfitFactor(trades)

	wins, losses := 0, 0
	for _, trade := range trades {
		if trade.PnL > 0 {
			wins++
		} else if trade.PnL < 0 {
			losses++
		}
	}
	r.WinningTrades = wins
	r.LosingTrades = losses

	if dataDays > 0 {
		r.TradesPerDay = float64(len(trades)) / float64(dataDays)
	}

	return r
}

// calculateWinRate counts wins over closing (SELL) trades only: a BUY record
// carries nothing but its fee cost, so including it would mark every
// round-trip as half lost.
func calculateWinRate(trades []Trade) float64 {
	wins, closes := 0, 0
	for _, trade := range trades {
		if trade.Action != strategy.ActionSell {
			continue
		}
		closes++
		if trade.PnL > 0 {
			wins++
		}
	}
	if closes == 0 {
		return 0
	}
	return float64(wins) / float64(closes)
}

// calculateSharpe is the Sharpe-like ratio over per-trade pnl, annualized
// with sqrt(252). Zero variance resolves to 0.
func calculateSharpe(trades []Trade) float64 {
	if len(trades) == 0 {
		return 0
	}

	mean := 0.0
	for _, trade := range trades {
		mean += trade.PnL
	}
	mean /= float64(len(trades))

	variance := 0.0
	for _, trade := range trades {
		diff := trade.PnL - mean
		variance += diff * diff
	}
	variance /= float64(len(trades))
	stdDev := math.Sqrt(variance)

	if stdDev == 0 || stdDev < 1e-12 {
		return 0
	}
	return (mean / stdDev) * math.Sqrt(annualizationFactor)
}

// calculateProfitFactor is gross profit over gross loss, +Inf when the
// ledger holds no losing trades.
func calculateProfitFactor(trades []Trade) float64 {
	totalProfit, totalLoss := 0.0, 0.0
	for _, trade := range trades {
		if trade.PnL > 0 {
			totalProfit += trade.PnL
		} else {
			totalLoss += math.Abs(trade.PnL)
		}
	}
	if totalLoss == 0 {
		return math.Inf(1)
	}
	return totalProfit / totalLoss
}
