package backtest

import (
	"fmt"
	"math"
	"time"

	"github.com/altommo/crypto-grid-trader/internal/grid"
	"github.com/altommo/crypto-grid-trader/internal/indicators"
	"github.com/altommo/crypto-grid-trader/internal/strategy"
	"github.com/altommo/crypto-grid-trader/pkg/config"
	"github.com/altommo/crypto-grid-trader/pkg/types"
)

// Trade is one immutable ledger record. The ledger is append-only and is the
// sole source of truth for performance metrics.
type Trade struct {
	Timestamp     time.Time
	Action        strategy.Action
	Price         float64 // executed price, post-slippage
	Size          float64
	Fees          float64
	PnL           float64 // realized pnl of this trade
	CumulativePnL float64 // running pnl at time of execution
}

// Engine simulates order execution for one backtest run. Holdings are booked
// in a map keyed by the signal's grid level price. Grid level state stays a
// separate entity on the strategy side; the level price carried on each
// signal is the mapping between the two.
type Engine struct {
	cfg    *config.Config
	levels *grid.Manager
	strat  *strategy.GridStrategy
	engine *indicators.Engine

	balance       float64
	peakBalance   float64
	positions     map[float64]float64
	trades        []Trade
	cumulativePnL float64
	maxDrawdown   float64
}

// NewEngine builds a simulator for one run. The configuration is validated
// here; an invalid configuration means the run never starts.
func NewEngine(cfg *config.Config) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	levels, err := grid.NewManager(cfg)
	if err != nil {
		return nil, err
	}

	return &Engine{
		cfg:         cfg,
		levels:      levels,
		strat:       strategy.NewGridStrategy(cfg, levels),
		engine:      indicators.NewEngine(cfg),
		balance:     cfg.InitialBalance,
		peakBalance: cfg.InitialBalance,
		positions:   make(map[float64]float64),
	}, nil
}

// Balance returns the current simulated balance.
func (e *Engine) Balance() float64 {
	return e.balance
}

// PeakBalance returns the balance high-water mark.
func (e *Engine) PeakBalance() float64 {
	return e.peakBalance
}

// Positions returns the current holdings keyed by signal level price.
func (e *Engine) Positions() map[float64]float64 {
	return e.positions
}

// Trades returns the ledger.
func (e *Engine) Trades() []Trade {
	return e.trades
}

// Strategy exposes the signal generator for tests and reporting.
func (e *Engine) Strategy() *strategy.GridStrategy {
	return e.strat
}

// Levels exposes the grid level manager for tests and reporting.
func (e *Engine) Levels() *grid.Manager {
	return e.levels
}

// ExecuteTrade applies slippage and fees to a signal and mutates the
// simulated ledger. Rejected actions (insufficient balance on BUY, no open
// position on SELL) are silently dropped; the ledger stays unchanged and the
// second return value is false.
func (e *Engine) ExecuteTrade(sig strategy.Signal, ts time.Time) (Trade, bool) {
	switch sig.Action {
	case strategy.ActionBuy:
		return e.executeBuy(sig, ts)
	case strategy.ActionSell:
		return e.executeSell(sig, ts)
	default:
		return Trade{}, false
	}
}

func (e *Engine) executeBuy(sig strategy.Signal, ts time.Time) (Trade, bool) {
	if sig.Size <= 0 {
		return Trade{}, false
	}

	execPrice := e.applySlippage(sig)
	fees := e.fees(execPrice, sig.Size)
	cost := execPrice * sig.Size

	// A BUY that would push the balance negative is rejected, not clipped.
	if cost+fees > e.balance {
		return Trade{}, false
	}

	e.balance -= cost + fees
	e.positions[sig.LevelPrice] += sig.Size

	trade := e.appendTrade(Trade{
		Timestamp: ts,
		Action:    strategy.ActionBuy,
		Price:     execPrice,
		Size:      sig.Size,
		Fees:      fees,
		PnL:       -fees,
	})

	// Level state only tracks one entry per level; a hand-built signal for
	// an already-open level keeps the ledger booking and skips the level.
	_ = e.strat.UpdatePosition(sig.LevelPrice, sig.Size, execPrice, ts, 0)

	e.trackDrawdown()
	return trade, true
}

func (e *Engine) executeSell(sig strategy.Signal, ts time.Time) (Trade, bool) {
	held, ok := e.positions[sig.LevelPrice]
	if !ok || held <= 0 {
		return Trade{}, false
	}

	size := math.Min(sig.Size, held)
	if size <= 0 {
		return Trade{}, false
	}

	execPrice := e.applySlippage(sig)
	fees := e.fees(execPrice, size)
	revenue := execPrice * size
	net := revenue - fees

	e.balance += net
	if e.balance > e.peakBalance {
		e.peakBalance = e.balance
	}

	remaining := held - size
	if remaining <= 1e-12 {
		delete(e.positions, sig.LevelPrice)
	} else {
		e.positions[sig.LevelPrice] = remaining
	}

	// The cost basis uses the unslipped level price the position was booked
	// under, so slippage shows up in the pnl rather than the mark.
	pnl := net - sig.LevelPrice*size

	trade := e.appendTrade(Trade{
		Timestamp: ts,
		Action:    strategy.ActionSell,
		Price:     execPrice,
		Size:      size,
		Fees:      fees,
		PnL:       pnl,
	})

	_ = e.strat.UpdatePosition(sig.LevelPrice, 0, execPrice, ts, pnl)

	e.trackDrawdown()
	return trade, true
}

// applySlippage computes the execution price. Both models move the price
// against the trader: up for buys, down for sells.
func (e *Engine) applySlippage(sig strategy.Signal) float64 {
	var adjustment float64
	switch e.cfg.SlippageModel {
	case config.SlippageProportional:
		adjustment = e.cfg.SlippageRate * (sig.Size / e.cfg.SlippageRefSize)
		if adjustment > 0.01 {
			adjustment = 0.01
		}
	default:
		adjustment = e.cfg.SlippageRate
	}

	if sig.Action == strategy.ActionBuy {
		return sig.Price * (1 + adjustment)
	}
	return sig.Price * (1 - adjustment)
}

// fees computes the taker fee for an execution, applying the fee-token
// discount when configured.
func (e *Engine) fees(execPrice, size float64) float64 {
	rate := e.cfg.TakerFeeRate
	if e.cfg.FeeTokenDiscount {
		rate *= 0.75
	}
	return execPrice * size * rate
}

func (e *Engine) appendTrade(trade Trade) Trade {
	e.cumulativePnL += trade.PnL
	trade.CumulativePnL = e.cumulativePnL
	e.trades = append(e.trades, trade)
	return trade
}

// trackDrawdown records the drawdown after every executed trade so the
// maximum is observed mid-run, not only at the end.
func (e *Engine) trackDrawdown() {
	if e.peakBalance <= 0 {
		return
	}
	drawdown := (e.peakBalance - e.balance) / e.peakBalance
	if drawdown > e.maxDrawdown {
		e.maxDrawdown = drawdown
	}
}

// Run replays the historical series through the strategy and returns the
// reduced metrics. Fewer rows than the indicator window plus one produce a
// neutral result with zero trades, not an error.
func (e *Engine) Run(series []types.OHLCV) *Results {
	window := e.engine.RequiredPeriods()

	if len(series) < window+1 {
		return NewResults(e.cfg.InitialBalance, e.cfg.InitialBalance, e.cfg.InitialBalance, 0, nil, 0)
	}

	// The ladder is rebuilt once per run from the first available price;
	// levels are never incrementally adjusted afterwards.
	if err := e.levels.Initialize(series[0].Close); err != nil {
		return NewResults(e.cfg.InitialBalance, e.cfg.InitialBalance, e.cfg.InitialBalance, 0, nil, 0)
	}

	for i := window; i < len(series); i++ {
		candle := series[i]
		signals := e.strat.Update(candle.Timestamp, e.engine.Snapshot(series[i-window:i+1]))
		for _, sig := range signals {
			e.ExecuteTrade(sig, candle.Timestamp)
		}
	}

	days := distinctDays(series)
	return NewResults(e.cfg.InitialBalance, e.balance, e.peakBalance, e.maxDrawdown, e.trades, days)
}

// distinctDays counts the distinct UTC calendar days spanned by the series.
func distinctDays(series []types.OHLCV) int {
	seen := make(map[string]struct{})
	for _, candle := range series {
		seen[candle.Timestamp.UTC().Format("2006-01-02")] = struct{}{}
	}
	return len(seen)
}
