package strategy

import (
	"fmt"
	"math"
	"time"

	"github.com/altommo/crypto-grid-trader/internal/grid"
	"github.com/altommo/crypto-grid-trader/internal/indicators"
	"github.com/altommo/crypto-grid-trader/pkg/config"
)

// GridStrategy generates BUY/SELL signals for a ladder of grid levels from
// price and indicator input. It enforces position-count, cooldown and
// min-hold-time rules; level state itself is owned by the grid manager.
type GridStrategy struct {
	cfg    *config.Config
	levels *grid.Manager
	filter *indicators.RangeFilter

	state State
}

// NewGridStrategy creates a strategy over the given level manager. The
// configuration must already be validated.
func NewGridStrategy(cfg *config.Config, levels *grid.Manager) *GridStrategy {
	return &GridStrategy{
		cfg:    cfg,
		levels: levels,
		filter: indicators.NewRangeFilter(cfg.RangeFilterPeriod, cfg.RangeFilterMult),
	}
}

// State returns a copy of the current strategy state.
func (s *GridStrategy) State() State {
	return s.state
}

// Update advances the strategy by one tick and returns the signals for it.
// Exits are evaluated before entries so closing capacity frees up before new
// positions are considered. All qualifying SELL signals are emitted; at most
// one BUY signal is emitted per tick (first qualifying level in ascending
// price order) to throttle capital deployment.
func (s *GridStrategy) Update(ts time.Time, snap indicators.Snapshot) []Signal {
	// An invalid snapshot must not touch state: a zero price would corrupt
	// the filter recurrence and the trend counters.
	if !snap.Valid {
		return nil
	}

	s.state.CurrentPrice = snap.Price
	s.state.Filter = s.filter.Update(s.state.Filter, snap.Price)

	var signals []Signal

	for _, level := range s.levels.Levels() {
		if s.shouldSell(level, ts, snap) {
			signals = append(signals, Signal{
				Action:     ActionSell,
				Price:      snap.Price,
				Size:       level.PositionSize,
				LevelPrice: level.Price,
				Timestamp:  ts,
			})
		}
	}

	for _, level := range s.levels.Levels() {
		if s.shouldBuy(level, ts, snap) {
			signals = append(signals, Signal{
				Action:     ActionBuy,
				Price:      level.Price,
				Size:       s.positionSize(level, snap),
				LevelPrice: level.Price,
				Timestamp:  ts,
			})
			break
		}
	}

	return signals
}

// shouldBuy is the entry gate for one level.
func (s *GridStrategy) shouldBuy(level *grid.Level, ts time.Time, snap indicators.Snapshot) bool {
	if level.Open() {
		return false
	}
	if s.state.TotalPositions >= s.cfg.MaxPositions {
		return false
	}

	// Skip levels with a poor track record.
	if level.TradesTaken >= 1 && level.SuccessRate() < s.cfg.LevelSuccessFloor {
		return false
	}

	// Price must be within one grid spacing of the level.
	if math.Abs(snap.Price-level.Price) > level.Price*s.cfg.GridSpacing {
		return false
	}

	// Global cooldown and per-level quiet time.
	if !s.state.LastTradeTime.IsZero() && ts.Sub(s.state.LastTradeTime) < s.cfg.Cooldown {
		return false
	}
	if !level.LastUpdate.IsZero() && ts.Sub(level.LastUpdate) < s.cfg.Cooldown {
		return false
	}

	// A dead-flat market has no band width and generates no entries.
	if snap.Bollinger.Width <= 0 {
		return false
	}

	// Do not buy into a sustained downtrend.
	if s.state.Filter.DownwardCount > s.cfg.MediumTrendBars {
		return false
	}

	oversold := snap.RSI <= s.cfg.RSIOversold
	momentum := snap.MACD.Histogram > 0 && snap.ShortTrend > 0
	nearLowerBand := snap.Price <= snap.Bollinger.Lower*(1+s.cfg.GridSpacing)

	return oversold || momentum || nearLowerBand
}

// shouldSell is the exit gate for one level.
func (s *GridStrategy) shouldSell(level *grid.Level, ts time.Time, snap indicators.Snapshot) bool {
	if !level.Open() || level.EntryPrice <= 0 {
		return false
	}

	profit := (snap.Price - level.EntryPrice) / level.EntryPrice

	// Unconditional exits: take-profit and stop-loss.
	if profit >= s.cfg.TakeProfit || profit <= -s.cfg.StopLoss {
		return true
	}

	// Technical exits require the minimum holding time first.
	if ts.Sub(level.EntryTime) < s.cfg.MinHoldTime {
		return false
	}

	overbought := snap.RSI >= s.cfg.RSIOverbought
	reversal := snap.MACD.Histogram < 0 && snap.ShortTrend < 0
	filterDown := s.state.Filter.DownwardCount > 0

	// Overbought profit-taking must clear the minimum profit floor; a
	// confirmed reversal exits regardless.
	profitQuote := (snap.Price - level.EntryPrice) * level.PositionSize
	if overbought && profitQuote >= s.cfg.MinProfit {
		return true
	}
	return reversal && filterDown
}

// positionSize scales the base size by measured volatility, distance between
// the level and the current price, and confirmation strength. The result is
// never negative.
func (s *GridStrategy) positionSize(level *grid.Level, snap indicators.Snapshot) float64 {
	size := s.cfg.PositionSize

	// Shrink in volatile markets.
	if snap.Bollinger.Width > 0.04 {
		size *= 0.5
	}

	// Shrink when the level sits far from the current price.
	distance := math.Abs(snap.Price-level.Price) / level.Price
	if distance > s.cfg.GridSpacing/2 {
		size *= 0.75
	}

	// Grow when several strong confirmations coincide.
	confirmations := 0
	if snap.RSI <= s.cfg.RSIOversold {
		confirmations++
	}
	if snap.MACD.Histogram > 0 {
		confirmations++
	}
	if s.state.Filter.UpwardCount > 0 {
		confirmations++
	}
	if snap.Price <= snap.Bollinger.Lower {
		confirmations++
	}
	if confirmations >= 3 {
		size *= 1.25
	}

	if size < 0 {
		return 0
	}
	return size
}

// UpdatePosition is the seam where an actual fill (simulated or live) is
// reported back into level and strategy state. It is the only path that
// changes grid level fields.
func (s *GridStrategy) UpdatePosition(levelPrice, size, execPrice float64, ts time.Time, realizedPnL float64) error {
	if err := s.levels.MarkFilled(levelPrice, size, execPrice, ts, realizedPnL); err != nil {
		return fmt.Errorf("update position: %w", err)
	}
	s.state.TotalPositions = s.levels.TotalPositions()
	s.state.LastTradeTime = ts
	return nil
}
