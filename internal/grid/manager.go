package grid

import (
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/altommo/crypto-grid-trader/pkg/config"
)

// Level is one price rung of the ladder. A level holds at most one open
// position at a time; Price is fixed at grid construction.
type Level struct {
	Price        float64
	PositionSize float64   // 0 when flat
	EntryPrice   float64   // zero iff flat
	EntryTime    time.Time // zero iff flat
	LastUpdate   time.Time

	// Per-level track record, used to disable poorly performing levels.
	TradesTaken      int
	SuccessfulTrades int
}

// Open reports whether the level currently holds a position.
func (l *Level) Open() bool {
	return l.PositionSize > 0
}

// SuccessRate returns the fraction of closed trades at this level that were
// profitable. Levels with no history return 1 so they are never gated out
// before their first trade.
func (l *Level) SuccessRate() float64 {
	if l.TradesTaken == 0 {
		return 1
	}
	return float64(l.SuccessfulTrades) / float64(l.TradesTaken)
}

// Manager owns the ladder of grid levels and their position state. It is the
// single mutation path for level fields; the strategy reads levels and
// requests mutation but never holds them independently.
type Manager struct {
	gridSize int
	spacing  float64

	levels         []*Level
	totalPositions int
}

// NewManager creates a level manager from a validated configuration.
func NewManager(cfg *config.Config) (*Manager, error) {
	if cfg.GridSize <= 0 {
		return nil, fmt.Errorf("grid size must be positive, got: %d", cfg.GridSize)
	}
	if cfg.GridSpacing <= 0 {
		return nil, fmt.Errorf("grid spacing must be positive, got: %f", cfg.GridSpacing)
	}
	return &Manager{
		gridSize: cfg.GridSize,
		spacing:  cfg.GridSpacing,
	}, nil
}

// Initialize fully replaces the ladder around the reference price using
// multiplicative symmetric stepping: level(i) = ref * (1+spacing)^i for
// i in [-gridSize/2, gridSize/2]. Any prior level state is discarded.
// Levels are kept sorted ascending by price at all times.
func (m *Manager) Initialize(referencePrice float64) error {
	if referencePrice <= 0 || math.IsNaN(referencePrice) || math.IsInf(referencePrice, 0) {
		return fmt.Errorf("reference price must be positive and finite, got: %f", referencePrice)
	}

	half := m.gridSize / 2
	m.levels = make([]*Level, 0, m.gridSize+1)
	for i := -half; i <= half; i++ {
		price := referencePrice * math.Pow(1+m.spacing, float64(i))
		m.levels = append(m.levels, &Level{Price: price})
	}

	sort.Slice(m.levels, func(a, b int) bool {
		return m.levels[a].Price < m.levels[b].Price
	})
	m.totalPositions = 0
	return nil
}

// Levels returns the ladder in ascending price order.
func (m *Manager) Levels() []*Level {
	return m.levels
}

// LevelAt returns the level anchored at the given price, or nil.
func (m *Manager) LevelAt(price float64) *Level {
	for _, level := range m.levels {
		if level.Price == price {
			return level
		}
	}
	return nil
}

// MarkFilled reports a fill back into level state. A positive size opens the
// level at the given entry price; size zero closes it, clearing the entry
// fields and recording the trade outcome (success iff realized pnl > 0).
func (m *Manager) MarkFilled(levelPrice, size, entryPrice float64, ts time.Time, realizedPnL float64) error {
	level := m.LevelAt(levelPrice)
	if level == nil {
		return fmt.Errorf("no grid level at price %f", levelPrice)
	}

	if size > 0 {
		if level.Open() {
			return fmt.Errorf("grid level %f already holds a position", levelPrice)
		}
		level.PositionSize = size
		level.EntryPrice = entryPrice
		level.EntryTime = ts
		level.LastUpdate = ts
		m.totalPositions++
		return nil
	}

	if !level.Open() {
		return fmt.Errorf("grid level %f has no position to close", levelPrice)
	}
	level.PositionSize = 0
	level.EntryPrice = 0
	level.EntryTime = time.Time{}
	level.LastUpdate = ts
	level.TradesTaken++
	if realizedPnL > 0 {
		level.SuccessfulTrades++
	}
	m.totalPositions--
	return nil
}

// TotalPositions returns the maintained count of open levels.
func (m *Manager) TotalPositions() int {
	return m.totalPositions
}

// CountOpen derives the open-level count from level state. It must always
// equal TotalPositions; the strategy asserts this invariant in tests.
func (m *Manager) CountOpen() int {
	count := 0
	for _, level := range m.levels {
		if level.Open() {
			count++
		}
	}
	return count
}
