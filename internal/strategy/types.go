package strategy

import (
	"time"

	"github.com/altommo/crypto-grid-trader/internal/indicators"
)

// Action is the intent of a signal.
type Action string

const (
	ActionBuy  Action = "BUY"
	ActionSell Action = "SELL"
)

// Signal is an intended trade, not yet executed. Price is the intended
// execution price; LevelPrice is the grid anchor the signal belongs to and
// is the key under which the backtester books the resulting holding.
type Signal struct {
	Action     Action
	Price      float64
	Size       float64
	LevelPrice float64
	Timestamp  time.Time
}

// State is the mutable per-run strategy state. TotalPositions must always
// equal the open-level count derivable from the grid manager.
type State struct {
	CurrentPrice   float64
	LastTradeTime  time.Time
	TotalPositions int
	Filter         indicators.RangeFilterState
}
