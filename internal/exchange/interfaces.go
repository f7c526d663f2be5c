package exchange

import (
	"context"
	"time"

	"github.com/altommo/crypto-grid-trader/pkg/types"
)

// MarketDataSource supplies finite, chronologically ordered candle history
// for a symbol and interval. The simulation core only consumes the returned
// slice; it never talks to an exchange during a run.
type MarketDataSource interface {
	GetCandles(ctx context.Context, symbol, interval string, start, end time.Time) ([]types.OHLCV, error)
	GetLatestPrice(ctx context.Context, symbol string) (float64, error)
}

// OrderIntent is a BUY/SELL intent handed to an execution venue. Real order
// placement, routing and authentication live behind this seam, outside the
// simulation core.
type OrderIntent struct {
	Action string
	Price  float64
	Size   float64
}

// ExecutionSink receives order intents. The strategy's UpdatePosition call
// is where a simulated or real fill is reported back into level state.
type ExecutionSink interface {
	SubmitOrder(ctx context.Context, intent OrderIntent) error
}
