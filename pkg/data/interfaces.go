package data

import "github.com/altommo/crypto-grid-trader/pkg/types"

// Provider loads a finite, chronologically ordered historical series from a
// named source. The simulation core only ever sees the returned slice.
type Provider interface {
	GetName() string
	LoadData(source string) ([]types.OHLCV, error)
	ValidateData(data []types.OHLCV) error
}
