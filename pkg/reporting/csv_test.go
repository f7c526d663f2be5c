package reporting

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/altommo/crypto-grid-trader/internal/backtest"
	"github.com/altommo/crypto-grid-trader/internal/strategy"
	"github.com/altommo/crypto-grid-trader/pkg/data"
	"github.com/altommo/crypto-grid-trader/pkg/types"
)

func TestWriteTradesCSV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "trades.csv")
	ts := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)

	trades := []backtest.Trade{
		{Timestamp: ts, Action: strategy.ActionBuy, Price: 100, Size: 1, Fees: 0.1, PnL: -0.1, CumulativePnL: -0.1},
		{Timestamp: ts.Add(time.Hour), Action: strategy.ActionSell, Price: 101, Size: 1, Fees: 0.101, PnL: 0.899, CumulativePnL: 0.799},
	}

	require.NoError(t, WriteTradesCSV(path, trades))

	file, err := os.Open(path)
	require.NoError(t, err)
	defer file.Close()

	rows, err := csv.NewReader(file).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 3)

	assert.Equal(t, []string{"timestamp", "action", "price", "size", "fees", "pnl", "cumulative_pnl"}, rows[0])
	assert.Equal(t, "BUY", rows[1][1])
	assert.Equal(t, "SELL", rows[2][1])
	assert.Equal(t, "2024-01-01T12:00:00Z", rows[1][0])
}

func TestWriteCandlesCSV_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "candles.csv")
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	series := []types.OHLCV{
		{Open: 100, High: 105, Low: 95, Close: 102, Volume: 1000, Timestamp: start},
		{Open: 102, High: 108, Low: 101, Close: 107, Volume: 1500, Timestamp: start.Add(time.Hour)},
	}

	require.NoError(t, WriteCandlesCSV(path, series))

	// The default CSV provider must read back exactly what was written.
	provider := data.NewCSVProvider()
	loaded, err := provider.LoadData(path)
	require.NoError(t, err)
	require.NoError(t, provider.ValidateData(loaded))

	require.Len(t, loaded, len(series))
	for i := range series {
		assert.Equal(t, series[i], loaded[i])
	}
}
