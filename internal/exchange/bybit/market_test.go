package bybit

import (
	"testing"

	bybit_api "github.com/bybit-exchange/bybit.go.api"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/altommo/crypto-grid-trader/internal/exchange"
)

var _ exchange.MarketDataSource = (*Client)(nil)

func TestParseKlineResponse(t *testing.T) {
	response := &bybit_api.ServerResponse{
		RetCode: 0,
		Result: map[string]interface{}{
			"symbol":   "BTCUSDT",
			"category": "spot",
			"list": [][]string{
				{"1704067200000", "42000", "42500", "41800", "42300", "120.5", "5090000"},
				{"1704063600000", "41800", "42100", "41700", "42000", "98.2", "4110000"},
			},
		},
	}

	candles, err := parseKlineResponse(response)
	require.NoError(t, err)
	require.Len(t, candles, 2)

	assert.Equal(t, 42000.0, candles[0].Open)
	assert.Equal(t, 42300.0, candles[0].Close)
	assert.Equal(t, 120.5, candles[0].Volume)
	assert.Equal(t, int64(1704067200000), candles[0].Timestamp.UnixMilli())
}

func TestParseKlineResponse_APIError(t *testing.T) {
	response := &bybit_api.ServerResponse{
		RetCode: 10001,
		RetMsg:  "params error",
	}

	_, err := parseKlineResponse(response)
	assert.Error(t, err)
}

func TestParseKlineResponse_WrongType(t *testing.T) {
	_, err := parseKlineResponse("not a response")
	assert.Error(t, err)
}

func TestParseKlineResponse_ShortRowsSkipped(t *testing.T) {
	response := &bybit_api.ServerResponse{
		RetCode: 0,
		Result: map[string]interface{}{
			"list": [][]string{
				{"1704067200000", "42000"},
				{"1704063600000", "41800", "42100", "41700", "42000", "98.2"},
			},
		},
	}

	candles, err := parseKlineResponse(response)
	require.NoError(t, err)
	assert.Len(t, candles, 1)
}

func TestParseLatestPriceResponse(t *testing.T) {
	response := &bybit_api.ServerResponse{
		RetCode: 0,
		Result: map[string]interface{}{
			"category": "spot",
			"list": []map[string]interface{}{
				{"symbol": "ETHUSDT", "lastPrice": "2500.5"},
				{"symbol": "BTCUSDT", "lastPrice": "42300.1"},
			},
		},
	}

	price, err := parseLatestPriceResponse(response, "BTCUSDT")
	require.NoError(t, err)
	assert.Equal(t, 42300.1, price)

	_, err = parseLatestPriceResponse(response, "SOLUSDT")
	assert.Error(t, err)
}

func TestNewClient_Defaults(t *testing.T) {
	client := NewClient(Config{})
	assert.Equal(t, "spot", client.category)
	assert.False(t, client.IsTestnet())

	testnet := NewClient(Config{Category: "linear", Testnet: true})
	assert.Equal(t, "linear", testnet.category)
	assert.True(t, testnet.IsTestnet())
}
