package indicators

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMACD_Calculate(t *testing.T) {
	macd := NewMACD(12, 26, 9)

	prices := make([]float64, 50)
	for i := range prices {
		prices[i] = 100.0 + float64(i)
	}

	value, err := macd.Calculate(prices)
	require.NoError(t, err)

	// In a steady uptrend the fast EMA runs above the slow EMA.
	assert.Greater(t, value.Line, 0.0)
	assert.InDelta(t, value.Line-value.Signal, value.Histogram, 1e-12)
}

func TestMACD_ConstantPrices(t *testing.T) {
	macd := NewMACD(12, 26, 9)

	prices := make([]float64, 50)
	for i := range prices {
		prices[i] = 100.0
	}

	value, err := macd.Calculate(prices)
	require.NoError(t, err)

	assert.InDelta(t, 0.0, value.Line, 1e-9)
	assert.InDelta(t, 0.0, value.Signal, 1e-9)
	assert.InDelta(t, 0.0, value.Histogram, 1e-9)
}

func TestMACD_InsufficientData(t *testing.T) {
	macd := NewMACD(12, 26, 9)

	prices := make([]float64, macd.RequiredPeriods()-1)
	for i := range prices {
		prices[i] = 100.0
	}

	_, err := macd.Calculate(prices)
	assert.Error(t, err)
}

func TestMACD_RequiredPeriods(t *testing.T) {
	assert.Equal(t, 35, NewMACD(12, 26, 9).RequiredPeriods())
}
