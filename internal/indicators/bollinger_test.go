package indicators

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBollingerBands_Calculate(t *testing.T) {
	bb := NewBollingerBands(4, 2.0)

	// mean 2.5, population sigma sqrt(1.25)
	value, err := bb.Calculate([]float64{1, 2, 3, 4})
	require.NoError(t, err)

	assert.InDelta(t, 2.5, value.Middle, 1e-9)
	assert.InDelta(t, 2.5+2*1.1180339887, value.Upper, 1e-6)
	assert.InDelta(t, 2.5-2*1.1180339887, value.Lower, 1e-6)
	assert.InDelta(t, (value.Upper-value.Lower)/4.0, value.Width, 1e-9)
}

func TestBollingerBands_ConstantPrices(t *testing.T) {
	bb := NewBollingerBands(20, 2.0)

	prices := make([]float64, 20)
	for i := range prices {
		prices[i] = 100.0
	}

	value, err := bb.Calculate(prices)
	require.NoError(t, err)

	// Zero variance collapses all three bands onto the mean.
	assert.Equal(t, value.Middle, value.Upper)
	assert.Equal(t, value.Middle, value.Lower)
	assert.Equal(t, 0.0, value.Width)
}

func TestBollingerBands_InsufficientData(t *testing.T) {
	bb := NewBollingerBands(20, 2.0)

	_, err := bb.Calculate([]float64{100, 101})
	assert.Error(t, err)
}

func TestBollingerBands_UsesTailWindow(t *testing.T) {
	bb := NewBollingerBands(3, 2.0)

	// The leading outlier falls outside the 3-price window.
	value, err := bb.Calculate([]float64{1000, 10, 10, 10})
	require.NoError(t, err)

	assert.InDelta(t, 10.0, value.Middle, 1e-9)
	assert.Equal(t, 0.0, value.Width)
}
