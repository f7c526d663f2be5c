package indicators

import (
	"errors"
	"math"
)

// BollingerBands calculates a simple moving average with standard deviation
// bands around it.
type BollingerBands struct {
	period int
	stdDev float64
}

// BollingerValue holds one reading of the bands. Width is the band spread
// normalized by the close price and is used as a volatility gate.
type BollingerValue struct {
	Upper  float64
	Middle float64
	Lower  float64
	Width  float64
}

// NewBollingerBands creates a new BollingerBands instance (conventionally
// a 20-period SMA with 2 standard deviations).
func NewBollingerBands(period int, stdDev float64) *BollingerBands {
	return &BollingerBands{period: period, stdDev: stdDev}
}

// Calculate computes the bands for the last point of the price slice.
func (b *BollingerBands) Calculate(prices []float64) (BollingerValue, error) {
	if len(prices) < b.period {
		return BollingerValue{}, errors.New("insufficient data for Bollinger Bands calculation")
	}

	window := prices[len(prices)-b.period:]

	sum := 0.0
	for _, p := range window {
		sum += p
	}
	mean := sum / float64(b.period)

	variance := 0.0
	for _, p := range window {
		diff := p - mean
		variance += diff * diff
	}
	variance /= float64(b.period)
	sigma := math.Sqrt(variance)

	value := BollingerValue{
		Upper:  mean + b.stdDev*sigma,
		Middle: mean,
		Lower:  mean - b.stdDev*sigma,
	}

	if last := prices[len(prices)-1]; last != 0 {
		value.Width = (value.Upper - value.Lower) / last
	}

	return value, nil
}

// RequiredPeriods returns the minimum number of prices Calculate needs.
func (b *BollingerBands) RequiredPeriods() int {
	return b.period
}
