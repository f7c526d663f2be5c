package indicators

import "errors"

// MACD calculates the Moving Average Convergence Divergence oscillator.
type MACD struct {
	fastPeriod   int
	slowPeriod   int
	signalPeriod int
}

// MACDValue holds the three components of a MACD reading.
type MACDValue struct {
	Line      float64
	Signal    float64
	Histogram float64
}

// NewMACD creates a new MACD instance with the specified fast, slow, and
// signal periods (conventionally 12/26/9).
func NewMACD(fast, slow, signal int) *MACD {
	return &MACD{
		fastPeriod:   fast,
		slowPeriod:   slow,
		signalPeriod: signal,
	}
}

// Calculate computes the MACD line, signal line and histogram for the last
// point of the price slice. The signal line is an EMA of the MACD line
// history reconstructed over the window.
func (m *MACD) Calculate(prices []float64) (MACDValue, error) {
	if len(prices) < m.RequiredPeriods() {
		return MACDValue{}, errors.New("insufficient data for MACD calculation")
	}

	fastEMA := emaSeries(prices, m.fastPeriod)
	slowEMA := emaSeries(prices, m.slowPeriod)

	// The MACD line exists once the slow EMA is seeded.
	macdLine := make([]float64, 0, len(prices)-m.slowPeriod+1)
	for i := m.slowPeriod - 1; i < len(prices); i++ {
		macdLine = append(macdLine, fastEMA[i]-slowEMA[i])
	}

	signalSeries := emaSeries(macdLine, m.signalPeriod)

	line := macdLine[len(macdLine)-1]
	signal := signalSeries[len(signalSeries)-1]

	return MACDValue{
		Line:      line,
		Signal:    signal,
		Histogram: line - signal,
	}, nil
}

// RequiredPeriods returns the minimum number of prices Calculate needs.
func (m *MACD) RequiredPeriods() int {
	return m.slowPeriod + m.signalPeriod
}

// emaSeries computes an exponential moving average over the whole series,
// seeded with a simple average of the first period values. Positions before
// the seed carry the running simple average so the slice aligns with input.
func emaSeries(values []float64, period int) []float64 {
	result := make([]float64, len(values))
	if len(values) == 0 {
		return result
	}
	if period < 1 {
		period = 1
	}

	alpha := 2.0 / (float64(period) + 1.0)

	sum := 0.0
	for i, v := range values {
		if i < period {
			sum += v
			result[i] = sum / float64(i+1)
			continue
		}
		result[i] = result[i-1] + alpha*(v-result[i-1])
	}
	return result
}
