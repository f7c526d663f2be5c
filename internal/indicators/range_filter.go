package indicators

import "math"

// RangeFilter produces a step-wise trend line: the filtered price ratchets
// toward the raw price by at most the smoothed range per update. The filter
// direction drives up/down trend counters used to gate entries and exits.
type RangeFilter struct {
	period int
	mult   float64
}

// RangeFilterState carries the recurrence state between updates. The zero
// value is a valid initial state; the recurrence is pure so the state can be
// copied and replayed freely.
type RangeFilterState struct {
	Initialized   bool
	PrevPrice     float64
	AvgRange      float64 // first smoothing of absolute price deltas
	SmoothRange   float64 // second smoothing over 2*period-1 iterations
	FilteredPrice float64
	UpwardCount   int
	DownwardCount int
}

// NewRangeFilter creates a new range filter with the given sampling period
// and range multiplier.
func NewRangeFilter(period int, mult float64) *RangeFilter {
	return &RangeFilter{period: period, mult: mult}
}

// Update advances the recurrence by one price and returns the new state.
func (rf *RangeFilter) Update(state RangeFilterState, price float64) RangeFilterState {
	if !state.Initialized {
		return RangeFilterState{
			Initialized:   true,
			PrevPrice:     price,
			FilteredPrice: price,
		}
	}

	next := state

	delta := math.Abs(price - state.PrevPrice)
	next.AvgRange = ema(state.AvgRange, delta, rf.period)
	next.SmoothRange = ema(state.SmoothRange, next.AvgRange, 2*rf.period-1)
	smoothRange := next.SmoothRange * rf.mult

	// Ratchet toward the raw price by at most the smoothed range.
	filt := state.FilteredPrice
	switch {
	case price > filt:
		if candidate := price - smoothRange; candidate > filt {
			filt = candidate
		}
	case price < filt:
		if candidate := price + smoothRange; candidate < filt {
			filt = candidate
		}
	}
	next.FilteredPrice = filt

	switch {
	case filt > state.FilteredPrice:
		next.UpwardCount = state.UpwardCount + 1
		next.DownwardCount = 0
	case filt < state.FilteredPrice:
		next.DownwardCount = state.DownwardCount + 1
		next.UpwardCount = 0
	}

	next.PrevPrice = price
	return next
}

// Trending reports whether the filter is currently moving up or down.
func (s RangeFilterState) Trending() (up, down bool) {
	return s.UpwardCount > 0, s.DownwardCount > 0
}

// ema applies one step of exponential smoothing with alpha = 2/(period+1).
func ema(prev, value float64, period int) float64 {
	if period < 1 {
		period = 1
	}
	alpha := 2.0 / (float64(period) + 1.0)
	return prev + alpha*(value-prev)
}
