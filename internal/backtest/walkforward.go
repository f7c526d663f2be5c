package backtest

import (
	"fmt"
	"math"

	"github.com/altommo/crypto-grid-trader/pkg/config"
	"github.com/altommo/crypto-grid-trader/pkg/types"
	"github.com/altommo/crypto-grid-trader/pkg/validation"
)

// WalkForward optimizes on an earlier slice of the series and validates the
// winner on the later, disjoint slice to estimate out-of-sample performance.
type WalkForward struct {
	base   *config.Config
	data   []types.OHLCV
	ranges ParameterRanges
}

// NewWalkForward creates a walk-forward validator.
func NewWalkForward(base *config.Config, data []types.OHLCV, ranges ParameterRanges) *WalkForward {
	return &WalkForward{
		base:   base,
		data:   data,
		ranges: ranges,
	}
}

// Optimize splits the series chronologically by trainSize (default 0.7 when
// zero), optimizes on the train slice and backtests the winning
// configuration on the test slice. The returned results are out-of-sample.
func (wf *WalkForward) Optimize(trainSize float64, workers int) (*config.Config, *Results, error) {
	if trainSize <= 0 {
		trainSize = 0.7
	}

	train, test := validation.SplitByRatio(wf.data, trainSize)
	if len(test) == 0 {
		return nil, nil, fmt.Errorf("walk-forward split left no test data (train_size=%f, rows=%d)", trainSize, len(wf.data))
	}

	optimizer := NewOptimizer(wf.base, train, wf.ranges)
	best := optimizer.OptimalConfig(workers)

	engine, err := NewEngine(best)
	if err != nil {
		return nil, nil, fmt.Errorf("walk-forward validation: %w", err)
	}

	return best, engine.Run(test), nil
}

// RobustnessReport summarizes a configuration's behavior across independent
// time windows. StabilityScore is 1 - stdev(returns)/|mean(returns)|, or 0
// when the mean return is 0.
type RobustnessReport struct {
	Windows        int
	ReturnMean     float64
	ReturnStdDev   float64
	WinRateMean    float64
	WinRateStdDev  float64
	StabilityScore float64
}

// ValidateRobustness partitions the series into the given number of
// contiguous equal-size slices and backtests the candidate configuration on
// each independently.
func (wf *WalkForward) ValidateRobustness(candidate *config.Config, windows int) (*RobustnessReport, error) {
	if windows <= 0 {
		windows = 5
	}
	slices := validation.SplitWindows(wf.data, windows)
	if len(slices) == 0 {
		return nil, fmt.Errorf("series too short for %d robustness windows (rows=%d)", windows, len(wf.data))
	}

	returns := make([]float64, 0, windows)
	winRates := make([]float64, 0, windows)

	for i, slice := range slices {
		engine, err := NewEngine(candidate.Clone())
		if err != nil {
			return nil, fmt.Errorf("robustness window %d: %w", i, err)
		}

		results := engine.Run(slice)
		returns = append(returns, results.TotalReturn)
		winRates = append(winRates, results.WinRate)
	}

	report := &RobustnessReport{
		Windows:       windows,
		ReturnMean:    mean(returns),
		ReturnStdDev:  stdDev(returns),
		WinRateMean:   mean(winRates),
		WinRateStdDev: stdDev(winRates),
	}
	if report.ReturnMean != 0 {
		report.StabilityScore = 1 - report.ReturnStdDev/math.Abs(report.ReturnMean)
	}
	return report, nil
}

func mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

// stdDev is the population standard deviation.
func stdDev(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	avg := mean(values)
	variance := 0.0
	for _, v := range values {
		diff := v - avg
		variance += diff * diff
	}
	return math.Sqrt(variance / float64(len(values)))
}
