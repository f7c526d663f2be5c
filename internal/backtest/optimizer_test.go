package backtest

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/altommo/crypto-grid-trader/pkg/config"
)

func smallRanges() ParameterRanges {
	return ParameterRanges{
		GridSizes:      []int{8, 10},
		GridSpacings:   []float64{0.005, 0.01},
		PositionSizes:  []float64{0.01},
		RSIOversolds:   []float64{25, 30},
		RSIOverboughts: []float64{70},
		MinProfits:     []float64{0.5},
	}
}

func optimizerSeries() []float64 {
	prices := make([]float64, 400)
	for i := range prices {
		prices[i] = 100 + 3*math.Sin(float64(i)/8)
	}
	return prices
}

func TestParameterRanges_Size(t *testing.T) {
	assert.Equal(t, 8, smallRanges().Size())
	assert.Equal(t, 4*4*3*3*3*3, DefaultRanges().Size())
}

func TestOptimizer_GenerateParameterGrid(t *testing.T) {
	base := config.Default()
	optimizer := NewOptimizer(base, nil, smallRanges())

	configs := optimizer.GenerateParameterGrid()
	require.Len(t, configs, 8)

	// Every candidate is an independent clone.
	for _, cfg := range configs {
		assert.NotSame(t, base, cfg)
		assert.Equal(t, base.Symbol, cfg.Symbol)
	}

	configs[0].GridSize = 999
	assert.NotEqual(t, 999, base.GridSize)
}

func TestOptimizer_EvaluateConfiguration(t *testing.T) {
	prices := optimizerSeries()
	data := makeSeries(len(prices), func(i int) float64 { return prices[i] })

	optimizer := NewOptimizer(config.Default(), data, smallRanges())

	eval, err := optimizer.EvaluateConfiguration(config.Default())
	require.NoError(t, err)
	require.NotNil(t, eval.Results)
	assert.Equal(t, Score(eval.Results), eval.Score)
}

func TestOptimizer_EvaluateInvalidConfiguration(t *testing.T) {
	optimizer := NewOptimizer(config.Default(), nil, smallRanges())

	bad := config.Default()
	bad.GridSpacing = -1
	_, err := optimizer.EvaluateConfiguration(bad)
	assert.Error(t, err)
}

func TestOptimizer_RankingIsDeterministic(t *testing.T) {
	prices := optimizerSeries()
	data := makeSeries(len(prices), func(i int) float64 { return prices[i] })

	base := config.Default()
	base.Cooldown = 0
	base.MinHoldTime = 0

	first := NewOptimizer(base, data, smallRanges()).Optimize(4)
	second := NewOptimizer(base, data, smallRanges()).Optimize(4)

	require.Len(t, first, 8)
	require.Len(t, second, 8)

	for i := range first {
		assert.Equal(t, first[i].Score, second[i].Score, "rank %d", i)
		assert.Equal(t, first[i].Config.GridSize, second[i].Config.GridSize, "rank %d", i)
		assert.Equal(t, first[i].Config.GridSpacing, second[i].Config.GridSpacing, "rank %d", i)
		assert.Equal(t, first[i].Config.RSIOversold, second[i].Config.RSIOversold, "rank %d", i)
	}

	// Scores arrive best first.
	for i := 1; i < len(first); i++ {
		assert.GreaterOrEqual(t, first[i-1].Score, first[i].Score)
	}
}

func TestOptimizer_DropsFailedEvaluations(t *testing.T) {
	data := makeSeries(100, func(i int) float64 { return 100 })

	ranges := smallRanges()
	// An oversold threshold above the overbought one fails validation.
	ranges.RSIOversolds = []float64{30, 90}

	evaluations := NewOptimizer(config.Default(), data, ranges).Optimize(2)

	require.Len(t, evaluations, 4)
	for _, eval := range evaluations {
		assert.Equal(t, 30.0, eval.Config.RSIOversold)
	}
}

func TestOptimizer_OptimalConfigFallsBackToBase(t *testing.T) {
	data := makeSeries(100, func(i int) float64 { return 100 })

	ranges := smallRanges()
	ranges.RSIOversolds = []float64{90} // every candidate invalid

	base := config.Default()
	best := NewOptimizer(base, data, ranges).OptimalConfig(2)

	require.NotNil(t, best)
	assert.Equal(t, base.RSIOversold, best.RSIOversold)
	assert.NotSame(t, base, best)
}
