package backtest

import (
	"fmt"
	"sort"

	"github.com/altommo/crypto-grid-trader/internal/logger"
	"github.com/altommo/crypto-grid-trader/pkg/config"
	"github.com/altommo/crypto-grid-trader/pkg/types"
)

// Score weights, fixed by convention: returns dominate, then consistency,
// then drawdown resilience, then risk-adjusted quality.
const (
	scoreWeightReturn   = 0.4
	scoreWeightWinRate  = 0.3
	scoreWeightDrawdown = 0.2
	scoreWeightSharpe   = 0.1
)

// ParameterRanges names the parameter axes of the search grid.
type ParameterRanges struct {
	GridSizes      []int
	GridSpacings   []float64
	PositionSizes  []float64
	RSIOversolds   []float64
	RSIOverboughts []float64
	MinProfits     []float64
}

// DefaultRanges returns the conventional search space.
func DefaultRanges() ParameterRanges {
	return ParameterRanges{
		GridSizes:      []int{8, 10, 12, 14},
		GridSpacings:   []float64{0.003, 0.005, 0.007, 0.01},
		PositionSizes:  []float64{0.01, 0.02, 0.03},
		RSIOversolds:   []float64{20, 25, 30},
		RSIOverboughts: []float64{70, 75, 80},
		MinProfits:     []float64{0.5, 1.0, 1.5},
	}
}

// Size returns the number of configurations the ranges expand to.
func (r ParameterRanges) Size() int {
	return len(r.GridSizes) * len(r.GridSpacings) * len(r.PositionSizes) *
		len(r.RSIOversolds) * len(r.RSIOverboughts) * len(r.MinProfits)
}

// Evaluation pairs a candidate configuration with its backtest metrics and
// scalar score.
type Evaluation struct {
	Config  *config.Config
	Results *Results
	Score   float64
}

// Optimizer searches the parameter space by running one full backtest per
// candidate configuration.
type Optimizer struct {
	base   *config.Config
	data   []types.OHLCV
	ranges ParameterRanges
}

// NewOptimizer creates an optimizer over a base configuration and a
// read-only historical series.
func NewOptimizer(base *config.Config, data []types.OHLCV, ranges ParameterRanges) *Optimizer {
	return &Optimizer{
		base:   base,
		data:   data,
		ranges: ranges,
	}
}

// GenerateParameterGrid expands the ranges into the cartesian product of
// configurations, each an independent clone of the base.
func (o *Optimizer) GenerateParameterGrid() []*config.Config {
	configs := make([]*config.Config, 0, o.ranges.Size())

	for _, gridSize := range o.ranges.GridSizes {
		for _, spacing := range o.ranges.GridSpacings {
			for _, positionSize := range o.ranges.PositionSizes {
				for _, oversold := range o.ranges.RSIOversolds {
					for _, overbought := range o.ranges.RSIOverboughts {
						for _, minProfit := range o.ranges.MinProfits {
							cfg := o.base.Clone()
							cfg.GridSize = gridSize
							cfg.GridSpacing = spacing
							cfg.PositionSize = positionSize
							cfg.RSIOversold = oversold
							cfg.RSIOverbought = overbought
							cfg.MinProfit = minProfit
							configs = append(configs, cfg)
						}
					}
				}
			}
		}
	}

	return configs
}

// EvaluateConfiguration runs one full backtest pass and scores it.
func (o *Optimizer) EvaluateConfiguration(cfg *config.Config) (Evaluation, error) {
	engine, err := NewEngine(cfg)
	if err != nil {
		return Evaluation{}, fmt.Errorf("evaluate configuration: %w", err)
	}

	results := engine.Run(o.data)
	return Evaluation{
		Config:  cfg,
		Results: results,
		Score:   Score(results),
	}, nil
}

// Score reduces a result set to the scalar the optimizer ranks by.
func Score(r *Results) float64 {
	drawdownTerm := 1 - r.MaxDrawdown

	sharpe := r.SharpeRatio / 10
	return scoreWeightReturn*r.TotalReturn +
		scoreWeightWinRate*r.WinRate +
		scoreWeightDrawdown*drawdownTerm +
		scoreWeightSharpe*sharpe
}

// Optimize evaluates every configuration in the grid on the given number of
// parallel workers and returns the evaluations sorted by score descending.
// A failed worker drops only its own configuration; ties are broken by grid
// order so repeated runs over identical inputs rank identically.
func (o *Optimizer) Optimize(workers int) []Evaluation {
	configs := o.GenerateParameterGrid()
	if len(configs) == 0 {
		return nil
	}

	pool := NewWorkerPool(workers, len(configs))
	pool.Start()

	go func() {
		for i, cfg := range configs {
			if err := pool.Submit(EvaluationJob{ID: i, Config: cfg, Data: o.data}); err != nil {
				return
			}
		}
	}()

	type ranked struct {
		order int
		eval  Evaluation
	}

	collected := make([]ranked, 0, len(configs))
	for i := 0; i < len(configs); i++ {
		result := <-pool.Results()
		if result.Err != nil {
			logger.S().Warnw("configuration evaluation failed, dropping from batch",
				"job", result.ID, "error", result.Err)
			continue
		}
		collected = append(collected, ranked{
			order: result.ID,
			eval: Evaluation{
				Config:  result.Config,
				Results: result.Results,
				Score:   Score(result.Results),
			},
		})
	}
	pool.Stop()

	sort.Slice(collected, func(a, b int) bool {
		if collected[a].eval.Score != collected[b].eval.Score {
			return collected[a].eval.Score > collected[b].eval.Score
		}
		return collected[a].order < collected[b].order
	})

	evaluations := make([]Evaluation, len(collected))
	for i, r := range collected {
		evaluations[i] = r.eval
	}
	return evaluations
}

// OptimalConfig runs the full optimization and returns the winning
// configuration, falling back to the base when every evaluation failed.
func (o *Optimizer) OptimalConfig(workers int) *config.Config {
	evaluations := o.Optimize(workers)
	if len(evaluations) == 0 {
		return o.base.Clone()
	}
	return evaluations[0].Config
}
