package main

import (
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"runtime"
	"strconv"
	"strings"
	"time"

	"github.com/altommo/crypto-grid-trader/cmd/common"
	"github.com/altommo/crypto-grid-trader/internal/backtest"
	"github.com/altommo/crypto-grid-trader/internal/logger"
	"github.com/altommo/crypto-grid-trader/internal/monitoring"
	"github.com/altommo/crypto-grid-trader/pkg/config"
	"github.com/altommo/crypto-grid-trader/pkg/data"
	"github.com/altommo/crypto-grid-trader/pkg/reporting"
)

func main() {
	commonFlags := common.RegisterCommonFlags()

	var (
		dataFile    = flag.String("data", "", "CSV candle file (required)")
		symbol      = flag.String("symbol", "BTCUSDT", "Trading symbol")
		interval    = flag.String("interval", "60", "Candle interval")
		balance     = flag.Float64("balance", 10000, "Initial balance")
		workers     = flag.Int("workers", runtime.NumCPU(), "Parallel evaluation workers")
		top         = flag.Int("top", 10, "How many ranked configurations to print")
		walkForward = flag.Bool("walk-forward", false, "Validate the winner out-of-sample")
		trainSize   = flag.Float64("train-size", 0.7, "Train fraction for walk-forward")
		robustness  = flag.Int("robustness-windows", 0, "Robustness windows for the winner (0 to skip)")
		gridSizes   = flag.String("grid-sizes", "", "Comma-separated grid sizes to search (defaults used when empty)")
		spacings    = flag.String("grid-spacings", "", "Comma-separated grid spacings to search")
		metricsAddr = flag.String("metrics-addr", "", "Expose Prometheus metrics on this address (empty to disable)")
	)
	flag.Parse()

	if err := commonFlags.Setup(); err != nil {
		log.Fatalf("setup failed: %v", err)
	}
	if *dataFile == "" {
		fmt.Fprintln(os.Stderr, "missing required -data flag")
		flag.Usage()
		os.Exit(1)
	}

	if *metricsAddr != "" {
		go func() {
			mux := http.NewServeMux()
			mux.Handle("/metrics", monitoring.Handler())
			if err := http.ListenAndServe(*metricsAddr, mux); err != nil {
				logger.S().Warnw("metrics server stopped", "error", err)
			}
		}()
		logger.S().Infow("metrics server listening", "addr", *metricsAddr)
	}

	cfg := config.Default()
	cfg.Symbol = *symbol
	cfg.Interval = *interval
	cfg.InitialBalance = *balance
	if err := cfg.Validate(); err != nil {
		log.Fatalf("invalid configuration: %v", err)
	}

	provider := data.NewCSVProvider()
	series, err := provider.LoadData(*dataFile)
	if err != nil {
		log.Fatalf("load data: %v", err)
	}
	if err := provider.ValidateData(series); err != nil {
		log.Fatalf("validate data: %v", err)
	}

	ranges := backtest.DefaultRanges()
	if *gridSizes != "" {
		ranges.GridSizes, err = parseInts(*gridSizes)
		if err != nil {
			log.Fatalf("invalid -grid-sizes: %v", err)
		}
	}
	if *spacings != "" {
		ranges.GridSpacings, err = parseFloats(*spacings)
		if err != nil {
			log.Fatalf("invalid -grid-spacings: %v", err)
		}
	}

	fmt.Printf("Searching %d configurations over %d candles on %d workers\n",
		ranges.Size(), len(series), *workers)

	started := time.Now()
	optimizer := backtest.NewOptimizer(cfg, series, ranges)
	evaluations := optimizer.Optimize(*workers)
	if len(evaluations) == 0 {
		log.Fatal("every configuration evaluation failed")
	}
	fmt.Printf("Search finished in %s\n\n", time.Since(started).Round(time.Millisecond))

	monitoring.RecordEvaluations(cfg.Symbol, "ok", len(evaluations))
	monitoring.RecordEvaluations(cfg.Symbol, "failed", ranges.Size()-len(evaluations))
	monitoring.UpdateBestScore(cfg.Symbol, evaluations[0].Score)

	reporter := reporting.NewConsoleReporter()
	reporter.OutputRanking(evaluations, *top)
	reporter.OutputResults(evaluations[0].Results)

	if *walkForward || *robustness > 0 {
		wf := backtest.NewWalkForward(cfg, series, ranges)

		if *walkForward {
			best, outOfSample, err := wf.Optimize(*trainSize, *workers)
			if err != nil {
				log.Fatalf("walk-forward: %v", err)
			}
			fmt.Printf("\nWALK-FORWARD (train %.0f%%, grid=%d spacing=%.3f%%)\n",
				*trainSize*100, best.GridSize, best.GridSpacing*100)
			reporter.OutputResults(outOfSample)
		}

		if *robustness > 0 {
			report, err := wf.ValidateRobustness(evaluations[0].Config, *robustness)
			if err != nil {
				log.Fatalf("robustness: %v", err)
			}
			reporter.OutputRobustness(report)
		}
	}
}

func parseInts(csv string) ([]int, error) {
	parts := strings.Split(csv, ",")
	values := make([]int, 0, len(parts))
	for _, part := range parts {
		v, err := strconv.Atoi(strings.TrimSpace(part))
		if err != nil {
			return nil, err
		}
		values = append(values, v)
	}
	return values, nil
}

func parseFloats(csv string) ([]float64, error) {
	parts := strings.Split(csv, ",")
	values := make([]float64, 0, len(parts))
	for _, part := range parts {
		v, err := strconv.ParseFloat(strings.TrimSpace(part), 64)
		if err != nil {
			return nil, err
		}
		values = append(values, v)
	}
	return values, nil
}
