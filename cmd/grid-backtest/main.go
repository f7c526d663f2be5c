package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/altommo/crypto-grid-trader/cmd/common"
	"github.com/altommo/crypto-grid-trader/internal/backtest"
	"github.com/altommo/crypto-grid-trader/internal/monitoring"
	"github.com/altommo/crypto-grid-trader/internal/strategy"
	"github.com/altommo/crypto-grid-trader/pkg/config"
	"github.com/altommo/crypto-grid-trader/pkg/data"
	"github.com/altommo/crypto-grid-trader/pkg/reporting"
)

func main() {
	commonFlags := common.RegisterCommonFlags()

	var (
		dataFile       = flag.String("data", "", "CSV candle file (required)")
		symbol         = flag.String("symbol", "BTCUSDT", "Trading symbol")
		interval       = flag.String("interval", "60", "Candle interval")
		gridSize       = flag.Int("grid-size", 10, "Number of grid spacing steps")
		gridSpacing    = flag.Float64("grid-spacing", 0.01, "Fractional spacing between levels")
		positionSize   = flag.Float64("position-size", 0.01, "Base order size")
		maxPositions   = flag.Int("max-positions", 5, "Maximum concurrent open levels")
		stopLoss       = flag.Float64("stop-loss", 0.02, "Stop loss fraction")
		takeProfit     = flag.Float64("take-profit", 0.015, "Take profit fraction")
		rsiOversold    = flag.Float64("rsi-oversold", 30, "RSI oversold threshold")
		rsiOverbought  = flag.Float64("rsi-overbought", 70, "RSI overbought threshold")
		cooldown       = flag.Duration("cooldown", 5*time.Minute, "Minimum gap between trades")
		minHold        = flag.Duration("min-hold", 30*time.Minute, "Minimum holding time before technical exits")
		initialBalance = flag.Float64("balance", 10000, "Initial balance")
		takerFee       = flag.Float64("taker-fee", 0.001, "Taker fee rate")
		feeDiscount    = flag.Bool("fee-discount", false, "Apply fee token discount")
		slippageModel  = flag.String("slippage-model", config.SlippageFixed, "Slippage model (fixed, proportional)")
		slippageRate   = flag.Float64("slippage-rate", 0.0005, "Slippage rate")
		tradesCSV      = flag.String("trades-csv", "", "Write trade ledger to CSV file")
		resultsXLSX    = flag.String("results-xlsx", "", "Write results workbook to Excel file")
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

	cfg := config.Default()
	cfg.Symbol = *symbol
	cfg.Interval = *interval
	cfg.GridSize = *gridSize
	cfg.GridSpacing = *gridSpacing
	cfg.PositionSize = *positionSize
	cfg.MaxPositions = *maxPositions
	cfg.StopLoss = *stopLoss
	cfg.TakeProfit = *takeProfit
	cfg.RSIOversold = *rsiOversold
	cfg.RSIOverbought = *rsiOverbought
	cfg.Cooldown = *cooldown
	cfg.MinHoldTime = *minHold
	cfg.InitialBalance = *initialBalance
	cfg.TakerFeeRate = *takerFee
	cfg.FeeTokenDiscount = *feeDiscount
	cfg.SlippageModel = *slippageModel
	cfg.SlippageRate = *slippageRate

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

	engine, err := backtest.NewEngine(cfg)
	if err != nil {
		log.Fatalf("create engine: %v", err)
	}

	results := engine.Run(series)

	var buys, sells float64
	for _, trade := range results.Trades {
		if trade.Action == strategy.ActionBuy {
			buys++
		} else {
			sells++
		}
	}
	monitoring.RecordBacktest(cfg.Symbol, buys, sells)

	reporter := reporting.NewConsoleReporter()
	reporter.OutputResults(results)

	if *tradesCSV != "" {
		if err := reporting.WriteTradesCSV(*tradesCSV, results.Trades); err != nil {
			log.Fatalf("write trades CSV: %v", err)
		}
		fmt.Printf("\nTrade ledger written to %s\n", *tradesCSV)
	}
	if *resultsXLSX != "" {
		excel := reporting.NewExcelReporter()
		if err := excel.WriteResultsXLSX(results, *resultsXLSX); err != nil {
			log.Fatalf("write results workbook: %v", err)
		}
		fmt.Printf("Results workbook written to %s\n", *resultsXLSX)
	}
}
