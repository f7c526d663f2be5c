package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/altommo/crypto-grid-trader/cmd/common"
	"github.com/altommo/crypto-grid-trader/internal/exchange/bybit"
	"github.com/altommo/crypto-grid-trader/internal/logger"
	"github.com/altommo/crypto-grid-trader/pkg/reporting"
)

func main() {
	commonFlags := common.RegisterCommonFlags()

	var (
		symbol   = flag.String("symbol", "BTCUSDT", "Trading symbol")
		interval = flag.String("interval", "60", "Candle interval (Bybit notation)")
		category = flag.String("category", "spot", "Market category (spot, linear, inverse)")
		days     = flag.Int("days", 90, "How many days of history to fetch")
		output   = flag.String("output", "", "Output CSV path (default data/<symbol>_<interval>.csv)")
		testnet  = flag.Bool("testnet", false, "Use the testnet endpoint")
		timeout  = flag.Duration("timeout", 5*time.Minute, "Overall download timeout")
	)
	flag.Parse()

	if err := commonFlags.Setup(); err != nil {
		log.Fatalf("setup failed: %v", err)
	}

	outPath := *output
	if outPath == "" {
		outPath = filepath.Join("data", fmt.Sprintf("%s_%s.csv", *symbol, *interval))
	}
	if dir := filepath.Dir(outPath); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			log.Fatalf("create output directory: %v", err)
		}
	}

	client := bybit.NewClient(bybit.Config{
		APIKey:    common.EnvString("BYBIT_API_KEY", ""),
		APISecret: common.EnvString("BYBIT_API_SECRET", ""),
		Category:  *category,
		Testnet:   *testnet,
	})

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	end := time.Now().UTC()
	start := end.AddDate(0, 0, -*days)

	logger.S().Infow("downloading candles",
		"symbol", *symbol, "interval", *interval, "category", *category,
		"start", start.Format(time.RFC3339), "end", end.Format(time.RFC3339))

	series, err := client.GetCandles(ctx, *symbol, *interval, start, end)
	if err != nil {
		log.Fatalf("download candles: %v", err)
	}
	if len(series) == 0 {
		log.Fatalf("no candles returned for %s %s", *symbol, *interval)
	}

	if err := reporting.WriteCandlesCSV(outPath, series); err != nil {
		log.Fatalf("write candles: %v", err)
	}

	fmt.Printf("Wrote %d candles (%s .. %s) to %s\n",
		len(series),
		series[0].Timestamp.UTC().Format(time.RFC3339),
		series[len(series)-1].Timestamp.UTC().Format(time.RFC3339),
		outPath)
}
