package reporting

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/altommo/crypto-grid-trader/internal/backtest"
	"github.com/altommo/crypto-grid-trader/pkg/types"
)

// WriteTradesCSV writes the trade ledger to a CSV file.
func WriteTradesCSV(path string, trades []backtest.Trade) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create trades file: %w", err)
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	defer writer.Flush()

	header := []string{"timestamp", "action", "price", "size", "fees", "pnl", "cumulative_pnl"}
	if err := writer.Write(header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	for _, trade := range trades {
		record := []string{
			trade.Timestamp.UTC().Format(time.RFC3339),
			string(trade.Action),
			strconv.FormatFloat(trade.Price, 'f', -1, 64),
			strconv.FormatFloat(trade.Size, 'f', -1, 64),
			strconv.FormatFloat(trade.Fees, 'f', -1, 64),
			strconv.FormatFloat(trade.PnL, 'f', -1, 64),
			strconv.FormatFloat(trade.CumulativePnL, 'f', -1, 64),
		}
		if err := writer.Write(record); err != nil {
			return fmt.Errorf("write trade record: %w", err)
		}
	}

	return writer.Error()
}

// WriteCandlesCSV writes a candle series in the default layout the CSV
// provider reads back.
func WriteCandlesCSV(path string, series []types.OHLCV) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create candles file: %w", err)
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	defer writer.Flush()

	header := []string{"timestamp", "open", "high", "low", "close", "volume"}
	if err := writer.Write(header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	for _, candle := range series {
		record := []string{
			candle.Timestamp.UTC().Format(time.RFC3339),
			strconv.FormatFloat(candle.Open, 'f', -1, 64),
			strconv.FormatFloat(candle.High, 'f', -1, 64),
			strconv.FormatFloat(candle.Low, 'f', -1, 64),
			strconv.FormatFloat(candle.Close, 'f', -1, 64),
			strconv.FormatFloat(candle.Volume, 'f', -1, 64),
		}
		if err := writer.Write(record); err != nil {
			return fmt.Errorf("write candle record: %w", err)
		}
	}

	return writer.Error()
}
