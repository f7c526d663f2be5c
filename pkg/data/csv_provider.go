package data

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"time"

	"github.com/altommo/crypto-grid-trader/internal/logger"
	"github.com/altommo/crypto-grid-trader/pkg/types"
)

// CSVColumnMapping describes where each OHLCV field lives in a CSV row.
type CSVColumnMapping struct {
	TimestampCol int
	OpenCol      int
	HighCol      int
	LowCol       int
	CloseCol     int
	VolumeCol    int
	MinColumns   int
	DateFormat   string
}

// DefaultCSVFormat matches the files written by the download-data tool:
// timestamp,open,high,low,close,volume with RFC3339 timestamps.
var DefaultCSVFormat = CSVColumnMapping{
	TimestampCol: 0,
	OpenCol:      1,
	HighCol:      2,
	LowCol:       3,
	CloseCol:     4,
	VolumeCol:    5,
	MinColumns:   6,
	DateFormat:   time.RFC3339,
}

// CSVProvider implements Provider for CSV files.
type CSVProvider struct {
	format CSVColumnMapping
}

// NewCSVProvider creates a CSV data provider with the default column layout.
func NewCSVProvider() *CSVProvider {
	return &CSVProvider{format: DefaultCSVFormat}
}

// NewCSVProviderWithFormat creates a CSV data provider with a custom layout.
func NewCSVProviderWithFormat(format CSVColumnMapping) *CSVProvider {
	return &CSVProvider{format: format}
}

// GetName returns the name of the data provider.
func (p *CSVProvider) GetName() string {
	return "CSV Provider"
}

// LoadData loads historical candles from a CSV file. Malformed rows are
// skipped with a warning; a missing file is an error.
func (p *CSVProvider) LoadData(source string) ([]types.OHLCV, error) {
	file, err := os.Open(source)
	if err != nil {
		return nil, fmt.Errorf("open data file: %w", err)
	}
	defer file.Close()

	reader := csv.NewReader(file)

	// Skip header
	if _, err := reader.Read(); err != nil {
		return nil, fmt.Errorf("read CSV header: %w", err)
	}

	format := p.format
	var series []types.OHLCV

	lineNum := 1
	for {
		record, err := reader.Read()
		if err != nil {
			if err == io.EOF {
				break
			}
			return nil, fmt.Errorf("read CSV at line %d: %w", lineNum, err)
		}
		lineNum++

		if len(record) < format.MinColumns {
			logger.S().Warnf("insufficient columns at line %d (expected %d, got %d), skipping",
				lineNum, format.MinColumns, len(record))
			continue
		}

		timestamp, err := time.Parse(format.DateFormat, record[format.TimestampCol])
		if err != nil {
			logger.S().Warnf("invalid timestamp %q at line %d, skipping: %v",
				record[format.TimestampCol], lineNum, err)
			continue
		}

		open, err1 := strconv.ParseFloat(record[format.OpenCol], 64)
		high, err2 := strconv.ParseFloat(record[format.HighCol], 64)
		low, err3 := strconv.ParseFloat(record[format.LowCol], 64)
		closePrice, err4 := strconv.ParseFloat(record[format.CloseCol], 64)
		volume, err5 := strconv.ParseFloat(record[format.VolumeCol], 64)
		if err1 != nil || err2 != nil || err3 != nil || err4 != nil || err5 != nil {
			logger.S().Warnf("unparseable price data at line %d, skipping", lineNum)
			continue
		}

		if open <= 0 || high <= 0 || low <= 0 || closePrice <= 0 {
			logger.S().Warnf("non-positive price data at line %d, skipping", lineNum)
			continue
		}
		if high < open || high < closePrice || high < low {
			logger.S().Warnf("high below other prices at line %d, skipping", lineNum)
			continue
		}
		if low > open || low > closePrice {
			logger.S().Warnf("low above other prices at line %d, skipping", lineNum)
			continue
		}

		series = append(series, types.OHLCV{
			Timestamp: timestamp,
			Open:      open,
			High:      high,
			Low:       low,
			Close:     closePrice,
			Volume:    volume,
		})
	}

	return series, nil
}

// ValidateData validates the integrity of a loaded series.
func (p *CSVProvider) ValidateData(series []types.OHLCV) error {
	if len(series) == 0 {
		return fmt.Errorf("no data provided")
	}

	for i, candle := range series {
		if candle.Open <= 0 || candle.High <= 0 || candle.Low <= 0 || candle.Close <= 0 {
			return fmt.Errorf("invalid price data at index %d: prices must be positive", i)
		}
		if candle.High < candle.Low {
			return fmt.Errorf("invalid price data at index %d: high (%.4f) cannot be less than low (%.4f)",
				i, candle.High, candle.Low)
		}
		if i > 0 && candle.Timestamp.Before(series[i-1].Timestamp) {
			return fmt.Errorf("invalid timestamp sequence at index %d: timestamps must be in chronological order", i)
		}
	}

	return nil
}
