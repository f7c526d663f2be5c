package reporting

import (
	"fmt"
	"math"
	"os"
	"path/filepath"

	"github.com/xuri/excelize/v2"

	"github.com/altommo/crypto-grid-trader/internal/backtest"
)

// ExcelReporter writes backtest results as a workbook with a trade ledger
// sheet and a summary sheet.
type ExcelReporter struct{}

// NewExcelReporter creates a new Excel reporter.
func NewExcelReporter() *ExcelReporter {
	return &ExcelReporter{}
}

type excelStyles struct {
	Header   int
	Currency int
	Percent  int
	Base     int
}

// WriteResultsXLSX writes trades and summary metrics to an Excel file.
func (r *ExcelReporter) WriteResultsXLSX(results *backtest.Results, path string) error {
	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("create directory %s: %w", dir, err)
		}
	}

	fx := excelize.NewFile()
	defer fx.Close()

	const tradesSheet = "Trades"
	const summarySheet = "Summary"

	fx.SetSheetName(fx.GetSheetName(0), tradesSheet)
	if _, err := fx.NewSheet(summarySheet); err != nil {
		return err
	}

	styles, err := r.createStyles(fx)
	if err != nil {
		return err
	}

	if err := r.writeTradesSheet(fx, tradesSheet, results, styles); err != nil {
		return err
	}
	if err := r.writeSummarySheet(fx, summarySheet, results, styles); err != nil {
		return err
	}

	return fx.SaveAs(path)
}

func (r *ExcelReporter) createStyles(fx *excelize.File) (excelStyles, error) {
	var styles excelStyles
	var err error

	styles.Header, err = fx.NewStyle(&excelize.Style{
		Font: &excelize.Font{
			Bold:  true,
			Size:  11,
			Color: "FFFFFF",
		},
		Fill: excelize.Fill{
			Type:    "pattern",
			Color:   []string{"2F4F4F"},
			Pattern: 1,
		},
		Alignment: &excelize.Alignment{
			Horizontal: "center",
			Vertical:   "center",
		},
	})
	if err != nil {
		return styles, err
	}

	styles.Currency, err = fx.NewStyle(&excelize.Style{
		NumFmt: 7,
		Alignment: &excelize.Alignment{
			Horizontal: "right",
		},
	})
	if err != nil {
		return styles, err
	}

	styles.Percent, err = fx.NewStyle(&excelize.Style{
		NumFmt: 10,
		Alignment: &excelize.Alignment{
			Horizontal: "right",
		},
	})
	if err != nil {
		return styles, err
	}

	styles.Base, err = fx.NewStyle(&excelize.Style{
		Alignment: &excelize.Alignment{
			Horizontal: "left",
		},
	})
	return styles, err
}

func (r *ExcelReporter) writeTradesSheet(fx *excelize.File, sheet string, results *backtest.Results, styles excelStyles) error {
	headers := []string{"Timestamp", "Action", "Price", "Size", "Fees", "PnL", "Cumulative PnL"}
	for i, header := range headers {
		cell, err := excelize.CoordinatesToCellName(i+1, 1)
		if err != nil {
			return err
		}
		if err := fx.SetCellValue(sheet, cell, header); err != nil {
			return err
		}
		if err := fx.SetCellStyle(sheet, cell, cell, styles.Header); err != nil {
			return err
		}
	}

	for row, trade := range results.Trades {
		values := []interface{}{
			trade.Timestamp.UTC().Format("2006-01-02 15:04:05"),
			string(trade.Action),
			trade.Price,
			trade.Size,
			trade.Fees,
			trade.PnL,
			trade.CumulativePnL,
		}
		for col, value := range values {
			cell, err := excelize.CoordinatesToCellName(col+1, row+2)
			if err != nil {
				return err
			}
			if err := fx.SetCellValue(sheet, cell, value); err != nil {
				return err
			}
		}
	}

	if err := fx.SetColWidth(sheet, "A", "A", 22); err != nil {
		return err
	}
	return fx.SetColWidth(sheet, "B", "G", 14)
}

func (r *ExcelReporter) writeSummarySheet(fx *excelize.File, sheet string, results *backtest.Results, styles excelStyles) error {
	profitFactor := results.ProfitFactor
	if math.IsInf(profitFactor, 1) {
		profitFactor = 0
	}

	rows := []struct {
		label string
		value interface{}
		style int
	}{
		{"Initial Balance", results.StartBalance, styles.Currency},
		{"Final Balance", results.EndBalance, styles.Currency},
		{"Peak Balance", results.PeakBalance, styles.Currency},
		{"Total Return", results.TotalReturn, styles.Percent},
		{"Win Rate", results.WinRate, styles.Percent},
		{"Max Drawdown", results.MaxDrawdown, styles.Percent},
		{"Current Drawdown", results.CurrentDrawdown, styles.Percent},
		{"Sharpe Ratio", results.SharpeRatio, styles.Base},
		{"Profit Factor", profitFactor, styles.Base},
		{"Total Trades", results.TotalTrades, styles.Base},
		{"Winning Trades", results.WinningTrades, styles.Base},
		{"Losing Trades", results.LosingTrades, styles.Base},
		{"Trades Per Day", results.TradesPerDay, styles.Base},
	}

	for i, row := range rows {
		labelCell := fmt.Sprintf("A%d", i+1)
		valueCell := fmt.Sprintf("B%d", i+1)
		if err := fx.SetCellValue(sheet, labelCell, row.label); err != nil {
			return err
		}
		if err := fx.SetCellValue(sheet, valueCell, row.value); err != nil {
			return err
		}
		if err := fx.SetCellStyle(sheet, valueCell, valueCell, row.style); err != nil {
			return err
		}
	}

	return fx.SetColWidth(sheet, "A", "B", 20)
}
