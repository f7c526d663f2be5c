package reporting

import (
	"fmt"
	"math"
	"os"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"github.com/altommo/crypto-grid-trader/internal/backtest"
)

// ConsoleReporter prints backtest and optimization output to stdout.
type ConsoleReporter struct{}

// NewConsoleReporter creates a console reporter.
func NewConsoleReporter() *ConsoleReporter {
	return &ConsoleReporter{}
}

// OutputResults prints a single run's metrics.
func (r *ConsoleReporter) OutputResults(results *backtest.Results) {
	fmt.Println("\n" + strings.Repeat("=", 50))
	fmt.Println("BACKTEST RESULTS")
	fmt.Println(strings.Repeat("=", 50))

	fmt.Printf("Initial Balance:    $%.2f\n", results.StartBalance)
	fmt.Printf("Final Balance:      $%.2f\n", results.EndBalance)
	fmt.Printf("Peak Balance:       $%.2f\n", results.PeakBalance)
	fmt.Printf("Total Return:       %.4f%%\n", results.TotalReturn*100)
	fmt.Printf("Max Drawdown:       %.2f%%\n", results.MaxDrawdown*100)
	fmt.Printf("Current Drawdown:   %.2f%%\n", results.CurrentDrawdown*100)
	fmt.Printf("Sharpe Ratio:       %.2f\n", results.SharpeRatio)
	if math.IsInf(results.ProfitFactor, 1) {
		fmt.Printf("Profit Factor:      inf\n")
	} else {
		fmt.Printf("Profit Factor:      %.2f\n", results.ProfitFactor)
	}
	fmt.Printf("Win Rate:           %.1f%%\n", results.WinRate*100)
	fmt.Printf("Total Trades:       %d (%d wins / %d losses)\n",
		results.TotalTrades, results.WinningTrades, results.LosingTrades)
	fmt.Printf("Trades Per Day:     %.2f\n", results.TradesPerDay)
}

// OutputRanking prints the top optimizer evaluations as a table.
func (r *ConsoleReporter) OutputRanking(evaluations []backtest.Evaluation, top int) {
	if top <= 0 || top > len(evaluations) {
		top = len(evaluations)
	}

	t := table.NewWriter()
	t.SetOutputMirror(os.Stdout)
	t.AppendHeader(table.Row{
		"#", "Score", "Grid", "Spacing", "Size", "RSI OS", "RSI OB", "Return", "Win Rate", "Max DD", "Trades",
	})

	for i := 0; i < top; i++ {
		eval := evaluations[i]
		t.AppendRow(table.Row{
			i + 1,
			fmt.Sprintf("%.4f", eval.Score),
			eval.Config.GridSize,
			fmt.Sprintf("%.3f%%", eval.Config.GridSpacing*100),
			eval.Config.PositionSize,
			eval.Config.RSIOversold,
			eval.Config.RSIOverbought,
			fmt.Sprintf("%.2f%%", eval.Results.TotalReturn*100),
			fmt.Sprintf("%.1f%%", eval.Results.WinRate*100),
			fmt.Sprintf("%.2f%%", eval.Results.MaxDrawdown*100),
			eval.Results.TotalTrades,
		})
	}

	t.SetColumnConfigs([]table.ColumnConfig{
		{Number: 2, Align: text.AlignRight},
		{Number: 8, Align: text.AlignRight},
		{Number: 9, Align: text.AlignRight},
		{Number: 10, Align: text.AlignRight},
		{Number: 11, Align: text.AlignRight},
	})
	t.SetStyle(table.StyleLight)
	t.Render()
}

// OutputRobustness prints a robustness report.
func (r *ConsoleReporter) OutputRobustness(report *backtest.RobustnessReport) {
	fmt.Println("\nROBUSTNESS CHECK")
	fmt.Printf("Windows:         %d\n", report.Windows)
	fmt.Printf("Return:          %.2f%% ± %.2f%%\n", report.ReturnMean*100, report.ReturnStdDev*100)
	fmt.Printf("Win Rate:        %.1f%% ± %.1f%%\n", report.WinRateMean*100, report.WinRateStdDev*100)
	fmt.Printf("Stability Score: %.3f\n", report.StabilityScore)
}
