package backtest

import (
	"fmt"
	"io"

	"github.com/olekukonko/tablewriter"
)

// PrintReport writes the risk report as a two-column table.
func PrintReport(w io.Writer, threshold float64, r Report) {
	fmt.Fprintln(w, "==================================================")
	fmt.Fprintln(w, " Backtest Result")
	fmt.Fprintln(w, "==================================================")
	fmt.Fprintf(w, "Decision threshold: %.2f   Bars: %d   Skipped: %d\n", threshold, r.Bars, r.Skipped)

	table := tablewriter.NewWriter(w)
	table.Header("Metric", "Value")
	table.Append("Total Trades", fmt.Sprintf("%d", r.Trades))
	table.Append("Wins", fmt.Sprintf("%d", r.Wins))
	table.Append("Losses", fmt.Sprintf("%d", r.Losses))
	table.Append("Win Rate", fmt.Sprintf("%.2f%%", r.WinRate*100))
	table.Append("Total PnL", fmt.Sprintf("%.2f", r.TotalPnL))
	table.Append("Avg PnL per Trade", fmt.Sprintf("%.4f", r.AvgPnL))
	if r.ProfitFactor > 0 {
		table.Append("Profit Factor", fmt.Sprintf("%.2f", r.ProfitFactor))
	}
	table.Append("Sharpe Ratio", fmt.Sprintf("%.4f", r.Sharpe))
	table.Append("Max Drawdown", fmt.Sprintf("%.2f", r.MaxDrawdown))
	table.Render()
}
