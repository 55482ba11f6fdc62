package pipeline

import (
	"fmt"
	"io"

	"github.com/olekukonko/tablewriter"

	"github.com/rustyeddy/barlab/labels"
	"github.com/rustyeddy/barlab/market"
)

// PrintAlign writes the cleaning summary and one row per rejected day.
func PrintAlign(w io.Writer, rep market.AlignReport) {
	fmt.Fprintf(w, "Input bars: %d   Duplicates: %d   Out of session: %d\n",
		rep.InputBars, rep.Duplicates, rep.OutOfSession)
	fmt.Fprintf(w, "Days: %d seen, %d kept, %d rejected   Unfilled opening minutes: %d\n",
		rep.DaysSeen, rep.DaysKept, len(rep.Rejections), rep.Unfilled)
	if len(rep.Rejections) == 0 {
		return
	}

	table := tablewriter.NewWriter(w)
	table.Header("Date", "Missing", "Reason")
	for _, r := range rep.Rejections {
		table.Append(r.Date.String(), fmt.Sprintf("%d", r.Missing), r.Reason)
	}
	table.Render()
}

// PrintBalance writes the label class distribution.
func PrintBalance(w io.Writer, b labels.Balance) {
	table := tablewriter.NewWriter(w)
	table.Header("Label", "Count", "Share")
	table.Append("1 (up)", fmt.Sprintf("%d", b.Up), fmt.Sprintf("%.2f%%", b.UpPct()))
	table.Append("0 (down/flat)", fmt.Sprintf("%d", b.Down), fmt.Sprintf("%.2f%%", b.DownPct()))
	table.Render()
}
