package journal

import (
	"fmt"
	"io"
	"os"
	"text/template"
)

var orgFuncs = template.FuncMap{
	"pct": func(x float64) float64 { return x * 100.0 },
	"day": func(r Run) string {
		if r.Start.IsZero() {
			return "(no data)"
		}
		return r.Start.Format("2006-01-02") + " .. " + r.End.Format("2006-01-02")
	},
}

var orgTemplate = template.Must(template.New("run").Funcs(orgFuncs).Parse(OrgTemplate))

// WriteOrg renders the run report. The run id and creation time are left
// out so identical inputs render identical reports.
func WriteOrg(w io.Writer, r Run) error {
	return orgTemplate.Execute(w, r)
}

// WriteOrgFile renders the report to path, replacing any previous file.
func WriteOrgFile(path string, r Run) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	if err := WriteOrg(f, r); err != nil {
		return fmt.Errorf("render %s: %w", path, err)
	}
	return f.Close()
}

const OrgTemplate = `* RUN: {{if .Input}}{{.Input}}{{else}}(input?){{end}}
:PROPERTIES:
:RANGE:       {{day .}}
:INPUT_BARS:  {{.InputBars}}
:DAYS_SEEN:   {{.DaysSeen}}
:DAYS_KEPT:   {{.DaysKept}}
:ROWS:        {{.MergedRows}}
{{- if .Scored}}
:THRESHOLD:   {{printf "%.2f" .Threshold}}
:TRADES:      {{.Report.Trades}}
:WIN_RATE:    {{printf "%.2f" (pct .Report.WinRate)}}
:TOTAL_PNL:   {{printf "%.4f" .Report.TotalPnL}}
:SHARPE:      {{printf "%.4f" .Report.Sharpe}}
:MAX_DD:      {{printf "%.4f" .Report.MaxDrawdown}}
{{- end}}
:END:

** Cleaning
| Metric         | Value |
|----------------+-------|
| Input bars     | {{.InputBars}} |
| Duplicates     | {{.Duplicates}} |
| Out of session | {{.OutOfSession}} |
| Days seen      | {{.DaysSeen}} |
| Days kept      | {{.DaysKept}} |
| Days rejected  | {{len .Rejections}} |
| Unfilled mins  | {{.Unfilled}} |
{{- if .Rejections}}

*** Rejected Days
| Date | Missing | Reason |
|------+---------+--------|
{{- range .Rejections}}
| {{.Date}} | {{.Missing}} | {{.Reason}} |
{{- end}}
{{- end}}

** Features and Labels
| Metric           | Value |
|------------------+-------|
| Feature rows     | {{.FeatureRows}} |
| Incomplete rows  | {{.Incomplete}} |
| Up labels        | {{.Up}} |
| Down labels      | {{.Down}} |
| Merged rows      | {{.MergedRows}} |

** Backtest
{{- if .Scored}}
| Metric            | Value |
|-------------------+-------|
| Bars              | {{.Report.Bars}} |
| Skipped           | {{.Report.Skipped}} |
| Trades            | {{.Report.Trades}} |
| Wins              | {{.Report.Wins}} |
| Losses            | {{.Report.Losses}} |
| Win Rate %        | {{printf "%.2f" (pct .Report.WinRate)}} |
| Total PnL         | {{printf "%.4f" .Report.TotalPnL}} |
| Avg PnL per Trade | {{printf "%.4f" .Report.AvgPnL}} |
| Gross Profit      | {{printf "%.4f" .Report.GrossProfit}} |
| Gross Loss        | {{printf "%.4f" .Report.GrossLoss}} |
| Profit Factor     | {{printf "%.2f" .Report.ProfitFactor}} |
| Sharpe Ratio      | {{printf "%.4f" .Report.Sharpe}} |
| Max Drawdown      | {{printf "%.4f" .Report.MaxDrawdown}} |
{{- else}}
No probabilities available; backtest skipped.
{{- end}}
{{- if .Notes}}

** Observations
{{- range .Notes}}
- {{.}}
{{- end}}
{{- end}}
`
