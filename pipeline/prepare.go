// Package pipeline chains the stages: align, features and labels, scoring,
// backtest. Each stage is a pure function of its inputs; Run adds the
// file outputs, logging and the journal.
package pipeline

import (
	"fmt"
	"math"
	"time"

	"github.com/rustyeddy/barlab/config"
	"github.com/rustyeddy/barlab/dataset"
	"github.com/rustyeddy/barlab/features"
	"github.com/rustyeddy/barlab/labels"
	"github.com/rustyeddy/barlab/market"
)

// Columns appended to the merged table.
const (
	LabelColumn         = "label"
	ForwardReturnColumn = "forward_return"
	NextCloseColumn     = "next_close"
)

// Prepared holds every stage output up to the merged feature+label table.
type Prepared struct {
	Series        *market.AlignedSeries
	Align         market.AlignReport
	Features      *features.Table
	FeatureReport features.Report
	Labels        []labels.Row
	Balance       labels.Balance
	Table         *dataset.Frame
}

// Clean aligns raw bars onto the session grid.
func Clean(bars []market.Bar, cfg *config.Config) (*market.AlignedSeries, market.AlignReport, error) {
	ac, err := cfg.AlignConfig()
	if err != nil {
		return nil, market.AlignReport{}, err
	}
	return market.Align(bars, ac)
}

// Prepare runs the aligner, then the feature engine and the labeler on the
// aligned series, and joins their outputs.
func Prepare(bars []market.Bar, cfg *config.Config) (*Prepared, error) {
	series, rep, err := Clean(bars, cfg)
	if err != nil {
		return nil, fmt.Errorf("align: %w", err)
	}
	p := &Prepared{Series: series, Align: rep}

	p.Features, p.FeatureReport, err = features.Compute(series, cfg.Features)
	if err != nil {
		return nil, fmt.Errorf("features: %w", err)
	}
	p.Labels, p.Balance = labels.Label(series, cfg.Labels.Threshold)
	p.Table = Merge(p.Features, p.Labels)
	return p, nil
}

// Merge keeps the bars present in both inputs, joined on their position in
// the aligned series. Both inputs are ordered by index.
func Merge(ft *features.Table, rows []labels.Row) *dataset.Frame {
	cols := append([]string(nil), dataset.BarColumns...)
	cols = append(cols, ft.Columns...)
	cols = append(cols, LabelColumn, ForwardReturnColumn, NextCloseColumn)
	f := dataset.NewFrame(cols...)

	i, j := 0, 0
	for i < len(ft.Rows) && j < len(rows) {
		fr, lr := ft.Rows[i], rows[j]
		switch {
		case fr.Index < lr.Index:
			i++
		case fr.Index > lr.Index:
			j++
		default:
			b := fr.Bar
			vals := make([]float64, 0, len(cols))
			vals = append(vals, b.Open, b.High, b.Low, b.Close, b.Volume, b.VWAP)
			vals = append(vals, fr.Values...)
			vals = append(vals, float64(lr.Label), lr.ForwardReturn, lr.NextClose)
			f.Append(b.Time, vals...)
			i++
			j++
		}
	}
	return f
}

// LabelFrame is the labeler output on its own.
func LabelFrame(s *market.AlignedSeries, rows []labels.Row) *dataset.Frame {
	f := dataset.NewFrame("close", LabelColumn, ForwardReturnColumn, NextCloseColumn)
	for _, r := range rows {
		f.Append(r.Time, s.Bars[r.Index].Close, float64(r.Label), r.ForwardReturn, r.NextClose)
	}
	return f
}

// RejectionsFrame lists rejected days, stamped at their session open.
func RejectionsFrame(sess market.Session, rejs []market.Rejection) *dataset.Frame {
	f := dataset.NewFrame("missing")
	f.TextColumns = []string{"reason"}
	for _, r := range rejs {
		f.AppendText(sess.Grid(r.Date), []float64{float64(r.Missing)}, []string{r.Reason})
	}
	return f
}

// nextCloses returns the next_close column, or derives it for tables
// without one: the following row's close when that row is the very next
// minute, NaN otherwise.
func nextCloses(f *dataset.Frame) ([]float64, error) {
	out := make([]float64, f.Len())
	if nc, ok := f.Column(NextCloseColumn); ok {
		for r := range out {
			out[r] = f.Values[r][nc]
		}
		return out, nil
	}
	c, err := f.MustColumn("close")
	if err != nil {
		return nil, err
	}
	for r := range out {
		out[r] = math.NaN()
		if r+1 < f.Len() && f.Times[r+1].Sub(f.Times[r]) == time.Minute {
			out[r] = f.Values[r+1][c]
		}
	}
	return out, nil
}
