// Package dataset moves tables between stages and disk. A Frame is a time
// column plus any number of named float64 columns; missing values are NaN.
package dataset

import (
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/rustyeddy/barlab/market"
)

// ErrMissingColumn is returned when a required column is absent.
var ErrMissingColumn = errors.New("missing column")

// TimeColumn is the name written for the time column.
const TimeColumn = "date"

var timeAliases = []string{"date", "timestamp", "time", "t"}

var barAliases = map[string][]string{
	"open":   {"open", "o"},
	"high":   {"high", "h"},
	"low":    {"low", "l"},
	"close":  {"close", "c"},
	"volume": {"volume", "v"},
	"vwap":   {"vwap", "vw"},
}

// BarColumns is the column order used when writing bars.
var BarColumns = []string{"open", "high", "low", "close", "volume", "vwap"}

type Frame struct {
	Columns []string
	Times   []time.Time
	Values  [][]float64 // row major, len(Values[i]) == len(Columns)

	// Optional string columns, written after the numeric ones.
	TextColumns []string
	Text        [][]string
}

func NewFrame(columns ...string) *Frame {
	return &Frame{Columns: append([]string(nil), columns...)}
}

func (f *Frame) Len() int { return len(f.Times) }

// Append adds one row. It panics when the row width does not match.
func (f *Frame) Append(t time.Time, values ...float64) {
	if len(values) != len(f.Columns) {
		panic(fmt.Sprintf("dataset: row has %d values, frame has %d columns", len(values), len(f.Columns)))
	}
	f.Times = append(f.Times, t)
	f.Values = append(f.Values, values)
}

// AppendText adds one row to a frame with text columns.
func (f *Frame) AppendText(t time.Time, values []float64, text []string) {
	if len(text) != len(f.TextColumns) {
		panic(fmt.Sprintf("dataset: row has %d text values, frame has %d text columns", len(text), len(f.TextColumns)))
	}
	f.Append(t, values...)
	f.Text = append(f.Text, text)
}

func (f *Frame) textRow(r int) []string {
	if len(f.TextColumns) == 0 {
		return nil
	}
	return f.Text[r]
}

// TextColumn returns the index of the named text column.
func (f *Frame) TextColumn(name string) (int, bool) {
	for i, c := range f.TextColumns {
		if strings.EqualFold(c, name) {
			return i, true
		}
	}
	return -1, false
}

// Column returns the index of the named column, case-insensitively.
func (f *Frame) Column(name string) (int, bool) {
	for i, c := range f.Columns {
		if strings.EqualFold(c, name) {
			return i, true
		}
	}
	return -1, false
}

// MustColumn is Column with an ErrMissingColumn error.
func (f *Frame) MustColumn(name string) (int, error) {
	i, ok := f.Column(name)
	if !ok {
		return -1, fmt.Errorf("%w %q (have %s)", ErrMissingColumn, name, strings.Join(f.Columns, ","))
	}
	return i, nil
}

func (f *Frame) lookup(aliases []string) (int, bool) {
	for _, a := range aliases {
		if i, ok := f.Column(a); ok {
			return i, true
		}
	}
	return -1, false
}

// BarsFromFrame converts a price table to bars. open, high, low and close
// are required; a missing volume column reads as zero volume and a missing
// vwap column falls back to the close.
func BarsFromFrame(f *Frame) ([]market.Bar, error) {
	idx := map[string]int{}
	for _, name := range []string{"open", "high", "low", "close"} {
		i, ok := f.lookup(barAliases[name])
		if !ok {
			return nil, fmt.Errorf("%w %q (have %s)", ErrMissingColumn, name, strings.Join(f.Columns, ","))
		}
		idx[name] = i
	}
	vol, hasVol := f.lookup(barAliases["volume"])
	vwap, hasVWAP := f.lookup(barAliases["vwap"])

	bars := make([]market.Bar, 0, f.Len())
	for r, t := range f.Times {
		row := f.Values[r]
		b := market.Bar{
			Time:  t,
			Open:  row[idx["open"]],
			High:  row[idx["high"]],
			Low:   row[idx["low"]],
			Close: row[idx["close"]],
		}
		if hasVol {
			b.Volume = row[vol]
		}
		b.VWAP = b.Close
		if hasVWAP && !math.IsNaN(row[vwap]) {
			b.VWAP = row[vwap]
		}
		bars = append(bars, b)
	}
	return bars, nil
}

// FrameFromBars is the inverse of BarsFromFrame.
func FrameFromBars(bars []market.Bar) *Frame {
	f := NewFrame(BarColumns...)
	for _, b := range bars {
		f.Append(b.Time, b.Open, b.High, b.Low, b.Close, b.Volume, b.VWAP)
	}
	return f
}

// FrameFromSeries writes the cleaned series with a trailing "filled" flag
// marking forward-filled minutes. Leading gap minutes have no prices and
// are left out.
func FrameFromSeries(s *market.AlignedSeries) *Frame {
	f := NewFrame(append(append([]string(nil), BarColumns...), "filled")...)
	for i, b := range s.Bars {
		if !s.Valid(i) {
			continue
		}
		filled := 0.0
		if s.Filled.Has(i) {
			filled = 1
		}
		f.Append(b.Time, b.Open, b.High, b.Low, b.Close, b.Volume, b.VWAP, filled)
	}
	return f
}
