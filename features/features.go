// Package features turns an aligned minute series into a table of causal
// technical features. A value at bar t only ever depends on bars <= t.
package features

import (
	"fmt"
	"math"
	"runtime"

	"github.com/rustyeddy/barlab/indicators"
	"github.com/rustyeddy/barlab/market"
	"golang.org/x/sync/errgroup"
)

type Config struct {
	Returns      []int `json:"returns" yaml:"returns"`
	SMA          []int `json:"sma" yaml:"sma"`
	EMA          []int `json:"ema" yaml:"ema"`
	RSIPeriod    int   `json:"rsi" yaml:"rsi"`
	VolumeWindow int   `json:"volume" yaml:"volume"`

	// Extended adds body and vol_spike.
	Extended bool `json:"extended" yaml:"extended"`

	// ResetDaily restarts every indicator at the first bar of each day.
	ResetDaily bool `json:"reset_daily" yaml:"reset_daily"`
}

func DefaultConfig() Config {
	return Config{
		Returns:      []int{1, 3, 5},
		SMA:          []int{5, 10},
		EMA:          []int{5, 10},
		RSIPeriod:    14,
		VolumeWindow: 10,
		Extended:     true,
	}
}

// Validate checks every window length.
func (c Config) Validate() error {
	check := func(what string, ns []int) error {
		for _, n := range ns {
			if n <= 0 {
				return fmt.Errorf("features.%s: window %d must be positive", what, n)
			}
		}
		return nil
	}
	if err := check("returns", c.Returns); err != nil {
		return err
	}
	if err := check("sma", c.SMA); err != nil {
		return err
	}
	if err := check("ema", c.EMA); err != nil {
		return err
	}
	if c.RSIPeriod <= 0 {
		return fmt.Errorf("features.rsi must be positive")
	}
	if c.VolumeWindow <= 0 {
		return fmt.Errorf("features.volume must be positive")
	}
	return nil
}

// Indicators builds a fresh indicator per output column, in column order.
func (c Config) Indicators() []indicators.Indicator {
	var out []indicators.Indicator
	for _, k := range c.Returns {
		out = append(out, indicators.NewReturn(k))
	}
	for _, w := range c.SMA {
		out = append(out, indicators.NewSMA(w))
	}
	for _, w := range c.EMA {
		out = append(out, indicators.NewEMA(w))
	}
	out = append(out, indicators.NewRSI(c.RSIPeriod))
	if c.Extended {
		out = append(out, indicators.NewBody())
	}
	out = append(out,
		indicators.NewRange(),
		indicators.NewVWAPDiff(),
		indicators.NewMean(fmt.Sprintf("volume_sma_%d", c.VolumeWindow), c.VolumeWindow, indicators.Volume),
	)
	if c.Extended {
		out = append(out, indicators.NewVolumeSpike(c.VolumeWindow))
	}
	return out
}

// Columns lists the output column names.
func (c Config) Columns() []string {
	inds := c.Indicators()
	names := make([]string, len(inds))
	for i, ind := range inds {
		names[i] = ind.Name()
	}
	return names
}

// BaseColumns lists the output columns without the extended ones.
func (c Config) BaseColumns() []string {
	c.Extended = false
	return c.Columns()
}

// Row is one complete feature vector.
type Row struct {
	Index  int // position in the aligned series
	Bar    market.Bar
	Values []float64
}

type Table struct {
	Columns []string
	Rows    []Row
}

// Column returns the position of a named column.
func (t *Table) Column(name string) (int, bool) {
	for i, c := range t.Columns {
		if c == name {
			return i, true
		}
	}
	return 0, false
}

type Report struct {
	Bars       int
	Emitted    int
	Incomplete int // rows dropped for insufficient history or undefined values
	Unfilled   int // leading gap rows, never fed to the indicators
}

// Compute runs every configured indicator over the series and keeps the
// rows where all of them have a value.
func Compute(s *market.AlignedSeries, cfg Config) (*Table, Report, error) {
	if err := cfg.Validate(); err != nil {
		return nil, Report{}, err
	}

	inds := cfg.Indicators()
	tbl := &Table{Columns: make([]string, len(inds))}
	for i, ind := range inds {
		tbl.Columns[i] = ind.Name()
	}

	n := s.Len()
	rep := Report{Bars: n}
	if n == 0 {
		return tbl, rep, nil
	}

	dayStart := make([]bool, n)
	for _, d := range s.Days {
		dayStart[d.Start] = true
	}

	cols := make([][]float64, len(inds))
	var g errgroup.Group
	g.SetLimit(runtime.GOMAXPROCS(0))
	for i, ind := range inds {
		g.Go(func() error {
			col := make([]float64, n)
			for t, b := range s.Bars {
				if cfg.ResetDaily && dayStart[t] {
					ind.Reset()
				}
				if !s.Valid(t) {
					col[t] = math.NaN()
					continue
				}
				ind.Update(b)
				col[t] = ind.Value()
			}
			cols[i] = col
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, rep, err
	}

	for t, b := range s.Bars {
		if !s.Valid(t) {
			rep.Unfilled++
			continue
		}
		vals := make([]float64, len(cols))
		complete := true
		for c := range cols {
			v := cols[c][t]
			if math.IsNaN(v) || math.IsInf(v, 0) {
				complete = false
				break
			}
			vals[c] = v
		}
		if !complete {
			rep.Incomplete++
			continue
		}
		tbl.Rows = append(tbl.Rows, Row{Index: t, Bar: b, Values: vals})
	}
	rep.Emitted = len(tbl.Rows)

	return tbl, rep, nil
}
