// Package journal records pipeline runs: a SQLite history of every run and
// an Org-mode report for the latest one.
package journal

import (
	"context"
	"time"

	"github.com/rustyeddy/barlab/backtest"
	"github.com/rustyeddy/barlab/market"
)

// Run is everything one pipeline execution produced.
type Run struct {
	RunID   string
	Created time.Time
	Input   string
	Config  []byte // YAML of the effective config

	// Data range of the cleaned series
	Start time.Time
	End   time.Time

	// Aligner
	InputBars    int
	Duplicates   int
	OutOfSession int
	DaysSeen     int
	DaysKept     int
	Unfilled     int // leading gap minutes left without prices

	// Features and labels
	FeatureRows int
	Incomplete  int
	Up          int
	Down        int
	MergedRows  int

	// Backtest; Threshold is zero when no backtest ran
	Scored    bool
	Threshold float64
	Report    backtest.Report

	Rejections []market.Rejection
	Equity     []EquityPoint

	Notes []string
}

type EquityPoint struct {
	Time   time.Time
	PnL    float64
	Equity float64
}

// EquityFromPoints keeps the equity path of a backtest.
func EquityFromPoints(points []backtest.Point) []EquityPoint {
	out := make([]EquityPoint, len(points))
	for i, p := range points {
		out[i] = EquityPoint{Time: p.Time, PnL: p.PnL, Equity: p.Equity}
	}
	return out
}

type Journal interface {
	RecordRun(ctx context.Context, r Run) error
	Close() error
}
