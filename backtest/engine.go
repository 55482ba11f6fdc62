// Package backtest evaluates a long/flat probability-threshold rule
// against realized next-bar price moves.
package backtest

import (
	"math"
	"time"
)

// DefaultThreshold is the probability above which the signal goes long.
const DefaultThreshold = 0.4

// Observation is one scored bar. NextClose is the close of the following
// bar of the same trading day, NaN when there is none.
type Observation struct {
	Time      time.Time
	Close     float64
	NextClose float64
	Proba     float64
}

// Point is the per-bar outcome of the rule.
type Point struct {
	Time       time.Time
	Proba      float64
	Signal     int
	ActualMove float64
	PnL        float64
	Equity     float64
}

type Result struct {
	Threshold float64
	Points    []Point
	Report    Report
}

// Signal is 1 when proba is strictly above threshold.
func Signal(proba, threshold float64) int {
	if proba > threshold {
		return 1
	}
	return 0
}

// Run walks the observations once, computing signal, absolute next-bar
// move, PnL and the running equity curve. Observations without a next
// close are skipped and counted.
func Run(obs []Observation, threshold float64) Result {
	res := Result{Threshold: threshold}

	var (
		equity  float64
		skipped int
	)
	for _, o := range obs {
		if math.IsNaN(o.NextClose) {
			skipped++
			continue
		}
		sig := Signal(o.Proba, threshold)
		move := o.NextClose - o.Close
		pnl := float64(sig) * move
		equity += pnl

		res.Points = append(res.Points, Point{
			Time:       o.Time,
			Proba:      o.Proba,
			Signal:     sig,
			ActualMove: move,
			PnL:        pnl,
			Equity:     equity,
		})
	}

	res.Report = Summarize(res.Points)
	res.Report.Skipped = skipped
	return res
}
