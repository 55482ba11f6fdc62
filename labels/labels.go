// Package labels derives the supervised target: did the next bar of the
// same trading day close meaningfully higher?
package labels

import (
	"time"

	"github.com/rustyeddy/barlab/market"
)

// DefaultThreshold is the forward return a bar must exceed to be labeled up.
const DefaultThreshold = 0.0002

type Row struct {
	Index         int // position in the aligned series
	Time          time.Time
	Label         int
	ForwardReturn float64
	NextClose     float64
}

// Balance is the class distribution of a labeled run.
type Balance struct {
	Up   int
	Down int
	// Dropped counts the last bar of every day, which has no next bar.
	Dropped int
	// Unfilled counts bars skipped because they or their next bar sit in
	// a day's leading gap.
	Unfilled int
}

func (b Balance) Total() int { return b.Up + b.Down }

func (b Balance) UpPct() float64 {
	if b.Total() == 0 {
		return 0
	}
	return float64(b.Up) / float64(b.Total()) * 100
}

func (b Balance) DownPct() float64 {
	if b.Total() == 0 {
		return 0
	}
	return float64(b.Down) / float64(b.Total()) * 100
}

// Label computes a binary forward-return label for every bar except the
// last of each day. The next bar always comes from the full aligned series
// and never from the following day. Bars without prices are skipped.
func Label(s *market.AlignedSeries, threshold float64) ([]Row, Balance) {
	var (
		out []Row
		bal Balance
	)
	for _, d := range s.Days {
		for t := d.Start; t < d.End()-1; t++ {
			if !s.Valid(t) || !s.Valid(t+1) {
				bal.Unfilled++
				continue
			}
			cur, next := s.Bars[t], s.Bars[t+1]
			fr := (next.Close - cur.Close) / cur.Close

			row := Row{Index: t, Time: cur.Time, ForwardReturn: fr, NextClose: next.Close}
			if fr > threshold {
				row.Label = 1
				bal.Up++
			} else {
				bal.Down++
			}
			out = append(out, row)
		}
		if d.Len > 0 {
			bal.Dropped++
		}
	}
	return out, bal
}
