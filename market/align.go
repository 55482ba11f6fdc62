package market

import (
	"errors"
	"fmt"
	"math"
	"runtime"
	"sort"
	"time"

	"golang.org/x/sync/errgroup"
)

// ErrMalformed is returned for input that cannot be aligned at all.
var ErrMalformed = errors.New("malformed input")

// ReasonExcessMissing is the only reason a day is rejected.
const ReasonExcessMissing = "excess missing candles"

// DefaultMaxMissing is the number of missing grid minutes at which a day is dropped.
const DefaultMaxMissing = 10

type AlignConfig struct {
	Session    Session
	MaxMissing int // reject a day when missing >= MaxMissing
	Workers    int // 0 means GOMAXPROCS
}

// Day locates one trading day inside an AlignedSeries.
type Day struct {
	Date    Date
	Start   int // index of the first bar
	Len     int
	Missing int // grid minutes with no bar, filled or not
	Leading int // missing minutes before the day's first bar, left unfilled
}

// End returns the index one past the day's last bar.
func (d Day) End() int { return d.Start + d.Len }

type Rejection struct {
	Date    Date
	Missing int
	Reason  string
}

type AlignReport struct {
	InputBars    int
	Duplicates   int
	OutOfSession int
	DaysSeen     int
	DaysKept     int
	Unfilled     int // leading gap minutes across kept days
	Rejections   []Rejection
}

// AlignedSeries is a run of trading days, each reindexed onto the full
// session grid. Filled marks bars synthesized by forward fill. Gap marks
// the minutes before a day's first bar: they carry the grid time and NaN
// prices, since nothing earlier in the day can be carried forward.
type AlignedSeries struct {
	Session Session
	Bars    []Bar
	Filled  Bitset
	Gap     Bitset
	Days    []Day
}

func (s *AlignedSeries) Len() int { return len(s.Bars) }

// Valid reports whether bar i holds prices, observed or forward-filled.
func (s *AlignedSeries) Valid(i int) bool { return !s.Gap.Has(i) }

// Closes returns the close of every bar.
func (s *AlignedSeries) Closes() []float64 {
	out := make([]float64, len(s.Bars))
	for i, b := range s.Bars {
		out[i] = b.Close
	}
	return out
}

type dayResult struct {
	date     Date
	bars     []Bar
	filled   Bitset
	gap      Bitset
	missing  int
	leading  int
	outside  int
	rejected string
}

// Align normalizes, sorts and deduplicates raw bars, then rebuilds every
// trading day on the session grid. Days with too many missing minutes are
// rejected and reported. An empty result is not an error.
func Align(bars []Bar, cfg AlignConfig) (*AlignedSeries, AlignReport, error) {
	if cfg.Session.Location == nil {
		cfg.Session = NYSE()
	}
	if cfg.MaxMissing <= 0 {
		cfg.MaxMissing = DefaultMaxMissing
	}
	workers := cfg.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}

	rep := AlignReport{InputBars: len(bars)}
	loc := cfg.Session.Location

	sorted := make([]Bar, 0, len(bars))
	for _, b := range bars {
		if err := b.check(); err != nil {
			return nil, rep, err
		}
		b.Time = b.Time.In(loc)
		sorted = append(sorted, b)
	}
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Time.Before(sorted[j].Time)
	})

	// keep-first policy (ignore later duplicates)
	uniq := sorted[:0]
	for i, b := range sorted {
		if i > 0 && b.Time.Equal(uniq[len(uniq)-1].Time) {
			rep.Duplicates++
			continue
		}
		uniq = append(uniq, b)
	}
	if err := checkMonotonic(uniq); err != nil {
		return nil, rep, err
	}

	groups := partitionDays(uniq, loc)
	rep.DaysSeen = len(groups)

	results := make([]dayResult, len(groups))
	var g errgroup.Group
	g.SetLimit(workers)
	for i, grp := range groups {
		g.Go(func() error {
			results[i] = alignDay(cfg.Session, cfg.MaxMissing, grp)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, rep, err
	}

	out := &AlignedSeries{Session: cfg.Session}
	n := cfg.Session.Minutes()
	for _, r := range results {
		rep.OutOfSession += r.outside
		if r.rejected != "" {
			rep.Rejections = append(rep.Rejections, Rejection{Date: r.date, Missing: r.missing, Reason: r.rejected})
			continue
		}
		out.Days = append(out.Days, Day{Date: r.date, Start: len(out.Bars), Len: n, Missing: r.missing, Leading: r.leading})
		out.Bars = append(out.Bars, r.bars...)
		rep.Unfilled += r.leading
	}
	rep.DaysKept = len(out.Days)

	out.Filled = newBitset(len(out.Bars))
	out.Gap = newBitset(len(out.Bars))
	k := 0
	for _, r := range results {
		if r.rejected != "" {
			continue
		}
		for i := 0; i < n; i++ {
			if r.filled.Has(i) {
				out.Filled.set(k*n + i)
			}
			if r.gap.Has(i) {
				out.Gap.set(k*n + i)
			}
		}
		k++
	}

	return out, rep, nil
}

func checkMonotonic(bars []Bar) error {
	for i := 1; i < len(bars); i++ {
		if !bars[i].Time.After(bars[i-1].Time) {
			return fmt.Errorf("%w: timestamps not strictly increasing at %s",
				ErrMalformed, bars[i].Time.Format(time.RFC3339))
		}
	}
	return nil
}

type dayGroup struct {
	date Date
	bars []Bar
}

// partitionDays splits sorted bars into runs sharing a local calendar date.
func partitionDays(bars []Bar, loc *time.Location) []dayGroup {
	var groups []dayGroup
	for i := 0; i < len(bars); {
		d := DateOf(bars[i].Time, loc)
		j := i + 1
		for j < len(bars) && DateOf(bars[j].Time, loc) == d {
			j++
		}
		groups = append(groups, dayGroup{date: d, bars: bars[i:j]})
		i = j
	}
	return groups
}

func alignDay(s Session, maxMissing int, grp dayGroup) dayResult {
	n := s.Minutes()
	res := dayResult{date: grp.date}

	grid := make([]Bar, n)
	valid := newBitset(n)
	for _, b := range grp.bars {
		idx, ok := s.Index(b.Time)
		if !ok {
			res.outside++
			continue
		}
		grid[idx] = b
		valid.set(idx)
	}

	res.missing = n - valid.Count(n)
	if res.missing >= maxMissing || res.missing == n {
		res.rejected = ReasonExcessMissing
		return res
	}

	start := s.Grid(grp.date)
	res.filled = newBitset(n)
	res.gap = newBitset(n)
	for i := 0; i < n; i++ {
		switch {
		case valid.Has(i):
		case i == res.leading:
			// nothing earlier in the day to carry forward
			grid[i] = gapBar()
			res.gap.set(i)
			res.leading++
		default:
			grid[i] = grid[i-1]
			res.filled.set(i)
		}
		grid[i].Time = start.Add(time.Duration(i) * time.Minute)
	}
	res.bars = grid
	return res
}

func gapBar() Bar {
	nan := math.NaN()
	return Bar{Open: nan, High: nan, Low: nan, Close: nan, Volume: nan, VWAP: nan}
}
