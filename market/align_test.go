package market

import (
	"errors"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var nyse = NYSE()

// day builds a full session of bars on the given date, skipping the grid
// rows listed in skip.
func day(t *testing.T, y int, m time.Month, d int, skip ...int) []Bar {
	t.Helper()

	omit := map[int]bool{}
	for _, i := range skip {
		omit[i] = true
	}

	start := nyse.Grid(Date{y, m, d})
	var bars []Bar
	for i := 0; i < nyse.Minutes(); i++ {
		if omit[i] {
			continue
		}
		px := 100 + float64(i)*0.01
		bars = append(bars, Bar{
			Time:   start.Add(time.Duration(i) * time.Minute),
			Open:   px,
			High:   px + 0.05,
			Low:    px - 0.05,
			Close:  px + 0.01,
			Volume: float64(1000 + i),
			VWAP:   px,
		})
	}
	return bars
}

func align(t *testing.T, bars []Bar) (*AlignedSeries, AlignReport) {
	t.Helper()
	s, rep, err := Align(bars, AlignConfig{Session: nyse, MaxMissing: 10, Workers: 2})
	require.NoError(t, err)
	return s, rep
}

func TestSessionMinutes(t *testing.T) {
	assert.Equal(t, 390, nyse.Minutes())

	s, err := NewSession("America/New_York", "09:30", "09:39")
	require.NoError(t, err)
	assert.Equal(t, 10, s.Minutes())

	_, err = NewSession("America/New_York", "16:00", "09:30")
	assert.Error(t, err)
	_, err = NewSession("Mars/Olympus", "09:30", "16:00")
	assert.Error(t, err)
	_, err = NewSession("America/New_York", "9h30", "16:00")
	assert.Error(t, err)
}

func TestAlignGridCompleteness(t *testing.T) {
	bars := append(day(t, 2024, 3, 5, 17, 200), day(t, 2024, 3, 4, 3)...)
	s, rep := align(t, bars)

	require.Len(t, s.Days, 2)
	assert.Equal(t, 2*390, s.Len())
	assert.Equal(t, 2, rep.DaysKept)
	assert.Empty(t, rep.Rejections)

	assert.Equal(t, Date{2024, 3, 4}, s.Days[0].Date)
	assert.Equal(t, Date{2024, 3, 5}, s.Days[1].Date)

	for _, d := range s.Days {
		assert.Equal(t, 390, d.Len)
		first := s.Bars[d.Start].Time
		assert.Equal(t, 9, first.Hour())
		assert.Equal(t, 30, first.Minute())
		last := s.Bars[d.End()-1].Time
		assert.Equal(t, 15, last.Hour())
		assert.Equal(t, 59, last.Minute())
		for i := d.Start + 1; i < d.End(); i++ {
			assert.Equal(t, time.Minute, s.Bars[i].Time.Sub(s.Bars[i-1].Time))
		}
	}
}

func TestAlignRejectionThreshold(t *testing.T) {
	nine := []int{5, 6, 7, 8, 9, 10, 11, 12, 13}
	ten := append([]int{100}, nine...)

	t.Run("threshold-1 missing is kept", func(t *testing.T) {
		s, rep := align(t, day(t, 2024, 3, 4, nine...))
		require.Len(t, s.Days, 1)
		assert.Equal(t, 9, s.Days[0].Missing)
		assert.Equal(t, 390, s.Len())
		assert.Empty(t, rep.Rejections)
		assert.Equal(t, 9, s.Filled.Count(s.Len()))
	})

	t.Run("threshold missing is dropped", func(t *testing.T) {
		s, rep := align(t, day(t, 2024, 3, 4, ten...))
		assert.Empty(t, s.Days)
		assert.Equal(t, 0, s.Len())
		require.Len(t, rep.Rejections, 1)
		assert.Equal(t, Rejection{Date: Date{2024, 3, 4}, Missing: 10, Reason: ReasonExcessMissing}, rep.Rejections[0])
	})
}

func TestAlignForwardFill(t *testing.T) {
	s, _ := align(t, day(t, 2024, 3, 4, 10, 11))

	prev := s.Bars[9]
	for _, i := range []int{10, 11} {
		b := s.Bars[i]
		assert.True(t, s.Filled.Has(i))
		assert.Equal(t, prev.Close, b.Close)
		assert.Equal(t, prev.Open, b.Open)
		assert.Equal(t, prev.Volume, b.Volume)
		assert.Equal(t, prev.VWAP, b.VWAP)
		assert.Equal(t, prev.Time.Add(time.Duration(i-9)*time.Minute), b.Time)
	}
	assert.False(t, s.Filled.Has(12))
}

func TestAlignFillNeverCrossesDays(t *testing.T) {
	bars := append(day(t, 2024, 3, 4), day(t, 2024, 3, 5, 0)...)
	s, rep := align(t, bars)

	require.Len(t, s.Days, 2)
	assert.Empty(t, rep.Rejections)
	assert.Equal(t, 1, rep.Unfilled)

	d := s.Days[1]
	assert.Equal(t, Date{2024, 3, 5}, d.Date)
	assert.Equal(t, 1, d.Missing)
	assert.Equal(t, 1, d.Leading)

	open := s.Bars[d.Start]
	assert.True(t, s.Gap.Has(d.Start))
	assert.False(t, s.Valid(d.Start))
	assert.False(t, s.Filled.Has(d.Start))
	assert.True(t, math.IsNaN(open.Close))
	assert.NotEqual(t, s.Bars[d.Start-1].Close, open.Close)
	assert.True(t, nyse.Grid(d.Date).Equal(open.Time))

	valid := 0
	for i := d.Start; i < d.End(); i++ {
		if s.Valid(i) {
			valid++
		}
	}
	assert.Equal(t, 389, valid)
}

func TestAlignLeadingGap(t *testing.T) {
	s, rep := align(t, day(t, 2024, 3, 4, 0, 1, 2, 5))

	require.Len(t, s.Days, 1)
	assert.Empty(t, rep.Rejections)
	assert.Equal(t, 4, s.Days[0].Missing)
	assert.Equal(t, 3, s.Days[0].Leading)
	for i := 0; i < 3; i++ {
		assert.True(t, s.Gap.Has(i))
	}
	assert.True(t, s.Valid(3))
	assert.True(t, s.Filled.Has(5))
	assert.False(t, s.Gap.Has(5))
	assert.Equal(t, s.Bars[4].Close, s.Bars[5].Close)
}

func TestAlignEmptySessionRejected(t *testing.T) {
	// every bar lands after the close
	bars := day(t, 2024, 3, 4)
	for i := range bars {
		bars[i].Time = bars[i].Time.Add(7 * time.Hour)
	}
	s, rep, err := Align(bars, AlignConfig{Session: nyse, MaxMissing: 1000})
	require.NoError(t, err)
	assert.Equal(t, 0, s.Len())
	require.Len(t, rep.Rejections, 1)
	assert.Equal(t, ReasonExcessMissing, rep.Rejections[0].Reason)
}

func TestAlignDedupKeepsFirst(t *testing.T) {
	bars := day(t, 2024, 3, 4)
	dup := bars[42]
	dup.Close = 999
	bars = append(bars, dup)

	s, rep := align(t, bars)
	assert.Equal(t, 1, rep.Duplicates)
	assert.Equal(t, bars[42].Close, s.Bars[42].Close)
}

func TestAlignNormalizesZones(t *testing.T) {
	bars := day(t, 2024, 3, 4)
	for i := range bars {
		bars[i].Time = bars[i].Time.UTC()
	}
	// shuffle a little
	bars[0], bars[200] = bars[200], bars[0]

	s, _ := align(t, bars)
	require.Len(t, s.Days, 1)
	assert.Equal(t, nyse.Location, s.Bars[0].Time.Location())
	assert.Equal(t, 100.01, s.Bars[0].Close)
}

func TestAlignOutOfSession(t *testing.T) {
	bars := day(t, 2024, 3, 4)
	pre := bars[0]
	pre.Time = pre.Time.Add(-time.Hour)
	post := bars[0]
	post.Time = nyse.Grid(Date{2024, 3, 4}).Add(7 * time.Hour)
	bars = append(bars, pre, post)

	s, rep := align(t, bars)
	assert.Equal(t, 2, rep.OutOfSession)
	assert.Equal(t, 390, s.Len())
}

func TestAlignDSTDay(t *testing.T) {
	// 2024-03-10 is the US spring-forward Sunday; use the Monday after.
	s, _ := align(t, day(t, 2024, 3, 11))
	require.Len(t, s.Days, 1)
	first := s.Bars[0].Time.UTC()
	assert.Equal(t, 13, first.Hour())
	assert.Equal(t, 30, first.Minute())

	w, _ := align(t, day(t, 2024, 1, 8))
	assert.Equal(t, 14, w.Bars[0].Time.UTC().Hour())
}

func TestAlignAllRejectedIsEmpty(t *testing.T) {
	s, rep, err := Align(day(t, 2024, 3, 4, 0, 1, 2, 3, 4, 5, 6, 7, 8, 9, 10), AlignConfig{Session: nyse})
	require.NoError(t, err)
	assert.Equal(t, 0, s.Len())
	assert.Len(t, rep.Rejections, 1)
}

func TestAlignParallelMatchesSerial(t *testing.T) {
	var bars []Bar
	for d := 4; d <= 8; d++ {
		bars = append(bars, day(t, 2024, 3, d, d, d*3)...)
	}

	serial, _, err := Align(bars, AlignConfig{Session: nyse, Workers: 1})
	require.NoError(t, err)
	parallel, _, err := Align(bars, AlignConfig{Session: nyse, Workers: 8})
	require.NoError(t, err)

	assert.Equal(t, serial.Days, parallel.Days)
	assert.Equal(t, serial.Bars, parallel.Bars)
	assert.Equal(t, serial.Filled, parallel.Filled)
	assert.Equal(t, serial.Gap, parallel.Gap)
}

func TestAlignMalformed(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(b *Bar)
	}{
		{"seconds", func(b *Bar) { b.Time = b.Time.Add(15 * time.Second) }},
		{"zero close", func(b *Bar) { b.Close = 0 }},
		{"negative volume", func(b *Bar) { b.Volume = -1 }},
		{"zero time", func(b *Bar) { b.Time = time.Time{} }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			bars := day(t, 2024, 3, 4)
			tt.mutate(&bars[7])
			_, _, err := Align(bars, AlignConfig{Session: nyse})
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrMalformed))
		})
	}
}
