package indicators

import (
	"math"
	"testing"
	"time"

	"github.com/rustyeddy/barlab/market"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func closes(xs ...float64) []market.Bar {
	base := time.Date(2024, 1, 2, 14, 30, 0, 0, time.UTC)
	bars := make([]market.Bar, len(xs))
	for i, x := range xs {
		bars[i] = market.Bar{
			Time:   base.Add(time.Duration(i) * time.Minute),
			Open:   x - 1,
			High:   x + 2,
			Low:    x - 3,
			Close:  x,
			Volume: 100 * float64(i+1),
			VWAP:   x - 0.5,
		}
	}
	return bars
}

func feed(ind Indicator, bars []market.Bar) []float64 {
	out := make([]float64, len(bars))
	for i, b := range bars {
		ind.Update(b)
		out[i] = ind.Value()
	}
	return out
}

func TestSimpleMAStreaming(t *testing.T) {
	bars := closes(102, 105, 106, 108, 110)

	t.Run("basic functionality", func(t *testing.T) {
		ma := NewSMA(3)
		assert.Equal(t, "sma_3", ma.Name())
		assert.Equal(t, 3, ma.Warmup())
		assert.False(t, ma.Ready())
		assert.True(t, math.IsNaN(ma.Value()))

		got := feed(ma, bars)
		assert.True(t, math.IsNaN(got[0]))
		assert.True(t, math.IsNaN(got[1]))
		assert.InDelta(t, (102.0+105.0+106.0)/3.0, got[2], 1e-9)
		assert.InDelta(t, (105.0+106.0+108.0)/3.0, got[3], 1e-9)
		assert.InDelta(t, (106.0+108.0+110.0)/3.0, got[4], 1e-9)
	})

	t.Run("reset functionality", func(t *testing.T) {
		ma := NewSMA(2)
		feed(ma, bars[:2])
		assert.True(t, ma.Ready())

		ma.Reset()
		assert.False(t, ma.Ready())
		assert.True(t, math.IsNaN(ma.Value()))
	})

	t.Run("mean of volume", func(t *testing.T) {
		m := NewMean("volume_sma_2", 2, Volume)
		got := feed(m, bars)
		assert.InDelta(t, 450.0, got[4], 1e-9)
	})
}

func TestExponentialMAStreaming(t *testing.T) {
	// span 3 => alpha = 0.5
	// 10, 11, 12, 13 => 10, 10.5, 11.25, 12.125
	ema := NewEMA(3)
	assert.Equal(t, "ema_3", ema.Name())
	assert.True(t, math.IsNaN(ema.Value()))

	got := feed(ema, closes(10, 11, 12, 13))
	assert.Equal(t, []float64{10, 10.5, 11.25, 12.125}, got)

	ema.Reset()
	assert.False(t, ema.Ready())
	ema.Update(closes(20)[0])
	assert.Equal(t, 20.0, ema.Value())
}

func TestReturn(t *testing.T) {
	r := NewReturn(2)
	assert.Equal(t, "return_2", r.Name())
	assert.Equal(t, 3, r.Warmup())

	got := feed(r, closes(100, 101, 102, 99, 104))
	assert.True(t, math.IsNaN(got[0]))
	assert.True(t, math.IsNaN(got[1]))
	assert.InDelta(t, 0.02, got[2], 1e-12)
	assert.InDelta(t, (99.0-101.0)/101.0, got[3], 1e-12)
	assert.InDelta(t, (104.0-102.0)/102.0, got[4], 1e-12)
}

func TestRSI(t *testing.T) {
	t.Run("known values", func(t *testing.T) {
		rsi := NewRSI(3)
		// deltas: 0, +2, -1, +3, -2
		got := feed(rsi, closes(10, 12, 11, 14, 12))
		assert.True(t, math.IsNaN(got[0]))
		assert.True(t, math.IsNaN(got[1]))

		// window [0, +2, -1]: gain 2/3, loss 1/3, rs 2
		assert.InDelta(t, 100-100/3.0, got[2], 1e-9)
		// window [+2, -1, +3]: gain 5/3, loss 1/3, rs 5
		assert.InDelta(t, 100-100/6.0, got[3], 1e-9)
		// window [-1, +3, -2]: gain 1, loss 1, rs 1
		assert.InDelta(t, 50.0, got[4], 1e-9)
	})

	t.Run("no losses is missing", func(t *testing.T) {
		rsi := NewRSI(3)
		got := feed(rsi, closes(10, 11, 12, 13))
		require.True(t, rsi.Ready())
		assert.True(t, math.IsNaN(got[3]))
	})

	t.Run("first ready after period bars", func(t *testing.T) {
		rsi := NewRSI(14)
		xs := make([]float64, 20)
		for i := range xs {
			xs[i] = 100 + float64(i%3) - 1
		}
		got := feed(rsi, closes(xs...))
		for i := 0; i < 13; i++ {
			assert.True(t, math.IsNaN(got[i]), "bar %d", i)
		}
		assert.False(t, math.IsNaN(got[13]))
	})
}

func TestBarFuncs(t *testing.T) {
	b := closes(50)[0]

	for _, tt := range []struct {
		ind  Indicator
		want float64
	}{
		{NewRange(), 5},
		{NewVWAPDiff(), 0.5},
		{NewBody(), 1},
	} {
		t.Run(tt.ind.Name(), func(t *testing.T) {
			assert.True(t, math.IsNaN(tt.ind.Value()))
			tt.ind.Update(b)
			assert.InDelta(t, tt.want, tt.ind.Value(), 1e-12)
			tt.ind.Reset()
			assert.False(t, tt.ind.Ready())
		})
	}
}

func TestVolumeSpike(t *testing.T) {
	v := NewVolumeSpike(2)
	// volumes 100, 200, 300
	got := feed(v, closes(1, 2, 3))
	assert.True(t, math.IsNaN(got[0]))
	assert.InDelta(t, 200.0/150.0, got[1], 1e-12)
	assert.InDelta(t, 300.0/250.0, got[2], 1e-12)
}
