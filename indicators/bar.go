package indicators

import (
	"fmt"

	"github.com/rustyeddy/barlab/market"
)

// BarFunc is an indicator computed from the current bar alone.
type BarFunc struct {
	name  string
	fn    func(market.Bar) float64
	value float64
	ready bool
}

func NewBarFunc(name string, fn func(market.Bar) float64) *BarFunc {
	return &BarFunc{name: name, fn: fn, value: nan}
}

// NewRange is high minus low.
func NewRange() *BarFunc {
	return NewBarFunc("range", func(b market.Bar) float64 { return b.High - b.Low })
}

// NewVWAPDiff is close minus VWAP.
func NewVWAPDiff() *BarFunc {
	return NewBarFunc("vwap_diff", func(b market.Bar) float64 { return b.Close - b.VWAP })
}

// NewBody is close minus open.
func NewBody() *BarFunc {
	return NewBarFunc("body", func(b market.Bar) float64 { return b.Close - b.Open })
}

func (f *BarFunc) Name() string { return f.name }
func (f *BarFunc) Warmup() int  { return 1 }

func (f *BarFunc) Reset() {
	f.value = nan
	f.ready = false
}

func (f *BarFunc) Update(b market.Bar) {
	f.value = f.fn(b)
	f.ready = true
}

func (f *BarFunc) Ready() bool { return f.ready }

func (f *BarFunc) Value() float64 {
	if !f.ready {
		return nan
	}
	return f.value
}

// VolumeSpike is the current volume over its trailing mean.
type VolumeSpike struct {
	base *SimpleMA
	last float64
}

func NewVolumeSpike(period int) *VolumeSpike {
	return &VolumeSpike{base: NewMean(fmt.Sprintf("volume_sma_%d", period), period, Volume)}
}

func (v *VolumeSpike) Name() string { return "vol_spike" }
func (v *VolumeSpike) Warmup() int  { return v.base.Warmup() }

func (v *VolumeSpike) Reset() {
	v.base.Reset()
	v.last = 0
}

func (v *VolumeSpike) Update(b market.Bar) {
	v.base.Update(b)
	v.last = b.Volume
}

func (v *VolumeSpike) Ready() bool { return v.base.Ready() }

func (v *VolumeSpike) Value() float64 {
	base := v.base.Value()
	if !v.Ready() || base == 0 {
		return nan
	}
	return v.last / base
}
