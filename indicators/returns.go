package indicators

import (
	"fmt"

	"github.com/rustyeddy/barlab/market"
)

// Return is the percent change of close over a fixed lag.
type Return struct {
	lag int
	w   *window
}

func NewReturn(lag int) *Return {
	if lag <= 0 {
		panic("return lag must be > 0")
	}
	return &Return{lag: lag, w: newWindow(lag + 1)}
}

func (r *Return) Name() string        { return fmt.Sprintf("return_%d", r.lag) }
func (r *Return) Warmup() int         { return r.lag + 1 }
func (r *Return) Reset()              { r.w.reset() }
func (r *Return) Update(b market.Bar) { r.w.push(b.Close) }
func (r *Return) Ready() bool         { return r.w.full() }

func (r *Return) Value() float64 {
	if !r.Ready() {
		return nan
	}
	// the newest value sits just behind head
	last := r.w.buf[(r.w.head+len(r.w.buf)-1)%len(r.w.buf)]
	base := r.w.oldest()
	if base == 0 {
		return nan
	}
	return (last - base) / base
}
