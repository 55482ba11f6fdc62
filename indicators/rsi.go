package indicators

import (
	"fmt"

	"github.com/rustyeddy/barlab/market"
)

// RSI is a relative strength oscillator using plain trailing means of
// gains and losses (not Wilder smoothing). The first bar has no previous
// close and contributes a zero delta.
type RSI struct {
	period int
	gains  *window
	losses *window
	prev   float64
	seen   bool
}

func NewRSI(period int) *RSI {
	if period <= 0 {
		panic("RSI period must be > 0")
	}
	return &RSI{period: period, gains: newWindow(period), losses: newWindow(period)}
}

func (r *RSI) Name() string { return fmt.Sprintf("rsi_%d", r.period) }
func (r *RSI) Warmup() int  { return r.period }

func (r *RSI) Reset() {
	r.gains.reset()
	r.losses.reset()
	r.prev = 0
	r.seen = false
}

func (r *RSI) Update(b market.Bar) {
	var delta float64
	if r.seen {
		delta = b.Close - r.prev
	}
	r.prev = b.Close
	r.seen = true

	var gain, loss float64
	if delta > 0 {
		gain = delta
	} else if delta < 0 {
		loss = -delta
	}
	r.gains.push(gain)
	r.losses.push(loss)
}

func (r *RSI) Ready() bool { return r.gains.full() }

// Value is missing when the loss mean is zero.
func (r *RSI) Value() float64 {
	if !r.Ready() {
		return nan
	}
	loss := r.losses.mean()
	if loss <= 0 {
		return nan
	}
	rs := r.gains.mean() / loss
	return 100 - 100/(1+rs)
}
