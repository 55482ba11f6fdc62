package indicators

import (
	"fmt"

	"github.com/rustyeddy/barlab/market"
)

// SimpleMA is a streaming arithmetic mean over the trailing period bars.
type SimpleMA struct {
	name   string
	period int
	src    Source
	w      *window
}

// NewSMA creates a simple moving average of closes.
func NewSMA(period int) *SimpleMA {
	return NewMean(fmt.Sprintf("sma_%d", period), period, Close)
}

// NewMean creates a trailing mean of an arbitrary bar field.
func NewMean(name string, period int, src Source) *SimpleMA {
	if period <= 0 {
		panic("mean period must be > 0")
	}
	return &SimpleMA{name: name, period: period, src: src, w: newWindow(period)}
}

func (m *SimpleMA) Name() string        { return m.name }
func (m *SimpleMA) Warmup() int         { return m.period }
func (m *SimpleMA) Reset()              { m.w.reset() }
func (m *SimpleMA) Update(b market.Bar) { m.w.push(m.src(b)) }
func (m *SimpleMA) Ready() bool         { return m.w.full() }

func (m *SimpleMA) Value() float64 {
	if !m.Ready() {
		return nan
	}
	return m.w.mean()
}

// ExponentialMA is a recursively weighted average of closes with
// alpha = 2/(span+1), seeded with the first close it sees.
type ExponentialMA struct {
	span  int
	alpha float64
	value float64
	seen  int
}

func NewEMA(span int) *ExponentialMA {
	if span <= 0 {
		panic("EMA span must be > 0")
	}
	return &ExponentialMA{span: span, alpha: 2.0 / float64(span+1)}
}

func (e *ExponentialMA) Name() string { return fmt.Sprintf("ema_%d", e.span) }

// Warmup is one bar: the seed is a usable value.
func (e *ExponentialMA) Warmup() int { return 1 }

func (e *ExponentialMA) Reset() {
	e.value = 0
	e.seen = 0
}

func (e *ExponentialMA) Update(b market.Bar) {
	e.seen++
	if e.seen == 1 {
		e.value = b.Close
		return
	}
	e.value = e.alpha*b.Close + (1.0-e.alpha)*e.value
}

func (e *ExponentialMA) Ready() bool { return e.seen > 0 }

func (e *ExponentialMA) Value() float64 {
	if !e.Ready() {
		return nan
	}
	return e.value
}
