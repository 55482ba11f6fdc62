// Package indicators provides streaming technical indicators over minute bars.
package indicators

import (
	"math"

	"github.com/rustyeddy/barlab/market"
)

// Indicator computes a single streaming value from bars.
// It is deterministic and only ever sees bars at or before the current one.
type Indicator interface {
	// Name returns a stable column identifier like "sma_10" or "rsi_14".
	Name() string

	// Warmup returns how many updates are needed before Ready() can be true.
	Warmup() int

	// Reset clears all internal state.
	Reset()

	// Update consumes the next bar.
	Update(b market.Bar)

	// Ready reports whether the window is fully populated.
	Ready() bool

	// Value returns the current value, NaN when not ready or undefined.
	Value() float64
}

// Source selects the bar field an indicator reads.
type Source func(b market.Bar) float64

func Close(b market.Bar) float64  { return b.Close }
func Volume(b market.Bar) float64 { return b.Volume }

var nan = math.NaN()
