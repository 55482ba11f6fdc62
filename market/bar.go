package market

import (
	"fmt"
	"math"
	"time"
)

// Bar is one minute of OHLCV data plus the volume weighted average price.
type Bar struct {
	Time time.Time

	Open  float64
	High  float64
	Low   float64
	Close float64

	Volume float64
	VWAP   float64
}

// check reports why a bar cannot be ingested, or nil.
func (b Bar) check() error {
	if b.Time.IsZero() {
		return fmt.Errorf("%w: zero timestamp", ErrMalformed)
	}
	if b.Time.Second() != 0 || b.Time.Nanosecond() != 0 {
		return fmt.Errorf("%w: timestamp not minute-aligned: %s", ErrMalformed, b.Time.Format(time.RFC3339Nano))
	}
	for _, p := range [...]float64{b.Open, b.High, b.Low, b.Close, b.VWAP} {
		if math.IsNaN(p) || math.IsInf(p, 0) || p <= 0 {
			return fmt.Errorf("%w: bad price %v at %s", ErrMalformed, p, b.Time.Format(time.RFC3339))
		}
	}
	if math.IsNaN(b.Volume) || b.Volume < 0 {
		return fmt.Errorf("%w: bad volume %v at %s", ErrMalformed, b.Volume, b.Time.Format(time.RFC3339))
	}
	return nil
}
