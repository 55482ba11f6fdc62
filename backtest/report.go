package backtest

import "math"

// Report summarizes the trades of a run. A trade is any bar with a
// non-zero signal.
type Report struct {
	Bars    int
	Skipped int

	Trades  int
	Wins    int
	Losses  int
	WinRate float64 // fraction, 0..1

	TotalPnL     float64
	AvgPnL       float64
	GrossProfit  float64
	GrossLoss    float64 // positive magnitude
	ProfitFactor float64

	Sharpe      float64
	MaxDrawdown float64 // most negative retracement from the running equity peak
}

// Summarize computes the risk report for a run of points.
func Summarize(points []Point) Report {
	r := Report{Bars: len(points)}

	var trades []float64
	for _, p := range points {
		if p.Signal == 0 {
			continue
		}
		trades = append(trades, p.PnL)
		r.TotalPnL += p.PnL
		if p.PnL > 0 {
			r.Wins++
			r.GrossProfit += p.PnL
		} else {
			r.Losses++
			r.GrossLoss -= p.PnL
		}
	}
	r.Trades = len(trades)

	if r.Trades > 0 {
		r.WinRate = float64(r.Wins) / float64(r.Trades)
		r.AvgPnL = r.TotalPnL / float64(r.Trades)
	}
	if r.GrossLoss > 0 {
		r.ProfitFactor = r.GrossProfit / r.GrossLoss
	}
	r.Sharpe = Sharpe(trades)

	equity := make([]float64, len(points))
	for i, p := range points {
		equity[i] = p.Equity
	}
	r.MaxDrawdown = MaxDrawdown(equity)

	return r
}

// Sharpe is mean over sample standard deviation of per-trade PnL.
// It is 0 with fewer than two trades or no dispersion.
func Sharpe(pnl []float64) float64 {
	n := len(pnl)
	if n < 2 {
		return 0
	}
	var sum float64
	for _, x := range pnl {
		sum += x
	}
	mean := sum / float64(n)

	var ss float64
	for _, x := range pnl {
		d := x - mean
		ss += d * d
	}
	sd := math.Sqrt(ss / float64(n-1))
	if sd == 0 || math.IsNaN(sd) {
		return 0
	}
	return mean / sd
}

// MaxDrawdown is min over t of equity[t] - max(equity[0..t]).
// The running peak starts at the first equity value.
func MaxDrawdown(equity []float64) float64 {
	if len(equity) == 0 {
		return 0
	}
	peak := equity[0]
	var dd float64
	for _, e := range equity {
		if e > peak {
			peak = e
		}
		if e-peak < dd {
			dd = e - peak
		}
	}
	return dd
}

// EquityCurve is the running sum of pnl.
func EquityCurve(pnl []float64) []float64 {
	out := make([]float64, len(pnl))
	var acc float64
	for i, x := range pnl {
		acc += x
		out[i] = acc
	}
	return out
}
