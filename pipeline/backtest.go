package pipeline

import (
	"fmt"

	"github.com/rustyeddy/barlab/backtest"
	"github.com/rustyeddy/barlab/dataset"
)

// Observations pairs every table row with its probability.
func Observations(f *dataset.Frame, probas []float64) ([]backtest.Observation, error) {
	if len(probas) != f.Len() {
		return nil, fmt.Errorf("%d probabilities for %d rows", len(probas), f.Len())
	}
	c, err := f.MustColumn("close")
	if err != nil {
		return nil, err
	}
	next, err := nextCloses(f)
	if err != nil {
		return nil, err
	}
	obs := make([]backtest.Observation, f.Len())
	for r, t := range f.Times {
		obs[r] = backtest.Observation{Time: t, Close: f.Values[r][c], NextClose: next[r], Proba: probas[r]}
	}
	return obs, nil
}

// Backtest runs the threshold rule over a scored table.
func Backtest(f *dataset.Frame, probas []float64, threshold float64) (backtest.Result, error) {
	obs, err := Observations(f, probas)
	if err != nil {
		return backtest.Result{}, err
	}
	return backtest.Run(obs, threshold), nil
}

// BacktestFrame is the per-bar backtest output.
func BacktestFrame(res backtest.Result) *dataset.Frame {
	f := dataset.NewFrame("proba", "signal", "actual_move", "pnl", "equity")
	for _, p := range res.Points {
		f.Append(p.Time, p.Proba, float64(p.Signal), p.ActualMove, p.PnL, p.Equity)
	}
	return f
}
