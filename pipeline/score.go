package pipeline

import (
	"fmt"

	"github.com/rustyeddy/barlab/config"
	"github.com/rustyeddy/barlab/dataset"
	"github.com/rustyeddy/barlab/model"
)

// ScoreColumn reads precomputed probabilities from a table column.
func ScoreColumn(f *dataset.Frame, column string) ([]float64, error) {
	c, err := f.MustColumn(column)
	if err != nil {
		return nil, err
	}
	out := make([]float64, f.Len())
	for r := range out {
		p := f.Values[r][c]
		if err := model.CheckProba(p); err != nil {
			return nil, fmt.Errorf("row %d (%s): %w", r, f.Times[r].Format(dataset.TimeLayout), err)
		}
		out[r] = p
	}
	return out, nil
}

// ScoreModel asks the scorer for every row, feeding it the named columns.
func ScoreModel(f *dataset.Frame, s model.Scorer, columns []string) ([]float64, error) {
	for _, name := range columns {
		if _, err := f.MustColumn(name); err != nil {
			return nil, err
		}
	}
	out := make([]float64, f.Len())
	for r := range out {
		x, err := model.Select(f.Columns, f.Values[r], columns)
		if err != nil {
			return nil, err
		}
		p, err := s.Score(columns, x)
		if err != nil {
			return nil, fmt.Errorf("score row %d: %w", r, err)
		}
		if err := model.CheckProba(p); err != nil {
			return nil, fmt.Errorf("score row %d: %w", r, err)
		}
		out[r] = p
	}
	return out, nil
}

// Probabilities resolves the configured model and scores the table. The
// returned source describes where the numbers came from; it is empty, with
// nil probabilities, when the auto model finds nothing to use.
func Probabilities(f *dataset.Frame, cfg *config.Config) ([]float64, string, error) {
	mc := cfg.Model
	typ := mc.Type
	if typ == config.ModelAuto || typ == "" {
		switch _, hasCol := f.Column(mc.Column); {
		case mc.Path != "":
			typ = config.ModelLogistic
		case hasCol:
			typ = config.ModelColumn
		default:
			return nil, "", nil
		}
	}

	switch typ {
	case config.ModelColumn:
		p, err := ScoreColumn(f, mc.Column)
		return p, "column " + mc.Column, err
	case config.ModelLogistic:
		m, err := model.LoadLogistic(mc.Path)
		if err != nil {
			return nil, "", err
		}
		p, err := ScoreModel(f, m, cfg.ModelFeatures())
		return p, "logistic " + mc.Path, err
	}
	return nil, "", fmt.Errorf("unknown model type %q", typ)
}
