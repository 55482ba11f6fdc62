// Package model is the boundary to an externally trained classifier. The
// pipeline only ever asks it for P(up) given a feature vector.
package model

import (
	"fmt"
	"math"
	"os"
	"sort"

	"gopkg.in/yaml.v3"
)

// ProbaColumn is the table column holding precomputed probabilities.
const ProbaColumn = "proba"

// Scorer maps a feature vector to a probability in [0,1].
type Scorer interface {
	Score(columns []string, values []float64) (float64, error)
}

// CheckProba rejects values outside [0,1].
func CheckProba(p float64) error {
	if math.IsNaN(p) || p < 0 || p > 1 {
		return fmt.Errorf("probability %v outside [0,1]", p)
	}
	return nil
}

// Select picks the named columns out of a row, in the order of want.
func Select(columns []string, values []float64, want []string) ([]float64, error) {
	out := make([]float64, len(want))
	for i, name := range want {
		k := -1
		for j, c := range columns {
			if c == name {
				k = j
				break
			}
		}
		if k < 0 {
			return nil, fmt.Errorf("feature %q not in table", name)
		}
		out[i] = values[k]
	}
	return out, nil
}

// Logistic is a linear model on the feature columns passed through a sigmoid.
type Logistic struct {
	Intercept float64            `yaml:"intercept" json:"intercept"`
	Weights   map[string]float64 `yaml:"weights" json:"weights"`
}

// LoadLogistic reads weights from a YAML file.
func LoadLogistic(path string) (*Logistic, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read model: %w", err)
	}
	m := &Logistic{}
	if err := yaml.Unmarshal(data, m); err != nil {
		return nil, fmt.Errorf("parse model %s: %w", path, err)
	}
	if len(m.Weights) == 0 {
		return nil, fmt.Errorf("model %s has no weights", path)
	}
	return m, nil
}

// Score returns sigmoid(intercept + sum(w*x)) over the given columns. Every
// column needs a weight and every weight needs a column.
func (m *Logistic) Score(columns []string, values []float64) (float64, error) {
	if len(columns) != len(values) {
		return 0, fmt.Errorf("%d columns, %d values", len(columns), len(values))
	}
	z := m.Intercept
	seen := 0
	for i, name := range columns {
		w, ok := m.Weights[name]
		if !ok {
			return 0, fmt.Errorf("no weight for feature %q", name)
		}
		z += w * values[i]
		seen++
	}
	if seen != len(m.Weights) {
		var missing []string
		for name := range m.Weights {
			if !contains(columns, name) {
				missing = append(missing, name)
			}
		}
		sort.Strings(missing)
		return 0, fmt.Errorf("weighted features not supplied: %v", missing)
	}
	return 1 / (1 + math.Exp(-z)), nil
}

func contains(xs []string, x string) bool {
	for _, s := range xs {
		if s == x {
			return true
		}
	}
	return false
}
