package model

import (
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCheckProba(t *testing.T) {
	assert.NoError(t, CheckProba(0))
	assert.NoError(t, CheckProba(1))
	assert.NoError(t, CheckProba(0.4))
	assert.Error(t, CheckProba(-0.01))
	assert.Error(t, CheckProba(1.2))
	assert.Error(t, CheckProba(math.NaN()))
}

func TestSelect(t *testing.T) {
	cols := []string{"a", "b", "c"}
	got, err := Select(cols, []float64{1, 2, 3}, []string{"c", "a"})
	require.NoError(t, err)
	assert.Equal(t, []float64{3, 1}, got)

	_, err = Select(cols, []float64{1, 2, 3}, []string{"z"})
	assert.ErrorContains(t, err, `"z"`)
}

func TestLogistic(t *testing.T) {
	m := &Logistic{Intercept: 0, Weights: map[string]float64{"rsi_14": 0.1, "return_1": -2}}
	cols := []string{"return_1", "rsi_14"}

	p, err := m.Score(cols, []float64{0, 0})
	require.NoError(t, err)
	assert.Equal(t, 0.5, p)

	// z = -2 + 2 = 0
	p, err = m.Score(cols, []float64{1, 20})
	require.NoError(t, err)
	assert.Equal(t, 0.5, p)

	p, err = m.Score(cols, []float64{0, 100})
	require.NoError(t, err)
	assert.InDelta(t, 1/(1+math.Exp(-10)), p, 1e-12)

	_, err = m.Score([]string{"return_1", "rsi_14", "range"}, []float64{0, 0, 1})
	assert.ErrorContains(t, err, `no weight for feature "range"`)

	_, err = m.Score([]string{"rsi_14"}, []float64{1})
	assert.ErrorContains(t, err, "return_1")
}

func TestLoadLogistic(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "model.yaml")
	require.NoError(t, os.WriteFile(path, []byte("intercept: -0.5\nweights:\n  rsi_14: 0.01\n  range: 2\n"), 0o644))

	m, err := LoadLogistic(path)
	require.NoError(t, err)
	assert.Equal(t, -0.5, m.Intercept)
	assert.Equal(t, map[string]float64{"rsi_14": 0.01, "range": 2}, m.Weights)

	empty := filepath.Join(dir, "empty.yaml")
	require.NoError(t, os.WriteFile(empty, []byte("intercept: 1\n"), 0o644))
	_, err = LoadLogistic(empty)
	assert.ErrorContains(t, err, "no weights")

	_, err = LoadLogistic(filepath.Join(dir, "missing.yaml"))
	assert.Error(t, err)
}
