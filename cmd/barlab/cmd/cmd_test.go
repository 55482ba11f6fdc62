package cmd

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rustyeddy/barlab/config"
	"github.com/rustyeddy/barlab/dataset"
	"github.com/rustyeddy/barlab/market"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return out.String(), err
}

func writeBars(t *testing.T, dir string) string {
	t.Helper()
	ny, err := time.LoadLocation("America/New_York")
	require.NoError(t, err)
	var bars []market.Bar
	for _, day := range []int{2, 3} {
		open := time.Date(2024, 1, day, 9, 30, 0, 0, ny)
		for i := 0; i < 30; i++ {
			c := 50 + 0.01*float64(i) - 0.03*float64(i%2)
			bars = append(bars, market.Bar{
				Time: open.Add(time.Duration(i) * time.Minute),
				Open: c, High: c + 0.02, Low: c - 0.02, Close: c,
				Volume: 500, VWAP: c,
			})
		}
	}
	path, err := dataset.Save(dataset.CSVWriter{}, dataset.FrameFromBars(bars), dir, "raw")
	require.NoError(t, err)
	return path
}

func TestVersion(t *testing.T) {
	defer func(c, b string) { commit, built = c, b }(commit, built)
	commit, built = "1a2b3c4", "2026-10-19T00:00:00Z"

	out, err := execute(t, "version")
	require.NoError(t, err)
	assert.Contains(t, out, "barlab version "+version)
	assert.Contains(t, out, "commit:  1a2b3c4")
	assert.Contains(t, out, "built:   2026-10-19T00:00:00Z")
	assert.Contains(t, out, "formats: csv, parquet, json")
}

func TestCLI(t *testing.T) {
	dir := t.TempDir()

	out, err := execute(t, "version")
	require.NoError(t, err)
	assert.Contains(t, out, "barlab version")

	cfgPath := filepath.Join(dir, "barlab.yaml")
	out, err = execute(t, "config", "init", "-o", cfgPath)
	require.NoError(t, err)
	assert.Contains(t, out, "Created default configuration")

	c, err := config.LoadFromFile(cfgPath)
	require.NoError(t, err)
	c.Session.Close = "09:59"
	c.Output.Dir = filepath.Join(dir, "out")
	c.Journal.DBPath = filepath.Join(dir, "runs.db")
	require.NoError(t, c.SaveToFile(cfgPath))

	out, err = execute(t, "config", "validate", "-f", cfgPath)
	require.NoError(t, err)
	assert.Contains(t, out, "America/New_York 09:30-09:59")

	raw := writeBars(t, dir)

	out, err = execute(t, "-c", cfgPath, "clean", "-i", raw)
	require.NoError(t, err)
	assert.Contains(t, out, "Days: 2 seen, 2 kept, 0 rejected")
	cleaned := filepath.Join(dir, "out", "cleaned.csv")
	assert.FileExists(t, cleaned)
	assert.FileExists(t, filepath.Join(dir, "out", "rejected_days.csv"))

	out, err = execute(t, "-c", cfgPath, "label", "-i", cleaned)
	require.NoError(t, err)
	assert.Contains(t, out, "labels.csv (58 rows)")

	out, err = execute(t, "-c", cfgPath, "features", "-i", cleaned, "--format", "parquet")
	require.NoError(t, err)
	features := filepath.Join(dir, "out", "features.parquet")
	assert.FileExists(t, features)
	assert.Contains(t, out, "Incomplete feature rows dropped: 13")

	// no proba column and no model
	_, err = execute(t, "-c", cfgPath, "backtest", "-i", features)
	assert.ErrorContains(t, err, "pass --model")

	model := filepath.Join(dir, "model.yaml")
	require.NoError(t, os.WriteFile(model, []byte(
		"intercept: 0.5\nweights:\n  return_1: 0\n  return_3: 0\n  return_5: 0\n  sma_5: 0\n  sma_10: 0\n"+
			"  ema_5: 0\n  ema_10: 0\n  rsi_14: 0\n  range: 0\n  vwap_diff: 0\n  volume_sma_10: 0\n"), 0o644))

	out, err = execute(t, "-c", cfgPath, "backtest", "-i", features, "--model", model, "--format", "csv")
	require.NoError(t, err)
	assert.Contains(t, out, "Backtest Result")
	assert.Contains(t, out, "Total Trades")

	out, err = execute(t, "-c", cfgPath, "run", "-i", raw, "--model", model)
	require.NoError(t, err)
	assert.Contains(t, out, "journaled in")
	assert.FileExists(t, filepath.Join(dir, "out", "report.org"))

	out, err = execute(t, "-c", cfgPath, "journal", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "raw.csv")

	_, err = execute(t, "-c", cfgPath, "journal", "show", "missing-run")
	assert.Error(t, err)
}
