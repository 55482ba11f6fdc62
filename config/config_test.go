package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	cfg := Default()
	assert.NotNil(t, cfg)
	assert.Equal(t, "America/New_York", cfg.Session.Timezone)
	assert.Equal(t, 10, cfg.Clean.MaxMissing)
	assert.Equal(t, 0.0002, cfg.Labels.Threshold)
	assert.Equal(t, 0.4, cfg.Backtest.Threshold)
	assert.Empty(t, cfg.Model.Features)
	assert.Len(t, cfg.ModelFeatures(), 11)
	assert.NotContains(t, cfg.ModelFeatures(), "body")
	assert.NotContains(t, cfg.ModelFeatures(), "vol_spike")
	assert.NoError(t, cfg.Validate())

	s, err := cfg.MarketSession()
	require.NoError(t, err)
	assert.Equal(t, 390, s.Minutes())
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(c *Config)
		errMsg string
	}{
		{"valid config", func(c *Config) {}, ""},
		{"bad timezone", func(c *Config) { c.Session.Timezone = "Mars/Olympus" }, "session"},
		{"close before open", func(c *Config) { c.Session.Close = "09:00" }, "session"},
		{"zero max missing", func(c *Config) { c.Clean.MaxMissing = 0 }, "clean.max_missing must be positive"},
		{"negative workers", func(c *Config) { c.Clean.Workers = -1 }, "clean.workers"},
		{"bad feature window", func(c *Config) { c.Features.SMA = []int{5, 0} }, "features.sma"},
		{"model features follow rsi window", func(c *Config) {
			c.Features.RSIPeriod = 7
			c.Model.Features = []string{"return_1", "rsi_7", "body"}
		}, ""},
		{"unknown model feature", func(c *Config) { c.Model.Features = []string{"rsi_14", "rsi_7"} }, "model.features"},
		{"model feature from old window", func(c *Config) {
			c.Features.RSIPeriod = 7
			c.Model.Features = []string{"return_1", "rsi_14"}
		}, "rsi_14"},
		{"negative label threshold", func(c *Config) { c.Labels.Threshold = -0.001 }, ""},
		{"decision threshold above one", func(c *Config) { c.Backtest.Threshold = 1.5 }, "backtest.threshold must be between 0 and 1"},
		{"unknown model", func(c *Config) { c.Model.Type = "xgboost" }, "model.type"},
		{"logistic without path", func(c *Config) { c.Model.Type = ModelLogistic }, "model.path required"},
		{"column without name", func(c *Config) { c.Model.Type = ModelColumn; c.Model.Column = "" }, "model.column required"},
		{"bad output format", func(c *Config) { c.Output.Format = "xlsx" }, "output.format"},
		{"no output dir", func(c *Config) { c.Output.Dir = "" }, "output.dir is required"},
		{"bad log level", func(c *Config) { c.Log.Level = "loud" }, "log.level"},
		{"bad log format", func(c *Config) { c.Log.Format = "xml" }, "log.format"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.errMsg == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errMsg)
		})
	}
}

func TestSaveAndLoad(t *testing.T) {
	tmpDir := t.TempDir()

	tests := []struct {
		name string
		ext  string
	}{
		{"json format", ".json"},
		{"yaml format", ".yaml"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			cfg.Backtest.Threshold = 0.55
			cfg.Features.Extended = false
			cfg.Journal.DBPath = "runs.db"
			path := filepath.Join(tmpDir, "test"+tt.ext)

			require.NoError(t, cfg.SaveToFile(path))
			_, err := os.Stat(path)
			require.NoError(t, err)

			loaded, err := LoadFromFile(path)
			require.NoError(t, err)
			assert.Equal(t, cfg, loaded)
		})
	}
}

func TestLoadPartialFileKeepsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "partial.yaml")
	require.NoError(t, os.WriteFile(path, []byte("backtest:\n  threshold: 0.6\nsession:\n  close: \"12:59\"\n"), 0o644))

	cfg, err := LoadFromFile(path)
	require.NoError(t, err)
	assert.Equal(t, 0.6, cfg.Backtest.Threshold)
	assert.Equal(t, "12:59", cfg.Session.Close)
	assert.Equal(t, "09:30", cfg.Session.Open)
	assert.Equal(t, 0.0002, cfg.Labels.Threshold)
	assert.Equal(t, "csv", cfg.Output.Format)
}

func TestLoadInvalidFile(t *testing.T) {
	_, err := LoadFromFile("/nonexistent/path.yaml")
	assert.Error(t, err)

	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("clean:\n  max_missing: -3\n"), 0o644))
	_, err = LoadFromFile(path)
	assert.ErrorContains(t, err, "invalid config")
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("BARLAB_LOG_LEVEL", "debug")
	t.Setenv("BARLAB_LOG_FORMAT", "json")
	t.Setenv("BARLAB_OUTPUT_DIR", "/tmp/barlab-out")
	t.Setenv("BARLAB_OUTPUT_FORMAT", "parquet")
	t.Setenv("BARLAB_DB", "journal.db")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
	assert.Equal(t, "/tmp/barlab-out", cfg.Output.Dir)
	assert.Equal(t, "parquet", cfg.Output.Format)
	assert.Equal(t, "journal.db", cfg.Journal.DBPath)

	t.Setenv("BARLAB_OUTPUT_FORMAT", "xlsx")
	_, err = Load("")
	assert.ErrorContains(t, err, "output.format")
}

func TestAlignConfig(t *testing.T) {
	cfg := Default()
	cfg.Clean.Workers = 3
	ac, err := cfg.AlignConfig()
	require.NoError(t, err)
	assert.Equal(t, 3, ac.Workers)
	assert.Equal(t, 10, ac.MaxMissing)
	assert.Equal(t, "America/New_York", ac.Session.Location.String())
}

func TestExampleConfig(t *testing.T) {
	cfg, err := LoadFromFile(filepath.Join("..", "examples", "configs", "barlab.yaml"))
	require.NoError(t, err)
	assert.Equal(t, Default().Features, cfg.Features)
	assert.Equal(t, Default().ModelFeatures(), cfg.ModelFeatures())
	assert.Equal(t, "./barlab.sqlite", cfg.Journal.DBPath)
}
