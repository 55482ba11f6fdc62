package config

import (
	"encoding/json"
	"fmt"
	"os"
	"slices"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/rustyeddy/barlab/backtest"
	"github.com/rustyeddy/barlab/dataset"
	"github.com/rustyeddy/barlab/features"
	"github.com/rustyeddy/barlab/internal/slogx"
	"github.com/rustyeddy/barlab/labels"
	"github.com/rustyeddy/barlab/market"
	"github.com/rustyeddy/barlab/model"
)

// Config represents the complete pipeline configuration
type Config struct {
	Session  SessionConfig   `json:"session" yaml:"session"`
	Clean    CleanConfig     `json:"clean" yaml:"clean"`
	Features features.Config `json:"features" yaml:"features"`
	Labels   LabelConfig     `json:"labels" yaml:"labels"`
	Backtest BacktestConfig  `json:"backtest" yaml:"backtest"`
	Model    ModelConfig     `json:"model" yaml:"model"`
	Output   OutputConfig    `json:"output" yaml:"output"`
	Journal  JournalConfig   `json:"journal" yaml:"journal"`
	Log      LogConfig       `json:"log" yaml:"log"`
}

// SessionConfig is the exchange calendar for one trading day
type SessionConfig struct {
	Timezone string `json:"timezone" yaml:"timezone"`
	Open     string `json:"open" yaml:"open"`   // "HH:MM", first minute
	Close    string `json:"close" yaml:"close"` // "HH:MM", last minute, inclusive
}

// CleanConfig controls the aligner
type CleanConfig struct {
	MaxMissing int `json:"max_missing" yaml:"max_missing"`
	Workers    int `json:"workers" yaml:"workers"` // 0 means GOMAXPROCS
}

type LabelConfig struct {
	Threshold float64 `json:"threshold" yaml:"threshold"`
}

type BacktestConfig struct {
	Threshold float64 `json:"threshold" yaml:"threshold"`
}

// Model types.
const (
	ModelAuto     = "auto"     // logistic when a path is set, else the proba column if present
	ModelColumn   = "column"   // probabilities come from a table column
	ModelLogistic = "logistic" // weights loaded from Path
)

type ModelConfig struct {
	Type   string `json:"type" yaml:"type"`
	Path   string `json:"path,omitempty" yaml:"path,omitempty"`
	Column string `json:"column" yaml:"column"`
	// Features defaults to the configured feature columns minus the
	// extended ones.
	Features []string `json:"features,omitempty" yaml:"features,omitempty"`
}

type OutputConfig struct {
	Dir    string `json:"dir" yaml:"dir"`
	Format string `json:"format" yaml:"format"` // csv, parquet or json
}

// JournalConfig contains journaling parameters; an empty DBPath disables
// the journal.
type JournalConfig struct {
	DBPath string `json:"db_path,omitempty" yaml:"db_path,omitempty"`
}

type LogConfig struct {
	Level  string `json:"level" yaml:"level"`   // debug | info | warn | error
	Format string `json:"format" yaml:"format"` // text | json
}

// Load reads an optional .env, then the config file when path is not
// empty, then applies BARLAB_* environment overrides.
func Load(path string) (*Config, error) {
	_ = godotenv.Load()

	cfg := Default()
	if path != "" {
		var err error
		if cfg, err = LoadFromFile(path); err != nil {
			return nil, err
		}
	}
	applyEnvOverrides(cfg)
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// LoadFromFile loads configuration from a file (YAML or JSON). Keys
// absent from the file keep their defaults.
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	cfg := Default()

	// Try YAML first, fall back to JSON
	err = yaml.Unmarshal(data, cfg)
	if err != nil {
		cfg = Default()
		err = json.Unmarshal(data, cfg)
		if err != nil {
			return nil, fmt.Errorf("parse config (tried YAML and JSON): %w", err)
		}
	}
	setDefaults(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// SaveToFile saves configuration to a file (JSON or YAML based on extension)
func (c *Config) SaveToFile(path string) error {
	var data []byte
	var err error

	if strings.HasSuffix(path, ".yaml") || strings.HasSuffix(path, ".yml") {
		data, err = yaml.Marshal(c)
	} else {
		data, err = json.MarshalIndent(c, "", "  ")
	}
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write config file: %w", err)
	}
	return nil
}

func applyEnvOverrides(c *Config) {
	if v := os.Getenv("BARLAB_LOG_LEVEL"); v != "" {
		c.Log.Level = v
	}
	if v := os.Getenv("BARLAB_LOG_FORMAT"); v != "" {
		c.Log.Format = v
	}
	if v := os.Getenv("BARLAB_OUTPUT_DIR"); v != "" {
		c.Output.Dir = v
	}
	if v := os.Getenv("BARLAB_OUTPUT_FORMAT"); v != "" {
		c.Output.Format = v
	}
	if v := os.Getenv("BARLAB_DB"); v != "" {
		c.Journal.DBPath = v
	}
}

// setDefaults fills string fields left empty by a partial file.
func setDefaults(c *Config) {
	d := Default()
	if c.Session.Timezone == "" {
		c.Session.Timezone = d.Session.Timezone
	}
	if c.Session.Open == "" {
		c.Session.Open = d.Session.Open
	}
	if c.Session.Close == "" {
		c.Session.Close = d.Session.Close
	}
	if c.Model.Type == "" {
		c.Model.Type = d.Model.Type
	}
	if c.Model.Column == "" {
		c.Model.Column = d.Model.Column
	}
	if c.Output.Dir == "" {
		c.Output.Dir = d.Output.Dir
	}
	if c.Output.Format == "" {
		c.Output.Format = d.Output.Format
	}
	if c.Log.Level == "" {
		c.Log.Level = d.Log.Level
	}
	if c.Log.Format == "" {
		c.Log.Format = d.Log.Format
	}
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if _, err := c.MarketSession(); err != nil {
		return fmt.Errorf("session: %w", err)
	}
	if c.Clean.MaxMissing <= 0 {
		return fmt.Errorf("clean.max_missing must be positive")
	}
	if c.Clean.Workers < 0 {
		return fmt.Errorf("clean.workers must not be negative")
	}
	if err := c.Features.Validate(); err != nil {
		return err
	}
	if c.Backtest.Threshold < 0 || c.Backtest.Threshold > 1 {
		return fmt.Errorf("backtest.threshold must be between 0 and 1")
	}
	switch c.Model.Type {
	case ModelAuto, ModelColumn:
	case ModelLogistic:
		if c.Model.Path == "" {
			return fmt.Errorf("model.path required for logistic model")
		}
	default:
		return fmt.Errorf("model.type must be 'auto', 'column' or 'logistic'")
	}
	if c.Model.Type == ModelColumn && c.Model.Column == "" {
		return fmt.Errorf("model.column required for column model")
	}
	cols := c.Features.Columns()
	for _, name := range c.Model.Features {
		if !slices.Contains(cols, name) {
			return fmt.Errorf("model.features: %q is not a configured feature column", name)
		}
	}
	if _, err := dataset.NewWriter(c.Output.Format); err != nil {
		return fmt.Errorf("output.format: %w", err)
	}
	if c.Output.Dir == "" {
		return fmt.Errorf("output.dir is required")
	}
	if _, err := slogx.ParseLevel(c.Log.Level); err != nil {
		return fmt.Errorf("log.level: %w", err)
	}
	switch strings.ToLower(c.Log.Format) {
	case "text", "json":
	default:
		return fmt.Errorf("log.format must be 'text' or 'json'")
	}
	return nil
}

// ModelFeatures returns the columns handed to the scorer, in order.
func (c *Config) ModelFeatures() []string {
	if len(c.Model.Features) > 0 {
		return c.Model.Features
	}
	return c.Features.BaseColumns()
}

// MarketSession builds the trading session from the session block.
func (c *Config) MarketSession() (market.Session, error) {
	return market.NewSession(c.Session.Timezone, c.Session.Open, c.Session.Close)
}

// AlignConfig returns the aligner settings.
func (c *Config) AlignConfig() (market.AlignConfig, error) {
	s, err := c.MarketSession()
	if err != nil {
		return market.AlignConfig{}, err
	}
	return market.AlignConfig{Session: s, MaxMissing: c.Clean.MaxMissing, Workers: c.Clean.Workers}, nil
}

// Default returns a configuration with sensible defaults
func Default() *Config {
	return &Config{
		Session: SessionConfig{
			Timezone: "America/New_York",
			Open:     "09:30",
			Close:    "15:59",
		},
		Clean: CleanConfig{
			MaxMissing: market.DefaultMaxMissing,
		},
		Features: features.DefaultConfig(),
		Labels:   LabelConfig{Threshold: labels.DefaultThreshold},
		Backtest: BacktestConfig{Threshold: backtest.DefaultThreshold},
		Model: ModelConfig{
			Type:   ModelAuto,
			Column: model.ProbaColumn,
		},
		Output: OutputConfig{
			Dir:    "./out",
			Format: "csv",
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
	}
}
