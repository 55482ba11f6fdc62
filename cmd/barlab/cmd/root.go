package cmd

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/rustyeddy/barlab/config"
	"github.com/rustyeddy/barlab/internal/slogx"
)

var rootCmd = &cobra.Command{
	Use:   "barlab",
	Short: "Minute-bar research pipeline: clean, featurize, label, backtest",
	Long: `Barlab turns raw one-minute OHLCV bars into a research dataset and
evaluates a probability-threshold trading rule against it.

Stages:
  - clean     align bars to the exchange session grid, reject bad days
  - label     binary next-bar direction labels
  - features  causal indicators joined with labels
  - backtest  long/flat rule over model probabilities, risk report
  - run       all of the above, with a journal entry and an Org report

Settings come from a YAML config (see "barlab config init"), a .env file
and BARLAB_* environment variables.`,
	SilenceUsage:      true,
	PersistentPreRunE: setup,
}

var (
	cfgFile   string
	logLevel  string
	logFormat string

	// cfg is the effective configuration, loaded before any command runs.
	cfg *config.Config
)

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file (YAML or JSON)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "debug, info, warn or error")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "", "text or json")
}

func setup(cmd *cobra.Command, args []string) error {
	c, err := config.Load(cfgFile)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if logLevel != "" {
		c.Log.Level = logLevel
	}
	if logFormat != "" {
		c.Log.Format = logFormat
	}

	log, err := slogx.New(os.Stderr, c.Log.Level, c.Log.Format)
	if err != nil {
		return err
	}
	slog.SetDefault(log)
	cfg = c
	return nil
}

// outputFlags are shared by the commands that write tables.
type outputFlags struct {
	dir    string
	format string
}

func (o *outputFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&o.dir, "output", "o", "", "output directory (default from config)")
	cmd.Flags().StringVar(&o.format, "format", "", "csv, parquet or json (default from config)")
}

func (o *outputFlags) apply() error {
	if o.dir != "" {
		cfg.Output.Dir = o.dir
	}
	if o.format != "" {
		cfg.Output.Format = o.format
	}
	return cfg.Validate()
}
