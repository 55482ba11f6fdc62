package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rustyeddy/barlab/backtest"
	"github.com/rustyeddy/barlab/config"
	"github.com/rustyeddy/barlab/dataset"
	"github.com/rustyeddy/barlab/pipeline"
)

var backtestCmd = &cobra.Command{
	Use:   "backtest",
	Short: "Backtest the probability-threshold rule on a feature table",
	Long: `Go long for one bar whenever P(up) is above the decision threshold and
report trades, win rate, PnL, Sharpe and max drawdown.

Probabilities come from the table's proba column, or from a logistic
model when --model is given.

Examples:
  barlab backtest -i out/features.csv --model model.yaml
  barlab backtest -i scored.parquet --threshold 0.55`,
	Args: cobra.NoArgs,
	RunE: runBacktest,
}

var (
	backtestInput     string
	backtestModel     string
	backtestColumn    string
	backtestThreshold float64
	backtestOut       outputFlags
)

func init() {
	rootCmd.AddCommand(backtestCmd)

	backtestCmd.Flags().StringVarP(&backtestInput, "input", "i", "", "feature table (required)")
	backtestCmd.MarkFlagRequired("input")
	backtestCmd.Flags().StringVarP(&backtestModel, "model", "m", "", "logistic model weights (YAML)")
	backtestCmd.Flags().StringVar(&backtestColumn, "column", "", "probability column (default from config)")
	backtestCmd.Flags().Float64VarP(&backtestThreshold, "threshold", "t", backtest.DefaultThreshold, "decision threshold (overrides config)")
	backtestOut.register(backtestCmd)
}

// applyModelFlags folds --model, --column and --threshold into the config.
func applyModelFlags(cmd *cobra.Command, modelPath, column string, threshold float64) {
	if modelPath != "" {
		cfg.Model.Type = config.ModelLogistic
		cfg.Model.Path = modelPath
	}
	if column != "" {
		cfg.Model.Column = column
		if modelPath == "" {
			cfg.Model.Type = config.ModelColumn
		}
	}
	if cmd.Flags().Changed("threshold") {
		cfg.Backtest.Threshold = threshold
	}
}

func runBacktest(cmd *cobra.Command, args []string) error {
	applyModelFlags(cmd, backtestModel, backtestColumn, backtestThreshold)
	if err := backtestOut.apply(); err != nil {
		return err
	}
	w, err := dataset.NewWriter(cfg.Output.Format)
	if err != nil {
		return err
	}

	table, err := dataset.Read(backtestInput)
	if err != nil {
		return err
	}
	probas, source, err := pipeline.Probabilities(table, cfg)
	if err != nil {
		return fmt.Errorf("score: %w", err)
	}
	if probas == nil {
		return fmt.Errorf("%s has no %q column; pass --model", backtestInput, cfg.Model.Column)
	}

	res, err := pipeline.Backtest(table, probas, cfg.Backtest.Threshold)
	if err != nil {
		return err
	}
	path, err := dataset.Save(w, pipeline.BacktestFrame(res), cfg.Output.Dir, pipeline.BacktestName)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Probabilities: %s\n", source)
	backtest.PrintReport(out, res.Threshold, res.Report)
	fmt.Fprintf(out, "wrote %s\n", path)
	return nil
}
