package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rustyeddy/barlab/backtest"
	"github.com/rustyeddy/barlab/pipeline"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run every stage on a raw bar file",
	Long: `Clean, label, featurize and backtest in one pass. Writes every stage
table plus report.org into the output directory and, when journal.db_path
is set, records the run in the SQLite journal.

Example:
  barlab run -c barlab.yaml -i raw.csv --model model.yaml`,
	Args: cobra.NoArgs,
	RunE: runRun,
}

var (
	runInput     string
	runModel     string
	runColumn    string
	runThreshold float64
	runOut       outputFlags
)

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().StringVarP(&runInput, "input", "i", "", "raw bars (csv, parquet or json) (required)")
	runCmd.MarkFlagRequired("input")
	runCmd.Flags().StringVarP(&runModel, "model", "m", "", "logistic model weights (YAML)")
	runCmd.Flags().StringVar(&runColumn, "column", "", "probability column (default from config)")
	runCmd.Flags().Float64VarP(&runThreshold, "threshold", "t", backtest.DefaultThreshold, "decision threshold (overrides config)")
	runOut.register(runCmd)
}

func runRun(cmd *cobra.Command, args []string) error {
	applyModelFlags(cmd, runModel, runColumn, runThreshold)
	if err := runOut.apply(); err != nil {
		return err
	}

	res, err := pipeline.Run(cmd.Context(), pipeline.Options{Input: runInput, Config: cfg})
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	pipeline.PrintAlign(out, res.Align)
	pipeline.PrintBalance(out, res.Balance)
	if res.Backtest != nil {
		fmt.Fprintf(out, "Probabilities: %s\n", res.Source)
		backtest.PrintReport(out, res.Backtest.Threshold, res.Backtest.Report)
	}
	fmt.Fprintln(out, "\nResults saved to:")
	for _, p := range res.Outputs {
		fmt.Fprintf(out, "  - %s\n", p)
	}
	if cfg.Journal.DBPath != "" {
		fmt.Fprintf(out, "Run %s journaled in %s\n", res.Run.RunID, cfg.Journal.DBPath)
	}
	return nil
}
