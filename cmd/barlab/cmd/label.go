package cmd

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/rustyeddy/barlab/dataset"
	"github.com/rustyeddy/barlab/labels"
	"github.com/rustyeddy/barlab/pipeline"
)

var labelCmd = &cobra.Command{
	Use:   "label",
	Short: "Label each bar by the direction of the next bar",
	Long: `Compute the forward return to the next bar of the same trading day and
label it 1 when it exceeds the label threshold. The last bar of each day
has no label.

Example:
  barlab label -i out/cleaned.csv`,
	Args: cobra.NoArgs,
	RunE: runLabel,
}

var (
	labelInput     string
	labelThreshold float64
	labelOut       outputFlags
)

func init() {
	rootCmd.AddCommand(labelCmd)

	labelCmd.Flags().StringVarP(&labelInput, "input", "i", "", "bars, raw or cleaned (required)")
	labelCmd.MarkFlagRequired("input")
	labelCmd.Flags().Float64Var(&labelThreshold, "threshold", labels.DefaultThreshold, "label threshold (overrides config)")
	labelOut.register(labelCmd)
}

func runLabel(cmd *cobra.Command, args []string) error {
	if cmd.Flags().Changed("threshold") {
		cfg.Labels.Threshold = labelThreshold
	}
	if err := labelOut.apply(); err != nil {
		return err
	}
	w, err := dataset.NewWriter(cfg.Output.Format)
	if err != nil {
		return err
	}

	bars, err := pipeline.LoadBars(labelInput)
	if err != nil {
		return err
	}
	series, rep, err := pipeline.Clean(bars, cfg)
	if err != nil {
		return fmt.Errorf("align: %w", err)
	}
	pipeline.LogAlign(slog.Default(), rep)

	rows, bal := labels.Label(series, cfg.Labels.Threshold)
	path, err := dataset.Save(w, pipeline.LabelFrame(series, rows), cfg.Output.Dir, pipeline.LabelsName)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "wrote %s (%d rows)\n", path, len(rows))
	fmt.Fprintf(out, "Label threshold: %g   Day ends without label: %d\n", cfg.Labels.Threshold, bal.Dropped)
	pipeline.PrintBalance(out, bal)
	return nil
}
