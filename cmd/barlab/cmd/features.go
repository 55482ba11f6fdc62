package cmd

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/rustyeddy/barlab/dataset"
	"github.com/rustyeddy/barlab/pipeline"
)

var featuresCmd = &cobra.Command{
	Use:   "features",
	Short: "Build the feature and label table",
	Long: `Compute causal indicator columns over the aligned series, join them with
the next-bar labels and write <output>/features.<format>. Rows missing
any feature or a label are dropped and counted.

Example:
  barlab features -i out/cleaned.csv --format parquet`,
	Args: cobra.NoArgs,
	RunE: runFeatures,
}

var (
	featuresInput string
	featuresOut   outputFlags
)

func init() {
	rootCmd.AddCommand(featuresCmd)

	featuresCmd.Flags().StringVarP(&featuresInput, "input", "i", "", "bars, raw or cleaned (required)")
	featuresCmd.MarkFlagRequired("input")
	featuresOut.register(featuresCmd)
}

func runFeatures(cmd *cobra.Command, args []string) error {
	if err := featuresOut.apply(); err != nil {
		return err
	}
	w, err := dataset.NewWriter(cfg.Output.Format)
	if err != nil {
		return err
	}

	bars, err := pipeline.LoadBars(featuresInput)
	if err != nil {
		return err
	}
	p, err := pipeline.Prepare(bars, cfg)
	if err != nil {
		return err
	}
	pipeline.LogAlign(slog.Default(), p.Align)
	slog.Info("features", "rows", p.FeatureReport.Emitted, "incomplete", p.FeatureReport.Incomplete)

	path, err := dataset.Save(w, p.Table, cfg.Output.Dir, pipeline.FeaturesName)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "wrote %s (%d rows, %d feature columns)\n", path, p.Table.Len(), len(p.Features.Columns))
	fmt.Fprintf(out, "Incomplete feature rows dropped: %d\n", p.FeatureReport.Incomplete)
	pipeline.PrintBalance(out, p.Balance)
	return nil
}
