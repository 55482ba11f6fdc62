package cmd

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/rustyeddy/barlab/dataset"
	"github.com/rustyeddy/barlab/pipeline"
)

var cleanCmd = &cobra.Command{
	Use:   "clean",
	Short: "Align raw bars to the session grid",
	Long: `Reindex raw one-minute bars onto the full session grid of every trading
day, forward-fill short gaps within a day and reject days with too many
missing minutes.

Writes <output>/cleaned.<format> and <output>/rejected_days.<format>.

Example:
  barlab clean -i raw.csv -o out`,
	Args: cobra.NoArgs,
	RunE: runClean,
}

var (
	cleanInput string
	cleanOut   outputFlags
)

func init() {
	rootCmd.AddCommand(cleanCmd)

	cleanCmd.Flags().StringVarP(&cleanInput, "input", "i", "", "raw bars (csv, parquet or json) (required)")
	cleanCmd.MarkFlagRequired("input")
	cleanOut.register(cleanCmd)
}

func runClean(cmd *cobra.Command, args []string) error {
	if err := cleanOut.apply(); err != nil {
		return err
	}
	w, err := dataset.NewWriter(cfg.Output.Format)
	if err != nil {
		return err
	}
	sess, err := cfg.MarketSession()
	if err != nil {
		return err
	}

	bars, err := pipeline.LoadBars(cleanInput)
	if err != nil {
		return err
	}
	series, rep, err := pipeline.Clean(bars, cfg)
	if err != nil {
		return fmt.Errorf("align: %w", err)
	}
	pipeline.LogAlign(slog.Default(), rep)

	out := cmd.OutOrStdout()
	for _, t := range []struct {
		f    *dataset.Frame
		name string
	}{
		{dataset.FrameFromSeries(series), pipeline.CleanedName},
		{pipeline.RejectionsFrame(sess, rep.Rejections), pipeline.RejectedName},
	} {
		path, err := dataset.Save(w, t.f, cfg.Output.Dir, t.name)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "wrote %s (%d rows)\n", path, t.f.Len())
	}
	pipeline.PrintAlign(out, rep)
	return nil
}
