package cmd

import (
	"fmt"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/rustyeddy/barlab/internal/id"
	"github.com/rustyeddy/barlab/journal"
)

var journalCmd = &cobra.Command{
	Use:   "journal",
	Short: "Query the run journal",
	Long: `Query and display recorded runs from the SQLite journal.

Subcommands:
  list  - List every recorded run
  show  - Print the Org report of one run

Examples:
  barlab journal list
  barlab journal show 01HMZ3K6Q8V7W2X5Y9Z0A1B2C3`,
}

var journalListCmd = &cobra.Command{
	Use:   "list",
	Short: "List recorded runs",
	Args:  cobra.NoArgs,
	RunE:  runJournalList,
}

var journalShowCmd = &cobra.Command{
	Use:   "show <run-id>",
	Short: "Print the Org report of a run",
	Args:  cobra.ExactArgs(1),
	RunE:  runJournalShow,
}

var journalDBPath string

func init() {
	rootCmd.AddCommand(journalCmd)
	journalCmd.AddCommand(journalListCmd)
	journalCmd.AddCommand(journalShowCmd)

	journalCmd.PersistentFlags().StringVarP(&journalDBPath, "db", "d", "", "path to SQLite journal DB (default from config)")
}

func openJournal() (*journal.SQLite, error) {
	path := journalDBPath
	if path == "" {
		path = cfg.Journal.DBPath
	}
	if path == "" {
		return nil, fmt.Errorf("no journal: pass --db or set journal.db_path")
	}
	j, err := journal.NewSQLite(path)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	return j, nil
}

func runJournalList(cmd *cobra.Command, args []string) error {
	j, err := openJournal()
	if err != nil {
		return err
	}
	defer j.Close()

	ctx := cmd.Context()
	ids, err := j.ListRunIDs(ctx)
	if err != nil {
		return fmt.Errorf("list runs: %w", err)
	}

	table := tablewriter.NewWriter(cmd.OutOrStdout())
	table.Header("Run", "Created", "Input", "Days", "Trades", "Total PnL", "Sharpe")
	for _, runID := range ids {
		r, err := j.GetRun(ctx, runID)
		if err != nil {
			return err
		}
		created := r.Created
		if created.IsZero() {
			created, _ = id.Time(runID)
		}
		table.Append(
			runID,
			created.Format("2006-01-02 15:04"),
			r.Input,
			fmt.Sprintf("%d/%d", r.DaysKept, r.DaysSeen),
			fmt.Sprintf("%d", r.Report.Trades),
			fmt.Sprintf("%.4f", r.Report.TotalPnL),
			fmt.Sprintf("%.4f", r.Report.Sharpe),
		)
	}
	table.Render()
	return nil
}

func runJournalShow(cmd *cobra.Command, args []string) error {
	j, err := openJournal()
	if err != nil {
		return err
	}
	defer j.Close()

	r, err := j.GetRun(cmd.Context(), args[0])
	if err != nil {
		return fmt.Errorf("get run: %w", err)
	}
	return journal.WriteOrg(cmd.OutOrStdout(), r)
}
