package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/rustyeddy/barlab/backtest"
	"github.com/rustyeddy/barlab/config"
	"github.com/rustyeddy/barlab/dataset"
	"github.com/rustyeddy/barlab/internal/id"
	"github.com/rustyeddy/barlab/journal"
	"github.com/rustyeddy/barlab/market"
)

// Output table names, written as <dir>/<name>.<format>.
const (
	CleanedName  = "cleaned"
	RejectedName = "rejected_days"
	LabelsName   = "labels"
	FeaturesName = "features"
	BacktestName = "backtest"
	ReportName   = "report.org"
)

type Options struct {
	Input  string
	Config *config.Config
	Logger *slog.Logger
	Now    func() time.Time
}

type Result struct {
	*Prepared
	Probas   []float64
	Source   string
	Backtest *backtest.Result
	Run      journal.Run
	Outputs  []string
}

// LoadBars reads a price table and converts it to bars.
func LoadBars(path string) ([]market.Bar, error) {
	f, err := dataset.Read(path)
	if err != nil {
		return nil, err
	}
	bars, err := dataset.BarsFromFrame(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return bars, nil
}

// LogAlign reports every exclusion the aligner made.
func LogAlign(log *slog.Logger, rep market.AlignReport) {
	for _, r := range rep.Rejections {
		log.Info("day rejected", "date", r.Date.String(), "missing", r.Missing, "reason", r.Reason)
	}
	if rep.Duplicates > 0 {
		log.Warn("duplicate timestamps dropped", "count", rep.Duplicates)
	}
	if rep.OutOfSession > 0 {
		log.Info("bars outside session ignored", "count", rep.OutOfSession)
	}
	if rep.Unfilled > 0 {
		log.Info("leading minutes left unfilled", "count", rep.Unfilled)
	}
	log.Info("aligned",
		"input_bars", rep.InputBars,
		"days_seen", rep.DaysSeen,
		"days_kept", rep.DaysKept,
		"days_rejected", len(rep.Rejections),
	)
}

// Run executes every stage, writes the stage outputs into the configured
// directory and records the run in the journal.
func Run(ctx context.Context, opts Options) (*Result, error) {
	cfg := opts.Config
	if cfg == nil {
		cfg = config.Default()
	}
	log := opts.Logger
	if log == nil {
		log = slog.Default()
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}

	w, err := dataset.NewWriter(cfg.Output.Format)
	if err != nil {
		return nil, err
	}
	sess, err := cfg.MarketSession()
	if err != nil {
		return nil, err
	}

	bars, err := LoadBars(opts.Input)
	if err != nil {
		return nil, err
	}
	log.Info("loaded", "input", opts.Input, "bars", len(bars))

	prep, err := Prepare(bars, cfg)
	if err != nil {
		return nil, err
	}
	LogAlign(log, prep.Align)
	log.Info("features",
		"rows", prep.FeatureReport.Emitted,
		"incomplete", prep.FeatureReport.Incomplete,
		"unfilled", prep.FeatureReport.Unfilled,
		"columns", len(prep.Features.Columns),
	)
	log.Info("labels",
		"up", prep.Balance.Up,
		"down", prep.Balance.Down,
		"up_pct", fmt.Sprintf("%.2f", prep.Balance.UpPct()),
		"dropped_day_ends", prep.Balance.Dropped,
		"unfilled", prep.Balance.Unfilled,
	)
	log.Info("merged", "rows", prep.Table.Len())

	res := &Result{Prepared: prep}
	dir := cfg.Output.Dir
	save := func(f *dataset.Frame, name string) error {
		path, err := dataset.Save(w, f, dir, name)
		if err != nil {
			return err
		}
		res.Outputs = append(res.Outputs, path)
		log.Debug("wrote", "path", path, "rows", f.Len())
		return nil
	}
	if err := save(dataset.FrameFromSeries(prep.Series), CleanedName); err != nil {
		return nil, err
	}
	if err := save(RejectionsFrame(sess, prep.Align.Rejections), RejectedName); err != nil {
		return nil, err
	}
	if err := save(prep.Table, FeaturesName); err != nil {
		return nil, err
	}

	run := journal.Run{
		Input:        filepath.Base(opts.Input),
		InputBars:    prep.Align.InputBars,
		Duplicates:   prep.Align.Duplicates,
		OutOfSession: prep.Align.OutOfSession,
		DaysSeen:     prep.Align.DaysSeen,
		DaysKept:     prep.Align.DaysKept,
		Unfilled:     prep.Align.Unfilled,
		FeatureRows:  prep.FeatureReport.Emitted,
		Incomplete:   prep.FeatureReport.Incomplete,
		Up:           prep.Balance.Up,
		Down:         prep.Balance.Down,
		MergedRows:   prep.Table.Len(),
		Rejections:   prep.Align.Rejections,
	}
	if n := prep.Series.Len(); n > 0 {
		run.Start, run.End = prep.Series.Bars[0].Time, prep.Series.Bars[n-1].Time
	}

	res.Probas, res.Source, err = Probabilities(prep.Table, cfg)
	if err != nil {
		return nil, fmt.Errorf("score: %w", err)
	}
	if res.Probas == nil {
		log.Warn("no probabilities available, backtest skipped", "column", cfg.Model.Column)
		run.Notes = append(run.Notes, fmt.Sprintf("no %q column and no model path; backtest skipped", cfg.Model.Column))
		// a stale table from an earlier scored run would no longer match
		stale := filepath.Join(dir, BacktestName+"."+w.Extension())
		if err := os.Remove(stale); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, err
		}
	} else {
		bt, err := Backtest(prep.Table, res.Probas, cfg.Backtest.Threshold)
		if err != nil {
			return nil, fmt.Errorf("backtest: %w", err)
		}
		res.Backtest = &bt
		if bt.Report.Skipped > 0 {
			log.Info("rows without next close skipped", "count", bt.Report.Skipped)
		}
		log.Info("backtest",
			"source", res.Source,
			"threshold", bt.Threshold,
			"trades", bt.Report.Trades,
			"total_pnl", bt.Report.TotalPnL,
			"sharpe", bt.Report.Sharpe,
			"max_drawdown", bt.Report.MaxDrawdown,
		)
		if err := save(BacktestFrame(bt), BacktestName); err != nil {
			return nil, err
		}
		run.Scored = true
		run.Threshold = bt.Threshold
		run.Report = bt.Report
		run.Equity = journal.EquityFromPoints(bt.Points)
	}

	orgPath := filepath.Join(dir, ReportName)
	if err := journal.WriteOrgFile(orgPath, run); err != nil {
		return nil, err
	}
	res.Outputs = append(res.Outputs, orgPath)

	run.Created = now().UTC()
	run.RunID = id.New(run.Created)
	if run.Config, err = yaml.Marshal(cfg); err != nil {
		return nil, fmt.Errorf("marshal config: %w", err)
	}
	res.Run = run

	if cfg.Journal.DBPath != "" {
		if err := record(ctx, cfg.Journal.DBPath, run); err != nil {
			return nil, fmt.Errorf("journal: %w", err)
		}
		log.Info("journaled", "run_id", run.RunID, "db", cfg.Journal.DBPath)
	}
	return res, nil
}

func record(ctx context.Context, path string, run journal.Run) error {
	j, err := journal.NewSQLite(path)
	if err != nil {
		return err
	}
	if err := j.RecordRun(ctx, run); err != nil {
		_ = j.Close()
		return err
	}
	return j.Close()
}
