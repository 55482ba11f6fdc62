package journal

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/rustyeddy/barlab/market"
)

type SQLite struct {
	db *sql.DB
}

func NewSQLite(path string) (*SQLite, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}

	if _, err := db.Exec(Schema); err != nil {
		_ = db.Close()
		return nil, err
	}

	return &SQLite{db: db}, nil
}

// RecordRun stores the run, its rejected days and its equity curve in one
// transaction.
func (j *SQLite) RecordRun(ctx context.Context, r Run) error {
	if r.RunID == "" {
		return errors.New("run id is required")
	}
	tx, err := j.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	rp := r.Report
	_, err = tx.ExecContext(ctx, `
		INSERT INTO runs
		(run_id, created, input, config, start_time, end_time,
		 input_bars, duplicates, out_of_session, days_seen, days_kept, unfilled,
		 feature_rows, incomplete, up, down, merged_rows,
		 scored, threshold, bars, skipped, trades, wins, losses, win_rate,
		 total_pnl, avg_pnl, gross_profit, gross_loss, profit_factor, sharpe, max_drawdown)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		r.RunID, r.Created.UTC(), r.Input, string(r.Config), nullTime(r.Start), nullTime(r.End),
		r.InputBars, r.Duplicates, r.OutOfSession, r.DaysSeen, r.DaysKept, r.Unfilled,
		r.FeatureRows, r.Incomplete, r.Up, r.Down, r.MergedRows,
		r.Scored, r.Threshold, rp.Bars, rp.Skipped, rp.Trades, rp.Wins, rp.Losses, rp.WinRate,
		rp.TotalPnL, rp.AvgPnL, rp.GrossProfit, rp.GrossLoss, rp.ProfitFactor, rp.Sharpe, rp.MaxDrawdown,
	)
	if err != nil {
		return fmt.Errorf("insert run: %w", err)
	}

	for _, rej := range r.Rejections {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO rejections (run_id, date, missing, reason) VALUES (?, ?, ?, ?)`,
			r.RunID, rej.Date.String(), rej.Missing, rej.Reason); err != nil {
			return fmt.Errorf("insert rejection: %w", err)
		}
	}

	if len(r.Equity) > 0 {
		stmt, err := tx.PrepareContext(ctx, `INSERT INTO equity (run_id, time, pnl, equity) VALUES (?, ?, ?, ?)`)
		if err != nil {
			return err
		}
		defer stmt.Close()
		for _, e := range r.Equity {
			if _, err := stmt.ExecContext(ctx, r.RunID, e.Time.UTC(), e.PnL, e.Equity); err != nil {
				return fmt.Errorf("insert equity: %w", err)
			}
		}
	}

	return tx.Commit()
}

// GetRun loads a run with its rejections and equity curve.
func (j *SQLite) GetRun(ctx context.Context, runID string) (Run, error) {
	var (
		r          Run
		cfg        string
		start, end sql.NullTime
	)
	rp := &r.Report
	err := j.db.QueryRowContext(ctx, `
		SELECT run_id, created, input, config, start_time, end_time,
		 input_bars, duplicates, out_of_session, days_seen, days_kept, unfilled,
		 feature_rows, incomplete, up, down, merged_rows,
		 scored, threshold, bars, skipped, trades, wins, losses, win_rate,
		 total_pnl, avg_pnl, gross_profit, gross_loss, profit_factor, sharpe, max_drawdown
		FROM runs WHERE run_id = ?`, runID).Scan(
		&r.RunID, &r.Created, &r.Input, &cfg, &start, &end,
		&r.InputBars, &r.Duplicates, &r.OutOfSession, &r.DaysSeen, &r.DaysKept, &r.Unfilled,
		&r.FeatureRows, &r.Incomplete, &r.Up, &r.Down, &r.MergedRows,
		&r.Scored, &r.Threshold, &rp.Bars, &rp.Skipped, &rp.Trades, &rp.Wins, &rp.Losses, &rp.WinRate,
		&rp.TotalPnL, &rp.AvgPnL, &rp.GrossProfit, &rp.GrossLoss, &rp.ProfitFactor, &rp.Sharpe, &rp.MaxDrawdown,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Run{}, fmt.Errorf("run %q not found", runID)
		}
		return Run{}, err
	}
	r.Config = []byte(cfg)
	r.Start, r.End = start.Time, end.Time

	if r.Rejections, err = j.ListRejections(ctx, runID); err != nil {
		return Run{}, err
	}
	if r.Equity, err = j.ListEquity(ctx, runID); err != nil {
		return Run{}, err
	}
	return r, nil
}

// ListRunIDs returns run ids oldest first.
func (j *SQLite) ListRunIDs(ctx context.Context) ([]string, error) {
	rows, err := j.db.QueryContext(ctx, `SELECT run_id FROM runs ORDER BY run_id ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		out = append(out, id)
	}
	return out, rows.Err()
}

func (j *SQLite) ListRejections(ctx context.Context, runID string) ([]market.Rejection, error) {
	rows, err := j.db.QueryContext(ctx, `
		SELECT date, missing, reason FROM rejections
		WHERE run_id = ? ORDER BY date ASC`, runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []market.Rejection
	for rows.Next() {
		var (
			date string
			rej  market.Rejection
		)
		if err := rows.Scan(&date, &rej.Missing, &rej.Reason); err != nil {
			return nil, err
		}
		d, err := time.Parse("2006-01-02", date)
		if err != nil {
			return nil, fmt.Errorf("rejection date %q: %w", date, err)
		}
		rej.Date = market.DateOf(d, time.UTC)
		out = append(out, rej)
	}
	return out, rows.Err()
}

func (j *SQLite) ListEquity(ctx context.Context, runID string) ([]EquityPoint, error) {
	rows, err := j.db.QueryContext(ctx, `
		SELECT time, pnl, equity FROM equity
		WHERE run_id = ? ORDER BY time ASC`, runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []EquityPoint
	for rows.Next() {
		var e EquityPoint
		if err := rows.Scan(&e.Time, &e.PnL, &e.Equity); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

func (j *SQLite) Close() error {
	return j.db.Close()
}

func nullTime(t time.Time) sql.NullTime {
	return sql.NullTime{Time: t.UTC(), Valid: !t.IsZero()}
}
