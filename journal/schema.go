package journal

const Schema = `
CREATE TABLE IF NOT EXISTS runs (
	run_id TEXT PRIMARY KEY,
	created DATETIME NOT NULL,
	input TEXT NOT NULL,
	config TEXT NOT NULL,
	start_time DATETIME,
	end_time DATETIME,
	input_bars INTEGER NOT NULL,
	duplicates INTEGER NOT NULL,
	out_of_session INTEGER NOT NULL,
	days_seen INTEGER NOT NULL,
	days_kept INTEGER NOT NULL,
	unfilled INTEGER NOT NULL,
	feature_rows INTEGER NOT NULL,
	incomplete INTEGER NOT NULL,
	up INTEGER NOT NULL,
	down INTEGER NOT NULL,
	merged_rows INTEGER NOT NULL,
	scored INTEGER NOT NULL,
	threshold REAL NOT NULL,
	bars INTEGER NOT NULL,
	skipped INTEGER NOT NULL,
	trades INTEGER NOT NULL,
	wins INTEGER NOT NULL,
	losses INTEGER NOT NULL,
	win_rate REAL NOT NULL,
	total_pnl REAL NOT NULL,
	avg_pnl REAL NOT NULL,
	gross_profit REAL NOT NULL,
	gross_loss REAL NOT NULL,
	profit_factor REAL NOT NULL,
	sharpe REAL NOT NULL,
	max_drawdown REAL NOT NULL
);

CREATE TABLE IF NOT EXISTS rejections (
	run_id TEXT NOT NULL REFERENCES runs(run_id),
	date TEXT NOT NULL,
	missing INTEGER NOT NULL,
	reason TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS equity (
	run_id TEXT NOT NULL REFERENCES runs(run_id),
	time DATETIME NOT NULL,
	pnl REAL NOT NULL,
	equity REAL NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_rejections_run ON rejections(run_id);
CREATE INDEX IF NOT EXISTS idx_equity_run_time ON equity(run_id, time);
`
