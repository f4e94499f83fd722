// journal/schema.go
package journal

const Schema = `
CREATE TABLE IF NOT EXISTS backtest_runs (
	run_id TEXT PRIMARY KEY,
	created DATETIME NOT NULL,
	pair TEXT NOT NULL,
	source TEXT NOT NULL,
	timeframe TEXT NOT NULL,
	start_time DATETIME NOT NULL,
	end_time DATETIME NOT NULL,
	candles INTEGER NOT NULL,
	found INTEGER NOT NULL,
	strategy TEXT NOT NULL,
	signal_column TEXT NOT NULL,
	wma_column TEXT NOT NULL,
	period INTEGER NOT NULL,
	capital REAL NOT NULL,
	units REAL NOT NULL,
	evaluated INTEGER NOT NULL,
	recorded INTEGER NOT NULL,
	skipped INTEGER NOT NULL,
	trades INTEGER NOT NULL,
	wins INTEGER NOT NULL,
	losses INTEGER NOT NULL,
	profit_quote REAL NOT NULL,
	profit_base REAL NOT NULL,
	final_quote REAL NOT NULL,
	max_drawdown REAL NOT NULL,
	git_commit TEXT NOT NULL,
	org_path TEXT NOT NULL,
	notes TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS ledger (
	run_id TEXT NOT NULL REFERENCES backtest_runs(run_id),
	seq INTEGER NOT NULL,
	time DATETIME NOT NULL,
	position TEXT NOT NULL,
	signal INTEGER NOT NULL,
	event TEXT NOT NULL,
	price REAL NOT NULL,
	holdings REAL NOT NULL,
	buy_spend REAL NOT NULL,
	sell_spend REAL NOT NULL,
	quote_net_asset REAL NOT NULL,
	base_net_asset REAL NOT NULL,
	drawdown REAL NOT NULL,
	PRIMARY KEY (run_id, seq)
);

CREATE INDEX IF NOT EXISTS idx_backtest_runs_created ON backtest_runs(created);
`
