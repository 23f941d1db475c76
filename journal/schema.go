package journal

const Schema = `
CREATE TABLE IF NOT EXISTS runs (
	run_id TEXT PRIMARY KEY,
	created DATETIME NOT NULL,
	start_date DATETIME NOT NULL,
	end_date DATETIME NOT NULL,
	symbols TEXT NOT NULL,
	risk_pct REAL NOT NULL,
	rr REAL NOT NULL,
	lookback INTEGER NOT NULL,
	trades INTEGER NOT NULL,
	wins INTEGER NOT NULL,
	losses INTEGER NOT NULL,
	start_balance REAL NOT NULL,
	end_balance REAL NOT NULL,
	net_pnl REAL NOT NULL,
	win_rate REAL NOT NULL,
	profit_factor REAL NOT NULL,
	max_dd_pct REAL NOT NULL,
	sharpe REAL NOT NULL,
	verdict TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS trades (
	run_id TEXT NOT NULL,
	trade_id TEXT NOT NULL,
	asset_class TEXT NOT NULL,
	symbol TEXT NOT NULL,
	direction TEXT NOT NULL,
	size REAL NOT NULL,
	entry_price REAL NOT NULL,
	exit_price REAL NOT NULL,
	stop_loss REAL NOT NULL,
	take_profit REAL NOT NULL,
	open_date DATETIME NOT NULL,
	close_date DATETIME NOT NULL,
	pnl REAL NOT NULL,
	rr_achieved REAL NOT NULL,
	reason TEXT NOT NULL,
	close_reason TEXT NOT NULL,
	PRIMARY KEY (run_id, trade_id)
);

CREATE TABLE IF NOT EXISTS equity (
	run_id TEXT NOT NULL,
	date DATETIME NOT NULL,
	balance REAL NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_trades_run ON trades(run_id, close_date);
CREATE INDEX IF NOT EXISTS idx_equity_run ON equity(run_id, date);
`
