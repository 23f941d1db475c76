package journal

import (
	"database/sql"

	_ "github.com/mattn/go-sqlite3"
)

// SQLite journals into a single database file, creating the schema on
// open.
type SQLite struct {
	db *sql.DB
}

func NewSQLite(path string) (*SQLite, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}
	if _, err := db.Exec(Schema); err != nil {
		db.Close()
		return nil, err
	}
	return &SQLite{db: db}, nil
}

func (j *SQLite) RecordRun(r RunRecord) error {
	_, err := j.db.Exec(`
		INSERT OR REPLACE INTO runs
		(run_id, created, start_date, end_date, symbols, risk_pct, rr, lookback,
		 trades, wins, losses, start_balance, end_balance, net_pnl, win_rate,
		 profit_factor, max_dd_pct, sharpe, verdict)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		r.RunID, r.Created, r.Start, r.End, r.Symbols, r.RiskPct, r.RR, r.Lookback,
		r.Trades, r.Wins, r.Losses, r.StartBalance, r.EndBalance, r.NetPnL, r.WinRate,
		r.ProfitFactor, r.MaxDDPct, r.Sharpe, r.Verdict,
	)
	return err
}

func (j *SQLite) RecordTrade(t TradeRecord) error {
	_, err := j.db.Exec(`
		INSERT INTO trades
		(run_id, trade_id, asset_class, symbol, direction, size, entry_price,
		 exit_price, stop_loss, take_profit, open_date, close_date, pnl,
		 rr_achieved, reason, close_reason)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		t.RunID, t.TradeID, t.Class, t.Symbol, t.Direction, t.Size, t.Entry,
		t.Exit, t.StopLoss, t.TakeProfit, t.OpenDate, t.CloseDate, t.PnL,
		t.RMultiple, t.Reason, t.CloseReason,
	)
	return err
}

func (j *SQLite) RecordEquity(e EquitySnapshot) error {
	_, err := j.db.Exec(`
		INSERT INTO equity (run_id, date, balance) VALUES (?, ?, ?)`,
		e.RunID, e.Date, e.Balance,
	)
	return err
}

func (j *SQLite) Close() error {
	return j.db.Close()
}
