package journal

import (
	"database/sql"
	"fmt"
)

// GetRun returns a single run's summary row.
func (j *SQLite) GetRun(runID string) (RunRecord, error) {
	row := j.db.QueryRow(`
		SELECT run_id, created, start_date, end_date, symbols, risk_pct, rr,
		       lookback, trades, wins, losses, start_balance, end_balance,
		       net_pnl, win_rate, profit_factor, max_dd_pct, sharpe, verdict
		FROM runs
		WHERE run_id = ?`, runID)

	rec, err := scanRun(row)
	if err == sql.ErrNoRows {
		return RunRecord{}, fmt.Errorf("journal: run %q not found", runID)
	}
	return rec, err
}

// ListRuns returns every recorded run, newest first.
func (j *SQLite) ListRuns() ([]RunRecord, error) {
	rows, err := j.db.Query(`
		SELECT run_id, created, start_date, end_date, symbols, risk_pct, rr,
		       lookback, trades, wins, losses, start_balance, end_balance,
		       net_pnl, win_rate, profit_factor, max_dd_pct, sharpe, verdict
		FROM runs
		ORDER BY created DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []RunRecord
	for rows.Next() {
		rec, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

// TradesByRun returns a run's trades in close order.
func (j *SQLite) TradesByRun(runID string) ([]TradeRecord, error) {
	rows, err := j.db.Query(`
		SELECT run_id, trade_id, asset_class, symbol, direction, size,
		       entry_price, exit_price, stop_loss, take_profit, open_date,
		       close_date, pnl, rr_achieved, reason, close_reason
		FROM trades
		WHERE run_id = ?
		ORDER BY close_date ASC, trade_id ASC`, runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []TradeRecord
	for rows.Next() {
		var t TradeRecord
		if err := rows.Scan(
			&t.RunID, &t.TradeID, &t.Class, &t.Symbol, &t.Direction, &t.Size,
			&t.Entry, &t.Exit, &t.StopLoss, &t.TakeProfit, &t.OpenDate,
			&t.CloseDate, &t.PnL, &t.RMultiple, &t.Reason, &t.CloseReason,
		); err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

// EquityByRun returns a run's equity curve in date order.
func (j *SQLite) EquityByRun(runID string) ([]EquitySnapshot, error) {
	rows, err := j.db.Query(`
		SELECT run_id, date, balance
		FROM equity
		WHERE run_id = ?
		ORDER BY date ASC`, runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []EquitySnapshot
	for rows.Next() {
		var e EquitySnapshot
		if err := rows.Scan(&e.RunID, &e.Date, &e.Balance); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRun(row rowScanner) (RunRecord, error) {
	var r RunRecord
	err := row.Scan(
		&r.RunID, &r.Created, &r.Start, &r.End, &r.Symbols, &r.RiskPct, &r.RR,
		&r.Lookback, &r.Trades, &r.Wins, &r.Losses, &r.StartBalance, &r.EndBalance,
		&r.NetPnL, &r.WinRate, &r.ProfitFactor, &r.MaxDDPct, &r.Sharpe, &r.Verdict,
	)
	return r, err
}
