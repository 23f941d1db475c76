package journal

import (
	"encoding/csv"
	"os"
	"strconv"
	"time"
)

// CSV journals into three files, one per concern, header row first.
// Rows are flushed as they land so a crashed run still leaves usable
// files.
type CSV struct {
	runs, trades, equity *csv.Writer
	rf, tf, ef           *os.File
}

var (
	runHeader = []string{
		"run_id", "created", "start_date", "end_date", "symbols", "risk_pct",
		"rr", "lookback", "trades", "wins", "losses", "start_balance",
		"end_balance", "net_pnl", "win_rate", "profit_factor", "max_dd_pct",
		"sharpe", "verdict",
	}
	tradeHeader = []string{
		"run_id", "trade_id", "asset_class", "symbol", "direction", "size",
		"entry_price", "exit_price", "stop_loss", "take_profit", "open_date",
		"close_date", "pnl", "rr_achieved", "reason", "close_reason",
	}
	equityHeader = []string{"run_id", "date", "balance"}
)

func NewCSV(runsPath, tradesPath, equityPath string) (*CSV, error) {
	rf, err := os.Create(runsPath)
	if err != nil {
		return nil, err
	}
	tf, err := os.Create(tradesPath)
	if err != nil {
		rf.Close()
		return nil, err
	}
	ef, err := os.Create(equityPath)
	if err != nil {
		rf.Close()
		tf.Close()
		return nil, err
	}

	j := &CSV{
		runs: csv.NewWriter(rf), trades: csv.NewWriter(tf), equity: csv.NewWriter(ef),
		rf: rf, tf: tf, ef: ef,
	}
	for w, header := range map[*csv.Writer][]string{
		j.runs: runHeader, j.trades: tradeHeader, j.equity: equityHeader,
	} {
		if err := w.Write(header); err != nil {
			j.Close()
			return nil, err
		}
		w.Flush()
		if err := w.Error(); err != nil {
			j.Close()
			return nil, err
		}
	}
	return j, nil
}

func (j *CSV) RecordRun(r RunRecord) error {
	err := j.runs.Write([]string{
		r.RunID,
		r.Created.Format(time.RFC3339),
		day(r.Start),
		day(r.End),
		r.Symbols,
		f(r.RiskPct),
		f(r.RR),
		strconv.Itoa(r.Lookback),
		strconv.Itoa(r.Trades),
		strconv.Itoa(r.Wins),
		strconv.Itoa(r.Losses),
		f(r.StartBalance),
		f(r.EndBalance),
		f(r.NetPnL),
		f(r.WinRate),
		f(r.ProfitFactor),
		f(r.MaxDDPct),
		f(r.Sharpe),
		r.Verdict,
	})
	if err != nil {
		return err
	}
	j.runs.Flush()
	return j.runs.Error()
}

func (j *CSV) RecordTrade(t TradeRecord) error {
	err := j.trades.Write([]string{
		t.RunID,
		t.TradeID,
		t.Class,
		t.Symbol,
		t.Direction,
		f(t.Size),
		f(t.Entry),
		f(t.Exit),
		f(t.StopLoss),
		f(t.TakeProfit),
		day(t.OpenDate),
		day(t.CloseDate),
		f(t.PnL),
		f(t.RMultiple),
		t.Reason,
		t.CloseReason,
	})
	if err != nil {
		return err
	}
	j.trades.Flush()
	return j.trades.Error()
}

func (j *CSV) RecordEquity(e EquitySnapshot) error {
	err := j.equity.Write([]string{e.RunID, day(e.Date), f(e.Balance)})
	if err != nil {
		return err
	}
	j.equity.Flush()
	return j.equity.Error()
}

func (j *CSV) Close() error {
	for _, w := range []*csv.Writer{j.runs, j.trades, j.equity} {
		w.Flush()
		if err := w.Error(); err != nil {
			return err
		}
	}
	for _, file := range []*os.File{j.rf, j.tf, j.ef} {
		if err := file.Close(); err != nil {
			return err
		}
	}
	return nil
}

func f(x float64) string {
	return strconv.FormatFloat(x, 'f', 6, 64)
}

func day(t time.Time) string {
	return t.Format("2006-01-02")
}
