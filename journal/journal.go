// Package journal persists validation runs so results can be compared
// across strategy and parameter changes. Two backends: sqlite for
// queryable history, csv for spreadsheet import.
package journal

import (
	"fmt"
	"strings"
	"time"

	"github.com/rustyeddy/backlab/backtest"
	"github.com/rustyeddy/backlab/config"
	"github.com/rustyeddy/backlab/stats"
)

// RunRecord is one validation run's summary row.
type RunRecord struct {
	RunID   string
	Created time.Time

	Start time.Time
	End   time.Time

	Symbols  string // comma-joined watchlist
	RiskPct  float64
	RR       float64
	Lookback int

	Trades int
	Wins   int
	Losses int

	StartBalance float64
	EndBalance   float64
	NetPnL       float64
	WinRate      float64
	ProfitFactor float64
	MaxDDPct     float64
	Sharpe       float64

	Verdict string
}

// TradeRecord is one closed trade, keyed by the run it belongs to.
type TradeRecord struct {
	RunID   string
	TradeID string

	Class     string
	Symbol    string
	Direction string
	Size      float64

	Entry      float64
	Exit       float64
	StopLoss   float64
	TakeProfit float64

	OpenDate  time.Time
	CloseDate time.Time

	PnL         float64
	RMultiple   float64
	Reason      string
	CloseReason string
}

// EquitySnapshot is one day of a run's equity curve.
type EquitySnapshot struct {
	RunID   string
	Date    time.Time
	Balance float64
}

// Journal records a run and its detail rows.
type Journal interface {
	RecordRun(RunRecord) error
	RecordTrade(TradeRecord) error
	RecordEquity(EquitySnapshot) error
	Close() error
}

// New builds the journal the config asks for. Type "none" or empty gets
// a no-op journal so callers never branch.
func New(cfg config.JournalConfig) (Journal, error) {
	switch cfg.Type {
	case "sqlite":
		return NewSQLite(cfg.DBPath)
	case "csv":
		return NewCSV(cfg.RunsFile, cfg.TradesFile, cfg.EquityFile)
	case "", "none":
		return Nop{}, nil
	}
	return nil, fmt.Errorf("journal: unknown type %q", cfg.Type)
}

// Nop discards everything.
type Nop struct{}

func (Nop) RecordRun(RunRecord) error         { return nil }
func (Nop) RecordTrade(TradeRecord) error     { return nil }
func (Nop) RecordEquity(EquitySnapshot) error { return nil }
func (Nop) Close() error                      { return nil }

// NewRunRecord summarizes a finished run for the journal.
func NewRunRecord(runID string, cfg backtest.Config, res *backtest.Result, m *stats.Metrics, verdict string) RunRecord {
	symbols := make([]string, len(cfg.Symbols))
	for i, s := range cfg.Symbols {
		symbols[i] = s.Instrument.Symbol
	}
	return RunRecord{
		RunID:        runID,
		Created:      time.Now().UTC(),
		Start:        res.Start,
		End:          res.End,
		Symbols:      strings.Join(symbols, ","),
		RiskPct:      cfg.MaxRisk,
		RR:           cfg.RewardRisk,
		Lookback:     cfg.Lookback,
		Trades:       m.TotalTrades,
		Wins:         m.Wins,
		Losses:       m.Losses,
		StartBalance: res.InitialBalance,
		EndBalance:   res.FinalBalance,
		NetPnL:       m.TotalPnL,
		WinRate:      m.WinRate,
		ProfitFactor: m.ProfitFactor,
		MaxDDPct:     m.MaxDrawdown * 100,
		Sharpe:       m.Sharpe,
		Verdict:      verdict,
	}
}

// NewTradeRecord converts an engine trade for the journal.
func NewTradeRecord(runID string, t backtest.Trade) TradeRecord {
	return TradeRecord{
		RunID:       runID,
		TradeID:     t.ID,
		Class:       t.Class,
		Symbol:      t.Symbol,
		Direction:   string(t.Direction),
		Size:        t.Size,
		Entry:       t.Entry,
		Exit:        t.Exit,
		StopLoss:    t.StopLoss,
		TakeProfit:  t.TakeProfit,
		OpenDate:    t.EntryDate,
		CloseDate:   t.CloseDate,
		PnL:         t.PnL,
		RMultiple:   t.RMultiple,
		Reason:      t.Reason,
		CloseReason: string(t.CloseReason),
	}
}

// RecordResult writes the run row plus every trade and equity point.
func RecordResult(j Journal, runID string, cfg backtest.Config, res *backtest.Result, m *stats.Metrics, verdict string) error {
	if err := j.RecordRun(NewRunRecord(runID, cfg, res, m, verdict)); err != nil {
		return fmt.Errorf("journal: run %s: %w", runID, err)
	}
	for _, t := range res.Trades {
		if err := j.RecordTrade(NewTradeRecord(runID, t)); err != nil {
			return fmt.Errorf("journal: trade %s: %w", t.ID, err)
		}
	}
	for _, p := range res.Equity {
		if err := j.RecordEquity(EquitySnapshot{RunID: runID, Date: p.Date, Balance: p.Balance}); err != nil {
			return fmt.Errorf("journal: equity %s: %w", p.Date.Format(config.DateLayout), err)
		}
	}
	return nil
}
