package backtest

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/rustyeddy/backlab/asset"
	"github.com/rustyeddy/backlab/config"
)

// CloseReason records why a position left the book.
type CloseReason string

const (
	CloseStopLoss   CloseReason = "stop_loss"
	CloseTakeProfit CloseReason = "take_profit"
	CloseWeekend    CloseReason = "weekend_close"
	CloseEndOfTest  CloseReason = "end_of_test"
)

// Position is an open trade inside the simulation.
type Position struct {
	ID         string
	EntryDate  time.Time
	Class      string
	Symbol     string
	Direction  asset.Direction
	Entry      float64
	StopLoss   float64
	TakeProfit float64
	Size       float64
	Reason     string
	RiskAmount float64

	inst config.Instrument
}

// Trade is a closed position. Entry and exit prices stay raw; P&L is
// rounded to 6 decimals and the R-multiple to 4 so the ledger adds up
// the same everywhere it is summed.
type Trade struct {
	ID          string          `json:"id"`
	EntryDate   time.Time       `json:"entry_date"`
	CloseDate   time.Time       `json:"close_date"`
	Class       string          `json:"asset_class"`
	Symbol      string          `json:"symbol"`
	Direction   asset.Direction `json:"direction"`
	Entry       float64         `json:"entry"`
	Exit        float64         `json:"exit"`
	StopLoss    float64         `json:"stop_loss"`
	TakeProfit  float64         `json:"take_profit"`
	Size        float64         `json:"size"`
	Reason      string          `json:"reason"`
	PnL         float64         `json:"pnl"`
	RMultiple   float64         `json:"rr_achieved"`
	CloseReason CloseReason     `json:"close_reason"`
}

// Win reports whether the trade made money.
func (t Trade) Win() bool { return t.PnL > 0 }

// EquityPoint is one day's account value, open positions marked at that
// day's close.
type EquityPoint struct {
	Date    time.Time `json:"date"`
	Balance float64   `json:"balance"`
}

// Result is the output of one run.
type Result struct {
	Trades         []Trade       `json:"trades"`
	Equity         []EquityPoint `json:"equity_curve"`
	InitialBalance float64       `json:"initial_balance"`
	FinalBalance   float64       `json:"final_balance"`
	Start          time.Time     `json:"start"`
	End            time.Time     `json:"end"`
}

func round6(v float64) float64 {
	return decimal.NewFromFloat(v).Round(6).InexactFloat64()
}

func round4(v float64) float64 {
	return decimal.NewFromFloat(v).Round(4).InexactFloat64()
}
