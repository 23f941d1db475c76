package stats

import (
	"github.com/rustyeddy/backlab/backtest"
	"github.com/rustyeddy/backlab/signal"
)

// RegimeStats is the per-regime slice of the trade record.
type RegimeStats struct {
	Regime       signal.Regime `json:"regime"`
	Trades       int           `json:"trades"`
	WinRate      float64       `json:"win_rate"`
	Expectancy   float64       `json:"expectancy_usd"`
	ProfitFactor float64       `json:"profit_factor"`
	TotalPnL     float64       `json:"total_pnl"`
}

// SegmentByRegime buckets closed trades by the market regime in force
// when each was opened, classified on the candles up to and including
// the entry date. Trades whose symbol has no usable history land in the
// unknown bucket.
func SegmentByRegime(trades []backtest.Trade, data backtest.Data) map[signal.Regime][]backtest.Trade {
	out := make(map[signal.Regime][]backtest.Trade)
	for _, t := range trades {
		regime := signal.RegimeUnknown
		if h, ok := data[backtest.Key{Class: t.Class, Symbol: t.Symbol}]; ok {
			if i, ok := h.IndexOf(t.EntryDate); ok {
				regime = signal.ClassifyRegime(h.UpTo(i))
			}
		}
		out[regime] = append(out[regime], t)
	}
	return out
}

// RegimeBreakdown segments the trades and summarizes each bucket, in
// report order. Empty buckets are omitted.
func RegimeBreakdown(trades []backtest.Trade, data backtest.Data) []RegimeStats {
	buckets := SegmentByRegime(trades, data)

	out := make([]RegimeStats, 0, len(buckets))
	for _, regime := range signal.Regimes {
		bucket := buckets[regime]
		if len(bucket) == 0 {
			continue
		}

		var wins int
		var total, grossWin, grossLoss float64
		for _, t := range bucket {
			total += t.PnL
			if t.Win() {
				wins++
				grossWin += t.PnL
			} else {
				grossLoss += -t.PnL
			}
		}

		pf := 0.0
		switch {
		case grossLoss > 0:
			pf = round4(grossWin / grossLoss)
		case grossWin > 0:
			pf = ratioCap
		}

		out = append(out, RegimeStats{
			Regime:       regime,
			Trades:       len(bucket),
			WinRate:      round4(float64(wins) / float64(len(bucket))),
			Expectancy:   round2(total / float64(len(bucket))),
			ProfitFactor: pf,
			TotalPnL:     round2(total),
		})
	}
	return out
}
