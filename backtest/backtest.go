// Package backtest replays the signal analyzer over historical candles day
// by day, simulating entries, exits, position caps and account equity.
package backtest

import (
	"errors"
	"sort"
	"time"

	"github.com/rustyeddy/backlab/market"
)

var (
	// ErrNoSymbols means the run was configured with an empty universe.
	ErrNoSymbols = errors.New("backtest: no symbols configured")

	// ErrNoData means no candle dates fall inside the configured range.
	ErrNoData = errors.New("backtest: no candle data in range")

	// ErrNoTrades means a run completed without a single entry, so there
	// is nothing to validate.
	ErrNoTrades = errors.New("backtest: no trades generated")

	// ErrInsufficientHistory means the data cannot cover the requested
	// train/test windows.
	ErrInsufficientHistory = errors.New("backtest: insufficient history for walk-forward")
)

// Key identifies one instrument's candle series.
type Key struct {
	Class  string
	Symbol string
}

// Data maps instruments to their loaded histories.
type Data map[Key]*market.History

// DateUnion returns every distinct candle date across all histories that
// falls inside [start, end], sorted ascending. A zero start or end leaves
// that side unbounded.
func (d Data) DateUnion(start, end time.Time) []time.Time {
	seen := make(map[time.Time]bool)
	for _, h := range d {
		for _, c := range h.Candles {
			if !start.IsZero() && c.Date.Before(start) {
				continue
			}
			if !end.IsZero() && c.Date.After(end) {
				continue
			}
			seen[c.Date] = true
		}
	}
	out := make([]time.Time, 0, len(seen))
	for date := range seen {
		out = append(out, date)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Before(out[j]) })
	return out
}
