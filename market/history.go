package market

import (
	"fmt"
	"sort"
	"time"
)

// History is the full daily series for one symbol, sorted ascending by date
// with no duplicates. The date index makes per-day lookups O(1) inside the
// backtest loop.
type History struct {
	Symbol  string
	Candles []Candle

	byDate map[time.Time]int
}

// NewHistory builds a History and verifies the series is strictly ascending.
// Out-of-order or duplicate dates are load errors, not something to paper
// over at simulation time.
func NewHistory(symbol string, candles []Candle) (*History, error) {
	h := &History{
		Symbol:  symbol,
		Candles: candles,
		byDate:  make(map[time.Time]int, len(candles)),
	}
	var prev time.Time
	for i, c := range candles {
		d := Day(c.Date)
		if i > 0 && !d.After(prev) {
			return nil, fmt.Errorf("history %s: candle %d (%s) out of order",
				symbol, i, d.Format("2006-01-02"))
		}
		h.Candles[i].Date = d
		h.byDate[d] = i
		prev = d
	}
	return h, nil
}

// Len returns the number of candles.
func (h *History) Len() int { return len(h.Candles) }

// IndexOf returns the position of the candle on date, if any.
func (h *History) IndexOf(date time.Time) (int, bool) {
	i, ok := h.byDate[Day(date)]
	return i, ok
}

// At returns the candle on date, if any.
func (h *History) At(date time.Time) (Candle, bool) {
	i, ok := h.byDate[Day(date)]
	if !ok {
		return Candle{}, false
	}
	return h.Candles[i], true
}

// UpTo returns the series through index i inclusive. Callers that simulate
// day by day use this to keep later candles out of reach.
func (h *History) UpTo(i int) []Candle {
	if i < 0 {
		return nil
	}
	if i >= len(h.Candles) {
		i = len(h.Candles) - 1
	}
	return h.Candles[:i+1]
}

// Last returns the final candle of the series.
func (h *History) Last() (Candle, bool) {
	if len(h.Candles) == 0 {
		return Candle{}, false
	}
	return h.Candles[len(h.Candles)-1], true
}

// LastAtOrBefore returns the most recent candle on or before date.
func (h *History) LastAtOrBefore(date time.Time) (Candle, bool) {
	d := Day(date)
	n := sort.Search(len(h.Candles), func(i int) bool {
		return h.Candles[i].Date.After(d)
	})
	if n == 0 {
		return Candle{}, false
	}
	return h.Candles[n-1], true
}

// First returns the earliest candle of the series.
func (h *History) First() (Candle, bool) {
	if len(h.Candles) == 0 {
		return Candle{}, false
	}
	return h.Candles[0], true
}
