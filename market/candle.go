// Package market holds daily OHLC candle data and the loaders that read it
// from disk. Histories are immutable once loaded; everything downstream
// (signals, backtests, stats) works off slices of Candle.
package market

import (
	"fmt"
	"math"
	"time"
)

// Candle is one daily bar. Dates are normalized to midnight UTC so they can
// be compared and used as map keys directly.
type Candle struct {
	Date  time.Time
	Open  float64
	High  float64
	Low   float64
	Close float64
}

// Day truncates t to midnight UTC.
func Day(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// Validate rejects candles that cannot have printed: non-positive prices,
// a high below the body, or a low above it.
func (c Candle) Validate() error {
	if c.Date.IsZero() {
		return fmt.Errorf("candle: missing date")
	}
	if c.Open <= 0 || c.High <= 0 || c.Low <= 0 || c.Close <= 0 {
		return fmt.Errorf("candle %s: non-positive price", c.Date.Format("2006-01-02"))
	}
	if c.High < math.Max(c.Open, c.Close) {
		return fmt.Errorf("candle %s: high %.6f below body", c.Date.Format("2006-01-02"), c.High)
	}
	if c.Low > math.Min(c.Open, c.Close) {
		return fmt.Errorf("candle %s: low %.6f above body", c.Date.Format("2006-01-02"), c.Low)
	}
	return nil
}

// Bullish reports whether the candle closed above its open.
func (c Candle) Bullish() bool { return c.Close > c.Open }

// Body is the absolute open-to-close distance.
func (c Candle) Body() float64 { return math.Abs(c.Close - c.Open) }

// UpperWick is the distance from the top of the body to the high.
func (c Candle) UpperWick() float64 { return c.High - math.Max(c.Open, c.Close) }

// LowerWick is the distance from the bottom of the body to the low.
func (c Candle) LowerWick() float64 { return math.Min(c.Open, c.Close) - c.Low }

// Range is high minus low.
func (c Candle) Range() float64 { return c.High - c.Low }
