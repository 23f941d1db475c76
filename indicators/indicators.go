// Package indicators provides the small set of series calculations the
// signal rules need. Functions take the full series and compute over the
// most recent window, which is how the day-by-day simulation calls them.
package indicators

import (
	"fmt"
	"math"

	"github.com/rustyeddy/backlab/market"
)

// Closes extracts the close series from candles.
func Closes(candles []market.Candle) []float64 {
	out := make([]float64, len(candles))
	for i, c := range candles {
		out[i] = c.Close
	}
	return out
}

// SMA returns the simple moving average of the last period values.
func SMA(values []float64, period int) (float64, error) {
	if period <= 0 {
		return 0, fmt.Errorf("sma: period must be positive, got %d", period)
	}
	if len(values) < period {
		return 0, fmt.Errorf("sma: need %d values, have %d", period, len(values))
	}
	sum := 0.0
	for _, v := range values[len(values)-period:] {
		sum += v
	}
	return sum / float64(period), nil
}

// TrueRange is the greatest of high-low, |high-prevClose| and |low-prevClose|.
func TrueRange(c market.Candle, prevClose float64) float64 {
	hl := c.High - c.Low
	hc := math.Abs(c.High - prevClose)
	lc := math.Abs(c.Low - prevClose)
	return math.Max(hl, math.Max(hc, lc))
}

// ATR returns the mean true range over the last period candles. It needs
// period+1 candles because each true range looks at the prior close.
func ATR(candles []market.Candle, period int) (float64, error) {
	if period <= 0 {
		return 0, fmt.Errorf("atr: period must be positive, got %d", period)
	}
	if len(candles) < period+1 {
		return 0, fmt.Errorf("atr: need %d candles, have %d", period+1, len(candles))
	}
	sum := 0.0
	start := len(candles) - period
	for i := start; i < len(candles); i++ {
		sum += TrueRange(candles[i], candles[i-1].Close)
	}
	return sum / float64(period), nil
}
