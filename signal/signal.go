package signal

import (
	"time"

	"github.com/rustyeddy/backlab/asset"
	"github.com/rustyeddy/backlab/config"
	"github.com/rustyeddy/backlab/market"
)

// Rules are the knobs the analyzer needs from the run configuration.
type Rules struct {
	RewardRisk float64
	Lookback   int
}

// Signal is an actionable entry: direction, levels and the reasoning that
// produced it.
type Signal struct {
	Direction    asset.Direction
	Entry        float64
	StopLoss     float64
	TakeProfit   float64
	StopDistance float64
	Reason       string
}

// Analysis carries the signal (possibly nil) plus the diagnostics behind
// it: trend state, structure counts, levels and regime.
type Analysis struct {
	Class      string
	Symbol     string
	Trend      string
	Support    float64
	Resistance float64
	LastClose  float64
	LastHigh   float64
	LastLow    float64
	LastDate   time.Time
	Pattern    string
	SMASignal  string
	Regime     Regime
	VolRatio   float64
	HH, HL     int
	LH, LL     int
	Signal     *Signal
}

// Analyzer produces an Analysis from everything known up to the last
// candle in the slice. Implementations must not look past it. A nil
// return means there was nothing to analyze.
type Analyzer func(class string, inst config.Instrument, candles []market.Candle, caps CapabilitySet, rules Rules) *Analysis
