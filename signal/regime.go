package signal

import (
	"github.com/rustyeddy/backlab/indicators"
	"github.com/rustyeddy/backlab/market"
)

// Regime labels the market state a trade was entered under.
type Regime string

const (
	RegimeBullHighVol Regime = "bull_high_vol"
	RegimeBullLowVol  Regime = "bull_low_vol"
	RegimeBearHighVol Regime = "bear_high_vol"
	RegimeBearLowVol  Regime = "bear_low_vol"
	RegimeRanging     Regime = "ranging"
	RegimeUnknown     Regime = "unknown"
)

// Regimes lists the known regimes in report order.
var Regimes = []Regime{
	RegimeBullHighVol, RegimeBullLowVol,
	RegimeBearHighVol, RegimeBearLowVol,
	RegimeRanging, RegimeUnknown,
}

const (
	regimeLookback  = 60
	regimeSMAPeriod = 20
	regimeATRPeriod = 20

	// trend below this fraction over the lookback counts as ranging
	trendThreshold = 0.02
	// ATR over SMA above this fraction counts as high volatility
	highVolThreshold = 0.015
)

// ClassifyRegime labels the market state as of the last candle: bull or
// bear by the drift of a 20-day SMA across a 60-day window, high or low
// volatility by ATR relative to price. Too little history is "unknown".
func ClassifyRegime(candles []market.Candle) Regime {
	r, _ := ClassifyRegimeVol(candles)
	return r
}

// ClassifyRegimeVol is ClassifyRegime plus the ATR/SMA volatility ratio
// it measured (0 when unknown).
func ClassifyRegimeVol(candles []market.Candle) (Regime, float64) {
	if len(candles) < regimeLookback || len(candles) < regimeATRPeriod+1 {
		return RegimeUnknown, 0
	}

	recent := candles[len(candles)-regimeLookback:]
	closes := indicators.Closes(recent)

	smaStart, err := indicators.SMA(closes[:regimeSMAPeriod], regimeSMAPeriod)
	if err != nil {
		return RegimeUnknown, 0
	}
	smaEnd, err := indicators.SMA(closes, regimeSMAPeriod)
	if err != nil {
		return RegimeUnknown, 0
	}

	change := 0.0
	if smaStart > 0 {
		change = (smaEnd - smaStart) / smaStart
	}

	volRatio := 0.0
	atr, err := indicators.ATR(candles, regimeATRPeriod)
	if err == nil && smaEnd > 0 {
		volRatio = atr / smaEnd
	}
	highVol := volRatio > highVolThreshold

	if change > -trendThreshold && change < trendThreshold {
		return RegimeRanging, volRatio
	}
	if change > 0 {
		if highVol {
			return RegimeBullHighVol, volRatio
		}
		return RegimeBullLowVol, volRatio
	}
	if highVol {
		return RegimeBearHighVol, volRatio
	}
	return RegimeBearLowVol, volRatio
}
