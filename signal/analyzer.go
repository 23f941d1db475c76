package signal

import (
	"fmt"
	"strings"

	"github.com/rustyeddy/backlab/asset"
	"github.com/rustyeddy/backlab/config"
	"github.com/rustyeddy/backlab/indicators"
	"github.com/rustyeddy/backlab/market"
)

const (
	// DefaultLookback is the analysis window when the rules leave it unset.
	DefaultLookback = 10

	// DefaultRewardRisk is the target multiple when the rules leave it unset.
	DefaultRewardRisk = 1.5

	// consecutive higher-high (or lower-low) pairs needed to call a trend
	trendCount = 3

	smaFastPeriod = 5
	smaSlowPeriod = 20

	// entries near the edges of a range, as a fraction of it
	nearSupport    = 0.35
	nearResistance = 0.65
)

// Analyze is the default Analyzer. It reads the last rules.Lookback candles
// for trend structure and support/resistance, then layers on whatever the
// capability set unlocks: candlestick patterns, SMA crossovers, and
// range-edge entries. Stops go beyond the relevant level by the class's
// buffer; targets are RewardRisk times the stop distance.
func Analyze(class string, inst config.Instrument, candles []market.Candle, caps CapabilitySet, rules Rules) *Analysis {
	handler, ok := asset.ForClass(class)
	if !ok {
		return nil
	}

	lookback := rules.Lookback
	if lookback <= 0 {
		lookback = DefaultLookback
	}
	rr := rules.RewardRisk
	if rr <= 0 {
		rr = DefaultRewardRisk
	}

	recent := candles
	if len(candles) > lookback {
		recent = candles[len(candles)-lookback:]
	}
	if len(recent) < 2 {
		return nil
	}
	last, prev := recent[len(recent)-1], recent[len(recent)-2]
	pairs := len(recent) - 1

	// Trend structure: count rising highs/lows and falling highs/lows
	// across consecutive candles.
	var hh, hl, lh, ll int
	for i := 1; i < len(recent); i++ {
		if recent[i].High > recent[i-1].High {
			hh++
		}
		if recent[i].Low > recent[i-1].Low {
			hl++
		}
		if recent[i].High < recent[i-1].High {
			lh++
		}
		if recent[i].Low < recent[i-1].Low {
			ll++
		}
	}

	trend := "ranging"
	switch {
	case hh >= trendCount && hl >= trendCount:
		trend = "uptrend"
	case lh >= trendCount && ll >= trendCount:
		trend = "downtrend"
	}

	support, resistance := recent[0].Low, recent[0].High
	for _, c := range recent[1:] {
		if c.Low < support {
			support = c.Low
		}
		if c.High > resistance {
			resistance = c.High
		}
	}
	rng := resistance - support
	if rng <= 0 {
		// all candles identical, no tradable range
		return nil
	}
	posInRange := (last.Close - support) / rng

	// Candlestick patterns on the last two candles. Without the
	// candlesticks capability the shapes are still visible but unnamed,
	// and they never drive an entry.
	knowCandles := caps.Has(CapCandlesticks)
	pattern := ""
	body := last.Body()
	bullishPin := body > 0 && last.LowerWick() > body*2 && last.UpperWick() < body
	bearishPin := body > 0 && last.UpperWick() > body*2 && last.LowerWick() < body
	bullishEngulf := !prev.Bullish() && last.Bullish() && body > prev.Body()
	bearishEngulf := prev.Bullish() && !last.Bullish() && body > prev.Body()

	switch {
	case bullishPin:
		pattern = pick(knowCandles, "bullish pin bar", "bullish candle")
	case bullishEngulf:
		pattern = pick(knowCandles, "bullish engulfing", "bullish candle")
	case bearishPin:
		pattern = pick(knowCandles, "bearish pin bar", "bearish candle")
	case bearishEngulf:
		pattern = pick(knowCandles, "bearish engulfing", "bearish candle")
	}

	// SMA crossover over the full series, once there is enough of it.
	smaSignal := ""
	if caps.Has(CapMovingAverages) && len(candles) >= smaSlowPeriod {
		closes := indicators.Closes(candles)
		fast, errF := indicators.SMA(closes, smaFastPeriod)
		slow, errS := indicators.SMA(closes, smaSlowPeriod)
		if errF == nil && errS == nil {
			if fast > slow {
				smaSignal = "SMA5>SMA20 (bullish)"
			} else {
				smaSignal = "SMA5<SMA20 (bearish)"
			}
		}
	}

	regime, volRatio := ClassifyRegimeVol(candles)

	an := &Analysis{
		Class:      class,
		Symbol:     inst.Symbol,
		Trend:      trend,
		Support:    support,
		Resistance: resistance,
		LastClose:  last.Close,
		LastHigh:   last.High,
		LastLow:    last.Low,
		LastDate:   last.Date,
		Pattern:    pattern,
		SMASignal:  smaSignal,
		Regime:     regime,
		VolRatio:   volRatio,
		HH:         hh,
		HL:         hl,
		LH:         lh,
		LL:         ll,
	}

	knowSR := caps.Has(CapSupportResistance)
	bullPattern := strings.Contains(pattern, "bullish")
	bearPattern := strings.Contains(pattern, "bearish")

	var direction asset.Direction
	var reasons []string
	switch {
	case trend == "uptrend":
		direction = asset.Long
		reasons = append(reasons, fmt.Sprintf("uptrend (HH:%d/%d)", hh, pairs))
	case trend == "downtrend":
		direction = asset.Short
		reasons = append(reasons, fmt.Sprintf("downtrend (LL:%d/%d)", ll, pairs))
	case strings.Contains(smaSignal, "bullish"):
		direction = asset.Long
		reasons = append(reasons, smaSignal)
	case strings.Contains(smaSignal, "bearish"):
		direction = asset.Short
		reasons = append(reasons, smaSignal)
	case bullPattern && knowCandles:
		direction = asset.Long
		reasons = append(reasons, "ranging + "+pattern)
	case bearPattern && knowCandles:
		direction = asset.Short
		reasons = append(reasons, "ranging + "+pattern)
	case posInRange < nearSupport && knowSR:
		direction = asset.Long
		reasons = append(reasons, fmt.Sprintf("ranging, near support (%.0f%%)", posInRange*100))
	case posInRange > nearResistance && knowSR:
		direction = asset.Short
		reasons = append(reasons, fmt.Sprintf("ranging, near resistance (%.0f%%)", posInRange*100))
	default:
		// dead center with nothing behind it, skip
		return an
	}

	if pattern != "" && !strings.Contains(strings.Join(reasons, " "), pattern) {
		reasons = append(reasons, pattern)
	}
	if smaSignal != "" && !strings.Contains(strings.Join(reasons, " "), smaSignal) {
		reasons = append(reasons, smaSignal)
	}

	srLabel := pick(knowSR, "S/R", "range")
	buf := handler.StopBuffer(last.Close, inst)

	if direction == asset.Long {
		reasons = append(reasons, fmt.Sprintf("%s: %.5f", srLabel, support))
		sl := support - buf
		stopDist := last.Close - sl
		if stopDist <= 0 {
			stopDist = rng * 0.3
			sl = last.Close - stopDist
		}
		an.Signal = &Signal{
			Direction:    asset.Long,
			Entry:        last.Close,
			StopLoss:     sl,
			TakeProfit:   last.Close + stopDist*rr,
			StopDistance: stopDist,
			Reason:       strings.Join(reasons, ", "),
		}
	} else {
		reasons = append(reasons, fmt.Sprintf("%s: %.5f", srLabel, resistance))
		sl := resistance + buf
		stopDist := sl - last.Close
		if stopDist <= 0 {
			stopDist = rng * 0.3
			sl = last.Close + stopDist
		}
		an.Signal = &Signal{
			Direction:    asset.Short,
			Entry:        last.Close,
			StopLoss:     sl,
			TakeProfit:   last.Close - stopDist*rr,
			StopDistance: stopDist,
			Reason:       strings.Join(reasons, ", "),
		}
	}

	return an
}

func pick(cond bool, yes, no string) string {
	if cond {
		return yes
	}
	return no
}
