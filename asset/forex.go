package asset

import (
	"fmt"
	"math"
	"strings"

	"github.com/rustyeddy/backlab/config"
)

// Forex conventions: sizes are base-currency units (100k per standard lot),
// spreads and slippage are quoted in price units, and stops sit a few pips
// past the level.

const (
	unitsPerLot       = 100000
	defaultPipSize    = 0.0001
	bufferPips        = 5
	usdPipValuePerLot = 10.0
)

// ForexHandler implements Handler for currency pairs.
type ForexHandler struct{}

func (ForexHandler) Class() string { return config.ClassForex }

// PipSize returns the instrument's pip size, defaulting to 0.0001.
func (ForexHandler) PipSize(inst config.Instrument) float64 {
	if inst.PipSize > 0 {
		return inst.PipSize
	}
	return defaultPipSize
}

// pipValue returns dollars per pip per standard lot. Pairs quoted in USD
// are exactly $10; for other quotes the price-based conversion is an
// approximation that avoids needing a cross-rate feed.
func (h ForexHandler) pipValue(inst config.Instrument, price float64) float64 {
	if strings.HasSuffix(inst.Symbol, "USD") {
		return usdPipValuePerLot
	}
	if price > 0 {
		return h.PipSize(inst) / price * unitsPerLot
	}
	return usdPipValuePerLot
}

// Pips converts a price distance to pips for this instrument.
func (h ForexHandler) Pips(distance float64, inst config.Instrument) float64 {
	return distance / h.PipSize(inst)
}

func (h ForexHandler) PositionSize(balance, riskPct, stopDistance, price float64, inst config.Instrument) float64 {
	if stopDistance <= 0 || riskPct <= 0 {
		return 0
	}
	stopPips := stopDistance / h.PipSize(inst)
	lots := (balance * riskPct) / (stopPips * h.pipValue(inst, price))
	return math.Round(lots * unitsPerLot)
}

func (h ForexHandler) PnL(entry, exit float64, dir Direction, size float64, inst config.Instrument, rules ExecRules) float64 {
	half := rules.Spread.Forex / 2
	if dir == Long {
		entry += half
		exit -= half
	} else {
		entry -= half
		exit += half
	}

	var diff float64
	if dir == Long {
		diff = exit - entry
	} else {
		diff = entry - exit
	}

	pips := diff / h.PipSize(inst)
	lots := size / unitsPerLot
	return pips * lots * h.pipValue(inst, exit)
}

func (h ForexHandler) RiskAmount(stopDistance, size, price float64, inst config.Instrument) float64 {
	pips := math.Abs(stopDistance) / h.PipSize(inst)
	lots := size / unitsPerLot
	return pips * lots * h.pipValue(inst, price)
}

func (ForexHandler) Slippage(price float64, rules ExecRules) float64 {
	return rules.Slippage.Forex
}

func (h ForexHandler) StopBuffer(price float64, inst config.Instrument) float64 {
	return bufferPips * h.PipSize(inst)
}

// WeekendClose is true: spot forex carries weekend gap risk, so positions
// flatten on Friday's close.
func (ForexHandler) WeekendClose() bool { return true }

func (ForexHandler) FormatSize(size float64) string {
	return fmt.Sprintf("%.2f lots", size/unitsPerLot)
}
