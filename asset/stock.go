package asset

import (
	"fmt"
	"math"

	"github.com/rustyeddy/backlab/config"
)

// Stock conventions: whole shares, dollar spreads, positions held over
// weekends.

// StockHandler implements Handler for equities.
type StockHandler struct{}

func (StockHandler) Class() string { return config.ClassStocks }

func (StockHandler) PositionSize(balance, riskPct, stopDistance, price float64, inst config.Instrument) float64 {
	if stopDistance <= 0 || riskPct <= 0 {
		return 0
	}
	return math.Round(balance * riskPct / stopDistance)
}

func (StockHandler) PnL(entry, exit float64, dir Direction, size float64, inst config.Instrument, rules ExecRules) float64 {
	half := rules.Spread.Stocks / 2
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
	return diff * size
}

func (StockHandler) RiskAmount(stopDistance, size, price float64, inst config.Instrument) float64 {
	return math.Abs(stopDistance) * size
}

func (StockHandler) Slippage(price float64, rules ExecRules) float64 {
	return rules.Slippage.Stocks
}

// StopBuffer is half a percent of price, floored at 50 cents so cheap
// tickers still clear the noise.
func (StockHandler) StopBuffer(price float64, inst config.Instrument) float64 {
	return math.Max(0.50, price*0.005)
}

func (StockHandler) WeekendClose() bool { return false }

func (StockHandler) FormatSize(size float64) string {
	return fmt.Sprintf("%d shares", int(size))
}
