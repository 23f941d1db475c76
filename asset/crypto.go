package asset

import (
	"fmt"
	"math"

	"github.com/shopspring/decimal"

	"github.com/rustyeddy/backlab/config"
)

// Crypto conventions: fractional coin sizes to 8 decimals, spread and
// slippage as a percentage of price, 24/7 trading so nothing closes for
// the weekend.

// CryptoHandler implements Handler for crypto pairs.
type CryptoHandler struct{}

func (CryptoHandler) Class() string { return config.ClassCrypto }

func (CryptoHandler) PositionSize(balance, riskPct, stopDistance, price float64, inst config.Instrument) float64 {
	if stopDistance <= 0 || riskPct <= 0 {
		return 0
	}
	size := balance * riskPct / stopDistance
	return decimal.NewFromFloat(size).Round(8).InexactFloat64()
}

func (CryptoHandler) PnL(entry, exit float64, dir Direction, size float64, inst config.Instrument, rules ExecRules) float64 {
	halfPct := rules.Spread.CryptoPct / 2
	if dir == Long {
		entry *= 1 + halfPct
		exit *= 1 - halfPct
	} else {
		entry *= 1 - halfPct
		exit *= 1 + halfPct
	}

	var diff float64
	if dir == Long {
		diff = exit - entry
	} else {
		diff = entry - exit
	}
	return diff * size
}

func (CryptoHandler) RiskAmount(stopDistance, size, price float64, inst config.Instrument) float64 {
	return math.Abs(stopDistance) * size
}

func (CryptoHandler) Slippage(price float64, rules ExecRules) float64 {
	return price * rules.Slippage.CryptoPct
}

// StopBuffer is a full percent of price; crypto needs the wider berth.
func (CryptoHandler) StopBuffer(price float64, inst config.Instrument) float64 {
	return price * 0.01
}

func (CryptoHandler) WeekendClose() bool { return false }

func (CryptoHandler) FormatSize(size float64) string {
	return fmt.Sprintf("%.8f units", size)
}
