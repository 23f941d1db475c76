// Package asset implements per-class execution arithmetic: position sizing,
// P&L with spread costs, slippage, stop buffers and close conventions for
// forex, stocks and crypto.
package asset

import (
	"github.com/rustyeddy/backlab/config"
)

// Direction of a position.
type Direction string

const (
	Long  Direction = "LONG"
	Short Direction = "SHORT"
)

// Opposite returns the other direction.
func (d Direction) Opposite() Direction {
	if d == Long {
		return Short
	}
	return Long
}

// ExecRules carries the execution frictions a run applies through the
// handlers. Zero tables mean frictionless fills.
type ExecRules struct {
	Spread   config.SpreadTable
	Slippage config.SpreadTable
}

// Handler hides the unit conventions of one asset class. Sizes are lots
// expressed in base units for forex, shares for stocks and coin amounts
// for crypto; every method takes raw prices and returns account dollars
// where money is involved.
type Handler interface {
	// Class names the asset class this handler serves.
	Class() string

	// PositionSize returns the size that risks balance*riskPct dollars over
	// stopDistance price units, or 0 when no sane size exists.
	PositionSize(balance, riskPct, stopDistance, price float64, inst config.Instrument) float64

	// PnL returns the dollar result of a round trip after spread costs.
	PnL(entry, exit float64, dir Direction, size float64, inst config.Instrument, rules ExecRules) float64

	// RiskAmount returns the dollars lost if a position of size is stopped
	// out stopDistance price units from entry (spread aside).
	RiskAmount(stopDistance, size, price float64, inst config.Instrument) float64

	// Slippage returns the price-unit cost applied against the entry fill.
	Slippage(price float64, rules ExecRules) float64

	// StopBuffer returns the extra distance placed beyond a raw stop level.
	StopBuffer(price float64, inst config.Instrument) float64

	// WeekendClose reports whether positions flatten before the weekend.
	WeekendClose() bool

	// FormatSize renders a size in the class's native terms.
	FormatSize(size float64) string
}

var handlers = map[string]Handler{
	config.ClassForex:  ForexHandler{},
	config.ClassStocks: StockHandler{},
	config.ClassCrypto: CryptoHandler{},
}

// ForClass returns the handler for an asset class.
func ForClass(class string) (Handler, bool) {
	h, ok := handlers[class]
	return h, ok
}

// Classes returns the supported class names in watchlist order.
func Classes() []string {
	return config.Classes
}
