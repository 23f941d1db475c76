package backtest

import (
	"fmt"

	"github.com/rustyeddy/backlab/asset"
	"github.com/rustyeddy/backlab/config"
)

// Violation codes for entry gate decisions.
const (
	CodeMaxPositions = "MAX_POSITIONS"
	CodeClassLimit   = "CLASS_LIMIT"
	CodeDuplicate    = "DUPLICATE_SYMBOL"
	CodeCorrelated   = "CORRELATED"
)

// Violation names one reason an entry was refused.
type Violation struct {
	Code string
	Msg  string
}

// Decision is the outcome of running a candidate entry through the gates.
type Decision struct {
	Allowed    bool
	Violations []Violation
}

func (d *Decision) add(code, msg string) {
	d.Violations = append(d.Violations, Violation{Code: code, Msg: msg})
	d.Allowed = false
}

// Has reports whether the decision carries a violation with the code.
func (d *Decision) Has(code string) bool {
	for _, v := range d.Violations {
		if v.Code == code {
			return true
		}
	}
	return false
}

const (
	defaultClassMax        = 2
	defaultEquityLookback  = 10
	defaultReducedMax      = 3
	defaultMaxSameCurrency = 1
	defaultMaxSameGroup    = 1
)

// entryGate checks a candidate against the book: the global cap, the
// per-class cap, the one-position-per-symbol rule and the correlation
// guard. All violations are collected, not just the first.
func (c *Config) entryGate(sym Symbol, dir asset.Direction, open []*Position, effectiveMax int) Decision {
	d := Decision{Allowed: true}

	if len(open) >= effectiveMax {
		d.add(CodeMaxPositions, fmt.Sprintf("open positions %d >= max %d", len(open), effectiveMax))
	}

	classCount := 0
	for _, p := range open {
		if p.Class == sym.Class {
			classCount++
		}
	}
	classMax, ok := c.MaxPerClass[sym.Class]
	if !ok {
		classMax = defaultClassMax
	}
	if classCount >= classMax {
		d.add(CodeClassLimit, fmt.Sprintf("%s positions %d >= max %d", sym.Class, classCount, classMax))
	}

	for _, p := range open {
		if p.Symbol == sym.Instrument.Symbol {
			d.add(CodeDuplicate, fmt.Sprintf("%s already open as %s", p.Symbol, p.ID))
			break
		}
	}

	if c.Correlation != nil && c.Correlation.Enabled {
		if ok, reason := correlationAllowed(sym, dir, open, c.Correlation); !ok {
			d.add(CodeCorrelated, reason)
		}
	}

	return d
}

// correlationAllowed enforces the exposure limits. Forex pairs decompose
// into currency legs (a long EURUSD is long EUR and short USD); stocks
// group by sector; crypto is already capped to a single position.
func correlationAllowed(sym Symbol, dir asset.Direction, open []*Position, rules *config.CorrelationRules) (bool, string) {
	switch sym.Class {
	case config.ClassCrypto:
		return true, "ok"

	case config.ClassForex:
		maxSame := rules.ForexMaxSameCurrency
		if maxSame <= 0 {
			maxSame = defaultMaxSameCurrency
		}

		type leg struct {
			ccy  string
			side string
		}
		exposure := make(map[leg]int)
		for _, p := range open {
			if p.Class != config.ClassForex {
				continue
			}
			base, quote := currencyLegs(p.inst, p.Symbol)
			if p.Direction == asset.Long {
				exposure[leg{base, "long"}]++
				exposure[leg{quote, "short"}]++
			} else {
				exposure[leg{base, "short"}]++
				exposure[leg{quote, "long"}]++
			}
		}

		base, quote := currencyLegs(sym.Instrument, sym.Instrument.Symbol)
		proposed := []leg{{base, "long"}, {quote, "short"}}
		if dir == asset.Short {
			proposed = []leg{{base, "short"}, {quote, "long"}}
		}
		for _, l := range proposed {
			if current := exposure[l]; current >= maxSame {
				return false, fmt.Sprintf("%s %s (%d > %d)", l.side, l.ccy, current+1, maxSame)
			}
		}
		return true, "ok"

	case config.ClassStocks:
		maxSame := rules.StockMaxSameGroup
		if maxSame <= 0 {
			maxSame = defaultMaxSameGroup
		}
		group := sym.Instrument.Group
		if group == "" {
			return true, "no_group"
		}
		count := 0
		for _, p := range open {
			if p.Class == config.ClassStocks && p.inst.Group == group {
				count++
			}
		}
		if count >= maxSame {
			return false, fmt.Sprintf("%s (%d > %d)", group, count+1, maxSame)
		}
		return true, "ok"
	}

	return true, "ok"
}

// currencyLegs splits a pair into base and quote, falling back to the
// symbol halves for pairs without explicit legs.
func currencyLegs(inst config.Instrument, symbol string) (string, string) {
	base, quote := inst.Base, inst.Quote
	if base == "" && len(symbol) >= 3 {
		base = symbol[:3]
	}
	if quote == "" && len(symbol) > 3 {
		quote = symbol[3:]
	}
	return base, quote
}

// effectiveMaxPositions applies the equity curve filter: once the last N
// closed trades sum negative, the global cap shrinks until results recover.
func (c *Config) effectiveMaxPositions(closed []Trade) int {
	max := c.MaxPositionsGlobal
	ef := c.EquityFilter
	if ef == nil || !ef.Enabled {
		return max
	}
	lookback := ef.LookbackTrades
	if lookback <= 0 {
		lookback = defaultEquityLookback
	}
	if len(closed) < lookback {
		return max
	}
	sum := 0.0
	for _, t := range closed[len(closed)-lookback:] {
		sum += t.PnL
	}
	if sum >= 0 {
		return max
	}
	reduced := ef.ReducedMaxPositions
	if reduced <= 0 {
		reduced = defaultReducedMax
	}
	if reduced < max {
		return reduced
	}
	return max
}
