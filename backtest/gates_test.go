package backtest

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/rustyeddy/backlab/asset"
	"github.com/rustyeddy/backlab/config"
)

func openPos(class string, inst config.Instrument, dir asset.Direction) *Position {
	return &Position{
		ID: "BT1", Class: class, Symbol: inst.Symbol, Direction: dir, inst: inst,
	}
}

func TestEntryGateCollectsAllViolations(t *testing.T) {
	t.Parallel()

	cfg := DefaultConfig()
	cfg.MaxPerClass = map[string]int{config.ClassForex: 2}
	open := []*Position{
		openPos(config.ClassForex, eurusd, asset.Long),
		openPos(config.ClassForex, gbpusd, asset.Long),
	}

	d := cfg.entryGate(Symbol{Class: config.ClassForex, Instrument: eurusd}, asset.Long, open, 2)
	assert.False(t, d.Allowed)
	assert.True(t, d.Has(CodeMaxPositions))
	assert.True(t, d.Has(CodeClassLimit))
	assert.True(t, d.Has(CodeDuplicate))
	assert.Len(t, d.Violations, 3)
}

func TestEntryGateAllows(t *testing.T) {
	t.Parallel()

	cfg := DefaultConfig()
	open := []*Position{openPos(config.ClassForex, gbpusd, asset.Long)}

	d := cfg.entryGate(Symbol{Class: config.ClassForex, Instrument: eurusd}, asset.Long, open, 3)
	assert.True(t, d.Allowed)
	assert.Empty(t, d.Violations)
}

func TestEntryGateClassLimit(t *testing.T) {
	t.Parallel()

	cfg := DefaultConfig()
	cfg.MaxPerClass = map[string]int{config.ClassForex: 1}
	open := []*Position{openPos(config.ClassForex, gbpusd, asset.Long)}

	d := cfg.entryGate(Symbol{Class: config.ClassForex, Instrument: eurusd}, asset.Long, open, 3)
	assert.False(t, d.Allowed)
	assert.True(t, d.Has(CodeClassLimit))

	// other classes fall back to the default cap and are unaffected
	d = cfg.entryGate(Symbol{Class: config.ClassStocks, Instrument: aapl}, asset.Long, open, 3)
	assert.True(t, d.Allowed)
}

func TestCorrelationForexLegs(t *testing.T) {
	t.Parallel()

	rules := &config.CorrelationRules{Enabled: true, ForexMaxSameCurrency: 1}
	open := []*Position{openPos(config.ClassForex, eurusd, asset.Long)}

	usdjpy := config.Instrument{Symbol: "USDJPY", Base: "USD", Quote: "JPY", PipSize: 0.01}
	eurjpy := config.Instrument{Symbol: "EURJPY", Base: "EUR", Quote: "JPY", PipSize: 0.01}

	tests := []struct {
		name   string
		inst   config.Instrument
		dir    asset.Direction
		max    int
		allow  bool
		reason string
	}{
		{"second short usd blocked", gbpusd, asset.Long, 1, false, "short USD (2 > 1)"},
		{"long usd is the other side", usdjpy, asset.Long, 1, true, "ok"},
		{"short eur is the other side", eurjpy, asset.Short, 1, true, "ok"},
		{"higher limit admits the double-up", gbpusd, asset.Long, 2, true, "ok"},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			r := &config.CorrelationRules{Enabled: true, ForexMaxSameCurrency: tt.max}
			ok, reason := correlationAllowed(Symbol{Class: config.ClassForex, Instrument: tt.inst}, tt.dir, open, r)
			assert.Equal(t, tt.allow, ok)
			assert.Equal(t, tt.reason, reason)
		})
	}

	// legs fall back to the symbol halves when the instrument omits them
	bare := []*Position{openPos(config.ClassForex, config.Instrument{Symbol: "EURUSD"}, asset.Long)}
	ok, reason := correlationAllowed(Symbol{Class: config.ClassForex, Instrument: gbpusd}, asset.Long, bare, rules)
	assert.False(t, ok)
	assert.Equal(t, "short USD (2 > 1)", reason)
}

func TestCorrelationStocksGroups(t *testing.T) {
	t.Parallel()

	rules := &config.CorrelationRules{Enabled: true, StockMaxSameGroup: 1}
	open := []*Position{openPos(config.ClassStocks, aapl, asset.Long)}

	msft := config.Instrument{Symbol: "MSFT", Group: "tech"}
	xom := config.Instrument{Symbol: "XOM", Group: "energy"}
	ungrouped := config.Instrument{Symbol: "BRK.B"}

	ok, reason := correlationAllowed(Symbol{Class: config.ClassStocks, Instrument: msft}, asset.Long, open, rules)
	assert.False(t, ok)
	assert.Equal(t, "tech (2 > 1)", reason)

	ok, _ = correlationAllowed(Symbol{Class: config.ClassStocks, Instrument: xom}, asset.Long, open, rules)
	assert.True(t, ok)

	ok, reason = correlationAllowed(Symbol{Class: config.ClassStocks, Instrument: ungrouped}, asset.Long, open, rules)
	assert.True(t, ok)
	assert.Equal(t, "no_group", reason)
}

func TestCorrelationCryptoAlwaysAllowed(t *testing.T) {
	t.Parallel()

	rules := &config.CorrelationRules{Enabled: true, ForexMaxSameCurrency: 1, StockMaxSameGroup: 1}
	open := []*Position{
		openPos(config.ClassForex, eurusd, asset.Long),
		openPos(config.ClassStocks, aapl, asset.Long),
	}

	ok, _ := correlationAllowed(Symbol{Class: config.ClassCrypto, Instrument: btc}, asset.Long, open, rules)
	assert.True(t, ok)
}

func TestEffectiveMaxPositions(t *testing.T) {
	t.Parallel()

	trades := func(pnls ...float64) []Trade {
		out := make([]Trade, len(pnls))
		for i, p := range pnls {
			out[i] = Trade{PnL: p}
		}
		return out
	}

	tests := []struct {
		name   string
		filter *config.EquityFilterRule
		closed []Trade
		want   int
	}{
		{"no filter", nil, trades(-1, -1, -1), 3},
		{"disabled", &config.EquityFilterRule{Enabled: false, LookbackTrades: 3, ReducedMaxPositions: 1}, trades(-1, -1, -1), 3},
		{"too few trades", &config.EquityFilterRule{Enabled: true, LookbackTrades: 3, ReducedMaxPositions: 1}, trades(-1, -1), 3},
		{"recent net negative", &config.EquityFilterRule{Enabled: true, LookbackTrades: 3, ReducedMaxPositions: 1}, trades(100, -50, -40, -20), 1},
		{"recent net positive", &config.EquityFilterRule{Enabled: true, LookbackTrades: 3, ReducedMaxPositions: 1}, trades(-500, 50, 40, 20), 3},
		{"breakeven keeps the cap", &config.EquityFilterRule{Enabled: true, LookbackTrades: 2, ReducedMaxPositions: 1}, trades(-10, 10), 3},
		{"reduction never raises", &config.EquityFilterRule{Enabled: true, LookbackTrades: 2, ReducedMaxPositions: 5}, trades(-10, -10), 3},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			cfg := DefaultConfig()
			cfg.EquityFilter = tt.filter
			assert.Equal(t, tt.want, cfg.effectiveMaxPositions(tt.closed))
		})
	}
}
