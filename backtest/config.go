package backtest

import (
	"fmt"
	"time"

	"github.com/rustyeddy/backlab/config"
	"github.com/rustyeddy/backlab/signal"
)

// Symbol pairs an instrument with its asset class for the run.
type Symbol struct {
	Class      string
	Instrument config.Instrument
}

// Key returns the data key for this symbol.
func (s Symbol) Key() Key {
	return Key{Class: s.Class, Symbol: s.Instrument.Symbol}
}

// Config holds every parameter of a single backtest run. DefaultConfig
// fills the usual values; derived runs (walk-forward windows, scan points)
// copy a base config and override the fields under test.
type Config struct {
	Start          time.Time
	End            time.Time
	InitialBalance float64
	MaxRisk        float64
	RewardRisk     float64
	Lookback       int

	MaxPositionsGlobal int
	MaxPerClass        map[string]int

	Symbols      []Symbol
	Capabilities signal.CapabilitySet

	Spread   config.SpreadTable
	Slippage config.SpreadTable

	// MaxDrawdown halts new entries once peak-to-balance drawdown exceeds
	// it. Zero or negative disables the breaker.
	MaxDrawdown float64

	Correlation  *config.CorrelationRules
	EquityFilter *config.EquityFilterRule
	RegimeSizing *config.RegimeSizingRule

	// Analyzer overrides the signal source; nil uses signal.Analyze.
	Analyzer signal.Analyzer
}

// DefaultConfig returns the standard run parameters: $10k account, 2% risk,
// 1.5R targets, 3 concurrent positions, 10-candle warmup, everything
// unlocked.
func DefaultConfig() Config {
	return Config{
		Start:              time.Date(2015, 1, 1, 0, 0, 0, 0, time.UTC),
		End:                time.Date(2025, 12, 31, 0, 0, 0, 0, time.UTC),
		InitialBalance:     10000,
		MaxRisk:            0.02,
		RewardRisk:         1.5,
		Lookback:           10,
		MaxPositionsGlobal: 3,
		MaxPerClass: map[string]int{
			config.ClassForex:  2,
			config.ClassStocks: 2,
			config.ClassCrypto: 1,
		},
		Capabilities: signal.AllCapabilities(),
	}
}

// FromSettings builds a run Config from the file config plus a watchlist.
// The watchlist rules supply risk, caps, frictions and overlays; the file
// config supplies dates, balance, lookback and capabilities.
func FromSettings(app *config.Config, u *config.Universe) (Config, error) {
	cfg := DefaultConfig()

	start, err := time.Parse(config.DateLayout, app.Run.Start)
	if err != nil {
		return cfg, fmt.Errorf("run.start: %w", err)
	}
	end, err := time.Parse(config.DateLayout, app.Run.End)
	if err != nil {
		return cfg, fmt.Errorf("run.end: %w", err)
	}
	cfg.Start, cfg.End = start, end
	cfg.InitialBalance = app.Run.Balance
	cfg.Lookback = app.Run.Lookback
	cfg.Capabilities = signal.ParseCapabilities(app.Run.Capabilities)

	for _, e := range u.All() {
		cfg.Symbols = append(cfg.Symbols, Symbol{Class: e.Class, Instrument: e.Instrument})
	}

	rules := u.Rules
	if rules.MaxRisk > 0 {
		cfg.MaxRisk = rules.MaxRisk
	}
	if rules.RewardRisk > 0 {
		cfg.RewardRisk = rules.RewardRisk
	}
	if len(rules.MaxPositions) > 0 {
		perClass := make(map[string]int, len(rules.MaxPositions))
		for class, n := range rules.MaxPositions {
			if class == "global" {
				cfg.MaxPositionsGlobal = n
				continue
			}
			perClass[class] = n
		}
		if len(perClass) > 0 {
			cfg.MaxPerClass = perClass
		}
	}
	cfg.Spread = rules.Spread
	cfg.Slippage = rules.Slippage
	cfg.MaxDrawdown = rules.MaxDrawdown
	cfg.Correlation = rules.Correlation
	cfg.EquityFilter = rules.EquityFilter
	cfg.RegimeSizing = rules.RegimeSizing

	return cfg, cfg.Validate()
}

// Validate fails fast on configurations that cannot run.
func (c *Config) Validate() error {
	if len(c.Symbols) == 0 {
		return ErrNoSymbols
	}
	for _, s := range c.Symbols {
		if _, ok := supportedClass(s.Class); !ok {
			return fmt.Errorf("backtest: unsupported asset class %q for %s", s.Class, s.Instrument.Symbol)
		}
		if s.Instrument.Symbol == "" {
			return fmt.Errorf("backtest: %s instrument with empty symbol", s.Class)
		}
	}
	if c.InitialBalance <= 0 {
		return fmt.Errorf("backtest: initial balance must be positive, got %v", c.InitialBalance)
	}
	if c.MaxRisk <= 0 || c.MaxRisk > 1 {
		return fmt.Errorf("backtest: max risk must be in (0, 1], got %v", c.MaxRisk)
	}
	if c.RewardRisk <= 0 {
		return fmt.Errorf("backtest: reward/risk must be positive, got %v", c.RewardRisk)
	}
	if c.Lookback < 2 {
		return fmt.Errorf("backtest: lookback must be at least 2, got %d", c.Lookback)
	}
	if c.MaxPositionsGlobal < 0 {
		return fmt.Errorf("backtest: global position cap must not be negative, got %d", c.MaxPositionsGlobal)
	}
	if !c.End.IsZero() && !c.Start.IsZero() && c.End.Before(c.Start) {
		return fmt.Errorf("backtest: end %s precedes start %s",
			c.End.Format(config.DateLayout), c.Start.Format(config.DateLayout))
	}
	return nil
}

func supportedClass(class string) (string, bool) {
	for _, known := range config.Classes {
		if class == known {
			return class, true
		}
	}
	return class, false
}
