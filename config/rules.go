package config

// Rules carries the trading rules a watchlist applies to every run: risk
// sizing, position caps, execution frictions and the optional overlays.
// Zero values mean "use the engine default".
type Rules struct {
	MaxRisk      float64           `json:"max_risk,omitempty" yaml:"max_risk,omitempty"`
	RewardRisk   float64           `json:"rr_ratio,omitempty" yaml:"rr_ratio,omitempty"`
	MaxPositions map[string]int    `json:"max_positions,omitempty" yaml:"max_positions,omitempty"`
	Spread       SpreadTable       `json:"spread,omitempty" yaml:"spread,omitempty"`
	Slippage     SpreadTable       `json:"slippage,omitempty" yaml:"slippage,omitempty"`
	MaxDrawdown  float64           `json:"max_drawdown,omitempty" yaml:"max_drawdown,omitempty"`
	Correlation  *CorrelationRules `json:"correlation,omitempty" yaml:"correlation,omitempty"`
	EquityFilter *EquityFilterRule `json:"equity_curve_filter,omitempty" yaml:"equity_curve_filter,omitempty"`
	RegimeSizing *RegimeSizingRule `json:"regime_sizing,omitempty" yaml:"regime_sizing,omitempty"`
}

// SpreadTable holds per-class execution costs. Forex values are quoted in
// price units, stocks in dollars, crypto as a fraction of price.
type SpreadTable struct {
	Forex     float64 `json:"forex,omitempty" yaml:"forex,omitempty"`
	Stocks    float64 `json:"stocks,omitempty" yaml:"stocks,omitempty"`
	CryptoPct float64 `json:"crypto_pct,omitempty" yaml:"crypto_pct,omitempty"`
}

// CorrelationRules limits concurrent exposure to one currency or one stock
// group.
type CorrelationRules struct {
	Enabled              bool `json:"enabled" yaml:"enabled"`
	ForexMaxSameCurrency int  `json:"forex_max_same_currency,omitempty" yaml:"forex_max_same_currency,omitempty"`
	StockMaxSameGroup    int  `json:"stock_max_same_group,omitempty" yaml:"stock_max_same_group,omitempty"`
}

// EquityFilterRule throttles new entries while the recent trade ledger is
// net negative.
type EquityFilterRule struct {
	Enabled             bool `json:"enabled" yaml:"enabled"`
	LookbackTrades      int  `json:"lookback_trades,omitempty" yaml:"lookback_trades,omitempty"`
	ReducedMaxPositions int  `json:"reduced_max_positions,omitempty" yaml:"reduced_max_positions,omitempty"`
}

// RegimeSizingRule scales position sizes by the market regime detected at
// entry time. Multipliers are keyed by regime name; a missing key means 1.0.
type RegimeSizingRule struct {
	Enabled     bool               `json:"enabled" yaml:"enabled"`
	Multipliers map[string]float64 `json:"multipliers,omitempty" yaml:"multipliers,omitempty"`
}
