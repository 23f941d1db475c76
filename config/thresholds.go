package config

// Thresholds is the pass/fail table the validation verdict is scored
// against. Rates are fractions (0.30 means 30%), expectancy is dollars
// per trade. Zero values fall back to the defaults.
type Thresholds struct {
	MinTrades       int     `json:"min_trades" yaml:"min_trades"`
	MinSharpe       float64 `json:"min_sharpe" yaml:"min_sharpe"`
	MinProfitFactor float64 `json:"min_profit_factor" yaml:"min_profit_factor"`
	MaxDrawdown     float64 `json:"max_drawdown" yaml:"max_drawdown"`
	MinWinRate      float64 `json:"min_win_rate" yaml:"min_win_rate"`
	MinExpectancy   float64 `json:"min_expectancy" yaml:"min_expectancy"`
	MaxRuinProb     float64 `json:"max_ruin_probability" yaml:"max_ruin_probability"`
	MaxConsecLosses int     `json:"max_consecutive_losses" yaml:"max_consecutive_losses"`
}

// DefaultThresholds returns the standard validation bar: 200 trades,
// Sharpe 1.0, profit factor 1.3, 30% drawdown, 35% win rate, positive
// expectancy, 5% ruin probability, 40 consecutive losses.
func DefaultThresholds() Thresholds {
	return Thresholds{
		MinTrades:       200,
		MinSharpe:       1.0,
		MinProfitFactor: 1.3,
		MaxDrawdown:     0.30,
		MinWinRate:      0.35,
		MinExpectancy:   0,
		MaxRuinProb:     0.05,
		MaxConsecLosses: 40,
	}
}

// OrDefaults fills zero fields from DefaultThresholds, so a config file
// can override a single limit without restating the table.
func (t Thresholds) OrDefaults() Thresholds {
	def := DefaultThresholds()
	if t.MinTrades == 0 {
		t.MinTrades = def.MinTrades
	}
	if t.MinSharpe == 0 {
		t.MinSharpe = def.MinSharpe
	}
	if t.MinProfitFactor == 0 {
		t.MinProfitFactor = def.MinProfitFactor
	}
	if t.MaxDrawdown == 0 {
		t.MaxDrawdown = def.MaxDrawdown
	}
	if t.MinWinRate == 0 {
		t.MinWinRate = def.MinWinRate
	}
	if t.MaxRuinProb == 0 {
		t.MaxRuinProb = def.MaxRuinProb
	}
	if t.MaxConsecLosses == 0 {
		t.MaxConsecLosses = def.MaxConsecLosses
	}
	return t
}
