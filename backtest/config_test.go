package backtest

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rustyeddy/backlab/config"
	"github.com/rustyeddy/backlab/signal"
)

func appConfig() *config.Config {
	app := config.Default()
	app.Run.Start = "2024-01-01"
	app.Run.End = "2024-06-30"
	app.Run.Balance = 25000
	app.Run.Lookback = 15
	app.Run.Capabilities = "all"
	return app
}

func TestFromSettingsMergesWatchlistRules(t *testing.T) {
	t.Parallel()

	u := &config.Universe{
		Forex:  []config.Instrument{eurusd, gbpusd},
		Stocks: []config.Instrument{aapl},
		Rules: config.Rules{
			MaxRisk:      0.01,
			RewardRisk:   2.0,
			MaxPositions: map[string]int{"global": 5, "forex": 3},
			Spread:       config.SpreadTable{Forex: 0.0002, Stocks: 0.02, CryptoPct: 0.001},
			Slippage:     config.SpreadTable{Forex: 0.0001},
			MaxDrawdown:  0.30,
			Correlation:  &config.CorrelationRules{Enabled: true, ForexMaxSameCurrency: 1},
			EquityFilter: &config.EquityFilterRule{Enabled: true, LookbackTrades: 10, ReducedMaxPositions: 2},
			RegimeSizing: &config.RegimeSizingRule{Enabled: true, Multipliers: map[string]float64{"bear_high_vol": 0.5}},
		},
	}

	cfg, err := FromSettings(appConfig(), u)
	require.NoError(t, err)

	assert.Equal(t, d("2024-01-01"), cfg.Start)
	assert.Equal(t, d("2024-06-30"), cfg.End)
	assert.InDelta(t, 25000, cfg.InitialBalance, 1e-9)
	assert.Equal(t, 15, cfg.Lookback)
	assert.True(t, cfg.Capabilities.Has(signal.CapCandlesticks))

	require.Len(t, cfg.Symbols, 3)
	assert.Equal(t, "EURUSD", cfg.Symbols[0].Instrument.Symbol)
	assert.Equal(t, "GBPUSD", cfg.Symbols[1].Instrument.Symbol)
	assert.Equal(t, "AAPL", cfg.Symbols[2].Instrument.Symbol)
	assert.Equal(t, config.ClassStocks, cfg.Symbols[2].Class)

	assert.InDelta(t, 0.01, cfg.MaxRisk, 1e-9)
	assert.InDelta(t, 2.0, cfg.RewardRisk, 1e-9)
	assert.Equal(t, 5, cfg.MaxPositionsGlobal)
	assert.Equal(t, map[string]int{"forex": 3}, cfg.MaxPerClass)
	assert.InDelta(t, 0.0002, cfg.Spread.Forex, 1e-9)
	assert.InDelta(t, 0.0001, cfg.Slippage.Forex, 1e-9)
	assert.InDelta(t, 0.30, cfg.MaxDrawdown, 1e-9)
	require.NotNil(t, cfg.Correlation)
	require.NotNil(t, cfg.EquityFilter)
	require.NotNil(t, cfg.RegimeSizing)
}

func TestFromSettingsKeepsDefaults(t *testing.T) {
	t.Parallel()

	u := &config.Universe{Forex: []config.Instrument{eurusd}}

	cfg, err := FromSettings(appConfig(), u)
	require.NoError(t, err)

	assert.InDelta(t, 0.02, cfg.MaxRisk, 1e-9)
	assert.InDelta(t, 1.5, cfg.RewardRisk, 1e-9)
	assert.Equal(t, 3, cfg.MaxPositionsGlobal)
	assert.Equal(t, 2, cfg.MaxPerClass[config.ClassForex])
	assert.Equal(t, 1, cfg.MaxPerClass[config.ClassCrypto])
	assert.InDelta(t, 0.0, cfg.Spread.Forex, 1e-9)
	assert.Nil(t, cfg.Correlation)
}

func TestFromSettingsErrors(t *testing.T) {
	t.Parallel()

	u := &config.Universe{Forex: []config.Instrument{eurusd}}

	app := appConfig()
	app.Run.Start = "01/02/2024"
	_, err := FromSettings(app, u)
	assert.Error(t, err)

	_, err = FromSettings(appConfig(), &config.Universe{})
	assert.ErrorIs(t, err, ErrNoSymbols)
}
