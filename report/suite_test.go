package report

import (
	"errors"
	"io"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rustyeddy/backlab/backtest"
	"github.com/rustyeddy/backlab/config"
	"github.com/rustyeddy/backlab/journal"
	"github.com/rustyeddy/backlab/market"
	"github.com/rustyeddy/backlab/optimize"
)

var eurusd = config.Instrument{Symbol: "EURUSD", Base: "EUR", Quote: "USD", PipSize: 0.0001}

func d(s string) time.Time {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return t
}

func quietLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

func risingData(t *testing.T, n int) backtest.Data {
	t.Helper()
	candles := make([]market.Candle, n)
	start := d("2024-01-01")
	for i := range candles {
		open := 1.1 + float64(i)*0.001
		close := open + 0.0008
		candles[i] = market.Candle{
			Date: start.AddDate(0, 0, i), Open: open, Close: close,
			High: close + 0.0002, Low: open - 0.0002,
		}
	}
	h, err := market.NewHistory("EURUSD", candles)
	require.NoError(t, err)
	return backtest.Data{backtest.Key{Class: config.ClassForex, Symbol: "EURUSD"}: h}
}

func flatData(t *testing.T, n int) backtest.Data {
	t.Helper()
	candles := make([]market.Candle, n)
	start := d("2024-01-01")
	for i := range candles {
		candles[i] = market.Candle{
			Date: start.AddDate(0, 0, i),
			Open: 1.1, High: 1.1, Low: 1.1, Close: 1.1,
		}
	}
	h, err := market.NewHistory("EURUSD", candles)
	require.NoError(t, err)
	return backtest.Data{backtest.Key{Class: config.ClassForex, Symbol: "EURUSD"}: h}
}

func suiteBase(n int) backtest.Config {
	cfg := backtest.DefaultConfig()
	cfg.Start = d("2024-01-01")
	cfg.End = d("2024-01-01").AddDate(0, 0, n-1)
	cfg.Symbols = []backtest.Symbol{{Class: config.ClassForex, Instrument: eurusd}}
	return cfg
}

// recordingJournal captures everything the suite writes.
type recordingJournal struct {
	runs   []journal.RunRecord
	trades []journal.TradeRecord
	equity []journal.EquitySnapshot
	closed bool
}

func (j *recordingJournal) RecordRun(r journal.RunRecord) error {
	j.runs = append(j.runs, r)
	return nil
}

func (j *recordingJournal) RecordTrade(r journal.TradeRecord) error {
	j.trades = append(j.trades, r)
	return nil
}

func (j *recordingJournal) RecordEquity(s journal.EquitySnapshot) error {
	j.equity = append(j.equity, s)
	return nil
}

func (j *recordingJournal) Close() error {
	j.closed = true
	return nil
}

// brokenJournal refuses every write.
type brokenJournal struct{}

func (brokenJournal) RecordRun(journal.RunRecord) error         { return errors.New("disk full") }
func (brokenJournal) RecordTrade(journal.TradeRecord) error     { return errors.New("disk full") }
func (brokenJournal) RecordEquity(journal.EquitySnapshot) error { return errors.New("disk full") }
func (brokenJournal) Close() error                              { return nil }

func TestRunFullSuite(t *testing.T) {
	t.Parallel()

	data := risingData(t, 40)
	cfg := suiteBase(40)
	rec := &recordingJournal{}

	rep, err := Run(cfg, data, Options{
		Simulations: 200,
		Seed:        7,
		WalkForward: optimize.WFConfig{
			TrainSpan: 20, TestSpan: 10,
			RewardRisks: []float64{1.5}, Lookbacks: []int{10},
			Workers: 2,
		},
		Scan: optimize.ScanConfig{
			RewardRisks: []float64{1.0, 1.5}, Risks: []float64{0.02}, Lookbacks: []int{10},
			Workers: 2,
		},
		Journal: rec,
		Log:     quietLogger(),
	})
	require.NoError(t, err)

	assert.Len(t, rep.RunID, 26)
	assert.False(t, rep.Generated.IsZero())
	require.NotNil(t, rep.Result)
	require.NotNil(t, rep.Metrics)
	assert.Positive(t, rep.Metrics.TotalTrades)

	require.NotNil(t, rep.Shuffle)
	require.NotNil(t, rep.Bootstrap)
	assert.Equal(t, 200, rep.Shuffle.Simulations)
	assert.Equal(t, 200, rep.Bootstrap.Simulations)

	require.NotNil(t, rep.WalkForward)
	assert.NotEmpty(t, rep.WalkForward.Windows)
	require.NotNil(t, rep.Scan)
	assert.Len(t, rep.Scan.Points, 2)
	assert.NotEmpty(t, rep.Regimes)

	// a handful of trades cannot clear the 200-trade bar
	require.NotNil(t, rep.Verdict)
	assert.Equal(t, VerdictFail, rep.Verdict.Tier)
	assert.Equal(t, false, rep.Verdict.PassFail()["trades"])

	require.Len(t, rec.runs, 1)
	assert.Equal(t, rep.RunID, rec.runs[0].RunID)
	assert.Equal(t, rep.Verdict.Tier, rec.runs[0].Verdict)
	assert.Len(t, rec.trades, rep.Metrics.TotalTrades)
	assert.Len(t, rec.equity, len(rep.Result.Equity))
	assert.False(t, rec.closed, "the journal stays open, the caller owns it")
}

func TestRunQuickSkipsStudies(t *testing.T) {
	t.Parallel()

	rep, err := Run(suiteBase(40), risingData(t, 40), Options{Quick: true, Log: quietLogger()})
	require.NoError(t, err)

	assert.Nil(t, rep.Shuffle)
	assert.Nil(t, rep.Bootstrap)
	assert.Nil(t, rep.WalkForward)
	assert.Nil(t, rep.Scan)
	assert.NotEmpty(t, rep.Regimes, "the regime breakdown is cheap and always runs")

	require.NotNil(t, rep.Verdict)
	for _, c := range rep.Verdict.Checks {
		assert.NotEqual(t, TierRobustness, c.Tier)
	}
}

func TestRunShortHistoryDegradesWalkForward(t *testing.T) {
	t.Parallel()

	rep, err := Run(suiteBase(25), risingData(t, 25), Options{
		Simulations: 50,
		WalkForward: optimize.WFConfig{TrainSpan: 20, TestSpan: 10, RewardRisks: []float64{1.5}, Lookbacks: []int{10}},
		Scan:        optimize.ScanConfig{RewardRisks: []float64{1.5}, Risks: []float64{0.02}, Lookbacks: []int{10}},
		Log:         quietLogger(),
	})
	require.NoError(t, err)

	require.NotNil(t, rep.WalkForward)
	assert.Empty(t, rep.WalkForward.Windows)
	assert.Equal(t, 20, rep.WalkForward.TrainSpan)
	assert.Equal(t, 10, rep.WalkForward.TestSpan)

	_, hasWF := rep.Verdict.PassFail()["walk_forward"]
	assert.False(t, hasWF, "a zero-window walk-forward contributes no check")
}

func TestRunNoTrades(t *testing.T) {
	t.Parallel()

	_, err := Run(suiteBase(20), flatData(t, 20), Options{Quick: true, Log: quietLogger()})
	assert.ErrorIs(t, err, backtest.ErrNoTrades)
}

func TestRunBadConfig(t *testing.T) {
	t.Parallel()

	cfg := suiteBase(20)
	cfg.Symbols = nil
	_, err := Run(cfg, risingData(t, 20), Options{Quick: true, Log: quietLogger()})
	assert.ErrorIs(t, err, backtest.ErrNoSymbols)
}

func TestRunJournalFailureIsNotFatal(t *testing.T) {
	t.Parallel()

	rep, err := Run(suiteBase(40), risingData(t, 40), Options{
		Quick:   true,
		Journal: brokenJournal{},
		Log:     quietLogger(),
	})
	require.NoError(t, err)
	require.NotNil(t, rep.Verdict)
}

func TestOptionsFromConfig(t *testing.T) {
	t.Parallel()

	app := config.Default()
	app.MonteCarlo.Simulations = 777
	app.MonteCarlo.Seed = 3
	app.MonteCarlo.RuinThreshold = 0.4
	app.Thresholds.MinTrades = 9

	opt := OptionsFromConfig(app)
	assert.Equal(t, 777, opt.Simulations)
	assert.Equal(t, int64(3), opt.Seed)
	assert.Equal(t, 0.4, opt.RuinThreshold)
	assert.Equal(t, 9, opt.Thresholds.MinTrades)
}

func TestReportSetup(t *testing.T) {
	t.Parallel()

	cfg := suiteBase(40)
	rep := &Report{Config: cfg}
	setup := rep.Setup()

	assert.Equal(t, "2024-01-01", setup.Start)
	assert.Equal(t, "2024-02-09", setup.End)
	assert.Equal(t, 1, setup.Symbols)
	assert.Equal(t, "all (11 techniques)", setup.Capabilities)
	assert.Equal(t, 10000.0, setup.InitialBalance)
	assert.Equal(t, 0.02, setup.MaxRisk)
	assert.Equal(t, 1.5, setup.RewardRisk)
	assert.Equal(t, 10, setup.Lookback)
}
