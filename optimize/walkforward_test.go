package optimize

import (
	"io"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rustyeddy/backlab/backtest"
	"github.com/rustyeddy/backlab/config"
	"github.com/rustyeddy/backlab/market"
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

func wfBase(n int) backtest.Config {
	cfg := backtest.DefaultConfig()
	cfg.Start = d("2024-01-01")
	cfg.End = d("2024-01-01").AddDate(0, 0, n-1)
	cfg.Symbols = []backtest.Symbol{{Class: config.ClassForex, Instrument: eurusd}}
	return cfg
}

func TestWalkForwardInsufficientHistory(t *testing.T) {
	t.Parallel()

	_, err := WalkForward(wfBase(50), risingData(t, 50), WFConfig{Log: quietLogger()})
	assert.ErrorIs(t, err, backtest.ErrInsufficientHistory)
}

func TestWalkForwardWindowBoundary(t *testing.T) {
	t.Parallel()

	cfg := WFConfig{
		TrainSpan:   20,
		TestSpan:    10,
		RewardRisks: []float64{1.5},
		Lookbacks:   []int{5},
		Log:         quietLogger(),
	}

	// exactly one window fits
	res, err := WalkForward(wfBase(30), risingData(t, 30), cfg)
	require.NoError(t, err)
	assert.Len(t, res.Windows, 1)

	// one date short of a window
	_, err = WalkForward(wfBase(29), risingData(t, 29), cfg)
	assert.ErrorIs(t, err, backtest.ErrInsufficientHistory)
}

func TestWalkForwardWindows(t *testing.T) {
	t.Parallel()

	data := risingData(t, 45)
	base := wfBase(45)
	cfg := WFConfig{
		TrainSpan:   20,
		TestSpan:    10,
		RewardRisks: []float64{1.5},
		Lookbacks:   []int{5, 10},
		Log:         quietLogger(),
	}

	res, err := WalkForward(base, data, cfg)
	require.NoError(t, err)

	require.Len(t, res.Windows, 2)
	assert.Equal(t, 20, res.TrainSpan)
	assert.Equal(t, 10, res.TestSpan)

	w0, w1 := res.Windows[0], res.Windows[1]
	assert.Equal(t, 0, w0.Index)
	assert.Equal(t, d("2024-01-01"), w0.TrainStart)
	assert.Equal(t, d("2024-01-20"), w0.TrainEnd)
	assert.Equal(t, d("2024-01-21"), w0.TestStart)
	assert.Equal(t, d("2024-01-30"), w0.TestEnd)

	// tests advance without overlap
	assert.Equal(t, 1, w1.Index)
	assert.Equal(t, d("2024-01-31"), w1.TestStart)
	assert.Equal(t, d("2024-02-09"), w1.TestEnd)

	for _, w := range res.Windows {
		assert.InDelta(t, 1.5, w.BestRewardRisk, 1e-9)
		assert.Contains(t, []int{5, 10}, w.BestLookback)
	}

	profitable := 0
	for _, w := range res.Windows {
		if w.Profitable {
			profitable++
		}
	}
	assert.InDelta(t, float64(profitable)/2, res.Consistency, 1e-9)
}

func TestWalkForwardDeterminism(t *testing.T) {
	t.Parallel()

	data := risingData(t, 45)
	base := wfBase(45)
	cfg := WFConfig{
		TrainSpan:   20,
		TestSpan:    10,
		RewardRisks: []float64{1.0, 1.5},
		Lookbacks:   []int{5, 10},
		Workers:     3,
		Log:         quietLogger(),
	}

	a, err := WalkForward(base, data, cfg)
	require.NoError(t, err)
	b, err := WalkForward(base, data, cfg)
	require.NoError(t, err)
	assert.Equal(t, a, b)
}
