// Package optimize searches backtest parameter space: walk-forward
// validation against overfitting and a full grid scan for stable regions.
package optimize

import (
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/rustyeddy/backlab/backtest"
	"github.com/rustyeddy/backlab/stats"
)

// Walk-forward window sizes in trading dates, roughly two years of
// training and six months of testing.
const (
	DefaultTrainSpan = 504
	DefaultTestSpan  = 126
)

// Grid searched per training window.
var (
	DefaultRewardRisks = []float64{1.0, 1.5, 2.0, 2.5}
	DefaultLookbacks   = []int{8, 10, 15}
)

const worstSharpe = -999.0

// WFConfig tunes the walk-forward run. Zero values fall back to the
// defaults above.
type WFConfig struct {
	TrainSpan   int
	TestSpan    int
	RewardRisks []float64
	Lookbacks   []int
	Workers     int
	Log         *logrus.Logger
}

func (c WFConfig) withDefaults() WFConfig {
	if c.TrainSpan <= 0 {
		c.TrainSpan = DefaultTrainSpan
	}
	if c.TestSpan <= 0 {
		c.TestSpan = DefaultTestSpan
	}
	if len(c.RewardRisks) == 0 {
		c.RewardRisks = DefaultRewardRisks
	}
	if len(c.Lookbacks) == 0 {
		c.Lookbacks = DefaultLookbacks
	}
	if c.Workers <= 0 {
		c.Workers = 4
	}
	if c.Log == nil {
		c.Log = logrus.StandardLogger()
	}
	return c
}

// Window is one train/test split: the grid winner on the training slice
// and how those parameters then did out of sample.
type Window struct {
	Index      int       `json:"window"`
	TrainStart time.Time `json:"train_start"`
	TrainEnd   time.Time `json:"train_end"`
	TestStart  time.Time `json:"test_start"`
	TestEnd    time.Time `json:"test_end"`

	BestRewardRisk float64 `json:"best_rr"`
	BestLookback   int     `json:"best_lookback"`

	TrainSharpe      float64 `json:"train_sharpe"`
	TrainTrades      int     `json:"train_trades"`
	TestSharpe       float64 `json:"test_sharpe"`
	TestTrades       int     `json:"test_trades"`
	TestFinalBalance float64 `json:"test_final_balance"`
	TestMaxDrawdown  float64 `json:"test_max_dd"`
	Profitable       bool    `json:"profitable"`
}

// WFResult is the whole walk-forward record.
type WFResult struct {
	TrainSpan   int      `json:"train_span"`
	TestSpan    int      `json:"test_span"`
	Windows     []Window `json:"windows"`
	Consistency float64  `json:"consistency"`
}

// WalkForward slides a train/test split across the data. Each training
// slice picks the grid combination with the best Sharpe, which is then
// replayed cold on the following test slice. Consistency is the fraction
// of profitable test slices. Other run parameters come from base.
func WalkForward(base backtest.Config, data backtest.Data, cfg WFConfig) (*WFResult, error) {
	cfg = cfg.withDefaults()

	dates := data.DateUnion(base.Start, base.End)
	if len(dates) < cfg.TrainSpan+cfg.TestSpan {
		return nil, backtest.ErrInsufficientHistory
	}

	var starts []int
	for s := 0; s+cfg.TrainSpan+cfg.TestSpan <= len(dates); s += cfg.TestSpan {
		starts = append(starts, s)
	}
	cfg.Log.WithFields(logrus.Fields{
		"windows": len(starts),
		"train":   cfg.TrainSpan,
		"test":    cfg.TestSpan,
	}).Info("walk-forward start")

	windows := make([]Window, len(starts))
	errs := make([]error, len(starts))

	workers := cfg.Workers
	if workers > len(starts) {
		workers = len(starts)
	}
	jobs := make(chan int)
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				windows[i], errs[i] = runWindow(base, data, cfg, dates, starts[i], i)
			}
		}()
	}
	for i := range starts {
		jobs <- i
	}
	close(jobs)
	wg.Wait()

	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}

	profitable := 0
	for _, w := range windows {
		if w.Profitable {
			profitable++
		}
	}
	res := &WFResult{
		TrainSpan:   cfg.TrainSpan,
		TestSpan:    cfg.TestSpan,
		Windows:     windows,
		Consistency: float64(profitable) / float64(len(windows)),
	}
	cfg.Log.WithFields(logrus.Fields{
		"windows":     len(windows),
		"consistency": res.Consistency,
	}).Info("walk-forward done")
	return res, nil
}

func runWindow(base backtest.Config, data backtest.Data, cfg WFConfig, dates []time.Time, start, index int) (Window, error) {
	w := Window{
		Index:          index,
		TrainStart:     dates[start],
		TrainEnd:       dates[start+cfg.TrainSpan-1],
		TestStart:      dates[start+cfg.TrainSpan],
		TestEnd:        dates[start+cfg.TrainSpan+cfg.TestSpan-1],
		BestRewardRisk: 1.5,
		BestLookback:   10,
	}

	bestSharpe := worstSharpe
	for _, rr := range cfg.RewardRisks {
		for _, lb := range cfg.Lookbacks {
			run := base
			run.Start, run.End = w.TrainStart, w.TrainEnd
			run.RewardRisk, run.Lookback = rr, lb

			m, err := runAndMeasure(run, data)
			if err != nil {
				return w, err
			}
			if m.Sharpe > bestSharpe {
				bestSharpe = m.Sharpe
				w.BestRewardRisk, w.BestLookback = rr, lb
				w.TrainSharpe = m.Sharpe
				w.TrainTrades = m.TotalTrades
			}
		}
	}

	test := base
	test.Start, test.End = w.TestStart, w.TestEnd
	test.RewardRisk, test.Lookback = w.BestRewardRisk, w.BestLookback

	m, err := runAndMeasure(test, data)
	if err != nil {
		return w, err
	}
	w.TestSharpe = m.Sharpe
	w.TestTrades = m.TotalTrades
	w.TestFinalBalance = m.FinalBalance
	w.TestMaxDrawdown = m.MaxDrawdown
	w.Profitable = m.FinalBalance > base.InitialBalance

	cfg.Log.WithFields(logrus.Fields{
		"window":       index,
		"rr":           w.BestRewardRisk,
		"lookback":     w.BestLookback,
		"train_sharpe": w.TrainSharpe,
		"test_sharpe":  w.TestSharpe,
	}).Debug("window done")
	return w, nil
}

func runAndMeasure(cfg backtest.Config, data backtest.Data) (*stats.Metrics, error) {
	eng, err := backtest.NewEngine(cfg, data)
	if err != nil {
		return nil, err
	}
	res, err := eng.Run()
	if err != nil {
		return nil, err
	}
	return stats.Compute(res.Trades, res.Equity, cfg.InitialBalance), nil
}
