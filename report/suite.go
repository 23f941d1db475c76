// Package report runs the full validation suite over one configuration
// and turns the results into a verdict, a markdown report and a set of
// JSON artifacts. The engine and the statistics stay pure; everything
// that touches a clock, a logger or the filesystem lives here.
package report

import (
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/rustyeddy/backlab/backtest"
	"github.com/rustyeddy/backlab/config"
	"github.com/rustyeddy/backlab/journal"
	"github.com/rustyeddy/backlab/optimize"
	"github.com/rustyeddy/backlab/pkg/id"
	"github.com/rustyeddy/backlab/signal"
	"github.com/rustyeddy/backlab/stats"
)

// Options tunes the validation suite. Zero values fall back to the
// standard run: 5000 simulations, seed 42, 25% ruin drawdown, default
// thresholds, no journal.
type Options struct {
	Simulations   int
	Seed          int64
	RuinThreshold float64
	BlockSize     int // 0 picks max(5, sqrt(trades))

	Thresholds  config.Thresholds
	WalkForward optimize.WFConfig
	Scan        optimize.ScanConfig

	// Quick skips the resampling and optimization stages; the verdict
	// then rests on the core metrics alone.
	Quick bool

	Journal journal.Journal
	Log     *logrus.Logger
}

func (o Options) withDefaults() Options {
	if o.Simulations <= 0 {
		o.Simulations = 5000
	}
	if o.Seed == 0 {
		o.Seed = 42
	}
	if o.RuinThreshold <= 0 {
		o.RuinThreshold = 0.25
	}
	o.Thresholds = o.Thresholds.OrDefaults()
	if o.Journal == nil {
		o.Journal = journal.Nop{}
	}
	if o.Log == nil {
		o.Log = logrus.StandardLogger()
	}
	return o
}

// OptionsFromConfig seeds suite options from the file config. The
// journal and the logger still come from the caller.
func OptionsFromConfig(app *config.Config) Options {
	return Options{
		Simulations:   app.MonteCarlo.Simulations,
		Seed:          app.MonteCarlo.Seed,
		RuinThreshold: app.MonteCarlo.RuinThreshold,
		Thresholds:    app.Thresholds,
	}
}

// Report collects everything one validation run produced. Quick runs
// leave the resampling and optimization fields nil; a walk-forward with
// too little history is present but has zero windows.
type Report struct {
	RunID     string
	Generated time.Time

	Config  backtest.Config
	Result  *backtest.Result
	Metrics *stats.Metrics

	Thresholds config.Thresholds

	Shuffle     *stats.MCResult
	Bootstrap   *stats.MCResult
	WalkForward *optimize.WFResult
	Scan        *optimize.ScanResult
	Regimes     []stats.RegimeStats

	Verdict *Verdict
}

// Setup summarizes the run configuration for report headers.
type Setup struct {
	Start          string  `json:"start"`
	End            string  `json:"end"`
	Symbols        int     `json:"symbol_count"`
	Capabilities   string  `json:"capabilities"`
	InitialBalance float64 `json:"initial_balance"`
	MaxRisk        float64 `json:"max_risk"`
	RewardRisk     float64 `json:"rr_ratio"`
	Lookback       int     `json:"lookback"`
}

// Setup returns the configuration summary for this report.
func (r *Report) Setup() Setup {
	return Setup{
		Start:          r.Config.Start.Format(config.DateLayout),
		End:            r.Config.End.Format(config.DateLayout),
		Symbols:        len(r.Config.Symbols),
		Capabilities:   describeCapabilities(r.Config.Capabilities),
		InitialBalance: r.Config.InitialBalance,
		MaxRisk:        r.Config.MaxRisk,
		RewardRisk:     r.Config.RewardRisk,
		Lookback:       r.Config.Lookback,
	}
}

func describeCapabilities(set signal.CapabilitySet) string {
	n := len(set.Names())
	all := len(signal.AllCapabilities())
	switch {
	case n == 0:
		return "none (baseline)"
	case n >= all:
		return fmt.Sprintf("all (%d techniques)", n)
	}
	return fmt.Sprintf("%d of %d techniques", n, all)
}

// WFSummary is the walk-forward record without the per-window detail.
type WFSummary struct {
	TrainSpan   int     `json:"train_span"`
	TestSpan    int     `json:"test_span"`
	Windows     int     `json:"total_windows"`
	Profitable  int     `json:"profitable_windows"`
	Consistency float64 `json:"consistency"`
}

// WFSummary condenses the walk-forward result; nil when the stage was
// skipped.
func (r *Report) WFSummary() *WFSummary {
	if r.WalkForward == nil {
		return nil
	}
	profitable := 0
	for _, w := range r.WalkForward.Windows {
		if w.Profitable {
			profitable++
		}
	}
	return &WFSummary{
		TrainSpan:   r.WalkForward.TrainSpan,
		TestSpan:    r.WalkForward.TestSpan,
		Windows:     len(r.WalkForward.Windows),
		Profitable:  profitable,
		Consistency: r.WalkForward.Consistency,
	}
}

// ScanSummary is the parameter scan without the raw grid.
type ScanSummary struct {
	Combinations   int                `json:"total_combinations"`
	PositiveSharpe int                `json:"positive_sharpe_count"`
	StableCount    int                `json:"stable_count"`
	GlobalBest     optimize.ScanPoint `json:"global_best"`
	Recommended    optimize.ScanPoint `json:"recommended"`
	StablePick     bool               `json:"stable_pick"`
}

// ScanSummary condenses the parameter scan; nil when the stage was
// skipped.
func (r *Report) ScanSummary() *ScanSummary {
	if r.Scan == nil {
		return nil
	}
	s := &ScanSummary{
		Combinations: len(r.Scan.Points),
		GlobalBest:   r.Scan.GlobalBest,
		Recommended:  r.Scan.Recommended,
		StablePick:   r.Scan.StablePick,
	}
	for _, p := range r.Scan.Points {
		if p.Sharpe > 0 {
			s.PositiveSharpe++
		}
		if p.Stable {
			s.StableCount++
		}
	}
	return s
}

// Run executes the validation suite: backtest, metrics, both Monte Carlo
// estimators, walk-forward, parameter scan, regime breakdown, verdict.
// Zero trades is a reportable outcome, surfaced as ErrNoTrades rather
// than a silently empty report. The journal write happens last and a
// failure there is logged, not fatal; every statistic is already in the
// returned report by then.
func Run(cfg backtest.Config, data backtest.Data, opt Options) (*Report, error) {
	opt = opt.withDefaults()
	log := opt.Log

	rep := &Report{
		RunID:      id.New(),
		Generated:  time.Now().UTC(),
		Config:     cfg,
		Thresholds: opt.Thresholds,
	}

	log.WithFields(logrus.Fields{
		"run_id":  rep.RunID,
		"start":   cfg.Start.Format(config.DateLayout),
		"end":     cfg.End.Format(config.DateLayout),
		"symbols": len(cfg.Symbols),
	}).Info("starting validation run")

	eng, err := backtest.NewEngine(cfg, data)
	if err != nil {
		return nil, err
	}
	res, err := eng.Run()
	if err != nil {
		return nil, err
	}
	if len(res.Trades) == 0 {
		return nil, fmt.Errorf("validation %s to %s: %w",
			cfg.Start.Format(config.DateLayout), cfg.End.Format(config.DateLayout),
			backtest.ErrNoTrades)
	}
	rep.Result = res
	rep.Metrics = stats.Compute(res.Trades, res.Equity, res.InitialBalance)

	log.WithFields(logrus.Fields{
		"trades":        rep.Metrics.TotalTrades,
		"sharpe":        rep.Metrics.Sharpe,
		"profit_factor": rep.Metrics.ProfitFactor,
		"max_dd":        rep.Metrics.MaxDrawdown,
		"final_balance": rep.Metrics.FinalBalance,
	}).Info("backtest complete")

	if !opt.Quick {
		if err := runStudies(rep, cfg, data, opt); err != nil {
			return nil, err
		}
	}

	rep.Regimes = stats.RegimeBreakdown(res.Trades, data)
	rep.Verdict = Evaluate(opt.Thresholds, rep.Metrics, rep.Bootstrap, rep.WalkForward)
	log.WithField("verdict", rep.Verdict.Tier).Info("validation complete")

	if err := journal.RecordResult(opt.Journal, rep.RunID, cfg, res, rep.Metrics, rep.Verdict.Tier); err != nil {
		log.WithError(err).Error("journal write failed")
	}
	return rep, nil
}

// runStudies runs the resampling and optimization stages.
func runStudies(rep *Report, cfg backtest.Config, data backtest.Data, opt Options) error {
	log := opt.Log
	res := rep.Result

	log.WithFields(logrus.Fields{
		"simulations": opt.Simulations,
		"ruin_dd":     opt.RuinThreshold,
	}).Info("running monte carlo")
	rep.Shuffle = stats.MonteCarlo(res.Trades, res.InitialBalance,
		opt.Simulations, opt.Seed, opt.RuinThreshold)
	rep.Bootstrap = stats.BlockBootstrap(res.Trades, res.InitialBalance,
		opt.Simulations, opt.BlockSize, opt.Seed, opt.RuinThreshold)
	log.WithFields(logrus.Fields{
		"block_size": rep.Bootstrap.BlockSize,
		"ruin":       rep.Bootstrap.RuinProbability,
		"median_dd":  rep.Bootstrap.MedianMaxDrawdown,
	}).Info("monte carlo complete")

	wfCfg := opt.WalkForward
	if wfCfg.Log == nil {
		wfCfg.Log = log
	}
	wfr, err := optimize.WalkForward(cfg, data, wfCfg)
	switch {
	case errors.Is(err, backtest.ErrInsufficientHistory):
		wfr = &optimize.WFResult{
			TrainSpan: spanOr(wfCfg.TrainSpan, optimize.DefaultTrainSpan),
			TestSpan:  spanOr(wfCfg.TestSpan, optimize.DefaultTestSpan),
		}
		log.WithFields(logrus.Fields{
			"train_span": wfr.TrainSpan,
			"test_span":  wfr.TestSpan,
		}).Warn("not enough history for walk-forward")
	case err != nil:
		return fmt.Errorf("walk-forward: %w", err)
	default:
		log.WithFields(logrus.Fields{
			"windows":     len(wfr.Windows),
			"consistency": wfr.Consistency,
		}).Info("walk-forward complete")
	}
	rep.WalkForward = wfr

	scanCfg := opt.Scan
	if scanCfg.Log == nil {
		scanCfg.Log = log
	}
	sr, err := optimize.Scan(cfg, data, scanCfg)
	if err != nil {
		return fmt.Errorf("parameter scan: %w", err)
	}
	rep.Scan = sr
	log.WithFields(logrus.Fields{
		"combinations": len(sr.Points),
		"stable_pick":  sr.StablePick,
	}).Info("parameter scan complete")
	return nil
}

func spanOr(v, def int) int {
	if v > 0 {
		return v
	}
	return def
}
