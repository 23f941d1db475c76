package optimize

import (
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/rustyeddy/backlab/backtest"
)

// Full scan grid, reward/risk major, lookback minor.
var (
	ScanRewardRisks = []float64{1.0, 1.25, 1.5, 1.75, 2.0, 2.5, 3.0}
	ScanRisks       = []float64{0.01, 0.015, 0.02, 0.025, 0.03}
	ScanLookbacks   = []int{5, 8, 10, 15, 20}
)

// ScanConfig tunes the grid scan. Empty grids fall back to the full
// default grid.
type ScanConfig struct {
	RewardRisks []float64
	Risks       []float64
	Lookbacks   []int
	Workers     int
	Log         *logrus.Logger
}

func (c ScanConfig) withDefaults() ScanConfig {
	if len(c.RewardRisks) == 0 {
		c.RewardRisks = ScanRewardRisks
	}
	if len(c.Risks) == 0 {
		c.Risks = ScanRisks
	}
	if len(c.Lookbacks) == 0 {
		c.Lookbacks = ScanLookbacks
	}
	if c.Workers <= 0 {
		c.Workers = 4
	}
	if c.Log == nil {
		c.Log = logrus.StandardLogger()
	}
	return c
}

// ScanPoint is one grid combination and how it performed.
type ScanPoint struct {
	RewardRisk float64 `json:"rr"`
	MaxRisk    float64 `json:"risk"`
	Lookback   int     `json:"lookback"`

	Trades       int     `json:"trades"`
	Sharpe       float64 `json:"sharpe"`
	ProfitFactor float64 `json:"profit_factor"`
	MaxDrawdown  float64 `json:"max_dd"`
	FinalBalance float64 `json:"final_balance"`
	Stable       bool    `json:"stable"`
}

// ScanResult is the scanned grid in deterministic order plus the
// recommendation.
type ScanResult struct {
	Points      []ScanPoint `json:"points"`
	GlobalBest  ScanPoint   `json:"global_best"`
	Recommended ScanPoint   `json:"recommended"`
	// StablePick is true when the recommendation came from a stable
	// neighborhood rather than the raw global best.
	StablePick bool `json:"stable_pick"`
}

// Scan runs the engine once per grid point over the base date range.
// A point is stable when it earns a positive Sharpe and at least half
// of its one-step neighbors along each axis do too; the recommendation
// prefers the best stable point over the global best, which on a ragged
// surface is usually a lucky spike.
func Scan(base backtest.Config, data backtest.Data, cfg ScanConfig) (*ScanResult, error) {
	cfg = cfg.withDefaults()

	nr, ns, nl := len(cfg.RewardRisks), len(cfg.Risks), len(cfg.Lookbacks)
	total := nr * ns * nl
	cfg.Log.WithFields(logrus.Fields{"combinations": total}).Info("parameter scan start")

	points := make([]ScanPoint, total)
	errs := make([]error, total)

	workers := cfg.Workers
	if workers > total {
		workers = total
	}
	jobs := make(chan int)
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for idx := range jobs {
				ri := idx / (ns * nl)
				si := idx / nl % ns
				li := idx % nl
				points[idx], errs[idx] = scanPoint(base, data, cfg.RewardRisks[ri], cfg.Risks[si], cfg.Lookbacks[li])
			}
		}()
	}
	for i := 0; i < total; i++ {
		jobs <- i
	}
	close(jobs)
	wg.Wait()

	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}

	markStability(points, nr, ns, nl)

	res := &ScanResult{Points: points}
	res.GlobalBest = points[0]
	haveStable := false
	var bestStable ScanPoint
	for _, p := range points {
		if p.Sharpe > res.GlobalBest.Sharpe {
			res.GlobalBest = p
		}
		if p.Stable && (!haveStable || p.Sharpe > bestStable.Sharpe) {
			bestStable = p
			haveStable = true
		}
	}
	if haveStable {
		res.Recommended = bestStable
		res.StablePick = true
	} else {
		res.Recommended = res.GlobalBest
	}

	cfg.Log.WithFields(logrus.Fields{
		"rr":       res.Recommended.RewardRisk,
		"risk":     res.Recommended.MaxRisk,
		"lookback": res.Recommended.Lookback,
		"sharpe":   res.Recommended.Sharpe,
		"stable":   res.StablePick,
	}).Info("parameter scan done")
	return res, nil
}

func scanPoint(base backtest.Config, data backtest.Data, rr, risk float64, lookback int) (ScanPoint, error) {
	p := ScanPoint{RewardRisk: rr, MaxRisk: risk, Lookback: lookback}

	run := base
	run.RewardRisk, run.MaxRisk, run.Lookback = rr, risk, lookback

	m, err := runAndMeasure(run, data)
	if err != nil {
		return p, err
	}
	if m.TotalTrades == 0 {
		// a dead point stays all-zero so the stability pass reads it as
		// non-positive
		return p, nil
	}
	p.Trades = m.TotalTrades
	p.Sharpe = m.Sharpe
	p.ProfitFactor = m.ProfitFactor
	p.MaxDrawdown = m.MaxDrawdown
	p.FinalBalance = m.FinalBalance
	return p, nil
}

// markStability flags positive-Sharpe points whose one-step neighborhood
// mostly earns a positive Sharpe as well.
func markStability(points []ScanPoint, nr, ns, nl int) {
	at := func(ri, si, li int) int { return (ri*ns+si)*nl + li }

	for ri := 0; ri < nr; ri++ {
		for si := 0; si < ns; si++ {
			for li := 0; li < nl; li++ {
				if points[at(ri, si, li)].Sharpe <= 0 {
					continue
				}
				var neighbors []int
				if ri > 0 {
					neighbors = append(neighbors, at(ri-1, si, li))
				}
				if ri < nr-1 {
					neighbors = append(neighbors, at(ri+1, si, li))
				}
				if si > 0 {
					neighbors = append(neighbors, at(ri, si-1, li))
				}
				if si < ns-1 {
					neighbors = append(neighbors, at(ri, si+1, li))
				}
				if li > 0 {
					neighbors = append(neighbors, at(ri, si, li-1))
				}
				if li < nl-1 {
					neighbors = append(neighbors, at(ri, si, li+1))
				}

				positive := 0
				for _, n := range neighbors {
					if points[n].Sharpe > 0 {
						positive++
					}
				}
				points[at(ri, si, li)].Stable = len(neighbors) > 0 &&
					float64(positive) >= float64(len(neighbors))/2
			}
		}
	}
}
