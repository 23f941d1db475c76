package stats

import (
	"math"
	"math/rand"
	"runtime"
	"sort"
	"sync"

	"github.com/rustyeddy/backlab/backtest"
)

// Resampling methods.
const (
	MethodShuffle        = "shuffle"
	MethodBlockBootstrap = "block_bootstrap"
)

const minBlockSize = 5

// MCResult summarizes one resampling experiment over the trade sequence.
type MCResult struct {
	Method        string  `json:"method"`
	Simulations   int     `json:"simulations"`
	BlockSize     int     `json:"block_size,omitempty"`
	RuinThreshold float64 `json:"ruin_threshold"`

	RuinProbability float64 `json:"ruin_probability"`

	P5FinalBalance     float64 `json:"p5_final_balance"`
	MedianFinalBalance float64 `json:"median_final_balance"`
	P95FinalBalance    float64 `json:"p95_final_balance"`

	MedianMaxDrawdown float64 `json:"median_max_dd"`
	P95MaxDrawdown    float64 `json:"p95_max_dd"`
	P99MaxDrawdown    float64 `json:"p99_max_dd"`

	MedianConsecLosses int `json:"median_consecutive_losses"`
	P95ConsecLosses    int `json:"p95_consecutive_losses"`
	WorstConsecLosses  int `json:"worst_consecutive_losses"`
}

// MonteCarlo shuffles the trade P&L sequence and replays it as an equity
// walk, once per simulation. Shuffling destroys loss clustering, so this
// is the optimistic baseline; BlockBootstrap is the primary estimator.
// Ruin means the walk's drawdown reached ruinThreshold.
func MonteCarlo(trades []backtest.Trade, initialBalance float64, simulations int, seed int64, ruinThreshold float64) *MCResult {
	pnls := pnlSeq(trades)
	res := &MCResult{Method: MethodShuffle, RuinThreshold: ruinThreshold}
	if len(pnls) == 0 || simulations <= 0 {
		return res
	}

	stats := runTrials(pnls, initialBalance, simulations, seed, ruinThreshold,
		func(rng *rand.Rand, src []float64) []float64 {
			out := make([]float64, len(src))
			for i, j := range rng.Perm(len(src)) {
				out[i] = src[j]
			}
			return out
		})
	res.fill(stats)
	return res
}

// BlockBootstrap resamples the P&L sequence as contiguous blocks drawn
// with replacement, preserving local loss clustering. blockSize <= 0
// picks max(5, floor(sqrt(n))).
func BlockBootstrap(trades []backtest.Trade, initialBalance float64, simulations, blockSize int, seed int64, ruinThreshold float64) *MCResult {
	pnls := pnlSeq(trades)
	res := &MCResult{Method: MethodBlockBootstrap, RuinThreshold: ruinThreshold}
	if len(pnls) == 0 || simulations <= 0 {
		return res
	}

	if blockSize <= 0 {
		blockSize = int(math.Sqrt(float64(len(pnls))))
		if blockSize < minBlockSize {
			blockSize = minBlockSize
		}
	}
	res.BlockSize = blockSize

	stats := runTrials(pnls, initialBalance, simulations, seed, ruinThreshold,
		func(rng *rand.Rand, src []float64) []float64 {
			out := make([]float64, 0, len(src)+blockSize)
			for len(out) < len(src) {
				start := rng.Intn(len(src))
				end := start + blockSize
				if end > len(src) {
					end = len(src)
				}
				out = append(out, src[start:end]...)
			}
			return out[:len(src)]
		})
	res.fill(stats)
	return res
}

type trialStat struct {
	final  float64
	maxDD  float64
	streak int
	ruined bool
}

// runTrials executes the simulations on a worker pool. Each trial seeds
// its own generator from seed+index, so the outcome is identical no
// matter how many workers run.
func runTrials(pnls []float64, initialBalance float64, simulations int, seed int64, ruinThreshold float64, sample func(*rand.Rand, []float64) []float64) []trialStat {
	stats := make([]trialStat, simulations)

	workers := runtime.GOMAXPROCS(0)
	if workers > simulations {
		workers = simulations
	}

	jobs := make(chan int)
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				rng := rand.New(rand.NewSource(seed + int64(i)))
				stats[i] = walk(sample(rng, pnls), initialBalance, ruinThreshold)
			}
		}()
	}
	for i := 0; i < simulations; i++ {
		jobs <- i
	}
	close(jobs)
	wg.Wait()

	return stats
}

// walk replays one resampled P&L sequence.
func walk(seq []float64, initialBalance, ruinThreshold float64) trialStat {
	balance, peak := initialBalance, initialBalance
	var maxDD float64
	var streak, worstStreak int

	for _, pnl := range seq {
		balance += pnl
		if balance > peak {
			peak = balance
		}
		if peak > 0 {
			if dd := (peak - balance) / peak; dd > maxDD {
				maxDD = dd
			}
		}
		if pnl <= 0 {
			streak++
			if streak > worstStreak {
				worstStreak = streak
			}
		} else {
			streak = 0
		}
	}

	return trialStat{
		final:  balance,
		maxDD:  maxDD,
		streak: worstStreak,
		ruined: ruinThreshold > 0 && maxDD >= ruinThreshold,
	}
}

func (r *MCResult) fill(stats []trialStat) {
	n := len(stats)
	r.Simulations = n

	finals := make([]float64, n)
	dds := make([]float64, n)
	streaks := make([]int, n)
	ruined := 0
	for i, s := range stats {
		finals[i] = s.final
		dds[i] = s.maxDD
		streaks[i] = s.streak
		if s.ruined {
			ruined++
		}
	}
	sort.Float64s(finals)
	sort.Float64s(dds)
	sort.Ints(streaks)

	r.RuinProbability = round4(float64(ruined) / float64(n))

	r.P5FinalBalance = round2(finals[quantileIndex(n, 0.05)])
	r.MedianFinalBalance = round2(finals[n/2])
	r.P95FinalBalance = round2(finals[quantileIndex(n, 0.95)])

	r.MedianMaxDrawdown = round4(dds[n/2])
	r.P95MaxDrawdown = round4(dds[quantileIndex(n, 0.95)])
	r.P99MaxDrawdown = round4(dds[quantileIndex(n, 0.99)])

	r.MedianConsecLosses = streaks[n/2]
	r.P95ConsecLosses = streaks[quantileIndex(n, 0.95)]
	r.WorstConsecLosses = streaks[n-1]
}

func quantileIndex(n int, q float64) int {
	i := int(float64(n) * q)
	if i > n-1 {
		return n - 1
	}
	return i
}

func pnlSeq(trades []backtest.Trade) []float64 {
	out := make([]float64, len(trades))
	for i, t := range trades {
		out[i] = t.PnL
	}
	return out
}
