package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rustyeddy/backlab/backtest"
	"github.com/rustyeddy/backlab/stats"
)

var montecarloCmd = &cobra.Command{
	Use:   "montecarlo",
	Short: "Resample the trade sequence to estimate drawdown and ruin risk",
	Long: `Montecarlo runs the backtest once, then resamples the resulting trade
sequence two ways:

  shuffle          - random permutations of the P&L sequence; destroys
                     loss clustering, so its tails run optimistic
  block bootstrap  - resamples blocks of consecutive trades, preserving
                     clustering; read risk numbers from this one

Both estimators report ruin probability, drawdown percentiles,
consecutive-loss streaks and the final balance distribution.

Examples:
  backlab montecarlo
  backlab montecarlo --simulations 10000 --ruin 0.30
  backlab montecarlo --symbol EURUSD --block-size 20`,
	RunE: runMonteCarlo,
}

var (
	mcSims      int
	mcSeed      int64
	mcRuin      float64
	mcBlockSize int
)

func init() {
	rootCmd.AddCommand(montecarloCmd)

	addRunFlags(montecarloCmd)
	montecarloCmd.Flags().IntVarP(&mcSims, "simulations", "n", 0, "simulation count (default from config)")
	montecarloCmd.Flags().Int64Var(&mcSeed, "seed", 0, "random seed (default from config)")
	montecarloCmd.Flags().Float64Var(&mcRuin, "ruin", 0, "ruin drawdown fraction, e.g. 0.25 (default from config)")
	montecarloCmd.Flags().IntVar(&mcBlockSize, "block-size", 0, "bootstrap block length (0 picks max(5, sqrt(trades)))")
}

func runMonteCarlo(cmd *cobra.Command, args []string) error {
	app, err := loadSettings()
	if err != nil {
		return err
	}
	cfg, data, err := loadRun(app)
	if err != nil {
		return err
	}

	sims := mcSims
	if sims <= 0 {
		sims = app.MonteCarlo.Simulations
	}
	seed := mcSeed
	if seed == 0 {
		seed = app.MonteCarlo.Seed
	}
	ruin := mcRuin
	if ruin <= 0 {
		ruin = app.MonteCarlo.RuinThreshold
	}

	eng, err := backtest.NewEngine(cfg, data)
	if err != nil {
		return err
	}
	fmt.Printf("\nRunning backtest (%s to %s)...\n", app.Run.Start, app.Run.End)
	res, err := eng.Run()
	if err != nil {
		return err
	}
	if len(res.Trades) == 0 {
		return backtest.ErrNoTrades
	}
	fmt.Printf("  %d trades, final balance: $%.2f\n", len(res.Trades), res.FinalBalance)

	fmt.Printf("\nResampling %d simulations (seed %d, ruin at %.0f%% drawdown)...\n",
		sims, seed, ruin*100)
	shuffle := stats.MonteCarlo(res.Trades, res.InitialBalance, sims, seed, ruin)
	bootstrap := stats.BlockBootstrap(res.Trades, res.InitialBalance, sims, mcBlockSize, seed, ruin)

	printMC("Block Bootstrap (primary)", bootstrap)
	printMC("Pure Shuffle (reference)", shuffle)
	return nil
}

func printMC(title string, r *stats.MCResult) {
	fmt.Printf("\n%s\n", title)
	if r.BlockSize > 0 {
		fmt.Printf("  Block size: %d trades\n", r.BlockSize)
	}
	fmt.Printf("  Ruin probability: %.1f%%\n", r.RuinProbability*100)
	fmt.Printf("  Max drawdown: median %.1f%%, p95 %.1f%%, p99 %.1f%%\n",
		r.MedianMaxDrawdown*100, r.P95MaxDrawdown*100, r.P99MaxDrawdown*100)
	fmt.Printf("  Consecutive losses: median %d, p95 %d, worst %d\n",
		r.MedianConsecLosses, r.P95ConsecLosses, r.WorstConsecLosses)
	fmt.Printf("  Final balance: p5 $%.2f, median $%.2f, p95 $%.2f\n",
		r.P5FinalBalance, r.MedianFinalBalance, r.P95FinalBalance)
}
