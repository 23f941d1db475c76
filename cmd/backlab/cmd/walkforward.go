package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rustyeddy/backlab/backtest"
	"github.com/rustyeddy/backlab/optimize"
)

var walkforwardCmd = &cobra.Command{
	Use:   "walkforward",
	Short: "Roll train/test windows across the history and replay out-of-sample",
	Long: `Walkforward slides a train/test window pair across the configured
date range. Each window picks the best parameters on the train slice by
Sharpe, then replays them cold on the following test slice. Consistency
is the fraction of test windows that finished profitable; above 60%
counts as robust.

Examples:
  backlab walkforward
  backlab walkforward --train 756 --test 189
  backlab walkforward --symbol EURUSD --workers 8`,
	RunE: runWalkForward,
}

var (
	wfTrain   int
	wfTest    int
	wfWorkers int
)

func init() {
	rootCmd.AddCommand(walkforwardCmd)

	addRunFlags(walkforwardCmd)
	walkforwardCmd.Flags().IntVar(&wfTrain, "train", 0, "train window length in trading days (default 504)")
	walkforwardCmd.Flags().IntVar(&wfTest, "test", 0, "test window length in trading days (default 126)")
	walkforwardCmd.Flags().IntVar(&wfWorkers, "workers", 0, "parallel window workers (default 4)")
}

func runWalkForward(cmd *cobra.Command, args []string) error {
	app, err := loadSettings()
	if err != nil {
		return err
	}
	cfg, data, err := loadRun(app)
	if err != nil {
		return err
	}

	fmt.Printf("\nRunning walk-forward analysis (%s to %s)...\n", app.Run.Start, app.Run.End)
	res, err := optimize.WalkForward(cfg, data, optimize.WFConfig{
		TrainSpan: wfTrain,
		TestSpan:  wfTest,
		Workers:   wfWorkers,
		Log:       log,
	})
	if errors.Is(err, backtest.ErrInsufficientHistory) {
		return fmt.Errorf("%w: widen the date range or shrink --train/--test", err)
	}
	if err != nil {
		return err
	}

	fmt.Printf("\nWalk-Forward Complete!\n")
	fmt.Printf("  Windows: %d (train %d / test %d trading days)\n",
		len(res.Windows), res.TrainSpan, res.TestSpan)

	profitable := 0
	for _, w := range res.Windows {
		if w.Profitable {
			profitable++
		}
	}
	fmt.Printf("  Profitable out-of-sample: %d/%d (%.0f%%)\n\n",
		profitable, len(res.Windows), res.Consistency*100)

	fmt.Printf("  %-24s %-5s %-9s %-12s %-11s %-8s %s\n",
		"Test window", "RR", "Lookback", "Train Sharpe", "Test Sharpe", "Test DD", "Balance")
	for _, w := range res.Windows {
		fmt.Printf("  %s .. %s  %-5.1f %-9d %-12.2f %-11.2f %-8s $%.2f\n",
			w.TestStart.Format("2006-01-02"), w.TestEnd.Format("2006-01-02"),
			w.BestRewardRisk, w.BestLookback, w.TrainSharpe, w.TestSharpe,
			fmt.Sprintf("%.1f%%", w.TestMaxDrawdown*100), w.TestFinalBalance)
	}
	return nil
}
