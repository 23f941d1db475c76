package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rustyeddy/backlab/optimize"
)

var scanCmd = &cobra.Command{
	Use:   "scan",
	Short: "Grid-scan reward/risk, risk and lookback for stable plateaus",
	Long: `Scan runs the backtest once per point of the parameter grid
(reward:risk ratio x risk fraction x lookback) and marks the points
whose neighbors also earn a positive Sharpe. The recommendation prefers
the best stable point over the raw global best, which on a ragged
surface is usually a lucky spike.

Examples:
  backlab scan
  backlab scan --workers 8 --symbol EURUSD
  backlab scan --start 2018-01-01 --end 2023-12-31`,
	RunE: runScan,
}

var scanWorkers int

func init() {
	rootCmd.AddCommand(scanCmd)

	addRunFlags(scanCmd)
	scanCmd.Flags().IntVar(&scanWorkers, "workers", 0, "parallel grid workers (default 4)")
}

func runScan(cmd *cobra.Command, args []string) error {
	app, err := loadSettings()
	if err != nil {
		return err
	}
	cfg, data, err := loadRun(app)
	if err != nil {
		return err
	}

	fmt.Printf("\nRunning parameter scan (%s to %s)...\n", app.Run.Start, app.Run.End)
	res, err := optimize.Scan(cfg, data, optimize.ScanConfig{
		Workers: scanWorkers,
		Log:     log,
	})
	if err != nil {
		return err
	}

	positive, stable := 0, 0
	for _, p := range res.Points {
		if p.Sharpe > 0 {
			positive++
		}
		if p.Stable {
			stable++
		}
	}

	fmt.Printf("\nScan Complete!\n")
	fmt.Printf("  Combinations: %d\n", len(res.Points))
	fmt.Printf("  Positive Sharpe: %d/%d\n", positive, len(res.Points))
	fmt.Printf("  Stable plateau points: %d\n\n", stable)

	printScanPoint("Global best", res.GlobalBest)
	if res.StablePick {
		printScanPoint("Recommended (stable plateau)", res.Recommended)
	} else {
		fmt.Printf("  No stable plateau found; the global best stands, handle with care.\n")
	}
	return nil
}

func printScanPoint(title string, p optimize.ScanPoint) {
	fmt.Printf("  %s:\n", title)
	fmt.Printf("    RR=%.1f risk=%.1f%% lookback=%d\n", p.RewardRisk, p.MaxRisk*100, p.Lookback)
	fmt.Printf("    %d trades, Sharpe %.2f, PF %.2f, DD %.1f%%, balance $%.2f\n",
		p.Trades, p.Sharpe, p.ProfitFactor, p.MaxDrawdown*100, p.FinalBalance)
}
