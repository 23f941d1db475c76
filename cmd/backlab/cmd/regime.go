package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rustyeddy/backlab/backtest"
	"github.com/rustyeddy/backlab/stats"
)

var regimeCmd = &cobra.Command{
	Use:   "regime",
	Short: "Break backtest performance down by market regime",
	Long: `Regime buckets every closed trade by the market condition in force
when it was opened: bull or bear, high or low volatility, or ranging.
A strategy that only earns in one regime is a bet on that regime
continuing; spread expectancy is what robustness looks like.

Examples:
  backlab regime
  backlab regime --symbol BTCUSD --start 2020-01-01`,
	RunE: runRegime,
}

func init() {
	rootCmd.AddCommand(regimeCmd)
	addRunFlags(regimeCmd)
}

func runRegime(cmd *cobra.Command, args []string) error {
	app, err := loadSettings()
	if err != nil {
		return err
	}
	cfg, data, err := loadRun(app)
	if err != nil {
		return err
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

	breakdown := stats.RegimeBreakdown(res.Trades, data)

	fmt.Printf("\nRegime Breakdown (%d trades)\n\n", len(res.Trades))
	fmt.Printf("  %-15s %7s %10s %12s %8s %12s\n",
		"Regime", "Trades", "Win Rate", "Expectancy", "PF", "Total P&L")
	positive := 0
	for _, r := range breakdown {
		fmt.Printf("  %-15s %7d %9.1f%% %12s %8.2f %12s\n",
			r.Regime, r.Trades, r.WinRate*100,
			fmt.Sprintf("$%.2f", r.Expectancy), r.ProfitFactor,
			fmt.Sprintf("$%.2f", r.TotalPnL))
		if r.Expectancy > 0 {
			positive++
		}
	}
	fmt.Printf("\n  Positive expectancy in %d/%d regimes.\n", positive, len(breakdown))
	return nil
}
