package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rustyeddy/backlab/backtest"
	"github.com/rustyeddy/backlab/stats"
)

var backtestCmd = &cobra.Command{
	Use:   "backtest",
	Short: "Run a single backtest and print the trade statistics",
	Long: `Backtest replays the analyzer over the configured date range and
prints the core statistics without writing any report artifacts.
Use it as the fast loop while tuning; run validate for the full suite.

Examples:
  backlab backtest
  backlab backtest --symbol AAPL --start 2020-01-01
  backlab backtest --capabilities "Moving Averages,Japanese Candlesticks"`,
	RunE: runBacktestCmd,
}

func init() {
	rootCmd.AddCommand(backtestCmd)
	addRunFlags(backtestCmd)
}

func runBacktestCmd(cmd *cobra.Command, args []string) error {
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
	m := stats.Compute(res.Trades, res.Equity, res.InitialBalance)

	fmt.Printf("\nBacktest Complete!\n")
	fmt.Printf("  Trades: %d (%dW / %dL, %.1f%% win rate)\n",
		m.TotalTrades, m.Wins, m.Losses, m.WinRate*100)
	fmt.Printf("  Net P&L: $%.2f\n", m.TotalPnL)
	fmt.Printf("  Balance: $%.2f -> $%.2f\n", res.InitialBalance, m.FinalBalance)
	fmt.Printf("  Expectancy: $%.2f (%.3f R)\n", m.ExpectancyUSD, m.ExpectancyR)
	fmt.Printf("  Profit Factor: %.2f\n", m.ProfitFactor)
	fmt.Printf("  Sharpe: %.2f  Sortino: %.2f  Calmar: %.2f\n", m.Sharpe, m.Sortino, m.Calmar)
	fmt.Printf("  Max Drawdown: %.1f%% ($%.2f)\n", m.MaxDrawdown*100, m.MaxDrawdownUSD)
	fmt.Printf("  Longest streaks: %d wins, %d losses\n", m.LongestWinStreak, m.LongestLossStreak)
	if len(m.CloseReasons) > 0 {
		fmt.Printf("  Close reasons:\n")
		for _, reason := range []backtest.CloseReason{
			backtest.CloseTakeProfit, backtest.CloseStopLoss,
			backtest.CloseWeekend, backtest.CloseEndOfTest,
		} {
			if n, ok := m.CloseReasons[string(reason)]; ok {
				fmt.Printf("    %-14s %d\n", reason, n)
			}
		}
	}
	return nil
}
