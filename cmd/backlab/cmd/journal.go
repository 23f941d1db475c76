package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rustyeddy/backlab/journal"
)

var journalCmd = &cobra.Command{
	Use:   "journal",
	Short: "Query recorded validation runs",
	Long: `Query and display validation runs from the SQLite journal.

Subcommands:
  list   - List recorded runs, newest first
  show   - Show one run in full, with optional trade detail

Examples:
  backlab journal list
  backlab journal show 01J0V9GQRN3CKM8W2YH5T6XDPZ
  backlab journal show 01J0V9GQRN3CKM8W2YH5T6XDPZ --trades`,
}

var journalListCmd = &cobra.Command{
	Use:   "list",
	Short: "List recorded runs, newest first",
	Args:  cobra.NoArgs,
	RunE:  runJournalList,
}

var journalShowCmd = &cobra.Command{
	Use:   "show <run-id>",
	Short: "Show one run in full",
	Args:  cobra.ExactArgs(1),
	RunE:  runJournalShow,
}

var (
	journalDBPath     string
	journalShowTrades bool
)

func init() {
	rootCmd.AddCommand(journalCmd)
	journalCmd.AddCommand(journalListCmd)
	journalCmd.AddCommand(journalShowCmd)

	journalCmd.PersistentFlags().StringVarP(&journalDBPath, "db", "d", "./backlab.sqlite", "path to SQLite journal DB")
	journalShowCmd.Flags().BoolVar(&journalShowTrades, "trades", false, "list the run's trades as well")
}

func runJournalList(cmd *cobra.Command, args []string) error {
	j, err := journal.NewSQLite(journalDBPath)
	if err != nil {
		return fmt.Errorf("open db: %w", err)
	}
	defer j.Close()

	runs, err := j.ListRuns()
	if err != nil {
		return fmt.Errorf("list runs: %w", err)
	}
	if len(runs) == 0 {
		fmt.Println("No runs recorded yet. Run `backlab validate` first.")
		return nil
	}

	fmt.Printf("%-26s %-16s %-23s %6s %7s %7s %11s  %s\n",
		"RUN ID", "CREATED", "RANGE", "TRADES", "WIN%", "PF", "END BAL", "VERDICT")
	for _, r := range runs {
		verdict := r.Verdict
		if verdict == "" {
			verdict = "(none)"
		}
		fmt.Printf("%-26s %-16s %s .. %s %6d %6.1f%% %7.2f %11.2f  %s\n",
			r.RunID, r.Created.Format("2006-01-02 15:04"),
			r.Start.Format("2006-01-02"), r.End.Format("2006-01-02"),
			r.Trades, r.WinRate*100, r.ProfitFactor, r.EndBalance, verdict)
	}
	return nil
}

func runJournalShow(cmd *cobra.Command, args []string) error {
	j, err := journal.NewSQLite(journalDBPath)
	if err != nil {
		return fmt.Errorf("open db: %w", err)
	}
	defer j.Close()

	rec, err := j.GetRun(args[0])
	if err != nil {
		return fmt.Errorf("get run: %w", err)
	}

	out, err := rec.Summary()
	if err != nil {
		return err
	}
	fmt.Println(out)

	if !journalShowTrades {
		return nil
	}

	trades, err := j.TradesByRun(args[0])
	if err != nil {
		return fmt.Errorf("query trades: %w", err)
	}
	fmt.Printf("  %-10s %-7s %-7s %-5s %-12s %-12s %10s %8s  %s\n",
		"TRADE", "CLASS", "SYMBOL", "DIR", "OPENED", "CLOSED", "P&L", "R", "REASON")
	for _, t := range trades {
		fmt.Printf("  %-10s %-7s %-7s %-5s %-12s %-12s %10.2f %8.2f  %s\n",
			t.TradeID, t.Class, t.Symbol, t.Direction,
			t.OpenDate.Format("2006-01-02"), t.CloseDate.Format("2006-01-02"),
			t.PnL, t.RMultiple, t.CloseReason)
	}
	return nil
}
