package cmd

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/rustyeddy/backlab/report"
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Run the full validation suite and write the report artifacts",
	Long: `Validate runs the complete strategy validation pipeline: the backtest,
core metrics, Monte Carlo resampling (shuffle and block bootstrap),
walk-forward optimization, a parameter stability scan and a regime
breakdown, then scores everything against the configured thresholds.

The verdict comes in three grades:
  PASS        - every hard check and most quality checks clear
  CONDITIONAL - viable but thin; keep paper trading before sizing up
  FAIL        - at least one hard check failed

Artifacts land in the report directory: backtest-results.json,
monte-carlo.json, walk-forward.json, parameter-scan.json,
validation-report.json and validation-report.md.

Examples:
  backlab validate
  backlab validate --quick --symbol EURUSD
  backlab validate --start 2018-01-01 --end 2024-12-31 --capabilities none`,
	RunE: runValidate,
}

var (
	validateQuick bool
	validateOut   string
)

func init() {
	rootCmd.AddCommand(validateCmd)

	addRunFlags(validateCmd)
	validateCmd.Flags().BoolVar(&validateQuick, "quick", false, "backtest and verdict only, skip the study stages")
	validateCmd.Flags().StringVarP(&validateOut, "out", "o", "", "report directory (default from config)")
}

func runValidate(cmd *cobra.Command, args []string) error {
	app, err := loadSettings()
	if err != nil {
		return err
	}
	cfg, data, err := loadRun(app)
	if err != nil {
		return err
	}

	j, err := openJournal(app)
	if err != nil {
		return fmt.Errorf("open journal: %w", err)
	}
	defer j.Close()

	opt := report.OptionsFromConfig(app)
	opt.Quick = validateQuick
	opt.Journal = j
	opt.Log = log

	fmt.Printf("\nRunning backtest (%s to %s)...\n", app.Run.Start, app.Run.End)
	rep, err := report.Run(cfg, data, opt)
	if err != nil {
		return err
	}

	out := validateOut
	if out == "" {
		out = app.ReportDir
	}
	if err := rep.WriteFiles(out); err != nil {
		return err
	}

	m := rep.Metrics
	fmt.Printf("\nBacktest Complete!\n")
	fmt.Printf("  Trades: %d (%.1f%% win rate)\n", m.TotalTrades, m.WinRate*100)
	fmt.Printf("  Final Balance: $%.2f\n", m.FinalBalance)
	fmt.Printf("  Sharpe: %.2f  PF: %.2f  Max DD: %.1f%%\n",
		m.Sharpe, m.ProfitFactor, m.MaxDrawdown*100)

	switch rep.Verdict.Tier {
	case report.VerdictPass:
		fmt.Printf("\n✓ PASS — all validation tiers cleared\n")
	case report.VerdictConditional:
		fmt.Printf("\n~ CONDITIONAL PASS — viable, but margins are thin\n")
	default:
		fmt.Printf("\n✗ FAIL — %s\n", strings.Join(rep.Verdict.Failed(), ", "))
	}
	fmt.Printf("\nReports written to %s\n", filepath.Clean(out))
	fmt.Printf("  Read %s for the full story.\n", filepath.Join(filepath.Clean(out), report.ReportMDFile))
	return nil
}
