package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/rustyeddy/backlab/backtest"
	"github.com/rustyeddy/backlab/config"
	"github.com/rustyeddy/backlab/journal"
	"github.com/rustyeddy/backlab/market"
)

var log = logrus.New()

var rootCmd = &cobra.Command{
	Use:   "backlab",
	Short: "A backtest validation lab for multi-asset daily strategies",
	Long: `Backlab replays a rule-based signal analyzer over historical daily
candles and decides whether the strategy deserves capital.

It provides tools for:
  - Backtesting a watchlist of forex, stock and crypto symbols
  - Monte Carlo resampling of the trade sequence (shuffle and block bootstrap)
  - Walk-forward optimization over rolling train/test windows
  - Parameter grid scans with stability plateau detection
  - Regime-segmented performance breakdowns
  - A threshold-based PASS / CONDITIONAL / FAIL verdict with full reports

Complete documentation is available at https://github.com/rustyeddy/backlab`,
	PersistentPreRunE: setup,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	return rootCmd.Execute()
}

var (
	cfgPath  string
	dataDir  string
	logLevel string
)

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgPath, "config", "f", "", "path to config file (YAML or JSON)")
	rootCmd.PersistentFlags().StringVar(&dataDir, "data-dir", "", "override the candle data directory")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "log level (trace, debug, info, warn, error)")
}

// setup loads .env, resolves env fallbacks for the persistent flags and
// configures the logger. Flags beat environment beats config file.
func setup(cmd *cobra.Command, args []string) error {
	_ = godotenv.Load()
	if cfgPath == "" {
		cfgPath = os.Getenv("BACKLAB_CONFIG")
	}
	if dataDir == "" {
		dataDir = os.Getenv("BACKLAB_DATA_DIR")
	}
	lvl, err := logrus.ParseLevel(logLevel)
	if err != nil {
		return fmt.Errorf("log-level: %w", err)
	}
	log.SetLevel(lvl)
	return nil
}

// Date range, symbol and capability overrides shared by every command
// that replays the engine.
var (
	runStart  string
	runEnd    string
	runSymbol string
	runCaps   string
)

func addRunFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&runStart, "start", "", "backtest start date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&runEnd, "end", "", "backtest end date (YYYY-MM-DD)")
	cmd.Flags().StringVarP(&runSymbol, "symbol", "s", "", "restrict the run to one watchlist symbol")
	cmd.Flags().StringVar(&runCaps, "capabilities", "", `analyzer capabilities ("all", "none", or comma-separated names)`)
}

// loadSettings resolves the app config, defaults when no file is given,
// with the override flags applied on top.
func loadSettings() (*config.Config, error) {
	app := config.Default()
	if cfgPath != "" {
		loaded, err := config.LoadFromFile(cfgPath)
		if err != nil {
			return nil, fmt.Errorf("load config: %w", err)
		}
		app = loaded
	}
	if dataDir != "" {
		app.Data.Dir = dataDir
	}
	if runStart != "" {
		app.Run.Start = runStart
	}
	if runEnd != "" {
		app.Run.End = runEnd
	}
	if runCaps != "" {
		app.Run.Capabilities = runCaps
	}
	return app, nil
}

// loadRun builds the engine config and candle data for the app settings
// and reports what each symbol brought in.
func loadRun(app *config.Config) (backtest.Config, backtest.Data, error) {
	u, err := config.LoadUniverse(app.Data.Watchlist)
	if err != nil {
		return backtest.Config{}, nil, fmt.Errorf("load watchlist: %w", err)
	}
	if runSymbol != "" {
		if u, err = u.Filter(runSymbol); err != nil {
			return backtest.Config{}, nil, err
		}
	}

	cfg, err := backtest.FromSettings(app, u)
	if err != nil {
		return backtest.Config{}, nil, fmt.Errorf("build run config: %w", err)
	}

	fmt.Println("Loading watchlist and candle data...")
	data, err := backtest.LoadData(market.NewLoader(app.Data.Dir, log), u)
	if err != nil {
		return backtest.Config{}, nil, err
	}
	for _, e := range u.All() {
		h, ok := data[backtest.Key{Class: e.Class, Symbol: e.Instrument.Symbol}]
		if !ok {
			continue
		}
		first := h.Candles[0].Date
		last := h.Candles[len(h.Candles)-1].Date
		fmt.Printf("  %-6s %-7s %5d candles (%s to %s)\n",
			e.Class, e.Instrument.Symbol, len(h.Candles),
			first.Format(config.DateLayout), last.Format(config.DateLayout))
	}
	return cfg, data, nil
}

// openJournal builds the configured journal sink; "none" records nothing.
func openJournal(app *config.Config) (journal.Journal, error) {
	jc := app.Journal
	if jc.Type == "csv" && jc.RunsFile == "" {
		jc.RunsFile = filepath.Join(filepath.Dir(jc.TradesFile), "runs.csv")
	}
	return journal.New(jc)
}
