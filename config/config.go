// Package config defines the run configuration and the instrument universe.
// Files load as YAML with a JSON fallback, so either format works.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// DateLayout is the format for start/end dates in config files and flags.
const DateLayout = "2006-01-02"

// Config represents the complete validation-run configuration.
type Config struct {
	Data       DataConfig    `json:"data" yaml:"data"`
	Run        RunConfig     `json:"run" yaml:"run"`
	MonteCarlo MCConfig      `json:"monte_carlo" yaml:"monte_carlo"`
	Thresholds Thresholds    `json:"thresholds,omitempty" yaml:"thresholds,omitempty"`
	Journal    JournalConfig `json:"journal" yaml:"journal"`
	ReportDir  string        `json:"report_dir" yaml:"report_dir"`
}

// DataConfig locates candle files and the watchlist.
type DataConfig struct {
	Dir       string `json:"dir" yaml:"dir"`
	Watchlist string `json:"watchlist" yaml:"watchlist"`
}

// RunConfig contains the core backtest parameters.
type RunConfig struct {
	Start        string  `json:"start" yaml:"start"`
	End          string  `json:"end" yaml:"end"`
	Balance      float64 `json:"balance" yaml:"balance"`
	Lookback     int     `json:"lookback" yaml:"lookback"`
	Capabilities string  `json:"capabilities" yaml:"capabilities"` // "all", "none", or comma-separated names
}

// MCConfig contains Monte Carlo parameters.
type MCConfig struct {
	Simulations   int     `json:"simulations" yaml:"simulations"`
	Seed          int64   `json:"seed" yaml:"seed"`
	RuinThreshold float64 `json:"ruin_threshold" yaml:"ruin_threshold"`
}

// JournalConfig contains journaling parameters.
type JournalConfig struct {
	Type       string `json:"type" yaml:"type"` // "csv", "sqlite", or "none"
	TradesFile string `json:"trades_file,omitempty" yaml:"trades_file,omitempty"`
	EquityFile string `json:"equity_file,omitempty" yaml:"equity_file,omitempty"`
	RunsFile   string `json:"runs_file,omitempty" yaml:"runs_file,omitempty"`
	DBPath     string `json:"db_path,omitempty" yaml:"db_path,omitempty"`
}

// LoadFromFile loads configuration from a file (YAML or JSON).
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	cfg := &Config{}

	// Try YAML first, fall back to JSON
	err = yaml.Unmarshal(data, cfg)
	if err != nil {
		err = json.Unmarshal(data, cfg)
		if err != nil {
			return nil, fmt.Errorf("parse config (tried YAML and JSON): %w", err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// SaveToFile saves configuration to a file (JSON or YAML based on extension).
func (c *Config) SaveToFile(path string) error {
	var data []byte
	var err error

	if (len(path) > 5 && path[len(path)-5:] == ".yaml") || (len(path) > 4 && path[len(path)-4:] == ".yml") {
		data, err = yaml.Marshal(c)
	} else {
		data, err = json.MarshalIndent(c, "", "  ")
	}

	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write config file: %w", err)
	}

	return nil
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.Data.Dir == "" {
		return fmt.Errorf("data.dir is required")
	}
	if c.Data.Watchlist == "" {
		return fmt.Errorf("data.watchlist is required")
	}
	start, err := time.Parse(DateLayout, c.Run.Start)
	if err != nil {
		return fmt.Errorf("run.start: %w", err)
	}
	end, err := time.Parse(DateLayout, c.Run.End)
	if err != nil {
		return fmt.Errorf("run.end: %w", err)
	}
	if end.Before(start) {
		return fmt.Errorf("run.end %s precedes run.start %s", c.Run.End, c.Run.Start)
	}
	if c.Run.Balance <= 0 {
		return fmt.Errorf("run.balance must be positive")
	}
	if c.Run.Lookback < 2 {
		return fmt.Errorf("run.lookback must be at least 2")
	}
	if c.MonteCarlo.Simulations < 0 {
		return fmt.Errorf("monte_carlo.simulations must not be negative")
	}
	if c.MonteCarlo.RuinThreshold < 0 || c.MonteCarlo.RuinThreshold > 1 {
		return fmt.Errorf("monte_carlo.ruin_threshold must be between 0 and 1")
	}
	switch c.Journal.Type {
	case "", "none":
	case "csv":
		if c.Journal.TradesFile == "" || c.Journal.EquityFile == "" {
			return fmt.Errorf("journal trades_file and equity_file required for CSV type")
		}
	case "sqlite":
		if c.Journal.DBPath == "" {
			return fmt.Errorf("journal db_path required for SQLite type")
		}
	default:
		return fmt.Errorf("journal.type must be 'csv', 'sqlite' or 'none'")
	}
	return nil
}

// Default returns a configuration with sensible defaults.
func Default() *Config {
	return &Config{
		Data: DataConfig{
			Dir:       "./data",
			Watchlist: "./watchlist.json",
		},
		Run: RunConfig{
			Start:        "2015-01-01",
			End:          "2025-12-31",
			Balance:      10000,
			Lookback:     10,
			Capabilities: "all",
		},
		MonteCarlo: MCConfig{
			Simulations:   5000,
			Seed:          42,
			RuinThreshold: 0.25,
		},
		Thresholds: DefaultThresholds(),
		Journal: JournalConfig{
			Type:   "sqlite",
			DBPath: "./backlab.sqlite",
		},
		ReportDir: "./validation",
	}
}
