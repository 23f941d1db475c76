package report

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/rustyeddy/backlab/backtest"
	"github.com/rustyeddy/backlab/config"
	"github.com/rustyeddy/backlab/stats"
)

// Artifact names under the report directory.
const (
	BacktestFile    = "backtest-results.json"
	MonteCarloFile  = "monte-carlo.json"
	WalkForwardFile = "walk-forward.json"
	ScanFile        = "parameter-scan.json"
	ReportJSONFile  = "validation-report.json"
	ReportMDFile    = "validation-report.md"
)

// WriteJSON writes v as indented JSON, atomically: the bytes land in a
// temp file next to the target, which is then renamed over it, so a
// reader never sees a half-written report.
func WriteJSON(path string, v any) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("report: %w", err)
	}
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("report: marshal %s: %w", filepath.Base(path), err)
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, append(data, '\n'), 0o644); err != nil {
		return fmt.Errorf("report: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("report: %w", err)
	}
	return nil
}

type backtestJSON struct {
	Trades            []backtest.Trade `json:"trades"`
	EquityCurveLength int              `json:"equity_curve_length"`
	InitialBalance    float64          `json:"initial_balance"`
	FinalBalance      float64          `json:"final_balance"`
}

type mcJSON struct {
	Shuffle        *stats.MCResult `json:"shuffle"`
	BlockBootstrap *stats.MCResult `json:"block_bootstrap"`
}

type validationJSON struct {
	RunID         string              `json:"run_id"`
	Generated     time.Time           `json:"generated"`
	Config        Setup               `json:"config"`
	Metrics       *stats.Metrics      `json:"metrics"`
	Thresholds    config.Thresholds   `json:"thresholds"`
	MonteCarlo    *mcJSON             `json:"monte_carlo,omitempty"`
	WalkForward   *WFSummary          `json:"walk_forward,omitempty"`
	ParameterScan *ScanSummary        `json:"parameter_scan,omitempty"`
	Regimes       []stats.RegimeStats `json:"regime_analysis,omitempty"`
	PassFail      map[string]any      `json:"pass_fail"`
}

// WriteFiles writes every artifact of this report under dir: the raw
// backtest results, both Monte Carlo estimates, the walk-forward record
// with its windows, the parameter-scan summary (the raw grid stays in
// memory), the combined validation-report.json and the markdown report.
// Stages that did not run write nothing.
func (r *Report) WriteFiles(dir string) error {
	if r.Result == nil || r.Metrics == nil || r.Verdict == nil {
		return errors.New("report: run incomplete, nothing to write")
	}

	if err := WriteJSON(filepath.Join(dir, BacktestFile), backtestJSON{
		Trades:            r.Result.Trades,
		EquityCurveLength: len(r.Result.Equity),
		InitialBalance:    r.Result.InitialBalance,
		FinalBalance:      r.Result.FinalBalance,
	}); err != nil {
		return err
	}

	var mc *mcJSON
	if r.Shuffle != nil || r.Bootstrap != nil {
		mc = &mcJSON{Shuffle: r.Shuffle, BlockBootstrap: r.Bootstrap}
		if err := WriteJSON(filepath.Join(dir, MonteCarloFile), mc); err != nil {
			return err
		}
	}
	if r.WalkForward != nil {
		if err := WriteJSON(filepath.Join(dir, WalkForwardFile), r.WalkForward); err != nil {
			return err
		}
	}
	if r.Scan != nil {
		if err := WriteJSON(filepath.Join(dir, ScanFile), r.ScanSummary()); err != nil {
			return err
		}
	}

	if err := WriteJSON(filepath.Join(dir, ReportJSONFile), validationJSON{
		RunID:         r.RunID,
		Generated:     r.Generated,
		Config:        r.Setup(),
		Metrics:       r.Metrics,
		Thresholds:    r.Thresholds,
		MonteCarlo:    mc,
		WalkForward:   r.WFSummary(),
		ParameterScan: r.ScanSummary(),
		Regimes:       r.Regimes,
		PassFail:      r.Verdict.PassFail(),
	}); err != nil {
		return err
	}

	md, err := r.Markdown()
	if err != nil {
		return err
	}
	if err := os.WriteFile(filepath.Join(dir, ReportMDFile), []byte(md), 0o644); err != nil {
		return fmt.Errorf("report: %w", err)
	}
	return nil
}
