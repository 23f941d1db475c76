package report

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func readJSON(t *testing.T, path string) map[string]any {
	t.Helper()
	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	var doc map[string]any
	require.NoError(t, json.Unmarshal(raw, &doc))
	return doc
}

func TestWriteFilesFullReport(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	rep := fullReport()
	require.NoError(t, rep.WriteFiles(dir))

	for _, name := range []string{
		BacktestFile, MonteCarloFile, WalkForwardFile, ScanFile, ReportJSONFile, ReportMDFile,
	} {
		assert.FileExists(t, filepath.Join(dir, name))
	}
	leftovers, err := filepath.Glob(filepath.Join(dir, "*.tmp"))
	require.NoError(t, err)
	assert.Empty(t, leftovers)

	doc := readJSON(t, filepath.Join(dir, ReportJSONFile))
	for _, key := range []string{
		"run_id", "generated", "config", "metrics", "thresholds",
		"monte_carlo", "walk_forward", "parameter_scan", "regime_analysis", "pass_fail",
	} {
		assert.Contains(t, doc, key)
	}
	assert.Equal(t, "01J0RPTFXTR000000000000000", doc["run_id"])

	pf, ok := doc["pass_fail"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "PASS", pf["verdict_tier"])
	assert.Equal(t, true, pf["overall"])
	assert.Equal(t, true, pf["trades"])
	assert.Equal(t, false, pf["walk_forward"])

	cfgDoc := doc["config"].(map[string]any)
	assert.Equal(t, "2024-01-01", cfgDoc["start"])
	assert.Equal(t, float64(1), cfgDoc["symbol_count"])
	assert.Equal(t, "all (11 techniques)", cfgDoc["capabilities"])

	th := doc["thresholds"].(map[string]any)
	assert.Equal(t, float64(200), th["min_trades"])
	assert.Contains(t, th, "min_expectancy", "zero thresholds stay visible")

	// the combined report carries summaries, not the raw studies
	wfDoc := doc["walk_forward"].(map[string]any)
	assert.Equal(t, float64(2), wfDoc["total_windows"])
	assert.Equal(t, float64(1), wfDoc["profitable_windows"])
	assert.NotContains(t, wfDoc, "windows")

	scanDoc := doc["parameter_scan"].(map[string]any)
	assert.Equal(t, float64(3), scanDoc["total_combinations"])
	assert.Equal(t, float64(2), scanDoc["positive_sharpe_count"])
	assert.Equal(t, float64(1), scanDoc["stable_count"])
	assert.NotContains(t, scanDoc, "points")

	mcDoc := doc["monte_carlo"].(map[string]any)
	assert.Contains(t, mcDoc, "shuffle")
	assert.Contains(t, mcDoc, "block_bootstrap")

	// the standalone artifacts keep the detail the summary drops
	wfFull := readJSON(t, filepath.Join(dir, WalkForwardFile))
	windows, ok := wfFull["windows"].([]any)
	require.True(t, ok)
	assert.Len(t, windows, 2)

	scanFull := readJSON(t, filepath.Join(dir, ScanFile))
	assert.NotContains(t, scanFull, "points")

	bt := readJSON(t, filepath.Join(dir, BacktestFile))
	assert.Equal(t, float64(2), bt["equity_curve_length"])
	assert.Equal(t, 12400.5, bt["final_balance"])
	assert.Equal(t, float64(10000), bt["initial_balance"])
	trades, ok := bt["trades"].([]any)
	require.True(t, ok)
	assert.Len(t, trades, 1)

	md, err := os.ReadFile(filepath.Join(dir, ReportMDFile))
	require.NoError(t, err)
	assert.Contains(t, string(md), "# Backtest Validation Report")
}

func TestWriteFilesQuickReport(t *testing.T) {
	t.Parallel()

	rep := fullReport()
	rep.Shuffle = nil
	rep.Bootstrap = nil
	rep.WalkForward = nil
	rep.Scan = nil
	rep.Verdict = Evaluate(rep.Thresholds, rep.Metrics, nil, nil)

	dir := t.TempDir()
	require.NoError(t, rep.WriteFiles(dir))

	for _, name := range []string{MonteCarloFile, WalkForwardFile, ScanFile} {
		assert.NoFileExists(t, filepath.Join(dir, name))
	}
	assert.FileExists(t, filepath.Join(dir, BacktestFile))
	assert.FileExists(t, filepath.Join(dir, ReportMDFile))

	doc := readJSON(t, filepath.Join(dir, ReportJSONFile))
	assert.NotContains(t, doc, "monte_carlo")
	assert.NotContains(t, doc, "walk_forward")
	assert.NotContains(t, doc, "parameter_scan")
	assert.Contains(t, doc, "regime_analysis")
	assert.Contains(t, doc, "pass_fail")
}

func TestWriteFilesIncompleteReport(t *testing.T) {
	t.Parallel()

	assert.Error(t, (&Report{}).WriteFiles(t.TempDir()))
}

func TestWriteJSONCreatesDirAndOverwrites(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "nested", "out.json")
	require.NoError(t, WriteJSON(path, map[string]int{"n": 1}))
	require.NoError(t, WriteJSON(path, map[string]int{"n": 2}))

	doc := readJSON(t, path)
	assert.Equal(t, float64(2), doc["n"])
	assert.NoFileExists(t, path+".tmp")
}
