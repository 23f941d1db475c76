package report

import (
	"bytes"
	"errors"
	"fmt"
	"strings"
	"text/template"
	"time"

	"github.com/shopspring/decimal"

	"github.com/rustyeddy/backlab/stats"
)

var reportFuncs = template.FuncMap{
	"pct0": func(x float64) string { return fmt.Sprintf("%.0f%%", x*100) },
	"pct1": func(x float64) string { return fmt.Sprintf("%.1f%%", x*100) },
	"pct2": func(x float64) string { return fmt.Sprintf("%.2f%%", x*100) },
	"f2":   func(x float64) string { return fmt.Sprintf("%.2f", x) },
	"f4":   func(x float64) string { return fmt.Sprintf("%.4f", x) },
	"usd":  func(x float64) string { return "$" + decimal.NewFromFloat(x).StringFixed(2) },
	"day":  func(t time.Time) string { return t.Format("2006-01-02") },
	"join": strings.Join,
	"positiveRegimes": func(rs []stats.RegimeStats) int {
		n := 0
		for _, r := range rs {
			if r.Expectancy > 0 {
				n++
			}
		}
		return n
	},
}

var reportTemplate = template.Must(
	template.New("validation").Funcs(reportFuncs).Parse(markdownTemplate))

// Markdown renders the human-readable validation report.
func (r *Report) Markdown() (string, error) {
	if r.Metrics == nil || r.Verdict == nil {
		return "", errors.New("report: run incomplete, nothing to render")
	}
	buf := new(bytes.Buffer)
	if err := reportTemplate.Execute(buf, r); err != nil {
		return "", fmt.Errorf("report: render markdown: %w", err)
	}
	return buf.String(), nil
}

const markdownTemplate = `# Backtest Validation Report — {{.Generated.Format "2006-01-02 15:04"}}

**Run ID:** {{.RunID}}
**Data range:** {{.Setup.Start}} to {{.Setup.End}}
**Capabilities:** {{.Setup.Capabilities}}
**Symbols tested:** {{.Setup.Symbols}}

## Summary

| Metric | Value | Threshold | Result |
|--------|-------|-----------|--------|
{{- range .Verdict.Checks}}
| {{.Name}} | {{.Value}} | {{.Threshold}} | {{if .Pass}}PASS{{else}}FAIL{{end}} |
{{- end}}

## Trade Statistics

- **Total trades:** {{.Metrics.TotalTrades}}
- **Win rate:** {{pct1 .Metrics.WinRate}} ({{.Metrics.Wins}}W / {{.Metrics.Losses}}L)
- **Avg win:** {{usd .Metrics.AvgWin}}
- **Avg loss:** {{usd .Metrics.AvgLoss}}
- **Largest win:** {{usd .Metrics.LargestWin}}
- **Largest loss:** {{usd .Metrics.LargestLoss}}
- **Expectancy (R):** {{f4 .Metrics.ExpectancyR}}
- **Expectancy ($):** {{usd .Metrics.ExpectancyUSD}}
- **Profit factor:** {{f4 .Metrics.ProfitFactor}}
- **Max consecutive wins:** {{.Metrics.LongestWinStreak}}
- **Max consecutive losses:** {{.Metrics.LongestLossStreak}}

## Risk Metrics

- **Sharpe ratio:** {{f4 .Metrics.Sharpe}}
- **Sortino ratio:** {{f4 .Metrics.Sortino}}
- **Calmar ratio:** {{f4 .Metrics.Calmar}}
- **CAGR:** {{pct2 .Metrics.CAGR}}
- **Max drawdown:** {{pct2 .Metrics.MaxDrawdown}} ({{usd .Metrics.MaxDrawdownUSD}})
- **Drawdown period:** {{day .Metrics.DrawdownPeak}} to {{day .Metrics.DrawdownTrough}}
- **Initial balance:** {{usd .Result.InitialBalance}}
- **Final balance:** {{usd .Metrics.FinalBalance}}
{{- if .Bootstrap}}

## Monte Carlo Analysis

### Block Bootstrap (preserves trade clustering)

- **Method:** resample blocks of {{.Bootstrap.BlockSize}} consecutive trades
- **Simulations:** {{.Bootstrap.Simulations}}
- **Ruin probability ({{pct0 .Bootstrap.RuinThreshold}} DD):** {{pct1 .Bootstrap.RuinProbability}}
- **Median max drawdown:** {{pct1 .Bootstrap.MedianMaxDrawdown}}
- **95th percentile drawdown:** {{pct1 .Bootstrap.P95MaxDrawdown}}
- **99th percentile drawdown:** {{pct1 .Bootstrap.P99MaxDrawdown}}

**Consecutive loss distribution:**

- Median max streak: {{.Bootstrap.MedianConsecLosses}} losses
- 95th percentile: {{.Bootstrap.P95ConsecLosses}} losses
- Worst case: {{.Bootstrap.WorstConsecLosses}} losses

**Balance distribution:**

- Median: {{usd .Bootstrap.MedianFinalBalance}}
- Worst 5%: {{usd .Bootstrap.P5FinalBalance}}
- Best 5%: {{usd .Bootstrap.P95FinalBalance}}
{{- end}}
{{- if .Shuffle}}

### Pure Shuffle (reference)

- **Ruin probability ({{pct0 .Shuffle.RuinThreshold}} DD):** {{pct1 .Shuffle.RuinProbability}}
- **Median max drawdown:** {{pct1 .Shuffle.MedianMaxDrawdown}}
- **Median consec losses:** {{.Shuffle.MedianConsecLosses}}

> The shuffle destroys loss clustering, so its tail numbers drift from
> the realized sequence. Read risk from the block bootstrap; this is the
> baseline.
{{- end}}
{{- if .WalkForward}}{{if .WalkForward.Windows}}

## Walk-Forward Analysis

- **Windows:** {{len .WalkForward.Windows}} (train {{.WalkForward.TrainSpan}} / test {{.WalkForward.TestSpan}} trading days)
- **Profitable OOS:** {{.WFSummary.Profitable}}/{{.WFSummary.Windows}} ({{pct0 .WalkForward.Consistency}})

| Test window | RR | Lookback | Train Sharpe | Test Sharpe | Test DD | Balance |
|-------------|----|----------|--------------|-------------|---------|---------|
{{- range .WalkForward.Windows}}
| {{day .TestStart}} .. {{day .TestEnd}} | {{.BestRewardRisk}} | {{.BestLookback}} | {{f2 .TrainSharpe}} | {{f2 .TestSharpe}} | {{pct1 .TestMaxDrawdown}} | {{usd .TestFinalBalance}} |
{{- end}}
{{- end}}{{end}}
{{- if .Scan}}
{{- with .ScanSummary}}

## Parameter Stability

- **Combinations tested:** {{.Combinations}}
- **Positive Sharpe:** {{.PositiveSharpe}}/{{.Combinations}}
- **Stable (plateau):** {{.StableCount}}
- **Recommended:** RR={{.Recommended.RewardRisk}}, risk={{pct1 .Recommended.MaxRisk}}, lookback={{.Recommended.Lookback}}{{if .StablePick}} (stable plateau){{else}} (global best, no stable plateau){{end}}
  - Sharpe={{f2 .Recommended.Sharpe}}, PF={{f2 .Recommended.ProfitFactor}}, DD={{pct1 .Recommended.MaxDrawdown}}, balance={{usd .Recommended.FinalBalance}}
{{- end}}
{{- end}}
{{- if .Regimes}}

## Regime Analysis

| Regime | Trades | Win Rate | Expectancy | PF |
|--------|--------|----------|------------|-----|
{{- range .Regimes}}
| {{.Regime}} | {{.Trades}} | {{pct1 .WinRate}} | {{usd .Expectancy}} | {{f2 .ProfitFactor}} |
{{- end}}

Positive expectancy in {{positiveRegimes .Regimes}}/{{len .Regimes}} regimes.
{{- end}}

## Verdict

{{if eq .Verdict.Tier "PASS" -}}
**PASS** — the strategy clears every tier of the validation bar.
Safe to keep paper trading at the current sizing.
{{- else if eq .Verdict.Tier "CONDITIONAL" -}}
**CONDITIONAL PASS** — the edge is real but the margins are thin.

What that means in practice:
{{- if .WalkForward}}{{if .WalkForward.Windows}}
- Walk-forward: {{pct0 .WalkForward.Consistency}} of test windows profitable
{{- end}}{{end}}
- Longest realized loss streak: {{.Metrics.LongestLossStreak}}; plan for it
{{- if .Bootstrap}}
- Block bootstrap drawdown: median {{pct1 .Bootstrap.MedianMaxDrawdown}}, worst 5% {{pct1 .Bootstrap.P95MaxDrawdown}}
- 95th percentile loss streak: {{.Bootstrap.P95ConsecLosses}}
{{- end}}

Keep paper trading for more data, pause if a loss streak passes the 95th
percentile, and hold position size flat until the quality metrics clear.
{{- else -}}
**FAIL** — the strategy does not clear the minimum validation bar.
Failed checks: {{join .Verdict.Failed ", "}}.

Unlock more analyzer capability or revisit the entry rules, then re-run;
the parameter scan shows which settings come closest.
{{- end}}
`
