package report

import (
	"fmt"
	"strconv"

	"github.com/rustyeddy/backlab/config"
	"github.com/rustyeddy/backlab/optimize"
	"github.com/rustyeddy/backlab/stats"
)

// Verdict tiers.
const (
	VerdictPass        = "PASS"
	VerdictConditional = "CONDITIONAL"
	VerdictFail        = "FAIL"
)

// Tier classifies a check's role in the verdict. Hard checks gate
// viability, quality checks are counted, robustness checks are recorded
// but do not move the tier.
type Tier string

const (
	TierHard       Tier = "hard"
	TierQuality    Tier = "quality"
	TierRobustness Tier = "robustness"
)

// A walk-forward run passes when at least this fraction of test windows
// finished profitable.
const minWFConsistency = 0.60

// Check is one threshold comparison, formatted for display.
type Check struct {
	Key       string `json:"key"`
	Name      string `json:"name"`
	Value     string `json:"value"`
	Threshold string `json:"threshold"`
	Pass      bool   `json:"pass"`
	Tier      Tier   `json:"tier"`
}

// Verdict is the scored threshold table plus the tier it earns.
type Verdict struct {
	Checks []Check `json:"checks"`
	Tier   string  `json:"verdict"`
}

// Overall reports whether the strategy cleared the hard checks.
func (v *Verdict) Overall() bool { return v.Tier != VerdictFail }

// Failed lists the names of failed checks, in table order.
func (v *Verdict) Failed() []string {
	var out []string
	for _, c := range v.Checks {
		if !c.Pass {
			out = append(out, c.Name)
		}
	}
	return out
}

// PassFail flattens the checks into key -> pass, plus overall and
// verdict_tier, the shape the JSON report records.
func (v *Verdict) PassFail() map[string]any {
	out := make(map[string]any, len(v.Checks)+2)
	for _, c := range v.Checks {
		out[c.Key] = c.Pass
	}
	out["overall"] = v.Overall()
	out["verdict_tier"] = v.Tier
	return out
}

// Evaluate scores the metrics against the threshold table. The block
// bootstrap and walk-forward results contribute robustness checks when
// those stages ran; pass either as nil to omit them. The tier logic:
// any hard failure is a FAIL, a hard pass with at least two of three
// quality checks is a PASS, anything else hard-passing is CONDITIONAL.
func Evaluate(th config.Thresholds, m *stats.Metrics, bootstrap *stats.MCResult, wf *optimize.WFResult) *Verdict {
	th = th.OrDefaults()

	checks := []Check{
		{
			Key: "trades", Name: "Total trades", Tier: TierHard,
			Value:     strconv.Itoa(m.TotalTrades),
			Threshold: fmt.Sprintf(">= %d", th.MinTrades),
			Pass:      m.TotalTrades >= th.MinTrades,
		},
		{
			Key: "sharpe", Name: "Sharpe ratio", Tier: TierQuality,
			Value:     fmt.Sprintf("%.4f", m.Sharpe),
			Threshold: fmt.Sprintf(">= %g", th.MinSharpe),
			Pass:      m.Sharpe >= th.MinSharpe,
		},
		{
			Key: "profit_factor", Name: "Profit factor", Tier: TierQuality,
			Value:     fmt.Sprintf("%.4f", m.ProfitFactor),
			Threshold: fmt.Sprintf(">= %g", th.MinProfitFactor),
			Pass:      m.ProfitFactor >= th.MinProfitFactor,
		},
		{
			Key: "drawdown", Name: "Max drawdown", Tier: TierQuality,
			Value:     fmt.Sprintf("%.1f%%", m.MaxDrawdown*100),
			Threshold: fmt.Sprintf("<= %.0f%%", th.MaxDrawdown*100),
			Pass:      m.MaxDrawdown <= th.MaxDrawdown,
		},
		{
			Key: "win_rate", Name: "Win rate", Tier: TierHard,
			Value:     fmt.Sprintf("%.1f%%", m.WinRate*100),
			Threshold: fmt.Sprintf(">= %.0f%%", th.MinWinRate*100),
			Pass:      m.WinRate >= th.MinWinRate,
		},
		{
			Key: "expectancy", Name: "Expectancy ($/trade)", Tier: TierHard,
			Value:     fmt.Sprintf("$%.2f", m.ExpectancyUSD),
			Threshold: fmt.Sprintf("> $%.2f", th.MinExpectancy),
			Pass:      m.ExpectancyUSD > th.MinExpectancy,
		},
		{
			Key: "consec_losses", Name: "Max consec losses", Tier: TierHard,
			Value:     strconv.Itoa(m.LongestLossStreak),
			Threshold: fmt.Sprintf("<= %d", th.MaxConsecLosses),
			Pass:      m.LongestLossStreak <= th.MaxConsecLosses,
		},
	}

	if bootstrap != nil && bootstrap.Simulations > 0 {
		checks = append(checks, Check{
			Key:       "mc_ruin_block",
			Name:      fmt.Sprintf("MC ruin (%.0f%% DD, block)", bootstrap.RuinThreshold*100),
			Tier:      TierRobustness,
			Value:     fmt.Sprintf("%.1f%%", bootstrap.RuinProbability*100),
			Threshold: fmt.Sprintf("<= %.0f%%", th.MaxRuinProb*100),
			Pass:      bootstrap.RuinProbability <= th.MaxRuinProb,
		})
	}
	if wf != nil && len(wf.Windows) > 0 {
		checks = append(checks, Check{
			Key:       "walk_forward",
			Name:      "Walk-forward consistency",
			Tier:      TierRobustness,
			Value:     fmt.Sprintf("%.0f%%", wf.Consistency*100),
			Threshold: fmt.Sprintf(">= %.0f%%", minWFConsistency*100),
			Pass:      wf.Consistency >= minWFConsistency,
		})
	}

	hard := true
	quality := 0
	for _, c := range checks {
		switch c.Tier {
		case TierHard:
			hard = hard && c.Pass
		case TierQuality:
			if c.Pass {
				quality++
			}
		}
	}

	tier := VerdictFail
	switch {
	case hard && quality >= 2:
		tier = VerdictPass
	case hard:
		tier = VerdictConditional
	}
	return &Verdict{Checks: checks, Tier: tier}
}
