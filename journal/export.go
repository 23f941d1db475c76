package journal

import (
	"bytes"
	"text/template"
	"time"
)

var exportFuncs = template.FuncMap{
	"pct": func(x float64) float64 { return x * 100.0 },
	"orNow": func(t time.Time) time.Time {
		if t.IsZero() {
			return time.Now()
		}
		return t
	},
}

// Summary renders the run record as a plain-text block for the journal
// subcommand.
func (r RunRecord) Summary() (string, error) {
	t, err := template.New("run").Funcs(exportFuncs).Parse(runTemplate)
	if err != nil {
		return "", err
	}
	buf := new(bytes.Buffer)
	if err := t.Execute(buf, r); err != nil {
		return "", err
	}
	return buf.String(), nil
}

const runTemplate = `RUN {{.RunID}}
  created:      {{(orNow .Created).Format "2006-01-02 15:04"}}
  range:        {{.Start.Format "2006-01-02"}} .. {{.End.Format "2006-01-02"}}
  symbols:      {{.Symbols}}
  params:       risk {{printf "%.2f" (pct .RiskPct)}}%  rr {{printf "%.2f" .RR}}  lookback {{.Lookback}}

  trades:       {{.Trades}} ({{.Wins}}W / {{.Losses}}L, {{printf "%.1f" (pct .WinRate)}}%)
  balance:      {{printf "%.2f" .StartBalance}} -> {{printf "%.2f" .EndBalance}}
  net P&L:      {{printf "%.2f" .NetPnL}}
  profit factor: {{printf "%.2f" .ProfitFactor}}
  max drawdown: {{printf "%.2f" .MaxDDPct}}%
  sharpe:       {{printf "%.2f" .Sharpe}}
  verdict:      {{if .Verdict}}{{.Verdict}}{{else}}(none){{end}}
`
