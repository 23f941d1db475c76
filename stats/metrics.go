// Package stats turns backtest output into performance metrics and
// stress-tests them by resampling the trade sequence.
package stats

import (
	"math"
	"time"

	"github.com/shopspring/decimal"

	"github.com/rustyeddy/backlab/backtest"
)

// ratioCap stands in for an unbounded ratio. Profit factor with no
// losses, Calmar with no drawdown and Sortino with no downside days all
// saturate here instead of going to +Inf, which encoding/json rejects.
const ratioCap = 999.0

const tradingDaysPerYear = 252

// Metrics is the full performance summary of one run.
type Metrics struct {
	TotalTrades int     `json:"total_trades"`
	Wins        int     `json:"wins"`
	Losses      int     `json:"losses"`
	WinRate     float64 `json:"win_rate"`

	TotalPnL     float64 `json:"total_pnl"`
	FinalBalance float64 `json:"final_balance"`
	AvgWin       float64 `json:"avg_win"`
	AvgLoss      float64 `json:"avg_loss"` // signed, <= 0
	LargestWin   float64 `json:"largest_win"`
	LargestLoss  float64 `json:"largest_loss"` // signed, <= 0

	ProfitFactor  float64 `json:"profit_factor"`
	ExpectancyUSD float64 `json:"expectancy_usd"`
	ExpectancyR   float64 `json:"expectancy_r"`

	MaxDrawdown    float64   `json:"max_drawdown"`
	MaxDrawdownUSD float64   `json:"max_drawdown_usd"`
	DrawdownPeak   time.Time `json:"drawdown_peak"`
	DrawdownTrough time.Time `json:"drawdown_trough"`

	Sharpe  float64 `json:"sharpe"`
	Sortino float64 `json:"sortino"`
	Calmar  float64 `json:"calmar"`
	CAGR    float64 `json:"cagr"`

	LongestWinStreak  int `json:"longest_win_streak"`
	LongestLossStreak int `json:"longest_loss_streak"`

	CloseReasons map[string]int `json:"close_reasons"`
}

// Compute summarizes a run. Trades are taken in close order, the equity
// curve in date order; neither input is mutated. Zero trades produce a
// zero-valued summary rather than NaNs.
func Compute(trades []backtest.Trade, equity []backtest.EquityPoint, initialBalance float64) *Metrics {
	m := &Metrics{
		FinalBalance: round2(initialBalance),
		CloseReasons: make(map[string]int),
	}
	if len(trades) == 0 {
		return m
	}

	var grossWin, grossLoss, totalPnL, sumR float64
	var winRun, lossRun int
	for _, t := range trades {
		totalPnL += t.PnL
		sumR += t.RMultiple
		m.CloseReasons[string(t.CloseReason)]++

		if t.Win() {
			m.Wins++
			grossWin += t.PnL
			if t.PnL > m.LargestWin {
				m.LargestWin = t.PnL
			}
			winRun++
			lossRun = 0
		} else {
			m.Losses++
			grossLoss += -t.PnL
			if t.PnL < m.LargestLoss {
				m.LargestLoss = t.PnL
			}
			lossRun++
			winRun = 0
		}
		if winRun > m.LongestWinStreak {
			m.LongestWinStreak = winRun
		}
		if lossRun > m.LongestLossStreak {
			m.LongestLossStreak = lossRun
		}
	}

	n := float64(len(trades))
	m.TotalTrades = len(trades)
	m.WinRate = round4(float64(m.Wins) / n)
	m.TotalPnL = round2(totalPnL)
	m.FinalBalance = round2(initialBalance + totalPnL)
	if m.Wins > 0 {
		m.AvgWin = round2(grossWin / float64(m.Wins))
	}
	if m.Losses > 0 {
		m.AvgLoss = round2(-grossLoss / float64(m.Losses))
	}
	m.LargestWin = round2(m.LargestWin)
	m.LargestLoss = round2(m.LargestLoss)

	switch {
	case grossLoss > 0:
		m.ProfitFactor = round4(grossWin / grossLoss)
	case grossWin > 0:
		m.ProfitFactor = ratioCap
	}
	m.ExpectancyUSD = round2(totalPnL / n)
	m.ExpectancyR = round4(sumR / n)

	m.drawdown(equity, initialBalance)
	m.riskAdjusted(equity, initialBalance)

	return m
}

// drawdown runs the single forward scan for the deepest peak-to-trough
// decline on the equity curve.
func (m *Metrics) drawdown(equity []backtest.EquityPoint, initialBalance float64) {
	peak := initialBalance
	var peakDate time.Time
	if len(equity) > 0 {
		peakDate = equity[0].Date
	}

	var maxFrac, maxUSD float64
	var atPeak, atTrough time.Time
	for _, p := range equity {
		if p.Balance > peak {
			peak = p.Balance
			peakDate = p.Date
		}
		if peak <= 0 {
			continue
		}
		frac := (peak - p.Balance) / peak
		if frac > maxFrac {
			maxFrac = frac
			maxUSD = peak - p.Balance
			atPeak = peakDate
			atTrough = p.Date
		}
	}

	m.MaxDrawdown = round4(maxFrac)
	m.MaxDrawdownUSD = round2(maxUSD)
	m.DrawdownPeak = atPeak
	m.DrawdownTrough = atTrough
}

// riskAdjusted fills Sharpe, Sortino, CAGR and Calmar from daily equity
// returns.
func (m *Metrics) riskAdjusted(equity []backtest.EquityPoint, initialBalance float64) {
	returns := dailyReturns(equity)
	ann := math.Sqrt(tradingDaysPerYear)

	if len(returns) >= 2 {
		mean, std := meanStd(returns)
		if std > 0 {
			m.Sharpe = round4(mean / std * ann)
		}

		var downSq float64
		for _, r := range returns {
			if r < 0 {
				downSq += r * r
			}
		}
		downside := math.Sqrt(downSq / float64(len(returns)))
		switch {
		case downside > 0:
			m.Sortino = round4(mean / downside * ann)
			if m.Sortino > ratioCap {
				m.Sortino = ratioCap
			}
		case mean > 0:
			m.Sortino = ratioCap
		}
	}

	if len(equity) >= 2 && initialBalance > 0 {
		final := equity[len(equity)-1].Balance
		days := equity[len(equity)-1].Date.Sub(equity[0].Date).Hours() / 24
		years := days / 365.25
		if years > 0 && final > 0 {
			m.CAGR = round4(math.Pow(final/initialBalance, 1/years) - 1)
		}
	}

	switch {
	case m.MaxDrawdown > 0:
		m.Calmar = round4(m.CAGR / m.MaxDrawdown)
		if m.Calmar > ratioCap {
			m.Calmar = ratioCap
		}
	case m.CAGR > 0:
		m.Calmar = ratioCap
	}
}

func dailyReturns(equity []backtest.EquityPoint) []float64 {
	if len(equity) < 2 {
		return nil
	}
	out := make([]float64, 0, len(equity)-1)
	for i := 1; i < len(equity); i++ {
		prev := equity[i-1].Balance
		if prev == 0 {
			continue
		}
		out = append(out, (equity[i].Balance-prev)/prev)
	}
	return out
}

// meanStd returns the mean and sample standard deviation.
func meanStd(values []float64) (float64, float64) {
	mean := 0.0
	for _, v := range values {
		mean += v
	}
	mean /= float64(len(values))

	if len(values) < 2 {
		return mean, 0
	}
	varSum := 0.0
	for _, v := range values {
		d := v - mean
		varSum += d * d
	}
	return mean, math.Sqrt(varSum / float64(len(values)-1))
}

func round2(v float64) float64 {
	return decimal.NewFromFloat(v).Round(2).InexactFloat64()
}

func round4(v float64) float64 {
	return decimal.NewFromFloat(v).Round(4).InexactFloat64()
}
