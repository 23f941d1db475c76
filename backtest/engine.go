package backtest

import (
	"fmt"
	"math"
	"time"

	"github.com/rustyeddy/backlab/asset"
	"github.com/rustyeddy/backlab/signal"
)

// Engine replays one configuration over loaded candle data.
type Engine struct {
	cfg  Config
	data Data
}

// NewEngine validates the configuration and binds it to the data.
func NewEngine(cfg Config, data Data) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Engine{cfg: cfg, data: data}, nil
}

type runState struct {
	balance float64
	peak    float64
	open    []*Position
	trades  []Trade
	equity  []EquityPoint
	nextID  int
}

// Run walks every trading date in range, oldest first. Each day: exits
// first (stops before targets on the same candle), the Friday flat for
// weekend-closing classes, then new entries, then an equity mark with
// open positions valued at that day's close. Whatever is still open at
// the end is closed at the last in-range price.
func (e *Engine) Run() (*Result, error) {
	cfg := e.cfg

	dates := e.data.DateUnion(cfg.Start, cfg.End)
	if len(dates) == 0 {
		return nil, ErrNoData
	}

	st := &runState{
		balance: cfg.InitialBalance,
		peak:    cfg.InitialBalance,
		nextID:  1,
	}

	analyze := cfg.Analyzer
	if analyze == nil {
		analyze = signal.Analyze
	}
	exec := asset.ExecRules{Spread: cfg.Spread, Slippage: cfg.Slippage}

	for _, today := range dates {
		e.checkExits(st, today, exec)

		if today.Weekday() == time.Friday {
			e.weekendClose(st, today, exec)
		}

		if st.balance > st.peak {
			st.peak = st.balance
		}

		effectiveMax := cfg.effectiveMaxPositions(st.trades)
		if e.drawdownHalted(st) {
			effectiveMax = 0
		}

		e.evalEntries(st, today, effectiveMax, analyze, exec)
		e.markEquity(st, today, exec)
	}

	e.closeRemaining(st, dates[len(dates)-1], exec)

	return &Result{
		Trades:         st.trades,
		Equity:         st.equity,
		InitialBalance: cfg.InitialBalance,
		FinalBalance:   st.balance,
		Start:          dates[0],
		End:            dates[len(dates)-1],
	}, nil
}

// drawdownHalted reports whether the circuit breaker is tripped: drawdown
// from the high-water mark strictly beyond the limit.
func (e *Engine) drawdownHalted(st *runState) bool {
	limit := e.cfg.MaxDrawdown
	if limit <= 0 {
		return false
	}
	if st.peak <= 0 {
		return false
	}
	dd := (st.peak - st.balance) / st.peak
	return dd > limit
}

// checkExits tests every open position against today's candle. The stop
// is checked before the target: when one candle spans both levels the
// worst case for the trader is assumed.
func (e *Engine) checkExits(st *runState, today time.Time, exec asset.ExecRules) {
	still := st.open[:0]
	for _, pos := range st.open {
		h, ok := e.data[Key{Class: pos.Class, Symbol: pos.Symbol}]
		if !ok {
			still = append(still, pos)
			continue
		}
		candle, ok := h.At(today)
		if !ok {
			// no bar today, position carries forward untouched
			still = append(still, pos)
			continue
		}

		handler, _ := asset.ForClass(pos.Class)
		exitPrice := 0.0
		reason := CloseReason("")

		if pos.Direction == asset.Long {
			if candle.Low <= pos.StopLoss {
				exitPrice, reason = pos.StopLoss, CloseStopLoss
			} else if candle.High >= pos.TakeProfit {
				exitPrice, reason = pos.TakeProfit, CloseTakeProfit
			}
		} else {
			if candle.High >= pos.StopLoss {
				exitPrice, reason = pos.StopLoss, CloseStopLoss
			} else if candle.Low <= pos.TakeProfit {
				exitPrice, reason = pos.TakeProfit, CloseTakeProfit
			}
		}

		if reason == "" {
			still = append(still, pos)
			continue
		}
		pnl := handler.PnL(pos.Entry, exitPrice, pos.Direction, pos.Size, pos.inst, exec)
		e.closeTrade(st, pos, exitPrice, pnl, today, reason)
	}
	st.open = still
}

// weekendClose flattens classes that do not hold over weekends at Friday's
// close, falling back to the entry price if the symbol has no bar today.
func (e *Engine) weekendClose(st *runState, today time.Time, exec asset.ExecRules) {
	still := st.open[:0]
	for _, pos := range st.open {
		handler, _ := asset.ForClass(pos.Class)
		if !handler.WeekendClose() {
			still = append(still, pos)
			continue
		}
		exitPrice := pos.Entry
		if h, ok := e.data[Key{Class: pos.Class, Symbol: pos.Symbol}]; ok {
			if candle, ok := h.At(today); ok {
				exitPrice = candle.Close
			}
		}
		pnl := handler.PnL(pos.Entry, exitPrice, pos.Direction, pos.Size, pos.inst, exec)
		e.closeTrade(st, pos, exitPrice, pnl, today, CloseWeekend)
	}
	st.open = still
}

// evalEntries scans the universe in config order and opens whatever the
// analyzer signals and the gates allow. Scanning stops as soon as the
// book is full; everything else just skips the one symbol.
func (e *Engine) evalEntries(st *runState, today time.Time, effectiveMax int, analyze signal.Analyzer, exec asset.ExecRules) {
	cfg := e.cfg
	for _, sym := range cfg.Symbols {
		if len(st.open) >= effectiveMax {
			break
		}

		h, ok := e.data[sym.Key()]
		if !ok {
			continue
		}
		ci, ok := h.IndexOf(today)
		if !ok {
			continue
		}
		if ci < cfg.Lookback {
			// not enough candles behind today yet
			continue
		}

		an := analyze(sym.Class, sym.Instrument, h.UpTo(ci), cfg.Capabilities, sigRulesFor(cfg))
		if an == nil || an.Signal == nil {
			continue
		}
		sig := an.Signal

		if d := cfg.entryGate(sym, sig.Direction, st.open, effectiveMax); !d.Allowed {
			continue
		}

		handler, _ := asset.ForClass(sym.Class)

		// slippage moves the fill against the trader and widens the stop
		slip := handler.Slippage(sig.Entry, exec)
		entry, stop := sig.Entry, sig.StopLoss
		if sig.Direction == asset.Long {
			entry += slip
			stop -= slip
		} else {
			entry -= slip
			stop += slip
		}
		take := sig.TakeProfit

		stopDist := math.Abs(entry - stop)
		if stopDist <= 0 {
			continue
		}

		size := handler.PositionSize(st.balance, cfg.MaxRisk, stopDist, entry, sym.Instrument)
		if size <= 0 {
			continue
		}

		if rs := cfg.RegimeSizing; rs != nil && rs.Enabled {
			mult, ok := rs.Multipliers[string(an.Regime)]
			if !ok {
				mult = 1.0
			}
			if mult <= 0 {
				// regime blocks entry outright
				continue
			}
			if mult != 1.0 {
				size = math.Max(1, math.Round(size*mult))
			}
		}

		st.open = append(st.open, &Position{
			ID:         fmt.Sprintf("BT%d", st.nextID),
			EntryDate:  today,
			Class:      sym.Class,
			Symbol:     sym.Instrument.Symbol,
			Direction:  sig.Direction,
			Entry:      entry,
			StopLoss:   stop,
			TakeProfit: take,
			Size:       size,
			Reason:     sig.Reason,
			RiskAmount: handler.RiskAmount(stopDist, size, entry, sym.Instrument),
			inst:       sym.Instrument,
		})
		st.nextID++
	}
}

// markEquity appends today's account value: realized balance plus open
// positions marked at today's close. Positions without a bar today
// contribute nothing until one prints.
func (e *Engine) markEquity(st *runState, today time.Time, exec asset.ExecRules) {
	unrealized := 0.0
	for _, pos := range st.open {
		h, ok := e.data[Key{Class: pos.Class, Symbol: pos.Symbol}]
		if !ok {
			continue
		}
		candle, ok := h.At(today)
		if !ok {
			continue
		}
		handler, _ := asset.ForClass(pos.Class)
		unrealized += handler.PnL(pos.Entry, candle.Close, pos.Direction, pos.Size, pos.inst, exec)
	}
	st.equity = append(st.equity, EquityPoint{Date: today, Balance: st.balance + unrealized})
}

// closeRemaining force-closes everything still open at the last in-range
// close for each symbol.
func (e *Engine) closeRemaining(st *runState, last time.Time, exec asset.ExecRules) {
	for _, pos := range st.open {
		handler, _ := asset.ForClass(pos.Class)
		exitPrice := pos.Entry
		if h, ok := e.data[Key{Class: pos.Class, Symbol: pos.Symbol}]; ok {
			if candle, ok := h.LastAtOrBefore(last); ok {
				exitPrice = candle.Close
			}
		}
		pnl := handler.PnL(pos.Entry, exitPrice, pos.Direction, pos.Size, pos.inst, exec)
		e.closeTrade(st, pos, exitPrice, pnl, last, CloseEndOfTest)
	}
	st.open = nil
}

// closeTrade records the trade and settles the balance. The rounded P&L
// is what lands in both the ledger and the balance, so initial balance
// plus the sum of trade P&L always equals the final balance exactly.
func (e *Engine) closeTrade(st *runState, pos *Position, exitPrice, pnl float64, date time.Time, reason CloseReason) {
	pnl = round6(pnl)
	rr := 0.0
	if pos.RiskAmount > 0 {
		rr = pnl / pos.RiskAmount
	}
	st.trades = append(st.trades, Trade{
		ID:          pos.ID,
		EntryDate:   pos.EntryDate,
		CloseDate:   date,
		Class:       pos.Class,
		Symbol:      pos.Symbol,
		Direction:   pos.Direction,
		Entry:       pos.Entry,
		Exit:        exitPrice,
		StopLoss:    pos.StopLoss,
		TakeProfit:  pos.TakeProfit,
		Size:        pos.Size,
		Reason:      pos.Reason,
		PnL:         pnl,
		RMultiple:   round4(rr),
		CloseReason: reason,
	})
	st.balance += pnl
}

func sigRulesFor(cfg Config) signal.Rules {
	return signal.Rules{RewardRisk: cfg.RewardRisk, Lookback: cfg.Lookback}
}
