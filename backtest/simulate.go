// Package backtest replays strategies over historical bars and searches
// their parameter space.
package backtest

import (
	"errors"
	"fmt"
	"time"

	"github.com/rustyeddy/marketlab/market"
	"github.com/rustyeddy/marketlab/strategies"
)

// ErrOptimizationExhausted is returned when every grid point fails.
var ErrOptimizationExhausted = errors.New("optimization exhausted")

// Exit reasons, in the order they are checked.
const (
	ExitSignal      = "Exit Signal"
	ExitStopLoss    = "Stop Loss"
	ExitTakeProfit  = "Take Profit"
	ExitTimeLimit   = "Time Limit"
	ExitEndOfPeriod = "End of Period"
)

// Side: only long positions are opened by the built-in strategies.
type Side string

const (
	Long  Side = "long"
	Short Side = "short"
)

type Trade struct {
	Side          Side      `json:"side"`
	EntryTime     time.Time `json:"entry_time"`
	ExitTime      time.Time `json:"exit_time"`
	EntryIndex    int       `json:"entry_index"`
	ExitIndex     int       `json:"exit_index"`
	EntryPrice    float64   `json:"entry_price"`
	ExitPrice     float64   `json:"exit_price"`
	Units         float64   `json:"units"`
	Profit        float64   `json:"profit"`
	ProfitPercent float64   `json:"profit_percent"`
	Duration      int       `json:"duration_bars"`
	Reason        string    `json:"exit_reason"`
}

// Result is one simulation. Equity holds the starting capital followed by
// the equity at the close of every bar. WinRate, MaxDrawdown and
// TotalReturn are percentages.
type Result struct {
	Symbol         string            `json:"symbol,omitempty"`
	Timeframe      market.Timeframe  `json:"timeframe,omitempty"`
	Strategy       string            `json:"strategy"`
	Params         strategies.Params `json:"params,omitempty"`
	Start          time.Time         `json:"start"`
	End            time.Time         `json:"end"`
	Bars           int               `json:"bars"`
	InitialCapital float64           `json:"initial_capital"`
	FinalCapital   float64           `json:"final_capital"`
	Trades         []Trade           `json:"trades"`
	Equity         []float64         `json:"equity_curve"`
	Metrics
}

type Metrics struct {
	TotalTrades   int     `json:"total_trades"`
	WinningTrades int     `json:"winning_trades"`
	LosingTrades  int     `json:"losing_trades"`
	WinRate       float64 `json:"win_rate"`
	GrossProfit   float64 `json:"gross_profit"`
	GrossLoss     float64 `json:"gross_loss"`
	ProfitFactor  float64 `json:"profit_factor"`
	MaxDrawdown   float64 `json:"max_drawdown"`
	TotalReturn   float64 `json:"total_return"`
}

type position struct {
	index int
	price float64
	units float64
}

// Simulate runs s over candles with all capital committed to every trade.
//
// A flat book enters at the close of a bar whose entry predicate holds. An
// open position is checked on each later bar, and the first of these
// closes it: the exit predicate, the stop loss, the take profit, the time
// limit. Stop loss and take profit fill at their threshold price; the other
// exits fill at the close. Anything still open after the last bar is closed
// at its close as End of Period.
func Simulate(candles []market.Candle, s strategies.Strategy, initialCapital float64) (Result, error) {
	if err := market.Validate(candles); err != nil {
		return Result{}, err
	}
	if initialCapital <= 0 {
		return Result{}, fmt.Errorf("%w: initial capital %g", market.ErrInvalidParameter, initialCapital)
	}
	preds, err := s.Prepare(candles)
	if err != nil {
		return Result{}, err
	}

	r := Result{
		Strategy:       s.Name,
		Params:         s.Params,
		Start:          candles[0].Time,
		End:            candles[len(candles)-1].Time,
		Bars:           len(candles),
		InitialCapital: initialCapital,
		Trades:         []Trade{},
		Equity:         make([]float64, 0, len(candles)+1),
	}
	r.Equity = append(r.Equity, initialCapital)

	capital := initialCapital
	var pos *position

	closePos := func(i int, price float64, reason string) {
		t := newTrade(candles, pos, i, price, reason)
		capital += t.Profit
		r.Trades = append(r.Trades, t)
		pos = nil
	}

	for i, c := range candles {
		closed := false
		if pos != nil && i > pos.index {
			if price, reason, ok := checkExit(s, preds, pos, i, c.Close); ok {
				closePos(i, price, reason)
				closed = true
			}
		}

		if pos == nil && !closed && preds.Entry(i) {
			pos = &position{index: i, price: c.Close, units: capital / c.Close}
		}

		if pos != nil {
			r.Equity = append(r.Equity, pos.units*c.Close)
		} else {
			r.Equity = append(r.Equity, capital)
		}
	}

	if pos != nil {
		last := len(candles) - 1
		closePos(last, candles[last].Close, ExitEndOfPeriod)
	}

	r.FinalCapital = capital
	r.Metrics = computeMetrics(r.Trades, r.Equity, initialCapital, capital)
	return r, nil
}

func checkExit(s strategies.Strategy, preds strategies.Predicates, pos *position, i int, price float64) (float64, string, bool) {
	change := (price/pos.price - 1) * 100
	switch {
	case preds.Exit(i):
		return price, ExitSignal, true
	case s.StopLossPct > 0 && change <= -s.StopLossPct:
		return pos.price * (1 - s.StopLossPct/100), ExitStopLoss, true
	case s.TakeProfitPct > 0 && change >= s.TakeProfitPct:
		return pos.price * (1 + s.TakeProfitPct/100), ExitTakeProfit, true
	case s.TimeLimitBars > 0 && i-pos.index >= s.TimeLimitBars:
		return price, ExitTimeLimit, true
	}
	return 0, "", false
}

func newTrade(candles []market.Candle, pos *position, i int, price float64, reason string) Trade {
	profit := (price - pos.price) * pos.units
	return Trade{
		Side:          Long,
		EntryTime:     candles[pos.index].Time,
		ExitTime:      candles[i].Time,
		EntryIndex:    pos.index,
		ExitIndex:     i,
		EntryPrice:    pos.price,
		ExitPrice:     price,
		Units:         pos.units,
		Profit:        profit,
		ProfitPercent: (price/pos.price - 1) * 100,
		Duration:      i - pos.index,
		Reason:        reason,
	}
}
