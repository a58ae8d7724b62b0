// Package journal stores backtest runs, their trades and equity curves in
// CSV files or SQLite, and renders them as org-mode notes.
package journal

import (
	"context"
	"fmt"
	"time"

	"github.com/rustyeddy/marketlab/backtest"
	"github.com/rustyeddy/marketlab/market"
	"github.com/rustyeddy/marketlab/pkg/id"
	"github.com/rustyeddy/marketlab/strategies"
)

// Run is the summary row of one backtest.
type Run struct {
	RunID     string
	Created   time.Time
	Symbol    string
	Timeframe market.Timeframe
	Strategy  string
	Params    strategies.Params

	Start time.Time
	End   time.Time
	Bars  int

	Trades int
	Wins   int
	Losses int

	StartBalance float64
	EndBalance   float64
	NetPL        float64
	ReturnPct    float64
	WinRate      float64
	ProfitFactor float64
	MaxDDPct     float64

	Notes []string
}

type TradeRecord struct {
	RunID      string
	TradeID    string
	Symbol     string
	Side       string
	Units      float64
	EntryPrice float64
	ExitPrice  float64
	OpenTime   time.Time
	CloseTime  time.Time
	RealizedPL float64
	ProfitPct  float64
	Reason     string
}

// EquityPoint is one entry of a run's equity curve. Index 0 is the
// starting capital and index i the equity after bar i-1.
type EquityPoint struct {
	RunID  string
	Index  int
	Equity float64
}

// Entry is everything recorded for one run.
type Entry struct {
	Run    Run
	Trades []TradeRecord
	Equity []EquityPoint
}

type Journal interface {
	RecordRun(ctx context.Context, e Entry) error
	Close() error
}

// FromResult converts a backtest result into a journal entry under a new
// run ID.
func FromResult(r backtest.Result) Entry {
	created := time.Now().UTC()
	runID := id.At(created)

	e := Entry{
		Run: Run{
			RunID:        runID,
			Created:      created,
			Symbol:       r.Symbol,
			Timeframe:    r.Timeframe,
			Strategy:     r.Strategy,
			Params:       r.Params,
			Start:        r.Start,
			End:          r.End,
			Bars:         r.Bars,
			Trades:       r.TotalTrades,
			Wins:         r.WinningTrades,
			Losses:       r.LosingTrades,
			StartBalance: r.InitialCapital,
			EndBalance:   r.FinalCapital,
			NetPL:        r.FinalCapital - r.InitialCapital,
			ReturnPct:    r.TotalReturn,
			WinRate:      r.WinRate,
			ProfitFactor: r.ProfitFactor,
			MaxDDPct:     r.MaxDrawdown,
		},
		Trades: make([]TradeRecord, 0, len(r.Trades)),
		Equity: make([]EquityPoint, 0, len(r.Equity)),
	}

	for i, t := range r.Trades {
		e.Trades = append(e.Trades, TradeRecord{
			RunID:      runID,
			TradeID:    tradeID(runID, i),
			Symbol:     r.Symbol,
			Side:       string(t.Side),
			Units:      t.Units,
			EntryPrice: t.EntryPrice,
			ExitPrice:  t.ExitPrice,
			OpenTime:   t.EntryTime,
			CloseTime:  t.ExitTime,
			RealizedPL: t.Profit,
			ProfitPct:  t.ProfitPercent,
			Reason:     t.Reason,
		})
	}
	for i, v := range r.Equity {
		e.Equity = append(e.Equity, EquityPoint{RunID: runID, Index: i, Equity: v})
	}
	return e
}

func tradeID(runID string, i int) string {
	return fmt.Sprintf("%s-%04d", runID, i+1)
}
