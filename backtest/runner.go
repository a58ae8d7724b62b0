package backtest

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/rustyeddy/marketlab/market"
	"github.com/rustyeddy/marketlab/pkg/metrics"
	"github.com/rustyeddy/marketlab/provider"
	"github.com/rustyeddy/marketlab/strategies"
)

// RunnerOptions are the defaults OptimizeStrategy uses, since its callers
// do not pass a bar interval or capital.
type RunnerOptions struct {
	Timeframe       market.Timeframe
	InitialCapital  float64
	MaxCombinations int
	Workers         int
}

// Runner loads series from a provider and feeds them to Simulate and
// Optimize.
type Runner struct {
	Data    provider.MarketData
	Options RunnerOptions
	Log     zerolog.Logger
	Metrics *metrics.Recorder
}

func NewRunner(data provider.MarketData, opts RunnerOptions, log zerolog.Logger, rec *metrics.Recorder) *Runner {
	if opts.Timeframe == "" {
		opts.Timeframe = market.D1
	}
	if opts.InitialCapital <= 0 {
		opts.InitialCapital = 10000
	}
	return &Runner{Data: data, Options: opts, Log: log, Metrics: rec}
}

// RunBacktest simulates s on symbol's barInterval bars within [start, end].
// A zero start or end leaves that side open.
func (r *Runner) RunBacktest(ctx context.Context, symbol string, s strategies.Strategy, start, end time.Time, initialCapital float64, barInterval string) (Result, error) {
	tf, err := market.ParseTimeframe(barInterval)
	if err != nil {
		return Result{}, err
	}
	candles, err := r.load(ctx, symbol, tf, start, end)
	if err != nil {
		return Result{}, err
	}

	t0 := time.Now()
	res, err := Simulate(candles, s, initialCapital)
	if err != nil {
		return Result{}, fmt.Errorf("backtest %s %s: %w", symbol, s.Name, err)
	}
	res.Symbol, res.Timeframe = symbol, tf

	r.Metrics.RecordBacktest(s.Name)
	r.Metrics.ObserveSince("backtest", t0)
	r.Log.Info().
		Str("symbol", symbol).
		Str("strategy", s.Name).
		Int("trades", res.TotalTrades).
		Float64("return_pct", res.TotalReturn).
		Msg("backtest complete")
	return res, nil
}

// OptimizeStrategy grid-searches ranges on symbol's bars within
// [start, end] at the runner's timeframe and capital.
func (r *Runner) OptimizeStrategy(ctx context.Context, symbol string, s strategies.Strategy, start, end time.Time, ranges map[string]Range) (OptimizationResult, error) {
	tf := r.Options.Timeframe
	candles, err := r.load(ctx, symbol, tf, start, end)
	if err != nil {
		return OptimizationResult{}, err
	}

	t0 := time.Now()
	out, err := Optimize(ctx, candles, s, ranges, Options{
		InitialCapital:  r.Options.InitialCapital,
		MaxCombinations: r.Options.MaxCombinations,
		Workers:         r.Options.Workers,
		Metrics:         r.Metrics,
	})
	if err != nil {
		return out, fmt.Errorf("optimize %s %s: %w", symbol, s.Name, err)
	}
	out.Result.Symbol, out.Result.Timeframe = symbol, tf

	r.Metrics.ObserveSince("optimize", t0)
	r.Log.Info().
		Str("symbol", symbol).
		Str("strategy", s.Name).
		Int("combinations", out.Evaluated).
		Int("failed", out.Failed).
		Str("best", out.BestParams.String()).
		Float64("return_pct", out.Performance).
		Msg("optimization complete")
	return out, nil
}

func (r *Runner) load(ctx context.Context, symbol string, tf market.Timeframe, start, end time.Time) ([]market.Candle, error) {
	if symbol == "" {
		return nil, fmt.Errorf("%w: empty symbol", market.ErrInvalidParameter)
	}
	if !start.IsZero() && !end.IsZero() && end.Before(start) {
		return nil, fmt.Errorf("%w: end %s before start %s", market.ErrInvalidParameter,
			end.Format(time.RFC3339), start.Format(time.RFC3339))
	}

	candles, err := r.Data.Series(ctx, symbol, tf)
	if err != nil {
		if errors.Is(err, market.ErrDataUnavailable) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %s %s: %v", market.ErrDataUnavailable, symbol, tf, err)
	}
	candles = market.Between(candles, start, end)
	if len(candles) == 0 {
		return nil, fmt.Errorf("%w: no %s bars for %s in range", market.ErrDataUnavailable, tf, symbol)
	}
	return candles, nil
}
