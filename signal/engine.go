package signal

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/rustyeddy/marketlab/indicators"
	"github.com/rustyeddy/marketlab/market"
	"github.com/rustyeddy/marketlab/patterns"
	"github.com/rustyeddy/marketlab/pkg/metrics"
	"github.com/rustyeddy/marketlab/provider"
	"github.com/rustyeddy/marketlab/structure"
)

// Engine runs the analyzers over provider data and fuses the result.
type Engine struct {
	data      provider.MarketData
	sentiment provider.SentimentSource
	cfg       Config
	log       zerolog.Logger
	metrics   *metrics.Recorder
}

// NewEngine builds an engine. sentiment and rec may be nil.
func NewEngine(data provider.MarketData, sentiment provider.SentimentSource, cfg Config, log zerolog.Logger, rec *metrics.Recorder) *Engine {
	if cfg.TopN <= 0 {
		cfg.TopN = 5
	}
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = 8
	}
	return &Engine{data: data, sentiment: sentiment, cfg: cfg, log: log, metrics: rec}
}

// GenerateSignal fetches the series, snapshot and sentiment for symbol
// concurrently and fuses them. Series or snapshot failures are
// ErrDataUnavailable; missing sentiment only skips its rule.
func (e *Engine) GenerateSignal(ctx context.Context, symbol, timeframe string) (TradingSignal, error) {
	tf, err := market.ParseTimeframe(timeframe)
	if err != nil {
		return TradingSignal{}, err
	}
	if symbol == "" {
		return TradingSignal{}, fmt.Errorf("%w: empty symbol", market.ErrInvalidParameter)
	}
	return e.generate(ctx, symbol, tf)
}

func (e *Engine) generate(ctx context.Context, symbol string, tf market.Timeframe) (TradingSignal, error) {
	start := time.Now()
	defer e.metrics.ObserveSince("generate_signal", start)

	var (
		candles []market.Candle
		snap    market.Snapshot
		sent    *market.Sentiment
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		c, err := e.data.Series(gctx, symbol, tf)
		if err != nil {
			return unavailable("series", symbol, err)
		}
		if err := market.Validate(c); err != nil {
			return fmt.Errorf("series %s: %w", symbol, err)
		}
		candles = c
		return nil
	})
	g.Go(func() error {
		s, err := e.data.Snapshot(gctx, symbol)
		if err != nil {
			return unavailable("snapshot", symbol, err)
		}
		snap = s
		return nil
	})
	if e.sentiment != nil {
		g.Go(func() error {
			s, err := e.sentiment.Sentiment(gctx, symbol)
			if err != nil {
				e.log.Debug().Str("symbol", symbol).Err(err).Msg("sentiment unavailable")
				return nil
			}
			sent = &s
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		e.metrics.RecordFailure("signal")
		return TradingSignal{}, err
	}

	tech := indicators.Analyze(candles, e.cfg.Indicators)
	st := structure.Analyze(candles, e.cfg.Structure)
	if snap.Price == 0 {
		snap.Price = tech.Price
	}

	sig := Fuse(Input{
		Symbol:    symbol,
		Market:    snap,
		Time:      candles[len(candles)-1].Time,
		Technical: &tech,
		Patterns:  patterns.Detect(candles, e.cfg.Patterns),
		Structure: &st,
		Sentiment: sent,
	}, e.cfg)

	e.metrics.RecordSignal(sig.Direction.String())
	e.log.Debug().
		Str("symbol", symbol).
		Str("timeframe", tf.String()).
		Str("direction", sig.Direction.String()).
		Float64("confidence", sig.Confidence).
		Msg("signal generated")
	return sig, nil
}

// unavailable makes sure provider failures carry ErrDataUnavailable.
func unavailable(what, symbol string, err error) error {
	if errors.Is(err, market.ErrDataUnavailable) || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%s %s: %w", what, symbol, err)
	}
	return fmt.Errorf("%w: %s %s: %v", market.ErrDataUnavailable, what, symbol, err)
}

// GenerateSignals runs GenerateSignal for every active symbol with bounded
// concurrency. Symbols that fail are logged and left out. Neutral signals
// are dropped; each side is sorted by Score and capped to TopN.
func (e *Engine) GenerateSignals(ctx context.Context, timeframe string) (Signals, error) {
	tf, err := market.ParseTimeframe(timeframe)
	if err != nil {
		return Signals{}, err
	}

	symbols, err := e.data.ActiveSymbols(ctx)
	if err != nil {
		return Signals{}, unavailable("active symbols", "", err)
	}

	results := make([]*TradingSignal, len(symbols))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.cfg.Concurrency)
	for i, sym := range symbols {
		i, sym := i, sym
		g.Go(func() error {
			sig, err := e.generate(gctx, sym, tf)
			if err != nil {
				e.log.Warn().Str("symbol", sym).Err(err).Msg("skipping symbol")
				return nil
			}
			results[i] = &sig
			return nil
		})
	}
	_ = g.Wait()
	if err := ctx.Err(); err != nil {
		return Signals{}, err
	}

	var out Signals
	for _, r := range results {
		if r == nil {
			continue
		}
		switch r.Direction {
		case Buy:
			out.Buy = append(out.Buy, *r)
		case Sell:
			out.Sell = append(out.Sell, *r)
		}
	}
	out.Buy = rank(out.Buy, e.cfg.TopN)
	out.Sell = rank(out.Sell, e.cfg.TopN)

	e.log.Info().
		Str("timeframe", tf.String()).
		Int("symbols", len(symbols)).
		Int("buy", len(out.Buy)).
		Int("sell", len(out.Sell)).
		Msg("batch signals generated")
	return out, nil
}

func rank(sigs []TradingSignal, n int) []TradingSignal {
	sort.SliceStable(sigs, func(i, j int) bool {
		return sigs[i].Score() > sigs[j].Score()
	})
	if len(sigs) > n {
		sigs = sigs[:n]
	}
	return sigs
}
