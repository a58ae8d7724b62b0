package correlation

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/rustyeddy/marketlab/market"
	"github.com/rustyeddy/marketlab/pkg/metrics"
	"github.com/rustyeddy/marketlab/provider"
)

// Analyzer builds correlation matrices from provider data.
type Analyzer struct {
	data        provider.MarketData
	log         zerolog.Logger
	metrics     *metrics.Recorder
	concurrency int
}

// NewAnalyzer returns an analyzer fetching up to concurrency symbols at
// once (8 when concurrency <= 0). rec may be nil.
func NewAnalyzer(data provider.MarketData, concurrency int, log zerolog.Logger, rec *metrics.Recorder) *Analyzer {
	if concurrency <= 0 {
		concurrency = 8
	}
	return &Analyzer{data: data, log: log, metrics: rec, concurrency: concurrency}
}

// CalculateCorrelationMatrix correlates daily returns over the last
// lookbackDays. Intraday series are resampled to daily bars; weekly series
// are used as they are. Series are aligned on common bar times and the
// aligned closes are kept in Matrix.Prices for DivergentPairs. Symbols that
// fail to load are logged and left out of the matrix.
func (a *Analyzer) CalculateCorrelationMatrix(ctx context.Context, symbols []string, timeframe string, lookbackDays int) (Matrix, error) {
	symbols = dedupe(symbols)
	if len(symbols) == 0 {
		return Matrix{}, fmt.Errorf("%w: no symbols", market.ErrInvalidParameter)
	}
	if lookbackDays <= 0 {
		return Matrix{}, fmt.Errorf("%w: lookback %d days", market.ErrInvalidParameter, lookbackDays)
	}
	tf, err := market.ParseTimeframe(timeframe)
	if err != nil {
		return Matrix{}, err
	}

	start := time.Now()
	defer a.metrics.ObserveSince("correlation_matrix", start)

	series, err := a.fetch(ctx, symbols, tf, lookbackDays)
	if err != nil {
		return Matrix{}, err
	}

	var ok []string
	for _, s := range symbols {
		if _, found := series[s]; found {
			ok = append(ok, s)
		}
	}
	if len(ok) == 0 {
		return Matrix{}, fmt.Errorf("%w: no series for %v", market.ErrDataUnavailable, symbols)
	}

	m := NewMatrix(ok, Align(series))
	m.Lookback = lookbackDays
	a.log.Debug().Strs("symbols", ok).Int("lookback_days", lookbackDays).Msg("correlation matrix computed")
	return m, nil
}

func (a *Analyzer) fetch(ctx context.Context, symbols []string, tf market.Timeframe, lookbackDays int) (map[string][]market.Candle, error) {
	results := make([][]market.Candle, len(symbols))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(a.concurrency)
	for i, sym := range symbols {
		i, sym := i, sym
		g.Go(func() error {
			c, err := a.daily(gctx, sym, tf, lookbackDays)
			if err != nil {
				a.metrics.RecordFailure("correlation")
				a.log.Warn().Str("symbol", sym).Err(err).Msg("skipping symbol")
				return nil
			}
			results[i] = c
			return nil
		})
	}
	_ = g.Wait()
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	out := make(map[string][]market.Candle, len(symbols))
	for i, c := range results {
		if len(c) > 0 {
			out[symbols[i]] = c
		}
	}
	return out, nil
}

func (a *Analyzer) daily(ctx context.Context, symbol string, tf market.Timeframe, lookbackDays int) ([]market.Candle, error) {
	candles, err := a.data.Series(ctx, symbol, tf)
	if err != nil {
		return nil, err
	}
	if err := market.Validate(candles); err != nil {
		return nil, err
	}
	if tf.Seconds() < market.D1.Seconds() {
		if candles, err = market.Resample(candles, market.D1); err != nil {
			return nil, err
		}
	}
	// the inclusive start keeps lookbackDays+1 closes for lookbackDays returns
	end := candles[len(candles)-1].Time
	from := end.Add(-time.Duration(lookbackDays) * 24 * time.Hour)
	return market.Between(candles, from, time.Time{}), nil
}

// Align keeps the closes at bar times every series shares. A repeated bar
// time counts once per series and its last close wins.
func Align(series map[string][]market.Candle) map[string][]float64 {
	count := make(map[time.Time]int)
	for _, candles := range series {
		seen := make(map[time.Time]bool, len(candles))
		for _, c := range candles {
			if !seen[c.Time] {
				seen[c.Time] = true
				count[c.Time]++
			}
		}
	}
	var common []time.Time
	for t, n := range count {
		if n == len(series) {
			common = append(common, t)
		}
	}
	sort.Slice(common, func(i, j int) bool { return common[i].Before(common[j]) })

	out := make(map[string][]float64, len(series))
	for sym, candles := range series {
		byTime := make(map[time.Time]float64, len(candles))
		for _, c := range candles {
			byTime[c.Time] = c.Close
		}
		closes := make([]float64, len(common))
		for i, t := range common {
			closes[i] = byTime[t]
		}
		out[sym] = closes
	}
	return out
}

func dedupe(symbols []string) []string {
	seen := make(map[string]bool, len(symbols))
	out := make([]string, 0, len(symbols))
	for _, s := range symbols {
		if s == "" || seen[s] {
			continue
		}
		seen[s] = true
		out = append(out, s)
	}
	return out
}
