package provider

import (
	"context"
	"fmt"
	"sync"

	"github.com/rustyeddy/marketlab/market"
)

// Static is an in-memory provider. It implements MarketData and
// SentimentSource and is safe for concurrent use.
type Static struct {
	mu         sync.RWMutex
	series     map[string]map[market.Timeframe][]market.Candle
	snapshots  map[string]market.Snapshot
	sentiments map[string]market.Sentiment
}

func NewStatic() *Static {
	return &Static{
		series:     make(map[string]map[market.Timeframe][]market.Candle),
		snapshots:  make(map[string]market.Snapshot),
		sentiments: make(map[string]market.Sentiment),
	}
}

// AddSeries stores bars for a symbol and, unless one was set explicitly,
// derives its snapshot from them.
func (s *Static) AddSeries(symbol string, tf market.Timeframe, candles []market.Candle) *Static {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.series[symbol] == nil {
		s.series[symbol] = make(map[market.Timeframe][]market.Candle)
	}
	s.series[symbol][tf] = candles
	if _, ok := s.snapshots[symbol]; !ok {
		s.snapshots[symbol] = SnapshotFromCandles(symbol, candles)
	}
	return s
}

func (s *Static) SetSnapshot(snap market.Snapshot) *Static {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.snapshots[snap.Symbol] = snap
	return s
}

func (s *Static) SetSentiment(symbol string, sent market.Sentiment) *Static {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sentiments[symbol] = sent
	return s
}

func (s *Static) Series(_ context.Context, symbol string, tf market.Timeframe) ([]market.Candle, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.series[symbol][tf]
	if !ok {
		return nil, fmt.Errorf("%w: no %s series for %s", market.ErrDataUnavailable, tf, symbol)
	}
	return c, nil
}

func (s *Static) Snapshot(_ context.Context, symbol string) (market.Snapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	snap, ok := s.snapshots[symbol]
	if !ok {
		return market.Snapshot{}, fmt.Errorf("%w: no snapshot for %s", market.ErrDataUnavailable, symbol)
	}
	return snap, nil
}

func (s *Static) ActiveSymbols(context.Context) ([]string, error) {
	s.mu.RLock()
	snaps := make([]market.Snapshot, 0, len(s.snapshots))
	for _, snap := range s.snapshots {
		snaps = append(snaps, snap)
	}
	s.mu.RUnlock()
	return rankByQuoteVolume(snaps), nil
}

func (s *Static) Sentiment(_ context.Context, symbol string) (market.Sentiment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sent, ok := s.sentiments[symbol]
	if !ok {
		return market.Sentiment{}, fmt.Errorf("%w: no sentiment for %s", market.ErrDataUnavailable, symbol)
	}
	return sent, nil
}
