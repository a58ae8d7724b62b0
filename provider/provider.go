// Package provider supplies historical bars, market snapshots and
// sentiment to the analysis engines.
//
// Implementations wrap market.ErrDataUnavailable when data cannot be
// produced and return a nil error with an empty slice when the data exists
// but is empty.
package provider

import (
	"context"

	"github.com/rustyeddy/marketlab/market"
)

// MarketData is the historical data collaborator.
type MarketData interface {
	// Series returns bars ordered oldest to newest.
	Series(ctx context.Context, symbol string, tf market.Timeframe) ([]market.Candle, error)
	Snapshot(ctx context.Context, symbol string) (market.Snapshot, error)
	// ActiveSymbols returns symbols ordered by quote volume, highest first.
	ActiveSymbols(ctx context.Context) ([]string, error)
}

// SentimentSource supplies news and social sentiment for a symbol.
type SentimentSource interface {
	Sentiment(ctx context.Context, symbol string) (market.Sentiment, error)
}
