package provider

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rustyeddy/marketlab/market"
)

func TestStatic(t *testing.T) {
	ctx := context.Background()
	s := NewStatic().
		AddSeries("AAA", market.H1, hourly(30, 10, 0, 1)).
		AddSeries("BBB", market.H1, hourly(30, 100, 0, 1)).
		SetSentiment("AAA", market.Sentiment{Overall: market.SentimentBullish, Confidence: 0.8})

	got, err := s.Series(ctx, "AAA", market.H1)
	require.NoError(t, err)
	assert.Len(t, got, 30)

	_, err = s.Series(ctx, "AAA", market.D1)
	assert.True(t, errors.Is(err, market.ErrDataUnavailable))

	snap, err := s.Snapshot(ctx, "BBB")
	require.NoError(t, err)
	assert.Equal(t, 100.0, snap.Price)

	syms, err := s.ActiveSymbols(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"BBB", "AAA"}, syms)

	sent, err := s.Sentiment(ctx, "AAA")
	require.NoError(t, err)
	assert.Equal(t, 0.8, sent.Confidence)

	_, err = s.Sentiment(ctx, "BBB")
	assert.True(t, errors.Is(err, market.ErrDataUnavailable))

	s.SetSnapshot(market.Snapshot{Symbol: "AAA", Price: 1, QuoteVolume: 1e9})
	syms, _ = s.ActiveSymbols(ctx)
	assert.Equal(t, []string{"AAA", "BBB"}, syms)
}
