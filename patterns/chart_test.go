package patterns

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rustyeddy/marketlab/market"
)

func fibSeries(lastClose float64) []market.Candle {
	cs := []market.Candle{
		ohlc(198, 200, 196, 198),
		ohlc(102, 104, 100, 102),
	}
	for i := 2; i < 48; i++ {
		cs = append(cs, ohlc(150, 151, 149, 150))
	}
	cs = append(cs, ohlc(137, 137.5, 136.5, 137))
	cs = append(cs, ohlc(137.5, lastClose+0.5, 137, lastClose))
	return stamp(cs)
}

func TestFibonacci(t *testing.T) {
	m, ok := Fibonacci(fibSeries(138), 50, 0.01)
	require.True(t, ok)
	assert.Equal(t, "Fibonacci 61.8%", m.Name)
	assert.Equal(t, KindChart, m.Kind)
	assert.Equal(t, market.Bullish, m.Direction)
	assert.Equal(t, 0.8, m.Strength)

	_, ok = Fibonacci(fibSeries(150), 50, 0.01)
	assert.False(t, ok)

	_, ok = Fibonacci(fibSeries(138)[:20], 50, 0.01)
	assert.False(t, ok, "too short")
}

func closesToCandles(closes []float64) []market.Candle {
	cs := make([]market.Candle, len(closes))
	for i, c := range closes {
		cs[i] = ohlc(c, c+0.5, c-0.5, c)
	}
	return stamp(cs)
}

func TestDivergenceBullish(t *testing.T) {
	var closes []float64
	for i := 0; i < 20; i++ {
		closes = append(closes, 100+0.5*float64(i%2))
	}
	// sharp first low, shallow lower second low
	closes = append(closes, 100, 96, 92, 88, 84, 86, 89, 92, 95, 97, 98, 96, 94, 92, 90, 88, 86, 83, 85, 87)

	got := Divergence(closesToCandles(closes), 20, 14)
	require.Len(t, got, 1)
	assert.Equal(t, "Bullish RSI Divergence", got[0].Name)
	assert.Equal(t, market.Bullish, got[0].Direction)
	assert.Equal(t, 0.75, got[0].Strength)

	assert.Empty(t, Divergence(closesToCandles(closes[:30]), 20, 14))
}

func tripleTapSeries(touchLows ...float64) []market.Candle {
	cs := make([]market.Candle, 30)
	for i := range cs {
		// rising highs keep the top side from counting as a tap
		cs[i] = ohlc(110, 112+0.5*float64(i), 105, 111)
	}
	for i, lo := range touchLows {
		cs[5+i*10].Low = lo
	}
	return stamp(cs)
}

func TestTripleTap(t *testing.T) {
	m, ok := TripleTap(tripleTapSeries(100, 100.3, 100.1), 30, 0.005)
	require.True(t, ok)
	assert.Equal(t, "Triple Tap Bottom", m.Name)
	assert.Equal(t, market.Bullish, m.Direction)
	assert.Equal(t, 0.8, m.Strength)

	_, ok = TripleTap(tripleTapSeries(100, 100.3), 30, 0.005)
	assert.False(t, ok)

	// adjacent touches count once
	cs := tripleTapSeries(100, 100.3)
	cs[6].Low = 100.1
	_, ok = TripleTap(cs, 30, 0.005)
	assert.False(t, ok)

	// no reversal candle
	cs = tripleTapSeries(100, 100.3, 100.1)
	cs[29] = ohlc(111, 112, 105, 110)
	_, ok = TripleTap(cs, 30, 0.005)
	assert.False(t, ok)
}

func TestHarmonicStubs(t *testing.T) {
	cs := fibSeries(138)
	assert.Equal(t, HarmonicResult{Pattern: "Bat", Found: false, Implemented: false}, Bat(cs))
	assert.Equal(t, HarmonicResult{Pattern: "Gartley", Found: false, Implemented: false}, Gartley(cs))
}

func TestDetectOrder(t *testing.T) {
	cs := fibSeries(138)
	// turn the last bar into a hammer after the 137 bar
	cs[49] = ohlc(137.5, 138.2, 134, 138)
	got := Detect(cs, DefaultConfig())
	require.NotEmpty(t, got)
	assert.Equal(t, KindCandlestick, got[0].Kind)
	assert.Equal(t, KindChart, got[len(got)-1].Kind)
	assert.True(t, Aligned(got, KindChart, market.Bullish))
	assert.False(t, Aligned(got, KindChart, market.Bearish))
}
