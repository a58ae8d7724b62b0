package indicators

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/rustyeddy/marketlab/market"
)

func TestBollinger(t *testing.T) {
	closes := []float64{2, 4, 4, 4, 5, 5, 7, 9}
	// mean 5, population stdev 2
	b := Bollinger(closes, 8, 2)
	assert.InDelta(t, 5.0, b.Middle, 1e-9)
	assert.InDelta(t, 9.0, b.Upper, 1e-9)
	assert.InDelta(t, 1.0, b.Lower, 1e-9)
	assert.InDelta(t, 1.6, b.Width(), 1e-9)
}

func TestBollingerFlat(t *testing.T) {
	b := Bollinger(market.Closes(flat(30, 42)), 20, 2)
	assert.InDelta(t, 42.0, b.Upper, 1e-9)
	assert.InDelta(t, 42.0, b.Lower, 1e-9)
}

func TestEMA(t *testing.T) {
	// period 3, alpha 0.5, seeded with SMA of the first 3 values (11)
	// then 0.5*13 + 0.5*11 = 12
	values := []float64{10, 11, 12, 13}
	assert.InDelta(t, 12.0, EMA(values, 3), 1e-9)

	s := EMASeries(values, 3)
	assert.Len(t, s, 4)
	assert.InDelta(t, 11.0, s[2], 1e-9)
}

func TestEMASetAlignment(t *testing.T) {
	e := EMASet{Fast: 10, Mid: 9, Slow: 8}
	bull, bear := e.Alignment(11)
	assert.True(t, bull)
	assert.False(t, bear)

	e = EMASet{Fast: 8, Mid: 9, Slow: 10}
	bull, bear = e.Alignment(7)
	assert.False(t, bull)
	assert.True(t, bear)

	bull, bear = e.Alignment(9)
	assert.False(t, bull)
	assert.False(t, bear)
}

func TestATRMeanRange(t *testing.T) {
	cs := createTestCandles()
	// ranges of last 3 bars: 4, 5, 5
	assert.InDelta(t, 14.0/3, ATR(cs, 3), 1e-9)
}

func TestADX(t *testing.T) {
	cs := createTestCandles()
	di := ADX(cs, 5)
	// monotonic uptrend: no down movement
	assert.Equal(t, 0.0, di.MinusDI)
	assert.Greater(t, di.PlusDI, 0.0)
	assert.InDelta(t, 100.0, di.ADX, 1e-9)

	assert.Equal(t, DirectionalIndex{}, ADX(flat(30, 10), 14))
}

func TestStochastic(t *testing.T) {
	cs := createTestCandles()
	s := Stochastic(cs, 3, 1, 1)
	// last window highs 116,118,120 lows 112,113,115 close 118 => (118-112)/8
	assert.InDelta(t, 75.0, s.K, 1e-9)
	assert.InDelta(t, 75.0, s.D, 1e-9)

	sf := Stochastic(flat(30, 10), 14, 3, 3)
	assert.InDelta(t, 50.0, sf.K, 1e-9)
	assert.InDelta(t, 50.0, sf.D, 1e-9)

	sw := Stochastic(wave(60), 14, 3, 3)
	assert.False(t, math.IsNaN(sw.K))
	assert.GreaterOrEqual(t, sw.K, 0.0)
	assert.LessOrEqual(t, sw.K, 100.0)
}
