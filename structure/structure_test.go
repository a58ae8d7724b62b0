package structure

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rustyeddy/marketlab/market"
)

var t0 = time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

// fromCloses builds unit-range candles around each close.
func fromCloses(closes ...float64) []market.Candle {
	cs := make([]market.Candle, len(closes))
	for i, c := range closes {
		cs[i] = market.Candle{
			Time:  t0.Add(time.Duration(i) * time.Hour),
			Open:  c,
			High:  c + 0.5,
			Low:   c - 0.5,
			Close: c,
		}
	}
	return cs
}

// higher low then higher high after a decline
var reversalUp = []float64{20, 18, 16, 14, 12, 14, 16, 18, 16, 14, 13, 15, 17, 19, 21, 19, 17, 16, 17, 18, 19, 20}

func TestFindSwings(t *testing.T) {
	cs := fromCloses(10, 11, 12, 15, 12, 11, 10, 11, 12, 13, 16, 17)
	got := FindSwings(cs, 2)
	require.Len(t, got, 2)
	assert.Equal(t, Swing{Kind: SwingHigh, Index: 3, Time: cs[3].Time, Price: 15.5}, got[0])
	assert.Equal(t, Swing{Kind: SwingLow, Index: 6, Time: cs[6].Time, Price: 9.5}, got[1])

	assert.Empty(t, FindSwings(cs[:4], 2))
	assert.Empty(t, FindSwings(cs, 0))
}

func TestFindSwingsStrict(t *testing.T) {
	// equal highs never dominate each other
	cs := fromCloses(10, 12, 15, 15, 12, 10)
	for _, s := range FindSwings(cs, 1) {
		assert.NotEqual(t, SwingHigh, s.Kind)
	}
}

func TestClassifyBOS(t *testing.T) {
	cs := fromCloses(10, 11, 12, 15, 12, 11, 10, 11, 12, 13, 16, 17)
	r := Classify(cs, FindSwings(cs, 2), 2)

	require.Len(t, r.Events, 1)
	assert.Equal(t, Event{Kind: BOS, Direction: market.Bullish, Index: 10, Time: cs[10].Time, Level: 15.5}, r.Events[0])
	assert.True(t, r.BullishBOS)
	assert.False(t, r.BearishBOS)
	assert.False(t, r.BullishCHoCH)
	assert.Equal(t, market.Bullish, r.Trend)
}

func TestClassifyCHoCH(t *testing.T) {
	cs := fromCloses(reversalUp...)
	r := Classify(cs, FindSwings(cs, 2), 2)

	require.Len(t, r.Events, 2)
	assert.Equal(t, BOS, r.Events[0].Kind)
	assert.Equal(t, 13, r.Events[0].Index)
	assert.Equal(t, CHoCH, r.Events[1].Kind)
	assert.Equal(t, market.Bullish, r.Events[1].Direction)
	assert.Equal(t, 16, r.Events[1].Index)

	assert.True(t, r.BullishBOS)
	assert.True(t, r.BullishCHoCH)
	assert.False(t, r.BearishCHoCH)
	assert.Equal(t, market.Bullish, r.Trend)
}

func TestClassifyBearish(t *testing.T) {
	cs := fromCloses(10, 12, 14, 16, 18, 16, 14, 12, 14, 16, 17, 15, 13, 11, 9, 11, 13, 12, 10, 8, 7, 6)
	r := Classify(cs, FindSwings(cs, 2), 2)

	require.Len(t, r.Events, 3)
	assert.Equal(t, CHoCH, r.Events[1].Kind)
	assert.Equal(t, market.Bearish, r.Events[1].Direction)
	assert.Equal(t, market.Bearish, r.Trend)
	assert.True(t, r.BearishBOS)
	assert.True(t, r.BearishCHoCH)
	assert.False(t, r.BullishBOS)
}

func TestClassifyEmpty(t *testing.T) {
	r := Classify(nil, nil, 5)
	assert.Equal(t, market.Neutral, r.Trend)
	assert.Empty(t, r.Events)
	_, ok := r.Last()
	assert.False(t, ok)
}

func TestOrderBlocks(t *testing.T) {
	cs := fromCloses(reversalUp...)
	got := OrderBlocks(cs, FindSwings(cs, 2), 0)
	require.Len(t, got, 4)

	types := []market.Bias{market.Bearish, market.Bullish, market.Bearish, market.Bullish}
	idx := []int{7, 10, 14, 17}
	for i, ob := range got {
		assert.Equal(t, types[i], ob.Type)
		assert.Equal(t, idx[i], ob.Index)
		assert.Equal(t, cs[idx[i]].High, ob.Top)
		assert.Equal(t, cs[idx[i]].Low, ob.Bottom)
	}
}

func TestOrderBlocksATRFilter(t *testing.T) {
	cs := fromCloses(10, 12, 14, 16, 18)
	cs[4].High = 30 // wide candle is skipped
	swings := []Swing{
		{Kind: SwingLow, Index: 0, Price: 9.5},
		{Kind: SwingHigh, Index: 4, Price: 30},
	}
	got := OrderBlocks(cs, swings, 1)
	require.Len(t, got, 1)
	assert.Equal(t, 3, got[0].Index)
	assert.Equal(t, market.Bearish, got[0].Type)
}

func TestOrderBlockDistance(t *testing.T) {
	ob := OrderBlock{Top: 101, Bottom: 100}
	assert.Equal(t, 0.0, ob.Distance(100.5))
	assert.InDelta(t, 1.0/102, ob.Distance(102), 1e-12)
	assert.InDelta(t, 1.0/99, ob.Distance(99), 1e-12)
}

func kline(o, h, l, c float64) market.Candle {
	return market.Candle{Open: o, High: h, Low: l, Close: c}
}

func TestFairValueGaps(t *testing.T) {
	bull := []market.Candle{
		kline(95, 100, 94, 98),
		kline(98, 105, 97, 104), // gap creator
		kline(104, 108, 101, 106),
	}
	got := FairValueGaps(bull, 0.10)
	require.Len(t, got, 1)
	assert.Equal(t, market.Bullish, got[0].Type)
	assert.Equal(t, 101.0, got[0].Top)
	assert.Equal(t, 100.0, got[0].Bottom)
	assert.Equal(t, 1, got[0].Index)
	assert.False(t, got[0].Filled)

	// gap 1 over a range of 8 is below 20%
	assert.Empty(t, FairValueGaps(bull, 0.20))

	filled := append(bull, kline(106, 107, 100.5, 101))
	got = FairValueGaps(filled, 0.10)
	require.Len(t, got, 1)
	assert.True(t, got[0].Filled)

	bear := []market.Candle{
		kline(105, 106, 100, 102),
		kline(102, 103, 95, 96),
		kline(96, 99, 92, 94),
	}
	got = FairValueGaps(bear, 0.10)
	require.Len(t, got, 1)
	assert.Equal(t, market.Bearish, got[0].Type)
	assert.Equal(t, 100.0, got[0].Top)
	assert.Equal(t, 99.0, got[0].Bottom)
}

func TestZones(t *testing.T) {
	z := NewZones(200, 100)
	assert.Equal(t, ZonePremium, z.Classify(196))
	assert.Equal(t, ZonePremium, z.Classify(195))
	assert.Equal(t, ZoneDiscount, z.Classify(104))
	assert.Equal(t, ZoneEquilibrium, z.Classify(150))
	assert.Equal(t, ZoneEquilibrium, z.Classify(147.5))
	assert.Equal(t, ZoneNone, z.Classify(170))
	assert.Equal(t, ZoneNone, NewZones(100, 100).Classify(100))
}

func TestAnalyze(t *testing.T) {
	cs := fromCloses(reversalUp...)
	a := Analyze(cs, Config{SwingLength: 2, InternalLength: 1, FVGThreshold: 0.1, ATRPeriod: 14})

	assert.Equal(t, market.Bullish, a.Swing.Trend)
	assert.True(t, a.Swing.BullishCHoCH)
	assert.NotEmpty(t, a.OrderBlocks)
	assert.Equal(t, 21.5, a.Zones.High)
	assert.Equal(t, 15.5, a.Zones.Low)
	assert.Equal(t, ZoneNone, a.Zone)

	empty := Analyze(nil, DefaultConfig())
	assert.Equal(t, ZoneNone, empty.Zone)
	assert.Equal(t, market.Neutral, empty.Swing.Trend)
	assert.Equal(t, market.Neutral, empty.Internal.Trend)
}
