package market

import (
	"errors"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func bar(ts time.Time, o, h, l, c, v float64) Candle {
	return Candle{Time: ts, Open: o, High: h, Low: l, Close: c, Volume: v}
}

func TestCandleGeometry(t *testing.T) {
	c := bar(time.Time{}, 10, 12, 7, 11, 1)
	assert.InDelta(t, 1.0, c.Body(), 1e-12)
	assert.InDelta(t, 5.0, c.Range(), 1e-12)
	assert.InDelta(t, 1.0, c.UpperShadow(), 1e-12)
	assert.InDelta(t, 3.0, c.LowerShadow(), 1e-12)
	assert.True(t, c.Bullish())
	assert.False(t, c.Bearish())
}

func TestProjections(t *testing.T) {
	t0 := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	cs := []Candle{
		bar(t0, 1, 2, 0.5, 1.5, 10),
		bar(t0.Add(time.Hour), 1.5, 3, 1, 2.5, 20),
	}
	assert.Equal(t, []float64{1.5, 2.5}, Closes(cs))
	assert.Equal(t, []float64{2, 3}, Highs(cs))
	assert.Equal(t, []float64{0.5, 1}, Lows(cs))
	assert.Equal(t, []float64{10, 20}, Volumes(cs))
}

func TestValidate(t *testing.T) {
	t0 := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	good := bar(t0, 10, 11, 9, 10.5, 100)

	tests := []struct {
		name    string
		candles []Candle
		wantErr bool
	}{
		{"empty", nil, true},
		{"valid", []Candle{good, bar(t0.Add(time.Hour), 10.5, 11, 10, 10.8, 50)}, false},
		{"nan", []Candle{bar(t0, 10, math.NaN(), 9, 10, 1)}, true},
		{"inf", []Candle{bar(t0, 10, 11, 9, math.Inf(1), 1)}, true},
		{"zero price", []Candle{bar(t0, 0, 11, 9, 10, 1)}, true},
		{"high below low", []Candle{bar(t0, 10, 9, 11, 10, 1)}, true},
		{"negative volume", []Candle{bar(t0, 10, 11, 9, 10, -1)}, true},
		{"out of order", []Candle{good, bar(t0.Add(-time.Hour), 10, 11, 9, 10, 1)}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Validate(tt.candles)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, errors.Is(err, ErrDataUnavailable))
				return
			}
			require.NoError(t, err)
		})
	}
}

func TestBetweenAndLast(t *testing.T) {
	t0 := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	var cs []Candle
	for i := 0; i < 10; i++ {
		cs = append(cs, bar(t0.Add(time.Duration(i)*time.Hour), 1, 1, 1, 1, 1))
	}

	got := Between(cs, t0.Add(2*time.Hour), t0.Add(4*time.Hour))
	require.Len(t, got, 3)
	assert.Equal(t, t0.Add(2*time.Hour), got[0].Time)

	assert.Len(t, Between(cs, time.Time{}, time.Time{}), 10)
	assert.Len(t, Last(cs, 3), 3)
	assert.Len(t, Last(cs, 30), 10)
}
