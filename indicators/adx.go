package indicators

import (
	"math"

	"github.com/rustyeddy/marketlab/market"
)

// DirectionalIndex carries the directional movement readings.
type DirectionalIndex struct {
	ADX     float64 `json:"adx"`
	PlusDI  float64 `json:"plus_di"`
	MinusDI float64 `json:"minus_di"`
}

// ADX sums true range and directional movement over the last period bars
// and reports DX as ADX. There is no Wilder smoothing pass. All fields are
// zero when there are fewer than period+1 candles.
func ADX(candles []market.Candle, period int) DirectionalIndex {
	if period <= 0 || len(candles) < period+1 {
		return DirectionalIndex{}
	}

	var sumTR, sumPlus, sumMinus float64
	for i := len(candles) - period; i < len(candles); i++ {
		c, p := candles[i], candles[i-1]

		tr := max(c.High-c.Low, math.Abs(c.High-p.Close), math.Abs(c.Low-p.Close))
		up := c.High - p.High
		down := p.Low - c.Low

		if up > down && up > 0 {
			sumPlus += up
		}
		if down > up && down > 0 {
			sumMinus += down
		}
		sumTR += tr
	}

	if sumTR == 0 {
		return DirectionalIndex{}
	}

	plusDI := 100 * sumPlus / sumTR
	minusDI := 100 * sumMinus / sumTR

	dx := 0.0
	if plusDI+minusDI > 0 {
		dx = 100 * math.Abs(plusDI-minusDI) / (plusDI + minusDI)
	}

	return DirectionalIndex{ADX: dx, PlusDI: plusDI, MinusDI: minusDI}
}

// ATR is the mean high-low range of the last period candles, 0 when short.
func ATR(candles []market.Candle, period int) float64 {
	if period <= 0 || len(candles) < period {
		return 0
	}
	sum := 0.0
	for _, c := range candles[len(candles)-period:] {
		sum += c.Range()
	}
	return sum / float64(period)
}
