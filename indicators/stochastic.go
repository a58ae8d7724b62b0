package indicators

import (
	talib "github.com/markcheno/go-talib"

	"github.com/rustyeddy/marketlab/market"
)

// Stoch is the slow stochastic oscillator at the last bar.
type Stoch struct {
	K float64 `json:"k"`
	D float64 `json:"d"`
}

// Stochastic computes %K smoothed over kSmooth bars and %D over dPeriod bars.
// It returns {50, 50} when there are fewer than kPeriod+kSmooth+dPeriod-2
// candles.
func Stochastic(candles []market.Candle, kPeriod, kSmooth, dPeriod int) Stoch {
	need := kPeriod + kSmooth + dPeriod - 2
	if kPeriod <= 0 || kSmooth <= 0 || dPeriod <= 0 || len(candles) < need {
		return Stoch{K: 50, D: 50}
	}

	raw := make([]float64, 0, len(candles)-kPeriod+1)
	for i := kPeriod - 1; i < len(candles); i++ {
		window := candles[i-kPeriod+1 : i+1]
		hh := highest(market.Highs(window))
		ll := lowest(market.Lows(window))
		if hh == ll {
			raw = append(raw, 50)
			continue
		}
		raw = append(raw, (candles[i].Close-ll)/(hh-ll)*100)
	}

	k := smooth(raw, kSmooth)
	d := smooth(k, dPeriod)
	return Stoch{K: last(k), D: last(d)}
}

// smooth returns the SMA series of values trimmed to its valid region.
func smooth(values []float64, period int) []float64 {
	if period == 1 {
		return values
	}
	return talib.Sma(values, period)[period-1:]
}
