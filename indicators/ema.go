package indicators

import talib "github.com/markcheno/go-talib"

// EMASeries returns the exponential moving average at every index. Entries
// before the first full window are zero. It returns nil when values is
// shorter than period.
func EMASeries(values []float64, period int) []float64 {
	if period <= 0 || len(values) < period {
		return nil
	}
	return talib.Ema(values, period)
}

// EMA returns the latest exponential moving average, or the last value
// when the series is too short.
func EMA(values []float64, period int) float64 {
	s := EMASeries(values, period)
	if s == nil {
		return last(values)
	}
	return last(s)
}

// EMASet holds the fast, mid and slow averages (9/21/50 by default).
type EMASet struct {
	Fast float64 `json:"ema9"`
	Mid  float64 `json:"ema21"`
	Slow float64 `json:"ema50"`
}

func NewEMASet(closes []float64, fast, mid, slow int) EMASet {
	return EMASet{
		Fast: EMA(closes, fast),
		Mid:  EMA(closes, mid),
		Slow: EMA(closes, slow),
	}
}

// Alignment is bullish when price > fast > mid > slow and bearish when the
// order is fully reversed.
func (e EMASet) Alignment(price float64) (bullish, bearish bool) {
	bullish = price > e.Fast && e.Fast > e.Mid && e.Mid > e.Slow
	bearish = price < e.Fast && e.Fast < e.Mid && e.Mid < e.Slow
	return bullish, bearish
}
