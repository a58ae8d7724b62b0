package indicators

import talib "github.com/markcheno/go-talib"

// Bands are Bollinger Bands at the last bar.
type Bands struct {
	Upper  float64 `json:"upper"`
	Middle float64 `json:"middle"`
	Lower  float64 `json:"lower"`
}

// Width is (upper - lower) / middle, 0 when the middle band is zero.
func (b Bands) Width() float64 {
	if b.Middle == 0 {
		return 0
	}
	return (b.Upper - b.Lower) / b.Middle
}

// Bollinger returns SMA(period) ± k population standard deviations. When
// the series is shorter than period every band equals the last price.
func Bollinger(closes []float64, period int, k float64) Bands {
	if period <= 1 || len(closes) < period {
		p := last(closes)
		return Bands{Upper: p, Middle: p, Lower: p}
	}

	middle := last(talib.Sma(closes, period))
	dev := last(talib.StdDev(closes, period, 1))

	return Bands{
		Upper:  middle + k*dev,
		Middle: middle,
		Lower:  middle - k*dev,
	}
}
