// Package indicators provides technical analysis indicators for trading.
//
// Every function is pure and works on a series ordered oldest to newest.
// None of them fail on short input: each returns a documented sentinel
// instead, so callers can run the full set over any history.
package indicators

import "math"

// Config holds every period and multiplier used by Analyze.
type Config struct {
	RSIPeriod int `json:"rsi_period" yaml:"rsi_period" default:"14" validate:"gte=1"`

	BBPeriod int     `json:"bb_period" yaml:"bb_period" default:"20" validate:"gte=2"`
	BBStdDev float64 `json:"bb_stddev" yaml:"bb_stddev" default:"2" validate:"gt=0"`

	MACDFast   int `json:"macd_fast" yaml:"macd_fast" default:"12" validate:"gte=1"`
	MACDSlow   int `json:"macd_slow" yaml:"macd_slow" default:"26" validate:"gtfield=MACDFast"`
	MACDSignal int `json:"macd_signal" yaml:"macd_signal" default:"9" validate:"gte=1"`

	EMAFast int `json:"ema_fast" yaml:"ema_fast" default:"9" validate:"gte=1"`
	EMAMid  int `json:"ema_mid" yaml:"ema_mid" default:"21" validate:"gtfield=EMAFast"`
	EMASlow int `json:"ema_slow" yaml:"ema_slow" default:"50" validate:"gtfield=EMAMid"`

	StochK      int `json:"stoch_k" yaml:"stoch_k" default:"14" validate:"gte=1"`
	StochSmooth int `json:"stoch_smooth" yaml:"stoch_smooth" default:"3" validate:"gte=1"`
	StochD      int `json:"stoch_d" yaml:"stoch_d" default:"3" validate:"gte=1"`

	ADXPeriod int `json:"adx_period" yaml:"adx_period" default:"14" validate:"gte=1"`
	ATRPeriod int `json:"atr_period" yaml:"atr_period" default:"14" validate:"gte=1"`

	Squeeze SqueezeConfig `json:"squeeze" yaml:"squeeze"`

	VolumePeriod int `json:"volume_period" yaml:"volume_period" default:"20" validate:"gte=1"`
	FlowPeriod   int `json:"flow_period" yaml:"flow_period" default:"10" validate:"gte=1"`
	SMAPeriod    int `json:"sma_period" yaml:"sma_period" default:"20" validate:"gte=1"`
}

// DefaultConfig returns the standard periods (RSI 14, BB 20/2, MACD 12/26/9,
// EMA 9/21/50, Stochastic 14/3/3, ADX 14, ATR 14, Squeeze 20/2/20/1.5).
func DefaultConfig() Config {
	return Config{
		RSIPeriod:    14,
		BBPeriod:     20,
		BBStdDev:     2,
		MACDFast:     12,
		MACDSlow:     26,
		MACDSignal:   9,
		EMAFast:      9,
		EMAMid:       21,
		EMASlow:      50,
		StochK:       14,
		StochSmooth:  3,
		StochD:       3,
		ADXPeriod:    14,
		ATRPeriod:    14,
		Squeeze:      DefaultSqueezeConfig(),
		VolumePeriod: 20,
		FlowPeriod:   10,
		SMAPeriod:    20,
	}
}

func last(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	return values[len(values)-1]
}

func mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

// SMA is the simple mean of the last period values; 0 when too short.
func SMA(values []float64, period int) float64 {
	if period <= 0 || len(values) < period {
		return 0
	}
	return mean(values[len(values)-period:])
}

// SMADeviation is the percentage distance of the last value from its SMA.
func SMADeviation(values []float64, period int) float64 {
	sma := SMA(values, period)
	if sma == 0 {
		return 0
	}
	return (last(values) - sma) / sma * 100
}

func highest(values []float64) float64 {
	h := math.Inf(-1)
	for _, v := range values {
		h = max(h, v)
	}
	return h
}

func lowest(values []float64) float64 {
	l := math.Inf(1)
	for _, v := range values {
		l = min(l, v)
	}
	return l
}
