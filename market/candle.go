package market

import (
	"fmt"
	"math"
	"time"
)

// Candle represents one OHLCV bar.
type Candle struct {
	Time   time.Time `json:"time" yaml:"time"`
	Open   float64   `json:"open" yaml:"open"`
	High   float64   `json:"high" yaml:"high"`
	Low    float64   `json:"low" yaml:"low"`
	Close  float64   `json:"close" yaml:"close"`
	Volume float64   `json:"volume" yaml:"volume"`
}

// Body is the absolute open/close distance.
func (c Candle) Body() float64 { return math.Abs(c.Close - c.Open) }

// Range is High - Low.
func (c Candle) Range() float64 { return c.High - c.Low }

// UpperShadow is the wick above the body.
func (c Candle) UpperShadow() float64 { return c.High - math.Max(c.Open, c.Close) }

// LowerShadow is the wick below the body.
func (c Candle) LowerShadow() float64 { return math.Min(c.Open, c.Close) - c.Low }

func (c Candle) Bullish() bool { return c.Close > c.Open }
func (c Candle) Bearish() bool { return c.Close < c.Open }

// Closes projects candles onto their closing prices (oldest first).
func Closes(candles []Candle) []float64 {
	out := make([]float64, len(candles))
	for i, c := range candles {
		out[i] = c.Close
	}
	return out
}

func Highs(candles []Candle) []float64 {
	out := make([]float64, len(candles))
	for i, c := range candles {
		out[i] = c.High
	}
	return out
}

func Lows(candles []Candle) []float64 {
	out := make([]float64, len(candles))
	for i, c := range candles {
		out[i] = c.Low
	}
	return out
}

func Volumes(candles []Candle) []float64 {
	out := make([]float64, len(candles))
	for i, c := range candles {
		out[i] = c.Volume
	}
	return out
}

// Validate checks that a series is usable for analysis. It returns an error
// wrapping ErrDataUnavailable when the series is empty or malformed.
func Validate(candles []Candle) error {
	if len(candles) == 0 {
		return fmt.Errorf("%w: empty series", ErrDataUnavailable)
	}
	for i, c := range candles {
		for _, v := range []float64{c.Open, c.High, c.Low, c.Close, c.Volume} {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				return fmt.Errorf("%w: bar %d has non-finite value", ErrDataUnavailable, i)
			}
		}
		if c.Open <= 0 || c.High <= 0 || c.Low <= 0 || c.Close <= 0 {
			return fmt.Errorf("%w: bar %d has non-positive price", ErrDataUnavailable, i)
		}
		if c.High < c.Low {
			return fmt.Errorf("%w: bar %d high %.6f below low %.6f", ErrDataUnavailable, i, c.High, c.Low)
		}
		if c.Volume < 0 {
			return fmt.Errorf("%w: bar %d has negative volume", ErrDataUnavailable, i)
		}
		if i > 0 && !c.Time.IsZero() && c.Time.Before(candles[i-1].Time) {
			return fmt.Errorf("%w: bar %d out of order", ErrDataUnavailable, i)
		}
	}
	return nil
}

// Between returns the candles whose time falls within [from, to].
// A zero bound is open.
func Between(candles []Candle, from, to time.Time) []Candle {
	out := make([]Candle, 0, len(candles))
	for _, c := range candles {
		if !from.IsZero() && c.Time.Before(from) {
			continue
		}
		if !to.IsZero() && c.Time.After(to) {
			continue
		}
		out = append(out, c)
	}
	return out
}

// Last returns the most recent n candles (or all of them when fewer exist).
func Last(candles []Candle, n int) []Candle {
	if n <= 0 || n >= len(candles) {
		return candles
	}
	return candles[len(candles)-n:]
}
