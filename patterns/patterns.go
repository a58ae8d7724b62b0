// Package patterns recognizes candlestick and chart patterns.
package patterns

import "github.com/rustyeddy/marketlab/market"

type Kind string

const (
	KindCandlestick Kind = "candlestick"
	KindChart       Kind = "chart"
)

// Match is a detected pattern. Strength is a fixed constant per pattern.
type Match struct {
	Name      string      `json:"name"`
	Kind      Kind        `json:"kind"`
	Direction market.Bias `json:"direction"`
	Strength  float64     `json:"strength"`
}

// Config sets the chart-pattern windows and tolerances.
type Config struct {
	RSIPeriod          int     `json:"rsi_period" yaml:"rsi_period" default:"14" validate:"gte=1"`
	TrendLookback      int     `json:"trend_lookback" yaml:"trend_lookback" default:"5" validate:"gte=1"`
	FibWindow          int     `json:"fib_window" yaml:"fib_window" default:"50" validate:"gte=3"`
	FibTolerance       float64 `json:"fib_tolerance" yaml:"fib_tolerance" default:"0.01" validate:"gt=0"`
	DivergenceWindow   int     `json:"divergence_window" yaml:"divergence_window" default:"20" validate:"gte=5"`
	TripleTapWindow    int     `json:"triple_tap_window" yaml:"triple_tap_window" default:"30" validate:"gte=5"`
	TripleTapTolerance float64 `json:"triple_tap_tolerance" yaml:"triple_tap_tolerance" default:"0.005" validate:"gt=0"`
}

func DefaultConfig() Config {
	return Config{
		RSIPeriod:          14,
		TrendLookback:      5,
		FibWindow:          50,
		FibTolerance:       0.01,
		DivergenceWindow:   20,
		TripleTapWindow:    30,
		TripleTapTolerance: 0.005,
	}
}

// Detect returns candlestick matches followed by chart-pattern matches.
func Detect(candles []market.Candle, cfg Config) []Match {
	out := Candlesticks(candles, cfg.TrendLookback)
	if m, ok := Fibonacci(candles, cfg.FibWindow, cfg.FibTolerance); ok {
		out = append(out, m)
	}
	out = append(out, Divergence(candles, cfg.DivergenceWindow, cfg.RSIPeriod)...)
	if m, ok := TripleTap(candles, cfg.TripleTapWindow, cfg.TripleTapTolerance); ok {
		out = append(out, m)
	}
	return out
}

// Aligned reports whether any match of the given kind points in dir.
func Aligned(matches []Match, kind Kind, dir market.Bias) bool {
	for _, m := range matches {
		if m.Kind == kind && m.Direction == dir {
			return true
		}
	}
	return false
}
