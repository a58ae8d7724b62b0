package patterns

import (
	"fmt"
	"math"

	"github.com/rustyeddy/marketlab/indicators"
	"github.com/rustyeddy/marketlab/market"
)

// minChartWindow is the fewest candles a chart pattern is evaluated on.
const minChartWindow = 30

var fibLevels = []struct {
	ratio    float64
	strength float64
}{
	{0.382, 0.6},
	{0.618, 0.8},
	{0.786, 0.7},
}

// Fibonacci checks whether the last close sits within tolerance of a
// 38.2/61.8/78.6% retracement of the window's high-low range. The closest
// level wins. A close above the previous close reads as a bullish bounce.
func Fibonacci(candles []market.Candle, window int, tolerance float64) (Match, bool) {
	if len(candles) < minChartWindow || window < 2 {
		return Match{}, false
	}
	w := market.Last(candles, window)

	hi := math.Inf(-1)
	lo := math.Inf(1)
	for _, c := range w {
		hi = max(hi, c.High)
		lo = min(lo, c.Low)
	}
	rng := hi - lo
	if rng <= 0 {
		return Match{}, false
	}

	price := w[len(w)-1].Close
	prev := w[len(w)-2].Close

	best := -1
	bestDist := math.Inf(1)
	for i, lvl := range fibLevels {
		level := hi - rng*lvl.ratio
		dist := math.Abs(price-level) / level
		if dist <= tolerance && dist < bestDist {
			best, bestDist = i, dist
		}
	}
	if best < 0 {
		return Match{}, false
	}

	dir := market.Bearish
	if price > prev {
		dir = market.Bullish
	}
	return Match{
		Name:      fmt.Sprintf("Fibonacci %.1f%%", fibLevels[best].ratio*100),
		Kind:      KindChart,
		Direction: dir,
		Strength:  fibLevels[best].strength,
	}, true
}

const divergenceStrength = 0.75

// Divergence looks for regular price/RSI divergence between the last two
// local extremes of the window: a lower price low with a higher RSI low is
// bullish, a higher price high with a lower RSI high is bearish.
func Divergence(candles []market.Candle, window, rsiPeriod int) []Match {
	if window < 3 || len(candles) < window+rsiPeriod {
		return nil
	}

	closes := market.Closes(candles)
	rsi := indicators.RSISeries(closes, rsiPeriod)

	start := len(closes) - window
	var lows, highs []int
	for i := start + 1; i < len(closes)-1; i++ {
		if closes[i] < closes[i-1] && closes[i] < closes[i+1] {
			lows = append(lows, i)
		}
		if closes[i] > closes[i-1] && closes[i] > closes[i+1] {
			highs = append(highs, i)
		}
	}

	var out []Match
	if n := len(lows); n >= 2 {
		a, b := lows[n-2], lows[n-1]
		if closes[b] < closes[a] && rsi[b] > rsi[a] {
			out = append(out, Match{Name: "Bullish RSI Divergence", Kind: KindChart, Direction: market.Bullish, Strength: divergenceStrength})
		}
	}
	if n := len(highs); n >= 2 {
		a, b := highs[n-2], highs[n-1]
		if closes[b] > closes[a] && rsi[b] < rsi[a] {
			out = append(out, Match{Name: "Bearish RSI Divergence", Kind: KindChart, Direction: market.Bearish, Strength: divergenceStrength})
		}
	}
	return out
}

const (
	tripleTapStrength = 0.8
	minTouches        = 3
	// touches closer than this many bars count once
	minTouchSpacing = 3
)

// TripleTap requires at least three separated touches within tolerance of
// the window's extreme low (or high) and a last candle reversing away
// from it.
func TripleTap(candles []market.Candle, window int, tolerance float64) (Match, bool) {
	if len(candles) < window || window < minChartWindow {
		return Match{}, false
	}
	w := market.Last(candles, window)
	last := w[len(w)-1]

	lo := math.Inf(1)
	hi := math.Inf(-1)
	for _, c := range w {
		lo = min(lo, c.Low)
		hi = max(hi, c.High)
	}

	if last.Bullish() && touches(w, func(c market.Candle) bool { return math.Abs(c.Low-lo)/lo <= tolerance }) >= minTouches {
		return Match{Name: "Triple Tap Bottom", Kind: KindChart, Direction: market.Bullish, Strength: tripleTapStrength}, true
	}
	if last.Bearish() && touches(w, func(c market.Candle) bool { return math.Abs(c.High-hi)/hi <= tolerance }) >= minTouches {
		return Match{Name: "Triple Tap Top", Kind: KindChart, Direction: market.Bearish, Strength: tripleTapStrength}, true
	}
	return Match{}, false
}

func touches(w []market.Candle, hit func(market.Candle) bool) int {
	count := 0
	lastTouch := -minTouchSpacing
	for i, c := range w {
		if !hit(c) {
			continue
		}
		if i-lastTouch >= minTouchSpacing {
			count++
			lastTouch = i
		}
	}
	return count
}

// HarmonicResult is returned by the harmonic pattern detectors.
type HarmonicResult struct {
	Pattern     string `json:"pattern"`
	Found       bool   `json:"found"`
	Implemented bool   `json:"implemented"`
}

// Bat is not implemented. It always reports Found=false and
// Implemented=false so callers can tell "absent" from "not checked".
func Bat(candles []market.Candle) HarmonicResult {
	return HarmonicResult{Pattern: "Bat"}
}

// Gartley is not implemented; see Bat.
func Gartley(candles []market.Candle) HarmonicResult {
	return HarmonicResult{Pattern: "Gartley"}
}
