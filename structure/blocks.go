package structure

import (
	"math"
	"time"

	"github.com/rustyeddy/marketlab/market"
)

// OrderBlock is the candle a move originated from.
type OrderBlock struct {
	Type   market.Bias `json:"type"`
	Top    float64     `json:"top"`
	Bottom float64     `json:"bottom"`
	Index  int         `json:"index"`
	Time   time.Time   `json:"time"`
}

// Distance is the relative distance from price to the block, 0 inside it.
func (ob OrderBlock) Distance(price float64) float64 {
	return zoneDistance(price, ob.Top, ob.Bottom)
}

// OrderBlocks walks each pair of consecutive swings of opposite kind. A leg
// from a swing high down to a swing low yields a bullish block at its lowest
// candle; a leg from a low up to a high yields a bearish block at its
// highest candle. Candles with a range above 2×atr are skipped; atr <= 0
// disables that filter.
func OrderBlocks(candles []market.Candle, swings []Swing, atr float64) []OrderBlock {
	var out []OrderBlock
	for k := 1; k < len(swings); k++ {
		a, b := swings[k-1], swings[k]
		if a.Kind == b.Kind || b.Index >= len(candles) || a.Index >= b.Index {
			continue
		}

		best := -1
		for i := a.Index; i <= b.Index; i++ {
			c := candles[i]
			if atr > 0 && c.Range() > 2*atr {
				continue
			}
			if best < 0 {
				best = i
				continue
			}
			if a.Kind == SwingHigh && c.Low < candles[best].Low {
				best = i
			}
			if a.Kind == SwingLow && c.High > candles[best].High {
				best = i
			}
		}
		if best < 0 {
			continue
		}

		typ := market.Bullish
		if a.Kind == SwingLow {
			typ = market.Bearish
		}
		c := candles[best]
		out = append(out, OrderBlock{Type: typ, Top: c.High, Bottom: c.Low, Index: best, Time: c.Time})
	}
	return out
}

// FairValueGap is the untraded range left by a three-candle displacement.
type FairValueGap struct {
	Type   market.Bias `json:"type"`
	Top    float64     `json:"top"`
	Bottom float64     `json:"bottom"`
	Index  int         `json:"index"` // middle candle
	Time   time.Time   `json:"time"`
	Filled bool        `json:"filled"`
}

func (g FairValueGap) Distance(price float64) float64 {
	return zoneDistance(price, g.Top, g.Bottom)
}

// FairValueGaps finds gaps where candle[i].Low > candle[i-2].High (bullish)
// or candle[i].High < candle[i-2].Low (bearish). The gap must be at least
// threshold times the range of the middle candle. A later candle trading
// back into the gap marks it filled.
func FairValueGaps(candles []market.Candle, threshold float64) []FairValueGap {
	var out []FairValueGap
	for i := 2; i < len(candles); i++ {
		c1, c2, c3 := candles[i-2], candles[i-1], candles[i]
		ref := c2.Range()
		if ref <= 0 {
			continue
		}

		if c3.Low > c1.High && (c3.Low-c1.High)/ref >= threshold {
			g := FairValueGap{Type: market.Bullish, Top: c3.Low, Bottom: c1.High, Index: i - 1, Time: c2.Time}
			for _, later := range candles[i+1:] {
				if later.Low <= g.Top {
					g.Filled = true
					break
				}
			}
			out = append(out, g)
		}

		if c3.High < c1.Low && (c1.Low-c3.High)/ref >= threshold {
			g := FairValueGap{Type: market.Bearish, Top: c1.Low, Bottom: c3.High, Index: i - 1, Time: c2.Time}
			for _, later := range candles[i+1:] {
				if later.High >= g.Bottom {
					g.Filled = true
					break
				}
			}
			out = append(out, g)
		}
	}
	return out
}

func zoneDistance(price, top, bottom float64) float64 {
	if price <= 0 {
		return math.Inf(1)
	}
	switch {
	case price > top:
		return (price - top) / price
	case price < bottom:
		return (bottom - price) / price
	default:
		return 0
	}
}
