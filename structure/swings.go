// Package structure annotates price action with smart-money concepts:
// swing points, breaks of structure, changes of character, order blocks,
// fair value gaps and premium/discount zones.
package structure

import (
	"time"

	"github.com/rustyeddy/marketlab/market"
)

type SwingKind string

const (
	SwingHigh SwingKind = "high"
	SwingLow  SwingKind = "low"
)

// Swing is a confirmed pivot. It can only be known length bars after Index.
type Swing struct {
	Kind  SwingKind `json:"kind"`
	Index int       `json:"index"`
	Time  time.Time `json:"time"`
	Price float64   `json:"price"`
}

// FindSwings marks bar i as a swing high when its high is strictly greater
// than every high in the length bars on each side, and as a swing low when
// its low is strictly lower than every such low. Swings come back in index
// order; a bar can be both.
func FindSwings(candles []market.Candle, length int) []Swing {
	if length <= 0 || len(candles) < 2*length+1 {
		return nil
	}

	var out []Swing
	for i := length; i < len(candles)-length; i++ {
		c := candles[i]
		isHigh, isLow := true, true
		for j := i - length; j <= i+length; j++ {
			if j == i {
				continue
			}
			if candles[j].High >= c.High {
				isHigh = false
			}
			if candles[j].Low <= c.Low {
				isLow = false
			}
			if !isHigh && !isLow {
				break
			}
		}
		if isHigh {
			out = append(out, Swing{Kind: SwingHigh, Index: i, Time: c.Time, Price: c.High})
		}
		if isLow {
			out = append(out, Swing{Kind: SwingLow, Index: i, Time: c.Time, Price: c.Low})
		}
	}
	return out
}

// latest returns the most recent swing of the given kind.
func latest(swings []Swing, kind SwingKind) (Swing, bool) {
	for i := len(swings) - 1; i >= 0; i-- {
		if swings[i].Kind == kind {
			return swings[i], true
		}
	}
	return Swing{}, false
}
