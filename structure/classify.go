package structure

import (
	"time"

	"github.com/rustyeddy/marketlab/market"
)

type EventKind string

const (
	BOS   EventKind = "BOS"
	CHoCH EventKind = "CHoCH"
)

// Event is one structure break.
type Event struct {
	Kind      EventKind   `json:"kind"`
	Direction market.Bias `json:"direction"`
	Index     int         `json:"index"`
	Time      time.Time   `json:"time"`
	Level     float64     `json:"level"`
}

// Result is the structure state at one granularity. Trend follows the
// latest event. A flag is set for the latest event of its kind when that
// event agrees with Trend.
type Result struct {
	BullishBOS   bool        `json:"bullish_bos"`
	BearishBOS   bool        `json:"bearish_bos"`
	BullishCHoCH bool        `json:"bullish_choch"`
	BearishCHoCH bool        `json:"bearish_choch"`
	Trend        market.Bias `json:"trend"`
	Events       []Event     `json:"events,omitempty"`
}

// Last returns the most recent event.
func (r Result) Last() (Event, bool) {
	if len(r.Events) == 0 {
		return Event{}, false
	}
	return r.Events[len(r.Events)-1], true
}

// Classify replays the series bar by bar. A swing becomes usable length
// bars after it forms. A close beyond the latest unbroken swing high (or
// low) is a break of structure and sets the trend. When a new swing is
// confirmed the last four confirmed swings are matched for a change of
// character; repeated matches in the same direction fire once.
func Classify(candles []market.Candle, swings []Swing, length int) Result {
	r := Result{Trend: market.Neutral}

	var confirmed []Swing
	var high, low Swing
	var haveHigh, haveLow bool
	highBroken, lowBroken := false, false
	lastCHoCH := market.Neutral
	next := 0

	for i, c := range candles {
		for next < len(swings) && swings[next].Index+length <= i {
			s := swings[next]
			next++
			confirmed = append(confirmed, s)
			if s.Kind == SwingHigh {
				high, haveHigh, highBroken = s, true, false
			} else {
				low, haveLow, lowBroken = s, true, false
			}
			if e, ok := matchCHoCH(confirmed, i, c.Time); ok && e.Direction != lastCHoCH {
				lastCHoCH = e.Direction
				r.Events = append(r.Events, e)
				r.Trend = e.Direction
			}
		}

		if haveHigh && !highBroken && c.Close > high.Price {
			highBroken = true
			r.Events = append(r.Events, Event{Kind: BOS, Direction: market.Bullish, Index: i, Time: c.Time, Level: high.Price})
			r.Trend = market.Bullish
		}
		if haveLow && !lowBroken && c.Close < low.Price {
			lowBroken = true
			r.Events = append(r.Events, Event{Kind: BOS, Direction: market.Bearish, Index: i, Time: c.Time, Level: low.Price})
			r.Trend = market.Bearish
		}
	}

	if e, ok := r.lastOf(BOS); ok && e.Direction == r.Trend {
		r.BullishBOS = e.Direction == market.Bullish
		r.BearishBOS = e.Direction == market.Bearish
	}
	if e, ok := r.lastOf(CHoCH); ok && e.Direction == r.Trend {
		r.BullishCHoCH = e.Direction == market.Bullish
		r.BearishCHoCH = e.Direction == market.Bearish
	}
	return r
}

func (r Result) lastOf(kind EventKind) (Event, bool) {
	for i := len(r.Events) - 1; i >= 0; i-- {
		if r.Events[i].Kind == kind {
			return r.Events[i], true
		}
	}
	return Event{}, false
}

// matchCHoCH checks the last four confirmed swings for low-high-low-high
// with a higher low and a higher high (bullish), or high-low-high-low with
// a lower high and a lower low (bearish).
func matchCHoCH(swings []Swing, index int, ts time.Time) (Event, bool) {
	n := len(swings)
	if n < 4 {
		return Event{}, false
	}
	s0, s1, s2, s3 := swings[n-4], swings[n-3], swings[n-2], swings[n-1]

	if s0.Kind == SwingLow && s1.Kind == SwingHigh && s2.Kind == SwingLow && s3.Kind == SwingHigh &&
		s2.Price > s0.Price && s3.Price > s1.Price {
		return Event{Kind: CHoCH, Direction: market.Bullish, Index: index, Time: ts, Level: s3.Price}, true
	}
	if s0.Kind == SwingHigh && s1.Kind == SwingLow && s2.Kind == SwingHigh && s3.Kind == SwingLow &&
		s2.Price < s0.Price && s3.Price < s1.Price {
		return Event{Kind: CHoCH, Direction: market.Bearish, Index: index, Time: ts, Level: s3.Price}, true
	}
	return Event{}, false
}
