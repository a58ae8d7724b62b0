package correlation

import (
	"math"
	"sort"
)

// Action is what a divergent pair suggests for the spread A - B.
type Action string

const (
	ActionBuy     Action = "buy"  // long A, short B
	ActionSell    Action = "sell" // short A, long B
	ActionNeutral Action = "neutral"
)

const (
	signalZ = 2.0
	reportZ = 1.5
)

// PairSignal is a pair whose normalized price spread has moved away from
// its mean.
type PairSignal struct {
	Pair
	Spread float64 `json:"spread"`
	Mean   float64 `json:"mean"`
	StdDev float64 `json:"std_dev"`
	ZScore float64 `json:"z_score"`
	Action Action  `json:"action"`
}

// DivergentPairs min-max normalizes both price series over the last window
// points (all overlapping points when window <= 0), takes the spread A - B
// and scores the latest spread against the window. z < -2 is a buy, z > 2
// a sell, and pairs with |z| > 1.5 are reported as neutral. Results are
// ordered by |z|, largest first.
func DivergentPairs(pairs []Pair, prices map[string][]float64, window int) []PairSignal {
	var out []PairSignal
	for _, p := range pairs {
		a, b := tail(prices[p.A], prices[p.B], window)
		if len(a) < 3 {
			continue
		}
		na, nb := normalize(a), normalize(b)
		spread := make([]float64, len(na))
		for i := range na {
			spread[i] = na[i] - nb[i]
		}
		m := mean(spread)
		sd := stddev(spread, m)
		if sd == 0 {
			continue
		}
		cur := spread[len(spread)-1]
		z := (cur - m) / sd
		if math.Abs(z) <= reportZ {
			continue
		}

		action := ActionNeutral
		switch {
		case z < -signalZ:
			action = ActionBuy
		case z > signalZ:
			action = ActionSell
		}
		out = append(out, PairSignal{Pair: p, Spread: cur, Mean: m, StdDev: sd, ZScore: z, Action: action})
	}
	sort.SliceStable(out, func(i, j int) bool {
		return math.Abs(out[i].ZScore) > math.Abs(out[j].ZScore)
	})
	return out
}

// tail aligns a and b on their most recent points.
func tail(a, b []float64, window int) ([]float64, []float64) {
	n := min(len(a), len(b))
	if window > 0 {
		n = min(n, window)
	}
	return a[len(a)-n:], b[len(b)-n:]
}

func normalize(v []float64) []float64 {
	lo, hi := v[0], v[0]
	for _, x := range v {
		lo = min(lo, x)
		hi = max(hi, x)
	}
	out := make([]float64, len(v))
	if hi == lo {
		return out
	}
	for i, x := range v {
		out[i] = (x - lo) / (hi - lo)
	}
	return out
}
