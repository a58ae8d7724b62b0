// Package correlation computes Pearson correlation across assets and
// derives pair-trading, diversification and mean-reversion views from it.
package correlation

import (
	"math"
	"sort"
	"time"
)

// Returns converts prices to simple period returns. A zero price yields a
// zero return for the following period.
func Returns(prices []float64) []float64 {
	if len(prices) < 2 {
		return nil
	}
	out := make([]float64, len(prices)-1)
	for i := 1; i < len(prices); i++ {
		if prices[i-1] != 0 {
			out[i-1] = (prices[i] - prices[i-1]) / prices[i-1]
		}
	}
	return out
}

// Pearson returns the correlation of the overlapping tails of a and b. It
// is 0 when fewer than two points overlap or either side has no variance.
func Pearson(a, b []float64) float64 {
	n := min(len(a), len(b))
	if n < 2 {
		return 0
	}
	a, b = a[len(a)-n:], b[len(b)-n:]

	ma, mb := mean(a), mean(b)
	var cov, va, vb float64
	for i := 0; i < n; i++ {
		da, db := a[i]-ma, b[i]-mb
		cov += da * db
		va += da * da
		vb += db * db
	}
	if va == 0 || vb == 0 {
		return 0
	}
	r := cov / math.Sqrt(va*vb)
	return math.Max(-1, math.Min(1, r))
}

func mean(v []float64) float64 {
	if len(v) == 0 {
		return 0
	}
	var s float64
	for _, x := range v {
		s += x
	}
	return s / float64(len(v))
}

func stddev(v []float64, m float64) float64 {
	if len(v) == 0 {
		return 0
	}
	var s float64
	for _, x := range v {
		s += (x - m) * (x - m)
	}
	return math.Sqrt(s / float64(len(v)))
}

// Matrix is a symmetric correlation matrix with a unit diagonal. Values
// follows the order of Symbols.
type Matrix struct {
	Symbols     []string    `json:"symbols"`
	Values      [][]float64 `json:"matrix"`
	Lookback    int         `json:"lookback_days,omitempty"`
	GeneratedAt time.Time   `json:"generated_at"`

	// Prices are the closes the matrix was computed from, keyed by symbol.
	Prices map[string][]float64 `json:"-"`
}

// NewMatrix correlates the returns of every pair of price series. Symbols
// without prices correlate 0 with everything else.
func NewMatrix(symbols []string, prices map[string][]float64) Matrix {
	n := len(symbols)
	rets := make([][]float64, n)
	for i, s := range symbols {
		rets[i] = Returns(prices[s])
	}

	values := make([][]float64, n)
	for i := range values {
		values[i] = make([]float64, n)
		values[i][i] = 1
	}
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			r := Pearson(rets[i], rets[j])
			values[i][j] = r
			values[j][i] = r
		}
	}

	kept := make(map[string][]float64, n)
	for _, s := range symbols {
		if p, ok := prices[s]; ok {
			kept[s] = p
		}
	}

	return Matrix{
		Symbols:     append([]string(nil), symbols...),
		Values:      values,
		GeneratedAt: time.Now().UTC(),
		Prices:      kept,
	}
}

// Get returns the correlation of a and b.
func (m Matrix) Get(a, b string) (float64, bool) {
	i, j := m.index(a), m.index(b)
	if i < 0 || j < 0 {
		return 0, false
	}
	return m.Values[i][j], true
}

func (m Matrix) index(s string) int {
	for i, sym := range m.Symbols {
		if sym == s {
			return i
		}
	}
	return -1
}

type Strength string

const (
	Strong   Strength = "strong"
	Moderate Strength = "moderate"
	Weak     Strength = "weak"
)

// Classify grades |r|: strong from 0.8, moderate from 0.5.
func Classify(r float64) Strength {
	switch a := math.Abs(r); {
	case a >= 0.8:
		return Strong
	case a >= 0.5:
		return Moderate
	default:
		return Weak
	}
}

type Pair struct {
	A           string   `json:"symbol_a"`
	B           string   `json:"symbol_b"`
	Correlation float64  `json:"correlation"`
	Strength    Strength `json:"strength"`
}

// pairs lists every i<j pair accepted by keep, strongest |r| first.
func (m Matrix) pairs(keep func(r float64) bool) []Pair {
	var out []Pair
	for i := 0; i < len(m.Symbols); i++ {
		for j := i + 1; j < len(m.Symbols); j++ {
			r := m.Values[i][j]
			if !keep(r) {
				continue
			}
			out = append(out, Pair{A: m.Symbols[i], B: m.Symbols[j], Correlation: r, Strength: Classify(r)})
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return math.Abs(out[i].Correlation) > math.Abs(out[j].Correlation)
	})
	return out
}

// SignificantPairs returns pairs with |r| >= threshold. A threshold of 0
// or less uses 0.7.
func (m Matrix) SignificantPairs(threshold float64) []Pair {
	if threshold <= 0 {
		threshold = 0.7
	}
	return m.pairs(func(r float64) bool { return math.Abs(r) >= threshold })
}

// PairTradingCandidates are strongly and positively correlated pairs.
func (m Matrix) PairTradingCandidates() []Pair {
	return m.pairs(func(r float64) bool { return r >= 0.8 })
}

// DiversificationCandidates are pairs with |r| < 0.3, weakest first.
func (m Matrix) DiversificationCandidates() []Pair {
	out := m.pairs(func(r float64) bool { return math.Abs(r) < 0.3 })
	sort.SliceStable(out, func(i, j int) bool {
		return math.Abs(out[i].Correlation) < math.Abs(out[j].Correlation)
	})
	return out
}
