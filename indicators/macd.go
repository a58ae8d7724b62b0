package indicators

import (
	talib "github.com/markcheno/go-talib"

	"github.com/rustyeddy/marketlab/market"
)

// MACD is the classic moving average convergence/divergence reading.
type MACD struct {
	MACD      float64 `json:"macd"`
	Signal    float64 `json:"signal"`
	Histogram float64 `json:"histogram"`
}

// ClassicMACD computes EMA(fast) - EMA(slow) with an EMA signal line. All
// fields are zero when closes is shorter than slow+signal.
func ClassicMACD(closes []float64, fast, slow, signal int) MACD {
	if fast <= 0 || slow <= fast || signal <= 0 || len(closes) < slow+signal {
		return MACD{}
	}
	line, sig, hist := talib.Macd(closes, fast, slow, signal)
	return MACD{
		MACD:      last(line),
		Signal:    last(sig),
		Histogram: last(hist),
	}
}

// HistogramColor describes the trend and sign of the Ultimate MACD histogram.
type HistogramColor string

const (
	ColorNone   HistogramColor = ""
	ColorAqua   HistogramColor = "aqua"   // >= 0 and rising
	ColorBlue   HistogramColor = "blue"   // >= 0 and falling
	ColorRed    HistogramColor = "red"    // < 0 and falling
	ColorMaroon HistogramColor = "maroon" // < 0 and rising
)

// Cross reports a MACD/signal crossing on the latest bar.
type Cross string

const (
	CrossNone    Cross = ""
	CrossBullish Cross = "bullish"
	CrossBearish Cross = "bearish"
)

// UltimateMACD uses the same MACD line as the classic form but smooths the
// signal with a simple moving average.
type UltimateMACD struct {
	MACD       float64        `json:"macd"`
	Signal     float64        `json:"signal"`
	Histogram  float64        `json:"histogram"`
	Color      HistogramColor `json:"color,omitempty"`
	Cross      Cross          `json:"cross,omitempty"`
	Divergence market.Bias    `json:"divergence,omitempty"`
}

const divergenceLookback = 10

// NewUltimateMACD computes the Ultimate MACD over closes. It needs at least
// slow+signal values so the last two bars carry a signal; shorter input
// gives a zero reading with ColorNone and CrossNone.
func NewUltimateMACD(closes []float64, fast, slow, signal int) UltimateMACD {
	if fast <= 0 || slow <= fast || signal <= 0 || len(closes) < slow+signal {
		return UltimateMACD{}
	}

	emaFast := talib.Ema(closes, fast)
	emaSlow := talib.Ema(closes, slow)

	line := make([]float64, 0, len(closes)-slow+1)
	for i := slow - 1; i < len(closes); i++ {
		line = append(line, emaFast[i]-emaSlow[i])
	}
	sig := talib.Sma(line, signal)

	n := len(line) - 1
	m, s := line[n], sig[n]
	pm, ps := line[n-1], sig[n-1]
	hist, prevHist := m-s, pm-ps

	u := UltimateMACD{
		MACD:      m,
		Signal:    s,
		Histogram: hist,
	}

	switch {
	case hist >= 0 && hist > prevHist:
		u.Color = ColorAqua
	case hist >= 0:
		u.Color = ColorBlue
	case hist < prevHist:
		u.Color = ColorRed
	default:
		u.Color = ColorMaroon
	}

	switch {
	case pm <= ps && m > s:
		u.Cross = CrossBullish
	case pm >= ps && m < s:
		u.Cross = CrossBearish
	}

	u.Divergence = market.Neutral
	if len(line) > divergenceLookback {
		priceChange := closes[len(closes)-1] - closes[len(closes)-1-divergenceLookback]
		macdChange := line[n] - line[n-divergenceLookback]
		switch {
		case priceChange < 0 && macdChange > 0:
			u.Divergence = market.Bullish
		case priceChange > 0 && macdChange < 0:
			u.Divergence = market.Bearish
		}
	}

	return u
}
