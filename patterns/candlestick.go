package patterns

import "github.com/rustyeddy/marketlab/market"

const (
	StrengthSoldiers      = 0.9
	StrengthStar          = 0.85
	StrengthEngulfing     = 0.8
	StrengthHammer        = 0.75
	StrengthPiercing      = 0.7
	StrengthInvertedShape = 0.65
	StrengthDoji          = 0.6
)

// ============================================================================
// SINGLE CANDLE SHAPES
// ============================================================================

// hammerShape: long lower shadow (at least 2x body), little upper shadow.
func hammerShape(c market.Candle) bool {
	body := c.Body()
	if body == 0 {
		return false
	}
	return c.LowerShadow() >= body*2 && c.UpperShadow() <= body*0.5
}

// invertedShape: long upper shadow, little lower shadow.
func invertedShape(c market.Candle) bool {
	body := c.Body()
	if body == 0 {
		return false
	}
	return c.UpperShadow() >= body*2 && c.LowerShadow() <= body*0.5
}

// doji: body under 5% of the full range.
func doji(c market.Candle) bool {
	r := c.Range()
	if r == 0 {
		return false
	}
	return c.Body() <= r*0.05
}

// ============================================================================
// TWO CANDLE PATTERNS
// ============================================================================

func bullishEngulfing(prev, cur market.Candle) bool {
	return prev.Bearish() && cur.Bullish() &&
		cur.Open <= prev.Close && cur.Close >= prev.Open
}

func bearishEngulfing(prev, cur market.Candle) bool {
	return prev.Bullish() && cur.Bearish() &&
		cur.Open >= prev.Close && cur.Close <= prev.Open
}

func piercing(prev, cur market.Candle) bool {
	if !prev.Bearish() || !cur.Bullish() {
		return false
	}
	mid := (prev.Open + prev.Close) / 2
	return cur.Open < prev.Close && cur.Close > mid && cur.Close < prev.Open
}

func darkCloud(prev, cur market.Candle) bool {
	if !prev.Bullish() || !cur.Bearish() {
		return false
	}
	mid := (prev.Open + prev.Close) / 2
	return cur.Open > prev.Close && cur.Close < mid && cur.Close > prev.Open
}

// ============================================================================
// THREE CANDLE PATTERNS
// ============================================================================

func morningStar(a, b, c market.Candle) bool {
	if !a.Bearish() || !c.Bullish() {
		return false
	}
	return b.Body() < a.Body()*0.3 &&
		b.Body() < c.Body()*0.3 &&
		c.Close > (a.Open+a.Close)/2
}

func eveningStar(a, b, c market.Candle) bool {
	if !a.Bullish() || !c.Bearish() {
		return false
	}
	return b.Body() < a.Body()*0.3 &&
		b.Body() < c.Body()*0.3 &&
		c.Close < (a.Open+a.Close)/2
}

// each candle opens inside the previous body and closes higher
func threeWhiteSoldiers(a, b, c market.Candle) bool {
	if !a.Bullish() || !b.Bullish() || !c.Bullish() {
		return false
	}
	return b.Open > a.Open && b.Open < a.Close &&
		c.Open > b.Open && c.Open < b.Close &&
		b.Close > a.Close && c.Close > b.Close
}

func threeBlackCrows(a, b, c market.Candle) bool {
	if !a.Bearish() || !b.Bearish() || !c.Bearish() {
		return false
	}
	return b.Open < a.Open && b.Open > a.Close &&
		c.Open < b.Open && c.Open > b.Close &&
		b.Close < a.Close && c.Close < b.Close
}

// ============================================================================
// DETECTION
// ============================================================================

// priorTrend compares the close before the pattern bar with the close
// lookback bars earlier.
func priorTrend(candles []market.Candle, lookback int) market.Bias {
	end := len(candles) - 2
	start := end - lookback
	if lookback <= 0 || start < 0 {
		return market.Neutral
	}
	switch d := candles[end].Close - candles[start].Close; {
	case d > 0:
		return market.Bullish
	case d < 0:
		return market.Bearish
	default:
		return market.Neutral
	}
}

func candleMatch(name string, dir market.Bias, strength float64) Match {
	return Match{Name: name, Kind: KindCandlestick, Direction: dir, Strength: strength}
}

// Candlesticks examines the last one to three candles. Single-candle
// reversal shapes are named by the trend of the preceding lookback bars:
// a hammer after a rise is a hanging man, an inverted hammer after a rise
// is a shooting star.
func Candlesticks(candles []market.Candle, lookback int) []Match {
	n := len(candles)
	if n == 0 {
		return nil
	}

	var out []Match
	cur := candles[n-1]

	if n >= 3 {
		a, b := candles[n-3], candles[n-2]
		switch {
		case threeWhiteSoldiers(a, b, cur):
			out = append(out, candleMatch("Three White Soldiers", market.Bullish, StrengthSoldiers))
		case threeBlackCrows(a, b, cur):
			out = append(out, candleMatch("Three Black Crows", market.Bearish, StrengthSoldiers))
		case morningStar(a, b, cur):
			out = append(out, candleMatch("Morning Star", market.Bullish, StrengthStar))
		case eveningStar(a, b, cur):
			out = append(out, candleMatch("Evening Star", market.Bearish, StrengthStar))
		}
	}

	if n >= 2 {
		prev := candles[n-2]
		switch {
		case bullishEngulfing(prev, cur):
			out = append(out, candleMatch("Bullish Engulfing", market.Bullish, StrengthEngulfing))
		case bearishEngulfing(prev, cur):
			out = append(out, candleMatch("Bearish Engulfing", market.Bearish, StrengthEngulfing))
		case piercing(prev, cur):
			out = append(out, candleMatch("Piercing Line", market.Bullish, StrengthPiercing))
		case darkCloud(prev, cur):
			out = append(out, candleMatch("Dark Cloud Cover", market.Bearish, StrengthPiercing))
		}
	}

	trend := priorTrend(candles, lookback)
	switch {
	case doji(cur):
		if n >= 2 {
			prev := candles[n-2]
			switch {
			case prev.Bullish():
				out = append(out, candleMatch("Doji", market.Bearish, StrengthDoji))
			case prev.Bearish():
				out = append(out, candleMatch("Doji", market.Bullish, StrengthDoji))
			}
		}
	case hammerShape(cur):
		if trend == market.Bullish {
			out = append(out, candleMatch("Hanging Man", market.Bearish, StrengthInvertedShape))
		} else {
			out = append(out, candleMatch("Hammer", market.Bullish, StrengthHammer))
		}
	case invertedShape(cur):
		if trend == market.Bullish {
			out = append(out, candleMatch("Shooting Star", market.Bearish, StrengthHammer))
		} else {
			out = append(out, candleMatch("Inverted Hammer", market.Bullish, StrengthInvertedShape))
		}
	}

	return out
}
