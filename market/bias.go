package market

// Bias is the directional reading of an indicator, pattern or structure.
type Bias string

const (
	Bullish Bias = "bullish"
	Bearish Bias = "bearish"
	Neutral Bias = "neutral"
)

// Opposite flips bullish and bearish; neutral stays neutral.
func (b Bias) Opposite() Bias {
	switch b {
	case Bullish:
		return Bearish
	case Bearish:
		return Bullish
	default:
		return Neutral
	}
}
