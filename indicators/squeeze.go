package indicators

import (
	talib "github.com/markcheno/go-talib"

	"github.com/rustyeddy/marketlab/market"
)

// SqueezeConfig configures the Bollinger/Keltner squeeze.
type SqueezeConfig struct {
	BBLength int     `json:"bb_length" yaml:"bb_length" default:"20" validate:"gte=2"`
	BBMult   float64 `json:"bb_mult" yaml:"bb_mult" default:"2" validate:"gt=0"`
	KCLength int     `json:"kc_length" yaml:"kc_length" default:"20" validate:"gte=2"`
	KCMult   float64 `json:"kc_mult" yaml:"kc_mult" default:"1.5" validate:"gt=0"`
}

func DefaultSqueezeConfig() SqueezeConfig {
	return SqueezeConfig{BBLength: 20, BBMult: 2, KCLength: 20, KCMult: 1.5}
}

type SqueezeState string

const (
	NoSqueeze  SqueezeState = "none"
	SqueezeOn  SqueezeState = "on"
	SqueezeOff SqueezeState = "off"
)

type MomentumColor string

const (
	MomentumNone   MomentumColor = ""
	MomentumLime   MomentumColor = "lime"   // > 0 and rising
	MomentumGreen  MomentumColor = "green"  // > 0 and falling
	MomentumRed    MomentumColor = "red"    // <= 0 and falling
	MomentumMaroon MomentumColor = "maroon" // <= 0 and rising
)

// Squeeze is the squeeze momentum reading at the last bar.
type Squeeze struct {
	State        SqueezeState  `json:"state"`
	Momentum     float64       `json:"momentum"`
	PrevMomentum float64       `json:"prev_momentum"`
	Color        MomentumColor `json:"color,omitempty"`
}

// NewSqueeze compares Bollinger Bands with a Keltner Channel built on the
// mean bar range. Momentum is the linear regression of
// close - avg(avg(highest, lowest), sma) over the Keltner length.
// It needs 2×KCLength candles; shorter input gives NoSqueeze.
func NewSqueeze(candles []market.Candle, cfg SqueezeConfig) Squeeze {
	n := len(candles)
	if cfg.BBLength <= 1 || cfg.KCLength <= 1 || n < 2*cfg.KCLength || n < cfg.BBLength {
		return Squeeze{State: NoSqueeze}
	}

	closes := market.Closes(candles)
	bb := Bollinger(closes, cfg.BBLength, cfg.BBMult)

	ranges := make([]float64, n)
	for i, c := range candles {
		ranges[i] = c.Range()
	}
	ma := SMA(closes, cfg.KCLength)
	rangeMA := SMA(ranges, cfg.KCLength)
	upperKC := ma + rangeMA*cfg.KCMult
	lowerKC := ma - rangeMA*cfg.KCMult

	s := Squeeze{State: NoSqueeze}
	switch {
	case bb.Lower > lowerKC && bb.Upper < upperKC:
		s.State = SqueezeOn
	case bb.Lower < lowerKC && bb.Upper > upperKC:
		s.State = SqueezeOff
	}

	length := cfg.KCLength
	highs, lows := market.Highs(candles), market.Lows(candles)
	vals := make([]float64, 0, n-length+1)
	for i := length - 1; i < n; i++ {
		hh := highest(highs[i-length+1 : i+1])
		ll := lowest(lows[i-length+1 : i+1])
		sma := mean(closes[i-length+1 : i+1])
		vals = append(vals, closes[i]-((hh+ll)/2+sma)/2)
	}

	reg := talib.LinearReg(vals, length)
	s.Momentum = reg[len(reg)-1]
	s.PrevMomentum = reg[len(reg)-2]

	switch {
	case s.Momentum > 0 && s.Momentum > s.PrevMomentum:
		s.Color = MomentumLime
	case s.Momentum > 0:
		s.Color = MomentumGreen
	case s.Momentum < s.PrevMomentum:
		s.Color = MomentumRed
	default:
		s.Color = MomentumMaroon
	}

	return s
}
