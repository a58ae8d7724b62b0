package structure

import (
	"github.com/rustyeddy/marketlab/indicators"
	"github.com/rustyeddy/marketlab/market"
)

type Config struct {
	SwingLength    int     `json:"swing_length" yaml:"swing_length" default:"5" validate:"gte=1"`
	InternalLength int     `json:"internal_length" yaml:"internal_length" default:"3" validate:"gte=1"`
	FVGThreshold   float64 `json:"fvg_threshold" yaml:"fvg_threshold" default:"0.1" validate:"gte=0"`
	ATRPeriod      int     `json:"atr_period" yaml:"atr_period" default:"14" validate:"gte=1"`
}

func DefaultConfig() Config {
	return Config{SwingLength: 5, InternalLength: 3, FVGThreshold: 0.10, ATRPeriod: 14}
}

// Analysis bundles the structure readings for a series.
type Analysis struct {
	Swing         Result         `json:"swing"`
	Internal      Result         `json:"internal"`
	OrderBlocks   []OrderBlock   `json:"order_blocks,omitempty"`
	FairValueGaps []FairValueGap `json:"fair_value_gaps,omitempty"`
	Zones         Zones          `json:"zones"`
	Zone          Zone           `json:"zone"`
}

// Analyze runs the swing and internal structure passes, collects order
// blocks and fair value gaps, and places the last close in the zone of the
// latest swing range (the whole series range when no swings exist yet).
func Analyze(candles []market.Candle, cfg Config) Analysis {
	a := Analysis{
		Swing:    Result{Trend: market.Neutral},
		Internal: Result{Trend: market.Neutral},
		Zone:     ZoneNone,
	}
	if len(candles) == 0 {
		return a
	}

	swings := FindSwings(candles, cfg.SwingLength)
	internal := FindSwings(candles, cfg.InternalLength)

	a.Swing = Classify(candles, swings, cfg.SwingLength)
	a.Internal = Classify(candles, internal, cfg.InternalLength)
	a.OrderBlocks = OrderBlocks(candles, swings, indicators.ATR(candles, cfg.ATRPeriod))
	a.FairValueGaps = FairValueGaps(candles, cfg.FVGThreshold)

	hi, okH := latest(swings, SwingHigh)
	lo, okL := latest(swings, SwingLow)
	top, bottom := hi.Price, lo.Price
	if !okH || !okL || top <= bottom {
		top, bottom = candles[0].High, candles[0].Low
		for _, c := range candles[1:] {
			top = max(top, c.High)
			bottom = min(bottom, c.Low)
		}
	}
	a.Zones = NewZones(top, bottom)
	a.Zone = a.Zones.Classify(candles[len(candles)-1].Close)
	return a
}
