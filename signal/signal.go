// Package signal fuses indicator, pattern, structure and sentiment readings
// into one directional trading signal with a bounded confidence and an
// ordered reason trail.
package signal

import (
	"time"

	"github.com/rustyeddy/marketlab/indicators"
	"github.com/rustyeddy/marketlab/market"
	"github.com/rustyeddy/marketlab/patterns"
	"github.com/rustyeddy/marketlab/structure"
)

type Direction string

const (
	Buy     Direction = "buy"
	Sell    Direction = "sell"
	Neutral Direction = "neutral"
)

func (d Direction) String() string { return string(d) }

// fromBias maps bullish to buy and bearish to sell.
func fromBias(b market.Bias) Direction {
	switch b {
	case market.Bullish:
		return Buy
	case market.Bearish:
		return Sell
	default:
		return Neutral
	}
}

// bias is the inverse of fromBias.
func (d Direction) bias() market.Bias {
	switch d {
	case Buy:
		return market.Bullish
	case Sell:
		return market.Bearish
	default:
		return market.Neutral
	}
}

// TradingSignal is the fused result for one symbol. The stage payloads are
// nil when that stage had no input.
type TradingSignal struct {
	Symbol                string               `json:"symbol"`
	Direction             Direction            `json:"direction"`
	Confidence            float64              `json:"confidence"`
	Price                 float64              `json:"price"`
	PriceChangePercent24h float64              `json:"price_change_percent_24h"`
	Volume                float64              `json:"volume"`
	QuoteVolume           float64              `json:"quote_volume"`
	Reasons               []string             `json:"reasons"`
	Time                  time.Time            `json:"time"`
	Technical             *indicators.Snapshot `json:"technical,omitempty"`
	Patterns              []patterns.Match     `json:"patterns,omitempty"`
	Structure             *structure.Analysis  `json:"structure,omitempty"`
	Sentiment             *market.Sentiment    `json:"sentiment,omitempty"`
}

// Score ranks signals in a batch: confidence × volume × price.
func (s TradingSignal) Score() float64 {
	return s.Confidence * s.Volume * s.Price
}

// Signals is the batch result, each side sorted by Score descending.
type Signals struct {
	Buy  []TradingSignal `json:"buy_signals"`
	Sell []TradingSignal `json:"sell_signals"`
}
