package signal

import (
	"github.com/rustyeddy/marketlab/indicators"
	"github.com/rustyeddy/marketlab/patterns"
	"github.com/rustyeddy/marketlab/structure"
)

// Config holds the fusion thresholds and the settings of the analyzers the
// engine runs before fusing.
type Config struct {
	RSIOversold         float64 `json:"rsi_oversold" yaml:"rsi_oversold" default:"30" validate:"gt=0,lt=100"`
	RSIOverbought       float64 `json:"rsi_overbought" yaml:"rsi_overbought" default:"70" validate:"gt=0,lt=100,gtfield=RSIOversold"`
	VolumeSpike         float64 `json:"volume_spike" yaml:"volume_spike" default:"2" validate:"gt=0"`
	MomentumVolume      float64 `json:"momentum_volume" yaml:"momentum_volume" default:"1.5" validate:"gt=0"`
	MomentumChangePct   float64 `json:"momentum_change_pct" yaml:"momentum_change_pct" default:"5" validate:"gt=0"`
	SMADeviationPct     float64 `json:"sma_deviation_pct" yaml:"sma_deviation_pct" default:"5" validate:"gt=0"`
	SentimentConfidence float64 `json:"sentiment_confidence" yaml:"sentiment_confidence" default:"0.6" validate:"gte=0,lte=1"`
	ProximityPct        float64 `json:"proximity_pct" yaml:"proximity_pct" default:"0.01" validate:"gte=0"`

	TopN        int `json:"top_n" yaml:"top_n" default:"5" validate:"gte=1"`
	Concurrency int `json:"concurrency" yaml:"concurrency" default:"8" validate:"gte=1"`

	Indicators indicators.Config `json:"-" yaml:"-"`
	Patterns   patterns.Config   `json:"-" yaml:"-"`
	Structure  structure.Config  `json:"-" yaml:"-"`
}

func DefaultConfig() Config {
	return Config{
		RSIOversold:         30,
		RSIOverbought:       70,
		VolumeSpike:         2,
		MomentumVolume:      1.5,
		MomentumChangePct:   5,
		SMADeviationPct:     5,
		SentimentConfidence: 0.6,
		ProximityPct:        0.01,
		TopN:                5,
		Concurrency:         8,
		Indicators:          indicators.DefaultConfig(),
		Patterns:            patterns.DefaultConfig(),
		Structure:           structure.DefaultConfig(),
	}
}
