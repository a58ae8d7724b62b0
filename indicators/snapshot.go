package indicators

import (
	"math"

	"github.com/rustyeddy/marketlab/market"
)

// Snapshot is every indicator reading at the latest bar plus the base vote
// the signal engine starts from.
type Snapshot struct {
	Price        float64          `json:"price"`
	RSI          float64          `json:"rsi"`
	Bollinger    Bands            `json:"bollinger"`
	MACD         MACD             `json:"macd"`
	UltimateMACD UltimateMACD     `json:"ultimate_macd"`
	EMA          EMASet           `json:"ema"`
	Stochastic   Stoch            `json:"stochastic"`
	ADX          DirectionalIndex `json:"adx"`
	ATR          float64          `json:"atr"`
	Squeeze      Squeeze          `json:"squeeze"`
	VolumeRatio  float64          `json:"volume_ratio"`
	Flow         Flow             `json:"flow"`
	SMA          float64          `json:"sma"`
	SMADeviation float64          `json:"sma_deviation"`
	Vote         Vote             `json:"vote"`
}

// Vote is the majority reading across the core oscillators.
type Vote struct {
	Direction market.Bias `json:"direction"`
	Strength  float64     `json:"strength"`
	Bullish   int         `json:"bullish"`
	Bearish   int         `json:"bearish"`
}

// voters is the number of rules that can cast a vote in Analyze.
const voters = 6

// Analyze computes the full snapshot for the latest bar.
func Analyze(candles []market.Candle, cfg Config) Snapshot {
	closes := market.Closes(candles)

	s := Snapshot{
		Price:        last(closes),
		RSI:          RSI(closes, cfg.RSIPeriod),
		Bollinger:    Bollinger(closes, cfg.BBPeriod, cfg.BBStdDev),
		MACD:         ClassicMACD(closes, cfg.MACDFast, cfg.MACDSlow, cfg.MACDSignal),
		UltimateMACD: NewUltimateMACD(closes, cfg.MACDFast, cfg.MACDSlow, cfg.MACDSignal),
		EMA:          NewEMASet(closes, cfg.EMAFast, cfg.EMAMid, cfg.EMASlow),
		Stochastic:   Stochastic(candles, cfg.StochK, cfg.StochSmooth, cfg.StochD),
		ADX:          ADX(candles, cfg.ADXPeriod),
		ATR:          ATR(candles, cfg.ATRPeriod),
		Squeeze:      NewSqueeze(candles, cfg.Squeeze),
		VolumeRatio:  VolumeRatio(candles, cfg.VolumePeriod),
		Flow:         AccumulationDistribution(candles, cfg.FlowPeriod),
		SMA:          SMA(closes, cfg.SMAPeriod),
		SMADeviation: SMADeviation(closes, cfg.SMAPeriod),
	}
	s.Vote = s.vote()
	return s
}

func (s Snapshot) vote() Vote {
	var v Vote
	cast := func(bull, bear bool) {
		if bull {
			v.Bullish++
		}
		if bear {
			v.Bearish++
		}
	}

	cast(s.RSI < 30, s.RSI > 70)
	cast(s.Price < s.Bollinger.Lower, s.Price > s.Bollinger.Upper)
	cast(s.MACD.MACD > s.MACD.Signal, s.MACD.MACD < s.MACD.Signal)
	cast(s.EMA.Alignment(s.Price))
	cast(s.Stochastic.K < 20, s.Stochastic.K > 80)
	if s.ADX.ADX > 25 {
		cast(s.ADX.PlusDI > s.ADX.MinusDI, s.ADX.MinusDI > s.ADX.PlusDI)
	}

	diff := v.Bullish - v.Bearish
	switch {
	case diff > 0:
		v.Direction = market.Bullish
	case diff < 0:
		v.Direction = market.Bearish
	default:
		v.Direction = market.Neutral
	}
	v.Strength = 0.5 + 0.5*math.Abs(float64(diff))/voters
	return v
}
