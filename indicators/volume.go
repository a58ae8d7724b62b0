package indicators

import "github.com/rustyeddy/marketlab/market"

// VolumeRatio is the last volume over the mean of the previous period
// volumes. It returns 1 when there is not enough history or the mean is 0.
func VolumeRatio(candles []market.Candle, period int) float64 {
	if period <= 0 || len(candles) < period+1 {
		return 1
	}
	prev := market.Volumes(candles[len(candles)-period-1 : len(candles)-1])
	avg := mean(prev)
	if avg == 0 {
		return 1
	}
	return candles[len(candles)-1].Volume / avg
}

// Flow classifies recent volume as accumulation or distribution.
type Flow string

const (
	FlowNeutral      Flow = "neutral"
	FlowAccumulation Flow = "accumulation"
	FlowDistribution Flow = "distribution"
)

const flowDominance = 1.5

// AccumulationDistribution compares volume on up candles with volume on
// down candles over the last period bars. One side has to exceed the other
// by 1.5× to count.
func AccumulationDistribution(candles []market.Candle, period int) Flow {
	if period <= 0 || len(candles) < period {
		return FlowNeutral
	}

	var up, down float64
	for _, c := range candles[len(candles)-period:] {
		switch {
		case c.Bullish():
			up += c.Volume
		case c.Bearish():
			down += c.Volume
		}
	}

	switch {
	case up > 0 && up > flowDominance*down:
		return FlowAccumulation
	case down > 0 && down > flowDominance*up:
		return FlowDistribution
	default:
		return FlowNeutral
	}
}
