package signal

import (
	"fmt"
	"math"
	"time"

	"github.com/rustyeddy/marketlab/indicators"
	"github.com/rustyeddy/marketlab/market"
	"github.com/rustyeddy/marketlab/patterns"
	"github.com/rustyeddy/marketlab/structure"
)

// Input is everything Fuse looks at. Nil stages are skipped.
type Input struct {
	Symbol    string
	Market    market.Snapshot
	Time      time.Time
	Technical *indicators.Snapshot
	Patterns  []patterns.Match
	Structure *structure.Analysis
	Sentiment *market.Sentiment
}

// Rule boosts. Each multiplies the running confidence when its condition
// agrees with the direction at that point in the chain.
const (
	boostRSI          = 1.2
	boostBollinger    = 1.15
	boostMACDCross    = 1.2
	boostMACDColor    = 1.1
	boostMACDDiverge  = 1.15
	boostVolumeSpike  = 1.1
	boostFlow         = 1.1
	boostCandlestick  = 1.15
	boostChart        = 1.1
	boostSentiment    = 1.15
	boostSMADeviation = 1.1
	boostMomentum     = 1.15
	boostSqueezeFire  = 1.15
	dampSqueezeOn     = 0.8
	boostCHoCH        = 1.25
	boostBOS          = 1.2
	boostInternal     = 1.1
	boostOrderBlock   = 1.15
	boostFVG          = 1.1
	boostZone         = 1.15
)

type fuser struct {
	cfg     Config
	in      Input
	dir     Direction
	conf    float64
	reasons []string
}

func (f *fuser) reason(format string, args ...any) {
	f.reasons = append(f.reasons, fmt.Sprintf(format, args...))
}

// boost applies m when want matches the current direction.
func (f *fuser) boost(want Direction, m float64, format string, args ...any) {
	if want == Neutral || want != f.dir {
		return
	}
	f.conf *= m
	f.reason(format, args...)
}

// override sets the direction and applies m.
func (f *fuser) override(dir Direction, m float64, format string, args ...any) {
	f.dir = dir
	f.conf *= m
	f.reason(format, args...)
}

// Fuse runs the rule chain in a fixed order. Later rules that set the
// direction win over earlier ones, and every boost is judged against the
// direction at the time the rule runs. Confidence is clamped to [0, 1].
func Fuse(in Input, cfg Config) TradingSignal {
	f := &fuser{cfg: cfg, in: in, dir: Neutral, conf: 0.5}

	f.baseVote()
	f.rsiExtremes()
	f.bollingerBreakout()
	f.ultimateMACD()
	f.volume()
	f.patternAlignment()
	f.sentiment()
	f.smaDeviation()
	f.momentum()
	f.squeeze()
	f.smartMoney()
	f.orderBlocks()
	f.fairValueGaps()
	f.premiumDiscount()

	price := in.Market.Price
	if price == 0 && in.Technical != nil {
		price = in.Technical.Price
	}

	return TradingSignal{
		Symbol:                in.Symbol,
		Direction:             f.dir,
		Confidence:            math.Max(0, math.Min(f.conf, 1)),
		Price:                 price,
		PriceChangePercent24h: in.Market.PriceChangePercent24h,
		Volume:                in.Market.Volume,
		QuoteVolume:           in.Market.QuoteVolume,
		Reasons:               f.reasons,
		Time:                  in.Time,
		Technical:             in.Technical,
		Patterns:              in.Patterns,
		Structure:             in.Structure,
		Sentiment:             in.Sentiment,
	}
}

func (f *fuser) baseVote() {
	t := f.in.Technical
	if t == nil {
		f.reason("No technical data")
		return
	}
	f.dir = fromBias(t.Vote.Direction)
	f.conf = t.Vote.Strength
	f.reason("Technical vote %s (%d bullish, %d bearish)", t.Vote.Direction, t.Vote.Bullish, t.Vote.Bearish)
}

func (f *fuser) rsiExtremes() {
	t := f.in.Technical
	if t == nil {
		return
	}
	switch {
	case t.RSI < f.cfg.RSIOversold:
		f.override(Buy, boostRSI, "RSI oversold (%.1f)", t.RSI)
	case t.RSI > f.cfg.RSIOverbought:
		f.override(Sell, boostRSI, "RSI overbought (%.1f)", t.RSI)
	}
}

func (f *fuser) bollingerBreakout() {
	t := f.in.Technical
	if t == nil || t.Bollinger.Upper <= t.Bollinger.Lower {
		return
	}
	switch {
	case t.Price < t.Bollinger.Lower:
		f.override(Buy, boostBollinger, "Price below lower Bollinger band (%.4g)", t.Bollinger.Lower)
	case t.Price > t.Bollinger.Upper:
		f.override(Sell, boostBollinger, "Price above upper Bollinger band (%.4g)", t.Bollinger.Upper)
	}
}

func (f *fuser) ultimateMACD() {
	t := f.in.Technical
	if t == nil {
		return
	}
	m := t.UltimateMACD
	switch m.Cross {
	case indicators.CrossBullish:
		f.override(Buy, boostMACDCross, "Ultimate MACD bullish cross")
	case indicators.CrossBearish:
		f.override(Sell, boostMACDCross, "Ultimate MACD bearish cross")
	}
	switch m.Color {
	case indicators.ColorAqua:
		f.boost(Buy, boostMACDColor, "MACD histogram rising above zero")
	case indicators.ColorRed:
		f.boost(Sell, boostMACDColor, "MACD histogram falling below zero")
	}
	f.boost(fromBias(m.Divergence), boostMACDDiverge, "MACD %s divergence", m.Divergence)
}

func (f *fuser) volume() {
	t := f.in.Technical
	if t == nil {
		return
	}
	if t.VolumeRatio >= f.cfg.VolumeSpike {
		f.boost(f.dir, boostVolumeSpike, "Volume spike (%.1f× average)", t.VolumeRatio)
	}
	switch t.Flow {
	case indicators.FlowAccumulation:
		f.boost(Buy, boostFlow, "Volume shows accumulation")
	case indicators.FlowDistribution:
		f.boost(Sell, boostFlow, "Volume shows distribution")
	}
}

func (f *fuser) patternAlignment() {
	want := f.dir.bias()
	if want == market.Neutral {
		return
	}
	if m, ok := strongest(f.in.Patterns, patterns.KindCandlestick, want); ok {
		f.boost(f.dir, boostCandlestick, "%s pattern (%.2f)", m.Name, m.Strength)
	}
	if m, ok := strongest(f.in.Patterns, patterns.KindChart, want); ok {
		f.boost(f.dir, boostChart, "%s (%.2f)", m.Name, m.Strength)
	}
}

func strongest(matches []patterns.Match, kind patterns.Kind, dir market.Bias) (patterns.Match, bool) {
	var best patterns.Match
	found := false
	for _, m := range matches {
		if m.Kind != kind || m.Direction != dir {
			continue
		}
		if !found || m.Strength > best.Strength {
			best, found = m, true
		}
	}
	return best, found
}

func (f *fuser) sentiment() {
	s := f.in.Sentiment
	if s == nil {
		return
	}
	if s.Confidence < f.cfg.SentimentConfidence {
		return
	}
	var want Direction
	switch s.Overall {
	case market.SentimentBullish:
		want = Buy
	case market.SentimentBearish:
		want = Sell
	default:
		return
	}
	if want == f.dir {
		f.boost(want, boostSentiment, "News sentiment %s (%.0f%% confidence)", s.Overall, s.Confidence*100)
		return
	}
	if f.dir != Neutral {
		f.reason("News sentiment %s conflicts with signal", s.Overall)
	}
}

func (f *fuser) smaDeviation() {
	t := f.in.Technical
	if t == nil || t.SMA == 0 {
		return
	}
	switch {
	case t.SMADeviation <= -f.cfg.SMADeviationPct:
		f.boost(Buy, boostSMADeviation, "Price %.1f%% below moving average", -t.SMADeviation)
	case t.SMADeviation >= f.cfg.SMADeviationPct:
		f.boost(Sell, boostSMADeviation, "Price %.1f%% above moving average", t.SMADeviation)
	}
}

// momentum overrides the direction when a large 24h move comes with
// elevated volume.
func (f *fuser) momentum() {
	t := f.in.Technical
	if t == nil || t.VolumeRatio < f.cfg.MomentumVolume {
		return
	}
	change := f.in.Market.PriceChangePercent24h
	switch {
	case change >= f.cfg.MomentumChangePct:
		f.override(Buy, boostMomentum, "Strong upward momentum (%+.1f%%) on volume", change)
	case change <= -f.cfg.MomentumChangePct:
		f.override(Sell, boostMomentum, "Strong downward momentum (%+.1f%%) on volume", change)
	}
}

func (f *fuser) squeeze() {
	t := f.in.Technical
	if t == nil {
		return
	}
	switch t.Squeeze.State {
	case indicators.SqueezeOn:
		f.conf *= dampSqueezeOn
		f.reason("Squeeze on, waiting for volatility expansion")
	case indicators.SqueezeOff:
		switch t.Squeeze.Color {
		case indicators.MomentumLime:
			f.boost(Buy, boostSqueezeFire, "Squeeze fired with rising bullish momentum")
		case indicators.MomentumRed:
			f.boost(Sell, boostSqueezeFire, "Squeeze fired with falling bearish momentum")
		}
	}
}

func (f *fuser) smartMoney() {
	s := f.in.Structure
	if s == nil {
		return
	}
	sw := s.Swing
	switch {
	case sw.BullishCHoCH:
		f.boost(Buy, boostCHoCH, "Bullish change of character")
	case sw.BearishCHoCH:
		f.boost(Sell, boostCHoCH, "Bearish change of character")
	}
	switch {
	case sw.BullishBOS:
		f.boost(Buy, boostBOS, "Bullish break of structure")
	case sw.BearishBOS:
		f.boost(Sell, boostBOS, "Bearish break of structure")
	}
	f.boost(fromBias(s.Internal.Trend), boostInternal, "Internal structure %s", s.Internal.Trend)
}

func (f *fuser) orderBlocks() {
	s := f.in.Structure
	want := f.dir.bias()
	if s == nil || want == market.Neutral {
		return
	}
	price := f.price()
	for i := len(s.OrderBlocks) - 1; i >= 0; i-- {
		ob := s.OrderBlocks[i]
		if ob.Type == want && ob.Distance(price) <= f.cfg.ProximityPct {
			f.boost(f.dir, boostOrderBlock, "Price at %s order block %.4g-%.4g", ob.Type, ob.Bottom, ob.Top)
			return
		}
	}
}

func (f *fuser) fairValueGaps() {
	s := f.in.Structure
	want := f.dir.bias()
	if s == nil || want == market.Neutral {
		return
	}
	price := f.price()
	for i := len(s.FairValueGaps) - 1; i >= 0; i-- {
		g := s.FairValueGaps[i]
		if g.Filled || g.Type != want {
			continue
		}
		if g.Distance(price) <= f.cfg.ProximityPct {
			f.boost(f.dir, boostFVG, "Price near %s fair value gap %.4g-%.4g", g.Type, g.Bottom, g.Top)
			return
		}
	}
}

func (f *fuser) premiumDiscount() {
	s := f.in.Structure
	if s == nil {
		return
	}
	switch s.Zone {
	case structure.ZoneDiscount:
		f.boost(Buy, boostZone, "Price in discount zone")
	case structure.ZonePremium:
		f.boost(Sell, boostZone, "Price in premium zone")
	}
}

func (f *fuser) price() float64 {
	if f.in.Market.Price != 0 {
		return f.in.Market.Price
	}
	if f.in.Technical != nil {
		return f.in.Technical.Price
	}
	return 0
}
