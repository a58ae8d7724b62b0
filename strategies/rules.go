package strategies

import (
	"fmt"

	"github.com/markcheno/go-talib"

	"github.com/rustyeddy/marketlab/indicators"
	"github.com/rustyeddy/marketlab/market"
)

// predicates adapts two precomputed slices of flags.
type predicates struct {
	entry, exit []bool
}

func (p predicates) Entry(i int) bool { return i >= 0 && i < len(p.entry) && p.entry[i] }
func (p predicates) Exit(i int) bool  { return i >= 0 && i < len(p.exit) && p.exit[i] }

func newPredicates(n int) predicates {
	return predicates{entry: make([]bool, n), exit: make([]bool, n)}
}

func invalid(kind, format string, args ...any) error {
	return fmt.Errorf("%w: %s: %s", market.ErrInvalidParameter, kind, fmt.Sprintf(format, args...))
}

// ============================================================================
// RSI MEAN REVERSION
// ============================================================================

// RSI buys when RSI drops below oversold and exits above overbought.
type RSI struct{}

func (RSI) Name() string        { return "rsi" }
func (RSI) Description() string { return "RSI mean reversion: enter below oversold, exit above overbought" }

func (RSI) Defaults() Params {
	return Params{"period": 14, "oversold": 30, "overbought": 70}
}

func (r RSI) Prepare(candles []market.Candle, p Params) (Predicates, error) {
	period := p.Int("period", 14)
	lo, hi := p.Get("oversold", 30), p.Get("overbought", 70)
	if period < 2 {
		return nil, invalid(r.Name(), "period %d < 2", period)
	}
	if lo <= 0 || hi >= 100 || lo >= hi {
		return nil, invalid(r.Name(), "thresholds %g/%g", lo, hi)
	}

	rsi := indicators.RSISeries(market.Closes(candles), period)
	out := newPredicates(len(candles))
	for i, v := range rsi {
		if i < period {
			continue
		}
		out.entry[i] = v < lo
		out.exit[i] = v > hi
	}
	return out, nil
}

// ============================================================================
// EMA CROSS
// ============================================================================

// EMACross enters when the fast EMA crosses above the slow EMA and exits on
// the cross back below.
type EMACross struct{}

func (EMACross) Name() string        { return "ema-cross" }
func (EMACross) Description() string { return "fast/slow EMA crossover" }

func (EMACross) Defaults() Params {
	return Params{"fast": 9, "slow": 21}
}

func (e EMACross) Prepare(candles []market.Candle, p Params) (Predicates, error) {
	fast, slow := p.Int("fast", 9), p.Int("slow", 21)
	if fast < 1 || slow <= fast {
		return nil, invalid(e.Name(), "need 1 <= fast < slow, got %d/%d", fast, slow)
	}

	closes := market.Closes(candles)
	out := newPredicates(len(candles))
	f, s := indicators.EMASeries(closes, fast), indicators.EMASeries(closes, slow)
	if f == nil || s == nil {
		return out, nil
	}
	for i := slow; i < len(closes); i++ {
		prev, cur := f[i-1]-s[i-1], f[i]-s[i]
		out.entry[i] = prev <= 0 && cur > 0
		out.exit[i] = prev >= 0 && cur < 0
	}
	return out, nil
}

// ============================================================================
// EMA CROSS WITH ADX GATE
// ============================================================================

// EMACrossADX takes the EMA cross entry only when the trend is strong
// enough: ADX at or above adx_threshold and, with require_di set, +DI above
// -DI. Entries wait until ADX has a full window. Exits are the ungated
// cross back below so a weak trend never traps an open position.
type EMACrossADX struct{}

func (EMACrossADX) Name() string        { return "ema-cross-adx" }
func (EMACrossADX) Description() string { return "fast/slow EMA crossover gated by ADX trend strength" }

func (EMACrossADX) Defaults() Params {
	return Params{"fast": 9, "slow": 21, "adx_period": 14, "adx_threshold": 20, "require_di": 0}
}

func (e EMACrossADX) Prepare(candles []market.Candle, p Params) (Predicates, error) {
	period, threshold := p.Int("adx_period", 14), p.Get("adx_threshold", 20)
	requireDI := p.Get("require_di", 0) != 0
	if period < 1 {
		return nil, invalid(e.Name(), "adx_period %d < 1", period)
	}
	if threshold < 0 || threshold > 100 {
		return nil, invalid(e.Name(), "adx_threshold %g outside [0, 100]", threshold)
	}

	cross, err := EMACross{}.Prepare(candles, p)
	if err != nil {
		return nil, err
	}
	base := cross.(predicates)
	for i, ok := range base.entry {
		if !ok {
			continue
		}
		if i < period {
			base.entry[i] = false
			continue
		}
		di := indicators.ADX(candles[:i+1], period)
		base.entry[i] = di.ADX >= threshold && (!requireDI || di.PlusDI > di.MinusDI)
	}
	return base, nil
}

// ============================================================================
// BOLLINGER REVERSION
// ============================================================================

// Bollinger buys a close below the lower band and exits at the middle band.
type Bollinger struct{}

func (Bollinger) Name() string        { return "bollinger" }
func (Bollinger) Description() string { return "enter below the lower Bollinger band, exit at the middle band" }

func (Bollinger) Defaults() Params {
	return Params{"period": 20, "stddev": 2}
}

func (b Bollinger) Prepare(candles []market.Candle, p Params) (Predicates, error) {
	period, k := p.Int("period", 20), p.Get("stddev", 2)
	if period < 2 || k <= 0 {
		return nil, invalid(b.Name(), "period %d, stddev %g", period, k)
	}

	closes := market.Closes(candles)
	out := newPredicates(len(candles))
	if len(closes) < period {
		return out, nil
	}
	_, middle, lower := talib.BBands(closes, period, k, k, talib.SMA)
	for i := period - 1; i < len(closes); i++ {
		out.entry[i] = closes[i] < lower[i]
		out.exit[i] = closes[i] >= middle[i]
	}
	return out, nil
}

// ============================================================================
// MACD CROSS
// ============================================================================

// MACD enters when the MACD line crosses above its signal line and exits on
// the cross back below.
type MACD struct{}

func (MACD) Name() string        { return "macd" }
func (MACD) Description() string { return "MACD/signal line crossover" }

func (MACD) Defaults() Params {
	return Params{"fast": 12, "slow": 26, "signal": 9}
}

func (m MACD) Prepare(candles []market.Candle, p Params) (Predicates, error) {
	fast, slow, signal := p.Int("fast", 12), p.Int("slow", 26), p.Int("signal", 9)
	if fast < 2 || slow <= fast || signal < 1 {
		return nil, invalid(m.Name(), "fast %d, slow %d, signal %d", fast, slow, signal)
	}

	closes := market.Closes(candles)
	out := newPredicates(len(candles))
	if len(closes) < slow+signal {
		return out, nil
	}
	line, sig, _ := talib.Macd(closes, fast, slow, signal)
	for i := slow + signal - 1; i < len(closes); i++ {
		prev, cur := line[i-1]-sig[i-1], line[i]-sig[i]
		out.entry[i] = prev <= 0 && cur > 0
		out.exit[i] = prev >= 0 && cur < 0
	}
	return out, nil
}

// ============================================================================
// BASELINES
// ============================================================================

// BuyAndHold enters on the first bar and never exits on its own.
type BuyAndHold struct{}

func (BuyAndHold) Name() string        { return "buy-and-hold" }
func (BuyAndHold) Description() string { return "enter on the first bar, hold to the end" }
func (BuyAndHold) Defaults() Params    { return Params{} }

func (BuyAndHold) Prepare(candles []market.Candle, _ Params) (Predicates, error) {
	out := newPredicates(len(candles))
	if len(candles) > 0 {
		out.entry[0] = true
	}
	return out, nil
}

// Never never trades.
type Never struct{}

func (Never) Name() string        { return "never" }
func (Never) Description() string { return "never enters" }
func (Never) Defaults() Params    { return Params{} }

func (Never) Prepare(candles []market.Candle, _ Params) (Predicates, error) {
	return newPredicates(len(candles)), nil
}
