// Package strategies defines the backtestable strategy value and the
// built-in rule kinds it can run.
package strategies

import (
	"fmt"
	"maps"
	"math"
	"sort"
	"strings"

	"github.com/rustyeddy/marketlab/market"
)

// Risk parameters may be set in Params so the optimizer can sweep them.
const (
	ParamStopLoss   = "stop_loss_pct"
	ParamTakeProfit = "take_profit_pct"
	ParamTimeLimit  = "time_limit_bars"
)

// Params are named numeric strategy parameters.
type Params map[string]float64

// Get returns p[name], or def when it is not set.
func (p Params) Get(name string, def float64) float64 {
	if v, ok := p[name]; ok {
		return v
	}
	return def
}

// Int returns p[name] rounded to the nearest integer, or def.
func (p Params) Int(name string, def int) int {
	if v, ok := p[name]; ok {
		return int(math.Round(v))
	}
	return def
}

// Keys returns the parameter names in sorted order.
func (p Params) Keys() []string {
	keys := make([]string, 0, len(p))
	for k := range p {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func (p Params) String() string {
	parts := make([]string, 0, len(p))
	for _, k := range p.Keys() {
		parts = append(parts, fmt.Sprintf("%s=%g", k, p[k]))
	}
	return strings.Join(parts, " ")
}

// Predicates answer entry and exit questions for one prepared series.
type Predicates interface {
	Entry(i int) bool
	Exit(i int) bool
}

// Rules is a built-in strategy kind. Prepare precomputes whatever the
// predicates need over the whole series and rejects invalid parameters
// with market.ErrInvalidParameter.
type Rules interface {
	Name() string
	Description() string
	Defaults() Params
	Prepare(candles []market.Candle, p Params) (Predicates, error)
}

// Strategy is a rule kind plus its parameters and optional risk limits. A
// zero StopLossPct, TakeProfitPct or TimeLimitBars disables that exit.
type Strategy struct {
	Name          string  `json:"name" yaml:"name"`
	Kind          string  `json:"kind" yaml:"kind"`
	Params        Params  `json:"params,omitempty" yaml:"params,omitempty"`
	StopLossPct   float64 `json:"stop_loss_pct,omitempty" yaml:"stop_loss_pct,omitempty"`
	TakeProfitPct float64 `json:"take_profit_pct,omitempty" yaml:"take_profit_pct,omitempty"`
	TimeLimitBars int     `json:"time_limit_bars,omitempty" yaml:"time_limit_bars,omitempty"`

	rules Rules
}

// New builds a strategy of the registered kind. params are laid over the
// kind's defaults.
func New(kind string, params Params) (Strategy, error) {
	r, ok := Lookup(kind)
	if !ok {
		return Strategy{}, fmt.Errorf("%w: unknown strategy %q (supported: %s)",
			market.ErrInvalidParameter, kind, strings.Join(Names(), ", "))
	}
	s := Strategy{Name: r.Name(), Kind: r.Name(), Params: r.Defaults(), rules: r}
	return s.WithParams(params), nil
}

// WithParams returns a copy with params laid over the current ones. Risk
// parameters in params also set the matching fields.
func (s Strategy) WithParams(params Params) Strategy {
	merged := make(Params, len(s.Params)+len(params))
	maps.Copy(merged, s.Params)
	maps.Copy(merged, params)
	s.Params = merged

	s.StopLossPct = merged.Get(ParamStopLoss, s.StopLossPct)
	s.TakeProfitPct = merged.Get(ParamTakeProfit, s.TakeProfitPct)
	s.TimeLimitBars = merged.Int(ParamTimeLimit, s.TimeLimitBars)
	return s
}

// Rules returns the rule kind, looking it up by Kind when the strategy was
// decoded rather than built with New.
func (s Strategy) Rules() (Rules, error) {
	if s.rules != nil {
		return s.rules, nil
	}
	r, ok := Lookup(s.Kind)
	if !ok {
		return nil, fmt.Errorf("%w: unknown strategy %q", market.ErrInvalidParameter, s.Kind)
	}
	return r, nil
}

// Prepare validates the risk limits and prepares the rule predicates.
func (s Strategy) Prepare(candles []market.Candle) (Predicates, error) {
	if s.StopLossPct < 0 || s.TakeProfitPct < 0 || s.TimeLimitBars < 0 {
		return nil, fmt.Errorf("%w: negative risk limit", market.ErrInvalidParameter)
	}
	r, err := s.Rules()
	if err != nil {
		return nil, err
	}
	return r.Prepare(candles, s.Params)
}
