package backtest

import (
	"context"
	"fmt"
	"math"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/rustyeddy/marketlab/market"
	"github.com/rustyeddy/marketlab/pkg/metrics"
	"github.com/rustyeddy/marketlab/strategies"
)

// DefaultMaxCombinations bounds a grid search unless Options say otherwise.
const DefaultMaxCombinations = 10000

// Range is an inclusive parameter sweep. Min == Max is a single value and
// needs no step.
type Range struct {
	Min  float64 `json:"min" yaml:"min"`
	Max  float64 `json:"max" yaml:"max"`
	Step float64 `json:"step" yaml:"step"`
}

// Values lists the points of the range. A range of more than limit points
// is rejected before anything is allocated.
func (r Range) Values(limit int) ([]float64, error) {
	for _, v := range []float64{r.Min, r.Max, r.Step} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return nil, fmt.Errorf("%w: range %g:%g:%g is not finite", market.ErrInvalidParameter, r.Min, r.Max, r.Step)
		}
	}
	if r.Max < r.Min {
		return nil, fmt.Errorf("%w: range max %g < min %g", market.ErrInvalidParameter, r.Max, r.Min)
	}
	if r.Max == r.Min {
		return []float64{r.Min}, nil
	}
	if r.Step <= 0 {
		return nil, fmt.Errorf("%w: range step %g", market.ErrInvalidParameter, r.Step)
	}
	count := math.Floor((r.Max-r.Min)/r.Step+1e-9) + 1
	if count > float64(limit) {
		return nil, fmt.Errorf("%w: range %g:%g:%g exceeds %d points", market.ErrInvalidParameter, r.Min, r.Max, r.Step, limit)
	}
	out := make([]float64, int(count))
	for i := range out {
		out[i] = r.Min + float64(i)*r.Step
	}
	return out, nil
}

type Options struct {
	InitialCapital  float64
	MaxCombinations int // 0 means DefaultMaxCombinations
	Workers         int // 0 means GOMAXPROCS
	Metrics         *metrics.Recorder
}

// OptimizationResult is the best grid point. Performance is its total
// return in percent.
type OptimizationResult struct {
	BestParams  strategies.Params `json:"best_params"`
	Performance float64           `json:"performance"`
	Result      Result            `json:"result"`
	Evaluated   int               `json:"evaluated"`
	Failed      int               `json:"failed"`
}

// grid is the Cartesian product of ranges in sorted name order with the
// last name varying fastest.
type grid struct {
	names  []string
	values [][]float64
	size   int
}

func newGrid(ranges map[string]Range, limit int) (grid, error) {
	g := grid{names: toParams(ranges).Keys(), size: 1}

	for _, name := range g.names {
		// Each axis gets what the axes before it left of the budget.
		v, err := ranges[name].Values(limit / g.size)
		if err != nil {
			return grid{}, fmt.Errorf("%s: grid exceeds %d combinations: %w", name, limit, err)
		}
		g.values = append(g.values, v)
		g.size *= len(v)
	}
	return g, nil
}

// toParams gives each swept name its lower bound.
func toParams(ranges map[string]Range) strategies.Params {
	p := make(strategies.Params, len(ranges))
	for k, r := range ranges {
		p[k] = r.Min
	}
	return p
}

// at returns the parameters of the k-th combination.
func (g grid) at(k int) strategies.Params {
	p := make(strategies.Params, len(g.names))
	for i := len(g.names) - 1; i >= 0; i-- {
		v := g.values[i]
		p[g.names[i]] = v[k%len(v)]
		k /= len(v)
	}
	return p
}

// Optimize runs Simulate for every combination of ranges over s and keeps
// the highest total return; ties keep the earlier combination. Grid points
// are evaluated in parallel. An empty ranges map evaluates s as it is.
func Optimize(ctx context.Context, candles []market.Candle, s strategies.Strategy, ranges map[string]Range, opts Options) (OptimizationResult, error) {
	if err := market.Validate(candles); err != nil {
		return OptimizationResult{}, err
	}
	if opts.InitialCapital <= 0 {
		opts.InitialCapital = 10000
	}
	if opts.MaxCombinations <= 0 {
		opts.MaxCombinations = DefaultMaxCombinations
	}
	if opts.Workers <= 0 {
		opts.Workers = runtime.GOMAXPROCS(0)
	}

	g, err := newGrid(ranges, opts.MaxCombinations)
	if err != nil {
		return OptimizationResult{}, err
	}

	results := make([]*Result, g.size)
	errs := make([]error, g.size)

	eg, ectx := errgroup.WithContext(ctx)
	eg.SetLimit(opts.Workers)
	for k := 0; k < g.size; k++ {
		k := k
		eg.Go(func() error {
			if err := ectx.Err(); err != nil {
				return err
			}
			r, err := Simulate(candles, s.WithParams(g.at(k)), opts.InitialCapital)
			opts.Metrics.RecordCombination(err != nil)
			if err != nil {
				errs[k] = err
				return nil
			}
			results[k] = &r
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return OptimizationResult{}, err
	}

	out := OptimizationResult{Evaluated: g.size}
	var best *Result
	var lastErr error
	for k, r := range results {
		if r == nil {
			out.Failed++
			lastErr = errs[k]
			continue
		}
		if best == nil || r.TotalReturn > best.TotalReturn {
			best = r
		}
	}
	if best == nil {
		return out, fmt.Errorf("%w: %d combinations failed: %v", ErrOptimizationExhausted, out.Failed, lastErr)
	}

	out.BestParams = best.Params
	out.Performance = best.TotalReturn
	out.Result = *best
	return out, nil
}
