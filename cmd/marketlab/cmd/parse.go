package cmd

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/rustyeddy/marketlab/backtest"
	"github.com/rustyeddy/marketlab/market"
	"github.com/rustyeddy/marketlab/strategies"
)

// parseParams reads "name=value" pairs.
func parseParams(pairs []string) (strategies.Params, error) {
	p := make(strategies.Params, len(pairs))
	for _, kv := range pairs {
		name, val, ok := strings.Cut(kv, "=")
		if !ok || name == "" {
			return nil, fmt.Errorf("%w: param %q: want name=value", market.ErrInvalidParameter, kv)
		}
		v, err := strconv.ParseFloat(val, 64)
		if err != nil {
			return nil, fmt.Errorf("%w: param %q: %v", market.ErrInvalidParameter, kv, err)
		}
		p[strings.TrimSpace(name)] = v
	}
	return p, nil
}

// parseRanges reads "name=min:max:step" sweeps. "name=v" is a single value.
func parseRanges(args []string) (map[string]backtest.Range, error) {
	out := make(map[string]backtest.Range, len(args))
	for _, arg := range args {
		name, val, ok := strings.Cut(arg, "=")
		if !ok || name == "" {
			return nil, fmt.Errorf("%w: range %q: want name=min:max:step", market.ErrInvalidParameter, arg)
		}
		parts := strings.Split(val, ":")
		nums := make([]float64, len(parts))
		for i, s := range parts {
			v, err := strconv.ParseFloat(s, 64)
			if err != nil {
				return nil, fmt.Errorf("%w: range %q: %v", market.ErrInvalidParameter, arg, err)
			}
			nums[i] = v
		}

		var r backtest.Range
		switch len(nums) {
		case 1:
			r = backtest.Range{Min: nums[0], Max: nums[0]}
		case 3:
			r = backtest.Range{Min: nums[0], Max: nums[1], Step: nums[2]}
		default:
			return nil, fmt.Errorf("%w: range %q: want min:max:step", market.ErrInvalidParameter, arg)
		}
		out[strings.TrimSpace(name)] = r
	}
	return out, nil
}

// parseDate accepts 2006-01-02 or RFC3339. Empty is the zero time.
func parseDate(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	if t, err := time.Parse("2006-01-02", s); err == nil {
		return t, nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: date %q: want YYYY-MM-DD or RFC3339", market.ErrInvalidParameter, s)
	}
	return t, nil
}

func dateRange(from, to string) (time.Time, time.Time, error) {
	start, err := parseDate(from)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	end, err := parseDate(to)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	// a bare end date covers that whole day
	if to != "" && len(to) == len("2006-01-02") {
		end = end.Add(24*time.Hour - time.Nanosecond)
	}
	return start, end, nil
}

// dayBounds returns [00:00, 24:00) of a YYYY-MM-DD day in UTC, the zone
// the journal stores times in.
func dayBounds(day string) (time.Time, time.Time, error) {
	t, err := time.ParseInLocation("2006-01-02", day, time.UTC)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("%w: day %q: want YYYY-MM-DD", market.ErrInvalidParameter, day)
	}
	return t, t.Add(24 * time.Hour), nil
}
