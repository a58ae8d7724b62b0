package market

import (
	"fmt"
	"io"
	"time"
)

// Gap is a run of missing bars in a series.
type Gap struct {
	After time.Time     // time of the last bar before the gap
	Bars  int           // number of missing intervals
	Span  time.Duration // wall-clock length of the hole
	Kind  string        // weekend, suspicious or minor
}

// GapStats summarizes the gaps found in a series.
type GapStats struct {
	Present        int
	Missing        int
	GapCount       int
	WeekendGaps    int
	SuspiciousGaps int
	LongestGap     int
	LongestGapKind string
}

// FindGaps walks a series of the given timeframe and reports every hole
// between consecutive bars.
func FindGaps(candles []Candle, tf Timeframe) []Gap {
	step := tf.Duration()
	if step <= 0 || len(candles) < 2 {
		return nil
	}

	var gaps []Gap
	for i := 1; i < len(candles); i++ {
		prev, cur := candles[i-1].Time, candles[i].Time
		delta := cur.Sub(prev)
		if delta <= step {
			continue
		}
		missing := int(delta/step) - 1
		if missing < 1 {
			continue
		}
		span := time.Duration(missing) * step
		gaps = append(gaps, Gap{
			After: prev,
			Bars:  missing,
			Span:  span,
			Kind:  classifyGap(prev.Add(step), span),
		})
	}
	return gaps
}

func classifyGap(start time.Time, span time.Duration) string {
	wd := start.UTC().Weekday()

	// Weekend-ish if gap >= 24h and starts Fri/Sat/Sun (UTC heuristic)
	if span >= 24*time.Hour {
		if wd == time.Friday || wd == time.Saturday || wd == time.Sunday {
			return "weekend"
		}
		return "suspicious"
	}
	if span >= 10*time.Minute {
		return "suspicious"
	}
	return "minor"
}

// Stats aggregates the gap list for a series.
func Stats(candles []Candle, tf Timeframe) GapStats {
	s := GapStats{Present: len(candles)}
	for _, g := range FindGaps(candles, tf) {
		s.GapCount++
		s.Missing += g.Bars
		if g.Bars > s.LongestGap {
			s.LongestGap = g.Bars
			s.LongestGapKind = g.Kind
		}
		switch g.Kind {
		case "weekend":
			s.WeekendGaps++
		case "suspicious":
			s.SuspiciousGaps++
		}
	}
	return s
}

// Resample aggregates a finer series into bars of timeframe to. Buckets are
// aligned to the Unix epoch; empty buckets are skipped.
func Resample(candles []Candle, to Timeframe) ([]Candle, error) {
	step := to.Duration()
	if step <= 0 {
		return nil, fmt.Errorf("%w: resample to %q", ErrInvalidParameter, to)
	}

	out := make([]Candle, 0, len(candles))
	var cur Candle
	var bucket time.Time
	open := false

	for _, c := range candles {
		b := c.Time.Truncate(step)
		if !open || !b.Equal(bucket) {
			if open {
				out = append(out, cur)
			}
			cur = Candle{Time: b, Open: c.Open, High: c.High, Low: c.Low, Close: c.Close, Volume: c.Volume}
			bucket = b
			open = true
			continue
		}
		cur.High = max(cur.High, c.High)
		cur.Low = min(cur.Low, c.Low)
		cur.Close = c.Close
		cur.Volume += c.Volume
	}
	if open {
		out = append(out, cur)
	}
	return out, nil
}

// PrintStats writes a short human readable gap summary.
func PrintStats(w io.Writer, symbol string, tf Timeframe, candles []Candle) {
	s := Stats(candles, tf)

	fmt.Fprintf(w, "---- %s %s ----\n", symbol, tf)
	if len(candles) > 0 {
		fmt.Fprintf(w, "Range: %s → %s\n",
			candles[0].Time.Format(time.RFC3339),
			candles[len(candles)-1].Time.Format(time.RFC3339))
	}
	fmt.Fprintf(w, "            Present Bars: %d\n", s.Present)
	fmt.Fprintf(w, "            Missing Bars: %d\n", s.Missing)
	fmt.Fprintf(w, "              Total Gaps: %d\n", s.GapCount)
	fmt.Fprintf(w, "            Weekend Gaps: %d\n", s.WeekendGaps)
	fmt.Fprintf(w, "         Suspicious Gaps: %d\n", s.SuspiciousGaps)
	fmt.Fprintf(w, "Longest Gap: %d bars (%s)\n", s.LongestGap, s.LongestGapKind)
	fmt.Fprintln(w, "--------------------------")
}
