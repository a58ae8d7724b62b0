package market

import (
	"fmt"
	"strings"
	"time"
)

// Timeframe is a normalized bar interval such as "1h" or "1d".
type Timeframe string

const (
	M1  Timeframe = "1m"
	M5  Timeframe = "5m"
	M15 Timeframe = "15m"
	M30 Timeframe = "30m"
	H1  Timeframe = "1h"
	H4  Timeframe = "4h"
	D1  Timeframe = "1d"
	W1  Timeframe = "1w"
)

var timeframeSeconds = map[Timeframe]int32{
	M1:  60,
	M5:  300,
	M15: 900,
	M30: 1800,
	H1:  3600,
	H4:  14400,
	D1:  86400,
	W1:  604800,
}

// ParseTimeframe accepts exchange style ("15m", "4h", "1d") and the
// M/H/D/W style ("M15", "H4", "D1").
func ParseTimeframe(s string) (Timeframe, error) {
	v := strings.TrimSpace(s)
	switch strings.ToUpper(v) {
	case "M1":
		return M1, nil
	case "M5":
		return M5, nil
	case "M15":
		return M15, nil
	case "M30":
		return M30, nil
	case "H1":
		return H1, nil
	case "H4":
		return H4, nil
	case "D1":
		return D1, nil
	case "W1":
		return W1, nil
	}
	tf := Timeframe(strings.ToLower(v))
	if _, ok := timeframeSeconds[tf]; ok {
		return tf, nil
	}
	return "", fmt.Errorf("%w: unsupported timeframe %q", ErrInvalidParameter, s)
}

// Seconds returns the bar length in seconds, 0 for unknown timeframes.
func (tf Timeframe) Seconds() int32 {
	return timeframeSeconds[tf]
}

func (tf Timeframe) Duration() time.Duration {
	return time.Duration(tf.Seconds()) * time.Second
}

func (tf Timeframe) String() string { return string(tf) }
