package provider

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/rustyeddy/marketlab/market"
)

// CSVDir serves bars from files named <SYMBOL>_<timeframe>.csv, e.g.
// BTCUSDT_1h.csv, in a single directory.
//
// Rows are:
//
//	time,open,high,low,close,volume
//
// where time is RFC3339, RFC3339Nano, or unix seconds/milliseconds.
// A header row ("time,...") is allowed and empty rows are skipped.
//
// When no file exists for the requested timeframe, the finest available
// file for the symbol is resampled up to it.
type CSVDir struct {
	Dir string
	Log zerolog.Logger
}

func NewCSVDir(dir string, log zerolog.Logger) *CSVDir {
	return &CSVDir{Dir: dir, Log: log}
}

// ascending bar length
var timeframeOrder = []market.Timeframe{
	market.M1, market.M5, market.M15, market.M30,
	market.H1, market.H4, market.D1, market.W1,
}

// snapshot sources, preferred first
var snapshotOrder = []market.Timeframe{
	market.H1, market.M15, market.M5, market.M1, market.M30, market.H4, market.D1,
}

func (d *CSVDir) path(symbol string, tf market.Timeframe) string {
	return filepath.Join(d.Dir, fmt.Sprintf("%s_%s.csv", symbol, tf))
}

func (d *CSVDir) Series(ctx context.Context, symbol string, tf market.Timeframe) ([]market.Candle, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	candles, err := ReadCandlesFile(d.path(symbol, tf))
	if err == nil {
		d.logGaps(symbol, tf, candles)
		return candles, nil
	}
	if !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s %s: %v", market.ErrDataUnavailable, symbol, tf, err)
	}

	for _, finer := range timeframeOrder {
		if finer.Seconds() >= tf.Seconds() {
			break
		}
		src, err := ReadCandlesFile(d.path(symbol, finer))
		if err != nil {
			continue
		}
		d.Log.Debug().Str("symbol", symbol).Str("from", finer.String()).Str("to", tf.String()).Msg("resampling series")
		return market.Resample(src, tf)
	}

	return nil, fmt.Errorf("%w: no data for %s %s in %s", market.ErrDataUnavailable, symbol, tf, d.Dir)
}

func (d *CSVDir) logGaps(symbol string, tf market.Timeframe, candles []market.Candle) {
	s := market.Stats(candles, tf)
	if s.SuspiciousGaps > 0 {
		d.Log.Warn().
			Str("symbol", symbol).
			Str("timeframe", tf.String()).
			Int("gaps", s.SuspiciousGaps).
			Int("longest", s.LongestGap).
			Msg("series has suspicious gaps")
	}
}

// Snapshot derives price, 24h change and 24h volume from the finest file
// available for the symbol.
func (d *CSVDir) Snapshot(ctx context.Context, symbol string) (market.Snapshot, error) {
	if err := ctx.Err(); err != nil {
		return market.Snapshot{}, err
	}
	for _, tf := range snapshotOrder {
		candles, err := ReadCandlesFile(d.path(symbol, tf))
		if err != nil || len(candles) == 0 {
			continue
		}
		return SnapshotFromCandles(symbol, candles), nil
	}
	return market.Snapshot{}, fmt.Errorf("%w: no snapshot source for %s", market.ErrDataUnavailable, symbol)
}

// ActiveSymbols lists every symbol with at least one file, ordered by
// quote volume. Symbols without a usable snapshot are skipped.
func (d *CSVDir) ActiveSymbols(ctx context.Context) ([]string, error) {
	entries, err := os.ReadDir(d.Dir)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", market.ErrDataUnavailable, err)
	}

	seen := make(map[string]bool)
	var snaps []market.Snapshot
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".csv") {
			continue
		}
		symbol, _, ok := splitFileName(e.Name())
		if !ok || seen[symbol] {
			continue
		}
		seen[symbol] = true

		snap, err := d.Snapshot(ctx, symbol)
		if err != nil {
			d.Log.Debug().Str("symbol", symbol).Err(err).Msg("skipping symbol")
			continue
		}
		snaps = append(snaps, snap)
	}

	return rankByQuoteVolume(snaps), nil
}

func rankByQuoteVolume(snaps []market.Snapshot) []string {
	sort.SliceStable(snaps, func(i, j int) bool {
		if snaps[i].QuoteVolume != snaps[j].QuoteVolume {
			return snaps[i].QuoteVolume > snaps[j].QuoteVolume
		}
		return snaps[i].Symbol < snaps[j].Symbol
	})
	out := make([]string, len(snaps))
	for i, s := range snaps {
		out[i] = s.Symbol
	}
	return out
}

// splitFileName splits "EUR_USD_1h.csv" into ("EUR_USD", "1h").
func splitFileName(name string) (string, market.Timeframe, bool) {
	base := strings.TrimSuffix(name, ".csv")
	i := strings.LastIndex(base, "_")
	if i <= 0 || i == len(base)-1 {
		return "", "", false
	}
	tf, err := market.ParseTimeframe(base[i+1:])
	if err != nil {
		return "", "", false
	}
	return base[:i], tf, true
}

// SnapshotFromCandles builds a snapshot from the last 24 hours of bars.
func SnapshotFromCandles(symbol string, candles []market.Candle) market.Snapshot {
	s := market.Snapshot{Symbol: symbol}
	if len(candles) == 0 {
		return s
	}
	lastBar := candles[len(candles)-1]
	s.Price = lastBar.Close

	cutoff := lastBar.Time.Add(-24 * time.Hour)
	ref := candles[0].Close
	for i := len(candles) - 1; i >= 0; i-- {
		c := candles[i]
		if c.Time.After(cutoff) {
			s.Volume += c.Volume
			s.QuoteVolume += c.Volume * c.Close
			continue
		}
		ref = c.Close
		break
	}
	if ref != 0 {
		s.PriceChangePercent24h = (s.Price - ref) / ref * 100
	}
	return s
}

// ReadCandlesFile parses a candle CSV file.
func ReadCandlesFile(path string) ([]market.Candle, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return ReadCandles(f)
}

// ReadCandles parses candle rows from r.
func ReadCandles(r io.Reader) ([]market.Candle, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	out := []market.Candle{}
	first := true
	for {
		row, err := cr.Read()
		if err == io.EOF {
			return out, nil
		}
		if err != nil {
			return nil, err
		}
		if len(row) == 0 {
			continue
		}

		// Allow a single header row
		if first {
			first = false
			if strings.EqualFold(strings.TrimSpace(row[0]), "time") {
				continue
			}
		}

		c, ok, err := parseCandleRow(row)
		if err != nil {
			return nil, err
		}
		if ok {
			out = append(out, c)
		}
	}
}

func parseCandleRow(row []string) (market.Candle, bool, error) {
	// Need at least: time,open,high,low,close
	if len(row) < 5 {
		return market.Candle{}, false, nil
	}

	ts := strings.TrimSpace(row[0])
	if ts == "" {
		return market.Candle{}, false, nil
	}
	t, err := parseTime(ts)
	if err != nil {
		return market.Candle{}, false, err
	}

	var vals [5]float64
	for i := 1; i < len(row) && i <= 5; i++ {
		v, err := strconv.ParseFloat(strings.TrimSpace(row[i]), 64)
		if err != nil {
			return market.Candle{}, false, fmt.Errorf("bad value %q: %w", row[i], err)
		}
		vals[i-1] = v
	}

	return market.Candle{
		Time:   t,
		Open:   vals[0],
		High:   vals[1],
		Low:    vals[2],
		Close:  vals[3],
		Volume: vals[4],
	}, true, nil
}

func parseTime(ts string) (time.Time, error) {
	// Accept RFC3339 or RFC3339Nano.
	if t, err := time.Parse(time.RFC3339Nano, ts); err == nil {
		return t.UTC(), nil
	}
	n, err := strconv.ParseInt(ts, 10, 64)
	if err != nil {
		return time.Time{}, fmt.Errorf("bad time %q", ts)
	}
	if n > 1e12 {
		return time.UnixMilli(n).UTC(), nil
	}
	return time.Unix(n, 0).UTC(), nil
}

// WriteCandles writes candles in the format ReadCandles accepts.
func WriteCandles(w io.Writer, candles []market.Candle) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"time", "open", "high", "low", "close", "volume"}); err != nil {
		return err
	}
	for _, c := range candles {
		rec := []string{
			c.Time.UTC().Format(time.RFC3339),
			strconv.FormatFloat(c.Open, 'f', -1, 64),
			strconv.FormatFloat(c.High, 'f', -1, 64),
			strconv.FormatFloat(c.Low, 'f', -1, 64),
			strconv.FormatFloat(c.Close, 'f', -1, 64),
			strconv.FormatFloat(c.Volume, 'f', -1, 64),
		}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
