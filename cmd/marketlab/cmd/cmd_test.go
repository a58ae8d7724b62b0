package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rustyeddy/marketlab/backtest"
	"github.com/rustyeddy/marketlab/correlation"
	"github.com/rustyeddy/marketlab/journal"
	"github.com/rustyeddy/marketlab/market"
	"github.com/rustyeddy/marketlab/provider"
	"github.com/rustyeddy/marketlab/signal"
)

var t0 = time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)

func wave(n int, step time.Duration, base, amp, drift float64) []market.Candle {
	out := make([]market.Candle, n)
	prev := base
	for i := range out {
		c := base + amp*math.Sin(float64(i)/5) + drift*float64(i)
		out[i] = market.Candle{
			Time:   t0.Add(time.Duration(i) * step),
			Open:   prev,
			High:   math.Max(prev, c) + 0.5,
			Low:    math.Min(prev, c) - 0.5,
			Close:  c,
			Volume: 1000 + float64(i),
		}
		prev = c
	}
	return out
}

func writeData(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	files := map[string][]market.Candle{
		"BTCUSDT_1d.csv": wave(90, 24*time.Hour, 100, 10, 0.5),
		"ETHUSDT_1d.csv": wave(90, 24*time.Hour, 50, 4, 0.2),
		"BTCUSDT_1h.csv": wave(150, time.Hour, 100, 3, 0.05),
	}
	for name, candles := range files {
		f, err := os.Create(filepath.Join(dir, name))
		require.NoError(t, err)
		require.NoError(t, provider.WriteCandles(f, candles))
		require.NoError(t, f.Close())
	}
	return dir
}

// reset puts the flag variables back to their defaults; cobra keeps
// parsed values between executions.
func reset() {
	cfgFile, dataDir, logLevel, logFormat, showMetrics = "", "", "error", "", false
	sigTimeframe, sigTop, sigJSON = "1h", 0, false
	btStrategy, btFrom, btTo, btCapital, btInterval, btParams, btJournal, btJSON = "rsi", "", "", 0, "", nil, false, false
	optStrategy, optFrom, optTo, optParams, optRanges, optJournal, optJSON = "rsi", "", "", nil, nil, false, false
	corTimeframe, corLookback, corThreshold, corWindow, corJSON = "", 0, 0, 0, false
	configInitOutput, configValidatePath = "marketlab.yaml", ""
	journalDBPath, journalOutput, dataTimeframe = "", "", "1d"
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	reset()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&bytes.Buffer{})
	rootCmd.SetArgs(append(args, "--log-level", "error"))
	err := rootCmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestVersionAndStrategies(t *testing.T) {
	out, err := run(t, "version")
	require.NoError(t, err)
	assert.Contains(t, out, "marketlab version "+version)

	out, err = run(t, "strategies")
	require.NoError(t, err)
	assert.Contains(t, out, "NAME")
	assert.Contains(t, out, "period=14")
	assert.Contains(t, out, "buy-and-hold")
	assert.Contains(t, out, "ema-cross")
}

func TestBacktestCommand(t *testing.T) {
	dir := writeData(t)

	out, err := run(t, "backtest", "BTCUSDT", "--data-dir", dir, "--strategy", "buy-and-hold", "--capital", "1000", "--metrics")
	require.NoError(t, err)
	assert.Contains(t, out, "Backtest Result")
	assert.Contains(t, out, "Symbol:        BTCUSDT")
	assert.Contains(t, out, "End of Period")
	assert.Contains(t, out, `marketlab_backtests_total{strategy="buy-and-hold"} 1`)

	out, err = run(t, "backtest", "BTCUSDT", "--data-dir", dir, "--strategy", "rsi",
		"--param", "period=5", "--param", "stop_loss_pct=3", "--from", "2025-03-10", "--to", "2025-04-30", "--json")
	require.NoError(t, err)
	var res backtest.Result
	require.NoError(t, json.Unmarshal([]byte(out), &res))
	assert.Equal(t, "rsi", res.Strategy)
	assert.Equal(t, 5.0, res.Params["period"])
	assert.Equal(t, 52, res.Bars)
	assert.True(t, t0.AddDate(0, 0, 9).Equal(res.Start))
	assert.True(t, t0.AddDate(0, 0, 60).Equal(res.End))
}

func TestBacktestJournal(t *testing.T) {
	dir := writeData(t)
	work := t.TempDir()
	dbPath := filepath.Join(work, "runs.db")
	orgDir := filepath.Join(work, "org")
	require.NoError(t, os.Mkdir(orgDir, 0o755))

	cfgPath := filepath.Join(work, "marketlab.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte(fmt.Sprintf(`
data:
  dir: %s
journal:
  type: sqlite
  db_path: %s
  org_dir: %s
`, dir, dbPath, orgDir)), 0o644))

	_, err := run(t, "--config", cfgPath, "backtest", "ETHUSDT", "--strategy", "ema-cross",
		"--param", "fast=3", "--param", "slow=8", "--journal")
	require.NoError(t, err)

	j, err := journal.NewSQLite(dbPath)
	require.NoError(t, err)
	defer j.Close()

	runs, err := j.ListRuns(context.Background())
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, "ETHUSDT", runs[0].Symbol)
	assert.Equal(t, market.D1, runs[0].Timeframe)
	assert.Equal(t, 3.0, runs[0].Params["fast"])

	_, err = os.Stat(filepath.Join(orgDir, runs[0].RunID+".org"))
	assert.NoError(t, err)
}

func TestJournalCommands(t *testing.T) {
	dir := writeData(t)
	work := t.TempDir()
	dbPath := filepath.Join(work, "runs.db")

	cfgPath := filepath.Join(work, "marketlab.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte(fmt.Sprintf(`
data:
  dir: %s
journal:
  type: sqlite
  db_path: %s
`, dir, dbPath)), 0o644))

	_, err := run(t, "--config", cfgPath, "backtest", "ETHUSDT", "--strategy", "buy-and-hold", "--journal")
	require.NoError(t, err)

	j, err := journal.NewSQLite(dbPath)
	require.NoError(t, err)
	runs, err := j.ListRuns(context.Background())
	require.NoError(t, err)
	require.Len(t, runs, 1)
	trades, err := j.ListTrades(context.Background(), runs[0].RunID)
	require.NoError(t, err)
	require.Len(t, trades, 1)
	require.NoError(t, j.Close())
	runID, trade := runs[0].RunID, trades[0]

	out, err := run(t, "--config", cfgPath, "journal", "runs")
	require.NoError(t, err)
	assert.Contains(t, out, "RUN_ID")
	assert.Contains(t, out, runID)
	assert.Contains(t, out, "buy-and-hold")

	out, err = run(t, "--config", cfgPath, "journal", "run", runID)
	require.NoError(t, err)
	assert.Contains(t, out, "* BACKTEST: buy-and-hold ETHUSDT")

	// --db works without a config file
	out, err = run(t, "--data-dir", dir, "journal", "trade", trade.TradeID, "--db", dbPath)
	require.NoError(t, err)
	assert.Contains(t, out, "*** Trade: ETHUSDT")
	assert.Contains(t, out, ":TRADE_ID: "+trade.TradeID)

	out, err = run(t, "--config", cfgPath, "journal", "day", trade.CloseTime.UTC().Format("2006-01-02"))
	require.NoError(t, err)
	assert.Contains(t, out, ":TRADE_ID: "+trade.TradeID)

	out, err = run(t, "--config", cfgPath, "journal", "day", trade.CloseTime.UTC().AddDate(0, 0, 1).Format("2006-01-02"))
	require.NoError(t, err)
	assert.NotContains(t, out, "*** Trade")

	orgPath := filepath.Join(work, "run.org")
	_, err = run(t, "--config", cfgPath, "journal", "export", runID, "-o", orgPath)
	require.NoError(t, err)
	note, err := os.ReadFile(orgPath)
	require.NoError(t, err)
	assert.Contains(t, string(note), "* BACKTEST: buy-and-hold ETHUSDT")

	_, err = run(t, "--config", cfgPath, "journal", "trade", "nope")
	assert.True(t, errors.Is(err, journal.ErrNotFound))

	_, err = run(t, "--config", cfgPath, "journal", "day", "15/03/2025")
	assert.True(t, errors.Is(err, market.ErrInvalidParameter))

	_, err = run(t, "--data-dir", dir, "journal", "runs", "--db", filepath.Join(work, "missing.db"))
	assert.Error(t, err)
}

func TestDataStatsCommand(t *testing.T) {
	dir := writeData(t)

	out, err := run(t, "data", "stats", "BTCUSDT", "--data-dir", dir)
	require.NoError(t, err)
	assert.Contains(t, out, "---- BTCUSDT 1d ----")
	assert.Contains(t, out, "Present Bars: 90")

	out, err = run(t, "data", "stats", "--data-dir", dir, "--timeframe", "1d")
	require.NoError(t, err)
	assert.Contains(t, out, "---- ETHUSDT 1d ----")

	_, err = run(t, "data", "stats", "SOLUSDT", "--data-dir", dir)
	assert.True(t, errors.Is(err, market.ErrDataUnavailable))

	_, err = run(t, "data", "stats", "--data-dir", dir, "--timeframe", "3d")
	assert.True(t, errors.Is(err, market.ErrInvalidParameter))
}

func TestOptimizeCommand(t *testing.T) {
	dir := writeData(t)

	out, err := run(t, "optimize", "BTCUSDT", "--data-dir", dir, "--strategy", "rsi",
		"--range", "period=3:5:1", "--range", "oversold=25:35:10", "--json")
	require.NoError(t, err)

	var res backtest.OptimizationResult
	require.NoError(t, json.Unmarshal([]byte(out), &res))
	assert.Equal(t, 6, res.Evaluated)
	assert.Equal(t, "BTCUSDT", res.Result.Symbol)
	assert.Contains(t, []float64{3, 4, 5}, res.BestParams["period"])
	assert.Equal(t, res.Performance, res.Result.TotalReturn)

	_, err = run(t, "optimize", "BTCUSDT", "--data-dir", dir, "--range", "period=3:5")
	assert.True(t, errors.Is(err, market.ErrInvalidParameter))
}

func TestCorrelateCommand(t *testing.T) {
	dir := writeData(t)

	out, err := run(t, "correlate", "--data-dir", dir, "--lookback", "30", "--json")
	require.NoError(t, err)

	var rep struct {
		Matrix    correlation.Matrix       `json:"matrix"`
		Divergent []correlation.PairSignal `json:"divergent_pairs"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &rep))
	assert.ElementsMatch(t, []string{"BTCUSDT", "ETHUSDT"}, rep.Matrix.Symbols)
	assert.Equal(t, 30, rep.Matrix.Lookback)

	r, ok := rep.Matrix.Get("BTCUSDT", "ETHUSDT")
	require.True(t, ok)
	assert.Greater(t, r, 0.8)

	out, err = run(t, "correlate", "BTCUSDT", "ETHUSDT", "--data-dir", dir)
	require.NoError(t, err)
	assert.Contains(t, out, "Significant pairs: 1")
	assert.Contains(t, out, "Divergent pairs:")
}

func TestCorrelateSkipsAntiCorrelatedPairs(t *testing.T) {
	dir := t.TempDir()
	up := make([]market.Candle, 90)
	down := make([]market.Candle, 90)
	for i := range up {
		c := 100 + float64(i) + 3*math.Sin(float64(i))
		ts := t0.Add(time.Duration(i) * 24 * time.Hour)
		up[i] = market.Candle{Time: ts, Open: c, High: c + 1, Low: c - 1, Close: c, Volume: 1000}
		m := 300 - c
		down[i] = market.Candle{Time: ts, Open: m, High: m + 1, Low: m - 1, Close: m, Volume: 1000}
	}
	for name, candles := range map[string][]market.Candle{"UPUSD_1d.csv": up, "DOWNUSD_1d.csv": down} {
		f, err := os.Create(filepath.Join(dir, name))
		require.NoError(t, err)
		require.NoError(t, provider.WriteCandles(f, candles))
		require.NoError(t, f.Close())
	}

	out, err := run(t, "correlate", "UPUSD", "DOWNUSD", "--data-dir", dir, "--lookback", "30", "--json")
	require.NoError(t, err)

	var rep struct {
		Significant []correlation.Pair       `json:"significant_pairs"`
		PairTrading []correlation.Pair       `json:"pair_trading_candidates"`
		Divergent   []correlation.PairSignal `json:"divergent_pairs"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &rep))
	require.Len(t, rep.Significant, 1)
	assert.Less(t, rep.Significant[0].Correlation, -0.7)
	assert.Empty(t, rep.PairTrading)
	assert.Empty(t, rep.Divergent)
}

func TestSignalCommands(t *testing.T) {
	dir := writeData(t)

	out, err := run(t, "signal", "BTCUSDT", "--data-dir", dir, "--timeframe", "1h", "--json")
	require.NoError(t, err)
	var sig signal.TradingSignal
	require.NoError(t, json.Unmarshal([]byte(out), &sig))
	assert.Equal(t, "BTCUSDT", sig.Symbol)
	assert.NotEmpty(t, sig.Reasons)
	assert.GreaterOrEqual(t, sig.Confidence, 0.0)
	assert.LessOrEqual(t, sig.Confidence, 1.0)

	out, err = run(t, "signals", "--data-dir", dir, "--timeframe", "1d")
	require.NoError(t, err)
	assert.Contains(t, out, "Buy signals:")
	assert.Contains(t, out, "Sell signals:")

	_, err = run(t, "signal", "DOGEUSDT", "--data-dir", dir)
	assert.True(t, errors.Is(err, market.ErrDataUnavailable))
}

func TestConfigCommands(t *testing.T) {
	path := filepath.Join(t.TempDir(), "marketlab.yaml")

	out, err := run(t, "config", "init", "-o", path)
	require.NoError(t, err)
	assert.Contains(t, out, "Created default configuration")

	out, err = run(t, "config", "validate", "-f", path)
	require.NoError(t, err)
	assert.Contains(t, out, "Configuration valid")
	assert.Contains(t, out, "Journal:  none")

	_, err = run(t, "--config", filepath.Join(t.TempDir(), "missing.yaml"), "version")
	assert.Error(t, err)
}

func TestParseHelpers(t *testing.T) {
	p, err := parseParams([]string{"period=10", "stop_loss_pct=2.5"})
	require.NoError(t, err)
	assert.Equal(t, 10.0, p["period"])
	assert.Equal(t, 2.5, p["stop_loss_pct"])

	for _, bad := range []string{"period", "=3", "period=ten"} {
		_, err := parseParams([]string{bad})
		assert.True(t, errors.Is(err, market.ErrInvalidParameter), bad)
	}

	r, err := parseRanges([]string{"period=10:20:2", "slow=30"})
	require.NoError(t, err)
	assert.Equal(t, backtest.Range{Min: 10, Max: 20, Step: 2}, r["period"])
	assert.Equal(t, backtest.Range{Min: 30, Max: 30}, r["slow"])

	for _, bad := range []string{"period", "period=1:2", "period=a:b:c"} {
		_, err := parseRanges([]string{bad})
		assert.True(t, errors.Is(err, market.ErrInvalidParameter), bad)
	}

	start, end, err := dateRange("2025-01-01", "2025-01-31")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC), start)
	assert.Equal(t, time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC).Add(-time.Nanosecond), end)

	_, end, err = dateRange("", "2025-01-31T12:00:00Z")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2025, 1, 31, 12, 0, 0, 0, time.UTC), end)

	_, _, err = dateRange("yesterday", "")
	assert.True(t, errors.Is(err, market.ErrInvalidParameter))
}
