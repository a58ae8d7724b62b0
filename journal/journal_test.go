package journal

import (
	"context"
	"database/sql"
	"encoding/csv"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rustyeddy/marketlab/backtest"
	"github.com/rustyeddy/marketlab/market"
	"github.com/rustyeddy/marketlab/pkg/id"
	"github.com/rustyeddy/marketlab/strategies"
)

var t0 = time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)

// sampleEntry is a stopped-out trade followed by nothing.
func sampleEntry(t *testing.T) Entry {
	t.Helper()

	closes := []float64{100, 94, 96, 98}
	candles := make([]market.Candle, len(closes))
	for i, c := range closes {
		candles[i] = market.Candle{Time: t0.AddDate(0, 0, i), Open: c, High: c, Low: c, Close: c, Volume: 1}
	}
	s, err := strategies.New("buy-and-hold", strategies.Params{strategies.ParamStopLoss: 5})
	require.NoError(t, err)

	r, err := backtest.Simulate(candles, s, 10000)
	require.NoError(t, err)
	r.Symbol, r.Timeframe = "EUR_USD", market.D1
	return FromResult(r)
}

func newTestSQLite(t *testing.T) (*SQLite, string) {
	t.Helper()

	path := filepath.Join(t.TempDir(), "test.db")
	j, err := NewSQLite(path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = j.Close() })
	return j, path
}

func TestFromResult(t *testing.T) {
	t.Parallel()

	e := sampleEntry(t)
	_, err := id.Time(e.Run.RunID)
	require.NoError(t, err)

	assert.Equal(t, "EUR_USD", e.Run.Symbol)
	assert.Equal(t, "buy-and-hold", e.Run.Strategy)
	assert.Equal(t, 1, e.Run.Trades)
	assert.Equal(t, 1, e.Run.Losses)
	assert.InDelta(t, -500, e.Run.NetPL, 1e-6)
	assert.InDelta(t, 5, e.Run.MaxDDPct, 1e-9)

	require.Len(t, e.Trades, 1)
	tr := e.Trades[0]
	assert.Equal(t, e.Run.RunID+"-0001", tr.TradeID)
	assert.Equal(t, e.Run.RunID, tr.RunID)
	assert.Equal(t, "long", tr.Side)
	assert.Equal(t, backtest.ExitStopLoss, tr.Reason)
	assert.True(t, t0.Equal(tr.OpenTime))
	assert.True(t, t0.AddDate(0, 0, 1).Equal(tr.CloseTime))

	require.Len(t, e.Equity, 5)
	assert.Equal(t, 0, e.Equity[0].Index)
	assert.Equal(t, 10000.0, e.Equity[0].Equity)
}

func TestSQLiteSchemaCreated(t *testing.T) {
	t.Parallel()

	j, path := newTestSQLite(t)
	require.NoError(t, j.Close())

	db, err := sql.Open("sqlite3", path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	rows, err := db.Query(`SELECT name FROM sqlite_master WHERE type='table'`)
	require.NoError(t, err)
	defer rows.Close()

	found := map[string]bool{}
	for rows.Next() {
		var name string
		require.NoError(t, rows.Scan(&name))
		found[name] = true
	}
	require.NoError(t, rows.Err())

	assert.True(t, found["runs"])
	assert.True(t, found["trades"])
	assert.True(t, found["equity"])
}

func TestSQLiteRoundTrip(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	j, _ := newTestSQLite(t)
	e := sampleEntry(t)
	e.Run.Notes = []string{"stopped out on day two", "retry with wider stop"}
	require.NoError(t, j.RecordRun(ctx, e))

	got, err := j.Load(ctx, e.Run.RunID)
	require.NoError(t, err)

	assert.Equal(t, e.Run.RunID, got.Run.RunID)
	assert.Equal(t, market.D1, got.Run.Timeframe)
	assert.Equal(t, e.Run.Params, got.Run.Params)
	assert.Equal(t, e.Run.Notes, got.Run.Notes)
	assert.True(t, e.Run.Start.Equal(got.Run.Start))
	assert.True(t, e.Run.End.Equal(got.Run.End))
	assert.True(t, e.Run.Created.Equal(got.Run.Created))
	assert.InDelta(t, e.Run.ReturnPct, got.Run.ReturnPct, 1e-9)
	assert.Equal(t, e.Run.Bars, got.Run.Bars)

	require.Len(t, got.Trades, 1)
	want, have := e.Trades[0], got.Trades[0]
	assert.Equal(t, want.TradeID, have.TradeID)
	assert.Equal(t, want.Reason, have.Reason)
	assert.InDelta(t, want.EntryPrice, have.EntryPrice, 1e-9)
	assert.InDelta(t, want.ExitPrice, have.ExitPrice, 1e-9)
	assert.InDelta(t, want.RealizedPL, have.RealizedPL, 1e-9)
	assert.True(t, want.OpenTime.Equal(have.OpenTime))
	assert.True(t, want.CloseTime.Equal(have.CloseTime))

	assert.Equal(t, e.Equity, got.Equity)

	tr, err := j.GetTrade(ctx, want.TradeID)
	require.NoError(t, err)
	assert.Equal(t, want.Symbol, tr.Symbol)

	runs, err := j.ListRuns(ctx)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, e.Run.RunID, runs[0].RunID)
}

func TestSQLiteNotFound(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	j, _ := newTestSQLite(t)

	_, err := j.GetRun(ctx, "missing")
	assert.True(t, errors.Is(err, ErrNotFound))
	_, err = j.GetTrade(ctx, "missing")
	assert.True(t, errors.Is(err, ErrNotFound))
	_, err = j.ExportOrg(ctx, "missing")
	assert.True(t, errors.Is(err, ErrNotFound))

	trades, err := j.ListTrades(ctx, "missing")
	require.NoError(t, err)
	assert.Empty(t, trades)
}

func TestSQLiteDuplicateRunRollsBack(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	j, _ := newTestSQLite(t)
	e := sampleEntry(t)
	require.NoError(t, j.RecordRun(ctx, e))

	e.Trades[0].TradeID = "other"
	assert.Error(t, j.RecordRun(ctx, e))

	_, err := j.GetTrade(ctx, "other")
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestListTradesClosedBetween(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	j, _ := newTestSQLite(t)
	e := sampleEntry(t)
	require.NoError(t, j.RecordRun(ctx, e))

	got, err := j.ListTradesClosedBetween(ctx, t0, t0.AddDate(0, 0, 2))
	require.NoError(t, err)
	assert.Len(t, got, 1)

	got, err = j.ListTradesClosedBetween(ctx, t0.AddDate(0, 0, 2), t0.AddDate(0, 0, 9))
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestCSVJournal(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	tradesPath := filepath.Join(dir, "trades.csv")
	equityPath := filepath.Join(dir, "equity.csv")

	j, err := NewCSV(tradesPath, equityPath)
	require.NoError(t, err)
	e := sampleEntry(t)
	require.NoError(t, j.RecordRun(context.Background(), e))
	require.NoError(t, j.Close())

	trades := readCSV(t, tradesPath)
	require.Len(t, trades, 2)
	assert.Equal(t, tradeHeader, trades[0])
	row := trades[1]
	assert.Equal(t, e.Trades[0].TradeID, row[1])
	assert.Equal(t, "100.000000", row[5])
	assert.Equal(t, "95.000000", row[6])
	assert.Equal(t, "2024-01-02T00:00:00Z", row[7])
	assert.Equal(t, "-500.00", row[9])
	assert.Equal(t, "-5.00", row[10])
	assert.Equal(t, "Stop Loss", row[11])

	equity := readCSV(t, equityPath)
	require.Len(t, equity, 6)
	assert.Equal(t, equityHeader, equity[0])
	assert.Equal(t, []string{e.Run.RunID, "2", "9500.00"}, equity[3])
}

func readCSV(t *testing.T, path string) [][]string {
	t.Helper()
	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	rows, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	return rows
}

func TestFormatRunOrg(t *testing.T) {
	t.Parallel()

	e := sampleEntry(t)
	e.Run.Notes = []string{"stop too tight"}
	out, err := FormatRunOrg(e)
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(out, "* BACKTEST: buy-and-hold EUR_USD 1d\n"))
	assert.Contains(t, out, ":RUN_ID:      "+e.Run.RunID)
	assert.Contains(t, out, ":START_DATE:  2024-01-02")
	assert.Contains(t, out, ":NET_PL:      -500.00")
	assert.Contains(t, out, ":MAX_DD_PCT:  5.00")
	assert.Contains(t, out, "| stop_loss_pct | 5 |")
	assert.Contains(t, out, "** Observations\n- stop too tight")
	tid := e.Trades[0].TradeID
	assert.Contains(t, out, "*** Trade: EUR_USD ("+tid[len(tid)-8:]+")")
	assert.Contains(t, out, ":REASON: Stop Loss")

	path := filepath.Join(t.TempDir(), "run.org")
	require.NoError(t, WriteOrg(path, e))
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, out, string(data))
}

func TestFormatTradesOrg(t *testing.T) {
	t.Parallel()

	trades := []TradeRecord{
		{TradeID: "a", Symbol: "EUR_USD", RealizedPL: 200, CloseTime: t0},
		{TradeID: "b", Symbol: "GBP_USD", RealizedPL: -100.125, CloseTime: t0},
	}
	out := FormatTradesOrg(trades)
	assert.Equal(t, 2, strings.Count(out, ":PROPERTIES:"))
	assert.Contains(t, out, ":REALIZED_PL: 200.00")
	assert.Contains(t, out, ":REALIZED_PL: -100.13")
	assert.Len(t, strings.Split(out, ":END:\n\n"), 2)

	assert.Empty(t, FormatTradesOrg(nil))
}
