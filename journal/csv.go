package journal

import (
	"context"
	"encoding/csv"
	"os"
	"strconv"
	"time"

	"github.com/shopspring/decimal"
)

var (
	tradeHeader  = []string{"run_id", "trade_id", "symbol", "side", "units", "entry_price", "exit_price", "open_time", "close_time", "realized_pl", "profit_pct", "reason"}
	equityHeader = []string{"run_id", "index", "equity"}
)

// CSVJournal appends trades and equity points to two CSV files. Run
// summaries are not written; every row carries its run ID.
type CSVJournal struct {
	trades *csv.Writer
	equity *csv.Writer
	tf, ef *os.File
}

func NewCSV(tradesPath, equityPath string) (*CSVJournal, error) {
	tf, err := os.Create(tradesPath)
	if err != nil {
		return nil, err
	}
	ef, err := os.Create(equityPath)
	if err != nil {
		tf.Close()
		return nil, err
	}

	j := &CSVJournal{trades: csv.NewWriter(tf), equity: csv.NewWriter(ef), tf: tf, ef: ef}
	if err := j.write(j.trades, tradeHeader); err != nil {
		j.Close()
		return nil, err
	}
	if err := j.write(j.equity, equityHeader); err != nil {
		j.Close()
		return nil, err
	}
	return j, nil
}

func (j *CSVJournal) RecordRun(_ context.Context, e Entry) error {
	for _, t := range e.Trades {
		if err := j.trades.Write([]string{
			t.RunID,
			t.TradeID,
			t.Symbol,
			t.Side,
			price(t.Units),
			price(t.EntryPrice),
			price(t.ExitPrice),
			t.OpenTime.UTC().Format(time.RFC3339),
			t.CloseTime.UTC().Format(time.RFC3339),
			money(t.RealizedPL),
			money(t.ProfitPct),
			t.Reason,
		}); err != nil {
			return err
		}
	}
	j.trades.Flush()
	if err := j.trades.Error(); err != nil {
		return err
	}

	for _, p := range e.Equity {
		if err := j.equity.Write([]string{p.RunID, strconv.Itoa(p.Index), money(p.Equity)}); err != nil {
			return err
		}
	}
	j.equity.Flush()
	return j.equity.Error()
}

func (j *CSVJournal) write(w *csv.Writer, row []string) error {
	if err := w.Write(row); err != nil {
		return err
	}
	w.Flush()
	return w.Error()
}

func (j *CSVJournal) Close() error {
	j.trades.Flush()
	j.equity.Flush()
	for _, err := range []error{j.trades.Error(), j.equity.Error(), j.tf.Close(), j.ef.Close()} {
		if err != nil {
			return err
		}
	}
	return nil
}

// money rounds half away from zero to cents.
func money(x float64) string {
	return decimal.NewFromFloat(x).StringFixed(2)
}

func price(x float64) string {
	return decimal.NewFromFloat(x).StringFixed(6)
}
