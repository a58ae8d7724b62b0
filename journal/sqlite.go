package journal

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	_ "github.com/mattn/go-sqlite3"

	"github.com/rustyeddy/marketlab/market"
)

var ErrNotFound = errors.New("not found")

type SQLite struct {
	db *sql.DB
}

func NewSQLite(path string) (*SQLite, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}

	if _, err := db.Exec(Schema); err != nil {
		db.Close()
		return nil, err
	}

	return &SQLite{db: db}, nil
}

// RecordRun stores the run, its trades and its equity curve in one
// transaction.
func (j *SQLite) RecordRun(ctx context.Context, e Entry) error {
	params, err := json.Marshal(e.Run.Params)
	if err != nil {
		return err
	}

	tx, err := j.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	r := e.Run
	if _, err := tx.ExecContext(ctx, `
		INSERT INTO runs
		(run_id, created, symbol, timeframe, strategy, params, start_time, end_time, bars,
		 trades, wins, losses, start_balance, end_balance, net_pl, return_pct, win_rate,
		 profit_factor, max_dd_pct, notes)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		r.RunID, r.Created.UTC(), r.Symbol, string(r.Timeframe), r.Strategy, string(params),
		r.Start.UTC(), r.End.UTC(), r.Bars, r.Trades, r.Wins, r.Losses,
		r.StartBalance, r.EndBalance, r.NetPL, r.ReturnPct, r.WinRate,
		r.ProfitFactor, r.MaxDDPct, strings.Join(r.Notes, "\n"),
	); err != nil {
		return fmt.Errorf("insert run %s: %w", r.RunID, err)
	}

	for _, t := range e.Trades {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO trades
			(trade_id, run_id, symbol, side, units, entry_price, exit_price, open_time, close_time, realized_pl, profit_pct, reason)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			t.TradeID, t.RunID, t.Symbol, t.Side, t.Units, t.EntryPrice, t.ExitPrice,
			t.OpenTime.UTC(), t.CloseTime.UTC(), t.RealizedPL, t.ProfitPct, t.Reason,
		); err != nil {
			return fmt.Errorf("insert trade %s: %w", t.TradeID, err)
		}
	}

	for _, p := range e.Equity {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO equity (run_id, idx, equity) VALUES (?, ?, ?)`,
			p.RunID, p.Index, p.Equity,
		); err != nil {
			return fmt.Errorf("insert equity %s/%d: %w", p.RunID, p.Index, err)
		}
	}

	return tx.Commit()
}

const runColumns = `run_id, created, symbol, timeframe, strategy, params, start_time, end_time, bars,
	trades, wins, losses, start_balance, end_balance, net_pl, return_pct, win_rate,
	profit_factor, max_dd_pct, notes`

type scanner interface {
	Scan(dest ...any) error
}

func scanRun(s scanner) (Run, error) {
	var (
		r             Run
		tf            string
		params, notes string
	)
	if err := s.Scan(
		&r.RunID, &r.Created, &r.Symbol, &tf, &r.Strategy, &params, &r.Start, &r.End, &r.Bars,
		&r.Trades, &r.Wins, &r.Losses, &r.StartBalance, &r.EndBalance, &r.NetPL, &r.ReturnPct, &r.WinRate,
		&r.ProfitFactor, &r.MaxDDPct, &notes,
	); err != nil {
		return Run{}, err
	}
	r.Timeframe = market.Timeframe(tf)
	if err := json.Unmarshal([]byte(params), &r.Params); err != nil {
		return Run{}, fmt.Errorf("run %s params: %w", r.RunID, err)
	}
	if notes != "" {
		r.Notes = strings.Split(notes, "\n")
	}
	return r, nil
}

// GetRun returns a run summary by ID.
func (j *SQLite) GetRun(ctx context.Context, runID string) (Run, error) {
	row := j.db.QueryRowContext(ctx, `SELECT `+runColumns+` FROM runs WHERE run_id = ?`, runID)
	r, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Run{}, fmt.Errorf("%w: run %q", ErrNotFound, runID)
	}
	return r, err
}

// ListRuns returns every run, oldest first.
func (j *SQLite) ListRuns(ctx context.Context) ([]Run, error) {
	rows, err := j.db.QueryContext(ctx, `SELECT `+runColumns+` FROM runs ORDER BY created ASC, run_id ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Run
	for rows.Next() {
		r, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// ListTrades returns a run's trades in the order they were closed.
func (j *SQLite) ListTrades(ctx context.Context, runID string) ([]TradeRecord, error) {
	return j.queryTrades(ctx, `WHERE run_id = ? ORDER BY trade_id ASC`, runID)
}

func (j *SQLite) ListEquity(ctx context.Context, runID string) ([]EquityPoint, error) {
	rows, err := j.db.QueryContext(ctx,
		`SELECT run_id, idx, equity FROM equity WHERE run_id = ? ORDER BY idx ASC`, runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []EquityPoint
	for rows.Next() {
		var p EquityPoint
		if err := rows.Scan(&p.RunID, &p.Index, &p.Equity); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// Load returns the full entry of a run.
func (j *SQLite) Load(ctx context.Context, runID string) (Entry, error) {
	r, err := j.GetRun(ctx, runID)
	if err != nil {
		return Entry{}, err
	}
	trades, err := j.ListTrades(ctx, runID)
	if err != nil {
		return Entry{}, err
	}
	equity, err := j.ListEquity(ctx, runID)
	if err != nil {
		return Entry{}, err
	}
	return Entry{Run: r, Trades: trades, Equity: equity}, nil
}

// ExportOrg loads a run and renders it as an org-mode note.
func (j *SQLite) ExportOrg(ctx context.Context, runID string) (string, error) {
	e, err := j.Load(ctx, runID)
	if err != nil {
		return "", err
	}
	return FormatRunOrg(e)
}

func (j *SQLite) Close() error {
	return j.db.Close()
}
