package journal

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
)

// ErrRunNotFound is returned when no backtest run has the requested id.
var ErrRunNotFound = errors.New("backtest run not found")

const runColumns = `run_id, created, pair, source, timeframe, start_time, end_time, candles,
	found, strategy, signal_column, wma_column, period, capital, units,
	evaluated, recorded, skipped, trades, wins, losses,
	profit_quote, profit_base, final_quote, max_drawdown, git_commit, org_path, notes`

type scanner interface {
	Scan(dest ...any) error
}

func scanRun(s scanner) (BacktestRun, error) {
	var (
		r     BacktestRun
		notes string
	)
	err := s.Scan(
		&r.RunID, &r.Created, &r.Pair, &r.Source, &r.Timeframe, &r.Start, &r.End, &r.Candles,
		&r.Found, &r.Strategy, &r.SignalColumn, &r.WMAColumn, &r.Period, &r.Capital, &r.Units,
		&r.Evaluated, &r.Recorded, &r.Skipped, &r.Trades, &r.Wins, &r.Losses,
		&r.ProfitQuote, &r.ProfitBase, &r.FinalQuote, &r.MaxDrawdown, &r.GitCommit, &r.OrgPath, &notes,
	)
	if err != nil {
		return BacktestRun{}, err
	}
	if notes != "" {
		r.Notes = strings.Split(notes, "\n")
	}
	return r, nil
}

// GetBacktestRun returns a single run by id.
func (j *SQLite) GetBacktestRun(ctx context.Context, runID string) (BacktestRun, error) {
	row := j.db.QueryRowContext(ctx, `SELECT `+runColumns+` FROM backtest_runs WHERE run_id = ?`, runID)

	r, err := scanRun(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return BacktestRun{}, fmt.Errorf("%w: %q", ErrRunNotFound, runID)
		}
		return BacktestRun{}, err
	}
	return r, nil
}

// ListBacktestRuns returns the most recent runs first. limit <= 0 means all.
func (j *SQLite) ListBacktestRuns(ctx context.Context, limit int) ([]BacktestRun, error) {
	q := `SELECT ` + runColumns + ` FROM backtest_runs ORDER BY created DESC, run_id DESC`
	args := []any{}
	if limit > 0 {
		q += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := j.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []BacktestRun
	for rows.Next() {
		r, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// ListLedger returns the ledger of a run in row order.
func (j *SQLite) ListLedger(ctx context.Context, runID string) ([]LedgerRow, error) {
	rows, err := j.db.QueryContext(ctx, `
		SELECT run_id, seq, time, position, signal, event, price, holdings,
		       buy_spend, sell_spend, quote_net_asset, base_net_asset, drawdown
		FROM ledger
		WHERE run_id = ?
		ORDER BY seq ASC`, runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []LedgerRow
	for rows.Next() {
		var l LedgerRow
		if err := rows.Scan(
			&l.RunID, &l.Seq, &l.Time, &l.Position, &l.Signal, &l.Event, &l.Price, &l.Holdings,
			&l.BuySpend, &l.SellSpend, &l.QuoteNetAsset, &l.BaseNetAsset, &l.Drawdown,
		); err != nil {
			return nil, err
		}
		out = append(out, l)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// ListTrades returns only the ledger rows that changed the position.
func (j *SQLite) ListTrades(ctx context.Context, runID string) ([]LedgerRow, error) {
	all, err := j.ListLedger(ctx, runID)
	if err != nil {
		return nil, err
	}
	var out []LedgerRow
	for _, l := range all {
		if l.Event != "" {
			out = append(out, l)
		}
	}
	return out, nil
}
