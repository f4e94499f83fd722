package journal

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	_ "github.com/mattn/go-sqlite3"
)

// SQLite stores backtest runs and their ledgers in a sqlite3 file.
type SQLite struct {
	db *sql.DB
}

func NewSQLite(path string) (*SQLite, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}

	if _, err := db.Exec(Schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("journal schema: %w", err)
	}

	return &SQLite{db: db}, nil
}

// RecordBacktest writes the run and its ledger in one transaction.
func (j *SQLite) RecordBacktest(ctx context.Context, r BacktestRun, ledger []LedgerRow) error {
	tx, err := j.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO backtest_runs
		(run_id, created, pair, source, timeframe, start_time, end_time, candles,
		 found, strategy, signal_column, wma_column, period, capital, units,
		 evaluated, recorded, skipped, trades, wins, losses,
		 profit_quote, profit_base, final_quote, max_drawdown, git_commit, org_path, notes)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		r.RunID, r.Created, r.Pair, r.Source, r.Timeframe, r.Start, r.End, r.Candles,
		r.Found, r.Strategy, r.SignalColumn, r.WMAColumn, r.Period, r.Capital, r.Units,
		r.Evaluated, r.Recorded, r.Skipped, r.Trades, r.Wins, r.Losses,
		r.ProfitQuote, r.ProfitBase, r.FinalQuote, r.MaxDrawdown, r.GitCommit, r.OrgPath,
		strings.Join(r.Notes, "\n"),
	)
	if err != nil {
		return fmt.Errorf("insert run %s: %w", r.RunID, err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO ledger
		(run_id, seq, time, position, signal, event, price, holdings,
		 buy_spend, sell_spend, quote_net_asset, base_net_asset, drawdown)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, l := range ledger {
		if _, err := stmt.ExecContext(ctx,
			r.RunID, l.Seq, l.Time, l.Position, l.Signal, l.Event, l.Price, l.Holdings,
			l.BuySpend, l.SellSpend, l.QuoteNetAsset, l.BaseNetAsset, l.Drawdown,
		); err != nil {
			return fmt.Errorf("insert ledger %s/%d: %w", r.RunID, l.Seq, err)
		}
	}

	return tx.Commit()
}

// ExportBacktestOrg loads a run and returns its Org block.
func (j *SQLite) ExportBacktestOrg(ctx context.Context, runID string) (string, error) {
	r, err := j.GetBacktestRun(ctx, runID)
	if err != nil {
		return "", err
	}
	return FormatBacktestOrg(r)
}

func (j *SQLite) Close() error {
	return j.db.Close()
}
