// journal/csv.go
package journal

import (
	"context"
	"encoding/csv"
	"io"
	"os"
	"strconv"
	"time"
)

var (
	runHeader = []string{
		"run_id", "created", "pair", "timeframe", "start", "end", "candles",
		"found", "strategy", "signal_column", "wma_column", "period",
		"trades", "wins", "losses", "profit_quote", "profit_base", "max_drawdown",
	}
	ledgerHeader = []string{
		"run_id", "seq", "time", "position", "signal", "event", "price", "holdings",
		"buy_spend", "sell_spend", "quote_net_asset", "base_net_asset", "drawdown",
	}
)

// CSVJournal appends runs and ledgers to two CSV files.
type CSVJournal struct {
	runs   *csv.Writer
	ledger *csv.Writer
	rf, lf *os.File
}

func NewCSV(runsPath, ledgerPath string) (*CSVJournal, error) {
	rf, err := os.Create(runsPath)
	if err != nil {
		return nil, err
	}
	lf, err := os.Create(ledgerPath)
	if err != nil {
		_ = rf.Close()
		return nil, err
	}

	rw := csv.NewWriter(rf)
	lw := csv.NewWriter(lf)

	if err := rw.Write(runHeader); err != nil {
		return nil, err
	}
	if err := lw.Write(ledgerHeader); err != nil {
		return nil, err
	}

	rw.Flush()
	if err := rw.Error(); err != nil {
		return nil, err
	}
	lw.Flush()
	if err := lw.Error(); err != nil {
		return nil, err
	}

	return &CSVJournal{rw, lw, rf, lf}, nil
}

func (j *CSVJournal) RecordBacktest(_ context.Context, r BacktestRun, ledger []LedgerRow) error {
	err := j.runs.Write([]string{
		r.RunID,
		r.Created.UTC().Format(time.RFC3339),
		r.Pair,
		r.Timeframe,
		r.Start.UTC().Format(time.RFC3339),
		r.End.UTC().Format(time.RFC3339),
		strconv.Itoa(r.Candles),
		strconv.FormatBool(r.Found),
		r.Strategy,
		r.SignalColumn,
		r.WMAColumn,
		strconv.Itoa(r.Period),
		strconv.Itoa(r.Trades),
		strconv.Itoa(r.Wins),
		strconv.Itoa(r.Losses),
		f(r.ProfitQuote),
		f(r.ProfitBase),
		f(r.MaxDrawdown),
	})
	if err != nil {
		return err
	}
	j.runs.Flush()
	if err := j.runs.Error(); err != nil {
		return err
	}

	if err := writeLedger(j.ledger, ledger); err != nil {
		return err
	}
	j.ledger.Flush()
	return j.ledger.Error()
}

func (j *CSVJournal) Close() error {
	j.runs.Flush()
	if err := j.runs.Error(); err != nil {
		return err
	}
	j.ledger.Flush()
	if err := j.ledger.Error(); err != nil {
		return err
	}

	if err := j.rf.Close(); err != nil {
		return err
	}
	if err := j.lf.Close(); err != nil {
		return err
	}
	return nil
}

// WriteLedgerCSV writes rows with a header line to w.
func WriteLedgerCSV(w io.Writer, rows []LedgerRow) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(ledgerHeader); err != nil {
		return err
	}
	if err := writeLedger(cw, rows); err != nil {
		return err
	}
	cw.Flush()
	return cw.Error()
}

func writeLedger(cw *csv.Writer, rows []LedgerRow) error {
	for _, l := range rows {
		err := cw.Write([]string{
			l.RunID,
			strconv.Itoa(l.Seq),
			l.Time.UTC().Format(time.RFC3339),
			l.Position,
			strconv.Itoa(l.Signal),
			l.Event,
			f(l.Price),
			f(l.Holdings),
			f(l.BuySpend),
			f(l.SellSpend),
			f(l.QuoteNetAsset),
			f(l.BaseNetAsset),
			f(l.Drawdown),
		})
		if err != nil {
			return err
		}
	}
	return nil
}

func f(x float64) string {
	return strconv.FormatFloat(x, 'f', 6, 64)
}
