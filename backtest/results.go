package backtest

import (
	"fmt"
	"io"
	"time"

	"go.uber.org/multierr"

	"github.com/rustyeddy/swapbot/journal"
	"github.com/rustyeddy/swapbot/market"
	"github.com/rustyeddy/swapbot/pkg/id"
	"github.com/rustyeddy/swapbot/sim"
)

// NewRun summarizes an outcome for the journal. The run gets a fresh id.
func NewRun(cs *market.CandleSet, acct sim.Account, o Outcome) journal.BacktestRun {
	now := time.Now().UTC()
	r := journal.BacktestRun{
		RunID:     id.NewAt(now),
		Created:   now,
		Pair:      cs.Pair,
		Source:    cs.Source,
		Timeframe: cs.Timeframe.String(),
		Start:     cs.Start(),
		End:       cs.End(),
		Candles:   cs.Len(),
		Capital:   acct.Capital,
		Units:     acct.Units,
		Evaluated: o.Evaluated,
		Recorded:  o.Recorded,
		Skipped:   len(multierr.Errors(o.Skipped)),
		Found:     o.Found,
	}
	if !o.Found {
		return r
	}

	res := o.Result
	r.Strategy = res.TestSet.Strategy.String()
	r.SignalColumn = res.TestSet.SignalColumn.String()
	r.WMAColumn = res.TestSet.WMAColumn.String()
	r.Period = res.TestSet.Period
	r.Trades = res.Ledger.Trades
	r.Wins = res.Ledger.Wins
	r.Losses = res.Ledger.Losses
	r.ProfitQuote = res.ProfitQuote
	r.ProfitBase = res.ProfitBase
	r.MaxDrawdown = res.Ledger.MaxDrawdown
	if last, ok := res.Ledger.Last(); ok {
		r.FinalQuote = last.QuoteNetAsset
	}
	return r
}

func PrintBacktestRun(w io.Writer, r journal.BacktestRun) {
	fmt.Fprintln(w, "==================================================")
	fmt.Fprintln(w, " Backtest Result")
	fmt.Fprintln(w, "==================================================")

	fmt.Fprintf(w, "Run ID:        %s\n", r.RunID)
	fmt.Fprintf(w, "Created:       %s\n", r.Created.Format(time.RFC3339))
	fmt.Fprintf(w, "Pair:          %s\n", r.Pair)
	fmt.Fprintf(w, "Timeframe:     %s\n", r.Timeframe)
	if r.Source != "" {
		fmt.Fprintf(w, "Source:        %s\n", r.Source)
	}
	if r.GitCommit != "" {
		fmt.Fprintf(w, "Git Commit:    %s\n", r.GitCommit)
	}

	fmt.Fprintln(w)
	fmt.Fprintln(w, "Period")
	fmt.Fprintln(w, "--------------------------------------------------")
	fmt.Fprintf(w, "Start:         %s\n", r.Start.Format(time.RFC3339))
	fmt.Fprintf(w, "End:           %s\n", r.End.Format(time.RFC3339))
	fmt.Fprintf(w, "Candles:       %d\n", r.Candles)

	fmt.Fprintln(w)
	fmt.Fprintln(w, "Sweep")
	fmt.Fprintln(w, "--------------------------------------------------")
	fmt.Fprintf(w, "Evaluated:     %d\n", r.Evaluated)
	fmt.Fprintf(w, "Recorded:      %d\n", r.Recorded)
	fmt.Fprintf(w, "Skipped:       %d\n", r.Skipped)

	fmt.Fprintln(w)
	if !r.Found {
		fmt.Fprintln(w, "No profitable configuration found.")
		fmt.Fprintln(w)
		return
	}

	fmt.Fprintln(w, "Winning Test Set")
	fmt.Fprintln(w, "--------------------------------------------------")
	fmt.Fprintf(w, "Strategy:      %s\n", r.Strategy)
	fmt.Fprintf(w, "Signal Column: %s\n", r.SignalColumn)
	fmt.Fprintf(w, "WMA Column:    %s\n", r.WMAColumn)
	fmt.Fprintf(w, "Period:        %d\n", r.Period)

	fmt.Fprintln(w)
	fmt.Fprintln(w, "Trade Statistics")
	fmt.Fprintln(w, "--------------------------------------------------")
	fmt.Fprintf(w, "Trades:        %d\n", r.Trades)
	fmt.Fprintf(w, "Wins:          %d\n", r.Wins)
	fmt.Fprintf(w, "Losses:        %d\n", r.Losses)
	fmt.Fprintf(w, "Win Rate:      %.2f%%\n", r.WinRate())

	fmt.Fprintln(w)
	fmt.Fprintln(w, "Account Performance")
	fmt.Fprintln(w, "--------------------------------------------------")
	fmt.Fprintf(w, "Capital:       %.6f\n", r.Capital)
	fmt.Fprintf(w, "Units:         %.6f\n", r.Units)
	fmt.Fprintf(w, "Final Quote:   %.6f\n", r.FinalQuote)
	fmt.Fprintf(w, "Profit Quote:  %.6f\n", r.ProfitQuote)
	fmt.Fprintf(w, "Profit Base:   %.6f\n", r.ProfitBase)
	if r.MaxDrawdown > 0 {
		fmt.Fprintf(w, "Max Drawdown:  %.6f\n", r.MaxDrawdown)
	}

	if r.OrgPath != "" {
		fmt.Fprintln(w)
		fmt.Fprintf(w, "Org Report:    %s\n", r.OrgPath)
	}

	if len(r.Notes) > 0 {
		fmt.Fprintln(w)
		fmt.Fprintln(w, "Observations")
		fmt.Fprintln(w, "--------------------------------------------------")
		for _, note := range r.Notes {
			fmt.Fprintf(w, "- %s\n", note)
		}
	}

	fmt.Fprintln(w)
}

// PrintCandidates lists the top n qualifying results. n <= 0 lists all.
func PrintCandidates(w io.Writer, o Outcome, n int) {
	c := o.Candidates
	if n > 0 && len(c) > n {
		c = c[:n]
	}
	fmt.Fprintf(w, "%-4s %-26s %-12s %-12s %6s %14s %14s\n", "#", "STRATEGY", "SIGNAL", "WMA", "PERIOD", "PROFIT_QUOTE", "PROFIT_BASE")
	for i, r := range c {
		fmt.Fprintf(w, "%-4d %-26s %-12s %-12s %6d %14.6f %14.6f\n",
			i+1, r.TestSet.Strategy, r.TestSet.SignalColumn, r.TestSet.WMAColumn, r.TestSet.Period,
			r.ProfitQuote, r.ProfitBase)
	}
}
