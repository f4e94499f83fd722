// journal/journal.go
package journal

import (
	"context"
	"time"

	"github.com/rustyeddy/swapbot/sim"
)

// BacktestRun is the summary of one backtest sweep and its winner.
type BacktestRun struct {
	RunID   string
	Created time.Time

	Pair      string
	Source    string // swaps file the candles came from
	Timeframe string
	Start     time.Time
	End       time.Time
	Candles   int

	// Winning TestSet. Empty when Found is false.
	Found        bool
	Strategy     string
	SignalColumn string
	WMAColumn    string
	Period       int

	Capital float64
	Units   float64

	// Sweep counters
	Evaluated int
	Recorded  int
	Skipped   int

	Trades int
	Wins   int
	Losses int

	ProfitQuote float64
	ProfitBase  float64
	FinalQuote  float64
	MaxDrawdown float64

	GitCommit string
	OrgPath   string

	Notes []string
}

// WinRate is wins over closed round trips, in percent.
func (r BacktestRun) WinRate() float64 {
	if n := r.Wins + r.Losses; n > 0 {
		return float64(r.Wins) / float64(n) * 100
	}
	return 0
}

// LedgerRow is one persisted ledger record of a run.
type LedgerRow struct {
	RunID string
	Seq   int
	Time  time.Time

	Position string
	Signal   int
	Event    string

	Price         float64
	Holdings      float64
	BuySpend      float64
	SellSpend     float64
	QuoteNetAsset float64
	BaseNetAsset  float64
	Drawdown      float64
}

// LedgerRows converts a simulated ledger into rows keyed by runID.
func LedgerRows(runID string, l sim.Ledger) []LedgerRow {
	out := make([]LedgerRow, len(l.Records))
	for i, r := range l.Records {
		out[i] = LedgerRow{
			RunID:         runID,
			Seq:           i,
			Time:          r.Time,
			Position:      r.Position.String(),
			Signal:        int(r.Signal),
			Event:         string(r.Event),
			Price:         r.Price,
			Holdings:      r.Holdings,
			BuySpend:      r.BuySpend,
			SellSpend:     r.SellSpend,
			QuoteNetAsset: r.QuoteNetAsset,
			BaseNetAsset:  r.BaseNetAsset,
			Drawdown:      r.Drawdown,
		}
	}
	return out
}

type Journal interface {
	RecordBacktest(ctx context.Context, run BacktestRun, ledger []LedgerRow) error
	Close() error
}
