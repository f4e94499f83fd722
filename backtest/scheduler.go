// Package backtest sweeps a grid of TestSets over one candle table and keeps
// the most profitable.
package backtest

import (
	"fmt"
	"runtime"
	"slices"
	"sync/atomic"
	"time"

	"go.uber.org/multierr"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/rustyeddy/swapbot/logger"
	"github.com/rustyeddy/swapbot/market"
	"github.com/rustyeddy/swapbot/market/strategies"
	"github.com/rustyeddy/swapbot/metrics"
	"github.com/rustyeddy/swapbot/sim"
)

// Result is one evaluated TestSet.
type Result struct {
	// Index is the TestSet's position in enumeration order.
	Index   int
	TestSet strategies.TestSet
	Ledger  sim.Ledger

	ProfitQuote float64
	ProfitBase  float64
}

// Profitable reports whether the result qualifies as a candidate.
func (r Result) Profitable() bool {
	return r.Ledger.Valid && (r.ProfitQuote > 0 || r.ProfitBase > 0)
}

// Outcome is what a sweep produced. Found is false when no TestSet
// qualified; that is a normal result, not an error.
type Outcome struct {
	Result Result
	Found  bool

	// Candidates holds every qualifying result ranked best first.
	Candidates []Result

	Evaluated int
	Recorded  int

	// Skipped aggregates the errors of evaluations that failed. Use
	// multierr.Errors to list them.
	Skipped error
}

// Scheduler evaluates a Space. The zero value runs one worker per CPU with
// the default account and no logging.
type Scheduler struct {
	Workers int
	Account sim.Account
	Logger  *zap.Logger
	Metrics *metrics.Backtest

	// Progress logs a progress line every Progress evaluations. Zero disables it.
	Progress int
}

// NewScheduler returns a scheduler with the default account.
func NewScheduler(workers int, log *zap.Logger) *Scheduler {
	return &Scheduler{
		Workers: workers,
		Account: sim.DefaultAccount(),
		Logger:  log,
	}
}

func (s *Scheduler) account() sim.Account {
	if s.Account.Units <= 0 {
		return sim.DefaultAccount()
	}
	return s.Account
}

func (s *Scheduler) workers() int {
	if s.Workers > 0 {
		return s.Workers
	}
	return runtime.GOMAXPROCS(0)
}

// Evaluate generates the signals of ts over cs and simulates them.
func (s *Scheduler) Evaluate(cs *market.CandleSet, ts strategies.TestSet) (Result, error) {
	out, err := strategies.Generate(ts, cs)
	if err != nil {
		return Result{}, err
	}
	l, err := sim.Simulate(out.Candles, out.Signals, s.account())
	if err != nil {
		return Result{}, fmt.Errorf("%s: %w", ts, err)
	}
	return Result{
		TestSet:     ts,
		Ledger:      l,
		ProfitQuote: l.ProfitQuote,
		ProfitBase:  l.ProfitBase,
	}, nil
}

type slot struct {
	res Result
	err error
}

// Run evaluates every TestSet of space over cs and returns the result with
// the greatest quote profit. Ties go to the TestSet enumerated first, so the
// outcome does not depend on Workers.
func (s *Scheduler) Run(cs *market.CandleSet, space Space) (Outcome, error) {
	if cs.Len() == 0 {
		return Outcome{}, fmt.Errorf("backtest: %w", market.ErrEmptyInput)
	}
	log := logger.OrNop(s.Logger)

	sets := space.TestSets()
	if len(sets) == 0 {
		log.Warn("backtest space is empty")
		return Outcome{}, nil
	}

	// HA columns are derived once and shared read-only by every worker.
	table := cs
	if space.needsHeikinAshi() && !cs.HeikinAshi {
		table = market.HeikinAshi(cs)
	}

	log.Info("backtest started",
		zap.String("pair", cs.Pair),
		zap.Int("candles", cs.Len()),
		zap.Int("testsets", len(sets)),
		zap.Int("workers", s.workers()),
	)
	started := time.Now()

	slots := make([]slot, len(sets))
	var done atomic.Int64

	var g errgroup.Group
	g.SetLimit(s.workers())
	for i, ts := range sets {
		i, ts := i, ts
		g.Go(func() error {
			t := time.Now()
			res, err := s.Evaluate(table, ts)
			res.Index = i
			slots[i] = slot{res: res, err: err}

			outcome := metrics.Rejected
			switch {
			case err != nil:
				outcome = metrics.Skipped
				log.Warn("testset skipped", zap.Stringer("testset", ts), zap.Error(err))
			case res.Profitable():
				outcome = metrics.Recorded
			}
			s.Metrics.Observe(ts.Strategy.String(), outcome, time.Since(t).Seconds())

			if n := done.Add(1); s.Progress > 0 && n%int64(s.Progress) == 0 {
				log.Info("backtest progress", zap.Int64("done", n), zap.Int("total", len(sets)))
			}
			// failures are isolated per TestSet
			return nil
		})
	}
	_ = g.Wait()

	o := reduce(slots)
	if o.Found {
		s.Metrics.Sweep(cs.Len(), o.Result.ProfitQuote)
		log.Info("backtest finished",
			zap.Stringer("winner", o.Result.TestSet),
			zap.Float64("profit_quote", o.Result.ProfitQuote),
			zap.Float64("profit_base", o.Result.ProfitBase),
			zap.Int("recorded", o.Recorded),
			zap.Int("skipped", len(multierr.Errors(o.Skipped))),
			zap.Duration("elapsed", time.Since(started)),
		)
	} else {
		s.Metrics.Sweep(cs.Len(), 0)
		log.Info("backtest found no profitable testset",
			zap.Int("evaluated", o.Evaluated),
			zap.Int("skipped", len(multierr.Errors(o.Skipped))),
			zap.Duration("elapsed", time.Since(started)),
		)
	}
	return o, nil
}

// reduce picks the greatest quote profit, breaking ties on the lower
// enumeration index, so the slot order does not matter.
func reduce(slots []slot) Outcome {
	var o Outcome
	for _, sl := range slots {
		if sl.err != nil {
			o.Skipped = multierr.Append(o.Skipped, sl.err)
			continue
		}
		o.Evaluated++
		if !sl.res.Profitable() {
			continue
		}
		o.Recorded++
		o.Candidates = append(o.Candidates, sl.res)
		if !o.Found || better(sl.res, o.Result) {
			o.Result = sl.res
			o.Found = true
		}
	}

	slices.SortFunc(o.Candidates, func(a, b Result) int {
		switch {
		case better(a, b):
			return -1
		case better(b, a):
			return 1
		}
		return 0
	})
	return o
}

func better(a, b Result) bool {
	if a.ProfitQuote != b.ProfitQuote {
		return a.ProfitQuote > b.ProfitQuote
	}
	return a.Index < b.Index
}

// Run sweeps columns on both axes with strats at a single period, using
// the default scheduler.
func Run(cs *market.CandleSet, columns []market.Column, strats []strategies.Strategy, period int) (Outcome, error) {
	s := &Scheduler{Account: sim.DefaultAccount()}
	return s.Run(cs, Space{
		SignalColumns: columns,
		WMAColumns:    columns,
		Strategies:    strats,
		Periods:       []int{period},
	})
}
