package backtest

import (
	"errors"
	"math"
	"math/rand"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/multierr"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/rustyeddy/swapbot/market"
	"github.com/rustyeddy/swapbot/market/indicators"
	"github.com/rustyeddy/swapbot/market/strategies"
	"github.com/rustyeddy/swapbot/metrics"
	"github.com/rustyeddy/swapbot/sim"
)

var t0 = time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)

// uptrend opens at 100+i and closes one higher on every candle.
func uptrend(n int) *market.CandleSet {
	cs := &market.CandleSet{Pair: "WETH/BOBO", Timeframe: 5 * time.Minute}
	for i := 0; i < n; i++ {
		open := 100 + float64(i)
		closeP := open + 1
		cs.Candles = append(cs.Candles, market.NewCandle(t0.Add(time.Duration(i)*cs.Timeframe), market.OHLC{
			Open: open, High: closeP + 0.5, Low: open - 0.5, Close: closeP,
		}))
	}
	return cs
}

func randomWalk(n int, seed int64) *market.CandleSet {
	r := rand.New(rand.NewSource(seed))
	cs := &market.CandleSet{Pair: "WETH/BOBO", Timeframe: 5 * time.Minute}
	p := 100.0
	for i := 0; i < n; i++ {
		open := p
		p += r.NormFloat64()
		if p < 1 {
			p = 1
		}
		hi := math.Max(open, p) + r.Float64()
		lo := math.Min(open, p) - r.Float64()
		c := market.NewCandle(t0.Add(time.Duration(i)*cs.Timeframe), market.OHLC{Open: open, High: hi, Low: lo, Close: p})
		c.Bid = market.Flat(p * 0.999)
		c.Ask = market.Flat(p * 1.001)
		cs.Candles = append(cs.Candles, c)
	}
	return cs
}

func TestSpaceTestSets(t *testing.T) {
	t.Parallel()

	sets := DefaultSpace(strategies.DefaultPeriod).TestSets()

	// 4x4 mid pairs and 4x4 HA pairs, four strategies each
	require.Len(t, sets, 128)
	assert.Equal(t, strategies.TestSet{
		SignalColumn: market.Open,
		WMAColumn:    market.Open,
		Strategy:     strategies.WMAOHLC,
		Period:       20,
	}, sets[0])

	for _, ts := range sets {
		assert.NoError(t, ts.Validate())
	}

	sp := Space{
		SignalColumns: []market.Column{market.Close},
		WMAColumns:    []market.Column{market.Open, market.HAOpen},
		Strategies:    []strategies.Strategy{strategies.IWMAOHLC, strategies.WMAHeikinAshi},
		Periods:       []int{3, 5},
	}
	got := sp.TestSets()
	require.Len(t, got, 2)
	assert.Equal(t, 3, got[0].Period)
	assert.Equal(t, 5, got[1].Period)
	assert.True(t, sp.needsHeikinAshi())
}

func TestRun_UptrendPicksWMA(t *testing.T) {
	t.Parallel()

	cs := uptrend(200)
	o, err := Run(cs, market.PriceColumns, strategies.All(), strategies.DefaultPeriod)
	require.NoError(t, err)
	require.True(t, o.Found)
	assert.Nil(t, o.Skipped)

	win := o.Result.TestSet
	assert.Equal(t, indicators.Weighted, win.Strategy.Indicator)
	assert.False(t, win.Strategy.Inverse)
	assert.Greater(t, o.Result.ProfitQuote, 0.0)

	// long from the first defined row (close 120) to the end (close 300)
	assert.Equal(t, market.Open, win.SignalColumn)
	assert.Equal(t, market.Open, win.WMAColumn)
	assert.Equal(t, strategies.WMAOHLC, win.Strategy)
	assert.InDelta(t, 180, o.Result.ProfitQuote, 1e-9)
	assert.True(t, o.Result.Ledger.Unwound)

	assert.Equal(t, 128, o.Evaluated)
	assert.Equal(t, o.Recorded, len(o.Candidates))
	assert.Equal(t, o.Result, o.Candidates[0])

	// nothing inverse profits in a straight uptrend
	for _, c := range o.Candidates {
		assert.False(t, c.TestSet.Strategy.Inverse, c.TestSet.String())
	}

	// the input table is left alone
	assert.False(t, cs.HeikinAshi)
}

func TestRun_Deterministic(t *testing.T) {
	t.Parallel()

	cs := randomWalk(400, 7)
	space := DefaultSpace(10)
	space.Periods = []int{5, 10, 30}

	seq := &Scheduler{Workers: 1, Account: sim.DefaultAccount()}
	par := &Scheduler{Workers: 8, Account: sim.DefaultAccount()}

	a, err := seq.Run(cs, space)
	require.NoError(t, err)
	b, err := par.Run(cs, space)
	require.NoError(t, err)

	assert.Equal(t, a, b)
}

func TestRun_NotFound(t *testing.T) {
	t.Parallel()

	// shorter than the period: no indicator value is ever defined
	o, err := Run(uptrend(10), market.PriceColumns, strategies.All(), 20)
	require.NoError(t, err)
	assert.False(t, o.Found)
	assert.Zero(t, o.Recorded)
	assert.Equal(t, 128, o.Evaluated)
	assert.Empty(t, o.Candidates)

	o, err = (&Scheduler{}).Run(uptrend(10), Space{})
	require.NoError(t, err)
	assert.False(t, o.Found)

	_, err = Run(&market.CandleSet{}, market.PriceColumns, strategies.All(), 20)
	assert.ErrorIs(t, err, market.ErrEmptyInput)
}

func TestRun_SkipsFailingTestSet(t *testing.T) {
	t.Parallel()

	cs := uptrend(60)
	cs.Candles[40].Close = math.NaN()

	core, logs := observer.New(zapcore.InfoLevel)
	reg := prometheus.NewRegistry()
	m, err := metrics.NewBacktest(reg)
	require.NoError(t, err)

	s := &Scheduler{Workers: 2, Account: sim.DefaultAccount(), Logger: zap.New(core), Metrics: m}
	o, err := s.Run(cs, Space{
		SignalColumns: []market.Column{market.Close, market.Open},
		WMAColumns:    []market.Column{market.Open},
		Strategies:    []strategies.Strategy{strategies.WMAOHLC},
		Periods:       []int{5},
	})
	require.NoError(t, err)

	// close drops to NaN on row 40 and the resulting sell has no price
	errs := multierr.Errors(o.Skipped)
	require.Len(t, errs, 1)
	assert.True(t, errors.Is(errs[0], sim.ErrNoPrice))

	require.True(t, o.Found)
	assert.Equal(t, market.Open, o.Result.TestSet.SignalColumn)
	assert.Equal(t, 1, o.Result.Index)
	assert.Equal(t, 1, o.Evaluated)

	assert.Equal(t, 1, logs.FilterMessage("testset skipped").Len())
	assert.Equal(t, 1, logs.FilterMessage("backtest finished").Len())
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Evaluations.WithLabelValues("WMA_OHLC", metrics.Skipped)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Evaluations.WithLabelValues("WMA_OHLC", metrics.Recorded)))
	assert.Equal(t, 60.0, testutil.ToFloat64(m.Candles))
}

func TestReduce_TieGoesToEarliest(t *testing.T) {
	t.Parallel()

	valid := sim.Ledger{Valid: true}
	slots := []slot{
		{res: Result{Index: 0, Ledger: valid, ProfitQuote: 1}},
		{res: Result{Index: 1, Ledger: valid, ProfitQuote: 5}},
		{err: errors.New("boom")},
		{res: Result{Index: 3, Ledger: valid, ProfitQuote: 5}},
		{res: Result{Index: 4, Ledger: sim.Ledger{}, ProfitQuote: 50}},
		{res: Result{Index: 5, Ledger: valid, ProfitBase: 0.1}},
	}

	o := reduce(slots)
	require.True(t, o.Found)
	assert.Equal(t, 1, o.Result.Index)
	assert.Equal(t, 5, o.Evaluated)
	assert.Equal(t, 4, o.Recorded)
	assert.Error(t, o.Skipped)

	idx := make([]int, 0, len(o.Candidates))
	for _, c := range o.Candidates {
		idx = append(idx, c.Index)
	}
	assert.Equal(t, []int{1, 3, 0, 5}, idx)

	// reversing the evaluation order does not change the winner
	rev := make([]slot, len(slots))
	for i, sl := range slots {
		rev[len(slots)-1-i] = sl
	}
	assert.Equal(t, 1, reduce(rev).Result.Index)
}

func TestEvaluate(t *testing.T) {
	t.Parallel()

	s := NewScheduler(1, nil)
	ts, err := strategies.NewTestSet("ha_close", "ha_open", "WMA_HEIKEN_ASHI", 5)
	require.NoError(t, err)

	res, err := s.Evaluate(uptrend(30), ts)
	require.NoError(t, err)
	assert.Equal(t, ts, res.TestSet)
	assert.Len(t, res.Ledger.Records, 30)
	assert.Equal(t, res.Ledger.ProfitQuote, res.ProfitQuote)

	_, err = s.Evaluate(uptrend(30), strategies.TestSet{SignalColumn: market.Close, WMAColumn: market.HAOpen, Strategy: strategies.WMAOHLC, Period: 5})
	assert.ErrorIs(t, err, strategies.ErrColumnMismatch)
}
