package strategies

import (
	"encoding/json"
	"math"
	"testing"
	"time"

	"github.com/rustyeddy/swapbot/market"
	"github.com/rustyeddy/swapbot/market/indicators"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func uptrend(n int) *market.CandleSet {
	start := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	cs := &market.CandleSet{Timeframe: 5 * time.Minute}
	for i := 0; i < n; i++ {
		open := 100 + float64(i)
		closeP := open + 1
		cs.Candles = append(cs.Candles, market.NewCandle(start.Add(time.Duration(i)*cs.Timeframe), market.OHLC{
			Open: open, High: closeP + 0.5, Low: open - 0.5, Close: closeP,
		}))
	}
	return cs
}

func TestStrategyNames(t *testing.T) {
	t.Parallel()

	want := []string{
		"WMA_HEIKEN_ASHI",
		"WMA_OHLC",
		"WMA_HEIKEN_ASHI_INVERSE",
		"WMA_OHLC_INVERSE",
		"IWMA_HEIKEN_ASHI",
		"IWMA_OHLC",
		"IWMA_HEIKEN_ASHI_INVERSE",
		"IWMA_OHLC_INVERSE",
	}
	all := All()
	require.Len(t, all, 8)
	for i, s := range all {
		assert.Equal(t, want[i], s.String())
		got, err := ParseStrategy(want[i])
		require.NoError(t, err)
		assert.Equal(t, s, got)
	}

	s, err := ParseStrategy("iwma_heikin_ashi_inverse")
	require.NoError(t, err)
	assert.Equal(t, IWMAHeikinAshiInverse, s)

	_, err = ParseStrategy("EMA_OHLC")
	assert.ErrorIs(t, err, ErrUnknownStrategy)

	list, err := ParseStrategies(nil)
	require.NoError(t, err)
	assert.Equal(t, All(), list)
}

func TestStrategyAccepts(t *testing.T) {
	t.Parallel()

	assert.True(t, WMAHeikinAshi.Accepts(market.HAClose, market.HAOpen))
	assert.False(t, WMAHeikinAshi.Accepts(market.HAClose, market.Open))
	assert.False(t, WMAHeikinAshi.Accepts(market.Close, market.Open))
	assert.True(t, IWMAOHLCInverse.Accepts(market.Close, market.AskLow))
	assert.False(t, IWMAOHLCInverse.Accepts(market.HABidClose, market.AskLow))
}

func TestTestSetValidate(t *testing.T) {
	t.Parallel()

	ts, err := NewTestSet("ha_close", "ha_open", "WMA_HEIKEN_ASHI", 20)
	require.NoError(t, err)
	assert.Equal(t, TestSet{SignalColumn: market.HAClose, WMAColumn: market.HAOpen, Strategy: WMAHeikinAshi, Period: 20}, ts)

	_, err = NewTestSet("close", "ha_open", "WMA_HEIKEN_ASHI", 20)
	assert.ErrorIs(t, err, ErrColumnMismatch)

	_, err = NewTestSet("ha_close", "ha_open", "IWMA_OHLC", 20)
	assert.ErrorIs(t, err, ErrColumnMismatch)

	_, err = NewTestSet("close", "open", "WMA_OHLC", 0)
	assert.ErrorIs(t, err, indicators.ErrInvalidPeriod)

	_, err = NewTestSet("close", "vwap", "WMA_OHLC", 3)
	assert.ErrorIs(t, err, market.ErrUnknownColumn)

	_, err = NewTestSet("close", "open", "SMA_OHLC", 3)
	assert.ErrorIs(t, err, ErrUnknownStrategy)
}

func TestTestSetJSON(t *testing.T) {
	t.Parallel()

	ts := TestSet{SignalColumn: market.Close, WMAColumn: market.Low, Strategy: IWMAOHLCInverse, Period: 7}
	b, err := json.Marshal(ts)
	require.NoError(t, err)
	assert.JSONEq(t, `{"signal_column":"close","wma_column":"low","strategy":"IWMA_OHLC_INVERSE","period":7}`, string(b))

	var back TestSet
	require.NoError(t, json.Unmarshal(b, &back))
	assert.Equal(t, ts, back)
}

func TestGenerate_OHLC(t *testing.T) {
	t.Parallel()

	cs := uptrend(50)
	ts := TestSet{SignalColumn: market.Close, WMAColumn: market.Close, Strategy: WMAOHLC, Period: 10}

	out, err := Generate(ts, cs)
	require.NoError(t, err)
	assert.Same(t, cs, out.Candles)
	assert.Equal(t, 41, out.Indicator.Defined())
	require.Equal(t, 50, out.Signals.Len())

	// close runs above its lagging WMA from the first defined row
	for i, s := range out.Signals.Signals {
		if i == 9 {
			assert.Equal(t, market.Bullish, s)
			continue
		}
		assert.Equal(t, market.Hold, s, "row %d", i)
	}

	inv, err := Generate(TestSet{SignalColumn: market.Close, WMAColumn: market.Close, Strategy: WMAOHLCInverse, Period: 10}, cs)
	require.NoError(t, err)
	assert.Equal(t, 0, inv.Signals.Events())
}

func TestGenerate_HeikinAshi(t *testing.T) {
	t.Parallel()

	cs := uptrend(30)
	ts := TestSet{SignalColumn: market.HAClose, WMAColumn: market.HAOpen, Strategy: IWMAHeikinAshi, Period: 5}

	out, err := Generate(ts, cs)
	require.NoError(t, err)
	assert.True(t, out.Candles.HeikinAshi)
	assert.False(t, cs.HeikinAshi)
	assert.True(t, math.IsNaN(cs.Candles[0].HA.Close))
	assert.Equal(t, 26, out.Indicator.Defined())

	// reuse precomputed HA candles
	ha := market.HeikinAshi(cs)
	again, err := Generate(ts, ha)
	require.NoError(t, err)
	assert.Same(t, ha, again.Candles)
	assert.Equal(t, out.Signals, again.Signals)
}

func TestGenerate_Errors(t *testing.T) {
	t.Parallel()

	_, err := Generate(TestSet{SignalColumn: market.Close, WMAColumn: market.HAClose, Strategy: WMAOHLC, Period: 3}, uptrend(5))
	assert.ErrorIs(t, err, ErrColumnMismatch)

	_, err = Generate(TestSet{SignalColumn: market.Close, WMAColumn: market.Close, Strategy: WMAOHLC, Period: 3}, &market.CandleSet{})
	assert.ErrorIs(t, err, market.ErrEmptyInput)
}
