package backtest

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rustyeddy/swapbot/market"
	"github.com/rustyeddy/swapbot/market/strategies"
	"github.com/rustyeddy/swapbot/pkg/id"
	"github.com/rustyeddy/swapbot/sim"
)

func TestNewRun(t *testing.T) {
	t.Parallel()

	cs := uptrend(200)
	o, err := Run(cs, market.PriceColumns, strategies.All(), strategies.DefaultPeriod)
	require.NoError(t, err)

	r := NewRun(cs, sim.DefaultAccount(), o)
	_, err = id.Time(r.RunID)
	require.NoError(t, err)
	assert.Equal(t, "WETH/BOBO", r.Pair)
	assert.Equal(t, "5m0s", r.Timeframe)
	assert.Equal(t, 200, r.Candles)
	assert.True(t, r.Start.Equal(cs.Start()))
	assert.True(t, r.Found)
	assert.Equal(t, "WMA_OHLC", r.Strategy)
	assert.Equal(t, "open", r.SignalColumn)
	assert.Equal(t, 20, r.Period)
	assert.Equal(t, 1, r.Trades)
	assert.InDelta(t, 180, r.ProfitQuote, 1e-9)
	assert.InDelta(t, 180, r.FinalQuote, 1e-9)

	var buf bytes.Buffer
	PrintBacktestRun(&buf, r)
	out := buf.String()
	assert.Contains(t, out, "Strategy:      WMA_OHLC")
	assert.Contains(t, out, "Profit Quote:  180.000000")
	assert.Contains(t, out, "Evaluated:     128")
}

func TestNewRunNotFound(t *testing.T) {
	t.Parallel()

	cs := uptrend(5)
	o, err := Run(cs, market.PriceColumns, strategies.All(), 20)
	require.NoError(t, err)

	r := NewRun(cs, sim.DefaultAccount(), o)
	assert.False(t, r.Found)
	assert.Empty(t, r.Strategy)

	var buf bytes.Buffer
	PrintBacktestRun(&buf, r)
	assert.Contains(t, buf.String(), "No profitable configuration found.")
	assert.NotContains(t, buf.String(), "Winning Test Set")
}

func TestPrintCandidates(t *testing.T) {
	t.Parallel()

	o, err := Run(uptrend(60), []market.Column{market.Open, market.Close}, []strategies.Strategy{strategies.WMAOHLC, strategies.IWMAOHLC}, 5)
	require.NoError(t, err)
	require.Equal(t, 8, o.Recorded)

	var buf bytes.Buffer
	PrintCandidates(&buf, o, 3)
	lines := bytes.Split(bytes.TrimSpace(buf.Bytes()), []byte("\n"))
	assert.Len(t, lines, 4)
	assert.Contains(t, string(lines[1]), "WMA_OHLC")
}
