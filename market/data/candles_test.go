package data

import (
	"bytes"
	"encoding/csv"
	"math"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rustyeddy/swapbot/market"
)

var t0 = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

func sampleCandles() *market.CandleSet {
	cs := &market.CandleSet{Pair: "WETH/BOBO", Timeframe: 5 * time.Minute}
	for i, p := range []float64{100, 101, 99} {
		c := market.NewCandle(t0.Add(time.Duration(i)*10*time.Minute), market.Flat(p))
		if i > 0 {
			c.Bid = market.Flat(p - 0.5)
		}
		c.Trades = i + 1
		cs.Candles = append(cs.Candles, c)
	}
	// one gap of a single empty bucket
	cs.Candles[2].Time = cs.Candles[1].Time.Add(5 * time.Minute)
	return cs
}

func TestWriteCandles(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	require.NoError(t, WriteCandles(&buf, sampleCandles()))

	recs, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, recs, 4)
	assert.Len(t, recs[0], 14) // time, 12 columns, trades
	assert.Equal(t, "time", recs[0][0])
	assert.Equal(t, "bid_close", recs[0][8])
	assert.Equal(t, "trades", recs[0][13])

	assert.Equal(t, "2024-03-01T12:00:00Z", recs[1][0])
	assert.Equal(t, "100", recs[1][4])
	assert.Empty(t, recs[1][8])
	assert.Equal(t, "100.5", recs[2][8])
	assert.Equal(t, "3", recs[3][13])
}

func TestCandlesRoundTrip(t *testing.T) {
	t.Parallel()

	src := market.HeikinAshi(sampleCandles())
	path := filepath.Join(t.TempDir(), "candles.csv")
	require.NoError(t, SaveCandles(path, src))

	got, err := LoadCandles(path)
	require.NoError(t, err)
	assert.Equal(t, path, got.Source)
	assert.True(t, got.HeikinAshi)
	assert.Equal(t, 5*time.Minute, got.Timeframe)
	require.Equal(t, src.Len(), got.Len())

	for i := range src.Candles {
		for _, col := range market.Columns() {
			want, have := src.Candles[i].Value(col), got.Candles[i].Value(col)
			if math.IsNaN(want) {
				assert.True(t, math.IsNaN(have), "row %d %s", i, col)
				continue
			}
			assert.InDelta(t, want, have, 1e-12, "row %d %s", i, col)
		}
		assert.Equal(t, src.Candles[i].Trades, got.Candles[i].Trades)
		assert.True(t, src.Candles[i].Time.Equal(got.Candles[i].Time))
	}
}

func TestReadCandles_Errors(t *testing.T) {
	t.Parallel()

	_, err := ReadCandles(strings.NewReader(""))
	assert.ErrorIs(t, err, market.ErrEmptyInput)

	_, err = ReadCandles(strings.NewReader("time,open\n"))
	assert.ErrorIs(t, err, market.ErrEmptyInput)

	_, err = ReadCandles(strings.NewReader("when,open\n"))
	assert.ErrorIs(t, err, market.ErrMissingField)

	_, err = ReadCandles(strings.NewReader("time,vwap\n"))
	assert.ErrorIs(t, err, market.ErrUnknownColumn)

	_, err = ReadCandles(strings.NewReader("time,open\n2024-03-01T12:00:00Z,x\n"))
	assert.Error(t, err)

	// mid columns missing
	_, err = ReadCandles(strings.NewReader("time,close\n2024-03-01T12:00:00Z,5\n"))
	assert.ErrorContains(t, err, "not a consistent OHLC")

	cs, err := ReadCandles(strings.NewReader("time,open,high,low,close\n2024-03-01T12:00:00Z,5,6,4,5\n"))
	require.NoError(t, err)
	assert.Equal(t, market.DefaultTimeframe, cs.Timeframe)
	assert.True(t, math.IsNaN(cs.Candles[0].Bid.Close))
	assert.Equal(t, 5.0, cs.Candles[0].Close)
	assert.False(t, cs.HeikinAshi)
}

func TestReadCandles_Malformed(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		csv    string
		errMsg string
	}{
		{
			name: "reversed rows",
			csv: `time,open,high,low,close
2024-03-01T12:10:00Z,10,11,9,10
2024-03-01T12:05:00Z,10,11,9,10
2024-03-01T12:00:00Z,10,11,9,10
`,
			errMsg: "timeframe must be positive",
		},
		{
			name: "low above high",
			csv: `time,open,high,low,close
2024-03-01T12:00:00Z,10,9,11,10
2024-03-01T12:05:00Z,10,11,9,10
`,
			errMsg: "row 0",
		},
		{
			name: "uneven spacing",
			csv: `time,open,high,low,close
2024-03-01T12:00:00Z,10,11,9,10
2024-03-01T12:10:00Z,10,11,9,10
2024-03-01T12:25:00Z,10,11,9,10
`,
			errMsg: "not a positive multiple",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ReadCandles(strings.NewReader(tt.csv))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errMsg)
		})
	}
}

func TestReadCandles_PartialHeikinAshi(t *testing.T) {
	t.Parallel()

	cs, err := ReadCandles(strings.NewReader("time,open,high,low,close,ha_close\n2024-03-01T12:00:00Z,5,6,4,5,5\n"))
	require.NoError(t, err)
	assert.False(t, cs.HeikinAshi)

	var buf bytes.Buffer
	require.NoError(t, WriteCandles(&buf, market.HeikinAshi(sampleCandles())))
	cs, err = ReadCandles(&buf)
	require.NoError(t, err)
	assert.True(t, cs.HeikinAshi)
}
