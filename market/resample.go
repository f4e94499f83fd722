package market

import (
	"fmt"
	"sort"
	"time"
)

// DefaultTimeframe is the bucket width used when none is configured.
const DefaultTimeframe = 5 * time.Minute

// bucket accumulates the swaps of one time bucket.
type bucket struct {
	start  int64
	trades int
	mid    ohlcBuilder
	bid    ohlcBuilder
	ask    ohlcBuilder
}

type ohlcBuilder struct {
	set  bool
	ohlc OHLC
}

func (b *ohlcBuilder) add(p float64) {
	if !b.set {
		b.ohlc = Flat(p)
		b.set = true
		return
	}
	if p > b.ohlc.High {
		b.ohlc.High = p
	}
	if p < b.ohlc.Low {
		b.ohlc.Low = p
	}
	b.ohlc.Close = p
}

// Resample buckets swaps into fixed width candles. Each swap lands in the
// bucket floor(ms/width)*width; the first price in a bucket is the open, the
// last the close. Empty buckets are omitted, never filled.
//
// Bid and ask candles are built the same way from the swaps on each side.
// When a bucket has no swap on one side, that side repeats the last known
// price as a flat candle; before the first swap on a side it is NaN.
//
// The input is not modified. Swaps are ordered by time (stable) first.
func Resample(swaps []Swap, width time.Duration, swapped bool) (*CandleSet, error) {
	if len(swaps) == 0 {
		return nil, fmt.Errorf("resample: %w", ErrEmptyInput)
	}
	if width < time.Millisecond {
		return nil, fmt.Errorf("resample: bucket width must be at least 1ms, got %s", width)
	}

	sorted := make([]Swap, len(swaps))
	copy(sorted, swaps)
	for i, s := range sorted {
		if err := s.check(); err != nil {
			return nil, fmt.Errorf("resample: swap %d (id %q): %w", i, s.ID, err)
		}
	}
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Time.Before(sorted[j].Time)
	})

	w := width.Milliseconds()
	cs := &CandleSet{
		Timeframe: width,
		Candles:   make([]Candle, 0, len(sorted)/4+1),
	}
	if s := sorted[0]; s.Token0 != "" || s.Token1 != "" {
		if swapped {
			cs.Pair = s.Token1 + "/" + s.Token0
		} else {
			cs.Pair = s.Token0 + "/" + s.Token1
		}
	}

	lastBid, lastAsk := NaNOHLC(), NaNOHLC()
	var cur *bucket

	flush := func() {
		if cur == nil {
			return
		}
		c := NewCandle(time.UnixMilli(cur.start).UTC(), cur.mid.ohlc)
		c.Trades = cur.trades
		if cur.bid.set {
			lastBid = cur.bid.ohlc
			c.Bid = cur.bid.ohlc
		} else if lastBid.Defined() {
			c.Bid = Flat(lastBid.Close)
		}
		if cur.ask.set {
			lastAsk = cur.ask.ohlc
			c.Ask = cur.ask.ohlc
		} else if lastAsk.Defined() {
			c.Ask = Flat(lastAsk.Close)
		}
		cs.Candles = append(cs.Candles, c)
	}

	for _, s := range sorted {
		start := floorDiv(s.Time.UnixMilli(), w) * w
		if cur == nil || cur.start != start {
			flush()
			cur = &bucket{start: start}
		}

		price, side := s.Price(swapped)
		cur.trades++
		cur.mid.add(price)
		if side == Bid {
			cur.bid.add(price)
		} else {
			cur.ask.add(price)
		}
	}
	flush()

	return cs, nil
}

func floorDiv(a, b int64) int64 {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}
