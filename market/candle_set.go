package market

import (
	"fmt"
	"time"
)

// CandleSet is an ordered table of fixed-width candles for one pair.
// Buckets without swaps are absent, so consecutive candles may be more than
// one Timeframe apart but are always a whole number of Timeframes apart.
type CandleSet struct {
	Pair      string
	Source    string
	Timeframe time.Duration
	Candles   []Candle

	// HeikinAshi is set once the HA columns have been computed.
	HeikinAshi bool
}

// Len returns the number of candles.
func (cs *CandleSet) Len() int {
	if cs == nil {
		return 0
	}
	return len(cs.Candles)
}

// Start is the bucket start of the first candle.
func (cs *CandleSet) Start() time.Time {
	if cs.Len() == 0 {
		return time.Time{}
	}
	return cs.Candles[0].Time
}

// End is the bucket start of the last candle.
func (cs *CandleSet) End() time.Time {
	if cs.Len() == 0 {
		return time.Time{}
	}
	return cs.Candles[len(cs.Candles)-1].Time
}

// Column copies one column out of the table, row-aligned with Candles.
func (cs *CandleSet) Column(col Column) []float64 {
	out := make([]float64, cs.Len())
	for i := range out {
		out[i] = cs.Candles[i].Value(col)
	}
	return out
}

// Clone returns a copy whose candle slice can be modified independently.
func (cs *CandleSet) Clone() *CandleSet {
	cp := *cs
	cp.Candles = make([]Candle, len(cs.Candles))
	copy(cp.Candles, cs.Candles)
	return &cp
}

// Tail returns a view over the last n candles. n is clamped to [0, Len].
func (cs *CandleSet) Tail(n int) *CandleSet {
	cp := *cs
	n = max(n, 0)
	if n < len(cs.Candles) {
		cp.Candles = cs.Candles[len(cs.Candles)-n:]
	}
	return &cp
}

// Validate checks the table invariants: mid candles are consistent and
// timestamps strictly increase in whole multiples of the timeframe.
func (cs *CandleSet) Validate() error {
	if cs.Len() == 0 {
		return ErrEmptyInput
	}
	if cs.Timeframe <= 0 {
		return fmt.Errorf("candles: timeframe must be positive, got %s", cs.Timeframe)
	}
	for i, c := range cs.Candles {
		if !c.OHLC.Consistent() {
			return fmt.Errorf("candles: row %d at %s is not a consistent OHLC: %+v", i, c.Time.Format(time.RFC3339), c.OHLC)
		}
		if i == 0 {
			continue
		}
		d := c.Time.Sub(cs.Candles[i-1].Time)
		if d <= 0 || d%cs.Timeframe != 0 {
			return fmt.Errorf("candles: row %d spacing %s is not a positive multiple of %s", i, d, cs.Timeframe)
		}
	}
	return nil
}

// Gaps counts the missing buckets between the first and last candle.
func (cs *CandleSet) Gaps() int {
	if cs.Len() < 2 || cs.Timeframe <= 0 {
		return 0
	}
	span := int(cs.End().Sub(cs.Start()) / cs.Timeframe)
	return span + 1 - cs.Len()
}
