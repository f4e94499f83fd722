package market

import "math"

// HeikinAshi returns a copy of cs with the HA, HABid and HAAsk columns
// filled in. Row count and order are preserved and the source columns are
// left untouched.
//
//	ha_close[i] = (open[i] + high[i] + low[i] + close[i]) / 4
//	ha_open[0]  = (open[0] + close[0]) / 2
//	ha_open[i]  = (ha_open[i-1] + ha_close[i-1]) / 2
//	ha_high[i]  = max(high[i], ha_open[i], ha_close[i])
//	ha_low[i]   = min(low[i], ha_open[i], ha_close[i])
//
// The recurrence is sequential. A side that starts out undefined (no bid
// swaps yet, say) is seeded again at its first defined row.
func HeikinAshi(cs *CandleSet) *CandleSet {
	out := cs.Clone()
	out.HeikinAshi = true

	var mid, bid, ask haState
	for i := range out.Candles {
		c := &out.Candles[i]
		c.HA = mid.next(c.OHLC)
		c.HABid = bid.next(c.Bid)
		c.HAAsk = ask.next(c.Ask)
	}
	return out
}

type haState struct {
	seeded bool
	prev   OHLC
}

func (s *haState) next(src OHLC) OHLC {
	if !src.Defined() {
		s.seeded = false
		return NaNOHLC()
	}

	haClose := (src.Open + src.High + src.Low + src.Close) / 4
	var haOpen float64
	if s.seeded {
		haOpen = (s.prev.Open + s.prev.Close) / 2
	} else {
		haOpen = (src.Open + src.Close) / 2
	}

	ha := OHLC{
		Open:  haOpen,
		Close: haClose,
		High:  math.Max(src.High, math.Max(haOpen, haClose)),
		Low:   math.Min(src.Low, math.Min(haOpen, haClose)),
	}
	s.prev = ha
	s.seeded = true
	return ha
}
