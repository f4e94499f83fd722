package market

import (
	"math"
	"time"
)

// OHLC holds the open, high, low and close of one price series within a
// candle. A side that never traded is NaN in every field.
type OHLC struct {
	Open  float64
	High  float64
	Low   float64
	Close float64
}

// NaNOHLC is the undefined OHLC.
func NaNOHLC() OHLC {
	n := math.NaN()
	return OHLC{Open: n, High: n, Low: n, Close: n}
}

// Flat returns a candle whose four prices are all p.
func Flat(p float64) OHLC {
	return OHLC{Open: p, High: p, Low: p, Close: p}
}

// Defined reports whether all four prices are finite.
func (o OHLC) Defined() bool {
	return finite(o.Open) && finite(o.High) && finite(o.Low) && finite(o.Close)
}

// Consistent reports whether low <= open,close <= high.
func (o OHLC) Consistent() bool {
	if !o.Defined() {
		return false
	}
	return o.Low <= o.Open && o.Low <= o.Close && o.Open <= o.High && o.Close <= o.High
}

func (o OHLC) get(field int) float64 {
	switch field {
	case 0:
		return o.Open
	case 1:
		return o.High
	case 2:
		return o.Low
	default:
		return o.Close
	}
}

// Candle represents one time bucket. The embedded OHLC is the mid price;
// Bid and Ask are built from sell and buy swaps respectively. The HA fields
// are filled in by HeikinAshi and are NaN until then.
type Candle struct {
	time.Time
	OHLC

	Bid OHLC
	Ask OHLC

	HA    OHLC
	HABid OHLC
	HAAsk OHLC

	Trades int
}

// NewCandle returns a candle at t with every derived column undefined.
func NewCandle(t time.Time, mid OHLC) Candle {
	return Candle{
		Time:  t,
		OHLC:  mid,
		Bid:   NaNOHLC(),
		Ask:   NaNOHLC(),
		HA:    NaNOHLC(),
		HABid: NaNOHLC(),
		HAAsk: NaNOHLC(),
	}
}

// Value returns the value of col for this candle.
func (c Candle) Value(col Column) float64 {
	return c.group(col.group()).get(col.field())
}

func (c Candle) group(g int) OHLC {
	switch g {
	case 0:
		return c.OHLC
	case 1:
		return c.Bid
	case 2:
		return c.Ask
	case 3:
		return c.HA
	case 4:
		return c.HABid
	case 5:
		return c.HAAsk
	}
	return NaNOHLC()
}

// Set assigns v to col.
func (c *Candle) Set(col Column, v float64) {
	var o *OHLC
	switch col.group() {
	case 0:
		o = &c.OHLC
	case 1:
		o = &c.Bid
	case 2:
		o = &c.Ask
	case 3:
		o = &c.HA
	case 4:
		o = &c.HABid
	case 5:
		o = &c.HAAsk
	default:
		return
	}
	switch col.field() {
	case 0:
		o.Open = v
	case 1:
		o.High = v
	case 2:
		o.Low = v
	default:
		o.Close = v
	}
}

// BuyPrice is the price a market buy fills at: the ask close when the bucket
// has one, the mid close otherwise.
func (c Candle) BuyPrice() float64 {
	if finite(c.Ask.Close) && c.Ask.Close > 0 {
		return c.Ask.Close
	}
	return c.Close
}

// SellPrice is the price a market sell fills at: the bid close when the bucket
// has one, the mid close otherwise.
func (c Candle) SellPrice() float64 {
	if finite(c.Bid.Close) && c.Bid.Close > 0 {
		return c.Bid.Close
	}
	return c.Close
}

func finite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}

// UsablePrice reports whether p can be traded at.
func UsablePrice(p float64) bool {
	return finite(p) && p > 0
}
