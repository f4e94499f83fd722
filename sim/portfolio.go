// Package sim replays a signal column through a single-account position
// state machine and produces a ledger.
package sim

import (
	"errors"
	"fmt"
	"time"

	"github.com/rustyeddy/swapbot/market"
)

var (
	// ErrLengthMismatch is returned when the signal column is not aligned with the candles.
	ErrLengthMismatch = errors.New("signal column does not match candles")

	// ErrNoPrice is returned when a position change falls on a row without a usable price.
	ErrNoPrice = errors.New("no usable price")
)

// Account configures the simulated account.
type Account struct {
	// Capital is the starting balance in the quote currency.
	Capital float64 `json:"capital" yaml:"capital"`

	// Units is the base currency size of each position.
	Units float64 `json:"units" yaml:"units"`
}

// DefaultAccount trades one unit from a zero balance.
func DefaultAccount() Account {
	return Account{Capital: 0, Units: 1}
}

// Record is one ledger row, aligned with a candle.
type Record struct {
	Time     time.Time     `json:"time"`
	Position Position      `json:"position"`
	Signal   market.Signal `json:"signal"`
	Event    Event         `json:"event,omitempty"`

	// Price is the mark price used to value holdings (the sell price).
	Price    float64 `json:"price"`
	Holdings float64 `json:"holdings"`

	BuySpend  float64 `json:"buy_spend"`
	SellSpend float64 `json:"sell_spend"`

	QuoteNetAsset float64 `json:"quote_net_asset"`
	BaseNetAsset  float64 `json:"base_net_asset"`
	Drawdown      float64 `json:"drawdown"`
}

// Ledger is the outcome of one simulation.
type Ledger struct {
	Records []Record

	// Valid is false for a degenerate run: no rows, no row with defined
	// signal inputs, or no usable price anywhere.
	Valid bool

	ProfitQuote float64
	ProfitBase  float64

	Trades      int
	Wins        int
	Losses      int
	MaxDrawdown float64
	Unwound     bool
}

// Last returns the final record.
func (l Ledger) Last() (Record, bool) {
	if len(l.Records) == 0 {
		return Record{}, false
	}
	return l.Records[len(l.Records)-1], true
}

// LastTrade returns the most recent record that changed the position.
func (l Ledger) LastTrade() (Record, bool) {
	for i := len(l.Records) - 1; i >= 0; i-- {
		if l.Records[i].Event != EventNone {
			return l.Records[i], true
		}
	}
	return Record{}, false
}

// Simulate walks the signal column over cs:
//   - Bullish while not long closes any short and opens a long.
//   - Bearish while not short closes any long and opens a short.
//   - Hold changes nothing.
//
// Buys fill at the candle's BuyPrice, sells at its SellPrice. Holdings are
// marked at the sell price. An open position is unwound at the last row.
func Simulate(cs *market.CandleSet, sc market.SignalColumn, acct Account) (Ledger, error) {
	if acct.Units <= 0 {
		return Ledger{}, fmt.Errorf("simulate: units must be positive, got %v", acct.Units)
	}
	if cs == nil {
		return Ledger{}, fmt.Errorf("simulate: nil candles: %w", market.ErrEmptyInput)
	}
	if cs.Len() != sc.Len() || len(sc.Defined) != len(sc.Signals) {
		return Ledger{}, fmt.Errorf("simulate: %w (%d candles, %d signals)", ErrLengthMismatch, cs.Len(), sc.Len())
	}
	if sc.Len() == 0 {
		return Ledger{}, nil
	}

	s := &state{acct: acct, ledger: Ledger{Records: make([]Record, 0, sc.Len())}}

	for i, c := range cs.Candles {
		sig := sc.Signals[i]
		if p := c.SellPrice(); market.UsablePrice(p) {
			s.mark = p
		}

		var ev Event
		var err error
		switch {
		case sig == market.Bullish && s.pos.side != Long:
			ev, err = s.buy(c)
		case sig == market.Bearish && s.pos.side != Short:
			ev, err = s.sell(c)
		}
		if err != nil {
			return Ledger{}, fmt.Errorf("simulate: row %d at %s: %w", i, c.Time.Format(time.RFC3339), err)
		}

		s.ledger.Records = append(s.ledger.Records, s.record(c.Time, sig, ev))
	}

	if s.pos.side != Flat {
		if err := s.unwind(cs.Candles[len(cs.Candles)-1]); err != nil {
			return Ledger{}, fmt.Errorf("simulate: unwind: %w", err)
		}
	}

	l := s.ledger
	l.Valid = sc.AnyDefined() && s.firstMark > 0
	if s.mark > 0 {
		last := l.Records[len(l.Records)-1]
		l.ProfitQuote = last.QuoteNetAsset - acct.Capital
		l.ProfitBase = l.ProfitQuote / s.mark
	}
	return l, nil
}

type state struct {
	acct   Account
	ledger Ledger

	pos       leg
	holdings  float64
	buySpend  float64
	sellSpend float64

	mark      float64
	firstMark float64
	peak      float64
	peakSet   bool
}

func (s *state) buy(c market.Candle) (Event, error) {
	price := c.BuyPrice()
	if !market.UsablePrice(price) {
		return EventNone, fmt.Errorf("buy: %w", ErrNoPrice)
	}

	ev := EventOpenLong
	qty := s.acct.Units
	if s.pos.side == Short {
		s.close(price)
		qty += s.acct.Units
		ev = EventReverseLong
	}
	s.buySpend += price * qty
	s.holdings += qty
	s.pos = leg{side: Long, entry: price}
	s.ledger.Trades++
	return ev, nil
}

func (s *state) sell(c market.Candle) (Event, error) {
	price := c.SellPrice()
	if !market.UsablePrice(price) {
		return EventNone, fmt.Errorf("sell: %w", ErrNoPrice)
	}

	ev := EventOpenShort
	qty := s.acct.Units
	if s.pos.side == Long {
		s.close(price)
		qty += s.acct.Units
		ev = EventReverseShort
	}
	s.sellSpend += price * qty
	s.holdings -= qty
	s.pos = leg{side: Short, entry: price}
	s.ledger.Trades++
	return ev, nil
}

// close tallies the round trip of the open leg at exit.
func (s *state) close(exit float64) {
	switch p := pnl(s.pos.side, s.pos.entry, exit, s.acct.Units); {
	case p > 0:
		s.ledger.Wins++
	case p < 0:
		s.ledger.Losses++
	}
	s.pos = leg{}
}

func (s *state) unwind(last market.Candle) error {
	rec := &s.ledger.Records[len(s.ledger.Records)-1]
	switch s.pos.side {
	case Long:
		price := last.SellPrice()
		if !market.UsablePrice(price) {
			price = s.mark
		}
		if !market.UsablePrice(price) {
			return ErrNoPrice
		}
		s.sellSpend += price * s.holdings
		s.close(price)
	case Short:
		price := last.BuyPrice()
		if !market.UsablePrice(price) {
			price = s.mark
		}
		if !market.UsablePrice(price) {
			return ErrNoPrice
		}
		s.buySpend += price * -s.holdings
		s.close(price)
	}
	s.holdings = 0

	ev := rec.Event
	if ev == EventNone {
		ev = EventUnwind
	}
	*rec = s.record(rec.Time, rec.Signal, ev)
	s.ledger.Unwound = true
	return nil
}

func (s *state) record(t time.Time, sig market.Signal, ev Event) Record {
	if s.firstMark == 0 && s.mark > 0 {
		s.firstMark = s.mark
	}

	quote := s.acct.Capital + s.sellSpend - s.buySpend + s.holdings*s.mark
	var base float64
	if s.mark > 0 {
		base = quote / s.mark
	}

	if !s.peakSet || quote > s.peak {
		s.peak = quote
		s.peakSet = true
	}
	dd := s.peak - quote
	if dd > s.ledger.MaxDrawdown {
		s.ledger.MaxDrawdown = dd
	}

	return Record{
		Time:          t,
		Position:      s.pos.side,
		Signal:        sig,
		Event:         ev,
		Price:         s.mark,
		Holdings:      s.holdings,
		BuySpend:      s.buySpend,
		SellSpend:     s.sellSpend,
		QuoteNetAsset: quote,
		BaseNetAsset:  base,
		Drawdown:      dd,
	}
}
