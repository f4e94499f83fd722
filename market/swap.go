package market

import (
	"errors"
	"math"
	"time"
)

var (
	// ErrEmptyInput is returned when there is nothing to resample or compute.
	ErrEmptyInput = errors.New("empty input")

	// ErrMissingField is returned when a swap lacks its timestamp.
	ErrMissingField = errors.New("missing required field")

	// ErrInvalidAmount is returned when a swap amount is zero or not finite.
	ErrInvalidAmount = errors.New("invalid swap amount")
)

// Side says which side of the book a swap traded against.
type Side int8

const (
	// Bid is a sell of token0 into the pool.
	Bid Side = 1
	// Ask is a buy of token0 out of the pool.
	Ask Side = -1
)

// Swap is a single pool trade. Amounts are signed from the pool's point of
// view: a positive Amount0 means token0 flowed into the pool.
type Swap struct {
	ID      string
	Time    time.Time
	Amount0 float64
	Amount1 float64
	Token0  string
	Token1  string
}

// Oriented returns amounts in base/quote order. When swapped is set, token1
// is treated as the base asset.
func (s Swap) Oriented(swapped bool) (base, quote float64) {
	if swapped {
		return s.Amount1, s.Amount0
	}
	return s.Amount0, s.Amount1
}

// Price is the absolute quote-per-base price of the swap, and the side it
// traded on.
func (s Swap) Price(swapped bool) (float64, Side) {
	base, quote := s.Oriented(swapped)
	side := Bid
	if base < 0 {
		side = Ask
	}
	return math.Abs(quote / base), side
}

func (s Swap) check() error {
	if s.Time.IsZero() {
		return ErrMissingField
	}
	if s.Amount0 == 0 || s.Amount1 == 0 || !finite(s.Amount0) || !finite(s.Amount1) {
		return ErrInvalidAmount
	}
	return nil
}
