// Package indicators computes moving averages over a column of a CandleSet.
package indicators

import (
	"errors"
	"fmt"
	"math"

	"github.com/rustyeddy/swapbot/market"
	"gonum.org/v1/gonum/floats"
)

// ErrInvalidPeriod is returned for a period below 1.
var ErrInvalidPeriod = errors.New("period must be positive")

// Kind selects the weighting of a moving average.
type Kind uint8

const (
	// Weighted gives the newest value the largest weight (1..N).
	Weighted Kind = iota
	// InverseWeighted gives the newest value the smallest weight (N..1).
	InverseWeighted
)

func (k Kind) String() string {
	if k == InverseWeighted {
		return "IWMA"
	}
	return "WMA"
}

// Series is a numeric column aligned with the rows of a CandleSet. Rows that
// could not be computed are NaN.
type Series []float64

// Defined counts the rows that are not NaN.
func (s Series) Defined() int {
	n := 0
	for _, v := range s {
		if !math.IsNaN(v) {
			n++
		}
	}
	return n
}

// WMA is the weighted moving average of col over a trailing window of period
// rows, weights 1..period from oldest to newest. The first period-1 rows are NaN.
func WMA(cs *market.CandleSet, period int, col market.Column) (Series, error) {
	return Compute(Weighted, cs, period, col)
}

// IWMA is WMA with the weights reversed: the newest row of the window counts least.
func IWMA(cs *market.CandleSet, period int, col market.Column) (Series, error) {
	return Compute(InverseWeighted, cs, period, col)
}

// Compute runs the moving average of the given kind over col.
func Compute(kind Kind, cs *market.CandleSet, period int, col market.Column) (Series, error) {
	if period <= 0 {
		return nil, fmt.Errorf("%s: %w, got %d", kind, ErrInvalidPeriod, period)
	}
	if cs.Len() == 0 {
		return nil, fmt.Errorf("%s: %w", kind, market.ErrEmptyInput)
	}
	if !col.Valid() {
		return nil, fmt.Errorf("%s: %w %s", kind, market.ErrUnknownColumn, col)
	}
	return Convolve(cs.Column(col), Weights(kind, period)), nil
}

// Weights returns the normalized window weights, oldest first. They sum to 1.
func Weights(kind Kind, period int) []float64 {
	w := make([]float64, period)
	for i := range w {
		if kind == InverseWeighted {
			w[i] = float64(period - i)
		} else {
			w[i] = float64(i + 1)
		}
	}
	floats.Scale(1/(float64(period)*float64(period+1)/2), w)
	return w
}

// Convolve applies normalized weights over every full trailing window of
// values. A NaN anywhere in a window makes that row NaN.
func Convolve(values, weights []float64) Series {
	n := len(weights)
	out := make(Series, len(values))
	for i := range out {
		if i < n-1 {
			out[i] = math.NaN()
			continue
		}
		out[i] = floats.Dot(values[i-n+1:i+1], weights)
	}
	return out
}
