package strategies

import (
	"errors"
	"fmt"
	"math"

	"github.com/rustyeddy/swapbot/market"
)

// ErrLengthMismatch is returned when two compared series are not row aligned.
var ErrLengthMismatch = errors.New("series length mismatch")

// Cross compares a against b row by row and emits crossover events:
//   - Bullish when a > b becomes true
//   - Bearish when a > b stops being true
//   - Hold otherwise, and always on the first row
//
// A NaN on either side compares as false. The argument order matters.
func Cross(a, b []float64) (market.SignalColumn, error) {
	if len(a) != len(b) {
		return market.SignalColumn{}, fmt.Errorf("cross: %w (%d vs %d)", ErrLengthMismatch, len(a), len(b))
	}

	sc := market.SignalColumn{
		Signals: make([]market.Signal, len(a)),
		Defined: make([]bool, len(a)),
	}
	if len(a) == 0 {
		return sc, nil
	}

	above := a[0] > b[0]
	sc.Defined[0] = defined(a[0], b[0])
	for i := 1; i < len(a); i++ {
		now := a[i] > b[i]
		sc.Defined[i] = defined(a[i], b[i])

		switch {
		case now && !above:
			sc.Signals[i] = market.Bullish
		case !now && above:
			sc.Signals[i] = market.Bearish
		}
		above = now
	}
	return sc, nil
}

// DetectSignal runs Cross over two columns of cs.
func DetectSignal(cs *market.CandleSet, a, b market.Column) (market.SignalColumn, error) {
	if cs.Len() == 0 {
		return market.SignalColumn{}, fmt.Errorf("detect signal: %w", market.ErrEmptyInput)
	}
	return Cross(cs.Column(a), cs.Column(b))
}

func defined(a, b float64) bool {
	return !math.IsNaN(a) && !math.IsNaN(b)
}
