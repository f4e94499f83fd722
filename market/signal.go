package market

// Signal is an edge-triggered crossover event.
type Signal int8

const (
	Bearish Signal = -1
	Hold    Signal = 0
	Bullish Signal = 1
)

func (s Signal) String() string {
	switch s {
	case Bullish:
		return "buy"
	case Bearish:
		return "sell"
	default:
		return "hold"
	}
}

// SignalColumn is a signal series aligned 1:1 with a CandleSet. Defined marks
// the rows where both compared inputs were available; a Hold on an undefined
// row carries no information.
type SignalColumn struct {
	Signals []Signal
	Defined []bool
}

// Len returns the number of rows.
func (sc SignalColumn) Len() int { return len(sc.Signals) }

// AnyDefined reports whether at least one row was computed from defined inputs.
func (sc SignalColumn) AnyDefined() bool {
	for _, d := range sc.Defined {
		if d {
			return true
		}
	}
	return false
}

// Events counts the non-hold rows.
func (sc SignalColumn) Events() int {
	n := 0
	for _, s := range sc.Signals {
		if s != Hold {
			n++
		}
	}
	return n
}
