package sim

// Position is the signed state of the simulated account.
type Position int8

const (
	Short Position = -1
	Flat  Position = 0
	Long  Position = 1
)

func (p Position) String() string {
	switch p {
	case Long:
		return "long"
	case Short:
		return "short"
	default:
		return "flat"
	}
}

// Event is what happened to the position on a ledger row.
type Event string

const (
	EventNone         Event = ""
	EventOpenLong     Event = "open-long"
	EventOpenShort    Event = "open-short"
	EventReverseLong  Event = "reverse-long"  // short closed, long opened
	EventReverseShort Event = "reverse-short" // long closed, short opened
	EventUnwind       Event = "unwind"
)

// leg is an open position and the price it was entered at.
type leg struct {
	side  Position
	entry float64
}
