package market

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnknownColumn is returned when a column name is not one of the known
// candle columns.
var ErrUnknownColumn = errors.New("unknown column")

// Column identifies one price column of a Candle. The set is closed; names
// coming from configuration are validated once with ParseColumn.
type Column uint8

const (
	Open Column = iota
	High
	Low
	Close

	BidOpen
	BidHigh
	BidLow
	BidClose

	AskOpen
	AskHigh
	AskLow
	AskClose

	HAOpen
	HAHigh
	HALow
	HAClose

	HABidOpen
	HABidHigh
	HABidLow
	HABidClose

	HAAskOpen
	HAAskHigh
	HAAskLow
	HAAskClose

	numColumns
)

var columnNames = [numColumns]string{
	"open", "high", "low", "close",
	"bid_open", "bid_high", "bid_low", "bid_close",
	"ask_open", "ask_high", "ask_low", "ask_close",
	"ha_open", "ha_high", "ha_low", "ha_close",
	"ha_bid_open", "ha_bid_high", "ha_bid_low", "ha_bid_close",
	"ha_ask_open", "ha_ask_high", "ha_ask_low", "ha_ask_close",
}

// PriceColumns are the columns a backtest scans by default: the mid OHLC
// and its Heikin-Ashi counterpart.
var PriceColumns = []Column{Open, Close, High, Low, HAOpen, HAClose, HAHigh, HALow}

// Columns returns every known column in declaration order.
func Columns() []Column {
	out := make([]Column, 0, numColumns)
	for c := Column(0); c < numColumns; c++ {
		out = append(out, c)
	}
	return out
}

// ParseColumn maps a column name such as "ha_bid_close" to its Column.
func ParseColumn(name string) (Column, error) {
	n := strings.ToLower(strings.TrimSpace(name))
	for i, s := range columnNames {
		if s == n {
			return Column(i), nil
		}
	}
	return 0, fmt.Errorf("%w %q", ErrUnknownColumn, name)
}

// ParseColumns parses a list of column names, failing on the first unknown one.
func ParseColumns(names []string) ([]Column, error) {
	out := make([]Column, 0, len(names))
	for _, n := range names {
		c, err := ParseColumn(n)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, nil
}

func (c Column) String() string {
	if c >= numColumns {
		return fmt.Sprintf("column(%d)", uint8(c))
	}
	return columnNames[c]
}

// Valid reports whether c is a known column.
func (c Column) Valid() bool { return c < numColumns }

// IsHeikinAshi reports whether c is one of the derived ha_ columns.
func (c Column) IsHeikinAshi() bool { return c >= HAOpen && c < numColumns }

// field is the OHLC slot (0..3) the column reads from.
func (c Column) field() int { return int(c) % 4 }

// group is the OHLC group (mid, bid, ask, ha, ha bid, ha ask) the column reads from.
func (c Column) group() int { return int(c) / 4 }

func (c Column) MarshalText() ([]byte, error) {
	if !c.Valid() {
		return nil, fmt.Errorf("%w %d", ErrUnknownColumn, uint8(c))
	}
	return []byte(c.String()), nil
}

func (c *Column) UnmarshalText(b []byte) error {
	col, err := ParseColumn(string(b))
	if err != nil {
		return err
	}
	*c = col
	return nil
}
