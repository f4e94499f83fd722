package strategies

import (
	"errors"
	"fmt"
	"strings"

	"github.com/rustyeddy/swapbot/market"
	"github.com/rustyeddy/swapbot/market/indicators"
)

// ErrUnknownStrategy is returned by ParseStrategy for an unrecognized name.
var ErrUnknownStrategy = errors.New("unknown strategy")

// CandleKind selects which candles a strategy reads.
type CandleKind uint8

const (
	HeikinAshiCandles CandleKind = iota
	OHLCCandles
)

func (k CandleKind) String() string {
	if k == OHLCCandles {
		return "OHLC"
	}
	return "HEIKEN_ASHI"
}

// Strategy is one of the eight indicator/candle/direction combinations.
// Normal strategies go long when the signal column crosses above the moving
// average; inverse strategies go long when the moving average crosses above
// the signal column.
type Strategy struct {
	Indicator indicators.Kind
	Candles   CandleKind
	Inverse   bool
}

var (
	WMAHeikinAshi         = Strategy{Indicator: indicators.Weighted, Candles: HeikinAshiCandles}
	WMAHeikinAshiInverse  = Strategy{Indicator: indicators.Weighted, Candles: HeikinAshiCandles, Inverse: true}
	WMAOHLC               = Strategy{Indicator: indicators.Weighted, Candles: OHLCCandles}
	WMAOHLCInverse        = Strategy{Indicator: indicators.Weighted, Candles: OHLCCandles, Inverse: true}
	IWMAHeikinAshi        = Strategy{Indicator: indicators.InverseWeighted, Candles: HeikinAshiCandles}
	IWMAHeikinAshiInverse = Strategy{Indicator: indicators.InverseWeighted, Candles: HeikinAshiCandles, Inverse: true}
	IWMAOHLC              = Strategy{Indicator: indicators.InverseWeighted, Candles: OHLCCandles}
	IWMAOHLCInverse       = Strategy{Indicator: indicators.InverseWeighted, Candles: OHLCCandles, Inverse: true}
)

// All returns the eight strategies in backtest enumeration order.
func All() []Strategy {
	return []Strategy{
		WMAHeikinAshi,
		WMAOHLC,
		WMAHeikinAshiInverse,
		WMAOHLCInverse,
		IWMAHeikinAshi,
		IWMAOHLC,
		IWMAHeikinAshiInverse,
		IWMAOHLCInverse,
	}
}

// String returns the tag used in configuration, e.g. "IWMA_OHLC_INVERSE".
func (s Strategy) String() string {
	name := s.Indicator.String() + "_" + s.Candles.String()
	if s.Inverse {
		name += "_INVERSE"
	}
	return name
}

// Valid reports whether every field holds a known value.
func (s Strategy) Valid() bool {
	return s.Indicator <= indicators.InverseWeighted && s.Candles <= OHLCCandles
}

// Accepts reports whether the strategy can run on the two columns: a
// Heikin-Ashi strategy needs both to be ha_ columns, an OHLC strategy needs
// neither to be.
func (s Strategy) Accepts(signal, wma market.Column) bool {
	switch s.Candles {
	case HeikinAshiCandles:
		return signal.IsHeikinAshi() && wma.IsHeikinAshi()
	case OHLCCandles:
		return !signal.IsHeikinAshi() && !wma.IsHeikinAshi()
	}
	return false
}

// ParseStrategy maps a tag such as "WMA_HEIKEN_ASHI" to its Strategy.
// "HEIKIN_ASHI" is accepted as an alternate spelling.
func ParseStrategy(name string) (Strategy, error) {
	n := strings.ToUpper(strings.TrimSpace(name))
	n = strings.ReplaceAll(n, "HEIKIN_ASHI", "HEIKEN_ASHI")
	for _, s := range All() {
		if s.String() == n {
			return s, nil
		}
	}
	return Strategy{}, fmt.Errorf("%w %q", ErrUnknownStrategy, name)
}

// ParseStrategies parses a list of tags; an empty list means All.
func ParseStrategies(names []string) ([]Strategy, error) {
	if len(names) == 0 {
		return All(), nil
	}
	out := make([]Strategy, 0, len(names))
	for _, n := range names {
		s, err := ParseStrategy(n)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, nil
}

func (s Strategy) MarshalText() ([]byte, error) {
	if !s.Valid() {
		return nil, fmt.Errorf("%w %+v", ErrUnknownStrategy, s)
	}
	return []byte(s.String()), nil
}

func (s *Strategy) UnmarshalText(b []byte) error {
	v, err := ParseStrategy(string(b))
	if err != nil {
		return err
	}
	*s = v
	return nil
}
