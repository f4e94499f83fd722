package strategies

import (
	"errors"
	"fmt"

	"github.com/rustyeddy/swapbot/market"
	"github.com/rustyeddy/swapbot/market/indicators"
)

// ErrColumnMismatch is returned for a TestSet whose columns do not match the
// candle kind of its strategy.
var ErrColumnMismatch = errors.New("strategy does not accept columns")

// DefaultPeriod is the moving average period used when none is configured.
const DefaultPeriod = 20

// TestSet is one strategy configuration: the column compared against the
// moving average, the column the moving average is taken over, the strategy
// and the moving average period.
type TestSet struct {
	SignalColumn market.Column `json:"signal_column"`
	WMAColumn    market.Column `json:"wma_column"`
	Strategy     Strategy      `json:"strategy"`
	Period       int           `json:"period"`
}

// NewTestSet parses and validates a TestSet from configuration names.
func NewTestSet(signal, wma, strategy string, period int) (TestSet, error) {
	sc, err := market.ParseColumn(signal)
	if err != nil {
		return TestSet{}, fmt.Errorf("signal column: %w", err)
	}
	wc, err := market.ParseColumn(wma)
	if err != nil {
		return TestSet{}, fmt.Errorf("wma column: %w", err)
	}
	s, err := ParseStrategy(strategy)
	if err != nil {
		return TestSet{}, err
	}
	ts := TestSet{SignalColumn: sc, WMAColumn: wc, Strategy: s, Period: period}
	return ts, ts.Validate()
}

// Validate rejects unknown values, a period below 1 and column choices the
// strategy does not accept.
func (ts TestSet) Validate() error {
	if !ts.SignalColumn.Valid() || !ts.WMAColumn.Valid() {
		return fmt.Errorf("test set %s: %w", ts, market.ErrUnknownColumn)
	}
	if !ts.Strategy.Valid() {
		return fmt.Errorf("test set %s: %w", ts, ErrUnknownStrategy)
	}
	if ts.Period < 1 {
		return fmt.Errorf("test set %s: %w, got %d", ts, indicators.ErrInvalidPeriod, ts.Period)
	}
	if !ts.Strategy.Accepts(ts.SignalColumn, ts.WMAColumn) {
		return fmt.Errorf("test set %s: %w", ts, ErrColumnMismatch)
	}
	return nil
}

func (ts TestSet) String() string {
	return fmt.Sprintf("%s(signal=%s wma=%s period=%d)", ts.Strategy, ts.SignalColumn, ts.WMAColumn, ts.Period)
}
