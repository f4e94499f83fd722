package strategies

import (
	"fmt"

	"github.com/rustyeddy/swapbot/market"
	"github.com/rustyeddy/swapbot/market/indicators"
)

// Output is everything Generate derived for one TestSet.
type Output struct {
	TestSet TestSet

	// Candles is the table the signals align with. For Heikin-Ashi
	// strategies it carries the HA columns.
	Candles *market.CandleSet

	Indicator indicators.Series
	Signals   market.SignalColumn
}

// Generate runs the strategy of ts over cs: Heikin-Ashi candles if the
// strategy needs them, the moving average over ts.WMAColumn, then the
// crossover between ts.SignalColumn and the moving average. Inverse
// strategies swap the crossover arguments.
//
// cs is never modified. Pass a table that already has HA columns to avoid
// recomputing them for every TestSet.
func Generate(ts TestSet, cs *market.CandleSet) (Output, error) {
	if err := ts.Validate(); err != nil {
		return Output{}, err
	}
	if cs.Len() == 0 {
		return Output{}, fmt.Errorf("generate %s: %w", ts, market.ErrEmptyInput)
	}

	table := cs
	if ts.Strategy.Candles == HeikinAshiCandles && !cs.HeikinAshi {
		table = market.HeikinAshi(cs)
	}

	ma, err := indicators.Compute(ts.Strategy.Indicator, table, ts.Period, ts.WMAColumn)
	if err != nil {
		return Output{}, fmt.Errorf("generate %s: %w", ts, err)
	}

	col := table.Column(ts.SignalColumn)
	var sc market.SignalColumn
	if ts.Strategy.Inverse {
		sc, err = Cross(ma, col)
	} else {
		sc, err = Cross(col, ma)
	}
	if err != nil {
		return Output{}, fmt.Errorf("generate %s: %w", ts, err)
	}

	return Output{
		TestSet:   ts,
		Candles:   table,
		Indicator: ma,
		Signals:   sc,
	}, nil
}
