package backtest

import (
	"github.com/rustyeddy/swapbot/market"
	"github.com/rustyeddy/swapbot/market/strategies"
)

// Space is the grid a Scheduler sweeps.
type Space struct {
	SignalColumns []market.Column
	WMAColumns    []market.Column
	Strategies    []strategies.Strategy
	Periods       []int
}

// DefaultSpace scans the default price columns on both axes with every
// strategy at one period.
func DefaultSpace(period int) Space {
	return Space{
		SignalColumns: market.PriceColumns,
		WMAColumns:    market.PriceColumns,
		Strategies:    strategies.All(),
		Periods:       []int{period},
	}
}

// TestSets expands the grid in enumeration order: signal column, then WMA
// column, then period, then strategy. Pairings a strategy does not accept
// are dropped.
func (sp Space) TestSets() []strategies.TestSet {
	var out []strategies.TestSet
	for _, sig := range sp.SignalColumns {
		for _, wma := range sp.WMAColumns {
			for _, p := range sp.Periods {
				for _, st := range sp.Strategies {
					if !st.Accepts(sig, wma) {
						continue
					}
					out = append(out, strategies.TestSet{
						SignalColumn: sig,
						WMAColumn:    wma,
						Strategy:     st,
						Period:       p,
					})
				}
			}
		}
	}
	return out
}

// needsHeikinAshi reports whether any strategy in the grid reads HA candles.
func (sp Space) needsHeikinAshi() bool {
	for _, st := range sp.Strategies {
		if st.Candles == strategies.HeikinAshiCandles {
			return true
		}
	}
	return false
}
