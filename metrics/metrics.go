// Package metrics holds the prometheus collectors for backtest sweeps.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Evaluation outcomes used as the "outcome" label.
const (
	Recorded = "recorded"
	Rejected = "rejected"
	Skipped  = "skipped"
)

// Backtest groups the collectors a scheduler reports to. A nil *Backtest is
// valid and records nothing.
type Backtest struct {
	Evaluations *prometheus.CounterVec
	Duration    *prometheus.HistogramVec
	BestProfit  prometheus.Gauge
	Candles     prometheus.Gauge
}

// NewBacktest creates the collectors and registers them with reg. Pass
// prometheus.NewRegistry() in tests to keep runs isolated.
func NewBacktest(reg prometheus.Registerer) (*Backtest, error) {
	m := &Backtest{
		Evaluations: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "swapbot_backtest_evaluations_total",
				Help: "TestSet evaluations by strategy and outcome.",
			},
			[]string{"strategy", "outcome"},
		),
		Duration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "swapbot_backtest_evaluation_seconds",
				Help:    "Time spent generating signals and simulating one TestSet.",
				Buckets: prometheus.ExponentialBuckets(0.0001, 4, 8),
			},
			[]string{"strategy"},
		),
		BestProfit: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "swapbot_backtest_best_profit_quote",
			Help: "Quote profit of the winning TestSet of the last sweep.",
		}),
		Candles: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "swapbot_backtest_candles",
			Help: "Number of candles in the last swept table.",
		}),
	}

	for _, c := range []prometheus.Collector{m.Evaluations, m.Duration, m.BestProfit, m.Candles} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

// Observe records one finished evaluation.
func (m *Backtest) Observe(strategy, outcome string, seconds float64) {
	if m == nil {
		return
	}
	m.Evaluations.WithLabelValues(strategy, outcome).Inc()
	m.Duration.WithLabelValues(strategy).Observe(seconds)
}

// Sweep records the table size and winning profit of a finished sweep.
func (m *Backtest) Sweep(candles int, best float64) {
	if m == nil {
		return
	}
	m.Candles.Set(float64(candles))
	m.BestProfit.Set(best)
}

// WriteTextfile dumps everything in g to path in the node_exporter textfile
// format.
func WriteTextfile(path string, g prometheus.Gatherer) error {
	return prometheus.WriteToTextfile(path, g)
}
