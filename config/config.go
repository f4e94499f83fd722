package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"go.uber.org/multierr"
	"go.uber.org/zap/zapcore"
	"gopkg.in/yaml.v3"

	"github.com/rustyeddy/swapbot/backtest"
	"github.com/rustyeddy/swapbot/market"
	"github.com/rustyeddy/swapbot/market/strategies"
	"github.com/rustyeddy/swapbot/sim"
)

// Config is the complete swapbot configuration.
type Config struct {
	Data     DataConfig      `json:"data" yaml:"data"`
	Account  AccountConfig   `json:"account" yaml:"account"`
	Backtest BacktestConfig  `json:"backtest" yaml:"backtest"`
	Selected *SelectedConfig `json:"selected,omitempty" yaml:"selected,omitempty"`
	Journal  JournalConfig   `json:"journal" yaml:"journal"`
	Log      LogConfig       `json:"log" yaml:"log"`
	Metrics  MetricsConfig   `json:"metrics" yaml:"metrics"`
}

// DataConfig says where candles come from. Swaps are resampled; a candle
// file is used as is.
type DataConfig struct {
	Swaps     string `json:"swaps,omitempty" yaml:"swaps,omitempty"`
	Candles   string `json:"candles,omitempty" yaml:"candles,omitempty"`
	Pair      string `json:"pair,omitempty" yaml:"pair,omitempty"` // overrides the pair read from the data
	Swapped   bool   `json:"swapped" yaml:"swapped"`               // token1 is the base asset
	Timeframe string `json:"timeframe" yaml:"timeframe"`
}

// ParseTimeframe converts the timeframe string; empty means the default.
func (d DataConfig) ParseTimeframe() (time.Duration, error) {
	if d.Timeframe == "" {
		return market.DefaultTimeframe, nil
	}
	tf, err := time.ParseDuration(d.Timeframe)
	if err != nil {
		return 0, err
	}
	if tf <= 0 {
		return 0, fmt.Errorf("timeframe must be positive, got %s", tf)
	}
	return tf, nil
}

// AccountConfig sizes the simulated account.
type AccountConfig struct {
	Capital float64 `json:"capital" yaml:"capital"`
	Units   float64 `json:"units" yaml:"units"`
}

func (a AccountConfig) Account() sim.Account {
	return sim.Account{Capital: a.Capital, Units: a.Units}
}

// BacktestConfig is the sweep grid. Empty lists take their defaults: the
// price columns, all strategies and the default period.
type BacktestConfig struct {
	SignalColumns []string `json:"signal_columns,omitempty" yaml:"signal_columns,omitempty"`
	WMAColumns    []string `json:"wma_columns,omitempty" yaml:"wma_columns,omitempty"`
	Strategies    []string `json:"strategies,omitempty" yaml:"strategies,omitempty"`
	Periods       []int    `json:"periods,omitempty" yaml:"periods,omitempty"`

	Workers  int `json:"workers" yaml:"workers"`
	Progress int `json:"progress" yaml:"progress"`
	Top      int `json:"top" yaml:"top"` // candidates listed in the report
}

// Space parses the grid.
func (b BacktestConfig) Space() (backtest.Space, error) {
	sp := backtest.DefaultSpace(strategies.DefaultPeriod)

	var err error
	if len(b.SignalColumns) > 0 {
		if sp.SignalColumns, err = market.ParseColumns(b.SignalColumns); err != nil {
			return backtest.Space{}, fmt.Errorf("backtest.signal_columns: %w", err)
		}
	}
	if len(b.WMAColumns) > 0 {
		if sp.WMAColumns, err = market.ParseColumns(b.WMAColumns); err != nil {
			return backtest.Space{}, fmt.Errorf("backtest.wma_columns: %w", err)
		}
	}
	if sp.Strategies, err = strategies.ParseStrategies(b.Strategies); err != nil {
		return backtest.Space{}, fmt.Errorf("backtest.strategies: %w", err)
	}
	if len(b.Periods) > 0 {
		for _, p := range b.Periods {
			if p < 1 {
				return backtest.Space{}, fmt.Errorf("backtest.periods: period must be positive, got %d", p)
			}
		}
		sp.Periods = append([]int(nil), b.Periods...)
	}
	return sp, nil
}

// SelectedConfig pins one TestSet and skips the sweep.
type SelectedConfig struct {
	SignalColumn string `json:"signal_column" yaml:"signal_column"`
	WMAColumn    string `json:"wma_column" yaml:"wma_column"`
	Strategy     string `json:"strategy" yaml:"strategy"`
	Period       int    `json:"period" yaml:"period"`
}

func (s SelectedConfig) TestSet() (strategies.TestSet, error) {
	p := s.Period
	if p == 0 {
		p = strategies.DefaultPeriod
	}
	return strategies.NewTestSet(s.SignalColumn, s.WMAColumn, s.Strategy, p)
}

// JournalConfig contains journaling parameters
type JournalConfig struct {
	Type       string `json:"type" yaml:"type"` // "none", "csv" or "sqlite"
	RunsFile   string `json:"runs_file,omitempty" yaml:"runs_file,omitempty"`
	LedgerFile string `json:"ledger_file,omitempty" yaml:"ledger_file,omitempty"`
	DBPath     string `json:"db_path,omitempty" yaml:"db_path,omitempty"`
	OrgDir     string `json:"org_dir,omitempty" yaml:"org_dir,omitempty"`
}

type LogConfig struct {
	Level    string `json:"level" yaml:"level"`
	Encoding string `json:"encoding" yaml:"encoding"` // "json" or "console"
}

type MetricsConfig struct {
	// Textfile, when set, receives the sweep metrics in node_exporter
	// textfile format after each run.
	Textfile string `json:"textfile,omitempty" yaml:"textfile,omitempty"`
}

// LoadFromFile loads configuration from a file (YAML, falling back to JSON)
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	cfg := Default()

	// Try YAML first, fall back to JSON
	err = yaml.Unmarshal(data, cfg)
	if err != nil {
		cfg = Default()
		err = json.Unmarshal(data, cfg)
		if err != nil {
			return nil, fmt.Errorf("parse config (tried YAML and JSON): %w", err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// SaveToFile saves configuration to a file (JSON or YAML based on extension)
func (c *Config) SaveToFile(path string) error {
	var data []byte
	var err error

	if strings.HasSuffix(path, ".yaml") || strings.HasSuffix(path, ".yml") {
		data, err = yaml.Marshal(c)
	} else {
		data, err = json.MarshalIndent(c, "", "  ")
	}

	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write config file: %w", err)
	}

	return nil
}

// Validate checks every section and reports all problems at once.
func (c *Config) Validate() error {
	var errs []error

	if c.Data.Swaps == "" && c.Data.Candles == "" {
		errs = append(errs, errors.New("data.swaps or data.candles is required"))
	}
	if _, err := c.Data.ParseTimeframe(); err != nil {
		errs = append(errs, fmt.Errorf("data.timeframe: %w", err))
	}

	if c.Account.Units <= 0 {
		errs = append(errs, errors.New("account.units must be positive"))
	}
	if c.Account.Capital < 0 {
		errs = append(errs, errors.New("account.capital must not be negative"))
	}

	if _, err := c.Backtest.Space(); err != nil {
		errs = append(errs, err)
	}
	if c.Backtest.Workers < 0 {
		errs = append(errs, errors.New("backtest.workers must not be negative"))
	}

	if c.Selected != nil {
		if _, err := c.Selected.TestSet(); err != nil {
			errs = append(errs, fmt.Errorf("selected: %w", err))
		}
	}

	switch c.Journal.Type {
	case "", "none":
	case "csv":
		if c.Journal.RunsFile == "" || c.Journal.LedgerFile == "" {
			errs = append(errs, errors.New("journal runs_file and ledger_file required for CSV type"))
		}
	case "sqlite":
		if c.Journal.DBPath == "" {
			errs = append(errs, errors.New("journal db_path required for SQLite type"))
		}
	default:
		errs = append(errs, errors.New("journal.type must be 'none', 'csv' or 'sqlite'"))
	}

	if _, err := zapcore.ParseLevel(c.Log.Level); err != nil {
		errs = append(errs, fmt.Errorf("log.level: %w", err))
	}
	switch c.Log.Encoding {
	case "", "json", "console":
	default:
		errs = append(errs, fmt.Errorf("log.encoding must be 'json' or 'console', got %q", c.Log.Encoding))
	}

	return multierr.Combine(errs...)
}

// Default returns a configuration with sensible defaults
func Default() *Config {
	cols := make([]string, len(market.PriceColumns))
	for i, c := range market.PriceColumns {
		cols[i] = c.String()
	}
	strats := make([]string, 0, 8)
	for _, s := range strategies.All() {
		strats = append(strats, s.String())
	}

	return &Config{
		Data: DataConfig{
			Swaps:     "./swaps.csv",
			Timeframe: market.DefaultTimeframe.String(),
		},
		Account: AccountConfig{
			Capital: 0,
			Units:   1,
		},
		Backtest: BacktestConfig{
			SignalColumns: cols,
			WMAColumns:    append([]string(nil), cols...),
			Strategies:    strats,
			Periods:       []int{strategies.DefaultPeriod},
			Progress:      100,
			Top:           10,
		},
		Journal: JournalConfig{
			Type:   "sqlite",
			DBPath: "./swapbot.db",
		},
		Log: LogConfig{
			Level:    "info",
			Encoding: "console",
		},
	}
}
