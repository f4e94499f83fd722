package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/multierr"

	"github.com/rustyeddy/swapbot/market"
	"github.com/rustyeddy/swapbot/market/strategies"
)

func TestDefault(t *testing.T) {
	cfg := Default()
	require.NotNil(t, cfg)
	assert.NoError(t, cfg.Validate())
	assert.Equal(t, 1.0, cfg.Account.Units)
	assert.Equal(t, "sqlite", cfg.Journal.Type)

	tf, err := cfg.Data.ParseTimeframe()
	require.NoError(t, err)
	assert.Equal(t, 5*time.Minute, tf)

	sp, err := cfg.Backtest.Space()
	require.NoError(t, err)
	assert.Equal(t, market.PriceColumns, sp.SignalColumns)
	assert.Equal(t, strategies.All(), sp.Strategies)
	assert.Equal(t, []int{20}, sp.Periods)
	assert.Len(t, sp.TestSets(), 128)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		errMsg string
	}{
		{
			name:   "no data",
			mutate: func(c *Config) { c.Data.Swaps = "" },
			errMsg: "data.swaps or data.candles is required",
		},
		{
			name:   "bad timeframe",
			mutate: func(c *Config) { c.Data.Timeframe = "-5m" },
			errMsg: "data.timeframe",
		},
		{
			name:   "zero units",
			mutate: func(c *Config) { c.Account.Units = 0 },
			errMsg: "account.units must be positive",
		},
		{
			name:   "unknown column",
			mutate: func(c *Config) { c.Backtest.WMAColumns = []string{"open", "vwap"} },
			errMsg: "backtest.wma_columns: unknown column \"vwap\"",
		},
		{
			name:   "unknown strategy",
			mutate: func(c *Config) { c.Backtest.Strategies = []string{"EMA_OHLC"} },
			errMsg: "backtest.strategies",
		},
		{
			name:   "zero period",
			mutate: func(c *Config) { c.Backtest.Periods = []int{5, 0} },
			errMsg: "backtest.periods",
		},
		{
			name: "mismatched selection",
			mutate: func(c *Config) {
				c.Selected = &SelectedConfig{SignalColumn: "close", WMAColumn: "ha_open", Strategy: "WMA_OHLC", Period: 5}
			},
			errMsg: "selected:",
		},
		{
			name:   "csv journal without files",
			mutate: func(c *Config) { c.Journal = JournalConfig{Type: "csv"} },
			errMsg: "journal runs_file and ledger_file required for CSV type",
		},
		{
			name:   "sqlite journal without path",
			mutate: func(c *Config) { c.Journal = JournalConfig{Type: "sqlite"} },
			errMsg: "journal db_path required for SQLite type",
		},
		{
			name:   "unknown journal",
			mutate: func(c *Config) { c.Journal.Type = "postgres" },
			errMsg: "journal.type must be",
		},
		{
			name:   "bad log level",
			mutate: func(c *Config) { c.Log.Level = "loud" },
			errMsg: "log.level",
		},
		{
			name:   "bad log encoding",
			mutate: func(c *Config) { c.Log.Encoding = "xml" },
			errMsg: "log.encoding",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errMsg)
		})
	}
}

func TestValidateCollectsAll(t *testing.T) {
	cfg := Default()
	cfg.Account.Units = -1
	cfg.Journal.Type = "postgres"
	cfg.Log.Level = "loud"

	assert.Len(t, multierr.Errors(cfg.Validate()), 3)
}

func TestSelectedTestSet(t *testing.T) {
	ts, err := SelectedConfig{SignalColumn: "ha_close", WMAColumn: "ha_open", Strategy: "IWMA_HEIKEN_ASHI"}.TestSet()
	require.NoError(t, err)
	assert.Equal(t, strategies.DefaultPeriod, ts.Period)
	assert.Equal(t, strategies.IWMAHeikinAshi, ts.Strategy)
	assert.Equal(t, market.HAClose, ts.SignalColumn)
}

func TestLoadYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "swapbot.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
data:
  swaps: ./data/bobo.csv
  swapped: true
  timeframe: 15m
account:
  capital: 1000
  units: 2
backtest:
  signal_columns: [close, ha_close]
  strategies: [WMA_OHLC, IWMA_HEIKEN_ASHI]
  periods: [10, 20]
  workers: 4
selected:
  signal_column: close
  wma_column: open
  strategy: WMA_OHLC
  period: 12
journal:
  type: none
`), 0o644))

	cfg, err := LoadFromFile(path)
	require.NoError(t, err)
	assert.Equal(t, "./data/bobo.csv", cfg.Data.Swaps)
	assert.True(t, cfg.Data.Swapped)
	assert.Equal(t, 1000.0, cfg.Account.Account().Capital)
	assert.Equal(t, 4, cfg.Backtest.Workers)
	require.NotNil(t, cfg.Selected)
	assert.Equal(t, 12, cfg.Selected.Period)

	// unset sections keep their defaults
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Len(t, cfg.Backtest.WMAColumns, 8)

	sp, err := cfg.Backtest.Space()
	require.NoError(t, err)
	assert.Equal(t, []market.Column{market.Close, market.HAClose}, sp.SignalColumns)
	assert.Equal(t, []int{10, 20}, sp.Periods)
}

func TestLoadInvalid(t *testing.T) {
	dir := t.TempDir()

	_, err := LoadFromFile(filepath.Join(dir, "missing.yaml"))
	assert.ErrorContains(t, err, "read config file")

	bad := filepath.Join(dir, "bad.yaml")
	require.NoError(t, os.WriteFile(bad, []byte("account: [1, 2"), 0o644))
	_, err = LoadFromFile(bad)
	assert.ErrorContains(t, err, "parse config")

	invalid := filepath.Join(dir, "invalid.yaml")
	require.NoError(t, os.WriteFile(invalid, []byte("account:\n  units: 0\n"), 0o644))
	_, err = LoadFromFile(invalid)
	assert.ErrorContains(t, err, "invalid config")
}

func TestSaveRoundTrip(t *testing.T) {
	dir := t.TempDir()
	cfg := Default()
	cfg.Backtest.Periods = []int{7}

	for _, name := range []string{"swapbot.yaml", "swapbot.json"} {
		path := filepath.Join(dir, name)
		require.NoError(t, cfg.SaveToFile(path))

		got, err := LoadFromFile(path)
		require.NoError(t, err, name)
		assert.Equal(t, cfg, got, name)
	}
}
