package cmd

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/rustyeddy/swapbot/config"
	"github.com/rustyeddy/swapbot/logger"
)

var rootCmd = &cobra.Command{
	Use:   "swapbot",
	Short: "Backtest moving average crossover strategies on DEX swap data",
	Long: `Swapbot turns a DEX swap log into OHLC candles and searches for the
moving average crossover that would have made the most money.

It provides tools for:
  - Resampling swaps into mid, bid and ask candles
  - Sweeping WMA and IWMA crossovers over every price column pair
  - Replaying a pinned strategy and exporting its ledger
  - Journaling backtest runs to SQLite, CSV and Org files`,
	SilenceUsage: true,
}

var (
	cfgFile  string
	logLevel string
)

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file, YAML or JSON (defaults when empty)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "override log.level (debug, info, warn, error)")
}

// loadConfig reads --config, or the defaults when it is not given. Callers
// apply their flag overrides and then Validate.
func loadConfig() (*config.Config, error) {
	if cfgFile == "" {
		return config.Default(), nil
	}
	return config.LoadFromFile(cfgFile)
}

func newLogger(cfg *config.Config) (*zap.Logger, error) {
	level := cfg.Log.Level
	if logLevel != "" {
		level = logLevel
	}
	return logger.New(level, cfg.Log.Encoding)
}
