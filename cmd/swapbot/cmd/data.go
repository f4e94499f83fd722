package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/rustyeddy/swapbot/config"
	"github.com/rustyeddy/swapbot/market"
	"github.com/rustyeddy/swapbot/market/data"
)

// dataFlags override the data section of the config.
type dataFlags struct {
	swaps     string
	candles   string
	pair      string
	timeframe string
	swapped   bool
}

func addDataFlags(c *cobra.Command, d *dataFlags) {
	c.Flags().StringVarP(&d.swaps, "swaps", "s", "", "swap CSV (timestamp,id,amount0,amount1[,token0,token1])")
	c.Flags().StringVar(&d.candles, "candles", "", "candle CSV written by 'swapbot candles'; used instead of swaps")
	c.Flags().StringVar(&d.pair, "pair", "", "pair label, e.g. WETH/BOBO")
	c.Flags().StringVarP(&d.timeframe, "timeframe", "t", "", "candle width, e.g. 5m")
	c.Flags().BoolVar(&d.swapped, "swapped", false, "token1 is the base asset")
}

func (d *dataFlags) apply(c *cobra.Command, cfg *config.Config) {
	if d.swaps != "" {
		cfg.Data.Swaps = d.swaps
		cfg.Data.Candles = ""
	}
	if d.candles != "" {
		cfg.Data.Candles = d.candles
	}
	if d.pair != "" {
		cfg.Data.Pair = d.pair
	}
	if d.timeframe != "" {
		cfg.Data.Timeframe = d.timeframe
	}
	if c.Flags().Changed("swapped") {
		cfg.Data.Swapped = d.swapped
	}
}

// loadCandles reads the candle file when one is configured, otherwise it
// resamples the swap log.
func loadCandles(cfg *config.Config, log *zap.Logger) (*market.CandleSet, error) {
	var (
		cs  *market.CandleSet
		err error
	)
	if cfg.Data.Candles != "" {
		cs, err = data.LoadCandles(cfg.Data.Candles)
		if err != nil {
			return nil, fmt.Errorf("load candles: %w", err)
		}
	} else {
		tf, err := cfg.Data.ParseTimeframe()
		if err != nil {
			return nil, err
		}
		sl, err := data.LoadSwaps(cfg.Data.Swaps)
		if err != nil {
			return nil, fmt.Errorf("load swaps: %w", err)
		}
		if sl.Duplicates > 0 {
			log.Warn("dropped duplicate swaps", zap.String("file", cfg.Data.Swaps), zap.Int("duplicates", sl.Duplicates))
		}
		cs, err = market.Resample(sl.Swaps, tf, cfg.Data.Swapped)
		if err != nil {
			return nil, err
		}
		cs.Source = cfg.Data.Swaps
	}

	if cfg.Data.Pair != "" {
		cs.Pair = cfg.Data.Pair
	}
	log.Info("candles loaded",
		zap.String("source", cs.Source),
		zap.String("pair", cs.Pair),
		zap.Duration("timeframe", cs.Timeframe),
		zap.Int("candles", cs.Len()),
		zap.Int("gaps", cs.Gaps()),
	)
	return cs, nil
}
