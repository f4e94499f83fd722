package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rustyeddy/swapbot/market"
	"github.com/rustyeddy/swapbot/market/data"
)

var candlesCmd = &cobra.Command{
	Use:   "candles",
	Short: "Resample a swap log into a candle CSV",
	Long: `Candles buckets swaps into fixed width mid, bid and ask candles and
writes them as CSV. The file can be fed back to 'backtest --candles'.

Example:
  swapbot candles --swaps data/bobo.csv --timeframe 15m --heikin-ashi -o bobo-15m.csv`,
	Args: cobra.NoArgs,
	RunE: runCandles,
}

var (
	cdData dataFlags
	cdHA   bool
	cdLast int
	cdOut  string
)

func init() {
	rootCmd.AddCommand(candlesCmd)

	addDataFlags(candlesCmd, &cdData)
	candlesCmd.Flags().BoolVar(&cdHA, "heikin-ashi", false, "add the ha_ columns")
	candlesCmd.Flags().IntVarP(&cdLast, "last", "n", 0, "keep only the most recent n candles (0 = all)")
	candlesCmd.Flags().StringVarP(&cdOut, "out", "o", "", "output file (stdout when empty)")
}

func runCandles(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	cdData.apply(cmd, cfg)
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	log, err := newLogger(cfg)
	if err != nil {
		return err
	}
	defer log.Sync()

	cs, err := loadCandles(cfg, log)
	if err != nil {
		return err
	}
	if cdHA && !cs.HeikinAshi {
		cs = market.HeikinAshi(cs)
	}
	if cdLast > 0 {
		cs = cs.Tail(cdLast)
	}

	if cdOut == "" {
		return data.WriteCandles(cmd.OutOrStdout(), cs)
	}
	if err := data.SaveCandles(cdOut, cs); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "✓ Wrote %d candles to %s\n", cs.Len(), cdOut)
	return nil
}
