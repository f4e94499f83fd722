package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/rustyeddy/swapbot/config"
	"github.com/rustyeddy/swapbot/journal"
	"github.com/rustyeddy/swapbot/market/strategies"
	"github.com/rustyeddy/swapbot/pkg/id"
	"github.com/rustyeddy/swapbot/sim"
)

var signalsCmd = &cobra.Command{
	Use:   "signals",
	Short: "Replay one strategy and export its ledger",
	Long: `Signals generates the crossover signals of a single TestSet, simulates
them and writes the ledger, one row per candle.

The TestSet comes from the flags, or from the config 'selected' block when
no flags are given.

Example:
  swapbot signals --swaps data/bobo.csv --signal close --wma open --strategy WMA_OHLC --period 20`,
	Args: cobra.NoArgs,
	RunE: runSignals,
}

var (
	sgData     dataFlags
	sgSignal   string
	sgWMA      string
	sgStrategy string
	sgPeriod   int
	sgOut      string
	sgFormat   string
	sgTrades   bool
)

func init() {
	rootCmd.AddCommand(signalsCmd)

	addDataFlags(signalsCmd, &sgData)
	signalsCmd.Flags().StringVar(&sgSignal, "signal", "", "signal column, e.g. close or ha_close")
	signalsCmd.Flags().StringVar(&sgWMA, "wma", "", "column the moving average is computed over")
	signalsCmd.Flags().StringVar(&sgStrategy, "strategy", "", "strategy tag, e.g. IWMA_HEIKEN_ASHI_INVERSE")
	signalsCmd.Flags().IntVarP(&sgPeriod, "period", "p", 0, "moving average period (0 = default)")
	signalsCmd.Flags().StringVarP(&sgOut, "out", "o", "", "output file (stdout when empty)")
	signalsCmd.Flags().StringVarP(&sgFormat, "format", "f", "csv", "output format (csv, org)")
	signalsCmd.Flags().BoolVar(&sgTrades, "trades", false, "only rows that changed the position")
}

func runSignals(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	sgData.apply(cmd, cfg)
	if sgSignal != "" || sgWMA != "" || sgStrategy != "" {
		cfg.Selected = &config.SelectedConfig{
			SignalColumn: sgSignal,
			WMAColumn:    sgWMA,
			Strategy:     sgStrategy,
			Period:       sgPeriod,
		}
	}
	if cfg.Selected == nil {
		return fmt.Errorf("no strategy selected: pass --signal, --wma and --strategy or add a 'selected' block to the config")
	}
	if sgFormat != "csv" && sgFormat != "org" {
		return fmt.Errorf("unknown format %q", sgFormat)
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	log, err := newLogger(cfg)
	if err != nil {
		return err
	}
	defer log.Sync()

	ts, err := cfg.Selected.TestSet()
	if err != nil {
		return err
	}
	cs, err := loadCandles(cfg, log)
	if err != nil {
		return err
	}

	gen, err := strategies.Generate(ts, cs)
	if err != nil {
		return err
	}
	l, err := sim.Simulate(gen.Candles, gen.Signals, cfg.Account.Account())
	if err != nil {
		return err
	}
	log.Info("signals simulated",
		zap.Stringer("testset", ts),
		zap.Int("events", gen.Signals.Events()),
		zap.Bool("valid", l.Valid),
		zap.Int("trades", l.Trades),
		zap.Float64("profit_quote", l.ProfitQuote),
		zap.Float64("profit_base", l.ProfitBase),
	)

	rows := journal.LedgerRows(id.New(), l)
	if sgTrades {
		rows = tradeRows(rows)
	}

	var w io.Writer = cmd.OutOrStdout()
	if sgOut != "" {
		f, err := os.Create(sgOut)
		if err != nil {
			return err
		}
		defer f.Close()
		w = f
	}

	if sgFormat == "org" {
		_, err = fmt.Fprintln(w, journal.FormatTradesOrg(rows))
		return err
	}
	return journal.WriteLedgerCSV(w, rows)
}

func tradeRows(rows []journal.LedgerRow) []journal.LedgerRow {
	out := rows[:0:0]
	for _, r := range rows {
		if r.Event != "" {
			out = append(out, r)
		}
	}
	return out
}
