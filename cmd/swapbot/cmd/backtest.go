package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/rustyeddy/swapbot/backtest"
	"github.com/rustyeddy/swapbot/config"
	"github.com/rustyeddy/swapbot/journal"
	"github.com/rustyeddy/swapbot/market"
	"github.com/rustyeddy/swapbot/metrics"
	"github.com/rustyeddy/swapbot/sim"
)

var backtestCmd = &cobra.Command{
	Use:   "backtest",
	Short: "Sweep crossover strategies and report the most profitable",
	Long: `Backtest resamples the swap log into candles, evaluates every
(signal column, WMA column, strategy, period) combination of the configured
grid and reports the one with the greatest quote profit.

When the config has a 'selected' block only that TestSet is evaluated.

Example:
  swapbot backtest --swaps data/bobo.csv --timeframe 5m --period 20`,
	Args: cobra.NoArgs,
	RunE: runBacktest,
}

var (
	btData     dataFlags
	btPeriods  []int
	btWorkers  int
	btTop      int
	btJournal  string
	btOrgDir   string
	btTextfile string
)

func init() {
	rootCmd.AddCommand(backtestCmd)

	addDataFlags(backtestCmd, &btData)
	backtestCmd.Flags().IntSliceVarP(&btPeriods, "period", "p", nil, "moving average periods to sweep")
	backtestCmd.Flags().IntVarP(&btWorkers, "workers", "w", 0, "concurrent evaluations (0 = one per CPU)")
	backtestCmd.Flags().IntVar(&btTop, "top", 0, "candidates to list (0 = config backtest.top)")
	backtestCmd.Flags().StringVarP(&btJournal, "journal", "j", "", "journal type override (none, csv, sqlite)")
	backtestCmd.Flags().StringVar(&btOrgDir, "org-dir", "", "directory for the Org run report")
	backtestCmd.Flags().StringVar(&btTextfile, "metrics-textfile", "", "write sweep metrics in textfile format")
}

func runBacktest(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	btData.apply(cmd, cfg)
	if len(btPeriods) > 0 {
		cfg.Backtest.Periods = btPeriods
	}
	if cmd.Flags().Changed("workers") {
		cfg.Backtest.Workers = btWorkers
	}
	if btTop > 0 {
		cfg.Backtest.Top = btTop
	}
	if btJournal != "" {
		cfg.Journal.Type = btJournal
	}
	if btOrgDir != "" {
		cfg.Journal.OrgDir = btOrgDir
	}
	if btTextfile != "" {
		cfg.Metrics.Textfile = btTextfile
	}
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

	reg := prometheus.NewRegistry()
	m, err := metrics.NewBacktest(reg)
	if err != nil {
		return err
	}

	acct := cfg.Account.Account()
	var o backtest.Outcome
	if cfg.Selected != nil {
		o, err = evaluateSelected(cfg, log, acct, cs)
	} else {
		space, serr := cfg.Backtest.Space()
		if serr != nil {
			return serr
		}
		s := &backtest.Scheduler{
			Workers:  cfg.Backtest.Workers,
			Account:  acct,
			Logger:   log,
			Metrics:  m,
			Progress: cfg.Backtest.Progress,
		}
		o, err = s.Run(cs, space)
	}
	if err != nil {
		return fmt.Errorf("backtest: %w", err)
	}

	run := backtest.NewRun(cs, acct, o)
	run.GitCommit = buildCommit()

	if dir := cfg.Journal.OrgDir; dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
		run.OrgPath = filepath.Join(dir, run.RunID+".org")
		if err := run.WriteBacktestOrg(); err != nil {
			return fmt.Errorf("org report: %w", err)
		}
	}

	j, err := openJournal(cfg.Journal)
	if err != nil {
		return fmt.Errorf("open journal: %w", err)
	}
	if j != nil {
		defer j.Close()
		var rows []journal.LedgerRow
		if o.Found {
			rows = journal.LedgerRows(run.RunID, o.Result.Ledger)
		}
		if err := j.RecordBacktest(cmd.Context(), run, rows); err != nil {
			return fmt.Errorf("journal: %w", err)
		}
		log.Info("backtest journaled", zap.String("run_id", run.RunID), zap.String("journal", cfg.Journal.Type))
	}

	if cfg.Metrics.Textfile != "" {
		if err := metrics.WriteTextfile(cfg.Metrics.Textfile, reg); err != nil {
			return fmt.Errorf("metrics: %w", err)
		}
	}

	out := cmd.OutOrStdout()
	backtest.PrintBacktestRun(out, run)
	if o.Found {
		backtest.PrintCandidates(out, o, cfg.Backtest.Top)
	}
	return nil
}

// evaluateSelected runs the pinned TestSet alone, bypassing the sweep.
func evaluateSelected(cfg *config.Config, log *zap.Logger, acct sim.Account, cs *market.CandleSet) (backtest.Outcome, error) {
	ts, err := cfg.Selected.TestSet()
	if err != nil {
		return backtest.Outcome{}, err
	}
	s := backtest.NewScheduler(1, log)
	s.Account = acct

	res, err := s.Evaluate(cs, ts)
	if err != nil {
		return backtest.Outcome{}, err
	}
	log.Info("selected testset evaluated", zap.Stringer("testset", ts), zap.Float64("profit_quote", res.ProfitQuote))

	o := backtest.Outcome{Evaluated: 1}
	if res.Profitable() {
		o.Result = res
		o.Found = true
		o.Recorded = 1
		o.Candidates = []backtest.Result{res}
	}
	return o, nil
}
