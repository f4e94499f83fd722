package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/rustyeddy/swapbot/config"
	"github.com/rustyeddy/swapbot/journal"
)

var journalCmd = &cobra.Command{
	Use:   "journal",
	Short: "Query journaled backtest runs",
	Long: `Query backtest runs and their ledgers from the SQLite journal.

Subcommands:
  runs    - List the most recent runs
  run     - Show one run as an Org report
  ledger  - Export the ledger of a run

Examples:
  swapbot journal runs --limit 5
  swapbot journal run 01HZX3J6QK8W3T5R2N7B4C9D0E
  swapbot journal ledger 01HZX3J6QK8W3T5R2N7B4C9D0E --format org`,
}

var journalRunsCmd = &cobra.Command{
	Use:   "runs",
	Short: "List the most recent backtest runs",
	Args:  cobra.NoArgs,
	RunE:  runJournalRuns,
}

var journalRunCmd = &cobra.Command{
	Use:   "run <run-id>",
	Short: "Show a backtest run",
	Args:  cobra.ExactArgs(1),
	RunE:  runJournalRun,
}

var journalLedgerCmd = &cobra.Command{
	Use:   "ledger <run-id>",
	Short: "Export the ledger of a backtest run",
	Args:  cobra.ExactArgs(1),
	RunE:  runJournalLedger,
}

var (
	journalDBPath string
	journalLimit  int
	ledgerFormat  string
	ledgerTrades  bool
	ledgerOut     string
)

func init() {
	rootCmd.AddCommand(journalCmd)
	journalCmd.AddCommand(journalRunsCmd)
	journalCmd.AddCommand(journalRunCmd)
	journalCmd.AddCommand(journalLedgerCmd)

	journalCmd.PersistentFlags().StringVarP(&journalDBPath, "db", "d", "", "path to SQLite journal DB (config journal.db_path when empty)")
	journalRunsCmd.Flags().IntVarP(&journalLimit, "limit", "n", 20, "runs to list")
	journalLedgerCmd.Flags().StringVarP(&ledgerFormat, "format", "f", "csv", "output format (csv, org)")
	journalLedgerCmd.Flags().BoolVar(&ledgerTrades, "trades", false, "only rows that changed the position")
	journalLedgerCmd.Flags().StringVarP(&ledgerOut, "out", "o", "", "output file (stdout when empty)")
}

// openJournal opens the configured journal. It returns nil for type none.
func openJournal(jc config.JournalConfig) (journal.Journal, error) {
	switch jc.Type {
	case "sqlite":
		j, err := journal.NewSQLite(jc.DBPath)
		if err != nil {
			return nil, err
		}
		return j, nil
	case "csv":
		j, err := journal.NewCSV(jc.RunsFile, jc.LedgerFile)
		if err != nil {
			return nil, err
		}
		return j, nil
	}
	return nil, nil
}

func openSQLite() (*journal.SQLite, error) {
	path := journalDBPath
	if path == "" {
		cfg, err := loadConfig()
		if err != nil {
			return nil, err
		}
		path = cfg.Journal.DBPath
	}
	if path == "" {
		return nil, fmt.Errorf("no journal database: pass --db or set journal.db_path")
	}
	j, err := journal.NewSQLite(path)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	return j, nil
}

func runJournalRuns(cmd *cobra.Command, args []string) error {
	j, err := openSQLite()
	if err != nil {
		return err
	}
	defer j.Close()

	runs, err := j.ListBacktestRuns(cmd.Context(), journalLimit)
	if err != nil {
		return fmt.Errorf("list runs: %w", err)
	}

	w := cmd.OutOrStdout()
	fmt.Fprintf(w, "%-26s %-16s %-12s %-6s %-26s %14s\n", "RUN_ID", "CREATED", "PAIR", "TF", "WINNER", "PROFIT_QUOTE")
	for _, r := range runs {
		winner := "-"
		if r.Found {
			winner = fmt.Sprintf("%s %s/%s/%d", r.Strategy, r.SignalColumn, r.WMAColumn, r.Period)
		}
		fmt.Fprintf(w, "%-26s %-16s %-12s %-6s %-26s %14.6f\n",
			r.RunID, r.Created.UTC().Format("2006-01-02 15:04"), r.Pair, r.Timeframe, winner, r.ProfitQuote)
	}
	return nil
}

func runJournalRun(cmd *cobra.Command, args []string) error {
	j, err := openSQLite()
	if err != nil {
		return err
	}
	defer j.Close()

	s, err := j.ExportBacktestOrg(cmd.Context(), args[0])
	if err != nil {
		return fmt.Errorf("get run: %w", err)
	}
	fmt.Fprintln(cmd.OutOrStdout(), s)
	return nil
}

func runJournalLedger(cmd *cobra.Command, args []string) error {
	if ledgerFormat != "csv" && ledgerFormat != "org" {
		return fmt.Errorf("unknown format %q", ledgerFormat)
	}

	j, err := openSQLite()
	if err != nil {
		return err
	}
	defer j.Close()

	var rows []journal.LedgerRow
	if ledgerTrades {
		rows, err = j.ListTrades(cmd.Context(), args[0])
	} else {
		rows, err = j.ListLedger(cmd.Context(), args[0])
	}
	if err != nil {
		return fmt.Errorf("query ledger: %w", err)
	}

	var w io.Writer = cmd.OutOrStdout()
	if ledgerOut != "" {
		f, err := os.Create(ledgerOut)
		if err != nil {
			return err
		}
		defer f.Close()
		w = f
	}

	if ledgerFormat == "org" {
		_, err = fmt.Fprintln(w, journal.FormatTradesOrg(rows))
		return err
	}
	return journal.WriteLedgerCSV(w, rows)
}
