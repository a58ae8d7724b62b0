package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/rustyeddy/marketlab/journal"
)

var journalCmd = &cobra.Command{
	Use:   "journal",
	Short: "Query recorded backtest runs",
	Long: `Query and display backtest runs recorded in the SQLite journal.

Subcommands:
  runs    - List every recorded run
  run     - Show one run as an org-mode note
  trade   - Get details of a specific trade by ID
  today   - List trades closed today (UTC)
  day     - List trades closed on a specific day (UTC)
  export  - Write a run's org-mode note to a file

Examples:
  marketlab journal runs
  marketlab journal trade <trade-id>
  marketlab journal day 2025-03-15
  marketlab journal export <run-id> -o run.org`,
}

var journalRunsCmd = &cobra.Command{
	Use:   "runs",
	Short: "List recorded runs, oldest first",
	Args:  cobra.NoArgs,
	RunE:  runJournalRuns,
}

var journalRunCmd = &cobra.Command{
	Use:   "run <run-id>",
	Short: "Show a run as an org-mode note",
	Args:  cobra.ExactArgs(1),
	RunE:  runJournalRun,
}

var journalTradeCmd = &cobra.Command{
	Use:   "trade <trade-id>",
	Short: "Get details of a specific trade",
	Args:  cobra.ExactArgs(1),
	RunE:  runJournalTrade,
}

var journalTodayCmd = &cobra.Command{
	Use:   "today",
	Short: "List trades closed today",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return listTradesOn(cmd, time.Now().UTC().Format("2006-01-02"))
	},
}

var journalDayCmd = &cobra.Command{
	Use:   "day <YYYY-MM-DD>",
	Short: "List trades closed on a specific day",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return listTradesOn(cmd, args[0])
	},
}

var journalExportCmd = &cobra.Command{
	Use:   "export <run-id>",
	Short: "Write a run's org-mode note",
	Args:  cobra.ExactArgs(1),
	RunE:  runJournalExport,
}

var (
	journalDBPath string
	journalOutput string
)

func init() {
	rootCmd.AddCommand(journalCmd)
	journalCmd.AddCommand(journalRunsCmd, journalRunCmd, journalTradeCmd, journalTodayCmd, journalDayCmd, journalExportCmd)

	journalCmd.PersistentFlags().StringVarP(&journalDBPath, "db", "d", "", "path to SQLite journal DB (default journal.db_path from config)")
	journalExportCmd.Flags().StringVarP(&journalOutput, "output", "o", "", "output file (default <org_dir>/<run-id>.org, or stdout)")
}

// openQueryJournal opens the SQLite journal named by --db or the config.
func openQueryJournal() (*journal.SQLite, error) {
	path := journalDBPath
	if path == "" {
		path = cfg.Journal.DBPath
	}
	if path == "" {
		return nil, fmt.Errorf("no journal database: set --db or journal.db_path")
	}
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	j, err := journal.NewSQLite(path)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	return j, nil
}

func runJournalRuns(cmd *cobra.Command, _ []string) error {
	j, err := openQueryJournal()
	if err != nil {
		return err
	}
	defer j.Close()

	runs, err := j.ListRuns(cmd.Context())
	if err != nil {
		return fmt.Errorf("list runs: %w", err)
	}

	tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "RUN_ID\tCREATED\tSTRATEGY\tSYMBOL\tTF\tTRADES\tRETURN")
	for _, r := range runs {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%d\t%+.2f%%\n",
			r.RunID, r.Created.Format(time.RFC3339), r.Strategy, r.Symbol, r.Timeframe, r.Trades, r.ReturnPct)
	}
	return tw.Flush()
}

func runJournalRun(cmd *cobra.Command, args []string) error {
	j, err := openQueryJournal()
	if err != nil {
		return err
	}
	defer j.Close()

	note, err := j.ExportOrg(cmd.Context(), args[0])
	if err != nil {
		return fmt.Errorf("get run: %w", err)
	}
	fmt.Fprint(cmd.OutOrStdout(), note)
	return nil
}

func runJournalTrade(cmd *cobra.Command, args []string) error {
	j, err := openQueryJournal()
	if err != nil {
		return err
	}
	defer j.Close()

	rec, err := j.GetTrade(cmd.Context(), args[0])
	if err != nil {
		return fmt.Errorf("get trade: %w", err)
	}
	fmt.Fprintln(cmd.OutOrStdout(), journal.FormatTradeOrg(rec))
	return nil
}

func listTradesOn(cmd *cobra.Command, day string) error {
	start, end, err := dayBounds(day)
	if err != nil {
		return err
	}

	j, err := openQueryJournal()
	if err != nil {
		return err
	}
	defer j.Close()

	recs, err := j.ListTradesClosedBetween(cmd.Context(), start, end)
	if err != nil {
		return fmt.Errorf("query trades: %w", err)
	}
	fmt.Fprintln(cmd.OutOrStdout(), journal.FormatTradesOrg(recs))
	return nil
}

func runJournalExport(cmd *cobra.Command, args []string) error {
	j, err := openQueryJournal()
	if err != nil {
		return err
	}
	defer j.Close()

	e, err := j.Load(cmd.Context(), args[0])
	if err != nil {
		return fmt.Errorf("load run: %w", err)
	}

	path := journalOutput
	if path == "" && cfg.Journal.OrgDir != "" {
		path = filepath.Join(cfg.Journal.OrgDir, e.Run.RunID+".org")
	}
	if path == "" {
		note, err := journal.FormatRunOrg(e)
		if err != nil {
			return err
		}
		fmt.Fprint(cmd.OutOrStdout(), note)
		return nil
	}
	if err := journal.WriteOrg(path, e); err != nil {
		return fmt.Errorf("write org: %w", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", path)
	return nil
}
