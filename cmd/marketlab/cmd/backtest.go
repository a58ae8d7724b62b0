package cmd

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/rustyeddy/marketlab/backtest"
	"github.com/rustyeddy/marketlab/journal"
	"github.com/rustyeddy/marketlab/strategies"
)

var backtestCmd = &cobra.Command{
	Use:   "backtest SYMBOL",
	Short: "Backtest a strategy on one symbol",
	Long: `Simulate a rule strategy over a symbol's candles with all capital
committed to each trade.

Run "marketlab strategies" for the available strategies and their
parameters. Risk exits are set with --param stop_loss_pct=5,
take_profit_pct=10 or time_limit_bars=20.

Example:
  marketlab backtest BTCUSDT --strategy rsi --from 2024-01-01 --to 2024-12-31 --param period=10`,
	Args: cobra.ExactArgs(1),
	RunE: runBacktest,
}

var (
	btStrategy string
	btFrom     string
	btTo       string
	btCapital  float64
	btInterval string
	btParams   []string
	btJournal  bool
	btJSON     bool
)

func init() {
	rootCmd.AddCommand(backtestCmd)

	backtestCmd.Flags().StringVarP(&btStrategy, "strategy", "s", "rsi", "strategy name")
	backtestCmd.Flags().StringVar(&btFrom, "from", "", "start date (YYYY-MM-DD or RFC3339)")
	backtestCmd.Flags().StringVar(&btTo, "to", "", "end date (YYYY-MM-DD or RFC3339)")
	backtestCmd.Flags().Float64VarP(&btCapital, "capital", "b", 0, "starting capital (default from config)")
	backtestCmd.Flags().StringVarP(&btInterval, "interval", "i", "", "bar interval (default from config)")
	backtestCmd.Flags().StringArrayVarP(&btParams, "param", "p", nil, "strategy parameter name=value (repeatable)")
	backtestCmd.Flags().BoolVar(&btJournal, "journal", false, "record the run in the configured journal")
	backtestCmd.Flags().BoolVar(&btJSON, "json", false, "print JSON instead of text")
}

func newStrategy(name string, pairs []string) (strategies.Strategy, error) {
	params, err := parseParams(pairs)
	if err != nil {
		return strategies.Strategy{}, err
	}
	return strategies.New(name, params)
}

func newRunner(cmd *cobra.Command) (*backtest.Runner, func() error, error) {
	data, closeData, err := marketData(cmd.Context())
	if err != nil {
		return nil, nil, err
	}
	return backtest.NewRunner(data, cfg.RunnerOptions(), log, recorder), closeData, nil
}

func runBacktest(cmd *cobra.Command, args []string) error {
	s, err := newStrategy(btStrategy, btParams)
	if err != nil {
		return err
	}
	start, end, err := dateRange(btFrom, btTo)
	if err != nil {
		return err
	}

	r, closeData, err := newRunner(cmd)
	if err != nil {
		return err
	}
	defer closeData()

	capital := btCapital
	if capital <= 0 {
		capital = r.Options.InitialCapital
	}
	interval := btInterval
	if interval == "" {
		interval = string(r.Options.Timeframe)
	}

	res, err := r.RunBacktest(cmd.Context(), args[0], s, start, end, capital, interval)
	if err != nil {
		return err
	}

	if btJournal {
		if err := record(cmd, res); err != nil {
			return err
		}
	}

	if btJSON {
		return writeJSON(cmd.OutOrStdout(), res)
	}
	backtest.Print(cmd.OutOrStdout(), res)
	return nil
}

// record writes res to the configured journal and, when an org directory
// is set, an org note named after the run.
func record(cmd *cobra.Command, res backtest.Result) error {
	j, err := openJournal()
	if err != nil {
		return fmt.Errorf("open journal: %w", err)
	}
	e := journal.FromResult(res)
	if j != nil {
		defer j.Close()
		if err := j.RecordRun(cmd.Context(), e); err != nil {
			return fmt.Errorf("journal: %w", err)
		}
	}
	if cfg.Journal.OrgDir != "" {
		path := filepath.Join(cfg.Journal.OrgDir, e.Run.RunID+".org")
		if err := journal.WriteOrg(path, e); err != nil {
			return fmt.Errorf("org note: %w", err)
		}
	}
	log.Info().Str("run_id", e.Run.RunID).Str("journal", cfg.Journal.Type).Msg("run recorded")
	return nil
}
