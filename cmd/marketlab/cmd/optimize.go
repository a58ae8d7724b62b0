package cmd

import (
	"github.com/spf13/cobra"

	"github.com/rustyeddy/marketlab/backtest"
)

var optimizeCmd = &cobra.Command{
	Use:   "optimize SYMBOL",
	Short: "Grid-search strategy parameters on one symbol",
	Long: `Backtest every combination of the given parameter ranges and report
the one with the highest total return. Parameters not swept keep their
--param or default value.

Example:
  marketlab optimize BTCUSDT --strategy rsi --range period=10:20:2 --range oversold=20:35:5`,
	Args: cobra.ExactArgs(1),
	RunE: runOptimize,
}

var (
	optStrategy string
	optFrom     string
	optTo       string
	optParams   []string
	optRanges   []string
	optJournal  bool
	optJSON     bool
)

func init() {
	rootCmd.AddCommand(optimizeCmd)

	optimizeCmd.Flags().StringVarP(&optStrategy, "strategy", "s", "rsi", "strategy name")
	optimizeCmd.Flags().StringVar(&optFrom, "from", "", "start date (YYYY-MM-DD or RFC3339)")
	optimizeCmd.Flags().StringVar(&optTo, "to", "", "end date (YYYY-MM-DD or RFC3339)")
	optimizeCmd.Flags().StringArrayVarP(&optParams, "param", "p", nil, "fixed parameter name=value (repeatable)")
	optimizeCmd.Flags().StringArrayVarP(&optRanges, "range", "r", nil, "parameter sweep name=min:max:step (repeatable)")
	optimizeCmd.Flags().BoolVar(&optJournal, "journal", false, "record the best run in the configured journal")
	optimizeCmd.Flags().BoolVar(&optJSON, "json", false, "print JSON instead of text")
}

func runOptimize(cmd *cobra.Command, args []string) error {
	s, err := newStrategy(optStrategy, optParams)
	if err != nil {
		return err
	}
	ranges, err := parseRanges(optRanges)
	if err != nil {
		return err
	}
	start, end, err := dateRange(optFrom, optTo)
	if err != nil {
		return err
	}

	r, closeData, err := newRunner(cmd)
	if err != nil {
		return err
	}
	defer closeData()

	out, err := r.OptimizeStrategy(cmd.Context(), args[0], s, start, end, ranges)
	if err != nil {
		return err
	}

	if optJournal {
		if err := record(cmd, out.Result); err != nil {
			return err
		}
	}

	if optJSON {
		return writeJSON(cmd.OutOrStdout(), out)
	}
	backtest.PrintOptimization(cmd.OutOrStdout(), out)
	return nil
}
