package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rustyeddy/marketlab/market"
)

var dataCmd = &cobra.Command{
	Use:   "data",
	Short: "Inspect the candle files in the data directory",
}

var dataStatsCmd = &cobra.Command{
	Use:   "stats [SYMBOL...]",
	Short: "Print bar counts and gaps per symbol",
	Long: `Load each symbol's series at the given timeframe and report present and
missing bars, weekend gaps and suspicious gaps. With no symbols every
symbol in the data directory is checked.

Example:
  marketlab data stats BTCUSDT ETHUSDT --timeframe 1h`,
	RunE: runDataStats,
}

var dataTimeframe string

func init() {
	rootCmd.AddCommand(dataCmd)
	dataCmd.AddCommand(dataStatsCmd)

	dataStatsCmd.Flags().StringVarP(&dataTimeframe, "timeframe", "t", "1d", "candle timeframe")
}

func runDataStats(cmd *cobra.Command, args []string) error {
	tf, err := market.ParseTimeframe(dataTimeframe)
	if err != nil {
		return err
	}

	data, closeData, err := marketData(cmd.Context())
	if err != nil {
		return err
	}
	defer closeData()

	symbols := args
	if len(symbols) == 0 {
		if symbols, err = data.ActiveSymbols(cmd.Context()); err != nil {
			return err
		}
	}

	w := cmd.OutOrStdout()
	for _, sym := range symbols {
		candles, err := data.Series(cmd.Context(), sym, tf)
		if err != nil {
			return fmt.Errorf("%s: %w", sym, err)
		}
		market.PrintStats(w, sym, tf, candles)
	}
	return nil
}
