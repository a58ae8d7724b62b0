package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rustyeddy/marketlab/correlation"
)

var correlateCmd = &cobra.Command{
	Use:   "correlate [SYMBOL...]",
	Short: "Correlation matrix and pair divergence across symbols",
	Long: `Compute the Pearson correlation of daily returns between symbols,
list the significant pairs and flag correlated pairs whose normalized
spread has drifted from its mean. With no symbols every symbol in the data
directory is used.

Example:
  marketlab correlate BTCUSDT ETHUSDT SOLUSDT --lookback 60 --threshold 0.8`,
	RunE: runCorrelate,
}

var (
	corTimeframe string
	corLookback  int
	corThreshold float64
	corWindow    int
	corJSON      bool
)

func init() {
	rootCmd.AddCommand(correlateCmd)

	correlateCmd.Flags().StringVarP(&corTimeframe, "timeframe", "t", "", "source timeframe (default from config)")
	correlateCmd.Flags().IntVarP(&corLookback, "lookback", "l", 0, "lookback in days (default from config)")
	correlateCmd.Flags().Float64Var(&corThreshold, "threshold", 0, "significance threshold (default from config)")
	correlateCmd.Flags().IntVar(&corWindow, "window", 0, "divergence window in days (default from config)")
	correlateCmd.Flags().BoolVar(&corJSON, "json", false, "print JSON instead of text")
}

type correlationReport struct {
	Matrix      correlation.Matrix       `json:"matrix"`
	Significant []correlation.Pair       `json:"significant_pairs"`
	PairTrading []correlation.Pair       `json:"pair_trading_candidates"`
	Diversify   []correlation.Pair       `json:"diversification_candidates"`
	Divergent   []correlation.PairSignal `json:"divergent_pairs"`
}

func runCorrelate(cmd *cobra.Command, args []string) error {
	cc := cfg.Correlation
	if corTimeframe != "" {
		cc.Timeframe = corTimeframe
	}
	if corLookback > 0 {
		cc.LookbackDays = corLookback
	}
	if corThreshold > 0 {
		cc.Threshold = corThreshold
	}
	if corWindow > 0 {
		cc.Window = corWindow
	}

	data, closeData, err := marketData(cmd.Context())
	if err != nil {
		return err
	}
	defer closeData()

	symbols := args
	if len(symbols) == 0 {
		symbols, err = data.ActiveSymbols(cmd.Context())
		if err != nil {
			return err
		}
	}

	a := correlation.NewAnalyzer(data, cc.Concurrency, log, recorder)
	m, err := a.CalculateCorrelationMatrix(cmd.Context(), symbols, cc.Timeframe, cc.LookbackDays)
	if err != nil {
		return err
	}

	rep := correlationReport{
		Matrix:      m,
		Significant: m.SignificantPairs(cc.Threshold),
		PairTrading: m.PairTradingCandidates(),
		Diversify:   m.DiversificationCandidates(),
	}
	rep.Divergent = correlation.DivergentPairs(rep.PairTrading, m.Prices, cc.Window)

	if corJSON {
		return writeJSON(cmd.OutOrStdout(), rep)
	}

	w := cmd.OutOrStdout()
	correlation.Print(w, m, cc.Threshold)
	fmt.Fprintf(w, "\nPair trading candidates: %d\n", len(rep.PairTrading))
	fmt.Fprintf(w, "Diversification candidates: %d\n", len(rep.Diversify))
	for _, p := range rep.Diversify {
		fmt.Fprintf(w, "  %-10s %-10s %+.3f\n", p.A, p.B, p.Correlation)
	}
	fmt.Fprintln(w)
	correlation.PrintSignals(w, rep.Divergent)
	return nil
}
