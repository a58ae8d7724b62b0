package cmd

import (
	"encoding/json"
	"io"

	"github.com/spf13/cobra"

	"github.com/rustyeddy/marketlab/signal"
)

var signalCmd = &cobra.Command{
	Use:   "signal SYMBOL",
	Short: "Generate a trading signal for one symbol",
	Long: `Run the indicator, pattern, structure and sentiment analysis for a
symbol and fuse the readings into one signal.

Example:
  marketlab signal BTCUSDT --timeframe 1h`,
	Args: cobra.ExactArgs(1),
	RunE: runSignal,
}

var signalsCmd = &cobra.Command{
	Use:   "signals",
	Short: "Generate ranked buy and sell signals for every active symbol",
	Long: `Generate a signal for every symbol in the data directory, drop the
neutral ones and rank the rest by confidence weighted by volume and price.
Symbols whose data cannot be analyzed are skipped.

Example:
  marketlab signals --timeframe 4h --top 10`,
	Args: cobra.NoArgs,
	RunE: runSignals,
}

var (
	sigTimeframe string
	sigTop       int
	sigJSON      bool
)

func init() {
	rootCmd.AddCommand(signalCmd)
	rootCmd.AddCommand(signalsCmd)

	for _, c := range []*cobra.Command{signalCmd, signalsCmd} {
		c.Flags().StringVarP(&sigTimeframe, "timeframe", "t", "1h", "candle timeframe (1m, 5m, 15m, 30m, 1h, 4h, 1d, 1w)")
		c.Flags().BoolVar(&sigJSON, "json", false, "print JSON instead of text")
	}
	signalsCmd.Flags().IntVarP(&sigTop, "top", "n", 0, "signals per side (default from config)")
}

func newEngine(cmd *cobra.Command) (*signal.Engine, func() error, error) {
	data, closeData, err := marketData(cmd.Context())
	if err != nil {
		return nil, nil, err
	}
	sent, err := sentimentSource()
	if err != nil {
		closeData()
		return nil, nil, err
	}

	sc := cfg.SignalConfig()
	if sigTop > 0 {
		sc.TopN = sigTop
	}
	return signal.NewEngine(data, sent, sc, log, recorder), closeData, nil
}

func runSignal(cmd *cobra.Command, args []string) error {
	e, closeData, err := newEngine(cmd)
	if err != nil {
		return err
	}
	defer closeData()

	sig, err := e.GenerateSignal(cmd.Context(), args[0], sigTimeframe)
	if err != nil {
		return err
	}
	if sigJSON {
		return writeJSON(cmd.OutOrStdout(), sig)
	}
	signal.Print(cmd.OutOrStdout(), sig)
	return nil
}

func runSignals(cmd *cobra.Command, _ []string) error {
	e, closeData, err := newEngine(cmd)
	if err != nil {
		return err
	}
	defer closeData()

	sigs, err := e.GenerateSignals(cmd.Context(), sigTimeframe)
	if err != nil {
		return err
	}
	if sigJSON {
		return writeJSON(cmd.OutOrStdout(), sigs)
	}
	signal.PrintSignals(cmd.OutOrStdout(), sigs)
	return nil
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
