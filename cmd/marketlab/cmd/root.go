package cmd

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/common/expfmt"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/rustyeddy/marketlab/config"
	"github.com/rustyeddy/marketlab/pkg/logger"
	"github.com/rustyeddy/marketlab/pkg/metrics"
)

var rootCmd = &cobra.Command{
	Use:   "marketlab",
	Short: "Market analysis, signal generation and strategy backtesting",
	Long: `Marketlab analyzes OHLCV candle data stored as CSV files.

It provides tools for:
  - Technical indicators, candlestick and chart patterns, market structure
  - Fused buy/sell signals with confidence and reasons
  - Correlation matrices and pair divergence
  - Backtesting and grid-search optimization of rule strategies
  - Journaling backtest runs to CSV, SQLite and org-mode

Candle files are read from the data directory as <SYMBOL>_<timeframe>.csv.`,
	SilenceUsage:       true,
	PersistentPreRunE:  setup,
	PersistentPostRunE: dumpMetrics,
}

var (
	cfgFile     string
	dataDir     string
	logLevel    string
	logFormat   string
	showMetrics bool
)

// Shared state built by setup before every command.
var (
	cfg      *config.Config
	log      = zerolog.Nop()
	registry *prometheus.Registry
	recorder *metrics.Recorder
)

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVarP(&cfgFile, "config", "c", "", "config file (YAML or JSON)")
	pf.StringVar(&dataDir, "data-dir", "", "candle CSV directory (overrides config)")
	pf.StringVar(&logLevel, "log-level", "", "log level: debug, info, warn, error (overrides config)")
	pf.StringVar(&logFormat, "log-format", "", "log format: console or json (overrides config)")
	pf.BoolVar(&showMetrics, "metrics", false, "print collected metrics after the command")
}

func setup(cmd *cobra.Command, _ []string) error {
	var err error
	if cfgFile != "" {
		cfg, err = config.LoadFromFile(cfgFile)
		if err != nil {
			return err
		}
	} else {
		cfg = config.Default()
	}

	cfg.ApplyEnv()
	if dataDir != "" {
		cfg.Data.Dir = dataDir
	}
	if logLevel != "" {
		cfg.Log.Level = logLevel
	}
	if logFormat != "" {
		cfg.Log.Format = logFormat
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	log, err = logger.New(cfg.LoggerConfig())
	if err != nil {
		return err
	}

	registry = prometheus.NewRegistry()
	recorder = metrics.New(registry)
	return nil
}

func dumpMetrics(cmd *cobra.Command, _ []string) error {
	if !showMetrics || registry == nil {
		return nil
	}
	families, err := registry.Gather()
	if err != nil {
		return err
	}
	w := cmd.OutOrStdout()
	fmt.Fprintln(w)
	for _, mf := range families {
		if _, err := expfmt.MetricFamilyToText(w, mf); err != nil {
			return err
		}
	}
	return nil
}
