package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rustyeddy/marketlab/indicators"
	"github.com/rustyeddy/marketlab/market"
	"github.com/rustyeddy/marketlab/patterns"
	"github.com/rustyeddy/marketlab/signal"
	"github.com/rustyeddy/marketlab/structure"
)

func TestDefaultValidates(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())

	assert.Equal(t, "./data", cfg.Data.Dir)
	assert.Equal(t, "none", cfg.Cache.Type)
	assert.Equal(t, 5*time.Minute, cfg.Cache.TTL)
	assert.Equal(t, 10000.0, cfg.Backtest.InitialCapital)
	assert.Equal(t, 30, cfg.Correlation.LookbackDays)
	assert.Equal(t, 0.7, cfg.Correlation.Threshold)
	assert.Equal(t, "info", cfg.Log.Level)
}

func TestDefaultsMatchPackageDefaults(t *testing.T) {
	cfg := Default()

	assert.Equal(t, indicators.DefaultConfig(), cfg.IndicatorsConfig())
	assert.Equal(t, patterns.DefaultConfig(), cfg.PatternsConfig())
	assert.Equal(t, structure.DefaultConfig(), cfg.StructureConfig())
	assert.Equal(t, signal.DefaultConfig(), cfg.SignalConfig())
}

func TestSignalConfigCarriesSections(t *testing.T) {
	cfg := Default()
	cfg.Indicators.RSIPeriod = 7
	cfg.Structure.SwingLength = 10
	cfg.Signals.TopN = 3

	s := cfg.SignalConfig()
	assert.Equal(t, 7, s.Indicators.RSIPeriod)
	assert.Equal(t, 10, s.Structure.SwingLength)
	assert.Equal(t, 3, s.TopN)
}

func TestRunnerOptions(t *testing.T) {
	cfg := Default()
	cfg.Backtest.Timeframe = "H4"
	cfg.Backtest.Workers = 2

	opts := cfg.RunnerOptions()
	assert.Equal(t, market.H4, opts.Timeframe)
	assert.Equal(t, 2, opts.Workers)
	assert.Equal(t, 10000, opts.MaxCombinations)

	lc := cfg.LoggerConfig()
	assert.Equal(t, "info", lc.Level)
	assert.Equal(t, "console", lc.Format)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"empty data dir", func(c *Config) { c.Data.Dir = "" }},
		{"unknown cache", func(c *Config) { c.Cache.Type = "memcached" }},
		{"redis without addr", func(c *Config) { c.Cache.Type = "redis"; c.Cache.RedisAddr = "" }},
		{"overbought below oversold", func(c *Config) { c.Signals.RSIOverbought = 20 }},
		{"macd slow not above fast", func(c *Config) { c.Indicators.MACDSlow = 12 }},
		{"negative capital", func(c *Config) { c.Backtest.InitialCapital = -1 }},
		{"bad backtest timeframe", func(c *Config) { c.Backtest.Timeframe = "fortnight" }},
		{"bad correlation timeframe", func(c *Config) { c.Correlation.Timeframe = "7x" }},
		{"threshold above one", func(c *Config) { c.Correlation.Threshold = 1.5 }},
		{"csv journal without files", func(c *Config) { c.Journal.Type = "csv" }},
		{"sqlite journal without path", func(c *Config) { c.Journal.Type = "sqlite" }},
		{"unknown log level", func(c *Config) { c.Log.Level = "loud" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.True(t, errors.Is(err, market.ErrInvalidParameter), err.Error())
		})
	}

	cfg := Default()
	cfg.Journal = JournalConfig{Type: "sqlite", DBPath: "runs.db"}
	assert.NoError(t, cfg.Validate())
}

func TestLoadFromFileYAMLFillsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "marketlab.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
data:
  dir: /srv/candles
cache:
  type: memory
  ttl: 90s
signals:
  top_n: 3
indicators:
  rsi_period: 9
journal:
  type: sqlite
  db_path: runs.db
`), 0o644))

	cfg, err := LoadFromFile(path)
	require.NoError(t, err)

	assert.Equal(t, "/srv/candles", cfg.Data.Dir)
	assert.Equal(t, "memory", cfg.Cache.Type)
	assert.Equal(t, 90*time.Second, cfg.Cache.TTL)
	assert.Equal(t, 3, cfg.Signals.TopN)
	assert.Equal(t, 70.0, cfg.Signals.RSIOverbought)
	assert.Equal(t, 9, cfg.Indicators.RSIPeriod)
	assert.Equal(t, 20, cfg.Indicators.BBPeriod)
	assert.Equal(t, "1d", cfg.Backtest.Timeframe)
	assert.Equal(t, 9, cfg.SignalConfig().Indicators.RSIPeriod)
}

func TestLoadFromFileErrors(t *testing.T) {
	dir := t.TempDir()

	_, err := LoadFromFile(filepath.Join(dir, "missing.yaml"))
	assert.Error(t, err)

	bad := filepath.Join(dir, "bad.yaml")
	require.NoError(t, os.WriteFile(bad, []byte("data: [unclosed"), 0o644))
	_, err = LoadFromFile(bad)
	assert.ErrorContains(t, err, "tried YAML and JSON")

	invalid := filepath.Join(dir, "invalid.yaml")
	require.NoError(t, os.WriteFile(invalid, []byte("cache:\n  type: memcached\n"), 0o644))
	_, err = LoadFromFile(invalid)
	assert.True(t, errors.Is(err, market.ErrInvalidParameter))
}

func TestSaveAndLoadRoundTrip(t *testing.T) {
	for _, name := range []string{"cfg.yaml", "cfg.yml", "cfg.json"} {
		t.Run(name, func(t *testing.T) {
			cfg := Default()
			cfg.Data.Dir = "/tmp/candles"
			cfg.Cache.TTL = 2 * time.Minute
			cfg.Correlation.LookbackDays = 60
			cfg.Journal = JournalConfig{Type: "csv", TradesFile: "t.csv", EquityFile: "e.csv"}

			path := filepath.Join(t.TempDir(), name)
			require.NoError(t, cfg.SaveToFile(path))

			got, err := LoadFromFile(path)
			require.NoError(t, err)
			assert.Equal(t, cfg, got)
		})
	}
}

func TestApplyEnv(t *testing.T) {
	t.Setenv(EnvDataDir, "/env/data")
	t.Setenv(EnvLogLevel, "DEBUG")
	t.Setenv(EnvRedisAddr, "redis:6380")

	cfg := Default()
	cfg.ApplyEnv()
	assert.Equal(t, "/env/data", cfg.Data.Dir)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "redis", cfg.Cache.Type)
	assert.Equal(t, "redis:6380", cfg.Cache.RedisAddr)
	assert.NoError(t, cfg.Validate())
}
