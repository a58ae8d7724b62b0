// Package config loads the marketlab configuration tree from YAML or JSON,
// fills defaults and validates it.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/creasty/defaults"
	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/rustyeddy/marketlab/backtest"
	"github.com/rustyeddy/marketlab/indicators"
	"github.com/rustyeddy/marketlab/market"
	"github.com/rustyeddy/marketlab/patterns"
	"github.com/rustyeddy/marketlab/pkg/logger"
	"github.com/rustyeddy/marketlab/signal"
	"github.com/rustyeddy/marketlab/structure"
)

// Environment overrides applied by ApplyEnv.
const (
	EnvDataDir   = "MARKETLAB_DATA_DIR"
	EnvLogLevel  = "MARKETLAB_LOG_LEVEL"
	EnvRedisAddr = "MARKETLAB_REDIS_ADDR"
)

var validate = validator.New()

// Config represents the complete marketlab configuration
type Config struct {
	Data        DataConfig        `json:"data" yaml:"data"`
	Cache       CacheConfig       `json:"cache" yaml:"cache"`
	Indicators  indicators.Config `json:"indicators" yaml:"indicators"`
	Patterns    patterns.Config   `json:"patterns" yaml:"patterns"`
	Structure   structure.Config  `json:"structure" yaml:"structure"`
	Signals     signal.Config     `json:"signals" yaml:"signals"`
	Backtest    BacktestConfig    `json:"backtest" yaml:"backtest"`
	Correlation CorrelationConfig `json:"correlation" yaml:"correlation"`
	Journal     JournalConfig     `json:"journal" yaml:"journal"`
	Log         LogConfig         `json:"log" yaml:"log"`
}

// DataConfig locates the candle CSV directory and the optional sentiment
// file.
type DataConfig struct {
	Dir           string `json:"dir" yaml:"dir" default:"./data" validate:"required"`
	SentimentFile string `json:"sentiment_file,omitempty" yaml:"sentiment_file,omitempty"`
}

// CacheConfig selects the cache placed in front of the data provider.
type CacheConfig struct {
	Type          string        `json:"type" yaml:"type" default:"none" validate:"oneof=none memory redis"`
	TTL           time.Duration `json:"ttl" yaml:"ttl" default:"5m"`
	RedisAddr     string        `json:"redis_addr,omitempty" yaml:"redis_addr,omitempty" default:"localhost:6379"`
	RedisPassword string        `json:"redis_password,omitempty" yaml:"redis_password,omitempty"`
	RedisDB       int           `json:"redis_db" yaml:"redis_db" validate:"gte=0"`
	Namespace     string        `json:"namespace" yaml:"namespace" default:"marketlab"`
}

type BacktestConfig struct {
	Timeframe       string  `json:"timeframe" yaml:"timeframe" default:"1d"`
	InitialCapital  float64 `json:"initial_capital" yaml:"initial_capital" default:"10000" validate:"gt=0"`
	MaxCombinations int     `json:"max_combinations" yaml:"max_combinations" default:"10000" validate:"gte=1"`
	Workers         int     `json:"workers" yaml:"workers" validate:"gte=0"` // 0 means GOMAXPROCS
}

type CorrelationConfig struct {
	Timeframe    string  `json:"timeframe" yaml:"timeframe" default:"1d"`
	LookbackDays int     `json:"lookback_days" yaml:"lookback_days" default:"30" validate:"gte=2"`
	Threshold    float64 `json:"threshold" yaml:"threshold" default:"0.7" validate:"gt=0,lte=1"`
	Window       int     `json:"divergence_window" yaml:"divergence_window" default:"20" validate:"gte=3"`
	Concurrency  int     `json:"concurrency" yaml:"concurrency" default:"8" validate:"gte=1"`
}

// JournalConfig contains journaling parameters
type JournalConfig struct {
	Type       string `json:"type" yaml:"type" default:"none" validate:"oneof=none csv sqlite"`
	TradesFile string `json:"trades_file,omitempty" yaml:"trades_file,omitempty"`
	EquityFile string `json:"equity_file,omitempty" yaml:"equity_file,omitempty"`
	DBPath     string `json:"db_path,omitempty" yaml:"db_path,omitempty"`
	OrgDir     string `json:"org_dir,omitempty" yaml:"org_dir,omitempty"`
}

type LogConfig struct {
	Level  string `json:"level" yaml:"level" default:"info" validate:"oneof=trace debug info warn error fatal panic disabled"`
	Format string `json:"format" yaml:"format" default:"console" validate:"oneof=json console"`
	Output string `json:"output" yaml:"output" default:"stderr"`
}

// Default returns a configuration with every default applied.
func Default() *Config {
	cfg := &Config{}
	if err := defaults.Set(cfg); err != nil {
		panic(fmt.Sprintf("config defaults: %v", err))
	}
	return cfg
}

// LoadFromFile reads YAML, falling back to JSON, fills unset fields with
// their defaults and validates the result. Zero values count as unset.
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	cfg := &Config{}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		cfg = &Config{}
		if jerr := json.Unmarshal(data, cfg); jerr != nil {
			return nil, fmt.Errorf("parse config (tried YAML and JSON): %w", errors.Join(err, jerr))
		}
	}
	if err := defaults.Set(cfg); err != nil {
		return nil, fmt.Errorf("config defaults: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// SaveToFile writes YAML for .yaml/.yml paths and indented JSON otherwise.
func (c *Config) SaveToFile(path string) error {
	var (
		data []byte
		err  error
	)
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		data, err = yaml.Marshal(c)
	default:
		data, err = json.MarshalIndent(c, "", "  ")
	}
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write config file: %w", err)
	}
	return nil
}

// ApplyEnv overrides the data directory, log level and Redis address from
// the environment. Setting the Redis address also selects the Redis cache.
func (c *Config) ApplyEnv() {
	if v := os.Getenv(EnvDataDir); v != "" {
		c.Data.Dir = v
	}
	if v := os.Getenv(EnvLogLevel); v != "" {
		c.Log.Level = strings.ToLower(v)
	}
	if v := os.Getenv(EnvRedisAddr); v != "" {
		c.Cache.RedisAddr = v
		c.Cache.Type = "redis"
	}
}

// Validate checks the struct tags and the rules that span fields.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("%w: %v", market.ErrInvalidParameter, err)
	}

	for name, tf := range map[string]string{
		"backtest.timeframe":    c.Backtest.Timeframe,
		"correlation.timeframe": c.Correlation.Timeframe,
	} {
		if _, err := market.ParseTimeframe(tf); err != nil {
			return fmt.Errorf("%s: %w", name, err)
		}
	}

	if c.Cache.Type == "redis" && c.Cache.RedisAddr == "" {
		return fmt.Errorf("%w: cache.redis_addr required for redis cache", market.ErrInvalidParameter)
	}
	switch c.Journal.Type {
	case "csv":
		if c.Journal.TradesFile == "" || c.Journal.EquityFile == "" {
			return fmt.Errorf("%w: journal trades_file and equity_file required for CSV type", market.ErrInvalidParameter)
		}
	case "sqlite":
		if c.Journal.DBPath == "" {
			return fmt.Errorf("%w: journal db_path required for SQLite type", market.ErrInvalidParameter)
		}
	}
	return nil
}

// SignalConfig returns the engine configuration with the analysis
// sections attached.
func (c *Config) SignalConfig() signal.Config {
	s := c.Signals
	s.Indicators = c.Indicators
	s.Patterns = c.Patterns
	s.Structure = c.Structure
	return s
}

func (c *Config) IndicatorsConfig() indicators.Config { return c.Indicators }
func (c *Config) PatternsConfig() patterns.Config     { return c.Patterns }
func (c *Config) StructureConfig() structure.Config   { return c.Structure }

// RunnerOptions maps the backtest section onto the runner. The timeframe
// has already been checked by Validate.
func (c *Config) RunnerOptions() backtest.RunnerOptions {
	tf, _ := market.ParseTimeframe(c.Backtest.Timeframe)
	return backtest.RunnerOptions{
		Timeframe:       tf,
		InitialCapital:  c.Backtest.InitialCapital,
		MaxCombinations: c.Backtest.MaxCombinations,
		Workers:         c.Backtest.Workers,
	}
}

func (c *Config) LoggerConfig() logger.Config {
	return logger.Config{Level: c.Log.Level, Format: c.Log.Format, Output: c.Log.Output}
}
