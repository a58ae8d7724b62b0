package cmd

import (
	"context"
	"fmt"

	"github.com/rustyeddy/marketlab/journal"
	"github.com/rustyeddy/marketlab/provider"
)

// marketData opens the CSV provider behind the configured cache. The
// returned func releases the Redis client, if any.
func marketData(ctx context.Context) (provider.MarketData, func() error, error) {
	var data provider.MarketData = provider.NewCSVDir(cfg.Data.Dir, log)

	switch cfg.Cache.Type {
	case "memory":
		data = provider.NewCached(data, provider.NewMemoryCache(), cfg.Cache.TTL, cfg.Cache.Namespace, log)
	case "redis":
		client, err := provider.DialRedis(ctx, cfg.Cache.RedisAddr, cfg.Cache.RedisPassword, cfg.Cache.RedisDB)
		if err != nil {
			return nil, nil, err
		}
		data = provider.NewCached(data, provider.NewRedisCache(client), cfg.Cache.TTL, cfg.Cache.Namespace, log)
		return data, client.Close, nil
	}
	return data, func() error { return nil }, nil
}

// sentimentSource returns nil when no sentiment file is configured.
func sentimentSource() (provider.SentimentSource, error) {
	if cfg.Data.SentimentFile == "" {
		return nil, nil
	}
	f, err := provider.LoadSentimentFile(cfg.Data.SentimentFile)
	if err != nil {
		return nil, err
	}
	return f, nil
}

// openJournal returns nil when journaling is off.
func openJournal() (journal.Journal, error) {
	switch cfg.Journal.Type {
	case "csv":
		return journal.NewCSV(cfg.Journal.TradesFile, cfg.Journal.EquityFile)
	case "sqlite":
		return journal.NewSQLite(cfg.Journal.DBPath)
	case "none", "":
		return nil, nil
	}
	return nil, fmt.Errorf("unknown journal type %q", cfg.Journal.Type)
}
