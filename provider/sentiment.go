package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/rustyeddy/marketlab/market"
)

// SentimentFile serves sentiment from a YAML or JSON map of symbol to
// sentiment, loaded once.
type SentimentFile struct {
	entries map[string]market.Sentiment
}

// LoadSentimentFile reads path; the format follows the extension and
// defaults to YAML.
func LoadSentimentFile(path string) (*SentimentFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read sentiment file: %w", err)
	}

	entries := make(map[string]market.Sentiment)
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		err = json.Unmarshal(data, &entries)
	default:
		err = yaml.Unmarshal(data, &entries)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to parse sentiment file: %w", err)
	}

	for sym, s := range entries {
		if s.Confidence < 0 || s.Confidence > 1 {
			return nil, fmt.Errorf("%w: %s sentiment confidence %.2f outside [0,1]", market.ErrInvalidParameter, sym, s.Confidence)
		}
	}
	return &SentimentFile{entries: entries}, nil
}

func (f *SentimentFile) Sentiment(_ context.Context, symbol string) (market.Sentiment, error) {
	s, ok := f.entries[symbol]
	if !ok {
		return market.Sentiment{}, fmt.Errorf("%w: no sentiment for %s", market.ErrDataUnavailable, symbol)
	}
	return s, nil
}
