package market

// Snapshot is the latest market state for a symbol.
type Snapshot struct {
	Symbol                string  `json:"symbol" yaml:"symbol"`
	Price                 float64 `json:"price" yaml:"price"`
	PriceChangePercent24h float64 `json:"price_change_percent_24h" yaml:"price_change_percent_24h"`
	Volume                float64 `json:"volume" yaml:"volume"`
	QuoteVolume           float64 `json:"quote_volume" yaml:"quote_volume"`
}

// Sentiment is an external read on news/social tone for a symbol.
type Sentiment struct {
	Overall      string  `json:"overall_sentiment" yaml:"overall_sentiment"` // bullish, bearish or neutral
	Confidence   float64 `json:"confidence" yaml:"confidence"`
	RelevantNews []News  `json:"relevant_news,omitempty" yaml:"relevant_news,omitempty"`
}

type News struct {
	Headline  string `json:"headline" yaml:"headline"`
	Sentiment string `json:"sentiment" yaml:"sentiment"`
	Impact    string `json:"impact" yaml:"impact"` // high, medium, low
}

const (
	SentimentBullish = "bullish"
	SentimentBearish = "bearish"
	SentimentNeutral = "neutral"
)
