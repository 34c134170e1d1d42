package models

import "time"

type NewsArticle struct {
	Title       string    `json:"title"`
	Description string    `json:"description,omitempty"`
	URL         string    `json:"url"`
	PublishedAt string    `json:"published_at"`
	Source      string    `json:"source"`
	FetchedAt   time.Time `json:"fetched_at,omitempty"`
}

// SentimentResult is the per-text classifier output. The three channels sum
// to approximately 1.
type SentimentResult struct {
	Text     string  `json:"text"`
	Positive float64 `json:"positive"`
	Negative float64 `json:"negative"`
	Neutral  float64 `json:"neutral"`
	Label    string  `json:"label"`
}

type ArticleSentiment struct {
	Headline    string  `json:"headline"`
	URL         string  `json:"url"`
	PublishedAt string  `json:"published_at"`
	Source      string  `json:"source"`
	Positive    float64 `json:"positive"`
	Negative    float64 `json:"negative"`
	Neutral     float64 `json:"neutral"`
	Label       string  `json:"label"`
}

// TickerSentiment is the aggregate sentiment for one underlying.
// SentimentScore is normalized to 0-100 where 50 is neutral.
type TickerSentiment struct {
	Symbol            StockSymbol        `json:"symbol"`
	ArticlesAnalyzed  int                `json:"articles_analyzed"`
	AvgPositive       float64            `json:"avg_positive"`
	AvgNegative       float64            `json:"avg_negative"`
	AvgNeutral        float64            `json:"avg_neutral"`
	AvgCompound       float64            `json:"avg_compound"` // -1..1
	SentimentLabel    string             `json:"sentiment_label"`
	SentimentScore    float64            `json:"sentiment_score"`
	TopHeadlines      []string           `json:"top_headlines"`
	AnalyzedAt        time.Time          `json:"analyzed_at"`
	ArticleSentiments []ArticleSentiment `json:"article_sentiments,omitempty"`
}

// NewNeutralTickerSentiment is the fixed record used when no news is
// available or the classifier failed for a symbol.
func NewNeutralTickerSentiment(symbol StockSymbol, headlines []string) TickerSentiment {
	if len(headlines) > 5 {
		headlines = headlines[:5]
	}

	if headlines == nil {
		headlines = []string{}
	}

	return TickerSentiment{
		Symbol:           symbol,
		ArticlesAnalyzed: 0,
		AvgPositive:      0.33,
		AvgNegative:      0.33,
		AvgNeutral:       0.34,
		AvgCompound:      0.0,
		SentimentLabel:   "neutral",
		SentimentScore:   50.0,
		TopHeadlines:     headlines,
		AnalyzedAt:       time.Now().UTC(),
	}
}
