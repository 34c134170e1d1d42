package scanner

import (
	"context"

	"github.com/jiaming2012/spread-scanner/src/models"
)

// MarketDataProvider supplies underlying quotes, expirations, normalized
// option chains (greeks already computed) and IV rank.
type MarketDataProvider interface {
	Quote(ctx context.Context, symbol models.StockSymbol) (models.StockQuote, error)
	Expirations(ctx context.Context, symbol models.StockSymbol) ([]string, error)
	Chain(ctx context.Context, symbol models.StockSymbol, expiration string, spot float64) (calls []models.OptionQuote, puts []models.OptionQuote, err error)
	// IVRank normalizes currentIV against the symbol's trailing 52-week
	// volatility range, 0-100. currentIV <= 0 means "use the provider's own
	// current volatility estimate".
	IVRank(ctx context.Context, symbol models.StockSymbol, currentIV float64) (float64, error)
}

type FundamentalsProvider interface {
	Fundamentals(ctx context.Context, symbol models.StockSymbol) (models.FundamentalsRecord, error)
}

type NewsProvider interface {
	News(ctx context.Context, symbol models.StockSymbol) ([]models.NewsArticle, error)
}

// SentimentClassifier scores a batch of texts. Implementations must batch
// internally and be safe to call from multiple goroutines; the underlying
// model is expected to serialize inference itself (single-flight).
type SentimentClassifier interface {
	Classify(ctx context.Context, texts []string) ([]models.SentimentResult, error)
}

// Ranker scores candidate batches. candidates and features are parallel
// slices; one serialized call covers the whole batch.
type Ranker interface {
	PredictBatch(candidates []models.SpreadCandidate, features []models.FeatureVector) []models.Prediction
	IsPlaceholder() bool
}
