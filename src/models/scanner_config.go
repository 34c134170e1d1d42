package models

// ScannerConfigYAML is the on-disk scanner configuration. Concurrency caps
// reflect external provider rate limits, not internal resource contention.
type ScannerConfigYAML struct {
	UniverseCSV string `yaml:"universe_csv"` // optional override of the built-in universe

	MarketDataConcurrency   int `yaml:"market_data_concurrency"`
	FundamentalsConcurrency int `yaml:"fundamentals_concurrency"`

	MaxExpirationsPerSymbol int `yaml:"max_expirations_per_symbol"`
	MaxArticlesPerSymbol    int `yaml:"max_articles_per_symbol"`

	CacheTTLFundamentalsSeconds int `yaml:"cache_ttl_fundamentals_seconds"`
	CacheTTLSentimentSeconds    int `yaml:"cache_ttl_sentiment_seconds"`
	CacheTTLIVRankSeconds       int `yaml:"cache_ttl_iv_rank_seconds"`

	ModelWeightsPath string `yaml:"model_weights_path"` // empty = placeholder mode
}

func DefaultScannerConfig() ScannerConfigYAML {
	return ScannerConfigYAML{
		MarketDataConcurrency:       6,
		FundamentalsConcurrency:     3,
		MaxExpirationsPerSymbol:     8,
		MaxArticlesPerSymbol:        25,
		CacheTTLFundamentalsSeconds: 86400,
		CacheTTLSentimentSeconds:    3600,
		CacheTTLIVRankSeconds:       300,
	}
}

// ApplyDefaults fills zero-valued fields from DefaultScannerConfig.
func (c *ScannerConfigYAML) ApplyDefaults() {
	def := DefaultScannerConfig()

	if c.MarketDataConcurrency <= 0 {
		c.MarketDataConcurrency = def.MarketDataConcurrency
	}
	if c.FundamentalsConcurrency <= 0 {
		c.FundamentalsConcurrency = def.FundamentalsConcurrency
	}
	if c.MaxExpirationsPerSymbol <= 0 {
		c.MaxExpirationsPerSymbol = def.MaxExpirationsPerSymbol
	}
	if c.MaxArticlesPerSymbol <= 0 {
		c.MaxArticlesPerSymbol = def.MaxArticlesPerSymbol
	}
	if c.CacheTTLFundamentalsSeconds <= 0 {
		c.CacheTTLFundamentalsSeconds = def.CacheTTLFundamentalsSeconds
	}
	if c.CacheTTLSentimentSeconds <= 0 {
		c.CacheTTLSentimentSeconds = def.CacheTTLSentimentSeconds
	}
	if c.CacheTTLIVRankSeconds <= 0 {
		c.CacheTTLIVRankSeconds = def.CacheTTLIVRankSeconds
	}
}
