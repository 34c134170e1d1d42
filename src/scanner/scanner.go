// Package scanner implements the options spread scanning pipeline: leg
// filtering, spread construction, fundamental and risk scoring, and the
// orchestration that fans the stages out across the scan universe.
package scanner

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel"

	"github.com/jiaming2012/spread-scanner/src/cache"
	"github.com/jiaming2012/spread-scanner/src/ml"
	"github.com/jiaming2012/spread-scanner/src/models"
)

const expirationDateLayout = "2006-01-02"

// Scanner coordinates the scan pipeline. Stages run strictly in order; each
// stage fans out across symbols or candidates internally, bounded by the
// configured concurrency caps. A failing symbol degrades its own
// contribution and never aborts the scan.
type Scanner struct {
	marketData   MarketDataProvider
	fundamentals FundamentalsProvider
	news         NewsProvider
	classifier   SentimentClassifier
	ranker       Ranker
	cache        cache.Cache
	universe     *UniverseResolver
	cfg          models.ScannerConfigYAML

	now func() time.Time
}

func NewScanner(marketData MarketDataProvider, fundamentals FundamentalsProvider, news NewsProvider, classifier SentimentClassifier, ranker Ranker, c cache.Cache, universe *UniverseResolver, cfg models.ScannerConfigYAML) *Scanner {
	cfg.ApplyDefaults()

	if c == nil {
		c = cache.NewNoopCache()
	}

	return &Scanner{
		marketData:   marketData,
		fundamentals: fundamentals,
		news:         news,
		classifier:   classifier,
		ranker:       ranker,
		cache:        c,
		universe:     universe,
		cfg:          cfg,
		now:          time.Now,
	}
}

// SetClock overrides the scanner clock. Tests only.
func (s *Scanner) SetClock(now func() time.Time) {
	s.now = now
}

// Scan runs the full pipeline and returns ranked spread candidates. Only
// filter validation can fail; provider errors degrade per symbol.
func (s *Scanner) Scan(ctx context.Context, filters models.ScanFilters) (*models.ScanResult, error) {
	if err := filters.Validate(); err != nil {
		return nil, fmt.Errorf("Scan: invalid filters: %w", err)
	}

	tracer := otel.Tracer("Scanner")
	ctx, span := tracer.Start(ctx, "Scan")
	defer span.End()

	start := s.now()
	scanID := uuid.New().String()

	log.Infof("Scan %s: starting", scanID)

	symbols := s.universe.Resolve(filters)
	log.Infof("Scan %s: scanning %d symbols", scanID, len(symbols))

	candidates, quotes := s.fetchAndConstruct(ctx, symbols, filters)
	log.Infof("Scan %s: constructed %d spread candidates", scanID, len(candidates))

	if len(candidates) == 0 {
		return &models.ScanResult{
			ScanID:                   scanID,
			ScanTime:                 start.UTC(),
			FiltersUsed:              filters,
			TotalCandidatesEvaluated: 0,
			Results:                  []models.RankedSpread{},
			ScanDuration:             s.now().Sub(start),
		}, nil
	}

	uniqueSymbols := uniqueUnderlyings(candidates)

	fundamentalsMap := s.fetchFundamentals(ctx, uniqueSymbols)
	sentimentMap := s.fetchSentiment(ctx, uniqueSymbols)

	ivRanks := s.fetchIVRanks(ctx, uniqueSymbols, candidates)
	for i := range candidates {
		rank, ok := ivRanks[candidates[i].Underlying]
		if !ok {
			rank = 50.0
		}

		candidates[i].IVRank = rank
	}

	features := make([]models.FeatureVector, len(candidates))
	for i, cand := range candidates {
		fund := fundamentalsMap[cand.Underlying]
		sent := sentimentMap[cand.Underlying]
		quote := quotes[cand.Underlying]

		features[i] = ml.BuildFeatureVector(cand, fund, sent, ml.FeatureContext{
			SpotPrice:    quote.Price,
			Price52wHigh: quote.FiftyTwoWeekHigh,
			Price52wLow:  quote.FiftyTwoWeekLow,
		})
	}

	predictions := s.ranker.PredictBatch(candidates, features)

	var ranked []models.RankedSpread
	for i, cand := range candidates {
		if predictions[i].SpreadQualityScore < filters.MinModelQualityScore {
			continue
		}

		if cand.ProbabilityOfProfit < filters.MinProbabilityOfProfit {
			continue
		}

		fund := fundamentalsMap[cand.Underlying]
		if fund.ScoreOrNeutral() < filters.MinFundamentalScore {
			continue
		}

		sent := sentimentMap[cand.Underlying]
		if sent.SentimentScore < filters.MinSentimentScore {
			continue
		}

		ranked = append(ranked, models.RankedSpread{
			Spread:       cand,
			Fundamentals: fund,
			Sentiment:    sent,
			Prediction:   predictions[i],
			RiskScore:    ScoreRisk(cand, fund, sent),
		})
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Prediction.SpreadQualityScore > ranked[j].Prediction.SpreadQualityScore
	})

	if len(ranked) > filters.MaxResults {
		ranked = ranked[:filters.MaxResults]
	}

	for i := range ranked {
		ranked[i].Rank = i + 1
	}

	if ranked == nil {
		ranked = []models.RankedSpread{}
	}

	elapsed := s.now().Sub(start)
	log.Infof("Scan %s: complete, %d candidates -> %d passed filters in %v", scanID, len(candidates), len(ranked), elapsed)

	return &models.ScanResult{
		ScanID:                   scanID,
		ScanTime:                 start.UTC(),
		FiltersUsed:              filters,
		TotalCandidatesEvaluated: len(candidates),
		Results:                  ranked,
		ScanDuration:             elapsed,
	}, nil
}

type symbolSpreads struct {
	symbol  models.StockSymbol
	quote   models.StockQuote
	spreads []models.SpreadCandidate
}

// fetchAndConstruct fetches chains, filters legs and constructs spread
// candidates for every symbol, bounded by the market data concurrency cap.
// Failures are logged and contribute nothing.
func (s *Scanner) fetchAndConstruct(ctx context.Context, symbols []models.StockSymbol, filters models.ScanFilters) ([]models.SpreadCandidate, map[models.StockSymbol]models.StockQuote) {
	tracer := otel.Tracer("Scanner")
	ctx, span := tracer.Start(ctx, "fetchAndConstruct")
	defer span.End()

	sem := make(chan struct{}, s.cfg.MarketDataConcurrency)

	// Collected by index so candidate order tracks universe order, keeping
	// scans deterministic for identical provider responses.
	results := make([]symbolSpreads, len(symbols))

	var wg sync.WaitGroup
	for i, symbol := range symbols {
		wg.Add(1)

		go func(i int, symbol models.StockSymbol) {
			defer wg.Done()

			sem <- struct{}{}
			defer func() { <-sem }()

			quote, spreads, err := s.processSymbol(ctx, symbol, filters)
			if err != nil {
				log.Warnf("fetchAndConstruct: failed to process %s: %v", symbol, err)
				return
			}

			results[i] = symbolSpreads{symbol: symbol, quote: quote, spreads: spreads}
		}(i, symbol)
	}

	wg.Wait()

	var candidates []models.SpreadCandidate
	quotes := make(map[models.StockSymbol]models.StockQuote)

	for _, result := range results {
		if result.symbol == "" {
			continue
		}

		quotes[result.symbol] = result.quote
		candidates = append(candidates, result.spreads...)
	}

	return candidates, quotes
}

func (s *Scanner) processSymbol(ctx context.Context, symbol models.StockSymbol, filters models.ScanFilters) (models.StockQuote, []models.SpreadCandidate, error) {
	quote, err := s.marketData.Quote(ctx, symbol)
	if err != nil {
		return models.StockQuote{}, nil, fmt.Errorf("processSymbol: failed to fetch quote for %s: %w", symbol, err)
	}

	if quote.Price <= 0 {
		return quote, nil, nil
	}

	expirations, err := s.marketData.Expirations(ctx, symbol)
	if err != nil {
		return quote, nil, fmt.Errorf("processSymbol: failed to fetch expirations for %s: %w", symbol, err)
	}

	now := s.now()
	validExpirations := s.filterExpirations(expirations, filters, now)

	var spreads []models.SpreadCandidate
	for _, expiration := range validExpirations {
		calls, puts, err := s.marketData.Chain(ctx, symbol, expiration, quote.Price)
		if err != nil {
			log.Warnf("processSymbol: chain error %s %s: %v", symbol, expiration, err)
			continue
		}

		for _, strategy := range filters.Strategies {
			legs := FilterForStrategy(calls, puts, filters, strategy, now)
			if len(legs) == 0 {
				continue
			}

			var built []models.SpreadCandidate
			switch strategy {
			case models.BullCall, models.LeapCall, models.LeapsSpreadCall:
				built = BuildAllSpreads(legs, nil, []models.SpreadType{strategy}, quote.Price, now)
			case models.BearPut, models.LeapPut:
				built = BuildAllSpreads(nil, legs, []models.SpreadType{strategy}, quote.Price, now)
			}

			spreads = append(spreads, ApplySpreadFilters(built, filters)...)
		}
	}

	return quote, spreads, nil
}

// filterExpirations keeps expirations whose DTE falls in a band any selected
// strategy can use, capped at the configured per-symbol maximum. Unparseable
// dates are skipped.
func (s *Scanner) filterExpirations(expirations []string, filters models.ScanFilters, now time.Time) []string {
	hasVertical := filters.HasVerticalStrategies()
	hasLeaps := filters.HasLeapsStrategies()

	var valid []string
	for _, expiration := range expirations {
		exp, err := time.Parse(expirationDateLayout, expiration)
		if err != nil {
			log.Debugf("filterExpirations: skipping unparseable expiration %q: %v", expiration, err)
			continue
		}

		dte := int(exp.Sub(now).Hours() / 24)

		if hasVertical && dte >= filters.MinDTE && dte <= filters.MaxDTE {
			valid = append(valid, expiration)
		} else if hasLeaps && dte >= filters.LeapsMinDTE && dte <= filters.LeapsMaxDTE {
			valid = append(valid, expiration)
		}
	}

	if len(valid) > s.cfg.MaxExpirationsPerSymbol {
		valid = valid[:s.cfg.MaxExpirationsPerSymbol]
	}

	return valid
}

// fetchFundamentals fetches and scores fundamentals for every unique symbol,
// bounded by the fundamentals concurrency cap and backed by the cache. A
// failing symbol gets an empty record.
func (s *Scanner) fetchFundamentals(ctx context.Context, symbols []models.StockSymbol) map[models.StockSymbol]models.FundamentalsRecord {
	tracer := otel.Tracer("Scanner")
	ctx, span := tracer.Start(ctx, "fetchFundamentals")
	defer span.End()

	ttl := time.Duration(s.cfg.CacheTTLFundamentalsSeconds) * time.Second

	type result struct {
		symbol models.StockSymbol
		record models.FundamentalsRecord
	}

	sem := make(chan struct{}, s.cfg.FundamentalsConcurrency)
	resultCh := make(chan result, len(symbols))

	var wg sync.WaitGroup
	for _, symbol := range symbols {
		wg.Add(1)

		go func(symbol models.StockSymbol) {
			defer wg.Done()

			sem <- struct{}{}
			defer func() { <-sem }()

			cacheKey := fmt.Sprintf("fundamentals:%s", symbol)

			var cached models.FundamentalsRecord
			if hit, err := cache.GetJSON(ctx, s.cache, cacheKey, &cached); err != nil {
				log.Warnf("fetchFundamentals: cache read error for %s: %v", symbol, err)
			} else if hit {
				resultCh <- result{symbol: symbol, record: cached}
				return
			}

			record, err := s.fundamentals.Fundamentals(ctx, symbol)
			if err != nil {
				log.Warnf("fetchFundamentals: error for %s: %v", symbol, err)
				resultCh <- result{symbol: symbol, record: models.FundamentalsRecord{Symbol: symbol}}
				return
			}

			record = ScoreFundamentals(record)

			if err := cache.SetJSON(ctx, s.cache, cacheKey, record, ttl); err != nil {
				log.Warnf("fetchFundamentals: cache write error for %s: %v", symbol, err)
			}

			resultCh <- result{symbol: symbol, record: record}
		}(symbol)
	}

	wg.Wait()
	close(resultCh)

	output := make(map[models.StockSymbol]models.FundamentalsRecord, len(symbols))
	for r := range resultCh {
		output[r.symbol] = r.record
	}

	for _, symbol := range symbols {
		if _, ok := output[symbol]; !ok {
			output[symbol] = models.FundamentalsRecord{Symbol: symbol}
		}
	}

	return output
}

// fetchSentiment fetches news and classifies sentiment for every unique
// symbol. The classifier serializes inference internally; the fan-out here
// only parallelizes the news fetches.
func (s *Scanner) fetchSentiment(ctx context.Context, symbols []models.StockSymbol) map[models.StockSymbol]models.TickerSentiment {
	tracer := otel.Tracer("Scanner")
	ctx, span := tracer.Start(ctx, "fetchSentiment")
	defer span.End()

	ttl := time.Duration(s.cfg.CacheTTLSentimentSeconds) * time.Second

	type result struct {
		symbol    models.StockSymbol
		sentiment models.TickerSentiment
	}

	sem := make(chan struct{}, s.cfg.MarketDataConcurrency)
	resultCh := make(chan result, len(symbols))

	var wg sync.WaitGroup
	for _, symbol := range symbols {
		wg.Add(1)

		go func(symbol models.StockSymbol) {
			defer wg.Done()

			sem <- struct{}{}
			defer func() { <-sem }()

			resultCh <- result{symbol: symbol, sentiment: s.sentimentForSymbol(ctx, symbol, ttl)}
		}(symbol)
	}

	wg.Wait()
	close(resultCh)

	output := make(map[models.StockSymbol]models.TickerSentiment, len(symbols))
	for r := range resultCh {
		output[r.symbol] = r.sentiment
	}

	return output
}

func (s *Scanner) sentimentForSymbol(ctx context.Context, symbol models.StockSymbol, ttl time.Duration) models.TickerSentiment {
	if s.news == nil || s.classifier == nil {
		return models.NewNeutralTickerSentiment(symbol, nil)
	}

	cacheKey := fmt.Sprintf("sentiment:%s", symbol)

	var cached models.TickerSentiment
	if hit, err := cache.GetJSON(ctx, s.cache, cacheKey, &cached); err != nil {
		log.Warnf("sentimentForSymbol: cache read error for %s: %v", symbol, err)
	} else if hit {
		return cached
	}

	articles, err := s.news.News(ctx, symbol)
	if err != nil {
		log.Warnf("sentimentForSymbol: news error for %s: %v", symbol, err)
		return models.NewNeutralTickerSentiment(symbol, nil)
	}

	var texts []string
	var withText []models.NewsArticle
	var headlines []string

	for _, article := range articles {
		if article.Title == "" {
			continue
		}

		headlines = append(headlines, article.Title)

		text := strings.TrimSpace(article.Title + " " + article.Description)
		texts = append(texts, text)
		withText = append(withText, article)
	}

	if len(texts) == 0 {
		neutral := models.NewNeutralTickerSentiment(symbol, headlines)
		if err := cache.SetJSON(ctx, s.cache, cacheKey, neutral, ttl); err != nil {
			log.Warnf("sentimentForSymbol: cache write error for %s: %v", symbol, err)
		}

		return neutral
	}

	results, err := s.classifier.Classify(ctx, texts)
	if err != nil {
		log.Warnf("sentimentForSymbol: classifier error for %s: %v", symbol, err)
		return models.NewNeutralTickerSentiment(symbol, headlines)
	}

	aggregated := AggregateSentiment(symbol, results, withText, headlines)

	if err := cache.SetJSON(ctx, s.cache, cacheKey, aggregated, ttl); err != nil {
		log.Warnf("sentimentForSymbol: cache write error for %s: %v", symbol, err)
	}

	return aggregated
}

// fetchIVRanks resolves the IV rank per unique symbol, using the mean long
// leg IV of the symbol's candidates as the current IV estimate. Failures
// leave the symbol absent; callers default it to 50.
func (s *Scanner) fetchIVRanks(ctx context.Context, symbols []models.StockSymbol, candidates []models.SpreadCandidate) map[models.StockSymbol]float64 {
	tracer := otel.Tracer("Scanner")
	ctx, span := tracer.Start(ctx, "fetchIVRanks")
	defer span.End()

	ttl := time.Duration(s.cfg.CacheTTLIVRankSeconds) * time.Second

	ivBySymbol := make(map[models.StockSymbol][]float64)
	for _, cand := range candidates {
		ivBySymbol[cand.Underlying] = append(ivBySymbol[cand.Underlying], cand.LongLeg.ImpliedVolatility)
	}

	type result struct {
		symbol models.StockSymbol
		rank   float64
		ok     bool
	}

	sem := make(chan struct{}, s.cfg.MarketDataConcurrency)
	resultCh := make(chan result, len(symbols))

	var wg sync.WaitGroup
	for _, symbol := range symbols {
		wg.Add(1)

		go func(symbol models.StockSymbol) {
			defer wg.Done()

			sem <- struct{}{}
			defer func() { <-sem }()

			cacheKey := fmt.Sprintf("iv_rank:%s", symbol)

			var cached float64
			if hit, err := cache.GetJSON(ctx, s.cache, cacheKey, &cached); err != nil {
				log.Warnf("fetchIVRanks: cache read error for %s: %v", symbol, err)
			} else if hit {
				resultCh <- result{symbol: symbol, rank: cached, ok: true}
				return
			}

			var currentIV float64
			if ivs := ivBySymbol[symbol]; len(ivs) > 0 {
				var sum float64
				for _, iv := range ivs {
					sum += iv
				}

				currentIV = sum / float64(len(ivs))
			}

			rank, err := s.marketData.IVRank(ctx, symbol, currentIV)
			if err != nil {
				log.Warnf("fetchIVRanks: error for %s: %v", symbol, err)
				resultCh <- result{symbol: symbol}
				return
			}

			if err := cache.SetJSON(ctx, s.cache, cacheKey, rank, ttl); err != nil {
				log.Warnf("fetchIVRanks: cache write error for %s: %v", symbol, err)
			}

			resultCh <- result{symbol: symbol, rank: rank, ok: true}
		}(symbol)
	}

	wg.Wait()
	close(resultCh)

	output := make(map[models.StockSymbol]float64, len(symbols))
	for r := range resultCh {
		if r.ok {
			output[r.symbol] = r.rank
		}
	}

	return output
}

// uniqueUnderlyings returns the distinct underlyings across candidates in
// first-seen order.
func uniqueUnderlyings(candidates []models.SpreadCandidate) []models.StockSymbol {
	seen := make(map[models.StockSymbol]struct{})

	var symbols []models.StockSymbol
	for _, cand := range candidates {
		if _, ok := seen[cand.Underlying]; ok {
			continue
		}

		seen[cand.Underlying] = struct{}{}
		symbols = append(symbols, cand.Underlying)
	}

	return symbols
}
