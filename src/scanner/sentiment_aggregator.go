package scanner

import (
	"time"

	"github.com/jiaming2012/spread-scanner/src/models"
)

// AggregateSentiment reduces per-article sentiment distributions to one
// ticker-level summary:
//
//   - means of each channel across articles
//   - compound = mean positive - mean negative (-1..1)
//   - score normalized to 0-100 via ((compound + 1) / 2) * 100
//   - dominant label = argmax over the three means
//
// An empty result list yields the fixed neutral record.
func AggregateSentiment(symbol models.StockSymbol, results []models.SentimentResult, articles []models.NewsArticle, headlines []string) models.TickerSentiment {
	if len(results) == 0 {
		return models.NewNeutralTickerSentiment(symbol, headlines)
	}

	n := float64(len(results))

	var sumPos, sumNeg, sumNeu float64
	for _, r := range results {
		sumPos += r.Positive
		sumNeg += r.Negative
		sumNeu += r.Neutral
	}

	avgPos := sumPos / n
	avgNeg := sumNeg / n
	avgNeu := sumNeu / n
	avgCompound := avgPos - avgNeg

	dominant := "positive"
	best := avgPos
	if avgNeg > best {
		dominant = "negative"
		best = avgNeg
	}
	if avgNeu > best {
		dominant = "neutral"
	}

	articleSentiments := make([]models.ArticleSentiment, 0, len(results))
	for i, r := range results {
		as := models.ArticleSentiment{
			Positive: round4(r.Positive),
			Negative: round4(r.Negative),
			Neutral:  round4(r.Neutral),
			Label:    r.Label,
		}

		if i < len(articles) {
			as.Headline = articles[i].Title
			as.URL = articles[i].URL
			as.PublishedAt = articles[i].PublishedAt
			as.Source = articles[i].Source
		} else {
			as.Headline = truncate(r.Text, 100)
		}

		articleSentiments = append(articleSentiments, as)
	}

	if len(headlines) > 5 {
		headlines = headlines[:5]
	}

	if headlines == nil {
		headlines = []string{}
	}

	return models.TickerSentiment{
		Symbol:            symbol,
		ArticlesAnalyzed:  len(results),
		AvgPositive:       round4(avgPos),
		AvgNegative:       round4(avgNeg),
		AvgNeutral:        round4(avgNeu),
		AvgCompound:       round4(avgCompound),
		SentimentLabel:    dominant,
		SentimentScore:    round2(((avgCompound + 1) / 2) * 100),
		TopHeadlines:      headlines,
		AnalyzedAt:        time.Now().UTC(),
		ArticleSentiments: articleSentiments,
	}
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}

	return s[:n]
}
