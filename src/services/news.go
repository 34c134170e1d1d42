package services

import (
	"context"
	"encoding/xml"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/jiaming2012/spread-scanner/src/models"
)

const (
	maxArticlesPerSource = 20
	newsDedupPrefixLen   = 80
)

// NewsSource is one upstream feed of articles for a ticker.
type NewsSource interface {
	FetchNews(ctx context.Context, symbol models.StockSymbol) ([]models.NewsArticle, error)
	Name() string
}

// NewsAggregator merges articles from all sources, deduplicated by title
// prefix and capped at maxArticles. A failing source is logged and skipped
// so one dead feed never empties a symbol's news.
type NewsAggregator struct {
	sources     []NewsSource
	maxArticles int
}

func NewNewsAggregator(maxArticles int, sources ...NewsSource) *NewsAggregator {
	if maxArticles <= 0 {
		maxArticles = 25
	}

	return &NewsAggregator{
		sources:     sources,
		maxArticles: maxArticles,
	}
}

func (a *NewsAggregator) News(ctx context.Context, symbol models.StockSymbol) ([]models.NewsArticle, error) {
	var all []models.NewsArticle
	for _, source := range a.sources {
		articles, err := source.FetchNews(ctx, symbol)
		if err != nil {
			log.Debugf("NewsAggregator: News: %s fetch failed for %s: %v", source.Name(), symbol, err)
			continue
		}

		all = append(all, articles...)
	}

	seen := make(map[string]struct{})
	unique := make([]models.NewsArticle, 0, len(all))
	for _, article := range all {
		if article.Title == "" {
			continue
		}

		key := strings.ToLower(article.Title)
		if len(key) > newsDedupPrefixLen {
			key = key[:newsDedupPrefixLen]
		}

		if _, ok := seen[key]; ok {
			continue
		}

		seen[key] = struct{}{}
		unique = append(unique, article)
	}

	if len(unique) > a.maxArticles {
		unique = unique[:a.maxArticles]
	}

	return unique, nil
}

// YahooNewsClient reads the public Yahoo Finance headline RSS feed.
type YahooNewsClient struct {
	baseURL string
	client  http.Client
}

func NewYahooNewsClient() *YahooNewsClient {
	return &YahooNewsClient{
		baseURL: "https://feeds.finance.yahoo.com/rss/2.0/headline",
		client: http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

func (c *YahooNewsClient) Name() string {
	return "yahoo-rss"
}

type yahooRSSItemDTO struct {
	Title       string `xml:"title"`
	Description string `xml:"description"`
	Link        string `xml:"link"`
	PubDate     string `xml:"pubDate"`
}

type yahooRSSFeedDTO struct {
	Channel struct {
		Items []yahooRSSItemDTO `xml:"item"`
	} `xml:"channel"`
}

func (c *YahooNewsClient) FetchNews(ctx context.Context, symbol models.StockSymbol) ([]models.NewsArticle, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL, nil)
	if err != nil {
		return nil, fmt.Errorf("YahooNewsClient: FetchNews: failed to create request: %w", err)
	}

	query := url.Values{}
	query.Add("s", symbol.String())
	query.Add("region", "US")
	query.Add("lang", "en-US")
	req.URL.RawQuery = query.Encode()

	res, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("YahooNewsClient: FetchNews: failed to fetch feed: %w", err)
	}

	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("YahooNewsClient: FetchNews: failed to fetch feed: %s", res.Status)
	}

	body, err := io.ReadAll(res.Body)
	if err != nil {
		return nil, fmt.Errorf("YahooNewsClient: FetchNews: failed to read response body: %w", err)
	}

	var feed yahooRSSFeedDTO
	if err := xml.Unmarshal(body, &feed); err != nil {
		return nil, fmt.Errorf("YahooNewsClient: FetchNews: failed to decode feed: %w", err)
	}

	now := time.Now().UTC()

	items := feed.Channel.Items
	if len(items) > maxArticlesPerSource {
		items = items[:maxArticlesPerSource]
	}

	articles := make([]models.NewsArticle, 0, len(items))
	for _, item := range items {
		if item.Title == "" {
			continue
		}

		articles = append(articles, models.NewsArticle{
			Title:       item.Title,
			Description: item.Description,
			URL:         item.Link,
			PublishedAt: item.PubDate,
			Source:      "Yahoo Finance",
			FetchedAt:   now,
		})
	}

	return articles, nil
}
