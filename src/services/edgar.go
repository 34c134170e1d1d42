package services

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/jiaming2012/spread-scanner/src/models"
)

const (
	edgarSearchURL   = "https://efts.sec.gov/LATEST/search-index"
	edgarDaysBack    = 14
	edgarHitsPerForm = 5
	edgarUserAgent   = "spread-scanner research contact@example.com"
)

var edgarFormTypes = []string{"8-K", "10-Q"}

// EdgarClient pulls recent SEC filings through the EDGAR full-text search
// API and surfaces them as news articles. Filings are a supplementary
// sentiment signal alongside headline feeds.
type EdgarClient struct {
	searchURL string
	client    http.Client
}

func NewEdgarClient() *EdgarClient {
	return &EdgarClient{
		searchURL: edgarSearchURL,
		client: http.Client{
			Timeout: 15 * time.Second,
		},
	}
}

func (c *EdgarClient) Name() string {
	return "sec-edgar"
}

type edgarHitSourceDTO struct {
	EntityName string `json:"entity_name"`
	FormType   string `json:"form_type"`
	FileDate   string `json:"file_date"`
}

type edgarSearchResponseDTO struct {
	Hits struct {
		Hits []struct {
			Source edgarHitSourceDTO `json:"_source"`
		} `json:"hits"`
	} `json:"hits"`
}

// FetchNews returns recent 8-K and 10-Q filings as articles. Each form type
// fails independently.
func (c *EdgarClient) FetchNews(ctx context.Context, symbol models.StockSymbol) ([]models.NewsArticle, error) {
	startDate := time.Now().AddDate(0, 0, -edgarDaysBack).Format("2006-01-02")
	now := time.Now().UTC()

	var articles []models.NewsArticle
	var lastErr error
	for _, formType := range edgarFormTypes {
		hits, err := c.search(ctx, symbol, formType, startDate)
		if err != nil {
			lastErr = err
			continue
		}

		for _, hit := range hits {
			entity := hit.EntityName
			if entity == "" {
				entity = symbol.String()
			}

			form := hit.FormType
			if form == "" {
				form = formType
			}

			browseURL := fmt.Sprintf(
				"https://www.sec.gov/cgi-bin/browse-edgar?action=getcompany&company=%s&type=%s&dateb=&owner=include&count=10",
				url.QueryEscape(symbol.String()), url.QueryEscape(formType),
			)

			articles = append(articles, models.NewsArticle{
				Title:       fmt.Sprintf("%s filed %s (%s)", entity, form, hit.FileDate),
				Description: fmt.Sprintf("SEC %s filing by %s", form, entity),
				URL:         browseURL,
				PublishedAt: hit.FileDate,
				Source:      "SEC EDGAR",
				FetchedAt:   now,
			})
		}
	}

	if len(articles) == 0 && lastErr != nil {
		return nil, fmt.Errorf("EdgarClient: FetchNews: %w", lastErr)
	}

	return articles, nil
}

func (c *EdgarClient) search(ctx context.Context, symbol models.StockSymbol, formType, startDate string) ([]edgarHitSourceDTO, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.searchURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	query := url.Values{}
	query.Add("q", fmt.Sprintf("%q", symbol.String()))
	query.Add("dateRange", "custom")
	query.Add("startdt", startDate)
	query.Add("forms", formType)
	req.URL.RawQuery = query.Encode()
	req.Header.Add("Accept", "application/json")
	req.Header.Add("User-Agent", edgarUserAgent)

	res, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch %s filings: %w", formType, err)
	}

	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("failed to fetch %s filings: %s", formType, res.Status)
	}

	body, err := io.ReadAll(res.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	var dto edgarSearchResponseDTO
	if err := json.Unmarshal(body, &dto); err != nil {
		return nil, fmt.Errorf("failed to decode %s response: %w", formType, err)
	}

	hits := dto.Hits.Hits
	if len(hits) > edgarHitsPerForm {
		hits = hits[:edgarHitsPerForm]
	}

	sources := make([]edgarHitSourceDTO, 0, len(hits))
	for _, hit := range hits {
		sources = append(sources, hit.Source)
	}

	return sources, nil
}
