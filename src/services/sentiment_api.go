package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/jiaming2012/spread-scanner/src/models"
)

const (
	sentimentBatchSize  = 16
	sentimentMaxTextLen = 200
)

// SentimentAPIClient scores headline batches against an external inference
// service. The model behind the endpoint is not safe for concurrent forward
// passes, so all calls are serialized through one mutex; a failed batch
// degrades to neutral scores instead of failing the symbol.
type SentimentAPIClient struct {
	baseURL string
	client  http.Client
	mu      sync.Mutex
}

func NewSentimentAPIClient(baseURL string) *SentimentAPIClient {
	return &SentimentAPIClient{
		baseURL: baseURL,
		client: http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

type sentimentRequestDTO struct {
	Texts []string `json:"texts"`
}

type sentimentResultDTO struct {
	Positive float64 `json:"positive"`
	Negative float64 `json:"negative"`
	Neutral  float64 `json:"neutral"`
	Label    string  `json:"label"`
}

type sentimentResponseDTO struct {
	Results []sentimentResultDTO `json:"results"`
}

func (c *SentimentAPIClient) Classify(ctx context.Context, texts []string) ([]models.SentimentResult, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	results := make([]models.SentimentResult, 0, len(texts))
	for i := 0; i < len(texts); i += sentimentBatchSize {
		end := i + sentimentBatchSize
		if end > len(texts) {
			end = len(texts)
		}

		batch := texts[i:end]

		scored, err := c.classifyBatch(ctx, batch)
		if err != nil {
			log.Errorf("SentimentAPIClient: Classify: batch failed: %v", err)
			for _, text := range batch {
				results = append(results, neutralSentimentResult(text))
			}

			continue
		}

		results = append(results, scored...)
	}

	return results, nil
}

func (c *SentimentAPIClient) classifyBatch(ctx context.Context, texts []string) ([]models.SentimentResult, error) {
	payload, err := json.Marshal(sentimentRequestDTO{Texts: texts})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/classify", bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Add("Content-Type", "application/json")
	req.Header.Add("Accept", "application/json")

	res, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to post batch: %w", err)
	}

	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("failed to post batch: %s", res.Status)
	}

	body, err := io.ReadAll(res.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	var dto sentimentResponseDTO
	if err := json.Unmarshal(body, &dto); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	if len(dto.Results) != len(texts) {
		return nil, fmt.Errorf("expected %d results, got %d", len(texts), len(dto.Results))
	}

	results := make([]models.SentimentResult, 0, len(texts))
	for i, r := range dto.Results {
		results = append(results, models.SentimentResult{
			Text:     truncateText(texts[i], sentimentMaxTextLen),
			Positive: r.Positive,
			Negative: r.Negative,
			Neutral:  r.Neutral,
			Label:    r.Label,
		})
	}

	return results, nil
}

func neutralSentimentResult(text string) models.SentimentResult {
	return models.SentimentResult{
		Text:     truncateText(text, sentimentMaxTextLen),
		Positive: 0.33,
		Negative: 0.33,
		Neutral:  0.34,
		Label:    "neutral",
	}
}

func truncateText(s string, n int) string {
	if len(s) <= n {
		return s
	}

	return s[:n]
}
