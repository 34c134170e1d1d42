package services

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSentimentAPIClientClassify(t *testing.T) {
	ctx := context.Background()

	t.Run("empty input skips the request", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			t.Fatal("unexpected request")
		}))

		defer server.Close()

		results, err := NewSentimentAPIClient(server.URL).Classify(ctx, nil)
		require.NoError(t, err)
		assert.Empty(t, results)
	})

	t.Run("scores texts and truncates long ones", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			require.Equal(t, "/classify", r.URL.Path)
			require.Equal(t, http.MethodPost, r.Method)

			var req sentimentRequestDTO
			require.NoError(t, json.NewDecoder(r.Body).Decode(&req))

			resp := sentimentResponseDTO{}
			for range req.Texts {
				resp.Results = append(resp.Results, sentimentResultDTO{
					Positive: 0.7,
					Negative: 0.1,
					Neutral:  0.2,
					Label:    "positive",
				})
			}

			require.NoError(t, json.NewEncoder(w).Encode(resp))
		}))

		defer server.Close()

		long := strings.Repeat("a", sentimentMaxTextLen+50)

		results, err := NewSentimentAPIClient(server.URL).Classify(ctx, []string{"Earnings beat", long})
		require.NoError(t, err)
		require.Len(t, results, 2)
		assert.Equal(t, "Earnings beat", results[0].Text)
		assert.Equal(t, "positive", results[0].Label)
		assert.Equal(t, 0.7, results[0].Positive)
		assert.Len(t, results[1].Text, sentimentMaxTextLen)
	})

	t.Run("splits requests into batches", func(t *testing.T) {
		var batchSizes []int
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			var req sentimentRequestDTO
			require.NoError(t, json.NewDecoder(r.Body).Decode(&req))

			batchSizes = append(batchSizes, len(req.Texts))

			resp := sentimentResponseDTO{}
			for range req.Texts {
				resp.Results = append(resp.Results, sentimentResultDTO{Neutral: 1, Label: "neutral"})
			}

			require.NoError(t, json.NewEncoder(w).Encode(resp))
		}))

		defer server.Close()

		texts := make([]string, sentimentBatchSize+3)
		for i := range texts {
			texts[i] = fmt.Sprintf("headline %d", i)
		}

		results, err := NewSentimentAPIClient(server.URL).Classify(ctx, texts)
		require.NoError(t, err)
		assert.Len(t, results, len(texts))
		assert.Equal(t, []int{sentimentBatchSize, 3}, batchSizes)
	})

	t.Run("a failed batch degrades to neutral", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
		}))

		defer server.Close()

		results, err := NewSentimentAPIClient(server.URL).Classify(ctx, []string{"one", "two"})
		require.NoError(t, err)
		require.Len(t, results, 2)
		for _, r := range results {
			assert.Equal(t, "neutral", r.Label)
			assert.Equal(t, 0.34, r.Neutral)
		}
	})

	t.Run("result count mismatch is an error for the batch", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			resp := sentimentResponseDTO{Results: []sentimentResultDTO{{Label: "positive"}}}
			require.NoError(t, json.NewEncoder(w).Encode(resp))
		}))

		defer server.Close()

		results, err := NewSentimentAPIClient(server.URL).Classify(ctx, []string{"one", "two"})
		require.NoError(t, err)
		require.Len(t, results, 2)
		assert.Equal(t, "neutral", results[0].Label)
	})
}
