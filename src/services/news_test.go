package services

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jiaming2012/spread-scanner/src/models"
)

type stubNewsSource struct {
	name     string
	articles []models.NewsArticle
	err      error
}

func (s *stubNewsSource) Name() string {
	return s.name
}

func (s *stubNewsSource) FetchNews(ctx context.Context, symbol models.StockSymbol) ([]models.NewsArticle, error) {
	return s.articles, s.err
}

func TestNewsAggregator(t *testing.T) {
	ctx := context.Background()

	t.Run("merges sources in order", func(t *testing.T) {
		a := &stubNewsSource{name: "a", articles: []models.NewsArticle{{Title: "First story"}}}
		b := &stubNewsSource{name: "b", articles: []models.NewsArticle{{Title: "Second story"}}}

		articles, err := NewNewsAggregator(25, a, b).News(ctx, "AAPL")
		require.NoError(t, err)
		require.Len(t, articles, 2)
		assert.Equal(t, "First story", articles[0].Title)
		assert.Equal(t, "Second story", articles[1].Title)
	})

	t.Run("deduplicates by title prefix case-insensitively", func(t *testing.T) {
		long := strings.Repeat("x", newsDedupPrefixLen)

		a := &stubNewsSource{name: "a", articles: []models.NewsArticle{
			{Title: "Apple beats estimates"},
			{Title: long + " tail one"},
		}}
		b := &stubNewsSource{name: "b", articles: []models.NewsArticle{
			{Title: "APPLE BEATS ESTIMATES"},
			{Title: long + " tail two"}, // same 80-char prefix
		}}

		articles, err := NewNewsAggregator(25, a, b).News(ctx, "AAPL")
		require.NoError(t, err)
		assert.Len(t, articles, 2)
	})

	t.Run("drops untitled articles", func(t *testing.T) {
		a := &stubNewsSource{name: "a", articles: []models.NewsArticle{
			{Title: ""},
			{Title: "Real story"},
		}}

		articles, err := NewNewsAggregator(25, a).News(ctx, "AAPL")
		require.NoError(t, err)
		assert.Len(t, articles, 1)
	})

	t.Run("a failing source is skipped", func(t *testing.T) {
		broken := &stubNewsSource{name: "broken", err: fmt.Errorf("feed down")}
		healthy := &stubNewsSource{name: "ok", articles: []models.NewsArticle{{Title: "Still here"}}}

		articles, err := NewNewsAggregator(25, broken, healthy).News(ctx, "AAPL")
		require.NoError(t, err)
		assert.Len(t, articles, 1)
	})

	t.Run("caps at max articles", func(t *testing.T) {
		var many []models.NewsArticle
		for i := 0; i < 40; i++ {
			many = append(many, models.NewsArticle{Title: fmt.Sprintf("Story %d", i)})
		}

		articles, err := NewNewsAggregator(25, &stubNewsSource{name: "a", articles: many}).News(ctx, "AAPL")
		require.NoError(t, err)
		assert.Len(t, articles, 25)
	})
}
