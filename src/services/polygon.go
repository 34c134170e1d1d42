package services

import (
	"context"
	"fmt"
	"time"

	polygon "github.com/polygon-io/client-go/rest"
	polygonmodels "github.com/polygon-io/client-go/rest/models"
	log "github.com/sirupsen/logrus"

	"github.com/jiaming2012/spread-scanner/src/models"
)

// PolygonBarsClient fetches daily aggregate bars, used to derive realized
// volatility for IV rank.
type PolygonBarsClient struct {
	Client *polygon.Client
}

func NewPolygonBarsClient(apiKey string) *PolygonBarsClient {
	return &PolygonBarsClient{
		Client: polygon.New(apiKey),
	}
}

// DailyCloses returns adjusted daily closes for the trailing window, oldest
// first.
func (c *PolygonBarsClient) DailyCloses(ctx context.Context, symbol models.StockSymbol, lookbackDays int) ([]float64, error) {
	to := time.Now()
	from := to.AddDate(0, 0, -lookbackDays)

	params := polygonmodels.ListAggsParams{
		Ticker:     symbol.String(),
		Multiplier: 1,
		Timespan:   polygonmodels.Day,
		From:       polygonmodels.Millis(from),
		To:         polygonmodels.Millis(to),
	}.WithOrder(polygonmodels.Asc).WithAdjusted(true)

	iter := c.Client.ListAggs(ctx, params)

	var closes []float64
	for iter.Next() {
		closes = append(closes, iter.Item().Close)
	}

	if err := iter.Err(); err != nil {
		return nil, fmt.Errorf("PolygonBarsClient: DailyCloses: failed to fetch aggs for %s: %w", symbol, err)
	}

	log.Debugf("PolygonBarsClient: DailyCloses: fetched %d daily closes for %s", len(closes), symbol)

	return closes, nil
}
