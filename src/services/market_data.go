package services

import (
	"context"
	"fmt"

	log "github.com/sirupsen/logrus"

	"github.com/jiaming2012/spread-scanner/src/models"
)

// BarsProvider supplies trailing daily closes for realized-volatility math.
type BarsProvider interface {
	DailyCloses(ctx context.Context, symbol models.StockSymbol, lookbackDays int) ([]float64, error)
}

// MarketDataService combines the Tradier options feed with a daily-bars
// provider for IV rank. Either piece can be swapped in tests.
type MarketDataService struct {
	Tradier *TradierClient
	Bars    BarsProvider
}

func NewMarketDataService(tradier *TradierClient, bars BarsProvider) *MarketDataService {
	return &MarketDataService{
		Tradier: tradier,
		Bars:    bars,
	}
}

func (s *MarketDataService) Quote(ctx context.Context, symbol models.StockSymbol) (models.StockQuote, error) {
	return s.Tradier.Quote(ctx, symbol)
}

func (s *MarketDataService) Expirations(ctx context.Context, symbol models.StockSymbol) ([]string, error) {
	return s.Tradier.Expirations(ctx, symbol)
}

func (s *MarketDataService) Chain(ctx context.Context, symbol models.StockSymbol, expiration string, spot float64) ([]models.OptionQuote, []models.OptionQuote, error) {
	return s.Tradier.Chain(ctx, symbol, expiration, spot)
}

// IVRank ranks currentIV against a year of trailing realized volatility.
// A missing bars provider or thin history yields the neutral rank rather
// than an error so one symbol cannot stall a scan.
func (s *MarketDataService) IVRank(ctx context.Context, symbol models.StockSymbol, currentIV float64) (float64, error) {
	if s.Bars == nil {
		return defaultIVRank, nil
	}

	closes, err := s.Bars.DailyCloses(ctx, symbol, 365)
	if err != nil {
		return defaultIVRank, fmt.Errorf("MarketDataService: IVRank: %w", err)
	}

	hvSeries := RollingHistoricalVolatility(closes)
	if len(hvSeries) == 0 {
		log.Debugf("MarketDataService: IVRank: insufficient price history for %s, using neutral rank", symbol)
		return defaultIVRank, nil
	}

	if currentIV <= 0 {
		currentIV = hvSeries[len(hvSeries)-1]
	}

	return IVRankFromHistory(currentIV, hvSeries), nil
}
