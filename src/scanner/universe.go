package scanner

import (
	"fmt"
	"os"

	"github.com/gocarina/gocsv"
	log "github.com/sirupsen/logrus"

	"github.com/jiaming2012/spread-scanner/src/models"
)

// DefaultUniverse is the curated default scan universe: high options
// liquidity across diverse sectors, plus the major index ETFs.
var DefaultUniverse = []models.StockSymbol{
	// Mega-cap tech / growth
	"AAPL", "MSFT", "NVDA", "GOOGL", "META", "AMZN", "TSLA", "AMD",
	// Financials
	"JPM", "BAC", "GS", "MS", "V", "MA",
	// Healthcare / biotech
	"UNH", "JNJ", "ABBV", "LLY", "PFE",
	// Energy
	"XOM", "CVX", "OXY",
	// Consumer / retail
	"COST", "WMT", "HD", "NKE", "SBUX",
	// Industrials / defense
	"CAT", "DE", "LMT", "RTX",
	// ETFs
	"SPY", "QQQ", "IWM", "XLF", "XLE", "XLV",
	// Semiconductors
	"INTC", "QCOM", "MU", "AVGO",
	// Other high-volume options names
	"DIS", "NFLX", "CRM", "BABA", "BA",
}

type universeCsvRowDTO struct {
	Symbol string `csv:"symbol"`
}

// UniverseResolver determines which symbols a scan covers. Explicit symbols
// on the filters win; otherwise the CSV override or the built-in default
// universe is used.
type UniverseResolver struct {
	csvPath string
}

func NewUniverseResolver(csvPath string) *UniverseResolver {
	return &UniverseResolver{csvPath: csvPath}
}

func (u *UniverseResolver) Resolve(filters models.ScanFilters) []models.StockSymbol {
	if len(filters.Symbols) > 0 {
		var symbols []models.StockSymbol
		for _, s := range filters.Symbols {
			symbol := models.NewStockSymbol(s)
			if symbol == "" {
				continue
			}

			symbols = append(symbols, symbol)
		}

		return symbols
	}

	if u.csvPath != "" {
		symbols, err := loadUniverseCsv(u.csvPath)
		if err != nil {
			log.Warnf("UniverseResolver: falling back to default universe: %v", err)
		} else if len(symbols) > 0 {
			return symbols
		}
	}

	out := make([]models.StockSymbol, len(DefaultUniverse))
	copy(out, DefaultUniverse)

	return out
}

func loadUniverseCsv(path string) ([]models.StockSymbol, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("loadUniverseCsv: failed to open %s: %w", path, err)
	}

	defer f.Close()

	var rows []*universeCsvRowDTO
	if err := gocsv.UnmarshalFile(f, &rows); err != nil {
		return nil, fmt.Errorf("loadUniverseCsv: failed to parse %s: %w", path, err)
	}

	var symbols []models.StockSymbol
	for _, row := range rows {
		symbol := models.NewStockSymbol(row.Symbol)
		if symbol == "" {
			continue
		}

		symbols = append(symbols, symbol)
	}

	return symbols, nil
}
