package services

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"net/http"
	"net/url"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/jiaming2012/spread-scanner/src/models"
)

// FMPClient fetches company fundamentals from the Financial Modeling Prep
// stable API. Each endpoint fails independently: a record can come back
// partially filled and the scorer treats missing metrics as neutral.
type FMPClient struct {
	baseURL string
	apiKey  string
	client  http.Client
}

func NewFMPClient(baseURL, apiKey string) *FMPClient {
	if baseURL == "" {
		baseURL = "https://financialmodelingprep.com/stable"
	}

	return &FMPClient{
		baseURL: baseURL,
		apiKey:  apiKey,
		client: http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

type fmpProfileDTO struct {
	Symbol      string  `json:"symbol"`
	CompanyName string  `json:"companyName"`
	Sector      string  `json:"sector"`
	Industry    string  `json:"industry"`
	MarketCap   float64 `json:"marketCap"`
}

type fmpKeyMetricsDTO struct {
	EarningsYield          *float64 `json:"earningsYield"`
	CurrentRatio           *float64 `json:"currentRatio"`
	ReturnOnEquity         *float64 `json:"returnOnEquity"`
	ReturnOnAssets         *float64 `json:"returnOnAssets"`
	FreeCashFlowYield      *float64 `json:"freeCashFlowYield"`
	PriceToBookRatio       *float64 `json:"priceToBookRatio"`
	ForwardPriceToEarnings *float64 `json:"forwardPriceToEarningsGrowthRatio"`
}

type fmpIncomeStatementDTO struct {
	Revenue         float64 `json:"revenue"`
	GrossProfit     float64 `json:"grossProfit"`
	OperatingIncome float64 `json:"operatingIncome"`
	NetIncome       float64 `json:"netIncome"`
	EPS             float64 `json:"eps"`
}

type fmpBalanceSheetDTO struct {
	TotalDebt               float64 `json:"totalDebt"`
	TotalStockholdersEquity float64 `json:"totalStockholdersEquity"`
}

// Fundamentals builds a FundamentalsRecord from the profile, key-metrics,
// income-statement and balance-sheet endpoints.
func (c *FMPClient) Fundamentals(ctx context.Context, symbol models.StockSymbol) (models.FundamentalsRecord, error) {
	record := models.FundamentalsRecord{
		Symbol: symbol,
	}

	var profiles []fmpProfileDTO
	if err := c.getList(ctx, "/profile", symbol, nil, &profiles); err != nil {
		return record, fmt.Errorf("FMPClient: Fundamentals: %w", err)
	}

	if len(profiles) > 0 {
		record.CompanyName = profiles[0].CompanyName
		record.Sector = profiles[0].Sector
		record.Industry = profiles[0].Industry
		record.MarketCap = profiles[0].MarketCap
	}

	var metrics []fmpKeyMetricsDTO
	if err := c.getList(ctx, "/key-metrics", symbol, url.Values{"limit": {"1"}}, &metrics); err != nil {
		log.Warnf("FMPClient: Fundamentals: key-metrics unavailable for %s: %v", symbol, err)
	} else if len(metrics) > 0 {
		m := metrics[0]

		if m.EarningsYield != nil && *m.EarningsYield > 0 {
			record.PERatio = models.Float64Ptr(1.0 / *m.EarningsYield)
		}

		record.ForwardPE = m.ForwardPriceToEarnings
		record.PriceToBook = m.PriceToBookRatio
		record.CurrentRatio = m.CurrentRatio
		record.ReturnOnEquity = m.ReturnOnEquity
		record.ReturnOnAssets = m.ReturnOnAssets
		record.FreeCashFlowYield = m.FreeCashFlowYield
	}

	var statements []fmpIncomeStatementDTO
	if err := c.getList(ctx, "/income-statement", symbol, url.Values{"limit": {"2"}}, &statements); err != nil {
		log.Warnf("FMPClient: Fundamentals: income-statement unavailable for %s: %v", symbol, err)
	} else if len(statements) > 0 {
		current := statements[0]

		if current.Revenue > 0 {
			record.GrossMargin = models.Float64Ptr(current.GrossProfit / current.Revenue)
			record.OperatingMargin = models.Float64Ptr(current.OperatingIncome / current.Revenue)
			record.NetMargin = models.Float64Ptr(current.NetIncome / current.Revenue)
		}

		if len(statements) > 1 {
			prior := statements[1]

			if growth, ok := yoyGrowth(current.Revenue, prior.Revenue); ok {
				record.RevenueGrowthYoY = models.Float64Ptr(growth)
			}

			if growth, ok := yoyGrowth(current.EPS, prior.EPS); ok {
				record.EarningsGrowthYoY = models.Float64Ptr(growth)
			}
		}
	}

	var balanceSheets []fmpBalanceSheetDTO
	if err := c.getList(ctx, "/balance-sheet-statement", symbol, url.Values{"limit": {"1"}}, &balanceSheets); err != nil {
		log.Warnf("FMPClient: Fundamentals: balance-sheet unavailable for %s: %v", symbol, err)
	} else if len(balanceSheets) > 0 {
		sheet := balanceSheets[0]
		if sheet.TotalStockholdersEquity != 0 {
			record.DebtToEquity = models.Float64Ptr(sheet.TotalDebt / math.Abs(sheet.TotalStockholdersEquity))
		}
	}

	return record, nil
}

func yoyGrowth(current, prior float64) (float64, bool) {
	if prior == 0 {
		return 0, false
	}

	return (current - prior) / math.Abs(prior), true
}

func (c *FMPClient) getList(ctx context.Context, endpoint string, symbol models.StockSymbol, extra url.Values, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+endpoint, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	query := url.Values{}
	query.Add("symbol", symbol.String())
	query.Add("apikey", c.apiKey)
	for key, values := range extra {
		for _, value := range values {
			query.Add(key, value)
		}
	}

	req.URL.RawQuery = query.Encode()
	req.Header.Add("Accept", "application/json")

	res, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to fetch %s: %w", endpoint, err)
	}

	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		return fmt.Errorf("failed to fetch %s: %s", endpoint, res.Status)
	}

	body, err := io.ReadAll(res.Body)
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}

	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("failed to decode %s response: %w", endpoint, err)
	}

	return nil
}
