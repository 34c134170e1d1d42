// Package services implements the external collaborators the scanner
// consumes: market data, fundamentals, news and sentiment classification.
package services

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/jiaming2012/spread-scanner/src/models"
	"github.com/jiaming2012/spread-scanner/src/pricing"
)

// TradierClient fetches quotes, expirations and option chains from the
// Tradier market data API.
type TradierClient struct {
	baseURL     string
	bearerToken string
	client      http.Client
}

func NewTradierClient(baseURL, bearerToken string) *TradierClient {
	return &TradierClient{
		baseURL:     baseURL,
		bearerToken: bearerToken,
		client: http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

type tradierQuoteDTO struct {
	Symbol     string  `json:"symbol"`
	Last       float64 `json:"last"`
	Week52High float64 `json:"week_52_high"`
	Week52Low  float64 `json:"week_52_low"`
	PrevClose  float64 `json:"prevclose"`
}

type tradierQuotesResponseDTO struct {
	Quotes struct {
		Quote json.RawMessage `json:"quote"`
	} `json:"quotes"`
}

type tradierExpirationsResponseDTO struct {
	Expirations struct {
		Date []string `json:"date"`
	} `json:"expirations"`
}

type tradierGreeksDTO struct {
	MidIV float64 `json:"mid_iv"`
}

type tradierOptionDTO struct {
	Symbol         string            `json:"symbol"`
	Strike         float64           `json:"strike"`
	Bid            float64           `json:"bid"`
	Ask            float64           `json:"ask"`
	Last           float64           `json:"last"`
	Volume         int               `json:"volume"`
	OpenInterest   int               `json:"open_interest"`
	OptionType     string            `json:"option_type"`
	ExpirationDate string            `json:"expiration_date"`
	Greeks         *tradierGreeksDTO `json:"greeks"`
}

type tradierChainResponseDTO struct {
	Options struct {
		Option []tradierOptionDTO `json:"option"`
	} `json:"options"`
}

func (c *TradierClient) Quote(ctx context.Context, symbol models.StockSymbol) (models.StockQuote, error) {
	query := url.Values{}
	query.Add("symbols", symbol.String())

	body, err := c.get(ctx, "/v1/markets/quotes", query)
	if err != nil {
		return models.StockQuote{}, fmt.Errorf("TradierClient: Quote: %w", err)
	}

	var dto tradierQuotesResponseDTO
	if err := json.Unmarshal(body, &dto); err != nil {
		return models.StockQuote{}, fmt.Errorf("TradierClient: Quote: failed to decode response: %w", err)
	}

	// Tradier returns an object for a single symbol and an array for many.
	var quote tradierQuoteDTO
	if err := json.Unmarshal(dto.Quotes.Quote, &quote); err != nil {
		var quotes []tradierQuoteDTO
		if err := json.Unmarshal(dto.Quotes.Quote, &quotes); err != nil || len(quotes) == 0 {
			return models.StockQuote{}, fmt.Errorf("TradierClient: Quote: no quote returned for %s", symbol)
		}

		quote = quotes[0]
	}

	return models.StockQuote{
		Symbol:           symbol,
		Price:            quote.Last,
		FiftyTwoWeekHigh: quote.Week52High,
		FiftyTwoWeekLow:  quote.Week52Low,
		PreviousClose:    quote.PrevClose,
	}, nil
}

func (c *TradierClient) Expirations(ctx context.Context, symbol models.StockSymbol) ([]string, error) {
	query := url.Values{}
	query.Add("symbol", symbol.String())

	body, err := c.get(ctx, "/v1/markets/options/expirations", query)
	if err != nil {
		return nil, fmt.Errorf("TradierClient: Expirations: %w", err)
	}

	var dto tradierExpirationsResponseDTO
	if err := json.Unmarshal(body, &dto); err != nil {
		return nil, fmt.Errorf("TradierClient: Expirations: failed to decode response: %w", err)
	}

	return dto.Expirations.Date, nil
}

// Chain fetches the option chain for one expiration and normalizes it into
// OptionQuote lists with greeks computed from the provider's mid IV.
// Malformed rows are skipped, not fatal.
func (c *TradierClient) Chain(ctx context.Context, symbol models.StockSymbol, expiration string, spot float64) ([]models.OptionQuote, []models.OptionQuote, error) {
	query := url.Values{}
	query.Add("symbol", symbol.String())
	query.Add("expiration", expiration)
	query.Add("greeks", "true")

	body, err := c.get(ctx, "/v1/markets/options/chains", query)
	if err != nil {
		return nil, nil, fmt.Errorf("TradierClient: Chain: %w", err)
	}

	var dto tradierChainResponseDTO
	if err := json.Unmarshal(body, &dto); err != nil {
		return nil, nil, fmt.Errorf("TradierClient: Chain: failed to decode response: %w", err)
	}

	exp, err := time.Parse("2006-01-02", expiration)
	if err != nil {
		return nil, nil, fmt.Errorf("TradierClient: Chain: invalid expiration %q: %w", expiration, err)
	}

	dte := int(time.Until(exp).Hours() / 24)
	yearsToExpiry := maxFloat(float64(dte)/365.0, 1.0/365.0)

	var calls, puts []models.OptionQuote
	for _, row := range dto.Options.Option {
		quote, ok := normalizeTradierOption(row, symbol, exp, spot, yearsToExpiry)
		if !ok {
			continue
		}

		switch quote.OptionType {
		case models.Call:
			calls = append(calls, quote)
		case models.Put:
			puts = append(puts, quote)
		}
	}

	return calls, puts, nil
}

func normalizeTradierOption(row tradierOptionDTO, underlying models.StockSymbol, expiration time.Time, spot, yearsToExpiry float64) (models.OptionQuote, bool) {
	optionType := models.OptionType(row.OptionType)
	if err := optionType.Validate(); err != nil {
		log.Warnf("normalizeTradierOption: skipping row %s: %v", row.Symbol, err)
		return models.OptionQuote{}, false
	}

	if row.Strike <= 0 {
		log.Warnf("normalizeTradierOption: skipping row %s: non-positive strike %v", row.Symbol, row.Strike)
		return models.OptionQuote{}, false
	}

	var iv float64
	if row.Greeks != nil {
		iv = row.Greeks.MidIV
	}

	greeks := pricing.ComputeGreeks(spot, row.Strike, yearsToExpiry, pricing.RiskFreeRate, iv, optionType)

	mid := (row.Bid + row.Ask) / 2
	last := row.Last
	if last == 0 {
		last = mid
	}

	return models.OptionQuote{
		Symbol:            models.OptionSymbol(row.Symbol),
		Underlying:        underlying,
		Expiration:        expiration,
		Strike:            row.Strike,
		OptionType:        optionType,
		Bid:               row.Bid,
		Ask:               row.Ask,
		Mid:               mid,
		Last:              last,
		Volume:            row.Volume,
		OpenInterest:      row.OpenInterest,
		ImpliedVolatility: iv,
		Delta:             greeks.Delta,
		Gamma:             greeks.Gamma,
		Theta:             greeks.Theta,
		Vega:              greeks.Vega,
		Rho:               greeks.Rho,
	}, true
}

func (c *TradierClient) get(ctx context.Context, endpoint string, query url.Values) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.URL.RawQuery = query.Encode()
	req.Header.Add("Accept", "application/json")
	req.Header.Add("Authorization", fmt.Sprintf("Bearer %s", c.bearerToken))

	res, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch %s: %w", endpoint, err)
	}

	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("failed to fetch %s: %s", endpoint, res.Status)
	}

	body, err := io.ReadAll(res.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	return body, nil
}

func maxFloat(a, b float64) float64 {
	if a > b {
		return a
	}

	return b
}
