package models

import "time"

// OptionQuote is a single option contract snapshot with computed greeks.
// Immutable once built from a provider chain response.
type OptionQuote struct {
	Symbol            OptionSymbol `json:"symbol"`
	Underlying        StockSymbol  `json:"underlying"`
	Expiration        time.Time    `json:"expiration"`
	Strike            float64      `json:"strike"`
	OptionType        OptionType   `json:"option_type"`
	Bid               float64      `json:"bid"`
	Ask               float64      `json:"ask"`
	Mid               float64      `json:"mid"`
	Last              float64      `json:"last"`
	Volume            int          `json:"volume"`
	OpenInterest      int          `json:"open_interest"`
	ImpliedVolatility float64      `json:"implied_volatility"`
	Delta             float64      `json:"delta"`
	Gamma             float64      `json:"gamma"`
	Theta             float64      `json:"theta"` // per calendar day
	Vega              float64      `json:"vega"`  // per 1% IV change
	Rho               float64      `json:"rho"`   // per 1% rate change
}

// DTE returns calendar days from now until expiration.
func (q OptionQuote) DTE(now time.Time) int {
	return int(q.Expiration.Sub(now).Hours() / 24)
}

// SpreadPct returns (ask - bid) / mid, or 0 when the mid is non-positive.
func (q OptionQuote) SpreadPct() float64 {
	mid := (q.Bid + q.Ask) / 2
	if mid <= 0 {
		return 0
	}

	return (q.Ask - q.Bid) / mid
}

type OptionsChain struct {
	Underlying StockSymbol   `json:"underlying"`
	SpotPrice  float64       `json:"spot_price"`
	QuoteTime  time.Time     `json:"quote_time"`
	Calls      []OptionQuote `json:"calls"`
	Puts       []OptionQuote `json:"puts"`
}

// StockQuote is the underlying snapshot used to anchor chain math.
type StockQuote struct {
	Symbol           StockSymbol `json:"symbol"`
	Price            float64     `json:"price"`
	FiftyTwoWeekHigh float64     `json:"fifty_two_week_high"`
	FiftyTwoWeekLow  float64     `json:"fifty_two_week_low"`
	PreviousClose    float64     `json:"previous_close"`
}
