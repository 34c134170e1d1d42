package models

// FundamentalsRecord holds per-symbol fundamentals. Metric pointers are nil
// when the provider did not return the metric; the scorer substitutes a
// neutral 50 for missing inputs.
type FundamentalsRecord struct {
	Symbol            StockSymbol `json:"symbol"`
	CompanyName       string      `json:"company_name"`
	Sector            string      `json:"sector"`
	Industry          string      `json:"industry"`
	MarketCap         float64     `json:"market_cap"`
	PERatio           *float64    `json:"pe_ratio,omitempty"`
	ForwardPE         *float64    `json:"forward_pe,omitempty"`
	PriceToBook       *float64    `json:"price_to_book,omitempty"`
	RevenueGrowthYoY  *float64    `json:"revenue_growth_yoy,omitempty"`  // decimal, 0.12 = 12%
	EarningsGrowthYoY *float64    `json:"earnings_growth_yoy,omitempty"` // decimal
	DebtToEquity      *float64    `json:"debt_to_equity,omitempty"`
	CurrentRatio      *float64    `json:"current_ratio,omitempty"`
	GrossMargin       *float64    `json:"gross_margin,omitempty"`     // decimal
	OperatingMargin   *float64    `json:"operating_margin,omitempty"` // decimal
	NetMargin         *float64    `json:"net_margin,omitempty"`
	ReturnOnEquity    *float64    `json:"return_on_equity,omitempty"`
	ReturnOnAssets    *float64    `json:"return_on_assets,omitempty"`
	FreeCashFlowYield *float64    `json:"free_cash_flow_yield,omitempty"`
	FundamentalScore  *float64    `json:"fundamental_score,omitempty"` // 0-100, nil until scored
}

// ScoreOrNeutral returns the computed fundamental score, or 50 when unscored.
func (f FundamentalsRecord) ScoreOrNeutral() float64 {
	if f.FundamentalScore == nil {
		return 50.0
	}

	return *f.FundamentalScore
}

func Float64Ptr(v float64) *float64 {
	return &v
}
