package models

// RiskScore is the composite 0-100 risk quality score with its weighted
// components. Higher = better risk-adjusted setup for a debit strategy.
type RiskScore struct {
	CompositeScore       float64            `json:"composite_score"`
	IVRankComponent      float64            `json:"iv_rank_component"`
	BidAskComponent      float64            `json:"bid_ask_component"`
	FundamentalComponent float64            `json:"fundamental_component"`
	SentimentComponent   float64            `json:"sentiment_component"`
	LiquidityComponent   float64            `json:"liquidity_component"`
	Breakdown            map[string]float64 `json:"breakdown"`
}
