package models

import "time"

// SpreadCandidate is a constructed spread position under evaluation.
// All fields are fixed at construction except IVRank, which is written once
// after the IV rank lookup stage and before risk scoring.
type SpreadCandidate struct {
	Underlying          StockSymbol  `json:"underlying"`
	SpreadType          SpreadType   `json:"spread_type"`
	Expiration          time.Time    `json:"expiration"`
	DTE                 int          `json:"dte"`
	LongLeg             OptionQuote  `json:"long_leg"`
	ShortLeg            *OptionQuote `json:"short_leg,omitempty"` // nil for single-leg LEAPS
	NetDebit            float64      `json:"net_debit"`
	MaxProfit           float64      `json:"max_profit"`
	MaxLoss             float64      `json:"max_loss"`
	Breakeven           float64      `json:"breakeven"`
	ProbabilityOfProfit float64      `json:"probability_of_profit"`
	BidAskQualityScore  float64      `json:"bid_ask_quality_score"` // 0-1, higher = tighter
	IVRank              float64      `json:"iv_rank"`               // 0-100, 0 until resolved
	SpreadWidth         float64      `json:"spread_width"`          // 0 for single-leg LEAPS
}
