package models

// FeatureVector is the fixed-order input schema for the spread ranking
// model. Field order here is the canonical feature order: FeatureNames and
// ToSlice must stay in sync with the struct so the model always receives
// features in a stable order.
type FeatureVector struct {
	// Options mechanics
	IVRank          float64 `json:"iv_rank"`            // 0-100
	IVPercentile    float64 `json:"iv_percentile"`      // 0-100
	BidAskSpreadPct float64 `json:"bid_ask_spread_pct"` // decimal
	Delta           float64 `json:"delta"`              // absolute value
	Gamma           float64 `json:"gamma"`
	ThetaPerDay     float64 `json:"theta_per_day"`
	DTE             float64 `json:"dte"`
	Moneyness       float64 `json:"moneyness"` // (strike - spot) / spot

	// Spread structure
	SpreadWidthPct      float64 `json:"spread_width_pct"`
	MaxRiskRewardRatio  float64 `json:"max_risk_reward_ratio"`
	NetDebitPctOfSpread float64 `json:"net_debit_pct_of_spread"`

	// Volatility regime
	IVVsHVRatio float64 `json:"iv_vs_hv_ratio"`
	IVSkew      float64 `json:"iv_skew"` // 0 if unavailable

	// Fundamental quality
	PERatio          float64 `json:"pe_ratio"`
	RevenueGrowth    float64 `json:"revenue_growth"`
	DebtToEquity     float64 `json:"debt_to_equity"`
	GrossMargin      float64 `json:"gross_margin"`
	FundamentalScore float64 `json:"fundamental_score"`

	// Sentiment
	SentimentScore    float64 `json:"sentiment_score"`
	SentimentCompound float64 `json:"sentiment_compound"`

	// Technical / price context
	PriceVs52wHighPct      float64 `json:"price_vs_52w_high_pct"`
	PriceVs52wLowPct       float64 `json:"price_vs_52w_low_pct"`
	SectorRelativeStrength float64 `json:"sector_relative_strength"` // 0.5 if unavailable
}

// FeatureNames is the canonical feature order used for model weights and
// importance reporting.
var FeatureNames = []string{
	"iv_rank",
	"iv_percentile",
	"bid_ask_spread_pct",
	"delta",
	"gamma",
	"theta_per_day",
	"dte",
	"moneyness",
	"spread_width_pct",
	"max_risk_reward_ratio",
	"net_debit_pct_of_spread",
	"iv_vs_hv_ratio",
	"iv_skew",
	"pe_ratio",
	"revenue_growth",
	"debt_to_equity",
	"gross_margin",
	"fundamental_score",
	"sentiment_score",
	"sentiment_compound",
	"price_vs_52w_high_pct",
	"price_vs_52w_low_pct",
	"sector_relative_strength",
}

// ToSlice returns the features in canonical order.
func (v FeatureVector) ToSlice() []float64 {
	return []float64{
		v.IVRank,
		v.IVPercentile,
		v.BidAskSpreadPct,
		v.Delta,
		v.Gamma,
		v.ThetaPerDay,
		v.DTE,
		v.Moneyness,
		v.SpreadWidthPct,
		v.MaxRiskRewardRatio,
		v.NetDebitPctOfSpread,
		v.IVVsHVRatio,
		v.IVSkew,
		v.PERatio,
		v.RevenueGrowth,
		v.DebtToEquity,
		v.GrossMargin,
		v.FundamentalScore,
		v.SentimentScore,
		v.SentimentCompound,
		v.PriceVs52wHighPct,
		v.PriceVs52wLowPct,
		v.SectorRelativeStrength,
	}
}

// Prediction is the per-candidate output of the spread ranking model.
type Prediction struct {
	SpreadQualityScore  float64            `json:"spread_quality_score"` // 0-100, primary ranking signal
	ExpectedReturnPct   float64            `json:"expected_return_pct"`
	ProbabilityOfProfit float64            `json:"probability_of_profit"`
	Confidence          float64            `json:"confidence"` // 0-1
	FeatureImportances  map[string]float64 `json:"feature_importances,omitempty"`
	IsPlaceholder       bool               `json:"is_placeholder"`
}
