package scanner

import (
	"math"

	"github.com/jiaming2012/spread-scanner/src/models"
)

// Risk score weights.
const (
	weightIVRank      = 0.25
	weightBidAsk      = 0.20
	weightFundamental = 0.25
	weightSentiment   = 0.15
	weightLiquidity   = 0.15
)

// ScoreRisk computes the composite 0-100 risk score for one candidate.
//
// The IV rank component is inverted (100 - rank): these are all debit
// strategies, so historically cheap implied volatility is favorable.
func ScoreRisk(spread models.SpreadCandidate, fundamentals models.FundamentalsRecord, sentiment models.TickerSentiment) models.RiskScore {
	components := map[string]float64{
		"iv_rank":     ivRankScore(spread.IVRank),
		"bid_ask":     bidAskScore(spread.BidAskQualityScore),
		"fundamental": fundamentals.ScoreOrNeutral(),
		"sentiment":   sentiment.SentimentScore,
		"liquidity":   liquidityScore(spread.LongLeg),
	}

	composite := components["iv_rank"]*weightIVRank +
		components["bid_ask"]*weightBidAsk +
		components["fundamental"]*weightFundamental +
		components["sentiment"]*weightSentiment +
		components["liquidity"]*weightLiquidity

	return models.RiskScore{
		CompositeScore:       round2(composite),
		IVRankComponent:      round2(components["iv_rank"]),
		BidAskComponent:      round2(components["bid_ask"]),
		FundamentalComponent: round2(components["fundamental"]),
		SentimentComponent:   round2(components["sentiment"]),
		LiquidityComponent:   round2(components["liquidity"]),
		Breakdown:            components,
	}
}

func ivRankScore(ivRank float64) float64 {
	return math.Max(0, 100.0-ivRank)
}

func bidAskScore(baQuality float64) float64 {
	return math.Max(0, math.Min(100, baQuality*100))
}

// liquidityScore rates the long leg: open interest and volume each
// contribute up to 50 points, saturating at 1000 OI and 500 volume.
func liquidityScore(longLeg models.OptionQuote) float64 {
	oiScore := math.Min(50, float64(longLeg.OpenInterest)/1000*50)
	volScore := math.Min(50, float64(longLeg.Volume)/500*50)

	return round2(oiScore + volScore)
}
