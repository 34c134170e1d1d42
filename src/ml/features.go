// Package ml wraps the learned spread-quality ranking model behind a stable
// batch interface, with a placeholder mode for when no trained artifact
// exists yet.
package ml

import (
	"math"

	"github.com/jiaming2012/spread-scanner/src/models"
)

// FeatureContext carries the per-symbol market context used to build
// feature vectors. Zero values fall back to the documented defaults.
type FeatureContext struct {
	SpotPrice    float64
	HV30         float64 // 30-day historical volatility, default 0.30
	IV52wHigh    float64 // default 0.60
	IV52wLow     float64 // default 0.15
	Price52wHigh float64
	Price52wLow  float64
}

func (c FeatureContext) withDefaults() FeatureContext {
	if c.HV30 <= 0 {
		c.HV30 = 0.30
	}
	if c.IV52wHigh <= 0 {
		c.IV52wHigh = 0.60
	}
	if c.IV52wLow <= 0 {
		c.IV52wLow = 0.15
	}

	return c
}

// BuildFeatureVector converts one candidate plus its fundamentals, sentiment
// and market context into the fixed-order model input. Missing inputs are
// replaced with neutral defaults rather than dropped so the schema stays
// stable.
func BuildFeatureVector(spread models.SpreadCandidate, fundamentals models.FundamentalsRecord, sentiment models.TickerSentiment, fctx FeatureContext) models.FeatureVector {
	fctx = fctx.withDefaults()

	long := spread.LongLeg
	spot := fctx.SpotPrice

	iv := long.ImpliedVolatility
	ivRange := math.Max(fctx.IV52wHigh-fctx.IV52wLow, 0.01)
	ivPercentile := math.Max(0, math.Min(100, (iv-fctx.IV52wLow)/ivRange*100))

	midLong := (long.Bid + long.Ask) / 2
	baPctLong := 0.15
	if midLong > 0 {
		baPctLong = (long.Ask - long.Bid) / midLong
	}

	var moneyness float64
	if spot > 0 {
		moneyness = (long.Strike - spot) / spot
	}

	var spreadWidthPct float64
	if spot > 0 {
		spreadWidthPct = spread.SpreadWidth / spot
	}

	var rrRatio float64
	if spread.MaxLoss > 0 {
		rrRatio = spread.MaxProfit / spread.MaxLoss
	}

	netDebitPct := 1.0 // single-leg LEAPS have no width
	if spread.SpreadWidth > 0 {
		netDebitPct = spread.NetDebit / spread.SpreadWidth
	}

	ivVsHV := 1.0
	if fctx.HV30 > 0 {
		ivVsHV = iv / fctx.HV30
	}

	pe := 25.0
	if fundamentals.PERatio != nil {
		pe = math.Min(*fundamentals.PERatio, 100.0) // cap extreme PE
	}

	revGrowth := 0.0
	if fundamentals.RevenueGrowthYoY != nil {
		revGrowth = *fundamentals.RevenueGrowthYoY
	}

	debtEq := 0.5
	if fundamentals.DebtToEquity != nil {
		debtEq = *fundamentals.DebtToEquity
	}

	grossMargin := 0.30
	if fundamentals.GrossMargin != nil {
		grossMargin = *fundamentals.GrossMargin
	}

	var p52h, p52l float64
	if fctx.Price52wHigh > 0 {
		p52h = (spot - fctx.Price52wHigh) / fctx.Price52wHigh
	}
	if fctx.Price52wLow > 0 {
		p52l = (spot - fctx.Price52wLow) / fctx.Price52wLow
	}

	return models.FeatureVector{
		IVRank:          spread.IVRank,
		IVPercentile:    ivPercentile,
		BidAskSpreadPct: baPctLong,
		Delta:           math.Abs(long.Delta),
		Gamma:           long.Gamma,
		ThetaPerDay:     long.Theta,
		DTE:             float64(spread.DTE),
		Moneyness:       moneyness,

		SpreadWidthPct:      spreadWidthPct,
		MaxRiskRewardRatio:  rrRatio,
		NetDebitPctOfSpread: netDebitPct,

		IVVsHVRatio: ivVsHV,
		IVSkew:      0, // requires surface data not available here

		PERatio:          pe,
		RevenueGrowth:    revGrowth,
		DebtToEquity:     debtEq,
		GrossMargin:      grossMargin,
		FundamentalScore: fundamentals.ScoreOrNeutral(),

		SentimentScore:    sentiment.SentimentScore,
		SentimentCompound: sentiment.AvgCompound,

		PriceVs52wHighPct:      p52h,
		PriceVs52wLowPct:       p52l,
		SectorRelativeStrength: 0.5, // no sector data wired yet
	}
}
