package scanner

import (
	"math"

	"github.com/jiaming2012/spread-scanner/src/models"
)

// Fundamental score weights. Growth counts most; valuation, balance sheet
// and profitability split the remainder.
const (
	weightPE     = 0.15
	weightGrowth = 0.25
	weightDebt   = 0.20
	weightMargin = 0.20
	weightROE    = 0.10
	weightFCF    = 0.10
)

// ScoreFundamentals computes the 0-100 composite fundamental score and
// returns the record with FundamentalScore set. Missing metrics score a
// neutral 50.
func ScoreFundamentals(fund models.FundamentalsRecord) models.FundamentalsRecord {
	composite := peScore(fund.PERatio)*weightPE +
		growthScore(fund.RevenueGrowthYoY, fund.EarningsGrowthYoY)*weightGrowth +
		debtScore(fund.DebtToEquity)*weightDebt +
		marginScore(fund.GrossMargin, fund.OperatingMargin)*weightMargin +
		roeScore(fund.ReturnOnEquity)*weightROE +
		fcfScore(fund.FreeCashFlowYield)*weightFCF

	fund.FundamentalScore = models.Float64Ptr(round2(composite))

	return fund
}

// peScore: <=0 (negative earnings) 5, <=15 cheap 100, 15-25 fair 100->80,
// 25-40 growth premium 80->55, beyond that down to 0.
func peScore(pe *float64) float64 {
	if pe == nil {
		return 50.0
	}

	switch v := *pe; {
	case v <= 0:
		return 5.0
	case v <= 15:
		return 100.0
	case v <= 25:
		return 100.0 - (v-15)*2.0
	case v <= 40:
		return 80.0 - (v-25)*1.67
	default:
		return math.Max(0, 55.0-(v-40)*1.75)
	}
}

func growthScore(revGrowth, earnGrowth *float64) float64 {
	single := func(g *float64) float64 {
		if g == nil {
			return 50.0
		}

		switch v := *g; {
		case v >= 0.30:
			return 100.0
		case v >= 0.15:
			return 75.0 + (v-0.15)/0.15*25
		case v >= 0.05:
			return 50.0 + (v-0.05)/0.10*25
		case v >= 0.0:
			return 30.0 + v/0.05*20
		default:
			// -0.20 or worse bottoms out at 0.
			return math.Max(0, 30.0+v*150)
		}
	}

	// Earnings growth counts more than revenue growth.
	return round2(single(revGrowth)*0.4 + single(earnGrowth)*0.6)
}

// debtScore: negative debt/equity means net cash.
func debtScore(deRatio *float64) float64 {
	if deRatio == nil {
		return 50.0
	}

	switch v := *deRatio; {
	case v < 0:
		return 100.0
	case v <= 0.5:
		return 90.0
	case v <= 1.0:
		return 90.0 - (v-0.5)*40
	case v <= 2.0:
		return 70.0 - (v-1.0)*20
	case v <= 3.0:
		return 50.0 - (v-2.0)*25
	default:
		return math.Max(0, 25.0-(v-3.0)*5)
	}
}

func marginScore(gross, operating *float64) float64 {
	grossScore := func(g *float64) float64 {
		if g == nil {
			return 50.0
		}

		switch v := *g; {
		case v >= 0.60:
			return 100.0
		case v >= 0.40:
			return 70.0 + (v-0.40)/0.20*30
		case v >= 0.20:
			return 40.0 + (v-0.20)/0.20*30
		default:
			return math.Max(0, v/0.20*40)
		}
	}

	opScore := func(op *float64) float64 {
		if op == nil {
			return 50.0
		}

		switch v := *op; {
		case v >= 0.25:
			return 100.0
		case v >= 0.10:
			return 60.0 + (v-0.10)/0.15*40
		case v >= 0.0:
			return v / 0.10 * 60
		default:
			return math.Max(0, 30.0+v*100)
		}
	}

	return round2(grossScore(gross)*0.5 + opScore(operating)*0.5)
}

func roeScore(roe *float64) float64 {
	if roe == nil {
		return 50.0
	}

	switch v := *roe; {
	case v >= 0.40:
		return 100.0
	case v >= 0.20:
		return 70.0 + (v-0.20)/0.20*30
	case v >= 0.10:
		return 40.0 + (v-0.10)/0.10*30
	case v >= 0.0:
		return v / 0.10 * 40
	default:
		return math.Max(0, 20.0+v*100)
	}
}

func fcfScore(fcfYield *float64) float64 {
	if fcfYield == nil {
		return 50.0
	}

	switch v := *fcfYield; {
	case v >= 0.08:
		return 100.0
	case v >= 0.04:
		return 60.0 + (v-0.04)/0.04*40
	case v >= 0.0:
		return v / 0.04 * 60
	default:
		return math.Max(0, 20.0+v*200)
	}
}
