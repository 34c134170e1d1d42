package scanner

import (
	"math"
	"sort"
	"time"

	"github.com/jiaming2012/spread-scanner/src/models"
	"github.com/jiaming2012/spread-scanner/src/pricing"
)

const (
	// MaxOTMPct bounds how far out of the money the long leg may sit.
	MaxOTMPct = 0.20

	// MaxSpreadWidthStrikes caps how many strikes apart the short leg may be.
	MaxSpreadWidthStrikes = 5

	// LeapsMinDTE and LeapsDeltaThreshold select deep ITM stock-replacement
	// positions for single-leg LEAPS.
	LeapsMinDTE         = 365
	LeapsDeltaThreshold = 0.65

	// LeapsCallMaxProfit is the sentinel for the unbounded upside of a long
	// call.
	LeapsCallMaxProfit = 9999.0

	// LeapsSingleLegPoP is a fixed neutral placeholder: a single-leg payoff
	// has no two-sided breakeven under the lognormal PoP model, so no value
	// is derived for it.
	LeapsSingleLegPoP = 0.5
)

// BuildAllSpreads constructs every valid spread candidate from filtered legs
// for the requested strategies.
func BuildAllSpreads(calls, puts []models.OptionQuote, strategies []models.SpreadType, spot float64, now time.Time) []models.SpreadCandidate {
	var spreads []models.SpreadCandidate

	for _, strategy := range strategies {
		switch strategy {
		case models.BullCall:
			spreads = append(spreads, buildVerticalCallSpreads(calls, spot, models.BullCall, now)...)
		case models.LeapsSpreadCall:
			spreads = append(spreads, buildVerticalCallSpreads(calls, spot, models.LeapsSpreadCall, now)...)
		case models.BearPut:
			spreads = append(spreads, buildBearPutSpreads(puts, spot, now)...)
		case models.LeapCall:
			spreads = append(spreads, buildLeaps(calls, models.LeapCall, now)...)
		case models.LeapPut:
			spreads = append(spreads, buildLeaps(puts, models.LeapPut, now)...)
		}
	}

	return spreads
}

// buildVerticalCallSpreads pairs a long lower-strike call with a short
// higher-strike call in the same expiry.
//
// Net debit = long ask - short bid, max profit = width - net debit, max loss
// = net debit, breakeven = long strike + net debit. Credit and
// break-even-or-worse combinations are rejected.
func buildVerticalCallSpreads(calls []models.OptionQuote, spot float64, spreadType models.SpreadType, now time.Time) []models.SpreadCandidate {
	var spreads []models.SpreadCandidate

	byExpiry := groupByExpiry(calls)
	for _, expiry := range sortedExpiries(byExpiry) {
		legs := byExpiry[expiry]
		sorted := make([]models.OptionQuote, len(legs))
		copy(sorted, legs)
		sort.Slice(sorted, func(i, j int) bool { return sorted[i].Strike < sorted[j].Strike })

		dte := int(expiry.Sub(now).Hours() / 24)

		for i, longLeg := range sorted {
			if longLeg.Strike > spot*(1+MaxOTMPct) {
				break
			}

			for j := i + 1; j <= i+MaxSpreadWidthStrikes && j < len(sorted); j++ {
				shortLeg := sorted[j]
				if shortLeg.Bid <= 0 {
					continue
				}

				netDebit := round4(longLeg.Ask - shortLeg.Bid)
				if netDebit <= 0 {
					continue // a credit, not a debit spread
				}

				width := round2(shortLeg.Strike - longLeg.Strike)
				maxProfit := round4(width - netDebit)
				if maxProfit <= 0 {
					continue // cost >= width
				}

				breakeven := round4(longLeg.Strike + netDebit)

				// Long leg IV is the conservative choice for PoP.
				pop := pricing.ComputeProbabilityOfProfit(breakeven, spot, longLeg.ImpliedVolatility, dte)

				shortCopy := shortLeg
				spreads = append(spreads, models.SpreadCandidate{
					Underlying:          longLeg.Underlying,
					SpreadType:          spreadType,
					Expiration:          expiry,
					DTE:                 dte,
					LongLeg:             longLeg,
					ShortLeg:            &shortCopy,
					NetDebit:            netDebit,
					MaxProfit:           maxProfit,
					MaxLoss:             netDebit,
					Breakeven:           breakeven,
					ProbabilityOfProfit: pop,
					BidAskQualityScore:  bidAskQuality(longLeg, shortLeg),
					SpreadWidth:         width,
				})
			}
		}
	}

	return spreads
}

// buildBearPutSpreads pairs a long higher-strike put with a short
// lower-strike put. Breakeven = long strike - net debit, and the PoP is
// inverted since the position profits when the underlying falls.
func buildBearPutSpreads(puts []models.OptionQuote, spot float64, now time.Time) []models.SpreadCandidate {
	var spreads []models.SpreadCandidate

	byExpiry := groupByExpiry(puts)
	for _, expiry := range sortedExpiries(byExpiry) {
		legs := byExpiry[expiry]
		sorted := make([]models.OptionQuote, len(legs))
		copy(sorted, legs)
		sort.Slice(sorted, func(i, j int) bool { return sorted[i].Strike > sorted[j].Strike })

		dte := int(expiry.Sub(now).Hours() / 24)

		for i, longLeg := range sorted {
			if longLeg.Strike < spot*(1-MaxOTMPct) {
				break
			}

			for j := i + 1; j <= i+MaxSpreadWidthStrikes && j < len(sorted); j++ {
				shortLeg := sorted[j]
				if shortLeg.Bid <= 0 {
					continue
				}

				netDebit := round4(longLeg.Ask - shortLeg.Bid)
				if netDebit <= 0 {
					continue
				}

				width := round2(longLeg.Strike - shortLeg.Strike)
				maxProfit := round4(width - netDebit)
				if maxProfit <= 0 {
					continue
				}

				breakeven := round4(longLeg.Strike - netDebit)

				pop := pricing.ComputeProbabilityOfProfit(breakeven, spot, longLeg.ImpliedVolatility, dte)
				pop = round4(math.Max(0.01, math.Min(0.99, 1.0-pop)))

				shortCopy := shortLeg
				spreads = append(spreads, models.SpreadCandidate{
					Underlying:          longLeg.Underlying,
					SpreadType:          models.BearPut,
					Expiration:          expiry,
					DTE:                 dte,
					LongLeg:             longLeg,
					ShortLeg:            &shortCopy,
					NetDebit:            netDebit,
					MaxProfit:           maxProfit,
					MaxLoss:             netDebit,
					Breakeven:           breakeven,
					ProbabilityOfProfit: pop,
					BidAskQualityScore:  bidAskQuality(longLeg, shortLeg),
					SpreadWidth:         width,
				})
			}
		}
	}

	return spreads
}

// buildLeaps selects long deep ITM calls or puts with DTE >= 365 as
// stock-replacement positions. No short leg; max loss is the premium paid.
func buildLeaps(options []models.OptionQuote, spreadType models.SpreadType, now time.Time) []models.SpreadCandidate {
	var spreads []models.SpreadCandidate

	isCall := spreadType == models.LeapCall

	for _, opt := range options {
		dte := opt.DTE(now)
		if dte < LeapsMinDTE {
			continue
		}

		if math.Abs(opt.Delta) < LeapsDeltaThreshold {
			continue
		}

		premium := opt.Ask
		if premium <= 0 {
			continue
		}

		var breakeven, maxProfit float64
		if isCall {
			breakeven = round4(opt.Strike + premium)
			maxProfit = LeapsCallMaxProfit
		} else {
			breakeven = round4(opt.Strike - premium)
			maxProfit = round4(math.Max(opt.Strike-premium, 0))
		}

		spreads = append(spreads, models.SpreadCandidate{
			Underlying:          opt.Underlying,
			SpreadType:          spreadType,
			Expiration:          opt.Expiration,
			DTE:                 dte,
			LongLeg:             opt,
			ShortLeg:            nil,
			NetDebit:            premium,
			MaxProfit:           maxProfit,
			MaxLoss:             premium,
			Breakeven:           breakeven,
			ProbabilityOfProfit: LeapsSingleLegPoP,
			BidAskQualityScore:  round4(legQuality(opt)),
			SpreadWidth:         0,
		})
	}

	return spreads
}

func groupByExpiry(options []models.OptionQuote) map[time.Time][]models.OptionQuote {
	groups := make(map[time.Time][]models.OptionQuote)
	for _, opt := range options {
		groups[opt.Expiration] = append(groups[opt.Expiration], opt)
	}

	return groups
}

// sortedExpiries returns map keys in chronological order so construction is
// deterministic across runs.
func sortedExpiries(groups map[time.Time][]models.OptionQuote) []time.Time {
	expiries := make([]time.Time, 0, len(groups))
	for expiry := range groups {
		expiries = append(expiries, expiry)
	}

	sort.Slice(expiries, func(i, j int) bool { return expiries[i].Before(expiries[j]) })

	return expiries
}

// legQuality maps a leg's bid-ask spread percentage to a 0-1 tightness
// score: 0% spread -> 1.0, 15% or worse -> 0.0.
func legQuality(opt models.OptionQuote) float64 {
	mid := (opt.Bid + opt.Ask) / 2
	if mid <= 0 {
		return 0
	}

	spreadPct := (opt.Ask - opt.Bid) / mid

	return math.Max(0, 1.0-spreadPct/0.15)
}

func bidAskQuality(longLeg, shortLeg models.OptionQuote) float64 {
	return round4((legQuality(longLeg) + legQuality(shortLeg)) / 2)
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

func round4(v float64) float64 {
	return math.Round(v*1e4) / 1e4
}
