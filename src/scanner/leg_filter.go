package scanner

import (
	"time"

	"github.com/jiaming2012/spread-scanner/src/models"
)

// FilterLegs eliminates illiquid or unsuitable single-leg quotes before
// spread construction. LEAPS strategies use the LEAPS DTE band, vertical
// strategies the standard band. Pure function; order-preserving.
func FilterLegs(quotes []models.OptionQuote, filters models.ScanFilters, strategy models.SpreadType, now time.Time) []models.OptionQuote {
	minDTE := filters.MinDTE
	maxDTE := filters.MaxDTE
	if strategy.IsLeaps() {
		minDTE = filters.LeapsMinDTE
		maxDTE = filters.LeapsMaxDTE
	}

	var result []models.OptionQuote
	for _, quote := range quotes {
		dte := quote.DTE(now)
		if dte < minDTE || dte > maxDTE {
			continue
		}

		if quote.Volume < filters.MinVolume {
			continue
		}

		if quote.OpenInterest < filters.MinOpenInterest {
			continue
		}

		if quote.Bid <= 0 || quote.Ask <= 0 {
			continue
		}

		if quote.SpreadPct() > filters.MaxBidAskSpreadPct {
			continue
		}

		result = append(result, quote)
	}

	return result
}

// FilterForStrategy routes calls vs puts to FilterLegs for the given
// strategy.
func FilterForStrategy(calls, puts []models.OptionQuote, filters models.ScanFilters, strategy models.SpreadType, now time.Time) []models.OptionQuote {
	switch strategy {
	case models.BullCall, models.LeapCall, models.LeapsSpreadCall:
		return FilterLegs(calls, filters, strategy, now)
	case models.BearPut, models.LeapPut:
		return FilterLegs(puts, filters, strategy, now)
	}

	return nil
}
