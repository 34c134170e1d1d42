package scanner

import (
	"math"

	"github.com/jiaming2012/spread-scanner/src/models"
)

// targetWidthTolerance is the match tolerance for the target-width set.
const targetWidthTolerance = 0.01

// ApplySpreadFilters applies the per-candidate width, cost and delta
// constraints. Single-leg LEAPS are exempt from width and cost caps; the
// delta band and bid-ask quality floor apply to every candidate.
//
// TargetSpreadWidths has two modes: empty means no width constraint, a
// non-empty set means the candidate width must match one entry within
// tolerance.
func ApplySpreadFilters(spreads []models.SpreadCandidate, filters models.ScanFilters) []models.SpreadCandidate {
	var out []models.SpreadCandidate

	for _, s := range spreads {
		absDelta := math.Abs(s.LongLeg.Delta)
		if absDelta < filters.MinLongDelta || absDelta > filters.MaxLongDelta {
			continue
		}

		if s.BidAskQualityScore < 1-filters.MaxBidAskSpreadPct {
			continue
		}

		if s.ShortLeg == nil {
			out = append(out, s)
			continue
		}

		w := s.SpreadWidth

		if len(filters.TargetSpreadWidths) > 0 && !matchesTargetWidth(w, filters.TargetSpreadWidths) {
			continue
		}

		if filters.MaxSpreadWidth != nil && w > *filters.MaxSpreadWidth {
			continue
		}

		if w > 0 && s.NetDebit/w > filters.MaxDebitPctOfSpread {
			continue
		}

		if filters.MaxNetDebit != nil && s.NetDebit > *filters.MaxNetDebit {
			continue
		}

		out = append(out, s)
	}

	return out
}

func matchesTargetWidth(width float64, targets []float64) bool {
	for _, target := range targets {
		if math.Abs(width-target) < targetWidthTolerance {
			return true
		}
	}

	return false
}
