package services

import (
	"math"

	"github.com/montanaflynn/stats"
)

const (
	hvWindowDays      = 30
	tradingDaysPerYr  = 252
	defaultIVRank     = 50.0
	ivRankFloorSpread = 0.01
)

// RollingHistoricalVolatility computes a series of annualized 30-day
// realized volatilities from daily closes, oldest first. Returns nil when
// there are too few closes for a single window.
func RollingHistoricalVolatility(closes []float64) []float64 {
	if len(closes) < hvWindowDays+1 {
		return nil
	}

	logReturns := make([]float64, 0, len(closes)-1)
	for i := 1; i < len(closes); i++ {
		if closes[i-1] <= 0 || closes[i] <= 0 {
			logReturns = append(logReturns, 0)
			continue
		}

		logReturns = append(logReturns, math.Log(closes[i]/closes[i-1]))
	}

	var series []float64
	for i := hvWindowDays; i <= len(logReturns); i++ {
		window := logReturns[i-hvWindowDays : i]

		sd, err := stats.StandardDeviationSample(stats.Float64Data(window))
		if err != nil {
			continue
		}

		series = append(series, sd*math.Sqrt(tradingDaysPerYr))
	}

	return series
}

// IVRankFromHistory ranks the current implied volatility against the
// trailing realized-volatility range, on a 0-100 scale. Falls back to a
// neutral 50 when there is not enough history to form a range.
func IVRankFromHistory(currentIV float64, hvSeries []float64) float64 {
	if len(hvSeries) == 0 || currentIV <= 0 {
		return defaultIVRank
	}

	high, low := hvSeries[0], hvSeries[0]
	for _, hv := range hvSeries[1:] {
		if hv > high {
			high = hv
		}
		if hv < low {
			low = hv
		}
	}

	// Widen the range so the current reading never sits exactly on an edge
	// of a degenerate band.
	if currentIV+ivRankFloorSpread > high {
		high = currentIV + ivRankFloorSpread
	}
	if currentIV-ivRankFloorSpread < low {
		low = currentIV - ivRankFloorSpread
	}

	if high <= low {
		return defaultIVRank
	}

	rank := (currentIV - low) / (high - low) * 100
	if rank < 0 {
		rank = 0
	}
	if rank > 100 {
		rank = 100
	}

	return rank
}
