package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestScanFiltersValidate(t *testing.T) {
	t.Run("defaults are valid", func(t *testing.T) {
		assert.NoError(t, DefaultScanFilters().Validate())
	})

	t.Run("rejections", func(t *testing.T) {
		cases := []struct {
			name   string
			mutate func(*ScanFilters)
		}{
			{"no strategies", func(f *ScanFilters) { f.Strategies = nil }},
			{"unknown strategy", func(f *ScanFilters) { f.Strategies = []SpreadType{"iron_condor"} }},
			{"too many symbols", func(f *ScanFilters) {
				f.Symbols = make([]string, MaxScanSymbols+1)
			}},
			{"inverted dte band", func(f *ScanFilters) { f.MinDTE = 90; f.MaxDTE = 30 }},
			{"zero min dte", func(f *ScanFilters) { f.MinDTE = 0 }},
			{"leaps dte beyond cap", func(f *ScanFilters) { f.LeapsMaxDTE = 3000 }},
			{"iv rank above 100", func(f *ScanFilters) { f.MaxIVRank = 150 }},
			{"inverted iv rank band", func(f *ScanFilters) { f.MinIVRank = 80; f.MaxIVRank = 20 }},
			{"negative volume floor", func(f *ScanFilters) { f.MinVolume = -1 }},
			{"spread pct above 1", func(f *ScanFilters) { f.MaxBidAskSpreadPct = 1.5 }},
			{"fundamental score above 100", func(f *ScanFilters) { f.MinFundamentalScore = 101 }},
			{"pop above 1", func(f *ScanFilters) { f.MinProbabilityOfProfit = 1.2 }},
			{"zero max results", func(f *ScanFilters) { f.MaxResults = 0 }},
			{"max results beyond cap", func(f *ScanFilters) { f.MaxResults = 500 }},
			{"non-positive target width", func(f *ScanFilters) { f.TargetSpreadWidths = []float64{5, 0} }},
			{"negative max net debit", func(f *ScanFilters) { f.MaxNetDebit = Float64Ptr(-1) }},
			{"debit pct above 1", func(f *ScanFilters) { f.MaxDebitPctOfSpread = 1.5 }},
			{"inverted delta band", func(f *ScanFilters) { f.MinLongDelta = 0.9; f.MaxLongDelta = 0.3 }},
			{"delta above 1", func(f *ScanFilters) { f.MaxLongDelta = 1.5 }},
		}

		for _, tc := range cases {
			t.Run(tc.name, func(t *testing.T) {
				filters := DefaultScanFilters()
				tc.mutate(&filters)

				assert.Error(t, filters.Validate())
			})
		}
	})

	t.Run("strategy classification", func(t *testing.T) {
		f := DefaultScanFilters()
		f.Strategies = []SpreadType{BullCall}
		assert.True(t, f.HasVerticalStrategies())
		assert.False(t, f.HasLeapsStrategies())

		f.Strategies = []SpreadType{LeapCall, LeapsSpreadCall}
		assert.False(t, f.HasVerticalStrategies())
		assert.True(t, f.HasLeapsStrategies())
	})
}

func TestSpreadTypeValidate(t *testing.T) {
	valid := []SpreadType{BullCall, BearPut, LeapCall, LeapPut, LeapsSpreadCall}
	for _, s := range valid {
		assert.NoError(t, s.Validate(), string(s))
	}

	assert.Error(t, SpreadType("straddle").Validate())

	assert.True(t, LeapCall.IsSingleLeg())
	assert.True(t, LeapPut.IsSingleLeg())
	assert.False(t, BullCall.IsSingleLeg())

	assert.True(t, BullCall.IsVertical())
	assert.True(t, LeapsSpreadCall.IsVertical())
	assert.False(t, LeapCall.IsVertical())
}

func TestNewStockSymbol(t *testing.T) {
	assert.Equal(t, StockSymbol("AAPL"), NewStockSymbol(" aapl "))
	assert.Equal(t, StockSymbol(""), NewStockSymbol("   "))
}
