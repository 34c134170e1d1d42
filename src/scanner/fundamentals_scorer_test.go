package scanner

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jiaming2012/spread-scanner/src/models"
)

func TestScoreFundamentals(t *testing.T) {
	t.Run("all metrics missing scores neutral", func(t *testing.T) {
		scored := ScoreFundamentals(models.FundamentalsRecord{Symbol: "AAPL"})

		require.NotNil(t, scored.FundamentalScore)
		assert.Equal(t, 50.0, *scored.FundamentalScore)
	})

	t.Run("strong profile scores high", func(t *testing.T) {
		scored := ScoreFundamentals(models.FundamentalsRecord{
			Symbol:            "AAPL",
			PERatio:           models.Float64Ptr(14.0),
			RevenueGrowthYoY:  models.Float64Ptr(0.35),
			EarningsGrowthYoY: models.Float64Ptr(0.40),
			DebtToEquity:      models.Float64Ptr(0.3),
			GrossMargin:       models.Float64Ptr(0.65),
			OperatingMargin:   models.Float64Ptr(0.30),
			ReturnOnEquity:    models.Float64Ptr(0.45),
			FreeCashFlowYield: models.Float64Ptr(0.09),
		})

		require.NotNil(t, scored.FundamentalScore)
		assert.Greater(t, *scored.FundamentalScore, 90.0)
	})

	t.Run("weak profile scores low", func(t *testing.T) {
		scored := ScoreFundamentals(models.FundamentalsRecord{
			Symbol:            "XYZ",
			PERatio:           models.Float64Ptr(-5.0),
			RevenueGrowthYoY:  models.Float64Ptr(-0.30),
			EarningsGrowthYoY: models.Float64Ptr(-0.50),
			DebtToEquity:      models.Float64Ptr(4.5),
			GrossMargin:       models.Float64Ptr(0.05),
			OperatingMargin:   models.Float64Ptr(-0.10),
			ReturnOnEquity:    models.Float64Ptr(-0.15),
			FreeCashFlowYield: models.Float64Ptr(-0.05),
		})

		require.NotNil(t, scored.FundamentalScore)
		assert.Less(t, *scored.FundamentalScore, 20.0)
	})

	t.Run("negative debt to equity counts as net cash", func(t *testing.T) {
		netCash := ScoreFundamentals(models.FundamentalsRecord{
			DebtToEquity: models.Float64Ptr(-0.2),
		})
		levered := ScoreFundamentals(models.FundamentalsRecord{
			DebtToEquity: models.Float64Ptr(2.5),
		})

		assert.Greater(t, *netCash.FundamentalScore, *levered.FundamentalScore)
	})

	t.Run("pe band boundaries", func(t *testing.T) {
		assert.Equal(t, 100.0, peScore(models.Float64Ptr(15.0)))
		assert.Equal(t, 80.0, peScore(models.Float64Ptr(25.0)))
		assert.Equal(t, 5.0, peScore(models.Float64Ptr(-1.0)))
		assert.Equal(t, 0.0, peScore(models.Float64Ptr(500.0)))
	})

	t.Run("earnings growth weighs more than revenue growth", func(t *testing.T) {
		earningsHeavy := growthScore(models.Float64Ptr(0.0), models.Float64Ptr(0.40))
		revenueHeavy := growthScore(models.Float64Ptr(0.40), models.Float64Ptr(0.0))

		assert.Greater(t, earningsHeavy, revenueHeavy)
	})
}
