package scanner

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jiaming2012/spread-scanner/src/models"
)

func TestFilterLegs(t *testing.T) {
	now := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	filters := models.DefaultScanFilters()

	base := func() models.OptionQuote {
		return callLeg(100, 4.00, 4.30, 0.30, 0.55, now.AddDate(0, 2, 0))
	}

	t.Run("passes a liquid leg in the dte band", func(t *testing.T) {
		legs := FilterLegs([]models.OptionQuote{base()}, filters, models.BullCall, now)
		assert.Len(t, legs, 1)
	})

	t.Run("rejects dte outside the vertical band", func(t *testing.T) {
		tooNear := base()
		tooNear.Expiration = now.AddDate(0, 0, 10)

		tooFar := base()
		tooFar.Expiration = now.AddDate(0, 6, 0)

		legs := FilterLegs([]models.OptionQuote{tooNear, tooFar}, filters, models.BullCall, now)
		assert.Empty(t, legs)
	})

	t.Run("leaps strategies use the leaps dte band", func(t *testing.T) {
		leg := base()
		leg.Expiration = now.AddDate(1, 2, 0)

		assert.Empty(t, FilterLegs([]models.OptionQuote{leg}, filters, models.BullCall, now))
		assert.Len(t, FilterLegs([]models.OptionQuote{leg}, filters, models.LeapCall, now), 1)
	})

	t.Run("rejects thin volume and open interest", func(t *testing.T) {
		thinVolume := base()
		thinVolume.Volume = filters.MinVolume - 1

		thinOI := base()
		thinOI.OpenInterest = filters.MinOpenInterest - 1

		legs := FilterLegs([]models.OptionQuote{thinVolume, thinOI}, filters, models.BullCall, now)
		assert.Empty(t, legs)
	})

	t.Run("rejects zero bid or ask", func(t *testing.T) {
		noBid := base()
		noBid.Bid = 0

		noAsk := base()
		noAsk.Ask = 0

		legs := FilterLegs([]models.OptionQuote{noBid, noAsk}, filters, models.BullCall, now)
		assert.Empty(t, legs)
	})

	t.Run("rejects wide bid-ask spreads", func(t *testing.T) {
		wide := base()
		wide.Bid = 1.00
		wide.Ask = 3.00

		legs := FilterLegs([]models.OptionQuote{wide}, filters, models.BullCall, now)
		assert.Empty(t, legs)
	})
}

func TestFilterForStrategy(t *testing.T) {
	now := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	filters := models.DefaultScanFilters()
	expiry := now.AddDate(0, 2, 0)

	calls := []models.OptionQuote{callLeg(100, 4.00, 4.30, 0.30, 0.55, expiry)}
	puts := []models.OptionQuote{putLeg(100, 4.00, 4.30, 0.30, -0.45, expiry)}

	t.Run("call strategies see calls only", func(t *testing.T) {
		legs := FilterForStrategy(calls, puts, filters, models.BullCall, now)
		require.Len(t, legs, 1)
		assert.Equal(t, models.Call, legs[0].OptionType)
	})

	t.Run("put strategies see puts only", func(t *testing.T) {
		legs := FilterForStrategy(calls, puts, filters, models.BearPut, now)
		require.Len(t, legs, 1)
		assert.Equal(t, models.Put, legs[0].OptionType)
	})
}
