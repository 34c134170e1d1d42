package ml

import (
	"math/rand"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/jiaming2012/spread-scanner/src/models"
)

func testCandidate() models.SpreadCandidate {
	return models.SpreadCandidate{
		Underlying:          "AAPL",
		SpreadType:          models.BullCall,
		NetDebit:            2.5,
		MaxProfit:           2.5,
		MaxLoss:             2.5,
		ProbabilityOfProfit: 0.55,
		BidAskQualityScore:  0.8,
		SpreadWidth:         5,
		DTE:                 60,
	}
}

func TestPlaceholderRanker(t *testing.T) {
	t.Run("scores stay in the placeholder band", func(t *testing.T) {
		ranker := NewPlaceholderRanker(rand.New(rand.NewSource(7)))

		candidates := make([]models.SpreadCandidate, 50)
		for i := range candidates {
			candidates[i] = testCandidate()
		}

		predictions := ranker.PredictBatch(candidates, nil)
		require.Len(t, predictions, 50)

		for _, p := range predictions {
			assert.GreaterOrEqual(t, p.SpreadQualityScore, 20.0)
			assert.LessOrEqual(t, p.SpreadQualityScore, 80.0)
			assert.Equal(t, 0.30, p.Confidence)
			assert.True(t, p.IsPlaceholder)
		}
	})

	t.Run("fixed seed is reproducible", func(t *testing.T) {
		candidates := []models.SpreadCandidate{testCandidate(), testCandidate(), testCandidate()}

		first := NewPlaceholderRanker(rand.New(rand.NewSource(42))).PredictBatch(candidates, nil)
		second := NewPlaceholderRanker(rand.New(rand.NewSource(42))).PredictBatch(candidates, nil)

		assert.Equal(t, first, second)
	})

	t.Run("expected return is max profit over net debit", func(t *testing.T) {
		ranker := NewPlaceholderRanker(nil)

		predictions := ranker.PredictBatch([]models.SpreadCandidate{testCandidate()}, nil)
		require.Len(t, predictions, 1)
		assert.Equal(t, 100.0, predictions[0].ExpectedReturnPct)
	})

	t.Run("uniform feature importances", func(t *testing.T) {
		importances := NewPlaceholderRanker(nil).FeatureImportances()

		require.Len(t, importances, len(models.FeatureNames))

		var sum float64
		for _, v := range importances {
			sum += v
		}

		assert.InDelta(t, 1.0, sum, 1e-9)
	})
}

func writeWeights(t *testing.T, mw ModelWeights) string {
	t.Helper()

	data, err := yaml.Marshal(mw)
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "weights.yaml")
	require.NoError(t, os.WriteFile(path, data, 0644))

	return path
}

func fullWeights(value float64) map[string]float64 {
	weights := make(map[string]float64, len(models.FeatureNames))
	for _, name := range models.FeatureNames {
		weights[name] = value
	}

	return weights
}

func TestLoadRanker(t *testing.T) {
	t.Run("empty path loads placeholder", func(t *testing.T) {
		ranker, err := LoadRanker("", nil)
		require.NoError(t, err)
		assert.True(t, ranker.IsPlaceholder())
	})

	t.Run("missing file loads placeholder", func(t *testing.T) {
		ranker, err := LoadRanker(filepath.Join(t.TempDir(), "missing.yaml"), nil)
		require.NoError(t, err)
		assert.True(t, ranker.IsPlaceholder())
	})

	t.Run("malformed artifact is an error", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "weights.yaml")
		require.NoError(t, os.WriteFile(path, []byte("bias: [not a number"), 0644))

		_, err := LoadRanker(path, nil)
		assert.Error(t, err)
	})

	t.Run("missing feature weight is an error", func(t *testing.T) {
		weights := fullWeights(0.1)
		delete(weights, models.FeatureNames[0])

		_, err := LoadRanker(writeWeights(t, ModelWeights{Bias: 10, Weights: weights}), nil)
		require.Error(t, err)
		assert.Contains(t, err.Error(), models.FeatureNames[0])
	})

	t.Run("trained mode scores deterministically", func(t *testing.T) {
		path := writeWeights(t, ModelWeights{
			Bias:        50,
			Weights:     fullWeights(0),
			Importances: map[string]float64{"iv_rank": 1.0},
		})

		ranker, err := LoadRanker(path, nil)
		require.NoError(t, err)
		assert.False(t, ranker.IsPlaceholder())

		cand := testCandidate()
		fv := BuildFeatureVector(cand, models.FundamentalsRecord{}, models.TickerSentiment{}, FeatureContext{SpotPrice: 100})

		predictions := ranker.PredictBatch([]models.SpreadCandidate{cand}, []models.FeatureVector{fv})
		require.Len(t, predictions, 1)

		// All-zero weights leave only the bias.
		assert.Equal(t, 50.0, predictions[0].SpreadQualityScore)
		assert.Equal(t, 0.50, predictions[0].Confidence)
		assert.False(t, predictions[0].IsPlaceholder)
	})

	t.Run("trained score clamps to the 0-100 range", func(t *testing.T) {
		path := writeWeights(t, ModelWeights{Bias: 10000, Weights: fullWeights(0)})

		ranker, err := LoadRanker(path, nil)
		require.NoError(t, err)

		predictions := ranker.PredictBatch([]models.SpreadCandidate{testCandidate()}, []models.FeatureVector{{}})
		assert.Equal(t, 100.0, predictions[0].SpreadQualityScore)
	})
}

func TestBuildFeatureVector(t *testing.T) {
	t.Run("schema order matches feature names", func(t *testing.T) {
		var fv models.FeatureVector
		assert.Len(t, fv.ToSlice(), len(models.FeatureNames))
	})

	t.Run("missing fundamentals use documented defaults", func(t *testing.T) {
		fv := BuildFeatureVector(testCandidate(), models.FundamentalsRecord{}, models.TickerSentiment{}, FeatureContext{SpotPrice: 100})

		assert.Equal(t, 25.0, fv.PERatio)
		assert.Equal(t, 0.5, fv.DebtToEquity)
		assert.Equal(t, 0.30, fv.GrossMargin)
		assert.Equal(t, 50.0, fv.FundamentalScore)
		assert.Equal(t, 0.5, fv.SectorRelativeStrength)
	})

	t.Run("extreme pe ratios are capped", func(t *testing.T) {
		fund := models.FundamentalsRecord{PERatio: models.Float64Ptr(400)}

		fv := BuildFeatureVector(testCandidate(), fund, models.TickerSentiment{}, FeatureContext{SpotPrice: 100})
		assert.Equal(t, 100.0, fv.PERatio)
	})

	t.Run("single leg leaps report full net debit fraction", func(t *testing.T) {
		cand := testCandidate()
		cand.SpreadType = models.LeapCall
		cand.ShortLeg = nil
		cand.SpreadWidth = 0

		fv := BuildFeatureVector(cand, models.FundamentalsRecord{}, models.TickerSentiment{}, FeatureContext{SpotPrice: 100})
		assert.Equal(t, 1.0, fv.NetDebitPctOfSpread)
	})

	t.Run("risk reward ratio from profit and loss", func(t *testing.T) {
		cand := testCandidate()
		cand.MaxProfit = 5.0
		cand.MaxLoss = 2.5

		fv := BuildFeatureVector(cand, models.FundamentalsRecord{}, models.TickerSentiment{}, FeatureContext{SpotPrice: 100})
		assert.Equal(t, 2.0, fv.MaxRiskRewardRatio)
	})
}
