package ml

import (
	"fmt"
	"math"
	"math/rand"
	"os"
	"sync"

	log "github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"

	"github.com/jiaming2012/spread-scanner/src/models"
)

// ModelWeights is the trained linear scoring artifact. Weights are keyed by
// feature name and resolved against the canonical schema at load time so a
// stale artifact fails loudly instead of silently misaligning features.
type ModelWeights struct {
	Bias        float64            `yaml:"bias"`
	Weights     map[string]float64 `yaml:"weights"`
	Importances map[string]float64 `yaml:"importances"`
}

// SpreadRanker scores candidate batches. It is constructed in exactly one of
// two modes at load time: placeholder (no artifact) or trained (weights
// resolved against the feature schema). The mode never changes after
// construction.
//
// Inference is serialized through a single mutex: the underlying model is a
// single-writer resource that must not be invoked concurrently.
type SpreadRanker struct {
	mu      sync.Mutex
	trained *trainedModel // nil in placeholder mode
	rng     *rand.Rand
}

type trainedModel struct {
	bias        float64
	weights     []float64 // aligned with models.FeatureNames
	importances map[string]float64
}

// NewPlaceholderRanker returns a ranker with no trained artifact. Scores are
// a rough heuristic plus a small jitter; confidence is fixed low and every
// prediction carries IsPlaceholder.
func NewPlaceholderRanker(rng *rand.Rand) *SpreadRanker {
	if rng == nil {
		rng = rand.New(rand.NewSource(1))
	}

	return &SpreadRanker{rng: rng}
}

// LoadRanker loads the trained weights artifact at path. An empty path or a
// missing file yields a placeholder ranker; a present but malformed artifact
// is an error.
func LoadRanker(path string, rng *rand.Rand) (*SpreadRanker, error) {
	if path == "" {
		log.Info("LoadRanker: no model artifact configured, running in placeholder mode")
		return NewPlaceholderRanker(rng), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			log.Infof("LoadRanker: model artifact not found at %s, running in placeholder mode", path)
			return NewPlaceholderRanker(rng), nil
		}

		return nil, fmt.Errorf("LoadRanker: failed to read %s: %w", path, err)
	}

	var mw ModelWeights
	if err := yaml.Unmarshal(data, &mw); err != nil {
		return nil, fmt.Errorf("LoadRanker: failed to unmarshal %s: %w", path, err)
	}

	weights := make([]float64, len(models.FeatureNames))
	for i, name := range models.FeatureNames {
		w, ok := mw.Weights[name]
		if !ok {
			return nil, fmt.Errorf("LoadRanker: artifact %s missing weight for feature %q", path, name)
		}

		weights[i] = w
	}

	log.Infof("LoadRanker: model loaded from %s", path)

	if rng == nil {
		rng = rand.New(rand.NewSource(1))
	}

	return &SpreadRanker{
		trained: &trainedModel{
			bias:        mw.Bias,
			weights:     weights,
			importances: mw.Importances,
		},
		rng: rng,
	}, nil
}

func (r *SpreadRanker) IsPlaceholder() bool {
	return r.trained == nil
}

// PredictBatch scores a batch of candidates. candidates and features must be
// parallel slices; each candidate gets a prediction at the same index. The
// whole batch runs as one serialized inference call.
func (r *SpreadRanker) PredictBatch(candidates []models.SpreadCandidate, features []models.FeatureVector) []models.Prediction {
	r.mu.Lock()
	defer r.mu.Unlock()

	predictions := make([]models.Prediction, len(candidates))

	for i, cand := range candidates {
		if r.trained == nil {
			predictions[i] = r.placeholderPrediction(cand)
			continue
		}

		var fv models.FeatureVector
		if i < len(features) {
			fv = features[i]
		}

		predictions[i] = r.trainedPrediction(cand, fv)
	}

	return predictions
}

// FeatureImportances reports per-feature importance for display. The
// placeholder mode returns a uniform distribution.
func (r *SpreadRanker) FeatureImportances() map[string]float64 {
	if r.trained == nil || len(r.trained.importances) == 0 {
		uniform := make(map[string]float64, len(models.FeatureNames))
		for _, name := range models.FeatureNames {
			uniform[name] = 1.0 / float64(len(models.FeatureNames))
		}

		return uniform
	}

	return r.trained.importances
}

func (r *SpreadRanker) placeholderPrediction(cand models.SpreadCandidate) models.Prediction {
	base := 40.0 + cand.ProbabilityOfProfit*20 + cand.BidAskQualityScore*20
	score := math.Max(20, math.Min(80, base+r.rng.Float64()*10-5))

	return models.Prediction{
		SpreadQualityScore:  round2(score),
		ExpectedReturnPct:   round2(cand.MaxProfit / math.Max(cand.NetDebit, 0.01) * 100),
		ProbabilityOfProfit: cand.ProbabilityOfProfit,
		Confidence:          0.30,
		IsPlaceholder:       true,
	}
}

func (r *SpreadRanker) trainedPrediction(cand models.SpreadCandidate, fv models.FeatureVector) models.Prediction {
	raw := r.trained.bias
	for i, v := range fv.ToSlice() {
		raw += r.trained.weights[i] * v
	}

	score := math.Max(0, math.Min(100, raw))

	return models.Prediction{
		SpreadQualityScore:  round2(score),
		ExpectedReturnPct:   estimateAnnualizedReturn(fv, score),
		ProbabilityOfProfit: cand.ProbabilityOfProfit,
		Confidence:          confidenceForScore(score),
		FeatureImportances:  r.trained.importances,
		IsPlaceholder:       false,
	}
}

// estimateAnnualizedReturn converts the quality score into a rough
// annualized expected return from the risk/reward ratio and DTE.
func estimateAnnualizedReturn(fv models.FeatureVector, score float64) float64 {
	dte := math.Max(fv.DTE, 1)
	pop := math.Max(0.35, math.Min(0.80, score/100))
	expected := (pop*fv.MaxRiskRewardRatio - (1 - pop)) * 100
	annualized := expected * (365 / dte)

	return round2(math.Max(-100, math.Min(500, annualized)))
}

func confidenceForScore(score float64) float64 {
	switch {
	case score >= 75:
		return 0.80
	case score >= 60:
		return 0.65
	case score >= 45:
		return 0.50
	default:
		return 0.35
	}
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
