package analyze

import (
	"github.com/cartscope/cartscope-cli/internal/model"
)

// Sub-score weights for the value score. Weights of analyzers that produced
// no score are redistributed across the rest.
const (
	priceWeight  = 0.40
	reviewWeight = 0.35
	specWeight   = 0.25
)

// Recommendation thresholds on the value score.
const (
	buyThreshold  = 0.70
	waitThreshold = 0.40
)

// LowConfidence is the confidence below which callers should flag the result
// as unreliable.
const LowConfidence = 0.25

// Synthesize folds the analyzer outcomes into a value score, a confidence
// estimate, and a recommendation, writing them onto the result in place.
func Synthesize(res *model.AnalysisResult) {
	weights := map[string]float64{
		priceAnalyzerName:  priceWeight,
		reviewAnalyzerName: reviewWeight,
		specAnalyzerName:   specWeight,
	}

	var weighted, totalWeight float64
	scored := 0
	hardNegative := false
	for _, out := range res.Outcomes() {
		if out.HardNegative {
			hardNegative = true
		}
		if !out.Scored() {
			continue
		}
		w := weights[out.Analyzer]
		weighted += w * out.SubScore
		totalWeight += w
		scored++
	}

	res.Confidence = confidence(res, scored)

	if scored == 0 {
		res.ValueScore = nil
		res.Recommendation = ""
		return
	}

	score := weighted / totalWeight
	res.ValueScore = &score

	switch {
	case score >= buyThreshold:
		res.Recommendation = model.RecommendBuy
	case score >= waitThreshold:
		res.Recommendation = model.RecommendWait
	default:
		res.Recommendation = model.RecommendAlternative
	}

	// Dominant negative sentiment never yields a buy.
	if hardNegative && res.Recommendation == model.RecommendBuy {
		res.Recommendation = model.RecommendWait
	}
}

// confidence combines record completeness, the provenance of the record, and
// the fraction of analyzers that produced a real score.
func confidence(res *model.AnalysisResult, scored int) float64 {
	if res.Record == nil {
		return 0
	}

	provenance := 1.0
	if res.Record.Platform == model.PlatformDerived {
		provenance = 0.6
	}

	outcomes := res.Outcomes()
	return res.Record.Completeness() * provenance * (float64(scored) / float64(len(outcomes)))
}
