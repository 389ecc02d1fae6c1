package analyze

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cartscope/cartscope-cli/internal/model"
)

func fullRecord() *model.ProductRecord {
	rec := model.NewProductRecord("https://example.com/p", model.PlatformAmazonIN)
	for _, f := range model.AllFields() {
		rec.Populated.Add(f)
	}
	return rec
}

func scoredOutcome(analyzer string, score float64) model.AnalysisOutcome {
	return model.AnalysisOutcome{Analyzer: analyzer, Status: model.OutcomeOK, SubScore: score}
}

func TestSynthesize_WeightedMean(t *testing.T) {
	res := &model.AnalysisResult{
		Record:         fullRecord(),
		PriceAnalysis:  scoredOutcome("price", 1.0),
		ReviewAnalysis: scoredOutcome("review", 0.8),
		SpecAnalysis:   scoredOutcome("spec", 0.6),
	}

	Synthesize(res)

	require.NotNil(t, res.ValueScore)
	assert.InDelta(t, 0.83, *res.ValueScore, 0.001)
	assert.Equal(t, model.RecommendBuy, res.Recommendation)
	assert.InDelta(t, 1.0, res.Confidence, 0.001)
}

func TestSynthesize_WeightsRedistributedOnMissing(t *testing.T) {
	res := &model.AnalysisResult{
		Record:         fullRecord(),
		PriceAnalysis:  scoredOutcome("price", 0.9),
		ReviewAnalysis: model.InsufficientData("review", "no rating"),
		SpecAnalysis:   scoredOutcome("spec", 0.3),
	}

	Synthesize(res)

	require.NotNil(t, res.ValueScore)
	// (0.4*0.9 + 0.25*0.3) / 0.65
	assert.InDelta(t, 0.6692, *res.ValueScore, 0.001)
	assert.Equal(t, model.RecommendWait, res.Recommendation)
}

func TestSynthesize_AllMissingYieldsNilScore(t *testing.T) {
	res := &model.AnalysisResult{
		Record:         fullRecord(),
		PriceAnalysis:  model.InsufficientData("price", "no price"),
		ReviewAnalysis: model.TimedOut("review"),
		SpecAnalysis:   model.InsufficientData("spec", "no specs"),
	}

	Synthesize(res)

	assert.Nil(t, res.ValueScore)
	assert.Empty(t, res.Recommendation)
	assert.Less(t, res.Confidence, LowConfidence)
}

func TestSynthesize_HardNegativeCapsAtWait(t *testing.T) {
	review := scoredOutcome("review", 0.9)
	review.HardNegative = true

	res := &model.AnalysisResult{
		Record:         fullRecord(),
		PriceAnalysis:  scoredOutcome("price", 1.0),
		ReviewAnalysis: review,
		SpecAnalysis:   scoredOutcome("spec", 1.0),
	}

	Synthesize(res)

	require.NotNil(t, res.ValueScore)
	assert.GreaterOrEqual(t, *res.ValueScore, 0.70)
	assert.Equal(t, model.RecommendWait, res.Recommendation)
}

func TestSynthesize_SeekAlternative(t *testing.T) {
	res := &model.AnalysisResult{
		Record:         fullRecord(),
		PriceAnalysis:  scoredOutcome("price", 0.2),
		ReviewAnalysis: scoredOutcome("review", 0.3),
		SpecAnalysis:   scoredOutcome("spec", 0.1),
	}

	Synthesize(res)

	assert.Equal(t, model.RecommendAlternative, res.Recommendation)
}

func TestSynthesize_DerivedRecordReducesConfidence(t *testing.T) {
	direct := &model.AnalysisResult{
		Record:         fullRecord(),
		PriceAnalysis:  scoredOutcome("price", 0.5),
		ReviewAnalysis: scoredOutcome("review", 0.5),
		SpecAnalysis:   scoredOutcome("spec", 0.5),
	}
	Synthesize(direct)

	derivedRec := fullRecord()
	derivedRec.Platform = model.PlatformDerived
	derived := &model.AnalysisResult{
		Record:         derivedRec,
		PriceAnalysis:  scoredOutcome("price", 0.5),
		ReviewAnalysis: scoredOutcome("review", 0.5),
		SpecAnalysis:   scoredOutcome("spec", 0.5),
	}
	Synthesize(derived)

	assert.InDelta(t, 0.6*direct.Confidence, derived.Confidence, 0.001)
}
