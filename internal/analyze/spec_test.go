package analyze

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cartscope/cartscope-cli/internal/model"
)

func TestSpecAnalyzer_NoSpecs(t *testing.T) {
	a := NewSpecAnalyzer()
	rec := model.NewProductRecord("https://example.com/p", model.PlatformGeneric)

	out := a.Analyze(context.Background(), rec)
	assert.Equal(t, model.OutcomeInsufficient, out.Status)
}

func TestSpecAnalyzer_RichnessWithoutCategory(t *testing.T) {
	a := NewSpecAnalyzer()
	rec := model.NewProductRecord("https://example.com/p", model.PlatformGeneric)
	rec.Specifications = map[string]string{
		"Color": "Black", "Weight": "250 g", "Material": "Plastic",
	}
	rec.Populated.Add(model.FieldSpecs)

	out := a.Analyze(context.Background(), rec)
	require.Equal(t, model.OutcomeOK, out.Status)
	assert.InDelta(t, 0.25, out.SubScore, 0.001)
}

func TestSpecAnalyzer_SalientCoverage(t *testing.T) {
	a := NewSpecAnalyzer()
	rec := model.NewProductRecord("https://example.com/p", model.PlatformGeneric)
	rec.Category = "Audio Accessories"
	rec.Populated.Add(model.FieldCategory)
	rec.Specifications = map[string]string{
		"Battery Life":      "30 hours",
		"Driver Size":       "40 mm",
		"Bluetooth Version": "5.2",
		"Warranty":          "1 year",
		"Noise Cancelling":  "Active",
		"Weight":            "250 g",
	}
	rec.Populated.Add(model.FieldSpecs)

	out := a.Analyze(context.Background(), rec)
	require.Equal(t, model.OutcomeOK, out.Status)
	assert.Empty(t, out.Caveats)
	assert.InDelta(t, 0.75, out.SubScore, 0.001)
}

func TestSpecAnalyzer_MissingSalientKeysCaveat(t *testing.T) {
	a := NewSpecAnalyzer()
	rec := model.NewProductRecord("https://example.com/p", model.PlatformGeneric)
	rec.Category = "audio"
	rec.Populated.Add(model.FieldCategory)
	rec.Specifications = map[string]string{"Color": "Black"}
	rec.Populated.Add(model.FieldSpecs)

	out := a.Analyze(context.Background(), rec)
	require.Equal(t, model.OutcomeOK, out.Status)
	require.NotEmpty(t, out.Caveats)
	assert.Contains(t, out.Caveats[0], "battery")
}

func TestSpecAnalyzer_FeaturesCountToo(t *testing.T) {
	a := NewSpecAnalyzer()
	rec := model.NewProductRecord("https://example.com/p", model.PlatformGeneric)
	rec.Features = []string{"Foldable design", "Carry case included"}
	rec.Populated.Add(model.FieldFeatures)

	out := a.Analyze(context.Background(), rec)
	assert.Equal(t, model.OutcomeOK, out.Status)
}
