package analyze

import (
	"context"
	"fmt"
	"strings"

	"github.com/cartscope/cartscope-cli/internal/model"
)

const specAnalyzerName = "spec"

// specsForFullScore is the specification count treated as a complete sheet.
const specsForFullScore = 12

// salientKeys are specification keys buyers actually compare, grouped by
// category keyword.
var salientKeys = map[string][]string{
	"electronic": {"ram", "storage", "battery", "display", "processor", "warranty"},
	"phone":      {"ram", "storage", "battery", "display", "camera", "warranty"},
	"laptop":     {"ram", "storage", "battery", "display", "processor", "warranty"},
	"audio":      {"battery", "driver", "bluetooth", "warranty", "noise"},
	"clothing":   {"fabric", "material", "fit", "wash", "size"},
	"fashion":    {"fabric", "material", "fit", "wash", "size"},
	"grocery":    {"weight", "quantity", "shelf life", "ingredients"},
	"food":       {"weight", "quantity", "shelf life", "ingredients"},
}

// SpecAnalyzer judges how complete and informative the specification sheet
// is for the product's category.
type SpecAnalyzer struct{}

// NewSpecAnalyzer creates a specification analyzer.
func NewSpecAnalyzer() *SpecAnalyzer { return &SpecAnalyzer{} }

func (s *SpecAnalyzer) Name() string { return specAnalyzerName }

func (s *SpecAnalyzer) Analyze(_ context.Context, rec *model.ProductRecord) model.AnalysisOutcome {
	specCount := 0
	if rec.Has(model.FieldSpecs) {
		specCount = len(rec.Specifications)
	}
	featureCount := 0
	if rec.Has(model.FieldFeatures) {
		featureCount = len(rec.Features)
	}
	if specCount == 0 && featureCount == 0 {
		return model.InsufficientData(specAnalyzerName, "no specifications or feature list extracted")
	}

	richness := float64(specCount+featureCount) / specsForFullScore
	if richness > 1 {
		richness = 1
	}

	out := model.AnalysisOutcome{
		Analyzer: specAnalyzerName,
		Status:   model.OutcomeOK,
		Summary:  fmt.Sprintf("%d specifications and %d highlighted features listed", specCount, featureCount),
	}

	salient, missing := s.salientCoverage(rec)
	if salient == nil {
		out.SubScore = richness
		return out
	}

	covered := float64(len(salient)-len(missing)) / float64(len(salient))
	out.SubScore = 0.5*richness + 0.5*covered
	if len(missing) > 0 {
		out.Caveats = append(out.Caveats,
			"listing does not state "+strings.Join(missing, ", "))
	} else {
		out.Observations = append(out.Observations,
			"covers the specifications buyers compare in this category")
	}
	return out
}

// salientCoverage returns the compared-spec keys for the record's category
// and which of them the listing omits. A nil first return means the category
// has no salient key set.
func (s *SpecAnalyzer) salientCoverage(rec *model.ProductRecord) (salient, missing []string) {
	if !rec.Has(model.FieldCategory) {
		return nil, nil
	}
	category := strings.ToLower(rec.Category)
	for keyword, keys := range salientKeys {
		if strings.Contains(category, keyword) {
			salient = keys
			break
		}
	}
	if salient == nil {
		return nil, nil
	}

	haystack := strings.ToLower(strings.Join(rec.Features, " "))
	for k, v := range rec.Specifications {
		haystack += " " + strings.ToLower(k) + " " + strings.ToLower(v)
	}
	for _, key := range salient {
		if !strings.Contains(haystack, key) {
			missing = append(missing, key)
		}
	}
	return salient, missing
}
