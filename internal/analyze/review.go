package analyze

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/cartscope/cartscope-cli/internal/model"
	"github.com/cartscope/cartscope-cli/pkg/anthropic"
)

const reviewAnalyzerName = "review"

// hardNegativePolarity is the threshold below which negative sentiment caps
// the final recommendation.
const hardNegativePolarity = -0.3

// Summarizer condenses review text into a structured verdict.
type Summarizer interface {
	Summarize(ctx context.Context, text string) (*anthropic.ReviewSummary, error)
}

// ReviewAnalyzer scores customer sentiment, using the LLM summarizer when
// review text exists and falling back to the star rating alone.
type ReviewAnalyzer struct {
	summarizer Summarizer
}

// NewReviewAnalyzer creates a review analyzer. A nil summarizer restricts it
// to rating-based scoring.
func NewReviewAnalyzer(summarizer Summarizer) *ReviewAnalyzer {
	return &ReviewAnalyzer{summarizer: summarizer}
}

func (a *ReviewAnalyzer) Name() string { return reviewAnalyzerName }

func (a *ReviewAnalyzer) Analyze(ctx context.Context, rec *model.ProductRecord) model.AnalysisOutcome {
	text := reviewText(rec)
	if a.summarizer != nil && text != "" {
		out, ok := a.summarized(ctx, rec, text)
		if ok {
			return out
		}
	}

	return a.ratingOnly(rec)
}

// reviewText gathers whatever prose the record carries that reads like
// customer opinion.
func reviewText(rec *model.ProductRecord) string {
	var parts []string
	if rec.Has(model.FieldDescription) {
		parts = append(parts, rec.Description)
	}
	if rec.Has(model.FieldFeatures) {
		parts = append(parts, strings.Join(rec.Features, "; "))
	}
	return strings.TrimSpace(strings.Join(parts, "\n"))
}

func (a *ReviewAnalyzer) summarized(ctx context.Context, rec *model.ProductRecord, text string) (model.AnalysisOutcome, bool) {
	summary, err := a.summarizer.Summarize(ctx, text)
	if err != nil {
		if ctx.Err() != nil {
			return model.AnalysisOutcome{}, false
		}
		zap.L().Warn("review summarization failed", zap.Error(err))
		return model.AnalysisOutcome{}, false
	}

	out := model.AnalysisOutcome{
		Analyzer:     reviewAnalyzerName,
		Status:       model.OutcomeOK,
		SubScore:     (summary.Polarity + 1) / 2,
		Summary:      summary.Summary,
		Observations: summary.Themes,
		HardNegative: summary.Polarity <= hardNegativePolarity,
	}
	a.countCaveat(rec, &out)
	return out, true
}

// ratingOnly maps the star rating onto polarity: 2.5 stars is neutral, 5 is
// fully positive.
func (a *ReviewAnalyzer) ratingOnly(rec *model.ProductRecord) model.AnalysisOutcome {
	if !rec.Has(model.FieldRating) {
		return model.InsufficientData(reviewAnalyzerName, "no rating or review text extracted")
	}

	polarity := (rec.Rating - 2.5) / 2.5
	out := model.AnalysisOutcome{
		Analyzer:     reviewAnalyzerName,
		Status:       model.OutcomeOK,
		SubScore:     (polarity + 1) / 2,
		Summary:      fmt.Sprintf("rated %.1f out of 5", rec.Rating),
		Caveats:      []string{"sentiment inferred from the star rating alone"},
		HardNegative: polarity <= hardNegativePolarity,
	}
	a.countCaveat(rec, &out)
	return out
}

func (a *ReviewAnalyzer) countCaveat(rec *model.ProductRecord, out *model.AnalysisOutcome) {
	if rec.Has(model.FieldReviewCount) && rec.ReviewCount < 10 {
		out.Caveats = append(out.Caveats,
			fmt.Sprintf("only %d reviews recorded", rec.ReviewCount))
	}
}
