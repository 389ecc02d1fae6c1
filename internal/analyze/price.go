package analyze

import (
	"context"
	"fmt"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/cartscope/cartscope-cli/internal/model"
	"github.com/cartscope/cartscope-cli/pkg/marketdata"
)

const priceAnalyzerName = "price"

// PriceAnalyzer positions the listed price within the market range for the
// product's category.
type PriceAnalyzer struct {
	market marketdata.Client
}

// NewPriceAnalyzer creates a price analyzer. The market client may be nil;
// the analyzer then falls back to discount-based scoring.
func NewPriceAnalyzer(market marketdata.Client) *PriceAnalyzer {
	return &PriceAnalyzer{market: market}
}

func (p *PriceAnalyzer) Name() string { return priceAnalyzerName }

func (p *PriceAnalyzer) Analyze(ctx context.Context, rec *model.ProductRecord) model.AnalysisOutcome {
	if !rec.Has(model.FieldPrice) {
		return model.InsufficientData(priceAnalyzerName, "no price extracted")
	}

	if p.market != nil && rec.Has(model.FieldCategory) {
		out, ok := p.marketPosition(ctx, rec)
		if ok {
			return out
		}
	}

	return p.discountScore(rec)
}

// marketPosition scores the price against the category's observed
// distribution. A price at or below the category minimum scores 1.0.
func (p *PriceAnalyzer) marketPosition(ctx context.Context, rec *model.ProductRecord) (model.AnalysisOutcome, bool) {
	pr, err := p.market.CategoryPriceRange(ctx, rec.Category)
	if err != nil {
		if !eris.Is(err, marketdata.ErrUnknownCategory) {
			zap.L().Warn("market price lookup failed",
				zap.String("category", rec.Category),
				zap.Error(err))
		}
		return model.AnalysisOutcome{}, false
	}
	if pr.Max <= pr.Min {
		return model.AnalysisOutcome{}, false
	}

	pos := (rec.Price - pr.Min) / (pr.Max - pr.Min)
	if pos < 0 {
		pos = 0
	}
	if pos > 1 {
		pos = 1
	}
	score := 1 - pos

	out := model.AnalysisOutcome{
		Analyzer: priceAnalyzerName,
		Status:   model.OutcomeOK,
		SubScore: score,
	}
	switch {
	case rec.Price <= pr.Median*0.9:
		out.Summary = fmt.Sprintf("priced below the %s market median", rec.Category)
		out.Observations = append(out.Observations,
			fmt.Sprintf("listed at %.2f against a median of %.2f", rec.Price, pr.Median))
	case rec.Price >= pr.Median*1.1:
		out.Summary = fmt.Sprintf("priced above the %s market median", rec.Category)
		out.Observations = append(out.Observations,
			fmt.Sprintf("listed at %.2f against a median of %.2f", rec.Price, pr.Median))
	default:
		out.Summary = fmt.Sprintf("priced in line with the %s market", rec.Category)
	}
	if pr.SampleSize > 0 && pr.SampleSize < 20 {
		out.Caveats = append(out.Caveats,
			fmt.Sprintf("market range built from only %d listings", pr.SampleSize))
	}
	return out, true
}

// discountScore is the degraded path when no market range is available: a
// visible discount is the only price signal left. A lone price carries no
// information about value, so without a discount there is nothing to score.
func (p *PriceAnalyzer) discountScore(rec *model.ProductRecord) model.AnalysisOutcome {
	if !rec.Has(model.FieldDiscount) || rec.DiscountPct <= 0 {
		return model.InsufficientData(priceAnalyzerName, "no market range or discount to assess the price against")
	}

	pct := rec.DiscountPct
	if pct > 50 {
		pct = 50
	}
	return model.AnalysisOutcome{
		Analyzer: priceAnalyzerName,
		Status:   model.OutcomeOK,
		SubScore: 0.5 + pct/100,
		Summary:  fmt.Sprintf("discounted %.0f%% from the listed original price", rec.DiscountPct),
		Caveats:  []string{"no market range available for this category"},
	}
}
