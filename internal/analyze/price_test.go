package analyze

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cartscope/cartscope-cli/internal/model"
	"github.com/cartscope/cartscope-cli/pkg/marketdata"
)

// mockMarket implements marketdata.Client for testing.
type mockMarket struct {
	pr  *marketdata.PriceRange
	err error
}

func (m *mockMarket) CategoryPriceRange(_ context.Context, _ string) (*marketdata.PriceRange, error) {
	return m.pr, m.err
}

func pricedRecord(price float64) *model.ProductRecord {
	rec := model.NewProductRecord("https://example.com/p", model.PlatformGeneric)
	rec.Price = price
	rec.Currency = "INR"
	rec.Populated.Add(model.FieldPrice)
	rec.Category = "audio"
	rec.Populated.Add(model.FieldCategory)
	return rec
}

func TestPriceAnalyzer_NoPrice(t *testing.T) {
	a := NewPriceAnalyzer(nil)
	rec := model.NewProductRecord("https://example.com/p", model.PlatformGeneric)

	out := a.Analyze(context.Background(), rec)
	assert.Equal(t, model.OutcomeInsufficient, out.Status)
	assert.False(t, out.Scored())
}

func TestPriceAnalyzer_MarketPosition(t *testing.T) {
	market := &mockMarket{pr: &marketdata.PriceRange{
		Category: "audio", Min: 1000, Median: 5000, Max: 11000, Currency: "INR", SampleSize: 200,
	}}
	a := NewPriceAnalyzer(market)

	out := a.Analyze(context.Background(), pricedRecord(2000))
	require.Equal(t, model.OutcomeOK, out.Status)
	assert.InDelta(t, 0.9, out.SubScore, 0.001)
	assert.Contains(t, out.Summary, "below")

	out = a.Analyze(context.Background(), pricedRecord(10000))
	require.Equal(t, model.OutcomeOK, out.Status)
	assert.InDelta(t, 0.1, out.SubScore, 0.001)
	assert.Contains(t, out.Summary, "above")
}

func TestPriceAnalyzer_PositionClamped(t *testing.T) {
	market := &mockMarket{pr: &marketdata.PriceRange{Min: 1000, Median: 5000, Max: 11000}}
	a := NewPriceAnalyzer(market)

	out := a.Analyze(context.Background(), pricedRecord(500))
	require.Equal(t, model.OutcomeOK, out.Status)
	assert.InDelta(t, 1.0, out.SubScore, 0.001)

	out = a.Analyze(context.Background(), pricedRecord(99999))
	require.Equal(t, model.OutcomeOK, out.Status)
	assert.InDelta(t, 0.0, out.SubScore, 0.001)
}

func TestPriceAnalyzer_SmallSampleCaveat(t *testing.T) {
	market := &mockMarket{pr: &marketdata.PriceRange{Min: 1000, Median: 5000, Max: 11000, SampleSize: 5}}
	a := NewPriceAnalyzer(market)

	out := a.Analyze(context.Background(), pricedRecord(5000))
	require.Equal(t, model.OutcomeOK, out.Status)
	assert.NotEmpty(t, out.Caveats)
}

func TestPriceAnalyzer_UnknownCategoryFallsBackToDiscount(t *testing.T) {
	market := &mockMarket{err: marketdata.ErrUnknownCategory}
	a := NewPriceAnalyzer(market)

	rec := pricedRecord(4000)
	rec.DiscountPct = 20
	rec.Populated.Add(model.FieldDiscount)

	out := a.Analyze(context.Background(), rec)
	require.Equal(t, model.OutcomeOK, out.Status)
	assert.InDelta(t, 0.7, out.SubScore, 0.001)
	assert.Contains(t, out.Summary, "discounted")
}

func TestPriceAnalyzer_NoSignalIsInsufficient(t *testing.T) {
	a := NewPriceAnalyzer(nil)

	out := a.Analyze(context.Background(), pricedRecord(4000))
	assert.Equal(t, model.OutcomeInsufficient, out.Status)
	assert.False(t, out.Scored())
	assert.Contains(t, out.Summary, "no market range or discount")
}

func TestPriceAnalyzer_PriceOnlyRecordIsInsufficient(t *testing.T) {
	a := NewPriceAnalyzer(nil)

	rec := model.NewProductRecord("https://example.com/p", model.PlatformGeneric)
	rec.Price = 4000
	rec.Currency = "INR"
	rec.Populated.Add(model.FieldPrice)

	out := a.Analyze(context.Background(), rec)
	assert.Equal(t, model.OutcomeInsufficient, out.Status)
	assert.False(t, out.Scored())
}

func TestPriceAnalyzer_DiscountScoreCapped(t *testing.T) {
	a := NewPriceAnalyzer(nil)

	rec := pricedRecord(100)
	rec.DiscountPct = 80
	rec.Populated.Add(model.FieldDiscount)

	out := a.Analyze(context.Background(), rec)
	require.Equal(t, model.OutcomeOK, out.Status)
	assert.InDelta(t, 1.0, out.SubScore, 0.001)
}
