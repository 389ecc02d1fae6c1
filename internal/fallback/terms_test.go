package fallback

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/cartscope/cartscope-cli/internal/model"
)

func TestDeriveTerms_FromTitleAndBrand(t *testing.T) {
	rec := model.NewProductRecord("https://www.amazon.in/dp/B09XS7JWHH", model.PlatformAmazonIN)
	rec.Title = "WH-1000XM5 Wireless Headphones"
	rec.Populated.Add(model.FieldTitle)
	rec.Brand = "Sony"
	rec.Populated.Add(model.FieldBrand)

	assert.Equal(t, "WH-1000XM5 Wireless Headphones Sony", DeriveTerms(rec))
}

func TestDeriveTerms_BrandAlreadyInTitle(t *testing.T) {
	rec := model.NewProductRecord("https://example.com/p", model.PlatformGeneric)
	rec.Title = "Sony WH-1000XM5"
	rec.Populated.Add(model.FieldTitle)
	rec.Brand = "Sony"
	rec.Populated.Add(model.FieldBrand)

	assert.Equal(t, "Sony WH-1000XM5", DeriveTerms(rec))
}

func TestDeriveTerms_FromURLSlug(t *testing.T) {
	rec := model.NewProductRecord(
		"https://www.amazon.in/sony-wh-1000xm5-wireless-headphones/dp/B09XS7JWHH?ref=x",
		model.PlatformAmazonIN)

	terms := DeriveTerms(rec)
	assert.Contains(t, terms, "sony")
	assert.Contains(t, terms, "wireless")
	assert.Contains(t, terms, "headphones")
	assert.NotContains(t, terms, "B09XS7JWHH", "marketplace IDs are noise")
	assert.NotContains(t, terms, "dp")
}

func TestDeriveTerms_CapsQueryLength(t *testing.T) {
	rec := model.NewProductRecord("https://example.com/p", model.PlatformGeneric)
	rec.Title = "one two three four five six seven eight nine ten eleven twelve"
	rec.Populated.Add(model.FieldTitle)

	terms := DeriveTerms(rec)
	assert.Len(t, strings.Fields(terms), maxTerms)
}

func TestDeriveTerms_NothingUsable(t *testing.T) {
	assert.Equal(t, "", DeriveTerms(nil))

	rec := model.NewProductRecord("https://example.com/", model.PlatformGeneric)
	assert.Equal(t, "", DeriveTerms(rec))
}
