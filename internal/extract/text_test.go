package extract

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParsePrice_RupeeSymbol(t *testing.T) {
	p, ok := ParsePrice("₹1,29,900")
	require.True(t, ok)
	assert.InDelta(t, 129900, p.Amount, 0.001)
	assert.Equal(t, "INR", p.Currency)
}

func TestParsePrice_DollarWithDecimals(t *testing.T) {
	p, ok := ParsePrice("$1,234.56")
	require.True(t, ok)
	assert.InDelta(t, 1234.56, p.Amount, 0.001)
	assert.Equal(t, "USD", p.Currency)
}

func TestParsePrice_EuropeanFormat(t *testing.T) {
	p, ok := ParsePrice("€1.234,56")
	require.True(t, ok)
	assert.InDelta(t, 1234.56, p.Amount, 0.001)
	assert.Equal(t, "EUR", p.Currency)
}

func TestParsePrice_RsPrefix(t *testing.T) {
	p, ok := ParsePrice("MRP: Rs. 499")
	require.True(t, ok)
	assert.InDelta(t, 499, p.Amount, 0.001)
	assert.Equal(t, "INR", p.Currency)
}

func TestParsePrice_BareNumberDefaultsINR(t *testing.T) {
	p, ok := ParsePrice("2999")
	require.True(t, ok)
	assert.InDelta(t, 2999, p.Amount, 0.001)
	assert.Equal(t, "INR", p.Currency)
}

func TestParseMarkedPrice_SkipsUnmarkedNumbers(t *testing.T) {
	p, ok := ParseMarkedPrice("4.5 out of 5 stars. Industry-leading noise cancellation. Buy for ₹29,990.")
	require.True(t, ok)
	assert.InDelta(t, 29990, p.Amount, 0.001)
	assert.Equal(t, "INR", p.Currency)
}

func TestParseMarkedPrice_StopsAtSentenceBoundary(t *testing.T) {
	p, ok := ParseMarkedPrice("₹26,990. 4.5 out of 5 stars. 1,200 ratings.")
	require.True(t, ok)
	assert.InDelta(t, 26990, p.Amount, 0.001)
	assert.Equal(t, "INR", p.Currency)
}

func TestParseMarkedPrice_RejectsBareNumber(t *testing.T) {
	for _, text := range []string{"2999", "4.5 out of 5 stars from 12,847 reviews", "model WH-1000XM5"} {
		_, ok := ParseMarkedPrice(text)
		assert.False(t, ok, "input %q", text)
	}
}

func TestParseMarkedPrice_LetterCodeNeedsWordBoundary(t *testing.T) {
	// "rs" inside "stars" must not count as a rupee marker.
	_, ok := ParseMarkedPrice("5 stars. 4 left in stock")
	assert.False(t, ok)

	p, ok := ParseMarkedPrice("USD 1,234.56")
	require.True(t, ok)
	assert.Equal(t, "USD", p.Currency)
}

func TestParsePrice_Rejections(t *testing.T) {
	for _, text := range []string{"", "out of stock", "₹0"} {
		_, ok := ParsePrice(text)
		assert.False(t, ok, "input %q", text)
	}
}

func TestParseRating(t *testing.T) {
	v, ok := ParseRating("4.3 out of 5 stars")
	require.True(t, ok)
	assert.InDelta(t, 4.3, v, 0.001)

	v, ok = ParseRating("3.9/5")
	require.True(t, ok)
	assert.InDelta(t, 3.9, v, 0.001)

	_, ok = ParseRating("no rating yet")
	assert.False(t, ok)

	_, ok = ParseRating("9.5")
	assert.False(t, ok, "out of range rating must be rejected")
}

func TestParseReviewCount(t *testing.T) {
	n, ok := ParseReviewCount("12,742 global ratings")
	require.True(t, ok)
	assert.Equal(t, 12742, n)

	n, ok = ParseReviewCount("87 reviews")
	require.True(t, ok)
	assert.Equal(t, 87, n)

	_, ok = ParseReviewCount("be the first to review")
	assert.False(t, ok)
}

func TestParseDelivery(t *testing.T) {
	d, ok := ParseDelivery("Get it in 10 minutes delivery available")
	require.True(t, ok)
	assert.Contains(t, d, "minutes delivery")

	d, ok = ParseDelivery("Same Day Delivery if ordered before noon")
	require.True(t, ok)
	assert.Equal(t, "Same Day Delivery", d)

	_, ok = ParseDelivery("ships from warehouse")
	assert.False(t, ok)
}

func TestCleanText(t *testing.T) {
	assert.Equal(t, "Sony WH-1000XM5", CleanText("  Sony \n\t WH-1000XM5  "))
	assert.Equal(t, "", CleanText("   \n\t "))
}
