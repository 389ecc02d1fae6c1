package compare

import (
	"context"
	"strings"
	"testing"

	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cartscope/cartscope-cli/internal/model"
	"github.com/cartscope/cartscope-cli/internal/platform"
	"github.com/cartscope/cartscope-cli/pkg/serper"
)

// siteSearch answers site-scoped queries from a canned per-domain table.
type siteSearch struct {
	byDomain map[string][]serper.OrganicResult
	err      error
}

func (s *siteSearch) Search(ctx context.Context, query string) (*serper.SearchResponse, error) {
	if s.err != nil {
		return nil, s.err
	}
	for domain, results := range s.byDomain {
		if strings.Contains(query, "site:"+domain) {
			return &serper.SearchResponse{Organic: results}, nil
		}
	}
	return &serper.SearchResponse{}, nil
}

func testRegistry(t *testing.T) *platform.Registry {
	t.Helper()
	registry, err := platform.LoadRegistry("")
	require.NoError(t, err)
	return registry
}

func TestCompare_AssemblesDealsAcrossPlatforms(t *testing.T) {
	search := &siteSearch{byDomain: map[string][]serper.OrganicResult{
		"amazon.in": {{
			Title:   "Sony WH-1000XM5 Wireless Headphones",
			Link:    "https://www.amazon.in/dp/B09XS7JWHH",
			Snippet: "₹29,990 with 4.5 out of 5 stars. Free delivery.",
		}},
		"flipkart.com": {{
			Title:   "Sony WH-1000XM5 (Black)",
			Link:    "https://www.flipkart.com/sony-wh-1000xm5/p/itmabc",
			Snippet: "₹28,490. Same day delivery available.",
		}},
	}}

	c := New(search, testRegistry(t))
	report, err := c.Compare(context.Background(), "sony wh-1000xm5")
	require.NoError(t, err)

	require.Len(t, report.Deals, 2)
	assert.Equal(t, "sony wh-1000xm5", report.Query)

	require.NotNil(t, report.BestPrice)
	assert.Equal(t, model.PlatformFlipkart, report.BestPrice.Platform)
	assert.Equal(t, 28490.0, report.BestPrice.Record.Price)

	require.NotNil(t, report.FastestDelivery)
	assert.Equal(t, model.PlatformFlipkart, report.FastestDelivery.Platform)
	assert.Contains(t, strings.ToLower(report.FastestDelivery.Record.DeliveryInfo), "same day")
}

func TestCompare_SkipsOffDomainHits(t *testing.T) {
	search := &siteSearch{byDomain: map[string][]serper.OrganicResult{
		"amazon.in": {
			{
				Title:   "Sony WH-1000XM5 review roundup",
				Link:    "https://blog.example.com/sony-review",
				Snippet: "Our verdict on the flagship.",
			},
			{
				Title:   "Sony WH-1000XM5 Wireless Headphones",
				Link:    "https://www.amazon.in/dp/B09XS7JWHH",
				Snippet: "₹29,990",
			},
		},
	}}

	c := New(search, testRegistry(t))
	report, err := c.Compare(context.Background(), "sony wh-1000xm5")
	require.NoError(t, err)

	require.Len(t, report.Deals, 1)
	assert.Equal(t, model.PlatformAmazonIN, report.Deals[0].Platform)
	assert.Equal(t, "https://www.amazon.in/dp/B09XS7JWHH", report.Deals[0].Record.URL)
}

func TestCompare_NoHitsAnywhere(t *testing.T) {
	c := New(&siteSearch{byDomain: map[string][]serper.OrganicResult{}}, testRegistry(t))

	report, err := c.Compare(context.Background(), "nonexistent product xyz")
	require.NoError(t, err, "empty result sets are not failures")
	assert.Empty(t, report.Deals)
	assert.Nil(t, report.BestPrice)
	assert.Nil(t, report.FastestDelivery)
}

func TestCompare_AllSearchesFailed(t *testing.T) {
	c := New(&siteSearch{err: eris.Wrap(serper.ErrQuotaOrAuth, "status 429")}, testRegistry(t))

	_, err := c.Compare(context.Background(), "sony wh-1000xm5")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "all provider searches failed")
}

func TestCompare_EmptyQuery(t *testing.T) {
	c := New(&siteSearch{}, testRegistry(t))

	_, err := c.Compare(context.Background(), "   ")
	require.Error(t, err)
}

func TestDeliverySpeedRanking(t *testing.T) {
	assert.Less(t, deliverySpeed("10 minutes delivery"), deliverySpeed("same day delivery"))
	assert.Less(t, deliverySpeed("same day delivery"), deliverySpeed("next day delivery"))
	assert.Less(t, deliverySpeed("next day delivery"), deliverySpeed("free delivery"))
	assert.Less(t, deliverySpeed("free delivery"), deliverySpeed("delivery by Tuesday"))
}
