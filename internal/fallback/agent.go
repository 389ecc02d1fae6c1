package fallback

import (
	"context"
	"net/url"
	"sort"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/cartscope/cartscope-cli/internal/extract"
	"github.com/cartscope/cartscope-cli/internal/model"
	"github.com/cartscope/cartscope-cli/internal/platform"
	"github.com/cartscope/cartscope-cli/pkg/serper"
)

const (
	maxCandidates = 5
	minRelevance  = 0.15
)

// Agent recovers product candidates through web search when direct
// extraction fails or comes back too thin to analyze.
type Agent struct {
	search   serper.Client
	registry *platform.Registry
}

// NewAgent creates a search-backed fallback agent.
func NewAgent(search serper.Client, registry *platform.Registry) *Agent {
	return &Agent{search: search, registry: registry}
}

// Recover derives query terms from the partial record, runs one web search,
// and returns candidate records ranked by relevance. Quota and auth failures
// surface as ErrSearchExhausted so the pipeline reports "not found with
// suggestions" instead of an internal error.
func (a *Agent) Recover(ctx context.Context, rec *model.ProductRecord) ([]*model.ProductRecord, error) {
	query := DeriveTerms(rec)
	if query == "" {
		return nil, eris.Wrap(model.ErrSearchExhausted, "fallback: no usable search terms")
	}

	resp, err := a.search.Search(ctx, query)
	if err != nil {
		if ctx.Err() != nil {
			return nil, err
		}
		zap.L().Warn("fallback search failed",
			zap.String("query", query),
			zap.Error(err))
		return nil, eris.Wrapf(model.ErrSearchExhausted, "fallback: search unavailable: %v", err)
	}

	candidates := a.rank(query, resp.Organic)
	if len(candidates) == 0 {
		return nil, eris.Wrapf(model.ErrSearchExhausted, "fallback: no relevant results for %q", query)
	}

	zap.L().Info("fallback search recovered candidates",
		zap.String("query", query),
		zap.Int("candidates", len(candidates)))
	return candidates, nil
}

type scored struct {
	rec   *model.ProductRecord
	score float64
}

// rank converts organic hits into derived product records and orders them by
// query overlap, with a boost for results hosted on known storefronts.
func (a *Agent) rank(query string, results []serper.OrganicResult) []*model.ProductRecord {
	queryTokens := strings.Fields(strings.ToLower(query))
	if len(queryTokens) == 0 {
		return nil
	}

	var out []scored
	for _, res := range results {
		if res.Link == "" || res.Title == "" {
			continue
		}
		score := overlap(queryTokens, res.Title)
		score += 0.3 * overlap(queryTokens, res.Snippet)
		if a.onKnownPlatform(res.Link) {
			score += 0.5
		}
		if score < minRelevance {
			continue
		}
		out = append(out, scored{rec: a.toRecord(res), score: score})
	}

	sort.SliceStable(out, func(i, j int) bool { return out[i].score > out[j].score })
	if len(out) > maxCandidates {
		out = out[:maxCandidates]
	}

	recs := make([]*model.ProductRecord, len(out))
	for i, s := range out {
		recs[i] = s.rec
	}
	return recs
}

// toRecord maps a search hit onto a derived record, mining the snippet for
// price, rating and delivery mentions.
func (a *Agent) toRecord(res serper.OrganicResult) *model.ProductRecord {
	rec := model.NewProductRecord(res.Link, model.PlatformDerived)
	rec.Title = extract.CleanText(res.Title)
	rec.Populated.Add(model.FieldTitle)

	snippet := extract.CleanText(res.Snippet)
	if p, ok := extract.ParseMarkedPrice(snippet); ok {
		rec.Price = p.Amount
		rec.Currency = p.Currency
		rec.Populated.Add(model.FieldPrice)
	}
	if r, ok := extract.ParseRating(snippet); ok {
		rec.Rating = r
		rec.Populated.Add(model.FieldRating)
	}
	if n, ok := extract.ParseReviewCount(snippet); ok {
		rec.ReviewCount = n
		rec.Populated.Add(model.FieldReviewCount)
	}
	if d, ok := extract.ParseDelivery(snippet); ok {
		rec.DeliveryInfo = d
		rec.Populated.Add(model.FieldDelivery)
	}
	if snippet != "" {
		rec.Description = snippet
		rec.Populated.Add(model.FieldDescription)
	}
	return rec
}

func (a *Agent) onKnownPlatform(link string) bool {
	u, err := url.Parse(link)
	if err != nil {
		return false
	}
	profile := a.registry.Lookup(platform.RegisteredDomain(u.Hostname()))
	return profile.ID != model.PlatformGeneric
}

// overlap returns the fraction of query tokens present in the text.
func overlap(queryTokens []string, text string) float64 {
	lower := strings.ToLower(text)
	hits := 0
	for _, tok := range queryTokens {
		if strings.Contains(lower, tok) {
			hits++
		}
	}
	return float64(hits) / float64(len(queryTokens))
}

// Suggestions builds manual search URLs on the known storefronts for a
// query that automated recovery could not resolve.
func (a *Agent) Suggestions(rec *model.ProductRecord) []string {
	query := DeriveTerms(rec)
	if query == "" {
		return nil
	}
	escaped := url.QueryEscape(query)

	var out []string
	for _, profile := range a.registry.Profiles() {
		if profile.SearchURL == "" {
			continue
		}
		out = append(out, strings.ReplaceAll(profile.SearchURL, "{query}", escaped))
	}
	return out
}
