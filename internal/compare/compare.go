// Package compare runs a query across every known storefront and reports the
// best deal per platform.
package compare

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/cartscope/cartscope-cli/internal/extract"
	"github.com/cartscope/cartscope-cli/internal/model"
	"github.com/cartscope/cartscope-cli/internal/platform"
	"github.com/cartscope/cartscope-cli/pkg/serper"
)

// maxConcurrentSearches bounds the parallel provider queries.
const maxConcurrentSearches = 3

// Deal is one platform's best offer for the compared product.
type Deal struct {
	Platform model.Platform       `json:"platform"`
	Record   *model.ProductRecord `json:"record"`
}

// Report is the cross-platform comparison for one query.
type Report struct {
	Query           string    `json:"query"`
	Deals           []Deal    `json:"deals"`
	BestPrice       *Deal     `json:"best_price,omitempty"`
	FastestDelivery *Deal     `json:"fastest_delivery,omitempty"`
	GeneratedAt     time.Time `json:"generated_at"`
}

// Comparator fans one query out across the platform registry.
type Comparator struct {
	search   serper.Client
	registry *platform.Registry
}

// New creates a comparator.
func New(search serper.Client, registry *platform.Registry) *Comparator {
	return &Comparator{search: search, registry: registry}
}

// Compare searches each known storefront for the query and assembles the
// per-platform deals. Platforms with no hits are omitted rather than failing
// the comparison; it errors only when every search failed.
func (c *Comparator) Compare(ctx context.Context, query string) (*Report, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, eris.New("compare: empty query")
	}

	report := &Report{Query: query, GeneratedAt: time.Now().UTC()}

	var mu sync.Mutex
	failures := 0
	profiles := c.registry.Profiles()

	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(maxConcurrentSearches)
	for _, profile := range profiles {
		if len(profile.Domains) == 0 {
			continue
		}
		g.Go(func() error {
			deal, err := c.searchPlatform(gCtx, query, profile)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				failures++
				zap.L().Warn("provider search failed",
					zap.String("platform", string(profile.ID)),
					zap.Error(err))
				return nil
			}
			if deal != nil {
				report.Deals = append(report.Deals, *deal)
			}
			return nil
		})
	}
	g.Wait() //nolint:errcheck

	if len(report.Deals) == 0 && failures > 0 {
		return nil, eris.New("compare: all provider searches failed")
	}

	sort.Slice(report.Deals, func(i, j int) bool {
		return report.Deals[i].Platform < report.Deals[j].Platform
	})
	report.BestPrice = bestPrice(report.Deals)
	report.FastestDelivery = fastestDelivery(report.Deals)
	return report, nil
}

// searchPlatform runs one site-scoped query and keeps the first hit on the
// platform's own domain. A nil deal means no usable result.
func (c *Comparator) searchPlatform(ctx context.Context, query string, profile *platform.Profile) (*Deal, error) {
	scoped := fmt.Sprintf("%s site:%s", query, profile.Domains[0])
	resp, err := c.search.Search(ctx, scoped)
	if err != nil {
		return nil, err
	}

	for _, hit := range resp.Organic {
		if hit.Title == "" || !strings.Contains(hit.Link, profile.Domains[0]) {
			continue
		}
		rec := model.NewProductRecord(hit.Link, profile.ID)
		rec.Title = extract.CleanText(hit.Title)
		rec.Populated.Add(model.FieldTitle)

		snippet := extract.CleanText(hit.Snippet)
		if p, ok := extract.ParseMarkedPrice(snippet); ok {
			rec.Price = p.Amount
			rec.Currency = p.Currency
			rec.Populated.Add(model.FieldPrice)
		}
		if r, ok := extract.ParseRating(snippet); ok {
			rec.Rating = r
			rec.Populated.Add(model.FieldRating)
		}
		if d, ok := extract.ParseDelivery(snippet); ok {
			rec.DeliveryInfo = d
			rec.Populated.Add(model.FieldDelivery)
		}
		return &Deal{Platform: profile.ID, Record: rec}, nil
	}
	return nil, nil
}

func bestPrice(deals []Deal) *Deal {
	var best *Deal
	for i := range deals {
		d := &deals[i]
		if !d.Record.Has(model.FieldPrice) {
			continue
		}
		if best == nil || d.Record.Price < best.Record.Price {
			best = d
		}
	}
	return best
}

// deliverySpeed ranks delivery phrasing; lower is faster.
func deliverySpeed(info string) int {
	lower := strings.ToLower(info)
	switch {
	case strings.Contains(lower, "minute"):
		return 0
	case strings.Contains(lower, "same day"), strings.Contains(lower, "today"):
		return 1
	case strings.Contains(lower, "next day"), strings.Contains(lower, "tomorrow"):
		return 2
	case strings.Contains(lower, "free"):
		return 3
	default:
		return 4
	}
}

func fastestDelivery(deals []Deal) *Deal {
	var best *Deal
	bestRank := 5
	for i := range deals {
		d := &deals[i]
		if !d.Record.Has(model.FieldDelivery) {
			continue
		}
		if rank := deliverySpeed(d.Record.DeliveryInfo); rank < bestRank {
			best = d
			bestRank = rank
		}
	}
	return best
}
