package extract

import (
	"strings"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"

	"github.com/cartscope/cartscope-cli/internal/model"
	"github.com/cartscope/cartscope-cli/internal/platform"
)

// SelectorStrategy applies a platform profile's CSS selector set. Each field
// tries its selectors in order; the first non-empty match wins, and a miss
// simply leaves the field out of the completeness set.
type SelectorStrategy struct{}

// NewSelectorStrategy creates the platform-specific extraction strategy.
func NewSelectorStrategy() *SelectorStrategy { return &SelectorStrategy{} }

func (s *SelectorStrategy) Name() string { return "platform_selectors" }

// Extract populates a record from the profile's selectors.
func (s *SelectorStrategy) Extract(doc *goquery.Document, sourceURL string, profile *platform.Profile) (*model.ProductRecord, error) {
	rec := model.NewProductRecord(sourceURL, profile.ID)

	if title := firstText(doc, profile.SelectorsFor(model.FieldTitle)); title != "" {
		rec.Title = title
		rec.Populated.Add(model.FieldTitle)
	}

	if raw := firstText(doc, profile.SelectorsFor(model.FieldPrice)); raw != "" {
		if p, ok := ParsePrice(raw); ok {
			rec.Price = p.Amount
			rec.Currency = p.Currency
			rec.Populated.Add(model.FieldPrice)
		}
	}

	if raw := firstText(doc, profile.SelectorsFor(model.FieldOriginalPrice)); raw != "" {
		if p, ok := ParsePrice(raw); ok {
			rec.OriginalPrice = p.Amount
			rec.Populated.Add(model.FieldOriginalPrice)
		}
	}

	if rec.Has(model.FieldPrice) && rec.Has(model.FieldOriginalPrice) && rec.OriginalPrice > rec.Price {
		rec.DiscountPct = (rec.OriginalPrice - rec.Price) / rec.OriginalPrice * 100
		rec.Populated.Add(model.FieldDiscount)
	}

	if raw := firstText(doc, profile.SelectorsFor(model.FieldRating)); raw != "" {
		if v, ok := ParseRating(raw); ok {
			rec.Rating = v
			rec.Populated.Add(model.FieldRating)
		}
	}

	if raw := firstText(doc, profile.SelectorsFor(model.FieldReviewCount)); raw != "" {
		if n, ok := ParseReviewCount(raw); ok {
			rec.ReviewCount = n
			rec.Populated.Add(model.FieldReviewCount)
		}
	}

	if avail := firstText(doc, profile.SelectorsFor(model.FieldAvailability)); avail != "" {
		rec.Availability = avail
		rec.Populated.Add(model.FieldAvailability)
	}

	if imgs := collectImages(doc, profile.SelectorsFor(model.FieldImages)); len(imgs) > 0 {
		rec.ImageURLs = imgs
		rec.Populated.Add(model.FieldImages)
	}

	if specs := collectSpecs(doc, profile.SelectorsFor(model.FieldSpecs)); len(specs) > 0 {
		rec.Specifications = specs
		rec.Populated.Add(model.FieldSpecs)
	}

	if desc := firstText(doc, profile.SelectorsFor(model.FieldDescription)); desc != "" {
		rec.Description = truncate(desc, 2000)
		rec.Populated.Add(model.FieldDescription)
	}

	if brand := firstText(doc, profile.SelectorsFor(model.FieldBrand)); brand != "" {
		rec.Brand = brand
		rec.Populated.Add(model.FieldBrand)
	}

	if seller := firstText(doc, profile.SelectorsFor(model.FieldSeller)); seller != "" {
		rec.Seller = seller
		rec.Populated.Add(model.FieldSeller)
	}

	if raw := firstText(doc, profile.SelectorsFor(model.FieldDelivery)); raw != "" {
		if d, ok := ParseDelivery(raw); ok {
			rec.DeliveryInfo = d
		} else {
			rec.DeliveryInfo = truncate(raw, 200)
		}
		rec.Populated.Add(model.FieldDelivery)
	}

	return rec, nil
}

// firstText returns the cleaned text of the first selector that matches a
// non-empty node, preferring content/value attributes on meta-like elements.
func firstText(doc *goquery.Document, selectors []string) string {
	for _, sel := range selectors {
		node := doc.Find(sel).First()
		if node.Length() == 0 {
			continue
		}
		if v, ok := node.Attr("content"); ok && strings.TrimSpace(v) != "" {
			return CleanText(v)
		}
		if text := CleanText(node.Text()); text != "" {
			return text
		}
	}
	return ""
}

// collectImages gathers up to 5 distinct image URLs from src/data-src attrs.
func collectImages(doc *goquery.Document, selectors []string) []string {
	seen := make(map[string]struct{})
	var out []string
	for _, sel := range selectors {
		doc.Find(sel).EachWithBreak(func(_ int, s *goquery.Selection) bool {
			src, ok := s.Attr("src")
			if !ok || src == "" {
				src, _ = s.Attr("data-src")
			}
			src = strings.TrimSpace(src)
			if src == "" || strings.HasPrefix(src, "data:") {
				return true
			}
			if _, dup := seen[src]; !dup {
				seen[src] = struct{}{}
				out = append(out, src)
			}
			return len(out) < 5
		})
		if len(out) >= 5 {
			break
		}
	}
	return out
}

// collectSpecs builds a key→value map from spec rows. Table rows use
// th/td pairs; list items split on the first colon, or land in a features
// bucket keyed by index when no colon is present.
func collectSpecs(doc *goquery.Document, selectors []string) map[string]string {
	specs := make(map[string]string)
	for _, sel := range selectors {
		doc.Find(sel).Each(func(i int, s *goquery.Selection) {
			if len(specs) >= 40 {
				return
			}
			th := CleanText(s.Find("th").First().Text())
			td := CleanText(s.Find("td").First().Text())
			if th != "" && td != "" {
				specs[th] = td
				return
			}
			text := CleanText(s.Text())
			if text == "" {
				return
			}
			if key, val, ok := strings.Cut(text, ":"); ok &&
				strings.TrimSpace(key) != "" && strings.TrimSpace(val) != "" {
				specs[CleanText(key)] = CleanText(val)
			}
		})
		if len(specs) > 0 {
			break
		}
	}
	return specs
}

// truncate cuts s to at most n bytes, backing off to a rune boundary so a
// multi-byte character is never split.
func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n]
}
