package extract

import (
	"encoding/json"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/cartscope/cartscope-cli/internal/model"
	"github.com/cartscope/cartscope-cli/internal/platform"
)

// GenericStrategy handles unknown storefronts. It tries, in order of
// confidence: embedded JSON-LD product metadata, microdata/OpenGraph
// markup, then plain-text heuristics over the page body.
type GenericStrategy struct{}

// NewGenericStrategy creates the generic extraction strategy.
func NewGenericStrategy() *GenericStrategy { return &GenericStrategy{} }

func (g *GenericStrategy) Name() string { return "generic" }

// Extract populates a record from structured metadata when present, falling
// through to markup patterns and text heuristics for whatever is missing.
func (g *GenericStrategy) Extract(doc *goquery.Document, sourceURL string, profile *platform.Profile) (*model.ProductRecord, error) {
	rec := model.NewProductRecord(sourceURL, model.PlatformGeneric)

	g.fromJSONLD(doc, rec)
	g.fromMarkup(doc, rec, profile)
	g.fromHeuristics(doc, rec)

	return rec, nil
}

// jsonLDProduct mirrors the schema.org Product shape, tolerating the
// single-value / array ambiguity common in real pages.
type jsonLDProduct struct {
	Type        jsonLDStrings `json:"@type"`
	Graph       []jsonLDRaw   `json:"@graph"`
	Name        string        `json:"name"`
	Description string        `json:"description"`
	Brand       jsonLDNamed   `json:"brand"`
	Category    string        `json:"category"`
	Image       jsonLDStrings `json:"image"`
	Offers      jsonLDOffers  `json:"offers"`
	Rating      *jsonLDRating `json:"aggregateRating"`
	SKU         string        `json:"sku"`
}

type jsonLDRaw = json.RawMessage

type jsonLDNamed struct {
	Name string `json:"name"`
}

func (n *jsonLDNamed) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err == nil {
		n.Name = s
		return nil
	}
	type alias jsonLDNamed
	var a alias
	if err := json.Unmarshal(b, &a); err != nil {
		return err
	}
	n.Name = a.Name
	return nil
}

type jsonLDStrings []string

func (j *jsonLDStrings) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err == nil {
		*j = []string{s}
		return nil
	}
	var arr []string
	if err := json.Unmarshal(b, &arr); err == nil {
		*j = arr
		return nil
	}
	*j = nil
	return nil
}

type jsonLDOffer struct {
	Price         json.Number `json:"price"`
	PriceCurrency string      `json:"priceCurrency"`
	Availability  string      `json:"availability"`
	Seller        jsonLDNamed `json:"seller"`
}

type jsonLDOffers []jsonLDOffer

func (o *jsonLDOffers) UnmarshalJSON(b []byte) error {
	var one jsonLDOffer
	if err := json.Unmarshal(b, &one); err == nil {
		*o = []jsonLDOffer{one}
		return nil
	}
	var arr []jsonLDOffer
	if err := json.Unmarshal(b, &arr); err == nil {
		*o = arr
		return nil
	}
	*o = nil
	return nil
}

type jsonLDRating struct {
	RatingValue json.Number `json:"ratingValue"`
	ReviewCount json.Number `json:"reviewCount"`
	RatingCount json.Number `json:"ratingCount"`
}

// fromJSONLD scans ld+json script blocks for a schema.org Product node,
// including nodes nested inside @graph, and fills the record from the first
// one found.
func (g *GenericStrategy) fromJSONLD(doc *goquery.Document, rec *model.ProductRecord) {
	doc.Find(`script[type="application/ld+json"]`).EachWithBreak(func(_ int, s *goquery.Selection) bool {
		raw := strings.TrimSpace(s.Text())
		if raw == "" {
			return true
		}
		for _, candidate := range jsonLDCandidates(raw) {
			var p jsonLDProduct
			if err := json.Unmarshal(candidate, &p); err != nil {
				continue
			}
			if !isProductType(p.Type) {
				continue
			}
			applyJSONLD(&p, rec)
			return false
		}
		return true
	})
}

// jsonLDCandidates expands a raw ld+json payload into the product-node
// candidates it may contain: the document itself, top-level array elements,
// and @graph members.
func jsonLDCandidates(raw string) []json.RawMessage {
	var out []json.RawMessage

	var arr []json.RawMessage
	if err := json.Unmarshal([]byte(raw), &arr); err == nil {
		out = append(out, arr...)
	} else {
		out = append(out, json.RawMessage(raw))
	}

	var expanded []json.RawMessage
	for _, c := range out {
		expanded = append(expanded, c)
		var holder struct {
			Graph []json.RawMessage `json:"@graph"`
		}
		if err := json.Unmarshal(c, &holder); err == nil {
			expanded = append(expanded, holder.Graph...)
		}
	}
	return expanded
}

func isProductType(types jsonLDStrings) bool {
	for _, t := range types {
		if strings.EqualFold(t, "Product") {
			return true
		}
	}
	return false
}

func applyJSONLD(p *jsonLDProduct, rec *model.ProductRecord) {
	if p.Name != "" && !rec.Has(model.FieldTitle) {
		rec.Title = CleanText(p.Name)
		rec.Populated.Add(model.FieldTitle)
	}
	if p.Description != "" && !rec.Has(model.FieldDescription) {
		rec.Description = truncate(CleanText(p.Description), 2000)
		rec.Populated.Add(model.FieldDescription)
	}
	if p.Brand.Name != "" && !rec.Has(model.FieldBrand) {
		rec.Brand = p.Brand.Name
		rec.Populated.Add(model.FieldBrand)
	}
	if p.Category != "" && !rec.Has(model.FieldCategory) {
		rec.Category = p.Category
		rec.Populated.Add(model.FieldCategory)
	}
	if len(p.Image) > 0 && !rec.Has(model.FieldImages) {
		rec.ImageURLs = p.Image
		rec.Populated.Add(model.FieldImages)
	}

	if len(p.Offers) > 0 {
		offer := p.Offers[0]
		if v, err := offer.Price.Float64(); err == nil && v > 0 && !rec.Has(model.FieldPrice) {
			rec.Price = v
			rec.Currency = offer.PriceCurrency
			if rec.Currency == "" {
				rec.Currency = "INR"
			}
			rec.Populated.Add(model.FieldPrice)
		}
		if offer.Availability != "" && !rec.Has(model.FieldAvailability) {
			rec.Availability = availabilityLabel(offer.Availability)
			rec.Populated.Add(model.FieldAvailability)
		}
		if offer.Seller.Name != "" && !rec.Has(model.FieldSeller) {
			rec.Seller = offer.Seller.Name
			rec.Populated.Add(model.FieldSeller)
		}
	}

	if p.Rating != nil {
		if v, err := p.Rating.RatingValue.Float64(); err == nil && v >= 0 && v <= 5 && !rec.Has(model.FieldRating) {
			rec.Rating = v
			rec.Populated.Add(model.FieldRating)
		}
		count := p.Rating.ReviewCount
		if count == "" {
			count = p.Rating.RatingCount
		}
		if n, err := count.Int64(); err == nil && n > 0 && !rec.Has(model.FieldReviewCount) {
			rec.ReviewCount = int(n)
			rec.Populated.Add(model.FieldReviewCount)
		}
	}
}

// availabilityLabel reduces schema.org availability URIs to a plain label.
func availabilityLabel(v string) string {
	if i := strings.LastIndexByte(v, '/'); i >= 0 {
		v = v[i+1:]
	}
	return v
}

// fromMarkup fills remaining fields from microdata and OpenGraph patterns
// plus the generic selector set.
func (g *GenericStrategy) fromMarkup(doc *goquery.Document, rec *model.ProductRecord, profile *platform.Profile) {
	if !rec.Has(model.FieldTitle) {
		if t := firstText(doc, []string{`meta[property="og:title"]`, `[itemprop="name"]`}); t != "" {
			rec.Title = t
			rec.Populated.Add(model.FieldTitle)
		} else if t := firstText(doc, profile.SelectorsFor(model.FieldTitle)); t != "" {
			rec.Title = t
			rec.Populated.Add(model.FieldTitle)
		}
	}

	if !rec.Has(model.FieldPrice) {
		raw := firstText(doc, []string{
			`meta[property="product:price:amount"]`,
			`[itemprop="price"]`,
		})
		if raw == "" {
			raw = firstText(doc, profile.SelectorsFor(model.FieldPrice))
		}
		if p, ok := ParsePrice(raw); ok {
			rec.Price = p.Amount
			rec.Currency = p.Currency
			if cur := firstText(doc, []string{`meta[property="product:price:currency"]`, `[itemprop="priceCurrency"]`}); cur != "" {
				rec.Currency = strings.ToUpper(cur)
			}
			rec.Populated.Add(model.FieldPrice)
		}
	}

	if !rec.Has(model.FieldRating) {
		if raw := firstText(doc, append([]string{`[itemprop="ratingValue"]`}, profile.SelectorsFor(model.FieldRating)...)); raw != "" {
			if v, ok := ParseRating(raw); ok {
				rec.Rating = v
				rec.Populated.Add(model.FieldRating)
			}
		}
	}

	if !rec.Has(model.FieldImages) {
		if imgs := collectImages(doc, append([]string{`meta[property="og:image"]`}, profile.SelectorsFor(model.FieldImages)...)); len(imgs) > 0 {
			rec.ImageURLs = imgs
			rec.Populated.Add(model.FieldImages)
		} else if v := firstText(doc, []string{`meta[property="og:image"]`}); v != "" {
			rec.ImageURLs = []string{v}
			rec.Populated.Add(model.FieldImages)
		}
	}

	if !rec.Has(model.FieldDescription) {
		if d := firstText(doc, append([]string{`meta[property="og:description"]`, `meta[name="description"]`, `[itemprop="description"]`}, profile.SelectorsFor(model.FieldDescription)...)); d != "" {
			rec.Description = truncate(d, 2000)
			rec.Populated.Add(model.FieldDescription)
		}
	}
}

// fromHeuristics is the last resort: page <title> / first <h1> for the
// title, and the currency-prefixed numeric token nearest the title text for
// the price.
func (g *GenericStrategy) fromHeuristics(doc *goquery.Document, rec *model.ProductRecord) {
	if !rec.Has(model.FieldTitle) {
		title := CleanText(doc.Find("title").First().Text())
		if h1 := CleanText(doc.Find("h1").First().Text()); h1 != "" {
			title = h1
		}
		if title != "" {
			rec.Title = title
			rec.Populated.Add(model.FieldTitle)
		}
	}

	if !rec.Has(model.FieldPrice) && rec.Has(model.FieldTitle) {
		body := CleanText(doc.Find("body").Text())
		if p, ok := nearestPrice(body, rec.Title); ok {
			rec.Price = p.Amount
			rec.Currency = p.Currency
			rec.Populated.Add(model.FieldPrice)
		}
	}

	if !rec.Has(model.FieldDelivery) {
		if d, ok := ParseDelivery(CleanText(doc.Find("body").Text())); ok {
			rec.DeliveryInfo = d
			rec.Populated.Add(model.FieldDelivery)
		}
	}
}

var symbolPriceRe = regexp.MustCompile(`(₹|\$|£|€|Rs\.?\s)\s*([0-9][0-9.,]*)`)

// nearestPrice returns the currency-prefixed numeric token closest to the
// title's position in the body text.
func nearestPrice(body, title string) (Price, bool) {
	anchor := strings.Index(body, title)
	if anchor < 0 {
		anchor = 0
	}

	locs := symbolPriceRe.FindAllStringIndex(body, -1)
	best := -1
	bestDist := 0
	for _, loc := range locs {
		dist := loc[0] - anchor
		if dist < 0 {
			dist = -dist
		}
		if best == -1 || dist < bestDist {
			best = loc[0]
			bestDist = dist
		}
	}
	if best == -1 {
		return Price{}, false
	}
	end := best + 40
	if end > len(body) {
		end = len(body)
	}
	return ParseMarkedPrice(body[best:end])
}
