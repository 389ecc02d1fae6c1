// Package model defines the data types shared across the link analysis pipeline.
package model

import "time"

// Platform identifies the e-commerce site a record came from.
type Platform string

const (
	PlatformAmazonIN  Platform = "amazon.in"
	PlatformFlipkart  Platform = "flipkart.com"
	PlatformMyntra    Platform = "myntra.com"
	PlatformSnapdeal  Platform = "snapdeal.com"
	PlatformBigBasket Platform = "bigbasket.com"
	PlatformGeneric   Platform = "generic"

	// PlatformDerived marks records recovered via fallback search rather
	// than direct page extraction. They carry a reduced confidence weight.
	PlatformDerived Platform = "derived"
)

// Field names a single extractable slot on a ProductRecord.
type Field string

const (
	FieldTitle         Field = "title"
	FieldPrice         Field = "price"
	FieldOriginalPrice Field = "original_price"
	FieldDiscount      Field = "discount"
	FieldRating        Field = "rating"
	FieldReviewCount   Field = "review_count"
	FieldAvailability  Field = "availability"
	FieldImages        Field = "images"
	FieldSpecs         Field = "specifications"
	FieldDescription   Field = "description"
	FieldBrand         Field = "brand"
	FieldCategory      Field = "category"
	FieldSeller        Field = "seller"
	FieldDelivery      Field = "delivery"
	FieldOffers        Field = "offers"
	FieldFeatures      Field = "features"
)

// AllFields returns every extractable field, in a stable order.
func AllFields() []Field {
	return []Field{
		FieldTitle, FieldPrice, FieldOriginalPrice, FieldDiscount,
		FieldRating, FieldReviewCount, FieldAvailability, FieldImages,
		FieldSpecs, FieldDescription, FieldBrand, FieldCategory,
		FieldSeller, FieldDelivery, FieldOffers, FieldFeatures,
	}
}

// FieldSet tracks which fields of a record were actually populated by an
// extraction attempt. A field outside the set must be read as absent, never
// as its zero value.
type FieldSet map[Field]struct{}

// Add marks a field as populated.
func (s FieldSet) Add(f Field) { s[f] = struct{}{} }

// Has reports whether a field was populated.
func (s FieldSet) Has(f Field) bool {
	_, ok := s[f]
	return ok
}

// Len returns the number of populated fields.
func (s FieldSet) Len() int { return len(s) }

// Missing returns the fields from AllFields not present in the set.
func (s FieldSet) Missing() []Field {
	var out []Field
	for _, f := range AllFields() {
		if !s.Has(f) {
			out = append(out, f)
		}
	}
	return out
}

// ProductRecord is the canonical extracted entity for a single request.
// Every field except URL and Platform is optional; consumers must consult
// Populated before reading a value.
type ProductRecord struct {
	URL      string   `json:"url"`
	Platform Platform `json:"platform"`

	Title          string            `json:"title,omitempty"`
	Price          float64           `json:"price,omitempty"`
	Currency       string            `json:"currency,omitempty"`
	OriginalPrice  float64           `json:"original_price,omitempty"`
	DiscountPct    float64           `json:"discount_percentage,omitempty"`
	Rating         float64           `json:"rating,omitempty"`
	ReviewCount    int               `json:"review_count,omitempty"`
	Availability   string            `json:"availability,omitempty"`
	ImageURLs      []string          `json:"image_urls,omitempty"`
	Specifications map[string]string `json:"specifications,omitempty"`
	Description    string            `json:"description,omitempty"`
	Brand          string            `json:"brand,omitempty"`
	Category       string            `json:"category,omitempty"`
	Seller         string            `json:"seller,omitempty"`
	DeliveryInfo   string            `json:"delivery_info,omitempty"`
	Offers         []string          `json:"offers,omitempty"`
	Features       []string          `json:"features,omitempty"`

	ExtractedAt time.Time `json:"extracted_at"`
	Populated   FieldSet  `json:"populated"`
}

// NewProductRecord creates an empty record for the given source URL.
func NewProductRecord(url string, platform Platform) *ProductRecord {
	return &ProductRecord{
		URL:         url,
		Platform:    platform,
		ExtractedAt: time.Now().UTC(),
		Populated:   make(FieldSet),
	}
}

// Has reports whether the given field is in the completeness set.
func (r *ProductRecord) Has(f Field) bool {
	return r.Populated.Has(f)
}

// Completeness returns populated-field count over the total field count.
func (r *ProductRecord) Completeness() float64 {
	return float64(r.Populated.Len()) / float64(len(AllFields()))
}
