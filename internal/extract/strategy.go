// Package extract turns raw page content into partial ProductRecords. Each
// strategy is a pure function over a parsed document; selector misses omit
// fields rather than failing the attempt.
package extract

import (
	"bytes"

	"github.com/PuerkitoBio/goquery"
	"github.com/rotisserie/eris"

	"github.com/cartscope/cartscope-cli/internal/model"
	"github.com/cartscope/cartscope-cli/internal/platform"
)

// Strategy extracts a partial product record from a parsed document.
// Exactly one strategy populates a record per attempt; results are never
// merged across strategies.
type Strategy interface {
	Name() string
	Extract(doc *goquery.Document, sourceURL string, profile *platform.Profile) (*model.ProductRecord, error)
}

// Parse builds the queryable document tree from raw page bytes.
func Parse(raw []byte) (*goquery.Document, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(raw))
	if err != nil {
		return nil, eris.Wrap(err, "extract: parse document")
	}
	return doc, nil
}

// Successful reports whether a record meets the extraction success
// threshold: title AND (price OR availability).
func Successful(rec *model.ProductRecord) bool {
	return rec.Has(model.FieldTitle) &&
		(rec.Has(model.FieldPrice) || rec.Has(model.FieldAvailability))
}
