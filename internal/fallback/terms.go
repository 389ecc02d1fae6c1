package fallback

import (
	"net/url"
	"regexp"
	"strings"

	"github.com/cartscope/cartscope-cli/internal/model"
)

var (
	slugSepRe = regexp.MustCompile(`[-_+]+`)
	idLikeRe  = regexp.MustCompile(`^[A-Z0-9]{8,}$|^[0-9]{5,}$|^B0[A-Z0-9]{8}$`)

	stopTokens = map[string]struct{}{
		"the": {}, "and": {}, "for": {}, "with": {}, "buy": {}, "online": {},
		"best": {}, "price": {}, "new": {}, "dp": {}, "gp": {}, "product": {},
		"item": {}, "itm": {}, "ref": {}, "pd": {}, "p": {}, "at": {}, "in": {},
		"of": {}, "on": {},
	}
)

const maxTerms = 10

// DeriveTerms builds a search query from whatever the extraction recovered.
// Title and brand win when present; otherwise the URL path slug is
// de-hyphenated and cleaned of identifier-looking tokens.
func DeriveTerms(rec *model.ProductRecord) string {
	var parts []string
	if rec != nil && rec.Has(model.FieldTitle) {
		parts = append(parts, rec.Title)
	}
	if rec != nil && rec.Has(model.FieldBrand) && !strings.Contains(strings.ToLower(rec.Title), strings.ToLower(rec.Brand)) {
		parts = append(parts, rec.Brand)
	}
	if len(parts) > 0 {
		return clampTerms(strings.Join(parts, " "))
	}
	if rec != nil {
		return slugTerms(rec.URL)
	}
	return ""
}

// slugTerms recovers product words from a URL path such as
// /sony-wh-1000xm5-wireless-headphones/dp/B09XS7JWHH.
func slugTerms(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}
	var tokens []string
	for _, segment := range strings.Split(u.Path, "/") {
		for _, tok := range slugSepRe.Split(segment, -1) {
			tok = strings.TrimSpace(tok)
			if tok == "" {
				continue
			}
			if _, stop := stopTokens[strings.ToLower(tok)]; stop {
				continue
			}
			if idLikeRe.MatchString(strings.ToUpper(tok)) {
				continue
			}
			tokens = append(tokens, strings.ToLower(tok))
		}
	}
	return clampTerms(strings.Join(tokens, " "))
}

func clampTerms(q string) string {
	fields := strings.Fields(q)
	if len(fields) > maxTerms {
		fields = fields[:maxTerms]
	}
	return strings.Join(fields, " ")
}
