package extract

import (
	"regexp"
	"strconv"
	"strings"

	"golang.org/x/text/currency"
)

// Price is a parsed numeric amount with its ISO-4217 currency code.
type Price struct {
	Amount   float64
	Currency string
}

var currencySymbols = map[string]string{
	"₹": "INR", "$": "USD", "£": "GBP", "€": "EUR", "¥": "JPY",
	"rs": "INR", "rs.": "INR", "inr": "INR", "usd": "USD",
	"eur": "EUR", "gbp": "GBP", "mrp": "INR",
}

// The numeric token allows grouping or decimal separators only singly
// between digits, so a match never runs across a sentence boundary into the
// next number ("₹26,990. 4.5 stars" yields 26,990 and not "26,990. 4.5").
var (
	priceRe       = regexp.MustCompile(`(?i)(₹|\$|£|€|¥|rs\.?|inr|usd|eur|gbp|mrp)?\s*:?\s*([0-9](?:[\s.,]?[0-9])*)`)
	markedPriceRe = regexp.MustCompile(`(?i)(₹|\$|£|€|¥|\brs\.?|\binr|\busd|\beur|\bgbp|\bmrp)\s*:?\s*([0-9](?:[\s.,]?[0-9])*)`)
)

// ParsePrice extracts the first price-like token from text. Grouping
// separators are stripped and a single decimal separator accepted; multiple
// decimal points or a non-numeric remainder reject the token so the field is
// omitted rather than defaulted. The currency defaults to INR when only a
// bare number is found, so this is only safe on text already scoped to a
// price element; for free text use ParseMarkedPrice.
func ParsePrice(text string) (Price, bool) {
	return parsePriceMatch(priceRe.FindStringSubmatch(text))
}

// ParseMarkedPrice is ParsePrice restricted to tokens carrying a currency
// indicator. Free text mixes prices with ratings, counts, and model numbers,
// and a bare number there is more often one of those than a price.
func ParseMarkedPrice(text string) (Price, bool) {
	return parsePriceMatch(markedPriceRe.FindStringSubmatch(text))
}

func parsePriceMatch(m []string) (Price, bool) {
	if m == nil {
		return Price{}, false
	}

	code := "INR"
	if sym := strings.ToLower(strings.TrimSpace(m[1])); sym != "" {
		if c, ok := currencySymbols[sym]; ok {
			code = c
		} else if unit, err := currency.ParseISO(sym); err == nil {
			code = unit.String()
		}
	}

	num, ok := normalizeNumber(m[2])
	if !ok {
		return Price{}, false
	}
	amount, err := strconv.ParseFloat(num, 64)
	if err != nil || amount <= 0 {
		return Price{}, false
	}
	return Price{Amount: amount, Currency: code}, true
}

// normalizeNumber converts a locale-formatted numeric token ("1,234.56",
// "1.234,56", "1 234") to a plain decimal string.
func normalizeNumber(s string) (string, bool) {
	s = strings.ReplaceAll(strings.TrimSpace(s), " ", "")
	dots := strings.Count(s, ".")
	commas := strings.Count(s, ",")

	switch {
	case dots > 0 && commas > 0:
		// The rightmost separator kind is the decimal one.
		if strings.LastIndexByte(s, '.') > strings.LastIndexByte(s, ',') {
			s = strings.ReplaceAll(s, ",", "")
		} else {
			s = strings.ReplaceAll(s, ".", "")
			s = strings.Replace(s, ",", ".", 1)
		}
	case commas > 1:
		s = strings.ReplaceAll(s, ",", "")
	case commas == 1:
		// "1,234" is grouping; "12,50" is a decimal comma.
		if frac := s[strings.IndexByte(s, ',')+1:]; len(frac) == 3 {
			s = strings.ReplaceAll(s, ",", "")
		} else {
			s = strings.Replace(s, ",", ".", 1)
		}
	case dots > 1:
		return "", false
	}

	if strings.Count(s, ".") > 1 {
		return "", false
	}
	for _, r := range s {
		if (r < '0' || r > '9') && r != '.' {
			return "", false
		}
	}
	return s, s != "" && s != "."
}

var ratingRes = []*regexp.Regexp{
	regexp.MustCompile(`(?i)(\d+(?:\.\d+)?)\s*out\s*of\s*5`),
	regexp.MustCompile(`(?i)(\d+(?:\.\d+)?)\s*/\s*5`),
	regexp.MustCompile(`(?i)(\d+(?:\.\d+)?)\s*stars?`),
	regexp.MustCompile(`(\d+(?:\.\d+)?)`),
}

// ParseRating extracts a 0–5 star rating from text such as "4.3 out of 5
// stars". Values outside [0,5] are rejected.
func ParseRating(text string) (float64, bool) {
	for _, re := range ratingRes {
		m := re.FindStringSubmatch(text)
		if m == nil {
			continue
		}
		v, err := strconv.ParseFloat(m[1], 64)
		if err == nil && v >= 0 && v <= 5 {
			return v, true
		}
	}
	return 0, false
}

var reviewCountRe = regexp.MustCompile(`([\d,]+)\s*(?:global\s+)?(?:ratings?|reviews?)`)

// ParseReviewCount extracts a count from text like "1,234 ratings".
func ParseReviewCount(text string) (int, bool) {
	m := reviewCountRe.FindStringSubmatch(strings.ToLower(text))
	if m == nil {
		return 0, false
	}
	n, err := strconv.Atoi(strings.ReplaceAll(m[1], ",", ""))
	if err != nil || n < 0 {
		return 0, false
	}
	return n, true
}

var deliveryRes = []*regexp.Regexp{
	regexp.MustCompile(`(?i)\d+\s*(?:min|minute)s?\s*delivery`),
	regexp.MustCompile(`(?i)(?:same|next)\s*day\s*delivery`),
	regexp.MustCompile(`(?i)(?:free|instant|express)\s*delivery`),
	regexp.MustCompile(`(?i)delivery\s*(?:by|in)\s*[\w\s,]{3,30}`),
}

// ParseDelivery extracts a delivery promise ("same day delivery",
// "10 minutes delivery") from page or snippet text.
func ParseDelivery(text string) (string, bool) {
	for _, re := range deliveryRes {
		if m := re.FindString(text); m != "" {
			return strings.Join(strings.Fields(m), " "), true
		}
	}
	return "", false
}

var spaceRe = regexp.MustCompile(`\s+`)

// CleanText collapses whitespace in extracted node text.
func CleanText(s string) string {
	return strings.TrimSpace(spaceRe.ReplaceAllString(s, " "))
}
