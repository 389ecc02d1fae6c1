package platform

import (
	"net/url"
	"strings"

	"github.com/rotisserie/eris"

	"github.com/cartscope/cartscope-cli/internal/model"
)

// trackingParams are query parameters stripped during normalization. They
// carry campaign attribution, not product identity.
var trackingParams = map[string]struct{}{
	"ref": {}, "ref_": {}, "tag": {}, "linkcode": {}, "linkid": {},
	"fbclid": {}, "gclid": {}, "msclkid": {}, "igshid": {},
	"mc_cid": {}, "mc_eid": {}, "spm": {}, "cmpid": {}, "affid": {},
}

// secondLevelTLDs lists public suffixes with two labels, so the registered
// domain of www.amazon.co.uk resolves to amazon.co.uk, not co.uk.
var secondLevelTLDs = map[string]struct{}{
	"co.uk": {}, "co.in": {}, "com.au": {}, "co.jp": {}, "com.br": {},
	"co.nz": {}, "com.sg": {}, "com.mx": {}, "co.za": {},
}

// Classification is the classifier output: the cleaned URL, the detected
// platform, and the profile extraction will run with.
type Classification struct {
	NormalizedURL    string
	RegisteredDomain string
	Platform         model.Platform
	Profile          *Profile
}

// Classify normalizes a raw URL and resolves it to a platform profile.
// It has no side effects. A string that is not a well-formed absolute
// HTTP(S) URL fails with model.ErrInvalidURL.
func (r *Registry) Classify(rawURL string) (*Classification, error) {
	u, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil {
		return nil, eris.Wrapf(model.ErrInvalidURL, "platform: parse %q: %v", rawURL, err)
	}

	scheme := strings.ToLower(u.Scheme)
	if scheme != "http" && scheme != "https" {
		return nil, eris.Wrapf(model.ErrInvalidURL, "platform: unsupported scheme %q", u.Scheme)
	}
	host := strings.ToLower(u.Hostname())
	if host == "" || !strings.Contains(host, ".") {
		return nil, eris.Wrapf(model.ErrInvalidURL, "platform: missing or bare host in %q", rawURL)
	}

	u.Scheme = scheme
	u.Host = strings.ToLower(u.Host)
	u.Fragment = ""
	u.RawQuery = stripTracking(u.Query())

	domain := RegisteredDomain(host)
	profile := r.Lookup(domain)

	return &Classification{
		NormalizedURL:    u.String(),
		RegisteredDomain: domain,
		Platform:         profile.ID,
		Profile:          profile,
	}, nil
}

// RegisteredDomain reduces a hostname to its registrable domain
// (eTLD+1 approximation over the known second-level suffix list).
func RegisteredDomain(host string) string {
	labels := strings.Split(host, ".")
	if len(labels) <= 2 {
		return host
	}
	lastTwo := strings.Join(labels[len(labels)-2:], ".")
	if _, ok := secondLevelTLDs[lastTwo]; ok {
		return strings.Join(labels[len(labels)-3:], ".")
	}
	return lastTwo
}

func stripTracking(q url.Values) string {
	for key := range q {
		lower := strings.ToLower(key)
		if strings.HasPrefix(lower, "utm_") {
			q.Del(key)
			continue
		}
		if _, ok := trackingParams[lower]; ok {
			q.Del(key)
		}
	}
	return q.Encode()
}
