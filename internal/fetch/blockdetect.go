package fetch

import (
	"net/http"
	"strings"
)

// ChallengeType describes the kind of anti-automation block detected.
type ChallengeType string

const (
	ChallengeNone       ChallengeType = ""
	ChallengeCloudflare ChallengeType = "cloudflare"
	ChallengeCaptcha    ChallengeType = "captcha"
	ChallengeJSShell    ChallengeType = "js_shell"
	ChallengeNonHTML    ChallengeType = "non_html"
)

var challengeMarkers = []struct {
	marker string
	kind   ChallengeType
}{
	{"checking your browser", ChallengeCloudflare},
	{"cf-browser-verification", ChallengeCloudflare},
	{"ddos protection", ChallengeCloudflare},
	{"recaptcha", ChallengeCaptcha},
	{"hcaptcha", ChallengeCaptcha},
	{"turnstile", ChallengeCaptcha},
	{"captcha", ChallengeCaptcha},
	{"verify you are human", ChallengeCaptcha},
	{"bot detected", ChallengeCaptcha},
	{"unfortunately we are unable", ChallengeCaptcha},
}

// DetectChallenge checks an HTTP response for signs of anti-automation
// defenses: Cloudflare interstitials, captcha walls, JS-only shells, or a
// non-HTML body where a product page was expected.
func DetectChallenge(status int, header http.Header, body []byte) (bool, ChallengeType) {
	if status == 403 || status == 503 {
		if header.Get("cf-ray") != "" || header.Get("cf-cache-status") != "" ||
			strings.EqualFold(header.Get("server"), "cloudflare") {
			return true, ChallengeCloudflare
		}
	}

	if ct := header.Get("Content-Type"); ct != "" {
		lower := strings.ToLower(ct)
		if !strings.Contains(lower, "html") && !strings.Contains(lower, "xml") &&
			!strings.Contains(lower, "text/plain") {
			return true, ChallengeNonHTML
		}
	}

	lower := strings.ToLower(string(body))
	for _, m := range challengeMarkers {
		if strings.Contains(lower, m.marker) {
			return true, m.kind
		}
	}

	// JS-only shell: tiny body that demands script execution or redirects.
	if len(body) > 0 && len(body) < 2000 {
		if strings.Contains(lower, "<noscript") && strings.Contains(lower, "javascript") {
			return true, ChallengeJSShell
		}
		if strings.Contains(lower, `http-equiv="refresh"`) {
			return true, ChallengeJSShell
		}
	}

	return false, ChallengeNone
}
