package fetch

import (
	"bufio"
	"context"
	"io"
	"net/http"
	"strings"
	"sync"

	"go.uber.org/zap"
)

// robotsRules holds the Disallow/Allow prefixes that apply to our agent for
// one domain. A nil entry means robots.txt was unavailable (fail open).
type robotsRules struct {
	disallow []string
	allow    []string
}

// robotsCache fetches and caches robots exclusion rules once per registered
// domain for the lifetime of the process.
type robotsCache struct {
	client    *http.Client
	userAgent string

	mu    sync.Mutex
	rules map[string]*robotsRules
}

func newRobotsCache(client *http.Client, userAgent string) *robotsCache {
	return &robotsCache{
		client:    client,
		userAgent: userAgent,
		rules:     make(map[string]*robotsRules),
	}
}

// Allowed reports whether fetching the given path on the domain is permitted.
// Errors retrieving robots.txt fail open: the crawl proceeds.
func (c *robotsCache) Allowed(ctx context.Context, scheme, domain, path string) bool {
	c.mu.Lock()
	rules, ok := c.rules[domain]
	c.mu.Unlock()

	if !ok {
		rules = c.fetch(ctx, scheme, domain)
		c.mu.Lock()
		c.rules[domain] = rules
		c.mu.Unlock()
	}

	if rules == nil {
		return true
	}
	if path == "" {
		path = "/"
	}

	// Longest explicit Allow wins over a matching Disallow.
	var bestAllow, bestDisallow int
	for _, p := range rules.allow {
		if strings.HasPrefix(path, p) && len(p) > bestAllow {
			bestAllow = len(p)
		}
	}
	for _, p := range rules.disallow {
		if strings.HasPrefix(path, p) && len(p) > bestDisallow {
			bestDisallow = len(p)
		}
	}
	return bestDisallow == 0 || bestAllow >= bestDisallow
}

func (c *robotsCache) fetch(ctx context.Context, scheme, domain string) *robotsRules {
	robotsURL := scheme + "://" + domain + "/robots.txt"
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, robotsURL, nil)
	if err != nil {
		return nil
	}
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.client.Do(req)
	if err != nil {
		zap.L().Debug("fetch: robots.txt unavailable, failing open",
			zap.String("domain", domain),
			zap.Error(err),
		)
		return nil
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 256*1024))
	if err != nil {
		return nil
	}
	return parseRobots(string(body), c.userAgent)
}

// parseRobots extracts the rule group for our user agent, falling back to
// the wildcard group. Only User-agent, Disallow and Allow are honored.
func parseRobots(content, userAgent string) *robotsRules {
	agentToken := strings.ToLower(firstToken(userAgent))

	wildcard := &robotsRules{}
	specific := &robotsRules{}
	var current *robotsRules
	sawSpecific := false

	scanner := bufio.NewScanner(strings.NewReader(content))
	for scanner.Scan() {
		line := scanner.Text()
		if i := strings.IndexByte(line, '#'); i >= 0 {
			line = line[:i]
		}
		key, val, ok := strings.Cut(line, ":")
		if !ok {
			continue
		}
		key = strings.ToLower(strings.TrimSpace(key))
		val = strings.TrimSpace(val)

		switch key {
		case "user-agent":
			agent := strings.ToLower(val)
			switch {
			case agent == "*":
				current = wildcard
			case agentToken != "" && strings.Contains(agentToken, agent):
				current = specific
				sawSpecific = true
			default:
				current = nil
			}
		case "disallow":
			if current != nil && val != "" {
				current.disallow = append(current.disallow, val)
			}
		case "allow":
			if current != nil && val != "" {
				current.allow = append(current.allow, val)
			}
		}
	}

	if sawSpecific {
		return specific
	}
	return wildcard
}

// firstToken returns the product token of a User-Agent header, lowercased
// ("Mozilla/5.0 (...)" → "mozilla/5.0").
func firstToken(ua string) string {
	ua = strings.TrimSpace(strings.ToLower(ua))
	if i := strings.IndexByte(ua, ' '); i > 0 {
		return ua[:i]
	}
	return ua
}
