// Package fetch performs rate-limited, robots-aware page retrieval with
// retry on transient failures and immediate refusal on anti-bot challenges.
package fetch

import (
	"context"
	"errors"
	"io"
	"net"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/cartscope/cartscope-cli/internal/model"
	"github.com/cartscope/cartscope-cli/internal/platform"
	"github.com/cartscope/cartscope-cli/internal/resilience"
)

const maxBodyBytes = 2 << 20 // 2 MiB per page

// Result is the raw outcome of a successful fetch; parsing happens elsewhere.
type Result struct {
	Body       []byte
	StatusCode int
}

// Fetcher retrieves a single URL honoring the platform profile's policy.
type Fetcher interface {
	Fetch(ctx context.Context, rawURL string, profile *platform.Profile) (*Result, error)
}

// Options configures the HTTP fetcher.
type Options struct {
	UserAgent     string
	Timeout       time.Duration
	RespectRobots bool
}

// HTTPFetcher implements Fetcher over net/http. Its per-domain limiter map
// is process-wide shared state: concurrent requests to the same registered
// domain serialize on that domain's delay window, while different domains
// proceed independently.
type HTTPFetcher struct {
	client *http.Client
	robots *robotsCache
	opts   Options

	mu       sync.Mutex
	limiters map[string]*rate.Limiter
}

// NewHTTPFetcher creates a fetcher with per-domain rate limiting.
func NewHTTPFetcher(opts Options) *HTTPFetcher {
	if opts.Timeout == 0 {
		opts.Timeout = 15 * time.Second
	}
	if opts.UserAgent == "" {
		opts.UserAgent = "Mozilla/5.0 (compatible; CartscopeBot/1.0)"
	}
	client := &http.Client{
		Timeout: opts.Timeout,
		Transport: &http.Transport{
			DialContext: (&net.Dialer{
				Timeout: 10 * time.Second,
			}).DialContext,
			TLSHandshakeTimeout: 10 * time.Second,
			MaxIdleConnsPerHost: 10,
			IdleConnTimeout:     90 * time.Second,
		},
	}
	return &HTTPFetcher{
		client:   client,
		robots:   newRobotsCache(client, opts.UserAgent),
		opts:     opts,
		limiters: make(map[string]*rate.Limiter),
	}
}

// limiterFor returns the limiter for a registered domain, creating it on
// first use with the profile's minimum inter-request delay and burst 1.
func (f *HTTPFetcher) limiterFor(domain string, minDelay time.Duration) *rate.Limiter {
	f.mu.Lock()
	defer f.mu.Unlock()
	if lim, ok := f.limiters[domain]; ok {
		return lim
	}
	lim := rate.NewLimiter(rate.Every(minDelay), 1)
	f.limiters[domain] = lim
	return lim
}

// Fetch retrieves rawURL under the profile's rate, robots, retry and timeout
// policy. It fails with model.ErrDisallowed when robots rules forbid the
// path, model.ErrAccessDenied on 403/429 or a detected challenge page (no
// retries), and model.ErrFetchFailed / model.ErrFetchTimeout after transient
// failures exhaust the retry budget.
func (f *HTTPFetcher) Fetch(ctx context.Context, rawURL string, profile *platform.Profile) (*Result, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, eris.Wrapf(model.ErrInvalidURL, "fetch: parse %q: %v", rawURL, err)
	}
	domain := platform.RegisteredDomain(u.Hostname())

	if f.opts.RespectRobots && !f.robots.Allowed(ctx, u.Scheme, u.Host, u.Path) {
		return nil, eris.Wrapf(model.ErrDisallowed, "fetch: robots.txt forbids %s", u.Path)
	}

	cfg := resilience.DefaultRetryConfig(profile.MaxRetries)
	cfg.OnRetry = resilience.RetryLogger("fetch", domain)

	result, err := resilience.DoVal(ctx, cfg, func(ctx context.Context) (*Result, error) {
		lim := f.limiterFor(domain, profile.MinDelay())
		if err := lim.Wait(ctx); err != nil {
			return nil, eris.Wrap(err, "fetch: rate limiter wait")
		}
		return f.doOnce(ctx, rawURL, profile)
	})
	if err != nil {
		return nil, classifyFetchErr(err, rawURL)
	}
	return result, nil
}

func (f *HTTPFetcher) doOnce(ctx context.Context, rawURL string, profile *platform.Profile) (*Result, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, eris.Wrap(err, "fetch: create request")
	}
	req.Header.Set("User-Agent", f.opts.UserAgent)
	for k, v := range profile.Headers {
		req.Header.Set(k, v)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, err // classified by resilience.IsTransient
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, eris.Wrap(err, "fetch: read body")
	}

	// Blocked or challenged: permanent for this request, escalate now.
	if resp.StatusCode == http.StatusForbidden || resp.StatusCode == http.StatusTooManyRequests {
		return nil, eris.Wrapf(model.ErrAccessDenied, "fetch: status %d from %s", resp.StatusCode, rawURL)
	}
	if blocked, kind := DetectChallenge(resp.StatusCode, resp.Header, body); blocked {
		return nil, eris.Wrapf(model.ErrAccessDenied, "fetch: challenge detected (%s)", kind)
	}

	if resilience.IsTransientHTTPStatus(resp.StatusCode) {
		return nil, resilience.NewTransientError(
			eris.Errorf("fetch: status %d from %s", resp.StatusCode, rawURL),
			resp.StatusCode,
		)
	}
	if resp.StatusCode >= 400 {
		return nil, eris.Errorf("fetch: status %d from %s", resp.StatusCode, rawURL)
	}

	zap.L().Debug("fetch: page retrieved",
		zap.String("url", rawURL),
		zap.Int("status", resp.StatusCode),
		zap.Int("bytes", len(body)),
	)
	return &Result{Body: body, StatusCode: resp.StatusCode}, nil
}

// classifyFetchErr maps exhausted-retry errors onto the pipeline taxonomy.
func classifyFetchErr(err error, rawURL string) error {
	switch {
	case errors.Is(err, model.ErrAccessDenied),
		errors.Is(err, model.ErrDisallowed),
		errors.Is(err, model.ErrInvalidURL):
		return err
	case isTimeout(err):
		return eris.Wrapf(model.ErrFetchTimeout, "fetch: %s: %v", rawURL, err)
	default:
		return eris.Wrapf(model.ErrFetchFailed, "fetch: %s: %v", rawURL, err)
	}
}

func isTimeout(err error) bool {
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}
	return errors.Is(err, context.DeadlineExceeded)
}
