package marketdata

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/rotisserie/eris"
)

// ErrUnknownCategory indicates the service has no pricing data for the
// requested category.
var ErrUnknownCategory = eris.New("marketdata: unknown category")

// Client looks up market price distributions by product category.
type Client interface {
	CategoryPriceRange(ctx context.Context, category string) (*PriceRange, error)
}

// PriceRange describes the observed price distribution for a category.
type PriceRange struct {
	Category   string  `json:"category"`
	Min        float64 `json:"min"`
	Median     float64 `json:"median"`
	Max        float64 `json:"max"`
	Currency   string  `json:"currency"`
	SampleSize int     `json:"sample_size"`
}

// Option configures the client.
type Option func(*httpClient)

// WithHTTPClient overrides the default http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *httpClient) {
		c.http = hc
	}
}

type httpClient struct {
	apiKey  string
	baseURL string
	http    *http.Client
}

// NewClient creates a market data client against the given base URL.
func NewClient(baseURL, apiKey string, opts ...Option) Client {
	c := &httpClient{
		apiKey:  apiKey,
		baseURL: baseURL,
		http: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

func (c *httpClient) CategoryPriceRange(ctx context.Context, category string) (*PriceRange, error) {
	endpoint := c.baseURL + "/v1/categories/" + url.PathEscape(category) + "/prices"
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, eris.Wrap(err, "marketdata: create request")
	}
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, eris.Wrap(err, "marketdata: send request")
	}
	defer resp.Body.Close() //nolint:errcheck

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, eris.Wrap(err, "marketdata: read response")
	}

	if resp.StatusCode == http.StatusNotFound {
		return nil, eris.Wrapf(ErrUnknownCategory, "category %q", category)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, eris.Errorf("marketdata: unexpected status %d: %s", resp.StatusCode, string(respBody))
	}

	var result PriceRange
	if err := json.Unmarshal(respBody, &result); err != nil {
		return nil, eris.Wrap(err, "marketdata: unmarshal response")
	}

	return &result, nil
}
