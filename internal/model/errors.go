package model

import "errors"

// Pipeline failure taxonomy. Components wrap these sentinels with context via
// eris so callers can classify with errors.Is through the chain.
var (
	// ErrInvalidURL: the input is not a well-formed absolute HTTP(S) URL.
	// Surfaces immediately to the caller; never retried or searched for.
	ErrInvalidURL = errors.New("invalid url")

	// ErrDisallowed: the domain's robots exclusion rules forbid fetching.
	ErrDisallowed = errors.New("disallowed by robots exclusion")

	// ErrAccessDenied: the site blocked or challenged the request
	// (403/429, captcha, challenge page). Not transient; no retries.
	ErrAccessDenied = errors.New("access denied")

	// ErrFetchTimeout: the fetch timed out after exhausting retries.
	ErrFetchTimeout = errors.New("fetch timeout")

	// ErrFetchFailed: transient network failure exhausted its retries.
	ErrFetchFailed = errors.New("fetch failed")

	// ErrSearchExhausted: fallback search produced zero usable results.
	// The only failure that ends the pipeline without a recommendation.
	ErrSearchExhausted = errors.New("search exhausted")
)
