// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package httputil provides the rate-limited HTTP client every upstream call
// goes through. It enforces the OpenAlex politeness contract: an identifying
// mailto parameter on every request, a shared minimum inter-request spacing,
// and bounded retries with exponential backoff on transient failures.
package httputil

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/pdiddy/scholar-engine/internal/webcache"
	"github.com/pdiddy/scholar-engine/pkg/types"
)

// RetryBaseDelay controls the base duration for exponential backoff on
// transient upstream failures. Tests override this to avoid real sleeps.
var RetryBaseDelay = 500 * time.Millisecond

const (
	defaultMaxAttempts     = 3
	defaultRequestInterval = 100 * time.Millisecond
	defaultTimeout         = 30 * time.Second
	defaultUserAgent       = "scholar-engine/0.1"
)

// transientStatuses are retried with backoff; any other non-2xx status is
// terminal and surfaced immediately.
var transientStatuses = map[int]bool{
	http.StatusRequestTimeout:      true, // 408
	http.StatusTooEarly:            true, // 425
	http.StatusTooManyRequests:     true, // 429
	http.StatusInternalServerError: true, // 500
	http.StatusBadGateway:          true, // 502
	http.StatusServiceUnavailable:  true, // 503
	http.StatusGatewayTimeout:      true, // 504
}

// StatusError reports a non-2xx response from an upstream service.
type StatusError struct {
	URL        string
	StatusCode int
}

// Error implements the error interface.
func (e *StatusError) Error() string {
	return fmt.Sprintf("HTTP %d from %s", e.StatusCode, e.URL)
}

// Transient reports whether the status is worth retrying.
func (e *StatusError) Transient() bool {
	return transientStatuses[e.StatusCode]
}

// Client is the process-wide rate-limited HTTP client. The limiter is the
// only state shared between concurrent requests; the minimum inter-request
// spacing applies across all callers because upstream throttles per
// polite-pool identity, not per logical query.
type Client struct {
	http        *http.Client
	limiter     *rate.Limiter
	mailto      string
	userAgent   string
	maxAttempts int
	cache       *webcache.Cache
}

// New builds a Client from cfg. The mailto contact is the politeness
// identity; its absence is a configuration error raised here, before any
// request can be attempted. cache may be nil to disable response caching.
func New(cfg types.EngineConfig, cache *webcache.Cache) (*Client, error) {
	if strings.TrimSpace(cfg.Mailto) == "" {
		return nil, errors.New("no contact email configured: set mailto in config or .secrets/openalex-email")
	}

	interval := cfg.RequestInterval
	if interval <= 0 {
		interval = defaultRequestInterval
	}
	attempts := cfg.MaxAttempts
	if attempts <= 0 {
		attempts = defaultMaxAttempts
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	userAgent := cfg.UserAgent
	if userAgent == "" {
		userAgent = defaultUserAgent
	}

	return &Client{
		http:        &http.Client{Timeout: timeout},
		limiter:     rate.NewLimiter(rate.Every(interval), 1),
		mailto:      strings.TrimSpace(cfg.Mailto),
		userAgent:   userAgent,
		maxAttempts: attempts,
		cache:       cache,
	}, nil
}

// Mailto returns the configured contact address.
func (c *Client) Mailto() string { return c.mailto }

// Get fetches rawURL with params and the mailto identity merged into the
// query string and returns the response body. Transient failures (network
// errors, 408/425/429/5xx) are retried with exponential backoff up to the
// attempt ceiling; terminal statuses surface immediately as *StatusError.
// Cancellation of ctx aborts retries early and returns ctx.Err().
func (c *Client) Get(ctx context.Context, rawURL string, params url.Values) ([]byte, error) {
	return c.get(ctx, rawURL, params, true)
}

// GetText fetches rawURL and returns the response body as a string. Used for
// full-text retrieval, where the target URL must pass through untouched: the
// contact identity rides on the User-Agent header instead of a query
// parameter.
func (c *Client) GetText(ctx context.Context, rawURL string) (string, error) {
	body, err := c.get(ctx, rawURL, nil, false)
	return string(body), err
}

func (c *Client) get(ctx context.Context, rawURL string, params url.Values, identify bool) ([]byte, error) {
	reqURL := rawURL
	if identify {
		var err error
		reqURL, err = c.buildURL(rawURL, params)
		if err != nil {
			return nil, err
		}
	}

	if body, ok := c.cache.Get(reqURL); ok {
		return body, nil
	}

	var lastErr error
	retryAfter := time.Duration(0)

	for attempt := 0; attempt < c.maxAttempts; attempt++ {
		if attempt > 0 {
			backoff := time.Duration(math.Pow(2, float64(attempt-1))) * RetryBaseDelay
			if retryAfter > backoff {
				backoff = retryAfter
			}
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(backoff):
			}
		}
		retryAfter = 0

		// The limiter gate applies to every outbound attempt, retries
		// included.
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, err
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
		if err != nil {
			return nil, fmt.Errorf("creating request: %w", err)
		}
		req.Header.Set("User-Agent", fmt.Sprintf("%s (mailto:%s)", c.userAgent, c.mailto))

		resp, err := c.http.Do(req)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			lastErr = fmt.Errorf("request %s: %w", rawURL, err)
			continue
		}

		body, readErr := io.ReadAll(resp.Body)
		resp.Body.Close()

		if resp.StatusCode >= 200 && resp.StatusCode < 300 {
			if readErr != nil {
				lastErr = fmt.Errorf("reading response from %s: %w", rawURL, readErr)
				continue
			}
			c.cache.Put(reqURL, body)
			return body, nil
		}

		serr := &StatusError{URL: rawURL, StatusCode: resp.StatusCode}
		if !serr.Transient() {
			return nil, serr
		}
		lastErr = serr
		retryAfter = parseRetryAfter(resp.Header.Get("Retry-After"))
	}

	return nil, fmt.Errorf("giving up after %d attempts: %w", c.maxAttempts, lastErr)
}

// buildURL merges params and the mailto identity into rawURL's query string.
func (c *Client) buildURL(rawURL string, params url.Values) (string, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", fmt.Errorf("invalid URL %q: %w", rawURL, err)
	}

	q := u.Query()
	for key, values := range params {
		q[key] = values
	}
	q.Set("mailto", c.mailto)
	u.RawQuery = q.Encode()
	return u.String(), nil
}

// parseRetryAfter interprets a Retry-After header, seconds form only. An
// HTTP-date value falls back to the computed backoff.
func parseRetryAfter(header string) time.Duration {
	if header == "" {
		return 0
	}
	secs, err := strconv.Atoi(header)
	if err != nil || secs < 0 {
		return 0
	}
	return time.Duration(secs) * time.Second
}
