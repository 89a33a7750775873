package fetcher

import (
	"context"
	"crypto/tls"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"scrapeengine/internal/observability/metrics"
	"scrapeengine/internal/resilience/circuitbreaker"
	"scrapeengine/internal/usecase/fetch"
)

// PageFetcher retrieves the raw HTML of a candidate article page for the
// Content Extractor cascade (internal/usecase/extract) to parse. It shares
// ReadabilityFetcher's SSRF-hardened HTTP client construction — URL
// validation, TLS 1.2 minimum, redirect re-validation, and body size
// limiting — but returns bytes instead of running the Readability
// algorithm, since the cascade implements its own extraction strategies.
//
// Thread safety: PageFetcher is safe for concurrent use.
type PageFetcher struct {
	client         *http.Client
	circuitBreaker *circuitbreaker.CircuitBreaker
	config         ContentFetchConfig
	userAgent      string
}

// Page is the result of a successful fetch: the raw body and the URL the
// response was ultimately served from (which may differ from the requested
// URL after redirects).
type Page struct {
	HTML      []byte
	FinalURL  string
	FetchedAt time.Time
}

// NewPageFetcher builds a PageFetcher. userAgent overrides the client's
// identifying header; pass "" to use entity.DefaultUserAgent.
func NewPageFetcher(config ContentFetchConfig, userAgent string) *PageFetcher {
	cbConfig := circuitbreaker.Config{
		Name:             "page-fetch",
		MaxRequests:      5,
		Interval:         60 * time.Second,
		Timeout:          60 * time.Second,
		FailureThreshold: 0.6,
		MinRequests:      5,
	}
	cb := circuitbreaker.New(cbConfig)

	f := &PageFetcher{
		circuitBreaker: cb,
		config:         config,
		userAgent:      userAgent,
	}

	client := &http.Client{
		Timeout: 30 * time.Second,
		Transport: &http.Transport{
			MaxIdleConns:        100,
			MaxIdleConnsPerHost: 10,
			IdleConnTimeout:     90 * time.Second,
			TLSClientConfig: &tls.Config{
				MinVersion: tls.VersionTLS12,
			},
		},
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			if len(via) >= f.config.MaxRedirects {
				return fmt.Errorf("%w: %d redirects", fetch.ErrTooManyRedirects, len(via))
			}
			if err := validateURL(req.URL.String(), f.config.DenyPrivateIPs); err != nil {
				return fmt.Errorf("redirect target validation failed: %w", err)
			}
			return nil
		},
	}

	f.client = client
	return f
}

// Fetch retrieves urlStr's HTML through the circuit breaker. perRequestTimeout,
// if non-zero, overrides the configured default (used for a source's
// timeout_ms override).
func (f *PageFetcher) Fetch(ctx context.Context, urlStr string, perRequestTimeout time.Duration) (Page, error) {
	if err := validateURL(urlStr, f.config.DenyPrivateIPs); err != nil {
		return Page{}, err
	}

	start := time.Now()
	result, err := f.circuitBreaker.Execute(func() (interface{}, error) {
		return f.doFetch(ctx, urlStr, perRequestTimeout)
	})
	if err != nil {
		metrics.RecordContentFetchFailed(time.Since(start))
		return Page{}, err
	}
	page := result.(Page)
	metrics.RecordContentFetchSuccess(time.Since(start), len(page.HTML))
	return page, nil
}

func (f *PageFetcher) doFetch(ctx context.Context, urlStr string, perRequestTimeout time.Duration) (interface{}, error) {
	timeout := f.config.Timeout
	if perRequestTimeout > 0 {
		timeout = perRequestTimeout
	}

	reqCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(reqCtx, http.MethodGet, urlStr, nil)
	if err != nil {
		return Page{}, fmt.Errorf("%w: failed to create request: %v", fetch.ErrInvalidURL, err)
	}

	ua := f.userAgent
	if ua == "" {
		ua = "ScrapeEngineBot/1.0"
	}
	req.Header.Set("User-Agent", ua)

	resp, err := f.client.Do(req)
	if err != nil {
		if reqCtx.Err() == context.DeadlineExceeded {
			return Page{}, fmt.Errorf("%w: request exceeded %v", fetch.ErrTimeout, timeout)
		}
		if urlErr, ok := err.(*url.Error); ok && urlErr.Err != nil {
			return Page{}, urlErr.Err
		}
		return Page{}, fmt.Errorf("http request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return Page{}, fmt.Errorf("http %d: %s", resp.StatusCode, resp.Status)
	}

	limited := io.LimitReader(resp.Body, f.config.MaxBodySize+1)
	body, err := io.ReadAll(limited)
	if err != nil {
		return Page{}, fmt.Errorf("failed to read response body: %w", err)
	}
	if int64(len(body)) > f.config.MaxBodySize {
		return Page{}, fmt.Errorf("%w: response size %d bytes exceeds limit %d bytes",
			fetch.ErrBodyTooLarge, len(body), f.config.MaxBodySize)
	}

	finalURL := urlStr
	if resp.Request != nil && resp.Request.URL != nil {
		finalURL = resp.Request.URL.String()
	}

	return Page{HTML: body, FinalURL: finalURL, FetchedAt: time.Now().UTC()}, nil
}
