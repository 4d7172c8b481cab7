// Package duckduckgo provides a client for the DuckDuckGo HTML search
// endpoint. It returns normalized result URLs only; no API key is required.
package duckduckgo

import (
	"context"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/rotisserie/eris"
	"golang.org/x/time/rate"

	"github.com/seomentor/seomentor-api/internal/resilience"
)

// Client defines the DuckDuckGo search operations.
type Client interface {
	// Search returns up to max normalized result URLs for the query.
	Search(ctx context.Context, query string, max int) ([]string, error)
}

// Option configures the DuckDuckGo client.
type Option func(*htmlClient)

// WithBaseURL sets a custom endpoint (for testing).
func WithBaseURL(u string) Option {
	return func(c *htmlClient) {
		c.baseURL = u
	}
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *htmlClient) {
		c.http = hc
	}
}

// WithUserAgent overrides the User-Agent header sent with each request.
func WithUserAgent(ua string) Option {
	return func(c *htmlClient) {
		c.userAgent = ua
	}
}

// WithRateLimit caps outgoing requests per second. Zero or negative
// disables limiting.
func WithRateLimit(perSec float64) Option {
	return func(c *htmlClient) {
		if perSec > 0 {
			c.limiter = rate.NewLimiter(rate.Limit(perSec), 1)
		} else {
			c.limiter = nil
		}
	}
}

type htmlClient struct {
	baseURL   string
	userAgent string
	http      *http.Client
	limiter   *rate.Limiter
}

// NewClient creates a DuckDuckGo HTML search client.
func NewClient(opts ...Option) Client {
	c := &htmlClient{
		baseURL:   "https://duckduckgo.com/html/",
		userAgent: "Mozilla/5.0 (compatible; seomentor/1.0)",
		http: &http.Client{
			Timeout: 4 * time.Second,
			Transport: &http.Transport{
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
			},
		},
		limiter: rate.NewLimiter(rate.Limit(2), 1),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *htmlClient) Search(ctx context.Context, query string, max int) ([]string, error) {
	if max <= 0 {
		return nil, nil
	}
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, eris.Wrap(err, "duckduckgo: rate limit wait")
		}
	}

	reqURL := c.baseURL + "?q=" + url.QueryEscape(query)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, eris.Wrap(err, "duckduckgo: create request")
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "text/html")

	resp, err := c.retryDo(ctx, req)
	if err != nil {
		return nil, eris.Wrap(err, "duckduckgo: request failed")
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, eris.Errorf("duckduckgo: unexpected status %d", resp.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, eris.Wrap(err, "duckduckgo: parse results page")
	}

	return extractResultURLs(doc, max), nil
}

// retryDo executes an HTTP request with exponential backoff retries on
// transient failures. The caller owns the response body on success.
func (c *htmlClient) retryDo(ctx context.Context, req *http.Request) (*http.Response, error) {
	cfg := resilience.DefaultRetryConfig()
	cfg.InitialBackoff = 500 * time.Millisecond
	cfg.OnRetry = resilience.RetryLogger("duckduckgo", "search")

	return resilience.DoVal(ctx, cfg, func(ctx context.Context) (*http.Response, error) {
		resp, err := c.http.Do(req.Clone(ctx))
		if err != nil {
			return nil, err
		}
		if resilience.IsTransientHTTPStatus(resp.StatusCode) {
			_ = resp.Body.Close()
			return nil, resilience.NewTransientError(
				eris.Errorf("duckduckgo: status %d", resp.StatusCode), resp.StatusCode)
		}
		return resp, nil
	})
}

// extractResultURLs collects normalized hrefs from result anchors,
// deduplicating and capping at max.
func extractResultURLs(doc *goquery.Document, max int) []string {
	seen := make(map[string]struct{})
	var urls []string
	doc.Find("a.result__a").EachWithBreak(func(_ int, sel *goquery.Selection) bool {
		href, ok := sel.Attr("href")
		if !ok {
			return true
		}
		normalized := NormalizeResultURL(href)
		if normalized == "" {
			return true
		}
		if _, dup := seen[normalized]; dup {
			return true
		}
		seen[normalized] = struct{}{}
		urls = append(urls, normalized)
		return len(urls) < max
	})
	return urls
}

// NormalizeResultURL unwraps DuckDuckGo redirect links and canonicalizes
// the target. Returns "" for anything that is not an absolute http(s) URL.
func NormalizeResultURL(raw string) string {
	unwrapped := unwrapRedirect(strings.TrimSpace(raw))
	if unwrapped == "" {
		return ""
	}
	if strings.HasPrefix(unwrapped, "//") {
		unwrapped = "https:" + unwrapped
	}
	if strings.HasPrefix(unwrapped, "/") {
		return ""
	}
	if lower := strings.ToLower(unwrapped); !strings.HasPrefix(lower, "http://") && !strings.HasPrefix(lower, "https://") {
		unwrapped = "https://" + unwrapped
	}
	unwrapped = strings.TrimRight(unwrapped, "),.;")
	parsed, err := url.Parse(unwrapped)
	if err != nil {
		return ""
	}
	if (parsed.Scheme != "http" && parsed.Scheme != "https") || parsed.Host == "" {
		return ""
	}
	parsed.Fragment = ""
	return parsed.String()
}

// unwrapRedirect extracts the uddg target from DuckDuckGo redirect URLs.
func unwrapRedirect(raw string) string {
	if raw == "" {
		return ""
	}
	if !strings.Contains(raw, "duckduckgo.com/l/") && !strings.Contains(raw, "uddg=") {
		return raw
	}
	candidate := raw
	if strings.HasPrefix(candidate, "//") {
		candidate = "https:" + candidate
	}
	parsed, err := url.Parse(candidate)
	if err != nil {
		return raw
	}
	target := parsed.Query().Get("uddg")
	if target == "" {
		return raw
	}
	return target
}
