// Package scraper fetches a site's homepage and extracts on-page SEO
// signals. It never crawls past the homepage, and a failed fetch still
// yields usable (zeroed) metrics so an audit can proceed.
package scraper

import (
	"context"
	"encoding/json"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"

	"github.com/seomentor/seomentor-api/internal/config"
	"github.com/seomentor/seomentor-api/internal/model"
)

const (
	defaultTimeout      = 10 * time.Second
	defaultUserAgent    = "Mozilla/5.0 (compatible; SEOMentorBot/1.0)"
	defaultMaxBodyBytes = 2 << 20
)

// Scraper fetches homepages over HTTP.
type Scraper struct {
	client       *http.Client
	userAgent    string
	maxBodyBytes int64
	log          *zap.Logger
}

// New creates a Scraper from config. Zero-valued config fields fall back
// to defaults.
func New(cfg config.ScrapeConfig, log *zap.Logger) *Scraper {
	if log == nil {
		log = zap.L()
	}
	timeout := defaultTimeout
	if cfg.TimeoutSecs > 0 {
		timeout = time.Duration(cfg.TimeoutSecs) * time.Second
	}
	ua := cfg.UserAgent
	if ua == "" {
		ua = defaultUserAgent
	}
	maxBody := cfg.MaxBodyBytes
	if maxBody <= 0 {
		maxBody = defaultMaxBodyBytes
	}
	return &Scraper{
		client: &http.Client{
			Timeout: timeout,
			Transport: &http.Transport{
				DialContext: (&net.Dialer{
					Timeout: timeout,
				}).DialContext,
				TLSHandshakeTimeout: timeout,
			},
		},
		userAgent:    ua,
		maxBodyBytes: maxBody,
		log:          log,
	}
}

// ScrapeHomepage fetches targetURL and extracts metrics. On any failure it
// returns zeroed metrics with whatever status was observed; it never errors.
func (s *Scraper) ScrapeHomepage(ctx context.Context, targetURL string) *model.ScrapedMetrics {
	metrics := &model.ScrapedMetrics{}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, targetURL, nil)
	if err != nil {
		s.log.Warn("scrape request invalid", zap.String("url", targetURL), zap.Error(err))
		return metrics
	}
	req.Header.Set("User-Agent", s.userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml")

	start := time.Now()
	resp, err := s.client.Do(req)
	if err != nil {
		s.log.Warn("scrape fetch failed", zap.String("url", targetURL), zap.Error(err))
		return metrics
	}
	defer func() { _ = resp.Body.Close() }()

	metrics.HTTPStatus = resp.StatusCode

	body, err := io.ReadAll(io.LimitReader(resp.Body, s.maxBodyBytes))
	metrics.ResponseTimeMS = time.Since(start).Milliseconds()
	if err != nil {
		s.log.Warn("scrape read failed", zap.String("url", targetURL), zap.Error(err))
		return metrics
	}
	if resp.StatusCode >= 400 {
		s.log.Warn("scrape non-success status",
			zap.String("url", targetURL),
			zap.Int("status", resp.StatusCode))
		return metrics
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(string(body)))
	if err != nil {
		s.log.Warn("scrape parse failed", zap.String("url", targetURL), zap.Error(err))
		return metrics
	}

	extractMetrics(doc, targetURL, metrics)
	return metrics
}

// extractMetrics fills metrics from a parsed document.
func extractMetrics(doc *goquery.Document, targetURL string, metrics *model.ScrapedMetrics) {
	// JSON-LD lives in script tags, so read it before stripping scripts
	// for the text-based metrics.
	metrics.StructuredDataTypes = structuredDataTypes(doc)
	metrics.HasStructuredData = len(metrics.StructuredDataTypes) > 0 ||
		doc.Find(`script[type="application/ld+json"]`).Length() > 0

	doc.Find("script, style").Remove()

	metrics.Title = strings.TrimSpace(doc.Find("title").First().Text())
	metrics.MetaDescription = metaContent(doc, `meta[name="description"]`)

	metrics.H1Count = doc.Find("h1").Length()
	metrics.H2Count = doc.Find("h2").Length()
	metrics.H3Count = doc.Find("h3").Length()
	doc.Find("h1").Each(func(_ int, sel *goquery.Selection) {
		if text := strings.TrimSpace(sel.Text()); text != "" {
			metrics.H1Texts = append(metrics.H1Texts, text)
		}
	})

	metrics.WordCount = len(strings.Fields(doc.Find("body").Text()))

	internal, external := countLinks(doc, targetURL)
	metrics.InternalLinks = internal
	metrics.ExternalLinks = external

	doc.Find("img").Each(func(_ int, sel *goquery.Selection) {
		metrics.TotalImages++
		alt, exists := sel.Attr("alt")
		if !exists || strings.TrimSpace(alt) == "" {
			metrics.MissingAltImages++
		}
	})

	metrics.CanonicalURL, _ = doc.Find(`link[rel="canonical"]`).First().Attr("href")
	metrics.CanonicalURL = strings.TrimSpace(metrics.CanonicalURL)
	metrics.RobotsMeta = metaContent(doc, `meta[name="robots"]`)
	metrics.HasViewportMeta = doc.Find(`meta[name="viewport"]`).Length() > 0

	metrics.OGTitle = metaProperty(doc, "og:title")
	metrics.OGDescription = metaProperty(doc, "og:description")
	metrics.OGImage = metaProperty(doc, "og:image")

	doc.Find(`link[rel="alternate"][hreflang]`).Each(func(_ int, sel *goquery.Selection) {
		if lang, ok := sel.Attr("hreflang"); ok && strings.TrimSpace(lang) != "" {
			metrics.HreflangTags = append(metrics.HreflangTags, strings.TrimSpace(lang))
		}
	})
}

func metaContent(doc *goquery.Document, selector string) string {
	content, _ := doc.Find(selector).First().Attr("content")
	return strings.TrimSpace(content)
}

func metaProperty(doc *goquery.Document, property string) string {
	return metaContent(doc, `meta[property="`+property+`"]`)
}

// countLinks classifies anchors as internal (same host or root-relative)
// or external. Fragment-only, javascript:, mailto: and tel: links are
// ignored.
func countLinks(doc *goquery.Document, targetURL string) (internal, external int) {
	base, err := url.Parse(targetURL)
	if err != nil {
		base = &url.URL{}
	}
	baseHost := strings.ToLower(base.Hostname())

	doc.Find("a[href]").Each(func(_ int, sel *goquery.Selection) {
		href := strings.TrimSpace(sel.AttrOr("href", ""))
		lower := strings.ToLower(href)
		if href == "" || strings.HasPrefix(href, "#") ||
			strings.HasPrefix(lower, "javascript:") ||
			strings.HasPrefix(lower, "mailto:") ||
			strings.HasPrefix(lower, "tel:") {
			return
		}
		if strings.HasPrefix(href, "/") && !strings.HasPrefix(href, "//") {
			internal++
			return
		}
		resolved, err := base.Parse(href)
		if err != nil {
			return
		}
		if strings.ToLower(resolved.Hostname()) == baseHost {
			internal++
		} else {
			external++
		}
	})
	return internal, external
}

// structuredDataTypes collects the @type values from JSON-LD blocks,
// including entries nested under @graph.
func structuredDataTypes(doc *goquery.Document) []string {
	seen := make(map[string]struct{})
	var types []string
	add := func(t string) {
		t = strings.TrimSpace(t)
		if t == "" {
			return
		}
		if _, dup := seen[t]; dup {
			return
		}
		seen[t] = struct{}{}
		types = append(types, t)
	}

	doc.Find(`script[type="application/ld+json"]`).Each(func(_ int, sel *goquery.Selection) {
		var node any
		if err := json.Unmarshal([]byte(sel.Text()), &node); err != nil {
			return
		}
		collectTypes(node, add)
	})
	return types
}

func collectTypes(node any, add func(string)) {
	switch v := node.(type) {
	case map[string]any:
		switch t := v["@type"].(type) {
		case string:
			add(t)
		case []any:
			for _, entry := range t {
				if s, ok := entry.(string); ok {
					add(s)
				}
			}
		}
		if graph, ok := v["@graph"].([]any); ok {
			for _, entry := range graph {
				collectTypes(entry, add)
			}
		}
	case []any:
		for _, entry := range v {
			collectTypes(entry, add)
		}
	}
}
