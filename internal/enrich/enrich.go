// Package enrich resolves competitor website URLs through web search.
// Enrichment is best-effort: failures leave the competitor URL untouched
// and never abort an analysis.
package enrich

import (
	"context"
	"net/url"
	"sort"
	"strings"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/seomentor/seomentor-api/internal/config"
	"github.com/seomentor/seomentor-api/internal/model"
	"github.com/seomentor/seomentor-api/pkg/duckduckgo"
)

// deniedHosts are aggregator and social hosts that are never a
// competitor's own website.
var deniedHosts = []string{
	"duckduckgo.com",
	"google.com",
	"bing.com",
	"yahoo.com",
	"facebook.com",
	"instagram.com",
	"x.com",
	"twitter.com",
	"linkedin.com",
	"youtube.com",
	"tiktok.com",
	"wikipedia.org",
}

// maxConcurrentLookups bounds parallel competitor resolutions so a single
// analysis cannot burst the search endpoint.
const maxConcurrentLookups = 3

// Resolver fills in competitor URLs using a search client.
type Resolver struct {
	search     duckduckgo.Client
	maxResults int
	enabled    bool
	log        *zap.Logger
}

// NewResolver creates a Resolver. A nil client or disabled config yields a
// no-op resolver.
func NewResolver(search duckduckgo.Client, cfg config.SearchConfig, log *zap.Logger) *Resolver {
	if log == nil {
		log = zap.L()
	}
	maxResults := cfg.MaxResults
	if maxResults <= 0 {
		maxResults = 6
	}
	return &Resolver{
		search:     search,
		maxResults: maxResults,
		enabled:    cfg.Enabled && search != nil,
		log:        log,
	}
}

// Enrich resolves missing or unusable competitor URLs in place.
func (r *Resolver) Enrich(ctx context.Context, result *model.AnalysisResult, country, language string) {
	if result == nil || !r.enabled {
		return
	}

	var mu sync.Mutex
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxConcurrentLookups)

	for i := range result.Competitors {
		idx := i
		comp := result.Competitors[i]

		existing := NormalizeExternalURL(comp.URL)
		if existing != "" && !isDeniedHost(hostFromURL(existing)) {
			mu.Lock()
			result.Competitors[idx].URL = existing
			mu.Unlock()
			continue
		}

		name := strings.TrimSpace(comp.Name)
		if name == "" {
			mu.Lock()
			result.Competitors[idx].URL = existing
			mu.Unlock()
			continue
		}

		g.Go(func() error {
			resolved := r.resolve(gctx, name, country, language)
			if resolved == "" {
				// No candidate anywhere: keep whatever was already there.
				resolved = existing
			}
			mu.Lock()
			result.Competitors[idx].URL = resolved
			mu.Unlock()
			return nil
		})
	}

	// Goroutines never return errors; Wait only joins them.
	_ = g.Wait()
}

// resolve searches for a competitor's own website, preferring official
// domains and falling back to a wolt.com listing.
func (r *Resolver) resolve(ctx context.Context, name, country, language string) string {
	officialQueries := []string{
		`"` + name + `" official website ` + country,
		`"` + name + `" ` + country + " " + language,
	}
	if best := r.bestCandidate(ctx, officialQueries, name, func(host string) bool {
		return host != "" && !isDeniedHost(host) && !isWoltHost(host)
	}); best != "" {
		return best
	}

	woltQueries := []string{
		`site:wolt.com "` + name + `" ` + country,
		`"` + name + `" wolt ` + country,
	}
	return r.firstCandidate(ctx, woltQueries, isWoltHost)
}

// firstCandidate returns the first result across queries whose host passes
// accept, preserving query and result order.
func (r *Resolver) firstCandidate(ctx context.Context, queries []string, accept func(host string) bool) string {
	for _, q := range queries {
		urls, err := r.search.Search(ctx, q, r.maxResults)
		if err != nil {
			r.log.Debug("competitor search failed",
				zap.String("query", q),
				zap.Error(err))
			continue
		}
		for _, u := range urls {
			if accept(hostFromURL(u)) {
				return u
			}
		}
	}
	return ""
}

// bestCandidate runs the queries, scores every result URL, and returns the
// highest-scoring one whose host passes accept.
func (r *Resolver) bestCandidate(ctx context.Context, queries []string, name string, accept func(host string) bool) string {
	var candidates []string
	seen := make(map[string]struct{})
	for _, q := range queries {
		urls, err := r.search.Search(ctx, q, r.maxResults)
		if err != nil {
			r.log.Debug("competitor search failed",
				zap.String("query", q),
				zap.Error(err))
			continue
		}
		for _, u := range urls {
			if _, dup := seen[u]; dup {
				continue
			}
			seen[u] = struct{}{}
			candidates = append(candidates, u)
		}
	}
	if len(candidates) == 0 {
		return ""
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		return scoreCandidate(candidates[i], name) > scoreCandidate(candidates[j], name)
	})
	for _, candidate := range candidates {
		if accept(hostFromURL(candidate)) {
			return candidate
		}
	}
	return ""
}

// scoreCandidate ranks a result URL as a competitor's own website.
func scoreCandidate(rawURL, name string) int {
	host := hostFromURL(rawURL)
	if host == "" {
		return -1000
	}
	if isDeniedHost(host) {
		return -900
	}

	score := 0
	if isWoltHost(host) {
		score -= 300
	}

	parsed, err := url.Parse(rawURL)
	if err == nil {
		path := strings.TrimRight(parsed.Path, "/")
		if path == "" {
			score += 8
		}
	}

	for _, token := range nameTokens(name) {
		if strings.Contains(host, token) {
			score += 30
			break
		}
	}
	if len(host) <= 24 {
		score += 4
	}
	return score
}

// nameTokens splits a business name into lowercase tokens of at least
// three characters.
func nameTokens(name string) []string {
	fields := strings.FieldsFunc(strings.ToLower(name), func(r rune) bool {
		return !('a' <= r && r <= 'z') && !('0' <= r && r <= '9')
	})
	var tokens []string
	for _, f := range fields {
		if len(f) >= 3 {
			tokens = append(tokens, f)
		}
	}
	return tokens
}

// hostFromURL returns the lowercase host with any "www." prefix removed,
// or "" if the URL does not parse.
func hostFromURL(rawURL string) string {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}
	host := strings.ToLower(parsed.Hostname())
	return strings.TrimPrefix(host, "www.")
}

func isDeniedHost(host string) bool {
	if host == "" {
		return true
	}
	for _, denied := range deniedHosts {
		if host == denied || strings.HasSuffix(host, "."+denied) {
			return true
		}
	}
	return false
}

func isWoltHost(host string) bool {
	return host == "wolt.com" || strings.HasSuffix(host, ".wolt.com")
}

// NormalizeExternalURL canonicalizes a user- or model-supplied URL.
// Returns "" when the value is not a usable absolute http(s) URL.
func NormalizeExternalURL(raw string) string {
	return duckduckgo.NormalizeResultURL(raw)
}
