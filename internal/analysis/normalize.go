package analysis

import (
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/seomentor/seomentor-api/internal/model"
)

var (
	woltURLRe    = regexp.MustCompile(`(?i)https?://[^\s)]*wolt\.com[^\s)]*`)
	fullURLRe    = regexp.MustCompile(`(?i)https?://[^\s)]+`)
	bareDomainRe = regexp.MustCompile(`(?i)\b(?:[a-z0-9-]+\.)+[a-z]{2,}(?:/[^\s)]*)?`)
)

// NormalizeResult coerces a weakly-typed parsed object into a well-formed
// AnalysisResult. Every field has a safe coercion; the function never fails.
func NormalizeResult(raw map[string]any, planDays int) *model.AnalysisResult {
	score := toNumber(raw["seo_score"])
	if score < 0 {
		score = 0
	}
	if score > 100 {
		score = 100
	}

	return &model.AnalysisResult{
		SEOScore:    score,
		Issues:      stringList(raw["issues"]),
		Competitors: competitorList(raw["competitors"]),
		KeywordGaps: stringList(raw["keyword_gaps"]),
		Roadmap:     roadmapList(raw["roadmap"], planDays),
	}
}

// toNumber passes numeric values through and coerces everything else to 0.
func toNumber(v any) float64 {
	switch n := v.(type) {
	case float64:
		return n
	case float32:
		return float64(n)
	case int:
		return float64(n)
	case int64:
		return float64(n)
	default:
		return 0
	}
}

// toDay coerces a roadmap day like toNumber but also accepts integral
// strings and reports whether the coercion succeeded.
func toDay(v any) (int, bool) {
	switch n := v.(type) {
	case float64:
		return int(n), true
	case int:
		return n, true
	case int64:
		return int(n), true
	case string:
		if day, err := strconv.Atoi(strings.TrimSpace(n)); err == nil {
			return day, true
		}
		return 0, false
	default:
		return 0, false
	}
}

// stringList keeps non-null entries of a list input, stringified. Entries
// are not trimmed or de-blanked here; the quality gate counts non-empty
// entries itself.
func stringList(v any) []string {
	items, ok := v.([]any)
	if !ok {
		return []string{}
	}
	out := make([]string, 0, len(items))
	for _, item := range items {
		if item == nil {
			continue
		}
		if s, ok := item.(string); ok {
			out = append(out, s)
		} else {
			out = append(out, fmt.Sprint(item))
		}
	}
	return out
}

func competitorList(v any) []model.Competitor {
	items, ok := v.([]any)
	if !ok {
		return []model.Competitor{}
	}

	out := make([]model.Competitor, 0, len(items))
	for _, item := range items {
		entry, ok := item.(map[string]any)
		if !ok {
			continue
		}
		name, hasName := entry["name"]
		reason, hasReason := entry["reason"]
		if (!hasName || name == nil) && (!hasReason || reason == nil) {
			continue
		}

		nameStr := stringify(name)
		reasonStr := stringify(reason)
		urlStr := strings.TrimSpace(stringify(entry["url"]))

		normalized := ExtractDomain(urlStr)
		if normalized == "" {
			normalized = ExtractDomain(reasonStr)
		}

		out = append(out, model.Competitor{
			Name:   nameStr,
			Reason: reasonStr,
			URL:    normalized,
		})
	}
	return out
}

func roadmapList(v any, planDays int) []model.RoadmapTask {
	items, ok := v.([]any)
	if !ok {
		return []model.RoadmapTask{}
	}

	out := make([]model.RoadmapTask, 0, len(items))
	for i, item := range items {
		entry, ok := item.(map[string]any)
		if !ok {
			continue
		}
		day, ok := toDay(entry["day"])
		if !ok {
			day = i + 1 // position fallback
		}
		if day < 1 || day > planDays {
			continue
		}
		out = append(out, model.RoadmapTask{Day: day, Task: stringify(entry["task"])})
	}

	// Stable sort: duplicate days keep their original relative order.
	sort.SliceStable(out, func(a, b int) bool { return out[a].Day < out[b].Day })

	if len(out) > planDays {
		out = out[:planDays]
	}
	return out
}

// ExtractDomain pulls a usable URL out of free text. Wolt listing URLs are
// preferred, then any full URL, then a bare domain pattern with a scheme
// prefixed. Returns "" when nothing matches.
func ExtractDomain(text string) string {
	if text == "" {
		return ""
	}

	if m := woltURLRe.FindString(text); m != "" {
		return strings.TrimRight(m, "),.;")
	}

	m := fullURLRe.FindString(text)
	if m == "" {
		m = bareDomainRe.FindString(text)
	}
	if m == "" {
		return ""
	}

	m = strings.TrimRight(m, "),.;")
	lower := strings.ToLower(m)
	if strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://") {
		return m
	}
	return "https://" + m
}

func stringify(v any) string {
	if v == nil {
		return ""
	}
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprint(v)
}
