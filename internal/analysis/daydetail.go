package analysis

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/seomentor/seomentor-api/internal/jsonrepair"
	"github.com/seomentor/seomentor-api/internal/llm"
	"github.com/seomentor/seomentor-api/internal/model"
	"github.com/seomentor/seomentor-api/internal/prompt"
)

const (
	defaultDetailTokens  = 900
	detailChecklistMin   = 3
	detailChecklistMax   = 6
	fallbackTaskFallback = "Execute today's SEO task."
)

// Generator expands roadmap tasks into day details. Any failure in the model
// path yields the keyword-matched canned detail, tagged as fallback so
// callers never cache it as real content.
type Generator struct {
	invoker      Invoker
	detailTokens int64
	log          *zap.Logger
}

// NewGenerator creates a Generator. invoker may be nil (no credential);
// detailTokens <= 0 uses the default budget.
func NewGenerator(invoker Invoker, detailTokens int64, log *zap.Logger) *Generator {
	if detailTokens <= 0 {
		detailTokens = defaultDetailTokens
	}
	if log == nil {
		log = zap.L()
	}
	return &Generator{invoker: invoker, detailTokens: detailTokens, log: log}
}

// Generate returns the detail for one roadmap task and whether it is the
// canned fallback. Never returns an error.
func (g *Generator) Generate(ctx context.Context, req model.AnalysisRequest, result *model.AnalysisResult, task model.RoadmapTask) (model.DayTaskDetail, bool) {
	if g.invoker == nil {
		g.log.Warn("no model credential configured, using fallback day detail",
			zap.Int("day", task.Day))
		return FallbackDayDetail(task.Task, task.Day), true
	}

	userMsg := prompt.DayDetail(req, result, task)

	parsed, stopReason := g.invokeAndParse(ctx, userMsg, g.detailTokens)
	if parsed == nil {
		// Truncated replies get a larger budget on retry, invalid ones a smaller one.
		retryTokens := max64(400, g.detailTokens/2)
		if stopReason == "max_tokens" {
			retryTokens = max64(1200, g.detailTokens+300)
		}
		parsed, _ = g.invokeAndParse(ctx, userMsg+prompt.DetailRetrySuffix, retryTokens)
	}

	if parsed != nil {
		if detail, ok := normalizeDetail(parsed); ok {
			return detail, false
		}
		g.log.Warn("day detail failed normalization, using fallback", zap.Int("day", task.Day))
	}

	return FallbackDayDetail(task.Task, task.Day), true
}

func (g *Generator) invokeAndParse(ctx context.Context, userMsg string, maxTokens int64) (map[string]any, string) {
	comp, err := g.invoker.Invoke(ctx, llm.Request{
		System:    prompt.DetailSystem,
		Prompt:    userMsg,
		MaxTokens: maxTokens,
	})
	if err != nil {
		g.log.Warn("day detail invocation failed", zap.Error(err))
		return nil, ""
	}

	parsed, ok := jsonrepair.ExtractLenient(comp.Text)
	if !ok {
		g.log.Warn("day detail response did not parse",
			zap.String("model", comp.Model),
			zap.String("stop_reason", comp.StopReason),
			zap.String("raw_head", head(comp.Text, 500)))
		return nil, comp.StopReason
	}
	return parsed, comp.StopReason
}

// normalizeDetail enforces the detail shape: non-empty description and kpi,
// checklist between 3 and 6 entries.
func normalizeDetail(parsed map[string]any) (model.DayTaskDetail, bool) {
	description := strings.TrimSpace(stringify(parsed["description"]))
	kpi := strings.TrimSpace(stringify(parsed["kpi"]))

	var checklist []string
	if items, ok := parsed["checklist"].([]any); ok {
		for _, item := range items {
			text := strings.TrimSpace(stringify(item))
			if text != "" {
				checklist = append(checklist, text)
			}
			if len(checklist) >= detailChecklistMax {
				break
			}
		}
	}

	if description == "" || kpi == "" || len(checklist) < detailChecklistMin {
		return model.DayTaskDetail{}, false
	}
	return model.DayTaskDetail{Description: description, Checklist: checklist, KPI: kpi}, true
}

// FallbackDayDetail builds the canned detail for a task, choosing a
// checklist by keyword category.
func FallbackDayDetail(task string, day int) model.DayTaskDetail {
	normalized := strings.TrimSpace(task)
	if normalized == "" {
		normalized = fallbackTaskFallback
	}
	lower := strings.ToLower(normalized)

	var checklist []string
	var kpi string
	switch {
	case strings.Contains(lower, "title") || strings.Contains(lower, "meta"):
		checklist = []string{
			"Audit current title/meta and note baseline CTR for target page.",
			"Draft two keyword-aligned title/meta variants for the page.",
			"Publish the best variant and verify rendered HTML.",
			"Submit URL for recrawl and track CTR/impression changes.",
		}
		kpi = "Increase page CTR by at least 0.5 percentage points in 14 days."
	case strings.Contains(lower, "alt") && strings.Contains(lower, "image"):
		checklist = []string{
			"List all images on the target page missing alt text.",
			"Write descriptive alt text including relevant intent keywords.",
			"Update image alt attributes and run accessibility checks.",
			"Re-crawl the page and confirm no missing-alt warnings.",
		}
		kpi = "Reduce missing alt-text count on target page to zero."
	case strings.Contains(lower, "schema") || strings.Contains(lower, "structured data"):
		checklist = []string{
			"Choose schema type matching the page intent (Organization, FAQ, Product, etc.).",
			"Generate valid JSON-LD and insert it into the page template.",
			"Validate markup with rich result testing tools.",
			"Fix warnings and re-test until the schema is valid.",
		}
		kpi = "Achieve valid schema markup with zero critical errors on the target page."
	case strings.Contains(lower, "speed") || strings.Contains(lower, "core web vital") || strings.Contains(lower, "mobile"):
		checklist = []string{
			"Measure baseline Core Web Vitals for the target page.",
			"Optimize largest assets (images, scripts, CSS) and defer non-critical JS.",
			"Re-run performance tests on mobile and desktop.",
			"Deploy fixes and compare before/after performance metrics.",
		}
		kpi = "Improve mobile Performance score by at least 10 points on the target page."
	case strings.Contains(lower, "keyword") || strings.Contains(lower, "content") || strings.Contains(lower, "page"):
		checklist = []string{
			"Define the primary keyword and supporting subtopics for this page.",
			"Create or expand page sections to satisfy user intent clearly.",
			"Optimize H1/H2, intro paragraph, and internal links for the target term.",
			"Publish and track ranking movement for the primary keyword.",
		}
		kpi = "Improve target keyword position by at least 3 ranks within 21 days."
	default:
		checklist = []string{
			"Review current page status and collect baseline metrics.",
			"Execute the planned task on the target page or asset.",
			"Validate technical correctness and on-page relevance after deployment.",
			"Record outcome and define next optimization step.",
		}
		kpi = "Complete the task with one measurable SEO improvement logged."
	}

	return model.DayTaskDetail{
		Description: fmt.Sprintf("Day %d execution focus: %s", day, normalized),
		Checklist:   checklist,
		KPI:         kpi,
	}
}

func max64(a, b int64) int64 {
	if a > b {
		return a
	}
	return b
}
