// Package analysis turns raw model output into reliable audit results: it
// orchestrates prompt building, model invocation, JSON repair, normalization,
// competitor enrichment and a quality gate, degrading to a fixed fallback on
// any failure. Run never returns an error.
package analysis

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/seomentor/seomentor-api/internal/config"
	"github.com/seomentor/seomentor-api/internal/jsonrepair"
	"github.com/seomentor/seomentor-api/internal/llm"
	"github.com/seomentor/seomentor-api/internal/model"
	"github.com/seomentor/seomentor-api/internal/prompt"
)

// Invoker is the model cascade dependency, satisfied by *llm.Invoker.
type Invoker interface {
	Invoke(ctx context.Context, req llm.Request) (*llm.Completion, error)
}

// Enricher fills in competitor URLs best-effort. Implementations must not
// fail the pipeline.
type Enricher interface {
	Enrich(ctx context.Context, result *model.AnalysisResult, country, language string)
}

// Analyzer runs the audit pipeline.
type Analyzer struct {
	invoker  Invoker
	enricher Enricher
	quality  config.QualityConfig
	log      *zap.Logger
}

// NewAnalyzer creates an Analyzer. invoker may be nil when no API credential
// is configured; Run then short-circuits to the fallback result. enricher
// may be nil to disable competitor URL resolution.
func NewAnalyzer(invoker Invoker, enricher Enricher, quality config.QualityConfig, log *zap.Logger) *Analyzer {
	if log == nil {
		log = zap.L()
	}
	return &Analyzer{invoker: invoker, enricher: enricher, quality: quality, log: log}
}

// Run executes the full audit pipeline. It never returns an error: every
// failure mode degrades to FallbackResult with the request's plan length.
func (a *Analyzer) Run(ctx context.Context, req model.AnalysisRequest, metrics *model.ScrapedMetrics) *model.AnalysisResult {
	planDays := model.ClampPlanDays(req.PlanDays)
	req.PlanDays = planDays

	log := a.log.With(
		zap.String("run_id", uuid.New().String()),
		zap.String("url", req.URL),
	)

	if a.invoker == nil {
		log.Warn("no model credential configured, returning fallback")
		return FallbackResult(planDays)
	}

	userMsg := prompt.Audit(req, metrics)

	comp, err := a.invoker.Invoke(ctx, llm.Request{System: prompt.AuditSystem, Prompt: userMsg})
	if err != nil {
		log.Error("model invocation failed", zap.Error(err))
		return FallbackResult(planDays)
	}

	parsed, ok := jsonrepair.Extract(comp.Text)
	if !ok {
		truncated := jsonrepair.LooksTruncated(comp.Text)
		log.Warn("response did not parse, retrying with compact instructions",
			zap.String("model", comp.Model),
			zap.Bool("truncated", truncated),
			zap.String("raw_head", head(comp.Text, 500)))

		retryPrompt := userMsg + prompt.CompactRetrySuffix(planDays, truncated)
		comp, err = a.invoker.Invoke(ctx, llm.Request{System: prompt.AuditSystem, Prompt: retryPrompt})
		if err != nil {
			log.Error("compact retry invocation failed", zap.Error(err))
			return FallbackResult(planDays)
		}
		parsed, ok = jsonrepair.Extract(comp.Text)
		if !ok {
			log.Error("compact retry did not parse, returning fallback",
				zap.String("raw_head", head(comp.Text, 500)))
			return FallbackResult(planDays)
		}
	}

	result := NormalizeResult(parsed, planDays)
	a.enrich(ctx, result, req)

	if !IsLowQuality(result, planDays, a.quality) {
		return result
	}

	log.Warn("result failed quality gate, regenerating with stricter prompt",
		zap.Int("issues", len(result.Issues)),
		zap.Int("competitors", len(result.Competitors)),
		zap.Int("keyword_gaps", len(result.KeywordGaps)),
		zap.Int("roadmap", len(result.Roadmap)))

	improvedComp, err := a.invoker.Invoke(ctx, llm.Request{
		System: prompt.AuditSystem,
		Prompt: userMsg + prompt.QualityRetrySuffix(planDays),
	})
	if err != nil {
		log.Warn("quality retry invocation failed, keeping first result", zap.Error(err))
		return result
	}

	improvedParsed, ok := jsonrepair.Extract(improvedComp.Text)
	if !ok {
		log.Warn("quality retry did not parse, keeping first result")
		return result
	}

	improved := NormalizeResult(improvedParsed, planDays)
	a.enrich(ctx, improved, req)

	if IsLowQuality(improved, planDays, a.quality) {
		log.Info("regenerated result still low quality, keeping first result")
		return result
	}
	return improved
}

func (a *Analyzer) enrich(ctx context.Context, result *model.AnalysisResult, req model.AnalysisRequest) {
	if a.enricher == nil {
		return
	}
	a.enricher.Enrich(ctx, result, req.Country, req.Language)
}

func head(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
