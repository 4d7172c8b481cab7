package analysis

import (
	"strings"

	"github.com/seomentor/seomentor-api/internal/config"
	"github.com/seomentor/seomentor-api/internal/model"
)

// IsLowQuality reports whether a normalized result is too thin to return:
// too few issues, competitors or keyword gaps, a roadmap shorter than the
// plan, or too many repeated roadmap tasks.
func IsLowQuality(result *model.AnalysisResult, planDays int, cfg config.QualityConfig) bool {
	if result == nil {
		return true
	}

	cfg = qualityDefaults(cfg)

	issues := countNonEmpty(result.Issues)
	gaps := countNonEmpty(result.KeywordGaps)

	distinct := make(map[string]struct{}, len(result.Roadmap))
	for _, t := range result.Roadmap {
		task := strings.ToLower(strings.TrimSpace(t.Task))
		if task != "" {
			distinct[task] = struct{}{}
		}
	}

	minUnique := int(float64(planDays) * cfg.UniqueTaskRate)
	if minUnique < 6 {
		minUnique = 6
	}

	return issues < cfg.MinIssues ||
		len(result.Competitors) < cfg.MinCompetitors ||
		gaps < cfg.MinKeywordGaps ||
		len(result.Roadmap) < planDays ||
		len(distinct) < minUnique
}

func qualityDefaults(cfg config.QualityConfig) config.QualityConfig {
	if cfg.MinIssues <= 0 {
		cfg.MinIssues = 4
	}
	if cfg.MinCompetitors <= 0 {
		cfg.MinCompetitors = 5
	}
	if cfg.MinKeywordGaps <= 0 {
		cfg.MinKeywordGaps = 8
	}
	if cfg.UniqueTaskRate <= 0 {
		cfg.UniqueTaskRate = 0.8
	}
	return cfg
}

func countNonEmpty(items []string) int {
	n := 0
	for _, s := range items {
		if strings.TrimSpace(s) != "" {
			n++
		}
	}
	return n
}
