package analysis

import "github.com/seomentor/seomentor-api/internal/model"

const (
	fallbackIssue = "AI response parsing failed, using fallback data."
	fallbackTask  = "Review homepage SEO basics."
)

// FallbackResult is the fixed degraded result returned when the model path
// fails entirely: score 50, one generic issue, and one placeholder roadmap
// task per plan day.
func FallbackResult(planDays int) *model.AnalysisResult {
	if planDays < 1 {
		planDays = 1
	}
	roadmap := make([]model.RoadmapTask, 0, planDays)
	for day := 1; day <= planDays; day++ {
		roadmap = append(roadmap, model.RoadmapTask{Day: day, Task: fallbackTask})
	}
	return &model.AnalysisResult{
		SEOScore:    50,
		Issues:      []string{fallbackIssue},
		Competitors: []model.Competitor{},
		KeywordGaps: []string{},
		Roadmap:     roadmap,
	}
}
