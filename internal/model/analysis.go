package model

import "time"

// Competitor is one competitor entry in an audit result. URL may be empty
// when neither the model nor search enrichment produced a usable link.
type Competitor struct {
	Name   string `json:"name"`
	Reason string `json:"reason"`
	URL    string `json:"url"`
}

// RoadmapTask is a single day of the improvement plan. Days are 1-based and
// duplicate days are allowed; order within a day follows model output order.
type RoadmapTask struct {
	Day  int    `json:"day"`
	Task string `json:"task"`
}

// AnalysisResult is the normalized audit produced by the analysis pipeline.
type AnalysisResult struct {
	SEOScore    float64       `json:"seo_score"`
	Issues      []string      `json:"issues"`
	Competitors []Competitor  `json:"competitors"`
	KeywordGaps []string      `json:"keyword_gaps"`
	Roadmap     []RoadmapTask `json:"roadmap"`
}

// TaskForDay returns the first roadmap task scheduled on day, if any.
func (r *AnalysisResult) TaskForDay(day int) (RoadmapTask, bool) {
	for _, t := range r.Roadmap {
		if t.Day == day {
			return t, true
		}
	}
	return RoadmapTask{}, false
}

// DayTaskDetail expands one roadmap task into an actionable brief.
type DayTaskDetail struct {
	Description string   `json:"description"`
	Checklist   []string `json:"checklist"`
	KPI         string   `json:"kpi"`
}

// Project is a stored audit. Request holds the sanitized onboarding input
// so later day-detail generation has the same context the audit had.
type Project struct {
	ID        int64           `json:"id"`
	URL       string          `json:"url"`
	Request   AnalysisRequest `json:"request"`
	Result    AnalysisResult  `json:"result"`
	CreatedAt time.Time       `json:"created_at"`
}

// ProjectSummary is the listing view of a stored audit.
type ProjectSummary struct {
	ID        int64     `json:"id"`
	URL       string    `json:"url"`
	CreatedAt time.Time `json:"created_at"`
}
