package model

import (
	"regexp"
	"strings"
)

const (
	// DefaultPlanDays is the roadmap length used when the request does not
	// specify one.
	DefaultPlanDays = 30

	// MinPlanDays and MaxPlanDays bound the accepted roadmap length.
	MinPlanDays = 7
	MaxPlanDays = 30

	// maxListEntries caps user-supplied keyword and competitor lists.
	maxListEntries = 15
)

var listSplitRe = regexp.MustCompile(`[\n,]+`)

// AnalysisRequest is the full onboarding input for a site audit.
type AnalysisRequest struct {
	URL               string   `json:"url"`
	Country           string   `json:"country"`
	Language          string   `json:"language"`
	PlanDays          int      `json:"plan_days"`
	PrimaryGoal       string   `json:"primary_goal"`
	BusinessOffer     string   `json:"business_offer"`
	TargetAudience    string   `json:"target_audience"`
	PriorityPages     []string `json:"priority_pages"`
	SeedKeywords      []string `json:"seed_keywords"`
	KnownCompetitors  []string `json:"known_competitors"`
	ExecutionCapacity string   `json:"execution_capacity"`
}

// Sanitized returns a copy with trimmed fields, defaults applied, list inputs
// split on newlines and commas, and the plan length clamped to the accepted
// range. The receiver is not modified.
func (r AnalysisRequest) Sanitized() AnalysisRequest {
	out := r
	out.URL = strings.TrimSpace(r.URL)
	out.Country = defaultIfBlank(r.Country, "Azerbaijan")
	out.Language = defaultIfBlank(r.Language, "English")
	out.PrimaryGoal = defaultIfBlank(r.PrimaryGoal, "Increase organic traffic")
	out.BusinessOffer = strings.TrimSpace(r.BusinessOffer)
	out.TargetAudience = strings.TrimSpace(r.TargetAudience)
	out.ExecutionCapacity = strings.TrimSpace(r.ExecutionCapacity)
	out.PriorityPages = sanitizeList(r.PriorityPages)
	out.SeedKeywords = sanitizeList(r.SeedKeywords)
	out.KnownCompetitors = sanitizeList(r.KnownCompetitors)
	out.PlanDays = ClampPlanDays(r.PlanDays)
	return out
}

// ClampPlanDays forces days into [MinPlanDays, MaxPlanDays], with zero and
// negative values mapped to the default.
func ClampPlanDays(days int) int {
	if days <= 0 {
		return DefaultPlanDays
	}
	if days < MinPlanDays {
		return MinPlanDays
	}
	if days > MaxPlanDays {
		return MaxPlanDays
	}
	return days
}

func defaultIfBlank(s, def string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return def
	}
	return s
}

// sanitizeList trims entries, re-splits any that contain embedded separators
// (a single pasted comma or newline separated blob is common), drops blanks
// and caps the result.
func sanitizeList(in []string) []string {
	var out []string
	for _, raw := range in {
		for _, part := range listSplitRe.Split(raw, -1) {
			part = strings.TrimSpace(part)
			if part == "" {
				continue
			}
			out = append(out, part)
			if len(out) >= maxListEntries {
				return out
			}
		}
	}
	return out
}
