package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSanitizedDefaults(t *testing.T) {
	t.Parallel()

	req := AnalysisRequest{URL: "  https://example.com  "}.Sanitized()

	assert.Equal(t, "https://example.com", req.URL)
	assert.Equal(t, "Azerbaijan", req.Country)
	assert.Equal(t, "English", req.Language)
	assert.Equal(t, "Increase organic traffic", req.PrimaryGoal)
	assert.Equal(t, DefaultPlanDays, req.PlanDays)
}

func TestSanitizedSplitsEmbeddedLists(t *testing.T) {
	t.Parallel()

	req := AnalysisRequest{
		URL:              "https://example.com",
		SeedKeywords:     []string{"coffee shop, baku coffee\nespresso bar", " "},
		KnownCompetitors: []string{"One", "Two,Three"},
	}.Sanitized()

	assert.Equal(t, []string{"coffee shop", "baku coffee", "espresso bar"}, req.SeedKeywords)
	assert.Equal(t, []string{"One", "Two", "Three"}, req.KnownCompetitors)
}

func TestSanitizedCapsLists(t *testing.T) {
	t.Parallel()

	var kws []string
	for i := 0; i < 40; i++ {
		kws = append(kws, "kw")
	}
	req := AnalysisRequest{URL: "https://example.com", SeedKeywords: kws}.Sanitized()

	assert.Len(t, req.SeedKeywords, 15)
}

func TestClampPlanDays(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   int
		want int
	}{
		{0, 30},
		{-3, 30},
		{1, 7},
		{7, 7},
		{14, 14},
		{30, 30},
		{90, 30},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ClampPlanDays(tt.in), "days=%d", tt.in)
	}
}

func TestTaskForDay(t *testing.T) {
	t.Parallel()

	res := AnalysisResult{Roadmap: []RoadmapTask{
		{Day: 1, Task: "a"},
		{Day: 2, Task: "b"},
		{Day: 2, Task: "c"},
	}}

	task, ok := res.TaskForDay(2)
	assert.True(t, ok)
	assert.Equal(t, "b", task.Task)

	_, ok = res.TaskForDay(9)
	assert.False(t, ok)
}
