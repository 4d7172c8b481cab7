package prompt

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/seomentor/seomentor-api/internal/model"
)

func sampleRequest() model.AnalysisRequest {
	return model.AnalysisRequest{
		URL:          "https://example.az",
		Country:      "Azerbaijan",
		Language:     "English",
		PlanDays:     14,
		PrimaryGoal:  "Increase organic traffic",
		SeedKeywords: []string{"coffee baku", "espresso"},
	}
}

func TestAuditDeterministic(t *testing.T) {
	t.Parallel()

	req := sampleRequest()
	m := &model.ScrapedMetrics{Title: "Example", WordCount: 420}

	assert.Equal(t, Audit(req, m), Audit(req, m))
}

func TestAuditRendersPlaceholders(t *testing.T) {
	t.Parallel()

	got := Audit(sampleRequest(), &model.ScrapedMetrics{})

	assert.Contains(t, got, "Business / Offer: Not provided")
	assert.Contains(t, got, "Target Audience: Not provided")
	assert.Contains(t, got, "Priority Pages: Not provided")
	assert.Contains(t, got, "Seed Keywords: coffee baku, espresso")
}

func TestAuditIncludesPlanDays(t *testing.T) {
	t.Parallel()

	got := Audit(sampleRequest(), nil)

	assert.Contains(t, got, "Generate exactly 14 unique roadmap tasks (day 1..14)")
}

func TestAuditNeverPanicsOnAdversarialInput(t *testing.T) {
	t.Parallel()

	req := sampleRequest()
	req.BusinessOffer = "{{malicious}} %s %d \x00 “quoted”"
	req.SeedKeywords = []string{strings.Repeat("x", 10000)}

	assert.NotPanics(t, func() { Audit(req, nil) })
}

func TestCompactRetrySuffix(t *testing.T) {
	t.Parallel()

	got := CompactRetrySuffix(10, false)
	assert.Contains(t, got, "roadmap: exactly 10 tasks")
	assert.NotContains(t, got, "truncation")

	got = CompactRetrySuffix(10, true)
	assert.Contains(t, got, "Keep every value short to avoid truncation.")
}

func TestQualityRetrySuffix(t *testing.T) {
	t.Parallel()

	got := QualityRetrySuffix(21)
	assert.Contains(t, got, "output exactly 21 roadmap days")
}

func TestDayDetailTrimsContext(t *testing.T) {
	t.Parallel()

	result := &model.AnalysisResult{
		Issues:      []string{"i1", "i2", "i3", "i4", "i5", "i6"},
		KeywordGaps: []string{"g1", "g2", "g3", "g4", "g5", "g6", "g7"},
		Competitors: []model.Competitor{
			{Name: "A"}, {Name: "B"}, {Name: "C"}, {Name: "D"}, {Name: "E"},
		},
	}
	got := DayDetail(sampleRequest(), result, model.RoadmapTask{Day: 3, Task: "Fix titles"})

	assert.Contains(t, got, "- Day: 3")
	assert.Contains(t, got, "- Task: Fix titles")
	assert.Contains(t, got, "i1, i2, i3, i4")
	assert.NotContains(t, got, "i5")
	assert.Contains(t, got, "A, B, C, D")
	assert.NotContains(t, got, "g7")
}

func TestDayDetailNilResult(t *testing.T) {
	t.Parallel()

	got := DayDetail(sampleRequest(), nil, model.RoadmapTask{Day: 1, Task: "t"})
	assert.Contains(t, got, "- Top Issues: Not provided")
}

func TestLanguageName(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   string
		want string
	}{
		{"az", "Azerbaijani"},
		{"tr", "Turkish"},
		{"English", "English"},
		{"Azerbaijani", "Azerbaijani"},
		{"", ""},
		{"not a code", "not a code"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, LanguageName(tt.in), "input %q", tt.in)
	}
}
