package analysis

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/seomentor/seomentor-api/internal/model"
)

func TestNormalizeScoreCoercion(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   any
		want float64
	}{
		{"float passes", 72.5, 72.5},
		{"int passes", 80, 80},
		{"above range clamps", 150, 100},
		{"below range clamps", -5, 0},
		{"string coerces to zero", "abc", 0},
		{"numeric string coerces to zero", "72", 0},
		{"nil coerces to zero", nil, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := NormalizeResult(map[string]any{"seo_score": tt.in}, 30)
			assert.Equal(t, tt.want, got.SEOScore)
		})
	}
}

func TestNormalizeStringLists(t *testing.T) {
	t.Parallel()

	got := NormalizeResult(map[string]any{
		"issues":       []any{"a", nil, 42, "b"},
		"keyword_gaps": "not a list",
	}, 30)

	assert.Equal(t, []string{"a", "42", "b"}, got.Issues)
	assert.Empty(t, got.KeywordGaps)
}

func TestNormalizeCompetitors(t *testing.T) {
	t.Parallel()

	got := NormalizeResult(map[string]any{
		"competitors": []any{
			map[string]any{"name": "Acme", "reason": "direct rival", "url": "https://acme.az"},
			map[string]any{"name": "Bare Domain", "url": "example.com"},
			map[string]any{"reason": "see https://rival.example.com for details"},
			map[string]any{"url": "https://nameless.com"}, // no name or reason
			"just a string",
		},
	}, 30)

	require.Len(t, got.Competitors, 3)
	assert.Equal(t, "https://acme.az", got.Competitors[0].URL)
	assert.Equal(t, "https://example.com", got.Competitors[1].URL)
	assert.Equal(t, "https://rival.example.com", got.Competitors[2].URL)
	assert.Empty(t, got.Competitors[2].Name)
}

func TestNormalizeRoadmap(t *testing.T) {
	t.Parallel()

	got := NormalizeResult(map[string]any{
		"roadmap": []any{
			map[string]any{"day": float64(3), "task": "third"},
			map[string]any{"day": "not a number", "task": "position fallback"}, // position 2
			map[string]any{"day": float64(1), "task": "first"},
			map[string]any{"day": float64(99), "task": "out of range"},
			map[string]any{"day": float64(0), "task": "below range"},
			"not a dict",
		},
	}, 10)

	require.Len(t, got.Roadmap, 3)
	assert.Equal(t, model.RoadmapTask{Day: 1, Task: "first"}, got.Roadmap[0])
	assert.Equal(t, model.RoadmapTask{Day: 2, Task: "position fallback"}, got.Roadmap[1])
	assert.Equal(t, model.RoadmapTask{Day: 3, Task: "third"}, got.Roadmap[2])
}

func TestNormalizeRoadmapKeepsDuplicateDays(t *testing.T) {
	t.Parallel()

	got := NormalizeResult(map[string]any{
		"roadmap": []any{
			map[string]any{"day": float64(2), "task": "dup one"},
			map[string]any{"day": float64(2), "task": "dup two"},
			map[string]any{"day": float64(1), "task": "first"},
		},
	}, 10)

	require.Len(t, got.Roadmap, 3)
	assert.Equal(t, "first", got.Roadmap[0].Task)
	// Duplicate days survive in original order.
	assert.Equal(t, "dup one", got.Roadmap[1].Task)
	assert.Equal(t, "dup two", got.Roadmap[2].Task)
}

func TestNormalizeRoadmapTruncatesToPlanDays(t *testing.T) {
	t.Parallel()

	var items []any
	for i := 1; i <= 20; i++ {
		items = append(items, map[string]any{"day": float64(i), "task": "t"})
	}
	got := NormalizeResult(map[string]any{"roadmap": items}, 7)

	assert.Len(t, got.Roadmap, 7)
}

func TestNormalizeEmptyInput(t *testing.T) {
	t.Parallel()

	got := NormalizeResult(map[string]any{}, 30)

	assert.Zero(t, got.SEOScore)
	assert.Empty(t, got.Issues)
	assert.Empty(t, got.Competitors)
	assert.Empty(t, got.KeywordGaps)
	assert.Empty(t, got.Roadmap)
}

func TestExtractDomain(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   string
		want string
	}{
		{"full url", "https://acme.az/menu", "https://acme.az/menu"},
		{"bare domain gets scheme", "acme.az", "https://acme.az"},
		{"wolt preferred over other urls", "see https://other.com and https://wolt.com/az/acme", "https://wolt.com/az/acme"},
		{"trailing punctuation stripped", "visit https://acme.az).", "https://acme.az"},
		{"embedded in prose", "their site rival.example.com ranks well", "https://rival.example.com"},
		{"nothing", "no links here", ""},
		{"empty", "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, ExtractDomain(tt.in))
		})
	}
}
