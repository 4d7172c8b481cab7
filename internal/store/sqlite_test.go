package store

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/seomentor/seomentor-api/internal/model"
)

func newTestSQLiteStore(t *testing.T) *SQLiteStore {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "test.db")
	st, err := NewSQLite(dbPath)
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() }) //nolint:errcheck
	require.NoError(t, st.Migrate(context.Background()))
	return st
}

func sampleRequest(url string) model.AnalysisRequest {
	return model.AnalysisRequest{
		URL:      url,
		Country:  "Azerbaijan",
		Language: "English",
		PlanDays: 7,
	}
}

func sampleResult() *model.AnalysisResult {
	return &model.AnalysisResult{
		SEOScore: 72,
		Issues:   []string{"Missing meta description", "Multiple H1 tags"},
		Competitors: []model.Competitor{
			{Name: "Pasta Place", Reason: "ranks for delivery terms", URL: "https://pastaplace.az"},
		},
		KeywordGaps: []string{"pasta delivery baku"},
		Roadmap: []model.RoadmapTask{
			{Day: 1, Task: "Rewrite the homepage title tag."},
			{Day: 2, Task: "Add meta description."},
		},
	}
}

func TestSQLite_CreateAndGetProject(t *testing.T) {
	st := newTestSQLiteStore(t)
	ctx := context.Background()

	id, err := st.CreateProject(ctx, sampleRequest("https://example.az"), sampleResult())
	require.NoError(t, err)
	assert.Positive(t, id)

	p, err := st.GetProject(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, id, p.ID)
	assert.Equal(t, "https://example.az", p.URL)
	assert.Equal(t, "Azerbaijan", p.Request.Country)
	assert.Equal(t, 7, p.Request.PlanDays)
	assert.InDelta(t, 72, p.Result.SEOScore, 0.001)
	assert.Len(t, p.Result.Roadmap, 2)
	assert.False(t, p.CreatedAt.IsZero())
}

func TestSQLite_GetProject_NotFound(t *testing.T) {
	st := newTestSQLiteStore(t)

	_, err := st.GetProject(context.Background(), 9999)
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestSQLite_ListProjects(t *testing.T) {
	st := newTestSQLiteStore(t)
	ctx := context.Background()

	id1, err := st.CreateProject(ctx, sampleRequest("https://first.az"), sampleResult())
	require.NoError(t, err)
	id2, err := st.CreateProject(ctx, sampleRequest("https://second.az"), sampleResult())
	require.NoError(t, err)

	projects, err := st.ListProjects(ctx)
	require.NoError(t, err)
	require.Len(t, projects, 2)

	// Newest first; identical timestamps fall back to id ordering.
	assert.Equal(t, id2, projects[0].ID)
	assert.Equal(t, id1, projects[1].ID)
	assert.Equal(t, "https://second.az", projects[0].URL)
}

func TestSQLite_ListProjects_Empty(t *testing.T) {
	st := newTestSQLiteStore(t)

	projects, err := st.ListProjects(context.Background())
	require.NoError(t, err)
	assert.Empty(t, projects)
}

func TestSQLite_DayDetail_PutAndGet(t *testing.T) {
	st := newTestSQLiteStore(t)
	ctx := context.Background()

	id, err := st.CreateProject(ctx, sampleRequest("https://example.az"), sampleResult())
	require.NoError(t, err)

	detail := &model.DayTaskDetail{
		Description: "Day 1 execution focus: rewrite the homepage title tag.",
		Checklist:   []string{"Draft three options", "Pick one under 60 chars", "Deploy"},
		KPI:         "CTR from search results",
	}
	require.NoError(t, st.PutDayDetail(ctx, id, 1, detail, false))

	got, fallback, err := st.GetDayDetail(ctx, id, 1)
	require.NoError(t, err)
	assert.False(t, fallback)
	assert.Equal(t, detail, got)
}

func TestSQLite_DayDetail_FallbackFlagRoundTrips(t *testing.T) {
	st := newTestSQLiteStore(t)
	ctx := context.Background()

	id, err := st.CreateProject(ctx, sampleRequest("https://example.az"), sampleResult())
	require.NoError(t, err)

	detail := &model.DayTaskDetail{
		Description: "canned",
		Checklist:   []string{"a", "b", "c"},
		KPI:         "none",
	}
	require.NoError(t, st.PutDayDetail(ctx, id, 3, detail, true))

	_, fallback, err := st.GetDayDetail(ctx, id, 3)
	require.NoError(t, err)
	assert.True(t, fallback)
}

func TestSQLite_DayDetail_UpsertReplaces(t *testing.T) {
	st := newTestSQLiteStore(t)
	ctx := context.Background()

	id, err := st.CreateProject(ctx, sampleRequest("https://example.az"), sampleResult())
	require.NoError(t, err)

	first := &model.DayTaskDetail{Description: "canned", Checklist: []string{"a", "b", "c"}, KPI: "x"}
	require.NoError(t, st.PutDayDetail(ctx, id, 1, first, true))

	second := &model.DayTaskDetail{Description: "regenerated", Checklist: []string{"a", "b", "c"}, KPI: "y"}
	require.NoError(t, st.PutDayDetail(ctx, id, 1, second, false))

	got, fallback, err := st.GetDayDetail(ctx, id, 1)
	require.NoError(t, err)
	assert.False(t, fallback)
	assert.Equal(t, "regenerated", got.Description)
}

func TestSQLite_DayDetail_NotFound(t *testing.T) {
	st := newTestSQLiteStore(t)
	ctx := context.Background()

	id, err := st.CreateProject(ctx, sampleRequest("https://example.az"), sampleResult())
	require.NoError(t, err)

	_, _, err = st.GetDayDetail(ctx, id, 7)
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestSQLite_Ping(t *testing.T) {
	st := newTestSQLiteStore(t)
	assert.NoError(t, st.Ping(context.Background()))
}
