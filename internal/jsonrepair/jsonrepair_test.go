package jsonrepair

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractPlainObject(t *testing.T) {
	t.Parallel()

	obj, ok := Extract(`{"seo_score": 72, "issues": ["a"]}`)
	require.True(t, ok)
	assert.Equal(t, float64(72), obj["seo_score"])
}

func TestExtractMarkdownFenced(t *testing.T) {
	t.Parallel()

	raw := "```json\n{\"seo_score\": 50}\n```"
	obj, ok := Extract(raw)
	require.True(t, ok)
	assert.Equal(t, float64(50), obj["seo_score"])
}

func TestExtractSurroundingProse(t *testing.T) {
	t.Parallel()

	raw := "Here is your audit:\n{\"seo_score\": 61}\nLet me know if you need more."
	obj, ok := Extract(raw)
	require.True(t, ok)
	assert.Equal(t, float64(61), obj["seo_score"])
}

func TestExtractSmartQuotes(t *testing.T) {
	t.Parallel()

	raw := "{“seo_score”: 44}"
	obj, ok := Extract(raw)
	require.True(t, ok)
	assert.Equal(t, float64(44), obj["seo_score"])
}

func TestExtractRepairsInteriorQuotes(t *testing.T) {
	t.Parallel()

	raw := `{"reason": "It's the "best" choice"}`
	obj, ok := Extract(raw)
	require.True(t, ok)
	assert.Equal(t, `It's the "best" choice`, obj["reason"])
}

func TestExtractTopLevelArrayIsAbsence(t *testing.T) {
	t.Parallel()

	_, ok := Extract(`[1, 2, 3]`)
	assert.False(t, ok)
}

func TestExtractGarbageIsAbsence(t *testing.T) {
	t.Parallel()

	for _, raw := range []string{"", "   ", "no json here", "{broken", `{"a": }`} {
		_, ok := Extract(raw)
		assert.False(t, ok, "input %q", raw)
	}
}

func TestExtractLenientTrailingComma(t *testing.T) {
	t.Parallel()

	raw := `{"checklist": ["a", "b",], "kpi": "x",}`
	obj, ok := ExtractLenient(raw)
	require.True(t, ok)
	assert.Equal(t, "x", obj["kpi"])
	assert.Len(t, obj["checklist"], 2)
}

func TestExtractLenientControlChars(t *testing.T) {
	t.Parallel()

	raw := "{\"description\": \"line one\nline two\"}"
	obj, ok := ExtractLenient(raw)
	require.True(t, ok)
	assert.Equal(t, "line one\nline two", obj["description"])
}

func TestLooksTruncated(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		raw  string
		want bool
	}{
		{"balanced", `{"a": 1}`, false},
		{"unclosed object", `{"a": {"b": 1}`, true},
		{"trailing comma", `{"a": 1,`, true},
		{"empty", "", false},
		{"fenced balanced", "```json\n{\"a\": 1}\n```", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, LooksTruncated(tt.raw))
		})
	}
}

func TestExtractNestedQuotesInList(t *testing.T) {
	t.Parallel()

	raw := `{"issues": ["Missing "alt" attributes on images"]}`
	obj, ok := Extract(raw)
	require.True(t, ok)
	issues, ok := obj["issues"].([]any)
	require.True(t, ok)
	require.Len(t, issues, 1)
	assert.Equal(t, `Missing "alt" attributes on images`, issues[0])
}
