package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func chdirTemp(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	origDir, _ := os.Getwd()
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { os.Chdir(origDir) })
	return dir
}

func TestLoadDefaults(t *testing.T) {
	chdirTemp(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "sqlite", cfg.Store.Driver)
	assert.Equal(t, "seomentor.db", cfg.Store.Path)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
	assert.Equal(t, 8000, cfg.Server.Port)
	assert.Equal(t, 3200, cfg.Anthropic.MaxTokens)
	assert.Equal(t, 3, cfg.Anthropic.MaxRetries)
	assert.InDelta(t, 0.2, cfg.Anthropic.Temperature, 0.001)
	assert.Equal(t, 900, cfg.Anthropic.DetailTokens)
	assert.Equal(t, 4, cfg.Quality.MinIssues)
	assert.Equal(t, 5, cfg.Quality.MinCompetitors)
	assert.Equal(t, 8, cfg.Quality.MinKeywordGaps)
	assert.InDelta(t, 0.8, cfg.Quality.UniqueTaskRate, 0.001)
	assert.True(t, cfg.Search.Enabled)
	assert.Equal(t, "https://duckduckgo.com/html/", cfg.Search.BaseURL)
	assert.Equal(t, 6, cfg.Search.MaxResults)
}

func TestLoadFromYAML(t *testing.T) {
	dir := chdirTemp(t)

	yaml := `
store:
  driver: postgres
  database_url: postgres://localhost/seomentor
log:
  level: debug
  format: console
server:
  port: 9090
anthropic:
  model: claude-test-override
search:
  enabled: false
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "seomentor.yaml"), []byte(yaml), 0644))

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "postgres", cfg.Store.Driver)
	assert.Equal(t, "postgres://localhost/seomentor", cfg.Store.DatabaseURL)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "console", cfg.Log.Format)
	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, "claude-test-override", cfg.Anthropic.Model)
	assert.False(t, cfg.Search.Enabled)
	// Defaults still apply for unset values
	assert.Equal(t, 3200, cfg.Anthropic.MaxTokens)
}

func TestLoadEnvOverridesFile(t *testing.T) {
	chdirTemp(t)

	t.Setenv("SEOMENTOR_ANTHROPIC_KEY", "sk-test")
	t.Setenv("SEOMENTOR_SERVER_PORT", "7070")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "sk-test", cfg.Anthropic.Key)
	assert.Equal(t, 7070, cfg.Server.Port)
}

func TestAuditCandidatesDedupes(t *testing.T) {
	t.Parallel()

	cfg := AnthropicConfig{
		Model:       "claude-sonnet-4-5-20250929",
		SonnetModel: "claude-sonnet-4-5-20250929",
		HaikuModel:  "claude-haiku-4-5-20251001",
	}

	assert.Equal(t, []string{"claude-sonnet-4-5-20250929", "claude-haiku-4-5-20251001"}, cfg.AuditCandidates())
}

func TestAuditCandidatesSkipsBlankOverride(t *testing.T) {
	t.Parallel()

	cfg := AnthropicConfig{
		SonnetModel: "claude-sonnet-4-5-20250929",
		HaikuModel:  "claude-haiku-4-5-20251001",
	}

	got := cfg.AuditCandidates()
	require.Len(t, got, 2)
	assert.Equal(t, "claude-sonnet-4-5-20250929", got[0])
}

func TestDetailCandidatesPrefersDetailModel(t *testing.T) {
	t.Parallel()

	cfg := AnthropicConfig{
		DetailModel: "claude-haiku-4-5-20251001",
		SonnetModel: "claude-sonnet-4-5-20250929",
		HaikuModel:  "claude-haiku-4-5-20251001",
	}

	assert.Equal(t, []string{"claude-haiku-4-5-20251001", "claude-sonnet-4-5-20250929"}, cfg.DetailCandidates())
}

func TestRetryBase(t *testing.T) {
	t.Parallel()

	assert.Equal(t, time.Second, AnthropicConfig{}.RetryBase())
	assert.Equal(t, 250*time.Millisecond, AnthropicConfig{RetryBaseMS: 250}.RetryBase())
}

func TestInitLogger(t *testing.T) {
	require.NoError(t, InitLogger(LogConfig{Level: "debug", Format: "console"}))
	assert.Error(t, InitLogger(LogConfig{Level: "nope", Format: "json"}))
}
