package config

import (
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds the full application configuration.
type Config struct {
	Store     StoreConfig     `yaml:"store" mapstructure:"store"`
	Anthropic AnthropicConfig `yaml:"anthropic" mapstructure:"anthropic"`
	Quality   QualityConfig   `yaml:"quality" mapstructure:"quality"`
	Scrape    ScrapeConfig    `yaml:"scrape" mapstructure:"scrape"`
	Search    SearchConfig    `yaml:"search" mapstructure:"search"`
	Server    ServerConfig    `yaml:"server" mapstructure:"server"`
	Log       LogConfig       `yaml:"log" mapstructure:"log"`
}

// StoreConfig configures the database backend.
type StoreConfig struct {
	Driver      string `yaml:"driver" mapstructure:"driver"`
	Path        string `yaml:"path" mapstructure:"path"`
	DatabaseURL string `yaml:"database_url" mapstructure:"database_url"`
}

// AnthropicConfig holds Anthropic API settings for both the audit pipeline
// and the per-day detail generator.
type AnthropicConfig struct {
	Key           string  `yaml:"key" mapstructure:"key"`
	Model         string  `yaml:"model" mapstructure:"model"`
	SonnetModel   string  `yaml:"sonnet_model" mapstructure:"sonnet_model"`
	HaikuModel    string  `yaml:"haiku_model" mapstructure:"haiku_model"`
	MaxTokens     int     `yaml:"max_tokens" mapstructure:"max_tokens"`
	MaxRetries    int     `yaml:"max_retries" mapstructure:"max_retries"`
	RetryBaseMS   int     `yaml:"retry_base_ms" mapstructure:"retry_base_ms"`
	Temperature   float64 `yaml:"temperature" mapstructure:"temperature"`
	DetailModel   string  `yaml:"detail_model" mapstructure:"detail_model"`
	DetailTokens  int     `yaml:"detail_tokens" mapstructure:"detail_tokens"`
	DetailRetries int     `yaml:"detail_retries" mapstructure:"detail_retries"`
}

// AuditCandidates returns the model cascade for the main audit: an optional
// explicit override first, then sonnet, then haiku, deduplicated in order.
func (c AnthropicConfig) AuditCandidates() []string {
	return dedupe([]string{c.Model, c.SonnetModel, c.HaikuModel})
}

// DetailCandidates returns the model cascade for day-detail generation.
func (c AnthropicConfig) DetailCandidates() []string {
	return dedupe([]string{c.DetailModel, c.HaikuModel, c.SonnetModel})
}

// RetryBase returns the backoff base as a duration.
func (c AnthropicConfig) RetryBase() time.Duration {
	if c.RetryBaseMS <= 0 {
		return time.Second
	}
	return time.Duration(c.RetryBaseMS) * time.Millisecond
}

func dedupe(models []string) []string {
	seen := make(map[string]struct{}, len(models))
	var out []string
	for _, m := range models {
		m = strings.TrimSpace(m)
		if m == "" {
			continue
		}
		if _, ok := seen[m]; ok {
			continue
		}
		seen[m] = struct{}{}
		out = append(out, m)
	}
	return out
}

// QualityConfig holds the minimum-content thresholds for accepting an audit.
type QualityConfig struct {
	MinIssues      int     `yaml:"min_issues" mapstructure:"min_issues"`
	MinCompetitors int     `yaml:"min_competitors" mapstructure:"min_competitors"`
	MinKeywordGaps int     `yaml:"min_keyword_gaps" mapstructure:"min_keyword_gaps"`
	UniqueTaskRate float64 `yaml:"unique_task_rate" mapstructure:"unique_task_rate"`
}

// ScrapeConfig configures the homepage fetch.
type ScrapeConfig struct {
	TimeoutSecs  int    `yaml:"timeout_secs" mapstructure:"timeout_secs"`
	UserAgent    string `yaml:"user_agent" mapstructure:"user_agent"`
	MaxBodyBytes int64  `yaml:"max_body_bytes" mapstructure:"max_body_bytes"`
}

// SearchConfig configures competitor URL enrichment via web search.
type SearchConfig struct {
	Enabled     bool    `yaml:"enabled" mapstructure:"enabled"`
	BaseURL     string  `yaml:"base_url" mapstructure:"base_url"`
	TimeoutSecs float64 `yaml:"timeout_secs" mapstructure:"timeout_secs"`
	MaxResults  int     `yaml:"max_results" mapstructure:"max_results"`
	RatePerSec  float64 `yaml:"rate_per_sec" mapstructure:"rate_per_sec"`
	UserAgent   string  `yaml:"user_agent" mapstructure:"user_agent"`
}

// ServerConfig configures the HTTP API server.
type ServerConfig struct {
	Port int `yaml:"port" mapstructure:"port"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// Load reads configuration from file and environment.
func Load() (*Config, error) {
	v := viper.New()

	// Config file
	v.SetConfigName("seomentor")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("$HOME/.seomentor")
	v.AddConfigPath("/etc/seomentor")

	// Environment
	v.SetEnvPrefix("SEOMENTOR")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("store.driver", "sqlite")
	v.SetDefault("store.path", "seomentor.db")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("server.port", 8000)
	v.SetDefault("anthropic.sonnet_model", "claude-sonnet-4-5-20250929")
	v.SetDefault("anthropic.haiku_model", "claude-haiku-4-5-20251001")
	v.SetDefault("anthropic.max_tokens", 3200)
	v.SetDefault("anthropic.max_retries", 3)
	v.SetDefault("anthropic.retry_base_ms", 1000)
	v.SetDefault("anthropic.temperature", 0.2)
	v.SetDefault("anthropic.detail_tokens", 900)
	v.SetDefault("anthropic.detail_retries", 2)
	v.SetDefault("quality.min_issues", 4)
	v.SetDefault("quality.min_competitors", 5)
	v.SetDefault("quality.min_keyword_gaps", 8)
	v.SetDefault("quality.unique_task_rate", 0.8)
	v.SetDefault("scrape.timeout_secs", 20)
	v.SetDefault("scrape.user_agent", "Mozilla/5.0 (compatible; SEOmentorBot/1.0)")
	v.SetDefault("scrape.max_body_bytes", 2*1024*1024)
	v.SetDefault("search.enabled", true)
	v.SetDefault("search.base_url", "https://duckduckgo.com/html/")
	v.SetDefault("search.timeout_secs", 3.5)
	v.SetDefault("search.max_results", 6)
	v.SetDefault("search.rate_per_sec", 2)
	v.SetDefault("search.user_agent", "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36")

	// Read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}

	return &cfg, nil
}

// InitLogger initializes the global zap logger.
func InitLogger(cfg LogConfig) error {
	var zapCfg zap.Config
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return eris.Wrap(err, "config: parse log level")
	}
	zapCfg.Level.SetLevel(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return eris.Wrap(err, "config: build logger")
	}
	zap.ReplaceGlobals(logger)

	return nil
}
