package main

import (
	"context"
	"net/http"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/seomentor/seomentor-api/internal/analysis"
	"github.com/seomentor/seomentor-api/internal/config"
	"github.com/seomentor/seomentor-api/internal/enrich"
	"github.com/seomentor/seomentor-api/internal/llm"
	"github.com/seomentor/seomentor-api/internal/scraper"
	"github.com/seomentor/seomentor-api/internal/store"
	"github.com/seomentor/seomentor-api/pkg/anthropic"
	"github.com/seomentor/seomentor-api/pkg/duckduckgo"
)

// env holds the wired application components shared by commands.
type env struct {
	store   store.Store
	scraper *scraper.Scraper
	auditor *analysis.Analyzer
	details *analysis.Generator
}

func (e *env) Close() {
	if err := e.store.Close(); err != nil {
		zap.L().Warn("close store", zap.Error(err))
	}
}

// initEnv wires storage, the model cascade, search enrichment and the
// scraper from config. A missing API key is not an error: the pipeline
// degrades to fallback results.
func initEnv(ctx context.Context) (*env, error) {
	log := zap.L()

	st, err := openStore(ctx, cfg.Store)
	if err != nil {
		return nil, err
	}
	if err := st.Migrate(ctx); err != nil {
		st.Close() //nolint:errcheck
		return nil, err
	}

	client, ok := anthropicClient(cfg.Anthropic)
	var auditInvoker, detailInvoker analysis.Invoker
	if ok {
		auditInvoker = llm.New(client, llm.Config{
			Candidates:  cfg.Anthropic.AuditCandidates(),
			MaxTokens:   int64(cfg.Anthropic.MaxTokens),
			MaxRetries:  cfg.Anthropic.MaxRetries,
			RetryBase:   cfg.Anthropic.RetryBase(),
			Temperature: cfg.Anthropic.Temperature,
		}, log)
		detailInvoker = llm.New(client, llm.Config{
			Candidates:  cfg.Anthropic.DetailCandidates(),
			MaxTokens:   int64(cfg.Anthropic.DetailTokens),
			MaxRetries:  cfg.Anthropic.DetailRetries,
			RetryBase:   cfg.Anthropic.RetryBase(),
			Temperature: cfg.Anthropic.Temperature,
		}, log)
	} else {
		log.Warn("no Anthropic credentials configured, audits will use fallback results")
	}

	resolver := enrich.NewResolver(searchClient(cfg.Search), cfg.Search, log)

	return &env{
		store:   st,
		scraper: scraper.New(cfg.Scrape, log),
		auditor: analysis.NewAnalyzer(auditInvoker, resolver, cfg.Quality, log),
		details: analysis.NewGenerator(detailInvoker, int64(cfg.Anthropic.DetailTokens), log),
	}, nil
}

func openStore(ctx context.Context, sc config.StoreConfig) (store.Store, error) {
	switch sc.Driver {
	case "postgres":
		s, err := store.NewPostgres(ctx, sc.DatabaseURL, nil)
		if err != nil {
			return nil, err
		}
		return s, nil
	case "", "sqlite":
		s, err := store.NewSQLite(sc.Path)
		if err != nil {
			return nil, err
		}
		return s, nil
	default:
		return nil, eris.Errorf("unknown store driver %q", sc.Driver)
	}
}

func anthropicClient(ac config.AnthropicConfig) (anthropic.Client, bool) {
	if ac.Key != "" {
		return anthropic.NewClient(ac.Key), true
	}
	return anthropic.NewFromEnv()
}

func searchClient(sc config.SearchConfig) duckduckgo.Client {
	if !sc.Enabled {
		return nil
	}
	opts := []duckduckgo.Option{
		duckduckgo.WithRateLimit(sc.RatePerSec),
	}
	if sc.BaseURL != "" {
		opts = append(opts, duckduckgo.WithBaseURL(sc.BaseURL))
	}
	if sc.UserAgent != "" {
		opts = append(opts, duckduckgo.WithUserAgent(sc.UserAgent))
	}
	if sc.TimeoutSecs > 0 {
		opts = append(opts, duckduckgo.WithHTTPClient(&http.Client{
			Timeout: time.Duration(sc.TimeoutSecs * float64(time.Second)),
		}))
	}
	return duckduckgo.NewClient(opts...)
}
