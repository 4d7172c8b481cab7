// Package llm invokes the Anthropic API through a model cascade: each
// candidate model gets a bounded number of attempts with exponential backoff
// before the invoker falls through to the next one.
package llm

import (
	"context"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/seomentor/seomentor-api/internal/resilience"
	"github.com/seomentor/seomentor-api/pkg/anthropic"
)

// ErrEmptyResponse is returned when every candidate produced only empty
// content. An empty response is treated as retryable within a model.
var ErrEmptyResponse = eris.New("llm: empty response content")

// retryTokens are substrings of provider error messages that indicate a
// transient condition worth retrying on the same model.
var retryTokens = []string{
	"overloaded",
	"529",
	"rate limit",
	"rate_limit",
	"429",
	"500",
	"502",
	"503",
	"504",
	"timeout",
	"connection",
}

// Config controls the cascade and retry behavior of an Invoker.
type Config struct {
	Candidates  []string
	MaxTokens   int64
	MaxRetries  int
	RetryBase   time.Duration
	JitterMax   time.Duration
	Temperature float64
}

// Request is a single prompt to run through the cascade. MaxTokens overrides
// the configured budget when positive.
type Request struct {
	System    string
	Prompt    string
	MaxTokens int64
}

// Completion is the successful outcome of an Invoke call.
type Completion struct {
	Text       string
	StopReason string
	Model      string
}

// Invoker runs prompts through the model cascade.
type Invoker struct {
	client anthropic.Client
	cfg    Config
	log    *zap.Logger
}

// New creates an Invoker. A nil logger falls back to the global one.
func New(client anthropic.Client, cfg Config, log *zap.Logger) *Invoker {
	if log == nil {
		log = zap.L()
	}
	if cfg.MaxRetries <= 0 {
		cfg.MaxRetries = 3
	}
	if cfg.RetryBase <= 0 {
		cfg.RetryBase = time.Second
	}
	if cfg.JitterMax <= 0 {
		cfg.JitterMax = 350 * time.Millisecond
	}
	return &Invoker{client: client, cfg: cfg, log: log}
}

// Invoke walks the candidate models in order. Within a model, transient
// errors and empty responses are retried with backoff; any other error moves
// straight to the next candidate. The first non-empty completion wins.
func (iv *Invoker) Invoke(ctx context.Context, req Request) (*Completion, error) {
	if len(iv.cfg.Candidates) == 0 {
		return nil, eris.New("llm: no candidate models configured")
	}

	maxTokens := iv.cfg.MaxTokens
	if req.MaxTokens > 0 {
		maxTokens = req.MaxTokens
	}
	temp := iv.cfg.Temperature

	backoff := resilience.RetryConfig{
		InitialBackoff: iv.cfg.RetryBase,
		JitterMax:      iv.cfg.JitterMax,
	}

	var lastErr error
	for _, model := range iv.cfg.Candidates {
		for attempt := 0; attempt < iv.cfg.MaxRetries; attempt++ {
			resp, err := iv.client.CreateMessage(ctx, anthropic.MessageRequest{
				Model:       model,
				MaxTokens:   maxTokens,
				System:      req.System,
				Temperature: &temp,
				Messages: []anthropic.Message{
					{Role: "user", Content: req.Prompt},
				},
			})
			if err != nil {
				lastErr = err
				if ctx.Err() != nil {
					return nil, lastErr
				}
				if !IsRetryable(err) {
					iv.log.Warn("model call failed, trying next candidate",
						zap.String("model", model), zap.Error(err))
					break
				}
				if attempt < iv.cfg.MaxRetries-1 {
					delay := resilience.Backoff(attempt, backoff)
					iv.log.Warn("retrying model call",
						zap.String("model", model),
						zap.Int("attempt", attempt+1),
						zap.Duration("wait", delay),
						zap.Error(err))
					if err := resilience.Sleep(ctx, delay); err != nil {
						return nil, lastErr
					}
					continue
				}
				break
			}

			resp.Usage.LogCost(model, "invoke")
			if resp.StopReason == "max_tokens" {
				iv.log.Warn("output hit max_tokens", zap.String("model", model))
			}

			if text := resp.Text(); text != "" {
				return &Completion{Text: text, StopReason: resp.StopReason, Model: model}, nil
			}

			lastErr = ErrEmptyResponse
			if attempt < iv.cfg.MaxRetries-1 {
				delay := resilience.Backoff(attempt, backoff)
				iv.log.Warn("empty model response, retrying",
					zap.String("model", model),
					zap.Duration("wait", delay))
				if err := resilience.Sleep(ctx, delay); err != nil {
					return nil, lastErr
				}
			}
		}
	}

	if lastErr == nil {
		lastErr = ErrEmptyResponse
	}
	return nil, eris.Wrap(lastErr, "llm: all candidates exhausted")
}

// IsRetryable reports whether a provider error looks transient: either it
// carries a known retry token in its message or it is a network-level
// transient error.
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}
	if resilience.IsTransient(err) {
		return true
	}
	msg := strings.ToLower(err.Error())
	for _, token := range retryTokens {
		if strings.Contains(msg, token) {
			return true
		}
	}
	return false
}
