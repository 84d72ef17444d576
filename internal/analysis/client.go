// Package analysis turns resume text into a structured Result through an LLM provider,
// degrading to a canned record whenever the provider fails.
package analysis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"resume-analyzer/internal/llm"
	"resume-analyzer/internal/shared/metrics"
	"resume-analyzer/internal/shared/retry"
	"resume-analyzer/internal/shared/telemetry"
)

// DefaultTimeout bounds one provider attempt.
const DefaultTimeout = 60 * time.Second

// Analyzer is the capability the upload pipeline depends on.
type Analyzer interface {
	Analyze(ctx context.Context, text string) (Result, error)
}

var errNoProvider = errors.New("no llm provider configured")

// Client implements Analyzer on top of an llm.Client.
type Client struct {
	LLM     llm.Client
	Timeout time.Duration
	Retry   retry.Policy
	Now     func() time.Time
}

// New constructs a Client with the default retry policy.
func New(provider llm.Client, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Client{
		LLM:     provider,
		Timeout: timeout,
		Retry:   retry.DefaultPolicy,
		Now:     time.Now,
	}
}

// Analyze never fails because of the provider: any provider or parse error yields Fallback.
// It returns an error only when ctx itself is done.
func (c *Client) Analyze(ctx context.Context, text string) (Result, error) {
	if err := ctx.Err(); err != nil {
		return Result{}, err
	}
	start := time.Now()
	defer func() { metrics.ObserveAnalysisDuration(time.Since(start)) }()

	res, err := c.complete(ctx, text)
	if err == nil {
		res.AnalyzedAt = c.now().UTC()
		return res, nil
	}
	if ctxErr := ctx.Err(); ctxErr != nil {
		return Result{}, ctxErr
	}

	telemetry.Warn("analysis.fallback", map[string]any{
		"model": c.model(),
		"error": err,
	})
	metrics.IncAnalysisFallback()
	return Fallback(c.now()), nil
}

func (c *Client) complete(ctx context.Context, text string) (Result, error) {
	if c.LLM == nil {
		return Result{}, errNoProvider
	}
	req := llm.Request{
		System:      systemPrompt,
		User:        fmt.Sprintf(promptTemplate, text),
		Temperature: llm.Float32(Temperature),
		JSON:        true,
	}

	return retry.Do(ctx, c.Retry, retryable, func(attempt int, err error) {
		telemetry.Warn("analysis.retry", map[string]any{
			"attempt": attempt,
			"model":   c.model(),
			"error":   err,
		})
	}, func(ctx context.Context) (Result, error) {
		attemptCtx, cancel := context.WithTimeout(ctx, c.timeout())
		defer cancel()

		resp, err := c.LLM.Complete(attemptCtx, req)
		if err != nil {
			return Result{}, err
		}
		return parseResult(resp.Content)
	})
}

func retryable(err error) bool {
	var pe *parseError
	if errors.As(err, &pe) {
		return false
	}
	if errors.Is(err, llm.ErrDisabled) {
		return false
	}
	return retry.IsTransient(err)
}

func (c *Client) timeout() time.Duration {
	if c.Timeout <= 0 {
		return DefaultTimeout
	}
	return c.Timeout
}

func (c *Client) now() time.Time {
	if c.Now != nil {
		return c.Now()
	}
	return time.Now()
}

func (c *Client) model() string {
	if c.LLM == nil {
		return ""
	}
	return c.LLM.Model()
}

var _ Analyzer = (*Client)(nil)
