package analysis

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"resume-analyzer/internal/llm"
	"resume-analyzer/internal/shared/retry"
)

type scriptedLLM struct {
	mu        sync.Mutex
	responses []scripted
	calls     int
	requests  []llm.Request
}

type scripted struct {
	content string
	err     error
}

func (s *scriptedLLM) Complete(ctx context.Context, req llm.Request) (llm.Response, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.requests = append(s.requests, req)
	idx := s.calls
	s.calls++
	if idx >= len(s.responses) {
		idx = len(s.responses) - 1
	}
	r := s.responses[idx]
	if r.err != nil {
		return llm.Response{}, r.err
	}
	return llm.Response{Content: r.content}, nil
}

func (s *scriptedLLM) Model() string { return "stub" }

var fixedNow = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

func newTestClient(provider llm.Client) *Client {
	c := New(provider, time.Second)
	c.Retry = retry.Policy{MaxTries: 3, Initial: time.Millisecond, Max: 2 * time.Millisecond}
	c.Now = func() time.Time { return fixedNow }
	return c
}

const goodAnswer = `{
  "atsScore": 82,
  "skills": [{"name": "Go", "category": "Technical", "proficiency": "Advanced", "relevance": 95}],
  "strengths": ["Clear impact statements"],
  "weaknesses": ["No summary section"],
  "recommendations": ["Add a summary"],
  "experience": {"years": 6, "roles": ["Backend Engineer"], "industries": ["Fintech"]},
  "education": [{"degree": "BSc Computer Science", "institution": "State University", "year": 2016}],
  "certifications": [],
  "languages": ["English"],
  "summary": "Backend engineer with six years of experience."
}`

func TestAnalyzeModelResult(t *testing.T) {
	provider := &scriptedLLM{responses: []scripted{{content: goodAnswer}}}
	res, err := newTestClient(provider).Analyze(context.Background(), "Jane Doe, Go engineer")
	require.NoError(t, err)

	assert.Equal(t, 82, res.ATSScore)
	assert.Equal(t, SourceModel, res.Source)
	assert.False(t, res.Degraded)
	assert.Equal(t, "2016", res.Education[0].Year)
	assert.Equal(t, 6, res.Experience.Years)
	assert.Equal(t, fixedNow, res.AnalyzedAt)

	require.Len(t, provider.requests, 1)
	req := provider.requests[0]
	assert.True(t, req.JSON)
	require.NotNil(t, req.Temperature)
	assert.InDelta(t, 0.3, *req.Temperature, 1e-6)
	assert.Contains(t, req.System, "expert resume analyst")
	assert.Contains(t, req.User, "Jane Doe, Go engineer")
	assert.Contains(t, req.User, `"atsScore": 85`)
}

func TestAnalyzeClampsScores(t *testing.T) {
	answer := "```json\n{\"atsScore\": 140, \"skills\": [{\"name\": \"Go\", \"relevance\": -5}, {\"name\": \"SQL\", \"relevance\": 250.4}], \"summary\": \"x\"}\n```"
	provider := &scriptedLLM{responses: []scripted{{content: answer}}}

	res, err := newTestClient(provider).Analyze(context.Background(), "text")
	require.NoError(t, err)
	assert.Equal(t, 100, res.ATSScore)
	require.Len(t, res.Skills, 2)
	assert.Equal(t, 0, res.Skills[0].Relevance)
	assert.Equal(t, 100, res.Skills[1].Relevance)
	assert.Equal(t, SourceModel, res.Source)
	assert.NotNil(t, res.Strengths)
}

func TestAnalyzeFallsBackOnProviderError(t *testing.T) {
	provider := &scriptedLLM{responses: []scripted{{err: errors.New("openai: http status 401: invalid api key")}}}

	res, err := newTestClient(provider).Analyze(context.Background(), "text")
	require.NoError(t, err)
	assert.Equal(t, Fallback(fixedNow), res)
	assert.True(t, res.Degraded)
	assert.Equal(t, SourceFallback, res.Source)
	assert.Equal(t, 1, provider.calls, "auth errors are not retried")
}

func TestAnalyzeFallsBackOnMalformedJSON(t *testing.T) {
	provider := &scriptedLLM{responses: []scripted{{content: "Sorry, I cannot help with that."}}}

	res, err := newTestClient(provider).Analyze(context.Background(), "text")
	require.NoError(t, err)
	assert.Equal(t, 75, res.ATSScore)
	assert.True(t, res.Degraded)
	assert.Equal(t, 1, provider.calls)
}

func TestAnalyzeRetriesTransientErrors(t *testing.T) {
	provider := &scriptedLLM{responses: []scripted{
		{err: errors.New("openai: http status 503: overloaded")},
		{err: errors.New("read tcp: connection reset by peer")},
		{content: goodAnswer},
	}}

	res, err := newTestClient(provider).Analyze(context.Background(), "text")
	require.NoError(t, err)
	assert.Equal(t, 82, res.ATSScore)
	assert.Equal(t, 3, provider.calls)
}

func TestAnalyzeGivesUpAfterMaxTries(t *testing.T) {
	provider := &scriptedLLM{responses: []scripted{{err: errors.New("openai: http status 502")}}}

	res, err := newTestClient(provider).Analyze(context.Background(), "text")
	require.NoError(t, err)
	assert.True(t, res.Degraded)
	assert.Equal(t, 3, provider.calls)
}

func TestAnalyzeWithoutProvider(t *testing.T) {
	res, err := newTestClient(nil).Analyze(context.Background(), "text")
	require.NoError(t, err)
	assert.True(t, res.Degraded)

	res, err = newTestClient(llm.DisabledClient{}).Analyze(context.Background(), "text")
	require.NoError(t, err)
	assert.True(t, res.Degraded)
}

func TestAnalyzeReturnsErrorWhenCallerCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	provider := &scriptedLLM{responses: []scripted{{content: goodAnswer}}}

	_, err := newTestClient(provider).Analyze(ctx, "text")
	require.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 0, provider.calls)
}

func TestFallbackIsSchemaValid(t *testing.T) {
	fb := Fallback(fixedNow)
	assert.Equal(t, fb, Clamp(fb))
	assert.NotNil(t, fb.Certifications)
	assert.Equal(t, "Professional with solid technical skills and experience.", fb.Summary)
	fb.Skills[0].Name = "mutated"
	assert.Equal(t, "JavaScript", Fallback(fixedNow).Skills[0].Name)
}

func TestStripFences(t *testing.T) {
	tests := map[string]string{
		`{"a":1}`:                   `{"a":1}`,
		"```json\n{\"a\":1}\n```":   `{"a":1}`,
		"```\n{\"a\":1}\n```":       `{"a":1}`,
		"  ```json {\"a\":1} ```  ": `{"a":1}`,
	}
	for in, want := range tests {
		if got := stripFences(in); got != want {
			t.Fatalf("stripFences(%q) = %q, want %q", in, got, want)
		}
	}
	assert.True(t, strings.HasPrefix(stripFences("```json\n[]\n```"), "["))
}
