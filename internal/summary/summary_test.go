package summary

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"samtrack/internal/llm"
)

const goodBullets = "• One.\n• Two.\n• Three.\n• Four.\n• Five."

// fakeProvider returns a canned response or error and records requests.
type fakeProvider struct {
	resp  string
	err   error
	calls int
	last  *llm.Request
}

func (p *fakeProvider) Complete(_ context.Context, req *llm.Request) (*llm.Response, error) {
	p.calls++
	p.last = req
	if p.err != nil {
		return nil, p.err
	}
	return &llm.Response{Content: p.resp, Model: "fake:model"}, nil
}

// longDescription builds a description comfortably above the minimum length.
func longDescription(s string) string {
	return s + strings.Repeat(" The contractor shall provide support services.", 3)
}

func TestSummarize_TooShort_NoProviderCall(t *testing.T) {
	p := &fakeProvider{resp: goodBullets}
	s := New(p, 0, nil)

	got := s.Summarize(context.Background(), "tiny")

	if got.OK() {
		t.Errorf("expected failure for short description, got %+v", got)
	}
	if !strings.Contains(got.Err, "too short") {
		t.Errorf("Err = %q, want mention of length", got.Err)
	}
	if p.calls != 0 {
		t.Errorf("provider called %d times, want 0", p.calls)
	}
}

func TestSummarize_Success(t *testing.T) {
	p := &fakeProvider{resp: goodBullets}
	s := New(p, 0, nil)

	got := s.Summarize(context.Background(), longDescription("Build a bridge."))

	if !got.OK() {
		t.Fatalf("Summarize failed: %q", got.Err)
	}
	if got.Bullets != goodBullets {
		t.Errorf("Bullets = %q, want passthrough of well-formed response", got.Bullets)
	}
	if p.calls != 1 {
		t.Errorf("provider called %d times, want exactly 1 (no retries)", p.calls)
	}
}

func TestSummarize_ProviderErrorBecomesOutcome(t *testing.T) {
	p := &fakeProvider{err: errors.New("connection refused")}
	s := New(p, 0, nil)

	got := s.Summarize(context.Background(), longDescription("Build a bridge."))

	if got.OK() {
		t.Fatal("expected failed outcome")
	}
	if !strings.Contains(got.Err, "connection refused") {
		t.Errorf("Err = %q, want provider reason", got.Err)
	}
	if got.Bullets != "" {
		t.Errorf("failed outcome has bullets %q", got.Bullets)
	}
}

func TestSummarize_RequestShape(t *testing.T) {
	p := &fakeProvider{resp: goodBullets}
	s := New(p, 0, nil)

	s.Summarize(context.Background(), longDescription("Replace the HVAC system at the federal courthouse."))

	req := p.last
	if req == nil {
		t.Fatal("provider never called")
	}
	if !strings.Contains(req.UserPrompt, "exactly 5 key bullet points") {
		t.Errorf("user prompt missing bullet instruction: %q", req.UserPrompt)
	}
	if !strings.Contains(req.UserPrompt, "HVAC") {
		t.Errorf("user prompt missing description text")
	}
	if !strings.Contains(req.SystemPrompt, "procurement") {
		t.Errorf("system prompt = %q, want procurement framing", req.SystemPrompt)
	}
	if req.Temperature != 0.3 || req.TopP != 0.9 || req.MaxTokens != 300 {
		t.Errorf("sampling params = (%v, %v, %v), want (0.3, 0.9, 300)",
			req.Temperature, req.TopP, req.MaxTokens)
	}
}

func TestSummarize_TruncatesOverlongDescription(t *testing.T) {
	p := &fakeProvider{resp: goodBullets}
	s := New(p, 0, nil)

	long := strings.Repeat("a", maxDescriptionChars+500)
	got := s.Summarize(context.Background(), long)

	if !got.OK() {
		t.Fatalf("Summarize failed: %q", got.Err)
	}
	if len(p.last.UserPrompt) > maxDescriptionChars+len(userPromptTemplate) {
		t.Errorf("prompt length %d: description was not truncated before the call", len(p.last.UserPrompt))
	}
}

func TestSummarize_RedactsBeforeSending(t *testing.T) {
	p := &fakeProvider{resp: goodBullets}
	s := New(p, 0, nil)

	desc := longDescription("Contact officer jane.doe@agency.gov for details.")
	got := s.Summarize(context.Background(), desc)

	if !got.OK() {
		t.Fatalf("Summarize failed: %q", got.Err)
	}
	if strings.Contains(p.last.UserPrompt, "jane.doe@agency.gov") {
		t.Error("email address reached the provider")
	}
	if !strings.Contains(p.last.UserPrompt, "[REDACTED]") {
		t.Error("redaction marker missing from prompt")
	}
}

func TestSummarize_NormalizesUnformattedResponse(t *testing.T) {
	p := &fakeProvider{resp: "First point.\nSecond point.\nThird point.\nFourth point.\nFifth point.\nSixth point."}
	s := New(p, 0, nil)

	got := s.Summarize(context.Background(), longDescription("Build a bridge."))

	if !got.OK() {
		t.Fatalf("Summarize failed: %q", got.Err)
	}
	lines := strings.Split(got.Bullets, "\n")
	if len(lines) != 5 {
		t.Fatalf("got %d lines, want 5: %q", len(lines), got.Bullets)
	}
	for i, line := range lines {
		if !strings.HasPrefix(line, "• ") {
			t.Errorf("line %d not bulleted: %q", i, line)
		}
	}
}

func TestSummarize_EmptyResponseFails(t *testing.T) {
	p := &fakeProvider{resp: "   \n  "}
	s := New(p, 0, nil)

	got := s.Summarize(context.Background(), longDescription("Build a bridge."))

	if got.OK() {
		t.Fatalf("expected failure for empty response, got %+v", got)
	}
}

// blockingProvider waits for its context to expire.
type blockingProvider struct{}

func (blockingProvider) Complete(ctx context.Context, _ *llm.Request) (*llm.Response, error) {
	<-ctx.Done()
	return nil, ctx.Err()
}

func TestSummarize_TimeoutIsPerRowFailure(t *testing.T) {
	s := New(blockingProvider{}, 5*time.Millisecond, nil)

	got := s.Summarize(context.Background(), longDescription("Build a bridge."))

	if got.OK() {
		t.Fatal("expected timeout failure")
	}
	if !strings.Contains(got.Err, "deadline") {
		t.Errorf("Err = %q, want deadline exceeded", got.Err)
	}
}
