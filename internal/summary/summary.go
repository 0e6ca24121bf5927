// Package summary wraps a text-completion provider behind a single call that
// turns one contract description into a five-bullet summary. Failures are
// returned as tagged outcomes, never as errors or panics, so callers can
// drive many rows without their control flow depending on error propagation.
package summary

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"

	"samtrack/internal/llm"
	"samtrack/internal/redact"
)

const (
	// maxDescriptionChars bounds what is sent to the provider; portal
	// descriptions occasionally include entire statements of work.
	maxDescriptionChars = 50000
	// minDescriptionChars is the floor below which a summary would just
	// restate the input.
	minDescriptionChars = 50

	requestTemperature = 0.3
	requestTopP        = 0.9
	requestMaxTokens   = 300
)

// Outcome is the result of one summarization attempt. Exactly one of
// Bullets or Err is set. Immutable once produced.
type Outcome struct {
	Bullets string
	Err     string
}

// OK reports whether the attempt produced a summary.
func (o Outcome) OK() bool { return o.Err == "" }

// failure builds a failed Outcome from a reason string.
func failure(reason string) Outcome { return Outcome{Err: reason} }

// Summarizer issues one provider call per Summarize invocation. It performs
// no retries; retry policy, if any, belongs to the caller.
type Summarizer struct {
	provider llm.Provider
	timeout  time.Duration
	logger   *zap.Logger
}

// New returns a Summarizer. timeout bounds each provider call; zero disables
// the per-call deadline. A nil logger is replaced with a no-op logger.
func New(provider llm.Provider, timeout time.Duration, logger *zap.Logger) *Summarizer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Summarizer{provider: provider, timeout: timeout, logger: logger}
}

// Summarize produces a five-bullet summary of description. Descriptions that
// are too short to summarize fail locally without a network call; overlong
// ones are truncated. Provider errors of any kind (network, provider-side,
// malformed response, timeout) come back as a failed Outcome.
func (s *Summarizer) Summarize(ctx context.Context, description string) Outcome {
	desc := strings.TrimSpace(description)
	if len(desc) < minDescriptionChars {
		return failure("description too short to summarize")
	}
	if r := []rune(desc); len(r) > maxDescriptionChars {
		desc = string(r[:maxDescriptionChars])
	}
	desc = redact.Clean(desc)

	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	resp, err := s.provider.Complete(ctx, &llm.Request{
		SystemPrompt: systemPrompt,
		UserPrompt:   buildUserPrompt(desc),
		Temperature:  requestTemperature,
		TopP:         requestTopP,
		MaxTokens:    requestMaxTokens,
	})
	if err != nil {
		s.logger.Warn("summary call failed", zap.Error(err))
		return failure(err.Error())
	}

	bullets := NormalizeBullets(resp.Content)
	if bullets == "" {
		return failure("empty summary from provider")
	}
	if err := Validate(bullets); err != nil {
		// Accepted anyway: a 4-bullet summary is still useful to display.
		s.logger.Warn("summary bullet count off", zap.Error(err), zap.String("model", resp.Model))
	}
	return Outcome{Bullets: bullets}
}
