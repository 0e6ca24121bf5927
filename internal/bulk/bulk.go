// Package bulk drives the summary client over an ordered set of contract
// rows: one provider call per row, strictly sequential, with a fixed minimum
// spacing between calls. A row's failure is recorded on the row and never
// stops the run; only missing provider configuration aborts a run, and it
// does so before any row is touched.
package bulk

import (
	"context"
	"time"

	"go.uber.org/zap"

	"samtrack/internal/summary"
)

// DefaultInterval is the minimum spacing between provider calls.
const DefaultInterval = 200 * time.Millisecond

// Row is one contract record in the current view. The orchestrator mutates
// it in place as the outcome arrives: Bullets on success, ErrMsg on failure.
// A failed row's Bullets are left untouched.
type Row struct {
	ID          string
	Description string
	Bullets     string
	ErrMsg      string
}

// Report is the aggregate tally of one bulk run. Every row visible at
// invocation start is counted exactly once, as a success or a failure,
// unless the run aborted pre-flight, in which case zero rows were attempted.
type Report struct {
	Attempted  int  `json:"attempted"`
	Successful int  `json:"successful"`
	Aborted    bool `json:"aborted"`
}

// Summarizer is the single-call client the orchestrator drives. It must not
// retry internally; each row gets exactly one attempt.
type Summarizer interface {
	Summarize(ctx context.Context, description string) summary.Outcome
}

// Options configures a Runner.
type Options struct {
	// Configured is the pre-flight gate: false aborts a run before any row
	// is touched. The value is injected at construction rather than read
	// from ambient process state so the gate is testable.
	Configured bool
	// Interval is the minimum spacing between calls; zero means
	// DefaultInterval.
	Interval time.Duration
	// OnProgress, when non-nil, receives (processed, total) after each row.
	OnProgress func(processed, total int)
	// Clock overrides wall time in tests; nil uses real time.
	Clock Clock
	// Logger defaults to a no-op logger when nil.
	Logger *zap.Logger
}

// Runner executes bulk summary runs.
type Runner struct {
	summarizer Summarizer
	opts       Options
}

// NewRunner returns a Runner over the given summarizer.
func NewRunner(s Summarizer, opts Options) *Runner {
	if opts.Interval <= 0 {
		opts.Interval = DefaultInterval
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	return &Runner{summarizer: s, opts: opts}
}

// Run processes rows in the order given. When the provider is not
// configured it returns {0, 0, aborted} immediately: no row is mutated, no
// call is made, and no provider quota is spent. Cancelling ctx stops the
// run between rows; the report then tallies only the rows attempted so far.
func (r *Runner) Run(ctx context.Context, rows []*Row) Report {
	if !r.opts.Configured {
		r.opts.Logger.Warn("bulk run aborted: provider not configured")
		return Report{Aborted: true}
	}

	total := len(rows)
	pacer := NewPacer(r.opts.Interval, r.opts.Clock)
	report := Report{}

	for _, row := range rows {
		if ctx.Err() != nil {
			r.opts.Logger.Info("bulk run cancelled",
				zap.Int("processed", report.Attempted),
				zap.Int("total", total))
			break
		}
		pacer.Wait(ctx)

		outcome := r.summarizer.Summarize(ctx, row.Description)
		if outcome.OK() {
			row.Bullets = outcome.Bullets
			row.ErrMsg = ""
			report.Successful++
		} else {
			row.ErrMsg = outcome.Err
			r.opts.Logger.Warn("row summary failed",
				zap.String("notice_id", row.ID),
				zap.String("reason", outcome.Err))
		}
		report.Attempted++

		if r.opts.OnProgress != nil {
			r.opts.OnProgress(report.Attempted, total)
		}
	}

	r.opts.Logger.Info("bulk run finished",
		zap.Int("attempted", report.Attempted),
		zap.Int("successful", report.Successful))
	return report
}
