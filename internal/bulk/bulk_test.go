package bulk

import (
	"context"
	"fmt"
	"testing"
	"time"

	"samtrack/internal/summary"
)

// fakeSummarizer returns canned outcomes and counts calls.
type fakeSummarizer struct {
	calls  int
	descs  []string
	failOn map[int]string // 1-based call number -> failure reason
}

func (f *fakeSummarizer) Summarize(_ context.Context, description string) summary.Outcome {
	f.calls++
	f.descs = append(f.descs, description)
	if reason, ok := f.failOn[f.calls]; ok {
		return summary.Outcome{Err: reason}
	}
	return summary.Outcome{Bullets: "• ok."}
}

// fakeClock advances instantly and records every sleep.
type fakeClock struct {
	now    time.Time
	sleeps []time.Duration
}

func (c *fakeClock) Now() time.Time { return c.now }

func (c *fakeClock) Sleep(_ context.Context, d time.Duration) {
	c.sleeps = append(c.sleeps, d)
	c.now = c.now.Add(d)
}

func makeRows(n int) []*Row {
	rows := make([]*Row, n)
	for i := range rows {
		rows[i] = &Row{
			ID:          fmt.Sprintf("N-%04d", i+1),
			Description: fmt.Sprintf("description %d", i+1),
		}
	}
	return rows
}

func TestRun_NotConfigured_AbortsBeforeAnyRow(t *testing.T) {
	sum := &fakeSummarizer{}
	runner := NewRunner(sum, Options{Configured: false, Clock: &fakeClock{}})
	rows := makeRows(3)

	got := runner.Run(context.Background(), rows)

	want := Report{Attempted: 0, Successful: 0, Aborted: true}
	if got != want {
		t.Errorf("Run() = %+v, want %+v", got, want)
	}
	if sum.calls != 0 {
		t.Errorf("summarizer called %d times, want 0", sum.calls)
	}
	for i, row := range rows {
		if row.Bullets != "" || row.ErrMsg != "" {
			t.Errorf("row %d mutated: %+v", i, row)
		}
	}
}

func TestRun_EmptyRows_Configured(t *testing.T) {
	runner := NewRunner(&fakeSummarizer{}, Options{Configured: true, Clock: &fakeClock{}})

	got := runner.Run(context.Background(), nil)

	want := Report{Attempted: 0, Successful: 0, Aborted: false}
	if got != want {
		t.Errorf("Run() = %+v, want %+v", got, want)
	}
}

func TestRun_AllSucceed(t *testing.T) {
	sum := &fakeSummarizer{}
	runner := NewRunner(sum, Options{Configured: true, Clock: &fakeClock{}})
	rows := makeRows(5)

	got := runner.Run(context.Background(), rows)

	want := Report{Attempted: 5, Successful: 5, Aborted: false}
	if got != want {
		t.Errorf("Run() = %+v, want %+v", got, want)
	}
	for i, row := range rows {
		if row.Bullets == "" {
			t.Errorf("row %d has no summary", i)
		}
		if row.ErrMsg != "" {
			t.Errorf("row %d has error %q", i, row.ErrMsg)
		}
	}
}

func TestRun_SingleFailureDoesNotStopRun(t *testing.T) {
	sum := &fakeSummarizer{failOn: map[int]string{2: "provider exploded"}}
	runner := NewRunner(sum, Options{Configured: true, Clock: &fakeClock{}})
	rows := makeRows(3)

	got := runner.Run(context.Background(), rows)

	want := Report{Attempted: 3, Successful: 2, Aborted: false}
	if got != want {
		t.Errorf("Run() = %+v, want %+v", got, want)
	}
	if sum.calls != 3 {
		t.Errorf("summarizer called %d times, want 3", sum.calls)
	}
	if rows[1].ErrMsg != "provider exploded" {
		t.Errorf("row 2 ErrMsg = %q, want failure reason", rows[1].ErrMsg)
	}
	if rows[1].Bullets != "" {
		t.Errorf("failed row has summary %q, want unset", rows[1].Bullets)
	}
	if rows[0].Bullets == "" || rows[2].Bullets == "" {
		t.Error("rows around the failure were not summarized")
	}
}

func TestRun_SevenOfTenSucceed(t *testing.T) {
	sum := &fakeSummarizer{failOn: map[int]string{2: "err", 5: "err", 9: "err"}}
	runner := NewRunner(sum, Options{Configured: true, Clock: &fakeClock{}})

	got := runner.Run(context.Background(), makeRows(10))

	want := Report{Attempted: 10, Successful: 7, Aborted: false}
	if got != want {
		t.Errorf("Run() = %+v, want %+v", got, want)
	}
}

func TestRun_ProgressStrictlyIncreasingToNN(t *testing.T) {
	var progress [][2]int
	runner := NewRunner(&fakeSummarizer{failOn: map[int]string{3: "err"}}, Options{
		Configured: true,
		Clock:      &fakeClock{},
		OnProgress: func(processed, total int) {
			progress = append(progress, [2]int{processed, total})
		},
	})

	const n = 4
	runner.Run(context.Background(), makeRows(n))

	if len(progress) != n {
		t.Fatalf("got %d progress updates, want %d", len(progress), n)
	}
	for i, p := range progress {
		if p[0] != i+1 {
			t.Errorf("progress[%d] processed = %d, want %d", i, p[0], i+1)
		}
		if p[1] != n {
			t.Errorf("progress[%d] total = %d, want %d", i, p[1], n)
		}
	}
	if last := progress[len(progress)-1]; last != [2]int{n, n} {
		t.Errorf("final progress = %v, want (%d, %d)", last, n, n)
	}
}

func TestRun_PacesBetweenConsecutiveCalls(t *testing.T) {
	clock := &fakeClock{now: time.Unix(0, 0)}
	runner := NewRunner(&fakeSummarizer{}, Options{Configured: true, Clock: clock})

	runner.Run(context.Background(), makeRows(3))

	// No pause before the first row and none after the last: two sleeps.
	if len(clock.sleeps) != 2 {
		t.Fatalf("got %d sleeps, want 2: %v", len(clock.sleeps), clock.sleeps)
	}
	for i, d := range clock.sleeps {
		if d < DefaultInterval {
			t.Errorf("sleep %d = %v, want >= %v", i, d, DefaultInterval)
		}
	}
}

func TestRun_SingleRow_NoPacing(t *testing.T) {
	clock := &fakeClock{}
	runner := NewRunner(&fakeSummarizer{}, Options{Configured: true, Clock: clock})

	runner.Run(context.Background(), makeRows(1))

	if len(clock.sleeps) != 0 {
		t.Errorf("got %d sleeps, want 0", len(clock.sleeps))
	}
}

func TestRun_PreservesRowOrder(t *testing.T) {
	sum := &fakeSummarizer{}
	runner := NewRunner(sum, Options{Configured: true, Clock: &fakeClock{}})

	runner.Run(context.Background(), makeRows(4))

	for i, desc := range sum.descs {
		if want := fmt.Sprintf("description %d", i+1); desc != want {
			t.Errorf("call %d got %q, want %q", i, desc, want)
		}
	}
}

func TestRun_CancelledBetweenRows(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	sum := &fakeSummarizer{}
	runner := NewRunner(sum, Options{
		Configured: true,
		Clock:      &fakeClock{},
		OnProgress: func(processed, _ int) {
			if processed == 2 {
				cancel()
			}
		},
	})

	got := runner.Run(ctx, makeRows(5))

	if got.Aborted {
		t.Error("cancelled run reported as aborted")
	}
	if got.Attempted != 2 {
		t.Errorf("Attempted = %d, want 2", got.Attempted)
	}
	if sum.calls != 2 {
		t.Errorf("summarizer called %d times, want 2", sum.calls)
	}
}

func TestPacer_FirstWaitIsFree(t *testing.T) {
	clock := &fakeClock{now: time.Unix(100, 0)}
	p := NewPacer(200*time.Millisecond, clock)

	p.Wait(context.Background())

	if len(clock.sleeps) != 0 {
		t.Errorf("first Wait slept %v, want no sleep", clock.sleeps)
	}
}

func TestPacer_WaitsOnlyTheRemainder(t *testing.T) {
	clock := &fakeClock{now: time.Unix(100, 0)}
	p := NewPacer(200*time.Millisecond, clock)

	p.Wait(context.Background())
	clock.now = clock.now.Add(150 * time.Millisecond) // work between calls
	p.Wait(context.Background())

	if len(clock.sleeps) != 1 || clock.sleeps[0] != 50*time.Millisecond {
		t.Errorf("sleeps = %v, want [50ms]", clock.sleeps)
	}
}

func TestPacer_NoSleepWhenIntervalElapsed(t *testing.T) {
	clock := &fakeClock{now: time.Unix(100, 0)}
	p := NewPacer(200*time.Millisecond, clock)

	p.Wait(context.Background())
	clock.now = clock.now.Add(300 * time.Millisecond)
	p.Wait(context.Background())

	if len(clock.sleeps) != 0 {
		t.Errorf("sleeps = %v, want none", clock.sleeps)
	}
}
