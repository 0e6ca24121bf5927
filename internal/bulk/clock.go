package bulk

import (
	"context"
	"time"
)

// Clock abstracts wall time so pacing is observable in tests without real
// delays.
type Clock interface {
	Now() time.Time
	// Sleep blocks for d or until ctx is done, whichever comes first.
	Sleep(ctx context.Context, d time.Duration)
}

type realClock struct{}

func (realClock) Now() time.Time { return time.Now() }

func (realClock) Sleep(ctx context.Context, d time.Duration) {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
	case <-t.C:
	}
}

// Pacer is a single-slot scheduler with a fixed refill interval: Wait
// returns immediately the first time, then blocks until at least interval
// has passed since the previous Wait returned. It is the cooperative
// rate-limiting policy against the external provider; it is not adaptive
// and does not back off on failures.
type Pacer struct {
	interval time.Duration
	clock    Clock
	last     time.Time
}

// NewPacer returns a Pacer. A nil clock uses real time.
func NewPacer(interval time.Duration, clock Clock) *Pacer {
	if clock == nil {
		clock = realClock{}
	}
	return &Pacer{interval: interval, clock: clock}
}

// Wait blocks until the next slot is available. A done context releases the
// wait early; the caller is expected to notice the cancellation itself.
func (p *Pacer) Wait(ctx context.Context) {
	if !p.last.IsZero() {
		if d := p.interval - p.clock.Now().Sub(p.last); d > 0 {
			p.clock.Sleep(ctx, d)
		}
	}
	p.last = p.clock.Now()
}
