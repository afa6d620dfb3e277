package poll

import (
	"context"
	"log"
	"time"

	"github.com/zoobzio/clockz"
)

// Poller repeatedly invokes fn at a fixed interval until the context is
// cancelled. The mobile client keeps chat and notifications fresh this way
// rather than holding a push channel open; an fn error is logged and the
// loop keeps going, so a flaky backend just delays the next refresh.
type Poller struct {
	name     string
	interval time.Duration
	fn       func(ctx context.Context) error
	clock    clockz.Clock
}

func New(name string, interval time.Duration, fn func(ctx context.Context) error) *Poller {
	return &Poller{name: name, interval: interval, fn: fn}
}

// WithClock sets a custom clock for testing.
func (p *Poller) WithClock(clock clockz.Clock) *Poller {
	p.clock = clock
	return p
}

func (p *Poller) getClock() clockz.Clock {
	if p.clock == nil {
		return clockz.RealClock
	}
	return p.clock
}

// Run ticks immediately, then every interval. It returns when ctx is done.
func (p *Poller) Run(ctx context.Context) {
	clock := p.getClock()
	for {
		if err := p.fn(ctx); err != nil && ctx.Err() == nil {
			log.Printf("poll %s: %v", p.name, err)
		}
		select {
		case <-ctx.Done():
			return
		case <-clock.After(p.interval):
		}
	}
}
