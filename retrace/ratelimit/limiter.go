package ratelimit

import (
	"context"
	"time"
)

// Limiter grants permits no closer than a fixed interval apart. Waiters are
// served in arrival order and requests are never dropped or merged, so there
// is no burst capacity. One Limiter is shared by every outbound client of a
// process.
type Limiter struct {
	interval time.Duration
	clock    Clock

	// gate holds a single token; the holder owns last.
	gate chan struct{}
	last time.Time
	used bool
}

type Option func(*Limiter)

func WithClock(clock Clock) Option {
	return func(l *Limiter) {
		l.clock = clock
	}
}

// New returns a limiter with the given minimum interval. A non-positive
// interval disables throttling.
func New(interval time.Duration, opts ...Option) *Limiter {
	l := &Limiter{
		interval: interval,
		clock:    SystemClock{},
		gate:     make(chan struct{}, 1),
	}
	for _, opt := range opts {
		opt(l)
	}
	l.gate <- struct{}{}
	return l
}

// Acquire blocks until a permit is granted or ctx is done. The grant time is
// recorded before Acquire returns, so a caller that abandons its request
// afterwards does not delay anyone. A caller cancelled while waiting leaves
// the last grant time untouched.
func (l *Limiter) Acquire(ctx context.Context) error {
	if l == nil || l.interval <= 0 {
		return ctx.Err()
	}
	select {
	case <-l.gate:
	case <-ctx.Done():
		return ctx.Err()
	}
	defer func() { l.gate <- struct{}{} }()

	if l.used {
		if wait := l.last.Add(l.interval).Sub(l.clock.Now()); wait > 0 {
			select {
			case <-l.clock.After(wait):
			case <-ctx.Done():
				return ctx.Err()
			}
		}
	}
	l.last = l.clock.Now()
	l.used = true
	return nil
}
