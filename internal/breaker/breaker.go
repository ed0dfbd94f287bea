// Package breaker guards a flaky downstream (the telemetry broker) with a
// classic closed/open/half-open circuit breaker: after MaxFailures
// consecutive failures the circuit opens and calls fast-fail until
// ResetTimeout has elapsed, then a single half-open attempt decides whether
// to close again.
package breaker

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"
)

type State int

const (
	Closed State = iota
	Open
	HalfOpen
)

func (s State) String() string {
	switch s {
	case Closed:
		return "closed"
	case Open:
		return "open"
	case HalfOpen:
		return "half-open"
	default:
		return "unknown"
	}
}

// ErrOpen is returned while the circuit is open and calls fast-fail.
var ErrOpen = errors.New("circuit breaker is open; fast-fail")

type Config struct {
	MaxFailures  int
	ResetTimeout time.Duration
}

type Breaker struct {
	name string
	cfg  Config
	log  *slog.Logger

	// now is stubbed in tests.
	now func() time.Time

	mu          sync.Mutex
	state       State
	recentFails int
	openedAt    time.Time
}

func New(name string, cfg Config, log *slog.Logger) *Breaker {
	if cfg.MaxFailures <= 0 {
		cfg.MaxFailures = 3
	}
	if cfg.ResetTimeout <= 0 {
		cfg.ResetTimeout = 10 * time.Second
	}
	b := &Breaker{
		name:  name,
		cfg:   cfg,
		log:   log.With("component", "breaker", "breaker", name),
		now:   time.Now,
		state: Closed,
	}
	b.log.Info("breaker created", "maxFailures", cfg.MaxFailures, "resetTimeout", cfg.ResetTimeout.String())
	return b
}

// State returns the current circuit state.
func (b *Breaker) State() State {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.state
}

// Execute runs op through the breaker.
func (b *Breaker) Execute(ctx context.Context, op func(ctx context.Context) error) error {
	b.mu.Lock()
	state := b.state
	openedAt := b.openedAt
	b.mu.Unlock()

	if state == Open {
		if b.now().Sub(openedAt) < b.cfg.ResetTimeout {
			return ErrOpen
		}
		return b.tryHalfOpen(ctx, op)
	}

	err := op(ctx)
	if err == nil {
		b.onSuccess()
		return nil
	}
	b.onFailure(err)
	return err
}

func (b *Breaker) tryHalfOpen(ctx context.Context, op func(ctx context.Context) error) error {
	b.mu.Lock()
	b.state = HalfOpen
	b.mu.Unlock()
	b.log.Info("breaker probing", "previousFailures", b.recentFails)

	if err := op(ctx); err != nil {
		b.mu.Lock()
		b.state = Open
		b.openedAt = b.now()
		b.mu.Unlock()
		b.log.Warn("breaker probe failed, reopening", "err", err)
		return err
	}

	b.mu.Lock()
	b.state = Closed
	b.recentFails = 0
	b.mu.Unlock()
	b.log.Info("breaker closed after probe")
	return nil
}

func (b *Breaker) onSuccess() {
	b.mu.Lock()
	b.recentFails = 0
	b.mu.Unlock()
}

func (b *Breaker) onFailure(err error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.recentFails++
	if b.recentFails >= b.cfg.MaxFailures && b.state == Closed {
		b.state = Open
		b.openedAt = b.now()
		b.log.Warn("breaker opened", "failures", b.recentFails, "err", err)
	}
}
