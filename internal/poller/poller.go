// Package poller runs a tick function at a fixed cadence until stopped.
package poller

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

// DefaultInterval is the tick period used when none is configured.
const DefaultInterval = time.Second

// State is the lifecycle state of a Loop.
type State int

const (
	// Running means the loop is ticking.
	Running State = iota
	// StopRequested means Stop was called and the loop will exit after the
	// tick in progress.
	StopRequested
	// Stopped means the loop goroutine has returned.
	Stopped
)

// String returns a human-readable string for the state.
func (s State) String() string {
	switch s {
	case Running:
		return "Running"
	case StopRequested:
		return "StopRequested"
	case Stopped:
		return "Stopped"
	default:
		return "Unknown"
	}
}

// TickFunc is one unit of work. Errors are logged; the loop keeps going.
type TickFunc func(ctx context.Context) error

// Loop calls a TickFunc every interval, and again whenever it is kicked.
type Loop struct {
	tick     TickFunc
	interval time.Duration
	logger   *zap.SugaredLogger

	kick chan struct{}
	stop chan struct{}
	done chan struct{}

	mu       sync.Mutex
	state    State
	started  bool
	stopOnce sync.Once
}

// New creates a Loop. A non-positive interval uses DefaultInterval.
func New(tick TickFunc, interval time.Duration, logger *zap.SugaredLogger) *Loop {
	if interval <= 0 {
		interval = DefaultInterval
	}
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	return &Loop{
		tick:     tick,
		interval: interval,
		logger:   logger,
		kick:     make(chan struct{}, 1),
		stop:     make(chan struct{}),
		done:     make(chan struct{}),
	}
}

// Start runs the loop in a new goroutine and returns immediately.
func (l *Loop) Start(ctx context.Context) {
	if l.begin() {
		go l.run(ctx)
	}
}

// Run ticks until ctx is cancelled or Stop is called. A tick in progress
// always runs to completion before the stop signal is observed. Run may be
// called once.
func (l *Loop) Run(ctx context.Context) {
	if l.begin() {
		l.run(ctx)
	}
}

func (l *Loop) begin() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.started {
		return false
	}
	l.started = true
	return true
}

func (l *Loop) run(ctx context.Context) {
	defer func() {
		l.setState(Stopped)
		close(l.done)
	}()

	ticker := time.NewTicker(l.interval)
	defer ticker.Stop()

	for {
		if err := l.tick(ctx); err != nil {
			l.logger.Errorw("tick failed", "error", err)
		}
		select {
		case <-ctx.Done():
			l.setState(StopRequested)
			return
		case <-l.stop:
			return
		default:
		}
		select {
		case <-ctx.Done():
			l.setState(StopRequested)
			return
		case <-l.stop:
			return
		case <-ticker.C:
		case <-l.kick:
		}
	}
}

// Kick requests an extra tick as soon as the loop is idle. Kicks received
// while a tick is pending are coalesced.
func (l *Loop) Kick() {
	select {
	case l.kick <- struct{}{}:
	default:
	}
}

// Stop asks the loop to exit after the current tick. It does not wait.
func (l *Loop) Stop() {
	l.stopOnce.Do(func() {
		l.mu.Lock()
		if l.state == Running {
			l.state = StopRequested
		}
		l.mu.Unlock()
		close(l.stop)
	})
}

// Wait blocks until the loop goroutine has returned. It returns immediately
// if Run was never called.
func (l *Loop) Wait() {
	l.mu.Lock()
	started := l.started
	l.mu.Unlock()
	if !started {
		return
	}
	<-l.done
}

// Done is closed when the loop has stopped.
func (l *Loop) Done() <-chan struct{} {
	return l.done
}

// State returns the current lifecycle state.
func (l *Loop) State() State {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.state
}

func (l *Loop) setState(s State) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if s > l.state {
		l.state = s
	}
}
