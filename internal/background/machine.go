// Package background owns the day/night background state and applies
// wallpaper changes when the phase flips.
package background

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"daynight-wallpaper/internal/clock"
	"daynight-wallpaper/internal/config"
	"daynight-wallpaper/internal/ini"
)

// Setter applies a wallpaper image.
type Setter interface {
	SetBackground(path string) error
}

// Animator plays the tray icon animation for a phase change.
type Animator interface {
	Animate(from, to clock.Phase)
}

// StateStore persists the background phase.
type StateStore interface {
	LoadState() (clock.Phase, error)
	SaveState(clock.Phase) error
}

// Recorder keeps a log of applied transitions.
type Recorder interface {
	Record(from, to clock.Phase, image string, at time.Time) error
}

// Options configures a Machine. Setter and State are required.
type Options struct {
	Setter   Setter
	Animator Animator
	State    StateStore
	Recorder Recorder
	Logger   *zap.SugaredLogger
	Now      func() time.Time
}

// Machine is the background state machine. It is safe for concurrent use;
// ticks are serialized.
type Machine struct {
	setter   Setter
	animator Animator
	state    StateStore
	recorder Recorder
	logger   *zap.SugaredLogger
	now      func() time.Time

	mu      sync.Mutex
	phase   clock.Phase
	changed time.Time
}

// New creates a Machine in the Day phase. Call Init to load the stored phase.
func New(opts Options) *Machine {
	m := &Machine{
		setter:   opts.Setter,
		animator: opts.Animator,
		state:    opts.State,
		recorder: opts.Recorder,
		logger:   opts.Logger,
		now:      opts.Now,
		phase:    clock.Day,
	}
	if m.logger == nil {
		m.logger = zap.NewNop().Sugar()
	}
	if m.now == nil {
		m.now = time.Now
	}
	return m
}

// Init loads the stored phase. On first run the state is absent; the
// machine starts in Day and writes it back. When the stored value cannot be
// read the machine also starts in Day, leaves the file alone and returns the
// error for the caller to report.
func (m *Machine) Init() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	p, err := m.state.LoadState()
	switch {
	case err == nil:
		m.phase = p
		return nil
	case errors.Is(err, ini.ErrNotFound):
		m.phase = clock.Day
		m.logger.Infow("no stored background state, starting in day")
		if err := m.state.SaveState(clock.Day); err != nil {
			return fmt.Errorf("persist initial state: %w", err)
		}
		return nil
	default:
		m.phase = clock.Day
		m.logger.Warnw("stored background state unreadable, starting in day", "error", err)
		return fmt.Errorf("load state: %w", err)
	}
}

// Phase returns the current in-memory phase.
func (m *Machine) Phase() clock.Phase {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.phase
}

// ChangedAt returns when the machine last applied a wallpaper; zero if it
// has not done so since start.
func (m *Machine) ChangedAt() time.Time {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.changed
}

// Tick classifies the current hour against cfg and applies a transition when
// the phase differs from the stored one. It reports whether the phase
// changed. On error nothing is changed.
func (m *Machine) Tick(cfg config.Config) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	target, err := clock.Classify(m.now().Hour(), cfg.From, cfg.To)
	if err != nil {
		return false, err
	}
	if target == m.phase {
		return false, nil
	}
	if err := m.apply(cfg, m.phase, target); err != nil {
		return false, err
	}
	return true, nil
}

// Force applies the wallpaper of the current phase even when the stored
// phase already matches it.
func (m *Machine) Force(cfg config.Config) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	target, err := clock.Classify(m.now().Hour(), cfg.From, cfg.To)
	if err != nil {
		return err
	}
	return m.apply(cfg, m.phase, target)
}

// apply runs one transition. m.mu must be held.
func (m *Machine) apply(cfg config.Config, from, to clock.Phase) error {
	image := cfg.Image(to)
	if err := m.setter.SetBackground(image); err != nil {
		return fmt.Errorf("set %s background %q: %w", to, image, err)
	}
	if m.animator != nil && from != to {
		m.animator.Animate(from, to)
	}
	if err := m.state.SaveState(to); err != nil {
		return fmt.Errorf("persist %s state: %w", to, err)
	}

	at := m.now()
	m.phase = to
	m.changed = at
	m.logger.Infow("background changed", "from", from, "to", to, "image", image)

	if m.recorder != nil && from != to {
		if err := m.recorder.Record(from, to, image, at); err != nil {
			m.logger.Warnw("record transition failed", "error", err)
		}
	}
	return nil
}
