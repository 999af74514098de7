package app

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap/zaptest"

	"daynight-wallpaper/internal/clock"
	"daynight-wallpaper/internal/config"
	"daynight-wallpaper/internal/ini"
)

type fakeSetter struct {
	mu    sync.Mutex
	calls []string
}

func (f *fakeSetter) SetBackground(path string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, path)
	return nil
}

func (f *fakeSetter) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

func fixedHour(h int) func() time.Time {
	return func() time.Time { return time.Date(2024, 3, 1, h, 0, 0, 0, time.Local) }
}

func newTestApp(t *testing.T, hour int) (*App, *fakeSetter) {
	t.Helper()
	return newTestAppAt(t, filepath.Join(t.TempDir(), "config.ini"), hour, false)
}

func newTestAppAt(t *testing.T, path string, hour int, watch bool) (*App, *fakeSetter) {
	t.Helper()
	setter := &fakeSetter{}
	a, err := New(Options{
		ConfigPath: path,
		DataDir:    ":memory:",
		PollEvery:  5 * time.Millisecond,
		Headless:   true,
		NoWatch:    !watch,
		Logger:     zaptest.NewLogger(t).Sugar(),
		Setter:     setter,
		Now:        fixedHour(hour),
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	t.Cleanup(func() { a.Close() })
	return a, setter
}

func TestNew_CreatesDefaultConfigAndState(t *testing.T) {
	a, _ := newTestApp(t, 12)

	if _, err := os.Stat(a.Store().Path); err != nil {
		t.Fatalf("config not created: %v", err)
	}
	v, err := ini.ReadValue(a.Store().Path, "State", "BACKGROUND")
	if err != nil || v != "0" {
		t.Fatalf("BACKGROUND = %q (%v), want \"0\"", v, err)
	}
}

func TestRun_TransitionsOnceAndStops(t *testing.T) {
	a, setter := newTestApp(t, 22)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- a.Run(ctx) }()

	deadline := time.Now().Add(2 * time.Second)
	for setter.count() == 0 {
		if time.Now().After(deadline) {
			t.Fatalf("no wallpaper applied")
		}
		time.Sleep(5 * time.Millisecond)
	}
	// Let a few more ticks run inside the same phase.
	time.Sleep(30 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("Run returned error: %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("Run did not return after cancel")
	}

	if n := setter.count(); n != 1 {
		t.Fatalf("SetBackground called %d times, want 1", n)
	}
	if setter.calls[0] != "./night.jpg" {
		t.Fatalf("applied %q, want ./night.jpg", setter.calls[0])
	}
	p, err := a.Store().LoadState()
	if err != nil || p != clock.Night {
		t.Fatalf("stored state = %v (%v), want NIGHT", p, err)
	}
	recent, err := a.History().Recent(context.Background(), 10)
	if err != nil || len(recent) != 1 {
		t.Fatalf("history = %v (%v), want 1 transition", recent, err)
	}
	if st := a.Status(); st.Phase != clock.Night || st.Err != nil || st.ChangedAt.IsZero() {
		t.Fatalf("Status = %+v", st)
	}
}

func TestTick_InvalidWindowIsReported(t *testing.T) {
	a, setter := newTestApp(t, 22)
	if err := a.Store().SetTimeBoundary("FROM", 20); err != nil {
		t.Fatalf("SetTimeBoundary: %v", err)
	}
	if err := a.Store().SetTimeBoundary("TO", 8); err != nil {
		t.Fatalf("SetTimeBoundary: %v", err)
	}

	if err := a.tick(context.Background()); !errors.Is(err, clock.ErrInvalidWindow) {
		t.Fatalf("tick error = %v, want ErrInvalidWindow", err)
	}
	if setter.count() != 0 {
		t.Fatalf("wallpaper applied despite invalid window")
	}
	if st := a.Status(); !errors.Is(st.Err, clock.ErrInvalidWindow) {
		t.Fatalf("Status.Err = %v, want ErrInvalidWindow", st.Err)
	}
}

func TestApply_ForcesCurrentPhase(t *testing.T) {
	a, setter := newTestApp(t, 12)

	if err := a.Apply(); err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if setter.count() != 1 || setter.calls[0] != "./day.jpg" {
		t.Fatalf("calls = %v, want [./day.jpg]", setter.calls)
	}
}

func TestApply_MalformedConfigIsKept(t *testing.T) {
	a, _ := newTestApp(t, 12)
	if err := os.WriteFile(a.Store().Path, []byte("[Path]\n"), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	if err := a.Apply(); !errors.Is(err, ini.ErrNotFound) {
		t.Fatalf("Apply error = %v, want ini.ErrNotFound", err)
	}
	b, _ := os.ReadFile(a.Store().Path)
	if string(b) != "[Path]\n" {
		t.Fatalf("malformed config was rewritten: %q", b)
	}
}

func TestNew_MalformedStateIsNotFatal(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.ini")
	content := ini.DefaultDocument + "[State]\nBACKGROUND = 2\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	a, setter := newTestAppAt(t, path, 12, false)
	if st := a.Status(); st.Phase != clock.Day || !errors.Is(st.Err, config.ErrMalformed) {
		t.Fatalf("Status = %+v, want DAY with ErrMalformed", st)
	}
	v, err := ini.ReadValue(path, "State", "BACKGROUND")
	if err != nil || v != "2" {
		t.Fatalf("BACKGROUND = %q (%v), want the unreadable value kept", v, err)
	}

	if err := a.tick(context.Background()); err != nil {
		t.Fatalf("tick: %v", err)
	}
	if setter.count() != 0 {
		t.Fatalf("wallpaper applied while already in DAY")
	}
	if st := a.Status(); st.Err != nil {
		t.Fatalf("Status.Err = %v after a clean tick", st.Err)
	}
}

func TestRun_JoinsWatcherOnCancel(t *testing.T) {
	a, setter := newTestAppAt(t, filepath.Join(t.TempDir(), "config.ini"), 12, true)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- a.Run(ctx) }()

	time.Sleep(20 * time.Millisecond)
	if err := a.Store().SetTimeBoundary("TO", 11); err != nil {
		t.Fatalf("SetTimeBoundary: %v", err)
	}
	deadline := time.Now().Add(2 * time.Second)
	for setter.count() == 0 {
		if time.Now().After(deadline) {
			t.Fatalf("boundary change not applied")
		}
		time.Sleep(5 * time.Millisecond)
	}
	cancel()

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("Run returned error: %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("Run did not return after cancel")
	}
}
