package poller

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"go.uber.org/zap/zaptest"
)

func TestLoop_TicksImmediatelyAndPeriodically(t *testing.T) {
	var n atomic.Int32
	ticked := make(chan struct{}, 16)
	l := New(func(context.Context) error {
		n.Add(1)
		select {
		case ticked <- struct{}{}:
		default:
		}
		return nil
	}, 10*time.Millisecond, zaptest.NewLogger(t).Sugar())

	l.Start(context.Background())
	for i := 0; i < 3; i++ {
		select {
		case <-ticked:
		case <-time.After(2 * time.Second):
			t.Fatalf("tick %d did not happen", i)
		}
	}
	l.Stop()
	l.Wait()

	if l.State() != Stopped {
		t.Fatalf("State = %v, want Stopped", l.State())
	}
	if n.Load() < 3 {
		t.Fatalf("ticks = %d, want >= 3", n.Load())
	}
}

func TestLoop_StopWaitsForTickInProgress(t *testing.T) {
	entered := make(chan struct{}, 1)
	release := make(chan struct{})
	var finished atomic.Bool
	l := New(func(context.Context) error {
		select {
		case entered <- struct{}{}:
		default:
		}
		<-release
		finished.Store(true)
		return nil
	}, time.Hour, nil)

	l.Start(context.Background())
	<-entered
	l.Stop()
	if got := l.State(); got != StopRequested {
		t.Fatalf("State after Stop = %v, want StopRequested", got)
	}

	select {
	case <-l.Done():
		t.Fatalf("loop stopped before the tick finished")
	case <-time.After(20 * time.Millisecond):
	}

	close(release)
	l.Wait()
	if !finished.Load() {
		t.Fatalf("tick did not run to completion")
	}
	if l.State() != Stopped {
		t.Fatalf("State = %v, want Stopped", l.State())
	}
}

func TestLoop_ErrorsDoNotStopLoop(t *testing.T) {
	var n atomic.Int32
	l := New(func(context.Context) error {
		if n.Add(1) >= 3 {
			return nil
		}
		return errors.New("boom")
	}, time.Millisecond, zaptest.NewLogger(t).Sugar())

	l.Start(context.Background())
	deadline := time.Now().Add(2 * time.Second)
	for n.Load() < 3 {
		if time.Now().After(deadline) {
			t.Fatalf("loop stopped ticking after errors; ticks = %d", n.Load())
		}
		time.Sleep(time.Millisecond)
	}
	l.Stop()
	l.Wait()
}

func TestLoop_KickTriggersTick(t *testing.T) {
	ticked := make(chan struct{}, 4)
	l := New(func(context.Context) error {
		ticked <- struct{}{}
		return nil
	}, time.Hour, nil)

	l.Start(context.Background())
	<-ticked

	l.Kick()
	select {
	case <-ticked:
	case <-time.After(2 * time.Second):
		t.Fatalf("Kick did not trigger a tick")
	}
	l.Stop()
	l.Wait()
}

func TestLoop_ContextCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	l := New(func(context.Context) error { return nil }, time.Hour, nil)

	l.Start(ctx)
	cancel()

	select {
	case <-l.Done():
	case <-time.After(2 * time.Second):
		t.Fatalf("loop did not stop on context cancel")
	}
	if l.State() != Stopped {
		t.Fatalf("State = %v, want Stopped", l.State())
	}
}

func TestLoop_WaitWithoutStart(t *testing.T) {
	l := New(func(context.Context) error { return nil }, 0, nil)
	l.Stop()
	l.Wait()
	if l.interval != DefaultInterval {
		t.Fatalf("interval = %v, want %v", l.interval, DefaultInterval)
	}
}
