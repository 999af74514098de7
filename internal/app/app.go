// Package app wires the config store, state machine, polling loop, tray and
// history together.
package app

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"go.uber.org/zap"

	"daynight-wallpaper/internal/background"
	"daynight-wallpaper/internal/config"
	"daynight-wallpaper/internal/history"
	"daynight-wallpaper/internal/poller"
	"daynight-wallpaper/internal/tray"
	"daynight-wallpaper/internal/wallpaper"
	"daynight-wallpaper/internal/watch"
)

// Options configure the application.
type Options struct {
	ConfigPath string
	DataDir    string        // history database dir; empty uses the config's dir
	PollEvery  time.Duration // zero uses poller.DefaultInterval
	Headless   bool          // no tray icon; stop with ctx
	NoWatch    bool          // do not watch the config file for edits
	Logger     *zap.SugaredLogger

	// Setter overrides the platform wallpaper setter.
	Setter background.Setter
	// Now overrides the wall clock.
	Now func() time.Time
}

// App is the running application.
type App struct {
	opts    Options
	logger  *zap.SugaredLogger
	store   *config.Store
	history *history.Store
	machine *background.Machine
	loop    *poller.Loop
	tray    *tray.Presenter

	mu      sync.Mutex
	lastErr error
}

// New prepares the application: the config file is created when absent and
// the stored background state is loaded.
func New(opts Options) (*App, error) {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	if opts.ConfigPath == "" {
		opts.ConfigPath = config.DefaultPath
	}

	store, err := config.NewStore(opts.ConfigPath)
	if err != nil {
		return nil, fmt.Errorf("resolve config path: %w", err)
	}
	if err := store.EnsureFile(config.DefaultAttempts); err != nil {
		return nil, err
	}

	dataDir := opts.DataDir
	if dataDir == "" {
		dataDir = filepath.Dir(store.Path)
	}
	hist, err := history.Open(dataDir)
	if err != nil {
		return nil, fmt.Errorf("open history: %w", err)
	}

	a := &App{opts: opts, logger: logger, store: store, history: hist}

	setter := opts.Setter
	if setter == nil {
		setter = wallpaper.New(logger.Named("wallpaper"))
	}
	machineOpts := background.Options{
		Setter:   setter,
		State:    store,
		Recorder: hist,
		Logger:   logger.Named("background"),
		Now:      opts.Now,
	}

	if !opts.Headless {
		a.tray, err = tray.New(tray.Options{
			Store:      store,
			Logger:     logger.Named("tray"),
			Status:     a.Status,
			OnApply:    a.applyFromMenu,
			OnBoundary: a.kick,
			OnExit:     a.stopLoop,
		})
		if err != nil {
			hist.Close()
			return nil, fmt.Errorf("init tray: %w", err)
		}
		machineOpts.Animator = a.tray.Animator()
	}

	a.machine = background.New(machineOpts)
	if err := a.machine.Init(); err != nil {
		logger.Errorw("background state not loaded", "config", a.store.Path, "error", err)
		a.setErr(err)
	}
	a.loop = poller.New(a.tick, opts.PollEvery, logger.Named("poller"))
	return a, nil
}

// Close releases the history database.
func (a *App) Close() error {
	return a.history.Close()
}

// Store returns the config store.
func (a *App) Store() *config.Store { return a.store }

// History returns the transition log.
func (a *App) History() *history.Store { return a.history }

// Run starts the polling loop and, unless headless, the tray. It returns
// after the loop has stopped.
func (a *App) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	a.logger.Infow("starting", "config", a.store.Path, "headless", a.opts.Headless)
	a.loop.Start(ctx)

	var wg sync.WaitGroup
	defer func() {
		cancel()
		wg.Wait()
	}()
	if !a.opts.NoWatch {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := watch.File(ctx, a.store.Path, a.kick, a.logger.Named("watch")); err != nil {
				a.logger.Warnw("config watch disabled", "error", err)
			}
		}()
	}

	if a.tray == nil {
		<-ctx.Done()
		a.stopLoop()
		a.logger.Infow("stopped")
		return nil
	}

	go func() {
		select {
		case <-ctx.Done():
			a.tray.RequestExit()
		case <-a.loop.Done():
		}
	}()
	a.tray.Run()
	a.stopLoop()
	a.logger.Infow("stopped")
	return nil
}

// Apply reads the config and applies the wallpaper for the current phase,
// even when it is already in place.
func (a *App) Apply() error {
	cfg, err := a.store.Load()
	if err != nil {
		return a.setErr(fmt.Errorf("load config: %w", err))
	}
	return a.setErr(a.machine.Force(cfg))
}

// Status reports the machine phase, the time of the last change and the
// error of the last tick.
func (a *App) Status() tray.Status {
	a.mu.Lock()
	lastErr := a.lastErr
	a.mu.Unlock()

	changed := a.machine.ChangedAt()
	if changed.IsZero() {
		if last, err := a.history.Last(context.Background()); err == nil {
			changed = last.At
		} else if !errors.Is(err, history.ErrNotFound) {
			a.logger.Debugw("read last transition failed", "error", err)
		}
	}
	return tray.Status{Phase: a.machine.Phase(), ChangedAt: changed, Err: lastErr}
}

// tick is one polling iteration: read config, classify, transition.
func (a *App) tick(ctx context.Context) error {
	cfg, err := a.store.Load()
	if err != nil {
		return a.setErr(fmt.Errorf("load config: %w", err))
	}
	changed, err := a.machine.Tick(cfg)
	if err != nil {
		return a.setErr(err)
	}
	if changed {
		a.logger.Infow("phase changed", "phase", a.machine.Phase())
	}
	return a.setErr(nil)
}

func (a *App) applyFromMenu() {
	if err := a.Apply(); err != nil {
		a.logger.Errorw("apply failed", "error", err)
	}
}

func (a *App) kick() {
	a.loop.Kick()
}

func (a *App) stopLoop() {
	a.loop.Stop()
	a.loop.Wait()
}

func (a *App) setErr(err error) error {
	a.mu.Lock()
	a.lastErr = err
	a.mu.Unlock()
	return err
}
