// Package tray is the notification-area front end: icon, menu and the two
// user intents it forwards (exit and time boundary changes).
package tray

import (
	"fmt"
	"runtime"
	"sync"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/getlantern/systray"
	"github.com/skratchdot/open-golang/open"
	"go.uber.org/zap"

	"daynight-wallpaper/internal/clock"
	"daynight-wallpaper/internal/config"
)

const (
	appTitle      = "Day/Night Wallpaper"
	statusRefresh = 5 * time.Second
	maxHour       = 23
)

// Status is what the menu shows about the running machine.
type Status struct {
	Phase     clock.Phase
	ChangedAt time.Time
	Err       error
}

// Options configure a Presenter.
type Options struct {
	Store      *config.Store
	Logger     *zap.SugaredLogger
	FrameDelay time.Duration // zero uses DefaultFrameDelay

	// Status reports the current machine state for the menu header.
	Status func() Status
	// OnApply is called when the user asks to reapply the wallpaper now.
	OnApply func()
	// OnBoundary is called after a time boundary was written.
	OnBoundary func()
	// OnExit is called once when the user chooses Exit, before the tray is
	// removed. It should stop the polling loop and wait for it.
	OnExit func()
}

// Presenter owns the systray menu.
type Presenter struct {
	opts     Options
	logger   *zap.SugaredLogger
	animator *Animator

	status  *systray.MenuItem
	apply   *systray.MenuItem
	edit    *systray.MenuItem
	quit    *systray.MenuItem
	fromSub *systray.MenuItem
	toSub   *systray.MenuItem
	fromHrs map[int]*systray.MenuItem
	toHrs   map[int]*systray.MenuItem

	exitOnce sync.Once
	done     chan struct{}
}

// New returns a Presenter with its icon frames rendered. Run must be called
// from the main goroutine.
func New(opts Options) (*Presenter, error) {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	p := &Presenter{
		opts:    opts,
		logger:  logger,
		fromHrs: make(map[int]*systray.MenuItem),
		toHrs:   make(map[int]*systray.MenuItem),
		done:    make(chan struct{}),
	}
	animator, err := NewAnimator(p, opts.FrameDelay)
	if err != nil {
		return nil, err
	}
	p.animator = animator
	return p, nil
}

// Animator returns the icon animator drawing on this tray.
func (p *Presenter) Animator() *Animator {
	return p.animator
}

// Run shows the tray icon and blocks until Exit is chosen or RequestExit is
// called.
func (p *Presenter) Run() {
	systray.Run(p.onReady, p.onExit)
}

// RequestExit runs the exit sequence as if Exit had been clicked.
func (p *Presenter) RequestExit() {
	p.exitOnce.Do(func() {
		close(p.done)
		if p.opts.OnExit != nil {
			p.opts.OnExit()
		}
		p.Remove()
	})
}

func (p *Presenter) onReady() {
	p.logger.Infow("tray ready")
	setTooltip(appTitle)

	p.animator.Show(p.currentStatus().Phase)

	p.status = systray.AddMenuItem(appTitle, "Current background")
	p.status.Disable()
	systray.AddSeparator()
	p.apply = systray.AddMenuItem("Apply now", "Set the wallpaper for the current time")

	cfg, err := p.opts.Store.Load()
	if err != nil {
		p.logger.Warnw("menu built without current window", "error", err)
	}
	p.fromSub = systray.AddMenuItem("Day starts at", "Hour the day wallpaper is applied")
	for h := 0; h < maxHour; h++ {
		p.fromHrs[h] = p.fromSub.AddSubMenuItemCheckbox(hourLabel(h), "", err == nil && cfg.From == h)
	}
	p.toSub = systray.AddMenuItem("Night starts at", "Hour the night wallpaper is applied")
	for h := 1; h <= maxHour; h++ {
		p.toHrs[h] = p.toSub.AddSubMenuItemCheckbox(hourLabel(h), "", err == nil && cfg.To == h)
	}

	systray.AddSeparator()
	p.edit = systray.AddMenuItem("Open config", "Open config.ini in the default editor")
	p.quit = systray.AddMenuItem("Exit", "Stop switching wallpapers")

	p.refreshStatus()

	hours := make(chan boundaryClick)
	for h, item := range p.fromHrs {
		go forwardClicks(item, config.From, h, hours, p.done)
	}
	for h, item := range p.toHrs {
		go forwardClicks(item, config.To, h, hours, p.done)
	}
	go p.eventLoop(hours)
}

func (p *Presenter) onExit() {
	p.logger.Infow("tray exited")
}

type boundaryClick struct {
	which config.Boundary
	hour  int
}

func forwardClicks(item *systray.MenuItem, which config.Boundary, hour int, out chan<- boundaryClick, done <-chan struct{}) {
	for {
		select {
		case <-item.ClickedCh:
			select {
			case out <- boundaryClick{which: which, hour: hour}:
			case <-done:
				return
			}
		case <-done:
			return
		}
	}
}

// eventLoop handles menu clicks until exit.
func (p *Presenter) eventLoop(hours <-chan boundaryClick) {
	ticker := time.NewTicker(statusRefresh)
	defer ticker.Stop()

	for {
		select {
		case <-p.done:
			return
		case <-ticker.C:
			p.refreshStatus()
		case <-p.apply.ClickedCh:
			if p.opts.OnApply != nil {
				p.opts.OnApply()
			}
			p.refreshStatus()
		case c := <-hours:
			p.SetTimeBoundary(c.which, c.hour)
		case <-p.edit.ClickedCh:
			if err := open.Run(p.opts.Store.Path); err != nil {
				p.logger.Errorw("open config failed", "path", p.opts.Store.Path, "error", err)
			}
		case <-p.quit.ClickedCh:
			p.logger.Infow("user requested exit")
			go p.RequestExit()
			return
		}
	}
}

// SetTimeBoundary writes a new window boundary and updates the check marks.
func (p *Presenter) SetTimeBoundary(which config.Boundary, hour int) {
	if err := p.opts.Store.SetTimeBoundary(which, hour); err != nil {
		p.logger.Errorw("set time boundary failed", "which", which, "hour", hour, "error", err)
		return
	}
	p.logger.Infow("time boundary changed", "which", which, "hour", hour)

	items := p.fromHrs
	if which == config.To {
		items = p.toHrs
	}
	for h, item := range items {
		if h == hour {
			item.Check()
		} else {
			item.Uncheck()
		}
	}
	if p.opts.OnBoundary != nil {
		p.opts.OnBoundary()
	}
}

func (p *Presenter) currentStatus() Status {
	if p.opts.Status == nil {
		return Status{}
	}
	return p.opts.Status()
}

func (p *Presenter) refreshStatus() {
	text := statusText(p.currentStatus(), time.Now())
	if p.status != nil {
		p.status.SetTitle(text)
	}
	setTooltip(text)
}

// Show implements IconSink.
func (p *Presenter) Show(frame []byte) { systray.SetIcon(frame) }

// Update implements IconSink.
func (p *Presenter) Update(frame []byte) { systray.SetIcon(frame) }

// Remove implements IconSink by removing the icon from the notification
// area, which also ends Run.
func (p *Presenter) Remove() { systray.Quit() }

func statusText(s Status, now time.Time) string {
	if s.Err != nil {
		return fmt.Sprintf("%s (error: %v)", phaseLabel(s.Phase), s.Err)
	}
	if s.ChangedAt.IsZero() {
		return phaseLabel(s.Phase)
	}
	return fmt.Sprintf("%s since %s", phaseLabel(s.Phase), humanize.RelTime(s.ChangedAt, now, "ago", "from now"))
}

func phaseLabel(p clock.Phase) string {
	if p == clock.Night {
		return "Night"
	}
	return "Day"
}

func hourLabel(h int) string {
	return fmt.Sprintf("%02d:00", h)
}

// setTooltip sets the tooltip text for the systray icon.
func setTooltip(text string) {
	if runtime.GOOS == "darwin" || runtime.GOOS == "windows" {
		systray.SetTooltip(text)
	} else {
		// on Linux, SetTitle actually sets the tooltip
		systray.SetTitle(text)
	}
}
