package tray

import (
	"time"

	"daynight-wallpaper/internal/clock"
)

// DefaultFrameDelay is the pause between animation frames.
const DefaultFrameDelay = 60 * time.Millisecond

// IconSink displays tray icon frames.
type IconSink interface {
	Show(frame []byte)
	Update(frame []byte)
	Remove()
}

// Animator plays sun/moon transitions on an IconSink.
type Animator struct {
	sink   IconSink
	frames *frameSet
	delay  time.Duration
	sleep  func(time.Duration)
}

// NewAnimator renders the frames and returns an Animator drawing on sink.
func NewAnimator(sink IconSink, delay time.Duration) (*Animator, error) {
	fs, err := newFrameSet(frameCount)
	if err != nil {
		return nil, err
	}
	if delay <= 0 {
		delay = DefaultFrameDelay
	}
	return &Animator{sink: sink, frames: fs, delay: delay, sleep: time.Sleep}, nil
}

// Show displays the static icon for p.
func (a *Animator) Show(p clock.Phase) {
	a.sink.Show(a.frames.rest(p))
}

// Animate plays the frames for the given direction and leaves the icon of
// the target phase in place. It blocks for the length of the animation.
func (a *Animator) Animate(from, to clock.Phase) {
	seq := a.frames.sequence(from, to)
	for i, frame := range seq {
		a.sink.Update(frame)
		if i < len(seq)-1 {
			a.sleep(a.delay)
		}
	}
}
