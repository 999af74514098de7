package tray

import (
	"bytes"
	"image"
	"image/color"
	"math"

	"golang.org/x/image/draw"

	"daynight-wallpaper/internal/clock"
)

const (
	iconSize    = 32
	supersample = 4
	frameCount  = 12
)

var (
	sunColor  = color.RGBA{R: 255, G: 196, B: 36, A: 255}
	moonColor = color.RGBA{R: 214, G: 222, B: 255, A: 255}
)

// renderFrame draws the icon at position t in [0, 1], where 0 is a full sun
// and 1 is a crescent moon.
func renderFrame(t float64) image.Image {
	t = math.Max(0, math.Min(1, t))
	big := iconSize * supersample
	canvas := image.NewRGBA(image.Rect(0, 0, big, big))

	c := lerpColor(sunColor, moonColor, t)
	center := float64(big) / 2
	radius := float64(big) * 0.42
	// The shadow disc slides in from the right to carve the crescent.
	shadowX := center + radius*(2.2-1.6*t)
	shadowY := center - radius*0.25*t
	shadowR := radius * 0.85

	for y := 0; y < big; y++ {
		for x := 0; x < big; x++ {
			px, py := float64(x)+0.5, float64(y)+0.5
			if math.Hypot(px-center, py-center) > radius {
				continue
			}
			if math.Hypot(px-shadowX, py-shadowY) < shadowR {
				continue
			}
			canvas.SetRGBA(x, y, c)
		}
	}

	out := image.NewRGBA(image.Rect(0, 0, iconSize, iconSize))
	draw.CatmullRom.Scale(out, out.Bounds(), canvas, canvas.Bounds(), draw.Over, nil)
	return out
}

func lerpColor(a, b color.RGBA, t float64) color.RGBA {
	mix := func(x, y uint8) uint8 {
		return uint8(math.Round(float64(x) + (float64(y)-float64(x))*t))
	}
	return color.RGBA{R: mix(a.R, b.R), G: mix(a.G, b.G), B: mix(a.B, b.B), A: mix(a.A, b.A)}
}

// frameSet holds encoded frames from sun to moon.
type frameSet struct {
	frames [][]byte
}

func newFrameSet(n int) (*frameSet, error) {
	if n < 2 {
		n = 2
	}
	fs := &frameSet{}
	for i := 0; i < n; i++ {
		var buf bytes.Buffer
		if err := encodeIcon(&buf, renderFrame(float64(i)/float64(n-1))); err != nil {
			return nil, err
		}
		fs.frames = append(fs.frames, buf.Bytes())
	}
	return fs, nil
}

// rest returns the static icon for p.
func (fs *frameSet) rest(p clock.Phase) []byte {
	if p == clock.Night {
		return fs.frames[len(fs.frames)-1]
	}
	return fs.frames[0]
}

// sequence returns the frames played when moving from one phase to another.
func (fs *frameSet) sequence(from, to clock.Phase) [][]byte {
	if from == to {
		return [][]byte{fs.rest(to)}
	}
	seq := make([][]byte, len(fs.frames))
	copy(seq, fs.frames)
	if to == clock.Day {
		for i, j := 0, len(seq)-1; i < j; i, j = i+1, j-1 {
			seq[i], seq[j] = seq[j], seq[i]
		}
	}
	return seq
}
