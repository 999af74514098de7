//go:build !windows

package tray

import (
	"image"
	"image/png"
	"io"
)

func encodeIcon(w io.Writer, im image.Image) error {
	return png.Encode(w, im)
}
