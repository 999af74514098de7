package tray

import (
	"image"
	"io"

	ico "github.com/Kodeworks/golang-image-ico"
)

// encodeIcon writes im as ICO, the only format the Windows tray accepts.
func encodeIcon(w io.Writer, im image.Image) error {
	return ico.Encode(w, im)
}
