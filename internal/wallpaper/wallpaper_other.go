//go:build !windows && !linux && !darwin

package wallpaper

import (
	"errors"
	"runtime"
)

func (s *Setter) apply(path string) error {
	return errors.New("setting the wallpaper is not supported on " + runtime.GOOS)
}
