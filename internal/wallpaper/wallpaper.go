// Package wallpaper applies desktop background images.
package wallpaper

import (
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"

	"go.uber.org/zap"
)

// ErrApply is returned when the image could not be applied.
var ErrApply = errors.New("apply wallpaper")

const appFolderName = "daynight-wallpaper"

// Setter sets the desktop wallpaper on the current platform.
type Setter struct {
	cacheDir string
	logger   *zap.SugaredLogger

	// run executes an external command; replaced in tests.
	run func(name string, args ...string) error
}

// New returns a Setter. Converted images are kept under the user cache dir.
func New(logger *zap.SugaredLogger) *Setter {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	dir, err := os.UserCacheDir()
	if err != nil {
		dir = os.TempDir()
	}
	return &Setter{
		cacheDir: filepath.Join(dir, appFolderName),
		logger:   logger,
		run:      runCommand,
	}
}

// SetBackground resolves path to an absolute path and applies it.
func (s *Setter) SetBackground(path string) error {
	if path == "" {
		return fmt.Errorf("%w: empty image path", ErrApply)
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("%w: resolve %q: %w", ErrApply, path, err)
	}
	if _, err := os.Stat(abs); err != nil {
		return fmt.Errorf("%w: %w", ErrApply, err)
	}
	s.logger.Debugw("applying wallpaper", "path", abs)
	if err := s.apply(abs); err != nil {
		return fmt.Errorf("%w: %s: %w", ErrApply, abs, err)
	}
	return nil
}

func runCommand(name string, args ...string) error {
	out, err := exec.Command(name, args...).CombinedOutput()
	if err != nil {
		if len(out) > 0 {
			return fmt.Errorf("%s: %w: %s", name, err, out)
		}
		return fmt.Errorf("%s: %w", name, err)
	}
	return nil
}
