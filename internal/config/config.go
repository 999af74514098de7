// Package config maps the day/night settings onto the INI file.
//
// Layout:
//
//	[Path]
//	NIGHT = <night image>
//	DAY = <day image>
//	[Time]
//	FROM = <hour the day starts>
//	TO = <hour the night starts>
//	[State]
//	BACKGROUND = <0 day | 1 night>
//
// Values are read from disk on every call; the file is the only shared state
// between the tray and the polling loop.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"daynight-wallpaper/internal/clock"
	"daynight-wallpaper/internal/ini"
)

// DefaultPath is the config file used when none is given.
const DefaultPath = "./config.ini"

const (
	SectionPath  = "Path"
	SectionTime  = "Time"
	SectionState = "State"

	KeyNight      = "NIGHT"
	KeyDay        = "DAY"
	KeyFrom       = "FROM"
	KeyTo         = "TO"
	KeyBackground = "BACKGROUND"
)

// Config holds the values a tick needs.
type Config struct {
	NightImage string
	DayImage   string
	From       int
	To         int
}

// Image returns the image configured for phase p.
func (c Config) Image(p clock.Phase) string {
	if p == clock.Night {
		return c.NightImage
	}
	return c.DayImage
}

// Validate reports clock.ErrInvalidWindow when From/To do not form a window.
func (c Config) Validate() error {
	if !clock.ValidWindow(c.From, c.To) {
		return fmt.Errorf("%w: from=%d to=%d", clock.ErrInvalidWindow, c.From, c.To)
	}
	return nil
}

// Boundary names one end of the day window.
type Boundary string

const (
	From Boundary = KeyFrom
	To   Boundary = KeyTo
)

// Store reads and writes the settings in the INI file at Path.
type Store struct {
	Path string
}

// NewStore returns a Store for path, expanded to an absolute path.
func NewStore(path string) (*Store, error) {
	resolved, err := ExpandPath(path)
	if err != nil {
		return nil, err
	}
	return &Store{Path: resolved}, nil
}

// Load reads the image paths and the day window. Missing keys are errors;
// nothing is defaulted.
func (s *Store) Load() (Config, error) {
	var cfg Config
	var err error

	if cfg.NightImage, err = ini.ReadValue(s.Path, SectionPath, KeyNight); err != nil {
		return Config{}, fmt.Errorf("read night image: %w", err)
	}
	if cfg.DayImage, err = ini.ReadValue(s.Path, SectionPath, KeyDay); err != nil {
		return Config{}, fmt.Errorf("read day image: %w", err)
	}
	if cfg.From, err = s.readHour(KeyFrom); err != nil {
		return Config{}, err
	}
	if cfg.To, err = s.readHour(KeyTo); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (s *Store) readHour(key string) (int, error) {
	v, err := ini.ReadValue(s.Path, SectionTime, key)
	if err != nil {
		return 0, fmt.Errorf("read %s hour: %w", strings.ToLower(key), err)
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%w: [%s] %s = %q", ErrMalformed, SectionTime, key, v)
	}
	return n, nil
}

// LoadState returns the persisted background phase. ini.ErrNotFound is
// returned unchanged when the state has never been written.
func (s *Store) LoadState() (clock.Phase, error) {
	v, err := ini.ReadValue(s.Path, SectionState, KeyBackground)
	if err != nil {
		return clock.Day, fmt.Errorf("read background state: %w", err)
	}
	p, err := clock.ParsePhase(v)
	if err != nil {
		return clock.Day, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	return p, nil
}

// SaveState persists the background phase as its integer form.
func (s *Store) SaveState(p clock.Phase) error {
	if err := ini.WriteValue(s.Path, SectionState, KeyBackground, strconv.Itoa(int(p))); err != nil {
		return fmt.Errorf("write background state: %w", err)
	}
	return nil
}

// SetTimeBoundary writes one end of the day window. The resulting window is
// not checked here; an invalid window is reported by the next tick.
func (s *Store) SetTimeBoundary(which Boundary, hour int) error {
	if which != From && which != To {
		return fmt.Errorf("%w: unknown boundary %q", ErrMalformed, which)
	}
	if hour < 0 || hour > 24 {
		return fmt.Errorf("%w: hour %d out of range", ErrMalformed, hour)
	}
	if err := ini.WriteValue(s.Path, SectionTime, string(which), strconv.Itoa(hour)); err != nil {
		return fmt.Errorf("write %s: %w", which, err)
	}
	return nil
}

// SetImage writes the image path used for phase p.
func (s *Store) SetImage(p clock.Phase, image string) error {
	key := KeyDay
	if p == clock.Night {
		key = KeyNight
	}
	return ini.WriteValue(s.Path, SectionPath, key, image)
}

// DefaultAttempts bounds EnsureFile.
const DefaultAttempts = 3

// EnsureFile creates the default config when the file is absent, giving up
// after attempts tries. An existing file is left untouched even when it is
// malformed.
func (s *Store) EnsureFile(attempts int) error {
	if attempts <= 0 {
		attempts = DefaultAttempts
	}
	lastErr := os.ErrNotExist
	for i := 0; i < attempts; i++ {
		_, err := os.Stat(s.Path)
		if err == nil {
			return nil
		}
		if !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("%w: stat %s: %w", ini.ErrIO, s.Path, err)
		}
		if err := ini.CreateDefault(s.Path); err != nil && !errors.Is(err, ini.ErrExists) {
			lastErr = err
		}
	}
	if _, err := os.Stat(s.Path); err == nil {
		return nil
	}
	return fmt.Errorf("%w after %d attempts: %w", ErrCreate, attempts, lastErr)
}

// ExpandPath resolves a leading "~" and returns an absolute path.
func ExpandPath(path string) (string, error) {
	trimmed := strings.TrimSpace(path)
	if trimmed == "" {
		return "", fmt.Errorf("path is empty")
	}
	if strings.HasPrefix(trimmed, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home dir: %w", err)
		}
		trimmed = filepath.Join(home, strings.TrimPrefix(trimmed, "~"))
	}
	return filepath.Abs(trimmed)
}
