// Package clock classifies an hour of the day against a day window.
package clock

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ErrInvalidWindow is returned when the day window bounds are out of range
// or not ordered.
var ErrInvalidWindow = errors.New("invalid time window")

// Phase is the background phase: day or night.
type Phase int

const (
	// Day applies while the hour is inside [from, to).
	Day Phase = iota
	// Night applies outside the day window.
	Night
)

// String returns a human-readable name for the phase.
func (p Phase) String() string {
	switch p {
	case Day:
		return "DAY"
	case Night:
		return "NIGHT"
	default:
		return "UNKNOWN"
	}
}

// Other returns the opposite phase.
func (p Phase) Other() Phase {
	if p == Day {
		return Night
	}
	return Day
}

// ParsePhase accepts the persisted integer form ("0", "1") or the names
// "DAY" and "NIGHT" in any case.
func ParsePhase(s string) (Phase, error) {
	s = strings.TrimSpace(s)
	switch strings.ToUpper(s) {
	case "DAY":
		return Day, nil
	case "NIGHT":
		return Night, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil || (n != int(Day) && n != int(Night)) {
		return Day, fmt.Errorf("unknown phase %q", s)
	}
	return Phase(n), nil
}

// ValidWindow reports whether from and to describe a usable day window.
func ValidWindow(from, to int) bool {
	return from >= 0 && to >= 0 && from < 24 && to < 24 && from < to
}

// Classify returns Day when from <= hour < to and Night otherwise.
func Classify(hour, from, to int) (Phase, error) {
	if !ValidWindow(from, to) {
		return Day, fmt.Errorf("%w: from=%d to=%d", ErrInvalidWindow, from, to)
	}
	if hour >= from && hour < to {
		return Day, nil
	}
	return Night, nil
}
