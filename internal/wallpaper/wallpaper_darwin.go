package wallpaper

import (
	"fmt"
	"strconv"
)

func (s *Setter) apply(path string) error {
	script := fmt.Sprintf(`tell application "System Events" to tell every desktop to set picture to %s`, strconv.Quote(path))
	return s.run("osascript", "-e", script)
}
