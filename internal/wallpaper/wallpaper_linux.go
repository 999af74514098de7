package wallpaper

import "net/url"

const gnomeBackgroundSchema = "org.gnome.desktop.background"

func (s *Setter) apply(path string) error {
	uri := (&url.URL{Scheme: "file", Path: path}).String()
	if err := s.run("gsettings", "set", gnomeBackgroundSchema, "picture-uri", uri); err != nil {
		return err
	}
	// Older GNOME releases have no dark variant.
	if err := s.run("gsettings", "set", gnomeBackgroundSchema, "picture-uri-dark", uri); err != nil {
		s.logger.Debugw("picture-uri-dark not set", "error", err)
	}
	return nil
}
