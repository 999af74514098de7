package wallpaper

import (
	"errors"
	"path/filepath"
	"unsafe"

	"golang.org/x/sys/windows"
)

const (
	spiSetDeskWallpaper = 0x0014
	spifUpdateIniFile   = 0x01
	spifSendChange      = 0x02
)

var (
	user32                    = windows.NewLazySystemDLL("user32.dll")
	procSystemParametersInfoW = user32.NewProc("SystemParametersInfoW")
)

func (s *Setter) apply(path string) error {
	if needsBMP(path) {
		converted := filepath.Join(s.cacheDir, "wallpaper.bmp")
		if err := convertToBMP(path, converted); err != nil {
			return err
		}
		s.logger.Debugw("converted wallpaper to bmp", "src", path, "dst", converted)
		path = converted
	}

	p, err := windows.UTF16PtrFromString(path)
	if err != nil {
		return err
	}
	ret, _, callErr := procSystemParametersInfoW.Call(
		uintptr(spiSetDeskWallpaper),
		0,
		uintptr(unsafe.Pointer(p)),
		uintptr(spifUpdateIniFile|spifSendChange),
	)
	if ret == 0 {
		if callErr != nil && callErr != windows.ERROR_SUCCESS {
			return callErr
		}
		return errors.New("SystemParametersInfoW failed")
	}
	return nil
}
