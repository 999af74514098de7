package wallpaper

import (
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/image/bmp"
)

// needsBMP reports whether the image format has to be converted before the
// legacy Windows wallpaper API accepts it.
func needsBMP(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".bmp", ".jpg", ".jpeg":
		return false
	default:
		return true
	}
}

// convertToBMP decodes srcPath and writes it as BMP to dstPath.
func convertToBMP(srcPath, dstPath string) error {
	f, err := os.Open(srcPath)
	if err != nil {
		return err
	}
	defer f.Close()
	img, _, err := image.Decode(f)
	if err != nil {
		return fmt.Errorf("decode %s: %w", srcPath, err)
	}
	if err := os.MkdirAll(filepath.Dir(dstPath), 0o755); err != nil {
		return err
	}
	out, err := os.Create(dstPath)
	if err != nil {
		return err
	}
	if err := bmp.Encode(out, img); err != nil {
		out.Close()
		return fmt.Errorf("encode %s: %w", dstPath, err)
	}
	return out.Close()
}
