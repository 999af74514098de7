package wallpaper

import (
	"errors"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"golang.org/x/image/bmp"
)

func writePNG(t *testing.T, path string) {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 4, 3))
	img.Set(1, 1, color.RGBA{R: 200, G: 10, B: 10, A: 255})
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	defer f.Close()
	if err := png.Encode(f, img); err != nil {
		t.Fatalf("png.Encode: %v", err)
	}
}

func TestSetBackground_RejectsMissingImage(t *testing.T) {
	s := New(nil)
	s.run = func(string, ...string) error {
		t.Fatalf("command run for a missing image")
		return nil
	}

	for _, path := range []string{"", filepath.Join(t.TempDir(), "nope.png")} {
		if err := s.SetBackground(path); !errors.Is(err, ErrApply) {
			t.Fatalf("SetBackground(%q) = %v, want ErrApply", path, err)
		}
	}
}

func TestNeedsBMP(t *testing.T) {
	for path, want := range map[string]bool{
		"a.bmp":  false,
		"a.JPG":  false,
		"a.jpeg": false,
		"a.png":  true,
		"a.gif":  true,
	} {
		if got := needsBMP(path); got != want {
			t.Fatalf("needsBMP(%q) = %v, want %v", path, got, want)
		}
	}
}

func TestConvertToBMP(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "day.png")
	dst := filepath.Join(dir, "cache", "wallpaper.bmp")
	writePNG(t, src)

	if err := convertToBMP(src, dst); err != nil {
		t.Fatalf("convertToBMP: %v", err)
	}
	f, err := os.Open(dst)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer f.Close()
	img, err := bmp.Decode(f)
	if err != nil {
		t.Fatalf("bmp.Decode: %v", err)
	}
	if b := img.Bounds(); b.Dx() != 4 || b.Dy() != 3 {
		t.Fatalf("bounds = %v, want 4x3", b)
	}
}

func TestConvertToBMP_NotAnImage(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "notes.txt")
	if err := os.WriteFile(src, []byte("hello"), 0o600); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	if err := convertToBMP(src, filepath.Join(dir, "out.bmp")); err == nil {
		t.Fatalf("convertToBMP returned nil error for a text file")
	}
}
