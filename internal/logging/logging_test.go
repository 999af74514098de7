package logging

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestNew_WritesLevelFilteredFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "general.log")

	logger, closeFn, err := New(Options{Path: path, Level: "error"})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	logger.Infow("hidden")
	logger.Errorw("tick failed", "error", "boom")
	if err := closeFn(); err != nil {
		t.Fatalf("close: %v", err)
	}

	b, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	out := string(b)
	if strings.Contains(out, "hidden") {
		t.Fatalf("info entry written at error level:\n%s", out)
	}
	if !strings.Contains(out, "ERROR | tick failed") || !strings.Contains(out, `"error": "boom"`) {
		t.Fatalf("unexpected log output:\n%s", out)
	}
}

func TestNew_Tee(t *testing.T) {
	var buf bytes.Buffer
	logger, closeFn, err := New(Options{Level: "debug", Tee: &buf})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	logger.Debugw("config loaded", "from", 6)
	_ = closeFn()

	if !strings.Contains(buf.String(), "DEBUG | config loaded") {
		t.Fatalf("tee output = %q", buf.String())
	}
}

func TestNew_None(t *testing.T) {
	path := filepath.Join(t.TempDir(), "general.log")
	logger, closeFn, err := New(Options{Path: path, Level: "none"})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	logger.Errorw("dropped")
	_ = closeFn()
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Fatalf("log file created with level none")
	}
}

func TestParseLevel_Unknown(t *testing.T) {
	if _, _, err := ParseLevel("loud"); err == nil {
		t.Fatalf("ParseLevel(loud) returned nil error")
	}
}
