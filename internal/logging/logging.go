// Package logging builds the zap logger used across the app.
package logging

import (
	"fmt"
	"io"
	"os"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// DefaultPath is the log file written next to the working directory.
const DefaultPath = "general.log"

// TimeLayout matches the timestamps of the original log file.
const TimeLayout = "15:04:05 02-01-2006"

// ParseLevel maps debug, info, warn, error and none to a zap level. "none"
// disables logging and reports ok=false for enabled.
func ParseLevel(s string) (level zapcore.Level, enabled bool, err error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return zapcore.DebugLevel, true, nil
	case "info", "":
		return zapcore.InfoLevel, true, nil
	case "warn", "warning":
		return zapcore.WarnLevel, true, nil
	case "error":
		return zapcore.ErrorLevel, true, nil
	case "none", "off":
		return zapcore.FatalLevel, false, nil
	default:
		return zapcore.InfoLevel, false, fmt.Errorf("unknown log level %q", s)
	}
}

// Options configure New.
type Options struct {
	Path  string    // log file, appended to; empty disables the file
	Level string    // debug, info, warn, error or none
	Tee   io.Writer // optional second destination, e.g. os.Stderr
}

// New returns a sugared logger and a close function that flushes and closes
// the log file.
func New(opts Options) (*zap.SugaredLogger, func() error, error) {
	level, enabled, err := ParseLevel(opts.Level)
	if err != nil {
		return nil, nil, err
	}
	if !enabled {
		return zap.NewNop().Sugar(), func() error { return nil }, nil
	}

	encCfg := zap.NewProductionEncoderConfig()
	encCfg.EncodeTime = zapcore.TimeEncoderOfLayout(TimeLayout)
	encCfg.EncodeLevel = zapcore.CapitalLevelEncoder
	encCfg.ConsoleSeparator = " | "
	enc := zapcore.NewConsoleEncoder(encCfg)

	var cores []zapcore.Core
	var file *os.File
	if opts.Path != "" {
		file, err = os.OpenFile(opts.Path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, nil, fmt.Errorf("open log file: %w", err)
		}
		cores = append(cores, zapcore.NewCore(enc, zapcore.AddSync(file), level))
	}
	if opts.Tee != nil {
		cores = append(cores, zapcore.NewCore(enc.Clone(), zapcore.AddSync(opts.Tee), level))
	}

	logger := zap.New(zapcore.NewTee(cores...)).Sugar()
	closeFn := func() error {
		_ = logger.Sync()
		if file != nil {
			return file.Close()
		}
		return nil
	}
	return logger, closeFn, nil
}
