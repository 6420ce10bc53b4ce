// Package logging wires up the process-wide slog.Logger: level-filtered,
// writing to stderr and, when configured, a size/age-rotated log file.
package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/wowsunpack/wowsunpack/internal/config"
)

// LevelTrace is one tier below slog's own Debug level, for the rare event
// that is too noisy even for -v debug output.
const LevelTrace = slog.LevelDebug - 4

// Setup builds and installs the default slog.Logger from cfg, returning a
// closer that flushes/closes the rotating file sink (a no-op when logging
// to stderr only).
func Setup(cfg config.LogConfig) (io.Closer, error) {
	level, err := parseLevel(cfg.Level)
	if err != nil {
		return nil, err
	}

	writers := []io.Writer{os.Stderr}
	var closer io.Closer = nopCloser{}

	if cfg.File != "" {
		rotator := &lumberjack.Logger{
			Filename:   cfg.File,
			MaxSize:    cfg.MaxSizeMB,
			MaxBackups: cfg.MaxBackups,
			MaxAge:     cfg.MaxAgeDays,
			Compress:   true,
		}
		writers = append(writers, rotator)
		closer = rotator
	}

	handler := slog.NewJSONHandler(io.MultiWriter(writers...), &slog.HandlerOptions{Level: level})
	slog.SetDefault(slog.New(handler))

	return closer, nil
}

// Trace logs at LevelTrace, below Debug, for diagnostics too noisy for
// routine debug runs.
func Trace(msg string, args ...any) {
	slog.Default().Log(nil, LevelTrace, msg, args...)
}

func parseLevel(s string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "info":
		return slog.LevelInfo, nil
	case "debug":
		return slog.LevelDebug, nil
	case "trace":
		return LevelTrace, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return 0, fmt.Errorf("logging: unknown level %q", s)
	}
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
