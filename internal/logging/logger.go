// Package logging builds the slog logger used by the converter.
//
// Logs are diagnostics and never carry the per-file status lines, which are
// printed on stdout by the cmd package. Without a log file, logs go to stderr
// as text; with one, they are appended to it as JSON.
package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/ginjaninja78/guarantee-summary/internal/config"
)

// ServiceName is attached to every record.
const ServiceName = "riepilogo"

// New returns a logger configured from cfg and a function closing the log
// file, if any. verbose forces the debug level.
func New(cfg *config.MainConfig, verbose bool, stderr io.Writer) (*slog.Logger, func() error, error) {
	level := ParseLevel(cfg.LogLevel)
	if verbose {
		level = slog.LevelDebug
	}

	if cfg.LogFile == "" {
		handler := slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: level})
		return slog.New(handler).With(slog.String("service", ServiceName)), func() error { return nil }, nil
	}

	if err := os.MkdirAll(filepath.Dir(cfg.LogFile), 0o755); err != nil {
		return nil, nil, fmt.Errorf("failed to create log directory: %w", err)
	}

	file, err := os.OpenFile(cfg.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open log file: %w", err)
	}

	handler := slog.NewJSONHandler(file, &slog.HandlerOptions{
		Level: level,
		ReplaceAttr: func(_ []string, a slog.Attr) slog.Attr {
			switch a.Key {
			case slog.TimeKey:
				a.Key = "ts"
			case slog.LevelKey:
				a.Key = "severity"
			}
			return a
		},
	})

	return slog.New(handler).With(slog.String("service", ServiceName)), file.Close, nil
}

// ParseLevel maps a configured level name to a slog level. Unknown names
// fall back to warn.
func ParseLevel(name string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "error":
		return slog.LevelError
	default:
		return slog.LevelWarn
	}
}

// Discard returns a logger that drops everything. Used in tests and by
// callers that do not care about diagnostics.
func Discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelError + 1}))
}
