// Package logging builds the process logger. Logs go to stderr so stdout
// carries only benchmark results.
package logging

import (
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/dusted-go/logging/prettylog"
)

// ParseLevel maps debug, info, warn and error to slog levels.
func ParseLevel(s string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug, nil
	case "info":
		return slog.LevelInfo, nil
	case "", "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelWarn, fmt.Errorf("unknown log level %q", s)
	}
}

// New returns a human-readable logger writing to w.
func New(w io.Writer, level slog.Level) *slog.Logger {
	opts := &slog.HandlerOptions{Level: level}
	return slog.New(prettylog.New(opts, prettylog.WithDestinationWriter(w)))
}
