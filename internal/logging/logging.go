// Package logging configures the process-wide run log. Every run command
// writes one simulation.log at the root of the output directory; all
// lifecycle events (starts, completions, warnings, failures) land there.
package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
)

// FileName is the fixed name of the run log inside the output directory.
const FileName = "simulation.log"

// ParseLevel maps a level name to a slog.Level. Unknown names mean info.
func ParseLevel(s string) slog.Level {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// New creates a leveled logger writing to w.
func New(level string, w io.Writer) *slog.Logger {
	opts := &slog.HandlerOptions{Level: ParseLevel(level)}
	return slog.New(slog.NewTextHandler(w, opts))
}

// Open creates the run log inside dir and returns a logger writing to it.
// An existing log from an earlier invocation is replaced. The caller owns
// the returned file and closes it after the last log line.
func Open(dir, level string) (*slog.Logger, *os.File, error) {
	path := filepath.Join(dir, FileName)
	f, err := os.Create(path)
	if err != nil {
		return nil, nil, fmt.Errorf("creating run log %s: %w", path, err)
	}
	return New(level, f), f, nil
}
