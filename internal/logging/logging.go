// Package logging builds the program logger. The terminal belongs to the UI,
// so logs only go to a file.
package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
)

// New returns a logger writing to path at the given level, plus a closer for
// the file. An empty path discards everything.
func New(path, level string) (*log.Logger, io.Closer, error) {
	lvl, err := log.ParseLevel(level)
	if err != nil {
		return nil, nil, fmt.Errorf("log level %q: %w", level, err)
	}
	if path == "" {
		return log.NewWithOptions(io.Discard, log.Options{Level: lvl}), io.NopCloser(nil), nil
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, nil, fmt.Errorf("log dir: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, nil, fmt.Errorf("open log: %w", err)
	}
	logger := log.NewWithOptions(f, log.Options{
		Level:           lvl,
		ReportTimestamp: true,
		Prefix:          "sysmoni",
	})
	return logger, f, nil
}

// Discard returns a logger that drops everything, for tests and defaults.
func Discard() *log.Logger {
	return log.NewWithOptions(io.Discard, log.Options{})
}
