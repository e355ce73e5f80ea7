// Package logging builds the application's slog loggers. The terminal
// belongs to the UI, so log output goes to a file or nowhere.
package logging

import (
	"io"
	"log/slog"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
)

// New creates a logger writing to w at the given level and format. It does
// not touch the global logger.
func New(levelStr, formatStr string, w io.Writer) *slog.Logger {
	var level slog.Level
	switch strings.ToLower(levelStr) {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	handlerOpts := &slog.HandlerOptions{Level: level}
	var handler slog.Handler
	if strings.ToLower(formatStr) == "json" {
		handler = slog.NewJSONHandler(w, handlerOpts)
	} else {
		handler = slog.NewTextHandler(w, handlerOpts)
	}

	return slog.New(handler)
}

// Discard returns a logger that drops everything.
func Discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// Open returns a logger appending to path. The stdlib log package is
// redirected to the same file. With an empty path it returns a discarding
// logger and a no-op closer.
func Open(path, levelStr, formatStr string) (*slog.Logger, io.Closer, error) {
	if path == "" {
		return Discard(), nopCloser{}, nil
	}

	f, err := tea.LogToFile(path, "todos")
	if err != nil {
		return nil, nil, err
	}
	return New(levelStr, formatStr, f), f, nil
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
