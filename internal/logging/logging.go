// Package logging builds the structured loggers used by the decicalc
// commands.
package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
)

// Config selects the level, format, and destinations of a logger.
type Config struct {
	// Level is one of debug, info, warn, or error. Empty means info.
	Level string
	// JSON selects JSON output instead of text.
	JSON bool
	// File, if not empty, is a file to which logs are appended in addition
	// to the standard writer. File logs are always JSON.
	File string
	// Service, if not empty, is added to every entry as the service
	// attribute.
	Service string
}

// ParseLevel parses a level name.
func ParseLevel(s string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug, nil
	case "", "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("unknown log level %q", s)
	}
}

// New creates a logger writing to stderr and, if cfg.File is set, to that
// file. The returned closer closes the file; it is never nil.
func New(cfg Config) (*slog.Logger, io.Closer, error) {
	return NewWithWriter(os.Stderr, cfg)
}

// NewWithWriter is like New but writes to w instead of stderr. A nil w
// writes only to the file, if any.
func NewWithWriter(w io.Writer, cfg Config) (*slog.Logger, io.Closer, error) {
	level, err := ParseLevel(cfg.Level)
	if err != nil {
		return nil, nopCloser{}, err
	}
	opts := &slog.HandlerOptions{Level: level}
	var handlers []slog.Handler
	if w != nil {
		if cfg.JSON {
			handlers = append(handlers, slog.NewJSONHandler(w, opts))
		} else {
			handlers = append(handlers, slog.NewTextHandler(w, opts))
		}
	}
	var closer io.Closer = nopCloser{}
	if cfg.File != "" {
		if err := os.MkdirAll(filepath.Dir(cfg.File), 0750); err != nil {
			return nil, closer, fmt.Errorf("create log directory: %w", err)
		}
		f, err := os.OpenFile(cfg.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0640)
		if err != nil {
			return nil, closer, fmt.Errorf("open log file: %w", err)
		}
		handlers = append(handlers, slog.NewJSONHandler(f, opts))
		closer = f
	}
	var h slog.Handler
	switch len(handlers) {
	case 0:
		h = slog.NewTextHandler(io.Discard, opts)
	case 1:
		h = handlers[0]
	default:
		h = fanout(handlers)
	}
	l := slog.New(h)
	if cfg.Service != "" {
		l = l.With(slog.String("service", cfg.Service))
	}
	return l, closer, nil
}

// Discard returns a logger that writes nothing.
func Discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
