// Package logging builds slog loggers and adapts them to the Logger port
// that extractors and visitors report non-fatal problems through.
package logging

import (
	"context"
	"io"
	"log/slog"
	"strings"
	"sync"
)

// Level is the severity passed through the Logger port.
type Level int

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
)

func (l Level) String() string {
	switch l {
	case LevelDebug:
		return "debug"
	case LevelInfo:
		return "info"
	case LevelWarn:
		return "warn"
	default:
		return "error"
	}
}

func (l Level) slogLevel() slog.Level {
	switch l {
	case LevelDebug:
		return slog.LevelDebug
	case LevelInfo:
		return slog.LevelInfo
	case LevelWarn:
		return slog.LevelWarn
	default:
		return slog.LevelError
	}
}

// Logger receives non-fatal diagnostics. It is never used for control flow.
type Logger interface {
	Log(msg string, level Level)
}

// Format selects the slog handler.
type Format string

const (
	FormatText Format = "text"
	FormatJSON Format = "json"
)

// New creates a slog.Logger writing to w in the given format.
func New(w io.Writer, format Format, level slog.Level) *slog.Logger {
	opts := &slog.HandlerOptions{Level: level}
	if format == FormatJSON {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

// NewDiscardLogger creates a logger that discards all output.
func NewDiscardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.Level(100)}))
}

// LevelFromString converts a string to a slog.Level.
// Supports: debug, info, warn, error (case-insensitive).
// Returns slog.LevelWarn for unrecognized strings.
func LevelFromString(s string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
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

// ValidLevel reports whether s names a level LevelFromString understands.
func ValidLevel(s string) bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug", "info", "warn", "warning", "error":
		return true
	}
	return false
}

type slogAdapter struct {
	logger *slog.Logger
	attrs  []any
}

// FromSlog adapts l to the Logger port. Extra key/value pairs are attached
// to every record, e.g. the file being extracted.
func FromSlog(l *slog.Logger, args ...any) Logger {
	if l == nil {
		l = NewDiscardLogger()
	}
	return &slogAdapter{logger: l, attrs: args}
}

func (a *slogAdapter) Log(msg string, level Level) {
	a.logger.Log(context.Background(), level.slogLevel(), msg, a.attrs...)
}

type nopLogger struct{}

func (nopLogger) Log(string, Level) {}

// Nop returns a Logger that drops everything.
func Nop() Logger { return nopLogger{} }

// Entry is one recorded log call.
type Entry struct {
	Message string
	Level   Level
}

// Recorder keeps every entry in memory. Safe for concurrent use.
type Recorder struct {
	mu      sync.Mutex
	entries []Entry
}

func (r *Recorder) Log(msg string, level Level) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = append(r.entries, Entry{Message: msg, Level: level})
}

// Entries returns a copy of the recorded entries.
func (r *Recorder) Entries() []Entry {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Entry, len(r.entries))
	copy(out, r.entries)
	return out
}

// Count returns how many entries at level contain substr.
func (r *Recorder) Count(level Level, substr string) int {
	n := 0
	for _, e := range r.Entries() {
		if e.Level == level && strings.Contains(e.Message, substr) {
			n++
		}
	}
	return n
}
