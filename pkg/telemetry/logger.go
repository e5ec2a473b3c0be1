// Package telemetry is the engine's logging surface: a small sink
// interface over the standard log package. A missing sink is never
// fatal; core code logs unconditionally against a no-op default.
package telemetry

import (
	"log"
	"os"
)

// Category names the event channel a log line belongs to.
type Category string

const (
	CategoryInfo        Category = "Mem.Info"
	CategoryPerformance Category = "Mem.Performance"
	CategoryExceptions  Category = "Mem.Exceptions"
	CategoryGPU         Category = "GPU"
)

// Logger is the engine's logging sink contract. A nil Logger is never
// passed to core code — callers get NoopLogger{} by default — so every
// call site can log unconditionally.
type Logger interface {
	Infof(cat Category, format string, args ...any)
	Errorf(cat Category, format string, args ...any)
}

// NoopLogger discards everything. Used when the caller supplies no
// sink.
type NoopLogger struct{}

func (NoopLogger) Infof(Category, string, ...any)  {}
func (NoopLogger) Errorf(Category, string, ...any) {}

// StdLogger wraps a single shared *log.Logger with a level cutoff.
type StdLogger struct {
	out      *log.Logger
	minLevel Level
}

// Level orders the logger's two verbosity levels. LevelInfo prints both
// Infof and Errorf lines; LevelError prints only Errorf lines. The
// level does not depend on a line's Category.
type Level int

const (
	LevelInfo Level = iota
	LevelError
)

// NewStdLogger creates a logger writing to stderr with the given
// minimum level.
func NewStdLogger(minLevel Level) *StdLogger {
	return &StdLogger{out: log.New(os.Stderr, "", log.LstdFlags), minLevel: minLevel}
}

func (l *StdLogger) Infof(cat Category, format string, args ...any) {
	if l.minLevel > LevelInfo {
		return
	}
	l.out.Printf("[%s] "+format, append([]any{cat}, args...)...)
}

func (l *StdLogger) Errorf(cat Category, format string, args ...any) {
	l.out.Printf("[%s] "+format, append([]any{cat}, args...)...)
}
