// Package logger provides the structured logger shared by the dedup pipeline.
package logger

import (
	"context"
	"io"
	"log/slog"
	"os"
	"time"
)

// Logger wraps slog.Logger with pipeline-specific helpers.
type Logger struct {
	*slog.Logger
}

// New creates a Logger with the given handler.
// A nil handler logs text at Info level to stderr.
func New(handler slog.Handler) *Logger {
	if handler == nil {
		handler = slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo})
	}
	return &Logger{Logger: slog.New(handler)}
}

// NewTextLogger creates a Logger writing human-readable lines to w
func NewTextLogger(w io.Writer, level slog.Level) *Logger {
	return New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

// NewJSONLogger creates a Logger writing one JSON object per line to w
func NewJSONLogger(w io.Writer, level slog.Level) *Logger {
	return New(slog.NewJSONHandler(w, &slog.HandlerOptions{Level: level}))
}

// Noop creates a Logger that discards everything.
func Noop() *Logger {
	return New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.Level(1000)}))
}

// Options selects a handler from command-line style settings
type Options struct {
	Format  string // "text" or "json"
	Verbose bool
	Writer  io.Writer
}

// FromOptions builds a Logger for the CLI. Verbose lowers the level to Debug.
func FromOptions(opts Options) *Logger {
	w := opts.Writer
	if w == nil {
		w = os.Stderr
	}
	level := slog.LevelWarn
	if opts.Verbose {
		level = slog.LevelDebug
	}
	if opts.Format == "json" {
		return NewJSONLogger(w, level)
	}
	return NewTextLogger(w, level)
}

// WithRun tags every record with the run identifier
func (l *Logger) WithRun(runID string) *Logger {
	return &Logger{Logger: l.Logger.With("run_id", runID)}
}

// WithComponent tags every record with the emitting component
func (l *Logger) WithComponent(name string) *Logger {
	return &Logger{Logger: l.Logger.With("component", name)}
}

// LogPhase logs the completion of one pipeline phase.
func (l *Logger) LogPhase(ctx context.Context, phase string, elapsed time.Duration, attrs ...any) {
	args := append([]any{"phase", phase, "elapsed", elapsed}, attrs...)
	l.DebugContext(ctx, "phase completed", args...)
}

// LogSkipped logs an input that was ignored
func (l *Logger) LogSkipped(ctx context.Context, path string, reason string) {
	l.WarnContext(ctx, "input skipped", "path", path, "reason", reason)
}
