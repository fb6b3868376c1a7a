// Package logger is the structured logging facade used across amber.
//
// Components receive a Logger explicitly and narrow it with WithGroup; the
// CLI picks level and format once and carries the root logger in the
// command context.
package logger

import (
	"context"
	"io"
	"log/slog"
	"os"
)

// Logger logs messages with alternating key/value pairs.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)

	// With returns a Logger that adds args to every record.
	With(args ...any) Logger
	// WithGroup returns a Logger that nests later keys under name.
	WithGroup(name string) Logger
}

// slogLogger adapts *slog.Logger; the level methods come from the embedded
// logger.
type slogLogger struct {
	*slog.Logger
}

// New creates a slog-backed Logger. It writes text at info level to stderr
// unless options say otherwise.
func New(opts ...Option) Logger {
	cfg := config{level: slog.LevelInfo, output: os.Stderr, format: FormatText}
	for _, opt := range opts {
		opt(&cfg)
	}
	return &slogLogger{slog.New(cfg.handler())}
}

func (c config) handler() slog.Handler {
	ho := &slog.HandlerOptions{Level: c.level, AddSource: c.source}
	if c.format == FormatJSON {
		return slog.NewJSONHandler(c.output, ho)
	}
	return slog.NewTextHandler(c.output, ho)
}

// Nop returns a logger that discards everything
func Nop() Logger {
	return &slogLogger{slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelError + 1}))}
}

func (l *slogLogger) With(args ...any) Logger {
	return &slogLogger{l.Logger.With(args...)}
}

func (l *slogLogger) WithGroup(name string) Logger {
	return &slogLogger{l.Logger.WithGroup(name)}
}

type loggerKey struct{}

// WithContext returns a copy of ctx carrying l.
func WithContext(ctx context.Context, l Logger) context.Context {
	return context.WithValue(ctx, loggerKey{}, l)
}

// FromContext returns the Logger carried by ctx, or Nop.
func FromContext(ctx context.Context) Logger {
	if l, ok := ctx.Value(loggerKey{}).(Logger); ok {
		return l
	}
	return Nop()
}
