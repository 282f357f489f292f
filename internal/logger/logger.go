// Package logger is the process-wide structured log facade shared by the
// hosts, the store and the game packages.
//
// Nothing is written until Initialize runs. The generator and the turn
// pipeline log unconditionally and tests never have to configure a sink.
package logger

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"gopkg.in/natefinch/lumberjack.v2"
)

// LevelAlways marks run summaries; it passes every level filter.
const LevelAlways = slog.Level(12)

var current *slog.Logger

// Initialize installs the sinks named by config. Console output goes to
// stdout.
func Initialize(config Config) error {
	return initialize(config, os.Stdout)
}

func initialize(config Config, console io.Writer) error {
	opts := &slog.HandlerOptions{Level: parseLogLevel(config.Level), ReplaceAttr: nameAlways}

	var sinks []slog.Handler
	if config.ConsoleEnabled {
		sinks = append(sinks, formatted(console, config.ConsoleFormat, opts))
	}
	if config.FileEnabled {
		if config.FilePath == "" {
			return fmt.Errorf("file logging enabled without a file path")
		}
		sinks = append(sinks, formatted(&lumberjack.Logger{
			Filename:   config.FilePath,
			MaxSize:    config.FileMaxSizeMB,
			MaxBackups: config.FileMaxBackups,
			MaxAge:     config.FileMaxAgeDays,
			Compress:   config.FileCompress,
		}, config.FileFormat, opts))
	}

	switch len(sinks) {
	case 0:
		// The terminal host owns stdout and may turn the console off; errors
		// still reach stderr.
		current = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
	case 1:
		current = slog.New(sinks[0])
	default:
		current = slog.New(tee(sinks))
	}
	return nil
}

func formatted(w io.Writer, format string, opts *slog.HandlerOptions) slog.Handler {
	if strings.EqualFold(format, "json") {
		return slog.NewJSONHandler(w, opts)
	}
	return slog.NewTextHandler(w, opts)
}

// nameAlways prints LevelAlways as ALWAYS instead of ERROR+4.
func nameAlways(_ []string, a slog.Attr) slog.Attr {
	if a.Key != slog.LevelKey {
		return a
	}
	if level, ok := a.Value.Any().(slog.Level); ok && level == LevelAlways {
		a.Value = slog.StringValue("ALWAYS")
	}
	return a
}

// parseLogLevel maps a config level name, in any case, to a slog level.
// Unknown names fall back to INFO.
func parseLogLevel(level string) slog.Level {
	switch strings.ToUpper(strings.TrimSpace(level)) {
	case "DEBUG":
		return slog.LevelDebug
	case "WARNING", "WARN":
		return slog.LevelWarn
	case "ERROR":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// Reset drops the installed logger.
func Reset() {
	current = nil
}

func emit(level slog.Level, msg string, args []any) {
	if current == nil {
		return
	}
	current.Log(context.Background(), level, msg, args...)
}

// Debug, Info, Warning and Error log at the matching slog level.
func Debug(msg string, args ...any)   { emit(slog.LevelDebug, msg, args) }
func Info(msg string, args ...any)    { emit(slog.LevelInfo, msg, args) }
func Warning(msg string, args ...any) { emit(slog.LevelWarn, msg, args) }
func Error(msg string, args ...any)   { emit(slog.LevelError, msg, args) }

// Always logs past the level filter; used for won runs.
func Always(msg string, args ...any) { emit(LevelAlways, msg, args) }

func Debugf(format string, args ...any)   { Debug(fmt.Sprintf(format, args...)) }
func Infof(format string, args ...any)    { Info(fmt.Sprintf(format, args...)) }
func Warningf(format string, args ...any) { Warning(fmt.Sprintf(format, args...)) }
func Errorf(format string, args ...any)   { Error(fmt.Sprintf(format, args...)) }

// teeHandler copies each record to every sink whose level admits it, so the
// log file can keep DEBUG while the console shows only errors.
type teeHandler []slog.Handler

func tee(sinks []slog.Handler) teeHandler {
	return teeHandler(sinks)
}

func (t teeHandler) Enabled(ctx context.Context, level slog.Level) bool {
	for _, h := range t {
		if h.Enabled(ctx, level) {
			return true
		}
	}
	return false
}

func (t teeHandler) Handle(ctx context.Context, r slog.Record) error {
	for _, h := range t {
		if !h.Enabled(ctx, r.Level) {
			continue
		}
		if err := h.Handle(ctx, r.Clone()); err != nil {
			return err
		}
	}
	return nil
}

func (t teeHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return t.each(func(h slog.Handler) slog.Handler { return h.WithAttrs(attrs) })
}

func (t teeHandler) WithGroup(name string) slog.Handler {
	return t.each(func(h slog.Handler) slog.Handler { return h.WithGroup(name) })
}

func (t teeHandler) each(f func(slog.Handler) slog.Handler) teeHandler {
	out := make(teeHandler, len(t))
	for i, h := range t {
		out[i] = f(h)
	}
	return out
}
