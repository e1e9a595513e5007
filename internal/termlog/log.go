// Package termlog adapts util/log.go's custom slog wrapper — the
// TRACE/FATAL level naming via ReplaceAttr, the LevelVar-driven runtime
// level switch, pid tagging — to this module's injected-logger
// discipline: nothing here touches slog.SetDefault or a package-level
// global, since every constructor elsewhere in this module takes a
// *slog.Logger explicitly rather than reaching for one (see
// SPEC_FULL.md's no-global-mutable-logging-state design note).
package termlog

import (
	"context"
	"io"
	"log/slog"
	"os"
)

const (
	LevelTrace = slog.Level(-8)
	LevelFatal = slog.Level(12)
)

var levelNames = map[slog.Leveler]string{
	LevelTrace: "TRACE",
	LevelFatal: "FATAL",
}

// Logger wraps *slog.Logger with a runtime-adjustable level, the same
// shape as util/log.go's myLogger but constructed per-caller instead of
// as a package singleton.
type Logger struct {
	*slog.Logger
	level *slog.LevelVar
}

// New builds a Logger writing text-formatted records to w at the given
// starting level, with addSource controlling whether each record
// carries its call site.
func New(w io.Writer, level slog.Level, addSource bool) *Logger {
	l := &Logger{level: new(slog.LevelVar)}
	l.level.Set(level)
	l.Logger = slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{
		AddSource: addSource,
		Level:     l.level,
		ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
			if a.Key == slog.LevelKey {
				lvl := a.Value.Any().(slog.Level)
				name, ok := levelNames[lvl]
				if !ok {
					name = lvl.String()
				}
				a.Value = slog.StringValue(name)
			}
			return a
		},
	})).With("pid", os.Getpid())
	return l
}

// Default builds a Logger writing to stderr at slog.LevelInfo, for
// callers that don't need anything more specific.
func Default() *Logger {
	return New(os.Stderr, slog.LevelInfo, false)
}

// SetLevel adjusts the logger's level at runtime without rebuilding the
// handler, matching myLogger.SetLevel.
func (l *Logger) SetLevel(v slog.Level) { l.level.Set(v) }

// Trace logs at LevelTrace, below slog's own Debug.
func (l *Logger) Trace(msg string, args ...any) {
	l.Logger.Log(context.Background(), LevelTrace, msg, args...)
}

// Fatal logs at LevelFatal. It does not call os.Exit; callers that want
// process termination do it themselves after logging, keeping this
// package free of control-flow side effects.
func (l *Logger) Fatal(msg string, args ...any) {
	l.Logger.Log(context.Background(), LevelFatal, msg, args...)
}
