// Copyright 2026 The Genesis Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package logging

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
)

// Level is the logger's severity level. A record is emitted iff its level
// index is >= the configured level's index.
type Level int

// Levels, ordered debug < info < warn < error.
const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
)

// String returns the lowercase level name.
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

// ParseLevel parses a level name. Unknown names default to info.
func ParseLevel(s string) Level {
	switch strings.ToLower(s) {
	case "debug":
		return LevelDebug
	case "warn", "warning":
		return LevelWarn
	case "error":
		return LevelError
	default:
		return LevelInfo
	}
}

// slogLevel maps a Level to the corresponding slog.Level.
func (l Level) slogLevel() slog.Level {
	switch l {
	case LevelDebug:
		return slog.LevelDebug
	case LevelWarn:
		return slog.LevelWarn
	case LevelError:
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// Logger is the leveled logger. It fans every record out to the line
// handler, the history ring and any configured sinks.
//
// Thread-safe: safe for concurrent use by multiple goroutines.
type Logger struct {
	slogger *slog.Logger
	history *History
	level   Level
	closers []func() error
}

// New creates a logger from the given options.
func New(opts ...Option) (*Logger, error) {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(cfg)
	}

	history := NewHistory(cfg.historySize)
	handlers := []slog.Handler{
		newLineHandler(cfg.output, cfg.level, cfg.color),
		newHistoryHandler(history, cfg.level),
	}

	var closers []func() error
	for _, path := range cfg.jsonFiles {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("create log directory: %w", err)
		}
		f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, fmt.Errorf("open log file: %w", err)
		}
		closers = append(closers, f.Close)
		handlers = append(handlers, slog.NewJSONHandler(f, &slog.HandlerOptions{
			Level: cfg.level.slogLevel(),
		}))
	}
	for _, sink := range cfg.sinks {
		handlers = append(handlers, newSinkHandler(sink, cfg.level))
	}

	return &Logger{
		slogger: slog.New(newMultiHandler(handlers...)),
		history: history,
		level:   cfg.level,
		closers: closers,
	}, nil
}

// MustNew is like New but panics on configuration errors.
func MustNew(opts ...Option) *Logger {
	l, err := New(opts...)
	if err != nil {
		panic(fmt.Sprintf("logging.MustNew: %v", err))
	}
	return l
}

// Debug logs at debug level. Args are alternating key/value pairs.
func (l *Logger) Debug(msg string, args ...any) { l.slogger.Debug(msg, args...) }

// Info logs at info level.
func (l *Logger) Info(msg string, args ...any) { l.slogger.Info(msg, args...) }

// Warn logs at warn level.
func (l *Logger) Warn(msg string, args ...any) { l.slogger.Warn(msg, args...) }

// Error logs at error level.
func (l *Logger) Error(msg string, args ...any) { l.slogger.Error(msg, args...) }

// Level returns the configured minimum level.
func (l *Logger) Level() Level { return l.level }

// DebugEnabled reports whether debug records are emitted.
func (l *Logger) DebugEnabled() bool { return l.level <= LevelDebug }

// History returns the bounded ring of recent entries.
func (l *Logger) History() *History { return l.history }

// Slog exposes the underlying slog.Logger for integrations that expect one.
func (l *Logger) Slog() *slog.Logger { return l.slogger }

// Close releases file sinks. The logger must not be used afterwards.
func (l *Logger) Close() error {
	var first error
	for _, c := range l.closers {
		if err := c(); err != nil && first == nil {
			first = err
		}
	}
	return first
}

// Discard returns a logger that drops everything. Useful in tests.
func Discard() *Logger {
	return &Logger{
		slogger: slog.New(discardHandler{}),
		history: NewHistory(1),
		level:   LevelError,
	}
}

type discardHandler struct{}

func (discardHandler) Enabled(context.Context, slog.Level) bool  { return false }
func (discardHandler) Handle(context.Context, slog.Record) error { return nil }
func (discardHandler) WithAttrs([]slog.Attr) slog.Handler        { return discardHandler{} }
func (discardHandler) WithGroup(string) slog.Handler             { return discardHandler{} }
