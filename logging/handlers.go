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
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"
	"time"
)

// ANSI color codes.
const (
	colorReset  = "\033[0m"
	colorRed    = "\033[31m"
	colorGreen  = "\033[32m"
	colorYellow = "\033[33m"
	colorBlue   = "\033[34m"
	colorDim    = "\033[2m"
	colorBold   = "\033[1m"
)

// timestampLayout is the second-precision format used on every line.
const timestampLayout = "2006-01-02 15:04:05"

// MarshalJSON renders levels as their names in JSON sinks.
func (l Level) MarshalJSON() ([]byte, error) {
	return json.Marshal(l.String())
}

// Entry is one captured log record, as seen by the history ring and sinks.
type Entry struct {
	Time    time.Time      `json:"timestamp"`
	Level   Level          `json:"level"`
	Message string         `json:"message"`
	Attrs   map[string]any `json:"attrs,omitempty"`
}

// levelFromSlog converts a slog.Level back to a Level.
func levelFromSlog(l slog.Level) Level {
	switch {
	case l >= slog.LevelError:
		return LevelError
	case l >= slog.LevelWarn:
		return LevelWarn
	case l >= slog.LevelInfo:
		return LevelInfo
	default:
		return LevelDebug
	}
}

// recordAttrs collects a record's attributes into a plain map.
func recordAttrs(r slog.Record, extra []slog.Attr) map[string]any {
	if r.NumAttrs() == 0 && len(extra) == 0 {
		return nil
	}
	attrs := make(map[string]any, r.NumAttrs()+len(extra))
	for _, a := range extra {
		attrs[a.Key] = a.Value.Any()
	}
	r.Attrs(func(a slog.Attr) bool {
		attrs[a.Key] = a.Value.Any()
		return true
	})
	return attrs
}

// lineBuilderPool provides reusable strings.Builder instances for line
// formatting.
var lineBuilderPool = sync.Pool{
	New: func() any {
		return &strings.Builder{}
	},
}

// lineHandler implements slog.Handler producing the single-line format:
//
//	2026-08-24 10:32:01 INFO  message {"key":"value"}
//
// Thread-safe: writes are a single Write call on the underlying writer.
type lineHandler struct {
	output io.Writer
	level  Level
	color  bool
	attrs  []slog.Attr
	mu     *sync.Mutex
}

func newLineHandler(w io.Writer, level Level, color bool) *lineHandler {
	return &lineHandler{output: w, level: level, color: color, mu: &sync.Mutex{}}
}

// Enabled reports whether the handler handles records at the given level.
func (h *lineHandler) Enabled(_ context.Context, level slog.Level) bool {
	return levelFromSlog(level) >= h.level
}

// Handle formats and writes a log record as one line.
func (h *lineHandler) Handle(_ context.Context, r slog.Record) error {
	b := lineBuilderPool.Get().(*strings.Builder)
	b.Reset()
	defer lineBuilderPool.Put(b)

	level := levelFromSlog(r.Level)

	if h.color {
		b.WriteString(colorDim)
	}
	b.WriteString(r.Time.Format(timestampLayout))
	if h.color {
		b.WriteString(colorReset)
	}
	b.WriteString(" ")

	if h.color {
		b.WriteString(h.levelColor(level))
		b.WriteString(colorBold)
	}
	fmt.Fprintf(b, "%-5s", strings.ToUpper(level.String()))
	if h.color {
		b.WriteString(colorReset)
	}
	b.WriteString(" ")
	b.WriteString(r.Message)

	if attrs := recordAttrs(r, h.attrs); attrs != nil {
		if meta, err := json.Marshal(attrs); err == nil {
			b.WriteString(" ")
			b.Write(meta)
		}
	}
	b.WriteString("\n")

	h.mu.Lock()
	defer h.mu.Unlock()
	_, err := io.WriteString(h.output, b.String())
	return err
}

// WithAttrs returns a new handler with additional attributes.
func (h *lineHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	merged := make([]slog.Attr, 0, len(h.attrs)+len(attrs))
	merged = append(merged, h.attrs...)
	merged = append(merged, attrs...)
	return &lineHandler{output: h.output, level: h.level, color: h.color, attrs: merged, mu: h.mu}
}

// WithGroup is accepted but flattened; the line format has no nesting.
func (h *lineHandler) WithGroup(string) slog.Handler { return h }

func (h *lineHandler) levelColor(level Level) string {
	switch level {
	case LevelError:
		return colorRed
	case LevelWarn:
		return colorYellow
	case LevelInfo:
		return colorGreen
	default:
		return colorBlue
	}
}

// multiHandler fans records out to several handlers.
type multiHandler struct {
	handlers []slog.Handler
}

func newMultiHandler(handlers ...slog.Handler) *multiHandler {
	return &multiHandler{handlers: handlers}
}

func (h *multiHandler) Enabled(ctx context.Context, level slog.Level) bool {
	for _, inner := range h.handlers {
		if inner.Enabled(ctx, level) {
			return true
		}
	}
	return false
}

func (h *multiHandler) Handle(ctx context.Context, r slog.Record) error {
	var first error
	for _, inner := range h.handlers {
		if !inner.Enabled(ctx, r.Level) {
			continue
		}
		if err := inner.Handle(ctx, r.Clone()); err != nil && first == nil {
			first = err
		}
	}
	return first
}

func (h *multiHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	out := make([]slog.Handler, len(h.handlers))
	for i, inner := range h.handlers {
		out[i] = inner.WithAttrs(attrs)
	}
	return &multiHandler{handlers: out}
}

func (h *multiHandler) WithGroup(name string) slog.Handler {
	out := make([]slog.Handler, len(h.handlers))
	for i, inner := range h.handlers {
		out[i] = inner.WithGroup(name)
	}
	return &multiHandler{handlers: out}
}

// historyHandler appends every record to the history ring.
type historyHandler struct {
	history *History
	level   Level
	attrs   []slog.Attr
}

func newHistoryHandler(history *History, level Level) *historyHandler {
	return &historyHandler{history: history, level: level}
}

func (h *historyHandler) Enabled(_ context.Context, level slog.Level) bool {
	return levelFromSlog(level) >= h.level
}

func (h *historyHandler) Handle(_ context.Context, r slog.Record) error {
	h.history.Append(Entry{
		Time:    r.Time,
		Level:   levelFromSlog(r.Level),
		Message: r.Message,
		Attrs:   recordAttrs(r, h.attrs),
	})
	return nil
}

func (h *historyHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	merged := make([]slog.Attr, 0, len(h.attrs)+len(attrs))
	merged = append(merged, h.attrs...)
	merged = append(merged, attrs...)
	return &historyHandler{history: h.history, level: h.level, attrs: merged}
}

func (h *historyHandler) WithGroup(string) slog.Handler { return h }

// sinkHandler forwards entries to a subscriber function.
type sinkHandler struct {
	sink  SinkFunc
	level Level
	attrs []slog.Attr
}

func newSinkHandler(sink SinkFunc, level Level) *sinkHandler {
	return &sinkHandler{sink: sink, level: level}
}

func (h *sinkHandler) Enabled(_ context.Context, level slog.Level) bool {
	return levelFromSlog(level) >= h.level
}

func (h *sinkHandler) Handle(_ context.Context, r slog.Record) error {
	h.sink(Entry{
		Time:    r.Time,
		Level:   levelFromSlog(r.Level),
		Message: r.Message,
		Attrs:   recordAttrs(r, h.attrs),
	})
	return nil
}

func (h *sinkHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	merged := make([]slog.Attr, 0, len(h.attrs)+len(attrs))
	merged = append(merged, h.attrs...)
	merged = append(merged, attrs...)
	return &sinkHandler{sink: h.sink, level: h.level, attrs: merged}
}

func (h *sinkHandler) WithGroup(string) slog.Handler { return h }
