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
	"io"
	"os"
)

// Option defines functional options for logger configuration.
type Option func(*config)

// SinkFunc receives every emitted entry. Sinks must not block; slow
// destinations should buffer internally (see the remotelog package).
type SinkFunc func(Entry)

// config holds the logger configuration.
type config struct {
	level       Level
	output      io.Writer
	color       bool
	historySize int
	jsonFiles   []string
	sinks       []SinkFunc
}

// defaultHistorySize bounds the in-memory entry ring.
const defaultHistorySize = 100

func defaultConfig() *config {
	return &config{
		level:       LevelInfo,
		output:      os.Stdout,
		color:       colorEnabled(),
		historySize: defaultHistorySize,
	}
}

// WithLevel sets the minimum emitted level.
func WithLevel(level Level) Option {
	return func(cfg *config) { cfg.level = level }
}

// WithOutput redirects line output (default os.Stdout).
func WithOutput(w io.Writer) Option {
	return func(cfg *config) { cfg.output = w }
}

// WithColor forces ANSI colors on or off. The default follows the
// NO_COLOR / FORCE_COLOR / TERM conventions.
func WithColor(enabled bool) Option {
	return func(cfg *config) { cfg.color = enabled }
}

// WithHistorySize sets the capacity of the introspection ring (default 100).
func WithHistorySize(n int) Option {
	return func(cfg *config) {
		if n > 0 {
			cfg.historySize = n
		}
	}
}

// WithJSONFile adds an append-only JSON-lines file sink.
// The parent directory is created if missing.
func WithJSONFile(path string) Option {
	return func(cfg *config) { cfg.jsonFiles = append(cfg.jsonFiles, path) }
}

// WithSink subscribes fn to the write stream.
func WithSink(fn SinkFunc) Option {
	return func(cfg *config) { cfg.sinks = append(cfg.sinks, fn) }
}

// colorEnabled decides whether ANSI colors should be used by default,
// honoring NO_COLOR, FORCE_COLOR, CI, TERM and COLORTERM.
func colorEnabled() bool {
	if os.Getenv("NO_COLOR") != "" {
		return false
	}
	if os.Getenv("FORCE_COLOR") != "" {
		return true
	}
	if os.Getenv("CI") != "" {
		return false
	}
	term := os.Getenv("TERM")
	if term == "" || term == "dumb" {
		return os.Getenv("COLORTERM") != ""
	}
	return true
}
