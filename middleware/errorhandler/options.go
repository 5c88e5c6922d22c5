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

package errorhandler

import (
	"genesis.dev/genesis/errors"
	"genesis.dev/genesis/logging"
	"genesis.dev/genesis/router"
)

// Reporter forwards server errors to a remote collector. Implementations
// must be best-effort and non-blocking from the caller's point of view.
type Reporter func(e *errors.Error, requestID string)

// Option defines functional options for errorhandler middleware configuration.
type Option func(*config)

type config struct {
	logger         *logging.Logger
	logErrors      bool
	showStackTrace bool
	logToFile      bool
	filePath       string
	sanitize       bool
	includeRequest bool
	customMessages map[string]string
	analytics      *errors.Analytics
	reporter       Reporter
}

func defaultConfig() *config {
	return &config{
		logErrors: true,
		filePath:  "./logs/requests.log",
		analytics: errors.DefaultAnalytics,
	}
}

// WithLogger sets the console logger.
func WithLogger(logger *logging.Logger) Option {
	return func(c *config) { c.logger = logger }
}

// WithStackTraces includes stack traces in console logs. Development only;
// stacks never appear in response bodies regardless.
func WithStackTraces() Option {
	return func(c *config) { c.showStackTrace = true }
}

// WithSilentConsole suppresses console logging entirely.
func WithSilentConsole() Option {
	return func(c *config) { c.logErrors = false }
}

// WithFileLogging appends one sanitised JSON line per handled error to path.
func WithFileLogging(path string) Option {
	return func(c *config) {
		c.logToFile = true
		if path != "" {
			c.filePath = path
		}
	}
}

// WithSanitize redacts 5xx messages and validation values in responses.
func WithSanitize() Option {
	return func(c *config) { c.sanitize = true }
}

// WithRequestInfo includes the request method and path in error responses.
func WithRequestInfo() Option {
	return func(c *config) { c.includeRequest = true }
}

// WithCustomMessages overrides response messages by error type name, e.g.
// {"NotFound": "nothing here"}.
func WithCustomMessages(messages map[string]string) Option {
	return func(c *config) { c.customMessages = messages }
}

// WithAnalytics records handled errors into a specific analytics instance
// instead of the process-wide default.
func WithAnalytics(a *errors.Analytics) Option {
	return func(c *config) { c.analytics = a }
}

// WithReporter forwards errors with status >= 500 to a remote collector.
func WithReporter(r Reporter) Option {
	return func(c *config) { c.reporter = r }
}

// Development returns the verbose preset: console logging with stack traces
// and request info, no file logging, no sanitisation, no remote reporting.
func Development(logger *logging.Logger) router.HandlerFunc {
	return New(
		WithLogger(logger),
		WithStackTraces(),
		WithRequestInfo(),
	)
}

// Production returns the hardened preset: no stacks, file logging on,
// sanitised responses, remote reporting when a reporter is given.
func Production(logger *logging.Logger, reporter Reporter) router.HandlerFunc {
	opts := []Option{
		WithLogger(logger),
		WithFileLogging(""),
		WithSanitize(),
	}
	if reporter != nil {
		opts = append(opts, WithReporter(reporter))
	}
	return New(opts...)
}

// Minimal returns the quiet preset: file logging only, silent console.
func Minimal() router.HandlerFunc {
	return New(
		WithSilentConsole(),
		WithFileLogging(""),
	)
}
