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

// Package accesslog emits one REQ line per completed request:
//
//	REQ POST   /api/todos 201 12ms [b9f2c9d4-...]
//
// and, when the logger runs at debug level, a structured "request details"
// entry with sanitised headers, client IP, user agent and query parameters.
// Requests slower than the configured threshold additionally log a warning.
package accesslog

import (
	"fmt"
	"time"

	"genesis.dev/genesis/errors"
	"genesis.dev/genesis/logging"
	"genesis.dev/genesis/router"
)

// Option defines functional options for accesslog middleware configuration.
type Option func(*config)

type config struct {
	logger        *logging.Logger
	slowThreshold time.Duration
	responseLine  bool
}

func defaultConfig() *config {
	return &config{
		slowThreshold: time.Second,
	}
}

// WithLogger sets the destination logger. Required.
func WithLogger(logger *logging.Logger) Option {
	return func(c *config) { c.logger = logger }
}

// WithSlowThreshold overrides the duration beyond which a completed request
// logs an extra warning. Zero disables slow-request detection.
func WithSlowThreshold(d time.Duration) Option {
	return func(c *config) { c.slowThreshold = d }
}

// WithResponseLine also emits a RES line mirroring the REQ line. Off by
// default; the REQ line already carries the final status.
func WithResponseLine() Option {
	return func(c *config) { c.responseLine = true }
}

// New returns the access logging middleware.
//
//	r.Use(accesslog.New(accesslog.WithLogger(logger)))
func New(opts ...Option) router.HandlerFunc {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(cfg)
	}
	logger := cfg.logger
	if logger == nil {
		logger = logging.Discard()
	}

	return func(c *router.Context) {
		start := time.Now()
		target := c.Request.URL.Path
		if q := c.Request.URL.RawQuery; q != "" {
			target += "?" + q
		}

		if logger.DebugEnabled() {
			logger.Debug("request details",
				"method", c.Request.Method,
				"path", target,
				"ip", c.ClientIP(),
				"userAgent", c.Request.UserAgent(),
				"headers", logging.SanitizeHeaders(c.Request.Header),
				"query", c.Request.URL.Query(),
			)
		}

		c.Next()

		elapsed := time.Since(start)
		status := effectiveStatus(c)
		line := fmt.Sprintf("REQ %-6s %s %d %dms [%s]",
			c.Request.Method, target, status, elapsed.Milliseconds(), c.RequestID())
		logger.Info(line)

		if cfg.responseLine {
			logger.Info(fmt.Sprintf("RES %-6s %s %d %dms [%s]",
				c.Request.Method, target, status, elapsed.Milliseconds(), c.RequestID()))
		}

		if cfg.slowThreshold > 0 && elapsed > cfg.slowThreshold {
			logger.Warn("slow request",
				"method", c.Request.Method,
				"path", target,
				"durationMs", elapsed.Milliseconds(),
				"requestId", c.RequestID(),
			)
		}
	}
}

// effectiveStatus reads the status this request will answer with. The error
// handler sits outside the pipeline and stages its response after this
// middleware unwinds, so collected errors outrank the staged status.
func effectiveStatus(c *router.Context) int {
	if !c.Committed() {
		if status, ok := errors.HTTPStatusFor(c.Errors()); ok {
			return status
		}
	}
	return c.StagedStatus()
}
