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

// Package health intercepts a configured path (default /health) and answers
// with a JSON health document instead of running the route table:
//
//	{"status":"healthy","uptimeSeconds":12,"timestamp":"...","checks":{...}}
//
// Checks are pluggable callables. A failing critical check makes the whole
// document unhealthy (503); a failing non-critical check degrades it (200).
package health

import (
	"net/http"
	"time"

	"genesis.dev/genesis/router"
)

// CheckResult is the outcome of one health check.
type CheckResult struct {
	OK        bool   `json:"ok"`
	LatencyMs int64  `json:"latencyMs"`
	Detail    string `json:"detail,omitempty"`
}

// CheckFunc probes one dependency. It should be fast; slow probes delay
// every health poll.
type CheckFunc func() CheckResult

type check struct {
	name     string
	critical bool
	fn       CheckFunc
}

// Option defines functional options for health middleware configuration.
type Option func(*config)

type config struct {
	path   string
	checks []check
}

func defaultConfig() *config {
	return &config{path: "/health"}
}

// WithPath overrides the intercepted path.
func WithPath(path string) Option {
	return func(c *config) { c.path = path }
}

// WithCheck registers a critical check; failure marks the service unhealthy.
func WithCheck(name string, fn CheckFunc) Option {
	return func(c *config) { c.checks = append(c.checks, check{name: name, critical: true, fn: fn}) }
}

// WithOptionalCheck registers a non-critical check; failure only degrades.
func WithOptionalCheck(name string, fn CheckFunc) Option {
	return func(c *config) { c.checks = append(c.checks, check{name: name, fn: fn}) }
}

// Timed wraps a boolean probe into a CheckFunc that measures its latency.
//
//	health.WithCheck("database", health.Timed(func() (bool, string) {
//	    return db.Ping() == nil, ""
//	}))
func Timed(probe func() (ok bool, detail string)) CheckFunc {
	return func() CheckResult {
		start := time.Now()
		ok, detail := probe()
		return CheckResult{OK: ok, LatencyMs: time.Since(start).Milliseconds(), Detail: detail}
	}
}

// New returns the health middleware. Liveness-only (no checks):
//
//	r.Use(health.New())
//
// With dependency checks:
//
//	r.Use(health.New(
//	    health.WithCheck("database", pingDB),
//	    health.WithOptionalCheck("cache", pingCache),
//	))
func New(opts ...Option) router.HandlerFunc {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(cfg)
	}
	started := time.Now()

	return func(c *router.Context) {
		if c.Request.URL.Path != cfg.path || c.Request.Method != http.MethodGet {
			c.Next()
			return
		}

		status := "healthy"
		results := make(map[string]CheckResult, len(cfg.checks))
		for _, chk := range cfg.checks {
			res := chk.fn()
			results[chk.name] = res
			if res.OK {
				continue
			}
			if chk.critical {
				status = "unhealthy"
			} else if status == "healthy" {
				status = "degraded"
			}
		}

		code := http.StatusOK
		if status == "unhealthy" {
			code = http.StatusServiceUnavailable
		}
		c.JSON(code, map[string]any{
			"status":        status,
			"uptimeSeconds": int64(time.Since(started).Seconds()),
			"timestamp":     time.Now().UTC().Format(time.RFC3339),
			"checks":        results,
		})
		c.Abort()
	}
}
