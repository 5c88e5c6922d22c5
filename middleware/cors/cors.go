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

// Package cors implements cross-origin resource sharing. In development the
// allowlist is the wildcard and any origin is echoed back; in production an
// explicit allowlist is required and disallowed origins simply receive no
// CORS headers. Preflight OPTIONS requests short-circuit with 204.
package cors

import (
	"net/http"
	"strconv"
	"strings"

	"genesis.dev/genesis/router"
)

// Option defines functional options for CORS middleware configuration.
type Option func(*config)

type config struct {
	origins     []string
	methods     []string
	headers     []string
	credentials bool
	maxAge      int
}

func defaultConfig() *config {
	return &config{
		origins: []string{"*"},
		methods: []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		headers: []string{"Content-Type", "Authorization", "X-Request-ID"},
		maxAge:  86400,
	}
}

// WithOrigins sets the origin allowlist. ["*"] allows every origin
// (development); production deployments list origins explicitly, typically
// from the ALLOWED_ORIGINS environment variable.
func WithOrigins(origins ...string) Option {
	return func(c *config) { c.origins = origins }
}

// WithMethods sets the methods advertised on preflight responses.
func WithMethods(methods ...string) Option {
	return func(c *config) { c.methods = methods }
}

// WithHeaders sets the request headers advertised on preflight responses.
func WithHeaders(headers ...string) Option {
	return func(c *config) { c.headers = headers }
}

// WithCredentials allows cookies and authorization headers cross-origin.
// With credentials enabled the wildcard origin is echoed, never sent as "*".
func WithCredentials() Option {
	return func(c *config) { c.credentials = true }
}

// WithMaxAge sets how long browsers may cache preflight results, in seconds.
func WithMaxAge(seconds int) Option {
	return func(c *config) { c.maxAge = seconds }
}

// New returns the CORS middleware.
//
// Development (any origin):
//
//	r.Use(cors.New())
//
// Production:
//
//	r.Use(cors.New(cors.WithOrigins("https://app.example.com")))
func New(opts ...Option) router.HandlerFunc {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(cfg)
	}
	wildcard := len(cfg.origins) == 1 && cfg.origins[0] == "*"
	methods := strings.Join(cfg.methods, ", ")
	headers := strings.Join(cfg.headers, ", ")

	return func(c *router.Context) {
		origin := c.Request.Header.Get("Origin")
		c.AddHeader("Vary", "Origin")

		allowed := ""
		switch {
		case origin == "":
			// Same-origin or non-browser request; nothing to allow.
		case wildcard && cfg.credentials:
			allowed = origin
		case wildcard:
			allowed = "*"
		default:
			for _, o := range cfg.origins {
				if strings.EqualFold(o, origin) {
					allowed = origin
					break
				}
			}
		}

		if allowed != "" {
			c.SetHeader("Access-Control-Allow-Origin", allowed)
			if cfg.credentials {
				c.SetHeader("Access-Control-Allow-Credentials", "true")
			}
		}

		// Only a preflight carries both markers. A plain OPTIONS request
		// stays routable.
		preflight := c.Request.Method == http.MethodOptions &&
			origin != "" &&
			c.Request.Header.Get("Access-Control-Request-Method") != ""
		if preflight {
			if allowed != "" {
				c.SetHeader("Access-Control-Allow-Methods", methods)
				c.SetHeader("Access-Control-Allow-Headers", headers)
				c.SetHeader("Access-Control-Max-Age", strconv.Itoa(cfg.maxAge))
			}
			c.Commit(http.StatusNoContent, nil)
			c.Abort()
			return
		}

		c.Next()
	}
}
