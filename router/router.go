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

package router

import (
	"fmt"
	"net/http"
	"strings"
	"sync"
)

// route is one registered method+pattern entry. Patterns use :name for
// single-segment parameters and a trailing * for a wildcard tail.
type route struct {
	method   string
	pattern  string
	segments []string
	wildcard bool
	handler  HandlerFunc
}

// Router dispatches requests through the global middleware chain to the
// first registered route whose method and pattern match.
//
// Example:
//
//	r := router.MustNew(router.WithLogger(logger))
//	r.Use(requestid.New(), errorhandler.Development())
//	r.GET("/users/:id", getUser)
//	r.Serve(":9000")
type Router struct {
	config     *config
	middleware []HandlerFunc
	routes     []route
	notFound   HandlerFunc

	mu     sync.Mutex
	server *http.Server // set once Serve starts
}

// New creates a router configured with the given options.
func New(opts ...Option) (*Router, error) {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(cfg)
	}
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("invalid router configuration: %w", err)
	}
	return &Router{config: cfg, notFound: defaultNotFound}, nil
}

// MustNew is like New but panics on configuration errors.
// Suitable for main() wiring where a bad option is fatal anyway.
func MustNew(opts ...Option) *Router {
	r, err := New(opts...)
	if err != nil {
		panic(err)
	}
	return r
}

// Use appends global middleware. Middleware registered after routes still
// applies to them; the chain is assembled per request.
func (r *Router) Use(middleware ...HandlerFunc) {
	r.middleware = append(r.middleware, middleware...)
}

// GET registers a handler for GET requests matching pattern.
func (r *Router) GET(pattern string, handler HandlerFunc) { r.Handle(http.MethodGet, pattern, handler) }

// POST registers a handler for POST requests matching pattern.
func (r *Router) POST(pattern string, handler HandlerFunc) {
	r.Handle(http.MethodPost, pattern, handler)
}

// PUT registers a handler for PUT requests matching pattern.
func (r *Router) PUT(pattern string, handler HandlerFunc) { r.Handle(http.MethodPut, pattern, handler) }

// PATCH registers a handler for PATCH requests matching pattern.
func (r *Router) PATCH(pattern string, handler HandlerFunc) {
	r.Handle(http.MethodPatch, pattern, handler)
}

// DELETE registers a handler for DELETE requests matching pattern.
func (r *Router) DELETE(pattern string, handler HandlerFunc) {
	r.Handle(http.MethodDelete, pattern, handler)
}

// HEAD registers a handler for HEAD requests matching pattern.
func (r *Router) HEAD(pattern string, handler HandlerFunc) {
	r.Handle(http.MethodHead, pattern, handler)
}

// OPTIONS registers a handler for OPTIONS requests matching pattern.
func (r *Router) OPTIONS(pattern string, handler HandlerFunc) {
	r.Handle(http.MethodOptions, pattern, handler)
}

// Handle registers a handler for the given method and pattern. Routes are
// matched in registration order; the first match wins, with no precedence
// between static and parameter segments.
func (r *Router) Handle(method, pattern string, handler HandlerFunc) {
	if pattern == "" {
		panic(ErrEmptyPattern)
	}
	if pattern[0] != '/' {
		panic(fmt.Errorf("route pattern %q must start with '/'", pattern))
	}
	rt := route{
		method:  method,
		pattern: pattern,
		handler: handler,
	}
	trimmed := strings.Trim(pattern, "/")
	if trimmed != "" {
		rt.segments = strings.Split(trimmed, "/")
	}
	if n := len(rt.segments); n > 0 && rt.segments[n-1] == "*" {
		rt.wildcard = true
		rt.segments = rt.segments[:n-1]
	}
	r.routes = append(r.routes, rt)
}

// NotFound replaces the default 404 handler. The global middleware chain
// still runs in front of it.
func (r *Router) NotFound(handler HandlerFunc) {
	r.notFound = handler
}

// defaultNotFound stages the standard JSON 404 body.
func defaultNotFound(c *Context) {
	c.JSON(http.StatusNotFound, map[string]any{
		"error": map[string]any{
			"message": fmt.Sprintf("Route %s %s not found", c.Request.Method, c.Request.URL.Path),
			"type":    "NotFound",
		},
	})
}

// match tests path against rt, filling params on success. A wildcard route
// matches any remaining tail, including an empty one.
func (rt *route) match(path string, params map[string]string) bool {
	trimmed := strings.Trim(path, "/")
	var segs []string
	if trimmed != "" {
		segs = strings.Split(trimmed, "/")
	}
	if rt.wildcard {
		if len(segs) < len(rt.segments) {
			return false
		}
	} else if len(segs) != len(rt.segments) {
		return false
	}
	for i, ps := range rt.segments {
		if len(ps) > 0 && ps[0] == ':' {
			if segs[i] == "" {
				return false
			}
			params[ps[1:]] = segs[i]
			continue
		}
		if ps != segs[i] {
			return false
		}
	}
	if rt.wildcard {
		params["*"] = strings.Join(segs[len(rt.segments):], "/")
	}
	return true
}

// ServeHTTP implements http.Handler. Every request, matched or not, runs
// the full global middleware chain; unmatched requests terminate in the
// not-found handler so request IDs, logging and error handling still apply.
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	c := NewContext(w, req)
	c.router = r

	final := r.notFound
	for i := range r.routes {
		rt := &r.routes[i]
		if rt.method != req.Method {
			continue
		}
		if rt.match(req.URL.Path, c.Params) {
			final = rt.handler
			c.pattern = rt.pattern
			break
		}
		clear(c.Params)
	}

	c.handlers = make([]HandlerFunc, 0, len(r.middleware)+1)
	c.handlers = append(c.handlers, r.middleware...)
	c.handlers = append(c.handlers, final)

	r.dispatch(c)
	c.Finalize(nil)
}

// dispatch runs the chain with a last-resort recovery for panics that no
// error-handler middleware caught (or that escaped the chain entirely).
func (r *Router) dispatch(c *Context) {
	defer func() {
		if rec := recover(); rec != nil {
			if r.config.logger != nil {
				r.config.logger.Error("unhandled panic in handler chain",
					"method", c.Request.Method,
					"path", c.Request.URL.Path,
					"panic", fmt.Sprint(rec),
				)
			}
			if !c.Written() {
				c.JSON(http.StatusInternalServerError, map[string]any{
					"error": map[string]any{
						"message": "Internal server error",
						"type":    "UnknownError",
					},
				})
			}
		}
	}()
	c.Next()
}
