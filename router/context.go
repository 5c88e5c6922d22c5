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
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// HandlerFunc defines the handler function signature for route handlers and
// middleware. Middleware calls c.Next() to continue the chain; handlers
// usually stage a response and return.
type HandlerFunc func(*Context)

// StateKeyRequestID is the conventional state key under which the request-id
// middleware stores the request ID.
const StateKeyRequestID = "requestId"

// staged is the response under construction. Headers are staged natively by
// net/http (nothing is sent before the first write), so only status, status
// text and body live here.
type staged struct {
	status     int
	statusText string
	body       []byte
	bodyReader io.Reader
	committed  bool
}

// Context represents the context of the current HTTP request: the inbound
// request, captured route parameters, a free-form state map for middleware,
// the staged response, and the machinery that drives the middleware chain.
//
// ⚠️ THREAD SAFETY: Context is NOT thread-safe. A Context is bound to a
// single request and must only be touched by the goroutine handling it.
// Copy what you need before starting goroutines.
type Context struct {
	Request  *http.Request
	Response http.ResponseWriter // the wrapped writer; Header() stages headers
	Params   map[string]string

	writer   *responseWriter
	router   *Router
	handlers []HandlerFunc
	pattern  string

	// Chain cursor. frame is the index of the handler currently executing
	// (-1 at the root); dispatched is the deepest index handed a turn so
	// far. A middleware whose Next would dispatch an index at or below
	// dispatched has already called Next once.
	frame      int32
	dispatched int32
	aborted    bool

	staged staged
	state  map[string]any
	errs   []error
}

// NewContext creates a context outside the normal request flow.
// Primarily useful for testing middleware in isolation.
func NewContext(w http.ResponseWriter, r *http.Request) *Context {
	rw := &responseWriter{ResponseWriter: w}
	return &Context{
		Request:    r,
		Response:   rw,
		writer:     rw,
		Params:     map[string]string{},
		frame:      -1,
		dispatched: -1,
		staged:     staged{status: http.StatusOK},
	}
}

// Next executes the next handler in the middleware chain. Each middleware
// may call Next at most once per request; a second call panics with
// ErrNextCalledTwice, which the error-handler middleware maps to a 500.
//
// Because dispatch is recursive, middleware code after Next runs in reverse
// registration order (onion pattern):
//
//	func Trace(c *router.Context) {
//	    log.Print("in")
//	    c.Next()
//	    log.Print("out")
//	}
func (c *Context) Next() {
	if c.aborted {
		return
	}
	next := c.frame + 1
	if next <= c.dispatched {
		panic(ErrNextCalledTwice)
	}
	c.dispatched = next
	if next >= int32(len(c.handlers)) {
		return
	}
	prev := c.frame
	c.frame = next
	c.handlers[next](c)
	c.frame = prev
}

// Abort stops the handler chain from executing any further handlers.
// Handlers already on the stack still unwind normally.
func (c *Context) Abort() {
	c.aborted = true
}

// IsAborted returns true if the handler chain has been aborted.
func (c *Context) IsAborted() bool {
	return c.aborted
}

// Error collects an error for the error-handler middleware to process.
func (c *Context) Error(err error) {
	c.errs = append(c.errs, err)
}

// Fail collects an error and aborts the chain. Typical handler usage:
//
//	c.Fail(errors.NewRateLimit(60))
func (c *Context) Fail(err error) {
	c.Error(err)
	c.Abort()
}

// Errors returns the errors collected so far.
func (c *Context) Errors() []error {
	return c.errs
}

// Param returns the value of the URL parameter by key, or "".
func (c *Context) Param(key string) string {
	return c.Params[key]
}

// Query returns the first query value for key, or "".
func (c *Context) Query(key string) string {
	return c.Request.URL.Query().Get(key)
}

// Pattern returns the matched route pattern (e.g. "/todos/:id"), or "" for
// unmatched requests.
func (c *Context) Pattern() string {
	return c.pattern
}

// Set stores a value in the request-scoped state map.
func (c *Context) Set(key string, value any) {
	if c.state == nil {
		c.state = make(map[string]any, 4)
	}
	c.state[key] = value
}

// Get retrieves a value from the state map.
func (c *Context) Get(key string) (any, bool) {
	v, ok := c.state[key]
	return v, ok
}

// GetString retrieves a string from the state map, or "".
func (c *Context) GetString(key string) string {
	if v, ok := c.state[key]; ok {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}

// RequestID returns the request ID set by the request-id middleware, or "".
func (c *Context) RequestID() string {
	return c.GetString(StateKeyRequestID)
}

// ClientIP resolves the client address: the first X-Forwarded-For entry,
// then X-Real-IP, then the connection's remote address.
func (c *Context) ClientIP() string {
	if fwd := c.Request.Header.Get("X-Forwarded-For"); fwd != "" {
		if idx := strings.IndexByte(fwd, ','); idx >= 0 {
			fwd = fwd[:idx]
		}
		return strings.TrimSpace(fwd)
	}
	if real := c.Request.Header.Get("X-Real-IP"); real != "" {
		return strings.TrimSpace(real)
	}
	host := c.Request.RemoteAddr
	if idx := strings.LastIndexByte(host, ':'); idx >= 0 {
		host = host[:idx]
	}
	return host
}

// Status stages a response status without committing.
func (c *Context) Status(code int) {
	c.staged.status = code
}

// StatusText stages a custom reason phrase. It participates in the finalize
// decision but is not written on the wire (net/http always uses the standard
// phrase).
func (c *Context) StatusText(text string) {
	c.staged.statusText = text
}

// SetHeader sets a staged response header, replacing existing values.
func (c *Context) SetHeader(key, value string) {
	c.Response.Header().Set(key, value)
}

// AddHeader appends a staged response header value.
func (c *Context) AddHeader(key, value string) {
	c.Response.Header().Add(key, value)
}

// Commit stages status and body and marks the response committed.
// committed is monotonic: once true it never goes back.
func (c *Context) Commit(status int, body []byte) {
	if status != 0 {
		c.staged.status = status
	}
	c.staged.body = body
	c.staged.bodyReader = nil
	c.staged.committed = true
}

// Committed reports whether the staged response has been committed.
func (c *Context) Committed() bool {
	return c.staged.committed
}

// StagedStatus returns the currently staged status code.
func (c *Context) StagedStatus() int {
	return c.staged.status
}

// JSON stages a JSON response with the given status code.
func (c *Context) JSON(status int, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		c.Error(fmt.Errorf("render json: %w", err))
		c.SetHeader("Content-Type", "application/json; charset=utf-8")
		c.Commit(http.StatusInternalServerError, []byte(`{"error":{"message":"Internal server error","type":"UnknownError"}}`))
		return
	}
	c.SetHeader("Content-Type", "application/json; charset=utf-8")
	c.Commit(status, data)
}

// YAML stages a YAML response with the given status code.
func (c *Context) YAML(status int, v any) {
	data, err := yaml.Marshal(v)
	if err != nil {
		c.Error(fmt.Errorf("render yaml: %w", err))
		c.Commit(http.StatusInternalServerError, nil)
		return
	}
	c.SetHeader("Content-Type", "application/yaml; charset=utf-8")
	c.Commit(status, data)
}

// String stages a plain-text response.
func (c *Context) String(status int, format string, args ...any) {
	c.SetHeader("Content-Type", "text/plain; charset=utf-8")
	c.Commit(status, fmt.Appendf(nil, format, args...))
}

// Data stages a raw response with an explicit content type.
func (c *Context) Data(status int, contentType string, body []byte) {
	if contentType != "" {
		c.SetHeader("Content-Type", contentType)
	}
	c.Commit(status, body)
}

// Stream stages a response body read from r at finalize time.
func (c *Context) Stream(status int, contentType string, r io.Reader) {
	if contentType != "" {
		c.SetHeader("Content-Type", contentType)
	}
	c.staged.status = status
	c.staged.body = nil
	c.staged.bodyReader = r
	c.staged.committed = true
}

// File writes the named file directly to the response, bypassing staging.
// Range requests are honored by http.ServeFile.
func (c *Context) File(path string) {
	if _, err := os.Stat(path); err != nil {
		c.JSON(http.StatusNotFound, map[string]any{
			"error": map[string]any{"message": "file not found", "type": "NotFound"},
		})
		return
	}
	http.ServeFile(c.writer, c.Request, path)
}

// Written reports whether response bytes have already reached the client.
func (c *Context) Written() bool {
	return c.writer.Written()
}

// Finalize emits the staged response. It writes the staged state when any of
// {committed, headers present, body set, status != 200, status text set}
// holds; otherwise it runs fallback when given; otherwise 204 No Content.
// Finalize is a no-op when the response has already been written.
func (c *Context) Finalize(fallback HandlerFunc) {
	if c.writer.Written() {
		return
	}
	s := &c.staged
	if s.committed || len(c.Response.Header()) > 0 || s.body != nil || s.bodyReader != nil ||
		s.status != http.StatusOK || s.statusText != "" {
		c.writer.WriteHeader(s.status)
		switch {
		case s.body != nil:
			c.writer.Write(s.body) //nolint:errcheck // client gone; nothing to do
		case s.bodyReader != nil:
			io.Copy(c.writer, s.bodyReader) //nolint:errcheck // same
		}
		return
	}
	if fallback != nil {
		fallback(c)
		c.Finalize(nil)
		return
	}
	c.writer.WriteHeader(http.StatusNoContent)
}
