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
	"bytes"
	"context"
	"encoding/json"
	"net"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func perform(t *testing.T, r *Router, method, target string) *httptest.ResponseRecorder {
	t.Helper()
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(method, target, nil))
	return w
}

func TestOnionOrder(t *testing.T) {
	var trace []string
	r := MustNew()
	r.Use(func(c *Context) {
		trace = append(trace, "a-in")
		c.Next()
		trace = append(trace, "a-out")
	})
	r.Use(func(c *Context) {
		trace = append(trace, "b-in")
		c.Next()
		trace = append(trace, "b-out")
	})
	r.GET("/", func(c *Context) {
		trace = append(trace, "handler")
		c.String(http.StatusOK, "ok")
	})

	perform(t, r, http.MethodGet, "/")

	assert.Equal(t, []string{"a-in", "b-in", "handler", "b-out", "a-out"}, trace)
}

func TestNextCalledTwiceFailsLoudly(t *testing.T) {
	r := MustNew()
	r.Use(func(c *Context) {
		c.Next()
		c.Next()
	})
	r.GET("/", func(c *Context) { c.String(http.StatusOK, "ok") })

	w := perform(t, r, http.MethodGet, "/")

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, w.Body.String(), "UnknownError")
}

func TestUntouchedResponseIs204(t *testing.T) {
	r := MustNew()
	r.GET("/noop", func(c *Context) {})

	w := perform(t, r, http.MethodGet, "/noop")

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Empty(t, w.Body.String())
}

func TestStatusOnlyIsEmitted(t *testing.T) {
	r := MustNew()
	r.GET("/accepted", func(c *Context) { c.Status(http.StatusAccepted) })

	w := perform(t, r, http.MethodGet, "/accepted")

	assert.Equal(t, http.StatusAccepted, w.Code)
}

func TestJSONRender(t *testing.T) {
	r := MustNew()
	r.GET("/todos/:id", func(c *Context) {
		c.JSON(http.StatusOK, map[string]string{"id": c.Param("id")})
	})

	w := perform(t, r, http.MethodGet, "/todos/42")

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/json; charset=utf-8", w.Header().Get("Content-Type"))
	var body map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "42", body["id"])
}

func TestFirstRegisteredRouteWins(t *testing.T) {
	r := MustNew()
	r.GET("/items/:id", func(c *Context) { c.String(http.StatusOK, "param") })
	r.GET("/items/special", func(c *Context) { c.String(http.StatusOK, "static") })

	w := perform(t, r, http.MethodGet, "/items/special")

	assert.Equal(t, "param", w.Body.String())
}

func TestWildcardCapturesTail(t *testing.T) {
	r := MustNew()
	r.GET("/files/*", func(c *Context) { c.String(http.StatusOK, c.Param("*")) })

	w := perform(t, r, http.MethodGet, "/files/css/site.css")

	assert.Equal(t, "css/site.css", w.Body.String())
}

func TestMethodMismatchIs404(t *testing.T) {
	r := MustNew()
	r.GET("/only-get", func(c *Context) { c.String(http.StatusOK, "ok") })

	w := perform(t, r, http.MethodPost, "/only-get")

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestNotFoundBody(t *testing.T) {
	r := MustNew()

	w := perform(t, r, http.MethodGet, "/missing")

	require.Equal(t, http.StatusNotFound, w.Code)
	var body map[string]map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "NotFound", body["error"]["type"])
	assert.Equal(t, "Route GET /missing not found", body["error"]["message"])
}

func TestNotFoundRunsGlobalMiddleware(t *testing.T) {
	r := MustNew()
	r.Use(func(c *Context) {
		c.SetHeader("X-Chain", "ran")
		c.Next()
	})

	w := perform(t, r, http.MethodGet, "/missing")

	assert.Equal(t, "ran", w.Header().Get("X-Chain"))
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestAbortStopsChain(t *testing.T) {
	var handlerRan bool
	r := MustNew()
	r.Use(func(c *Context) {
		c.JSON(http.StatusUnauthorized, map[string]string{"message": "denied"})
		c.Abort()
		c.Next() // aborted; must not dispatch
	})
	r.GET("/", func(c *Context) { handlerRan = true })

	w := perform(t, r, http.MethodGet, "/")

	assert.False(t, handlerRan)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestPanicRecoveredAtRoot(t *testing.T) {
	r := MustNew()
	r.GET("/boom", func(c *Context) { panic("kaboom") })

	w := perform(t, r, http.MethodGet, "/boom")

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, w.Body.String(), "Internal server error")
}

func TestClientIP(t *testing.T) {
	r := MustNew()
	var got string
	r.GET("/", func(c *Context) {
		got = c.ClientIP()
		c.Status(http.StatusOK)
		c.Commit(http.StatusOK, nil)
	})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Forwarded-For", "203.0.113.7, 10.0.0.1")
	r.ServeHTTP(httptest.NewRecorder(), req)

	assert.Equal(t, "203.0.113.7", got)
}

func TestServeEmitsReadyToken(t *testing.T) {
	var ready bytes.Buffer
	r := MustNew(WithReadyWriter(&ready), WithShutdownTimeout(time.Second))
	r.GET("/ping", func(c *Context) { c.String(http.StatusOK, "pong") })

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	done := make(chan error, 1)
	go func() { done <- r.ServeListener(ln) }()

	require.Eventually(t, func() bool {
		return strings.Contains(ready.String(), ReadyToken)
	}, 2*time.Second, 10*time.Millisecond)

	resp, err := http.Get("http://" + ln.Addr().String() + "/ping")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	require.NoError(t, r.Shutdown(context.Background()))
	require.NoError(t, <-done)
}

func TestStaticTraversalGuard(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "app.js"), []byte("console.log(1)"), 0o644))

	r := MustNew()
	r.Static("/assets", dir, CacheNone)

	w := perform(t, r, http.MethodGet, "/assets/app.js")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "no-cache", w.Header().Get("Cache-Control"))
	assert.Contains(t, w.Header().Get("Content-Type"), "javascript")

	w = perform(t, r, http.MethodGet, "/assets/../secret.txt")
	assert.NotEqual(t, http.StatusOK, w.Code)
}

func TestStaticImmutablePolicy(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "site.abc123.css"), []byte("body{}"), 0o644))

	r := MustNew()
	r.Static("/static", dir, CacheImmutable)

	w := perform(t, r, http.MethodGet, "/static/site.abc123.css")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "public, max-age=31536000, immutable", w.Header().Get("Cache-Control"))
}
