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
	"bufio"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"genesis.dev/genesis/errors"
	"genesis.dev/genesis/middleware/requestid"
	"genesis.dev/genesis/router"
)

func serve(t *testing.T, mw router.HandlerFunc, handler router.HandlerFunc) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	r := router.MustNew()
	r.Use(mw, requestid.New())
	r.GET("/boom", handler)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/boom", nil))
	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return w, body
}

func TestValidationErrorResponse(t *testing.T) {
	analytics := errors.NewAnalytics()
	mw := New(WithSilentConsole(), WithAnalytics(analytics))

	w, body := serve(t, mw, func(c *router.Context) {
		c.Fail(errors.NewValidation("title", "", "title: minimum length 1"))
	})

	require.Equal(t, http.StatusBadRequest, w.Code)
	errObj := body["error"].(map[string]any)
	assert.Equal(t, "ValidationError", errObj["type"])
	assert.Equal(t, "title: minimum length 1", errObj["message"])
	assert.NotEmpty(t, errObj["requestId"])

	validation := body["validation"].(map[string]any)
	assert.Equal(t, "title", validation["field"])
	assert.Equal(t, "", validation["value"])

	assert.Equal(t, 1, analytics.Total())
}

func TestSanitizeRedactsValidationValue(t *testing.T) {
	mw := New(WithSilentConsole(), WithSanitize(), WithAnalytics(errors.NewAnalytics()))

	_, body := serve(t, mw, func(c *router.Context) {
		c.Fail(errors.NewValidation("password", "hunter2", "too short"))
	})

	validation := body["validation"].(map[string]any)
	assert.Equal(t, "[REDACTED]", validation["value"])
}

func TestRateLimitSetsRetryAfter(t *testing.T) {
	mw := New(WithSilentConsole(), WithAnalytics(errors.NewAnalytics()))

	w, body := serve(t, mw, func(c *router.Context) {
		c.Fail(errors.NewRateLimit(60))
	})

	require.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, "60", w.Header().Get("Retry-After"))
	assert.Equal(t, float64(60), body["retryAfter"])
}

func TestPanicBecomesSanitized500(t *testing.T) {
	mw := New(WithSilentConsole(), WithSanitize(), WithAnalytics(errors.NewAnalytics()))

	w, body := serve(t, mw, func(c *router.Context) {
		panic("nil map write somewhere deep")
	})

	require.Equal(t, http.StatusInternalServerError, w.Code)
	errObj := body["error"].(map[string]any)
	assert.Equal(t, "Internal server error", errObj["message"])
	assert.Equal(t, "UnknownError", errObj["type"])
	assert.NotContains(t, w.Body.String(), "nil map write")
}

func TestCustomMessageOverride(t *testing.T) {
	mw := New(
		WithSilentConsole(),
		WithAnalytics(errors.NewAnalytics()),
		WithCustomMessages(map[string]string{"NotFound": "nothing to see here"}),
	)

	_, body := serve(t, mw, func(c *router.Context) {
		c.Fail(errors.NewNotFound("user"))
	})

	errObj := body["error"].(map[string]any)
	assert.Equal(t, "nothing to see here", errObj["message"])
}

func TestFileLoggingWritesJSONL(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "requests.log")
	mw := New(WithSilentConsole(), WithFileLogging(path), WithAnalytics(errors.NewAnalytics()))

	serve(t, mw, func(c *router.Context) {
		c.Fail(errors.NewAuthentication())
	})

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	scanner := bufio.NewScanner(f)
	require.True(t, scanner.Scan())
	var record map[string]any
	require.NoError(t, json.Unmarshal(scanner.Bytes(), &record))
	assert.Equal(t, "AuthenticationError", record["type"])
	assert.Equal(t, float64(401), record["status"])
	assert.Contains(t, record, "headers")
}

func TestReporterCalledForServerErrors(t *testing.T) {
	var reported *errors.Error
	mw := New(
		WithSilentConsole(),
		WithAnalytics(errors.NewAnalytics()),
		WithReporter(func(e *errors.Error, requestID string) { reported = e }),
	)

	serve(t, mw, func(c *router.Context) {
		c.Fail(errors.NewDatabase("insert", "INSERT INTO todos ...", nil))
	})

	require.NotNil(t, reported)
	assert.Equal(t, errors.KindDatabase, reported.Kind)
}

func TestReporterNotCalledForClientErrors(t *testing.T) {
	called := false
	mw := New(
		WithSilentConsole(),
		WithAnalytics(errors.NewAnalytics()),
		WithReporter(func(e *errors.Error, requestID string) { called = true }),
	)

	serve(t, mw, func(c *router.Context) {
		c.Fail(errors.NewNotFound("user"))
	})

	assert.False(t, called)
}

func TestRequestInfoIncluded(t *testing.T) {
	mw := New(WithSilentConsole(), WithRequestInfo(), WithAnalytics(errors.NewAnalytics()))

	_, body := serve(t, mw, func(c *router.Context) {
		c.Fail(errors.NewAuthorization("admin only"))
	})

	reqObj := body["request"].(map[string]any)
	assert.Equal(t, "GET", reqObj["method"])
	assert.Equal(t, "/boom", reqObj["path"])
}
