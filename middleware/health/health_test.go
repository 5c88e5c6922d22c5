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

package health

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"genesis.dev/genesis/router"
)

func poll(t *testing.T, mw router.HandlerFunc, path string) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	r := router.MustNew()
	r.Use(mw)
	r.GET("/other", func(c *router.Context) { c.String(http.StatusOK, "other") })
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
	var body map[string]any
	if w.Body.Len() > 0 && w.Header().Get("Content-Type") != "text/plain; charset=utf-8" {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	}
	return w, body
}

func TestHealthyWithNoChecks(t *testing.T) {
	w, body := poll(t, New(), "/health")

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "healthy", body["status"])
	assert.Contains(t, body, "uptimeSeconds")
	assert.Contains(t, body, "timestamp")
}

func TestCriticalCheckFailureIsUnhealthy(t *testing.T) {
	mw := New(WithCheck("database", func() CheckResult {
		return CheckResult{OK: false, Detail: "connection refused"}
	}))

	w, body := poll(t, mw, "/health")

	require.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Equal(t, "unhealthy", body["status"])
	checks := body["checks"].(map[string]any)
	db := checks["database"].(map[string]any)
	assert.Equal(t, false, db["ok"])
	assert.Equal(t, "connection refused", db["detail"])
}

func TestOptionalCheckFailureDegrades(t *testing.T) {
	mw := New(
		WithCheck("database", func() CheckResult { return CheckResult{OK: true} }),
		WithOptionalCheck("cache", func() CheckResult { return CheckResult{OK: false} }),
	)

	w, body := poll(t, mw, "/health")

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "degraded", body["status"])
}

func TestOtherPathsPassThrough(t *testing.T) {
	w, _ := poll(t, New(), "/other")
	assert.Equal(t, "other", w.Body.String())
}

func TestCustomPath(t *testing.T) {
	w, body := poll(t, New(WithPath("/_status")), "/_status")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "healthy", body["status"])
}
