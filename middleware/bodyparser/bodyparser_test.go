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

package bodyparser

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"genesis.dev/genesis/errors"
	"genesis.dev/genesis/middleware/errorhandler"
	"genesis.dev/genesis/router"
)

func TestParsesJSONIntoState(t *testing.T) {
	r := router.MustNew()
	r.Use(New())
	var body any
	r.POST("/", func(c *router.Context) {
		body, _ = Body(c)
		c.Status(http.StatusCreated)
		c.Commit(http.StatusCreated, nil)
	})

	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"title":"buy milk"}`))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(httptest.NewRecorder(), req)

	obj, ok := body.(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "buy milk", obj["title"])
}

func TestParseFailureBecomes400(t *testing.T) {
	r := router.MustNew()
	r.Use(errorhandler.New(
		errorhandler.WithSilentConsole(),
		errorhandler.WithAnalytics(errors.NewAnalytics()),
	))
	r.Use(New())
	handlerRan := false
	r.POST("/", func(c *router.Context) { handlerRan = true })

	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"broken`))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.False(t, handlerRan)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "ValidationError")
}

func TestUnknownContentTypePassesThrough(t *testing.T) {
	r := router.MustNew()
	r.Use(New())
	var present bool
	r.POST("/", func(c *router.Context) {
		_, present = Body(c)
		c.String(http.StatusOK, "ok")
	})

	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader("raw"))
	req.Header.Set("Content-Type", "application/octet-stream")
	r.ServeHTTP(httptest.NewRecorder(), req)

	assert.False(t, present)
}
