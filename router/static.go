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
	"mime"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"
)

// CachePolicy selects the Cache-Control headers emitted for static assets.
type CachePolicy int

const (
	// CacheNone disables caching; every request revalidates. The development
	// preset.
	CacheNone CachePolicy = iota

	// CacheImmutable marks assets as immutable for a year. Only safe when
	// asset filenames embed a content hash.
	CacheImmutable
)

// extraMimeTypes covers types the platform mime database commonly misses.
var extraMimeTypes = map[string]string{
	".mjs":   "text/javascript; charset=utf-8",
	".wasm":  "application/wasm",
	".woff2": "font/woff2",
	".map":   "application/json; charset=utf-8",
}

// Static serves files below root under the URL prefix. Requests that
// resolve outside root after cleaning are rejected with 403; missing files
// fall through to the standard 404 body.
//
//	r.Static("/assets", "./public", router.CacheImmutable)
func (r *Router) Static(prefix, root string, policy CachePolicy) {
	pattern := strings.TrimSuffix(prefix, "/") + "/*"
	absRoot, err := filepath.Abs(root)
	if err != nil {
		panic(err)
	}
	r.GET(pattern, func(c *Context) {
		rel := path.Clean("/" + c.Param("*"))
		full := filepath.Join(absRoot, filepath.FromSlash(rel))
		if !strings.HasPrefix(full, absRoot+string(filepath.Separator)) && full != absRoot {
			c.JSON(http.StatusForbidden, map[string]any{
				"error": map[string]any{"message": "Forbidden", "type": "AuthorizationError"},
			})
			return
		}

		info, err := os.Stat(full)
		if err != nil || info.IsDir() {
			defaultNotFound(c)
			return
		}

		if ct := contentTypeFor(full); ct != "" {
			c.SetHeader("Content-Type", ct)
		}
		switch policy {
		case CacheImmutable:
			c.SetHeader("Cache-Control", "public, max-age=31536000, immutable")
		default:
			c.SetHeader("Cache-Control", "no-cache")
		}
		c.File(full)
	})
}

func contentTypeFor(name string) string {
	ext := strings.ToLower(filepath.Ext(name))
	if ct, ok := extraMimeTypes[ext]; ok {
		return ct
	}
	return mime.TypeByExtension(ext)
}
