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

package logging

import (
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSanitizeHeadersMasksSensitive(t *testing.T) {
	h := http.Header{}
	h.Set("Authorization", "Bearer abcdef1234567890")
	h.Set("Cookie", "short")
	h.Set("Content-Type", "application/json")

	out := SanitizeHeaders(h)

	// Long secrets reveal only first4...last4.
	assert.Equal(t, "Bear...7890", out["authorization"])
	// Short secrets are fully hidden.
	assert.Equal(t, "[HIDDEN]", out["cookie"])
	// Non-sensitive headers pass through under lowercase keys.
	assert.Equal(t, "application/json", out["content-type"])
	_, upper := out["Authorization"]
	assert.False(t, upper)
}

func TestSanitizeHeadersBoundary(t *testing.T) {
	h := http.Header{}
	h.Set("X-Api-Key", strings.Repeat("a", 10))
	h.Set("X-Auth-Token", strings.Repeat("b", 11))

	out := SanitizeHeaders(h)
	assert.Equal(t, "[HIDDEN]", out["x-api-key"])
	assert.Equal(t, "bbbb...bbbb", out["x-auth-token"])
}

func TestSanitizeHeadersTruncates(t *testing.T) {
	h := http.Header{}
	h.Set("User-Agent", strings.Repeat("x", 300))

	out := SanitizeHeaders(h)
	assert.Len(t, out["user-agent"], maxHeaderValueLength)
}

func TestSanitizeValueHidesSensitiveKeys(t *testing.T) {
	in := map[string]any{
		"username":  "alice",
		"password":  "hunter2",
		"apiKey":    "xyz",
		"AuthToken": "abc",
		"nested": map[string]any{
			"clientSecret": "shh",
			"plain":        1,
		},
	}

	out, ok := SanitizeValue(in).(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "alice", out["username"])
	assert.Equal(t, "[HIDDEN]", out["password"])
	assert.Equal(t, "[HIDDEN]", out["apiKey"])
	assert.Equal(t, "[HIDDEN]", out["AuthToken"])

	nested := out["nested"].(map[string]any)
	assert.Equal(t, "[HIDDEN]", nested["clientSecret"])
	assert.Equal(t, 1, nested["plain"])
}

func TestSanitizeValueDepthLimit(t *testing.T) {
	deep := map[string]any{
		"l1": map[string]any{
			"l2": map[string]any{
				"l3": map[string]any{
					"password": "visible-past-depth",
				},
			},
		},
	}

	out := SanitizeValue(deep).(map[string]any)
	l3 := out["l1"].(map[string]any)["l2"].(map[string]any)["l3"].(map[string]any)
	// Depth guard stops the walk; values past it are returned as-is.
	assert.Equal(t, "visible-past-depth", l3["password"])
}

func TestSanitizeValueSlices(t *testing.T) {
	in := []any{map[string]any{"token": "t"}, "plain"}
	out := SanitizeValue(in).([]any)
	assert.Equal(t, "[HIDDEN]", out[0].(map[string]any)["token"])
	assert.Equal(t, "plain", out[1])
}
