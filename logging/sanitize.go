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
	"reflect"
	"strings"
)

// hiddenPlaceholder replaces values that must not appear in logs.
const hiddenPlaceholder = "[HIDDEN]"

// maxHeaderValueLength truncates non-sensitive header values in logs.
const maxHeaderValueLength = 200

// maxSanitizeDepth bounds object-sanitizer recursion. Cyclic inputs are not
// permitted; the depth limit is the guard.
const maxSanitizeDepth = 3

// sensitiveHeaders is the fixed set of header names whose values are masked.
var sensitiveHeaders = map[string]struct{}{
	"authorization":       {},
	"cookie":              {},
	"set-cookie":          {},
	"x-api-key":           {},
	"x-auth-token":        {},
	"x-access-token":      {},
	"proxy-authorization": {},
	"www-authenticate":    {},
}

// sensitiveKeySubstrings triggers masking in SanitizeValue when a map key
// contains any of them (case-insensitive).
var sensitiveKeySubstrings = []string{"password", "token", "secret", "key", "auth"}

// SanitizeHeaders returns a loggable copy of h: keys lowercased, sensitive
// values masked, everything else truncated to 200 characters. Multi-valued
// headers are joined with ", ".
func SanitizeHeaders(h http.Header) map[string]string {
	out := make(map[string]string, len(h))
	for name, values := range h {
		key := strings.ToLower(name)
		value := strings.Join(values, ", ")
		if _, sensitive := sensitiveHeaders[key]; sensitive {
			out[key] = maskSecret(value)
			continue
		}
		if len(value) > maxHeaderValueLength {
			value = value[:maxHeaderValueLength]
		}
		out[key] = value
	}
	return out
}

// maskSecret hides a secret value: fully when short, otherwise revealing only
// the first and last four characters.
func maskSecret(v string) string {
	if len(v) <= 10 {
		return hiddenPlaceholder
	}
	return v[:4] + "..." + v[len(v)-4:]
}

// SanitizeValue recursively walks v up to the depth limit, replacing any
// map value whose key contains a sensitive substring with "[HIDDEN]".
// Maps and slices are copied; other values pass through unchanged.
func SanitizeValue(v any) any {
	return sanitizeValue(v, 0)
}

func sanitizeValue(v any, depth int) any {
	if depth >= maxSanitizeDepth {
		return v
	}
	switch val := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(val))
		for k, inner := range val {
			if isSensitiveKey(k) {
				out[k] = hiddenPlaceholder
				continue
			}
			out[k] = sanitizeValue(inner, depth+1)
		}
		return out
	case map[string]string:
		out := make(map[string]string, len(val))
		for k, inner := range val {
			if isSensitiveKey(k) {
				out[k] = hiddenPlaceholder
				continue
			}
			out[k] = inner
		}
		return out
	case []any:
		out := make([]any, len(val))
		for i, inner := range val {
			out[i] = sanitizeValue(inner, depth+1)
		}
		return out
	}
	// Generic maps via reflection; anything else passes through.
	rv := reflect.ValueOf(v)
	if rv.Kind() == reflect.Map && rv.Type().Key().Kind() == reflect.String {
		out := make(map[string]any, rv.Len())
		for _, k := range rv.MapKeys() {
			key := k.String()
			if isSensitiveKey(key) {
				out[key] = hiddenPlaceholder
				continue
			}
			out[key] = sanitizeValue(rv.MapIndex(k).Interface(), depth+1)
		}
		return out
	}
	return v
}

func isSensitiveKey(k string) bool {
	lower := strings.ToLower(k)
	for _, sub := range sensitiveKeySubstrings {
		if strings.Contains(lower, sub) {
			return true
		}
	}
	return false
}
