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

package binding

import (
	"encoding/json"
	"io"
	"mime"
	"net/http"
	"net/url"
	"strings"

	"genesis.dev/genesis/errors"
)

// MaxBodyBytes caps how much of a request body any parser reads.
const MaxBodyBytes = 10 << 20 // 10 MiB

// Parse inspects the request Content-Type and returns the parsed body:
// map[string]any or []any for JSON, map[string]string for forms, []Part for
// multipart, string for text. A nil, nil return means the content type is
// not one binding understands (callers pass through).
func Parse(r *http.Request) (any, error) {
	ct := r.Header.Get("Content-Type")
	if ct == "" {
		return nil, nil
	}
	mediaType, _, err := mime.ParseMediaType(ct)
	if err != nil {
		return nil, errors.NewValidation("body", ct, "malformed Content-Type header")
	}
	switch {
	case mediaType == "application/json" || strings.HasSuffix(mediaType, "+json"):
		return ParseJSON(r.Body)
	case mediaType == "application/x-www-form-urlencoded":
		return ParseForm(r.Body)
	case mediaType == "multipart/form-data":
		return ParseMultipart(r)
	case strings.HasPrefix(mediaType, "text/"):
		return ParseText(r.Body)
	}
	return nil, nil
}

// ParseJSON decodes a JSON object or array. Scalars at the top level are
// rejected; handlers expect structured bodies.
func ParseJSON(r io.Reader) (any, error) {
	data, err := readAll(r)
	if err != nil {
		return nil, err
	}
	dec := json.NewDecoder(strings.NewReader(string(data)))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, errors.NewValidation("body", truncate(data), "invalid JSON")
	}
	switch v.(type) {
	case map[string]any, []any:
		return v, nil
	default:
		return nil, errors.NewValidation("body", truncate(data), "JSON body must be an object or array")
	}
}

// ParseForm decodes a URL-encoded form into a flat string mapping. Repeated
// keys keep the first value.
func ParseForm(r io.Reader) (map[string]string, error) {
	data, err := readAll(r)
	if err != nil {
		return nil, err
	}
	values, err := url.ParseQuery(string(data))
	if err != nil {
		return nil, errors.NewValidation("body", truncate(data), "invalid form encoding")
	}
	form := make(map[string]string, len(values))
	for k, vs := range values {
		if len(vs) > 0 {
			form[k] = vs[0]
		}
	}
	return form, nil
}

// ParseText reads the body as a plain string.
func ParseText(r io.Reader) (string, error) {
	data, err := readAll(r)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

func readAll(r io.Reader) ([]byte, error) {
	data, err := io.ReadAll(io.LimitReader(r, MaxBodyBytes+1))
	if err != nil {
		return nil, errors.NewValidation("body", nil, "failed to read request body")
	}
	if len(data) > MaxBodyBytes {
		return nil, errors.NewValidation("body", nil, "request body too large")
	}
	return data, nil
}

func truncate(data []byte) string {
	const max = 200
	if len(data) > max {
		return string(data[:max]) + "..."
	}
	return string(data)
}
