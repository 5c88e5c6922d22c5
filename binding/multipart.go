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
	"net/http"

	"genesis.dev/genesis/errors"
)

// Part is one decoded section of a multipart body. Filename is empty for
// plain form fields.
type Part struct {
	Name        string
	Filename    string
	ContentType string
	Data        []byte
}

// ParseMultipart decodes a multipart/form-data body into its parts, form
// fields and file uploads alike, preserving order within each group.
func ParseMultipart(r *http.Request) ([]Part, error) {
	if err := r.ParseMultipartForm(MaxBodyBytes); err != nil {
		return nil, errors.NewValidation("body", nil, "invalid multipart body")
	}
	form := r.MultipartForm
	if form == nil {
		return nil, errors.NewValidation("body", nil, "empty multipart body")
	}

	var parts []Part
	for name, values := range form.Value {
		for _, v := range values {
			parts = append(parts, Part{Name: name, Data: []byte(v)})
		}
	}
	for name, headers := range form.File {
		for _, fh := range headers {
			f, err := fh.Open()
			if err != nil {
				return nil, errors.NewValidation("body", fh.Filename, "failed to read uploaded file")
			}
			data, err := readAll(f)
			f.Close()
			if err != nil {
				return nil, err
			}
			parts = append(parts, Part{
				Name:        name,
				Filename:    fh.Filename,
				ContentType: fh.Header.Get("Content-Type"),
				Data:        data,
			})
		}
	}
	return parts, nil
}
