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

// Package binding parses request bodies by content type: JSON objects and
// arrays, URL-encoded forms, multipart payloads and plain text. Parse
// failures surface as validation errors on the "body" field, so the error
// pipeline renders them as a 400 without special-casing.
//
// The usual entry point is Parse, which sniffs the Content-Type and
// dispatches to the matching parser:
//
//	body, err := binding.Parse(c.Request)
//	if err != nil {
//	    c.Fail(err)
//	    return
//	}
//
// The bodyparser middleware wraps Parse and stores the result in the
// request state under "body".
package binding
