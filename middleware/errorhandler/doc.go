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

// Package errorhandler is the single error sink of the request pipeline.
// It recovers panics, picks up errors collected on the context, normalises
// everything to the typed error taxonomy, and renders the stable JSON shape
//
//	{"error":{"message","type","timestamp","requestId"},
//	 "request":{...}?, "validation":{...}?, "retryAfter":N?}
//
// along the way it logs to console and optionally to a JSONL file, updates
// the error analytics, sets Retry-After for rate limits, and forwards 5xx
// errors to a remote reporter.
//
// Three presets cover the common configurations: Development (verbose,
// stack traces), Production (sanitised, file + remote logging) and Minimal
// (file only).
package errorhandler
