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

// Package errors defines the typed error taxonomy shared by every Genesis
// component, plus process-wide error analytics.
//
// Every error produced by handlers and middleware is (or is normalized into)
// an *Error carrying a Kind, an HTTP status, an operational flag, a timestamp
// and a stack capture. The error-handler middleware is the single sink that
// maps these errors to HTTP responses; nothing downstream catches to
// suppress.
//
// Creating errors:
//
//	err := errors.NewValidation("title", "", "title: minimum length 1")
//	err := errors.NewNotFound("user")
//	err := errors.NewRateLimit(60)
//
// Classifying foreign errors:
//
//	e := errors.Normalize(err) // *Error in, *Error out; anything else wrapped as a defect
//
// Analytics:
//
//	errors.DefaultAnalytics.Record(e, requestID, clientIP)
//	report := errors.DefaultAnalytics.Report()
package errors
