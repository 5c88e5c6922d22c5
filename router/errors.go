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

import "errors"

var (
	// ErrNextCalledTwice is panicked when a middleware invokes Next more
	// than once for the same request. The error-handler middleware maps it
	// to a 500 response; without one, ServeHTTP's last-resort recovery does.
	ErrNextCalledTwice = errors.New("next() called multiple times")

	// ErrResponseWriterNotHijacker is returned by Hijack when the underlying
	// writer does not support connection hijacking.
	ErrResponseWriterNotHijacker = errors.New("underlying ResponseWriter does not implement http.Hijacker")

	// ErrEmptyPattern is panicked when a route is registered with an empty
	// pattern.
	ErrEmptyPattern = errors.New("route pattern cannot be empty")
)
