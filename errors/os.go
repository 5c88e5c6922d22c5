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

package errors

import (
	"context"
	"errors"
	"io/fs"
	"net"
	"net/http"
	"syscall"
)

// FromOS maps well-known OS and network errors to typed operational errors:
//
//	not-exist          -> 404 NotFound
//	permission denied  -> 403 Authorization
//	connection refused -> 503 App
//	timeout            -> 408 Timeout
//
// Returns nil when err does not match any known OS error, so callers can
// fall through to defect handling.
func FromOS(err error) *Error {
	switch {
	case errors.Is(err, fs.ErrNotExist):
		e := NewNotFound("resource")
		e.cause = err
		return e
	case errors.Is(err, fs.ErrPermission):
		e := NewAuthorization("Permission denied")
		e.cause = err
		return e
	case errors.Is(err, syscall.ECONNREFUSED):
		e := NewApp("Upstream connection refused", http.StatusServiceUnavailable, true)
		e.cause = err
		return e
	case errors.Is(err, context.DeadlineExceeded), isTimeout(err):
		e := NewTimeout("")
		e.cause = err
		return e
	}
	return nil
}

// isTimeout reports whether err is a net.Error timeout.
func isTimeout(err error) bool {
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}
