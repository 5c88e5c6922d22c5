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
	"errors"
	"fmt"
	"net/http"
	"runtime/debug"
	"time"
)

// Kind identifies the variant of a typed error.
type Kind int

// Error kinds, in the order of the taxonomy table.
const (
	KindUnknown Kind = iota
	KindValidation
	KindAuthentication
	KindAuthorization
	KindNotFound
	KindRateLimit
	KindDatabase
	KindTimeout
	KindApp
)

// String returns the wire name of the kind. These names appear verbatim in
// error response bodies and analytics, so they are part of the HTTP contract.
func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "ValidationError"
	case KindAuthentication:
		return "AuthenticationError"
	case KindAuthorization:
		return "AuthorizationError"
	case KindNotFound:
		return "NotFound"
	case KindRateLimit:
		return "RateLimitError"
	case KindDatabase:
		return "DatabaseError"
	case KindTimeout:
		return "TimeoutError"
	case KindApp:
		return "AppError"
	default:
		return "UnknownError"
	}
}

// Error is the typed error used throughout Genesis.
//
// Operational reports whether the error is an expected runtime condition
// (valid input rejected, resource missing, upstream unavailable) as opposed
// to a programming defect. Defects are always sanitized before they reach a
// client.
type Error struct {
	Kind        Kind
	Message     string
	Status      int
	Operational bool
	Timestamp   time.Time
	RequestID   string
	Stack       []byte

	// Kind-specific payload. Only the fields relevant to Kind are set.
	Field      string // KindValidation: offending field name
	Value      any    // KindValidation: offending value (redacted in prod output)
	Resource   string // KindNotFound: missing resource name
	RetryAfter int    // KindRateLimit: seconds until retry is allowed
	Operation  string // KindDatabase: logical operation ("insert", "query", ...)
	Query      string // KindDatabase: raw query, logged server-side only

	cause error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.cause)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// Unwrap returns the wrapped cause, if any.
func (e *Error) Unwrap() error { return e.cause }

// HTTPStatus returns the HTTP status code the error maps to.
func (e *Error) HTTPStatus() int {
	if e.Status != 0 {
		return e.Status
	}
	return http.StatusInternalServerError
}

// Name returns the wire name of the error kind.
func (e *Error) Name() string { return e.Kind.String() }

// WithRequestID attaches a request ID and returns the error for chaining.
func (e *Error) WithRequestID(id string) *Error {
	e.RequestID = id
	return e
}

// newError builds an *Error with timestamp and stack capture.
func newError(kind Kind, status int, operational bool, message string) *Error {
	return &Error{
		Kind:        kind,
		Message:     message,
		Status:      status,
		Operational: operational,
		Timestamp:   time.Now(),
		Stack:       debug.Stack(),
	}
}

// NewValidation creates a 400 validation error for a single field.
func NewValidation(field string, value any, message string) *Error {
	e := newError(KindValidation, http.StatusBadRequest, true, message)
	e.Field = field
	e.Value = value
	return e
}

// NewAuthentication creates a 401 error. The message is deliberately generic;
// never reveal why authentication failed.
func NewAuthentication() *Error {
	return newError(KindAuthentication, http.StatusUnauthorized, true, "Authentication required")
}

// NewAuthorization creates a 403 error: the user is known, the action is denied.
func NewAuthorization(message string) *Error {
	if message == "" {
		message = "Access denied"
	}
	return newError(KindAuthorization, http.StatusForbidden, true, message)
}

// NewNotFound creates a 404 error with the conventional "{resource} not found"
// message.
func NewNotFound(resource string) *Error {
	e := newError(KindNotFound, http.StatusNotFound, true, fmt.Sprintf("%s not found", resource))
	e.Resource = resource
	return e
}

// NewRateLimit creates a 429 error. The error-handler middleware sets the
// Retry-After header from RetryAfter.
func NewRateLimit(retryAfterSeconds int) *Error {
	e := newError(KindRateLimit, http.StatusTooManyRequests, true, "Rate limit exceeded")
	e.RetryAfter = retryAfterSeconds
	return e
}

// NewDatabase creates a 500 database error. The query is logged server-side
// only and never echoed to clients.
func NewDatabase(operation, query string, cause error) *Error {
	e := newError(KindDatabase, http.StatusInternalServerError, true, fmt.Sprintf("Database %s failed", operation))
	e.Operation = operation
	e.Query = query
	e.cause = cause
	return e
}

// NewTimeout creates a 408 error for operations that exceeded their deadline.
func NewTimeout(message string) *Error {
	if message == "" {
		message = "Request timed out"
	}
	return newError(KindTimeout, http.StatusRequestTimeout, true, message)
}

// NewApp creates an application error with an explicit status code.
// Pass operational=false to mark a programming defect; defects are always
// reported to clients as a sanitized 500.
func NewApp(message string, status int, operational bool) *Error {
	if !operational {
		status = http.StatusInternalServerError
	}
	return newError(KindApp, status, operational, message)
}

// Normalize converts any error into an *Error. Typed errors pass through
// unchanged; OS-level errors are mapped via FromOS; everything else is
// wrapped as a non-operational defect.
func Normalize(err error) *Error {
	var typed *Error
	if errors.As(err, &typed) {
		return typed
	}
	if mapped := FromOS(err); mapped != nil {
		return mapped
	}
	e := newError(KindUnknown, http.StatusInternalServerError, false, err.Error())
	e.cause = err
	return e
}

// HTTPStatusFor resolves the status the error pipeline will render for a
// request's collected errors: the first error's mapped status. ok is false
// when errs is empty. Middleware that observes the response on the unwind
// (access logging, metrics) uses this because the error handler stages its
// response only after they have run.
func HTTPStatusFor(errs []error) (int, bool) {
	if len(errs) == 0 {
		return 0, false
	}
	return Normalize(errs[0]).HTTPStatus(), true
}

// Is reports whether err is an *Error of the given kind.
func Is(err error, kind Kind) bool {
	var typed *Error
	return errors.As(err, &typed) && typed.Kind == kind
}
