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

// Package requestid tags every request with a correlation ID: an inbound
// X-Request-ID is honoured when allowed, otherwise a fresh ID is generated.
// The ID lands in the request state under "requestId" and is always echoed
// in the response header, so logs, error reports and clients all see the
// same value.
package requestid

import (
	"crypto/rand"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/oklog/ulid/v2"

	"genesis.dev/genesis/router"
)

// Option defines functional options for requestid middleware configuration.
type Option func(*config)

type config struct {
	headerName    string
	generator     func() string
	allowClientID bool
}

func defaultConfig() *config {
	return &config{
		headerName:    "X-Request-ID",
		generator:     generateUUIDv4,
		allowClientID: true,
	}
}

func generateUUIDv4() string {
	return uuid.NewString()
}

// ulidEntropy provides monotonic ordering within the same millisecond.
var (
	ulidEntropy     = ulid.Monotonic(rand.Reader, 0)
	ulidEntropyLock sync.Mutex
)

func generateULID() string {
	ulidEntropyLock.Lock()
	defer ulidEntropyLock.Unlock()
	return ulid.MustNew(ulid.Timestamp(time.Now()), ulidEntropy).String()
}

// WithHeader sets the header used for inbound and outbound request IDs.
func WithHeader(name string) Option {
	return func(c *config) { c.headerName = name }
}

// WithULID generates ULIDs instead of UUIDs. ULIDs are time-ordered and a
// compact 26 characters.
func WithULID() Option {
	return func(c *config) { c.generator = generateULID }
}

// WithGenerator installs a custom ID generator.
func WithGenerator(generator func() string) Option {
	return func(c *config) { c.generator = generator }
}

// WithAllowClientID controls whether inbound request IDs are trusted.
// Disable at trust boundaries where clients must not choose their IDs.
func WithAllowClientID(allow bool) Option {
	return func(c *config) { c.allowClientID = allow }
}

// New returns a middleware that assigns each request a unique ID.
//
// Basic usage (UUID v4 by default):
//
//	r := router.MustNew()
//	r.Use(requestid.New())
//
// Using ULID:
//
//	r.Use(requestid.New(requestid.WithULID()))
//
// Accessing the request ID in handlers:
//
//	r.GET("/users/:id", func(c *router.Context) {
//	    id := c.RequestID()
//	})
func New(opts ...Option) router.HandlerFunc {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(cfg)
	}

	return func(c *router.Context) {
		var requestID string
		if cfg.allowClientID {
			requestID = c.Request.Header.Get(cfg.headerName)
		}
		if requestID == "" {
			requestID = cfg.generator()
		}

		c.SetHeader(cfg.headerName, requestID)
		c.Set(router.StateKeyRequestID, requestID)

		c.Next()
	}
}
