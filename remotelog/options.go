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

package remotelog

import (
	"net/http"
	"time"
)

// Option defines functional options for Sink configuration.
type Option func(*config)

type config struct {
	destinations     []Destination
	batchSize        int
	flushInterval    time.Duration
	breakerThreshold int
	breakerTimeout   time.Duration
	transformer      Transformer
	client           *http.Client
}

func defaultConfig() *config {
	return &config{
		batchSize:        20,
		flushInterval:    5 * time.Second,
		breakerThreshold: 5,
		breakerTimeout:   30 * time.Second,
		transformer:      defaultTransformer,
		client:           &http.Client{},
	}
}

// WithDestination adds a remote collector. Repeatable.
func WithDestination(d Destination) Option {
	return func(c *config) { c.destinations = append(c.destinations, d) }
}

// WithBatchSize sets how many entries trigger an immediate flush.
func WithBatchSize(n int) Option {
	return func(c *config) {
		if n > 0 {
			c.batchSize = n
		}
	}
}

// WithFlushInterval sets the timer-driven flush period.
func WithFlushInterval(d time.Duration) Option {
	return func(c *config) {
		if d > 0 {
			c.flushInterval = d
		}
	}
}

// WithBreakerThreshold sets how many consecutive batch failures open a
// destination's circuit breaker.
func WithBreakerThreshold(n int) Option {
	return func(c *config) {
		if n > 0 {
			c.breakerThreshold = n
		}
	}
}

// WithBreakerTimeout sets how long an open breaker waits before half-open.
func WithBreakerTimeout(d time.Duration) Option {
	return func(c *config) {
		if d > 0 {
			c.breakerTimeout = d
		}
	}
}

// WithTransformer replaces the default payload envelope.
func WithTransformer(t Transformer) Option {
	return func(c *config) {
		if t != nil {
			c.transformer = t
		}
	}
}

// WithHTTPClient replaces the HTTP client, mainly for tests.
func WithHTTPClient(client *http.Client) Option {
	return func(c *config) {
		if client != nil {
			c.client = client
		}
	}
}
