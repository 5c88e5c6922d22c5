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

import (
	"fmt"
	"io"
	"os"
	"time"

	"genesis.dev/genesis/logging"
)

// config holds router and server configuration, set via Option functions.
type config struct {
	logger          *logging.Logger
	readyWriter     io.Writer
	readTimeout     time.Duration
	writeTimeout    time.Duration
	idleTimeout     time.Duration
	shutdownTimeout time.Duration
	h2c             bool
}

func defaultConfig() *config {
	return &config{
		readyWriter:     os.Stdout,
		readTimeout:     15 * time.Second,
		writeTimeout:    30 * time.Second,
		idleTimeout:     60 * time.Second,
		shutdownTimeout: 5 * time.Second,
	}
}

func (c *config) validate() error {
	for _, d := range []struct {
		name string
		val  time.Duration
	}{
		{"read timeout", c.readTimeout},
		{"write timeout", c.writeTimeout},
		{"idle timeout", c.idleTimeout},
		{"shutdown timeout", c.shutdownTimeout},
	} {
		if d.val < 0 {
			return fmt.Errorf("%s must not be negative, got %v", d.name, d.val)
		}
	}
	if c.readyWriter == nil {
		return fmt.Errorf("ready writer must not be nil")
	}
	return nil
}

// Option configures a Router.
type Option func(*config)

// WithLogger sets the logger used for server lifecycle events and
// last-resort panic reports. Without one the router stays silent.
func WithLogger(logger *logging.Logger) Option {
	return func(c *config) { c.logger = logger }
}

// WithReadyWriter sets the writer that receives the readiness token once the
// listener is bound. Defaults to os.Stdout, where the supervisor reads it.
func WithReadyWriter(w io.Writer) Option {
	return func(c *config) { c.readyWriter = w }
}

// WithReadTimeout sets the maximum duration for reading a request.
func WithReadTimeout(d time.Duration) Option {
	return func(c *config) { c.readTimeout = d }
}

// WithWriteTimeout sets the maximum duration for writing a response.
func WithWriteTimeout(d time.Duration) Option {
	return func(c *config) { c.writeTimeout = d }
}

// WithIdleTimeout sets how long to keep idle keep-alive connections open.
func WithIdleTimeout(d time.Duration) Option {
	return func(c *config) { c.idleTimeout = d }
}

// WithShutdownTimeout bounds graceful shutdown; connections still open after
// the deadline are dropped.
func WithShutdownTimeout(d time.Duration) Option {
	return func(c *config) { c.shutdownTimeout = d }
}

// WithH2C enables cleartext HTTP/2 on the listener alongside HTTP/1.1.
func WithH2C() Option {
	return func(c *config) { c.h2c = true }
}
