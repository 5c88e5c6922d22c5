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
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"

	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"
)

// ReadyToken is printed to the ready writer (stdout by default) once the
// listener is bound. The supervisor blocks on this token before marking the
// process running, so it must be emitted after Listen succeeds and before
// any request is served.
const ReadyToken = "SERVER_READY"

// Serve binds addr, announces readiness, and serves until Shutdown is
// called or the listener fails. It returns nil after a clean shutdown.
func (r *Router) Serve(addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", addr, err)
	}
	return r.ServeListener(ln)
}

// ServeListener is like Serve but takes a bound listener, which lets tests
// and the supervisor use port 0 or pre-bound sockets.
func (r *Router) ServeListener(ln net.Listener) error {
	var handler http.Handler = r
	if r.config.h2c {
		handler = h2c.NewHandler(r, &http2.Server{})
	}

	srv := &http.Server{
		Handler:      handler,
		ReadTimeout:  r.config.readTimeout,
		WriteTimeout: r.config.writeTimeout,
		IdleTimeout:  r.config.idleTimeout,
	}
	r.mu.Lock()
	r.server = srv
	r.mu.Unlock()

	fmt.Fprintln(r.config.readyWriter, ReadyToken)
	if r.config.logger != nil {
		r.config.logger.Info("server listening", "addr", ln.Addr().String())
	}

	if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("serve: %w", err)
	}
	return nil
}

// Shutdown gracefully drains in-flight requests, bounded by the configured
// shutdown timeout. Safe to call before Serve; it is then a no-op.
func (r *Router) Shutdown(ctx context.Context) error {
	r.mu.Lock()
	srv := r.server
	r.mu.Unlock()
	if srv == nil {
		return nil
	}
	if r.config.shutdownTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.config.shutdownTimeout)
		defer cancel()
	}
	if r.config.logger != nil {
		r.config.logger.Info("server shutting down")
	}
	return srv.Shutdown(ctx)
}
