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

// Package router implements the HTTP middleware pipeline at the heart of
// Genesis: the per-request Context with its staged response, the onion-order
// middleware chain, method+pattern routing, the HTTP server with its
// readiness token, and static file serving.
//
// Handlers and middleware share one signature:
//
//	func(c *router.Context)
//
// Middleware calls c.Next() to run the rest of the chain; registration order
// in equals reverse order out. Calling Next twice from the same middleware is
// a programming error and fails loudly.
//
// Responses are staged, not written: handlers accumulate status, headers and
// body on the Context, and the router finalizes the response after the chain
// unwinds. A request that stages nothing yields 204 No Content.
//
// Example:
//
//	r := router.MustNew()
//	r.Use(requestid.New(), timing.New())
//	r.GET("/todos/:id", func(c *router.Context) {
//	    c.JSON(http.StatusOK, map[string]string{"id": c.Param("id")})
//	})
//	r.Serve(":9000") // prints SERVER_READY once listening
//
// Route matching is a linear scan per method in registration order; the
// first registered matching route wins. Static segments do not outrank
// parameter segments — order of registration is the only tie-break.
package router
