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

// Package bodyparser materialises the parsed request body in the request
// state under "body". Content types the binding package does not understand
// pass through untouched; parse failures fail the request with a 400
// validation error.
package bodyparser

import (
	"genesis.dev/genesis/binding"
	"genesis.dev/genesis/router"
)

// StateKeyBody is the state key holding the parsed body.
const StateKeyBody = "body"

// New returns the body-parsing middleware.
//
//	r.Use(bodyparser.New())
//	r.POST("/api/todos", func(c *router.Context) {
//	    body, _ := bodyparser.Body(c)
//	    ...
//	})
func New() router.HandlerFunc {
	return func(c *router.Context) {
		body, err := binding.Parse(c.Request)
		if err != nil {
			c.Fail(err)
			return
		}
		if body != nil {
			c.Set(StateKeyBody, body)
		}
		c.Next()
	}
}

// Body retrieves the parsed body from the request state.
func Body(c *router.Context) (any, bool) {
	return c.Get(StateKeyBody)
}
