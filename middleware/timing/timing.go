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

// Package timing measures request duration on the monotonic clock and
// reports it in an X-Response-Time header.
package timing

import (
	"strconv"
	"time"

	"genesis.dev/genesis/router"
)

// HeaderName is the response header carrying the elapsed time.
const HeaderName = "X-Response-Time"

// StateKeyDuration is the state key under which the measured duration is
// stored for downstream consumers (access logging, metrics).
const StateKeyDuration = "requestDuration"

// New returns a middleware that appends "X-Response-Time: Nms" after the
// rest of the chain has run. Because headers are staged until finalize, the
// header is set on the way out yet still reaches the client.
//
//	r.Use(timing.New())
func New() router.HandlerFunc {
	return func(c *router.Context) {
		start := time.Now()
		c.Next()
		elapsed := time.Since(start)
		c.SetHeader(HeaderName, strconv.FormatInt(elapsed.Milliseconds(), 10)+"ms")
		c.Set(StateKeyDuration, elapsed)
	}
}
