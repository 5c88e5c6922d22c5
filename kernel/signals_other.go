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

//go:build !unix

package kernel

import (
	"os"
	"os/signal"
)

var shutdownSignal os.Signal = os.Interrupt

// notifySignals wires interrupt-driven shutdown on platforms without the
// full Unix signal set; there is no REPL signal here.
func notifySignals(shutdown, repl chan<- os.Signal) {
	sigs := make(chan os.Signal, 2)
	signal.Notify(sigs, os.Interrupt)
	go func() {
		for sig := range sigs {
			select {
			case shutdown <- sig:
			default:
			}
		}
	}()
}
