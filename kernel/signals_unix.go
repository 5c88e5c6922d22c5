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

//go:build unix

package kernel

import (
	"os"
	"os/signal"
	"syscall"
)

// shutdownSignal is what children receive when the kernel winds down.
var shutdownSignal os.Signal = syscall.SIGTERM

// notifySignals wires the kernel's signal set: SIGINT and SIGTERM request
// shutdown, SIGUSR1 requests the REPL, SIGPIPE is ignored so broken-pipe
// writes surface as errors instead of killing the process.
func notifySignals(shutdown, repl chan<- os.Signal) {
	signal.Ignore(syscall.SIGPIPE)
	sigs := make(chan os.Signal, 4)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGUSR1)
	go func() {
		for sig := range sigs {
			switch sig {
			case syscall.SIGUSR1:
				select {
				case repl <- sig:
				default:
				}
			default:
				select {
				case shutdown <- sig:
				default:
				}
			}
		}
	}()
}
