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

// Package kernel supervises the long-running child processes that make up
// a Genesis deployment: the HTTP server, the heartbeat monitor, and any
// additional registered scripts.
//
// The kernel owns a process table keyed by caller-chosen IDs. Spawn forks a
// child, reads its stdout for the SERVER_READY readiness token, watches its
// exit, and restarts it after a crash when autoRestart is set. When the
// child's port is already held by another process, the kernel does not
// fight for it: it adopts the existing PID in external-monitor mode,
// polling liveness instead of owning a handle, with restart disabled.
//
// SIGINT and SIGTERM trigger a graceful shutdown that SIGTERMs every owned
// child concurrently and SIGKILLs stragglers after the grace period.
// SIGUSR1 posts a reopen request to the REPL inbox; SIGPIPE is ignored.
package kernel
