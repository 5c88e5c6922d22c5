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

// Package logging provides the leveled logger used by every Genesis
// component, built as a thin facade over log/slog with custom handlers.
//
// Output is line-oriented: one line per emission containing a
// second-precision timestamp, the level tag, the message and optional
// metadata serialized as JSON:
//
//	2026-08-24 10:32:01 INFO  server listening {"addr":":9000"}
//
// The package also hosts the header and object sanitizers shared by the
// request-logging and error-handling middleware, and a bounded in-memory
// history of recent entries for introspection.
//
// Basic usage:
//
//	logger := logging.MustNew(
//	    logging.WithLevel(logging.LevelDebug),
//	    logging.WithColor(true),
//	)
//	logger.Info("kernel booted", "pid", os.Getpid())
//
// Plugin sinks (file, JSON file, remote HTTP) subscribe to the write stream:
//
//	logger := logging.MustNew(
//	    logging.WithJSONFile("./logs/app.log"),
//	    logging.WithSink(remoteSink.Enqueue),
//	)
package logging
