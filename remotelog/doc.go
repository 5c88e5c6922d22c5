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

// Package remotelog ships log entries to remote HTTP collectors in batches.
// Entries buffer in memory and flush when the batch size is reached or the
// flush interval elapses, whichever comes first. Each destination gets its
// own circuit breaker; while a breaker is open, batches for that
// destination are dropped rather than queued, keeping a dead collector from
// backing up the process. Failed sends retry with exponential backoff and
// jitter, capped at 30 seconds across attempts.
//
// Example:
//
//	sink := remotelog.NewSink(
//	    remotelog.WithDestination(remotelog.Destination{
//	        Name:   "central",
//	        URL:    "https://logs.example.com/ingest",
//	        APIKey: os.Getenv("ERROR_REPORTING_API_KEY"),
//	    }),
//	    remotelog.WithBatchSize(50),
//	)
//	defer sink.Close()
//	logger := logging.MustNew(logging.WithSink(sink.Enqueue))
package remotelog
