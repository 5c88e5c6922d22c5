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

// Command genesis boots the kernel: it loads the configuration, installs
// signal handling, spawns the heartbeat and HTTP-server children, and
// supervises them until shutdown.
//
// Usage:
//
//	genesis [-config genesis.yaml]
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"genesis.dev/genesis/kernel"
	"genesis.dev/genesis/logging"
	"genesis.dev/genesis/remotelog"
)

func main() {
	configPath := flag.String("config", "", "path to a YAML or TOML config file")
	flag.Parse()

	cfg, err := kernel.LoadConfig(*configPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	level := logging.LevelInfo
	if cfg.Debug {
		level = logging.LevelDebug
	}
	logger := logging.MustNew(
		logging.WithLevel(level),
		logging.WithJSONFile("./logs/kernel.log"),
	)
	defer logger.Close()

	opts := []kernel.Option{kernel.WithLogger(logger)}
	var sink *remotelog.Sink
	if cfg.ErrorReportingURL != "" {
		sink = remotelog.NewSink(remotelog.WithDestination(remotelog.Destination{
			Name:   "error-reporting",
			URL:    cfg.ErrorReportingURL,
			APIKey: cfg.ErrorReportingKey,
		}))
		defer sink.Close()
		opts = append(opts, kernel.WithUncaughtReporter(func(record map[string]any) {
			sink.Enqueue(logging.Entry{
				Time:    time.Now(),
				Level:   logging.LevelError,
				Message: "UNCAUGHT_EXCEPTION",
				Attrs:   record,
			})
			sink.Flush()
		}))
	}

	k := kernel.New(opts...)
	defer func() {
		if rec := recover(); rec != nil {
			k.ReportUncaught(rec)
			os.Exit(1)
		}
	}()

	if err := k.Run(context.Background(), cfg); err != nil {
		logger.Error("kernel failed", "error", err.Error())
		os.Exit(1)
	}
}
