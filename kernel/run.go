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

package kernel

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"runtime/debug"
	"strconv"
	"time"
)

// Run executes the kernel boot sequence: signal handlers, banner, the
// heartbeat child, the HTTP server child (with port takeover), readiness
// wait, then blocks until a shutdown signal or context cancellation.
// It returns nil after a clean shutdown; the caller exits 0.
func (k *Kernel) Run(ctx context.Context, cfg Config) error {
	shutdownCh := make(chan os.Signal, 1)
	replCh := make(chan os.Signal, 1)
	notifySignals(shutdownCh, replCh)

	k.banner(cfg)

	if cfg.HeartbeatScriptPath != "" {
		if _, err := k.Spawn(HeartbeatID, "Heartbeat Monitor", cfg.HeartbeatScriptPath, nil, SpawnOptions{
			AutoRestart: true,
		}); err != nil {
			return fmt.Errorf("spawn heartbeat: %w", err)
		}
	}

	server, err := k.Spawn(HTTPServerID, "HTTP Server", cfg.ServerScriptPath, nil, SpawnOptions{
		AutoRestart: true,
		Port:        cfg.ServerPort,
		Env: map[string]string{
			"PORT":     strconv.Itoa(cfg.ServerPort),
			"HOSTNAME": cfg.ServerHostname,
			"ENV":      cfg.Environment,
		},
	})
	if err != nil {
		return fmt.Errorf("spawn http server: %w", err)
	}

	select {
	case <-server.Ready():
		k.cfg.logger.Info("kernel ready",
			"port", cfg.ServerPort, "env", cfg.Environment)
	case <-ctx.Done():
		return k.Shutdown(context.Background())
	}

	if !isTTY(os.Stdin) {
		k.cfg.logger.Info("running headless; send SIGUSR1 to reopen the REPL")
	}

	for {
		select {
		case sig := <-shutdownCh:
			k.cfg.logger.Info("shutdown signal received", "signal", sig.String())
			return k.Shutdown(context.Background())
		case <-replCh:
			if !isTTY(os.Stdin) {
				k.cfg.logger.Warn("REPL requested but stdin is not a TTY")
				continue
			}
			select {
			case k.repl <- struct{}{}:
			default:
			}
		case <-ctx.Done():
			return k.Shutdown(context.Background())
		}
	}
}

func (k *Kernel) banner(cfg Config) {
	k.cfg.logger.Info("Genesis kernel starting",
		"port", cfg.ServerPort,
		"hostname", cfg.ServerHostname,
		"env", cfg.Environment,
		"debug", cfg.Debug,
		"pid", os.Getpid(),
	)
}

func isTTY(f *os.File) bool {
	info, err := f.Stat()
	if err != nil {
		return false
	}
	return info.Mode()&os.ModeCharDevice != 0
}

// ReportUncaught is the last line of defence for panics escaping
// kernel-owned goroutines: it logs the failure, appends an
// UNCAUGHT_EXCEPTION record to the error log, fires the optional remote
// report, and returns. The caller decides whether to exit.
//
//	defer func() {
//	    if rec := recover(); rec != nil {
//	        k.ReportUncaught(rec)
//	        os.Exit(1)
//	    }
//	}()
func (k *Kernel) ReportUncaught(rec any) {
	stack := debug.Stack()
	k.cfg.logger.Error("uncaught exception", "panic", fmt.Sprint(rec))

	record := map[string]any{
		"type":      "UNCAUGHT_EXCEPTION",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"message":   fmt.Sprint(rec),
		"stack":     string(stack),
		"pid":       os.Getpid(),
	}
	appendJSONL("./logs/errors.log", record)

	if k.cfg.uncaughtReporter != nil {
		// Best effort; a dead collector must not block the crash path.
		k.cfg.uncaughtReporter(record)
	}
}

func appendJSONL(path string, record map[string]any) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return
	}
	defer f.Close()
	line, err := json.Marshal(record)
	if err != nil {
		return
	}
	f.Write(append(line, '\n')) //nolint:errcheck
}
