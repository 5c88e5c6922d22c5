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
	"os/exec"
	"strings"
	"time"

	"genesis.dev/genesis/logging"
)

// Well-known process IDs used by the boot sequence.
const (
	HeartbeatID  = "heartbeat"
	HTTPServerID = "http-server"
)

// Option defines functional options for Kernel configuration.
type Option func(*kernelConfig)

type kernelConfig struct {
	logger          *logging.Logger
	restartDelay    time.Duration
	monitorInterval time.Duration
	gracePeriod     time.Duration
	command          func(script string, argv []string) *exec.Cmd
	heartbeatFilter  func(line string) bool
	portProbe        func(port int) int
	uncaughtReporter func(record map[string]any)
}

func defaultKernelConfig() *kernelConfig {
	return &kernelConfig{
		logger:          logging.Discard(),
		restartDelay:    2 * time.Second,
		monitorInterval: 5 * time.Second,
		gracePeriod:     5 * time.Second,
		command: func(script string, argv []string) *exec.Cmd {
			return exec.Command(script, argv...)
		},
		heartbeatFilter: defaultHeartbeatFilter,
	}
}

// defaultHeartbeatFilter keeps startup and alert lines and drops the
// periodic metric chatter the heartbeat child prints.
func defaultHeartbeatFilter(line string) bool {
	if strings.Contains(line, "ALERT") {
		return true
	}
	return !strings.HasPrefix(strings.TrimSpace(line), "heartbeat")
}

// WithLogger sets the kernel logger.
func WithLogger(logger *logging.Logger) Option {
	return func(c *kernelConfig) { c.logger = logger }
}

// WithRestartDelay overrides the pause before a crashed child is respawned.
func WithRestartDelay(d time.Duration) Option {
	return func(c *kernelConfig) { c.restartDelay = d }
}

// WithMonitorInterval overrides the external-monitor liveness poll period.
func WithMonitorInterval(d time.Duration) Option {
	return func(c *kernelConfig) { c.monitorInterval = d }
}

// WithGracePeriod overrides how long shutdown waits after SIGTERM before
// escalating to SIGKILL.
func WithGracePeriod(d time.Duration) Option {
	return func(c *kernelConfig) { c.gracePeriod = d }
}

// WithCommand replaces how child commands are constructed. The default
// executes the script path directly with its argv.
func WithCommand(build func(script string, argv []string) *exec.Cmd) Option {
	return func(c *kernelConfig) { c.command = build }
}

// WithHeartbeatFilter replaces the stdout filter applied to the heartbeat
// process. Return true to forward the line.
func WithHeartbeatFilter(keep func(line string) bool) Option {
	return func(c *kernelConfig) { c.heartbeatFilter = keep }
}

// WithPortProbe replaces the listener discovery used for port takeover,
// mainly for tests. Return the owning PID or 0.
func WithPortProbe(probe func(port int) int) Option {
	return func(c *kernelConfig) { c.portProbe = probe }
}

// WithUncaughtReporter forwards UNCAUGHT_EXCEPTION records to a remote
// collector during the crash path. Best effort.
func WithUncaughtReporter(report func(record map[string]any)) Option {
	return func(c *kernelConfig) { c.uncaughtReporter = report }
}
