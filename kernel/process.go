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
	"sync"
	"time"
)

// Status is the lifecycle state of a managed process.
type Status string

const (
	StatusRunning Status = "running"
	StatusStopped Status = "stopped"
	StatusFailed  Status = "failed"
)

// Process is one entry in the kernel's process table. A process is either
// owned (the kernel spawned it and holds the child handle) or externally
// monitored (the kernel adopted a PID it found listening on the configured
// port; cmd is nil and restart is disabled).
type Process struct {
	ID           string
	Name         string
	PID          int
	Status       Status
	AutoRestart  bool
	RestartCount int
	StartTime    time.Time
	ScriptPath   string
	Argv         []string
	Env          map[string]string
	Cwd          string
	Port         int
	External     bool

	cmd      *exec.Cmd
	killed   bool          // exit was requested via Kill
	ready    chan struct{} // closed when SERVER_READY is seen
	exited   chan struct{} // closed when the exit watcher finishes
	exitOnce sync.Once
}

// closeExited closes the exit channel exactly once. The exit watcher and
// Shutdown can race to report the same termination, so this must not
// require the kernel lock.
func (p *Process) closeExited() {
	p.exitOnce.Do(func() { close(p.exited) })
}

// Owned reports whether the kernel holds the child handle.
func (p *Process) Owned() bool { return p.cmd != nil }

// Ready returns a channel closed once the process prints its readiness
// token. For externally monitored processes it is closed immediately at
// adoption; the listener evidently already exists.
func (p *Process) Ready() <-chan struct{} { return p.ready }

// Exited returns a channel closed when the process has terminated and its
// table entry reached a final state for this incarnation.
func (p *Process) Exited() <-chan struct{} { return p.exited }

// Snapshot is a copy of the externally visible process fields, safe to
// hold without the kernel lock.
type Snapshot struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	PID          int       `json:"pid"`
	Status       Status    `json:"status"`
	AutoRestart  bool      `json:"autoRestart"`
	RestartCount int       `json:"restartCount"`
	StartTime    time.Time `json:"startTime"`
	External     bool      `json:"external"`
	Port         int       `json:"port,omitempty"`
}

func (p *Process) snapshot() Snapshot {
	return Snapshot{
		ID:           p.ID,
		Name:         p.Name,
		PID:          p.PID,
		Status:       p.Status,
		AutoRestart:  p.AutoRestart,
		RestartCount: p.RestartCount,
		StartTime:    p.StartTime,
		External:     p.External,
		Port:         p.Port,
	}
}
