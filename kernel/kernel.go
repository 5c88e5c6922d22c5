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
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"regexp"
	"strings"
	"sync"
	"time"

	gnet "github.com/shirou/gopsutil/v3/net"
	"github.com/shirou/gopsutil/v3/process"
	"golang.org/x/sync/errgroup"

	"genesis.dev/genesis/router"
)

// addrInUse matches the stderr lines children emit when their listen port
// is taken.
var addrInUse = regexp.MustCompile(`AddrInUse|address already in use`)

// exitFunc is swapped out in tests.
var exitFunc = os.Exit

// SpawnOptions configures one Spawn call.
type SpawnOptions struct {
	// Port, when non-zero, is probed before forking; a process already
	// listening there is adopted in external-monitor mode instead.
	Port        int
	AutoRestart bool
	Env         map[string]string
	Cwd         string
}

// Kernel supervises child processes. Safe for concurrent use.
type Kernel struct {
	cfg *kernelConfig

	mu        sync.Mutex
	processes map[string]*Process

	shuttingDown bool
	done         chan struct{}
	repl         chan struct{}
}

// New creates a kernel with an empty process table.
func New(opts ...Option) *Kernel {
	cfg := defaultKernelConfig()
	for _, opt := range opts {
		opt(cfg)
	}
	return &Kernel{
		cfg:       cfg,
		processes: make(map[string]*Process),
		done:      make(chan struct{}),
		repl:      make(chan struct{}, 1),
	}
}

// REPLRequests returns the inbox that receives a token each time SIGUSR1
// asks for the REPL to reopen.
func (k *Kernel) REPLRequests() <-chan struct{} { return k.repl }

// Processes returns a snapshot of the process table.
func (k *Kernel) Processes() map[string]Snapshot {
	k.mu.Lock()
	defer k.mu.Unlock()
	out := make(map[string]Snapshot, len(k.processes))
	for id, p := range k.processes {
		out[id] = p.snapshot()
	}
	return out
}

// Get returns a snapshot of one process.
func (k *Kernel) Get(id string) (Snapshot, bool) {
	k.mu.Lock()
	defer k.mu.Unlock()
	p, ok := k.processes[id]
	if !ok {
		return Snapshot{}, false
	}
	return p.snapshot(), true
}

// Spawn registers and starts a managed process. When opts.Port is held by
// an existing listener the kernel adopts that PID in external-monitor mode
// and does not fork. The returned Process must be treated as read-only.
func (k *Kernel) Spawn(id, name, script string, argv []string, opts SpawnOptions) (*Process, error) {
	k.mu.Lock()
	defer k.mu.Unlock()

	if k.shuttingDown {
		return nil, fmt.Errorf("kernel is shutting down")
	}
	if _, exists := k.processes[id]; exists {
		return nil, fmt.Errorf("process id %q already registered", id)
	}

	p := &Process{
		ID:          id,
		Name:        name,
		ScriptPath:  script,
		Argv:        argv,
		Env:         opts.Env,
		Cwd:         opts.Cwd,
		Port:        opts.Port,
		AutoRestart: opts.AutoRestart,
		ready:       make(chan struct{}),
		exited:      make(chan struct{}),
	}

	if opts.Port > 0 {
		if pid := k.listenerPID(opts.Port); pid > 0 && pid != os.Getpid() {
			k.cfg.logger.Warn("Monitoring existing process",
				"id", id, "port", opts.Port, "pid", pid)
			k.adoptLocked(p, pid)
			k.processes[id] = p
			return p, nil
		}
	}

	if err := k.startLocked(p); err != nil {
		return nil, err
	}
	k.processes[id] = p
	return p, nil
}

// adoptLocked switches p to external-monitor mode for an already-running
// PID. Restart is forced off so the kernel never fights over the port.
func (k *Kernel) adoptLocked(p *Process, pid int) {
	p.PID = pid
	p.Status = StatusRunning
	p.StartTime = time.Now()
	p.External = true
	p.AutoRestart = false
	p.cmd = nil
	closeOnce(p.ready) // the listener evidently exists
	go k.guard(func() { k.monitorExternal(p) })
}

// startLocked forks the child and wires its readers and exit watcher.
func (k *Kernel) startLocked(p *Process) error {
	cmd := k.cfg.command(p.ScriptPath, p.Argv)
	cmd.Env = mergeEnv(os.Environ(), p.Env)
	if p.Cwd != "" {
		cmd.Dir = p.Cwd
	}

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return fmt.Errorf("spawn %s: stdout pipe: %w", p.ID, err)
	}
	stderr, err := cmd.StderrPipe()
	if err != nil {
		return fmt.Errorf("spawn %s: stderr pipe: %w", p.ID, err)
	}
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("spawn %s: %w", p.ID, err)
	}

	p.cmd = cmd
	p.PID = cmd.Process.Pid
	p.Status = StatusRunning
	p.StartTime = time.Now()
	p.External = false

	k.cfg.logger.Info("process started",
		"id", p.ID, "name", p.Name, "pid", p.PID, "restarts", p.RestartCount)

	go k.guard(func() { k.readStdout(p, stdout) })
	go k.guard(func() { k.readStderr(p, stderr) })
	go k.guard(func() { k.watchExit(p, cmd) })
	return nil
}

// guard runs fn, routing any panic through the uncaught-exception pipeline
// before terminating. Supervisor goroutines run under it so a panicking
// callback (heartbeat filter, port probe) is recorded instead of taking the
// kernel down silently.
func (k *Kernel) guard(fn func()) {
	defer func() {
		if rec := recover(); rec != nil {
			k.ReportUncaught(rec)
			exitFunc(1)
		}
	}()
	fn()
}

// readStdout forwards child stdout lines to the logger, resolves readiness
// on the SERVER_READY token, and filters heartbeat noise.
func (k *Kernel) readStdout(p *Process, r io.Reader) {
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := scanner.Text()
		if strings.Contains(line, router.ReadyToken) {
			k.mu.Lock()
			closeOnce(p.ready)
			k.mu.Unlock()
			k.cfg.logger.Info("process ready", "id", p.ID, "pid", p.PID)
			continue
		}
		if p.ID == HeartbeatID && !k.cfg.heartbeatFilter(line) {
			continue
		}
		k.cfg.logger.Info(line, "process", p.ID)
	}
}

// readStderr forwards child stderr to the error log and triggers the
// address-in-use recovery when the child lost the port race.
func (k *Kernel) readStderr(p *Process, r io.Reader) {
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := scanner.Text()
		k.cfg.logger.Error(line, "process", p.ID)
		if addrInUse.MatchString(line) {
			k.recoverAddrInUse(p)
		}
	}
}

// recoverAddrInUse demotes p to external-monitor mode on the PID currently
// holding its port. The failed child is released; its exit is ignored.
func (k *Kernel) recoverAddrInUse(p *Process) {
	k.mu.Lock()
	defer k.mu.Unlock()
	if p.External || p.Port == 0 {
		return
	}
	pid := k.listenerPID(p.Port)
	if pid <= 0 || pid == os.Getpid() {
		p.Status = StatusFailed
		return
	}
	k.cfg.logger.Warn("port taken, monitoring existing process",
		"id", p.ID, "port", p.Port, "pid", pid)
	k.adoptLocked(p, pid)
}

// watchExit waits for the child and applies the restart policy. Restarts
// for one id are serial; the watcher itself performs the respawn.
func (k *Kernel) watchExit(p *Process, cmd *exec.Cmd) {
	err := cmd.Wait()

	k.mu.Lock()
	if p.External || p.cmd != cmd {
		// Demoted to external-monitor mode; this exit belongs to the
		// released child.
		k.mu.Unlock()
		return
	}
	switch {
	case k.shuttingDown, p.killed, err == nil:
		p.Status = StatusStopped
	default:
		p.Status = StatusFailed
	}
	restart := p.Status == StatusFailed && p.AutoRestart
	if !restart {
		k.cfg.logger.Info("process exited",
			"id", p.ID, "pid", p.PID, "status", string(p.Status))
		p.closeExited()
		k.mu.Unlock()
		return
	}
	p.RestartCount++
	restarts := p.RestartCount
	k.mu.Unlock()

	k.cfg.logger.Warn("process crashed, restarting",
		"id", p.ID, "pid", p.PID, "restarts", restarts, "error", fmt.Sprint(err))

	select {
	case <-time.After(k.cfg.restartDelay):
	case <-k.done:
	}

	k.mu.Lock()
	defer k.mu.Unlock()
	if k.shuttingDown {
		p.Status = StatusStopped
		p.closeExited()
		return
	}
	p.ready = make(chan struct{})
	if startErr := k.startLocked(p); startErr != nil {
		k.cfg.logger.Error("restart failed", "id", p.ID, "error", startErr.Error())
		p.Status = StatusFailed
		p.closeExited()
	}
}

// monitorExternal polls liveness of an adopted PID. On exit the record is
// marked stopped; a respawn happens only if autoRestart was re-enabled.
func (k *Kernel) monitorExternal(p *Process) {
	ticker := time.NewTicker(k.cfg.monitorInterval)
	defer ticker.Stop()
	for {
		select {
		case <-k.done:
			return
		case <-ticker.C:
		}

		alive, err := process.PidExists(int32(p.PID))
		if err == nil && alive {
			continue
		}

		k.mu.Lock()
		p.Status = StatusStopped
		restart := p.AutoRestart && !k.shuttingDown
		k.cfg.logger.Warn("external process exited", "id", p.ID, "pid", p.PID)
		if !restart {
			p.closeExited()
			k.mu.Unlock()
			return
		}
		p.External = false
		p.RestartCount++
		k.mu.Unlock()

		select {
		case <-time.After(k.cfg.restartDelay):
		case <-k.done:
			return
		}

		k.mu.Lock()
		if !k.shuttingDown {
			p.ready = make(chan struct{})
			if err := k.startLocked(p); err != nil {
				k.cfg.logger.Error("respawn failed", "id", p.ID, "error", err.Error())
				p.Status = StatusFailed
				p.closeExited()
			}
		}
		k.mu.Unlock()
		return
	}
}

// Kill disables restart, signals the owned child and awaits its exit.
// Externally monitored records are not the kernel's to kill; a warning is
// logged and nothing happens.
func (k *Kernel) Kill(id string, sig os.Signal) error {
	k.mu.Lock()
	p, ok := k.processes[id]
	if !ok {
		k.mu.Unlock()
		return fmt.Errorf("unknown process id %q", id)
	}
	if !p.Owned() {
		k.mu.Unlock()
		k.cfg.logger.Warn("kill ignored for externally monitored process", "id", id)
		return nil
	}
	p.AutoRestart = false
	p.killed = true
	cmd := p.cmd
	exited := p.exited
	k.mu.Unlock()

	if err := cmd.Process.Signal(sig); err != nil && !strings.Contains(err.Error(), "already finished") {
		return fmt.Errorf("signal %s: %w", id, err)
	}
	<-exited
	return nil
}

// Shutdown SIGTERMs every owned running child concurrently, SIGKILLs any
// still alive after the grace period, and marks the kernel stopped.
func (k *Kernel) Shutdown(ctx context.Context) error {
	k.mu.Lock()
	if k.shuttingDown {
		k.mu.Unlock()
		return nil
	}
	k.shuttingDown = true
	victims := make([]*Process, 0, len(k.processes))
	for _, p := range k.processes {
		if p.Owned() && p.Status == StatusRunning {
			victims = append(victims, p)
		}
	}
	k.mu.Unlock()

	var g errgroup.Group
	for _, p := range victims {
		p := p
		g.Go(func() error {
			if err := p.cmd.Process.Signal(shutdownSignal); err != nil {
				p.closeExited()
				return nil
			}
			select {
			case <-p.exited:
			case <-time.After(k.cfg.gracePeriod):
				k.cfg.logger.Warn("grace period elapsed, killing", "id", p.ID, "pid", p.PID)
				p.cmd.Process.Kill() //nolint:errcheck
				select {
				case <-p.exited:
				case <-ctx.Done():
					return ctx.Err()
				}
			case <-ctx.Done():
				return ctx.Err()
			}
			return nil
		})
	}
	err := g.Wait()
	close(k.done)
	k.cfg.logger.Info("All processes stopped")
	return err
}

// listenerPID finds the PID listening on the given TCP port, or 0.
func (k *Kernel) listenerPID(port int) int {
	if k.cfg.portProbe != nil {
		return k.cfg.portProbe(port)
	}
	conns, err := gnet.Connections("tcp")
	if err != nil {
		return 0
	}
	for _, c := range conns {
		if c.Status == "LISTEN" && c.Laddr.Port == uint32(port) {
			return int(c.Pid)
		}
	}
	return 0
}

// closeOnce closes ch unless it is already closed. Used for the ready
// channel, whose writers all hold k.mu; the exit channel has its own
// lock-free Process.closeExited.
func closeOnce(ch chan struct{}) {
	select {
	case <-ch:
	default:
		close(ch)
	}
}

func mergeEnv(base []string, extra map[string]string) []string {
	if len(extra) == 0 {
		return base
	}
	out := make([]string, len(base), len(base)+len(extra))
	copy(out, base)
	for k, v := range extra {
		out = append(out, k+"="+v)
	}
	return out
}
