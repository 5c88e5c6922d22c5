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
	"context"
	"os"
	"os/exec"
	"syscall"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// shell builds kernels whose "scripts" are /bin/sh -c one-liners.
func shell(opts ...Option) *Kernel {
	base := []Option{
		WithRestartDelay(20 * time.Millisecond),
		WithMonitorInterval(20 * time.Millisecond),
		WithGracePeriod(time.Second),
		WithCommand(func(script string, argv []string) *exec.Cmd {
			return exec.Command("/bin/sh", "-c", script)
		}),
	}
	return New(append(base, opts...)...)
}

func TestSpawnResolvesReadiness(t *testing.T) {
	k := shell()
	p, err := k.Spawn("web", "Web", "echo SERVER_READY; sleep 60", nil, SpawnOptions{})
	require.NoError(t, err)
	defer k.Shutdown(context.Background())

	select {
	case <-p.Ready():
	case <-time.After(2 * time.Second):
		t.Fatal("readiness token not observed")
	}

	snap, ok := k.Get("web")
	require.True(t, ok)
	assert.Equal(t, StatusRunning, snap.Status)
	assert.NotZero(t, snap.PID)
	assert.False(t, snap.External)
}

func TestDuplicateIDRejected(t *testing.T) {
	k := shell()
	_, err := k.Spawn("web", "Web", "sleep 60", nil, SpawnOptions{})
	require.NoError(t, err)
	defer k.Shutdown(context.Background())

	_, err = k.Spawn("web", "Web", "sleep 60", nil, SpawnOptions{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already registered")
}

func TestCleanExitDoesNotRestart(t *testing.T) {
	k := shell()
	p, err := k.Spawn("oneshot", "One Shot", "exit 0", nil, SpawnOptions{AutoRestart: true})
	require.NoError(t, err)

	select {
	case <-p.Exited():
	case <-time.After(2 * time.Second):
		t.Fatal("process did not exit")
	}

	snap, _ := k.Get("oneshot")
	assert.Equal(t, StatusStopped, snap.Status)
	assert.Zero(t, snap.RestartCount)
}

func TestCrashTriggersRestart(t *testing.T) {
	k := shell()
	_, err := k.Spawn("crashy", "Crashy", "exit 1", nil, SpawnOptions{AutoRestart: true})
	require.NoError(t, err)

	require.Eventually(t, func() bool {
		snap, _ := k.Get("crashy")
		return snap.RestartCount >= 2
	}, 3*time.Second, 10*time.Millisecond)

	require.NoError(t, k.Shutdown(context.Background()))
}

func TestKillStopsAndDisablesRestart(t *testing.T) {
	k := shell()
	_, err := k.Spawn("web", "Web", "sleep 60", nil, SpawnOptions{AutoRestart: true})
	require.NoError(t, err)

	require.NoError(t, k.Kill("web", syscall.SIGTERM))

	snap, _ := k.Get("web")
	assert.Equal(t, StatusStopped, snap.Status)
	assert.False(t, snap.AutoRestart)
	assert.Zero(t, snap.RestartCount)
}

func TestPortTakeoverMonitorsExternalPID(t *testing.T) {
	k := shell(WithPortProbe(func(port int) int { return 999999 }))

	p, err := k.Spawn("http-server", "HTTP Server", "echo SERVER_READY; sleep 60", nil, SpawnOptions{
		Port:        9000,
		AutoRestart: true,
	})
	require.NoError(t, err)

	snap, _ := k.Get("http-server")
	assert.Equal(t, 999999, snap.PID)
	assert.Equal(t, StatusRunning, snap.Status)
	assert.True(t, snap.External)
	assert.False(t, snap.AutoRestart, "takeover forces autoRestart off")

	select {
	case <-p.Ready():
	default:
		t.Fatal("adopted process should be ready immediately")
	}

	// PID 999999 does not exist, so the liveness poll marks it stopped.
	require.Eventually(t, func() bool {
		snap, _ := k.Get("http-server")
		return snap.Status == StatusStopped
	}, 2*time.Second, 10*time.Millisecond)

	// autoRestart is off; no owned child appears.
	snap, _ = k.Get("http-server")
	assert.True(t, snap.External)
}

func TestKillExternalIsNoOp(t *testing.T) {
	k := shell(WithPortProbe(func(port int) int { return 999999 }))
	_, err := k.Spawn("http-server", "HTTP Server", "sleep 60", nil, SpawnOptions{Port: 9000})
	require.NoError(t, err)

	require.NoError(t, k.Kill("http-server", syscall.SIGTERM))

	snap, _ := k.Get("http-server")
	assert.True(t, snap.External)
}

func TestShutdownStopsAllChildren(t *testing.T) {
	k := shell()
	_, err := k.Spawn("a", "A", "sleep 60", nil, SpawnOptions{AutoRestart: true})
	require.NoError(t, err)
	_, err = k.Spawn("b", "B", "sleep 60", nil, SpawnOptions{AutoRestart: true})
	require.NoError(t, err)

	start := time.Now()
	require.NoError(t, k.Shutdown(context.Background()))
	assert.Less(t, time.Since(start), 3*time.Second)

	for _, id := range []string{"a", "b"} {
		snap, _ := k.Get(id)
		assert.Equal(t, StatusStopped, snap.Status, id)
	}

	_, err = k.Spawn("late", "Late", "sleep 1", nil, SpawnOptions{})
	assert.Error(t, err, "spawn after shutdown is rejected")
}

func TestSigtermIgnoringChildGetsKilled(t *testing.T) {
	k := shell(WithGracePeriod(100 * time.Millisecond))
	_, err := k.Spawn("stubborn", "Stubborn", "trap '' TERM; sleep 60", nil, SpawnOptions{})
	require.NoError(t, err)

	// Give the shell a moment to install its trap.
	time.Sleep(100 * time.Millisecond)

	start := time.Now()
	require.NoError(t, k.Shutdown(context.Background()))
	assert.Less(t, time.Since(start), 3*time.Second, "SIGKILL escalation bounded the wait")
}

func TestChildEnvMerge(t *testing.T) {
	k := shell()
	p, err := k.Spawn("env", "Env", "echo value=$GENESIS_TEST_VALUE; echo SERVER_READY; sleep 60", nil, SpawnOptions{
		Env: map[string]string{"GENESIS_TEST_VALUE": "42"},
	})
	require.NoError(t, err)
	defer k.Shutdown(context.Background())

	select {
	case <-p.Ready():
	case <-time.After(2 * time.Second):
		t.Fatal("child did not start")
	}
}

func TestGoroutinePanicReportedBeforeExit(t *testing.T) {
	wd, wdErr := os.Getwd()
	require.NoError(t, wdErr)
	require.NoError(t, os.Chdir(t.TempDir()))
	t.Cleanup(func() { _ = os.Chdir(wd) })

	exitCodes := make(chan int, 1)
	orig := exitFunc
	exitFunc = func(code int) { exitCodes <- code }
	defer func() { exitFunc = orig }()

	reported := make(chan map[string]any, 1)
	k := shell(
		WithHeartbeatFilter(func(line string) bool { panic("filter blew up") }),
		WithUncaughtReporter(func(record map[string]any) { reported <- record }),
	)
	_, err := k.Spawn(HeartbeatID, "Heartbeat Monitor", "echo heartbeat tick; sleep 60", nil, SpawnOptions{})
	require.NoError(t, err)
	defer k.Shutdown(context.Background())

	select {
	case record := <-reported:
		assert.Equal(t, "UNCAUGHT_EXCEPTION", record["type"])
		assert.Contains(t, record["message"], "filter blew up")
	case <-time.After(2 * time.Second):
		t.Fatal("panic in supervisor goroutine was not reported")
	}

	select {
	case code := <-exitCodes:
		assert.Equal(t, 1, code)
	case <-time.After(2 * time.Second):
		t.Fatal("exit hook not invoked")
	}
}

func TestExitChannelClosesOnce(t *testing.T) {
	// The exit watcher and Shutdown can both report the same termination.
	p := &Process{exited: make(chan struct{})}
	p.closeExited()
	assert.NotPanics(t, func() { p.closeExited() })

	select {
	case <-p.Exited():
	default:
		t.Fatal("exit channel not closed")
	}
}

func TestHeartbeatFilter(t *testing.T) {
	assert.False(t, defaultHeartbeatFilter("heartbeat: mem=12MB cpu=3%"))
	assert.True(t, defaultHeartbeatFilter("heartbeat monitor ALERT: server unreachable"))
	assert.True(t, defaultHeartbeatFilter("starting heartbeat monitor"))
}
