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

// Package metrics tracks per-endpoint request performance in bounded rings
// and answers aggregate queries (count, min, max, avg, p95) from the
// retained window. A middleware feeds the monitor and a handler serves the
// aggregates plus a process memory snapshot on /metrics.
package metrics

import (
	"net/http"
	"os"
	"sort"
	"sync"
	"time"

	"github.com/shirou/gopsutil/v3/process"

	"genesis.dev/genesis/errors"
	"genesis.dev/genesis/router"
)

// DefaultRingSize bounds how many samples each endpoint retains.
const DefaultRingSize = 1000

// Sample is one completed request observation.
type Sample struct {
	Endpoint   string
	Method     string
	DurationMs float64
	Status     int
	Timestamp  time.Time
}

// EndpointMetrics aggregates the retained samples for one endpoint.
type EndpointMetrics struct {
	Endpoint string  `json:"endpoint"`
	Method   string  `json:"method"`
	Count    int     `json:"count"`
	MinMs    float64 `json:"minMs"`
	MaxMs    float64 `json:"maxMs"`
	AvgMs    float64 `json:"avgMs"`
	P95Ms    float64 `json:"p95Ms"`
}

type ring struct {
	samples []Sample
	next    int
	filled  bool
	total   int // lifetime count, survives ring eviction
}

// Monitor records request samples per method+endpoint pair.
// Safe for concurrent use.
type Monitor struct {
	mu       sync.Mutex
	rings    map[string]*ring
	ringSize int
}

// Option defines functional options for Monitor configuration.
type Option func(*Monitor)

// WithRingSize overrides how many samples each endpoint retains.
func WithRingSize(n int) Option {
	return func(m *Monitor) {
		if n > 0 {
			m.ringSize = n
		}
	}
}

// NewMonitor creates an empty monitor.
func NewMonitor(opts ...Option) *Monitor {
	m := &Monitor{rings: make(map[string]*ring), ringSize: DefaultRingSize}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Record appends one observation to the endpoint's ring, evicting the
// oldest when full.
func (m *Monitor) Record(endpoint, method string, durationMs float64, status int) {
	m.mu.Lock()
	defer m.mu.Unlock()

	key := method + " " + endpoint
	r, ok := m.rings[key]
	if !ok {
		r = &ring{samples: make([]Sample, m.ringSize)}
		m.rings[key] = r
	}
	r.samples[r.next] = Sample{
		Endpoint:   endpoint,
		Method:     method,
		DurationMs: durationMs,
		Status:     status,
		Timestamp:  time.Now(),
	}
	r.next++
	if r.next == len(r.samples) {
		r.next = 0
		r.filled = true
	}
	r.total++
}

// Metrics returns a snapshot of the aggregates for every endpoint, sorted
// by "METHOD endpoint" key for stable output.
func (m *Monitor) Metrics() []EndpointMetrics {
	m.mu.Lock()
	defer m.mu.Unlock()

	keys := make([]string, 0, len(m.rings))
	for key := range m.rings {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	out := make([]EndpointMetrics, 0, len(keys))
	for _, key := range keys {
		r := m.rings[key]
		window := r.window()
		if len(window) == 0 {
			continue
		}

		durations := make([]float64, len(window))
		min, max, sum := window[0].DurationMs, window[0].DurationMs, 0.0
		for i, s := range window {
			durations[i] = s.DurationMs
			if s.DurationMs < min {
				min = s.DurationMs
			}
			if s.DurationMs > max {
				max = s.DurationMs
			}
			sum += s.DurationMs
		}
		sort.Float64s(durations)

		out = append(out, EndpointMetrics{
			Endpoint: window[0].Endpoint,
			Method:   window[0].Method,
			Count:    r.total,
			MinMs:    min,
			MaxMs:    max,
			AvgMs:    sum / float64(len(window)),
			P95Ms:    percentile(durations, 0.95),
		})
	}
	return out
}

// Reset drops all recorded samples.
func (m *Monitor) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rings = make(map[string]*ring)
}

func (r *ring) window() []Sample {
	if !r.filled {
		return r.samples[:r.next]
	}
	return r.samples
}

// percentile reads the nearest-rank percentile from sorted values.
func percentile(sorted []float64, p float64) float64 {
	if len(sorted) == 0 {
		return 0
	}
	rank := int(p*float64(len(sorted))+0.5) - 1
	if rank < 0 {
		rank = 0
	}
	if rank >= len(sorted) {
		rank = len(sorted) - 1
	}
	return sorted[rank]
}

// Middleware measures every request and records it against the matched
// route pattern, falling back to the raw path for unmatched requests.
func (m *Monitor) Middleware() router.HandlerFunc {
	return func(c *router.Context) {
		start := time.Now()
		c.Next()
		endpoint := c.Pattern()
		if endpoint == "" {
			endpoint = c.Request.URL.Path
		}
		// Errors are rendered by the error handler after this unwind; the
		// sample must carry the status they will map to, not the staged 200.
		status := c.StagedStatus()
		if !c.Committed() {
			if mapped, ok := errors.HTTPStatusFor(c.Errors()); ok {
				status = mapped
			}
		}
		m.Record(endpoint, c.Request.Method,
			float64(time.Since(start).Microseconds())/1000, status)
	}
}

// Handler serves the aggregate metrics plus a process memory snapshot.
// Mount it wherever the deployment expects its metrics endpoint:
//
//	monitor := metrics.NewMonitor()
//	r.Use(monitor.Middleware())
//	r.GET("/metrics", monitor.Handler())
func (m *Monitor) Handler() router.HandlerFunc {
	return func(c *router.Context) {
		c.JSON(http.StatusOK, map[string]any{
			"endpoints": m.Metrics(),
			"memory":    memorySnapshot(),
			"timestamp": time.Now().UTC().Format(time.RFC3339),
		})
	}
}

// memorySnapshot reads the current process RSS/VMS via gopsutil. Degrades
// to an empty map when the platform has no process stats.
func memorySnapshot() map[string]any {
	proc, err := process.NewProcess(int32(os.Getpid()))
	if err != nil {
		return map[string]any{}
	}
	info, err := proc.MemoryInfo()
	if err != nil || info == nil {
		return map[string]any{}
	}
	return map[string]any{
		"rssBytes": info.RSS,
		"vmsBytes": info.VMS,
	}
}
