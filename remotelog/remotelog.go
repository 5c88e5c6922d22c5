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

package remotelog

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/sony/gobreaker"

	"genesis.dev/genesis/logging"
)

// Destination describes one remote collector.
type Destination struct {
	Name          string
	URL           string
	APIKey        string
	Headers       map[string]string
	Method        string        // default POST
	Timeout       time.Duration // per attempt, default 10s
	RetryAttempts int           // total attempts, default 3
	RetryDelay    time.Duration // backoff base, default 1s
}

// Health summarises delivery statistics for one destination.
type Health struct {
	Batches      int     `json:"batches"`
	Successes    int     `json:"successes"`
	Failures     int     `json:"failures"`
	AvgLatencyMs float64 `json:"avgLatencyMs"`
	Healthy      bool    `json:"healthy"`
}

// Transformer builds the request payload from a batch of entries. The
// default payload is {"version","timestamp","count","logs"}.
type Transformer func(entries []logging.Entry) any

type destination struct {
	Destination
	breaker *gobreaker.CircuitBreaker
	sendMu  sync.Mutex // one concurrent batch per destination

	statsMu      sync.Mutex
	batches      int
	successes    int
	failures     int
	totalLatency time.Duration
}

// Sink batches entries and ships them to all configured destinations.
type Sink struct {
	cfg    *config
	client *http.Client

	mu    sync.Mutex
	buf   []logging.Entry
	dests []*destination

	wg   sync.WaitGroup
	done chan struct{}
	once sync.Once
}

// NewSink creates a sink and starts its flush timer.
func NewSink(opts ...Option) *Sink {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(cfg)
	}
	s := &Sink{
		cfg:    cfg,
		client: cfg.client,
		done:   make(chan struct{}),
	}
	for _, d := range cfg.destinations {
		s.dests = append(s.dests, newDestination(d, cfg))
	}

	s.wg.Add(1)
	go s.loop()
	return s
}

func newDestination(d Destination, cfg *config) *destination {
	if d.Method == "" {
		d.Method = http.MethodPost
	}
	if d.Timeout <= 0 {
		d.Timeout = 10 * time.Second
	}
	if d.RetryAttempts <= 0 {
		d.RetryAttempts = 3
	}
	if d.RetryDelay <= 0 {
		d.RetryDelay = time.Second
	}
	threshold := cfg.breakerThreshold
	return &destination{
		Destination: d,
		breaker: gobreaker.NewCircuitBreaker(gobreaker.Settings{
			Name:        d.Name,
			MaxRequests: 1, // half-open allows a single probe
			Timeout:     cfg.breakerTimeout,
			ReadyToTrip: func(counts gobreaker.Counts) bool {
				return counts.ConsecutiveFailures >= uint32(threshold)
			},
		}),
	}
}

// Enqueue buffers one entry, flushing when the batch size is reached.
// Intended as a logging sink: logging.WithSink(sink.Enqueue).
func (s *Sink) Enqueue(e logging.Entry) {
	s.mu.Lock()
	s.buf = append(s.buf, e)
	full := len(s.buf) >= s.cfg.batchSize
	s.mu.Unlock()
	if full {
		s.Flush()
	}
}

// Flush sends the buffered entries to every destination, one concurrent
// batch per destination. Returns immediately; delivery is asynchronous.
func (s *Sink) Flush() {
	s.mu.Lock()
	if len(s.buf) == 0 {
		s.mu.Unlock()
		return
	}
	batch := s.buf
	s.buf = nil
	s.mu.Unlock()

	for _, d := range s.dests {
		s.wg.Add(1)
		go func(d *destination) {
			defer s.wg.Done()
			d.sendMu.Lock()
			defer d.sendMu.Unlock()
			s.send(d, batch)
		}(d)
	}
}

// Close flushes once more and waits for in-flight deliveries.
func (s *Sink) Close() {
	s.once.Do(func() { close(s.done) })
	s.Flush()
	s.wg.Wait()
}

// HealthStats reports per-destination delivery statistics keyed by name.
func (s *Sink) HealthStats() map[string]Health {
	out := make(map[string]Health, len(s.dests))
	for _, d := range s.dests {
		d.statsMu.Lock()
		h := Health{
			Batches:   d.batches,
			Successes: d.successes,
			Failures:  d.failures,
		}
		if d.successes > 0 {
			h.AvgLatencyMs = float64(d.totalLatency.Milliseconds()) / float64(d.successes)
		}
		h.Healthy = d.batches == 0 || float64(d.failures)/float64(d.batches) < 0.5
		d.statsMu.Unlock()
		out[d.Name] = h
	}
	return out
}

func (s *Sink) loop() {
	defer s.wg.Done()
	ticker := time.NewTicker(s.cfg.flushInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			s.Flush()
		case <-s.done:
			return
		}
	}
}

func (s *Sink) send(d *destination, batch []logging.Entry) {
	payload := s.cfg.transformer(batch)
	body, err := json.Marshal(payload)
	if err != nil {
		d.recordFailure()
		return
	}

	start := time.Now()
	_, err = d.breaker.Execute(func() (any, error) {
		bo := backoff.NewExponentialBackOff()
		bo.InitialInterval = d.RetryDelay
		bo.MaxInterval = 30 * time.Second
		bo.MaxElapsedTime = 0
		return nil, backoff.Retry(func() error {
			return s.attempt(d, body)
		}, backoff.WithMaxRetries(bo, uint64(d.RetryAttempts-1)))
	})

	if err != nil {
		d.recordFailure()
		return
	}
	d.recordSuccess(time.Since(start))
}

func (s *Sink) attempt(d *destination, body []byte) error {
	ctx, cancel := context.WithTimeout(context.Background(), d.Timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, d.Method, d.URL, bytes.NewReader(body))
	if err != nil {
		return backoff.Permanent(err)
	}
	req.Header.Set("Content-Type", "application/json")
	if d.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+d.APIKey)
	}
	for k, v := range d.Headers {
		req.Header.Set(k, v)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 400 {
		return fmt.Errorf("remote log destination %s: status %d", d.Name, resp.StatusCode)
	}
	return nil
}

func (d *destination) recordSuccess(latency time.Duration) {
	d.statsMu.Lock()
	d.batches++
	d.successes++
	d.totalLatency += latency
	d.statsMu.Unlock()
}

func (d *destination) recordFailure() {
	d.statsMu.Lock()
	d.batches++
	d.failures++
	d.statsMu.Unlock()
}

// defaultTransformer wraps entries in the standard envelope.
func defaultTransformer(entries []logging.Entry) any {
	logs := make([]map[string]any, len(entries))
	for i, e := range entries {
		logs[i] = map[string]any{
			"timestamp": e.Time.UTC().Format(time.RFC3339),
			"level":     e.Level.String(),
			"message":   e.Message,
			"meta":      e.Attrs,
		}
	}
	return map[string]any{
		"version":   "1.0",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"count":     len(entries),
		"logs":      logs,
	}
}
