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

package errors

import (
	"maps"
	"sort"
	"sync"
	"time"
)

// recentCapacity bounds the ring buffer of recent error events.
const recentCapacity = 100

// Event is one recorded error occurrence.
type Event struct {
	Type      string    `json:"type"`
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
	RequestID string    `json:"requestId,omitempty"`
	IP        string    `json:"ip,omitempty"`
}

// TypeCount pairs an error type name with its occurrence count.
type TypeCount struct {
	Type  string `json:"type"`
	Count int    `json:"count"`
}

// Report is a snapshot of the analytics state.
type Report struct {
	Total     int            `json:"total"`
	Last24h   int            `json:"last24h"`
	ByType    map[string]int `json:"byType"`
	Top       []TypeCount    `json:"top"`
	Recent    []Event        `json:"recent"`
	Insights  []string       `json:"insights"`
	Generated time.Time      `json:"generated"`
}

// Analytics tracks error occurrences process-wide: a count per error type
// and a bounded ring of the most recent events.
//
// Writes come from the error-handler middleware and the kernel's
// uncaught-error hooks; a mutex keeps the single-writer discipline under
// real threads. State is initialized at process start and never cleared
// automatically; Reset exists as an explicit teardown hook.
type Analytics struct {
	mu     sync.Mutex
	counts map[string]int
	recent [recentCapacity]Event
	next   int // next write position in the ring
	filled int // number of valid entries, up to recentCapacity
	total  int
}

// DefaultAnalytics is the process-wide analytics singleton.
var DefaultAnalytics = NewAnalytics()

// NewAnalytics creates an empty analytics store.
func NewAnalytics() *Analytics {
	return &Analytics{counts: make(map[string]int)}
}

// Record registers one occurrence of err.
func (a *Analytics) Record(err *Error, requestID, ip string) {
	a.mu.Lock()
	defer a.mu.Unlock()

	name := err.Name()
	a.counts[name]++
	a.total++
	a.recent[a.next] = Event{
		Type:      name,
		Message:   err.Message,
		Timestamp: err.Timestamp,
		RequestID: requestID,
		IP:        ip,
	}
	a.next = (a.next + 1) % recentCapacity
	if a.filled < recentCapacity {
		a.filled++
	}
}

// Total returns the number of recorded errors since process start.
func (a *Analytics) Total() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.total
}

// CountsByType returns a copy of the per-type occurrence counts.
func (a *Analytics) CountsByType() map[string]int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return maps.Clone(a.counts)
}

// Recent returns up to n of the most recent events, newest last.
func (a *Analytics) Recent(n int) []Event {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.recentLocked(n)
}

func (a *Analytics) recentLocked(n int) []Event {
	if n > a.filled {
		n = a.filled
	}
	out := make([]Event, 0, n)
	for i := a.filled - n; i < a.filled; i++ {
		// Oldest entry sits at a.next when the ring has wrapped.
		idx := i
		if a.filled == recentCapacity {
			idx = (a.next + i) % recentCapacity
		}
		out = append(out, a.recent[idx])
	}
	return out
}

// Report builds a full snapshot: totals, counts, top-5 types, the 10 most
// recent events and rule-based insights.
func (a *Analytics) Report() Report {
	a.mu.Lock()
	defer a.mu.Unlock()

	r := Report{
		Total:     a.total,
		ByType:    maps.Clone(a.counts),
		Top:       a.topLocked(5),
		Recent:    a.recentLocked(10),
		Generated: time.Now(),
	}
	cutoff := time.Now().Add(-24 * time.Hour)
	for i := 0; i < a.filled; i++ {
		if a.recent[i].Timestamp.After(cutoff) {
			r.Last24h++
		}
	}
	r.Insights = a.insightsLocked(r.Last24h)
	return r
}

func (a *Analytics) topLocked(n int) []TypeCount {
	top := make([]TypeCount, 0, len(a.counts))
	for name, count := range a.counts {
		top = append(top, TypeCount{Type: name, Count: count})
	}
	sort.Slice(top, func(i, j int) bool {
		if top[i].Count != top[j].Count {
			return top[i].Count > top[j].Count
		}
		return top[i].Type < top[j].Type
	})
	if len(top) > n {
		top = top[:n]
	}
	return top
}

// insightsLocked applies the fixed insight rules against current counts.
func (a *Analytics) insightsLocked(last24h int) []string {
	var insights []string
	if last24h > 50 {
		insights = append(insights, "high error rate: more than 50 errors in the last 24 hours")
	}
	if a.total > 0 {
		auth := a.counts[KindAuthentication.String()] + a.counts[KindAuthorization.String()]
		if float64(auth)/float64(a.total) > 0.3 {
			insights = append(insights, "auth issues: authentication/authorization errors exceed 30% of total")
		}
		if float64(a.counts[KindValidation.String()])/float64(a.total) > 0.4 {
			insights = append(insights, "validation issues: validation errors exceed 40% of total")
		}
	}
	if a.counts[KindDatabase.String()] > 0 {
		insights = append(insights, "database issues: database errors observed")
	}
	return insights
}

// Reset clears all analytics state. Intended for tests and process teardown.
func (a *Analytics) Reset() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.counts = make(map[string]int)
	a.next = 0
	a.filled = 0
	a.total = 0
}
