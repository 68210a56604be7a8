package adapter

import (
	"sync"
	"time"
)

// Telemetry is a point-in-time snapshot of a connection's request counters.
type Telemetry struct {
	TotalRequests int64   `json:"total_requests"`
	SuccessCount  int64   `json:"success_count"`
	FailureCount  int64   `json:"failure_count"`
	AvgLatencyMs  float64 `json:"avg_latency_ms"`
	LastStatus    string  `json:"last_status,omitempty"`
}

// telemetryRecorder accumulates request outcomes. Safe for concurrent use.
type telemetryRecorder struct {
	mu      sync.Mutex
	total   int64
	success int64
	failure int64
	sumMs   int64
	last    string
}

func (t *telemetryRecorder) record(start time.Time, ok bool, status string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.total++
	if ok {
		t.success++
	} else {
		t.failure++
	}
	t.sumMs += time.Since(start).Milliseconds()
	t.last = status
}

func (t *telemetryRecorder) snapshot() Telemetry {
	t.mu.Lock()
	defer t.mu.Unlock()
	snap := Telemetry{
		TotalRequests: t.total,
		SuccessCount:  t.success,
		FailureCount:  t.failure,
		LastStatus:    t.last,
	}
	if t.total > 0 {
		snap.AvgLatencyMs = float64(t.sumMs) / float64(t.total)
	}
	return snap
}
