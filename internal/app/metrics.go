package app

import (
	"sync/atomic"
	"time"
)

// Metrics tracks demo performance metrics.
type Metrics struct {
	// Hand-off latency: worker hand-off call to wake-up on the UI goroutine
	handoffCount   atomic.Uint64
	handoffTotalNs atomic.Int64
	handoffMinNs   atomic.Int64
	handoffMaxNs   atomic.Int64
	lastHandoffNs  atomic.Int64

	// Input handling
	inputCount   atomic.Uint64
	inputDropped atomic.Uint64

	// Render timing
	renderCount   atomic.Uint64
	renderTotalNs atomic.Int64

	// Start time for uptime calculation
	startTime time.Time
}

// NewMetrics creates a new metrics tracker.
func NewMetrics() *Metrics {
	m := &Metrics{
		startTime: time.Now(),
	}
	// Initialize min to max int64 so the first hand-off will be smaller
	m.handoffMinNs.Store(1<<63 - 1)
	return m
}

// RecordHandoff records how long a wake-up waited between the worker's
// hand-off and its execution on the UI goroutine.
func (m *Metrics) RecordHandoff(latency time.Duration) {
	ns := latency.Nanoseconds()

	m.handoffCount.Add(1)
	m.handoffTotalNs.Add(ns)
	m.lastHandoffNs.Store(ns)

	for {
		old := m.handoffMinNs.Load()
		if ns >= old {
			break
		}
		if m.handoffMinNs.CompareAndSwap(old, ns) {
			break
		}
	}

	for {
		old := m.handoffMaxNs.Load()
		if ns <= old {
			break
		}
		if m.handoffMaxNs.CompareAndSwap(old, ns) {
			break
		}
	}
}

// RecordInput records a forwarded input event.
func (m *Metrics) RecordInput() {
	m.inputCount.Add(1)
}

// RecordInputDropped records an input event the UI dispatcher refused.
func (m *Metrics) RecordInputDropped() {
	m.inputDropped.Add(1)
}

// RecordRender records render timing.
func (m *Metrics) RecordRender(duration time.Duration) {
	m.renderCount.Add(1)
	m.renderTotalNs.Add(duration.Nanoseconds())
}

// Snapshot returns a snapshot of current metrics.
func (m *Metrics) Snapshot() MetricsSnapshot {
	handoffCount := m.handoffCount.Load()
	renderCount := m.renderCount.Load()

	var avgHandoffNs int64
	if handoffCount > 0 {
		avgHandoffNs = m.handoffTotalNs.Load() / int64(handoffCount)
	}

	var avgRenderNs int64
	if renderCount > 0 {
		avgRenderNs = m.renderTotalNs.Load() / int64(renderCount)
	}

	minHandoffNs := m.handoffMinNs.Load()
	if minHandoffNs == 1<<63-1 {
		minHandoffNs = 0
	}

	return MetricsSnapshot{
		Uptime:        time.Since(m.startTime),
		HandoffCount:  handoffCount,
		AvgHandoffNs:  avgHandoffNs,
		MinHandoffNs:  minHandoffNs,
		MaxHandoffNs:  m.handoffMaxNs.Load(),
		LastHandoffNs: m.lastHandoffNs.Load(),
		InputCount:    m.inputCount.Load(),
		InputDropped:  m.inputDropped.Load(),
		RenderCount:   renderCount,
		AvgRenderNs:   avgRenderNs,
	}
}

// MetricsSnapshot is a point-in-time view of metrics.
type MetricsSnapshot struct {
	Uptime        time.Duration
	HandoffCount  uint64
	AvgHandoffNs  int64
	MinHandoffNs  int64
	MaxHandoffNs  int64
	LastHandoffNs int64
	InputCount    uint64
	InputDropped  uint64
	RenderCount   uint64
	AvgRenderNs   int64
}

// AvgHandoff returns the average hand-off latency.
func (s MetricsSnapshot) AvgHandoff() time.Duration {
	return time.Duration(s.AvgHandoffNs)
}

// LastHandoff returns the most recent hand-off latency.
func (s MetricsSnapshot) LastHandoff() time.Duration {
	return time.Duration(s.LastHandoffNs)
}

// Timer provides a simple way to measure elapsed time.
type Timer struct {
	start time.Time
}

// StartTimer creates a new timer.
func StartTimer() *Timer {
	return &Timer{start: time.Now()}
}

// Elapsed returns the elapsed time since the timer started.
func (t *Timer) Elapsed() time.Duration {
	return time.Since(t.start)
}

// MinHandoff returns the fastest hand-off latency.
func (s MetricsSnapshot) MinHandoff() time.Duration {
	return time.Duration(s.MinHandoffNs)
}

// MaxHandoff returns the slowest hand-off latency.
func (s MetricsSnapshot) MaxHandoff() time.Duration {
	return time.Duration(s.MaxHandoffNs)
}

// AvgRender returns the average render time.
func (s MetricsSnapshot) AvgRender() time.Duration {
	return time.Duration(s.AvgRenderNs)
}
