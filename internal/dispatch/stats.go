package dispatch

import (
	"sync/atomic"
	"time"
)

// counters holds the dispatcher's running totals.
type counters struct {
	enqueued   atomic.Uint64
	rejected   atomic.Uint64
	dispatched atomic.Uint64
	succeeded  atomic.Uint64
	failed     atomic.Uint64
	panicked   atomic.Uint64
	discarded  atomic.Uint64
	totalTime  atomic.Int64
}

func (c *counters) record(r Result) {
	c.dispatched.Add(1)
	c.totalTime.Add(int64(r.Duration))

	switch {
	case r.IsPanic():
		c.panicked.Add(1)
	case r.IsError():
		c.failed.Add(1)
	default:
		c.succeeded.Add(1)
	}
}

// Stats is a snapshot of dispatcher statistics.
type Stats struct {
	// Enqueued counts messages accepted by Enqueue, EnqueueAt, Post and PostAt.
	Enqueued uint64

	// Rejected counts messages refused because the dispatcher was quitting.
	Rejected uint64

	// Dispatched counts messages that were run, whatever the outcome.
	Dispatched uint64

	Succeeded uint64
	Failed    uint64
	Panicked  uint64

	// Discarded counts pending messages dropped by Quit(false).
	Discarded uint64

	// Pending is the number of messages still queued.
	Pending int

	TotalDuration time.Duration
	AvgDuration   time.Duration

	State State
}

// Stats returns a snapshot of the dispatcher's statistics.
func (d *Dispatcher) Stats() Stats {
	s := Stats{
		Enqueued:      d.stats.enqueued.Load(),
		Rejected:      d.stats.rejected.Load(),
		Dispatched:    d.stats.dispatched.Load(),
		Succeeded:     d.stats.succeeded.Load(),
		Failed:        d.stats.failed.Load(),
		Panicked:      d.stats.panicked.Load(),
		Discarded:     d.stats.discarded.Load(),
		Pending:       d.queue.Len(),
		TotalDuration: time.Duration(d.stats.totalTime.Load()),
		State:         d.State(),
	}
	if s.Dispatched > 0 {
		s.AvgDuration = s.TotalDuration / time.Duration(s.Dispatched)
	}
	return s
}
