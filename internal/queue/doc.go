// Package queue implements the time-ordered message queue that backs a
// dispatcher.
//
// A Queue holds messages for exactly one consumer. Producers on any goroutine
// call Enqueue or Post; the owning loop calls Next, which never blocks. When
// Next reports StatusWait or StatusEmpty the consumer waits on Wake (and on a
// timer for StatusWait) before polling again.
//
// Ordering is by due time, with ties broken by the sequence number assigned at
// enqueue time, so messages with equal due times are delivered first in,
// first out.
//
// # Quitting
//
// Quit(false) discards everything pending. Quit(true) keeps pending messages
// retrievable until the queue is empty. In both cases further enqueues fail
// with ErrRejected, and Next reports StatusDone once nothing is left.
package queue
