package queue

import "errors"

// Sentinel errors for the queue package.
var (
	// ErrRejected is returned when a message is enqueued after Quit.
	ErrRejected = errors.New("queue is quitting, message rejected")

	// ErrNilCallback is returned when Post is called with a nil function.
	ErrNilCallback = errors.New("callback must not be nil")
)
