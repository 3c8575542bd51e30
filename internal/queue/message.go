package queue

import (
	"container/heap"
	"time"

	"github.com/google/uuid"
)

// Message is a unit of work held by a Queue.
//
// Exactly one of Payload and Callback is meaningful: messages created with
// Post carry a Callback and a nil Payload, messages created with Enqueue carry
// a Payload and a nil Callback.
type Message struct {
	// ID identifies the message in logs and failure reports.
	ID uuid.UUID

	// Payload is the opaque data handed to the dispatcher's handler.
	Payload any

	// Callback is run directly by the dispatcher instead of the handler.
	Callback func()

	// Due is the time at which the message becomes eligible for dispatch.
	Due time.Time

	// Seq orders messages with equal Due times.
	Seq uint64
}

// IsCallback reports whether the message carries a callable.
func (m *Message) IsCallback() bool {
	return m.Callback != nil
}

// before reports whether m is dispatched ahead of other.
func (m *Message) before(other *Message) bool {
	if m.Due.Equal(other.Due) {
		return m.Seq < other.Seq
	}
	return m.Due.Before(other.Due)
}

// messageHeap is a min-heap of messages ordered by (Due, Seq).
// It is not safe for concurrent use; Queue guards it.
type messageHeap []*Message

func (h messageHeap) Len() int           { return len(h) }
func (h messageHeap) Less(i, j int) bool { return h[i].before(h[j]) }
func (h messageHeap) Swap(i, j int)      { h[i], h[j] = h[j], h[i] }

func (h *messageHeap) Push(x any) {
	*h = append(*h, x.(*Message))
}

func (h *messageHeap) Pop() any {
	old := *h
	n := len(old)
	m := old[n-1]
	old[n-1] = nil
	*h = old[:n-1]
	return m
}

func (h *messageHeap) push(m *Message) {
	heap.Push(h, m)
}

func (h *messageHeap) pop() *Message {
	return heap.Pop(h).(*Message)
}

func (h messageHeap) peek() *Message {
	if len(h) == 0 {
		return nil
	}
	return h[0]
}

// clear drops every message and returns how many there were.
func (h *messageHeap) clear() int {
	n := len(*h)
	for i := range *h {
		(*h)[i] = nil
	}
	*h = (*h)[:0]
	return n
}
