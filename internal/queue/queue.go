package queue

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
)

// Status describes the outcome of Next.
type Status int

const (
	// StatusReady means Poll.Message is due and has been removed from the queue.
	StatusReady Status = iota
	// StatusWait means messages are pending but none is due before Poll.WaitUntil.
	StatusWait
	// StatusEmpty means nothing is pending and the queue still accepts messages.
	StatusEmpty
	// StatusDone means the queue is quitting and has nothing left to deliver.
	StatusDone
)

// String returns the status name.
func (s Status) String() string {
	switch s {
	case StatusReady:
		return "ready"
	case StatusWait:
		return "wait"
	case StatusEmpty:
		return "empty"
	case StatusDone:
		return "done"
	default:
		return "unknown"
	}
}

// Poll is the result of Next.
type Poll struct {
	Status Status

	// Message is set when Status is StatusReady.
	Message *Message

	// WaitUntil is the earliest due time when Status is StatusWait.
	WaitUntil time.Time
}

// Queue is a goroutine-safe, time-ordered message queue with a single consumer.
type Queue struct {
	clock clockwork.Clock

	mu       sync.Mutex
	messages messageHeap
	nextSeq  uint64
	quitting bool

	wake chan struct{}
}

// Option configures a Queue.
type Option func(*Queue)

// WithClock sets the time source used to compute due times.
func WithClock(c clockwork.Clock) Option {
	return func(q *Queue) {
		if c != nil {
			q.clock = c
		}
	}
}

// New creates an empty queue.
func New(opts ...Option) *Queue {
	q := &Queue{
		clock:    clockwork.NewRealClock(),
		messages: make(messageHeap, 0, 16),
		wake:     make(chan struct{}, 1),
	}
	for _, opt := range opts {
		opt(q)
	}
	return q
}

// Clock returns the queue's time source.
func (q *Queue) Clock() clockwork.Clock {
	return q.clock
}

// Enqueue schedules payload for delivery after delay.
// A negative delay is treated as zero.
func (q *Queue) Enqueue(payload any, delay time.Duration) error {
	return q.insert(&Message{Payload: payload}, q.dueAfter(delay))
}

// EnqueueAt schedules payload for delivery at an absolute time.
func (q *Queue) EnqueueAt(payload any, at time.Time) error {
	return q.insert(&Message{Payload: payload}, at)
}

// Post schedules fn to run after delay.
func (q *Queue) Post(fn func(), delay time.Duration) error {
	if fn == nil {
		return ErrNilCallback
	}
	return q.insert(&Message{Callback: fn}, q.dueAfter(delay))
}

// PostAt schedules fn to run at an absolute time.
func (q *Queue) PostAt(fn func(), at time.Time) error {
	if fn == nil {
		return ErrNilCallback
	}
	return q.insert(&Message{Callback: fn}, at)
}

func (q *Queue) dueAfter(delay time.Duration) time.Time {
	if delay < 0 {
		delay = 0
	}
	return q.clock.Now().Add(delay)
}

func (q *Queue) insert(m *Message, due time.Time) error {
	m.ID = uuid.New()
	m.Due = due

	q.mu.Lock()
	if q.quitting {
		q.mu.Unlock()
		return ErrRejected
	}
	m.Seq = q.nextSeq
	q.nextSeq++
	q.messages.push(m)
	q.mu.Unlock()

	q.signal()
	return nil
}

// Next removes and returns the earliest message if it is due.
// It never blocks; see Status for the possible outcomes.
func (q *Queue) Next() Poll {
	now := q.clock.Now()

	q.mu.Lock()
	defer q.mu.Unlock()

	head := q.messages.peek()
	switch {
	case head == nil && q.quitting:
		return Poll{Status: StatusDone}
	case head == nil:
		return Poll{Status: StatusEmpty}
	case head.Due.After(now):
		return Poll{Status: StatusWait, WaitUntil: head.Due}
	default:
		return Poll{Status: StatusReady, Message: q.messages.pop()}
	}
}

// Quit stops the queue from accepting messages.
// With drain false every pending message is discarded and the number dropped
// is returned. With drain true pending messages stay retrievable through Next.
// Calling Quit(false) after Quit(true) discards whatever is still pending.
func (q *Queue) Quit(drain bool) int {
	q.mu.Lock()
	q.quitting = true
	discarded := 0
	if !drain {
		discarded = q.messages.clear()
	}
	q.mu.Unlock()

	q.signal()
	return discarded
}

// IsQuitting reports whether Quit has been called.
func (q *Queue) IsQuitting() bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.quitting
}

// Len returns the number of pending messages.
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.messages.Len()
}

// Wake returns the channel signalled after every enqueue and on Quit.
// The channel holds at most one pending signal, so the consumer must re-poll
// Next after every receive.
func (q *Queue) Wake() <-chan struct{} {
	return q.wake
}

func (q *Queue) signal() {
	select {
	case q.wake <- struct{}{}:
	default:
	}
}
