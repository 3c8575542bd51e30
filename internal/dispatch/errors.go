package dispatch

import (
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/dshills/looper/internal/queue"
)

// Sentinel errors for the dispatch package.
var (
	// ErrAlreadyRunning is returned when Run or Start is called on a dispatcher
	// whose loop has already been started.
	ErrAlreadyRunning = errors.New("dispatcher is already running")

	// ErrAlreadyTerminated is returned when Run or Start is called on a
	// terminated dispatcher.
	ErrAlreadyTerminated = errors.New("dispatcher has terminated")

	// ErrRejected is returned when work is enqueued after Quit.
	ErrRejected = queue.ErrRejected

	// ErrNilCallback is returned when Post is called with a nil function.
	ErrNilCallback = queue.ErrNilCallback

	// ErrNoHandler is reported when a data message reaches a dispatcher that
	// was created without a handler.
	ErrNoHandler = errors.New("no handler registered for data message")

	// ErrTimeout is returned by AwaitTermination when the wait expires.
	ErrTimeout = errors.New("timed out waiting for termination")

	// ErrCalledOnLoop is returned when a blocking lifecycle call is made from
	// the dispatcher's own goroutine, where it could never complete.
	ErrCalledOnLoop = errors.New("blocking call made from the dispatcher goroutine")

	// ErrHandlerFailure matches every *HandlerFailure via errors.Is.
	ErrHandlerFailure = errors.New("handler failure")
)

// HandlerFailure describes a handler or callback that returned an error or
// panicked while processing a message.
type HandlerFailure struct {
	// MessageID identifies the message being processed.
	MessageID uuid.UUID

	// Payload is the message payload; nil for callback messages.
	Payload any

	// Callback is true when the failing code was a posted callback.
	Callback bool

	// Err is the returned error, or an error describing the panic.
	Err error

	// Panicked is true if the handler panicked.
	Panicked bool

	// PanicValue is the value passed to panic().
	PanicValue any

	// Stack is the stack trace captured at the point of panic.
	Stack []byte
}

func newHandlerFailure(m *queue.Message, r Result) *HandlerFailure {
	f := &HandlerFailure{
		MessageID:  m.ID,
		Payload:    m.Payload,
		Callback:   m.IsCallback(),
		Err:        r.Error,
		Panicked:   r.Panicked,
		PanicValue: r.PanicValue,
		Stack:      r.PanicStack,
	}
	if f.Err == nil && f.Panicked {
		f.Err = fmt.Errorf("panic: %v", r.PanicValue)
	}
	return f
}

func (f *HandlerFailure) Error() string {
	kind := "handler"
	if f.Callback {
		kind = "callback"
	}
	return fmt.Sprintf("%s failed for message %s: %v", kind, f.MessageID, f.Err)
}

// Unwrap exposes both ErrHandlerFailure and the underlying error.
func (f *HandlerFailure) Unwrap() []error {
	if f.Err == nil {
		return []error{ErrHandlerFailure}
	}
	return []error{ErrHandlerFailure, f.Err}
}
