package dispatch

import (
	"context"
	"runtime/debug"
	"time"

	"github.com/dshills/looper/internal/queue"
)

// Handler processes the payload of data messages on the owning goroutine.
type Handler interface {
	Handle(ctx context.Context, payload any) error
}

// HandlerFunc adapts a function to the Handler interface.
type HandlerFunc func(ctx context.Context, payload any) error

// Handle calls f(ctx, payload).
func (f HandlerFunc) Handle(ctx context.Context, payload any) error {
	return f(ctx, payload)
}

// Result represents the outcome of running one message.
type Result struct {
	// Success is true if the message completed without error or panic.
	Success bool

	// Error is the error returned by the handler, if any.
	Error error

	// Panicked is true if the handler or callback panicked.
	Panicked bool

	// PanicValue is the value passed to panic(), if Panicked is true.
	PanicValue any

	// PanicStack is the stack trace at the point of panic.
	PanicStack []byte

	// Duration is how long the message took to run.
	Duration time.Duration
}

// IsSuccess returns true if the result indicates successful execution.
func (r Result) IsSuccess() bool {
	return r.Success && !r.Panicked && r.Error == nil
}

// IsError returns true if the result indicates an error (not panic).
func (r Result) IsError() bool {
	return r.Error != nil && !r.Panicked
}

// IsPanic returns true if the result indicates a panic.
func (r Result) IsPanic() bool {
	return r.Panicked
}

// Executor runs a single message with panic recovery and timing.
type Executor struct{}

// NewExecutor creates a new executor.
func NewExecutor() *Executor {
	return &Executor{}
}

// Execute runs m on the calling goroutine. Callback messages run their
// callback; data messages are passed to handler. A nil handler for a data
// message yields ErrNoHandler.
func (e *Executor) Execute(ctx context.Context, m *queue.Message, handler Handler) (result Result) {
	start := time.Now()

	defer func() {
		result.Duration = time.Since(start)

		if r := recover(); r != nil {
			result.Success = false
			result.Panicked = true
			result.PanicValue = r
			result.PanicStack = debug.Stack()
		}
	}()

	var err error
	switch {
	case m.IsCallback():
		m.Callback()
	case handler == nil:
		err = ErrNoHandler
	default:
		err = handler.Handle(ctx, m.Payload)
	}

	if err != nil {
		result.Error = err
		return result
	}
	result.Success = true
	return result
}
