package dispatch

import (
	"github.com/jonboulle/clockwork"

	"github.com/dshills/looper/internal/logging"
	"github.com/dshills/looper/internal/queue"
)

// Option configures a Dispatcher.
type Option func(*Dispatcher)

// WithName sets the name used in log lines.
func WithName(name string) Option {
	return func(d *Dispatcher) {
		if name != "" {
			d.name = name
		}
	}
}

// WithClock sets the time source for due times and timers.
func WithClock(c clockwork.Clock) Option {
	return func(d *Dispatcher) {
		if c != nil {
			d.clock = c
		}
	}
}

// WithLogger sets the logger. The dispatcher adds its own component fields.
func WithLogger(l *logging.Logger) Option {
	return func(d *Dispatcher) {
		if l != nil {
			d.logger = l
		}
	}
}

// WithErrorSink sets the function that receives handler failures.
// It runs on the owning goroutine; a panicking sink is recovered and logged.
func WithErrorSink(sink func(*HandlerFailure)) Option {
	return func(d *Dispatcher) {
		d.errorSink = sink
	}
}

// WithBeforeDispatch sets a hook run on the owning goroutine before each message.
func WithBeforeDispatch(hook func(*queue.Message)) Option {
	return func(d *Dispatcher) {
		d.before = hook
	}
}

// WithAfterDispatch sets a hook run on the owning goroutine after each message,
// whether it succeeded or not.
func WithAfterDispatch(hook func(*queue.Message, Result)) Option {
	return func(d *Dispatcher) {
		d.after = hook
	}
}

// WithLockOSThread pins the owning goroutine to its OS thread for the
// lifetime of the loop, for consumers that are bound to a native thread.
func WithLockOSThread(lock bool) Option {
	return func(d *Dispatcher) {
		d.lockOSThread = lock
	}
}
