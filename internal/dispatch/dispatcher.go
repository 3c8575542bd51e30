package dispatch

import (
	"context"
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"

	"github.com/dshills/looper/internal/logging"
	"github.com/dshills/looper/internal/queue"
)

// State is the lifecycle state of a Dispatcher.
type State int32

const (
	// StateCreated is the initial state; the loop has not started.
	StateCreated State = iota
	// StateRunning means the loop is processing messages.
	StateRunning
	// StateQuitting means Quit was called and the loop is finishing up.
	StateQuitting
	// StateTerminated is final; no further messages are accepted or run.
	StateTerminated
)

// String returns the state name.
func (s State) String() string {
	switch s {
	case StateCreated:
		return "created"
	case StateRunning:
		return "running"
	case StateQuitting:
		return "quitting"
	case StateTerminated:
		return "terminated"
	default:
		return "unknown"
	}
}

// Dispatcher owns a message queue and runs its messages on a single goroutine.
//
// Enqueue, Post and Quit are safe to call from any goroutine, including from
// inside the handler. Everything the dispatcher executes runs on the goroutine
// that called Run (or the one spawned by Start).
type Dispatcher struct {
	id    uuid.UUID
	name  string
	clock clockwork.Clock
	queue *queue.Queue

	handler  Handler
	executor *Executor
	logger   *logging.Logger

	errorSink    func(*HandlerFailure)
	before       func(*queue.Message)
	after        func(*queue.Message, Result)
	lockOSThread bool

	state    atomic.Int32
	started  atomic.Bool
	owner    atomic.Uint64
	done     chan struct{}
	doneOnce sync.Once

	stats counters
}

// New creates a dispatcher that passes data messages to handler.
// handler may be nil for dispatchers that only run posted callbacks.
func New(handler Handler, opts ...Option) *Dispatcher {
	id := uuid.New()
	d := &Dispatcher{
		id:       id,
		name:     "looper-" + id.String()[:8],
		clock:    clockwork.NewRealClock(),
		handler:  handler,
		executor: NewExecutor(),
		done:     make(chan struct{}),
	}
	for _, opt := range opts {
		opt(d)
	}

	if d.logger == nil {
		d.logger = logging.Default()
	}
	d.logger = d.logger.WithComponent("dispatch").WithField("dispatcher", d.name)
	if d.errorSink == nil {
		d.errorSink = d.logFailure
	}
	d.queue = queue.New(queue.WithClock(d.clock))

	return d
}

// ID returns the dispatcher's unique identifier.
func (d *Dispatcher) ID() uuid.UUID {
	return d.id
}

// Name returns the dispatcher's name.
func (d *Dispatcher) Name() string {
	return d.name
}

// State returns the current lifecycle state.
func (d *Dispatcher) State() State {
	return State(d.state.Load())
}

// Clock returns the dispatcher's time source.
func (d *Dispatcher) Clock() clockwork.Clock {
	return d.clock
}

// Enqueue schedules payload for the handler after delay.
// Returns ErrRejected once the dispatcher is quitting or terminated.
func (d *Dispatcher) Enqueue(payload any, delay time.Duration) error {
	return d.accepted(d.queue.Enqueue(payload, delay))
}

// EnqueueAt schedules payload for the handler at an absolute time
// (read from the dispatcher's clock).
func (d *Dispatcher) EnqueueAt(payload any, at time.Time) error {
	return d.accepted(d.queue.EnqueueAt(payload, at))
}

// Post schedules fn to run on the owning goroutine after delay.
func (d *Dispatcher) Post(fn func(), delay time.Duration) error {
	return d.accepted(d.queue.Post(fn, delay))
}

// PostAt schedules fn to run on the owning goroutine at an absolute time.
func (d *Dispatcher) PostAt(fn func(), at time.Time) error {
	return d.accepted(d.queue.PostAt(fn, at))
}

func (d *Dispatcher) accepted(err error) error {
	switch err {
	case nil:
		d.stats.enqueued.Add(1)
	case queue.ErrRejected:
		d.stats.rejected.Add(1)
		d.logger.Debug("message rejected in state %s", d.State())
	}
	return err
}

// Pending returns the number of messages waiting in the queue.
func (d *Dispatcher) Pending() int {
	return d.queue.Len()
}

// Run runs the loop on the calling goroutine until the dispatcher terminates.
// The caller becomes the owner. Cancelling ctx behaves like Quit(false) and
// makes Run return ctx.Err().
func (d *Dispatcher) Run(ctx context.Context) error {
	if err := d.begin(); err != nil {
		return err
	}
	return d.loop(ctx)
}

// Start runs the loop on a new goroutine and returns immediately.
func (d *Dispatcher) Start() error {
	if err := d.begin(); err != nil {
		return err
	}
	go func() {
		_ = d.loop(context.Background())
	}()
	return nil
}

// begin claims the right to run the loop.
func (d *Dispatcher) begin() error {
	if !d.started.CompareAndSwap(false, true) {
		if d.State() == StateTerminated {
			return ErrAlreadyTerminated
		}
		return ErrAlreadyRunning
	}

	if d.state.CompareAndSwap(int32(StateCreated), int32(StateRunning)) {
		d.logger.Debug("state created -> running")
		return nil
	}
	if d.State() == StateTerminated {
		return ErrAlreadyTerminated
	}
	// Quit(true) arrived before the loop started; run to drain what is left.
	return nil
}

func (d *Dispatcher) loop(ctx context.Context) error {
	if d.lockOSThread {
		runtime.LockOSThread()
		defer runtime.UnlockOSThread()
	}

	d.owner.Store(goid())
	defer d.owner.Store(0)
	defer d.terminate()

	for {
		select {
		case <-ctx.Done():
			d.Quit(false)
		default:
		}

		p := d.queue.Next()
		switch p.Status {
		case queue.StatusReady:
			d.dispatch(ctx, p.Message)
		case queue.StatusWait:
			d.wait(ctx, p.WaitUntil)
		case queue.StatusEmpty:
			d.wait(ctx, time.Time{})
		case queue.StatusDone:
			return ctx.Err()
		}
	}
}

// wait blocks until a wake signal, the until deadline (if non-zero) or ctx.
func (d *Dispatcher) wait(ctx context.Context, until time.Time) {
	var expired <-chan time.Time
	if !until.IsZero() {
		delay := until.Sub(d.clock.Now())
		if delay <= 0 {
			return
		}
		timer := d.clock.NewTimer(delay)
		defer timer.Stop()
		expired = timer.Chan()
	}

	select {
	case <-d.queue.Wake():
	case <-expired:
	case <-ctx.Done():
		d.Quit(false)
	}
}

func (d *Dispatcher) dispatch(ctx context.Context, m *queue.Message) {
	if d.before != nil {
		d.guard("before-dispatch hook", func() { d.before(m) })
	}

	result := d.executor.Execute(ctx, m, d.handler)
	d.stats.record(result)

	if !result.IsSuccess() {
		failure := newHandlerFailure(m, result)
		d.guard("error sink", func() { d.errorSink(failure) })
	}

	if d.after != nil {
		d.guard("after-dispatch hook", func() { d.after(m, result) })
	}
}

// guard runs fn and logs a panic instead of letting it escape the loop.
func (d *Dispatcher) guard(what string, fn func()) {
	defer func() {
		if r := recover(); r != nil {
			d.logger.Error("%s panicked: %v", what, r)
		}
	}()
	fn()
}

func (d *Dispatcher) logFailure(f *HandlerFailure) {
	l := d.logger.WithField("message", f.MessageID)
	if f.Panicked {
		l.Error("%v", f)
		l.Debug("stack:\n%s", f.Stack)
		return
	}
	l.Error("%v", f)
}

// Quit stops the dispatcher from accepting work. With drain false, pending
// messages are discarded and the loop ends after the message currently
// running, if any. With drain true, pending messages still run first.
// Quit is safe to call from any goroutine, repeatedly, and from inside the
// handler.
func (d *Dispatcher) Quit(drain bool) {
	discarded := d.queue.Quit(drain)
	if discarded > 0 {
		d.stats.discarded.Add(uint64(discarded))
	}

	for {
		switch s := d.State(); s {
		case StateCreated:
			if !d.state.CompareAndSwap(int32(StateCreated), int32(StateQuitting)) {
				continue
			}
			d.logger.Debug("state created -> quitting (drain=%t)", drain)
		case StateRunning:
			if !d.state.CompareAndSwap(int32(StateRunning), int32(StateQuitting)) {
				continue
			}
			d.logger.Debug("state running -> quitting (drain=%t, discarded=%d)", drain, discarded)
		}
		break
	}

	// Nothing will ever run the loop, so termination happens here.
	if !d.started.Load() && d.queue.Len() == 0 {
		d.terminate()
	}
}

func (d *Dispatcher) terminate() {
	d.doneOnce.Do(func() {
		d.state.Store(int32(StateTerminated))
		close(d.done)
		d.logger.Debug("state -> terminated")
	})
}

// Done returns a channel closed when the dispatcher terminates.
func (d *Dispatcher) Done() <-chan struct{} {
	return d.done
}

// AwaitTermination blocks until the dispatcher terminates or timeout elapses.
// A timeout <= 0 waits without limit. The timeout is measured in wall-clock
// time, independent of the dispatcher's clock.
func (d *Dispatcher) AwaitTermination(timeout time.Duration) error {
	if d.IsCurrent() {
		return ErrCalledOnLoop
	}
	if timeout <= 0 {
		<-d.done
		return nil
	}

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case <-d.done:
		return nil
	case <-timer.C:
		return ErrTimeout
	}
}

// IsCurrent reports whether the caller is running on the dispatcher's
// owning goroutine.
func (d *Dispatcher) IsCurrent() bool {
	owner := d.owner.Load()
	return owner != 0 && owner == goid()
}
