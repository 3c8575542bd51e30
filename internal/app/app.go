// Package app runs the hand-off demo: a UI dispatcher owned by the goroutine
// that calls Run, a text view only that goroutine may change, and worker
// goroutines that report back to it in six different ways.
package app

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/dshills/looper/internal/backend"
	"github.com/dshills/looper/internal/config"
	"github.com/dshills/looper/internal/dispatch"
	"github.com/dshills/looper/internal/logging"
)

// Texts shown in the output view.
const (
	TextSleeping = "Sleeping..."
	TextWokeUp   = "Woke up!"
)

// Application is the demo. It owns the UI dispatcher and all UI state;
// every field below the ui marker is read and written on the UI goroutine
// only.
type Application struct {
	opts    Options
	base    *logging.Logger
	logger  *logging.Logger
	clock   clockwork.Clock
	metrics *Metrics
	backend backend.Backend
	watcher *config.Watcher

	ui     *dispatch.Dispatcher
	output *TextView

	// ui
	cfg          *config.Config
	initial      Mode
	selected     Mode
	cursor       int
	groupEnabled bool
	sleepEnabled bool
	busy         bool
	dirty        bool
	status       string
	autoRun      []Mode
	autoRunning  bool
	completed    []Mode

	ctx     context.Context
	cancel  context.CancelFunc
	workers sync.WaitGroup
	input   sync.WaitGroup
	started atomic.Bool
	done    chan struct{}
}

// Options configures the application.
type Options struct {
	// Config is the initial configuration. Nil means config.Default().
	Config *config.Config

	// ConfigPath is watched for live reload when not empty.
	ConfigPath string

	// Backend is the display. Nil means a headless NullBackend.
	Backend backend.Backend

	// Logger defaults to logging.Default().
	Logger *logging.Logger

	// Clock drives worker sleeps and delayed posts. Defaults to the real clock.
	Clock clockwork.Clock

	// Metrics defaults to a fresh tracker.
	Metrics *Metrics
}

// New creates the application. Nothing runs until Run is called.
func New(opts Options) (*Application, error) {
	cfg := config.Default()
	if opts.Config != nil {
		cfg = opts.Config.Clone()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	initial, err := ParseMode(cfg.Demo.Mode)
	if err != nil {
		return nil, err
	}
	autoRun, err := ParseModes(cfg.Demo.AutoRun)
	if err != nil {
		return nil, err
	}

	app := &Application{
		opts:         opts,
		base:         opts.Logger,
		clock:        opts.Clock,
		metrics:      opts.Metrics,
		backend:      opts.Backend,
		cfg:          cfg,
		initial:      initial,
		autoRun:      autoRun,
		groupEnabled: true,
		done:         make(chan struct{}),
	}
	if app.base == nil {
		app.base = logging.Default()
	}
	if app.clock == nil {
		app.clock = clockwork.NewRealClock()
	}
	if app.metrics == nil {
		app.metrics = NewMetrics()
	}
	if app.backend == nil {
		app.backend = backend.NewNullBackend(80, 24)
	}
	app.logger = app.base.WithComponent("app")
	app.ctx, app.cancel = context.WithCancel(context.Background())

	app.ui = dispatch.New(dispatch.HandlerFunc(app.handleMessage),
		dispatch.WithName("ui"),
		dispatch.WithClock(app.clock),
		dispatch.WithLogger(app.base),
		dispatch.WithLockOSThread(cfg.Dispatcher.LockOSThread),
		dispatch.WithErrorSink(app.reportFailure),
		dispatch.WithAfterDispatch(app.afterDispatch),
	)
	app.output = NewTextView(app.ui, app.invalidate)

	return app, nil
}

// Dispatcher returns the UI dispatcher.
func (app *Application) Dispatcher() *dispatch.Dispatcher {
	return app.ui
}

// Output returns the output text view.
func (app *Application) Output() *TextView {
	return app.output
}

// Metrics returns the application's metrics.
func (app *Application) Metrics() *Metrics {
	return app.metrics
}

// Run makes the calling goroutine the UI goroutine and blocks until the
// application quits. Workers, the input goroutine and the config watcher
// have all stopped when it returns.
func (app *Application) Run() error {
	if !app.started.CompareAndSwap(false, true) {
		return ErrAlreadyRunning
	}
	defer close(app.done)

	if err := app.backend.Init(); err != nil {
		app.quit(false)
		return &InitError{Component: "backend", Err: err}
	}

	if app.opts.ConfigPath != "" {
		w, err := config.NewWatcher(app.opts.ConfigPath,
			config.WithOnChange(app.onConfigChange),
			config.WithOnError(app.onConfigError),
			config.WithWatcherLogger(app.base),
		)
		if err != nil {
			app.logger.Warn("live reload disabled: %v", err)
		} else {
			app.watcher = w
		}
	}

	app.input.Add(1)
	go app.pollInput()

	_ = app.ui.Post(app.start, 0)
	err := app.ui.Run(context.Background())

	app.cleanup()

	if err != nil && !errors.Is(err, dispatch.ErrAlreadyTerminated) {
		return err
	}
	return nil
}

// Shutdown quits without draining and, when called off the UI goroutine,
// waits for Run to finish. It is safe to call more than once.
func (app *Application) Shutdown() {
	app.quit(false)
	if app.started.Load() && !app.ui.IsCurrent() {
		<-app.done
	}
}

// Done returns a channel closed when Run has returned.
func (app *Application) Done() <-chan struct{} {
	return app.done
}

func (app *Application) quit(drain bool) {
	app.cancel()
	app.ui.Quit(drain)
}

func (app *Application) cleanup() {
	app.cancel()
	if app.watcher != nil {
		if err := app.watcher.Close(); err != nil {
			app.logger.Warn("closing config watcher: %v", err)
		}
	}
	app.backend.Shutdown()
	app.input.Wait()
	app.workers.Wait()
	app.logger.Info("stopped after %d wake-ups", len(app.completed))
}

// pollInput forwards backend events to the UI dispatcher until the backend
// closes or the dispatcher stops accepting work.
func (app *Application) pollInput() {
	defer app.input.Done()

	for {
		ev := app.backend.PollEvent()
		if ev.Type == backend.EventClosed {
			return
		}
		if err := app.ui.Enqueue(ev, 0); err != nil {
			app.metrics.RecordInputDropped()
			if errors.Is(err, dispatch.ErrRejected) {
				return
			}
			continue
		}
		app.metrics.RecordInput()
	}
}

// start runs first on the UI goroutine.
func (app *Application) start() {
	app.setStatus("press 1-6 or space to pick a hand-off, s to sleep, q to quit")

	if app.initial.Valid() {
		if err := app.Select(app.initial); err != nil {
			app.setStatus(err.Error())
		}
	}
	if len(app.autoRun) > 0 {
		app.autoRunning = true
		app.runNextAuto()
	}
}

// wakeUpMessage is the data message a worker sends in handler-send-message
// mode. What is always 0.
type wakeUpMessage struct {
	What int
	Sent time.Time
}

// handleMessage is the UI dispatcher's handler.
func (app *Application) handleMessage(_ context.Context, payload any) error {
	switch p := payload.(type) {
	case backend.Event:
		return app.handleEvent(p)
	case wakeUpMessage:
		app.wakeFrom(p.Sent)()
		return nil
	case *config.Config:
		app.applyConfig(p)
		return nil
	default:
		return fmt.Errorf("unexpected message %T", payload)
	}
}

func (app *Application) handleEvent(ev backend.Event) error {
	switch ev.Type {
	case backend.EventResize:
		app.invalidate()
	case backend.EventKey:
		err := app.handleKey(ev)
		if err != nil && !errors.Is(err, ErrQuit) {
			app.setStatus(err.Error())
		}
	}
	return nil
}

func (app *Application) handleKey(ev backend.Event) error {
	switch ev.Key {
	case backend.KeyCtrlC:
		app.quit(false)
		return ErrQuit
	case backend.KeyEscape:
		app.quit(app.cfg.Dispatcher.DrainOnQuit)
		return ErrQuit
	case backend.KeyEnter:
		return app.Sleep()
	case backend.KeyUp:
		app.moveCursor(-1)
	case backend.KeyDown, backend.KeyTab:
		app.moveCursor(1)
	case backend.KeyRune:
		switch ev.Rune {
		case 'q', 'Q':
			app.quit(app.cfg.Dispatcher.DrainOnQuit)
			return ErrQuit
		case 's', 'S':
			return app.Sleep()
		case ' ':
			return app.Select(Modes()[app.cursor])
		}
		if m, ok := ModeForKey(ev.Rune); ok {
			return app.Select(m)
		}
	}
	return nil
}

// moveCursor moves the mode list cursor by delta, wrapping at both ends.
func (app *Application) moveCursor(delta int) {
	n := len(Modes())
	app.cursor = ((app.cursor+delta)%n + n) % n
	app.invalidate()
}

// Select picks the hand-off mode, enabling sleep and locking the choice
// until the next wake-up. It must run on the UI goroutine.
func (app *Application) Select(m Mode) error {
	if !app.ui.IsCurrent() {
		return ErrWrongThread
	}
	if !m.Valid() {
		return NewOperationError("select", m.String(), ErrUnknownMode)
	}
	if !app.groupEnabled {
		return NewOperationError("select", m.String(), ErrBusy)
	}

	app.selected = m
	app.cursor = int(m) - 1
	app.groupEnabled = false
	app.sleepEnabled = true
	app.setStatus("selected " + m.String())
	app.logger.Debug("mode selected: %s", m)
	return nil
}

// Sleep starts a worker for the selected mode. It must run on the UI
// goroutine.
func (app *Application) Sleep() error {
	if !app.ui.IsCurrent() {
		return ErrWrongThread
	}
	if app.selected == ModeNone || !app.sleepEnabled {
		return NewOperationError("sleep", "", ErrNoModeSelected)
	}
	if app.busy {
		return NewOperationError("sleep", app.selected.String(), ErrBusy)
	}

	if err := app.output.SetText(TextSleeping); err != nil {
		return err
	}
	app.busy = true

	mode, d := app.selected, app.cfg.Sleep()
	app.logger.Info("worker started: mode=%s sleep=%v", mode, d)
	app.spawn(func() { app.runWorker(mode, d) })
	return nil
}

// RunOnUIThread runs fn now when called on the UI goroutine and posts it
// otherwise.
func (app *Application) RunOnUIThread(fn func()) error {
	if app.ui.IsCurrent() {
		fn()
		return nil
	}
	return app.ui.Post(fn, 0)
}

// wakeUp finishes a hand-off. It runs on the UI goroutine.
func (app *Application) wakeUp() {
	if err := app.output.SetText(TextWokeUp); err != nil {
		app.logger.Error("wake-up ran off the UI goroutine: %v", err)
		return
	}
	app.groupEnabled = true
	app.busy = false
	app.completed = append(app.completed, app.selected)
	app.setStatus(app.selected.String() + " woke the UI")

	if app.autoRunning {
		if err := app.output.Post(app.runNextAuto); err != nil {
			app.logger.Debug("auto run stopped: %v", err)
		}
	}
}

func (app *Application) runNextAuto() {
	if len(app.autoRun) == 0 {
		app.autoRunning = false
		app.setStatus("auto run finished")
		app.logger.Info("auto run finished")
		app.quit(true)
		return
	}

	m := app.autoRun[0]
	app.autoRun = app.autoRun[1:]

	err := app.Select(m)
	if err == nil {
		err = app.Sleep()
	}
	if err != nil {
		app.logger.Error("auto run %s: %v", m, err)
		app.autoRunning = false
		app.quit(false)
	}
}

func (app *Application) applyConfig(cfg *config.Config) {
	app.cfg = cfg
	app.base.SetLevel(cfg.LogLevel())
	app.setStatus(fmt.Sprintf("configuration reloaded (sleep %v)", cfg.Sleep()))
}

// onConfigChange runs on the watcher goroutine.
func (app *Application) onConfigChange(cfg *config.Config) {
	if err := app.ui.Enqueue(cfg, 0); err != nil {
		app.logger.Debug("config reload dropped: %v", err)
	}
}

// onConfigError runs on the watcher goroutine.
func (app *Application) onConfigError(err error) {
	_ = app.ui.Post(func() { app.setStatus("config: " + err.Error()) }, 0)
}

func (app *Application) reportFailure(f *dispatch.HandlerFailure) {
	app.logger.Error("%v", f)
	app.setStatus(f.Error())
}

func (app *Application) setStatus(s string) {
	app.status = s
	app.invalidate()
}

func (app *Application) invalidate() {
	app.dirty = true
}

// View is a snapshot of the UI state.
type View struct {
	Text         string
	Mode         Mode
	Cursor       Mode
	GroupEnabled bool
	SleepEnabled bool
	Busy         bool
	Status       string
	Completed    []Mode
}

// View returns a snapshot of the UI state. Off the UI goroutine it waits
// for the UI goroutine to take the snapshot.
func (app *Application) View() View {
	if app.ui.IsCurrent() {
		return app.view()
	}
	select {
	case <-app.ui.Done():
		return app.view()
	default:
	}

	ch := make(chan View, 1)
	if err := app.ui.Post(func() { ch <- app.view() }, 0); err != nil {
		<-app.ui.Done()
		return app.view()
	}
	select {
	case v := <-ch:
		return v
	case <-app.ui.Done():
		return app.view()
	}
}

func (app *Application) view() View {
	return View{
		Text:         app.output.Text(),
		Mode:         app.selected,
		Cursor:       Modes()[app.cursor],
		GroupEnabled: app.groupEnabled,
		SleepEnabled: app.sleepEnabled,
		Busy:         app.busy,
		Status:       app.status,
		Completed:    append([]Mode(nil), app.completed...),
	}
}
