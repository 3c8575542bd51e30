package app

import (
	"context"
	"errors"
	"time"

	"github.com/dshills/looper/internal/dispatch"
)

// backgroundWhat is the message a background looper sends itself.
const backgroundWhat = 39

// spawn starts a tracked worker goroutine.
func (app *Application) spawn(fn func()) {
	app.workers.Add(1)
	go func() {
		defer app.workers.Done()
		fn()
	}()
}

// runWorker runs on a worker goroutine and hands the wake-up back to the UI
// goroutine the way mode says.
func (app *Application) runWorker(mode Mode, d time.Duration) {
	log := app.logger.WithField("mode", mode.String())

	var err error
	switch mode {
	case ModeViewPostDelayed:
		err = app.output.PostDelayed(app.wakeFrom(app.clock.Now().Add(d)), d)

	case ModeBackgroundLooper:
		err = app.runBackgroundLooper(d)

	default:
		if !app.sleep(d) {
			log.Debug("worker cancelled")
			return
		}
		now := app.clock.Now()
		switch mode {
		case ModeRunOnUIThread:
			err = app.RunOnUIThread(app.wakeFrom(now))
		case ModeViewPost:
			err = app.output.Post(app.wakeFrom(now))
		case ModeHandlerSendMessage:
			err = app.ui.Enqueue(wakeUpMessage{What: 0, Sent: now}, 0)
		case ModeHandlerPostRunnable:
			err = app.ui.Post(app.wakeFrom(now), 0)
		default:
			err = NewOperationError("hand off", mode.String(), ErrUnknownMode)
		}
	}

	if err != nil {
		log.Warn("hand-off failed: %v", err)
		return
	}
	log.Debug("hand-off sent")
}

// runBackgroundLooper makes the worker goroutine the owner of its own
// dispatcher. The dispatcher delivers backgroundWhat after d, hands off to
// the UI and quits.
func (app *Application) runBackgroundLooper(d time.Duration) error {
	log := app.logger.WithField("looper", "background")

	var bg *dispatch.Dispatcher
	bg = dispatch.New(dispatch.HandlerFunc(func(_ context.Context, payload any) error {
		defer bg.Quit(true)

		log.Info("background looper got message %v", payload)

		// The view belongs to the UI goroutine.
		if err := app.output.SetText("Hello from background"); err != nil {
			log.Debug("background write refused: %v", err)
		}
		return app.ui.Post(app.wakeFrom(app.clock.Now()), 0)
	}),
		dispatch.WithName("background"),
		dispatch.WithClock(app.clock),
		dispatch.WithLogger(app.base),
	)
	defer bg.Quit(true)

	if err := bg.Enqueue(backgroundWhat, d); err != nil {
		return err
	}

	err := bg.Run(app.ctx)
	if errors.Is(err, context.Canceled) {
		log.Debug("background looper cancelled")
		return nil
	}
	return err
}

// sleep blocks for d or until the application stops. It reports whether
// the full duration elapsed.
func (app *Application) sleep(d time.Duration) bool {
	select {
	case <-app.clock.After(d):
		return true
	case <-app.ctx.Done():
		return false
	}
}

// wakeFrom returns the wake-up callback for a hand-off that was due at due.
func (app *Application) wakeFrom(due time.Time) func() {
	return func() {
		latency := app.clock.Since(due)
		if latency < 0 {
			latency = 0
		}
		app.metrics.RecordHandoff(latency)
		app.wakeUp()
	}
}
