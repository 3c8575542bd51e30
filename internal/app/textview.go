package app

import (
	"sync"
	"time"

	"github.com/dshills/looper/internal/dispatch"
)

// TextView is a piece of text owned by the UI dispatcher.
//
// Only the UI goroutine may change it. Other goroutines reach it through
// Post and PostDelayed, which run a function on the UI goroutine.
type TextView struct {
	ui       *dispatch.Dispatcher
	onChange func()

	mu   sync.RWMutex
	text string
}

// NewTextView creates a view bound to the UI dispatcher. onChange, if set,
// runs on the UI goroutine after every successful SetText.
func NewTextView(ui *dispatch.Dispatcher, onChange func()) *TextView {
	return &TextView{ui: ui, onChange: onChange}
}

// SetText replaces the text. It fails with ErrWrongThread off the UI goroutine.
func (v *TextView) SetText(text string) error {
	if !v.ui.IsCurrent() {
		return ErrWrongThread
	}

	v.mu.Lock()
	v.text = text
	v.mu.Unlock()

	if v.onChange != nil {
		v.onChange()
	}
	return nil
}

// Text returns the current text. It is safe from any goroutine.
func (v *TextView) Text() string {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.text
}

// Post runs fn on the UI goroutine.
func (v *TextView) Post(fn func()) error {
	return v.ui.Post(fn, 0)
}

// PostDelayed runs fn on the UI goroutine after delay.
func (v *TextView) PostDelayed(fn func(), delay time.Duration) error {
	return v.ui.Post(fn, delay)
}
