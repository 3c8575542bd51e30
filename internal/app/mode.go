package app

import "strings"

// Mode is a way for a worker goroutine to hand its result back to the UI.
type Mode int

const (
	// ModeNone means no mode has been selected yet.
	ModeNone Mode = iota

	// ModeRunOnUIThread sleeps, then calls Application.RunOnUIThread.
	ModeRunOnUIThread

	// ModeViewPost sleeps, then posts the wake-up through the text view.
	ModeViewPost

	// ModeViewPostDelayed posts the wake-up through the text view with a
	// delay instead of sleeping.
	ModeViewPostDelayed

	// ModeHandlerSendMessage sleeps, then enqueues an empty wake-up message
	// for the UI dispatcher's handler.
	ModeHandlerSendMessage

	// ModeHandlerPostRunnable sleeps, then posts the wake-up callback to the
	// UI dispatcher directly.
	ModeHandlerPostRunnable

	// ModeBackgroundLooper runs a dispatcher on the worker goroutine, sends
	// it message 39 after the sleep, and hands off to the UI from there.
	ModeBackgroundLooper
)

var modeNames = map[Mode]string{
	ModeNone:                "none",
	ModeRunOnUIThread:       "run-on-ui-thread",
	ModeViewPost:            "view-post",
	ModeViewPostDelayed:     "view-post-delayed",
	ModeHandlerSendMessage:  "handler-send-message",
	ModeHandlerPostRunnable: "handler-post-runnable",
	ModeBackgroundLooper:    "background-looper",
}

// Modes returns every selectable mode in display order.
func Modes() []Mode {
	return []Mode{
		ModeRunOnUIThread,
		ModeViewPost,
		ModeViewPostDelayed,
		ModeHandlerSendMessage,
		ModeHandlerPostRunnable,
		ModeBackgroundLooper,
	}
}

// String returns the mode name as used in configuration.
func (m Mode) String() string {
	if name, ok := modeNames[m]; ok {
		return name
	}
	return "unknown"
}

// Valid reports whether m is a selectable mode.
func (m Mode) Valid() bool {
	return m > ModeNone && m <= ModeBackgroundLooper
}

// Key returns the digit that selects m.
func (m Mode) Key() rune {
	if !m.Valid() {
		return 0
	}
	return '0' + rune(m)
}

// ModeForKey returns the mode selected by digit r.
func ModeForKey(r rune) (Mode, bool) {
	m := Mode(r - '0')
	return m, m.Valid()
}

// ParseMode parses a mode name. An empty string or "none" yields ModeNone.
func ParseMode(s string) (Mode, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return ModeNone, nil
	}
	for m, name := range modeNames {
		if name == s {
			return m, nil
		}
	}
	return ModeNone, NewOperationError("parse mode", s, ErrUnknownMode)
}

// ParseModes parses a list of mode names. ModeNone is not allowed.
func ParseModes(names []string) ([]Mode, error) {
	out := make([]Mode, 0, len(names))
	for _, name := range names {
		m, err := ParseMode(name)
		if err != nil {
			return nil, err
		}
		if !m.Valid() {
			return nil, NewOperationError("parse mode", name, ErrUnknownMode)
		}
		out = append(out, m)
	}
	return out, nil
}
