package app

import (
	"errors"
	"fmt"
)

// Application errors.
var (
	// ErrQuit signals that the application should exit normally.
	ErrQuit = errors.New("quit requested")

	// ErrAlreadyRunning indicates the application is already running.
	ErrAlreadyRunning = errors.New("application already running")

	// ErrWrongThread is returned when a view is modified from a goroutine
	// other than the UI goroutine.
	ErrWrongThread = errors.New("only the UI goroutine may touch its views")

	// ErrNoModeSelected indicates sleep was requested before choosing a mode.
	ErrNoModeSelected = errors.New("no hand-off mode selected")

	// ErrBusy indicates a worker is still sleeping.
	ErrBusy = errors.New("a worker is already sleeping")

	// ErrUnknownMode indicates a mode name that does not exist.
	ErrUnknownMode = errors.New("unknown mode")
)

// OperationError is a failed demo operation on a mode.
type OperationError struct {
	Op     string // "select", "sleep", "parse mode", "hand off"
	Target string // mode name, may be empty
	Err    error
}

// NewOperationError creates a new OperationError.
func NewOperationError(op, target string, err error) *OperationError {
	return &OperationError{Op: op, Target: target, Err: err}
}

func (e *OperationError) Error() string {
	msg := e.Op
	if e.Target != "" {
		msg += " " + e.Target
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *OperationError) Unwrap() error {
	return e.Err
}

// InitError represents a failure to start a component.
type InitError struct {
	Component string
	Err       error
}

func (e *InitError) Error() string {
	return fmt.Sprintf("init %s: %v", e.Component, e.Err)
}

func (e *InitError) Unwrap() error {
	return e.Err
}
