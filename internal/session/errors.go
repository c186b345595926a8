package session

import (
	"errors"
	"fmt"
)

// Common session errors. Callers match these with errors.Is.
var (
	// ErrNoActiveMaterial is returned when a flow is started without a
	// selected material.
	ErrNoActiveMaterial = errors.New("no active material selected")

	// ErrGenerationInFlight is returned when an action would start a second
	// generation call while one is still running.
	ErrGenerationInFlight = errors.New("a generation request is already in flight")

	// ErrAlreadyAnswered is returned when a quiz question is answered a
	// second time.
	ErrAlreadyAnswered = errors.New("question already answered")

	// ErrNotAnswered is returned when advancing past a question that has
	// not been answered yet.
	ErrNotAnswered = errors.New("current question not answered yet")

	// ErrInvalidAction is the base error for actions that are not valid in
	// the current state.
	ErrInvalidAction = errors.New("action not valid in current state")
)

// errInvalidAction wraps ErrInvalidAction with the attempted action and the
// state it was attempted in.
func errInvalidAction(action string, state any) error {
	return fmt.Errorf("%w: cannot %s while %v", ErrInvalidAction, action, state)
}
