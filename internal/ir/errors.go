package ir

import (
	"errors"
	"fmt"
)

// ErrorKind categorizes host runtime errors.
type ErrorKind string

const (
	// ErrArity indicates a call with the wrong number of arguments.
	ErrArity ErrorKind = "ARITY_MISMATCH"

	// ErrType indicates a value of the wrong type reached a primitive.
	ErrType ErrorKind = "TYPE_MISMATCH"

	// ErrGeneric covers every other host failure.
	ErrGeneric ErrorKind = "GENERIC"
)

// Error is the structured error constructed by the host runtime.
type Error struct {
	Kind    ErrorKind
	Message string
	Loc     Location
}

// NewError creates a structured host error at loc.
func NewError(kind ErrorKind, message string, loc Location) *Error {
	return &Error{Kind: kind, Message: message, Loc: loc}
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Loc.IsValid() {
		return fmt.Sprintf("%s: %s (at %s)", e.Kind, e.Message, e.Loc)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// Location returns where the error was raised.
func (e *Error) Location() Location {
	return e.Loc
}

// Located is implemented by errors that carry a call-site location.
type Located interface {
	error
	Location() Location
}

// LocatedError attaches a location to an error that had none.
type LocatedError struct {
	Loc Location
	Err error
}

func (e *LocatedError) Error() string {
	return fmt.Sprintf("%v (at %s)", e.Err, e.Loc)
}

// Unwrap returns the underlying error.
func (e *LocatedError) Unwrap() error {
	return e.Err
}

// Location implements Located.
func (e *LocatedError) Location() Location {
	return e.Loc
}

// AttachLocation annotates err with loc unless it already carries a valid
// location. Errors that already carry one are returned untouched.
func AttachLocation(err error, loc Location) error {
	if err == nil || !loc.IsValid() {
		return err
	}
	var located Located
	if errors.As(err, &located) && located.Location().IsValid() {
		return err
	}
	return &LocatedError{Loc: loc, Err: err}
}
