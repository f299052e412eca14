package domain

import (
	"errors"
	"fmt"
)

// ErrEmptyID is returned when a node declares an empty id.
var ErrEmptyID = errors.New("node id must not be empty")

// ErrUnhandledAction is returned when no handler is registered for an action type.
// The action is still present on its node; it is simply not actionable.
var ErrUnhandledAction = errors.New("unhandled action")

// UnknownValueError reports a value outside a closed enumeration, such as an
// unrecognised node type.
type UnknownValueError struct {
	Field string
	Value string
}

func (e *UnknownValueError) Error() string {
	return fmt.Sprintf("unknown %s %q", e.Field, e.Value)
}

// MissingFieldError reports a required field absent from the payload.
type MissingFieldError struct {
	Field  string
	NodeID string
}

func (e *MissingFieldError) Error() string {
	if e.NodeID != "" {
		return fmt.Sprintf("node %q: missing required field %q", e.NodeID, e.Field)
	}
	return fmt.Sprintf("missing required field %q", e.Field)
}
