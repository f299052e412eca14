package action

import (
	"errors"
	"fmt"

	"github.com/aretw0/canopy/pkg/domain"
)

var (
	// ErrNotActionable is returned when no handler is registered for an action type.
	// errors.Is(err, domain.ErrUnhandledAction) also holds.
	ErrNotActionable = fmt.Errorf("action not actionable: %w", domain.ErrUnhandledAction)

	// ErrDenied is returned when an interceptor vetoes a dispatch.
	ErrDenied = errors.New("action denied by policy")

	// ErrInvalidPayload is returned by built-in handlers when a required payload key is missing or malformed.
	ErrInvalidPayload = errors.New("invalid action payload")
)
