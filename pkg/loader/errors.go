package loader

import (
	"errors"
	"fmt"
)

// Kind classifies why a load failed.
type Kind int

const (
	// ResourceNotFound means the source has nothing under the name.
	ResourceNotFound Kind = iota + 1
	// UnreadableResource means the resource exists but its bytes could not be read.
	UnreadableResource
	// DecodeFailed means the bytes were read but are not a valid UI payload.
	DecodeFailed
)

func (k Kind) String() string {
	switch k {
	case ResourceNotFound:
		return "resource not found"
	case UnreadableResource:
		return "unreadable resource"
	case DecodeFailed:
		return "decode failed"
	}
	return "unknown"
}

var (
	ErrResourceNotFound   = errors.New("resource not found")
	ErrUnreadableResource = errors.New("unreadable resource")
	ErrDecodeFailed       = errors.New("decode failed")
)

// LoadError reports a failed load. errors.Is matches the sentinel for its
// Kind, and the underlying cause stays reachable through Unwrap.
type LoadError struct {
	Name string
	Kind Kind
	Err  error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("load %q: %s: %v", e.Name, e.Kind, e.Err)
}

func (e *LoadError) Unwrap() error { return e.Err }

func (e *LoadError) Is(target error) bool {
	switch target {
	case ErrResourceNotFound:
		return e.Kind == ResourceNotFound
	case ErrUnreadableResource:
		return e.Kind == UnreadableResource
	case ErrDecodeFailed:
		return e.Kind == DecodeFailed
	}
	return false
}

// KindOf returns the Kind of a load error, or 0 when err is not one.
func KindOf(err error) Kind {
	var le *LoadError
	if errors.As(err, &le) {
		return le.Kind
	}
	return 0
}
