package ports

import (
	"context"
	"errors"
)

// ErrNotFound is wrapped by sources when the requested resource does not exist.
// Any other error from a source means the resource exists but could not be read.
var ErrNotFound = errors.New("resource not found")

// Source defines where raw UI payloads come from.
// This allows the storage layer (Loam, FS, Redis, S3, HTTP, Memory) to be decoupled.
type Source interface {
	// Fetch returns the raw bytes of the named resource.
	// It returns an error wrapping ErrNotFound when the resource does not exist.
	Fetch(ctx context.Context, name string) ([]byte, error)
}

// Lister is implemented by sources that can enumerate their resources.
// This is used for introspection tools (e.g. 'canopy validate').
type Lister interface {
	List(ctx context.Context) ([]string, error)
}

// Watchable defines an interface for sources that can notify about backend changes.
// This is typically used for hot-reload or dev-mode functionality.
type Watchable interface {
	// Watch returns a channel that receives the name of each changed resource.
	// The channel is closed when ctx is done.
	Watch(ctx context.Context) (<-chan string, error)
}

// SourceFunc adapts a function to the Source interface.
type SourceFunc func(ctx context.Context, name string) ([]byte, error)

func (f SourceFunc) Fetch(ctx context.Context, name string) ([]byte, error) {
	return f(ctx, name)
}
