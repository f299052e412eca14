package domain

import (
	"context"
	"time"
)

// EventType defines the category of the event.
type EventType string

const (
	EventLoad   EventType = "load"
	EventPatch  EventType = "patch"
	EventAction EventType = "action"
)

// EventBase contains common fields for all events.
type EventBase struct {
	Timestamp time.Time `json:"timestamp"`
	Type      EventType `json:"type"`
	Screen    string    `json:"screen,omitempty"`
}

// LoadEvent describes one completed load, successful or not.
type LoadEvent struct {
	EventBase
	Bytes    int           `json:"bytes"`
	Duration time.Duration `json:"duration"`
	Err      error         `json:"-"`
}

// PatchEvent describes patches applied to a screen.
type PatchEvent struct {
	EventBase
	Patches []Patch `json:"patches"`
	Matches int     `json:"matches"`
	Version uint64  `json:"version"`
}

// ActionEvent describes a dispatched action.
type ActionEvent struct {
	EventBase
	Action  Action `json:"action"`
	Handled bool   `json:"handled"`
	Err     error  `json:"-"`
}

// LifecycleHooks defines callbacks for observability. Nil hooks are skipped.
type LifecycleHooks struct {
	OnLoad   func(context.Context, *LoadEvent)
	OnPatch  func(context.Context, *PatchEvent)
	OnAction func(context.Context, *ActionEvent)
}

// Merge returns hooks that call h first and then other.
func (h LifecycleHooks) Merge(other LifecycleHooks) LifecycleHooks {
	return LifecycleHooks{
		OnLoad:   chain(h.OnLoad, other.OnLoad),
		OnPatch:  chain(h.OnPatch, other.OnPatch),
		OnAction: chain(h.OnAction, other.OnAction),
	}
}

func chain[E any](a, b func(context.Context, E)) func(context.Context, E) {
	switch {
	case a == nil:
		return b
	case b == nil:
		return a
	}
	return func(ctx context.Context, e E) {
		a(ctx, e)
		b(ctx, e)
	}
}
