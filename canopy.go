package canopy

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"

	"github.com/aretw0/canopy/pkg/action"
	loamAdapter "github.com/aretw0/canopy/pkg/adapters/loam"
	"github.com/aretw0/canopy/pkg/domain"
	"github.com/aretw0/canopy/pkg/loader"
	"github.com/aretw0/canopy/pkg/ports"
	"github.com/aretw0/canopy/pkg/render"
	"github.com/aretw0/canopy/pkg/tree"
)

var (
	// ErrNodeNotFound is returned by Find when no node carries the id.
	ErrNodeNotFound = errors.New("node not found")
	// ErrNotListable is returned by List when the source cannot enumerate screens.
	ErrNotListable = errors.New("source does not support listing")
	// ErrNotWatchable is returned by Watch when the source cannot report changes.
	ErrNotWatchable = errors.New("source does not support watching")
)

// Engine is the high-level entry point for the Canopy library.
// It wires a source, the decoder, lifecycle hooks and an action dispatcher.
type Engine struct {
	source       ports.Source
	loader       *loader.Loader
	actions      *action.Dispatcher
	interceptors []action.Interceptor
	handlers     map[string]ports.ActionHandler
	hooks        domain.LifecycleHooks
	logger       *slog.Logger
	Name         string
}

// Option defines a functional option for configuring the Engine.
type Option func(*Engine)

// WithSource injects a custom Source, bypassing the default Loam initialization.
func WithSource(s ports.Source) Option {
	return func(e *Engine) {
		e.source = s
	}
}

// WithLifecycleHooks registers observability hooks.
func WithLifecycleHooks(hooks domain.LifecycleHooks) Option {
	return func(e *Engine) {
		e.hooks = e.hooks.Merge(hooks)
	}
}

// WithLogger sets a custom structured logger for the engine.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		e.logger = logger
	}
}

// WithActionHandler binds a handler to an action type.
func WithActionHandler(actionType string, h ports.ActionHandler) Option {
	return func(e *Engine) {
		if e.handlers == nil {
			e.handlers = make(map[string]ports.ActionHandler)
		}
		e.handlers[actionType] = h
	}
}

// WithInterceptors installs action policies, checked in order.
func WithInterceptors(interceptors ...action.Interceptor) Option {
	return func(e *Engine) {
		e.interceptors = append(e.interceptors, interceptors...)
	}
}

// New initializes a new Canopy Engine.
// By default, it serves screens from a read-only Loam bundle at the given path.
// If WithSource option is provided, path can be empty and Loam is skipped.
func New(path string, opts ...Option) (*Engine, error) {
	eng := &Engine{}
	for _, opt := range opts {
		opt(eng)
	}

	if eng.source == nil {
		if path == "" {
			return nil, fmt.Errorf("path is required when no custom source is provided")
		}
		absPath, err := filepath.Abs(path)
		if err != nil {
			return nil, fmt.Errorf("invalid path: %w", err)
		}
		eng.Name = filepath.Base(absPath)

		src, err := loamAdapter.Open(absPath)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize loam: %w", err)
		}
		eng.source = src
	} else if path != "" {
		eng.Name = filepath.Base(path)
	}

	if eng.logger == nil {
		eng.logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}
	if eng.Name != "" {
		eng.logger = eng.logger.With("bundle", eng.Name)
	}

	eng.loader = loader.New(eng.source,
		loader.WithLogger(eng.logger),
		loader.WithHooks(eng.hooks),
	)
	eng.actions = action.NewDispatcher(
		action.WithLogger(eng.logger),
		action.WithHooks(eng.hooks),
		action.WithInterceptors(eng.interceptors...),
	)
	for t, h := range eng.handlers {
		eng.actions.Register(t, h)
	}
	return eng, nil
}

// Load fetches and decodes the named screen.
func (e *Engine) Load(ctx context.Context, name string) (*domain.Node, error) {
	return e.loader.Load(ctx, name)
}

// Find loads the named screen and returns the first node with the id, in pre-order.
func (e *Engine) Find(ctx context.Context, name, id string) (*domain.Node, error) {
	root, err := e.loader.Load(ctx, name)
	if err != nil {
		return nil, err
	}
	n, ok := tree.FindByID(root, id)
	if !ok {
		return nil, fmt.Errorf("%w: %s in %s", ErrNodeNotFound, id, name)
	}
	return n, nil
}

// Render loads the named screen and lays it out for a terminal. Buttons
// whose action has no handler are drawn as inert.
func (e *Engine) Render(ctx context.Context, name string, opts ...render.Option) (string, error) {
	root, err := e.loader.Load(ctx, name)
	if err != nil {
		return "", err
	}
	opts = append([]render.Option{render.WithActionable(e.actions.Actionable)}, opts...)
	return render.NewTerminal(opts...).Render(root)
}

// Dispatch delivers an action raised on the named screen.
func (e *Engine) Dispatch(ctx context.Context, screen string, a domain.Action) error {
	return e.actions.Dispatch(action.WithScreen(ctx, screen), a)
}

// Actions returns the dispatcher, so hosts can register handlers after New.
func (e *Engine) Actions() *action.Dispatcher {
	return e.actions
}

// List returns the screens the source knows about.
func (e *Engine) List(ctx context.Context) ([]string, error) {
	if l, ok := e.source.(ports.Lister); ok {
		return l.List(ctx)
	}
	return nil, ErrNotListable
}

// Watch returns a channel that signals when a screen in the source changes.
func (e *Engine) Watch(ctx context.Context) (<-chan string, error) {
	if w, ok := e.source.(ports.Watchable); ok {
		return w.Watch(ctx)
	}
	return nil, ErrNotWatchable
}

// Source returns the underlying Source used by the engine.
func (e *Engine) Source() ports.Source {
	return e.source
}
