package action

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/aretw0/canopy/internal/logging"
	"github.com/aretw0/canopy/pkg/domain"
	"github.com/aretw0/canopy/pkg/ports"
)

// Dispatcher manages the action handlers available to a host.
// Safe for concurrent use.
type Dispatcher struct {
	mu          sync.RWMutex
	handlers    map[string]ports.ActionHandler
	interceptor Interceptor
	logger      *slog.Logger
	hooks       domain.LifecycleHooks
}

type Option func(*Dispatcher)

func WithLogger(l *slog.Logger) Option {
	return func(d *Dispatcher) { d.logger = l }
}

// WithInterceptors installs policies checked before every handler, in order.
func WithInterceptors(interceptors ...Interceptor) Option {
	return func(d *Dispatcher) { d.interceptor = MultiInterceptor(interceptors...) }
}

func WithHooks(h domain.LifecycleHooks) Option {
	return func(d *Dispatcher) { d.hooks = d.hooks.Merge(h) }
}

// NewDispatcher creates a dispatcher with no handlers.
func NewDispatcher(opts ...Option) *Dispatcher {
	d := &Dispatcher{
		handlers:    make(map[string]ports.ActionHandler),
		interceptor: AutoApprove(),
		logger:      logging.NewNop(),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Register binds a handler to an action type.
// If a handler for the same type exists, it is overwritten.
func (d *Dispatcher) Register(actionType string, h ports.ActionHandler) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.handlers[actionType] = h
}

// RegisterFunc is Register for plain functions.
func (d *Dispatcher) RegisterFunc(actionType string, fn func(context.Context, domain.Action) error) {
	d.Register(actionType, ports.ActionHandlerFunc(fn))
}

// Actionable reports whether a handler exists for the action's type.
// A nil action is never actionable.
func (d *Dispatcher) Actionable(a *domain.Action) bool {
	if a == nil {
		return false
	}
	d.mu.RLock()
	defer d.mu.RUnlock()
	_, ok := d.handlers[a.Type]
	return ok
}

// Types lists the registered action types in sorted order.
func (d *Dispatcher) Types() []string {
	d.mu.RLock()
	defer d.mu.RUnlock()
	types := make([]string, 0, len(d.handlers))
	for t := range d.handlers {
		types = append(types, t)
	}
	sort.Strings(types)
	return types
}

// Dispatch looks up the handler for a.Type, runs the interceptors and then the handler.
// Unknown types return ErrNotActionable.
func (d *Dispatcher) Dispatch(ctx context.Context, a domain.Action) error {
	d.mu.RLock()
	h, ok := d.handlers[a.Type]
	d.mu.RUnlock()

	if !ok {
		d.logger.Debug("action not actionable", "type", a.Type)
		err := fmt.Errorf("%w: %s", ErrNotActionable, a.Type)
		d.emit(ctx, a, false, err)
		return err
	}

	allowed, reason, err := d.interceptor(ctx, a)
	if err != nil {
		d.emit(ctx, a, false, err)
		return fmt.Errorf("interceptor failed for %s: %w", a.Type, err)
	}
	if !allowed {
		d.logger.Info("action denied", "type", a.Type, "reason", reason)
		err := fmt.Errorf("%w: %s", ErrDenied, reason)
		d.emit(ctx, a, false, err)
		return err
	}

	err = h.Handle(ctx, a)
	d.emit(ctx, a, err == nil, err)
	if err != nil {
		return fmt.Errorf("action %s failed: %w", a.Type, err)
	}
	return nil
}

func (d *Dispatcher) emit(ctx context.Context, a domain.Action, handled bool, err error) {
	if d.hooks.OnAction == nil {
		return
	}
	d.hooks.OnAction(ctx, &domain.ActionEvent{
		EventBase: domain.EventBase{
			Timestamp: time.Now(),
			Type:      domain.EventAction,
			Screen:    ScreenFromContext(ctx),
		},
		Action:  a,
		Handled: handled,
		Err:     err,
	})
}

type screenKey struct{}

// WithScreen records the screen an action originates from, for hooks and logs.
func WithScreen(ctx context.Context, screen string) context.Context {
	return context.WithValue(ctx, screenKey{}, screen)
}

// ScreenFromContext returns the screen set by WithScreen, or "".
func ScreenFromContext(ctx context.Context) string {
	s, _ := ctx.Value(screenKey{}).(string)
	return s
}
