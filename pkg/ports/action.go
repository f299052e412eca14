package ports

import (
	"context"

	"github.com/aretw0/canopy/pkg/domain"
)

// ActionHandler performs the side effect of one action type on behalf of the host.
type ActionHandler interface {
	Handle(ctx context.Context, action domain.Action) error
}

// ActionHandlerFunc adapts a function to the ActionHandler interface.
type ActionHandlerFunc func(ctx context.Context, action domain.Action) error

func (f ActionHandlerFunc) Handle(ctx context.Context, action domain.Action) error {
	return f(ctx, action)
}
