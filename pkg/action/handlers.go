package action

import (
	"context"
	"fmt"
	"net/url"

	"github.com/aretw0/canopy/pkg/domain"
	"github.com/aretw0/canopy/pkg/ports"
)

// NavigateHandler handles "navigate" actions by passing payload["screen"] to fn.
func NavigateHandler(fn func(ctx context.Context, screen string) error) ports.ActionHandler {
	return ports.ActionHandlerFunc(func(ctx context.Context, a domain.Action) error {
		screen := a.Payload[domain.PayloadScreen]
		if screen == "" {
			return fmt.Errorf("%w: missing %q", ErrInvalidPayload, domain.PayloadScreen)
		}
		return fn(ctx, screen)
	})
}

// OpenURLHandler handles "openURL" actions. payload["url"] must be an absolute URL.
func OpenURLHandler(fn func(ctx context.Context, target *url.URL) error) ports.ActionHandler {
	return ports.ActionHandlerFunc(func(ctx context.Context, a domain.Action) error {
		raw := a.Payload[domain.PayloadURL]
		if raw == "" {
			return fmt.Errorf("%w: missing %q", ErrInvalidPayload, domain.PayloadURL)
		}
		u, err := url.Parse(raw)
		if err != nil || !u.IsAbs() {
			return fmt.Errorf("%w: %q is not an absolute url", ErrInvalidPayload, raw)
		}
		return fn(ctx, u)
	})
}
