package action

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"strings"

	"github.com/aretw0/canopy/pkg/domain"
)

// Interceptor is a middleware that can inspect or block an action before its handler runs.
// It returns true if dispatch should proceed. When blocking, reason explains the denial.
// A non-nil error is a system failure, not a policy decision.
type Interceptor func(ctx context.Context, a domain.Action) (allowed bool, reason string, err error)

// MultiInterceptor chains multiple interceptors. The first denial wins.
func MultiInterceptor(interceptors ...Interceptor) Interceptor {
	return func(ctx context.Context, a domain.Action) (bool, string, error) {
		for _, interceptor := range interceptors {
			allowed, reason, err := interceptor(ctx, a)
			if err != nil {
				return false, "", err
			}
			if !allowed {
				return false, reason, nil
			}
		}
		return true, "", nil
	}
}

// AutoApprove allows everything.
func AutoApprove() Interceptor {
	return func(ctx context.Context, a domain.Action) (bool, string, error) {
		return true, "", nil
	}
}

// AllowSchemes restricts openURL actions to the given URL schemes.
// Other action types pass through.
func AllowSchemes(schemes ...string) Interceptor {
	allowed := make(map[string]bool, len(schemes))
	for _, s := range schemes {
		allowed[strings.ToLower(s)] = true
	}
	return func(ctx context.Context, a domain.Action) (bool, string, error) {
		if a.Type != domain.ActionOpenURL {
			return true, "", nil
		}
		u, err := url.Parse(a.Payload[domain.PayloadURL])
		if err != nil {
			return false, "malformed url", nil
		}
		if !allowed[strings.ToLower(u.Scheme)] {
			return false, fmt.Sprintf("scheme %q not allowed", u.Scheme), nil
		}
		return true, "", nil
	}
}

// AllowTypes denies every action type not listed.
func AllowTypes(types ...string) Interceptor {
	set := make(map[string]bool, len(types))
	for _, t := range types {
		set[t] = true
	}
	return func(ctx context.Context, a domain.Action) (bool, string, error) {
		if !set[a.Type] {
			return false, fmt.Sprintf("type %q not allowed", a.Type), nil
		}
		return true, "", nil
	}
}

// Logging records every action that reaches the interceptor chain. It never blocks.
func Logging(logger *slog.Logger) Interceptor {
	return func(ctx context.Context, a domain.Action) (bool, string, error) {
		logger.InfoContext(ctx, "action",
			"type", a.Type,
			"screen", ScreenFromContext(ctx),
			"payload_keys", len(a.Payload),
		)
		return true, "", nil
	}
}
