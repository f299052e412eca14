package middleware

import (
	"context"
	"fmt"

	"github.com/aretw0/canopy/pkg/decoder"
	"github.com/aretw0/canopy/pkg/ports"
)

type validationMiddleware struct {
	ports.DocumentStore
	parser *decoder.Parser
}

// NewValidationMiddleware refuses to save payloads that do not decode, so a
// store never hands an undecodable screen to clients.
func NewValidationMiddleware() Middleware {
	return func(next ports.DocumentStore) ports.DocumentStore {
		return &validationMiddleware{DocumentStore: next, parser: decoder.NewParser()}
	}
}

func (m *validationMiddleware) Save(ctx context.Context, name string, data []byte) error {
	if _, err := m.parser.ParseNamed(name, data); err != nil {
		return fmt.Errorf("refusing to store screen %s: %w", name, err)
	}
	return m.DocumentStore.Save(ctx, name, data)
}
