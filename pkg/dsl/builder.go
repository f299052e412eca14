package dsl

import (
	"context"
	"fmt"

	"github.com/aretw0/canopy/pkg/adapters/memory"
	"github.com/aretw0/canopy/pkg/decoder"
)

// Bundle collects named screens.
type Bundle struct {
	screens map[string]*NodeBuilder
}

// NewBundle creates an empty bundle.
func NewBundle() *Bundle {
	return &Bundle{
		screens: make(map[string]*NodeBuilder),
	}
}

// Add registers root under name. Adding the same name twice replaces it.
func (b *Bundle) Add(name string, root *NodeBuilder) *Bundle {
	b.screens[name] = root
	return b
}

// Build encodes every screen into a memory store.
func (b *Bundle) Build() (*memory.Store, error) {
	store := memory.NewStore(nil)
	for name, nb := range b.screens {
		root := nb.Build()
		data, err := decoder.Encode(&root)
		if err != nil {
			return nil, fmt.Errorf("failed to encode screen %s: %w", name, err)
		}
		// Round-trip so a bundle never holds a screen clients cannot decode.
		if _, err := decoder.Parse(data); err != nil {
			return nil, fmt.Errorf("screen %s: %w", name, err)
		}
		if err := store.Save(context.Background(), name, data); err != nil {
			return nil, fmt.Errorf("failed to build memory store: %w", err)
		}
	}
	return store, nil
}
