package cache

import (
	"context"

	"github.com/aretw0/canopy/pkg/ports"
)

// Store caches reads of a DocumentStore. Writes through the Store drop the
// cached entry; writes that bypass it are only seen once the entry expires
// or the store reports them through Watch.
type Store struct {
	*Source
	store ports.DocumentStore
}

var (
	_ ports.DocumentStore = (*Store)(nil)
	_ ports.Cached        = (*Store)(nil)
)

// NewStore wraps store.
func NewStore(store ports.DocumentStore, opts ...Option) *Store {
	return &Store{Source: New(store, opts...), store: store}
}

// Uncached returns the wrapped store.
func (s *Store) Uncached() ports.DocumentStore {
	return s.store
}

func (s *Store) Save(ctx context.Context, name string, data []byte) error {
	defer s.Invalidate(name)
	return s.store.Save(ctx, name, data)
}

func (s *Store) Delete(ctx context.Context, name string) error {
	defer s.Invalidate(name)
	return s.store.Delete(ctx, name)
}

func (s *Store) List(ctx context.Context) ([]string, error) {
	return s.store.List(ctx)
}
