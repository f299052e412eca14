package ports

import "context"

// DocumentStore defines a writable home for UI payloads.
// Stores are also sources, so a served screen can be loaded from where it is kept.
type DocumentStore interface {
	Source
	Lister

	// Save persists the payload under name, replacing any previous version.
	Save(ctx context.Context, name string, data []byte) error

	// Delete removes the payload. Deleting a missing name is not an error.
	Delete(ctx context.Context, name string) error
}

// Cached is implemented by stores that serve reads from a cache. Uncached
// returns the store behind the cache, for reads that must see the latest write.
type Cached interface {
	Uncached() DocumentStore
}
