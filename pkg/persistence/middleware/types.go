package middleware

import "github.com/aretw0/canopy/pkg/ports"

// Middleware allows wrapping a DocumentStore to add behavior.
type Middleware func(ports.DocumentStore) ports.DocumentStore

// Chain applies middlewares so that the first one listed is the outermost.
// When the innermost store reports changes, the result still does.
func Chain(store ports.DocumentStore, mws ...Middleware) ports.DocumentStore {
	w, watchable := store.(ports.Watchable)
	for i := len(mws) - 1; i >= 0; i-- {
		store = mws[i](store)
	}
	if _, ok := store.(ports.Watchable); watchable && !ok {
		return watchingStore{DocumentStore: store, Watchable: w}
	}
	return store
}

type watchingStore struct {
	ports.DocumentStore
	ports.Watchable
}
