package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/aretw0/canopy/pkg/decoder"
	"github.com/aretw0/canopy/pkg/domain"
	"github.com/aretw0/canopy/pkg/ports"
)

// Store implements ports.DocumentStore and ports.Watchable in memory.
// Safe for concurrent use.
type Store struct {
	mu       sync.RWMutex
	data     map[string][]byte
	watchers map[chan string]struct{}
}

// NewStore creates a store seeded with raw payloads (JSON strings).
func NewStore(data map[string]string) *Store {
	s := &Store{
		data:     make(map[string][]byte, len(data)),
		watchers: make(map[chan string]struct{}),
	}
	for k, v := range data {
		s.data[k] = []byte(v)
	}
	return s
}

// NewFromNodes creates a store from trees, each saved under its root id.
// This handles serialization automatically, improving DX for tests.
func NewFromNodes(roots ...domain.Node) (*Store, error) {
	s := NewStore(nil)
	for i := range roots {
		if roots[i].ID == "" {
			return nil, fmt.Errorf("screen %d: %w", i, domain.ErrEmptyID)
		}
		data, err := decoder.Encode(&roots[i])
		if err != nil {
			return nil, fmt.Errorf("failed to encode screen %s: %w", roots[i].ID, err)
		}
		s.data[roots[i].ID] = data
	}
	return s, nil
}

// Fetch returns a copy of the stored payload.
func (s *Store) Fetch(ctx context.Context, name string) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	data, ok := s.data[name]
	if !ok {
		return nil, fmt.Errorf("screen %s: %w", name, ports.ErrNotFound)
	}
	return append([]byte(nil), data...), nil
}

// Save stores a copy of data and notifies watchers.
func (s *Store) Save(ctx context.Context, name string, data []byte) error {
	if name == "" {
		return fmt.Errorf("screen name cannot be empty")
	}
	s.mu.Lock()
	s.data[name] = append([]byte(nil), data...)
	s.mu.Unlock()

	s.notify(name)
	return nil
}

// Delete removes the payload and notifies watchers.
func (s *Store) Delete(ctx context.Context, name string) error {
	s.mu.Lock()
	_, existed := s.data[name]
	delete(s.data, name)
	s.mu.Unlock()

	if existed {
		s.notify(name)
	}
	return nil
}

// List returns all screen names in sorted order.
func (s *Store) List(ctx context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	names := make([]string, 0, len(s.data))
	for k := range s.data {
		names = append(names, k)
	}
	sort.Strings(names) // Deterministic order
	return names, nil
}

// Watch reports the name of every saved or deleted screen until ctx is done.
// Slow watchers miss events rather than block writers.
func (s *Store) Watch(ctx context.Context) (<-chan string, error) {
	ch := make(chan string, 16)

	s.mu.Lock()
	s.watchers[ch] = struct{}{}
	s.mu.Unlock()

	go func() {
		<-ctx.Done()
		s.mu.Lock()
		delete(s.watchers, ch)
		s.mu.Unlock()
		close(ch)
	}()
	return ch, nil
}

func (s *Store) notify(name string) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for ch := range s.watchers {
		select {
		case ch <- name:
		default:
		}
	}
}
