package ports_test

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"testing"

	"github.com/aretw0/canopy/pkg/ports"
)

// mockStore is a map-backed DocumentStore used to check the contract suite itself.
type mockStore struct {
	mu   sync.Mutex
	data map[string][]byte
}

func (m *mockStore) Fetch(_ context.Context, name string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	d, ok := m.data[name]
	if !ok {
		return nil, fmt.Errorf("%s: %w", name, ports.ErrNotFound)
	}
	return append([]byte(nil), d...), nil
}

func (m *mockStore) Save(_ context.Context, name string, data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[name] = append([]byte(nil), data...)
	return nil
}

func (m *mockStore) Delete(_ context.Context, name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, name)
	return nil
}

func (m *mockStore) List(_ context.Context) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	names := make([]string, 0, len(m.data))
	for k := range m.data {
		names = append(names, k)
	}
	sort.Strings(names)
	return names, nil
}

func TestDocumentStoreContract_Mock(t *testing.T) {
	ports.RunDocumentStoreContract(t, &mockStore{data: map[string][]byte{}})
}
