package screen

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/aretw0/canopy/internal/logging"
	"github.com/aretw0/canopy/pkg/decoder"
	"github.com/aretw0/canopy/pkg/domain"
	"github.com/aretw0/canopy/pkg/loader"
	"github.com/aretw0/canopy/pkg/ports"
	"github.com/aretw0/canopy/pkg/tree"
)

// DefaultLockTTL bounds how long a crashed writer can hold a distributed lock.
const DefaultLockTTL = 30 * time.Second

// lockEntry holds the mutex and the reference count.
type lockEntry struct {
	mu   sync.Mutex
	refs int
}

// Manager orchestrates screen access, ensuring safe concurrent mutation.
// It uses Reference Counting to garbage collect unused locks.
type Manager struct {
	store  ports.DocumentStore
	loader *loader.Loader
	// fresh reads past any read cache; writers load through it under the lock.
	fresh  *loader.Loader
	parser *decoder.Parser

	mu       sync.Mutex // guards locks and versions
	locks    map[string]*lockEntry
	versions map[string]uint64

	subsMu sync.RWMutex
	subs   map[*subscriber]struct{}

	locker  ports.DistributedLocker
	lockTTL time.Duration
	logger  *slog.Logger
	hooks   domain.LifecycleHooks
}

// Option configures the Manager.
type Option func(*Manager)

// WithLocker enables distributed locking.
func WithLocker(locker ports.DistributedLocker) Option {
	return func(m *Manager) { m.locker = locker }
}

// WithLockTTL sets the expiry of distributed locks.
func WithLockTTL(ttl time.Duration) Option {
	return func(m *Manager) { m.lockTTL = ttl }
}

// WithLogger configures a logger for the Manager.
func WithLogger(logger *slog.Logger) Option {
	return func(m *Manager) { m.logger = logger }
}

// WithHooks registers lifecycle callbacks for loads and patches.
func WithHooks(h domain.LifecycleHooks) Option {
	return func(m *Manager) { m.hooks = m.hooks.Merge(h) }
}

// NewManager creates a new screen Manager over store.
func NewManager(store ports.DocumentStore, opts ...Option) *Manager {
	m := &Manager{
		store:    store,
		parser:   decoder.NewParser(),
		locks:    make(map[string]*lockEntry),
		versions: make(map[string]uint64),
		subs:     make(map[*subscriber]struct{}),
		lockTTL:  DefaultLockTTL,
		logger:   logging.NewNop(),
	}
	for _, opt := range opts {
		opt(m)
	}
	m.loader = loader.New(store, loader.WithLogger(m.logger), loader.WithHooks(m.hooks))
	m.fresh = m.loader
	if c, ok := store.(ports.Cached); ok {
		m.fresh = loader.New(c.Uncached(), loader.WithLogger(m.logger), loader.WithHooks(m.hooks))
	}
	return m
}

// acquire gets or creates a lock entry and increments its reference count.
// The caller MUST Lock the entry.mu, and then call release(name) after unlocking.
func (m *Manager) acquire(name string) *lockEntry {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, exists := m.locks[name]
	if !exists {
		entry = &lockEntry{}
		m.locks[name] = entry
	}
	entry.refs++
	return entry
}

// release decrements the reference count and deletes the entry if it reaches zero.
func (m *Manager) release(name string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, exists := m.locks[name]
	if !exists {
		return
	}
	entry.refs--
	if entry.refs <= 0 {
		delete(m.locks, name)
	}
}

func (m *Manager) bump(name string) uint64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.versions[name]++
	return m.versions[name]
}

// Version returns how many changes this manager has applied to name.
func (m *Manager) Version(name string) uint64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.versions[name]
}

// Get loads and decodes a screen. Stores write atomically, so reads take no
// lock. Get may be served from a read cache.
func (m *Manager) Get(ctx context.Context, name string) (*domain.Node, error) {
	return m.loader.Load(ctx, name)
}

// Put validates data by decoding it, then stores it verbatim.
func (m *Manager) Put(ctx context.Context, name string, data []byte) (*domain.Node, error) {
	root, err := m.parser.ParseNamed(name, data)
	if err != nil {
		return nil, err
	}
	err = m.WithLock(ctx, name, func(ctx context.Context) error {
		if err := m.store.Save(ctx, name, data); err != nil {
			return err
		}
		m.publish(Update{Screen: name, Kind: Stored, Root: tree.Clone(root), Version: m.bump(name)})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to save screen %s: %w", name, err)
	}
	return root, nil
}

// PutNode encodes root and stores it under name.
func (m *Manager) PutNode(ctx context.Context, name string, root *domain.Node) error {
	data, err := decoder.Encode(root)
	if err != nil {
		return fmt.Errorf("failed to encode screen %s: %w", name, err)
	}
	_, err = m.Put(ctx, name, data)
	return err
}

// Patch applies patches in order to the stored screen and saves the result.
// It returns the patched tree and the total number of matched nodes. When
// nothing matches the store is not written.
func (m *Manager) Patch(ctx context.Context, name string, patches ...domain.Patch) (*domain.Node, int, error) {
	var (
		root    *domain.Node
		matches int
		version uint64
	)
	err := m.WithLock(ctx, name, func(ctx context.Context) error {
		var err error
		root, err = m.fresh.Load(ctx, name)
		if err != nil {
			return err
		}
		for _, p := range patches {
			matches += tree.ApplyPatch(root, p)
		}
		if matches == 0 {
			return nil
		}
		data, err := decoder.Encode(root)
		if err != nil {
			return fmt.Errorf("failed to encode screen %s: %w", name, err)
		}
		if err := m.store.Save(ctx, name, data); err != nil {
			return fmt.Errorf("failed to save screen %s: %w", name, err)
		}
		version = m.bump(name)
		m.publish(Update{Screen: name, Kind: Patched, Patches: patches, Matches: matches, Version: version})
		return nil
	})
	if err != nil {
		return nil, 0, err
	}

	m.logger.Debug("screen patched", "screen", name, "patches", len(patches), "matches", matches)
	if m.hooks.OnPatch != nil {
		m.hooks.OnPatch(ctx, &domain.PatchEvent{
			EventBase: domain.EventBase{Timestamp: time.Now(), Type: domain.EventPatch, Screen: name},
			Patches:   patches,
			Matches:   matches,
			Version:   version,
		})
	}
	return root, matches, nil
}

// Delete removes the screen from the store.
func (m *Manager) Delete(ctx context.Context, name string) error {
	return m.WithLock(ctx, name, func(ctx context.Context) error {
		if err := m.store.Delete(ctx, name); err != nil {
			return err
		}
		m.publish(Update{Screen: name, Kind: Deleted, Version: m.bump(name)})
		return nil
	})
}

// List delegates to the store.
func (m *Manager) List(ctx context.Context) ([]string, error) {
	return m.store.List(ctx)
}

// Exists reports whether name is present in the store.
func (m *Manager) Exists(ctx context.Context, name string) (bool, error) {
	src := ports.Source(m.store)
	if c, ok := m.store.(ports.Cached); ok {
		src = c.Uncached()
	}
	_, err := src.Fetch(ctx, name)
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, ports.ErrNotFound):
		return false, nil
	}
	return false, err
}

// Store returns the underlying document store.
func (m *Manager) Store() ports.DocumentStore {
	return m.store
}

// WithLock executes a function while holding the lock for the screen.
func (m *Manager) WithLock(ctx context.Context, name string, fn func(context.Context) error) error {
	entry := m.acquire(name)
	entry.mu.Lock()
	defer func() {
		entry.mu.Unlock()
		m.release(name)
	}()

	if m.locker != nil {
		unlock, err := m.locker.Lock(ctx, name, m.lockTTL)
		if err != nil {
			return fmt.Errorf("failed to acquire distributed lock: %w", err)
		}
		defer func() {
			if err := unlock(ctx); err != nil {
				m.logger.Warn("Failed to release distributed lock (will expire via TTL)",
					"screen", name,
					"err", err,
				)
			}
		}()
	}

	return fn(ctx)
}
