package screen_test

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/aretw0/canopy/internal/testutils"
	"github.com/aretw0/canopy/pkg/adapters/cache"
	"github.com/aretw0/canopy/pkg/adapters/memory"
	"github.com/aretw0/canopy/pkg/adapters/redis"
	"github.com/aretw0/canopy/pkg/decoder"
	"github.com/aretw0/canopy/pkg/domain"
	"github.com/aretw0/canopy/pkg/loader"
	"github.com/aretw0/canopy/pkg/ports"
	"github.com/aretw0/canopy/pkg/screen"
	"github.com/aretw0/canopy/pkg/tree"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// slowStore simulates latency to provoke lost updates if locking is missing.
type slowStore struct {
	*memory.Store
}

func (s slowStore) Fetch(ctx context.Context, name string) ([]byte, error) {
	time.Sleep(2 * time.Millisecond)
	return s.Store.Fetch(ctx, name)
}

func newManager(t *testing.T, opts ...screen.Option) (*screen.Manager, *memory.Store) {
	t.Helper()
	store := memory.NewStore(map[string]string{"hello": testutils.HelloJSON})
	return screen.NewManager(store, opts...), store
}

func TestManager_Get(t *testing.T) {
	mgr, _ := newManager(t)
	ctx := context.Background()

	root, err := mgr.Get(ctx, "hello")
	require.NoError(t, err)
	assert.Equal(t, "root", root.ID)

	_, err = mgr.Get(ctx, "missing")
	assert.ErrorIs(t, err, loader.ErrResourceNotFound)
}

func TestManager_PatchPersists(t *testing.T) {
	mgr, store := newManager(t)
	ctx := context.Background()

	root, matches, err := mgr.Patch(ctx, "hello", domain.TextPatch("t1", "World"))
	require.NoError(t, err)
	assert.Equal(t, 1, matches)
	patched, ok := tree.FindByID(root, "t1")
	require.True(t, ok)
	assert.Equal(t, "World", patched.ContentOr(""))
	assert.EqualValues(t, 1, mgr.Version("hello"))

	data, err := store.Fetch(ctx, "hello")
	require.NoError(t, err)
	stored, err := decoder.Parse(data)
	require.NoError(t, err)
	n, ok := tree.FindByID(stored, "t1")
	require.True(t, ok)
	assert.Equal(t, "World", *n.Content)
}

const pairJSON = `{"id":"r","type":"stack","children":[` +
	`{"id":"a","type":"text","content":"a0"},{"id":"b","type":"text","content":"b0"}]}`

func contentOf(t *testing.T, store ports.Source, name, id string) string {
	t.Helper()
	data, err := store.Fetch(context.Background(), name)
	require.NoError(t, err)
	root, err := decoder.Parse(data)
	require.NoError(t, err)
	n, ok := tree.FindByID(root, id)
	require.True(t, ok)
	return n.ContentOr("")
}

func TestManager_CachedReplicasKeepEachOthersPatches(t *testing.T) {
	shared := memory.NewStore(map[string]string{"pair": pairJSON})
	replicaA := screen.NewManager(cache.NewStore(shared, cache.WithTTL(time.Hour)))
	replicaB := screen.NewManager(cache.NewStore(shared, cache.WithTTL(time.Hour)))
	ctx := context.Background()

	// A now holds the original payload in its cache.
	_, err := replicaA.Get(ctx, "pair")
	require.NoError(t, err)

	_, _, err = replicaB.Patch(ctx, "pair", domain.TextPatch("a", "a1"))
	require.NoError(t, err)
	root, matches, err := replicaA.Patch(ctx, "pair", domain.TextPatch("b", "b1"))
	require.NoError(t, err)
	assert.Equal(t, 1, matches)

	n, _ := tree.FindByID(root, "a")
	assert.Equal(t, "a1", n.ContentOr(""), "the patch is applied to the latest stored tree")
	assert.Equal(t, "a1", contentOf(t, shared, "pair", "a"))
	assert.Equal(t, "b1", contentOf(t, shared, "pair", "b"))

	// A's own write dropped its cached copy.
	got, err := replicaA.Get(ctx, "pair")
	require.NoError(t, err)
	n, _ = tree.FindByID(got, "a")
	assert.Equal(t, "a1", n.ContentOr(""))
}

func TestManager_PublishesVersionsInOrder(t *testing.T) {
	mgr, _ := newManager(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	updates := mgr.Subscribe(ctx, "hello")

	const writers = 12
	var wg sync.WaitGroup
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			if i%3 == 0 {
				_, err := mgr.Put(ctx, "hello", []byte(testutils.HelloJSON))
				assert.NoError(t, err)
				return
			}
			_, _, err := mgr.Patch(ctx, "hello", domain.TextPatch("t1", fmt.Sprint(i)))
			assert.NoError(t, err)
		}(i)
	}
	wg.Wait()

	var last uint64
	for i := 0; i < writers; i++ {
		u := <-updates
		assert.Greater(t, u.Version, last, "update %d (%s)", i, u.Kind)
		last = u.Version
	}
	assert.EqualValues(t, writers, last)
}

func TestManager_PatchNoMatch(t *testing.T) {
	mgr, _ := newManager(t)

	_, matches, err := mgr.Patch(context.Background(), "hello", domain.TextPatch("nope", "x"))
	require.NoError(t, err)
	assert.Zero(t, matches)
	assert.Zero(t, mgr.Version("hello"), "nothing stored, nothing versioned")
}

func TestManager_PatchMissingScreen(t *testing.T) {
	mgr, _ := newManager(t)
	_, _, err := mgr.Patch(context.Background(), "missing", domain.TextPatch("t1", "x"))
	assert.ErrorIs(t, err, loader.ErrResourceNotFound)
}

func TestManager_PutValidates(t *testing.T) {
	mgr, _ := newManager(t)
	ctx := context.Background()

	_, err := mgr.Put(ctx, "bad", []byte(`{"id":"x","type":"hologram"}`))
	assert.ErrorIs(t, err, decoder.ErrParsingFailed)

	ok, err := mgr.Exists(ctx, "bad")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, mgr.PutNode(ctx, "spacer", &domain.Node{ID: "s", Type: domain.NodeTypeSpacer}))
	ok, err = mgr.Exists(ctx, "spacer")
	require.NoError(t, err)
	assert.True(t, ok)

	names, err := mgr.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"hello", "spacer"}, names)
}

func TestManager_ConcurrentPatches(t *testing.T) {
	store := memory.NewStore(nil)
	mgr := screen.NewManager(slowStore{store})
	ctx := context.Background()

	// One list with many text children; each goroutine patches its own child.
	const n = 20
	root := domain.Node{ID: "list", Type: domain.NodeTypeList}
	for i := 0; i < n; i++ {
		root.Children = append(root.Children, domain.Node{ID: fmt.Sprintf("c%d", i), Type: domain.NodeTypeText})
	}
	require.NoError(t, mgr.PutNode(ctx, "list", &root))

	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, _, err := mgr.Patch(ctx, "list", domain.TextPatch(fmt.Sprintf("c%d", i), "done"))
			assert.NoError(t, err)
		}(i)
	}
	wg.Wait()

	final, err := mgr.Get(ctx, "list")
	require.NoError(t, err)
	for _, c := range final.Children {
		assert.Equal(t, "done", c.ContentOr(""), "lost update on %s", c.ID)
	}
}

func TestManager_Subscribe(t *testing.T) {
	mgr, _ := newManager(t)
	ctx, cancel := context.WithCancel(context.Background())

	updates := mgr.Subscribe(ctx, "hello")
	all := mgr.Subscribe(ctx, "")

	_, _, err := mgr.Patch(ctx, "hello", domain.TextPatch("t1", "Hi"))
	require.NoError(t, err)
	_, err = mgr.Put(ctx, "other", []byte(`{"id":"o","type":"spacer"}`))
	require.NoError(t, err)

	u := <-updates
	assert.Equal(t, screen.Patched, u.Kind)
	assert.Equal(t, 1, u.Matches)
	require.Len(t, u.Patches, 1)
	assert.Equal(t, "Hi", u.Patches[0].Text)

	assert.Equal(t, "hello", (<-all).Screen)
	other := <-all
	assert.Equal(t, screen.Stored, other.Kind)
	assert.Equal(t, "o", other.Root.ID)

	select {
	case u := <-updates:
		t.Fatalf("unexpected update for %s", u.Screen)
	default:
	}

	cancel()
	assert.Eventually(t, func() bool {
		_, open := <-updates
		return !open
	}, time.Second, 10*time.Millisecond)
}

func TestManager_Hooks(t *testing.T) {
	var loads, patches int
	mgr, _ := newManager(t, screen.WithHooks(domain.LifecycleHooks{
		OnLoad:  func(ctx context.Context, e *domain.LoadEvent) { loads++ },
		OnPatch: func(ctx context.Context, e *domain.PatchEvent) { patches += e.Matches },
	}))
	ctx := context.Background()

	_, _ = mgr.Get(ctx, "hello")
	_, _, _ = mgr.Patch(ctx, "hello", domain.TextPatch("t1", "a"), domain.TextPatch("b1", "b"))

	assert.Equal(t, 2, loads)
	assert.Equal(t, 2, patches)
}

func TestManager_DistributedLock(t *testing.T) {
	mr := miniredis.RunT(t)
	locker := redis.NewLocker(redis.New(mr.Addr(), "", 0).Client(), "")

	store := memory.NewStore(map[string]string{"hello": testutils.HelloJSON})
	mgr := screen.NewManager(store, screen.WithLocker(locker), screen.WithLockTTL(time.Second))

	_, matches, err := mgr.Patch(context.Background(), "hello", domain.TextPatch("t1", "locked"))
	require.NoError(t, err)
	assert.Equal(t, 1, matches)
	assert.Empty(t, mr.Keys(), "lock released after patch")
}

var _ ports.DocumentStore = slowStore{}
