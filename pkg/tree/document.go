package tree

import (
	"sync"
	"sync/atomic"

	"github.com/aretw0/canopy/pkg/domain"
)

type snapshot struct {
	root    *domain.Node
	version uint64
}

// Document holds a live tree shared between one writer at a time and any
// number of readers.
//
// Writers clone the current tree, mutate the clone and publish it with an
// atomic swap, so a snapshot returned to a reader never changes underneath it.
// Snapshots must be treated as read-only.
type Document struct {
	mu      sync.Mutex
	current atomic.Pointer[snapshot]
}

// NewDocument takes ownership of root.
func NewDocument(root *domain.Node) *Document {
	d := &Document{}
	d.current.Store(&snapshot{root: root, version: 1})
	return d
}

// Snapshot returns the current tree and its version.
func (d *Document) Snapshot() (*domain.Node, uint64) {
	s := d.current.Load()
	return s.root, s.version
}

// Root returns the current tree.
func (d *Document) Root() *domain.Node {
	return d.current.Load().root
}

// Version increases by one with every published change.
func (d *Document) Version() uint64 {
	return d.current.Load().version
}

// Find returns a copy of the first node with the given id.
func (d *Document) Find(id string) (*domain.Node, bool) {
	n, ok := FindByID(d.Root(), id)
	if !ok {
		return nil, false
	}
	return Clone(n), true
}

// Apply applies the patches in order as a single change and returns the
// total match count with the new version. When nothing matches the
// document is left untouched.
func (d *Document) Apply(patches ...domain.Patch) (int, uint64) {
	var matches int
	version, _ := d.Update(func(root *domain.Node) (bool, error) {
		for _, p := range patches {
			matches += ApplyPatch(root, p)
		}
		return matches > 0, nil
	})
	return matches, version
}

// Update runs fn on a private copy of the tree. The copy is published when
// fn reports a change and returns no error.
func (d *Document) Update(fn func(root *domain.Node) (changed bool, err error)) (uint64, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	cur := d.current.Load()
	next := Clone(cur.root)
	changed, err := fn(next)
	if err != nil || !changed {
		return cur.version, err
	}
	d.current.Store(&snapshot{root: next, version: cur.version + 1})
	return cur.version + 1, nil
}

// Replace swaps in a whole new tree, as a fresh decode would.
func (d *Document) Replace(root *domain.Node) uint64 {
	d.mu.Lock()
	defer d.mu.Unlock()

	v := d.current.Load().version + 1
	d.current.Store(&snapshot{root: root, version: v})
	return v
}
